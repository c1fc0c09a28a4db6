/*
 * Copyright (c) 2018 The Go Authors. All rights reserved.
 * Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.
 */

package cookie

import (
	"testing"
)

func TestParseSimple(t *testing.T) {
	got := Parse("a=1; b=2")
	if len(got) != 2 {
		t.Fatalf("got %d cookies, want 2", len(got))
	}
	if got[0].Name != "a" || got[0].Value != "1" {
		t.Errorf("cookie[0] = %+v", got[0])
	}
	if got[1].Name != "b" || got[1].Value != "2" {
		t.Errorf("cookie[1] = %+v", got[1])
	}
}

func TestParseQuotedValue(t *testing.T) {
	got := Parse(`a="quoted value"`)
	if len(got) != 1 || got[0].Value != "quoted value" {
		t.Fatalf("got %+v", got)
	}
}

func TestParseDollarAttributesAttachToPrevious(t *testing.T) {
	got := Parse(`a=1; $Path=/x; $Domain=example.com; b=2`)
	if len(got) != 2 {
		t.Fatalf("got %d cookies, want 2", len(got))
	}
	if got[0].Path != "/x" || got[0].Domain != "example.com" {
		t.Errorf("$Path/$Domain did not attach to preceding cookie: %+v", got[0])
	}
	if got[1].Path != "" || got[1].Domain != "" {
		t.Errorf("$Path/$Domain leaked onto the following cookie: %+v", got[1])
	}
}

func TestParseDollarExpires(t *testing.T) {
	got := Parse(`a=1; $Expires=Wed, 09 Jun 2021 10:18:14 GMT`)
	if len(got) != 1 {
		t.Fatalf("got %d cookies, want 1", len(got))
	}
	if got[0].Expires.IsZero() {
		t.Errorf("$Expires did not populate Expires")
	}
	if got[0].RawExpires == "" {
		t.Errorf("$Expires did not populate RawExpires")
	}
}

func TestParseDollarVersionIgnored(t *testing.T) {
	got := Parse(`$Version=1; a=1`)
	if len(got) != 1 || got[0].Name != "a" {
		t.Fatalf("got %+v, want a single cookie named a", got)
	}
}

func TestParseLeadingDollarWithNoPriorCookieIsSkipped(t *testing.T) {
	got := Parse(`$Path=/x; a=1`)
	if len(got) != 1 || got[0].Name != "a" || got[0].Path != "" {
		t.Fatalf("got %+v", got)
	}
}

func TestParseInvalidNameDropsCookieAndResetsAttachPoint(t *testing.T) {
	got := Parse("a b=1; $Path=/x; c=2")
	if len(got) != 1 || got[0].Name != "c" {
		t.Fatalf("got %+v, want only the c cookie", got)
	}
	if got[0].Path != "" {
		t.Errorf("$Path should not have attached across the invalid cookie: %+v", got[0])
	}
}

func TestParseEmptyHeader(t *testing.T) {
	if got := Parse(""); got != nil {
		t.Errorf("got %+v, want nil", got)
	}
}

func TestStringRoundTrip(t *testing.T) {
	c := &Cookie{Name: "sid", Value: "abc123", Path: "/", Domain: ".example.com", HttpOnly: true, Secure: true}
	s := c.String()
	want := "sid=abc123; Path=/; Domain=example.com; HttpOnly; Secure"
	if s != want {
		t.Errorf("String() = %q, want %q", s, want)
	}
}

func TestStringMaxAgeNegativeForcesZero(t *testing.T) {
	c := &Cookie{Name: "sid", Value: "x", MaxAge: -1}
	s := c.String()
	if s != "sid=x; Max-Age=0" {
		t.Errorf("String() = %q, want %q", s, "sid=x; Max-Age=0")
	}
}

func TestStringInvalidNameProducesEmpty(t *testing.T) {
	c := &Cookie{Name: "bad name", Value: "x"}
	if s := c.String(); s != "" {
		t.Errorf("String() = %q, want empty string for invalid name", s)
	}
}
