/*
 * Copyright (c) 2018 The Go Authors. All rights reserved.
 * Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.
 */

// Package cookie implements the Cookie request-header and Set-Cookie
// response-header grammars from spec §3 "Header set" and §4.1 "Cookie
// request header". It is grounded on the teacher's cli package (the
// same Cookie field set and sanitization rules) but drops everything
// client-only (CookieJar, RoundTrip wiring) since this module is a
// server library, and adds the RFC 2965 "$Path"/"$Domain"/"$Expires"
// attribute quirk spec §9 calls out as a deliberately preserved
// behaviour of the original source.
package cookie

import (
	"strconv"
	"strings"
	"time"

	"github.com/hookserver/webd/hdr"
)

// Cookie represents one cookie, as parsed from a Cookie request header
// or constructed for a Set-Cookie response header.
type Cookie struct {
	Name   string
	Value  string
	Path   string
	Domain string

	Expires    time.Time
	RawExpires string
	MaxAge     int
	Secure     bool
	HttpOnly   bool
}

// Parse implements spec §4.1 "Cookie request header": a sequence of
// "name=value" pairs separated by ';'. Values may be double-quoted.
// Keys beginning with '$' ($Path, $Domain, $Expires) attach to the
// most recently parsed cookie rather than starting a new one; $Version
// is ignored entirely.
func Parse(header string) []*Cookie {
	if header == "" {
		return nil
	}
	var cookies []*Cookie
	var last *Cookie

	for _, part := range strings.Split(header, ";") {
		part = hdr.TrimString(part)
		if part == "" {
			continue
		}
		name, val := part, ""
		if i := strings.IndexByte(part, '='); i >= 0 {
			name, val = part[:i], part[i+1:]
		}
		name = hdr.TrimString(name)
		val = unquote(hdr.TrimString(val))

		if strings.HasPrefix(name, "$") {
			if last == nil {
				continue
			}
			switch strings.ToLower(name) {
			case "$path":
				last.Path = val
			case "$domain":
				last.Domain = val
			case "$expires":
				last.RawExpires = val
				if t, err := hdr.ParseTime(val); err == nil {
					last.Expires = t
				}
			case "$version":
				// ignored, per spec §4.1
			}
			continue
		}
		if !validCookieName(name) {
			last = nil
			continue
		}
		c := &Cookie{Name: name, Value: val}
		cookies = append(cookies, c)
		last = c
	}
	return cookies
}

func unquote(v string) string {
	if len(v) >= 2 && v[0] == '"' && v[len(v)-1] == '"' {
		return v[1 : len(v)-1]
	}
	return v
}

func validCookieName(name string) bool {
	if name == "" {
		return false
	}
	for i := 0; i < len(name); i++ {
		if !hdr.IsTokenRune(rune(name[i])) {
			return false
		}
	}
	return true
}

// String serializes c for a Set-Cookie response header.
func (c *Cookie) String() string {
	if c == nil || !validCookieName(c.Name) {
		return ""
	}
	var b strings.Builder
	b.WriteString(c.Name)
	b.WriteByte('=')
	b.WriteString(c.Value)

	if c.Path != "" {
		b.WriteString("; Path=")
		b.WriteString(c.Path)
	}
	if c.Domain != "" {
		d := c.Domain
		if d[0] == '.' {
			d = d[1:]
		}
		b.WriteString("; Domain=")
		b.WriteString(d)
	}
	if !c.Expires.IsZero() {
		b.WriteString("; Expires=")
		b.WriteString(hdr.FormatTime(c.Expires))
	}
	if c.MaxAge > 0 {
		b.WriteString("; Max-Age=")
		b.WriteString(strconv.Itoa(c.MaxAge))
	} else if c.MaxAge < 0 {
		b.WriteString("; Max-Age=0")
	}
	if c.HttpOnly {
		b.WriteString("; HttpOnly")
	}
	if c.Secure {
		b.WriteString("; Secure")
	}
	return b.String()
}
