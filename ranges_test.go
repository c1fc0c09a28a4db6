/*
 * Copyright (c) 2018 The Go Authors. All rights reserved.
 * Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.
 */

package webd

import (
	"reflect"
	"testing"

	"github.com/hookserver/webd/hdr"
)

func ptr(n int64) *int64 { return &n }

func TestCanonicalizeRangesSimple(t *testing.T) {
	specs := hdr.ParseRange("bytes=0-99")
	got := canonicalizeRanges(specs, 1000)
	want := []byteRange{{start: 0, end: 99}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %+v, want %+v", got, want)
	}
}

func TestCanonicalizeRangesSuffix(t *testing.T) {
	specs := hdr.ParseRange("bytes=-500")
	got := canonicalizeRanges(specs, 1000)
	want := []byteRange{{start: 500, end: 999}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %+v, want %+v", got, want)
	}
}

func TestCanonicalizeRangesSuffixLargerThanSizeClampsToWholeContent(t *testing.T) {
	specs := hdr.ParseRange("bytes=-5000")
	got := canonicalizeRanges(specs, 1000)
	want := []byteRange{{start: 0, end: 999}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %+v, want %+v", got, want)
	}
}

func TestCanonicalizeRangesOpenEnded(t *testing.T) {
	specs := hdr.ParseRange("bytes=900-")
	got := canonicalizeRanges(specs, 1000)
	want := []byteRange{{start: 900, end: 999}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %+v, want %+v", got, want)
	}
}

func TestCanonicalizeRangesEndClampedToSize(t *testing.T) {
	specs := hdr.ParseRange("bytes=0-9999")
	got := canonicalizeRanges(specs, 1000)
	want := []byteRange{{start: 0, end: 999}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %+v, want %+v", got, want)
	}
}

func TestCanonicalizeRangesOutOfBoundsSpecIsDropped(t *testing.T) {
	specs := hdr.ParseRange("bytes=2000-3000")
	got := canonicalizeRanges(specs, 1000)
	if got != nil {
		t.Errorf("got %+v, want nil", got)
	}
}

func TestCanonicalizeRangesOverlappingRangesMerge(t *testing.T) {
	specs := hdr.ParseRange("bytes=0-99,50-149")
	got := canonicalizeRanges(specs, 1000)
	want := []byteRange{{start: 0, end: 149}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %+v, want %+v", got, want)
	}
}

func TestCanonicalizeRangesAdjacentRangesMerge(t *testing.T) {
	specs := hdr.ParseRange("bytes=0-99,100-199")
	got := canonicalizeRanges(specs, 1000)
	want := []byteRange{{start: 0, end: 199}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %+v, want %+v", got, want)
	}
}

func TestCanonicalizeRangesDisjointRangesStaySeparate(t *testing.T) {
	specs := hdr.ParseRange("bytes=0-99,200-299")
	got := canonicalizeRanges(specs, 1000)
	want := []byteRange{{start: 0, end: 99}, {start: 200, end: 299}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %+v, want %+v", got, want)
	}
}

func TestCanonicalizeRangesUnsortedInputIsSorted(t *testing.T) {
	specs := hdr.ParseRange("bytes=200-299,0-99")
	got := canonicalizeRanges(specs, 1000)
	want := []byteRange{{start: 0, end: 99}, {start: 200, end: 299}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %+v, want %+v", got, want)
	}
}

// TestCanonicalizeRangesExactlyFullRangeStillCanonicalizes covers spec
// §8's "exactly-full-range falls back to 200" case at the call site
// that decides whether to use range framing at all; canonicalizeRanges
// itself still returns the single full-content range faithfully, the
// 200-vs-206 decision is made by its caller.
func TestCanonicalizeRangesExactlyFullRangeStillCanonicalizes(t *testing.T) {
	specs := hdr.ParseRange("bytes=0-999")
	got := canonicalizeRanges(specs, 1000)
	want := []byteRange{{start: 0, end: 999}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %+v, want %+v", got, want)
	}
}

// TestCanonicalizeRangesIdempotent is spec §8's idempotence law:
// re-canonicalizing an already-canonical set of ranges is a no-op.
func TestCanonicalizeRangesIdempotent(t *testing.T) {
	specs := hdr.ParseRange("bytes=0-99,150-199,300-399")
	first := canonicalizeRanges(specs, 1000)

	var reSpecs []hdr.RangeSpec
	for _, r := range first {
		reSpecs = append(reSpecs, hdr.RangeSpec{From: ptr(r.start), To: ptr(r.end)})
	}
	second := canonicalizeRanges(reSpecs, 1000)
	if !reflect.DeepEqual(first, second) {
		t.Errorf("not idempotent: first=%+v second=%+v", first, second)
	}
}

func TestByteRangeLength(t *testing.T) {
	r := byteRange{start: 10, end: 19}
	if got := r.length(); got != 10 {
		t.Errorf("length() = %d, want 10", got)
	}
}

func TestByteRangeContentRange(t *testing.T) {
	r := byteRange{start: 0, end: 99}
	if got := r.contentRange(1000); got != "bytes 0-99/1000" {
		t.Errorf("contentRange() = %q", got)
	}
}

func TestMultipartByterangesLengthMatchesActualEncoding(t *testing.T) {
	ranges := []byteRange{{start: 0, end: 9}, {start: 20, end: 29}}
	boundary := "abc123"
	contentType := "text/plain"
	total := int64(1000)

	got := multipartByterangesLength(ranges, boundary, contentType, total)

	var want int64
	for _, r := range ranges {
		want += int64(len("--" + boundary + "\r\n"))
		want += int64(len(partHeader(r, contentType, total)))
		want += r.length()
		want += int64(len("\r\n"))
	}
	want += int64(len("--" + boundary + "--\r\n"))

	if got != want {
		t.Errorf("multipartByterangesLength() = %d, want %d", got, want)
	}
}
