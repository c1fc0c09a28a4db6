/*
 * Copyright (c) 2018 The Go Authors. All rights reserved.
 * Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.
 */

package webd

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"sort"

	"github.com/hookserver/webd/hdr"
)

// byteRange is a canonical, fully-resolved [start, end] inclusive
// range, grounded on the teacher's filetransport.httpRange shape
// (start, length) but stored as inclusive bounds to make the merge
// step in canonicalizeRanges straightforward.
type byteRange struct {
	start, end int64 // inclusive
}

func (r byteRange) length() int64 { return r.end - r.start + 1 }

func (r byteRange) contentRange(total int64) string {
	return fmt.Sprintf("bytes %d-%d/%d", r.start, r.end, total)
}

// canonicalizeRanges implements spec §4.5 step 4 and §8's idempotence
// law: clip every spec to [0, size-1], drop specs that don't overlap
// the content at all, sort, and merge overlapping/adjacent ranges.
// The result is idempotent: re-running it on its own output is a
// no-op.
func canonicalizeRanges(specs []hdr.RangeSpec, size int64) []byteRange {
	if size <= 0 {
		return nil
	}
	var out []byteRange
	for _, s := range specs {
		var r byteRange
		switch {
		case s.From == nil && s.To != nil:
			// "-M": last M bytes.
			n := *s.To
			if n > size {
				n = size
			}
			r = byteRange{start: size - n, end: size - 1}
		case s.From != nil && s.To == nil:
			if *s.From >= size {
				continue
			}
			r = byteRange{start: *s.From, end: size - 1}
		case s.From != nil && s.To != nil:
			if *s.From >= size {
				continue
			}
			end := *s.To
			if end > size-1 {
				end = size - 1
			}
			r = byteRange{start: *s.From, end: end}
		default:
			continue
		}
		if r.start < 0 {
			r.start = 0
		}
		if r.start > r.end {
			continue
		}
		out = append(out, r)
	}
	if len(out) == 0 {
		return nil
	}
	sort.Slice(out, func(i, j int) bool { return out[i].start < out[j].start })

	merged := out[:1]
	for _, r := range out[1:] {
		last := &merged[len(merged)-1]
		if r.start <= last.end+1 {
			if r.end > last.end {
				last.end = r.end
			}
			continue
		}
		merged = append(merged, r)
	}
	return merged
}

// randomBoundary returns a 64-hex-char random boundary, per spec
// §4.5 step 4 "multipart/byteranges; boundary=<64-hex-random>".
func randomBoundary() (string, error) {
	var b [32]byte
	if _, err := rand.Read(b[:]); err != nil {
		return "", err
	}
	return hex.EncodeToString(b[:]), nil
}

// multipartByterangesLength computes the exact Content-Length for a
// multipart/byteranges body framed as spec §4.5 step 4 describes:
// "--boundary\r\nContent-Range: bytes F-L/T\r\n\r\n<bytes>\r\n", with a
// final "--boundary--\r\n".
func multipartByterangesLength(ranges []byteRange, boundary, contentType string, total int64) int64 {
	var n int64
	for _, r := range ranges {
		n += int64(len("--")) + int64(len(boundary)) + int64(len("\r\n"))
		n += int64(len(partHeader(r, contentType, total)))
		n += r.length()
		n += int64(len("\r\n"))
	}
	n += int64(len("--")) + int64(len(boundary)) + int64(len("--\r\n"))
	return n
}

func partHeader(r byteRange, contentType string, total int64) string {
	return hdr.ContentRange + ": " + r.contentRange(total) + "\r\n\r\n"
}
