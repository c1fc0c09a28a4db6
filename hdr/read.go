/*
 * Copyright (c) 2018 The Go Authors. All rights reserved.
 * Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.
 */

package hdr

import (
	"errors"
)

// ErrMalformedHeader is returned by ParseHeaderBlock when a line is not
// "name: value" and is not a continuation line.
var ErrMalformedHeader = errors.New("hdr: malformed header line")

// ParseHeaderBlock parses the header lines following the request (or
// status) line, per spec §4.1 "Header line parsing": each line is
// "name: value" where name matches [-A-Za-z0-9_]+; a line beginning
// with a space or tab is a continuation of the previous value, joined
// with a single space. block must not include the request line or the
// terminating blank line; lines are CRLF- or LF-terminated.
func ParseHeaderBlock(block []byte) (Header, error) {
	h := make(Header)
	lines := splitLines(block)

	var lastKey string
	for _, line := range lines {
		if len(line) == 0 {
			continue
		}
		if line[0] == ' ' || line[0] == '\t' {
			if lastKey == "" {
				return nil, ErrMalformedHeader
			}
			cont := TrimString(string(line))
			vv := h[lastKey]
			if len(vv) > 0 {
				vv[len(vv)-1] = vv[len(vv)-1] + " " + cont
			}
			continue
		}
		colon := indexByte(line, ':')
		if colon < 0 {
			return nil, ErrMalformedHeader
		}
		name := string(line[:colon])
		if !validHeaderLineName(name) {
			return nil, ErrMalformedHeader
		}
		value := TrimString(string(line[colon+1:]))
		key := CanonicalHeaderKey(name)
		h[key] = append(h[key], value)
		lastKey = key
	}
	return h, nil
}

// validHeaderLineName reports whether name matches [-A-Za-z0-9_]+.
func validHeaderLineName(name string) bool {
	if name == "" {
		return false
	}
	for i := 0; i < len(name); i++ {
		c := name[i]
		if !('a' <= c && c <= 'z' || 'A' <= c && c <= 'Z' || '0' <= c && c <= '9' || c == '-' || c == '_') {
			return false
		}
	}
	return true
}

// splitLines splits block on CRLF or bare LF, dropping the terminator.
func splitLines(block []byte) [][]byte {
	var lines [][]byte
	start := 0
	for i := 0; i < len(block); i++ {
		if block[i] == '\n' {
			end := i
			if end > start && block[end-1] == '\r' {
				end--
			}
			lines = append(lines, block[start:end])
			start = i + 1
		}
	}
	if start < len(block) {
		lines = append(lines, block[start:])
	}
	return lines
}

func indexByte(b []byte, c byte) int {
	for i, x := range b {
		if x == c {
			return i
		}
	}
	return -1
}

// SplitCommaList splits a comma-separated header value, ignoring
// commas enclosed in double quotes, and trims each element.
func SplitCommaList(v string) []string {
	var out []string
	inQuote := false
	start := 0
	for i := 0; i < len(v); i++ {
		switch v[i] {
		case '"':
			inQuote = !inQuote
		case ',':
			if !inQuote {
				out = append(out, TrimString(v[start:i]))
				start = i + 1
			}
		}
	}
	out = append(out, TrimString(v[start:]))
	return out
}
