/*
 * Copyright (c) 2018 The Go Authors. All rights reserved.
 * Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.
 */

// Package url implements the decomposed request-target model from the
// spec's data model: scheme, host, port, percent-decoded path segments,
// raw query and parsed query parameters. It is a trimmed sibling of the
// teacher's own url package (itself a decomposition of net/url): the
// spec's Request never needs Opaque, Userinfo or Fragment, so this
// package drops them rather than carrying dead fields forward.
package url

type (
	// Error reports an error and the operation and input that caused it.
	Error struct {
		Op    string
		Input string
		Err   error
	}

	encoding int

	EscapeError string

	InvalidHostError string

	// URL is a parsed HTTP request-target: either an origin-form
	// ("/path?query") combined with the Host header, or an absolute-form
	// ("http://host:port/path?query") as sent through a proxy.
	URL struct {
		Scheme   string
		Host     string // host, without port
		Port     string // port, without leading colon; "" if not specified
		Path     string // decoded path
		RawPath  string // encoded path as it appeared on the wire
		RawQuery string // encoded query, without '?'
	}

	// Values maps a string key to a list of values, used for query
	// parameters and form values. Keys are case-sensitive.
	Values map[string][]string
)

const (
	encodePath encoding = 1 + iota
	encodePathSegment
	encodeHost
	encodeQueryComponent
)

// validHostByte mirrors RFC 3986 reg-name / IPv6 literal bytes plus ':'
// for the optional port, used to validate Host header values.
var validHostByte = [256]bool{
	'0': true, '1': true, '2': true, '3': true, '4': true, '5': true, '6': true, '7': true,
	'8': true, '9': true,

	'a': true, 'b': true, 'c': true, 'd': true, 'e': true, 'f': true, 'g': true, 'h': true,
	'i': true, 'j': true, 'k': true, 'l': true, 'm': true, 'n': true, 'o': true, 'p': true,
	'q': true, 'r': true, 's': true, 't': true, 'u': true, 'v': true, 'w': true, 'x': true,
	'y': true, 'z': true,

	'A': true, 'B': true, 'C': true, 'D': true, 'E': true, 'F': true, 'G': true, 'H': true,
	'I': true, 'J': true, 'K': true, 'L': true, 'M': true, 'N': true, 'O': true, 'P': true,
	'Q': true, 'R': true, 'S': true, 'T': true, 'U': true, 'V': true, 'W': true, 'X': true,
	'Y': true, 'Z': true,

	'-': true, '.': true, ':': true, '[': true, ']': true, '_': true, '~': true,
}
