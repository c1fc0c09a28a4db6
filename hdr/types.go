/*
 * Copyright (c) 2018 The Go Authors. All rights reserved.
 * Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.
 */

// Package hdr implements the wire codecs of spec §4.1: header-line
// parsing and canonicalization, Accept-* q-value sorting, Range and
// Cookie header grammars, and RFC 1123 date formatting/parsing. It
// generalizes the teacher's own hdr package (a decomposition of
// net/textproto + net/http's header handling) to the spec's typed
// header set.
package hdr

import (
	"sync"
	"time"
)

// Recognised header names (spec §3 "Header set").
const (
	Accept           = "Accept"
	AcceptCharset    = "Accept-Charset"
	AcceptEncoding   = "Accept-Encoding"
	AcceptLanguage   = "Accept-Language"
	AcceptRanges     = "Accept-Ranges"
	Age              = "Age"
	Allow            = "Allow"
	CacheControl     = "Cache-Control"
	Connection       = "Connection"
	ContentDisposition = "Content-Disposition"
	ContentEncoding  = "Content-Encoding"
	ContentLanguage  = "Content-Language"
	ContentLength    = "Content-Length"
	ContentMD5       = "Content-MD5"
	ContentRange     = "Content-Range"
	ContentType      = "Content-Type"
	Cookie           = "Cookie"
	Date             = "Date"
	ETag             = "ETag"
	Expect           = "Expect"
	Expires          = "Expires"
	Host             = "Host"
	IfModifiedSince  = "If-Modified-Since"
	IfNoneMatch      = "If-None-Match"
	LastModified     = "Last-Modified"
	Location         = "Location"
	Pragma           = "Pragma"
	Range            = "Range"
	Server           = "Server"
	SetCookie        = "Set-Cookie"
	TransferEncoding = "Transfer-Encoding"
	Upgrade          = "Upgrade"
	UserAgent        = "User-Agent"
	XForwardedFor    = "X-Forwarded-For"

	// TimeFormat is RFC 1123 with a hard-coded "GMT" zone, per spec §4.1
	// "Date formatting". The time being formatted must already be UTC.
	TimeFormat = "Mon, 02 Jan 2006 15:04:05 GMT"
)

// timeFormats lists the three formats spec §4.1 requires ParseTime to
// accept: RFC 1123, RFC 850, and asctime.
var timeFormats = []string{
	TimeFormat,
	time.RFC850,
	time.ANSIC,
}

// Header represents the key-value pairs of an HTTP header block. Keys
// are stored in CanonicalHeaderKey form.
type Header map[string][]string

type keyValues struct {
	key    string
	values []string
}

// headerSorter implements sort.Interface over a []keyValues, sorting
// by key. It is pooled because it's allocated on every header write.
type headerSorter struct {
	kvs []keyValues
}

func (s *headerSorter) Len() int           { return len(s.kvs) }
func (s *headerSorter) Swap(i, j int)      { s.kvs[i], s.kvs[j] = s.kvs[j], s.kvs[i] }
func (s *headerSorter) Less(i, j int) bool { return s.kvs[i].key < s.kvs[j].key }

var headerSorterPool = sync.Pool{
	New: func() interface{} { return new(headerSorter) },
}

// isTokenTable is the RFC 7230 token-char table (field-name / token
// grammar: https://httpwg.github.io/specs/rfc7230.html#rule.token.separators).
var isTokenTable = [127]bool{
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

	'!': true, '#': true, '$': true, '%': true, '&': true, '\'': true, '*': true, '+': true,
	'-': true, '.': true, '^': true, '_': true, '`': true, '|': true, '~': true,
}

// commonHeader interns canonical forms of the names above to avoid
// allocating on every canonicalization of a well-known header.
var commonHeader = make(map[string]string)

func init() {
	for _, v := range []string{
		Accept, AcceptCharset, AcceptEncoding, AcceptLanguage, AcceptRanges, Age, Allow,
		CacheControl, Connection, ContentDisposition, ContentEncoding, ContentLanguage,
		ContentLength, ContentMD5, ContentRange, ContentType, Cookie, Date, ETag, Expect,
		Expires, Host, IfModifiedSince, IfNoneMatch, LastModified, Location, Pragma, Range,
		Server, SetCookie, TransferEncoding, Upgrade, UserAgent, XForwardedFor,
	} {
		commonHeader[v] = v
	}
}
