/*
 * Copyright (c) 2018 The Go Authors. All rights reserved.
 * Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.
 */

package sniff

import "testing"

func TestDetectContentType(t *testing.T) {
	cases := []struct {
		desc string
		data []byte
		want string
	}{
		{"empty", []byte{}, "text/plain; charset=utf-8"},
		{"plain text", []byte("hello, world"), "text/plain; charset=utf-8"},
		{"tab/lf/cr allowed", []byte("a\tb\nc\rd"), "text/plain; charset=utf-8"},
		{"control byte forces binary", []byte{1, 2, 3}, "application/octet-stream"},
		{"null byte forces binary", append([]byte("hello"), 0), "application/octet-stream"},
		{"png signature", []byte("\x89PNG\r\n\x1a\nrest"), "image/png"},
		{"gif87a signature", []byte("GIF87a..."), "image/gif"},
		{"gif89a signature", []byte("GIF89a..."), "image/gif"},
		{"pdf signature", []byte("%PDF-1.4"), "application/pdf"},
		{"zip signature", []byte("PK\x03\x04rest"), "application/zip"},
	}
	for _, tt := range cases {
		if got := DetectContentType(tt.data); got != tt.want {
			t.Errorf("%s: DetectContentType = %q, want %q", tt.desc, got, tt.want)
		}
	}
}

func TestDetectContentTypeTruncatesToSniffWindow(t *testing.T) {
	data := make([]byte, sniffLen+10)
	for i := range data {
		data[i] = 'a'
	}
	data[sniffLen+5] = 0 // control byte past the 1 KiB sniff window
	if got := DetectContentType(data); got != "text/plain; charset=utf-8" {
		t.Errorf("DetectContentType = %q, want text/plain (control byte outside sniff window)", got)
	}
}
