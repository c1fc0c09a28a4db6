/*
 * Copyright (c) 2018 The Go Authors. All rights reserved.
 * Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.
 */

package sniff

const sniffLen = 1024

// DetectContentType guesses data's MIME type, per spec §4.3. data
// should be (up to) the first 1 KiB of the response body; longer
// slices are truncated here so callers can pass a whole small file
// without worrying about the sniff window.
func DetectContentType(data []byte) string {
	if len(data) > sniffLen {
		data = data[:sniffLen]
	}
	firstNonWS := firstNonWhitespace(data)
	for _, sig := range sniffSignatures {
		if ct := sig.match(data, firstNonWS); ct != "" {
			return ct
		}
	}
	return "application/octet-stream"
}
