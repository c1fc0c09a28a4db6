/*
 * Copyright (c) 2018 The Go Authors. All rights reserved.
 * Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.
 */

package sniff

// match treats the sample as text unless it contains a control byte
// other than tab (9), LF (10), or CR (13), per spec §4.3's file-
// response MIME guess rule.
func (textSig) match(data []byte, firstNonWS int) string {
	for _, b := range data[firstNonWS:] {
		if b < 0x20 && b != 9 && b != 10 && b != 13 {
			return ""
		}
	}
	return "text/plain; charset=utf-8"
}
