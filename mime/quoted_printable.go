/*
 * Copyright (c) 2018 The Go Authors. All rights reserved.
 * Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.
 */

package mime

import (
	"bytes"
	"io"
)

// Read implements the quoted-printable decode (RFC 2045 §6.7) used to
// transparently decode a part whose Content-Transfer-Encoding is
// "quoted-printable", per the teacher's comment in types.Part: "the
// body is transparently decoded during Read calls." No Read method
// shipped with the teacher's QuotedReader type, so this is new,
// grounded on the package's own readHexByte/fromHex helpers: each
// call decodes one source line (soft line breaks via a trailing "="
// are dropped, hard line breaks become "\n") into an internal buffer
// that Read then drains.
func (q *QuotedReader) Read(d []byte) (n int, err error) {
	for len(q.line) == 0 {
		if q.rerr != nil {
			return 0, q.rerr
		}
		raw, rerr := q.br.ReadSlice('\n')
		q.rerr = rerr
		if len(raw) == 0 {
			continue
		}
		q.line = decodeQPLine(raw, rerr == nil)
	}
	n = copy(d, q.line)
	q.line = q.line[n:]
	return n, nil
}

// decodeQPLine decodes one quoted-printable source line. hadNewline
// indicates the raw line included its trailing "\n" (i.e. it was not
// cut short by EOF).
func decodeQPLine(raw []byte, hadNewline bool) []byte {
	line := bytes.TrimRight(raw, "\r\n")
	soft := bytes.HasSuffix(line, softSuffix)
	if soft {
		line = line[:len(line)-1]
	}
	var out bytes.Buffer
	for i := 0; i < len(line); i++ {
		if line[i] == '=' && i+2 < len(line) {
			if b, err := readHexByte(line[i+1 : i+3]); err == nil {
				out.WriteByte(b)
				i += 2
				continue
			}
		}
		out.WriteByte(line[i])
	}
	if !soft && hadNewline {
		out.WriteByte('\n')
	}
	return out.Bytes()
}

var _ io.Reader = (*QuotedReader)(nil)
