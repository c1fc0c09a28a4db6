/*
 * Copyright (c) 2018 The Go Authors. All rights reserved.
 * Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.
 */

package mime

// Write implements io.Writer for a single part created by
// Writer.CreatePart. Once an error occurs, every subsequent write
// returns the same error rather than attempting the underlying write
// again, matching the "sticky" behaviour the reader side uses.
func (p *part) Write(d []byte) (n int, err error) {
	if p.closed {
		return 0, errWriterClosed
	}
	if p.we != nil {
		return 0, p.we
	}
	n, err = p.mw.w.Write(d)
	if err != nil {
		p.we = err
	}
	return n, err
}

func (p *part) close() error {
	p.closed = true
	return p.we
}

var errWriterClosed = &writerClosedError{}

type writerClosedError struct{}

func (*writerClosedError) Error() string { return "mime: write to closed part" }
