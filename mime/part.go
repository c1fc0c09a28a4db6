/*
 * Copyright (c) 2018 The Go Authors. All rights reserved.
 * Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.
 */

package mime

import (
	. "github.com/hookserver/webd/hdr"
	"io"
	"io/ioutil"
)

// FormName returns the name parameter if p has a Content-Disposition
// of type "form-data".  Otherwise it returns the empty string.
func (p *Part) FormName() string {
	// See http://tools.ietf.org/html/rfc2183 section 2 for EBNF
	// of Content-Disposition value format.
	if p.dispositionParams == nil {
		p.parseContentDisposition()
	}
	if p.disposition != "form-data" {
		return ""
	}
	return p.dispositionParams["name"]
}

// FileName returns the filename parameter of the Part's
// Content-Disposition header.
func (p *Part) FileName() string {
	if p.dispositionParams == nil {
		p.parseContentDisposition()
	}
	return p.dispositionParams["filename"]
}

func (p *Part) parseContentDisposition() {
	v := p.Header.Get(ContentDisposition)
	var err error
	p.disposition, p.dispositionParams, err = MIMEParseMediaType(v)
	if err != nil {
		p.dispositionParams = emptyParams
	}
}

// populateHeaders reads the miniature header block that precedes a
// part's body, per spec §4.5 "parse a miniature header block
// (case-insensitive)". The teacher's equivalent called a HeaderReader
// type that was never defined anywhere in the pack (the same gap
// found in the request-header path), so this reads lines directly off
// the part's shared bufio.Reader up to the blank line and hands the
// accumulated block to hdr.ParseHeaderBlock.
func (bp *Part) populateHeaders() error {
	var block []byte
	for {
		line, err := bp.mr.bufReader.ReadSlice('\n')
		if err != nil {
			return err
		}
		block = append(block, line...)
		trimmed := TrimString(string(line))
		if trimmed == "" {
			break
		}
	}
	header, err := ParseHeaderBlock(block)
	if err != nil {
		return err
	}
	bp.Header = header
	return nil
}

// Read reads the body of a part, after its headers and before the
// next part (if any) begins.
func (p *Part) Read(d []byte) (n int, err error) {
	return p.r.Read(d)
}

func (p *Part) Close() error {
	io.Copy(ioutil.Discard, p)
	return nil
}
