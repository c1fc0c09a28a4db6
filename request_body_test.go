/*
 * Copyright (c) 2018 The Go Authors. All rights reserved.
 * Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.
 */

package webd

import (
	"bufio"
	"bytes"
	"os"
	"strconv"
	"testing"

	"github.com/hookserver/webd/hdr"
	"github.com/hookserver/webd/mime"
	"github.com/hookserver/webd/mux"
)

// newBodyTestConn builds a conn whose header block has already been
// consumed, with br reading directly from body instead of a socket, so
// readBody/readMultipartBody can be driven without going through
// net.Pipe.
func newBodyTestConn(t *testing.T, srv *Server, body []byte) *conn {
	t.Helper()
	if srv == nil {
		srv = &Server{Hooks: mux.NewTable()}
	}
	return &conn{
		server: srv,
		br:     bufio.NewReader(bytes.NewReader(body)),
		bw:     bufio.NewWriter(new(bytes.Buffer)),
	}
}

func TestReadMultipartBodyFieldAndFile(t *testing.T) {
	var buf bytes.Buffer
	w := mime.NewWriter(&buf)
	if err := w.WriteField("name", "value"); err != nil {
		t.Fatalf("WriteField: %v", err)
	}
	fw, err := w.CreateFormFile("upload", "a.txt")
	if err != nil {
		t.Fatalf("CreateFormFile: %v", err)
	}
	if _, err := fw.Write([]byte("hello upload")); err != nil {
		t.Fatalf("writing file part: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	contentType := w.FormDataContentType()
	body := buf.Bytes()

	c := newBodyTestConn(t, nil, body)
	req := &Request{
		Method:        MethodPost,
		Proto:         Protocol{1, 1},
		Header:        hdr.Header{},
		ContentLength: int64(len(body)),
	}
	req.Header.Set(hdr.ContentType, contentType)
	req.Header.Set(hdr.ContentLength, strconv.Itoa(len(body)))

	if err := c.readBody(req); err != nil {
		t.Fatalf("readBody: %v", err)
	}

	if got := req.Form().Get("name"); got != "value" {
		t.Errorf("form field name = %q, want %q", got, "value")
	}

	files := req.Files()
	ups, ok := files["upload"]
	if !ok || len(ups) != 1 {
		t.Fatalf("files[upload] = %+v", files)
	}
	up := ups[0]
	if up.Filename != "a.txt" {
		t.Errorf("Filename = %q, want a.txt", up.Filename)
	}
	if string(up.ContentInMemory) != "hello upload" {
		t.Errorf("ContentInMemory = %q, want %q", up.ContentInMemory, "hello upload")
	}
	t.Cleanup(func() { c.cleanupUploads(req) })
}

func TestReadMultipartBodyLargeFileStreamsToTempFile(t *testing.T) {
	var buf bytes.Buffer
	w := mime.NewWriter(&buf)
	fw, err := w.CreateFormFile("upload", "big.bin")
	if err != nil {
		t.Fatalf("CreateFormFile: %v", err)
	}
	payload := bytes.Repeat([]byte("x"), 100)
	if _, err := fw.Write(payload); err != nil {
		t.Fatalf("writing file part: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	srv := &Server{Hooks: mux.NewTable(), StoreThreshold: 10, TempDir: t.TempDir()}
	body := buf.Bytes()
	c := newBodyTestConn(t, srv, body)
	req := &Request{
		Method:        MethodPost,
		Proto:         Protocol{1, 1},
		Header:        hdr.Header{},
		ContentLength: int64(len(body)),
	}
	req.Header.Set(hdr.ContentType, w.FormDataContentType())
	req.Header.Set(hdr.ContentLength, strconv.Itoa(len(body)))

	if err := c.readBody(req); err != nil {
		t.Fatalf("readBody: %v", err)
	}

	ups := req.Files()["upload"]
	if len(ups) != 1 {
		t.Fatalf("files[upload] = %+v", ups)
	}
	up := ups[0]
	if up.TempFilePath == "" {
		t.Fatalf("expected the oversized upload to stream to a temp file")
	}
	data, err := os.ReadFile(up.TempFilePath)
	if err != nil {
		t.Fatalf("reading temp file: %v", err)
	}
	if string(data) != string(payload) {
		t.Errorf("temp file contents = %q", data)
	}
	c.cleanupUploads(req)
	if _, err := os.Stat(up.TempFilePath); !os.IsNotExist(err) {
		t.Errorf("cleanupUploads did not remove the temp file")
	}
}

func TestReadBodyURLEncodedSmallBufferedInMemory(t *testing.T) {
	body := []byte("a=1&b=2")
	c := newBodyTestConn(t, nil, body)
	req := &Request{
		Method:        MethodPost,
		Proto:         Protocol{1, 1},
		Header:        hdr.Header{},
		ContentLength: int64(len(body)),
	}
	req.Header.Set(hdr.ContentType, "application/x-www-form-urlencoded")
	req.Header.Set(hdr.ContentLength, strconv.Itoa(len(body)))

	if err := c.readBody(req); err != nil {
		t.Fatalf("readBody: %v", err)
	}
	got, ok := req.BodyBytes()
	if !ok {
		t.Fatalf("expected an in-memory body")
	}
	if string(got) != string(body) {
		t.Errorf("body = %q, want %q", got, body)
	}
	if v := req.Form().Get("a"); v != "1" {
		t.Errorf("form[a] = %q, want 1", v)
	}
}

func TestReadBodyMissingContentLengthErrors(t *testing.T) {
	c := newBodyTestConn(t, nil, []byte("a=1"))
	req := &Request{
		Method:        MethodPost,
		Proto:         Protocol{1, 1},
		Header:        hdr.Header{},
		ContentLength: 3,
	}
	req.Header.Set(hdr.ContentType, "application/x-www-form-urlencoded")
	// Content-Length header deliberately not set.

	err := c.readBody(req)
	if err == nil {
		t.Fatal("expected an error for a missing Content-Length header")
	}
}
