/*
 * Copyright (c) 2018 The Go Authors. All rights reserved.
 * Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.
 */

package webd

import (
	"bufio"
	"bytes"
	"compress/gzip"
	"io"
	"net"
	"strings"
	"testing"

	"github.com/hookserver/webd/chunks"
	"github.com/hookserver/webd/hdr"
	"github.com/hookserver/webd/internal/gzipolicy"
	"github.com/hookserver/webd/mux"
)

// newTestConn wires a conn directly to one end of an in-memory pipe,
// bypassing Server.newConn/the accept loop, so writeResponse's framing
// decision tree can be driven without a real socket.
func newTestConn(t *testing.T, srv *Server) (*conn, net.Conn) {
	t.Helper()
	server, client := net.Pipe()
	t.Cleanup(func() { server.Close(); client.Close() })
	if srv == nil {
		srv = &Server{Hooks: mux.NewTable()}
	}
	c := srv.newConn(server, false)
	return c, client
}

func readAll(t *testing.T, r io.Reader) string {
	t.Helper()
	data, err := io.ReadAll(r)
	if err != nil && err != io.EOF {
		t.Fatalf("ReadAll: %v", err)
	}
	return string(data)
}

func drainInBackground(conn net.Conn) <-chan string {
	ch := make(chan string, 1)
	go func() {
		data, _ := io.ReadAll(conn)
		ch <- string(data)
	}()
	return ch
}

func plainRequest() *Request {
	return &Request{Method: MethodGet, Proto: Protocol{1, 1}, Header: hdr.Header{}}
}

func TestWriteResponseStatusForbidsBody(t *testing.T) {
	c, client := newTestConn(t, nil)
	out := drainInBackground(client)

	resp := NewResponse(204)
	if err := c.writeResponse(plainRequest(), resp, false); err != nil {
		t.Fatalf("writeResponse: %v", err)
	}
	c.rwc.Close()

	got := <-out
	if strings.Contains(got, "Content-Length") {
		t.Errorf("204 response must not carry Content-Length:\n%s", got)
	}
	if !strings.HasPrefix(got, "HTTP/1.1 204") {
		t.Errorf("got status line %q", strings.SplitN(got, "\r\n", 2)[0])
	}
}

func TestWriteResponseKnownLengthKeepAlive(t *testing.T) {
	c, client := newTestConn(t, nil)

	resp := NewResponse(200)
	resp.Header.Set(hdr.ContentType, "text/plain")
	resp.SetBuffer([]byte("hello"))

	done := make(chan error, 1)
	go func() { done <- c.writeResponse(plainRequest(), resp, true) }()

	br := bufio.NewReader(client)
	line, _ := br.ReadString('\n')
	if !strings.HasPrefix(line, "HTTP/1.1 200") {
		t.Fatalf("status line = %q", line)
	}
	headers := readHeaderLines(t, br)
	if headers[hdr.Connection] != "keep-alive" {
		t.Errorf("Connection = %q, want keep-alive", headers[hdr.Connection])
	}
	if headers[hdr.ContentLength] != "5" {
		t.Errorf("Content-Length = %q, want 5", headers[hdr.ContentLength])
	}
	body := make([]byte, 5)
	if _, err := io.ReadFull(br, body); err != nil {
		t.Fatalf("reading body: %v", err)
	}
	if string(body) != "hello" {
		t.Errorf("body = %q", body)
	}
	if err := <-done; err != nil {
		t.Fatalf("writeResponse: %v", err)
	}
}

func TestWriteResponseChunkedForUnknownLength(t *testing.T) {
	c, client := newTestConn(t, nil)

	parts := [][]byte{[]byte("ab"), []byte("cde"), nil}
	i := 0
	resp := NewResponse(200)
	resp.Header.Set(hdr.ContentType, "text/plain")
	resp.SetProducer(func() ([]byte, error) {
		if i >= len(parts)-1 {
			return nil, io.EOF
		}
		p := parts[i]
		i++
		return p, nil
	})

	done := make(chan error, 1)
	go func() { done <- c.writeResponse(plainRequest(), resp, true) }()

	br := bufio.NewReader(client)
	line, _ := br.ReadString('\n')
	if !strings.HasPrefix(line, "HTTP/1.1 200") {
		t.Fatalf("status line = %q", line)
	}
	headers := readHeaderLines(t, br)
	if headers[hdr.TransferEncoding] != "chunked" {
		t.Fatalf("Transfer-Encoding = %q, want chunked", headers[hdr.TransferEncoding])
	}
	if _, ok := headers[hdr.ContentLength]; ok {
		t.Errorf("chunked response must not also carry Content-Length")
	}

	body, err := io.ReadAll(chunks.NewReader(br))
	if err != nil {
		t.Fatalf("decoding chunked body: %v", err)
	}
	if string(body) != "abcde" {
		t.Errorf("decoded body = %q, want %q", body, "abcde")
	}
	if err := <-done; err != nil {
		t.Fatalf("writeResponse: %v", err)
	}
}

func TestWriteResponseGzipForcedSmallBody(t *testing.T) {
	srv := &Server{Hooks: mux.NewTable(), GzipInMemoryUpToSize: 1024 * 1024}
	c, client := newTestConn(t, srv)

	req := plainRequest()
	req.Header.Set(hdr.AcceptEncoding, "gzip")

	resp := NewResponse(200)
	resp.Header.Set(hdr.ContentType, "text/plain")
	resp.GzipPolicy = gzipolicy.Force
	resp.SetBuffer([]byte(strings.Repeat("compress me please ", 100)))

	done := make(chan error, 1)
	go func() { done <- c.writeResponse(req, resp, false) }()

	br := bufio.NewReader(client)
	line, _ := br.ReadString('\n')
	if !strings.HasPrefix(line, "HTTP/1.1 200") {
		t.Fatalf("status line = %q", line)
	}
	headers := readHeaderLines(t, br)
	if headers[hdr.ContentEncoding] != "gzip" {
		t.Fatalf("Content-Encoding = %q, want gzip", headers[hdr.ContentEncoding])
	}

	gr, err := gzip.NewReader(br)
	if err != nil {
		t.Fatalf("gzip.NewReader: %v", err)
	}
	decoded, err := io.ReadAll(gr)
	if err != nil {
		t.Fatalf("reading gzip body: %v", err)
	}
	if !strings.Contains(string(decoded), "compress me please") {
		t.Errorf("decoded body missing expected content: %q", decoded)
	}
	if err := <-done; err != nil {
		t.Fatalf("writeResponse: %v", err)
	}
}

func TestWriteResponseSingleRange(t *testing.T) {
	c, client := newTestConn(t, nil)

	// Range serving only kicks in above the 16 KiB floor (spec §4.5
	// step 4), so the body must be larger than that even though the
	// requested range itself is small.
	data := bytes.Repeat([]byte("0123456789"), 2000) // 20000 bytes
	resp := NewResponse(200)
	resp.Header.Set(hdr.ContentType, "text/plain")
	resp.SetStream(bytes.NewReader(data))

	req := plainRequest()
	req.Header.Set(hdr.Range, "bytes=2-5")

	done := make(chan error, 1)
	go func() { done <- c.writeResponse(req, resp, false) }()

	br := bufio.NewReader(client)
	line, _ := br.ReadString('\n')
	if !strings.HasPrefix(line, "HTTP/1.1 206") {
		t.Fatalf("status line = %q, want 206", line)
	}
	headers := readHeaderLines(t, br)
	if headers[hdr.ContentRange] != "bytes 2-5/20000" {
		t.Errorf("Content-Range = %q", headers[hdr.ContentRange])
	}
	if headers[hdr.ContentLength] != "4" {
		t.Errorf("Content-Length = %q, want 4", headers[hdr.ContentLength])
	}
	body := make([]byte, 4)
	io.ReadFull(br, body)
	if string(body) != "2345" {
		t.Errorf("body = %q, want %q", body, "2345")
	}
	if err := <-done; err != nil {
		t.Fatalf("writeResponse: %v", err)
	}
}

// TestWriteResponseFullRangeFallsBackTo200 covers spec §8's "exactly
// full range falls back to 200" rule.
func TestWriteResponseFullRangeFallsBackTo200(t *testing.T) {
	c, client := newTestConn(t, nil)

	data := bytes.Repeat([]byte("x"), 20000) // above the 16 KiB range-eligibility floor
	resp := NewResponse(200)
	resp.Header.Set(hdr.ContentType, "text/plain")
	resp.SetStream(bytes.NewReader(data))

	req := plainRequest()
	req.Header.Set(hdr.Range, "bytes=0-19999")

	done := make(chan error, 1)
	go func() { done <- c.writeResponse(req, resp, false) }()

	br := bufio.NewReader(client)
	line, _ := br.ReadString('\n')
	if !strings.HasPrefix(line, "HTTP/1.1 200") {
		t.Fatalf("status line = %q, want 200", line)
	}
	headers := readHeaderLines(t, br)
	if _, ok := headers[hdr.ContentRange]; ok {
		t.Errorf("full-range response should not carry Content-Range")
	}
	if err := <-done; err != nil {
		t.Fatalf("writeResponse: %v", err)
	}
}

func TestConnServeSimpleGetOverPipe(t *testing.T) {
	srv := &Server{Hooks: mux.NewTable()}
	if err := srv.Handle(mux.Hook{Protocols: mux.HTTP | mux.HTTPS}, HandlerFunc(func(r *Request) (*Response, error) {
		return BytesResponse([]byte("ok"), "text/plain"), nil
	})); err != nil {
		t.Fatalf("Handle: %v", err)
	}

	server, client := net.Pipe()
	defer server.Close()
	defer client.Close()

	c := srv.newConn(server, false)
	go c.serve()

	if _, err := client.Write([]byte("GET / HTTP/1.1\r\nHost: example.com\r\nConnection: close\r\n\r\n")); err != nil {
		t.Fatalf("writing request: %v", err)
	}

	br := bufio.NewReader(client)
	line, err := br.ReadString('\n')
	if err != nil {
		t.Fatalf("reading status line: %v", err)
	}
	if !strings.HasPrefix(line, "HTTP/1.1 200") {
		t.Fatalf("status line = %q", line)
	}
	headers := readHeaderLines(t, br)
	if headers[hdr.Connection] != "close" {
		t.Errorf("Connection = %q, want close", headers[hdr.Connection])
	}
	body := readAll(t, br)
	if body != "ok" {
		t.Errorf("body = %q, want %q", body, "ok")
	}
}

// readHeaderLines reads CRLF-terminated header lines up to the blank
// line terminator, returning a name->value map (last value wins, good
// enough for these single-valued test headers).
func readHeaderLines(t *testing.T, br *bufio.Reader) map[string]string {
	t.Helper()
	headers := map[string]string{}
	for {
		line, err := br.ReadString('\n')
		if err != nil {
			t.Fatalf("reading header line: %v", err)
		}
		line = strings.TrimRight(line, "\r\n")
		if line == "" {
			return headers
		}
		i := strings.IndexByte(line, ':')
		if i < 0 {
			continue
		}
		headers[line[:i]] = strings.TrimSpace(line[i+1:])
	}
}
