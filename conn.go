/*
 * Copyright (c) 2018 The Go Authors. All rights reserved.
 * Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.
 */

package webd

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"net"
	stdhttp "net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/valyala/bytebufferpool"

	"github.com/hookserver/webd/chunks"
	"github.com/hookserver/webd/cookie"
	"github.com/hookserver/webd/hdr"
	"github.com/hookserver/webd/internal/gzipolicy"
	"github.com/hookserver/webd/internal/log"
	"github.com/hookserver/webd/mime"
	urlpkg "github.com/hookserver/webd/url"
)

// ErrLineTooLong mirrors the teacher's error for an oversized
// request/status line.
var ErrLineTooLong = errors.New("webd: header line too long")

// conn is one accepted socket's state machine, per spec §4.5
// "Connection engine (C5)". It is grounded on the teacher's conn.go
// accept-loop-plus-serve shape, but the body is rewritten entirely
// around this module's Request/Response models and response framing
// decision tree rather than net/http's.
type conn struct {
	rwc      net.Conn
	server   *Server
	remoteIP string
	state    connState
	logger   log.Logger
	isTLS    bool

	br *bufio.Reader
	bw *bufio.Writer
}

// newConn wraps an accepted socket. isTLS records which of the
// server's (up to two, per spec §4.6) listeners accepted it, since a
// single Server may serve both a plaintext and a TLS socket at once.
func (s *Server) newConn(rwc net.Conn, isTLS bool) *conn {
	host, _, _ := net.SplitHostPort(rwc.RemoteAddr().String())
	return &conn{
		rwc:      rwc,
		server:   s,
		remoteIP: host,
		logger:   s.Logger,
		isTLS:    isTLS,
		br:       bufio.NewReaderSize(rwc, 4096),
		bw:       bufio.NewWriterSize(rwc, 4096),
	}
}

// serve runs the state machine for the lifetime of the connection,
// per spec §4.5 "States":
// READING_HEADERS -> PARSED -> READING_BODY -> DISPATCH ->
// WRITING_RESPONSE -> {KEEP_ALIVE -> READING_HEADERS | CLOSED}.
func (c *conn) serve() {
	defer func() {
		if rec := recover(); rec != nil && c.server.Debug {
			panic(rec)
		}
		c.rwc.Close()
	}()

	c.server.stats.onAccept()
	for {
		c.state = stateReadingHeaders
		if c.server.IdleTimeout > 0 {
			c.rwc.SetReadDeadline(time.Now().Add(c.server.IdleTimeout))
		}

		block, err := c.readHeaderBlock()
		if err != nil {
			// Socket/IO error or oversized header block: close
			// silently, per spec §4.5 "Header read" and §7.
			return
		}

		c.server.stats.onHandlerStart()
		keepAlive := c.handleOne(block)
		c.server.stats.onHandlerEnd()

		if !keepAlive {
			return
		}
		c.rwc.SetReadDeadline(time.Time{})
		if c.server.isShuttingDown() {
			// Stop has marked this connection "do not keep alive".
			return
		}
		c.server.stats.onKeepAliveIdle()
		_, err = c.br.Peek(1)
		c.server.stats.onKeepAliveResumed()
		if err != nil {
			return
		}
	}
}

// readHeaderBlock accumulates bytes up to the first CRLFCRLF, per
// spec §4.5 "Header read": bytes read past the terminator are left
// buffered in c.br for the body phase to consume.
func (c *conn) readHeaderBlock() ([]byte, error) {
	var buf bytes.Buffer
	maxHeaders := c.server.MaxHeaderBytes
	if maxHeaders <= 0 {
		maxHeaders = DefaultMaxHeaderBytes
	}
	for {
		b, err := c.br.ReadByte()
		if err != nil {
			return nil, err
		}
		buf.WriteByte(b)
		if buf.Len() > maxHeaders {
			return nil, ErrLineTooLong
		}
		if buf.Len() >= 4 && bytes.HasSuffix(buf.Bytes(), []byte("\r\n\r\n")) {
			return buf.Bytes(), nil
		}
	}
}

// handleOne parses, dispatches, and responds to a single request
// using the already-read header block. It returns whether the
// connection should stay open for another request.
func (c *conn) handleOne(block []byte) (keepAlive bool) {
	req, perr := c.parseRequest(block)
	c.state = statePARSED
	if perr != nil {
		c.writeErrorResponse(perr)
		return false
	}

	c.state = stateReadingBody
	if err := c.readBody(req); err != nil {
		c.writeErrorResponse(err)
		return false
	}

	c.state = stateDispatch
	resp := c.dispatch(req)

	useKeepAlive := req.Proto.atLeast11() &&
		!strings.EqualFold(req.Header.Get(hdr.Connection), "close") &&
		!strings.EqualFold(resp.Header.Get(hdr.Connection), "close")

	c.state = stateWritingResponse
	if err := c.writeResponse(req, resp, useKeepAlive); err != nil {
		useKeepAlive = false
	}
	c.cleanupUploads(req)
	resp.runCleanup()

	return useKeepAlive
}

// parseRequest implements spec §4.5 "Request-line parse" and header
// parsing.
func (c *conn) parseRequest(block []byte) (*Request, *parseError) {
	nl := bytes.IndexByte(block, '\n')
	if nl < 0 {
		return nil, &parseError{status: 400, msg: "missing request line"}
	}
	line := strings.TrimRight(string(block[:nl]), "\r\n")
	parts := strings.SplitN(line, " ", 3)
	if len(parts) != 3 {
		return nil, &parseError{status: 400, msg: "malformed request line"}
	}
	method, target, proto := parts[0], parts[1], parts[2]

	var m Method
	switch method {
	case "GET":
		m = MethodGet
	case "HEAD":
		m = MethodHead
	case "POST":
		m = MethodPost
	default:
		return nil, &parseError{status: 501, msg: "unknown method"}
	}

	major, minor, ok := parseHTTPVersion(proto)
	if !ok {
		return nil, &parseError{status: 505, msg: "unknown version"}
	}

	u, err := urlpkg.ParseRequestTarget(target)
	if err != nil {
		return nil, &parseError{status: 400, msg: "malformed request target"}
	}

	h, err := hdr.ParseHeaderBlock(block[nl+1:])
	if err != nil {
		return nil, &parseError{status: 400, msg: "malformed header block"}
	}

	host := h.Get(hdr.Host)
	if u.Host != "" {
		host = u.Host
	} else if host == "" && major == 1 && minor >= 1 {
		return nil, &parseError{status: 400, msg: "missing Host header"}
	}
	if hostOnly, port, splitErr := urlpkg.SplitHostPort(host); splitErr == nil {
		u.Host = hostOnly
		if port != "" {
			u.Port = port
		}
	} else {
		u.Host = host
	}

	req := &Request{
		Method:     m,
		Proto:      Protocol{Major: major, Minor: minor},
		URL:        u,
		Header:     h,
		RemoteAddr: c.remoteIP,
		TLS:        c.isTLS,
	}
	if cl := h.Get(hdr.ContentLength); cl != "" {
		if n, err := strconv.ParseInt(cl, 10, 64); err == nil {
			req.ContentLength = n
		}
	}
	return req, nil
}

func parseHTTPVersion(proto string) (major, minor int, ok bool) {
	switch proto {
	case "HTTP/1.0":
		return 1, 0, true
	case "HTTP/1.1":
		return 1, 1, true
	default:
		return 0, 0, false
	}
}

type parseError struct {
	status int
	msg    string
}

func (e *parseError) Error() string { return fmt.Sprintf("webd: %d %s", e.status, e.msg) }

// readBody implements spec §4.5 "Body read".
func (c *conn) readBody(req *Request) error {
	if req.Method != MethodPost {
		return nil
	}
	ct := req.Header.Get(hdr.ContentType)

	if exp := req.Header.Get(hdr.Expect); exp != "" {
		if !strings.EqualFold(exp, "100-continue") {
			return &parseError{status: 417, msg: "unsupported Expect token"}
		}
		if _, err := c.bw.WriteString("HTTP/1.1 100 Continue\r\n\r\n"); err != nil {
			return err
		}
		if err := c.bw.Flush(); err != nil {
			return err
		}
	}

	clHeader := req.Header.Get(hdr.ContentLength)
	if clHeader == "" {
		// No declared body length. Per HTTP framing rules this means a
		// zero-length body, except this engine does not decode chunked
		// request bodies, so a body-bearing content type with no
		// Content-Length cannot be served safely: the engine can't tell
		// where the body ends and would otherwise dispatch immediately
		// while the client's bytes still sit unread on the wire,
		// corrupting the next request parsed off this connection. Spec
		// §4.5 calls for 411 in that case.
		if ct == "" {
			return nil
		}
		if !strings.HasPrefix(ct, "application/x-www-form-urlencoded") && !strings.HasPrefix(ct, "multipart/form-data") {
			return &parseError{status: 400, msg: "unsupported content type"}
		}
		return &parseError{status: 411, msg: "missing Content-Length"}
	}
	n, err := strconv.ParseInt(clHeader, 10, 64)
	if err != nil || n < 0 {
		return &parseError{status: 400, msg: "invalid Content-Length"}
	}
	req.ContentLength = n
	if n == 0 {
		return nil
	}
	maxBody := c.server.MaxBodyBytes
	if maxBody <= 0 {
		maxBody = DefaultStoreThreshold * 4
	}
	if req.ContentLength > maxBody {
		return &parseError{status: 413, msg: "body too large"}
	}
	if ct == "" {
		ct = "application/x-www-form-urlencoded"
	}
	if !strings.HasPrefix(ct, "application/x-www-form-urlencoded") && !strings.HasPrefix(ct, "multipart/form-data") {
		return &parseError{status: 400, msg: "unsupported content type"}
	}

	storeThreshold := c.server.StoreThreshold
	if storeThreshold <= 0 {
		storeThreshold = DefaultStoreThreshold
	}

	if strings.HasPrefix(ct, "multipart/form-data") {
		return c.readMultipartBody(req, ct)
	}

	if req.ContentLength <= storeThreshold {
		buf := make([]byte, req.ContentLength)
		if _, err := io.ReadFull(c.br, buf); err != nil {
			return err
		}
		req.bodyBytes = buf
		return nil
	}
	return c.streamToTempFile(req, io.LimitReader(c.br, req.ContentLength))
}

func (c *conn) streamToTempFile(req *Request, r io.Reader) error {
	dir := c.server.TempDir
	if dir == "" {
		dir = os.TempDir()
	}
	name := filepath.Join(dir, "webd-body-"+uuid.NewString())
	f, err := os.Create(name)
	if err != nil {
		return err
	}
	defer f.Close()
	if _, err := io.Copy(f, r); err != nil {
		os.Remove(name)
		return err
	}
	req.bodyTmpFile = name
	return nil
}

// readMultipartBody implements spec §4.5 "Multipart parsing": each
// part's body goes to memory if it has no filename, else to a temp
// file with a FileUpload record under the field name.
func (c *conn) readMultipartBody(req *Request, ct string) error {
	_, params, err := mime.MIMEParseMediaType(ct)
	if err != nil {
		return &parseError{status: 400, msg: "malformed content type"}
	}
	boundary := params["boundary"]
	if boundary == "" || len(boundary) > maxPostBoundaryLen {
		// Malformed boundary: ignore the body entirely, per spec
		// §4.5 "Boundary length > 1024 bytes -> malformed; ignore the
		// body."
		io.CopyN(io.Discard, c.br, req.ContentLength)
		return nil
	}

	lr := io.LimitReader(c.br, req.ContentLength)
	mr := mime.NewReader(lr, boundary)
	form := urlpkg.Values{}
	files := map[string][]*FileUpload{}

	storeThreshold := c.server.StoreThreshold
	if storeThreshold <= 0 {
		storeThreshold = DefaultStoreThreshold
	}

	for {
		part, err := mr.NextPart()
		if err == io.EOF {
			break
		}
		if err != nil {
			return &parseError{status: 400, msg: "malformed multipart body"}
		}
		name, filename := part.FormName(), part.FileName()
		if filename == "" {
			data, err := io.ReadAll(io.LimitReader(part, storeThreshold+1))
			if err != nil {
				return err
			}
			form.Add(name, string(data))
			continue
		}
		upload := &FileUpload{FieldName: name, Filename: filename, ContentType: part.Header.Get(hdr.ContentType)}
		data, err := io.ReadAll(io.LimitReader(part, storeThreshold+1))
		if err != nil {
			return err
		}
		if int64(len(data)) <= storeThreshold {
			upload.ContentInMemory = data
		} else {
			rest := io.MultiReader(bytes.NewReader(data), part)
			if err := c.streamUploadToTempFile(upload, rest); err != nil {
				return err
			}
		}
		files[name] = append(files[name], upload)
	}
	req.form = form
	req.files = files
	return nil
}

func (c *conn) streamUploadToTempFile(u *FileUpload, r io.Reader) error {
	dir := c.server.TempDir
	if dir == "" {
		dir = os.TempDir()
	}
	name := filepath.Join(dir, "webd-upload-"+uuid.NewString())
	f, err := os.Create(name)
	if err != nil {
		return err
	}
	defer f.Close()
	if _, err := io.Copy(f, r); err != nil {
		os.Remove(name)
		return err
	}
	u.TempFilePath = name
	return nil
}

func (c *conn) cleanupUploads(req *Request) {
	if req.bodyTmpFile != "" {
		os.Remove(req.bodyTmpFile)
	}
	for _, ups := range req.files {
		for _, u := range ups {
			if u.TempFilePath != "" && !u.moved {
				os.Remove(u.TempFilePath)
			}
		}
	}
}

// dispatch implements spec §4.5 "Dispatch".
func (c *conn) dispatch(req *Request) *Response {
	scheme := "http"
	if req.TLS {
		scheme = "https"
	}
	port := c.server.Port
	if req.TLS {
		port = c.server.SecurePort
	}
	h, rest, ok := c.server.Hooks.Resolve(scheme, req.URL.Host, port, req.URL.Path)
	if !ok {
		return c.notFound()
	}
	req.RestURL = rest
	handler, ok := h.(Handler)
	if !ok {
		return c.serverError(req, errors.New("webd: registered hook value is not a Handler"))
	}
	resp, err := c.invoke(handler, req)
	if err != nil {
		return c.handleDispatchError(req, err)
	}
	if resp == nil {
		return c.handleDispatchError(req, ErrHandlerReturnedNil)
	}
	return resp
}

func (c *conn) invoke(handler Handler, req *Request) (resp *Response, err error) {
	if !c.server.Debug {
		defer func() {
			if rec := recover(); rec != nil {
				err = fmt.Errorf("webd: handler panic: %v", rec)
			}
		}()
	}
	return handler.Handle(req)
}

func (c *conn) handleDispatchError(req *Request, err error) *Response {
	if c.server.ErrorHandler != nil {
		resp, herr := c.server.ErrorHandler.HandleError(req, err)
		if herr != nil {
			combined := log.CombineHandlerErrors(err, herr)
			return c.serverError(req, combined)
		}
		if resp != nil {
			return resp
		}
	}
	var se *StatusError
	if errors.As(err, &se) {
		return c.statusResponse(se.Status, se.Message)
	}
	return c.serverError(req, err)
}

func (c *conn) notFound() *Response {
	return c.statusResponse(404, "not found")
}

func (c *conn) serverError(req *Request, err error) *Response {
	msg := "internal server error"
	if c.server.OutputExceptionInformation {
		msg = err.Error()
	}
	if c.logger != nil {
		c.logger.Errorf("handler error: %v", err)
	}
	return c.statusResponse(500, msg)
}

func (c *conn) statusResponse(status int, message string) *Response {
	resp := NewResponse(status)
	if !mustNotHaveBody(status) {
		resp.Header.Set(hdr.ContentType, "text/plain; charset=utf-8")
		resp.SetBuffer([]byte(message))
	}
	return resp
}

func (c *conn) writeErrorResponse(err error) {
	var pe *parseError
	status := 400
	msg := "bad request"
	if errors.As(err, &pe) {
		status = pe.status
		msg = pe.msg
	}
	resp := c.statusResponse(status, msg)
	resp.Header.Set(hdr.Connection, "close")
	c.writeResponse(&Request{Proto: Protocol{1, 1}, Header: hdr.Header{}}, resp, false)
}

// gzipClientAccepts reports whether the request's Accept-Encoding
// permits gzip, honoring the q=0 veto (spec §9).
func gzipClientAccepts(req *Request) bool {
	return hdr.AcceptsEncoding(req.Header.Get(hdr.AcceptEncoding), "gzip")
}

func cookieHeaderValues(cookies []*cookie.Cookie) []string {
	out := make([]string, 0, len(cookies))
	for _, c := range cookies {
		if s := c.String(); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// writeResponse implements spec §4.5's "Response framing decision
// tree" in full, including byte-range and gzip handling.
func (c *conn) writeResponse(req *Request, resp *Response, keepAlive bool) error {
	h := resp.Header.Clone()
	if len(resp.Cookies) > 0 {
		h[hdr.SetCookie] = cookieHeaderValues(resp.Cookies)
	}
	if h.Get(hdr.Date) == "" {
		h.Set(hdr.Date, hdr.FormatTime(time.Now()))
	}

	if mustNotHaveBody(resp.Status) {
		h.Del(hdr.ContentLength)
		h.Del(hdr.ContentType)
		if keepAlive && resp.Status != 304 {
			h.Set(hdr.ContentLength, "0")
		}
		if !keepAlive {
			h.Set(hdr.Connection, "close")
		} else {
			h.Set(hdr.Connection, "keep-alive")
		}
		if err := c.writeStatusAndHeaders(req, resp.Status, h); err != nil {
			return err
		}
		return c.bw.Flush()
	}

	// Per spec §3: when a handler-set Content-Length disagrees with the
	// body provider's own known length, the engine uses the body
	// provider's length (it's what streamBody/writeRangeResponse
	// actually send) and logs the discrepancy rather than silently
	// trusting the header.
	length, lengthKnown := resp.knownLength()
	if cl := h.Get(hdr.ContentLength); cl != "" {
		if n, err := strconv.ParseInt(cl, 10, 64); err == nil {
			if lengthKnown && n != length {
				if c.server.Logger != nil {
					c.server.Logger.Warnf("response Content-Length %d disagrees with body length %d; using body length", n, length)
				}
			} else if !lengthKnown {
				length, lengthKnown = n, true
			}
		}
	}

	// Step 4: byte-range serving.
	if resp.Status == 200 && req.Proto.atLeast11() && lengthKnown && length > 16*1024 && resp.seekable() {
		if rh := req.Header.Get(hdr.Range); rh != "" {
			if specs := hdr.ParseRange(rh); specs != nil {
				if ranges := canonicalizeRanges(specs, length); len(ranges) > 0 {
					return c.writeRangeResponse(req, resp, h, ranges, length, keepAlive)
				}
			}
		}
	}

	// Steps 5-10: gzip + framing decision.
	useGzip, _ := gzipolicy.Decide(
		resp.GzipPolicy,
		gzipClientAccepts(req),
		req.Proto.atLeast11(),
		length,
		resp.seekable(),
		func(offset, n int64) ([]byte, error) { return c.sampleBody(resp, offset, n) },
		c.server.gzipAutoThreshold(),
		gzipolicy.DefaultReductionPercent,
	)

	if keepAlive {
		h.Set(hdr.Connection, "keep-alive")
	} else {
		h.Set(hdr.Connection, "close")
	}

	gzipMemLimit := c.server.gzipMemoryLimit()

	switch {
	case useGzip && lengthKnown && length < gzipMemLimit:
		body, err := c.materializeBody(resp)
		if err != nil {
			return err
		}
		buf := bufPool.Get()
		defer bufPool.Put(buf)
		gw := gzipolicy.NewEncoder(buf)
		gw.Write(body)
		gw.Close()
		h.Set(hdr.ContentEncoding, "gzip")
		h.Set(hdr.ContentLength, strconv.Itoa(buf.Len()))
		if err := c.writeStatusAndHeaders(req, resp.Status, h); err != nil {
			return err
		}
		if req.Method == MethodHead {
			return c.bw.Flush()
		}
		c.bw.Write(buf.Bytes())
		return c.bw.Flush()

	case useGzip && !keepAlive:
		h.Del(hdr.ContentLength)
		h.Set(hdr.ContentEncoding, "gzip")
		if err := c.writeStatusAndHeaders(req, resp.Status, h); err != nil {
			return err
		}
		if req.Method == MethodHead {
			return c.bw.Flush()
		}
		gw := gzipolicy.NewStreamEncoder(c.bw)
		if err := c.streamBody(resp, gw); err != nil {
			return err
		}
		gw.Close()
		return c.bw.Flush()

	case useGzip && keepAlive:
		h.Del(hdr.ContentLength)
		h.Set(hdr.TransferEncoding, "chunked")
		h.Set(hdr.ContentEncoding, "gzip")
		if err := c.writeStatusAndHeaders(req, resp.Status, h); err != nil {
			return err
		}
		if req.Method == MethodHead {
			return c.bw.Flush()
		}
		cw := chunks.NewWriter(c.bw)
		gw := gzipolicy.NewStreamEncoder(cw)
		if err := c.streamBody(resp, gw); err != nil {
			return err
		}
		gw.Close()
		cw.Close()
		return c.bw.Flush()

	case keepAlive && !lengthKnown:
		h.Set(hdr.TransferEncoding, "chunked")
		if err := c.writeStatusAndHeaders(req, resp.Status, h); err != nil {
			return err
		}
		if req.Method == MethodHead {
			return c.bw.Flush()
		}
		cw := chunks.NewWriter(c.bw)
		if err := c.streamBody(resp, cw); err != nil {
			return err
		}
		cw.Close()
		return c.bw.Flush()

	default:
		if lengthKnown {
			h.Set(hdr.ContentLength, strconv.FormatInt(length, 10))
		}
		if err := c.writeStatusAndHeaders(req, resp.Status, h); err != nil {
			return err
		}
		if req.Method == MethodHead {
			return c.bw.Flush()
		}
		if err := c.streamBody(resp, c.bw); err != nil {
			return err
		}
		return c.bw.Flush()
	}
}

func (c *conn) writeRangeResponse(req *Request, resp *Response, h hdr.Header, ranges []byteRange, total int64, keepAlive bool) error {
	contentType := h.Get(hdr.ContentType)
	if keepAlive {
		h.Set(hdr.Connection, "keep-alive")
	} else {
		h.Set(hdr.Connection, "close")
	}

	if len(ranges) == 1 && ranges[0].length() == total {
		// Single range spanning the full content: falls back to 200,
		// per spec §8 "falls back to 200".
		h.Set(hdr.ContentLength, strconv.FormatInt(total, 10))
		if err := c.writeStatusAndHeaders(req, 200, h); err != nil {
			return err
		}
		if req.Method == MethodHead {
			return c.bw.Flush()
		}
		if err := c.streamBody(resp, c.bw); err != nil {
			return err
		}
		return c.bw.Flush()
	}

	if len(ranges) == 1 {
		r := ranges[0]
		h.Set(hdr.ContentRange, r.contentRange(total))
		h.Set(hdr.ContentLength, strconv.FormatInt(r.length(), 10))
		if err := c.writeStatusAndHeaders(req, 206, h); err != nil {
			return err
		}
		if req.Method == MethodHead {
			return c.bw.Flush()
		}
		if err := c.streamRange(resp, r, c.bw); err != nil {
			return err
		}
		return c.bw.Flush()
	}

	boundary, err := randomBoundary()
	if err != nil {
		return err
	}
	h.Del(hdr.ContentType)
	h.Set(hdr.ContentType, "multipart/byteranges; boundary="+boundary)
	h.Set(hdr.ContentLength, strconv.FormatInt(multipartByterangesLength(ranges, boundary, contentType, total), 10))
	if err := c.writeStatusAndHeaders(req, 206, h); err != nil {
		return err
	}
	if req.Method == MethodHead {
		return c.bw.Flush()
	}
	for _, r := range ranges {
		fmt.Fprintf(c.bw, "--%s\r\n%s", boundary, partHeader(r, contentType, total))
		if err := c.streamRange(resp, r, c.bw); err != nil {
			return err
		}
		c.bw.WriteString("\r\n")
	}
	fmt.Fprintf(c.bw, "--%s--\r\n", boundary)
	return c.bw.Flush()
}

func (c *conn) writeStatusAndHeaders(req *Request, status int, h hdr.Header) error {
	if _, err := fmt.Fprintf(c.bw, "%s %d %s\r\n", req.Proto.String(), status, stdhttp.StatusText(status)); err != nil {
		return err
	}
	if h.Get(hdr.Server) == "" {
		h.Set(hdr.Server, "webd")
	}
	if err := h.Write(c.bw, nil); err != nil {
		return err
	}
	_, err := c.bw.WriteString("\r\n")
	return err
}

// bufPool recycles the scratch buffers used to materialize a full
// response body in memory ahead of gzip-encoding it, per spec §4.5
// step 9's in-memory gzip branch.
var bufPool bytebufferpool.Pool

func (c *conn) materializeBody(resp *Response) ([]byte, error) {
	buf := bufPool.Get()
	defer bufPool.Put(buf)
	if err := c.streamBody(resp, buf); err != nil {
		return nil, err
	}
	out := make([]byte, buf.Len())
	copy(out, buf.Bytes())
	return out, nil
}

func (c *conn) streamBody(resp *Response, w io.Writer) error {
	if err := resp.takeInvocation(); err != nil {
		return err
	}
	switch resp.kind {
	case bodyEmpty:
		return nil
	case bodyBuffer:
		_, err := w.Write(resp.buffer)
		return err
	case bodyStream:
		resp.stream.Seek(0, io.SeekStart)
		_, err := io.Copy(w, resp.stream)
		return err
	case bodyProducer:
		for {
			chunk, err := resp.prod()
			if err == io.EOF {
				return nil
			}
			if err != nil {
				return err
			}
			if _, err := w.Write(chunk); err != nil {
				return err
			}
		}
	}
	return nil
}

func (c *conn) streamRange(resp *Response, r byteRange, w io.Writer) error {
	if resp.kind != bodyStream {
		return errors.New("webd: range response requires a seekable body")
	}
	if _, err := resp.stream.Seek(r.start, io.SeekStart); err != nil {
		return err
	}
	_, err := io.CopyN(w, resp.stream, r.length())
	return err
}

func (c *conn) sampleBody(resp *Response, offset, n int64) ([]byte, error) {
	if resp.kind != bodyStream {
		return nil, errors.New("webd: cannot sample a non-seekable body")
	}
	if _, err := resp.stream.Seek(offset, io.SeekStart); err != nil {
		return nil, err
	}
	buf := make([]byte, n)
	rn, err := io.ReadFull(resp.stream, buf)
	resp.stream.Seek(0, io.SeekStart)
	if err != nil && err != io.ErrUnexpectedEOF {
		return nil, err
	}
	return buf[:rn], nil
}

func (s *Server) gzipAutoThreshold() int64 {
	if s.GzipAutodetectThreshold > 0 {
		return s.GzipAutodetectThreshold
	}
	return DefaultGzipAutoThreshold
}

func (s *Server) gzipMemoryLimit() int64 {
	if s.GzipInMemoryUpToSize > 0 {
		return s.GzipInMemoryUpToSize
	}
	return DefaultGzipMemoryLimit
}
