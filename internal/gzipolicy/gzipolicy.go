/*
 * Copyright (c) 2018 The Go Authors. All rights reserved.
 * Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.
 */

// Package gzipolicy implements the response gzip policy decision from
// spec §4.3 "Response model (C3)". Gzip/deflate primitives are an
// out-of-scope external collaborator per spec §1; this package binds
// that collaborator to github.com/klauspost/compress/gzip, the
// compression library mined from the rest of the example pack (no
// teacher file defines an equivalent, so this whole package is new).
package gzipolicy

import (
	"bytes"
	"io"

	"github.com/klauspost/compress/gzip"
)

// Policy is one of the three gzip policies a Response can carry.
type Policy int

const (
	// Never never encodes the body with gzip.
	Never Policy = iota
	// Force encodes whenever the client advertised gzip support.
	Force
	// AutoDetect only encodes after a sample trial compression shows a
	// worthwhile size reduction; see Decide.
	AutoDetect
)

// Defaults per spec §6 "Server configuration".
const (
	DefaultAutoDetectThreshold = 4 * 1024
	DefaultReductionPercent    = 1
)

// Decide implements spec §4.3's auto-detect rule: encode only if the
// client advertised gzip, the protocol is HTTP/1.1, and — when length
// is known and >= threshold and the body is seekable — a trial
// compression of a sample taken from the middle of the stream yields
// at least minReductionPercent size reduction.
func Decide(policy Policy, clientAcceptsGzip bool, isHTTP11 bool, knownLength int64, seekable bool, sample func(offset, n int64) ([]byte, error), threshold int64, minReductionPercent int) (bool, error) {
	if !clientAcceptsGzip {
		return false, nil
	}
	switch policy {
	case Never:
		return false, nil
	case Force:
		return true, nil
	case AutoDetect:
		if !isHTTP11 {
			return false, nil
		}
		if knownLength <= 0 || knownLength < threshold || !seekable {
			// Unknown or short or non-seekable bodies: encode
			// optimistically, matching the teacher's "force unless
			// proven unworthwhile" default.
			return true, nil
		}
		// spec §4.3: "a trial compression of a threshold-byte sample" —
		// the configured threshold sizes the sample, not a fixed default.
		sampleSize := threshold
		if sampleSize > knownLength {
			sampleSize = knownLength
		}
		offset := (knownLength - sampleSize) / 2
		buf, err := sample(offset, sampleSize)
		if err != nil {
			return false, err
		}
		reduced, err := trialCompress(buf)
		if err != nil {
			return false, err
		}
		if len(buf) == 0 {
			return false, nil
		}
		savedPercent := 100 * (len(buf) - reduced) / len(buf)
		return savedPercent >= minReductionPercent, nil
	default:
		return false, nil
	}
}

// trialCompress compresses sample at BestSpeed and returns the
// resulting length, used only to estimate a reduction ratio cheaply.
func trialCompress(sample []byte) (int, error) {
	var buf bytes.Buffer
	w, err := gzip.NewWriterLevel(&buf, gzip.BestSpeed)
	if err != nil {
		return 0, err
	}
	if _, err := w.Write(sample); err != nil {
		return 0, err
	}
	if err := w.Close(); err != nil {
		return 0, err
	}
	return buf.Len(), nil
}

// NewEncoder returns a gzip.Writer at the default compression level,
// used for the real (non-trial) encode on the response path. dst is an
// io.Writer rather than *bytes.Buffer so callers can target a pooled
// buffer (e.g. bytebufferpool.ByteBuffer) instead of allocating one.
func NewEncoder(dst io.Writer) *gzip.Writer {
	return gzip.NewWriter(dst)
}

// NewStreamEncoder wraps an arbitrary io.Writer for the streaming
// encode paths (decision-tree steps 7 and 8 in spec §4.5).
func NewStreamEncoder(dst io.Writer) *gzip.Writer {
	return gzip.NewWriter(dst)
}
