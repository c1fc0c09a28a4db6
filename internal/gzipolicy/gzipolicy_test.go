/*
 * Copyright (c) 2018 The Go Authors. All rights reserved.
 * Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.
 */

package gzipolicy

import (
	"bytes"
	"errors"
	"testing"
)

func sampleFrom(data []byte) func(offset, n int64) ([]byte, error) {
	return func(offset, n int64) ([]byte, error) {
		return data[offset : offset+n], nil
	}
}

func TestDecideClientDoesNotAcceptGzip(t *testing.T) {
	got, err := Decide(Force, false, true, 1000, true, nil, 0, 0)
	if err != nil || got {
		t.Errorf("got (%v, %v), want (false, nil)", got, err)
	}
}

func TestDecideNeverPolicy(t *testing.T) {
	got, err := Decide(Never, true, true, 1000, true, nil, 0, 0)
	if err != nil || got {
		t.Errorf("got (%v, %v), want (false, nil)", got, err)
	}
}

func TestDecideForcePolicy(t *testing.T) {
	got, err := Decide(Force, true, true, 1000, true, nil, 0, 0)
	if err != nil || !got {
		t.Errorf("got (%v, %v), want (true, nil)", got, err)
	}
}

func TestDecideAutoDetectRequiresHTTP11(t *testing.T) {
	got, err := Decide(AutoDetect, true, false, 1000, true, nil, 0, 0)
	if err != nil || got {
		t.Errorf("got (%v, %v), want (false, nil)", got, err)
	}
}

func TestDecideAutoDetectUnknownLengthEncodesOptimistically(t *testing.T) {
	got, err := Decide(AutoDetect, true, true, 0, true, nil, 4096, 1)
	if err != nil || !got {
		t.Errorf("got (%v, %v), want (true, nil)", got, err)
	}
}

func TestDecideAutoDetectBelowThresholdEncodesOptimistically(t *testing.T) {
	got, err := Decide(AutoDetect, true, true, 100, true, nil, 4096, 1)
	if err != nil || !got {
		t.Errorf("got (%v, %v), want (true, nil)", got, err)
	}
}

func TestDecideAutoDetectNonSeekableEncodesOptimistically(t *testing.T) {
	got, err := Decide(AutoDetect, true, true, 100000, false, nil, 4096, 1)
	if err != nil || !got {
		t.Errorf("got (%v, %v), want (true, nil)", got, err)
	}
}

func TestDecideAutoDetectCompressibleSampleEncodes(t *testing.T) {
	data := bytes.Repeat([]byte("aaaaaaaaaa"), 1000)
	got, err := Decide(AutoDetect, true, true, int64(len(data)), true, sampleFrom(data), 4096, 1)
	if err != nil {
		t.Fatalf("Decide: %v", err)
	}
	if !got {
		t.Errorf("got false, want true for highly compressible data")
	}
}

func TestDecideAutoDetectSamplePropagatesError(t *testing.T) {
	wantErr := errors.New("boom")
	_, err := Decide(AutoDetect, true, true, 100000, true, func(offset, n int64) ([]byte, error) {
		return nil, wantErr
	}, 4096, 1)
	if err != wantErr {
		t.Errorf("got %v, want %v", err, wantErr)
	}
}

func TestDecideUnknownPolicyIsFalse(t *testing.T) {
	got, err := Decide(Policy(99), true, true, 1000, true, nil, 0, 0)
	if err != nil || got {
		t.Errorf("got (%v, %v), want (false, nil)", got, err)
	}
}

func TestNewEncoderWritesValidGzipStream(t *testing.T) {
	var buf bytes.Buffer
	w := NewEncoder(&buf)
	if _, err := w.Write([]byte("hello world")); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if buf.Len() == 0 {
		t.Error("expected non-empty gzip output")
	}
}
