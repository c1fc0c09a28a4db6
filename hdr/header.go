/*
 * Copyright (c) 2018 The Go Authors. All rights reserved.
 * Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.
 */

package hdr

import (
	"io"
	"sort"
	"strings"
)

// Add appends value to key's list, canonicalizing key first.
func (h Header) Add(key, value string) {
	h[CanonicalHeaderKey(key)] = append(h[CanonicalHeaderKey(key)], value)
}

// Set replaces key's list with a single value.
func (h Header) Set(key, value string) {
	h[CanonicalHeaderKey(key)] = []string{value}
}

// Get returns the first value for key, or "" if absent.
func (h Header) Get(key string) string {
	if h == nil {
		return ""
	}
	v := h[CanonicalHeaderKey(key)]
	if len(v) == 0 {
		return ""
	}
	return v[0]
}

// Values returns all values for key, in the order they were added.
func (h Header) Values(key string) []string {
	if h == nil {
		return nil
	}
	return h[CanonicalHeaderKey(key)]
}

// Del removes all values for key.
func (h Header) Del(key string) { delete(h, CanonicalHeaderKey(key)) }

// Clone returns a deep copy of h.
func (h Header) Clone() Header {
	h2 := make(Header, len(h))
	for k, vv := range h {
		vv2 := make([]string, len(vv))
		copy(vv2, vv)
		h2[k] = vv2
	}
	return h2
}

// Write serializes h in wire format (CRLF-terminated lines, sorted by
// key for determinism), excluding any key in exclude.
func (h Header) Write(w io.Writer, exclude map[string]bool) error {
	hs := headerSorterPool.Get().(*headerSorter)
	defer headerSorterPool.Put(hs)
	if cap(hs.kvs) < len(h) {
		hs.kvs = make([]keyValues, 0, len(h))
	}
	kvs := hs.kvs[:0]
	for k, vv := range h {
		if exclude == nil || !exclude[k] {
			kvs = append(kvs, keyValues{k, vv})
		}
	}
	hs.kvs = kvs
	sort.Sort(hs)

	for _, kv := range kvs {
		for _, v := range kv.values {
			v = crlfToSpace.Replace(v)
			v = TrimString(v)
			if _, err := io.WriteString(w, kv.key); err != nil {
				return err
			}
			if _, err := io.WriteString(w, ": "); err != nil {
				return err
			}
			if _, err := io.WriteString(w, v); err != nil {
				return err
			}
			if _, err := io.WriteString(w, "\r\n"); err != nil {
				return err
			}
		}
	}
	return nil
}

var crlfToSpace = strings.NewReplacer("\n", " ", "\r", " ")
