/*
 * Copyright (c) 2018 The Go Authors. All rights reserved.
 * Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.
 */

// Package mux implements the hook table (spec §3 "Hook"/"Hook table",
// §4.4). It replaces the teacher's ServeMux entirely: that type matches
// requests against a flat map[string]muxEntry keyed by a single
// pattern string, with longest-prefix-wins as its only ordering rule.
// The hook table here instead holds a six-field Hook record per
// entry and sorts by the six-key total order spec §4.4 defines, so the
// match/insert logic below is new code, grounded only on the shape of
// ServeMux's RWMutex-guarded registration API.
package mux

import (
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"sync"
)

// Protocol is a bit in a Hook's protocol mask.
type Protocol uint8

const (
	HTTP Protocol = 1 << iota
	HTTPS
)

func (p Protocol) bits() int {
	n := 0
	for p != 0 {
		n += int(p & 1)
		p >>= 1
	}
	return n
}

// Hook is an immutable routing record, per spec §3.
type Hook struct {
	Domain         string
	SpecificDomain bool
	Port           int // 0 means "unset" (spec's None)
	Path           string
	SpecificPath   bool
	Protocols      Protocol
}

var domainRe = regexp.MustCompile(`^[a-z0-9.\-]+$`)

// Validate enforces the construction invariants spec §3 lists for Hook.
func (h Hook) Validate() error {
	if h.SpecificDomain && h.Domain == "" {
		return errors.New("mux: specific-domain requires a domain")
	}
	if h.SpecificPath && h.Path == "" {
		return errors.New("mux: specific-path requires a path")
	}
	if h.Domain != "" {
		if !domainRe.MatchString(h.Domain) {
			return fmt.Errorf("mux: invalid domain %q", h.Domain)
		}
		if strings.HasPrefix(h.Domain, ".") || strings.HasSuffix(h.Domain, ".") || strings.Contains(h.Domain, "..") {
			return fmt.Errorf("mux: invalid domain %q", h.Domain)
		}
		if !h.SpecificDomain && strings.HasPrefix(h.Domain, ".") {
			return fmt.Errorf("mux: wildcard domain %q must not start with a dot", h.Domain)
		}
	}
	if h.Path != "" {
		if !strings.HasPrefix(h.Path, "/") {
			return fmt.Errorf("mux: path %q must begin with /", h.Path)
		}
		if !h.SpecificPath && strings.HasSuffix(h.Path, "/") && h.Path != "/" {
			return fmt.Errorf("mux: subtree path %q must not end in /", h.Path)
		}
	}
	if h.Port != 0 && (h.Port < 1 || h.Port > 65535) {
		return fmt.Errorf("mux: port %d out of range", h.Port)
	}
	if h.Protocols == 0 {
		return errors.New("mux: protocol mask must be non-empty")
	}
	return nil
}

// Equal implements the structural comparison spec §4.4 "Equality/hash"
// requires: all six fields, domain compared case-insensitively.
func (h Hook) Equal(o Hook) bool {
	return h.Port == o.Port &&
		strings.EqualFold(h.Domain, o.Domain) &&
		h.SpecificDomain == o.SpecificDomain &&
		h.Path == o.Path &&
		h.SpecificPath == o.SpecificPath &&
		h.Protocols == o.Protocols
}

// Matches implements spec §4.4 "Match".
func (h Hook) Matches(scheme string, host string, port int, path string) bool {
	var want Protocol
	switch strings.ToLower(scheme) {
	case "http":
		want = HTTP
	case "https":
		want = HTTPS
	default:
		return false
	}
	if h.Protocols&want == 0 {
		return false
	}
	if h.Port != 0 && h.Port != port {
		return false
	}
	if h.Domain != "" {
		if h.SpecificDomain {
			if !strings.EqualFold(host, h.Domain) {
				return false
			}
		} else {
			if !strings.EqualFold(host, h.Domain) && !strings.HasSuffix(strings.ToLower(host), "."+strings.ToLower(h.Domain)) {
				return false
			}
		}
	}
	if h.Path != "" {
		if h.SpecificPath {
			if path != h.Path {
				return false
			}
		} else {
			if path != h.Path && !strings.HasPrefix(path, h.Path+"/") {
				return false
			}
		}
	}
	return true
}

// RestURL computes the residual path after stripping the matched
// hook's path prefix, per spec §4.4 "On dispatch".
func (h Hook) RestURL(path string) string {
	if h.Path == "" {
		return path
	}
	if path == h.Path {
		return ""
	}
	return strings.TrimPrefix(path, h.Path)
}

// less implements the six-key total order from spec §4.4.
func less(a, b Hook) bool {
	// 1. port: Some before None; ascending numeric among Some.
	if (a.Port != 0) != (b.Port != 0) {
		return a.Port != 0
	}
	if a.Port != 0 && a.Port != b.Port {
		return a.Port < b.Port
	}
	// 2. specific_domain true before false.
	if a.SpecificDomain != b.SpecificDomain {
		return a.SpecificDomain
	}
	// 3. domain Some before None; longer first; equal length lexicographic.
	if (a.Domain != "") != (b.Domain != "") {
		return a.Domain != ""
	}
	if a.Domain != "" && len(a.Domain) != len(b.Domain) {
		return len(a.Domain) > len(b.Domain)
	}
	if a.Domain != "" && a.Domain != b.Domain {
		return strings.ToLower(a.Domain) < strings.ToLower(b.Domain)
	}
	// 4. specific_path true before false.
	if a.SpecificPath != b.SpecificPath {
		return a.SpecificPath
	}
	// 5. path Some before None; longer first; equal length lexicographic.
	if (a.Path != "") != (b.Path != "") {
		return a.Path != ""
	}
	if a.Path != "" && len(a.Path) != len(b.Path) {
		return len(a.Path) > len(b.Path)
	}
	if a.Path != "" && a.Path != b.Path {
		return a.Path < b.Path
	}
	// 6. narrower protocol mask (fewer bits) first.
	return a.Protocols.bits() < b.Protocols.bits()
}

// entry couples a Hook with its handler in the table. The handler is
// kept as an opaque value: this package is a dependency leaf (C4) and
// must not know about the Request/Response types the connection
// engine (C5) builds on top of it. Callers type-assert the value back
// to their own handler interface.
type entry struct {
	hook    Hook
	handler interface{}
}

// Table is the ordered hook table described by spec §3/§4.4.
type Table struct {
	mu      sync.RWMutex
	entries []entry
}

// NewTable returns an empty hook table.
func NewTable() *Table {
	return &Table{}
}

// Register adds hook -> handler, rejecting malformed or duplicate
// hooks, and keeps the slice sorted in the spec's total order.
func (t *Table) Register(hook Hook, handler interface{}) error {
	if err := hook.Validate(); err != nil {
		return err
	}
	if handler == nil {
		return errors.New("mux: nil handler")
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, e := range t.entries {
		if e.hook.Equal(hook) {
			return fmt.Errorf("mux: duplicate hook %+v", hook)
		}
	}
	t.entries = append(t.entries, entry{hook: hook, handler: handler})
	sort.SliceStable(t.entries, func(i, j int) bool { return less(t.entries[i].hook, t.entries[j].hook) })
	return nil
}

// Resolve scans the table in order and returns the first matching
// handler along with the computed rest-URL, per spec §4.4 "Dispatch".
func (t *Table) Resolve(scheme, host string, port int, path string) (interface{}, string, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	for _, e := range t.entries {
		if e.hook.Matches(scheme, host, port, path) {
			return e.handler, e.hook.RestURL(path), true
		}
	}
	return nil, "", false
}

// Len reports the number of registered hooks, mainly for tests.
func (t *Table) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.entries)
}
