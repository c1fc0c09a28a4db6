/*
 * Copyright (c) 2018 The Go Authors. All rights reserved.
 * Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.
 */

package url

import "strings"

// Get returns the first value associated with key, or "" if none.
func (v Values) Get(key string) string {
	vs := v[key]
	if len(vs) == 0 {
		return ""
	}
	return vs[0]
}

// Add appends value to key's list.
func (v Values) Add(key, value string) { v[key] = append(v[key], value) }

// Set replaces key's list with a single value.
func (v Values) Set(key, value string) { v[key] = []string{value} }

// Del removes key from v.
func (v Values) Del(key string) { delete(v, key) }

// ParseQuery parses a URL-encoded "key=value&key2=value2" string into
// Values. Per spec §4.2 "query_all", a key ending in "[]" merges under
// the name with the suffix stripped. Pairs that fail to unescape are
// skipped; the first such error is returned alongside the values
// parsed from the other pairs.
func ParseQuery(query string) (Values, error) {
	v := make(Values)
	var firstErr error
	for query != "" {
		var pair string
		if i := strings.IndexAny(query, "&;"); i >= 0 {
			pair, query = query[:i], query[i+1:]
		} else {
			pair, query = query, ""
		}
		if pair == "" {
			continue
		}
		key := pair
		value := ""
		if i := strings.IndexByte(pair, '='); i >= 0 {
			key, value = pair[:i], pair[i+1:]
		}
		key, err := QueryUnescape(key)
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		value, err = QueryUnescape(value)
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		key = strings.TrimSuffix(key, "[]")
		v.Add(key, value)
	}
	return v, firstErr
}

// Encode serializes v into "key=value&key2=value2" form, sorted by key
// for determinism.
func (v Values) Encode() string {
	if len(v) == 0 {
		return ""
	}
	var b strings.Builder
	keys := make([]string, 0, len(v))
	for k := range v {
		keys = append(keys, k)
	}
	sortStrings(keys)
	for _, k := range keys {
		ke := QueryEscape(k)
		for _, val := range v[k] {
			if b.Len() > 0 {
				b.WriteByte('&')
			}
			b.WriteString(ke)
			b.WriteByte('=')
			b.WriteString(QueryEscape(val))
		}
	}
	return b.String()
}

func sortStrings(s []string) {
	for i := 1; i < len(s); i++ {
		for j := i; j > 0 && s[j-1] > s[j]; j-- {
			s[j-1], s[j] = s[j], s[j-1]
		}
	}
}
