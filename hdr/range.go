/*
 * Copyright (c) 2018 The Go Authors. All rights reserved.
 * Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.
 */

package hdr

import (
	"strconv"
	"strings"
)

// RangeSpec is one comma-separated element of a Range header: "N-M",
// "N-" (from N to end), or "-M" (last M bytes). A nil pointer denotes
// an absent bound.
type RangeSpec struct {
	From *int64
	To   *int64
}

// ParseRange implements spec §4.1 "Range parsing". The header must
// have the literal prefix "bytes=". Any malformed spec causes the
// whole header to be ignored (nil, not an error) rather than
// rejecting the request.
func ParseRange(header string) []RangeSpec {
	const prefix = "bytes="
	if !strings.HasPrefix(header, prefix) {
		return nil
	}
	rest := header[len(prefix):]
	parts := strings.Split(rest, ",")
	specs := make([]RangeSpec, 0, len(parts))
	for _, p := range parts {
		p = TrimString(p)
		dash := strings.IndexByte(p, '-')
		if dash < 0 {
			return nil
		}
		fromStr, toStr := p[:dash], p[dash+1:]
		var spec RangeSpec
		if fromStr == "" {
			if toStr == "" {
				return nil
			}
			to, err := strconv.ParseInt(toStr, 10, 64)
			if err != nil || to < 0 {
				return nil
			}
			spec.To = &to
		} else {
			from, err := strconv.ParseInt(fromStr, 10, 64)
			if err != nil || from < 0 {
				return nil
			}
			spec.From = &from
			if toStr != "" {
				to, err := strconv.ParseInt(toStr, 10, 64)
				if err != nil || to < from {
					return nil
				}
				spec.To = &to
			}
		}
		specs = append(specs, spec)
	}
	if len(specs) == 0 {
		return nil
	}
	return specs
}
