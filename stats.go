/*
 * Copyright (c) 2018 The Go Authors. All rights reserved.
 * Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.
 */

package webd

import "sync/atomic"

// Stats holds the atomically-updated counters spec §4.7 "Statistics
// (C7)" defines: total accepted connections, active handler count
// (excluding those idle in keep-alive), and keep-alive idle count.
type Stats struct {
	totalAccepted   int64
	activeHandlers  int64
	keepAliveIdle   int64
}

func (s *Stats) onAccept()           { atomic.AddInt64(&s.totalAccepted, 1) }
func (s *Stats) onHandlerStart()     { atomic.AddInt64(&s.activeHandlers, 1) }
func (s *Stats) onHandlerEnd()       { atomic.AddInt64(&s.activeHandlers, -1) }
func (s *Stats) onKeepAliveIdle()    { atomic.AddInt64(&s.keepAliveIdle, 1) }
func (s *Stats) onKeepAliveResumed() { atomic.AddInt64(&s.keepAliveIdle, -1) }

// TotalAccepted returns the lifetime accepted-connection count.
func (s *Stats) TotalAccepted() int64 { return atomic.LoadInt64(&s.totalAccepted) }

// ActiveHandlers returns the count of handlers currently serving a
// request (not idle in keep-alive).
func (s *Stats) ActiveHandlers() int64 { return atomic.LoadInt64(&s.activeHandlers) }

// KeepAliveIdle returns the count of connections idle between
// keep-alive requests.
func (s *Stats) KeepAliveIdle() int64 { return atomic.LoadInt64(&s.keepAliveIdle) }
