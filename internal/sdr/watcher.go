// Copyright 2026 The OpsDash Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package sdr watches the WhatsApp connection state of an SDR instance while
// an operator pairs a device via QR code.
package sdr

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/opsdash/opsdash/internal/observability/logger"
	"github.com/opsdash/opsdash/internal/upstream"
)

// StatusAPI is the slice of the SDR client the watcher needs.
type StatusAPI interface {
	WhatsAppStatus(ctx context.Context, instanceID string) (upstream.ConnectionStatus, error)
}

// Watcher polls the WhatsApp connection state on a fixed interval and
// publishes each observed status. Polling stops once the instance reports an
// open connection or the context is cancelled. A tick that fires while the
// previous poll is still in flight is skipped.
type Watcher struct {
	api      StatusAPI
	interval time.Duration

	inFlight atomic.Bool
	skipped  atomic.Int64

	mu      sync.RWMutex
	last    *upstream.ConnectionStatus
	updates chan upstream.ConnectionStatus
}

// NewWatcher creates a watcher over the SDR status API.
func NewWatcher(api StatusAPI, interval time.Duration) *Watcher {
	return &Watcher{
		api:      api,
		interval: interval,
		updates:  make(chan upstream.ConnectionStatus, 1),
	}
}

// Updates returns the channel the watcher publishes observed statuses on.
// Slow consumers see the latest status only; stale ones are dropped.
func (w *Watcher) Updates() <-chan upstream.ConnectionStatus {
	return w.updates
}

// Last returns the most recently observed status, nil before the first
// successful poll.
func (w *Watcher) Last() *upstream.ConnectionStatus {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.last
}

// SkippedTicks reports how many ticks were dropped by the overlap guard.
func (w *Watcher) SkippedTicks() int64 {
	return w.skipped.Load()
}

// Watch polls immediately and then on every interval tick until the instance
// reports an open connection or ctx is cancelled. Intended to run as a
// goroutine for the duration of one pairing session.
func (w *Watcher) Watch(ctx context.Context, instanceID string) {
	if w.poll(ctx, instanceID) {
		return
	}

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if w.poll(ctx, instanceID) {
				return
			}
		}
	}
}

// poll runs one status check and reports whether the connection is open. A
// failed check keeps the last observed status.
func (w *Watcher) poll(ctx context.Context, instanceID string) bool {
	if !w.inFlight.CompareAndSwap(false, true) {
		w.skipped.Add(1)
		return false
	}
	defer w.inFlight.Store(false)

	status, err := w.api.WhatsAppStatus(ctx, instanceID)
	if err != nil {
		slog.WarnContext(ctx, "whatsapp status check failed",
			logger.Component("sdr-watcher"),
			logger.Error(err),
		)
		return false
	}

	w.mu.Lock()
	w.last = &status
	w.mu.Unlock()
	w.publish(status)

	return status.State == upstream.ConnectionOpen
}

// publish delivers the status without blocking, replacing an unread one.
func (w *Watcher) publish(status upstream.ConnectionStatus) {
	for {
		select {
		case w.updates <- status:
			return
		default:
			select {
			case <-w.updates:
			default:
			}
		}
	}
}
