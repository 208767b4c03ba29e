package sdr

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opsdash/opsdash/internal/upstream"
)

const (
	testTimeout = 2 * time.Second
	testTick    = 5 * time.Millisecond
)

// scriptedAPI serves a fixed sequence of statuses, repeating the last one.
type scriptedAPI struct {
	mu       sync.Mutex
	statuses []upstream.ConnectionStatus
	err      error
	calls    int
}

func (a *scriptedAPI) WhatsAppStatus(ctx context.Context, instanceID string) (upstream.ConnectionStatus, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.calls++
	if a.err != nil {
		return upstream.ConnectionStatus{}, a.err
	}
	i := a.calls - 1
	if i >= len(a.statuses) {
		i = len(a.statuses) - 1
	}
	return a.statuses[i], nil
}

func (a *scriptedAPI) callCount() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.calls
}

// TestPurpose: Validates the pairing loop: QR statuses are published each
// poll and the watcher stops on its own once the connection opens.
func TestWatcher_StopsWhenConnectionOpens(t *testing.T) {
	api := &scriptedAPI{statuses: []upstream.ConnectionStatus{
		{InstanceID: "inst-1", State: upstream.ConnectionConnecting, QRCode: "qr-1"},
		{InstanceID: "inst-1", State: upstream.ConnectionConnecting, QRCode: "qr-2"},
		{InstanceID: "inst-1", State: upstream.ConnectionOpen},
	}}
	watcher := NewWatcher(api, time.Millisecond)

	done := make(chan struct{})
	go func() {
		watcher.Watch(context.Background(), "inst-1")
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(testTimeout):
		t.Fatal("watcher did not stop after the connection opened")
	}

	assert.Equal(t, 3, api.callCount())
	last := watcher.Last()
	require.NotNil(t, last)
	assert.Equal(t, upstream.ConnectionOpen, last.State)
	assert.Empty(t, last.QRCode)
}

// TestPurpose: Validates that a slow consumer only ever sees the most recent
// status; intermediate ones are dropped, never queued.
func TestWatcher_PublishKeepsLatestOnly(t *testing.T) {
	watcher := NewWatcher(&scriptedAPI{}, time.Minute)

	watcher.publish(upstream.ConnectionStatus{QRCode: "qr-1"})
	watcher.publish(upstream.ConnectionStatus{QRCode: "qr-2"})
	watcher.publish(upstream.ConnectionStatus{QRCode: "qr-3"})

	got := <-watcher.Updates()
	assert.Equal(t, "qr-3", got.QRCode)
	select {
	case extra := <-watcher.Updates():
		t.Fatalf("unexpected queued status %q", extra.QRCode)
	default:
	}
}

// TestPurpose: Validates that a failed poll keeps the last observed status
// and the loop keeps going.
func TestWatcher_FailedPollKeepsLastStatus(t *testing.T) {
	api := &scriptedAPI{statuses: []upstream.ConnectionStatus{
		{InstanceID: "inst-1", State: upstream.ConnectionConnecting, QRCode: "qr-1"},
	}}
	watcher := NewWatcher(api, time.Millisecond)

	assert.False(t, watcher.poll(context.Background(), "inst-1"))
	require.NotNil(t, watcher.Last())

	api.mu.Lock()
	api.err = errors.New("gateway unreachable")
	api.mu.Unlock()

	assert.False(t, watcher.poll(context.Background(), "inst-1"))
	require.NotNil(t, watcher.Last())
	assert.Equal(t, "qr-1", watcher.Last().QRCode)
}

// TestPurpose: Validates the overlap guard on the poll loop.
func TestWatcher_SkipsOverlappingPoll(t *testing.T) {
	watcher := NewWatcher(&scriptedAPI{statuses: []upstream.ConnectionStatus{
		{State: upstream.ConnectionConnecting},
	}}, time.Minute)

	require.True(t, watcher.inFlight.CompareAndSwap(false, true))
	assert.False(t, watcher.poll(context.Background(), "inst-1"))
	assert.Equal(t, int64(1), watcher.SkippedTicks())
	watcher.inFlight.Store(false)

	assert.False(t, watcher.poll(context.Background(), "inst-1"))
	assert.Equal(t, int64(1), watcher.SkippedTicks())
	require.NotNil(t, watcher.Last())
}

// TestPurpose: Validates that cancellation stops a watch that never connects.
func TestWatcher_StopsOnCancel(t *testing.T) {
	api := &scriptedAPI{statuses: []upstream.ConnectionStatus{
		{State: upstream.ConnectionConnecting, QRCode: "qr-1"},
	}}
	watcher := NewWatcher(api, time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		watcher.Watch(ctx, "inst-1")
		close(done)
	}()

	require.Eventually(t, func() bool { return api.callCount() >= 2 }, testTimeout, testTick)
	cancel()

	select {
	case <-done:
	case <-time.After(testTimeout):
		t.Fatal("watcher did not stop after cancellation")
	}
}
