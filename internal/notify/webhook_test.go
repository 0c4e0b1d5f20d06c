// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package notify

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/olegiv/paralympics-go/internal/testutil"
)

func TestSignature(t *testing.T) {
	payload := []byte(`{"type":"post.created"}`)
	sig := Sign(payload, "secret")

	assert.Len(t, sig, 64)
	assert.True(t, VerifySignature(payload, sig, "secret"))
	assert.False(t, VerifySignature(payload, sig, "other"))
	assert.False(t, VerifySignature([]byte(`{}`), sig, "secret"))
}

func TestWebhookPublisher_Delivers(t *testing.T) {
	var (
		mu   sync.Mutex
		got  []Event
		sigs []string
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		var e Event
		_ = json.Unmarshal(body, &e)

		mu.Lock()
		got = append(got, e)
		sigs = append(sigs, r.Header.Get(HeaderSignature))
		mu.Unlock()

		assert.True(t, VerifySignature(body, r.Header.Get(HeaderSignature), "s3cret"))
		assert.Equal(t, e.Type, r.Header.Get(HeaderEvent))
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	p := NewWebhookPublisher(WebhookConfig{URL: srv.URL, Secret: "s3cret", Workers: 1}, testutil.TestLogger())
	require.NoError(t, p.Publish(context.Background(), NewEvent(EventUserSignedUp, UserEventData{ID: 1})))
	require.NoError(t, p.Publish(context.Background(), NewEvent(EventPostCreated, PostEventData{ID: 2})))
	p.Close()

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, got, 2)
	assert.Equal(t, EventUserSignedUp, got[0].Type)
	assert.Equal(t, EventPostCreated, got[1].Type)
	assert.NotEmpty(t, sigs[0])
}

func TestWebhookPublisher_RetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	p := NewWebhookPublisher(WebhookConfig{URL: srv.URL, Workers: 1, InitialBackoff: time.Millisecond}, testutil.TestLogger())
	require.NoError(t, p.Publish(context.Background(), NewEvent(EventCommentCreated, nil)))

	require.Eventually(t, func() bool { return calls.Load() == 3 }, 2*time.Second, 5*time.Millisecond)
	p.Close()
	assert.EqualValues(t, 3, calls.Load())
}

func TestWebhookPublisher_NoRetryOnClientError(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	p := NewWebhookPublisher(WebhookConfig{URL: srv.URL, Workers: 1, InitialBackoff: time.Millisecond}, testutil.TestLogger())
	require.NoError(t, p.Publish(context.Background(), NewEvent(EventCommentCreated, nil)))
	p.Close()

	assert.EqualValues(t, 1, calls.Load())
}

func TestWebhookPublisher_CloseIsBounded(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		select {
		case <-time.After(time.Second):
		case <-r.Context().Done():
		}
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	p := NewWebhookPublisher(WebhookConfig{
		URL:            srv.URL,
		Workers:        1,
		InitialBackoff: time.Millisecond,
		DrainTimeout:   50 * time.Millisecond,
	}, testutil.TestLogger())
	for range 6 {
		require.NoError(t, p.Publish(context.Background(), NewEvent(EventPostCreated, nil)))
	}

	start := time.Now()
	p.Close()
	assert.Less(t, time.Since(start), 500*time.Millisecond)
	assert.LessOrEqual(t, calls.Load(), int32(2))
}

func TestWebhookPublisher_ClosedRejects(t *testing.T) {
	p := NewWebhookPublisher(WebhookConfig{URL: "http://127.0.0.1:1"}, testutil.TestLogger())
	p.Close()
	p.Close()

	assert.Error(t, p.Publish(context.Background(), NewEvent(EventPostCreated, nil)))
}

type failingPublisher struct{ closed bool }

func (f *failingPublisher) Publish(context.Context, *Event) error { return errors.New("down") }
func (f *failingPublisher) Close()                                { f.closed = true }

func TestMulti(t *testing.T) {
	rec := &Recorder{}
	bad := &failingPublisher{}
	m := Multi{bad, rec}

	err := m.Publish(context.Background(), NewEvent(EventPostCreated, nil))
	assert.EqualError(t, err, "down")
	assert.Equal(t, []string{EventPostCreated}, rec.Types())

	m.Close()
	assert.True(t, bad.closed)
}
