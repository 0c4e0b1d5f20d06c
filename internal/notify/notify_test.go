// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package notify

import (
	"context"
	"encoding/json"
	"os"
	"testing"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/olegiv/paralympics-go/internal/testutil"
)

func TestNew_EmptyURLIsNop(t *testing.T) {
	p, err := New("", testutil.TestLogger())
	require.NoError(t, err)
	assert.IsType(t, Nop{}, p)
	assert.NoError(t, p.Publish(context.Background(), NewEvent(EventPostCreated, nil)))
	p.Close()
}

func TestNew_UnreachableServer(t *testing.T) {
	_, err := New("nats://127.0.0.1:1", testutil.TestLogger())
	assert.Error(t, err)
}

func TestEventJSON(t *testing.T) {
	regionID := int64(7)
	e := NewEvent(EventProfileCreated, ProfileEventData{ID: 1, UserID: 2, Username: "sam", RegionID: &regionID})

	raw, err := json.Marshal(e)
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, json.Unmarshal(raw, &got))
	assert.Equal(t, "profile.created", got["type"])
	data := got["data"].(map[string]any)
	assert.Equal(t, "sam", data["username"])
	assert.EqualValues(t, 7, data["region_id"])
	assert.Equal(t, time.UTC, e.Timestamp.Location())
}

func TestEmit_Recorder(t *testing.T) {
	rec := &Recorder{}
	Emit(context.Background(), rec, EventUserSignedUp, UserEventData{ID: 1})
	Emit(context.Background(), rec, EventPostCreated, PostEventData{ID: 2})
	Emit(context.Background(), nil, EventPostCreated, nil)

	assert.Equal(t, []string{EventUserSignedUp, EventPostCreated}, rec.Types())
	assert.Len(t, rec.Events(), 2)
}

// TestNATSPublisher runs against a real server when PARA_TEST_NATS_URL is set.
func TestNATSPublisher(t *testing.T) {
	url := os.Getenv("PARA_TEST_NATS_URL")
	if url == "" {
		t.Skip("PARA_TEST_NATS_URL not set")
	}

	sub, err := nats.Connect(url)
	require.NoError(t, err)
	defer sub.Close()
	ch := make(chan *nats.Msg, 1)
	s, err := sub.ChanSubscribe(SubjectPrefix+">", ch)
	require.NoError(t, err)
	defer func() { _ = s.Unsubscribe() }()
	require.NoError(t, sub.Flush())

	p, err := NewNATSPublisher(url, testutil.TestLogger())
	require.NoError(t, err)
	defer p.Close()

	require.NoError(t, p.Publish(context.Background(), NewEvent(EventCommentCreated, CommentEventData{ID: 3, PostID: 1})))

	select {
	case msg := <-ch:
		assert.Equal(t, "paralympics.comment.created", msg.Subject)
		var e Event
		require.NoError(t, json.Unmarshal(msg.Data, &e))
		assert.Equal(t, EventCommentCreated, e.Type)
	case <-time.After(2 * time.Second):
		t.Fatal("no message received")
	}
}
