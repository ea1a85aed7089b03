package events

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHubBroadcastsEventsToTournamentRoom(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	hub := NewHub(discardLogger())
	go hub.Run(ctx)

	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		client := NewClient(hub, conn, RoomForTournament(r.URL.Query().Get("t")))
		if !hub.Join(client) {
			conn.Close()
			return
		}
		go client.WritePump()
		go client.ReadPump()
	}))
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/?t=t1"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.Eventually(t, func() bool {
		return hub.RoomSize(RoomForTournament("t1")) == 1
	}, 2*time.Second, 10*time.Millisecond)

	hub.HandleEvent(context.Background(), New(RoundComplete, "other", time.Now(), nil))
	e := New(RoundComplete, "t1", time.Now(), RoundCompletePayload{Round: 1, Name: "Round 1"})
	hub.HandleEvent(context.Background(), e)

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)

	var msg struct {
		Type    string               `json:"type"`
		RoomID  string               `json:"room_id"`
		EventID string               `json:"event_id"`
		Payload RoundCompletePayload `json:"payload"`
	}
	require.NoError(t, json.Unmarshal(data, &msg))
	assert.Equal(t, string(RoundComplete), msg.Type)
	assert.Equal(t, "tournament_t1", msg.RoomID)
	assert.Equal(t, e.ID, msg.EventID)
	assert.Equal(t, "Round 1", msg.Payload.Name)
}

func TestHubJoinAfterStop(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	hub := NewHub(discardLogger())
	stopped := make(chan struct{})
	go func() {
		hub.Run(ctx)
		close(stopped)
	}()
	cancel()
	<-stopped

	assert.False(t, hub.Join(&Client{Hub: hub, Send: make(chan []byte, 1), Room: "r"}))
}

func TestWriteQueuedStopsOnClosedChannel(t *testing.T) {
	send := make(chan []byte, 4)
	send <- []byte(`{"n":2}`)
	send <- []byte(`{"n":3}`)

	var buf bytes.Buffer
	assert.True(t, writeQueued(&buf, []byte(`{"n":1}`), send))
	assert.Equal(t, "{\"n\":1}\n{\"n\":2}\n{\"n\":3}", buf.String())

	send <- []byte(`{"n":5}`)
	close(send)
	buf.Reset()
	assert.False(t, writeQueued(&buf, []byte(`{"n":4}`), send))
	assert.Equal(t, "{\"n\":4}\n{\"n\":5}", buf.String(), "no empty frames after close")
}
