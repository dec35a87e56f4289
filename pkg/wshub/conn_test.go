package wshub

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"
)

func TestReadJSON_CloseCodeStaysInspectable(t *testing.T) {
	errCh := make(chan error, 1)
	var upgrader websocket.Upgrader

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ws, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			errCh <- err
			return
		}
		conn := NewConn(context.Background(), ws)
		defer conn.Close()

		var frame map[string]any
		errCh <- conn.ReadJSON(&frame)
	}))
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	client, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer client.Close()

	msg := websocket.FormatCloseMessage(websocket.CloseGoingAway, "bye")
	require.NoError(t, client.WriteMessage(websocket.CloseMessage, msg))

	select {
	case readErr := <-errCh:
		require.Error(t, readErr)
		require.True(t, websocket.IsCloseError(readErr, websocket.CloseGoingAway),
			"the close code must survive to the caller")
		require.False(t, websocket.IsUnexpectedCloseError(readErr, websocket.CloseGoingAway, websocket.CloseNormalClosure))
	case <-time.After(2 * time.Second):
		t.Fatal("server read did not return")
	}
}

func TestSendReadJSON_RoundTrip(t *testing.T) {
	frameCh := make(chan map[string]any, 1)
	var upgrader websocket.Upgrader

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ws, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		conn := NewConn(context.Background(), ws)
		defer conn.Close()

		var frame map[string]any
		if err := conn.ReadJSON(&frame); err == nil {
			frameCh <- frame
		}
	}))
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	client, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer client.Close()

	require.NoError(t, client.WriteJSON(map[string]any{"type": "location-update", "latitude": -26.2}))

	select {
	case frame := <-frameCh:
		require.Equal(t, "location-update", frame["type"])
	case <-time.After(2 * time.Second):
		t.Fatal("frame did not arrive")
	}
}
