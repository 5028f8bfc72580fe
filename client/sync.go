package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"hbcplayer/model"

	"github.com/gorilla/websocket"
)

// syncMessage is the wire shape pushed over the playlist sync socket.
type syncMessage struct {
	Type     string          `json:"type"`
	DeviceID string          `json:"deviceId"`
	Playlist *model.Playlist `json:"playlist"`
}

// PlaylistSync is an open cross-device sync subscription. Close stops
// the read loop and releases the connection.
type PlaylistSync struct {
	conn *websocket.Conn
}

// SubscribeSync connects to the playlist sync socket and invokes
// onUpdate with every queue another device of the same user stores.
// Updates originating from this client's own device id are skipped.
func (c *Client) SubscribeSync(ctx context.Context, onUpdate func(model.Playlist)) (*PlaylistSync, error) {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base URL: %w", err)
	}
	if u.Scheme == "https" {
		u.Scheme = "wss"
	} else {
		u.Scheme = "ws"
	}
	u.Path = "/api/ws/playlist"
	u.RawQuery = url.Values{"device": {c.deviceID}}.Encode()

	header := http.Header{}
	header.Set("X-Device-ID", c.deviceID)
	if token := c.Token(); token != "" {
		header.Set("Authorization", "Bearer "+token)
	}

	conn, resp, err := websocket.DefaultDialer.DialContext(ctx, u.String(), header)
	if err != nil {
		if resp != nil {
			return nil, fmt.Errorf("sync subscription failed: status %d: %w", resp.StatusCode, err)
		}
		return nil, fmt.Errorf("sync subscription failed: %w", err)
	}

	sub := &PlaylistSync{conn: conn}
	go sub.readLoop(c.deviceID, onUpdate)
	return sub, nil
}

// readLoop delivers playlist updates until the connection closes. The
// gorilla default ping handler answers the server's keepalive pings.
func (s *PlaylistSync) readLoop(deviceID string, onUpdate func(model.Playlist)) {
	defer s.conn.Close()
	for {
		_, raw, err := s.conn.ReadMessage()
		if err != nil {
			return
		}

		var msg syncMessage
		if err := json.Unmarshal(raw, &msg); err != nil {
			continue
		}
		if msg.Type != "playlist_updated" || msg.Playlist == nil {
			continue
		}
		if msg.DeviceID == deviceID {
			continue
		}
		onUpdate(*msg.Playlist)
	}
}

// Close tears down the subscription.
func (s *PlaylistSync) Close() error {
	return s.conn.Close()
}
