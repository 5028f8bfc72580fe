package server

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"hbcplayer/logger"
	"hbcplayer/model"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
)

// SyncMessageType identifies cross-device sync messages.
type SyncMessageType string

const (
	MsgTypePlaylistUpdated SyncMessageType = "playlist_updated"
	MsgTypePing            SyncMessageType = "ping"
	MsgTypePong            SyncMessageType = "pong"
)

// SyncMessage is pushed over the playlist sync WebSocket.
type SyncMessage struct {
	Type      SyncMessageType `json:"type"`
	DeviceID  string          `json:"deviceId,omitempty"`
	Playlist  *model.Playlist `json:"playlist,omitempty"`
	Timestamp int64           `json:"timestamp"`
}

// deviceConn is one connected device of a user.
type deviceConn struct {
	deviceID string
	conn     *websocket.Conn
	send     chan SyncMessage
}

// SyncHub fans playlist updates out to a user's other devices. When one
// device PUTs a new queue, every other connected device of the same user
// receives a playlist_updated push so it can reload without polling.
type SyncHub struct {
	mu      sync.RWMutex
	devices map[int64]map[*deviceConn]struct{}

	upgrader websocket.Upgrader
}

// NewSyncHub creates an empty hub.
func NewSyncHub() *SyncHub {
	return &SyncHub{
		devices: make(map[int64]map[*deviceConn]struct{}),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

// register adds a device connection for a user.
func (h *SyncHub) register(userID int64, dc *deviceConn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.devices[userID] == nil {
		h.devices[userID] = make(map[*deviceConn]struct{})
	}
	h.devices[userID][dc] = struct{}{}
}

// unregister removes a device connection.
func (h *SyncHub) unregister(userID int64, dc *deviceConn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if conns, ok := h.devices[userID]; ok {
		if _, ok := conns[dc]; ok {
			delete(conns, dc)
			close(dc.send)
			if len(conns) == 0 {
				delete(h.devices, userID)
			}
		}
	}
}

// BroadcastPlaylistUpdated pushes the new playlist to every device of the
// user except the one that wrote it.
func (h *SyncHub) BroadcastPlaylistUpdated(userID int64, sourceDeviceID string, playlist model.Playlist) {
	msg := SyncMessage{
		Type:      MsgTypePlaylistUpdated,
		DeviceID:  sourceDeviceID,
		Playlist:  &playlist,
		Timestamp: time.Now().UnixMilli(),
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for dc := range h.devices[userID] {
		if sourceDeviceID != "" && dc.deviceID == sourceDeviceID {
			continue
		}
		select {
		case dc.send <- msg:
		default:
			// Slow consumer; drop the message rather than block the writer.
			logger.Warn("Dropping sync message for slow device",
				logger.Int64("userId", userID), logger.String("deviceId", dc.deviceID))
		}
	}
}

// ServeWS upgrades the connection and attaches it to the hub. The device
// identifies itself with ?device=<id>; one is assigned if missing.
func (h *SyncHub) ServeWS(userID int64, w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Error("Failed to upgrade sync connection", logger.ErrorField(err))
		return
	}

	deviceID := r.URL.Query().Get("device")
	if deviceID == "" {
		deviceID = uuid.NewString()
	}

	dc := &deviceConn{
		deviceID: deviceID,
		conn:     conn,
		send:     make(chan SyncMessage, 8),
	}
	h.register(userID, dc)
	logger.Info("Device connected to sync hub",
		logger.Int64("userId", userID), logger.String("deviceId", deviceID))

	go h.writePump(userID, dc)
	go h.readPump(userID, dc)
}

// writePump sends queued messages and pings to the device.
func (h *SyncHub) writePump(userID int64, dc *deviceConn) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		dc.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-dc.send:
			dc.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				dc.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			payload, err := json.Marshal(msg)
			if err != nil {
				logger.Error("Failed to marshal sync message", logger.ErrorField(err))
				continue
			}
			if err := dc.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				return
			}
		case <-ticker.C:
			dc.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := dc.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// readPump consumes (and mostly discards) messages from the device, and
// keeps the pong deadline fresh.
func (h *SyncHub) readPump(userID int64, dc *deviceConn) {
	defer func() {
		h.unregister(userID, dc)
		dc.conn.Close()
		logger.Info("Device disconnected from sync hub",
			logger.Int64("userId", userID), logger.String("deviceId", dc.deviceID))
	}()

	dc.conn.SetReadLimit(4096)
	dc.conn.SetReadDeadline(time.Now().Add(pongWait))
	dc.conn.SetPongHandler(func(string) error {
		dc.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		if _, _, err := dc.conn.ReadMessage(); err != nil {
			return
		}
	}
}

// PlaylistSyncHandler authenticates and hands the connection to the hub.
func (h *APIHandler) PlaylistSyncHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := GetUserIDFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	h.hub.ServeWS(userID, w, r)
}
