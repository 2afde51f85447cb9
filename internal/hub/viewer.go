package hub

import (
	"time"

	"github.com/gorilla/websocket"
)

// viewer is one connected push channel client. Frames are queued on the
// buffered send channel; the write pump owns the connection for writes.
type viewer struct {
	id   string
	conn *websocket.Conn
	send chan []byte
}

// trySend queues a frame without blocking. It reports false when the
// viewer's buffer is full, which the hub treats as a dead connection.
func (v *viewer) trySend(frame []byte) bool {
	select {
	case v.send <- frame:
		return true
	default:
		return false
	}
}

// writePump drains the send channel onto the socket and keeps the
// connection alive with pings. It exits when the channel closes or a
// write fails; the read side then unregisters the viewer.
func (v *viewer) writePump(writeTimeout, pingInterval time.Duration) {
	ticker := time.NewTicker(pingInterval)
	defer func() {
		ticker.Stop()
		_ = v.conn.Close()
	}()

	for {
		select {
		case frame, ok := <-v.send:
			_ = v.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if !ok {
				_ = v.conn.WriteMessage(websocket.CloseMessage, nil)
				return
			}
			if err := v.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				return
			}
		case <-ticker.C:
			_ = v.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := v.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
