package stream

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
	sendBuffer = 256
)

// viewer wraps one WebSocket connection. Messages are queued on send and
// written by writePump so a slow viewer never blocks generation.
type viewer struct {
	conn *websocket.Conn
	ip   string
	send chan []byte

	closeOnce sync.Once
	done      chan struct{}
}

func newViewer(conn *websocket.Conn, ip string, buffer int) *viewer {
	return &viewer{
		conn: conn,
		ip:   ip,
		send: make(chan []byte, buffer),
		done: make(chan struct{}),
	}
}

// enqueue queues data for writing. Returns false if the viewer is closed or
// too far behind.
func (v *viewer) enqueue(data []byte) bool {
	select {
	case <-v.done:
		return false
	default:
	}
	select {
	case v.send <- data:
		return true
	default:
		return false
	}
}

// close signals both pumps to stop; writePump sends the close frame and
// releases the connection. Safe to call repeatedly.
func (v *viewer) close() {
	v.closeOnce.Do(func() {
		close(v.done)
	})
}

// readPump discards viewer input and returns when the connection drops.
// Reading is still required to process control frames.
func (v *viewer) readPump(maxMessageSize int64) {
	defer v.close()

	if maxMessageSize > 0 {
		v.conn.SetReadLimit(maxMessageSize)
	}
	v.conn.SetReadDeadline(time.Now().Add(pongWait))
	v.conn.SetPongHandler(func(string) error {
		return v.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := v.conn.ReadMessage(); err != nil {
			return
		}
	}
}

// writePump writes queued messages and keepalive pings until the viewer closes.
func (v *viewer) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		v.close()
		v.conn.Close()
	}()

	for {
		select {
		case <-v.done:
			v.conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
				time.Now().Add(writeWait))
			return
		case data := <-v.send:
			v.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := v.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
		case <-ticker.C:
			v.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := v.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
