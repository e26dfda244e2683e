package websocket

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/coder/websocket"
)

const writeTimeout = 10 * time.Second

// client - an accepted connection. Outgoing frames go through send and are written by writePump only.
type client struct {
	id   string
	conn *websocket.Conn
	send chan []byte

	closeOnce sync.Once

	snapshotMu sync.Mutex
	roomID     string
	version    uint64
}

func newClient(id string, conn *websocket.Conn, buffer int) *client {
	return &client{
		id:   id,
		conn: conn,
		send: make(chan []byte, buffer),
	}
}

// enqueue - queues a frame without blocking. A client that cannot keep up is closed.
func (that *client) enqueue(data []byte) bool {
	select {
	case that.send <- data:
		return true
	default:
		that.closeOnce.Do(func() {
			go that.conn.Close(websocket.StatusPolicyViolation, "send buffer full")
		})
		return false
	}
}

// enqueueSnapshot - queues a room frame unless a newer version of the same room is already
// queued. A stale frame is dropped and still counts as delivered.
func (that *client) enqueueSnapshot(roomID string, version uint64, data []byte) bool {
	that.snapshotMu.Lock()
	defer that.snapshotMu.Unlock()

	if roomID == that.roomID && version < that.version {
		return true
	}

	that.roomID = roomID
	that.version = version

	return that.enqueue(data)
}

func (that *client) writePump(ctx context.Context, logger *slog.Logger) {
	log := logger.With("method", "writePump", "connID", that.id)

	for {
		select {
		case <-ctx.Done():
			return
		case data := <-that.send:
			writeCtx, cancel := context.WithTimeout(ctx, writeTimeout)
			err := that.conn.Write(writeCtx, websocket.MessageText, data)
			cancel()

			if err != nil {
				log.Debug("failed to write message", "error", err)
				return
			}
		}
	}
}
