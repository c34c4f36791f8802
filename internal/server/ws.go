package server

import (
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"MissionRelay/internal/mission"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

const (
	streamSendBuffer  = 8
	keepaliveInterval = 30 * time.Second
	streamWriteWait   = 10 * time.Second
)

type subscriber struct {
	id   string
	conn *websocket.Conn
	send chan stateMsg
}

// streamHub fans mission state changes out to WebSocket subscribers. The
// HTTP polling endpoint remains the primary contract; the stream exists so
// dev tooling and future UIs can watch without polling.
type streamHub struct {
	mu   sync.Mutex
	subs map[string]*subscriber
}

func newStreamHub() *streamHub {
	return &streamHub{subs: map[string]*subscriber{}}
}

// Broadcast queues a snapshot for every subscriber. A subscriber that has
// fallen behind loses intermediate frames, never the connection; each
// delivered frame is a full snapshot, so dropped ones cost nothing.
func (h *streamHub) Broadcast(m mission.MissionState) {
	msg := stateToMsg(m)
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, sub := range h.subs {
		select {
		case sub.send <- msg:
		default:
		}
	}
}

func (h *streamHub) add(sub *subscriber) {
	h.mu.Lock()
	h.subs[sub.id] = sub
	h.mu.Unlock()
}

func (h *streamHub) remove(id string) {
	h.mu.Lock()
	delete(h.subs, id)
	h.mu.Unlock()
}

func (h *streamHub) subscriberCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}

func (a *api) serveStream(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Println("upgrade:", err)
		return
	}
	sub := &subscriber{
		id:   uuid.NewString(),
		conn: conn,
		send: make(chan stateMsg, streamSendBuffer),
	}
	a.hub.add(sub)

	// First frame is the current snapshot so a late subscriber starts from
	// truth instead of waiting for the next change.
	sub.send <- stateToMsg(a.store.Snapshot())

	go func() {
		ticker := time.NewTicker(keepaliveInterval)
		defer ticker.Stop()
		for {
			select {
			case msg := <-sub.send:
				_ = conn.SetWriteDeadline(time.Now().Add(streamWriteWait))
				if err := conn.WriteJSON(msg); err != nil {
					return
				}
			case <-ticker.C:
				_ = conn.SetWriteDeadline(time.Now().Add(streamWriteWait))
				if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
					return
				}
			}
		}
	}()

	// Inbound frames carry nothing; read only to notice the close.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
	a.hub.remove(sub.id)
	conn.Close()
}
