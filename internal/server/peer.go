package server

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// Peer is one live client connection, addressable by its opaque handle
type Peer interface {
	Handle() string
	Send(event string, data any) error
	Close() error
}

// wsPeer wraps a websocket connection with a write mutex; gorilla
// connections allow only one concurrent writer
type wsPeer struct {
	handle       string
	conn         *websocket.Conn
	writeTimeout time.Duration

	mu sync.Mutex
}

func newWSPeer(conn *websocket.Conn, writeTimeout time.Duration) *wsPeer {
	return &wsPeer{
		handle:       uuid.NewString(),
		conn:         conn,
		writeTimeout: writeTimeout,
	}
}

func (p *wsPeer) Handle() string {
	return p.handle
}

func (p *wsPeer) Send(event string, data any) error {
	raw, err := json.Marshal(data)
	if err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.conn.SetWriteDeadline(time.Now().Add(p.writeTimeout)); err != nil {
		return err
	}
	return p.conn.WriteJSON(Event{Event: event, Data: raw})
}

// ping sends a control frame to keep the connection's read deadline
// moving on an otherwise idle link
func (p *wsPeer) ping() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(p.writeTimeout))
}

func (p *wsPeer) Close() error {
	return p.conn.Close()
}
