package httpapi

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"pulsewatch/internal/stats"
)

// GET /stream?symbol=X is not part of the original surface: the engine
// itself has no push mechanism, so a client that wants live ticks would
// otherwise have to poll /stats itself. Here that polling happens on the
// server side and the result is pushed over a websocket, using a Hub/Client
// broadcaster whose hub reads the registry reader on a ticker instead of
// receiving from an upstream input channel, since pollers never publish to
// anything outside the engine. Every connection gets its own hub; hubs are
// not shared between subscribers of the same symbol, so each subscriber's
// hub polls the reader independently.

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

func (h *handlers) stream(w http.ResponseWriter, r *http.Request) {
	symbol := r.URL.Query().Get("symbol")
	reader, ok := h.reg.Get(symbol)
	if !ok {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("stream upgrade failed", zap.String("symbol", symbol), zap.Error(err))
		return
	}

	tick := h.streamTick
	if tick <= 0 {
		tick = 250 * time.Millisecond
	}

	hub := newHub(reader, tick)
	go hub.run()

	client := &client{hub: hub, conn: conn, send: make(chan []byte, 16)}
	hub.register <- client

	go client.writePump()
	client.readPump()
}

// hub polls a single symbol's reader on each tick and sends a MsgPack frame
// of the latest snapshot to every registered client whenever DataPoint
// differs from the last frame sent. The first tick always sends the current
// snapshot; several writes between two ticks produce a single frame.
type hub struct {
	reader *stats.Reader
	tick   time.Duration

	clients    map[*client]bool
	register   chan *client
	unregister chan *client
}

func newHub(reader *stats.Reader, tick time.Duration) *hub {
	return &hub{
		reader:     reader,
		tick:       tick,
		clients:    make(map[*client]bool),
		register:   make(chan *client),
		unregister: make(chan *client),
	}
}

func (hu *hub) run() {
	ticker := time.NewTicker(hu.tick)
	defer ticker.Stop()

	var lastSeen uint64
	for {
		select {
		case c := <-hu.register:
			hu.clients[c] = true
		case c := <-hu.unregister:
			if _, ok := hu.clients[c]; ok {
				delete(hu.clients, c)
				close(c.send)
			}
			if len(hu.clients) == 0 {
				return
			}
		case <-ticker.C:
			rec := hu.reader.Read()
			if rec.DataPoint == lastSeen {
				continue
			}
			lastSeen = rec.DataPoint
			msg := FromRecord(rec).AppendMsgPack(make([]byte, 0, 64))
			for c := range hu.clients {
				select {
				case c.send <- msg:
				default:
					// slow client, drop this tick rather than block the hub
				}
			}
		}
	}
}

type client struct {
	hub  *hub
	conn *websocket.Conn
	send chan []byte
}

func (c *client) readPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			break
		}
	}
}

func (c *client) writePump() {
	defer c.conn.Close()
	for msg := range c.send {
		w, err := c.conn.NextWriter(websocket.BinaryMessage)
		if err != nil {
			return
		}
		w.Write(msg)
		if err := w.Close(); err != nil {
			return
		}
	}
	_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
}
