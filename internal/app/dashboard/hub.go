package dashboard

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/sfc-gh-aneel/streaming-demo/internal/ports"
)

// upgrader accepts any origin: the dashboard is a demo surface and the
// API-key middleware already gates the route.
var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(*http.Request) bool { return true },
}

// hub fans snapshot frames out to every connected websocket client. The
// client map is owned by the run loop, so no lock is needed.
type hub struct {
	obs        ports.Observability
	clients    map[*websocket.Conn]bool
	broadcast  chan []byte
	register   chan *websocket.Conn
	unregister chan *websocket.Conn
	done       chan struct{}
}

func newHub(obs ports.Observability) *hub {
	return &hub{
		obs:        obs,
		clients:    make(map[*websocket.Conn]bool),
		broadcast:  make(chan []byte, 8),
		register:   make(chan *websocket.Conn),
		unregister: make(chan *websocket.Conn),
		done:       make(chan struct{}),
	}
}

// run processes registrations and broadcasts until ctx is cancelled, then
// closes every remaining connection.
func (h *hub) run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case conn := <-h.register:
			h.clients[conn] = true
			h.obs.SetGauge("mfg_dashboard_clients", ports.CategoryDashboard, float64(len(h.clients)))
		case conn := <-h.unregister:
			h.drop(conn)
		case msg := <-h.broadcast:
			for conn := range h.clients {
				if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
					h.obs.LogWarn("websocket write failed",
						ports.Field{Key: "remote", Value: conn.RemoteAddr().String()},
						ports.Field{Key: "error", Value: err.Error()},
					)
					h.drop(conn)
				}
			}
		case <-ctx.Done():
			for conn := range h.clients {
				h.drop(conn)
			}
			return
		}
	}
}

func (h *hub) drop(conn *websocket.Conn) {
	if _, ok := h.clients[conn]; ok {
		delete(h.clients, conn)
		conn.Close()
	}
	h.obs.SetGauge("mfg_dashboard_clients", ports.CategoryDashboard, float64(len(h.clients)))
}

// broadcastJSON serializes v and queues it for every client. The frame is
// dropped when the hub is backed up; the next push carries fresher data.
func (h *hub) broadcastJSON(v any) {
	msg, err := json.Marshal(v)
	if err != nil {
		h.obs.LogError("marshal websocket frame", err)
		return
	}
	select {
	case h.broadcast <- msg:
	default:
	}
}

// serve upgrades the request and registers the client. Inbound frames are
// read and discarded so close handshakes and pings keep working.
func (h *hub) serve(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.obs.LogWarn("websocket upgrade failed", ports.Field{Key: "error", Value: err.Error()})
		return
	}
	select {
	case h.register <- conn:
		go h.readLoop(conn)
	case <-h.done:
		conn.Close()
	}
}

func (h *hub) readLoop(conn *websocket.Conn) {
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			select {
			case h.unregister <- conn:
			case <-h.done:
			}
			return
		}
	}
}
