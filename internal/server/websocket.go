package server

import (
	"log"
	"net/http"
	"sync"

	"nano-banana/internal/game"

	"github.com/gorilla/websocket"
)

// wsHub groups client connections by session code. The first connection for
// a session registers a change subscription with the engine; every change
// pushes a fresh snapshot to the whole group. Writes are serialized through
// sendMu since gorilla connections allow one writer at a time.
type wsHub struct {
	engine *game.Engine
	mu     sync.Mutex
	sendMu sync.Mutex
	groups map[string]map[*websocket.Conn]struct{}
	unsubs map[string]func()
}

func newWSHub(engine *game.Engine) *wsHub {
	return &wsHub{
		engine: engine,
		groups: make(map[string]map[*websocket.Conn]struct{}),
		unsubs: make(map[string]func()),
	}
}

func (h *wsHub) Add(code string, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	group := h.groups[code]
	if group == nil {
		group = make(map[*websocket.Conn]struct{})
		h.groups[code] = group
		h.unsubs[code] = h.engine.Subscribe(code, func() {
			h.push(code)
		})
	}
	group[conn] = struct{}{}
}

func (h *wsHub) Remove(code string, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	group := h.groups[code]
	if group == nil {
		return
	}
	delete(group, conn)
	if len(group) == 0 {
		delete(h.groups, code)
		if unsub := h.unsubs[code]; unsub != nil {
			unsub()
		}
		delete(h.unsubs, code)
	}
}

func (h *wsHub) push(code string) {
	state, err := h.engine.State(code)
	if err != nil {
		log.Printf("snapshot push failed session_code=%s error=%v", code, err)
		return
	}
	payload := snapshot(state)
	h.mu.Lock()
	conns := make([]*websocket.Conn, 0, len(h.groups[code]))
	for conn := range h.groups[code] {
		conns = append(conns, conn)
	}
	h.mu.Unlock()
	var failed []*websocket.Conn
	h.sendMu.Lock()
	for _, conn := range conns {
		if err := conn.WriteJSON(payload); err != nil {
			failed = append(failed, conn)
		}
	}
	h.sendMu.Unlock()
	for _, conn := range failed {
		h.Remove(code, conn)
		conn.Close()
	}
}

func (h *wsHub) send(conn *websocket.Conn, payload any) error {
	h.sendMu.Lock()
	defer h.sendMu.Unlock()
	return conn.WriteJSON(payload)
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

func (s *Server) handleWebsocket(w http.ResponseWriter, r *http.Request) {
	code := sessionCode(r)
	if code == "" {
		http.NotFound(w, r)
		return
	}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	s.ws.Add(code, conn)

	// Initial state so a late joiner renders immediately.
	if state, err := s.engine.State(code); err == nil {
		_ = s.ws.send(conn, snapshot(state))
	}

	go func() {
		defer func() {
			s.ws.Remove(code, conn)
			conn.Close()
		}()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}
