// Package monitor exposes a read-only view of the controller over HTTP: a
// websocket frame stream and a health endpoint. It only observes; nothing
// here feeds back into the control loop.
package monitor

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/coreman2200/funtimes-proxibar/internal/sequence"
)

// throttle limits broadcast rate; the poll loop publishes far more often
// than a browser needs.
const throttle = 50 * time.Millisecond

type frame struct {
	T       int64  `json:"t"`
	FrameID uint64 `json:"frame_id"`
	Phase   string `json:"phase"`
	Cells   []bool `json:"cells"`
}

// State fans controller snapshots out to websocket clients.
type State struct {
	log zerolog.Logger

	mu       sync.RWMutex
	clients  map[*websocket.Conn]bool
	last     sequence.Snapshot
	frameID  uint64
	lastSent time.Time
	start    time.Time
}

func New(log zerolog.Logger) *State {
	return &State{
		log:     log,
		clients: map[*websocket.Conn]bool{},
		start:   time.Now(),
	}
}

// Publish records the latest snapshot and broadcasts it to all clients,
// rate-limited to the throttle interval.
func (s *State) Publish(snap sequence.Snapshot) {
	s.mu.Lock()
	s.last = snap
	s.frameID++
	now := time.Now()
	if now.Sub(s.lastSent) < throttle {
		s.mu.Unlock()
		return
	}
	s.lastSent = now
	f := frame{
		T:       now.UnixNano(),
		FrameID: s.frameID,
		Phase:   snap.Phase.String(),
		Cells:   snap.Cells,
	}
	conns := make([]*websocket.Conn, 0, len(s.clients))
	for c := range s.clients {
		conns = append(conns, c)
	}
	s.mu.Unlock()

	b, _ := json.Marshal(f)
	for _, c := range conns {
		_ = c.SetWriteDeadline(time.Now().Add(200 * time.Millisecond))
		if err := c.WriteMessage(websocket.TextMessage, b); err != nil {
			s.log.Debug().Err(err).Msg("write frame")
		}
	}
}

// HandleFramesWS upgrades the connection and streams frames until the client
// goes away.
func (s *State) HandleFramesWS(w http.ResponseWriter, r *http.Request) {
	up := websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }}
	conn, err := up.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	s.mu.Lock()
	s.clients[conn] = true
	s.mu.Unlock()

	go func() {
		defer func() {
			s.mu.Lock()
			delete(s.clients, conn)
			s.mu.Unlock()
			conn.Close()
		}()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

// HandleHealth reports the current phase and cell states as JSON.
func (s *State) HandleHealth(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	lit := 0
	for _, on := range s.last.Cells {
		if on {
			lit++
		}
	}
	resp := map[string]any{
		"frame_id": s.frameID,
		"uptime_s": time.Since(s.start).Seconds(),
		"phase":    s.last.Phase.String(),
		"cells":    s.last.Cells,
		"lit":      lit,
	}
	_ = json.NewEncoder(w).Encode(resp)
}

// Handler returns the monitor's route table.
func (s *State) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws/frames", s.HandleFramesWS)
	mux.HandleFunc("/health", s.HandleHealth)
	return mux
}
