// Package web serves a small read-only UI for watching a training
// run: epoch stats as JSON, live updates over a websocket, and the
// accuracy curves rendered as SVG.
package web

import (
	"encoding/json"
	"html/template"
	"log"
	"net/http"
	"sync"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"

	"github.com/optic-ml/optic/train"
)

var indexTemplate = template.Must(template.New("index").Parse(`<!DOCTYPE html>
<html>
<head><title>optic run {{.RunID}}</title></head>
<body>
<h2>Run {{.RunID}}</h2>
<img id="curves" src="/curves.svg" alt="accuracy curves">
<pre id="log"></pre>
<script>
const ws = new WebSocket("ws://" + location.host + "/ws");
ws.onmessage = (ev) => {
	const s = JSON.parse(ev.data);
	document.getElementById("log").textContent +=
		"epoch " + s.epoch + ": acc=" + s.train_acc.toFixed(4) +
		" val_acc=" + s.valid_acc.toFixed(4) + "\n";
	document.getElementById("curves").src = "/curves.svg?epoch=" + s.epoch;
};
</script>
</body>
</html>`))

// Server publishes one run's History. It is safe to register as a
// trainer observer while requests are being served.
type Server struct {
	mu      sync.Mutex
	runID   string
	epochs  []train.EpochStats
	clients map[*websocket.Conn]struct{}

	upgrader websocket.Upgrader
	logger   *log.Logger
}

// NewServer creates a server with an empty history.
func NewServer() *Server {
	return &Server{
		clients:  make(map[*websocket.Conn]struct{}),
		upgrader: websocket.Upgrader{ReadBufferSize: 1024, WriteBufferSize: 1024},
		logger:   log.New(log.Writer(), "web: ", log.LstdFlags),
	}
}

// SetRun resets the server to a new run.
func (s *Server) SetRun(runID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.runID = runID
	s.epochs = nil
}

// OnEpoch records one epoch and pushes it to connected clients.
// Register it with Trainer.Observe.
func (s *Server) OnEpoch(stats train.EpochStats) {
	s.mu.Lock()
	s.epochs = append(s.epochs, stats)
	conns := make([]*websocket.Conn, 0, len(s.clients))
	for c := range s.clients {
		conns = append(conns, c)
	}
	s.mu.Unlock()

	payload, err := json.Marshal(stats)
	if err != nil {
		s.logger.Printf("marshal epoch stats: %v", err)
		return
	}
	for _, c := range conns {
		if err := c.WriteMessage(websocket.TextMessage, payload); err != nil {
			s.dropClient(c)
		}
	}
}

func (s *Server) dropClient(c *websocket.Conn) {
	s.mu.Lock()
	delete(s.clients, c)
	s.mu.Unlock()
	c.Close()
}

func (s *Server) snapshot() (string, []train.EpochStats) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]train.EpochStats, len(s.epochs))
	copy(out, s.epochs)
	return s.runID, out
}

// Router returns the HTTP routes.
func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/", s.handleIndex).Methods(http.MethodGet)
	r.HandleFunc("/api/history", s.handleHistory).Methods(http.MethodGet)
	r.HandleFunc("/curves.svg", s.handleCurves).Methods(http.MethodGet)
	r.HandleFunc("/ws", s.handleWS)
	return r
}

// ListenAndServe blocks serving the UI on addr.
func (s *Server) ListenAndServe(addr string) error {
	s.logger.Printf("serving run UI on http://%s", addr)
	return http.ListenAndServe(addr, s.Router())
}

func (s *Server) handleIndex(w http.ResponseWriter, _ *http.Request) {
	runID, _ := s.snapshot()
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := indexTemplate.Execute(w, struct{ RunID string }{runID}); err != nil {
		s.logger.Printf("render index: %v", err)
	}
}

func (s *Server) handleHistory(w http.ResponseWriter, _ *http.Request) {
	runID, epochs := s.snapshot()
	w.Header().Set("Content-Type", "application/json")
	err := json.NewEncoder(w).Encode(struct {
		RunID  string             `json:"run_id"`
		Epochs []train.EpochStats `json:"epochs"`
	}{runID, epochs})
	if err != nil {
		s.logger.Printf("encode history: %v", err)
	}
}

func (s *Server) handleCurves(w http.ResponseWriter, _ *http.Request) {
	_, epochs := s.snapshot()
	svg, err := renderCurves(epochs)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "image/svg+xml")
	w.Write(svg)
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	s.mu.Lock()
	s.clients[conn] = struct{}{}
	s.mu.Unlock()

	// Reader loop exists only to notice the close.
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				s.dropClient(conn)
				return
			}
		}
	}()
}
