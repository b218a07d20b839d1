package progress

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
)

// Frame - one progress update pushed to subscribed clients
type Frame struct {
	JobID    string  `json:"jobId"`
	Fraction float64 `json:"fraction"` // 0.0-1.0
	Status   string  `json:"status"`
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		// allow all origins; the UI shell runs on a separate host
		return true
	},
}

type client struct {
	conn *websocket.Conn
	send chan []byte
}

// Hub - fans job progress frames out to WebSocket subscribers per job id
type Hub struct {
	mutex sync.RWMutex
	subs  map[string]map[*client]bool
}

func NewHub() *Hub {
	return &Hub{
		subs: make(map[string]map[*client]bool),
	}
}

// Publish - broadcast a frame to every subscriber of the job
func (h *Hub) Publish(frame Frame) {
	messageBytes, err := json.Marshal(frame)
	if err != nil {
		log.Printf("Error marshaling progress frame: %v", err)
		return
	}

	h.mutex.RLock()
	defer h.mutex.RUnlock()

	for c := range h.subs[frame.JobID] {
		select {
		case c.send <- messageBytes:
		default:
			// slow client, drop the frame
		}
	}
}

// SubscriberCount - number of open subscriptions for a job
func (h *Hub) SubscriberCount(jobID string) int {
	h.mutex.RLock()
	defer h.mutex.RUnlock()
	return len(h.subs[jobID])
}

func (h *Hub) subscribe(jobID string, c *client) {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	if h.subs[jobID] == nil {
		h.subs[jobID] = make(map[*client]bool)
	}
	h.subs[jobID][c] = true
}

func (h *Hub) unsubscribe(jobID string, c *client) {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	if clients, ok := h.subs[jobID]; ok {
		if clients[c] {
			delete(clients, c)
			close(c.send)
		}
		if len(clients) == 0 {
			delete(h.subs, jobID)
		}
	}
}

// HandleWebSocket - GET /ws/progress?job=<jobId>
func (h *Hub) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	jobID := r.URL.Query().Get("job")
	if jobID == "" {
		http.Error(w, "Missing job parameter", http.StatusBadRequest)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("WebSocket upgrade failed: %v", err)
		return
	}

	c := &client{
		conn: conn,
		send: make(chan []byte, 64),
	}

	log.Printf("🔍 New progress subscription - Job: %s", jobID)
	h.subscribe(jobID, c)

	go c.writePump()
	go h.readPump(jobID, c)
}

// readPump - drain (and ignore) client messages, detect disconnect
func (h *Hub) readPump(jobID string, c *client) {
	defer func() {
		h.unsubscribe(jobID, c)
		c.conn.Close()
	}()

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("WebSocket error: %v", err)
			}
			break
		}
	}
}

// writePump - push queued frames to the client
func (c *client) writePump() {
	defer c.conn.Close()

	for message := range c.send {
		if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
			log.Printf("WebSocket write error: %v", err)
			return
		}
	}
	c.conn.WriteMessage(websocket.CloseMessage, []byte{})
}
