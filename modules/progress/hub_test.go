package progress

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dialHub(t *testing.T, server *httptest.Server, jobID string) *websocket.Conn {
	t.Helper()

	url := "ws" + strings.TrimPrefix(server.URL, "http") + "/ws/progress?job=" + jobID
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func waitForSubscribers(t *testing.T, hub *Hub, jobID string, want int) {
	t.Helper()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if hub.SubscriberCount(jobID) == want {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("job %s never reached %d subscribers (have %d)", jobID, want, hub.SubscriberCount(jobID))
}

func TestHandleWebSocket_RequiresJobParam(t *testing.T) {
	hub := NewHub()

	req := httptest.NewRequest(http.MethodGet, "/ws/progress", nil)
	rec := httptest.NewRecorder()
	hub.HandleWebSocket(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Missing job parameter")
}

func TestPublishReachesSubscriber(t *testing.T) {
	hub := NewHub()
	server := httptest.NewServer(http.HandlerFunc(hub.HandleWebSocket))
	defer server.Close()

	conn := dialHub(t, server, "job-1")
	waitForSubscribers(t, hub, "job-1", 1)

	hub.Publish(Frame{JobID: "job-1", Fraction: 0.25, Status: "processing"})

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, payload, err := conn.ReadMessage()
	require.NoError(t, err)

	var frame Frame
	require.NoError(t, json.Unmarshal(payload, &frame))
	assert.Equal(t, "job-1", frame.JobID)
	assert.Equal(t, 0.25, frame.Fraction)
	assert.Equal(t, "processing", frame.Status)
}

func TestPublishIsScopedToJob(t *testing.T) {
	hub := NewHub()
	server := httptest.NewServer(http.HandlerFunc(hub.HandleWebSocket))
	defer server.Close()

	connA := dialHub(t, server, "job-a")
	dialHub(t, server, "job-b")
	waitForSubscribers(t, hub, "job-a", 1)
	waitForSubscribers(t, hub, "job-b", 1)

	hub.Publish(Frame{JobID: "job-a", Fraction: 1.0, Status: "completed"})

	connA.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, payload, err := connA.ReadMessage()
	require.NoError(t, err)

	var frame Frame
	require.NoError(t, json.Unmarshal(payload, &frame))
	assert.Equal(t, "job-a", frame.JobID)
}

func TestDisconnectRemovesSubscription(t *testing.T) {
	hub := NewHub()
	server := httptest.NewServer(http.HandlerFunc(hub.HandleWebSocket))
	defer server.Close()

	conn := dialHub(t, server, "job-1")
	waitForSubscribers(t, hub, "job-1", 1)

	conn.Close()
	waitForSubscribers(t, hub, "job-1", 0)

	// publishing to a job with no subscribers must not panic
	hub.Publish(Frame{JobID: "job-1", Fraction: 0.5, Status: "processing"})
}
