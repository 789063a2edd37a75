package sink

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/specialistvlad/partsegnet/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sioserver "github.com/zishang520/socket.io/v2/socket"
)

// socketIOServer runs an in-process socket.io server. Every payload received
// on event is recorded and handed to reply with the emitting client.
type socketIOServer struct {
	URL string

	mu       sync.Mutex
	payloads []map[string]any
}

func (s *socketIOServer) received() []map[string]any {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]map[string]any(nil), s.payloads...)
}

func newSocketIOServer(t *testing.T, event string, reply func(client *sioserver.Socket)) *socketIOServer {
	t.Helper()

	s := &socketIOServer{}
	io := sioserver.NewServer(nil, nil)
	io.On("connection", func(clients ...any) {
		client := clients[0].(*sioserver.Socket)
		client.On(event, func(args ...any) {
			if len(args) > 0 {
				if payload, ok := args[0].(map[string]any); ok {
					s.mu.Lock()
					s.payloads = append(s.payloads, payload)
					s.mu.Unlock()
				}
			}
			if reply != nil {
				reply(client)
			}
		})
	})

	mux := http.NewServeMux()
	mux.Handle("/socket.io/", io.ServeHandler(nil))
	srv := httptest.NewServer(mux)
	t.Cleanup(func() {
		io.Close(nil)
		srv.Close()
	})
	s.URL = srv.URL
	return s
}

func TestSocketIO_Acknowledged(t *testing.T) {
	testCases := []struct {
		name     string
		sink     SocketIO
		event    string
		ackEvent string
	}{
		{name: "default events", event: DefaultEvent, ackEvent: DefaultAckEvent},
		{
			name:     "custom events",
			sink:     SocketIO{Event: "prototxt", AckEvent: "prototxt_stored"},
			event:    "prototxt",
			ackEvent: "prototxt_stored",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			ctx, logs := testutil.LogContext(t)
			srv := newSocketIOServer(t, tc.event, func(client *sioserver.Socket) {
				_ = client.Emit(tc.ackEvent, "ok")
			})

			s := tc.sink
			s.URL = srv.URL
			s.Timeout = 10 * time.Second
			require.NoError(t, s.Publish(ctx, testArtifact))

			got := srv.received()
			require.Len(t, got, 1)
			assert.Equal(t, map[string]any{
				"network": testArtifact.Network,
				"kind":    KindPrototxt,
				"content": string(testArtifact.Data),
			}, got[0])
			testutil.AssertLogged(t, logs, "Artifact acknowledged")
		})
	}
}

func TestSocketIO_AckTimeout(t *testing.T) {
	ctx, _ := testutil.LogContext(t)
	// The server reads the artifact but never acknowledges it.
	srv := newSocketIOServer(t, DefaultEvent, nil)

	start := time.Now()
	err := (&SocketIO{URL: srv.URL, Timeout: 2 * time.Second}).Publish(ctx, testArtifact)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "timed out after 2s waiting for event 'network_ack'")
	assert.Less(t, time.Since(start), 10*time.Second)
	assert.Eventually(t, func() bool { return len(srv.received()) == 1 }, 5*time.Second, 20*time.Millisecond)
}
