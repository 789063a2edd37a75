package sink

import (
	"context"
	"crypto/tls"
	"fmt"
	"net/url"
	"time"

	"github.com/specialistvlad/partsegnet/internal/ctxlog"
	"github.com/zishang520/engine.io-client-go/transports"
	"github.com/zishang520/engine.io/v2/types"
	"github.com/zishang520/socket.io-client-go/socket"
)

// Socket.io defaults.
const (
	DefaultEvent    = "network"
	DefaultAckEvent = "network_ack"
	DefaultTimeout  = 15 * time.Second
)

// SocketIO emits artifacts to a socket.io server and waits for the server to
// acknowledge them. A connection is opened per artifact.
type SocketIO struct {
	URL                string
	Namespace          string
	Event              string
	AckEvent           string
	Timeout            time.Duration
	InsecureSkipVerify bool
}

// Publish implements Sink.
func (s *SocketIO) Publish(ctx context.Context, a Artifact) error {
	event, ackEvent, timeout := s.Event, s.AckEvent, s.Timeout
	if event == "" {
		event = DefaultEvent
	}
	if ackEvent == "" {
		ackEvent = DefaultAckEvent
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	opCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	io, err := s.connect(opCtx)
	if err != nil {
		return err
	}
	defer io.Disconnect()

	logger := ctxlog.FromContext(ctx).With("sink", "socketio", "sid", io.Id(), "network", a.Network)

	acked := make(chan struct{}, 1)
	io.Once(types.EventName(ackEvent), func(...any) {
		logger.Debug("EVENT HANDLER: ack event received", "event", ackEvent)
		acked <- struct{}{}
	})

	logger.Debug("Emitting artifact", "event", event, "kind", a.Kind, "size", len(a.Data))
	io.Emit(event, map[string]any{
		"network": a.Network,
		"kind":    a.Kind,
		"content": string(a.Data),
	})

	select {
	case <-acked:
		logger.Info("Artifact acknowledged", "event", ackEvent)
		return nil
	case <-opCtx.Done():
		return fmt.Errorf("timed out after %v waiting for event '%s'", timeout, ackEvent)
	}
}

func (s *SocketIO) connect(ctx context.Context) (*socket.Socket, error) {
	logger := ctxlog.FromContext(ctx).With("sink", "socketio", "url", s.URL)

	parsedURL, err := url.Parse(s.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse URL: %w", err)
	}
	if parsedURL.Scheme == "" || parsedURL.Host == "" {
		return nil, fmt.Errorf("socket.io URL '%s' needs a scheme and a host", s.URL)
	}

	opts := socket.DefaultOptions()
	if parsedURL.Path != "" {
		opts.SetPath(parsedURL.Path)
	}
	if s.InsecureSkipVerify {
		logger.Warn("Skipping TLS certificate verification")
		opts.SetTLSClientConfig(&tls.Config{InsecureSkipVerify: true})
	}
	opts.SetTransports(types.NewSet(transports.WebSocket))
	opts.SetReconnection(false)

	connectChan := make(chan error, 1)

	baseURL := fmt.Sprintf("%s://%s", parsedURL.Scheme, parsedURL.Host)
	manager := socket.NewManager(baseURL, opts)
	io := manager.Socket(s.Namespace, opts)

	io.Once(types.EventName("connect"), func(...any) {
		logger.Debug("Successfully connected", "sid", io.Id())
		select {
		case connectChan <- nil:
		default:
		}
	})
	io.Once(types.EventName("connect_error"), func(errs ...any) {
		err := fmt.Errorf("connect_error")
		if len(errs) > 0 {
			if e, ok := errs[0].(error); ok {
				err = e
			}
		}
		logger.Debug("EVENT HANDLER: 'connect_error' event fired", "error", err)
		select {
		case connectChan <- err:
		default:
		}
	})

	logger.Debug("Initiating connection...")
	io.Connect()

	select {
	case err := <-connectChan:
		if err != nil {
			io.Disconnect()
			return nil, fmt.Errorf("socket.io connection failed: %w", err)
		}
		return io, nil
	case <-ctx.Done():
		io.Disconnect()
		return nil, fmt.Errorf("gave up waiting for socket.io connection: %w", ctx.Err())
	}
}
