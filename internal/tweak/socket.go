package tweak

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/vk/xodrun/internal/ctxlog"
	"github.com/zishang520/engine.io-client-go/transports"
	"github.com/zishang520/engine.io/v2/types"
	"github.com/zishang520/socket.io-client-go/socket"
)

// DefaultSocketEvent is the event carrying tweak commands.
const DefaultSocketEvent = "xod:tweak"

// SocketSource receives tweak commands as socket.io events. Every event
// payload is treated as one command line.
type SocketSource struct {
	URL                string
	Namespace          string
	Event              string
	InsecureSkipVerify bool
	// ConnectTimeout defaults to 15s.
	ConnectTimeout time.Duration
}

// Run connects, feeds incoming commands into buf and disconnects once ctx is
// cancelled.
func (s *SocketSource) Run(ctx context.Context, buf *LineBuffer) error {
	logger := ctxlog.FromContext(ctx).With("source", "socketio", "url", s.URL)

	parsedURL, err := url.Parse(s.URL)
	if err != nil {
		return fmt.Errorf("failed to parse debug socket URL: %w", err)
	}
	if parsedURL.Scheme == "" || parsedURL.Host == "" {
		return fmt.Errorf("debug socket URL %q needs a scheme and a host", s.URL)
	}

	opts := socket.DefaultOptions()
	opts.SetPath(parsedURL.Path)
	if s.InsecureSkipVerify {
		logger.Warn("Skipping TLS certificate verification")
		opts.SetTLSClientConfig(&tls.Config{InsecureSkipVerify: true})
	}
	opts.SetTransports(types.NewSet(transports.WebSocket))

	baseURL := fmt.Sprintf("%s://%s", parsedURL.Scheme, parsedURL.Host)
	manager := socket.NewManager(baseURL, opts)
	io := manager.Socket(s.namespace(), opts)
	defer func() {
		logger.Debug("Disconnecting debug socket")
		io.Disconnect()
	}()

	connected := make(chan error, 1)
	io.Once(types.EventName("connect"), func(...any) {
		logger.Info("Debug socket connected", "sid", io.Id())
		connected <- nil
	})
	io.Once(types.EventName("connect_error"), func(errs ...any) {
		err := errors.New("connect_error")
		if len(errs) > 0 {
			if e, ok := errs[0].(error); ok {
				err = e
			}
		}
		connected <- err
	})
	io.On(types.EventName(s.event()), func(data ...any) {
		for _, d := range data {
			line := payloadLine(d)
			if line == "" {
				continue
			}
			_, _ = buf.Write([]byte(line))
		}
	})

	io.Connect()

	timeout := s.ConnectTimeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	select {
	case err := <-connected:
		if err != nil {
			return fmt.Errorf("debug socket connection failed: %w", err)
		}
	case <-ctx.Done():
		return nil
	case <-time.After(timeout):
		return fmt.Errorf("timed out after %s waiting for debug socket connection", timeout)
	}

	<-ctx.Done()
	return nil
}

func (s *SocketSource) namespace() string {
	if s.Namespace == "" {
		return "/"
	}
	return s.Namespace
}

func (s *SocketSource) event() string {
	if s.Event == "" {
		return DefaultSocketEvent
	}
	return s.Event
}

// payloadLine turns an event argument into a newline-terminated command line.
func payloadLine(d any) string {
	var s string
	switch v := d.(type) {
	case string:
		s = v
	case []byte:
		s = string(v)
	case nil:
		return ""
	default:
		s = fmt.Sprint(v)
	}
	if !strings.HasSuffix(s, "\n") {
		s += "\n"
	}
	return s
}
