package probe

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"golang.org/x/sync/errgroup"
)

const wsGreeting = "Hello, WebSocket!"

// WebSocket probes the realtime endpoint: dial with the user cookie, send
// one text frame, wait for one frame back, then close cleanly. Whatever
// goes wrong inside the probe is contained in the Result; a failure here
// must not take the run (and its teardown) down with it.
func (r *Runner) WebSocket(ctx context.Context) (result Result) {
	const name = "websocket echo"
	r.out.Stepf(name)

	defer func() {
		if rec := recover(); rec != nil {
			result = Result{Name: name, Passed: false, Detail: fmt.Sprintf("probe panicked: %v", rec)}
		}
	}()

	dialer := websocket.Dialer{
		HandshakeTimeout: r.wsTimeout,
	}
	header := http.Header{}
	header.Set("Cookie", r.client.AuthCookieHeader())

	dialCtx, cancel := context.WithTimeout(ctx, r.wsTimeout)
	defer cancel()

	conn, handshake, err := dialer.DialContext(dialCtx, r.wsURL, header)
	if err != nil {
		status := 0
		if handshake != nil {
			status = handshake.StatusCode
		}
		return Result{Name: name, Passed: false, Status: status, Detail: fmt.Sprintf("dial failed: %v", err)}
	}
	defer conn.Close()
	r.out.Stepf("connected to %s", r.wsURL)

	// The round trip runs in its own goroutine; a second one tears the
	// connection down on context expiry, since a blocked ReadMessage
	// does not watch the context on its own.
	var received []byte
	deadline := time.Now().Add(r.wsTimeout)
	done := make(chan struct{})

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		defer close(done)
		if err := conn.SetWriteDeadline(deadline); err != nil {
			return fmt.Errorf("set write deadline: %w", err)
		}
		if err := conn.WriteMessage(websocket.TextMessage, []byte(wsGreeting)); err != nil {
			return fmt.Errorf("send failed: %w", err)
		}
		if err := conn.SetReadDeadline(deadline); err != nil {
			return fmt.Errorf("set read deadline: %w", err)
		}
		_, msg, err := conn.ReadMessage()
		if err != nil {
			return fmt.Errorf("no frame received: %w", err)
		}
		received = msg
		return nil
	})
	g.Go(func() error {
		select {
		case <-gctx.Done():
			conn.Close()
			return gctx.Err()
		case <-done:
			return nil
		}
	})
	if err := g.Wait(); err != nil {
		return Result{Name: name, Passed: false, Detail: err.Error()}
	}
	r.out.Stepf("received: %s", received)

	// Best effort; the round trip already succeeded.
	_ = conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), deadline)

	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("round trip ok (%d bytes)", len(received))}
}
