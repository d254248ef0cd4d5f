package client

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/gorilla/websocket"

	"github.com/louisbranch/tabletop.space/internal/board/transport/ws"
)

const dialQueueSize = 16

// Dial connects to a board server's /ws endpoint and returns a channel of
// relayed envelopes. The channel closes when the connection drops or the
// context ends; malformed frames are logged and skipped.
func Dial(ctx context.Context, url string, logger *log.Logger) (<-chan ws.Envelope, error) {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", url, err)
	}

	envelopes := make(chan ws.Envelope, dialQueueSize)
	stop := context.AfterFunc(ctx, func() {
		conn.Close()
	})
	go func() {
		defer stop()
		defer close(envelopes)
		defer conn.Close()
		for {
			_, raw, err := conn.ReadMessage()
			if err != nil {
				return
			}
			var env ws.Envelope
			if err := json.Unmarshal(raw, &env); err != nil {
				logger.Printf("discarding malformed envelope: %v", err)
				continue
			}
			select {
			case envelopes <- env:
			case <-ctx.Done():
				return
			}
		}
	}()
	return envelopes, nil
}
