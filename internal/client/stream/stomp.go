package stream

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/coder/websocket"
	"github.com/dmitrijs2005/logminer/internal/common"
	"github.com/go-stomp/stomp/v3"
)

const maxFrameBytes = 1 << 20

var stompSubprotocols = []string{"v12.stomp", "v11.stomp", "v10.stomp"}

// STOMPDialer connects to a STOMP broker over a raw WebSocket, such as the
// /websocket transport of a SockJS endpoint.
type STOMPDialer struct {
	URL        string
	HeartBeat  time.Duration
	HTTPClient *http.Client
}

func (d *STOMPDialer) Dial(ctx context.Context, accessToken string) (Conn, error) {
	u, err := url.Parse(d.URL)
	if err != nil {
		return nil, fmt.Errorf("parse broker url: %w", err)
	}

	header := http.Header{}
	header.Set(common.AuthorizationHeaderName, common.BearerToken(accessToken))

	ws, _, err := websocket.Dial(ctx, d.URL, &websocket.DialOptions{
		HTTPClient:   d.HTTPClient,
		HTTPHeader:   header,
		Subprotocols: stompSubprotocols,
	})
	if err != nil {
		return nil, fmt.Errorf("websocket dial: %w", err)
	}
	ws.SetReadLimit(maxFrameBytes)

	nc := websocket.NetConn(context.Background(), ws, websocket.MessageText)

	// stomp.Connect has no context of its own.
	stop := context.AfterFunc(ctx, func() { _ = nc.Close() })
	sc, err := stomp.Connect(nc,
		stomp.ConnOpt.Host(u.Hostname()),
		stomp.ConnOpt.Header(common.AuthorizationHeaderName, common.BearerToken(accessToken)),
		stomp.ConnOpt.HeartBeat(d.HeartBeat, d.HeartBeat),
	)
	if !stop() {
		if err == nil {
			_ = sc.MustDisconnect()
		}
		return nil, fmt.Errorf("stomp connect: %w", ctx.Err())
	}
	if err != nil {
		_ = nc.Close()
		return nil, fmt.Errorf("stomp connect: %w", err)
	}

	return &stompConn{conn: sc}, nil
}

type stompConn struct {
	conn *stomp.Conn
}

func (c *stompConn) Subscribe(destination string) (Subscription, error) {
	sub, err := c.conn.Subscribe(destination, stomp.AckAuto)
	if err != nil {
		return nil, err
	}
	return &stompSubscription{sub: sub}, nil
}

// Close drops the connection without waiting for a broker receipt.
func (c *stompConn) Close() error {
	return c.conn.MustDisconnect()
}

type stompSubscription struct {
	sub *stomp.Subscription
}

func (s *stompSubscription) Read(ctx context.Context) ([]byte, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case msg, ok := <-s.sub.C:
		if !ok {
			return nil, ErrSubscriptionClosed
		}
		if msg.Err != nil {
			return nil, msg.Err
		}
		return msg.Body, nil
	}
}
