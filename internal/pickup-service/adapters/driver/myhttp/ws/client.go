package ws

import (
	"context"

	websocketdto "waste-collect/internal/pickup-service/core/domain/websocket_dto"

	"github.com/gorilla/websocket"
)

type Client struct {
	ctx    context.Context
	conn   *websocket.Conn
	dis    *Dispatcher
	egress chan websocketdto.Event
	userID string
}

func NewClient(ctx context.Context, conn *websocket.Conn, dis *Dispatcher, userID string) *Client {
	return &Client{
		ctx:    ctx,
		conn:   conn,
		dis:    dis,
		egress: make(chan websocketdto.Event, 16),
		userID: userID,
	}
}

// ReadMessages drains the connection until the peer goes away. Inbound
// payloads are ignored: the pickup stream is push-only.
func (c *Client) ReadMessages() {
	defer c.dis.RemoveClient(c)
	c.conn.SetReadLimit(1024)

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (c *Client) WriteMessages() {
	defer c.dis.RemoveClient(c)

	for {
		select {
		case <-c.ctx.Done():
			return
		case event, ok := <-c.egress:
			if !ok {
				return
			}
			if err := c.conn.WriteJSON(event); err != nil {
				return
			}
		}
	}
}
