package server

import (
	"context"
	"net/http"

	"github.com/creachadair/jrpc2"
	cws "github.com/coder/websocket"
)

// wsOriginPatterns admits the extension dashboard and local pages.
var wsOriginPatterns = []string{
	"chrome-extension://*",
	"moz-extension://*",
	"localhost:*",
	"127.0.0.1:*",
}

// wsChannel adapts a coder/websocket.Conn to the jrpc2 Channel interface.
type wsChannel struct {
	conn *cws.Conn
	ctx  context.Context
}

func (c *wsChannel) Send(data []byte) error {
	return c.conn.Write(c.ctx, cws.MessageText, data)
}

func (c *wsChannel) Recv() ([]byte, error) {
	_, data, err := c.conn.Read(c.ctx)
	return data, err
}

// Close shuts down the WebSocket connection with a normal closure status.
func (c *wsChannel) Close() error {
	return c.conn.Close(cws.StatusNormalClosure, "")
}

// serveWS runs one jrpc2 server per WebSocket connection. Each server is
// registered with the notifier for as long as the connection lives.
func (rs *RPCServer) serveWS(w http.ResponseWriter, r *http.Request) {
	conn, err := cws.Accept(w, r, &cws.AcceptOptions{OriginPatterns: wsOriginPatterns})
	if err != nil {
		rs.log.Warning("websocket accept: %v", err)
		return
	}
	srv := jrpc2.NewServer(rs.methods, &jrpc2.ServerOptions{AllowPush: true})
	rs.notifier.Register(srv)
	defer rs.notifier.Unregister(srv)

	srv.Start(&wsChannel{conn: conn, ctx: r.Context()})
	if err := srv.Wait(); err != nil {
		rs.log.Debug("websocket client gone: %v", err)
	}
}
