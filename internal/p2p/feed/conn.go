package feed

import (
	"context"
	"net"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"github.com/segmentio/encoding/json"
	"go.uber.org/zap"
	"p2pex.com/pkg/logger"
	"p2pex.com/pkg/metrics"
	"p2pex.com/pkg/safe"
)

type Conn struct {
	ws   *websocket.Conn
	hub  *Hub
	send chan []byte

	quit     chan struct{}
	quitOnce sync.Once
	closed   atomic.Bool
}

func newConn(h *Hub, ws *websocket.Conn, buf int) *Conn {
	return &Conn{
		ws:   ws,
		hub:  h,
		send: make(chan []byte, buf),
		quit: make(chan struct{}),
	}
}

// Offer 发送队列满就把连接踢掉（慢客户端自己承担）
func (c *Conn) Offer(payload []byte) bool {
	if c.closed.Load() {
		return false
	}
	select {
	case c.send <- payload:
		return true
	default:
		c.kick()
		return false
	}
}

func (c *Conn) kick() {
	c.quitOnce.Do(func() {
		c.closed.Store(true)
		close(c.quit)
	})
}

type Server struct {
	Hub      *Hub
	Upgrader websocket.Upgrader
	ctx      context.Context

	SendBuf    int
	PongWait   time.Duration
	PingPeriod time.Duration
	WriteWait  time.Duration
	ReadLimit  int64
}

func NewServer(ctx context.Context, h *Hub) *Server {
	return &Server{
		Hub: h,
		ctx: ctx,
		Upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// 跨域由 HTTP 层的 CORS 配置负责
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		SendBuf:    64,
		PongWait:   60 * time.Second,
		PingPeriod: 30 * time.Second,
		WriteWait:  5 * time.Second,
		ReadLimit:  1 << 10,
	}
}

func (s *Server) ServeWS(w http.ResponseWriter, r *http.Request) {
	wsConn, err := s.Upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Warn(r.Context(), "ws upgrade failed", zap.Error(err))
		return
	}
	c := newConn(s.Hub, wsConn, s.SendBuf)
	metrics.FeedClients.Inc()
	s.Hub.Subscribe(c, []string{TopicAll})

	safe.Go(func() { s.writePump(c) })
	safe.Go(func() { s.readPump(c) })
}

func (s *Server) readPump(c *Conn) {
	defer func() {
		c.hub.RemoveConn(c)
		c.kick()
		_ = c.ws.Close()
		metrics.FeedClients.Dec()
	}()

	c.ws.SetReadLimit(s.ReadLimit)
	_ = c.ws.SetReadDeadline(time.Now().Add(s.PongWait))
	c.ws.SetPongHandler(func(string) error {
		return c.ws.SetReadDeadline(time.Now().Add(s.PongWait))
	})

	for {
		_, b, err := c.ws.ReadMessage()
		if err != nil {
			if ne, ok := err.(net.Error); ok && ne.Timeout() {
				logger.Debug(s.ctx, "ws read timeout", zap.Error(err))
			} else if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) && !c.closed.Load() {
				logger.Debug(s.ctx, "ws read error", zap.Error(err))
			}
			return
		}
		var msg ClientMsg
		if json.Unmarshal(b, &msg) != nil {
			continue
		}
		switch msg.Type {
		case "sub":
			c.hub.Subscribe(c, msg.Topics)
		case "unsub":
			c.hub.Unsubscribe(c, msg.Topics)
		}
	}
}

func (s *Server) writePump(c *Conn) {
	ticker := time.NewTicker(s.PingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.ws.Close()
	}()

	for {
		select {
		case payload := <-c.send:
			_ = c.ws.SetWriteDeadline(time.Now().Add(s.WriteWait))
			if err := c.ws.WriteMessage(websocket.TextMessage, payload); err != nil {
				c.kick()
				return
			}
		case <-ticker.C:
			if err := c.ws.WriteControl(websocket.PingMessage, nil, time.Now().Add(s.WriteWait)); err != nil {
				c.kick()
				return
			}
		case <-c.quit:
			_ = c.ws.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "too slow"),
				time.Now().Add(s.WriteWait))
			return
		case <-s.ctx.Done():
			return
		}
	}
}
