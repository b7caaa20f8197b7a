package feed

import (
	"context"
	"sync"

	"go.uber.org/zap"
	"p2pex.com/internal/p2p/domain"
	"p2pex.com/pkg/logger"
)

// Hub topic -> 订阅连接；同时保存每个 topic 最后一条，新订阅立刻回放
type Hub struct {
	mu   sync.RWMutex
	subs map[string]map[*Conn]struct{}
	last map[string][]byte
}

func NewHub() *Hub {
	return &Hub{
		subs: make(map[string]map[*Conn]struct{}, 8),
		last: make(map[string][]byte, 8),
	}
}

func (h *Hub) Subscribe(c *Conn, topics []string) {
	// 记录订阅和取快照在同一把锁里，避免订阅后立刻 publish 却取不到
	h.mu.Lock()
	snaps := make([][]byte, 0, len(topics))
	for _, t := range topics {
		set := h.subs[t]
		if set == nil {
			set = make(map[*Conn]struct{}, 16)
			h.subs[t] = set
		}
		set[c] = struct{}{}
		if b := h.last[t]; b != nil {
			snaps = append(snaps, b)
		}
	}
	h.mu.Unlock()

	for _, b := range snaps {
		c.Offer(b)
	}
}

func (h *Hub) Unsubscribe(c *Conn, topics []string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, t := range topics {
		if set := h.subs[t]; set != nil {
			delete(set, c)
			if len(set) == 0 {
				delete(h.subs, t)
			}
		}
	}
}

func (h *Hub) RemoveConn(c *Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for topic, m := range h.subs {
		delete(m, c)
		if len(m) == 0 {
			delete(h.subs, topic)
		}
	}
}

// Broadcast 非阻塞投递；慢客户端在 Offer 里被踢掉，不会卡住广播
func (h *Hub) Broadcast(topic string, payload []byte) int {
	h.mu.Lock()
	h.last[topic] = payload
	conns := make([]*Conn, 0, len(h.subs[topic]))
	for c := range h.subs[topic] {
		conns = append(conns, c)
	}
	h.mu.Unlock()

	n := 0
	for _, c := range conns {
		if c.Offer(payload) {
			n++
		}
	}
	return n
}

// Publish 新广告同时发到 ads 和 ads:<TOKEN>
func (h *Hub) Publish(ctx context.Context, l *domain.Listing) error {
	for _, topic := range []string{TopicAll, TopicForToken(l.Token)} {
		b, err := encodeListing(topic, l)
		if err != nil {
			return err
		}
		n := h.Broadcast(topic, b)
		logger.Debug(ctx, "listing broadcast", zap.String("topic", topic), zap.Int("clients", n))
	}
	return nil
}

// Subscribers 某个 topic 的订阅数
func (h *Hub) Subscribers(topic string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs[topic])
}
