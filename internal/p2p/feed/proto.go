package feed

import (
	"github.com/segmentio/encoding/json"
	"p2pex.com/internal/p2p/domain"
)

// TopicAll 新连接默认订阅；按代币细分的 topic 形如 ads:USDC
const TopicAll = "ads"

func TopicForToken(t domain.Token) string { return TopicAll + ":" + string(t) }

type ClientMsg struct {
	Type   string   `json:"type"`   // "sub" | "unsub"
	Topics []string `json:"topics"` // topic list
}

type ServerMsg struct {
	Type    string          `json:"type"` // "listing"
	Topic   string          `json:"topic"`
	Listing *domain.Listing `json:"listing"`
}

func encodeListing(topic string, l *domain.Listing) ([]byte, error) {
	return json.Marshal(ServerMsg{Type: "listing", Topic: topic, Listing: l})
}
