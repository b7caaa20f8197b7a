package journal

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/segmentio/encoding/json"
	"p2pex.com/internal/p2p/domain"
	"p2pex.com/pkg/wal"
)

const (
	opPut    = "put"
	opStatus = "status"
)

type entry struct {
	Op     string              `json:"op"`
	Record *domain.TradeRecord `json:"record,omitempty"`
	ID     string              `json:"id,omitempty"`
	Status domain.TradeStatus  `json:"status,omitempty"`
}

// Trades 没有数据库时的交易记录持久化：追加写 wal 文件，启动时回放
type Trades struct {
	path string
	w    *wal.Writer
}

var (
	_ domain.TradeStore         = (*Trades)(nil)
	_ domain.TradeStatusUpdater = (*Trades)(nil)
)

func Open(path string, syncEachWrite bool) (*Trades, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	w, err := wal.Open(path, wal.Options{SyncEachWrite: syncEachWrite})
	if err != nil {
		return nil, fmt.Errorf("open trade journal %s: %w", path, err)
	}
	return &Trades{path: path, w: w}, nil
}

func (t *Trades) Create(_ context.Context, r *domain.TradeRecord) error {
	return t.append(entry{Op: opPut, Record: r})
}

func (t *Trades) UpdateStatus(_ context.Context, id string, st domain.TradeStatus) error {
	return t.append(entry{Op: opStatus, ID: id, Status: st})
}

func (t *Trades) append(e entry) error {
	b, err := json.Marshal(e)
	if err != nil {
		return err
	}
	_, err = t.w.Append(b)
	return err
}

// Load 回放出所有记录，按首次写入顺序；状态取最后一次变更
func (t *Trades) Load(context.Context) ([]*domain.TradeRecord, error) {
	if err := t.w.Flush(); err != nil {
		return nil, err
	}
	var (
		order []*domain.TradeRecord
		byID  = make(map[string]*domain.TradeRecord)
	)
	_, err := wal.Replay(t.path, 0, func(p []byte) error {
		var e entry
		if err := json.Unmarshal(p, &e); err != nil {
			return fmt.Errorf("decode journal entry: %w", err)
		}
		switch e.Op {
		case opPut:
			if e.Record == nil {
				return nil
			}
			if old, ok := byID[e.Record.ID]; ok {
				*old = *e.Record
				return nil
			}
			byID[e.Record.ID] = e.Record
			order = append(order, e.Record)
		case opStatus:
			if r, ok := byID[e.ID]; ok {
				r.Status = e.Status
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return order, nil
}

func (t *Trades) Close() error {
	return t.w.Close()
}
