package ads

import (
	"errors"
	"fmt"
	"sync"

	"p2pex.com/internal/p2p/domain"
)

// ErrDuplicateID 广告 ID 重复属于编程错误（ID 生成器不唯一）
var ErrDuplicateID = errors.New("ads: duplicate listing id")

// Directory 内存广告目录：只追加，按插入顺序保存
type Directory struct {
	mu    sync.RWMutex
	order []*domain.Listing
	byID  map[string]*domain.Listing
}

func NewDirectory() *Directory {
	return &Directory{byID: make(map[string]*domain.Listing)}
}

// Append 追加一条广告；重复 ID 直接拒绝，不覆盖
func (d *Directory) Append(l *domain.Listing) error {
	if l == nil || l.ID == "" {
		return errors.New("ads: listing without id")
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.byID[l.ID]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateID, l.ID)
	}
	d.byID[l.ID] = l
	d.order = append(d.order, l)
	return nil
}

func (d *Directory) Get(id string) (*domain.Listing, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	l, ok := d.byID[id]
	return l, ok
}

// All 返回快照，调用方可以随意改切片本身
func (d *Directory) All() []*domain.Listing {
	d.mu.RLock()
	defer d.mu.RUnlock()
	out := make([]*domain.Listing, len(d.order))
	copy(out, d.order)
	return out
}

func (d *Directory) Len() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.order)
}
