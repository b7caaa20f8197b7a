package wallet

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"p2pex.com/pkg/logger"
	"p2pex.com/pkg/metrics"
	"p2pex.com/pkg/xerr"
)

// State 会话快照
type State struct {
	Connected bool   `json:"is_connected"`
	Account   string `json:"account,omitempty"`
	ChainID   int64  `json:"chain_id,omitempty"`
	Balance   string `json:"balance,omitempty"`
}

// errStale 刷新期间账户/链又变了，结果作废
var errStale = errors.New("wallet: stale refresh")

const defaultCallTimeout = 10 * time.Second

// Session 钱包会话
// 账户/链每变化一次 gen 加一；发出去的刷新带着旧 gen 回来就丢弃（后到的通知说了算）
type Session struct {
	p       Provider
	timeout time.Duration

	mu  sync.Mutex
	st  State
	gen uint64
}

// NewSession p 可以为 nil，表示没有检测到钱包
func NewSession(p Provider, timeout time.Duration) *Session {
	if timeout <= 0 {
		timeout = defaultCallTimeout
	}
	return &Session{p: p, timeout: timeout}
}

func (s *Session) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.st
}

// Connect 请求账户并读取链和余额
func (s *Session) Connect(ctx context.Context) (State, error) {
	if s.p == nil {
		return State{}, xerr.NewErrCode(xerr.WalletUnavailable)
	}
	c, cancel := context.WithTimeout(ctx, s.timeout)
	accounts, err := s.p.RequestAccounts(c)
	cancel()
	if err != nil {
		return State{}, xerr.Wrap(err, xerr.WalletUnavailable, "request accounts")
	}
	if len(accounts) == 0 {
		return State{}, xerr.Wrap(ErrNoAccounts, xerr.WalletUnavailable, "request accounts")
	}

	gen := s.setAccount(accounts[0])
	if err := s.refresh(ctx, gen); err != nil && !errors.Is(err, errStale) {
		// 读不到链/余额就算没连上，回滚半成品状态
		s.mu.Lock()
		if s.gen == gen {
			s.gen++
			s.st = State{}
		}
		s.mu.Unlock()
		return State{}, xerr.Wrap(err, xerr.WalletUnavailable, "read wallet state")
	}
	return s.Snapshot(), nil
}

func (s *Session) Disconnect() {
	s.mu.Lock()
	s.gen++
	s.st = State{}
	s.mu.Unlock()
}

// HandleEvent 处理账户/链变化；空账户列表等同于断开
func (s *Session) HandleEvent(ctx context.Context, ev Event) {
	metrics.WalletEventsTotal.WithLabelValues(ev.Kind).Inc()

	var gen uint64
	switch ev.Kind {
	case EventAccountsChanged:
		if len(ev.Accounts) == 0 {
			logger.Info(ctx, "wallet accounts cleared, disconnecting")
			s.Disconnect()
			return
		}
		gen = s.setAccount(ev.Accounts[0])
	case EventChainChanged:
		s.mu.Lock()
		if !s.st.Connected {
			s.mu.Unlock()
			return
		}
		s.gen++
		gen = s.gen
		s.st.ChainID = ev.ChainID
		s.st.Balance = ""
		s.mu.Unlock()
	default:
		logger.Warn(ctx, "unknown wallet event", zap.String("kind", ev.Kind))
		return
	}

	if err := s.refresh(ctx, gen); err != nil && !errors.Is(err, errStale) {
		logger.Warn(ctx, "wallet refresh after event failed", zap.String("kind", ev.Kind), zap.Error(err))
	}
}

// Watch 消费 Provider 推送的通知，直到 ctx 结束或通道关闭
func (s *Session) Watch(ctx context.Context, events <-chan Event) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			s.HandleEvent(ctx, ev)
		}
	}
}

// Refresh 重新读取当前账户的链和余额
func (s *Session) Refresh(ctx context.Context) (State, error) {
	s.mu.Lock()
	connected, gen := s.st.Connected, s.gen
	s.mu.Unlock()
	if !connected {
		return State{}, xerr.NewErrCode(xerr.WalletUnavailable)
	}
	if err := s.refresh(ctx, gen); err != nil && !errors.Is(err, errStale) {
		return State{}, xerr.Wrap(err, xerr.WalletUnavailable, "refresh wallet")
	}
	return s.Snapshot(), nil
}

func (s *Session) SendTransaction(ctx context.Context, to string, value decimal.Decimal) (string, error) {
	st := s.Snapshot()
	if s.p == nil || !st.Connected {
		return "", xerr.NewErrCode(xerr.WalletUnavailable)
	}
	if !common.IsHexAddress(to) {
		return "", xerr.NewField(xerr.RequestParamsError, "to", "invalid recipient address")
	}
	if !value.IsPositive() {
		return "", xerr.NewField(xerr.InvalidAmount, "value", xerr.MapErrMsg(xerr.InvalidAmount))
	}

	c, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	hash, err := s.p.SendTransaction(c, st.Account, to, value)
	if err != nil {
		return "", xerr.Wrap(err, xerr.ServerCommonError, "Transaction failed")
	}
	logger.Info(ctx, "wallet transaction sent", zap.String("hash", hash), zap.String("to", to))
	return hash, nil
}

// SwitchNetwork 能推送通知的 Provider 由通知驱动状态，否则这里直接更新
func (s *Session) SwitchNetwork(ctx context.Context, chainID int64) error {
	if s.p == nil {
		return xerr.NewErrCode(xerr.WalletUnavailable)
	}
	c, cancel := context.WithTimeout(ctx, s.timeout)
	err := s.p.SwitchNetwork(c, chainID)
	cancel()
	if errors.Is(err, ErrChainNotAdded) {
		return xerr.NewField(xerr.RequestParamsError, "chain_id", "Please add this network to your wallet first")
	}
	if err != nil {
		return xerr.Wrap(err, xerr.ServerCommonError, "switch network")
	}
	if _, ok := s.p.(Notifier); !ok {
		s.HandleEvent(ctx, Event{Kind: EventChainChanged, ChainID: chainID})
	}
	return nil
}

func (s *Session) setAccount(account string) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gen++
	s.st = State{Connected: true, Account: account}
	return s.gen
}

// refresh 在锁外做 IO，回来后 gen 不一致就丢弃
func (s *Session) refresh(ctx context.Context, gen uint64) error {
	s.mu.Lock()
	account := s.st.Account
	s.mu.Unlock()

	c, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	chainID, err := s.p.ChainID(c)
	if err != nil {
		return err
	}
	bal, err := s.p.Balance(c, account)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.gen || !strings.EqualFold(account, s.st.Account) {
		return errStale
	}
	s.st.ChainID = chainID
	s.st.Balance = bal.String()
	return nil
}
