package wallet

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
)

// 钱包通知类型
const (
	EventAccountsChanged = "accountsChanged"
	EventChainChanged    = "chainChanged"
)

// CodeChainNotAdded 钱包里还没有这条链（EIP-3085 约定的 4902）
const CodeChainNotAdded = 4902

var (
	// ErrChainNotAdded 切换到钱包未配置的网络
	ErrChainNotAdded = errors.New("wallet: chain not added")
	// ErrNoAccounts 钱包没有可用账户
	ErrNoAccounts = errors.New("wallet: no accounts")
)

// Event 账户或链变化通知；Accounts 为空表示用户断开
type Event struct {
	Kind     string
	Accounts []string
	ChainID  int64
}

// Provider 钱包能力，核心逻辑只通过它访问链
type Provider interface {
	RequestAccounts(ctx context.Context) ([]string, error)
	ChainID(ctx context.Context) (int64, error)
	// Balance 原生币余额，单位是 ether 而不是 wei
	Balance(ctx context.Context, account string) (decimal.Decimal, error)
	SendTransaction(ctx context.Context, from, to string, value decimal.Decimal) (string, error)
	SwitchNetwork(ctx context.Context, chainID int64) error
}

// Notifier 能主动推送账户/链变化的 Provider
type Notifier interface {
	Events() <-chan Event
}
