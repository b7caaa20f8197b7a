package wallet

import (
	"context"
	"crypto/ecdsa"
	"fmt"
	"math/big"
	"strings"
	"sync"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"p2pex.com/pkg/logger"
)

// 原生币转账固定 gas
const transferGas = 21000

// Backend ethclient 里用到的部分，测试可以替换
type Backend interface {
	ethereum.ContractCaller
	ChainID(ctx context.Context) (*big.Int, error)
	SuggestGasPrice(ctx context.Context) (*big.Int, error)
	SendTransaction(ctx context.Context, tx *types.Transaction) error
	BalanceAt(ctx context.Context, account common.Address, blockNumber *big.Int) (*big.Int, error)
	PendingNonceAt(ctx context.Context, account common.Address) (uint64, error)
	Close()
}

type Dialer func(ctx context.Context, rawURL string) (Backend, error)

func dialEthClient(ctx context.Context, rawURL string) (Backend, error) {
	c, err := ethclient.DialContext(ctx, rawURL)
	if err != nil {
		return nil, err
	}
	return c, nil
}

type EthConfig struct {
	RPCURL     string
	Networks   map[int64]string // 可切换的网络 chainID -> rpc
	PrivateKey string           // 十六进制私钥，空表示只读
}

// EthProvider 服务端版本的钱包：用配置的私钥当账户，经 RPC 访问链
type EthProvider struct {
	dial     Dialer
	networks map[int64]string
	key      *ecdsa.PrivateKey
	addr     common.Address
	events   chan Event

	mu      sync.Mutex
	current Backend
	chainID int64
	clients map[int64]Backend
}

type EthOption func(*EthProvider)

func WithDialer(d Dialer) EthOption {
	return func(p *EthProvider) { p.dial = d }
}

func NewEthProvider(ctx context.Context, cfg EthConfig, opts ...EthOption) (*EthProvider, error) {
	p := &EthProvider{
		dial:     dialEthClient,
		networks: make(map[int64]string, len(cfg.Networks)),
		events:   make(chan Event, 8),
		clients:  make(map[int64]Backend),
	}
	for _, opt := range opts {
		opt(p)
	}
	for id, u := range cfg.Networks {
		p.networks[id] = u
	}
	if cfg.PrivateKey != "" {
		key, err := crypto.HexToECDSA(strings.TrimPrefix(cfg.PrivateKey, "0x"))
		if err != nil {
			return nil, fmt.Errorf("parse wallet key: %w", err)
		}
		p.key = key
		p.addr = crypto.PubkeyToAddress(key.PublicKey)
	}

	client, err := p.dial(ctx, cfg.RPCURL)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", cfg.RPCURL, err)
	}
	id, err := client.ChainID(ctx)
	if err != nil {
		client.Close()
		return nil, fmt.Errorf("read chain id: %w", err)
	}
	p.current = client
	p.chainID = id.Int64()
	p.clients[p.chainID] = client
	if _, ok := p.networks[p.chainID]; !ok {
		p.networks[p.chainID] = cfg.RPCURL
	}
	return p, nil
}

func (p *EthProvider) Events() <-chan Event { return p.events }

func (p *EthProvider) RequestAccounts(context.Context) ([]string, error) {
	if p.key == nil {
		return nil, ErrNoAccounts
	}
	return []string{p.addr.Hex()}, nil
}

func (p *EthProvider) ChainID(ctx context.Context) (int64, error) {
	id, err := p.backend().ChainID(ctx)
	if err != nil {
		return 0, err
	}
	return id.Int64(), nil
}

func (p *EthProvider) Balance(ctx context.Context, account string) (decimal.Decimal, error) {
	if !common.IsHexAddress(account) {
		return decimal.Zero, fmt.Errorf("invalid account %q", account)
	}
	wei, err := p.backend().BalanceAt(ctx, common.HexToAddress(account), nil)
	if err != nil {
		return decimal.Zero, err
	}
	return weiToEther(wei), nil
}

func (p *EthProvider) SendTransaction(ctx context.Context, from, to string, value decimal.Decimal) (string, error) {
	if p.key == nil || !strings.EqualFold(from, p.addr.Hex()) {
		return "", fmt.Errorf("no signer for %s", from)
	}
	p.mu.Lock()
	client, chainID := p.current, p.chainID
	p.mu.Unlock()

	nonce, err := client.PendingNonceAt(ctx, p.addr)
	if err != nil {
		return "", fmt.Errorf("pending nonce: %w", err)
	}
	gasPrice, err := client.SuggestGasPrice(ctx)
	if err != nil {
		return "", fmt.Errorf("suggest gas price: %w", err)
	}
	toAddr := common.HexToAddress(to)
	tx := types.NewTx(&types.LegacyTx{
		Nonce:    nonce,
		To:       &toAddr,
		Value:    etherToWei(value),
		Gas:      transferGas,
		GasPrice: gasPrice,
	})
	signed, err := types.SignTx(tx, types.LatestSignerForChainID(big.NewInt(chainID)), p.key)
	if err != nil {
		return "", fmt.Errorf("sign tx: %w", err)
	}
	if err := client.SendTransaction(ctx, signed); err != nil {
		return "", err
	}
	return signed.Hash().Hex(), nil
}

// SwitchNetwork 只能切到配置过的网络，否则 ErrChainNotAdded
func (p *EthProvider) SwitchNetwork(ctx context.Context, chainID int64) error {
	client, err := p.clientFor(ctx, chainID)
	if err != nil {
		return err
	}
	p.mu.Lock()
	changed := p.chainID != chainID
	p.current, p.chainID = client, chainID
	p.mu.Unlock()

	if changed {
		select {
		case p.events <- Event{Kind: EventChainChanged, ChainID: chainID}:
		default:
			logger.Warn(ctx, "wallet event dropped", zap.Int64("chain_id", chainID))
		}
	}
	return nil
}

// Caller 给 TokenReader 用：按链取（必要时拨号）客户端
func (p *EthProvider) Caller(ctx context.Context, chainID int64) (ethereum.ContractCaller, error) {
	return p.clientFor(ctx, chainID)
}

func (p *EthProvider) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	for id, c := range p.clients {
		c.Close()
		delete(p.clients, id)
	}
}

func (p *EthProvider) backend() Backend {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.current
}

func (p *EthProvider) clientFor(ctx context.Context, chainID int64) (Backend, error) {
	p.mu.Lock()
	if c, ok := p.clients[chainID]; ok {
		p.mu.Unlock()
		return c, nil
	}
	url, ok := p.networks[chainID]
	p.mu.Unlock()
	if !ok {
		return nil, ErrChainNotAdded
	}

	c, err := p.dial(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("dial chain %d: %w", chainID, err)
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if existing, ok := p.clients[chainID]; ok {
		c.Close()
		return existing, nil
	}
	p.clients[chainID] = c
	return c, nil
}

func weiToEther(wei *big.Int) decimal.Decimal {
	return decimal.NewFromBigInt(wei, -18)
}

func etherToWei(v decimal.Decimal) *big.Int {
	return v.Shift(18).BigInt()
}
