package wallet

import (
	"context"
	"errors"
	"math/big"
	"sync"
	"testing"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeBackend struct {
	chainID int64
	mu      sync.Mutex
	sent    []*types.Transaction
	closed  bool
}

func (b *fakeBackend) CallContract(context.Context, ethereum.CallMsg, *big.Int) ([]byte, error) {
	return nil, errors.New("not a contract")
}
func (b *fakeBackend) ChainID(context.Context) (*big.Int, error) { return big.NewInt(b.chainID), nil }
func (b *fakeBackend) SuggestGasPrice(context.Context) (*big.Int, error) {
	return big.NewInt(1_000_000_000), nil
}
func (b *fakeBackend) SendTransaction(_ context.Context, tx *types.Transaction) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.sent = append(b.sent, tx)
	return nil
}
func (b *fakeBackend) BalanceAt(context.Context, common.Address, *big.Int) (*big.Int, error) {
	wei, _ := new(big.Int).SetString("1500000000000000000", 10)
	return wei, nil
}
func (b *fakeBackend) PendingNonceAt(context.Context, common.Address) (uint64, error) { return 7, nil }
func (b *fakeBackend) Close()                                                         { b.closed = true }

type fakeNet struct {
	mu       sync.Mutex
	backends map[string]*fakeBackend
	dials    int
}

func (n *fakeNet) dial(_ context.Context, url string) (Backend, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.dials++
	b, ok := n.backends[url]
	if !ok {
		return nil, errors.New("connection refused")
	}
	return b, nil
}

func newTestProvider(t *testing.T, withKey bool) (*EthProvider, *fakeNet, common.Address) {
	t.Helper()
	net := &fakeNet{backends: map[string]*fakeBackend{
		"http://mainnet": {chainID: 1},
		"http://polygon": {chainID: 137},
	}}
	cfg := EthConfig{
		RPCURL:   "http://mainnet",
		Networks: map[int64]string{137: "http://polygon", 56: "http://down"},
	}
	var addr common.Address
	if withKey {
		key, err := crypto.GenerateKey()
		require.NoError(t, err)
		cfg.PrivateKey = common.Bytes2Hex(crypto.FromECDSA(key))
		addr = crypto.PubkeyToAddress(key.PublicKey)
	}
	p, err := NewEthProvider(context.Background(), cfg, WithDialer(net.dial))
	require.NoError(t, err)
	return p, net, addr
}

func TestEthProvider_Basics(t *testing.T) {
	ctx := context.Background()
	p, _, addr := newTestProvider(t, true)

	accounts, err := p.RequestAccounts(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{addr.Hex()}, accounts)

	id, err := p.ChainID(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), id)

	bal, err := p.Balance(ctx, addr.Hex())
	require.NoError(t, err)
	assert.Equal(t, "1.5", bal.String())

	_, err = p.Balance(ctx, "nope")
	assert.Error(t, err)
}

func TestEthProvider_ReadOnly(t *testing.T) {
	p, _, _ := newTestProvider(t, false)
	_, err := p.RequestAccounts(context.Background())
	assert.ErrorIs(t, err, ErrNoAccounts)

	_, err = NewSession(p, 0).Connect(context.Background())
	assert.Error(t, err)
}

func TestEthProvider_SendTransactionSigned(t *testing.T) {
	ctx := context.Background()
	p, net, addr := newTestProvider(t, true)

	hash, err := p.SendTransaction(ctx, addr.Hex(), acctB, decimal.RequireFromString("0.1"))
	require.NoError(t, err)

	b := net.backends["http://mainnet"]
	require.Len(t, b.sent, 1)
	tx := b.sent[0]
	assert.Equal(t, hash, tx.Hash().Hex())
	assert.Equal(t, uint64(7), tx.Nonce())
	assert.Equal(t, uint64(transferGas), tx.Gas())
	assert.Equal(t, "100000000000000000", tx.Value().String())
	assert.Equal(t, common.HexToAddress(acctB), *tx.To())

	from, err := types.Sender(types.LatestSignerForChainID(big.NewInt(1)), tx)
	require.NoError(t, err)
	assert.Equal(t, addr, from)

	_, err = p.SendTransaction(ctx, acctA, acctB, decimal.NewFromInt(1))
	assert.Error(t, err, "只能用自己的账户签名")
}

func TestEthProvider_SwitchNetwork(t *testing.T) {
	ctx := context.Background()
	p, net, _ := newTestProvider(t, true)

	require.NoError(t, p.SwitchNetwork(ctx, 137))
	ev := <-p.Events()
	assert.Equal(t, Event{Kind: EventChainChanged, ChainID: 137}, ev)

	id, err := p.ChainID(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(137), id)

	assert.ErrorIs(t, p.SwitchNetwork(ctx, 10), ErrChainNotAdded)
	assert.Error(t, p.SwitchNetwork(ctx, 56), "拨号失败")

	// 已拨过的链复用客户端
	before := net.dials
	_, err = p.Caller(ctx, 137)
	require.NoError(t, err)
	assert.Equal(t, before, net.dials)

	p.Close()
	assert.True(t, net.backends["http://mainnet"].closed)
}

func TestSession_WithEthProviderEvents(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	p, _, _ := newTestProvider(t, true)
	s := NewSession(p, 0)
	_, err := s.Connect(ctx)
	require.NoError(t, err)

	// Notifier 类的 Provider 由通知驱动
	require.NoError(t, s.SwitchNetwork(ctx, 137))
	assert.Equal(t, int64(1), s.Snapshot().ChainID)

	s.HandleEvent(ctx, <-p.Events())
	assert.Equal(t, int64(137), s.Snapshot().ChainID)
}
