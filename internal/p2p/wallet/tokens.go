package wallet

import (
	"context"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"p2pex.com/internal/p2p/domain"
	"p2pex.com/pkg/logger"
)

// 只用到 ERC-20 的两个只读方法
const erc20ABI = `[
 {"constant":true,"inputs":[{"name":"owner","type":"address"}],"name":"balanceOf","outputs":[{"name":"","type":"uint256"}],"type":"function"},
 {"constant":true,"inputs":[],"name":"decimals","outputs":[{"name":"","type":"uint8"}],"type":"function"}
]`

var erc20 = mustParseABI(erc20ABI)

// TokenAddresses chainID -> 代币 -> 合约地址
var TokenAddresses = map[int64]map[domain.Token]common.Address{
	1: {
		domain.TokenUSDC: common.HexToAddress("0xA0b86a33E6441b8435b662303c0f479c7e2f9f0D"),
		domain.TokenUSDT: common.HexToAddress("0xdAC17F958D2ee523a2206206994597C13D831ec7"),
	},
	56: {
		domain.TokenUSDC: common.HexToAddress("0x8AC76a51cc950d9822D68b83fE1Ad97B32Cd580d"),
		domain.TokenUSDT: common.HexToAddress("0x55d398326f99059fF775485246999027B3197955"),
	},
	137: {
		domain.TokenUSDC: common.HexToAddress("0x2791Bca1f2de4661ED88A30C99A7a9449Aa84174"),
		domain.TokenUSDT: common.HexToAddress("0xc2132D05D31c914a87C6611C10748AEb04B58e8F"),
	},
}

const zeroBalance = "0.00"

// TokenBalance 展示用余额，2 位小数
type TokenBalance struct {
	Token   domain.Token `json:"token"`
	Balance string       `json:"balance"`
}

// CallerFunc 按链取合约调用客户端
type CallerFunc func(ctx context.Context, chainID int64) (ethereum.ContractCaller, error)

// TokenReader 读 ERC-20 余额
// 不支持的链或任何错误都返回全 0，不把错误抛给上层
type TokenReader struct {
	callerFor CallerFunc
	timeout   time.Duration
}

func NewTokenReader(callerFor CallerFunc, timeout time.Duration) *TokenReader {
	if timeout <= 0 {
		timeout = defaultCallTimeout
	}
	return &TokenReader{callerFor: callerFor, timeout: timeout}
}

func (r *TokenReader) Balances(ctx context.Context, chainID int64, account string) []TokenBalance {
	out, err := r.read(ctx, chainID, account)
	if err != nil {
		logger.Warn(ctx, "read token balances failed",
			zap.Int64("chain_id", chainID),
			zap.String("account", account),
			zap.Error(err),
		)
		return ZeroBalances()
	}
	return out
}

func (r *TokenReader) read(ctx context.Context, chainID int64, account string) ([]TokenBalance, error) {
	addrs, ok := TokenAddresses[chainID]
	if !ok {
		// 不支持的网络直接给 0，不算错误
		return ZeroBalances(), nil
	}
	if !common.IsHexAddress(account) {
		return nil, fmt.Errorf("invalid account %q", account)
	}
	if r.callerFor == nil {
		return nil, fmt.Errorf("no rpc for chain %d", chainID)
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()
	caller, err := r.callerFor(ctx, chainID)
	if err != nil {
		return nil, err
	}

	owner := common.HexToAddress(account)
	out := make([]TokenBalance, 0, len(domain.SupportedTokens))
	for _, tok := range domain.SupportedTokens {
		contract := addrs[tok]
		bal, err := balanceOf(ctx, caller, contract, owner)
		if err != nil {
			return nil, fmt.Errorf("%s balanceOf: %w", tok, err)
		}
		dec, err := decimalsOf(ctx, caller, contract)
		if err != nil {
			return nil, fmt.Errorf("%s decimals: %w", tok, err)
		}
		out = append(out, TokenBalance{
			Token:   tok,
			Balance: decimal.NewFromBigInt(bal, -int32(dec)).StringFixed(2),
		})
	}
	return out, nil
}

func balanceOf(ctx context.Context, c ethereum.ContractCaller, contract, owner common.Address) (*big.Int, error) {
	vals, err := call(ctx, c, contract, "balanceOf", owner)
	if err != nil {
		return nil, err
	}
	v, ok := vals[0].(*big.Int)
	if !ok {
		return nil, fmt.Errorf("unexpected balanceOf output %T", vals[0])
	}
	return v, nil
}

func decimalsOf(ctx context.Context, c ethereum.ContractCaller, contract common.Address) (uint8, error) {
	vals, err := call(ctx, c, contract, "decimals")
	if err != nil {
		return 0, err
	}
	v, ok := vals[0].(uint8)
	if !ok {
		return 0, fmt.Errorf("unexpected decimals output %T", vals[0])
	}
	return v, nil
}

func call(ctx context.Context, c ethereum.ContractCaller, contract common.Address, method string, args ...interface{}) ([]interface{}, error) {
	data, err := erc20.Pack(method, args...)
	if err != nil {
		return nil, err
	}
	raw, err := c.CallContract(ctx, ethereum.CallMsg{To: &contract, Data: data}, nil)
	if err != nil {
		return nil, err
	}
	vals, err := erc20.Unpack(method, raw)
	if err != nil {
		return nil, err
	}
	if len(vals) == 0 {
		return nil, fmt.Errorf("%s returned nothing", method)
	}
	return vals, nil
}

// ZeroBalances 读不到链上数据时的展示值，顺序同 SupportedTokens
func ZeroBalances() []TokenBalance {
	out := make([]TokenBalance, 0, len(domain.SupportedTokens))
	for _, t := range domain.SupportedTokens {
		out = append(out, TokenBalance{Token: t, Balance: zeroBalance})
	}
	return out
}

func mustParseABI(s string) abi.ABI {
	a, err := abi.JSON(strings.NewReader(s))
	if err != nil {
		panic(err)
	}
	return a
}
