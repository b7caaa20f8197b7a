package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"p2pex.com/internal/p2p/wallet"
	"p2pex.com/pkg/common"
	"p2pex.com/pkg/logger"
	"p2pex.com/pkg/xerr"
)

type Wallet struct {
	Session     *wallet.Session
	TokenReader *wallet.TokenReader // 可为空，为空时代币余额全是 0.00
}

func (h *Wallet) State(c *gin.Context) {
	common.Success(c, h.Session.Snapshot())
}

func (h *Wallet) Connect(c *gin.Context) {
	st, err := h.Session.Connect(c)
	if err != nil {
		common.FailFromErr(c, err)
		return
	}
	logger.Info(c, "wallet connected", zap.String("account", st.Account), zap.Int64("chain_id", st.ChainID))
	common.Success(c, st)
}

func (h *Wallet) Disconnect(c *gin.Context) {
	h.Session.Disconnect()
	common.Success(c, h.Session.Snapshot())
}

type switchReq struct {
	ChainID int64 `json:"chain_id"`
}

func (h *Wallet) Switch(c *gin.Context) {
	var req switchReq
	if err := c.ShouldBindJSON(&req); err != nil || req.ChainID <= 0 {
		common.FailFromErr(c, xerr.NewField(xerr.RequestParamsError, "chain_id", "invalid chain id"))
		return
	}
	if err := h.Session.SwitchNetwork(c, req.ChainID); err != nil {
		common.FailFromErr(c, err)
		return
	}
	common.Success(c, h.Session.Snapshot())
}

type sendReq struct {
	To    string `json:"to"`
	Value string `json:"value"` // ether
}

func (h *Wallet) Send(c *gin.Context) {
	var req sendReq
	if err := c.ShouldBindJSON(&req); err != nil {
		common.FailFromErr(c, xerr.New(xerr.RequestParamsError, "invalid json body"))
		return
	}
	v, err := decimal.NewFromString(req.Value)
	if err != nil {
		common.FailFromErr(c, xerr.NewField(xerr.InvalidAmount, "value", "Please enter a valid amount"))
		return
	}
	hash, err := h.Session.SendTransaction(c, req.To, v)
	if err != nil {
		common.FailFromErr(c, err)
		return
	}
	common.Success(c, gin.H{"tx_hash": hash})
}

// Tokens GET /wallet/tokens?account=&chain=
// 不传时用当前会话的账户和链
func (h *Wallet) Tokens(c *gin.Context) {
	st := h.Session.Snapshot()
	account := c.DefaultQuery("account", st.Account)
	chainID := st.ChainID
	if raw := c.Query("chain"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			common.FailFromErr(c, xerr.NewField(xerr.RequestParamsError, "chain", "invalid chain id"))
			return
		}
		chainID = id
	}
	if account == "" {
		common.FailFromErr(c, xerr.NewErrCode(xerr.WalletUnavailable))
		return
	}

	var tokens []wallet.TokenBalance
	if h.TokenReader != nil {
		tokens = h.TokenReader.Balances(c, chainID, account)
	} else {
		tokens = wallet.ZeroBalances()
	}
	common.Success(c, gin.H{
		"account":  account,
		"chain_id": chainID,
		"tokens":   tokens,
	})
}
