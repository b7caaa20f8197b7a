package handler

import (
	"context"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"p2pex.com/internal/p2p/ads"
	"p2pex.com/internal/p2p/domain"
	"p2pex.com/internal/p2p/trade"
	"p2pex.com/pkg/common"
	"p2pex.com/pkg/logger"
	"p2pex.com/pkg/metrics"
	"p2pex.com/pkg/xerr"
)

type Ads struct {
	Directory *ads.Directory
	Builder   *ads.Builder
	Profiles  ProfileLoader // 可为空；用来给新广告填发布人名字
	Trades    *trade.Log    // 可为空；为空时 quote 不能 record
}

// ProfileLoader 只需要展示名
type ProfileLoader interface {
	DisplayName(ctx context.Context, account string) string
}

// List GET /ads?action=BUY&token=USDT&location=&online=
// action 是浏览者想做的动作，默认 BUY；token 默认 USDT
func (h *Ads) List(c *gin.Context) {
	action := domain.DirectionBuy
	if raw := c.Query("action"); raw != "" {
		d, err := domain.ParseDirection(raw)
		if err != nil {
			common.FailFromErr(c, xerr.NewField(xerr.RequestParamsError, "action", "action must be BUY or SELL"))
			return
		}
		action = d
	}
	token := domain.TokenUSDT
	if raw := c.Query("token"); raw != "" {
		t, err := domain.ParseToken(raw)
		if err != nil {
			common.FailFromErr(c, xerr.NewField(xerr.RequestParamsError, "token", "unsupported token"))
			return
		}
		token = t
	}
	online, _ := strconv.ParseBool(c.Query("online"))

	list := ads.FilterWith(h.Directory.All(), action, token, ads.FilterOptions{
		Location:   c.Query("location"),
		OnlineOnly: online,
	})
	common.Success(c, gin.H{
		"action": action,
		"token":  token,
		"count":  len(list),
		"ads":    list,
	})
}

func (h *Ads) Get(c *gin.Context) {
	l, ok := h.Directory.Get(c.Param("id"))
	if !ok {
		common.FailFromErr(c, xerr.NewErrCode(xerr.RecordNotFound))
		return
	}
	common.Success(c, l)
}

type createAdReq struct {
	ads.AdForm
	Account string `json:"account"`
}

// Create POST /ads
func (h *Ads) Create(c *gin.Context) {
	var req createAdReq
	if err := c.ShouldBindJSON(&req); err != nil {
		common.FailFromErr(c, xerr.New(xerr.RequestParamsError, "invalid json body"))
		return
	}
	if req.ListerName == "" && h.Profiles != nil {
		req.ListerName = h.Profiles.DisplayName(c, req.Account)
	}
	l, err := h.Builder.Build(c, req.AdForm)
	if err != nil {
		common.FailFromErr(c, err)
		return
	}
	common.Success(c, l)
}

type quoteReq struct {
	Action        string `json:"action"`
	Amount        string `json:"amount"`
	PaymentMethod string `json:"payment_method"`
	// Record 为 true 时把这次请求记进交易记录
	Record  bool   `json:"record"`
	Account string `json:"account"`
	Message string `json:"message"`
}

// Quote POST /ads/:id/quote
func (h *Ads) Quote(c *gin.Context) {
	l, ok := h.Directory.Get(c.Param("id"))
	if !ok {
		common.FailFromErr(c, xerr.NewErrCode(xerr.RecordNotFound))
		return
	}
	var req quoteReq
	if err := c.ShouldBindJSON(&req); err != nil {
		common.FailFromErr(c, xerr.New(xerr.RequestParamsError, "invalid json body"))
		return
	}

	action := l.Direction.Complement()
	if req.Action != "" {
		d, err := domain.ParseDirection(req.Action)
		if err != nil {
			common.FailFromErr(c, xerr.NewField(xerr.RequestParamsError, "action", "action must be BUY or SELL"))
			return
		}
		action = d
	}

	p, err := trade.Propose(l, action, req.Amount, req.PaymentMethod)
	metrics.QuoteTotal.WithLabelValues(quoteResult(err)).Inc()
	if err != nil {
		common.FailFromErr(c, err)
		return
	}

	resp := gin.H{"quote": trade.Format(p)}
	if req.Record {
		if h.Trades == nil {
			common.FailFromErr(c, xerr.New(xerr.ServerCommonError, "trade log disabled"))
			return
		}
		rec := h.Trades.Record(c, p, req.Account, req.Message)
		logger.Info(c, "trade request recorded",
			zap.String("trade_id", rec.ID),
			zap.String("listing_id", l.ID),
			zap.String("action", action.String()),
		)
		resp["trade"] = rec
	}
	common.Success(c, resp)
}

func quoteResult(err error) string {
	switch xerr.CodeOf(err) {
	case xerr.OK:
		return "ok"
	case xerr.InvalidAmount:
		return "invalid_amount"
	case xerr.AmountOutOfRange:
		return "out_of_range"
	case xerr.InvalidPaymentMethod:
		return "invalid_payment_method"
	default:
		return "rejected"
	}
}
