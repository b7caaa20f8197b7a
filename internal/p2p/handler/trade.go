package handler

import (
	"github.com/gin-gonic/gin"
	"p2pex.com/internal/p2p/domain"
	"p2pex.com/internal/p2p/trade"
	"p2pex.com/pkg/common"
	"p2pex.com/pkg/xerr"
)

type Trades struct {
	Log *trade.Log
}

// List GET /trades?period=week&q=&account=
func (h *Trades) List(c *gin.Context) {
	recs := h.Log.Recent(trade.Query{
		Period:  trade.ParsePeriod(c.Query("period")),
		Search:  c.Query("q"),
		Account: c.Query("account"),
	})
	common.Success(c, gin.H{
		"trades": recs,
		"stats":  h.Log.Stats(recs),
	})
}

type statusReq struct {
	Status domain.TradeStatus `json:"status"`
}

func (h *Trades) SetStatus(c *gin.Context) {
	var req statusReq
	if err := c.ShouldBindJSON(&req); err != nil {
		common.FailFromErr(c, xerr.New(xerr.RequestParamsError, "invalid json body"))
		return
	}
	switch req.Status {
	case domain.TradeStatusPending, domain.TradeStatusInProgress,
		domain.TradeStatusCompleted, domain.TradeStatusCancelled:
	default:
		common.FailFromErr(c, xerr.NewField(xerr.RequestParamsError, "status", "unknown status"))
		return
	}
	if !h.Log.SetStatus(c, c.Param("id"), req.Status) {
		common.FailFromErr(c, xerr.NewErrCode(xerr.RecordNotFound))
		return
	}
	common.Success(c, gin.H{"id": c.Param("id"), "status": req.Status})
}
