package handler

import (
	"github.com/gin-gonic/gin"
	"p2pex.com/internal/p2p/city"
	"p2pex.com/internal/p2p/profile"
	"p2pex.com/pkg/common"
	"p2pex.com/pkg/xerr"
)

type City struct {
	Lookup  *city.Lookup
	Session *profile.Store
}

// Search GET /cities?q=
// 远端不可用时照样返回 200，source=FALLBACK
func (h *City) Search(c *gin.Context) {
	common.Success(c, h.Lookup.Search(c, c.Query("q")))
}

func (h *City) Selected(c *gin.Context) {
	common.Success(c, gin.H{"city": h.Session.SelectedCity(c)})
}

type selectCityReq struct {
	City string `json:"city"`
}

func (h *City) Select(c *gin.Context) {
	var req selectCityReq
	if err := c.ShouldBindJSON(&req); err != nil {
		common.FailFromErr(c, xerr.New(xerr.RequestParamsError, "invalid json body"))
		return
	}
	if err := h.Session.SetSelectedCity(c, req.City); err != nil {
		common.FailFromErr(c, err)
		return
	}
	common.Success(c, gin.H{"city": h.Session.SelectedCity(c)})
}
