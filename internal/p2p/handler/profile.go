package handler

import (
	"github.com/gin-gonic/gin"
	"p2pex.com/internal/p2p/domain"
	"p2pex.com/internal/p2p/profile"
	"p2pex.com/pkg/common"
	"p2pex.com/pkg/xerr"
)

type Profile struct {
	Store *profile.Store
}

func (h *Profile) Get(c *gin.Context) {
	p, err := h.Store.Load(c, c.Param("account"))
	if err != nil {
		common.FailFromErr(c, err)
		return
	}
	common.Success(c, p)
}

func (h *Profile) Put(c *gin.Context) {
	var req domain.Profile
	if err := c.ShouldBindJSON(&req); err != nil {
		common.FailFromErr(c, xerr.New(xerr.RequestParamsError, "invalid json body"))
		return
	}
	p, err := h.Store.Save(c, c.Param("account"), req)
	if err != nil {
		common.FailFromErr(c, err)
		return
	}
	common.Success(c, p)
}
