package http

import (
	"github.com/gin-gonic/gin"
	"p2pex.com/internal/p2p/handler"
)

func adsRouter(api *gin.RouterGroup, h *handler.Ads) {
	if h == nil {
		return
	}
	g := api.Group("/ads")
	{
		g.GET("", h.List)
		g.POST("", h.Create)
		g.GET("/:id", h.Get)
		g.POST("/:id/quote", h.Quote)
	}
}

func cityRouter(api *gin.RouterGroup, h *handler.City) {
	if h == nil {
		return
	}
	api.GET("/cities", h.Search)
	api.GET("/session/city", h.Selected)
	api.PUT("/session/city", h.Select)
}

func profileRouter(api *gin.RouterGroup, h *handler.Profile) {
	if h == nil {
		return
	}
	api.GET("/profile/:account", h.Get)
	api.PUT("/profile/:account", h.Put)
}

func walletRouter(api *gin.RouterGroup, h *handler.Wallet) {
	if h == nil {
		return
	}
	g := api.Group("/wallet")
	{
		g.GET("", h.State)
		g.POST("/connect", h.Connect)
		g.POST("/disconnect", h.Disconnect)
		g.POST("/network", h.Switch)
		g.POST("/send", h.Send)
		g.GET("/tokens", h.Tokens)
	}
}

func tradeRouter(api *gin.RouterGroup, h *handler.Trades) {
	if h == nil {
		return
	}
	g := api.Group("/trades")
	{
		g.GET("", h.List)
		g.PATCH("/:id", h.SetStatus)
	}
}
