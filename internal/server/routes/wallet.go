package routes

import (
	"github.com/gin-gonic/gin"

	"hmy-wallet/internal/handler"
)

func RegisterWalletRoutes(rg *gin.RouterGroup, h *handler.WalletHandler) {
	txGroup := rg.Group("/transactions")
	{
		txGroup.POST("", h.SendTransaction)
		txGroup.POST("/decode", h.DecodeTransaction)
		txGroup.GET("/:hash/receipt", h.GetReceipt)
	}

	rg.POST("/staking", h.SendStakingTransaction)
	rg.GET("/cx-receipts/:hash", h.GetCXReceipt)
	rg.GET("/blocks/:number", h.GetBlock)
}
