package handler

import (
	"github.com/gin-gonic/gin"

	"hmy-wallet/internal/handler/response"
	"hmy-wallet/pkg/address"
)

const version = "1.0.0"

// Health godoc
// @Summary Check system health
// @Description 服务状态; 配置了签名钥匙时返回签名地址, 否则 mode 为 read-only
// @Tags system
// @Produce  json
// @Success 200 {object} map[string]string
// @Router /health [get]
func (h *WalletHandler) Health(c *gin.Context) {
	data := gin.H{
		"status":  "UP",
		"version": version,
		"service": "hmy-wallet-server",
		"mode":    "read-only",
	}
	if h.wallet != nil {
		data["mode"] = "signing"
		data["signer"] = address.ToBech32(h.wallet.Address())
	}
	response.Success(c, data)
}
