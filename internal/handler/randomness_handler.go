package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// PublicKeySource 可公開驗證的隨機來源
type PublicKeySource interface {
	PublicKeyHex() string
	Round() uint64
}

type RandomnessHandler struct {
	beacon PublicKeySource
}

// NewRandomnessHandler beacon 為 nil 表示使用不可驗證的系統亂數
func NewRandomnessHandler(beacon PublicKeySource) *RandomnessHandler {
	return &RandomnessHandler{beacon: beacon}
}

func (h *RandomnessHandler) RegisterRoutes(r *gin.Engine) {
	r.GET("/api/v1/randomness", h.Info)
}

func (h *RandomnessHandler) Info(c *gin.Context) {
	if h.beacon == nil {
		c.JSON(http.StatusOK, gin.H{"source": "crypto", "verifiable": false})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"source":     "beacon",
		"verifiable": true,
		"public_key": h.beacon.PublicKeyHex(),
		"round":      h.beacon.Round(),
	})
}
