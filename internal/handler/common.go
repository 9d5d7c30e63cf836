package handler

import (
	"errors"
	"net/http"

	"go-gin-raffle/internal/journal"
	apperrors "go-gin-raffle/pkg/app_errors"
	"go-gin-raffle/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

func BindJson(c *gin.Context, obj interface{}) error {
	if err := c.ShouldBindJSON(obj); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request format",
		})
		return err
	}
	return nil
}

// ParseUUIDParam 解析路徑中的 uuid，失敗時直接回 400
func ParseUUIDParam(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid " + name})
		return uuid.Nil, false
	}
	return id, true
}

type errorMapping struct {
	target  error
	status  int
	message string
}

// 由上往下比對，第一個 errors.Is 命中的生效
var errorMappings = []errorMapping{
	{apperrors.ErrRaffleNotFound, http.StatusNotFound, "Raffle not found"},
	{apperrors.ErrTicketNotFound, http.StatusNotFound, "Ticket not found"},
	{apperrors.ErrAccountNotFound, http.StatusNotFound, "Account not found"},
	{journal.ErrProofNotFound, http.StatusNotFound, "Proof not found"},
	{apperrors.ErrInvalidInput, http.StatusBadRequest, "Invalid input"},
	{apperrors.ErrAlreadyResolved, http.StatusConflict, "Raffle already resolved"},
	{apperrors.ErrNotResolved, http.StatusConflict, "Raffle not resolved"},
	{apperrors.ErrNotResolvableYet, http.StatusTooEarly, "Raffle not resolvable yet"},
	{apperrors.ErrNoTicketsSold, http.StatusUnprocessableEntity, "No tickets sold"},
	{apperrors.ErrTicketDidNotWin, http.StatusForbidden, "Ticket did not win"},
	{apperrors.ErrPrizeAlreadyClaimed, http.StatusGone, "Prize already claimed"},
	{apperrors.ErrInsufficientBalance, http.StatusPaymentRequired, "Insufficient balance"},
	{apperrors.ErrBalanceOverflow, http.StatusConflict, "Balance overflow"},
}

func handleError(c *gin.Context, err error, operation string) {
	log := logger.WithComponent("handler").With(zap.String("operation", operation), zap.Error(err))
	for _, m := range errorMappings {
		if errors.Is(err, m.target) {
			log.Warn(m.message)
			c.JSON(m.status, gin.H{"error": m.message})
			return
		}
	}
	log.Error("Unexpected error")
	c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
}
