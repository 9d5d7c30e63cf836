package handler

import (
	"net/http"

	"go-gin-raffle/internal/model"
	"go-gin-raffle/internal/service"

	"github.com/gin-gonic/gin"
)

type AccountHandler struct {
	service service.AccountService
}

func NewAccountHandler(service service.AccountService) *AccountHandler {
	return &AccountHandler{service: service}
}

func (h *AccountHandler) RegisterRoutes(r *gin.Engine) {
	router := r.Group("/api/v1")
	{
		router.POST("accounts", h.Open)
		router.GET("accounts/:uuid", h.GetByAccountID)
		router.POST("accounts/:uuid/deposit", h.Deposit)
		router.GET("accounts/:uuid/tickets", h.ListTickets)
	}
}

func (h *AccountHandler) Open(c *gin.Context) {
	var req model.CreateAccountRequest
	if err := BindJson(c, &req); err != nil {
		return
	}
	account, err := h.service.Open(c, req)
	if err != nil {
		handleError(c, err, "OpenAccount")
		return
	}
	c.JSON(http.StatusCreated, account)
}

func (h *AccountHandler) GetByAccountID(c *gin.Context) {
	accountID, ok := ParseUUIDParam(c, "uuid")
	if !ok {
		return
	}
	account, err := h.service.GetByAccountID(c, accountID)
	if err != nil {
		handleError(c, err, "GetByAccountID")
		return
	}
	c.JSON(http.StatusOK, account)
}

func (h *AccountHandler) Deposit(c *gin.Context) {
	accountID, ok := ParseUUIDParam(c, "uuid")
	if !ok {
		return
	}
	var req model.DepositRequest
	if err := BindJson(c, &req); err != nil {
		return
	}
	account, err := h.service.Deposit(c, accountID, req.Amount)
	if err != nil {
		handleError(c, err, "Deposit")
		return
	}
	c.JSON(http.StatusOK, account)
}

// ListTickets 帳戶目前持有（未銷毀）的票
func (h *AccountHandler) ListTickets(c *gin.Context) {
	accountID, ok := ParseUUIDParam(c, "uuid")
	if !ok {
		return
	}
	tickets, err := h.service.ListTickets(c, accountID)
	if err != nil {
		handleError(c, err, "ListTickets")
		return
	}
	c.JSON(http.StatusOK, tickets)
}
