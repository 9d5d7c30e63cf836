package handler

import (
	"net/http"

	"go-gin-raffle/internal/model"
	"go-gin-raffle/internal/randomness"
	"go-gin-raffle/internal/service"

	"github.com/gin-gonic/gin"
)

type RaffleHandler struct {
	service service.RaffleService
}

func NewRaffleHandler(service service.RaffleService) *RaffleHandler {
	return &RaffleHandler{service: service}
}

func (h *RaffleHandler) RegisterRoutes(r *gin.Engine) {
	router := r.Group("/api/v1")
	{
		router.GET("raffles", h.List)
		router.POST("raffles", h.Create)
		router.GET("raffles/:uuid", h.GetByRaffleID)
		router.GET("raffles/:uuid/tickets", h.ListTickets)
		router.POST("raffles/:uuid/tickets", h.BuyTicket)
		router.POST("raffles/:uuid/resolve", h.Resolve)
		router.POST("raffles/:uuid/claim", h.ClaimPrize)
		router.GET("raffles/:uuid/journal", h.Journal)
		router.GET("raffles/:uuid/proof", h.Proof)
	}
}

// ResolveResponse 開獎結果
type ResolveResponse struct {
	RaffleID      string `json:"raffle_id"`
	WinningTicket string `json:"winning_ticket"`
}

// ProofResponse verified 為伺服器端重新驗算的結果
type ProofResponse struct {
	Proof    *randomness.Proof `json:"proof"`
	Verified bool              `json:"verified"`
	Reason   string            `json:"reason,omitempty"`
}

func (h *RaffleHandler) List(c *gin.Context) {
	raffles, err := h.service.List(c)
	if err != nil {
		handleError(c, err, "List")
		return
	}
	resp := make([]model.RaffleResponse, 0, len(raffles))
	for _, r := range raffles {
		resp = append(resp, model.NewRaffleResponse(r))
	}
	c.JSON(http.StatusOK, resp)
}

func (h *RaffleHandler) Create(c *gin.Context) {
	var req model.CreateRaffleRequest
	if err := BindJson(c, &req); err != nil {
		return
	}
	created, err := h.service.Create(c, req)
	if err != nil {
		handleError(c, err, "Create")
		return
	}
	c.JSON(http.StatusCreated, model.NewRaffleResponse(created))
}

func (h *RaffleHandler) GetByRaffleID(c *gin.Context) {
	raffleID, ok := ParseUUIDParam(c, "uuid")
	if !ok {
		return
	}
	r, err := h.service.GetByRaffleID(c, raffleID)
	if err != nil {
		handleError(c, err, "GetByRaffleID")
		return
	}
	c.JSON(http.StatusOK, model.NewRaffleResponse(r))
}

func (h *RaffleHandler) ListTickets(c *gin.Context) {
	raffleID, ok := ParseUUIDParam(c, "uuid")
	if !ok {
		return
	}
	tickets, err := h.service.ListTickets(c, raffleID)
	if err != nil {
		handleError(c, err, "ListTickets")
		return
	}
	c.JSON(http.StatusOK, tickets)
}

func (h *RaffleHandler) BuyTicket(c *gin.Context) {
	raffleID, ok := ParseUUIDParam(c, "uuid")
	if !ok {
		return
	}
	var req model.BuyTicketRequest
	if err := BindJson(c, &req); err != nil {
		return
	}
	ticket, err := h.service.BuyTicket(c, raffleID, req.AccountID)
	if err != nil {
		handleError(c, err, "BuyTicket")
		return
	}
	c.JSON(http.StatusCreated, ticket)
}

func (h *RaffleHandler) Resolve(c *gin.Context) {
	raffleID, ok := ParseUUIDParam(c, "uuid")
	if !ok {
		return
	}
	// body 可省略
	var req model.ResolveRaffleRequest
	if c.Request.ContentLength > 0 {
		if err := BindJson(c, &req); err != nil {
			return
		}
	}
	winner, err := h.service.Resolve(c, raffleID, req.CallerID)
	if err != nil {
		handleError(c, err, "Resolve")
		return
	}
	c.JSON(http.StatusOK, ResolveResponse{
		RaffleID:      raffleID.String(),
		WinningTicket: winner.String(),
	})
}

func (h *RaffleHandler) ClaimPrize(c *gin.Context) {
	raffleID, ok := ParseUUIDParam(c, "uuid")
	if !ok {
		return
	}
	var req model.ClaimPrizeRequest
	if err := BindJson(c, &req); err != nil {
		return
	}
	payout, err := h.service.ClaimPrize(c, raffleID, req.TicketID, req.AccountID)
	if err != nil {
		handleError(c, err, "ClaimPrize")
		return
	}
	c.JSON(http.StatusOK, payout)
}

func (h *RaffleHandler) Journal(c *gin.Context) {
	raffleID, ok := ParseUUIDParam(c, "uuid")
	if !ok {
		return
	}
	entries, err := h.service.Journal(c, raffleID)
	if err != nil {
		handleError(c, err, "Journal")
		return
	}
	c.JSON(http.StatusOK, entries)
}

func (h *RaffleHandler) Proof(c *gin.Context) {
	raffleID, ok := ParseUUIDParam(c, "uuid")
	if !ok {
		return
	}
	proof, err := h.service.Proof(c, raffleID)
	if err != nil {
		handleError(c, err, "Proof")
		return
	}
	resp := ProofResponse{Proof: proof, Verified: true}
	if err := randomness.VerifyProof(proof); err != nil {
		resp.Verified = false
		resp.Reason = err.Error()
	}
	c.JSON(http.StatusOK, resp)
}
