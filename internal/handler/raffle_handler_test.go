package handler_test

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"go-gin-raffle/internal/balance"
	"go-gin-raffle/internal/handler"
	"go-gin-raffle/internal/journal"
	"go-gin-raffle/internal/model"
	"go-gin-raffle/internal/randomness"
	"go-gin-raffle/internal/service/mocks"
	apperrors "go-gin-raffle/pkg/app_errors"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func setupRaffleTestRouter(mockService *mocks.MockRaffleService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	handler.NewRaffleHandler(mockService).RegisterRoutes(router)
	return router
}

func newTestRaffle(price uint64) *model.Raffle {
	return &model.Raffle{
		RaffleID:       uuid.New(),
		TicketPrice:    price,
		RedemptionTime: 60_000,
		Pot:            balance.Zero(),
		Version:        1,
	}
}

func TestCreateRaffle(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		mockService := mocks.NewMockRaffleService(t)
		router := setupRaffleTestRouter(mockService)

		req := model.CreateRaffleRequest{TicketPrice: 10, Duration: 60}
		created := newTestRaffle(10)
		mockService.On("Create", mock.Anything, req).Return(created, nil).Once()

		w := httptest.NewRecorder()
		router.ServeHTTP(w, createJSONHTTPRequest("POST", "/api/v1/raffles", req))

		assert.Equal(t, http.StatusCreated, w.Code)
		var resp model.RaffleResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, created.RaffleID, resp.RaffleID)
		assert.Equal(t, model.RaffleStatusOpen, resp.Status)
		assert.Equal(t, uint64(0), resp.Pot)
	})

	t.Run("Failed - zero price", func(t *testing.T) {
		mockService := mocks.NewMockRaffleService(t)
		router := setupRaffleTestRouter(mockService)

		w := httptest.NewRecorder()
		router.ServeHTTP(w, createJSONHTTPRequest("POST", "/api/v1/raffles", gin.H{"ticket_price": 0, "duration": 60}))

		assert.Equal(t, http.StatusBadRequest, w.Code)
		mockService.AssertNotCalled(t, "Create")
	})

	t.Run("Failed - BindingError", func(t *testing.T) {
		mockService := mocks.NewMockRaffleService(t)
		router := setupRaffleTestRouter(mockService)

		w := httptest.NewRecorder()
		router.ServeHTTP(w, createJSONHTTPRequest("POST", "/api/v1/raffles", InvalidJSON))

		assert.Equal(t, http.StatusBadRequest, w.Code)
		mockService.AssertNotCalled(t, "Create")
	})
}

func TestGetRaffle(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		mockService := mocks.NewMockRaffleService(t)
		router := setupRaffleTestRouter(mockService)

		r := newTestRaffle(10)
		winner := uuid.New()
		r.SoldTickets = []uuid.UUID{winner, uuid.New()}
		r.WinningTicket = &winner
		r.Pot = balance.Restore(20)
		mockService.On("GetByRaffleID", mock.Anything, r.RaffleID).Return(r, nil).Once()

		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest("GET", "/api/v1/raffles/"+r.RaffleID.String(), nil))

		assert.Equal(t, http.StatusOK, w.Code)
		var resp model.RaffleResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, 2, resp.TicketsSold)
		assert.Equal(t, uint64(20), resp.Pot)
		assert.Equal(t, model.RaffleStatusResolved, resp.Status)
		require.NotNil(t, resp.WinningTicket)
		assert.Equal(t, winner, *resp.WinningTicket)
	})

	t.Run("Failed - invalid uuid", func(t *testing.T) {
		mockService := mocks.NewMockRaffleService(t)
		router := setupRaffleTestRouter(mockService)

		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest("GET", "/api/v1/raffles/not-a-uuid", nil))

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("Failed - not found", func(t *testing.T) {
		mockService := mocks.NewMockRaffleService(t)
		router := setupRaffleTestRouter(mockService)

		id := uuid.New()
		mockService.On("GetByRaffleID", mock.Anything, id).Return(nil, apperrors.ErrRaffleNotFound).Once()

		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest("GET", "/api/v1/raffles/"+id.String(), nil))

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestListRaffles(t *testing.T) {
	mockService := mocks.NewMockRaffleService(t)
	router := setupRaffleTestRouter(mockService)

	mockService.On("List", mock.Anything).Return([]*model.Raffle{newTestRaffle(1), newTestRaffle(2)}, nil).Once()

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/api/v1/raffles", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	var resp []model.RaffleResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Len(t, resp, 2)
}

func TestBuyTicket(t *testing.T) {
	raffleID := uuid.New()
	buyer := uuid.New()

	cases := []struct {
		name   string
		err    error
		status int
	}{
		{"Success", nil, http.StatusCreated},
		{"Failed - already resolved", apperrors.ErrAlreadyResolved, http.StatusConflict},
		{"Failed - insufficient balance", apperrors.ErrInsufficientBalance, http.StatusPaymentRequired},
		{"Failed - pot overflow", apperrors.ErrBalanceOverflow, http.StatusConflict},
		{"Failed - account not found", apperrors.ErrAccountNotFound, http.StatusNotFound},
		{"Failed - unexpected", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			mockService := mocks.NewMockRaffleService(t)
			router := setupRaffleTestRouter(mockService)

			if tc.err == nil {
				mockService.On("BuyTicket", mock.Anything, raffleID, buyer).
					Return(&model.Ticket{TicketID: uuid.New(), RaffleID: raffleID, Owner: buyer}, nil).Once()
			} else {
				mockService.On("BuyTicket", mock.Anything, raffleID, buyer).Return(nil, tc.err).Once()
			}

			w := httptest.NewRecorder()
			router.ServeHTTP(w, createJSONHTTPRequest("POST", "/api/v1/raffles/"+raffleID.String()+"/tickets",
				model.BuyTicketRequest{AccountID: buyer}))

			assert.Equal(t, tc.status, w.Code)
		})
	}
}

func TestResolve(t *testing.T) {
	raffleID := uuid.New()

	t.Run("Success - without body", func(t *testing.T) {
		mockService := mocks.NewMockRaffleService(t)
		router := setupRaffleTestRouter(mockService)

		winner := uuid.New()
		mockService.On("Resolve", mock.Anything, raffleID, uuid.Nil).Return(winner, nil).Once()

		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest("POST", "/api/v1/raffles/"+raffleID.String()+"/resolve", nil))

		assert.Equal(t, http.StatusOK, w.Code)
		var resp handler.ResolveResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, winner.String(), resp.WinningTicket)
	})

	t.Run("Success - with caller", func(t *testing.T) {
		mockService := mocks.NewMockRaffleService(t)
		router := setupRaffleTestRouter(mockService)

		caller := uuid.New()
		mockService.On("Resolve", mock.Anything, raffleID, caller).Return(uuid.New(), nil).Once()

		w := httptest.NewRecorder()
		router.ServeHTTP(w, createJSONHTTPRequest("POST", "/api/v1/raffles/"+raffleID.String()+"/resolve",
			model.ResolveRaffleRequest{CallerID: caller}))

		assert.Equal(t, http.StatusOK, w.Code)
	})

	errCases := []struct {
		name   string
		err    error
		status int
	}{
		{"too early", apperrors.ErrNotResolvableYet, http.StatusTooEarly},
		{"no tickets", apperrors.ErrNoTicketsSold, http.StatusUnprocessableEntity},
		{"already resolved", apperrors.ErrAlreadyResolved, http.StatusConflict},
	}
	for _, tc := range errCases {
		t.Run("Failed - "+tc.name, func(t *testing.T) {
			mockService := mocks.NewMockRaffleService(t)
			router := setupRaffleTestRouter(mockService)

			mockService.On("Resolve", mock.Anything, raffleID, uuid.Nil).Return(uuid.Nil, tc.err).Once()

			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest("POST", "/api/v1/raffles/"+raffleID.String()+"/resolve", nil))

			assert.Equal(t, tc.status, w.Code)
		})
	}
}

func TestClaimPrize(t *testing.T) {
	raffleID := uuid.New()
	ticketID := uuid.New()
	claimer := uuid.New()
	body := model.ClaimPrizeRequest{AccountID: claimer, TicketID: ticketID}

	t.Run("Success", func(t *testing.T) {
		mockService := mocks.NewMockRaffleService(t)
		router := setupRaffleTestRouter(mockService)

		mockService.On("ClaimPrize", mock.Anything, raffleID, ticketID, claimer).
			Return(&model.Payout{RaffleID: raffleID, Recipient: claimer, Amount: 30}, nil).Once()

		w := httptest.NewRecorder()
		router.ServeHTTP(w, createJSONHTTPRequest("POST", "/api/v1/raffles/"+raffleID.String()+"/claim", body))

		assert.Equal(t, http.StatusOK, w.Code)
		var payout model.Payout
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &payout))
		assert.Equal(t, uint64(30), payout.Amount)
		assert.Equal(t, claimer, payout.Recipient)
	})

	errCases := []struct {
		name   string
		err    error
		status int
	}{
		{"not resolved", apperrors.ErrNotResolved, http.StatusConflict},
		{"did not win", apperrors.ErrTicketDidNotWin, http.StatusForbidden},
		{"already claimed", apperrors.ErrPrizeAlreadyClaimed, http.StatusGone},
		{"ticket not found", apperrors.ErrTicketNotFound, http.StatusNotFound},
	}
	for _, tc := range errCases {
		t.Run("Failed - "+tc.name, func(t *testing.T) {
			mockService := mocks.NewMockRaffleService(t)
			router := setupRaffleTestRouter(mockService)

			mockService.On("ClaimPrize", mock.Anything, raffleID, ticketID, claimer).Return(nil, tc.err).Once()

			w := httptest.NewRecorder()
			router.ServeHTTP(w, createJSONHTTPRequest("POST", "/api/v1/raffles/"+raffleID.String()+"/claim", body))

			assert.Equal(t, tc.status, w.Code)
		})
	}

	t.Run("Failed - missing ticket", func(t *testing.T) {
		mockService := mocks.NewMockRaffleService(t)
		router := setupRaffleTestRouter(mockService)

		w := httptest.NewRecorder()
		router.ServeHTTP(w, createJSONHTTPRequest("POST", "/api/v1/raffles/"+raffleID.String()+"/claim",
			gin.H{"account_id": claimer}))

		assert.Equal(t, http.StatusBadRequest, w.Code)
		mockService.AssertNotCalled(t, "ClaimPrize")
	})
}

func TestJournal(t *testing.T) {
	raffleID := uuid.New()
	mockService := mocks.NewMockRaffleService(t)
	router := setupRaffleTestRouter(mockService)

	entries := []*journal.Entry{
		journal.NewEntry(journal.KindCreated, raffleID, 1, 1000),
		journal.NewEntry(journal.KindTicket, raffleID, 2, 2000),
	}
	mockService.On("Journal", mock.Anything, raffleID).Return(entries, nil).Once()

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/api/v1/raffles/"+raffleID.String()+"/journal", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	var got []journal.Entry
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Len(t, got, 2)
}

func TestProof(t *testing.T) {
	raffleID := uuid.New()

	beacon, err := randomness.NewBeacon("")
	require.NoError(t, err)
	_, proof, err := beacon.Draw(raffleID[:], 0, 9)
	require.NoError(t, err)

	t.Run("Verified", func(t *testing.T) {
		mockService := mocks.NewMockRaffleService(t)
		router := setupRaffleTestRouter(mockService)
		mockService.On("Proof", mock.Anything, raffleID).Return(proof, nil).Once()

		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest("GET", "/api/v1/raffles/"+raffleID.String()+"/proof", nil))

		assert.Equal(t, http.StatusOK, w.Code)
		var resp handler.ProofResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.True(t, resp.Verified)
		assert.Equal(t, proof.Value, resp.Proof.Value)
	})

	t.Run("Tampered", func(t *testing.T) {
		mockService := mocks.NewMockRaffleService(t)
		router := setupRaffleTestRouter(mockService)

		tampered := *proof
		tampered.Value = (proof.Value + 1) % 10
		mockService.On("Proof", mock.Anything, raffleID).Return(&tampered, nil).Once()

		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest("GET", "/api/v1/raffles/"+raffleID.String()+"/proof", nil))

		assert.Equal(t, http.StatusOK, w.Code)
		var resp handler.ProofResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.False(t, resp.Verified)
		assert.NotEmpty(t, resp.Reason)
	})

	t.Run("Not found", func(t *testing.T) {
		mockService := mocks.NewMockRaffleService(t)
		router := setupRaffleTestRouter(mockService)
		mockService.On("Proof", mock.Anything, raffleID).Return(nil, journal.ErrProofNotFound).Once()

		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest("GET", "/api/v1/raffles/"+raffleID.String()+"/proof", nil))

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}
