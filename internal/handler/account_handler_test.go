package handler_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"go-gin-raffle/internal/balance"
	"go-gin-raffle/internal/handler"
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

func setupAccountTestRouter(mockService *mocks.MockAccountService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	handler.NewAccountHandler(mockService).RegisterRoutes(router)
	return router
}

func TestOpenAccount(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		mockService := mocks.NewMockAccountService(t)
		router := setupAccountTestRouter(mockService)

		req := model.CreateAccountRequest{Name: "alice"}
		mockService.On("Open", mock.Anything, req).
			Return(&model.Account{AccountID: uuid.New(), Name: "alice", Balance: balance.Zero()}, nil).Once()

		w := httptest.NewRecorder()
		router.ServeHTTP(w, createJSONHTTPRequest("POST", "/api/v1/accounts", req))

		assert.Equal(t, http.StatusCreated, w.Code)
	})

	t.Run("Failed - missing name", func(t *testing.T) {
		mockService := mocks.NewMockAccountService(t)
		router := setupAccountTestRouter(mockService)

		w := httptest.NewRecorder()
		router.ServeHTTP(w, createJSONHTTPRequest("POST", "/api/v1/accounts", gin.H{}))

		assert.Equal(t, http.StatusBadRequest, w.Code)
		mockService.AssertNotCalled(t, "Open")
	})
}

func TestDeposit(t *testing.T) {
	accountID := uuid.New()

	t.Run("Success", func(t *testing.T) {
		mockService := mocks.NewMockAccountService(t)
		router := setupAccountTestRouter(mockService)

		mockService.On("Deposit", mock.Anything, accountID, uint64(50)).
			Return(&model.Account{AccountID: accountID, Balance: balance.Restore(50)}, nil).Once()

		w := httptest.NewRecorder()
		router.ServeHTTP(w, createJSONHTTPRequest("POST", "/api/v1/accounts/"+accountID.String()+"/deposit",
			model.DepositRequest{Amount: 50}))

		assert.Equal(t, http.StatusOK, w.Code)
		var got model.Account
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
		assert.Equal(t, uint64(50), got.Balance.Value())
	})

	t.Run("Failed - overflow", func(t *testing.T) {
		mockService := mocks.NewMockAccountService(t)
		router := setupAccountTestRouter(mockService)

		mockService.On("Deposit", mock.Anything, accountID, uint64(1)).Return(nil, apperrors.ErrBalanceOverflow).Once()

		w := httptest.NewRecorder()
		router.ServeHTTP(w, createJSONHTTPRequest("POST", "/api/v1/accounts/"+accountID.String()+"/deposit",
			model.DepositRequest{Amount: 1}))

		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("Failed - zero amount", func(t *testing.T) {
		mockService := mocks.NewMockAccountService(t)
		router := setupAccountTestRouter(mockService)

		w := httptest.NewRecorder()
		router.ServeHTTP(w, createJSONHTTPRequest("POST", "/api/v1/accounts/"+accountID.String()+"/deposit",
			gin.H{"amount": 0}))

		assert.Equal(t, http.StatusBadRequest, w.Code)
		mockService.AssertNotCalled(t, "Deposit")
	})
}

func TestGetAccount(t *testing.T) {
	accountID := uuid.New()

	t.Run("Success", func(t *testing.T) {
		mockService := mocks.NewMockAccountService(t)
		router := setupAccountTestRouter(mockService)

		mockService.On("GetByAccountID", mock.Anything, accountID).
			Return(&model.Account{AccountID: accountID, Name: "bob"}, nil).Once()

		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest("GET", "/api/v1/accounts/"+accountID.String(), nil))

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("Failed - not found", func(t *testing.T) {
		mockService := mocks.NewMockAccountService(t)
		router := setupAccountTestRouter(mockService)

		mockService.On("GetByAccountID", mock.Anything, accountID).Return(nil, apperrors.ErrAccountNotFound).Once()

		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest("GET", "/api/v1/accounts/"+accountID.String(), nil))

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestAccountTickets(t *testing.T) {
	accountID := uuid.New()
	mockService := mocks.NewMockAccountService(t)
	router := setupAccountTestRouter(mockService)

	mockService.On("ListTickets", mock.Anything, accountID).
		Return([]*model.Ticket{{TicketID: uuid.New(), Owner: accountID}}, nil).Once()

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/api/v1/accounts/"+accountID.String()+"/tickets", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	var got []model.Ticket
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	require.Len(t, got, 1)
	assert.Equal(t, accountID, got[0].Owner)
}

func TestRandomnessInfo(t *testing.T) {
	gin.SetMode(gin.TestMode)

	t.Run("Beacon", func(t *testing.T) {
		beacon, err := randomness.NewBeacon("")
		require.NoError(t, err)

		router := gin.New()
		handler.NewRandomnessHandler(beacon).RegisterRoutes(router)

		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest("GET", "/api/v1/randomness", nil))

		assert.Equal(t, http.StatusOK, w.Code)
		var resp map[string]interface{}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, beacon.PublicKeyHex(), resp["public_key"])
		assert.Equal(t, true, resp["verifiable"])
	})

	t.Run("Crypto", func(t *testing.T) {
		router := gin.New()
		handler.NewRandomnessHandler(nil).RegisterRoutes(router)

		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest("GET", "/api/v1/randomness", nil))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"verifiable":false`)
	})
}
