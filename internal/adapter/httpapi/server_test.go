package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/navtrail/navtrail-backend/internal/domain"
	"github.com/navtrail/navtrail-backend/internal/ratelimit"
	"github.com/navtrail/navtrail-backend/internal/usecase/auth"
	"github.com/navtrail/navtrail-backend/internal/usecase/fund"
	"github.com/navtrail/navtrail-backend/internal/usecase/history"
	"github.com/navtrail/navtrail-backend/internal/usecase/portfolio"
	"github.com/navtrail/navtrail-backend/internal/usecase/valuation"
)

// MockAuthService is a mock implementation of AuthService for testing
type MockAuthService struct {
	mock.Mock
}

func (m *MockAuthService) Signup(ctx context.Context, name, email, password string) (*auth.Result, error) {
	args := m.Called(ctx, name, email, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*auth.Result), args.Error(1)
}

func (m *MockAuthService) Login(ctx context.Context, email, password, clientIP string) (*auth.Result, error) {
	args := m.Called(ctx, email, password, clientIP)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*auth.Result), args.Error(1)
}

func (m *MockAuthService) ParseToken(token string) (uuid.UUID, error) {
	args := m.Called(token)
	return args.Get(0).(uuid.UUID), args.Error(1)
}

// MockPortfolioService is a mock implementation of PortfolioService for testing
type MockPortfolioService struct {
	mock.Mock
}

func (m *MockPortfolioService) AddPurchase(ctx context.Context, userID uuid.UUID, schemeCode int, units decimal.Decimal, purchaseDateStr string) (*domain.Purchase, error) {
	args := m.Called(ctx, userID, schemeCode, units, purchaseDateStr)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Purchase), args.Error(1)
}

func (m *MockPortfolioService) ListPositions(ctx context.Context, userID uuid.UUID) ([]portfolio.Position, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]portfolio.Position), args.Error(1)
}

func (m *MockPortfolioService) RemovePurchase(ctx context.Context, userID uuid.UUID, schemeCode int, purchaseDateStr string) error {
	args := m.Called(ctx, userID, schemeCode, purchaseDateStr)
	return args.Error(0)
}

// MockValuationService is a mock implementation of ValuationService for testing
type MockValuationService struct {
	mock.Mock
}

func (m *MockValuationService) PortfolioValue(ctx context.Context, userID uuid.UUID) (*valuation.Valuation, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*valuation.Valuation), args.Error(1)
}

// MockHistoryService is a mock implementation of HistoryService for testing
type MockHistoryService struct {
	mock.Mock
}

func (m *MockHistoryService) PortfolioHistory(ctx context.Context, userID uuid.UUID, startStr, endStr string) ([]history.Snapshot, error) {
	args := m.Called(ctx, userID, startStr, endStr)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]history.Snapshot), args.Error(1)
}

// MockFundService is a mock implementation of FundService for testing
type MockFundService struct {
	mock.Mock
}

func (m *MockFundService) List(ctx context.Context, search string, page, limit int) (*fund.Page, error) {
	args := m.Called(ctx, search, page, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*fund.Page), args.Error(1)
}

func (m *MockFundService) History(ctx context.Context, schemeCode int) (*fund.SchemeHistory, error) {
	args := m.Called(ctx, schemeCode)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*fund.SchemeHistory), args.Error(1)
}

type mocks struct {
	auth      *MockAuthService
	portfolio *MockPortfolioService
	valuation *MockValuationService
	history   *MockHistoryService
	funds     *MockFundService
}

func newTestServer() (*Server, *mocks) {
	m := &mocks{
		auth:      new(MockAuthService),
		portfolio: new(MockPortfolioService),
		valuation: new(MockValuationService),
		history:   new(MockHistoryService),
		funds:     new(MockFundService),
	}
	server := New(Config{
		Port:       0,
		Log:        zerolog.Nop(),
		Auth:       m.auth,
		Portfolio:  m.portfolio,
		Valuation:  m.valuation,
		History:    m.history,
		Funds:      m.funds,
		APILimiter: ratelimit.NewMemoryStore(1000, time.Minute),
	})
	return server, m
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) envelope {
	t.Helper()
	var body envelope
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	return body
}

func TestSignupRoute_Success(t *testing.T) {
	server, m := newTestServer()

	m.auth.On("Signup", mock.Anything, "User", "user@example.com", "Str0ng!pass").
		Return(&auth.Result{Token: "tok"}, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/auth/signup",
		strings.NewReader(`{"name":"User","email":"user@example.com","password":"Str0ng!pass"}`))
	rec := httptest.NewRecorder()

	server.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusCreated, rec.Code)
	body := decodeEnvelope(t, rec)
	assert.True(t, body.Success)
	assert.Equal(t, "Account created", body.Message)
}

func TestSignupRoute_EmailTaken(t *testing.T) {
	server, m := newTestServer()

	m.auth.On("Signup", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(nil, domain.ErrEmailTaken)

	req := httptest.NewRequest(http.MethodPost, "/api/auth/signup",
		strings.NewReader(`{"name":"User","email":"user@example.com","password":"Str0ng!pass"}`))
	rec := httptest.NewRecorder()

	server.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.False(t, decodeEnvelope(t, rec).Success)
}

func TestLoginRoute_TooManyAttempts(t *testing.T) {
	server, m := newTestServer()

	m.auth.On("Login", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(nil, domain.ErrTooManyAttempts)

	req := httptest.NewRequest(http.MethodPost, "/api/auth/login",
		strings.NewReader(`{"email":"user@example.com","password":"x"}`))
	rec := httptest.NewRecorder()

	server.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
}

func TestPortfolioRoutes_RequireAuth(t *testing.T) {
	server, _ := newTestServer()

	req := httptest.NewRequest(http.MethodGet, "/api/portfolio/value", nil)
	rec := httptest.NewRecorder()

	server.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestPortfolioValueRoute_Success(t *testing.T) {
	server, m := newTestServer()

	userID := uuid.New()
	m.auth.On("ParseToken", "tok").Return(userID, nil)
	m.valuation.On("PortfolioValue", mock.Anything, userID).Return(&valuation.Valuation{AsOn: "01-02-2024"}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/portfolio/value", nil)
	req.Header.Set("Authorization", "Bearer tok")
	rec := httptest.NewRecorder()

	server.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, decodeEnvelope(t, rec).Success)
}

func TestPortfolioValueRoute_NoHoldings(t *testing.T) {
	server, m := newTestServer()

	userID := uuid.New()
	m.auth.On("ParseToken", "tok").Return(userID, nil)
	m.valuation.On("PortfolioValue", mock.Anything, userID).Return(nil, domain.ErrNoHoldings)

	req := httptest.NewRequest(http.MethodGet, "/api/portfolio/value", nil)
	req.Header.Set("Authorization", "Bearer tok")
	rec := httptest.NewRecorder()

	server.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRemovePurchaseRoute_BadSchemeCode(t *testing.T) {
	server, m := newTestServer()

	m.auth.On("ParseToken", "tok").Return(uuid.New(), nil)

	req := httptest.NewRequest(http.MethodDelete, "/api/portfolio/remove?schemeCode=abc&purchaseDate=10-01-2024", nil)
	req.Header.Set("Authorization", "Bearer tok")
	rec := httptest.NewRecorder()

	server.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	m.portfolio.AssertNotCalled(t, "RemovePurchase")
}

func TestFundsRoute_TipWithoutParams(t *testing.T) {
	server, m := newTestServer()

	m.funds.On("List", mock.Anything, "", 0, 0).Return(&fund.Page{Funds: []*domain.Fund{}}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/funds/", nil)
	rec := httptest.NewRecorder()

	server.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, decodeEnvelope(t, rec).Message, "Tip")
}

func TestFundNAVRoute_UnknownScheme(t *testing.T) {
	server, m := newTestServer()

	m.funds.On("History", mock.Anything, 999).Return(nil, domain.ErrNotFound)

	req := httptest.NewRequest(http.MethodGet, "/api/funds/nav?schemeCode=999", nil)
	rec := httptest.NewRecorder()

	server.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHealthRoute(t *testing.T) {
	server, _ := newTestServer()

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()

	server.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}
