package valuation

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/navtrail/navtrail-backend/internal/domain"
)

// MockPurchaseRepository is a mock implementation of PurchaseRepository for testing
type MockPurchaseRepository struct {
	mock.Mock
}

func (m *MockPurchaseRepository) Create(ctx context.Context, purchase *domain.Purchase) error {
	args := m.Called(ctx, purchase)
	return args.Error(0)
}

func (m *MockPurchaseRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.Purchase, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Purchase), args.Error(1)
}

func (m *MockPurchaseRepository) Delete(ctx context.Context, userID uuid.UUID, schemeCode int, purchaseDate time.Time) (int, error) {
	args := m.Called(ctx, userID, schemeCode, purchaseDate)
	return args.Int(0), args.Error(1)
}

func (m *MockPurchaseRepository) SchemeCodes(ctx context.Context) ([]int, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]int), args.Error(1)
}

// MockSeriesLoader is a mock implementation of SeriesLoader for testing
type MockSeriesLoader struct {
	mock.Mock
}

func (m *MockSeriesLoader) Load(ctx context.Context, schemeCodes []int) (map[int]*domain.NAVSeries, error) {
	args := m.Called(ctx, schemeCodes)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[int]*domain.NAVSeries), args.Error(1)
}

func date(y, m, d int) time.Time {
	return time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC)
}

func purchase(code int, name string, units, nav int64, purchased time.Time) *domain.Purchase {
	return &domain.Purchase{
		ID:           uuid.New(),
		UserID:       uuid.New(),
		SchemeCode:   code,
		SchemeName:   name,
		Units:        decimal.NewFromInt(units),
		PurchaseDate: purchased,
		PurchaseNAV:  decimal.NewFromInt(nav),
		CreatedAt:    purchased,
	}
}

func seriesWith(quotes ...domain.NAVQuote) *domain.NAVSeries {
	return domain.NewNAVSeries(quotes)
}

func TestCompute_EmptyPortfolio(t *testing.T) {
	_, err := Compute(nil, nil)

	assert.ErrorIs(t, err, domain.ErrNoHoldings)
}

func TestCompute_SingleHolding(t *testing.T) {
	purchases := []*domain.Purchase{
		purchase(100, "Bluechip", 10, 50, date(2024, 1, 1)),
	}
	series := map[int]*domain.NAVSeries{
		100: seriesWith(domain.NAVQuote{Date: date(2024, 1, 15), NAV: decimal.NewFromInt(55)}),
	}

	v, err := Compute(purchases, series)

	require.NoError(t, err)
	assert.True(t, v.TotalInvestment.Equal(decimal.NewFromInt(500)), "got %s", v.TotalInvestment)
	assert.True(t, v.CurrentValue.Equal(decimal.NewFromInt(550)), "got %s", v.CurrentValue)
	assert.True(t, v.ProfitLoss.Equal(decimal.NewFromInt(50)), "got %s", v.ProfitLoss)
	assert.True(t, v.ProfitLossPercent.Equal(decimal.NewFromInt(10)), "got %s", v.ProfitLossPercent)
	assert.Equal(t, "15-01-2024", v.AsOn)

	require.Len(t, v.Holdings, 1)
	h := v.Holdings[0]
	assert.Equal(t, 100, h.SchemeCode)
	require.NotNil(t, h.CurrentNAV)
	assert.True(t, h.CurrentNAV.Equal(decimal.NewFromInt(55)))
	require.NotNil(t, h.CurrentValue)
	assert.True(t, h.CurrentValue.Equal(decimal.NewFromInt(550)))
	require.NotNil(t, h.ProfitLoss)
	assert.True(t, h.ProfitLoss.Equal(decimal.NewFromInt(50)))
}

func TestCompute_AggregatesPurchasesOfSameScheme(t *testing.T) {
	// 100 units @ 10 + 50 units @ 12 -> one holding, 150 units, 1600 invested.
	purchases := []*domain.Purchase{
		purchase(100, "Bluechip", 100, 10, date(2024, 1, 1)),
		purchase(100, "Bluechip", 50, 12, date(2024, 2, 1)),
	}
	series := map[int]*domain.NAVSeries{
		100: seriesWith(domain.NAVQuote{Date: date(2024, 3, 1), NAV: decimal.NewFromInt(20)}),
	}

	v, err := Compute(purchases, series)

	require.NoError(t, err)
	require.Len(t, v.Holdings, 1)
	h := v.Holdings[0]
	assert.True(t, h.Units.Equal(decimal.NewFromInt(150)))
	assert.True(t, h.InvestedValue.Equal(decimal.NewFromInt(1600)))
	require.NotNil(t, h.CurrentValue)
	assert.True(t, h.CurrentValue.Equal(decimal.NewFromInt(3000)))
	assert.True(t, v.TotalInvestment.Equal(decimal.NewFromInt(1600)))
}

func TestCompute_SchemeFailureIsSoft(t *testing.T) {
	// Three holdings, NAV missing for one: report still computes, failed
	// holding listed with nil current fields, totals exclude it.
	purchases := []*domain.Purchase{
		purchase(100, "A", 10, 10, date(2024, 1, 1)),
		purchase(200, "B", 10, 20, date(2024, 1, 1)),
		purchase(300, "C", 10, 30, date(2024, 1, 1)),
	}
	series := map[int]*domain.NAVSeries{
		100: seriesWith(domain.NAVQuote{Date: date(2024, 2, 1), NAV: decimal.NewFromInt(11)}),
		300: seriesWith(domain.NAVQuote{Date: date(2024, 2, 1), NAV: decimal.NewFromInt(33)}),
	}

	v, err := Compute(purchases, series)

	require.NoError(t, err)
	require.Len(t, v.Holdings, 3)

	failed := v.Holdings[1]
	assert.Equal(t, 200, failed.SchemeCode)
	assert.Nil(t, failed.CurrentNAV)
	assert.Nil(t, failed.CurrentValue)
	assert.Nil(t, failed.ProfitLoss)
	assert.True(t, failed.InvestedValue.Equal(decimal.NewFromInt(200)))

	// Totals: invested 100+300=400, current 110+330=440.
	assert.True(t, v.TotalInvestment.Equal(decimal.NewFromInt(400)), "got %s", v.TotalInvestment)
	assert.True(t, v.CurrentValue.Equal(decimal.NewFromInt(440)), "got %s", v.CurrentValue)
	assert.True(t, v.ProfitLoss.Equal(decimal.NewFromInt(40)))
}

func TestCompute_AsOnIsMaxQuoteDate(t *testing.T) {
	purchases := []*domain.Purchase{
		purchase(100, "A", 1, 10, date(2024, 1, 1)),
		purchase(200, "B", 1, 10, date(2024, 1, 1)),
	}
	series := map[int]*domain.NAVSeries{
		100: seriesWith(domain.NAVQuote{Date: date(2024, 3, 5), NAV: decimal.NewFromInt(11)}),
		200: seriesWith(domain.NAVQuote{Date: date(2024, 3, 8), NAV: decimal.NewFromInt(12)}),
	}

	v, err := Compute(purchases, series)

	require.NoError(t, err)
	assert.Equal(t, "08-03-2024", v.AsOn)
}

func TestCompute_ZeroInvestmentPercent(t *testing.T) {
	purchases := []*domain.Purchase{
		purchase(100, "A", 1, 10, date(2024, 1, 1)),
	}

	// No series resolves: totals stay zero, percent must not divide by zero.
	v, err := Compute(purchases, map[int]*domain.NAVSeries{})

	require.NoError(t, err)
	assert.True(t, v.ProfitLossPercent.IsZero())
	assert.Empty(t, v.AsOn)
}

func TestCompute_RoundsMoneyToTwoPlaces(t *testing.T) {
	units, _ := decimal.NewFromString("3.333")
	nav, _ := decimal.NewFromString("10.555")
	purchases := []*domain.Purchase{{
		SchemeCode:   100,
		SchemeName:   "A",
		Units:        units,
		PurchaseDate: date(2024, 1, 1),
		PurchaseNAV:  nav,
	}}
	latest, _ := decimal.NewFromString("11.111")
	series := map[int]*domain.NAVSeries{
		100: seriesWith(domain.NAVQuote{Date: date(2024, 2, 1), NAV: latest}),
	}

	v, err := Compute(purchases, series)

	require.NoError(t, err)
	// 3.333 * 10.555 = 35.179815 -> 35.18; 3.333 * 11.111 = 37.032963 -> 37.03
	assert.Equal(t, "35.18", v.TotalInvestment.String())
	assert.Equal(t, "37.03", v.CurrentValue.String())
	assert.Equal(t, "1.85", v.ProfitLoss.String())
	// 1.853148 / 35.179815 * 100 = 5.2676... -> 5.268
	assert.Equal(t, "5.268", v.ProfitLossPercent.String())
}

func TestPortfolioValue_NoHoldings(t *testing.T) {
	ctx := context.Background()
	repo := new(MockPurchaseRepository)
	loader := new(MockSeriesLoader)
	service := NewService(repo, loader, zerolog.Nop())

	userID := uuid.New()
	repo.On("ListByUser", ctx, userID).Return([]*domain.Purchase{}, nil)

	_, err := service.PortfolioValue(ctx, userID)

	assert.ErrorIs(t, err, domain.ErrNoHoldings)
	loader.AssertNotCalled(t, "Load")
}

func TestPortfolioValue_LoadsDistinctSchemes(t *testing.T) {
	ctx := context.Background()
	repo := new(MockPurchaseRepository)
	loader := new(MockSeriesLoader)
	service := NewService(repo, loader, zerolog.Nop())

	userID := uuid.New()
	purchases := []*domain.Purchase{
		purchase(100, "A", 1, 10, date(2024, 1, 1)),
		purchase(100, "A", 2, 11, date(2024, 1, 2)),
	}
	repo.On("ListByUser", ctx, userID).Return(purchases, nil)
	loader.On("Load", ctx, []int{100}).Return(map[int]*domain.NAVSeries{
		100: seriesWith(domain.NAVQuote{Date: date(2024, 2, 1), NAV: decimal.NewFromInt(12)}),
	}, nil)

	v, err := service.PortfolioValue(ctx, userID)

	require.NoError(t, err)
	assert.Len(t, v.Holdings, 1)
	repo.AssertExpectations(t)
	loader.AssertExpectations(t)
}
