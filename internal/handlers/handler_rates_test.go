package handlers_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/letehaha/currency-rates/internal/apperrors"
	"github.com/letehaha/currency-rates/internal/core/domain"
	"github.com/letehaha/currency-rates/internal/dto"
	"github.com/letehaha/currency-rates/internal/handlers"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
	"github.com/ulule/limiter/v3"
	"github.com/ulule/limiter/v3/drivers/store/memory"
)

// --- Mock RatesService ---
type MockRatesService struct {
	mock.Mock
}

func (m *MockRatesService) Latest(ctx context.Context, q domain.RateQuery) (*domain.RateSet, error) {
	args := m.Called(ctx, q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.RateSet), args.Error(1)
}

func (m *MockRatesService) AtDate(ctx context.Context, date time.Time, q domain.RateQuery) (*domain.RateSet, error) {
	args := m.Called(ctx, date, q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.RateSet), args.Error(1)
}

func (m *MockRatesService) Range(ctx context.Context, start, end time.Time, q domain.RateQuery) (*domain.RateSeries, error) {
	args := m.Called(ctx, start, end, q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.RateSeries), args.Error(1)
}

func (m *MockRatesService) Currencies(ctx context.Context) ([]domain.CurrencyInfo, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.CurrencyInfo), args.Error(1)
}

// --- Mock SyncService ---
type MockSyncService struct {
	mock.Mock
}

func (m *MockSyncService) SyncAll(ctx context.Context) []domain.SyncRun {
	args := m.Called(ctx)
	return args.Get(0).([]domain.SyncRun)
}

func (m *MockSyncService) SyncProvider(ctx context.Context, name string) (domain.SyncRun, error) {
	args := m.Called(ctx, name)
	return args.Get(0).(domain.SyncRun), args.Error(1)
}

// --- Mock HealthService ---
type MockHealthService struct {
	mock.Mock
}

func (m *MockHealthService) Health(ctx context.Context) (*domain.HealthReport, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.HealthReport), args.Error(1)
}

// --- Test Suite ---
type RatesHandlerTestSuite struct {
	suite.Suite
	router     *gin.Engine
	mockRates  *MockRatesService
	mockSync   *MockSyncService
	mockHealth *MockHealthService
}

func (suite *RatesHandlerTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)

	suite.mockRates = new(MockRatesService)
	suite.mockSync = new(MockSyncService)
	suite.mockHealth = new(MockHealthService)

	rate, err := limiter.NewRateFromFormatted("1000-M")
	suite.Require().NoError(err)
	limiterInstance := limiter.New(memory.NewStore(), rate)

	suite.router = gin.New()
	handlers.RegisterRoutes(suite.router, "test", handlers.Services{
		Rates:  suite.mockRates,
		Sync:   suite.mockSync,
		Health: suite.mockHealth,
	}, limiterInstance)
}

func (suite *RatesHandlerTestSuite) get(path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	suite.router.ServeHTTP(w, req)
	return w
}

func (suite *RatesHandlerTestSuite) post(path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, path, nil)
	suite.router.ServeHTTP(w, req)
	return w
}

func day(s string) time.Time {
	d, err := time.Parse(time.DateOnly, s)
	if err != nil {
		panic(err)
	}
	return d
}

// --- Test Cases ---

func (suite *RatesHandlerTestSuite) TestGetLatest() {
	suite.mockRates.On("Latest", mock.Anything, domain.RateQuery{}).Return(&domain.RateSet{
		Date:   day("2025-11-27"),
		Base:   "USD",
		Amount: 1,
		Rates:  map[string]float64{"EUR": 0.8636123456789},
	}, nil).Once()

	w := suite.get("/latest")

	suite.Equal(http.StatusOK, w.Code)
	var resp dto.RatesResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.Equal("USD", resp.Base)
	suite.Equal("2025-11-27", resp.Date)
	// Rounded to six decimals at the payload boundary.
	suite.Equal(0.863612, resp.Rates["EUR"])
}

func (suite *RatesHandlerTestSuite) TestGetLatest_QueryParams() {
	expected := domain.RateQuery{Base: "EUR", Symbols: []string{"GBP", "JPY"}, Amount: 50}
	suite.mockRates.On("Latest", mock.Anything, expected).Return(&domain.RateSet{
		Date:   day("2025-11-27"),
		Base:   "EUR",
		Amount: 50,
		Rates:  map[string]float64{"GBP": 37.65, "JPY": 8150},
	}, nil).Once()

	w := suite.get("/latest?from=eur&to=gbp,jpy&amount=50")

	suite.Equal(http.StatusOK, w.Code)
	suite.mockRates.AssertExpectations(suite.T())
}

func (suite *RatesHandlerTestSuite) TestGetLatest_InvalidAmount() {
	w := suite.get("/latest?amount=-5")

	suite.Equal(http.StatusBadRequest, w.Code)
	var resp map[string]string
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.Equal("validation_error", resp["error"])
}

func (suite *RatesHandlerTestSuite) TestGetByDate() {
	date := day("2025-11-27")
	suite.mockRates.On("AtDate", mock.Anything, date, domain.RateQuery{}).Return(&domain.RateSet{
		Date:   date,
		Base:   "USD",
		Amount: 1,
		Rates:  map[string]float64{"EUR": 0.8636},
	}, nil).Twice()

	// Both date forms resolve to the same day.
	for _, path := range []string{"/2025-11-27", "/20251127"} {
		w := suite.get(path)
		suite.Equal(http.StatusOK, w.Code, path)
	}
	suite.mockRates.AssertExpectations(suite.T())
}

func (suite *RatesHandlerTestSuite) TestGetByDate_NoDataYet() {
	date := day("2030-01-01")
	suite.mockRates.On("AtDate", mock.Anything, date, domain.RateQuery{}).
		Return(nil, fmt.Errorf("%w: no rates for 2030-01-01", apperrors.ErrNoData)).Once()

	w := suite.get("/2030-01-01")

	suite.Equal(http.StatusNotFound, w.Code)
	var resp map[string]string
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	// "No data yet" is routine and must stay distinguishable from a bad request.
	suite.Equal("no_data", resp["error"])
}

func (suite *RatesHandlerTestSuite) TestGetByDate_Garbage() {
	w := suite.get("/not-a-date")

	suite.Equal(http.StatusBadRequest, w.Code)
}

func (suite *RatesHandlerTestSuite) TestGetRange() {
	suite.mockRates.On("Range", mock.Anything, day("2025-11-24"), day("2025-11-27"), domain.RateQuery{}).
		Return(&domain.RateSeries{
			Start:  day("2025-11-24"),
			End:    day("2025-11-27"),
			Base:   "USD",
			Amount: 1,
			Sets: []domain.RateSet{
				{Date: day("2025-11-24"), Base: "USD", Amount: 1, Rates: map[string]float64{"EUR": 0.85}},
				{Date: day("2025-11-27"), Base: "USD", Amount: 1, Rates: map[string]float64{"EUR": 0.86}},
			},
		}, nil).Once()

	w := suite.get("/2025-11-24..2025-11-27")

	suite.Equal(http.StatusOK, w.Code)
	var resp dto.TimeSeriesResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.Equal("2025-11-24", resp.StartDate)
	suite.Len(resp.Rates, 2)
	suite.Equal(0.85, resp.Rates["2025-11-24"]["EUR"])
}

func (suite *RatesHandlerTestSuite) TestGetRange_OpenEnd() {
	suite.mockRates.On("Range", mock.Anything, day("2025-11-24"), time.Time{}, domain.RateQuery{}).
		Return(&domain.RateSeries{Start: day("2025-11-24"), End: day("2025-11-27"), Base: "USD", Amount: 1}, nil).Once()

	w := suite.get("/2025-11-24..")

	suite.Equal(http.StatusOK, w.Code)
	suite.mockRates.AssertExpectations(suite.T())
}

func (suite *RatesHandlerTestSuite) TestGetCurrencies() {
	suite.mockRates.On("Currencies", mock.Anything).Return([]domain.CurrencyInfo{
		{Code: "EUR", Name: "Euro", Providers: []string{"ecb"}, MinDate: day("1999-01-04"), MaxDate: day("2025-11-27")},
	}, nil).Once()

	w := suite.get("/currencies")

	suite.Equal(http.StatusOK, w.Code)
	var resp dto.CurrenciesResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.Equal("Euro", resp["EUR"].Name)
	suite.Equal("1999-01-04", resp["EUR"].StartDate)
}

func (suite *RatesHandlerTestSuite) TestPostSyncProvider_Conflict() {
	suite.mockSync.On("SyncProvider", mock.Anything, "ecb").
		Return(domain.SyncRun{}, fmt.Errorf("%w: provider %q", apperrors.ErrSyncInProgress, "ecb")).Once()

	w := suite.post("/sync/ecb")

	suite.Equal(http.StatusConflict, w.Code)
	var resp map[string]string
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.Equal("sync_in_progress", resp["error"])
}

func (suite *RatesHandlerTestSuite) TestPostSyncProvider_Unknown() {
	suite.mockSync.On("SyncProvider", mock.Anything, "nope").
		Return(domain.SyncRun{}, fmt.Errorf("%w: unknown provider %q", apperrors.ErrNotFound, "nope")).Once()

	w := suite.post("/sync/nope")

	suite.Equal(http.StatusNotFound, w.Code)
}

func (suite *RatesHandlerTestSuite) TestPostSyncAll() {
	suite.mockSync.On("SyncAll", mock.Anything).Return([]domain.SyncRun{
		{Provider: "ecb", Status: domain.SyncStatusSuccess, DaysCount: 2, RecordsCount: 64},
		{Provider: "nbu", Status: domain.SyncStatusFailed, Message: "provider fetch failed"},
	}).Once()

	w := suite.post("/sync")

	suite.Equal(http.StatusOK, w.Code)
	var resp dto.SyncResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.Require().Len(resp.Results, 2)
	suite.Equal("success", resp.Results[0].Status)
	suite.Equal("failed", resp.Results[1].Status)
}

func (suite *RatesHandlerTestSuite) TestGetHealth() {
	suite.mockHealth.On("Health", mock.Anything).Return(&domain.HealthReport{
		ReferenceCurrency: "USD",
		Providers: []domain.ProviderStatus{
			{Name: "ecb", BaseCurrency: "EUR", RatesCount: 1200, LastRateDate: day("2025-11-27"), UpToDate: true},
		},
	}, nil).Once()

	w := suite.get("/health")

	suite.Equal(http.StatusOK, w.Code)
	var resp dto.HealthResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.Equal("ok", resp.Status)
	suite.Require().Len(resp.Providers, 1)
	suite.Equal("2025-11-27", resp.Providers[0].LastRateDate)
}

func TestRatesHandlerTestSuite(t *testing.T) {
	suite.Run(t, new(RatesHandlerTestSuite))
}
