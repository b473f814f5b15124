package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/SscSPs/freight_quoting_app/internal/apperrors"
	"github.com/SscSPs/freight_quoting_app/internal/core/domain"
	portssvc "github.com/SscSPs/freight_quoting_app/internal/core/ports/services"
	"github.com/SscSPs/freight_quoting_app/internal/core/quote"
	"github.com/SscSPs/freight_quoting_app/internal/dto"
	"github.com/SscSPs/freight_quoting_app/internal/handlers"
	"github.com/SscSPs/freight_quoting_app/internal/middleware"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

// --- Mock QuoteService ---
type MockQuoteService struct {
	mock.Mock
}

func (m *MockQuoteService) record(args mock.Arguments) (*domain.QuoteRecord, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.QuoteRecord), args.Error(1)
}

func (m *MockQuoteService) GetQuote(ctx context.Context, quoteID string) (*domain.QuoteRecord, error) {
	return m.record(m.Called(ctx, quoteID))
}
func (m *MockQuoteService) ListQuotes(ctx context.Context, params dto.ListQuotesParams) ([]domain.QuoteRecord, *string, error) {
	args := m.Called(ctx, params)
	var next *string
	if args.Get(1) != nil {
		next = args.Get(1).(*string)
	}
	if args.Get(0) == nil {
		return nil, next, args.Error(2)
	}
	return args.Get(0).([]domain.QuoteRecord), next, args.Error(2)
}
func (m *MockQuoteService) ListActivity(ctx context.Context, quoteID string) ([]domain.ActivityEntry, error) {
	args := m.Called(ctx, quoteID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.ActivityEntry), args.Error(1)
}
func (m *MockQuoteService) CreateQuote(ctx context.Context, req dto.CreateQuoteRequest, userID string) (*domain.QuoteRecord, error) {
	return m.record(m.Called(ctx, req, userID))
}
func (m *MockQuoteService) AddLine(ctx context.Context, quoteID string, req dto.AddLineRequest, userID string) (*domain.QuoteRecord, error) {
	return m.record(m.Called(ctx, quoteID, req, userID))
}
func (m *MockQuoteService) UpdateLine(ctx context.Context, quoteID, lineID string, req dto.UpdateLineRequest, userID string) (*domain.QuoteRecord, error) {
	return m.record(m.Called(ctx, quoteID, lineID, req, userID))
}
func (m *MockQuoteService) RemoveLine(ctx context.Context, quoteID, lineID, userID string) (*domain.QuoteRecord, error) {
	return m.record(m.Called(ctx, quoteID, lineID, userID))
}
func (m *MockQuoteService) SetRate(ctx context.Context, quoteID, currencyCode string, req dto.SetRateRequest, userID string) (*domain.QuoteRecord, error) {
	return m.record(m.Called(ctx, quoteID, currencyCode, req, userID))
}
func (m *MockQuoteService) SetTargetCurrency(ctx context.Context, quoteID string, req dto.SetTargetCurrencyRequest, userID string) (*domain.QuoteRecord, error) {
	return m.record(m.Called(ctx, quoteID, req, userID))
}
func (m *MockQuoteService) SubmitQuote(ctx context.Context, quoteID, userID string) (*domain.QuoteRecord, error) {
	return m.record(m.Called(ctx, quoteID, userID))
}
func (m *MockQuoteService) RequestApproval(ctx context.Context, quoteID, userID string) (*domain.QuoteRecord, error) {
	return m.record(m.Called(ctx, quoteID, userID))
}
func (m *MockQuoteService) ApproveQuote(ctx context.Context, quoteID, userID string) (*domain.QuoteRecord, error) {
	return m.record(m.Called(ctx, quoteID, userID))
}
func (m *MockQuoteService) RejectQuote(ctx context.Context, quoteID string, req dto.RejectQuoteRequest, userID string) (*domain.QuoteRecord, error) {
	return m.record(m.Called(ctx, quoteID, req, userID))
}
func (m *MockQuoteService) MarkAccepted(ctx context.Context, quoteID, userID string) (*domain.QuoteRecord, error) {
	return m.record(m.Called(ctx, quoteID, userID))
}
func (m *MockQuoteService) MarkDeclined(ctx context.Context, quoteID string, req dto.DeclineQuoteRequest, userID string) (*domain.QuoteRecord, error) {
	return m.record(m.Called(ctx, quoteID, req, userID))
}
func (m *MockQuoteService) ReopenQuote(ctx context.Context, quoteID, userID string) (*domain.QuoteRecord, error) {
	return m.record(m.Called(ctx, quoteID, userID))
}
func (m *MockQuoteService) OverrideStatus(ctx context.Context, quoteID string, req dto.OverrideStatusRequest, userID string) (*domain.QuoteRecord, error) {
	return m.record(m.Called(ctx, quoteID, req, userID))
}

// Ensure mock implements the interface
var _ portssvc.QuoteSvcFacade = (*MockQuoteService)(nil)

// --- Test Suite ---
type QuoteHandlerTestSuite struct {
	suite.Suite
	router           *gin.Engine
	mockQuoteService *MockQuoteService
	jwtSecret        string
}

const testUserID = "operator-1"

func (suite *QuoteHandlerTestSuite) generateTestToken(userID string) string {
	claims := jwt.RegisteredClaims{
		Issuer:    "quote-test",
		Subject:   userID,
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(1 * time.Hour)),
		IssuedAt:  jwt.NewNumericDate(time.Now()),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(suite.jwtSecret))
	if err != nil {
		suite.FailNow("Failed to sign test token", err.Error())
	}
	return signed
}

func (suite *QuoteHandlerTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	suite.router = gin.New()
	suite.jwtSecret = "test-secret-key-that-is-long-enough"
	suite.router.Use(middleware.AuthMiddleware(suite.jwtSecret))

	suite.mockQuoteService = new(MockQuoteService)
	handlers.RegisterQuoteRoutes(suite.router.Group("/api/v1"), suite.mockQuoteService)
}

func (suite *QuoteHandlerTestSuite) do(method, path string, body any) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		suite.Require().NoError(err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Authorization", "Bearer "+suite.generateTestToken(testUserID))
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)
	return w
}

func sampleQuote(status domain.QuoteStatus) *domain.QuoteRecord {
	now := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	return &domain.QuoteRecord{
		QuoteID:        "quote-1",
		Reference:      "Q-20260302-ABC123",
		ClientName:     "Acme Logistics",
		Status:         status,
		BaseCurrency:   "EUR",
		TargetCurrency: "EUR",
		Rates:          map[string]decimal.Decimal{"EUR": decimal.NewFromInt(1), "USD": decimal.NewFromInt(10)},
		Lines: []domain.LineRecord{{
			ID:          "line-1",
			Section:     domain.SectionFreight,
			Description: "Ocean freight",
			BuyPrice:    decimal.NewFromInt(100),
			BuyCurrency: "USD",
			MarkupKind:  domain.MarkupPercent,
			MarkupValue: decimal.NewFromInt(20),
			TaxRule:     domain.TaxStandard,
		}},
		Totals: domain.Totals{
			TotalCostBase:      decimal.NewFromInt(1000),
			TotalSellBase:      decimal.NewFromInt(1200),
			TotalMarginBase:    decimal.NewFromInt(200),
			TotalTaxBase:       decimal.NewFromInt(240),
			TotalWithTaxBase:   decimal.NewFromInt(1440),
			TotalSellTarget:    decimal.NewFromInt(1200),
			TotalTaxTarget:     decimal.NewFromInt(240),
			TotalWithTaxTarget: decimal.NewFromInt(1440),
			MarginPercent:      decimal.RequireFromString("16.6667"),
			TargetCurrency:     "EUR",
		},
		Version:     2,
		AuditFields: domain.AuditFields{CreatedAt: now, CreatedBy: testUserID, LastUpdatedAt: now, LastUpdatedBy: testUserID},
	}
}

func decodeQuote(suite *QuoteHandlerTestSuite, w *httptest.ResponseRecorder) dto.QuoteResponse {
	var res dto.QuoteResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &res))
	return res
}

func decodeError(suite *QuoteHandlerTestSuite, w *httptest.ResponseRecorder) string {
	var res map[string]string
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &res))
	return res["error"]
}

// --- Test Cases ---

func (suite *QuoteHandlerTestSuite) TestCreateQuote_Success() {
	req := dto.CreateQuoteRequest{ClientName: "Acme Logistics", TargetCurrency: "USD"}
	suite.mockQuoteService.On("CreateQuote", mock.Anything, req, testUserID).Return(sampleQuote(domain.QuoteDraft), nil).Once()

	w := suite.do(http.MethodPost, "/api/v1/quotes", req)

	suite.Equal(http.StatusCreated, w.Code)
	res := decodeQuote(suite, w)
	suite.Equal("quote-1", res.QuoteID)
	suite.Equal("DRAFT", res.Status)
	suite.Equal("1440.00", res.Totals.TotalWithTaxTarget)
	suite.Equal("16.67", res.Totals.MarginPercent)
	suite.Require().Len(res.Lines, 1)
	suite.Equal("100.00", res.Lines[0].BuyPrice)
	suite.Equal("10", res.Rates["USD"])
	suite.mockQuoteService.AssertExpectations(suite.T())
}

func (suite *QuoteHandlerTestSuite) TestCreateQuote_BindingErrors() {
	cases := map[string]any{
		"missing client":  map[string]string{"targetCurrency": "USD"},
		"bad currency":    map[string]string{"clientName": "Acme", "targetCurrency": "DOLLARS"},
		"numeric code":    map[string]string{"clientName": "Acme", "targetCurrency": "U5D"},
		"malformed value": map[string]int{"clientName": 5},
	}
	for name, body := range cases {
		w := suite.do(http.MethodPost, "/api/v1/quotes", body)
		suite.Equal(http.StatusBadRequest, w.Code, name)
		suite.Contains(decodeError(suite, w), "Invalid request format", name)
	}
	suite.mockQuoteService.AssertNotCalled(suite.T(), "CreateQuote", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *QuoteHandlerTestSuite) TestCreateQuote_Unauthorized() {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/quotes", bytes.NewReader([]byte(`{"clientName":"Acme"}`)))
	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)

	suite.Equal(http.StatusUnauthorized, w.Code)
	suite.mockQuoteService.AssertNotCalled(suite.T(), "CreateQuote", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *QuoteHandlerTestSuite) TestGetQuote_NotFound() {
	suite.mockQuoteService.On("GetQuote", mock.Anything, "missing").Return(nil, apperrors.NewNotFoundError("quote missing not found")).Once()

	w := suite.do(http.MethodGet, "/api/v1/quotes/missing", nil)

	suite.Equal(http.StatusNotFound, w.Code)
	suite.Contains(decodeError(suite, w), "not found")
}

func (suite *QuoteHandlerTestSuite) TestGetQuote_InternalErrorIsMasked() {
	suite.mockQuoteService.On("GetQuote", mock.Anything, "quote-1").Return(nil, context.DeadlineExceeded).Once()

	w := suite.do(http.MethodGet, "/api/v1/quotes/quote-1", nil)

	suite.Equal(http.StatusInternalServerError, w.Code)
	suite.Equal("Failed to retrieve quote", decodeError(suite, w))
}

func (suite *QuoteHandlerTestSuite) TestListQuotes_PassesPaging() {
	token := "abc"
	params := dto.ListQuotesParams{Limit: 5, NextToken: &token}
	next := "def"
	suite.mockQuoteService.On("ListQuotes", mock.Anything, params).Return([]domain.QuoteRecord{*sampleQuote(domain.QuoteSent)}, &next, nil).Once()

	w := suite.do(http.MethodGet, "/api/v1/quotes?limit=5&nextToken=abc", nil)

	suite.Equal(http.StatusOK, w.Code)
	var res dto.ListQuotesResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &res))
	suite.Require().Len(res.Quotes, 1)
	suite.Equal("SENT", res.Quotes[0].Status)
	suite.Require().NotNil(res.NextToken)
	suite.Equal("def", *res.NextToken)
}

func (suite *QuoteHandlerTestSuite) TestListQuotes_InvalidLimit() {
	w := suite.do(http.MethodGet, "/api/v1/quotes?limit=500", nil)

	suite.Equal(http.StatusBadRequest, w.Code)
	suite.mockQuoteService.AssertNotCalled(suite.T(), "ListQuotes", mock.Anything, mock.Anything)
}

func (suite *QuoteHandlerTestSuite) TestAddLine_LockedQuote() {
	price := "100"
	req := dto.AddLineRequest{Section: "FREIGHT", BuyPrice: &price}
	suite.mockQuoteService.On("AddLine", mock.Anything, "quote-1", req, testUserID).Return(nil, quote.ErrQuoteLocked).Once()

	w := suite.do(http.MethodPost, "/api/v1/quotes/quote-1/lines", req)

	suite.Equal(http.StatusConflict, w.Code)
	suite.Contains(decodeError(suite, w), "locked")
}

func (suite *QuoteHandlerTestSuite) TestAddLine_InvalidSection() {
	w := suite.do(http.MethodPost, "/api/v1/quotes/quote-1/lines", map[string]string{"section": "CUSTOMS"})

	suite.Equal(http.StatusBadRequest, w.Code)
}

func (suite *QuoteHandlerTestSuite) TestUpdateLine_Success() {
	req := dto.UpdateLineRequest{Field: "markupValue", Value: "35"}
	suite.mockQuoteService.On("UpdateLine", mock.Anything, "quote-1", "line-1", req, testUserID).Return(sampleQuote(domain.QuoteDraft), nil).Once()

	w := suite.do(http.MethodPatch, "/api/v1/quotes/quote-1/lines/line-1", req)

	suite.Equal(http.StatusOK, w.Code)
	suite.mockQuoteService.AssertExpectations(suite.T())
}

func (suite *QuoteHandlerTestSuite) TestUpdateLine_UnknownField() {
	w := suite.do(http.MethodPatch, "/api/v1/quotes/quote-1/lines/line-1", map[string]string{"field": "sellPrice", "value": "1"})

	suite.Equal(http.StatusBadRequest, w.Code)
}

func (suite *QuoteHandlerTestSuite) TestRemoveLine_NotFound() {
	suite.mockQuoteService.On("RemoveLine", mock.Anything, "quote-1", "nope", testUserID).Return(nil, apperrors.NewNotFoundError("line nope not found")).Once()

	w := suite.do(http.MethodDelete, "/api/v1/quotes/quote-1/lines/nope", nil)

	suite.Equal(http.StatusNotFound, w.Code)
}

func (suite *QuoteHandlerTestSuite) TestSetRate() {
	req := dto.SetRateRequest{Rate: decimal.RequireFromString("9.5")}
	suite.mockQuoteService.On("SetRate", mock.Anything, "quote-1", "USD", mock.MatchedBy(func(r dto.SetRateRequest) bool {
		return r.Rate.Equal(req.Rate)
	}), testUserID).Return(sampleQuote(domain.QuoteDraft), nil).Once()

	w := suite.do(http.MethodPut, "/api/v1/quotes/quote-1/rates/USD", req)
	suite.Equal(http.StatusOK, w.Code)

	w = suite.do(http.MethodPut, "/api/v1/quotes/quote-1/rates/DOLLAR", req)
	suite.Equal(http.StatusBadRequest, w.Code)
	suite.mockQuoteService.AssertExpectations(suite.T())
}

func (suite *QuoteHandlerTestSuite) TestSetTargetCurrency() {
	req := dto.SetTargetCurrencyRequest{CurrencyCode: "GBP"}
	suite.mockQuoteService.On("SetTargetCurrency", mock.Anything, "quote-1", req, testUserID).Return(sampleQuote(domain.QuoteDraft), nil).Once()

	w := suite.do(http.MethodPut, "/api/v1/quotes/quote-1/target-currency", req)

	suite.Equal(http.StatusOK, w.Code)
}

func (suite *QuoteHandlerTestSuite) TestSubmit_ApprovalRequired() {
	suite.mockQuoteService.On("SubmitQuote", mock.Anything, "quote-1", testUserID).Return(nil, quote.ErrApprovalRequired).Once()

	w := suite.do(http.MethodPost, "/api/v1/quotes/quote-1/submit", nil)

	suite.Equal(http.StatusConflict, w.Code)
	suite.Contains(decodeError(suite, w), "approval required")
}

func (suite *QuoteHandlerTestSuite) TestSubmit_Incomplete() {
	suite.mockQuoteService.On("SubmitQuote", mock.Anything, "quote-1", testUserID).Return(nil, apperrors.NewValidationError("quote has no lines")).Once()

	w := suite.do(http.MethodPost, "/api/v1/quotes/quote-1/submit", nil)

	suite.Equal(http.StatusBadRequest, w.Code)
}

func (suite *QuoteHandlerTestSuite) TestWorkflowActions() {
	actions := []struct {
		path   string
		method string
		status domain.QuoteStatus
	}{
		{"submit", "SubmitQuote", domain.QuoteSent},
		{"request-approval", "RequestApproval", domain.QuoteValidation},
		{"approve", "ApproveQuote", domain.QuoteSent},
		{"accept", "MarkAccepted", domain.QuoteAccepted},
		{"reopen", "ReopenQuote", domain.QuoteDraft},
	}
	for _, a := range actions {
		suite.mockQuoteService.On(a.method, mock.Anything, "quote-1", testUserID).Return(sampleQuote(a.status), nil).Once()

		w := suite.do(http.MethodPost, "/api/v1/quotes/quote-1/"+a.path, nil)

		suite.Equal(http.StatusOK, w.Code, a.path)
		suite.Equal(string(a.status), decodeQuote(suite, w).Status, a.path)
	}
	suite.mockQuoteService.AssertExpectations(suite.T())
}

func (suite *QuoteHandlerTestSuite) TestReject_RequiresReason() {
	w := suite.do(http.MethodPost, "/api/v1/quotes/quote-1/reject", map[string]string{})
	suite.Equal(http.StatusBadRequest, w.Code)

	req := dto.RejectQuoteRequest{Reason: "Margin too thin"}
	rejected := sampleQuote(domain.QuoteDraft)
	rejected.Approval = domain.ApprovalState{RequiresApproval: true, RejectionReason: req.Reason}
	suite.mockQuoteService.On("RejectQuote", mock.Anything, "quote-1", req, testUserID).Return(rejected, nil).Once()

	w = suite.do(http.MethodPost, "/api/v1/quotes/quote-1/reject", req)
	suite.Equal(http.StatusOK, w.Code)
	suite.Equal("Margin too thin", decodeQuote(suite, w).Approval.RejectionReason)
}

func (suite *QuoteHandlerTestSuite) TestDecline_OptionalBody() {
	suite.mockQuoteService.On("MarkDeclined", mock.Anything, "quote-1", dto.DeclineQuoteRequest{}, testUserID).Return(sampleQuote(domain.QuoteRejected), nil).Once()
	suite.mockQuoteService.On("MarkDeclined", mock.Anything, "quote-1", dto.DeclineQuoteRequest{Reason: "Too expensive"}, testUserID).Return(sampleQuote(domain.QuoteRejected), nil).Once()

	w := suite.do(http.MethodPost, "/api/v1/quotes/quote-1/decline", nil)
	suite.Equal(http.StatusOK, w.Code)

	w = suite.do(http.MethodPost, "/api/v1/quotes/quote-1/decline", dto.DeclineQuoteRequest{Reason: "Too expensive"})
	suite.Equal(http.StatusOK, w.Code)
	suite.mockQuoteService.AssertExpectations(suite.T())
}

func (suite *QuoteHandlerTestSuite) TestOverrideStatus() {
	w := suite.do(http.MethodPost, "/api/v1/quotes/quote-1/status", dto.OverrideStatusRequest{Status: "ARCHIVED"})
	suite.Equal(http.StatusBadRequest, w.Code)

	req := dto.OverrideStatusRequest{Status: "ACCEPTED"}
	suite.mockQuoteService.On("OverrideStatus", mock.Anything, "quote-1", req, testUserID).Return(sampleQuote(domain.QuoteAccepted), nil).Once()
	w = suite.do(http.MethodPost, "/api/v1/quotes/quote-1/status", req)
	suite.Equal(http.StatusOK, w.Code)
}

func (suite *QuoteHandlerTestSuite) TestListActivity() {
	entries := []domain.ActivityEntry{{Text: "Quote created", Category: domain.ActivityApproval, Tone: domain.ToneInfo, Actor: testUserID, At: time.Now().UTC()}}
	suite.mockQuoteService.On("ListActivity", mock.Anything, "quote-1").Return(entries, nil).Once()

	w := suite.do(http.MethodGet, "/api/v1/quotes/quote-1/activity", nil)

	suite.Equal(http.StatusOK, w.Code)
	var res []dto.ActivityEntryResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &res))
	suite.Require().Len(res, 1)
	suite.Equal("Quote created", res[0].Text)
}

func (suite *QuoteHandlerTestSuite) TestStaleVersionIsConflict() {
	suite.mockQuoteService.On("ApproveQuote", mock.Anything, "quote-1", testUserID).Return(nil, apperrors.NewConflictError("quote quote-1 was modified concurrently")).Once()

	w := suite.do(http.MethodPost, "/api/v1/quotes/quote-1/approve", nil)

	suite.Equal(http.StatusConflict, w.Code)
}

func TestQuoteHandlerTestSuite(t *testing.T) {
	suite.Run(t, new(QuoteHandlerTestSuite))
}
