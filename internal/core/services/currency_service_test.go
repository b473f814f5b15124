package services_test

import (
	"context"
	"testing"

	"github.com/SscSPs/freight_quoting_app/internal/apperrors"
	"github.com/SscSPs/freight_quoting_app/internal/core/domain"
	portssvc "github.com/SscSPs/freight_quoting_app/internal/core/ports/services"
	"github.com/SscSPs/freight_quoting_app/internal/core/services"
	"github.com/SscSPs/freight_quoting_app/internal/dto"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

// --- Mock CurrencyRepository ---
type MockCurrencyRepository struct {
	mock.Mock
}

func (m *MockCurrencyRepository) SaveCurrency(ctx context.Context, currency domain.Currency) error {
	args := m.Called(ctx, currency)
	return args.Error(0)
}

func (m *MockCurrencyRepository) FindCurrencyByCode(ctx context.Context, currencyCode string) (*domain.Currency, error) {
	args := m.Called(ctx, currencyCode)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Currency), args.Error(1)
}

func (m *MockCurrencyRepository) ListCurrencies(ctx context.Context) ([]domain.Currency, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Currency), args.Error(1)
}

// --- Test Suite ---
type CurrencyServiceTestSuite struct {
	suite.Suite
	mockRepo *MockCurrencyRepository
	service  portssvc.CurrencySvcFacade
}

func (suite *CurrencyServiceTestSuite) SetupTest() {
	suite.mockRepo = new(MockCurrencyRepository)
	suite.service = services.NewCurrencyService(suite.mockRepo)
}

func (suite *CurrencyServiceTestSuite) TestCreateCurrency_Success() {
	ctx := context.Background()
	creatorUserID := uuid.NewString()
	req := dto.CreateCurrencyRequest{
		CurrencyCode: "chf",
		Symbol:       "Fr",
		Name:         "Swiss Franc",
	}

	suite.mockRepo.On("FindCurrencyByCode", ctx, "CHF").Return(nil, apperrors.ErrNotFound).Once()
	suite.mockRepo.On("SaveCurrency", ctx, mock.MatchedBy(func(c domain.Currency) bool {
		return c.CurrencyCode == "CHF" && c.Symbol == req.Symbol && c.Name == req.Name &&
			c.Precision == 2 && c.CreatedBy == creatorUserID && c.LastUpdatedBy == creatorUserID
	})).Return(nil).Once()

	currency, err := suite.service.CreateCurrency(ctx, req, creatorUserID)

	suite.Require().NoError(err)
	suite.Require().NotNil(currency)
	suite.Equal("CHF", currency.CurrencyCode)
	suite.Equal(req.Name, currency.Name)
	suite.Equal(creatorUserID, currency.CreatedBy)
	suite.mockRepo.AssertExpectations(suite.T())
}

func (suite *CurrencyServiceTestSuite) TestCreateCurrency_CustomPrecision() {
	ctx := context.Background()
	precision := 0
	req := dto.CreateCurrencyRequest{CurrencyCode: "JPY", Symbol: "¥", Name: "Japanese Yen", Precision: &precision}

	suite.mockRepo.On("FindCurrencyByCode", ctx, "JPY").Return(nil, apperrors.ErrNotFound).Once()
	suite.mockRepo.On("SaveCurrency", ctx, mock.MatchedBy(func(c domain.Currency) bool {
		return c.Precision == 0
	})).Return(nil).Once()

	currency, err := suite.service.CreateCurrency(ctx, req, "operator-1")

	suite.Require().NoError(err)
	suite.Equal(0, currency.Precision)
	suite.mockRepo.AssertExpectations(suite.T())
}

func (suite *CurrencyServiceTestSuite) TestCreateCurrency_Duplicate() {
	ctx := context.Background()
	req := dto.CreateCurrencyRequest{CurrencyCode: "USD", Symbol: "$", Name: "US Dollar"}

	suite.mockRepo.On("FindCurrencyByCode", ctx, "USD").Return(&domain.Currency{CurrencyCode: "USD"}, nil).Once()

	currency, err := suite.service.CreateCurrency(ctx, req, "operator-1")

	suite.Require().Error(err)
	suite.Nil(currency)
	suite.ErrorIs(err, apperrors.ErrDuplicate)
	suite.mockRepo.AssertNotCalled(suite.T(), "SaveCurrency", mock.Anything, mock.Anything)
}

func (suite *CurrencyServiceTestSuite) TestCreateCurrency_SaveError() {
	ctx := context.Background()
	req := dto.CreateCurrencyRequest{CurrencyCode: "ERR", Symbol: "E", Name: "Error Currency"}
	expectedErr := assert.AnError

	suite.mockRepo.On("FindCurrencyByCode", ctx, "ERR").Return(nil, apperrors.ErrNotFound).Once()
	suite.mockRepo.On("SaveCurrency", ctx, mock.AnythingOfType("domain.Currency")).Return(expectedErr).Once()

	currency, err := suite.service.CreateCurrency(ctx, req, uuid.NewString())

	suite.Require().Error(err)
	suite.Nil(currency)
	suite.ErrorIs(err, expectedErr)
	suite.mockRepo.AssertExpectations(suite.T())
}

func (suite *CurrencyServiceTestSuite) TestGetCurrencyByCode_Success() {
	ctx := context.Background()
	expectedCurrency := &domain.Currency{CurrencyCode: "USD"}

	suite.mockRepo.On("FindCurrencyByCode", ctx, "USD").Return(expectedCurrency, nil).Once()

	currency, err := suite.service.GetCurrencyByCode(ctx, "usd")

	suite.Require().NoError(err)
	suite.Equal(expectedCurrency, currency)
	suite.mockRepo.AssertExpectations(suite.T())
}

func (suite *CurrencyServiceTestSuite) TestGetCurrencyByCode_NotFound() {
	ctx := context.Background()

	suite.mockRepo.On("FindCurrencyByCode", ctx, "NTF").Return(nil, apperrors.ErrNotFound).Once()

	currency, err := suite.service.GetCurrencyByCode(ctx, "NTF")

	suite.Require().Error(err)
	suite.Nil(currency)
	suite.ErrorIs(err, apperrors.ErrNotFound)
	suite.mockRepo.AssertExpectations(suite.T())
}

func (suite *CurrencyServiceTestSuite) TestListCurrencies() {
	ctx := context.Background()
	expected := []domain.Currency{{CurrencyCode: "EUR"}, {CurrencyCode: "USD"}}

	suite.mockRepo.On("ListCurrencies", ctx).Return(expected, nil).Once()

	currencies, err := suite.service.ListCurrencies(ctx)

	suite.Require().NoError(err)
	suite.Equal(expected, currencies)
	suite.mockRepo.AssertExpectations(suite.T())
}

func (suite *CurrencyServiceTestSuite) TestListCurrencies_EmptyIsNotNil() {
	ctx := context.Background()

	suite.mockRepo.On("ListCurrencies", ctx).Return(nil, nil).Once()

	currencies, err := suite.service.ListCurrencies(ctx)

	suite.Require().NoError(err)
	suite.NotNil(currencies)
	suite.Empty(currencies)
}

func TestCurrencyService(t *testing.T) {
	suite.Run(t, new(CurrencyServiceTestSuite))
}
