package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/fsdevblog/minegrid/internal/domain"
	"github.com/fsdevblog/minegrid/internal/logger"
	"github.com/fsdevblog/minegrid/internal/service"
	"github.com/fsdevblog/minegrid/internal/transport/api/mocks"
	"github.com/fsdevblog/minegrid/internal/transport/api/testutils"
	"github.com/fsdevblog/minegrid/internal/transport/api/tokens"
	"github.com/gin-gonic/gin"
	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/suite"
)

type WithdrawalsHandlerTestSuite struct {
	suite.Suite
	router                *gin.Engine
	mockWithdrawalService *mocks.MockWithdrawalServicer
	jwtSecret             []byte
}

func TestWithdrawalsHandlerSuite(t *testing.T) {
	suite.Run(t, new(WithdrawalsHandlerTestSuite))
}

func (s *WithdrawalsHandlerTestSuite) SetupTest() {
	mockCtrl := gomock.NewController(s.T())
	defer mockCtrl.Finish()

	s.mockWithdrawalService = mocks.NewMockWithdrawalServicer(mockCtrl)
	s.jwtSecret = []byte("super secret key")

	s.router = New(RouterArgs{
		Logger:            logger.New(os.Stdout),
		WithdrawalService: s.mockWithdrawalService,
		JWTSecretKey:      s.jwtSecret,
	})
}

func (s *WithdrawalsHandlerTestSuite) userToken(userID int64) string {
	token, err := tokens.GenerateUserJWT(userID, false, time.Hour, s.jwtSecret)
	s.Require().NoError(err)
	return token
}

func (s *WithdrawalsHandlerTestSuite) TestCreate() {
	var currentUserID int64 = 1
	jwtToken := s.userToken(currentUserID)

	validParams := WithdrawalParams{
		Amount:        decimal.NewFromInt(1500),
		BankName:      "First National",
		AccountNumber: "0123456789",
		AccountName:   "John Doe",
	}
	smallParams := validParams
	smallParams.Amount = decimal.NewFromInt(100)
	bigParams := validParams
	bigParams.Amount = decimal.NewFromInt(1000000)

	created := domain.Withdrawal{
		ID:     1,
		UserID: currentUserID,
		Amount: validParams.Amount,
		Status: domain.WithdrawalStatusPending,
	}

	// Моки
	// Валидная заявка.
	s.mockWithdrawalService.EXPECT().
		Submit(gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, args service.SubmitWithdrawalArgs, _ time.Time) (*domain.Withdrawal, error) {
			s.Equal(currentUserID, args.UserID)
			return &created, nil
		})
	// Сумма меньше минимальной.
	s.mockWithdrawalService.EXPECT().
		Submit(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(nil, fmt.Errorf("%w: minimum withdrawal amount is 1000.00", domain.ErrValidation))
	// Недостаточно средств.
	s.mockWithdrawalService.EXPECT().
		Submit(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(nil, domain.ErrNotEnoughBalance)
	// Аккаунт моложе 48 часов.
	s.mockWithdrawalService.EXPECT().
		Submit(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(nil, domain.NewIneligibleWithdrawalError(5*time.Hour))

	cases := []struct {
		name       string
		params     *WithdrawalParams
		jwtToken   string
		wantStatus int
	}{
		{
			name:       "all ok",
			params:     &validParams,
			jwtToken:   jwtToken,
			wantStatus: http.StatusCreated,
		}, {
			name:       "below minimum",
			params:     &smallParams,
			jwtToken:   jwtToken,
			wantStatus: http.StatusUnprocessableEntity,
		}, {
			name:       "not enough balance",
			params:     &bigParams,
			jwtToken:   jwtToken,
			wantStatus: http.StatusPaymentRequired,
		}, {
			name:       "young account",
			params:     &validParams,
			jwtToken:   jwtToken,
			wantStatus: http.StatusForbidden,
		}, {
			name:       "not authorized",
			params:     &validParams,
			wantStatus: http.StatusUnauthorized,
		}, {
			name:       "missing bank fields",
			params:     &WithdrawalParams{Amount: decimal.NewFromInt(1500)},
			jwtToken:   jwtToken,
			wantStatus: http.StatusBadRequest,
		},
	}
	for _, t := range cases {
		s.Run(t.name, func() {
			payload, marshalErr := json.Marshal(t.params)
			s.Require().NoError(marshalErr)

			args := testutils.RequestArgs{
				Router: s.router,
				Method: http.MethodPost,
				URL:    RouteGroup + WithdrawalsRoute,
				Body:   bytes.NewReader(payload),
			}
			var reqOpts []func(*testutils.RequestOptions)
			if t.jwtToken != "" {
				reqOpts = append(reqOpts, testutils.WithHeader("Authorization", "Bearer "+t.jwtToken))
			}
			reqOpts = append(reqOpts, testutils.WithHeader("Content-Type", "application/json"))

			res, err := testutils.MakeRequest(args, reqOpts...)
			defer func() {
				closeErr := res.Body.Close()
				s.Require().NoError(closeErr)
			}()

			s.Require().NoError(err)
			s.Equal(t.wantStatus, res.StatusCode)
		})
	}
}

func (s *WithdrawalsHandlerTestSuite) TestIndex() {
	var currentUserID int64 = 1
	jwtToken := s.userToken(currentUserID)

	processedAt := time.Now()
	withdrawals := []domain.Withdrawal{
		{
			ID:        2,
			UserID:    currentUserID,
			Amount:    decimal.NewFromInt(2000),
			BankName:  "First National",
			Status:    domain.WithdrawalStatusPending,
			CreatedAt: time.Now(),
		},
		{
			ID:          1,
			UserID:      currentUserID,
			Amount:      decimal.NewFromInt(1500),
			BankName:    "First National",
			Status:      domain.WithdrawalStatusCompleted,
			CreatedAt:   time.Now().Add(-time.Hour),
			ProcessedAt: &processedAt,
		},
	}

	s.mockWithdrawalService.EXPECT().
		GetByUserID(gomock.Any(), currentUserID).
		Return(withdrawals, nil)

	args := testutils.RequestArgs{
		Router: s.router,
		Method: http.MethodGet,
		URL:    RouteGroup + WithdrawalsRoute,
	}
	res, err := testutils.MakeRequest(args, testutils.WithHeader("Authorization", "Bearer "+jwtToken))
	defer func() {
		closeErr := res.Body.Close()
		s.Require().NoError(closeErr)
	}()

	s.Require().NoError(err)
	s.Require().Equal(http.StatusOK, res.StatusCode)

	var body []WithdrawalResponse
	s.Require().NoError(json.NewDecoder(res.Body).Decode(&body))
	s.Require().Len(body, 2)
	s.Equal(string(domain.WithdrawalStatusPending), body[0].Status)
	s.Equal(string(domain.WithdrawalStatusCompleted), body[1].Status)
	s.NotNil(body[1].ProcessedAt)
}
