package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/fsdevblog/minegrid/internal/domain"
	"github.com/fsdevblog/minegrid/internal/logger"
	"github.com/fsdevblog/minegrid/internal/transport/api/mocks"
	"github.com/fsdevblog/minegrid/internal/transport/api/testutils"
	"github.com/fsdevblog/minegrid/internal/transport/api/tokens"
	"github.com/gin-gonic/gin"
	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/suite"
)

type AdminHandlerTestSuite struct {
	suite.Suite
	router                *gin.Engine
	mockCatalogService    *mocks.MockCatalogServicer
	mockWithdrawalService *mocks.MockWithdrawalServicer
	jwtSecret             []byte
	adminToken            string
	userToken             string
}

func TestAdminHandlerSuite(t *testing.T) {
	suite.Run(t, new(AdminHandlerTestSuite))
}

func (s *AdminHandlerTestSuite) SetupTest() {
	mockCtrl := gomock.NewController(s.T())
	defer mockCtrl.Finish()

	s.mockCatalogService = mocks.NewMockCatalogServicer(mockCtrl)
	s.mockWithdrawalService = mocks.NewMockWithdrawalServicer(mockCtrl)
	s.jwtSecret = []byte("super secret key")

	s.router = New(RouterArgs{
		Logger:            logger.New(os.Stdout),
		CatalogService:    s.mockCatalogService,
		WithdrawalService: s.mockWithdrawalService,
		JWTSecretKey:      s.jwtSecret,
	})

	adminToken, adminErr := tokens.GenerateUserJWT(1, true, time.Hour, s.jwtSecret)
	s.Require().NoError(adminErr)
	s.adminToken = adminToken

	userToken, userErr := tokens.GenerateUserJWT(2, false, time.Hour, s.jwtSecret)
	s.Require().NoError(userErr)
	s.userToken = userToken
}

func (s *AdminHandlerTestSuite) makeRequest(method, url, token string, body []byte) *http.Response {
	s.T().Helper()

	var reader *bytes.Reader
	args := testutils.RequestArgs{
		Router: s.router,
		Method: method,
		URL:    url,
	}
	if body != nil {
		reader = bytes.NewReader(body)
		args.Body = reader
	}

	var reqOpts []func(*testutils.RequestOptions)
	if token != "" {
		reqOpts = append(reqOpts, testutils.WithHeader("Authorization", "Bearer "+token))
	}
	reqOpts = append(reqOpts, testutils.WithHeader("Content-Type", "application/json"))

	res, err := testutils.MakeRequest(args, reqOpts...)
	s.Require().NoError(err)
	return res
}

// Обычный юзер не проходит на админские роуты, без токена — 401.
func (s *AdminHandlerTestSuite) TestAdminGate() {
	cases := []struct {
		name       string
		token      string
		wantStatus int
	}{
		{
			name:       "plain user",
			token:      s.userToken,
			wantStatus: http.StatusForbidden,
		}, {
			name:       "no token",
			wantStatus: http.StatusUnauthorized,
		},
	}

	for _, t := range cases {
		s.Run(t.name, func() {
			res := s.makeRequest(http.MethodGet, RouteGroup+AdminWithdrawalsRoute, t.token, nil)
			defer func() {
				closeErr := res.Body.Close()
				s.Require().NoError(closeErr)
			}()

			s.Equal(t.wantStatus, res.StatusCode)
		})
	}
}

func (s *AdminHandlerTestSuite) TestCreateMiner() {
	created := domain.Miner{
		ID:                 1,
		Name:               "Starter Rig",
		Price:              decimal.NewFromInt(10000),
		DurationDays:       20,
		PayoutAmount:       decimal.NewFromInt(475),
		TotalReturnPercent: decimal.NewFromInt(190),
		Active:             true,
	}

	s.mockCatalogService.EXPECT().
		Create(gomock.Any(), gomock.Any()).
		Return(&created, nil)

	payload, marshalErr := json.Marshal(CreateMinerParams{
		Name:         "Starter Rig",
		Price:        decimal.NewFromInt(10000),
		DurationDays: 20,
	})
	s.Require().NoError(marshalErr)

	res := s.makeRequest(http.MethodPost, RouteGroup+AdminMinersRoute, s.adminToken, payload)
	defer func() {
		closeErr := res.Body.Close()
		s.Require().NoError(closeErr)
	}()

	s.Require().Equal(http.StatusCreated, res.StatusCode)

	var body MinerResponse
	s.Require().NoError(json.NewDecoder(res.Body).Decode(&body))
	s.Equal(created.ID, body.ID)
	s.InDelta(475.0, body.PayoutAmount, 1e-9)
}

func (s *AdminHandlerTestSuite) TestCreateMinerInvalidParams() {
	payload, marshalErr := json.Marshal(CreateMinerParams{
		Name:  "No Duration",
		Price: decimal.NewFromInt(10000),
	})
	s.Require().NoError(marshalErr)

	res := s.makeRequest(http.MethodPost, RouteGroup+AdminMinersRoute, s.adminToken, payload)
	defer func() {
		closeErr := res.Body.Close()
		s.Require().NoError(closeErr)
	}()

	s.Equal(http.StatusUnprocessableEntity, res.StatusCode)
}

func (s *AdminHandlerTestSuite) TestToggleMiner() {
	toggled := domain.Miner{ID: 5, Name: "Starter Rig", Active: false}

	s.mockCatalogService.EXPECT().
		ToggleActive(gomock.Any(), int64(5)).
		Return(&toggled, nil)

	url := fmt.Sprintf("%s%s/%d/toggle", RouteGroup, AdminMinersRoute, 5)
	res := s.makeRequest(http.MethodPatch, url, s.adminToken, nil)
	defer func() {
		closeErr := res.Body.Close()
		s.Require().NoError(closeErr)
	}()

	s.Require().Equal(http.StatusOK, res.StatusCode)

	var body MinerResponse
	s.Require().NoError(json.NewDecoder(res.Body).Decode(&body))
	s.False(body.Active)
}

func (s *AdminHandlerTestSuite) TestApproveWithdrawal() {
	now := time.Now()
	completed := domain.Withdrawal{
		ID:          7,
		UserID:      2,
		Amount:      decimal.NewFromInt(1500),
		Status:      domain.WithdrawalStatusCompleted,
		ProcessedAt: &now,
	}

	s.mockWithdrawalService.EXPECT().
		Approve(gomock.Any(), int64(7), gomock.Any()).
		Return(&completed, nil)

	url := fmt.Sprintf("%s%s/%d/approve", RouteGroup, AdminWithdrawalsRoute, 7)
	res := s.makeRequest(http.MethodPost, url, s.adminToken, nil)
	defer func() {
		closeErr := res.Body.Close()
		s.Require().NoError(closeErr)
	}()

	s.Require().Equal(http.StatusOK, res.StatusCode)

	var body WithdrawalResponse
	s.Require().NoError(json.NewDecoder(res.Body).Decode(&body))
	s.Equal(string(domain.WithdrawalStatusCompleted), body.Status)
}

func (s *AdminHandlerTestSuite) TestRejectAlreadyProcessed() {
	s.mockWithdrawalService.EXPECT().
		Reject(gomock.Any(), int64(7), gomock.Any()).
		Return(nil, domain.ErrStaleState)

	url := fmt.Sprintf("%s%s/%d/reject", RouteGroup, AdminWithdrawalsRoute, 7)
	res := s.makeRequest(http.MethodPost, url, s.adminToken, nil)
	defer func() {
		closeErr := res.Body.Close()
		s.Require().NoError(closeErr)
	}()

	s.Equal(http.StatusConflict, res.StatusCode)
}
