package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/fsdevblog/minegrid/internal/domain"
)

type MinersHandler struct {
	minerService MinerServicer
}

func NewMinersHandler(minerService MinerServicer) *MinersHandler {
	return &MinersHandler{
		minerService: minerService,
	}
}

type PurchaseParams struct {
	MinerID int64 `binding:"required,gt=0" json:"miner_id"`
}

// Create POST RouteGroup + UserMinersRoute. Покупка пакета текущим юзером.
func (h *MinersHandler) Create(c *gin.Context) {
	currentUserID := getUserIDFromContext(c)

	var params PurchaseParams
	if bindErr := c.ShouldBindJSON(&params); bindErr != nil {
		_ = c.AbortWithError(http.StatusBadRequest, bindErr).SetType(gin.ErrorTypeBind)
		return
	}

	ctx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
	defer cancel()

	purchased, err := h.minerService.Purchase(ctx, currentUserID, params.MinerID, time.Now())
	if err != nil {
		abortWithDomainError(c, err)
		return
	}

	c.JSON(http.StatusCreated, userMinerResponse(purchased, time.Now()))
}

type UserMinerResponse struct {
	ID                  int64      `json:"id"`
	MinerID             int64      `json:"miner_id"`
	PayoutAmount        float64    `json:"payout_amount"`
	MaxPayouts          int32      `json:"max_payouts"`
	PayoutsReceived     int32      `json:"payouts_received"`
	TotalEarned         float64    `json:"total_earned"`
	PurchasedAt         time.Time  `json:"purchased_at"`
	EndsAt              time.Time  `json:"ends_at"`
	Active              bool       `json:"active"`
	Progress            float64    `json:"progress"`
	NextPayoutAt        *time.Time `json:"next_payout_at,omitempty"`
	NextPayoutInSeconds *int64     `json:"next_payout_in_seconds,omitempty"`
}

func userMinerResponse(m *domain.UserMiner, now time.Time) UserMinerResponse {
	response := UserMinerResponse{
		ID:              m.ID,
		MinerID:         m.MinerID,
		PayoutAmount:    m.PayoutAmount.InexactFloat64(),
		MaxPayouts:      m.MaxPayouts,
		PayoutsReceived: m.PayoutsReceived,
		TotalEarned:     m.TotalEarned.InexactFloat64(),
		PurchasedAt:     m.PurchasedAt,
		EndsAt:          m.EndsAt,
		Active:          m.Active,
		Progress:        m.Progress(),
	}

	// обратный отсчет имеет смысл только для живого пакета.
	if m.Active && !m.Expired(now) {
		next := m.NextPayoutAt()
		seconds := int64(m.TimeUntilPayout(now).Seconds())
		response.NextPayoutAt = &next
		response.NextPayoutInSeconds = &seconds
	}
	return response
}

type UserMinersResponse struct {
	Miners     []UserMinerResponse `json:"miners"`
	NextDropAt *time.Time          `json:"next_drop_at,omitempty"`
}

// Index GET RouteGroup + UserMinersRoute. Пакеты текущего юзера с прогрессом и
// ближайшей выплатой среди всех активных пакетов.
func (h *MinersHandler) Index(c *gin.Context) {
	currentUserID := getUserIDFromContext(c)
	now := time.Now()

	ctx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
	defer cancel()

	miners, err := h.minerService.GetByUserID(ctx, currentUserID)
	if err != nil {
		abortWithDomainError(c, err)
		return
	}

	response := UserMinersResponse{
		Miners: make([]UserMinerResponse, len(miners)),
	}
	for i := range miners {
		response.Miners[i] = userMinerResponse(&miners[i], now)
	}
	if soonest, ok := domain.SoonestPayoutAt(miners, now); ok {
		response.NextDropAt = &soonest
	}

	c.JSON(http.StatusOK, response)
}
