package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/fsdevblog/minegrid/internal/domain"
)

type CatalogHandler struct {
	catalogService CatalogServicer
}

func NewCatalogHandler(catalogService CatalogServicer) *CatalogHandler {
	return &CatalogHandler{
		catalogService: catalogService,
	}
}

type MinerResponse struct {
	ID                 int64     `json:"id"`
	Name               string    `json:"name"`
	Description        string    `json:"description"`
	Price              float64   `json:"price"`
	DurationDays       int32     `json:"duration_days"`
	PayoutAmount       float64   `json:"payout_amount"`
	TotalReturnPercent float64   `json:"total_return_percent"`
	Active             bool      `json:"active"`
	CreatedAt          time.Time `json:"created_at"`
}

func minerResponse(miner *domain.Miner) MinerResponse {
	return MinerResponse{
		ID:                 miner.ID,
		Name:               miner.Name,
		Description:        miner.Description,
		Price:              miner.Price.InexactFloat64(),
		DurationDays:       miner.DurationDays,
		PayoutAmount:       miner.PayoutAmount.InexactFloat64(),
		TotalReturnPercent: miner.TotalReturnPercent.InexactFloat64(),
		Active:             miner.Active,
		CreatedAt:          miner.CreatedAt,
	}
}

func minersResponse(miners []domain.Miner) []MinerResponse {
	response := make([]MinerResponse, len(miners))
	for i := range miners {
		response[i] = minerResponse(&miners[i])
	}
	return response
}

// Index GET RouteGroup + MinersRoute. Каталог активных пакетов, по цене по возрастанию.
func (h *CatalogHandler) Index(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
	defer cancel()

	miners, err := h.catalogService.ListActive(ctx)
	if err != nil {
		abortWithDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, minersResponse(miners))
}
