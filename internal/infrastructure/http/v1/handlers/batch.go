package handlers

import (
	"github.com/gin-gonic/gin"

	"stockalloc/internal/core/apperror"
	"stockalloc/internal/domain/batches"
	"stockalloc/internal/infrastructure/http/v1/dto"
)

// BatchHandler serves batch catalog queries.
type BatchHandler struct {
	*BaseHandler
	catalog *batches.Service
}

// NewBatchHandler creates a new batch handler.
func NewBatchHandler(base *BaseHandler, catalog *batches.Service) *BatchHandler {
	return &BatchHandler{
		BaseHandler: base,
		catalog:     catalog,
	}
}

// List returns the candidate list with on-hand quantities.
// GET /api/v1/batches?itemCode=...&warehouse=...
func (h *BatchHandler) List(c *gin.Context) {
	itemCode := c.Query("itemCode")
	warehouse := c.Query("warehouse")

	candidates, err := h.catalog.Candidates(c.Request.Context(), itemCode, warehouse)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.NewBatchListResponse(candidates))
}

// Oldest returns candidates with stock in FEFO order, the order an
// allocation would consume them.
// GET /api/v1/batches/oldest?itemCode=...&warehouse=...
func (h *BatchHandler) Oldest(c *gin.Context) {
	itemCode := c.Query("itemCode")
	warehouse := c.Query("warehouse")

	candidates, err := h.catalog.Candidates(c.Request.Context(), itemCode, warehouse)
	if err != nil {
		h.Error(c, err)
		return
	}

	withStock := candidates[:0:0]
	for _, cand := range candidates {
		if cand.HasStock() {
			withStock = append(withStock, cand)
		}
	}
	if len(withStock) == 0 {
		h.Error(c, apperror.NewNoEligibleBatch(itemCode, warehouse))
		return
	}

	h.OK(c, dto.NewBatchListResponse(withStock))
}
