package handlers

import (
	"github.com/gin-gonic/gin"

	"stockalloc/internal/domain/allocation"
	"stockalloc/internal/domain/catalogs/warehouse"
	"stockalloc/internal/infrastructure/http/v1/dto"
	"stockalloc/internal/infrastructure/storage/postgres"
	"stockalloc/pkg/logger"
)

// AllocationHandler serves the allocation entry points.
type AllocationHandler struct {
	*BaseHandler
	service    *allocation.Service
	warehouses *warehouse.Service
	audit      *postgres.AuditService
}

// NewAllocationHandler creates a new allocation handler.
func NewAllocationHandler(base *BaseHandler, service *allocation.Service, warehouses *warehouse.Service, audit *postgres.AuditService) *AllocationHandler {
	return &AllocationHandler{
		BaseHandler: base,
		service:     service,
		warehouses:  warehouses,
		audit:       audit,
	}
}

// SelectBatch handles single-batch selection.
// POST /api/v1/allocation/select-batch
func (h *AllocationHandler) SelectBatch(c *gin.Context) {
	var req dto.SelectBatchRequest
	if !h.BindJSON(c, &req) {
		return
	}

	if err := h.warehouses.EnsureActive(c.Request.Context(), req.Warehouse); err != nil {
		h.Error(c, err)
		return
	}

	result, err := h.service.SelectBatch(c.Request.Context(), req.ToDomain())
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.NewSelectBatchResponse(result))
}

// Allocate handles multi-row table allocation.
// POST /api/v1/allocation/allocate
func (h *AllocationHandler) Allocate(c *gin.Context) {
	var req dto.AllocateRequest
	if !h.BindJSON(c, &req) {
		return
	}

	if err := h.warehouses.EnsureActive(c.Request.Context(), req.Warehouse); err != nil {
		h.Error(c, err)
		return
	}

	result, err := h.service.Allocate(c.Request.Context(), req.ToDomain())
	if err != nil {
		h.Error(c, err)
		return
	}

	h.logAudit(c, req, result)

	h.OK(c, dto.NewAllocateResponse(result))
}

// logAudit records the call snapshot. Audit failures never fail the
// allocation response.
func (h *AllocationHandler) logAudit(c *gin.Context, req dto.AllocateRequest, result allocation.AllocateResult) {
	if h.audit == nil {
		return
	}
	ctx := c.Request.Context()
	snapshot := map[string]any{
		"request": req,
		"result":  result,
	}
	if err := h.audit.LogAllocation(ctx, "allocate", req.ItemCode, req.Warehouse, snapshot); err != nil {
		logger.Warn(ctx, "allocation audit failed", "error", err)
	}
}
