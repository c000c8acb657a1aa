package handler

import (
	"net/http"

	"github.com/TheYates/bernat-medical-sub000/internal/dto"
	"github.com/TheYates/bernat-medical-sub000/internal/service"

	"github.com/gin-gonic/gin"
)

type LedgerHandler struct{ svc service.LedgerService }

func NewLedgerHandler(svc service.LedgerService) *LedgerHandler { return &LedgerHandler{svc: svc} }

// Dispense godoc
// @Summary Decrement stock for a prescription or POS sale
// @Tags inventory
// @Accept json
// @Produce json
// @Param id path string true "Drug ID"
// @Param body body dto.DispenseRequest true "Dispense"
// @Success 200 {object} dto.StockLevelResponse
// @Failure 409 {object} apierror.APIError
// @Router /v1/inventory/drugs/{id}/dispense [post]
func (h *LedgerHandler) Dispense(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	var req dto.DispenseRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Dispense(c.Request.Context(), actor, id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *LedgerHandler) Adjust(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	var req dto.AdjustStockRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Adjust(c.Request.Context(), actor, id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *LedgerHandler) ListMovements(c *gin.Context) {
	var filter dto.StockMovementFilter
	if !bindQueryAndValidate(c, &filter) {
		return
	}
	resp, err := h.svc.ListMovements(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
