package handler

import (
	"fmt"
	"net/http"
	"path/filepath"
	"time"

	"github.com/TheYates/bernat-medical-sub000/internal/apierror"
	"github.com/TheYates/bernat-medical-sub000/internal/dto"
	"github.com/TheYates/bernat-medical-sub000/internal/infra"
	"github.com/TheYates/bernat-medical-sub000/internal/model"
	"github.com/TheYates/bernat-medical-sub000/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

const (
	IdempotencyKeyHeader = "Idempotency-Key"
	xlsxContentType      = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

type RestockHandler struct {
	svc     service.RestockService
	idem    *infra.IdempotencyStore // nil disables Idempotency-Key handling
	pdfPath string
}

func NewRestockHandler(svc service.RestockService, idem *infra.IdempotencyStore, pdfPath string) *RestockHandler {
	return &RestockHandler{svc: svc, idem: idem, pdfPath: pdfPath}
}

// CreateBatch godoc
// @Summary Submit a multi-line restock; admins are auto-approved, others go pending
// @Tags inventory
// @Accept json
// @Produce json
// @Param Idempotency-Key header string false "Client submission key"
// @Param body body dto.CreateRestockBatchRequest true "Restock batch"
// @Success 201 {object} dto.RestockBatchResponse
// @Failure 400 {object} apierror.APIError
// @Failure 404 {object} apierror.APIError
// @Failure 409 {object} apierror.APIError
// @Router /v1/inventory/restock [post]
func (h *RestockHandler) CreateBatch(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	var req dto.CreateRestockBatchRequest
	if !bindAndValidate(c, &req) {
		return
	}

	key := c.GetHeader(IdempotencyKeyHeader)
	if key != "" && h.idem != nil {
		reserved, err := h.idem.Reserve(c.Request.Context(), actor.UserID.String(), key)
		if err != nil {
			_ = c.Error(err)
			return
		}
		if !reserved {
			c.JSON(http.StatusConflict, apierror.New("This restock was already submitted"))
			return
		}
	}

	resp, err := h.svc.CreateBatch(c.Request.Context(), actor, req)
	if err != nil {
		if key != "" && h.idem != nil {
			if relErr := h.idem.Release(c.Request.Context(), actor.UserID.String(), key); relErr != nil {
				log.Warn().Err(relErr).Str("key", key).Msg("restock: failed to release idempotency key")
			}
		}
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// CreateSingle POST /v1/inventory/drugs/:id/restock
func (h *RestockHandler) CreateSingle(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	drugID, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	var req dto.CreateSingleRestockRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.CreateSingle(c.Request.Context(), actor, drugID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// Resolve godoc
// @Summary Approve or reject a pending restock
// @Tags inventory
// @Accept json
// @Produce json
// @Param id path string true "Restock transaction ID"
// @Param body body dto.ResolveRestockRequest true "Decision"
// @Success 200 {object} dto.MessageResponse
// @Failure 400 {object} apierror.APIError
// @Failure 404 {object} apierror.APIError
// @Router /v1/inventory/restock/{id}/approve [post]
func (h *RestockHandler) Resolve(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	var req dto.ResolveRestockRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Resolve(c.Request.Context(), actor, id, req.Status)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *RestockHandler) ListPending(c *gin.Context) {
	rows, err := h.svc.ListPending(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, rows)
}

// PendingCount GET /v1/inventory/restock/pending/count
func (h *RestockHandler) PendingCount(c *gin.Context) {
	resp, err := h.svc.PendingCount(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *RestockHandler) ListHistory(c *gin.Context) {
	rows, err := h.svc.ListHistory(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, rows)
}

// ExportHistory GET /v1/inventory/restock/history/export
func (h *RestockHandler) ExportHistory(c *gin.Context) {
	rows, err := h.svc.ListHistory(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	buf, err := infra.ExportRestockHistoryXLSX(rows)
	if err != nil {
		_ = c.Error(err)
		return
	}
	name := fmt.Sprintf("restock-history-%s.xlsx", time.Now().Format("20060102"))
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, name))
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}

// Voucher GET /v1/inventory/restock/:id/pdf
func (h *RestockHandler) Voucher(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	view, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	if view.Status == string(model.RestockPending) {
		c.JSON(http.StatusBadRequest, apierror.New("Restock has not been resolved yet"))
		return
	}
	path, err := infra.GenerateRestockVoucherPDF(view, h.pdfPath)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.FileAttachment(path, filepath.Base(path))
}
