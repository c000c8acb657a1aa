package handler

import (
	"net/http"
	"time"

	"github.com/TheYates/bernat-medical-sub000/internal/dto"
	"github.com/TheYates/bernat-medical-sub000/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type AuditHandler struct{ svc service.AuditService }

func NewAuditHandler(svc service.AuditService) *AuditHandler { return &AuditHandler{svc: svc} }

// List GET /v1/audit?entityType=drug&entityId=...
func (h *AuditHandler) List(c *gin.Context) {
	var filter dto.AuditFilter
	if !bindQueryAndValidate(c, &filter) {
		return
	}
	var entityID *uuid.UUID
	if filter.EntityID != "" {
		id := uuid.MustParse(filter.EntityID)
		entityID = &id
	}

	logs, err := h.svc.List(c.Request.Context(), filter.EntityType, entityID)
	if err != nil {
		respondError(c, err)
		return
	}
	resp := make([]dto.AuditLogResponse, 0, len(logs))
	for _, l := range logs {
		r := dto.AuditLogResponse{
			ID:         l.ID.String(),
			ActionType: l.ActionType,
			EntityType: l.EntityType,
			Details:    l.Details,
			IPAddress:  l.IPAddress,
			CreatedAt:  l.CreatedAt.Format(time.RFC3339),
		}
		if l.UserID != nil {
			s := l.UserID.String()
			r.UserID = &s
		}
		if l.EntityID != nil {
			s := l.EntityID.String()
			r.EntityID = &s
		}
		resp = append(resp, r)
	}
	c.JSON(http.StatusOK, resp)
}
