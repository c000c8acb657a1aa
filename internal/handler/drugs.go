package handler

import (
	"net/http"

	"github.com/TheYates/bernat-medical-sub000/internal/dto"
	"github.com/TheYates/bernat-medical-sub000/internal/service"

	"github.com/gin-gonic/gin"
)

type DrugsHandler struct{ svc service.DrugService }

func NewDrugsHandler(svc service.DrugService) *DrugsHandler { return &DrugsHandler{svc: svc} }

// Create godoc
// @Summary Create a drug; prices are derived from purchase price and markups
// @Tags drugs
// @Accept json
// @Produce json
// @Param body body dto.CreateDrugRequest true "Drug"
// @Success 201 {object} dto.DrugResponse
// @Failure 400 {object} apierror.APIError
// @Router /v1/drugs [post]
func (h *DrugsHandler) Create(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	var req dto.CreateDrugRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Create(c.Request.Context(), actor, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *DrugsHandler) List(c *gin.Context) {
	var filter dto.DrugFilter
	if !bindQueryAndValidate(c, &filter) {
		return
	}
	resp, err := h.svc.List(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *DrugsHandler) GetByID(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	resp, err := h.svc.GetByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *DrugsHandler) Update(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	var req dto.UpdateDrugRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Update(c.Request.Context(), actor, id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *DrugsHandler) Deactivate(c *gin.Context) { h.setActive(c, false) }

func (h *DrugsHandler) Reactivate(c *gin.Context) { h.setActive(c, true) }

func (h *DrugsHandler) setActive(c *gin.Context, active bool) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	if err := h.svc.SetActive(c.Request.Context(), actor, id, active); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
