package handler

import (
	"net/http"

	"trainingdesk/internal/auth"
	"trainingdesk/internal/middleware"
	"trainingdesk/internal/model"
	"trainingdesk/internal/service"
	"trainingdesk/pkg/pagination"
	"trainingdesk/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type WarrantyHandler struct {
	warrantyService service.WarrantyService
	tokens          *auth.Tokens
}

func NewWarrantyHandler(warrantyService service.WarrantyService, tokens *auth.Tokens) *WarrantyHandler {
	return &WarrantyHandler{warrantyService: warrantyService, tokens: tokens}
}

func (h *WarrantyHandler) RegisterRoutes(router *gin.RouterGroup) {
	group := router.Group("/warranties", middleware.Authenticate(h.tokens))
	{
		group.GET("", h.List)
		group.POST("", h.Create)
		group.POST("/expire", h.Expire)
		group.POST("/claim", h.Claim)
		group.GET("/:id", h.Get)
		group.PUT("/:id", h.Update)
	}
}

// bulkRequest names the warranties of a bulk status change.
type bulkRequest struct {
	IDs []uuid.UUID `json:"ids"`
}

func (h *WarrantyHandler) List(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	allowedFor, ok := optionalQueryID(c, "allowed_for")
	if !ok {
		return
	}
	p := pagination.Parse(c)
	filter := service.WarrantyListFilter{AllowedFor: allowedFor, Status: model.WarrantyStatus(c.Query("status"))}
	page, err := h.warrantyService.List(c.Request.Context(), actor, filter, p.Page, p.Limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, page))
}

func (h *WarrantyHandler) Create(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	var req service.WarrantyRequest
	if !bindJSON(c, &req) {
		return
	}
	w, err := h.warrantyService.Create(c.Request.Context(), actor, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, w))
}

func (h *WarrantyHandler) Get(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	w, err := h.warrantyService.Get(c.Request.Context(), actor, id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, w))
}

func (h *WarrantyHandler) Update(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req service.UpdateWarrantyRequest
	if !bindJSON(c, &req) {
		return
	}
	w, err := h.warrantyService.Update(c.Request.Context(), actor, id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, w))
}

// Expire handles POST /warranties/expire
// @Summary      Expire warranties in bulk
// @Description  Either every listed warranty is expired or none is
// @Tags         warranties
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      bulkRequest  true  "Warranty IDs"
// @Success      200      {object}  response.Response
// @Failure      404      {object}  response.Response
// @Failure      409      {object}  response.Response
// @Router       /warranties/expire [post]
func (h *WarrantyHandler) Expire(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	var req bulkRequest
	if !bindJSON(c, &req) {
		return
	}
	ws, err := h.warrantyService.MarkExpired(c.Request.Context(), actor, req.IDs)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, ws))
}

// Claim handles POST /warranties/claim
// @Summary      Claim warranties in bulk
// @Tags         warranties
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      bulkRequest  true  "Warranty IDs"
// @Success      200      {object}  response.Response
// @Failure      404      {object}  response.Response
// @Failure      409      {object}  response.Response
// @Router       /warranties/claim [post]
func (h *WarrantyHandler) Claim(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	var req bulkRequest
	if !bindJSON(c, &req) {
		return
	}
	ws, err := h.warrantyService.MarkClaimed(c.Request.Context(), actor, req.IDs)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, ws))
}
