package handler

import (
	"net/http"

	"trainingdesk/internal/auth"
	"trainingdesk/internal/middleware"
	"trainingdesk/internal/service"
	"trainingdesk/pkg/pagination"
	"trainingdesk/pkg/response"

	"github.com/gin-gonic/gin"
)

type InnovationHandler struct {
	innovationService service.InnovationService
	tokens            *auth.Tokens
}

func NewInnovationHandler(innovationService service.InnovationService, tokens *auth.Tokens) *InnovationHandler {
	return &InnovationHandler{innovationService: innovationService, tokens: tokens}
}

func (h *InnovationHandler) RegisterRoutes(router *gin.RouterGroup) {
	innovators := router.Group("/innovators", middleware.Authenticate(h.tokens))
	{
		innovators.GET("", h.ListInnovators)
		innovators.POST("", h.CreateInnovator)
		innovators.GET("/:id", h.GetInnovator)
		innovators.PUT("/:id", h.UpdateInnovator)
		innovators.DELETE("/:id", h.DeleteInnovator)
	}

	innovations := router.Group("/innovations", middleware.Authenticate(h.tokens))
	{
		innovations.GET("", h.ListInnovations)
		innovations.POST("", h.CreateInnovation)
		innovations.GET("/:id", h.GetInnovation)
		innovations.PUT("/:id", h.UpdateInnovation)
		innovations.DELETE("/:id", h.DeleteInnovation)
	}
}

func (h *InnovationHandler) ListInnovators(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	p := pagination.Parse(c)
	page, err := h.innovationService.ListInnovators(c.Request.Context(), actor, p.Page, p.Limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, page))
}

// @Summary      Register an innovator
// @Tags         innovations
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      service.InnovatorRequest  true  "Innovator"
// @Success      201      {object}  response.Response{data=model.Innovator}
// @Failure      400      {object}  response.Response
// @Router       /innovators [post]
func (h *InnovationHandler) CreateInnovator(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	var req service.InnovatorRequest
	if !bindJSON(c, &req) {
		return
	}
	innovator, err := h.innovationService.CreateInnovator(c.Request.Context(), actor, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, innovator))
}

func (h *InnovationHandler) GetInnovator(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	innovator, err := h.innovationService.GetInnovator(c.Request.Context(), actor, id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, innovator))
}

func (h *InnovationHandler) UpdateInnovator(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req service.InnovatorRequest
	if !bindJSON(c, &req) {
		return
	}
	innovator, err := h.innovationService.UpdateInnovator(c.Request.Context(), actor, id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, innovator))
}

func (h *InnovationHandler) DeleteInnovator(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.innovationService.DeleteInnovator(c.Request.Context(), actor, id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"message": "Innovator deleted"}))
}

func (h *InnovationHandler) ListInnovations(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	innovatorID, ok := optionalQueryID(c, "innovator_id")
	if !ok {
		return
	}
	p := pagination.Parse(c)
	page, err := h.innovationService.ListInnovations(c.Request.Context(), actor, innovatorID, p.Page, p.Limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, page))
}

func (h *InnovationHandler) CreateInnovation(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	var req service.InnovationRequest
	if !bindJSON(c, &req) {
		return
	}
	innovation, err := h.innovationService.CreateInnovation(c.Request.Context(), actor, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, innovation))
}

func (h *InnovationHandler) GetInnovation(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	innovation, err := h.innovationService.GetInnovation(c.Request.Context(), actor, id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, innovation))
}

func (h *InnovationHandler) UpdateInnovation(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req service.InnovationRequest
	if !bindJSON(c, &req) {
		return
	}
	innovation, err := h.innovationService.UpdateInnovation(c.Request.Context(), actor, id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, innovation))
}

func (h *InnovationHandler) DeleteInnovation(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.innovationService.DeleteInnovation(c.Request.Context(), actor, id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"message": "Innovation deleted"}))
}
