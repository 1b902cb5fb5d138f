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
)

type ContractHandler struct {
	contractService service.ContractService
	tokens          *auth.Tokens
}

func NewContractHandler(contractService service.ContractService, tokens *auth.Tokens) *ContractHandler {
	return &ContractHandler{contractService: contractService, tokens: tokens}
}

func (h *ContractHandler) RegisterRoutes(router *gin.RouterGroup) {
	group := router.Group("/contracts", middleware.Authenticate(h.tokens))
	{
		group.GET("", h.List)
		group.POST("", h.Create)
		group.GET("/:id", h.Get)
		group.POST("/:id/activate", transition(h.contractService.Activate))
		group.POST("/:id/complete", transition(h.contractService.Complete))
		group.POST("/:id/terminate", transition(h.contractService.Terminate))
	}
}

func (h *ContractHandler) List(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	p := pagination.Parse(c)
	page, err := h.contractService.List(c.Request.Context(), actor, model.ContractStatus(c.Query("completion")), p.Page, p.Limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, page))
}

// Create handles POST /contracts
// @Summary      Sign a contract
// @Description  The caller becomes the signer and the signing date is today
// @Tags         contracts
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      service.ContractRequest  true  "Contract"
// @Success      201      {object}  response.Response{data=model.Contract}
// @Failure      400      {object}  response.Response
// @Failure      403      {object}  response.Response
// @Router       /contracts [post]
func (h *ContractHandler) Create(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	var req service.ContractRequest
	if !bindJSON(c, &req) {
		return
	}
	contract, err := h.contractService.Create(c.Request.Context(), actor, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, contract))
}

func (h *ContractHandler) Get(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	contract, err := h.contractService.Get(c.Request.Context(), actor, id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, contract))
}
