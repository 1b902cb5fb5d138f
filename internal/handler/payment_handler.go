package handler

import (
	"bytes"
	"fmt"
	"net/http"
	"time"

	"trainingdesk/internal/auth"
	"trainingdesk/internal/middleware"
	"trainingdesk/internal/model"
	"trainingdesk/internal/service"
	"trainingdesk/pkg/pagination"
	"trainingdesk/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type PaymentHandler struct {
	paymentService service.PaymentService
	rateService    service.RateService
	tokens         *auth.Tokens
}

func NewPaymentHandler(paymentService service.PaymentService, rateService service.RateService, tokens *auth.Tokens) *PaymentHandler {
	return &PaymentHandler{paymentService: paymentService, rateService: rateService, tokens: tokens}
}

func (h *PaymentHandler) RegisterRoutes(router *gin.RouterGroup) {
	group := router.Group("/payments", middleware.Authenticate(h.tokens))
	{
		group.GET("/rates", h.ListRates)
		group.POST("/rates", h.CreateRate)
		group.PUT("/rates/:level", h.UpdateRate)

		group.GET("/levels", h.ListLevels)
		group.POST("/levels", h.AssignLevel)
		group.PUT("/levels/:trainerId", h.UpdateLevel)

		group.GET("", h.List)
		group.GET("/export", h.Export)
		group.GET("/:id", h.Get)
		group.POST("/request/:applicationId", h.Request)
		group.POST("/:id/approve", transition(h.paymentService.Approve))
		group.POST("/:id/reject", transition(h.paymentService.Reject))
		group.POST("/:id/complete", transition(h.paymentService.Complete))
	}
}

func (h *PaymentHandler) ListRates(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	rates, err := h.rateService.ListRates(c.Request.Context(), actor)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, rates))
}

// @Summary      Create a payment rate
// @Tags         payments
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      service.RateRequest  true  "Level and per-day amount"
// @Success      201      {object}  response.Response{data=model.PaymentRate}
// @Failure      400      {object}  response.Response
// @Failure      403      {object}  response.Response
// @Failure      409      {object}  response.Response
// @Router       /payments/rates [post]
func (h *PaymentHandler) CreateRate(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	var req service.RateRequest
	if !bindJSON(c, &req) {
		return
	}
	rate, err := h.rateService.CreateRate(c.Request.Context(), actor, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, rate))
}

func (h *PaymentHandler) UpdateRate(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	var req struct {
		PerDay decimal.Decimal `json:"per_day"`
	}
	if !bindJSON(c, &req) {
		return
	}
	rate, err := h.rateService.UpdateRate(c.Request.Context(), actor, c.Param("level"), req.PerDay)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, rate))
}

func (h *PaymentHandler) ListLevels(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	p := pagination.Parse(c)
	page, err := h.rateService.ListLevels(c.Request.Context(), actor, p.Page, p.Limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, page))
}

func (h *PaymentHandler) AssignLevel(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	var req service.LevelRequest
	if !bindJSON(c, &req) {
		return
	}
	level, err := h.rateService.AssignLevel(c.Request.Context(), actor, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, level))
}

func (h *PaymentHandler) UpdateLevel(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	trainerID, ok := pathID(c, "trainerId")
	if !ok {
		return
	}
	var req struct {
		Level string `json:"level"`
	}
	if !bindJSON(c, &req) {
		return
	}
	level, err := h.rateService.UpdateLevel(c.Request.Context(), actor, service.LevelRequest{TrainerID: trainerID, Level: req.Level})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, level))
}

// List handles GET /payments
// @Summary      List payments
// @Description  Staff and admin see every payment; others see their own
// @Tags         payments
// @Produce      json
// @Security     BearerAuth
// @Param        status  query     string  false  "pending, approved, rejected or completed"
// @Param        page    query     int     false  "Page number"
// @Param        limit   query     int     false  "Items per page"
// @Success      200     {object}  response.Response
// @Router       /payments [get]
func (h *PaymentHandler) List(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	p := pagination.Parse(c)
	page, err := h.paymentService.List(c.Request.Context(), actor, model.PaymentStatus(c.Query("status")), p.Page, p.Limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, page))
}

func (h *PaymentHandler) Get(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	payment, err := h.paymentService.Get(c.Request.Context(), actor, id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, payment))
}

// Request handles POST /payments/request/:applicationId
// @Summary      Request payment for a training
// @Description  Amount is the per-day rate of the trainer's level times the service days of the training
// @Tags         payments
// @Produce      json
// @Security     BearerAuth
// @Param        applicationId  path      string  true  "Training application ID"
// @Success      201            {object}  response.Response{data=model.Payment}
// @Failure      403            {object}  response.Response
// @Failure      404            {object}  response.Response
// @Failure      409            {object}  response.Response
// @Router       /payments/request/{applicationId} [post]
func (h *PaymentHandler) Request(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	applicationID, ok := pathID(c, "applicationId")
	if !ok {
		return
	}
	payment, err := h.paymentService.RequestPayment(c.Request.Context(), actor, applicationID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, payment))
}

// Export handles GET /payments/export
// @Summary      Export payments as xlsx
// @Tags         payments
// @Produce      application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Security     BearerAuth
// @Param        status  query  string  false  "Only payments with this status"
// @Success      200
// @Failure      403  {object}  response.Response
// @Router       /payments/export [get]
func (h *PaymentHandler) Export(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	var buf bytes.Buffer
	if err := h.paymentService.Export(c.Request.Context(), actor, model.PaymentStatus(c.Query("status")), &buf); err != nil {
		respondError(c, err)
		return
	}
	filename := fmt.Sprintf("payments-%s.xlsx", time.Now().Format("20060102"))
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}
