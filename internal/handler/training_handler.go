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

// TrainingHandler serves training types, sessions, applications and certificates.
type TrainingHandler struct {
	trainingService    service.TrainingService
	applicationService service.ApplicationService
	certificateService service.CertificateService
	tokens             *auth.Tokens
}

func NewTrainingHandler(
	trainingService service.TrainingService,
	applicationService service.ApplicationService,
	certificateService service.CertificateService,
	tokens *auth.Tokens,
) *TrainingHandler {
	return &TrainingHandler{
		trainingService:    trainingService,
		applicationService: applicationService,
		certificateService: certificateService,
		tokens:             tokens,
	}
}

func (h *TrainingHandler) RegisterRoutes(router *gin.RouterGroup) {
	group := router.Group("/training", middleware.Authenticate(h.tokens))

	types := group.Group("/types")
	{
		types.GET("", h.ListTypes)
		types.POST("", h.CreateType)
		types.GET("/:id", h.GetType)
		types.PUT("/:id", h.UpdateType)
		types.DELETE("/:id", h.DeleteType)
	}

	sessions := group.Group("/sessions")
	{
		sessions.GET("", h.ListSessions)
		sessions.POST("", h.CreateSession)
		sessions.GET("/:id", h.GetSession)
		sessions.PUT("/:id", h.UpdateSession)
		sessions.DELETE("/:id", h.DeleteSession)
		sessions.POST("/:id/apply", h.Apply)
	}

	applications := group.Group("/applications")
	{
		applications.GET("", h.ListApplications)
		applications.GET("/:id", h.GetApplication)
		applications.POST("/:id/approve", transition(h.applicationService.Approve))
		applications.POST("/:id/reject", transition(h.applicationService.Reject))
		applications.POST("/:id/complete", transition(h.applicationService.Complete))
		applications.POST("/:id/withdraw", transition(h.applicationService.Withdraw))
	}

	certificates := group.Group("/certificates")
	{
		certificates.GET("", h.ListCertificates)
		certificates.POST("", h.IssueCertificate)
		certificates.GET("/:id", h.GetCertificate)
	}
}

func (h *TrainingHandler) ListTypes(c *gin.Context) {
	p := pagination.Parse(c)
	page, err := h.trainingService.ListTypes(c.Request.Context(), p.Page, p.Limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, page))
}

func (h *TrainingHandler) CreateType(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	var req service.TrainingTypeRequest
	if !bindJSON(c, &req) {
		return
	}
	tt, err := h.trainingService.CreateType(c.Request.Context(), actor, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, tt))
}

func (h *TrainingHandler) GetType(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	tt, err := h.trainingService.GetType(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, tt))
}

func (h *TrainingHandler) UpdateType(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req service.TrainingTypeRequest
	if !bindJSON(c, &req) {
		return
	}
	tt, err := h.trainingService.UpdateType(c.Request.Context(), actor, id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, tt))
}

func (h *TrainingHandler) DeleteType(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.trainingService.DeleteType(c.Request.Context(), actor, id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"message": "Training type deleted"}))
}

// @Summary      List trainings
// @Description  Trainers only see the trainings they conduct
// @Tags         training
// @Produce      json
// @Security     BearerAuth
// @Param        page   query     int  false  "Page number"
// @Param        limit  query     int  false  "Items per page"
// @Success      200    {object}  response.Response
// @Router       /training/sessions [get]
func (h *TrainingHandler) ListSessions(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	p := pagination.Parse(c)
	page, err := h.trainingService.List(c.Request.Context(), actor, p.Page, p.Limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, page))
}

// @Summary      Schedule a training
// @Tags         training
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      service.TrainingRequest  true  "Training"
// @Success      201      {object}  response.Response{data=model.Training}
// @Failure      400      {object}  response.Response
// @Failure      403      {object}  response.Response
// @Failure      409      {object}  response.Response
// @Router       /training/sessions [post]
func (h *TrainingHandler) CreateSession(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	var req service.TrainingRequest
	if !bindJSON(c, &req) {
		return
	}
	training, err := h.trainingService.Create(c.Request.Context(), actor, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, training))
}

func (h *TrainingHandler) GetSession(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	training, err := h.trainingService.Get(c.Request.Context(), actor, id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, training))
}

func (h *TrainingHandler) UpdateSession(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req service.TrainingRequest
	if !bindJSON(c, &req) {
		return
	}
	training, err := h.trainingService.Update(c.Request.Context(), actor, id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, training))
}

func (h *TrainingHandler) DeleteSession(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.trainingService.Delete(c.Request.Context(), actor, id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"message": "Training deleted"}))
}

// Apply handles POST /training/sessions/:id/apply
// @Summary      Apply for a training
// @Description  A trainer applies once per training, whatever happened to an earlier application
// @Tags         training
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Training ID"
// @Success      201  {object}  response.Response{data=model.TrainingApplication}
// @Failure      403  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Failure      409  {object}  response.Response
// @Router       /training/sessions/{id}/apply [post]
func (h *TrainingHandler) Apply(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	app, err := h.applicationService.Apply(c.Request.Context(), actor, id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, app))
}

func (h *TrainingHandler) ListApplications(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	trainingID, ok := optionalQueryID(c, "training_id")
	if !ok {
		return
	}
	p := pagination.Parse(c)
	filter := service.ApplicationListFilter{
		TrainingID: trainingID,
		Status:     model.ApplicationStatus(c.Query("status")),
	}
	page, err := h.applicationService.List(c.Request.Context(), actor, filter, p.Page, p.Limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, page))
}

func (h *TrainingHandler) GetApplication(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	app, err := h.applicationService.Get(c.Request.Context(), actor, id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, app))
}

func (h *TrainingHandler) ListCertificates(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	p := pagination.Parse(c)
	page, err := h.certificateService.List(c.Request.Context(), actor, p.Page, p.Limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, page))
}

func (h *TrainingHandler) IssueCertificate(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	var req service.CertificateRequest
	if !bindJSON(c, &req) {
		return
	}
	cert, err := h.certificateService.Issue(c.Request.Context(), actor, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, cert))
}

func (h *TrainingHandler) GetCertificate(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	cert, err := h.certificateService.Get(c.Request.Context(), actor, id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, cert))
}
