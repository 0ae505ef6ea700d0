package endpoints

import (
	"errors"
	"net/http"

	"github.com/gin-contrib/graceful"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"upkeep"
	"upkeep/internal/api/handler/mapper"
	"upkeep/internal/api/handler/request"
	"upkeep/internal/api/handler/response"
	"upkeep/internal/api/models"
	"upkeep/internal/api/service"
	"upkeep/pkg"
)

type jobHandler struct {
	jobService *service.JobService
	engine     *service.SyncEngine
	monitor    *service.HighPriorityMonitor
	logger     zerolog.Logger
}

func JobHandler(router *graceful.Graceful, jobService *service.JobService, engine *service.SyncEngine, monitor *service.HighPriorityMonitor) {
	h := &jobHandler{
		jobService: jobService,
		engine:     engine,
		monitor:    monitor,
		logger:     upkeep.Logger,
	}

	routes := router.Group("/api/v1/jobs")
	{
		routes.GET("", h.getAll)
		routes.GET("/:id", h.getByID)
		routes.POST("", h.report)
		routes.POST("/:id/assign", h.assign)
		routes.POST("/:id/status", h.changeStatus)
		routes.POST("/:id/priority", h.changePriority)
		routes.POST("/:id/photos", h.attachPhoto)
		routes.POST("/:id/accept", h.accept)
		routes.POST("/:id/comments", h.addComment)
	}

	alerts := router.Group("/api/v1/alerts")
	alerts.GET("", h.alerts)
}

// getAll serves the synced job list. It never fails: on remote trouble the
// engine already degraded to the cached mirror.
func (slf *jobHandler) getAll(c *gin.Context) {
	jobs := slf.engine.Load()
	c.JSON(http.StatusOK, mapper.ToJobResponses(jobs))
}

func (slf *jobHandler) getByID(c *gin.Context) {
	job, ok := slf.engine.Get(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, response.APIError{Message: "Job not found"})
		return
	}
	c.JSON(http.StatusOK, mapper.ToJobResponse(job))
}

func (slf *jobHandler) report(c *gin.Context) {
	var req request.ReportJob
	if err := pkg.ParseAndValidate(c, &req); err != nil {
		c.JSON(http.StatusBadRequest, response.APIError{Message: err.Error()})
		return
	}

	job, err := slf.jobService.Report(service.ReportJob{
		Title:         req.Title,
		Description:   req.Description,
		PropertyID:    req.PropertyID,
		Priority:      models.JobPriority(req.Priority),
		ReporterPhoto: req.ReporterPhoto,
	})
	if err != nil {
		slf.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, mapper.ToJobResponse(job))
}

func (slf *jobHandler) assign(c *gin.Context) {
	var req request.AssignJob
	if err := pkg.ParseAndValidate(c, &req); err != nil {
		c.JSON(http.StatusBadRequest, response.APIError{Message: err.Error()})
		return
	}

	job, err := slf.jobService.Assign(c.Param("id"), req.TechnicianID, models.JobPriority(req.Priority))
	if err != nil {
		slf.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, mapper.ToJobResponse(job))
}

func (slf *jobHandler) changeStatus(c *gin.Context) {
	var req request.ChangeStatus
	if err := pkg.ParseAndValidate(c, &req); err != nil {
		c.JSON(http.StatusBadRequest, response.APIError{Message: err.Error()})
		return
	}

	job, err := slf.jobService.ChangeStatus(c.Param("id"), models.JobStatus(req.Status))
	if err != nil {
		slf.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, mapper.ToJobResponse(job))
}

func (slf *jobHandler) changePriority(c *gin.Context) {
	var req request.ChangePriority
	if err := pkg.ParseAndValidate(c, &req); err != nil {
		c.JSON(http.StatusBadRequest, response.APIError{Message: err.Error()})
		return
	}

	job, err := slf.jobService.ChangePriority(c.Param("id"), models.JobPriority(req.Priority))
	if err != nil {
		slf.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, mapper.ToJobResponse(job))
}

func (slf *jobHandler) attachPhoto(c *gin.Context) {
	var req request.AttachPhoto
	if err := pkg.ParseAndValidate(c, &req); err != nil {
		c.JSON(http.StatusBadRequest, response.APIError{Message: err.Error()})
		return
	}

	job, completable, err := slf.jobService.AttachPhoto(c.Param("id"), models.PhotoSlot(req.Slot), req.URL)
	if err != nil {
		slf.fail(c, err)
		return
	}

	result := response.AttachPhotoResult{
		Job:         mapper.ToJobResponse(job),
		Completable: completable,
	}
	if completable {
		result.Hint = "After photo attached, the job can now be completed"
	}
	c.JSON(http.StatusOK, result)
}

func (slf *jobHandler) accept(c *gin.Context) {
	callerID, ok := pkg.CallerID(c)
	if !ok {
		return
	}

	job, err := slf.jobService.Accept(c.Param("id"), callerID)
	if err != nil {
		slf.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, mapper.ToJobResponse(job))
}

func (slf *jobHandler) addComment(c *gin.Context) {
	var req request.AddComment
	if err := pkg.ParseAndValidate(c, &req); err != nil {
		c.JSON(http.StatusBadRequest, response.APIError{Message: err.Error()})
		return
	}

	job, err := slf.jobService.AddComment(c.Param("id"), req.Text)
	if err != nil {
		slf.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, mapper.ToJobResponse(job))
}

// alerts serves the jobs currently demanding the caller's attention.
func (slf *jobHandler) alerts(c *gin.Context) {
	callerID, ok := pkg.CallerID(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, mapper.ToJobResponses(slf.monitor.CurrentAlerts(callerID)))
}

// fail maps service errors to HTTP statuses with the exact corrective message.
func (slf *jobHandler) fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrJobNotFound):
		c.JSON(http.StatusNotFound, response.APIError{Message: err.Error()})
	case errors.Is(err, service.ErrAlreadyAssigned),
		errors.Is(err, service.ErrNotAssigned),
		errors.Is(err, service.ErrAfterPhotoRequired),
		errors.Is(err, service.ErrNotHighPriority),
		errors.Is(err, service.ErrNotEligible):
		c.JSON(http.StatusConflict, response.APIError{Message: err.Error()})
	case errors.Is(err, service.ErrTechnicianRequired),
		errors.Is(err, service.ErrInvalidStatus),
		errors.Is(err, service.ErrInvalidPriority),
		errors.Is(err, service.ErrInvalidPhotoSlot),
		errors.Is(err, service.ErrEmptyPhotoURL),
		errors.Is(err, service.ErrEmptyComment):
		c.JSON(http.StatusUnprocessableEntity, response.APIError{Message: err.Error()})
	default:
		slf.logger.Error().Err(err).Msg("Job operation failed")
		c.JSON(http.StatusInternalServerError, response.APIError{Message: "Operation failed"})
	}
}
