package endpoints

import (
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

type userHandler struct {
	userService *service.UserService
	logger      zerolog.Logger
}

func UserHandler(router *graceful.Graceful, userService *service.UserService) {
	h := &userHandler{
		userService: userService,
		logger:      upkeep.Logger,
	}

	routes := router.Group("/api/v1/users")
	{
		routes.GET("", h.getAll)
		routes.GET("/technicians", h.technicians)
		routes.GET("/:id", h.getByID)
		routes.POST("", h.create)
		routes.DELETE("/:id", h.deactivate)
		routes.GET("/:id/preferences", h.getPreferences)
		routes.PUT("/:id/preferences", h.updatePreferences)
	}
}

func (slf *userHandler) getAll(c *gin.Context) {
	users, err := slf.userService.FindAll()
	if err != nil {
		slf.logger.Error().Err(err).Msg("Failed to list users")
		c.JSON(http.StatusInternalServerError, response.APIError{Message: "Failed to retrieve users"})
		return
	}
	c.JSON(http.StatusOK, mapper.ToUserResponses(users))
}

func (slf *userHandler) technicians(c *gin.Context) {
	users, err := slf.userService.Technicians()
	if err != nil {
		slf.logger.Error().Err(err).Msg("Failed to list technicians")
		c.JSON(http.StatusInternalServerError, response.APIError{Message: "Failed to retrieve technicians"})
		return
	}
	c.JSON(http.StatusOK, mapper.ToUserResponses(users))
}

func (slf *userHandler) getByID(c *gin.Context) {
	user, err := slf.userService.FindByID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, response.APIError{Message: err.Error()})
		return
	}
	c.JSON(http.StatusOK, mapper.ToUserResponse(*user))
}

func (slf *userHandler) create(c *gin.Context) {
	var req request.CreateUser
	if err := pkg.ParseAndValidate(c, &req); err != nil {
		c.JSON(http.StatusBadRequest, response.APIError{Message: err.Error()})
		return
	}

	user, err := slf.userService.Create(service.CreateUser{
		Email:     req.Email,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Phone:     req.Phone,
		Role:      models.UserRole(req.Role),
	})
	if err != nil {
		c.JSON(http.StatusConflict, response.APIError{Message: err.Error()})
		return
	}
	c.JSON(http.StatusCreated, mapper.ToUserResponse(*user))
}

func (slf *userHandler) deactivate(c *gin.Context) {
	if err := slf.userService.Deactivate(c.Param("id")); err != nil {
		c.JSON(http.StatusNotFound, response.APIError{Message: err.Error()})
		return
	}
	c.Status(http.StatusNoContent)
}

func (slf *userHandler) getPreferences(c *gin.Context) {
	c.JSON(http.StatusOK, slf.userService.Preferences(c.Param("id")))
}

func (slf *userHandler) updatePreferences(c *gin.Context) {
	var req request.UpdatePreferences
	if err := pkg.ParseAndValidate(c, &req); err != nil {
		c.JSON(http.StatusBadRequest, response.APIError{Message: err.Error()})
		return
	}

	prefs := models.NotificationPrefs{
		PushEnabled:      req.PushEnabled,
		SMSEnabled:       req.SMSEnabled,
		EmailEnabled:     req.EmailEnabled,
		HighPriorityOnly: req.HighPriorityOnly,
	}
	slf.userService.UpdatePreferences(c.Param("id"), prefs)
	c.JSON(http.StatusOK, prefs)
}
