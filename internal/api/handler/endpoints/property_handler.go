package endpoints

import (
	"net/http"

	"github.com/gin-contrib/graceful"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"upkeep"
	"upkeep/internal/api/handler/request"
	"upkeep/internal/api/handler/response"
	"upkeep/internal/api/models"
	"upkeep/internal/api/repo"
	"upkeep/pkg"
)

type propertyHandler struct {
	propertyRepo *repo.PropertyRepository
	logger       zerolog.Logger
}

func PropertyHandler(router *graceful.Graceful) {
	h := &propertyHandler{
		propertyRepo: repo.NewPropertyRepository(),
		logger:       upkeep.Logger,
	}

	routes := router.Group("/api/v1/properties")
	{
		routes.GET("", h.getAll)
		routes.POST("", h.create)
	}
}

func (slf *propertyHandler) getAll(c *gin.Context) {
	properties, err := slf.propertyRepo.GetAll()
	if err != nil {
		slf.logger.Error().Err(err).Msg("Failed to list properties")
		c.JSON(http.StatusInternalServerError, response.APIError{Message: "Failed to retrieve properties"})
		return
	}
	c.JSON(http.StatusOK, properties)
}

func (slf *propertyHandler) create(c *gin.Context) {
	managerID, ok := pkg.CallerID(c)
	if !ok {
		return
	}

	var req request.CreateProperty
	if err := pkg.ParseAndValidate(c, &req); err != nil {
		c.JSON(http.StatusBadRequest, response.APIError{Message: err.Error()})
		return
	}

	property := models.Property{
		ID:        uuid.NewString(),
		Name:      req.Name,
		Address:   req.Address,
		ManagerID: managerID,
	}
	if err := slf.propertyRepo.Create(&property); err != nil {
		slf.logger.Error().Err(err).Msg("Failed to create property")
		c.JSON(http.StatusInternalServerError, response.APIError{Message: "Failed to create property"})
		return
	}
	c.JSON(http.StatusCreated, property)
}
