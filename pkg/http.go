package pkg

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// ParseAndValidate binds the JSON body into dto and runs struct validation.
func ParseAndValidate(c *gin.Context, dto any) error {
	if err := c.ShouldBindJSON(dto); err != nil {
		return err
	}
	return validate.Struct(dto)
}

// CallerID extracts the calling user's id from the X-User-ID header. The
// session layer in front of the API owns real authentication; this service
// only needs a stable identity for targeting alerts and acceptance checks.
func CallerID(c *gin.Context) (string, bool) {
	id := c.GetHeader("X-User-ID")
	if id == "" {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Missing X-User-ID header"})
		return "", false
	}
	return id, true
}
