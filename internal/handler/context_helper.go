package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/sma-academic-api/internal/middleware"
	"github.com/noah-isme/sma-academic-api/internal/models"
	"github.com/noah-isme/sma-academic-api/internal/service"
	appErrors "github.com/noah-isme/sma-academic-api/pkg/errors"
	"github.com/noah-isme/sma-academic-api/pkg/response"
	"github.com/noah-isme/sma-academic-api/pkg/validation"
)

func claimsFromContext(c *gin.Context) *models.JWTClaims {
	claims, ok := middleware.CurrentUser(c)
	if !ok {
		return nil
	}
	return claims
}

// requireClaims writes 401 and returns nil when the request carries no claims.
func requireClaims(c *gin.Context) *models.JWTClaims {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
	}
	return claims
}

func bindJSON(c *gin.Context, dest interface{}, message string) bool {
	if err := c.ShouldBindJSON(dest); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, message))
		return false
	}
	return true
}

func bindQuery(c *gin.Context, dest interface{}) bool {
	if err := c.ShouldBindQuery(dest); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid query parameters"))
		return false
	}
	if err := validation.Default().Struct(dest); err != nil {
		response.Error(c, validation.Error(err, "invalid query parameters"))
		return false
	}
	return true
}

// idParam returns the named path parameter, writing a 400 when it is not a UUID.
func idParam(c *gin.Context, key string) (string, bool) {
	id := c.Param(key)
	if !validation.IsUUID(id) {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, key+" must be a valid UUID"))
		return "", false
	}
	return id, true
}

// dateQuery parses the date query parameter in loc, defaulting to today. A
// malformed date writes a 400 and returns false.
func dateQuery(c *gin.Context, loc *time.Location, today time.Time) (time.Time, bool) {
	raw := c.Query("date")
	if raw == "" {
		return today, true
	}
	date, err := time.ParseInLocation(service.DateLayout, raw, loc)
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "date must be formatted as YYYY-MM-DD"))
		return time.Time{}, false
	}
	return date, true
}

func intQuery(c *gin.Context, key string) (int, bool) {
	raw := c.Query(key)
	if raw == "" {
		return 0, true
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, key+" must be an integer"))
		return 0, false
	}
	return v, true
}
