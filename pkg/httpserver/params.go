package httpserver

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/mserebryaakov/aggregator-storefront/pkg/apperror"
)

// ParamID reads a positive numeric path parameter.
func ParamID(c *gin.Context, name string) (uint, error) {
	raw := c.Param(name)
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, apperror.Validation("invalid " + name)
	}
	return uint(id), nil
}

// BindJSON decodes the body into req and reports failures as validation errors.
func BindJSON(c *gin.Context, req any) error {
	if err := c.ShouldBindJSON(req); err != nil {
		return apperror.NewError(apperror.ValidationError, "invalid request body", 400, err)
	}
	return nil
}
