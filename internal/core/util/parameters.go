package util

import "github.com/gin-gonic/gin"

// ParamsToMap binds the JSON request body into a typed params value.
// Handlers validate the result before it reaches a service.
func ParamsToMap[T any](c *gin.Context) (T, error) {
	var params T

	if err := c.ShouldBindJSON(&params); err != nil {
		return params, err
	}

	return params, nil
}
