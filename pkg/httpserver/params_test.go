package httpserver

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

func TestParamID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())

	c.Params = gin.Params{{Key: "productId", Value: "12"}}
	id, err := ParamID(c, "productId")
	require.NoError(t, err)
	require.Equal(t, uint(12), id)

	for _, bad := range []string{"0", "-1", "abc", ""} {
		c.Params = gin.Params{{Key: "productId", Value: bad}}
		_, err = ParamID(c, "productId")
		require.Error(t, err, bad)
	}
}

func TestBindJSON(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"quantity":`))
	c.Request.Header.Set("Content-Type", "application/json")

	var req struct {
		Quantity int `json:"quantity"`
	}
	require.Error(t, BindJSON(c, &req))
}
