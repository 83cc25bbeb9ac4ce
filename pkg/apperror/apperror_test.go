package apperror

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

func quietLog() *logrus.Entry {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return logrus.NewEntry(l)
}

func TestWrapKeepsAppError(t *testing.T) {
	orig := NotFound("cart item not found")
	wrapped := Wrap(orig, "failed")
	require.Same(t, orig, wrapped)

	cause := errors.New("connection reset")
	wrapped = Wrap(cause, "failed to load cart")

	var appErr *AppError
	require.True(t, errors.As(wrapped, &appErr))
	require.Equal(t, http.StatusInternalServerError, appErr.Code)
	require.ErrorIs(t, wrapped, cause)
	require.Nil(t, Wrap(nil, "noop"))
}

func TestRespondWritesDetails(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/checkout", nil)

	Respond(c, quietLog(), Business("Some items are out of stock").With("items", []int{1, 2}))

	require.Equal(t, http.StatusBadRequest, w.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Equal(t, "Some items are out of stock", body["error"])
	require.Equal(t, false, body["success"])
	require.Len(t, body["items"], 2)
}

func TestRespondCarriesTriggeringMessage(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/orders", nil)

	Respond(c, quietLog(), errors.New("failed to create order item - deadlock detected"))

	require.Equal(t, http.StatusInternalServerError, w.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Equal(t, "failed to create order item - deadlock detected", body["error"])

	w = httptest.NewRecorder()
	c, _ = gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/orders", nil)

	Respond(c, quietLog(), Wrap(errors.New("connection reset by peer"), "Failed to fetch orders"))

	require.Equal(t, http.StatusInternalServerError, w.Code)
	body = nil
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Equal(t, "Failed to fetch orders", body["error"])
	require.Equal(t, "connection reset by peer", body["details"])
}
