package auth

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

func quietLog() *logrus.Entry {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return logrus.NewEntry(l)
}

func TestGenerateAndParse(t *testing.T) {
	issuer := NewIssuer("test-secret", time.Hour)

	token, exp, err := issuer.Generate(42, RoleUser)
	require.NoError(t, err)
	require.WithinDuration(t, time.Now().Add(time.Hour), exp, time.Minute)

	claims, err := issuer.Parse(token)
	require.NoError(t, err)
	require.Equal(t, uint(42), claims.UserID)
	require.Equal(t, RoleUser, claims.Role)

	_, err = NewIssuer("other-secret", time.Hour).Parse(token)
	require.Error(t, err)
}

func TestExpiredToken(t *testing.T) {
	issuer := NewIssuer("test-secret", time.Minute)
	issuer.now = func() time.Time { return time.Now().Add(-time.Hour) }

	token, _, err := issuer.Generate(1, RoleUser)
	require.NoError(t, err)

	_, err = issuer.Parse(token)
	require.Error(t, err)
}

func newRouter(issuer *Issuer, roles ...Role) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/user/:id", issuer.Middleware(quietLog(), roles...), func(c *gin.Context) {
		if err := EnsureSelf(c, 7); err != nil {
			c.AbortWithStatus(http.StatusForbidden)
			return
		}
		c.Status(http.StatusOK)
	})
	return r
}

func doGet(r http.Handler, token string) int {
	req := httptest.NewRequest(http.MethodGet, "/user/7", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w.Code
}

func TestMiddleware(t *testing.T) {
	issuer := NewIssuer("test-secret", time.Hour)
	r := newRouter(issuer)

	owner, _, _ := issuer.Generate(7, RoleUser)
	stranger, _, _ := issuer.Generate(8, RoleUser)
	admin, _, _ := issuer.Generate(1, RoleAdmin)

	require.Equal(t, http.StatusUnauthorized, doGet(r, ""))
	require.Equal(t, http.StatusUnauthorized, doGet(r, "garbage"))
	require.Equal(t, http.StatusOK, doGet(r, owner))
	require.Equal(t, http.StatusForbidden, doGet(r, stranger))
	require.Equal(t, http.StatusOK, doGet(r, admin))
}

func TestMiddlewareRoles(t *testing.T) {
	issuer := NewIssuer("test-secret", time.Hour)
	r := newRouter(issuer, RoleAdmin)

	owner, _, _ := issuer.Generate(7, RoleUser)
	admin, _, _ := issuer.Generate(1, RoleAdmin)

	require.Equal(t, http.StatusForbidden, doGet(r, owner))
	require.Equal(t, http.StatusOK, doGet(r, admin))
}
