package auth

import (
	"errors"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
	"github.com/mserebryaakov/aggregator-storefront/pkg/apperror"
	"github.com/sirupsen/logrus"
)

type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

const (
	ctxUserID = "auth_user_id"
	ctxRole   = "auth_role"
)

var errInvalidToken = errors.New("invalid token")

type Claims struct {
	UserID uint `json:"user_id"`
	Role   Role `json:"role"`
	jwt.RegisteredClaims
}

type Issuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewIssuer(secret string, ttl time.Duration) *Issuer {
	return &Issuer{
		secret: []byte(secret),
		ttl:    ttl,
		now:    time.Now,
	}
}

func (i *Issuer) Generate(userID uint, role Role) (string, time.Time, error) {
	now := i.now()
	exp := now.Add(i.ttl)
	claims := &Claims{
		UserID: userID,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(exp),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	s, err := t.SignedString(i.secret)
	return s, exp, err
}

func (i *Issuer) Parse(tokenStr string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errInvalidToken
		}
		return i.secret, nil
	})
	if err != nil {
		return nil, err
	}

	if claims, ok := token.Claims.(*Claims); ok && token.Valid {
		return claims, nil
	}

	return nil, errInvalidToken
}

// Middleware rejects requests without a valid bearer token. When roles are
// given the token must carry one of them.
func (i *Issuer) Middleware(log *logrus.Entry, roles ...Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		tokenStr, found := strings.CutPrefix(header, "Bearer ")
		if !found || tokenStr == "" {
			apperror.Respond(c, log, apperror.Unauthorized("missing bearer token"))
			return
		}

		claims, err := i.Parse(tokenStr)
		if err != nil {
			apperror.Respond(c, log, apperror.Unauthorized("invalid or expired token"))
			return
		}

		if len(roles) > 0 && !hasRole(claims.Role, roles) {
			apperror.Respond(c, log, apperror.Forbidden("insufficient permissions"))
			return
		}

		c.Set(ctxUserID, claims.UserID)
		c.Set(ctxRole, claims.Role)
		c.Next()
	}
}

func hasRole(role Role, allowed []Role) bool {
	for _, r := range allowed {
		if r == role {
			return true
		}
	}
	return false
}

func Current(c *gin.Context) (uint, Role, bool) {
	id, ok := c.Get(ctxUserID)
	if !ok {
		return 0, "", false
	}
	role, _ := c.Get(ctxRole)
	uid, _ := id.(uint)
	r, _ := role.(Role)
	return uid, r, true
}

// EnsureSelf allows admins and the user the request is about.
func EnsureSelf(c *gin.Context, userID uint) error {
	uid, role, ok := Current(c)
	if !ok {
		return apperror.Unauthorized("missing bearer token")
	}
	if role == RoleAdmin || uid == userID {
		return nil
	}
	return apperror.Forbidden("access to another user's data is not allowed")
}
