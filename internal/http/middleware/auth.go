package middleware

import (
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"

	"docvault/internal/model"
)

// IdentityLocalKey is the Fiber locals key holding the authenticated model.Identity.
const IdentityLocalKey = "identity"

var errMissingSubject = errors.New("token has no subject")

// Claims are the bearer token claims issued by the external auth service.
type Claims struct {
	jwt.RegisteredClaims
	Username string     `json:"username"`
	Role     model.Role `json:"role"`
}

// GenerateToken signs an HS256 token for who that expires after ttl.
func GenerateToken(who model.Identity, secret []byte, ttl time.Duration) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   who.UserID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		Username: who.Username,
		Role:     who.Role,
	})
	return token.SignedString(secret)
}

// ParseToken validates tokenString and returns the identity it carries.
func ParseToken(tokenString string, secret []byte) (model.Identity, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		return secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return model.Identity{}, err
	}
	if claims.Subject == "" {
		return model.Identity{}, errMissingSubject
	}
	role := claims.Role
	if role == "" {
		role = model.RoleUser
	}
	return model.Identity{UserID: claims.Subject, Username: claims.Username, Role: role}, nil
}

// Auth rejects requests without a valid bearer token and stores the caller's identity in
// locals under IdentityLocalKey.
func Auth(secret []byte) fiber.Handler {
	return func(c *fiber.Ctx) error {
		header := c.Get(fiber.HeaderAuthorization)
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			return fiber.NewError(fiber.StatusUnauthorized, "missing bearer token")
		}
		who, err := ParseToken(token, secret)
		if err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, "invalid token")
		}
		c.Locals(IdentityLocalKey, who)
		return c.Next()
	}
}

// RequireAdmin only lets identities with the ADMIN role through. It must run after Auth.
func RequireAdmin() fiber.Handler {
	return func(c *fiber.Ctx) error {
		who, ok := IdentityFrom(c)
		if !ok {
			return fiber.NewError(fiber.StatusUnauthorized, "missing identity")
		}
		if !who.IsAdmin() {
			return fiber.NewError(fiber.StatusForbidden, "admin role required")
		}
		return c.Next()
	}
}

// IdentityFrom returns the identity stored by Auth.
func IdentityFrom(c *fiber.Ctx) (model.Identity, bool) {
	who, ok := c.Locals(IdentityLocalKey).(model.Identity)
	return who, ok
}
