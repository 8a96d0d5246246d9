package serverutils

import (
	"crypto/md5"
	"fmt"
	"os"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

// OptionalJwtMiddleware attaches user_id when a valid bearer token is
// present. The concierge endpoints are public, so a missing or invalid
// token is not an error; the identity just falls back to the client IP.
func OptionalJwtMiddleware(ctx *fiber.Ctx) error {
	authHeader := ctx.Get("Authorization")
	if len(authHeader) < 7 || authHeader[:7] != "Bearer " {
		return ctx.Next()
	}
	tokenStr := authHeader[7:]

	token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (interface{}, error) {
		return []byte(os.Getenv("JWT_SECRET")), nil
	})
	if err != nil || !token.Valid {
		return ctx.Next()
	}

	if claims, ok := token.Claims.(jwt.MapClaims); ok {
		if userId, ok := claims["user_id"].(string); ok {
			ctx.Locals("user_id", userId)
		}
	}
	return ctx.Next()
}

// ClientIdentity returns the rate-limit key for a request: the
// authenticated user id when available, else a hash of the remote address.
func ClientIdentity(ctx *fiber.Ctx) string {
	if userId, ok := ctx.Locals("user_id").(string); ok && userId != "" {
		return userId
	}
	return fmt.Sprintf("%x", md5.Sum([]byte(ctx.IP())))
}
