package server

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/csheth/notable/internal/apperr"
	"github.com/csheth/notable/internal/auth"
)

const (
	localUserID = "user_id"
	localClaims = "claims"
)

func jwtMiddleware(issuer *auth.Issuer) fiber.Handler {
	return func(c *fiber.Ctx) error {
		header := c.Get(fiber.HeaderAuthorization)
		if len(header) < 7 || !strings.EqualFold(header[:7], "Bearer ") {
			return apperr.Unauthorized("missing token")
		}
		claims, err := issuer.Parse(strings.TrimSpace(header[7:]))
		if err != nil {
			return err
		}
		c.Locals(localUserID, claims.UserID)
		c.Locals(localClaims, claims)
		return c.Next()
	}
}

func userID(c *fiber.Ctx) string {
	id, _ := c.Locals(localUserID).(string)
	return id
}

func bind(c *fiber.Ctx, out any) error {
	if err := c.BodyParser(out); err != nil {
		return apperr.Invalid("malformed request body")
	}
	return nil
}
