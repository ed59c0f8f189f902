package middleware

import (
	"fmt"
	"log"

	"organicindia/internal/services"

	"github.com/gofiber/fiber/v2"
)

// SessionCookie carries the signed session token.
const SessionCookie = "session"

// RequireRole is the single authorization gate for every protected
// route: it requires a valid session whose user_type matches the
// route's expected role, stashing the verified actor in the request
// locals. Anything else gets a notice and a redirect to login.
func RequireRole(authService *services.AuthService, role string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		tokenString := c.Cookies(SessionCookie)
		if tokenString == "" {
			SetNotice(c, NoticeError, fmt.Sprintf("Please login as a %s", role))
			return c.Redirect("/login", fiber.StatusSeeOther)
		}

		claims, err := authService.ValidateToken(tokenString)
		if err != nil {
			log.Printf("Session validation failed: %v", err)
			SetNotice(c, NoticeError, fmt.Sprintf("Please login as a %s", role))
			return c.Redirect("/login", fiber.StatusSeeOther)
		}

		userType, _ := claims["user_type"].(string)
		if userType != role {
			SetNotice(c, NoticeError, fmt.Sprintf("Please login as a %s", role))
			return c.Redirect("/login", fiber.StatusSeeOther)
		}

		c.Locals("user_id", claims["user_id"])
		c.Locals("username", claims["username"])
		c.Locals("user_type", userType)

		return c.Next()
	}
}

// ActorID returns the authenticated user id stashed by RequireRole.
func ActorID(c *fiber.Ctx) string {
	id, _ := c.Locals("user_id").(string)
	return id
}

// ActorName returns the authenticated username stashed by RequireRole.
func ActorName(c *fiber.Ctx) string {
	name, _ := c.Locals("username").(string)
	return name
}
