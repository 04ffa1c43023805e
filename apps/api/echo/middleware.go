package echoapi

import (
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

func portalMiddleware(allowed func(Claims) bool, roles ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			claims, err := getContextClaims(ctx)
			if err != nil {
				return errors.Wrap(err, "getting context claims")
			}
			if allowed(claims) && contextHasAnyRole(ctx, roles) {
				return next(ctx)
			}
			return errHttpForbidden
		}
	}
}

func adminMiddleware(roles ...string) echo.MiddlewareFunc {
	return portalMiddleware(func(c Claims) bool { return c.IsAdmin }, roles...)
}

func teacherOrAdminMiddleware(roles ...string) echo.MiddlewareFunc {
	return portalMiddleware(func(c Claims) bool { return c.IsTeacher || c.IsAdmin }, roles...)
}

// munaqisyMiddleware gates the scoring endpoints; admins can observe but
// only examiners hold the scoring lock, so they go through the same door.
func munaqisyMiddleware(roles ...string) echo.MiddlewareFunc {
	return portalMiddleware(func(c Claims) bool { return c.IsMunaqisy || c.IsAdmin }, roles...)
}
