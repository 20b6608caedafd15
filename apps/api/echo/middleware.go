package echoapi

import (
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/rhazelina/qr-absence-sub000/core/session"
)

const contextSessionKey = "session"

func roleMiddleware(allowed func(Claims) bool) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			claims, err := getContextClaims(ctx)
			if err != nil {
				return errors.Wrap(err, "getting context claims")
			}
			if allowed(claims) {
				return next(ctx)
			}
			return errHttpForbidden
		}
	}
}

func teacherMiddleware() echo.MiddlewareFunc {
	return roleMiddleware(func(c Claims) bool { return c.IsTeacher })
}

func staffMiddleware() echo.MiddlewareFunc {
	return roleMiddleware(Claims.IsStaff)
}

// sessionMiddleware loads the open session named by the `:id` path param.
func sessionMiddleware(registry *session.Registry) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			id, err := uuid.Parse(ctx.Param("id"))
			if err != nil {
				return errHttpNotFound
			}
			m, err := registry.Get(id)
			if err != nil {
				if errors.Is(err, session.ErrNotFound) {
					return errHttpNotFound
				}
				return errors.Wrap(err, "finding session by ID")
			}
			ctx.Set(contextSessionKey, m)
			return next(ctx)
		}
	}
}

func getContextSession(ctx echo.Context) (*session.Machine, error) {
	if m, ok := ctx.Get(contextSessionKey).(*session.Machine); ok {
		return m, nil
	}
	return nil, errors.New("session object not found in echo.Context")
}
