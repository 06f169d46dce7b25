package echoapi

import (
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/capstone/core/role"
)

const claimsContextKey = "claims"

// claimsMiddleware exposes the token claims to the handlers. It runs after the JWT middleware.
func claimsMiddleware(auth *authenticator) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			claims, err := auth.contextClaims(ctx)
			if err != nil {
				return errors.Wrap(err, "getting context claims")
			}
			ctx.Set(claimsContextKey, claims)
			return next(ctx)
		}
	}
}

func contextClaims(ctx echo.Context) Claims {
	claims, _ := ctx.Get(claimsContextKey).(Claims)
	return claims
}

func hasAnyRole(claims Claims, roles []role.ID) bool {
	if len(roles) == 0 {
		return true
	}
	for _, r := range roles {
		if claims.Role == r {
			return true
		}
	}
	return false
}

// rolesMiddleware only lets the given roles through.
func rolesMiddleware(roles ...role.ID) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			if hasAnyRole(contextClaims(ctx), roles) {
				return next(ctx)
			}
			return errHttpForbidden
		}
	}
}

// selfOrRolesMiddleware lets the user named by the :userId param or the given roles through.
func selfOrRolesMiddleware(roles ...role.ID) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			claims := contextClaims(ctx)
			id, err := intParam(ctx, "userId")
			if err != nil {
				return err
			}
			if claims.UserID == id || hasAnyRole(claims, roles) {
				return next(ctx)
			}
			return errHttpForbidden
		}
	}
}

func intParam(ctx echo.Context, name string) (int, error) {
	id, err := strconv.Atoi(ctx.Param(name))
	if err != nil {
		return 0, errBadParam
	}
	return id, nil
}
