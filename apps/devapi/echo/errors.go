package echoapi

import (
	"net/http"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"

	"github.com/trezcool/capstone/core"
	"github.com/trezcool/capstone/core/message"
	"github.com/trezcool/capstone/core/project"
	"github.com/trezcool/capstone/core/team"
	"github.com/trezcool/capstone/core/user"
)

var (
	errUnauthorized  = echo.NewHTTPError(http.StatusUnauthorized, "user not authenticated")
	errHttpForbidden = echo.NewHTTPError(http.StatusForbidden, "permission denied")
	errFileNotFound  = echo.NewHTTPError(http.StatusNotFound, "file not found")
	errBadParam      = echo.NewHTTPError(http.StatusBadRequest, "invalid path parameter")
)

// domainStatus maps the service errors shown verbatim to the client.
var domainStatus = map[error]int{
	user.ErrNotFound:           http.StatusNotFound,
	user.ErrInvalidCredentials: http.StatusBadRequest,
	user.ErrWrongPassword:      http.StatusBadRequest,
	user.ErrInvalidToken:       http.StatusBadRequest,
	user.ErrTokenExpired:       http.StatusBadRequest,
	team.ErrNotFound:           http.StatusNotFound,
	project.ErrNotFound:        http.StatusNotFound,
	project.ErrNotClient:       http.StatusBadRequest,
	project.ErrNotTutor:        http.StatusBadRequest,
	project.ErrSameTutor:       http.StatusBadRequest,
	project.ErrRoleNotAllowed:  http.StatusForbidden,
	message.ErrChannelNotFound: http.StatusNotFound,
	message.ErrNotMember:       http.StatusForbidden,
}

// newAppHTTPErrorHandler returns a custom echo.HTTPErrorHandler rendering every failure as {"error": "..."}.
// signalShutdown is called in order to gracefully shutdown the Server whenever a core.shutdown error is caught.
func newAppHTTPErrorHandler(logger core.Logger, translator ut.Translator, signalShutdown func()) echo.HTTPErrorHandler {
	return func(err error, ctx echo.Context) {
		var code int
		var message string

		cause := errors.Cause(err)
		switch origErr := cause.(type) {
		case *echo.HTTPError:
			if origErr == middleware.ErrJWTMissing {
				code = http.StatusUnauthorized
				message = "missing or malformed jwt"
				break
			}
			if origErr.Internal != nil {
				if herr, ok := origErr.Internal.(*echo.HTTPError); ok {
					origErr = herr
				}
			}
			code = origErr.Code
			if m, ok := origErr.Message.(string); ok {
				message = m
			} else {
				message = http.StatusText(code)
			}
		case validator.ValidationErrors, *core.ValidationError:
			code = http.StatusBadRequest
			message = core.TranslateError(origErr, translator)
		default:
			if status, ok := domainStatus[cause]; ok {
				code = status
				message = cause.Error()
				break
			}

			// any other error is a server error
			code = http.StatusInternalServerError
			message = http.StatusText(http.StatusInternalServerError)

			args := []interface{}{errors.Wrap(err, message)}
			if claims, ok := ctx.Get(claimsContextKey).(Claims); ok {
				args = append(args, claims.person())
			}
			logger.Error(message, args...)

			if ctx.Echo().Debug {
				message = err.Error()
			}

			// shutting down...
			if core.IsShutdown(err) {
				signalShutdown()
			}
		}

		// Send response
		if !ctx.Response().Committed {
			if ctx.Request().Method == http.MethodHead { // Issue #608
				err = ctx.NoContent(code)
			} else {
				err = ctx.JSON(code, echo.Map{"error": message})
			}
			if err != nil {
				ctx.Echo().Logger.Error(err)
			}
		}
	}
}
