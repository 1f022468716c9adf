package echoconsole

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/confadmin/core"
	"github.com/trezcool/confadmin/core/user"
	"github.com/trezcool/confadmin/services/backend"
)

var (
	errHttpForbidden = echo.NewHTTPError(http.StatusForbidden, "permission denied")
	errHttpNotFound  = echo.NewHTTPError(http.StatusNotFound, "not found")

	errGeneric = "something went wrong, please try again"
)

// errorPages renders what the error handler decided.
type errorPages interface {
	renderError(ctx echo.Context, code int, message string) error
	redirectToLogin(ctx echo.Context, clearSession bool) error
}

// newAppHTTPErrorHandler returns a custom echo.HTTPErrorHandler rendering our errors as pages.
// Backend 401s end the session; signalShutdown is called whenever a core.shutdown error is caught.
func newAppHTTPErrorHandler(logger core.Logger, signalShutdown func(), pages errorPages) echo.HTTPErrorHandler {
	return func(err error, ctx echo.Context) {
		if ctx.Response().Committed {
			return
		}

		var code int
		var message string

		switch origErr := errors.Cause(err).(type) {
		case *echo.HTTPError:
			if origErr.Internal != nil {
				if herr, ok := origErr.Internal.(*echo.HTTPError); ok {
					origErr = herr
				}
			}
			code = origErr.Code
			message = fmt.Sprint(origErr.Message)
		case *backend.APIError:
			if origErr.Status == http.StatusUnauthorized {
				if rErr := pages.redirectToLogin(ctx, true); rErr != nil {
					ctx.Echo().Logger.Error(rErr)
				}
				return
			}
			code = origErr.Status
			message = origErr.Message
			if code >= http.StatusInternalServerError {
				code = http.StatusBadGateway
				logger.Error("backend error", errors.Wrap(err, "backend"), logUser(ctx))
			}
		case validator.ValidationErrors:
			msgs := make([]string, 0, len(origErr))
			for _, vErr := range origErr {
				msgs = append(msgs, vErr.Field()+": "+vErr.Error())
			}
			code = http.StatusBadRequest
			message = strings.Join(msgs, "; ")
		case *core.ValidationError:
			code = http.StatusBadRequest
			message = origErr.Error()
		default:
			if errors.Is(err, user.ErrPermissionDenied) {
				code = http.StatusForbidden
				message = errHttpForbidden.Message.(string)
				break
			}

			// any other error is a server error
			code = http.StatusInternalServerError
			msg := http.StatusText(http.StatusInternalServerError)
			message = errGeneric
			logger.Error(msg, errors.Wrap(err, msg), logUser(ctx))

			// shutting down...
			if core.IsShutdown(err) {
				signalShutdown()
			}
		}

		if ctx.Echo().Debug {
			message = err.Error()
		}

		if ctx.Request().Method == http.MethodHead {
			err = ctx.NoContent(code)
		} else {
			err = pages.renderError(ctx, code, message)
		}
		if err != nil {
			ctx.Echo().Logger.Error(err)
		}
	}
}

// logUser is the user attached to error reports.
func logUser(ctx echo.Context) core.LogUser {
	usr, ok := currentUser(ctx)
	if !ok {
		return core.LogUser{}
	}
	return core.LogUser{ID: usr.ID, Username: usr.FullName(), Email: usr.Email}
}
