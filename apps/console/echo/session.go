package echoconsole

import (
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/confadmin/apps/console/forms"
	"github.com/trezcool/confadmin/core/form"
	"github.com/trezcool/confadmin/core/nav"
	"github.com/trezcool/confadmin/core/user"
	"github.com/trezcool/confadmin/services/backend"
	"github.com/trezcool/confadmin/storage/cache"
)

const (
	loginPath      = "/login"
	meResource     = "me"
	userContextKey = "user"
)

var (
	errConsoleDenied    = "your account cannot access the console"
	errSessionExpired   = "your session has expired, please log in again"
	errInvalidLoginForm = "invalid login form"
)

// parseClaims reads the claims of a backend token. The signature is the backend's concern:
// the console only checks the token is well formed and not expired.
func parseClaims(token string) (*jwt.StandardClaims, error) {
	claims := new(jwt.StandardClaims)
	if _, _, err := new(jwt.Parser).ParseUnverified(token, claims); err != nil {
		return nil, errors.Wrap(err, "parsing token")
	}
	if !claims.VerifyExpiresAt(time.Now().Unix(), false) {
		return nil, errors.New("token expired")
	}
	return claims, nil
}

// sessionKey identifies a session in cache keys. The claims are unverified, so the
// session's user is only known once the backend answered /auth/me for this exact token.
func sessionKey(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

func currentUser(ctx echo.Context) (user.User, bool) {
	usr, ok := ctx.Get(userContextKey).(user.User)
	return usr, ok
}

func (s *Server) setSession(ctx echo.Context, token string, claims *jwt.StandardClaims) {
	cookie := &http.Cookie{
		Name:     s.conf.Session.CookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(s.conf.Session.MaxAge.Seconds()),
		HttpOnly: true,
		Secure:   s.conf.Session.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	}
	if claims.ExpiresAt > 0 {
		if exp := time.Until(time.Unix(claims.ExpiresAt, 0)); exp < s.conf.Session.MaxAge {
			cookie.MaxAge = int(exp.Seconds())
		}
	}
	ctx.SetCookie(cookie)
}

func (s *Server) clearSession(ctx echo.Context) {
	ctx.SetCookie(&http.Cookie{
		Name:     s.conf.Session.CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   s.conf.Session.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
}

func (s *Server) redirectToLogin(ctx echo.Context, clearSession bool) error {
	if clearSession {
		s.clearSession(ctx)
		s.setFlash(ctx, flashError, errSessionExpired)
	}
	target := loginPath
	if req := ctx.Request(); req.Method == http.MethodGet && req.URL.Path != "/" {
		target += "?" + url.Values{"next": {req.URL.RequestURI()}}.Encode()
	}
	return ctx.Redirect(http.StatusSeeOther, target)
}

// authenticate resolves the session's user from the token cookie; unauthenticated requests go to the login page.
func (s *Server) authenticate(next echo.HandlerFunc) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		cookie, err := ctx.Cookie(s.conf.Session.CookieName)
		if err != nil || cookie.Value == "" {
			return s.redirectToLogin(ctx, false)
		}
		if _, err := parseClaims(cookie.Value); err != nil {
			return s.redirectToLogin(ctx, true)
		}

		reqCtx := backend.WithToken(ctx.Request().Context(), cookie.Value)
		ctx.SetRequest(ctx.Request().WithContext(reqCtx))

		usr, err := cache.Fetch(reqCtx, s.cache, cache.Key(meResource, sessionKey(cookie.Value)), s.backend.Me)
		if err != nil {
			if errors.Is(err, backend.ErrUnauthorized) {
				return s.redirectToLogin(ctx, true)
			}
			return errors.Wrap(err, "fetching session user")
		}
		if !usr.CanUseConsole() {
			s.clearSession(ctx)
			s.setFlash(ctx, flashError, errConsoleDenied)
			return ctx.Redirect(http.StatusSeeOther, loginPath)
		}

		ctx.Set(userContextKey, usr)
		return next(ctx)
	}
}

// authorize requires the roles of the menu item owning the requested path.
func (s *Server) authorize(next echo.HandlerFunc) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		usr, _ := currentUser(ctx)
		if guard, ok := nav.Console.Guard(ctx.Request().URL.Path); ok && !guard.Allows(usr.Roles) {
			return errHttpForbidden
		}
		return next(ctx)
	}
}

// safeNext keeps redirects on the console.
func safeNext(next string) string {
	if !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.HasPrefix(next, "/\\") {
		return "/"
	}
	return next
}

type loginPage struct {
	Fields []form.Field
	Error  string
}

func (s *Server) renderLogin(ctx echo.Context, code int, f *forms.LoginForm, errs map[string]string) error {
	f.Password = ""
	return s.render(ctx, code, "login", "Log in", loginPage{
		Fields: form.Describe(f, errs, nil),
		Error:  errs[form.NonFieldKey],
	})
}

func (s *Server) loginPage(ctx echo.Context) error {
	return s.renderLogin(ctx, http.StatusOK, &forms.LoginForm{Next: ctx.QueryParam("next")}, nil)
}

func (s *Server) login(ctx echo.Context) error {
	f := new(forms.LoginForm)
	if err := ctx.Bind(f); err != nil {
		return s.renderLogin(ctx, http.StatusBadRequest, f, map[string]string{form.NonFieldKey: errInvalidLoginForm})
	}
	if err := f.Validate(s.validate); err != nil {
		return s.renderLogin(ctx, http.StatusUnprocessableEntity, f, form.FieldErrors(err, s.translator))
	}

	res, err := s.backend.Login(ctx.Request().Context(), f.Credentials())
	if err != nil {
		var apiErr *backend.APIError
		if errors.As(err, &apiErr) && apiErr.Status < http.StatusInternalServerError {
			return s.renderLogin(ctx, http.StatusUnprocessableEntity, f, form.FieldErrors(apiErr, s.translator))
		}
		return errors.Wrap(err, "logging in")
	}

	claims, err := parseClaims(res.Token)
	if err != nil {
		return s.renderLogin(ctx, http.StatusUnprocessableEntity, f, map[string]string{form.NonFieldKey: errSessionExpired})
	}
	if !res.User.CanUseConsole() {
		return s.renderLogin(ctx, http.StatusForbidden, f, map[string]string{form.NonFieldKey: errConsoleDenied})
	}

	s.setSession(ctx, res.Token, claims)
	s.setFlash(ctx, flashSuccess, "Welcome back, "+res.User.FullName()+".")
	return ctx.Redirect(http.StatusSeeOther, safeNext(f.Next))
}

func (s *Server) logout(ctx echo.Context) error {
	if cookie, err := ctx.Cookie(s.conf.Session.CookieName); err == nil && cookie.Value != "" {
		s.cache.Forget(ctx.Request().Context(), cache.Key(meResource, sessionKey(cookie.Value)))
	}
	s.clearSession(ctx)
	return ctx.Redirect(http.StatusSeeOther, loginPath)
}
