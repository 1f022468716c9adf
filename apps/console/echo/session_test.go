package echoconsole

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/confadmin/core/user"
)

func TestServer_authentication(t *testing.T) {
	app := newTestApp(t)

	tests := []httpTest{
		{name: "no session (home)", path: "/", wantCode: http.StatusSeeOther, wantLocation: "/login"},
		{name: "no session (page)", path: "/hotels?page=2", wantCode: http.StatusSeeOther, wantLocation: "/login?next=%2Fhotels%3Fpage%3D2"},
		{name: "login page", path: "/login", wantBody: []string{`name="email"`, `name="password"`, `name="_csrf"`}},
		{name: "member cannot use the console", path: "/", usr: &member, wantCode: http.StatusSeeOther, wantLocation: "/login"},
		{name: "inactive admin", path: "/", usr: &inactive, wantCode: http.StatusSeeOther, wantLocation: "/login"},
		{name: "unknown user (backend 401)", path: "/", usr: userPtr(user.User{ID: "ghost"}), wantCode: http.StatusSeeOther, wantLocation: "/login"},
		{name: "dashboard", path: "/", usr: &superAdmin, wantBody: []string{"Overview", "Audit Log", "Super"}},
		{name: "unknown page", path: "/lol", usr: &superAdmin, wantCode: http.StatusNotFound},
		{name: "hr manager on hotels", path: "/hotels", usr: &hrManager, wantCode: http.StatusForbidden, wantBody: []string{"permission denied"}},
		{name: "support on audit log", path: "/audit", usr: &support, wantCode: http.StatusForbidden},
		{name: "support on users", path: "/users", usr: &support, wantBody: []string{"member@test.cd"}},
		{name: "menu is role gated", path: "/", usr: &hrManager, wantBody: []string{"Job Offers"}, wantNotBody: []string{"Hotels", "Audit Log"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			checkResponse(t, tt, app.do(tt))
		})
	}
}

func TestServer_expiredSession(t *testing.T) {
	app := newTestApp(t)

	req, rec := newRequest(http.MethodGet, "/hotels", nil, nil)
	req.AddCookie(&http.Cookie{Name: testCookie, Value: signToken(admin.ID, -time.Minute)})
	app.server.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	c, ok := cookie(rec, testCookie)
	require.True(t, ok, "session cookie cleared")
	assert.Equal(t, -1, c.MaxAge)
	_, ok = cookie(rec, flashCookie)
	assert.True(t, ok, "expired session toast")
	assert.Zero(t, app.backend.called("GET /auth/me"))
}

func TestServer_forgedToken(t *testing.T) {
	app := newTestApp(t)
	checkResponse(t, httpTest{wantBody: []string{member.Email}}, app.do(httpTest{path: "/users", usr: &admin}))
	meCalls := app.backend.called("GET /auth/me")

	// same subject as the cached admin session, signed with another key
	req, rec := newRequest(http.MethodGet, "/users", nil, nil)
	req.AddCookie(&http.Cookie{Name: testCookie, Value: signTokenWith("attacker-key", admin.ID, time.Hour)})
	app.server.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.True(t, strings.HasPrefix(rec.Header().Get(echo.HeaderLocation), loginPath))
	assert.NotContains(t, rec.Body.String(), member.Email)
	assert.Equal(t, meCalls+1, app.backend.called("GET /auth/me"), "the backend resolves the new token")
	assert.Equal(t, 1, app.backend.called("GET /users"))
}

func TestServer_logoutForgetsSession(t *testing.T) {
	app := newTestApp(t)
	token := signToken(admin.ID, time.Hour)
	get := func() *httptest.ResponseRecorder {
		req, rec := newRequest(http.MethodGet, "/", nil, nil)
		req.AddCookie(&http.Cookie{Name: testCookie, Value: token})
		app.server.ServeHTTP(rec, req)
		return rec
	}

	require.Equal(t, http.StatusOK, get().Code)
	require.Equal(t, http.StatusOK, get().Code)
	assert.Equal(t, 1, app.backend.called("GET /auth/me"), "cached per token")

	req, rec := newRequest(http.MethodPost, "/logout", nil, nil)
	req.AddCookie(&http.Cookie{Name: testCookie, Value: token})
	app.server.ServeHTTP(rec, req)
	require.Equal(t, http.StatusSeeOther, rec.Code)

	require.Equal(t, http.StatusOK, get().Code)
	assert.Equal(t, 2, app.backend.called("GET /auth/me"), "resolved again after logout")
}

func TestServer_login(t *testing.T) {
	tests := []struct {
		name         string
		form         url.Values
		wantCode     int
		wantLocation string
		wantBody     string
		wantSession  bool
		wantLogins   int
	}{
		{
			name:     "invalid form",
			form:     url.Values{"email": {"lol"}, "password": {""}},
			wantCode: http.StatusUnprocessableEntity, wantBody: "this field is required",
		},
		{
			name:     "wrong password",
			form:     url.Values{"email": {admin.Email}, "password": {"nope"}},
			wantCode: http.StatusUnprocessableEntity, wantBody: "invalid credentials", wantLogins: 1,
		},
		{
			name:     "member",
			form:     url.Values{"email": {member.Email}, "password": {testPassword}},
			wantCode: http.StatusForbidden, wantBody: errConsoleDenied, wantLogins: 1,
		},
		{
			name:     "ok",
			form:     url.Values{"email": {" ADMIN@test.cd "}, "password": {testPassword}, "next": {"/hotels?page=2"}},
			wantCode: http.StatusSeeOther, wantLocation: "/hotels?page=2", wantSession: true, wantLogins: 1,
		},
		{
			name:     "ok (external next)",
			form:     url.Values{"email": {admin.Email}, "password": {testPassword}, "next": {"//evil.com"}},
			wantCode: http.StatusSeeOther, wantLocation: "/", wantSession: true, wantLogins: 1,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := newTestApp(t)
			req, rec := newRequest(http.MethodPost, "/login", tt.form, nil)
			app.server.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantCode, rec.Code)
			assert.Equal(t, tt.wantLocation, rec.Header().Get(echo.HeaderLocation))
			if tt.wantBody != "" {
				assert.Contains(t, rec.Body.String(), tt.wantBody)
				assert.NotContains(t, rec.Body.String(), testPassword)
			}
			c, ok := cookie(rec, testCookie)
			assert.Equal(t, tt.wantSession, ok)
			if ok {
				assert.True(t, c.HttpOnly)
				assert.LessOrEqual(t, c.MaxAge, int(time.Hour.Seconds()))
			}
			assert.Equal(t, tt.wantLogins, app.backend.called("POST /auth/login"))
		})
	}
}

func TestServer_csrf(t *testing.T) {
	app := newTestApp(t)

	body := url.Values{"email": {admin.Email}, "password": {testPassword}}
	req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(body.Encode()))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	rec := httptest.NewRecorder()
	app.server.ServeHTTP(rec, req)

	assert.GreaterOrEqual(t, rec.Code, http.StatusBadRequest)
	assert.Zero(t, app.backend.called("POST /auth/login"))
}

func TestServer_logout(t *testing.T) {
	app := newTestApp(t)
	rec := app.do(httpTest{method: http.MethodPost, path: "/logout", usr: &admin})

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	c, ok := cookie(rec, testCookie)
	require.True(t, ok)
	assert.Equal(t, -1, c.MaxAge)
}

func TestServer_flash(t *testing.T) {
	app := newTestApp(t)

	// the login redirect carries the welcome toast to the next page
	req, rec := newRequest(http.MethodPost, "/login", url.Values{"email": {admin.Email}, "password": {testPassword}}, nil)
	app.server.ServeHTTP(rec, req)
	require.Equal(t, http.StatusSeeOther, rec.Code)
	flash, ok := cookie(rec, flashCookie)
	require.True(t, ok)

	req, rec = newRequest(http.MethodGet, "/", nil, &admin)
	req.AddCookie(flash)
	app.server.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Welcome back, Ada.")
	cleared, ok := cookie(rec, flashCookie)
	require.True(t, ok)
	assert.Equal(t, -1, cleared.MaxAge)

	// tampered toasts are dropped
	flash.Value = strings.Replace(flash.Value, ".", ".x", 1)
	req, rec = newRequest(http.MethodGet, "/", nil, &admin)
	req.AddCookie(flash)
	app.server.ServeHTTP(rec, req)
	assert.NotContains(t, rec.Body.String(), "Welcome back")
}

func TestSafeNext(t *testing.T) {
	for next, want := range map[string]string{
		"":               "/",
		"/hotels":        "/hotels",
		"//evil.com":     "/",
		"/\\evil.com":    "/",
		"https://evil":   "/",
		"/users?page=2":  "/users?page=2",
		"javascript:lol": "/",
	} {
		assert.Equal(t, want, safeNext(next), next)
	}
}
