package echoconsole

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
)

const (
	flashCookie  = "flash"
	flashSuccess = "success"
	flashError   = "error"
)

// toast is a message shown once at the top of a page.
type toast struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

func (s *Server) signFlash(payload string) string {
	mac := hmac.New(sha256.New, []byte(s.conf.SecretKey))
	mac.Write([]byte(payload))
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}

// setFlash carries a toast to the next page, across a redirect.
func (s *Server) setFlash(ctx echo.Context, kind, message string) {
	data, _ := json.Marshal([]toast{{Kind: kind, Message: message}})
	payload := base64.RawURLEncoding.EncodeToString(data)
	ctx.SetCookie(&http.Cookie{
		Name:     flashCookie,
		Value:    payload + "." + s.signFlash(payload),
		Path:     "/",
		HttpOnly: true,
		Secure:   s.conf.Session.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
}

// popFlashes returns the toasts carried by the request and clears them.
func (s *Server) popFlashes(ctx echo.Context) []toast {
	cookie, err := ctx.Cookie(flashCookie)
	if err != nil || cookie.Value == "" {
		return nil
	}
	ctx.SetCookie(&http.Cookie{Name: flashCookie, Path: "/", MaxAge: -1, HttpOnly: true})

	payload, sig, ok := strings.Cut(cookie.Value, ".")
	if !ok || !hmac.Equal([]byte(sig), []byte(s.signFlash(payload))) {
		return nil
	}
	data, err := base64.RawURLEncoding.DecodeString(payload)
	if err != nil {
		return nil
	}
	var toasts []toast
	if err = json.Unmarshal(data, &toasts); err != nil {
		return nil
	}
	return toasts
}
