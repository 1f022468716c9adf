package echoconsole

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"
	"github.com/pkg/errors"

	"github.com/trezcool/confadmin/core"
	"github.com/trezcool/confadmin/core/audit"
	"github.com/trezcool/confadmin/core/user"
	"github.com/trezcool/confadmin/fs"
	"github.com/trezcool/confadmin/services/backend"
	"github.com/trezcool/confadmin/storage/cache"
)

const csrfField = "_csrf"

type (
	ServerDeps struct {
		Conf           *core.Config
		Logger         core.Logger
		Backend        *backend.Client
		UserSvc        *user.Service
		AuditSvc       *audit.Service
		Cache          *cache.Query
		Validate       *validator.Validate
		Translator     ut.Translator
		DisableReqLogs bool
	}

	Server struct {
		conf       *core.Config
		logger     core.Logger
		backend    *backend.Client
		userSvc    *user.Service
		auditSvc   *audit.Service
		cache      *cache.Query
		validate   *validator.Validate
		translator ut.Translator

		app      *echo.Echo
		renderer *renderer
		counters map[string]counter
		errors   chan error
		shutdown chan os.Signal
	}
)

func NewServer(deps ServerDeps) (*Server, error) {
	rdr, err := newRenderer(appfs.FS, appfs.ConsoleTemplatesDir)
	if err != nil {
		return nil, errors.Wrap(err, "parsing console templates")
	}

	s := &Server{
		conf:       deps.Conf,
		logger:     deps.Logger,
		backend:    deps.Backend,
		userSvc:    deps.UserSvc,
		auditSvc:   deps.AuditSvc,
		cache:      deps.Cache,
		validate:   deps.Validate,
		translator: deps.Translator,
		app:        echo.New(),
		renderer:   rdr,
		counters:   make(map[string]counter),
		errors:     make(chan error, 1),
		shutdown:   make(chan os.Signal, 1),
	}
	signal.Notify(s.shutdown, os.Interrupt, syscall.SIGTERM)
	s.setup(deps.DisableReqLogs)
	return s, nil
}

func (s *Server) setup(disableReqLogs bool) {
	s.app.HideBanner = true
	s.app.Server.ReadTimeout = s.conf.Server.ReadTimeout
	s.app.Server.WriteTimeout = s.conf.Server.WriteTimeout

	s.app.Pre(middleware.RemoveTrailingSlash())
	if !disableReqLogs {
		s.app.Use(middleware.Logger())
	}
	// do not recover in DEV|TEST mode
	if !(s.conf.Debug || s.conf.TestMode) {
		s.app.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{LogLevel: log.ERROR}))
	}
	s.app.Use(middleware.SecureWithConfig(middleware.SecureConfig{
		XSSProtection:      "1; mode=block",
		ContentTypeNosniff: "nosniff",
		XFrameOptions:      "DENY",
		ReferrerPolicy:     "same-origin",
	}))
	s.app.Use(middleware.CSRFWithConfig(middleware.CSRFConfig{
		TokenLookup:    "form:" + csrfField,
		CookieName:     csrfField,
		CookiePath:     "/",
		CookieHTTPOnly: true,
		CookieSecure:   s.conf.Session.CookieSecure,
		CookieSameSite: http.SameSiteLaxMode,
	}))

	s.app.Renderer = s.renderer
	s.app.HTTPErrorHandler = newAppHTTPErrorHandler(s.logger, s.SignalShutdown, s)
	s.app.Debug = s.conf.Debug

	s.app.StaticFS("/static", echo.MustSubFS(appfs.FS, appfs.StaticDir))

	s.app.GET(loginPath, s.loginPage)
	s.app.POST(loginPath, s.login)
	s.app.POST("/logout", s.logout)

	console := s.app.Group("", s.authenticate, s.authorize)
	console.GET("/", s.dashboard)

	s.registerUsers(console.Group("/users"))
	s.registerEvents(console)
	s.registerHospitality(console)
	s.registerPartners(console)
	s.registerCareers(console)
	s.registerContent(console)
	s.registerQRLogs(console.Group("/qr-logs"))
	s.registerAudit(console.Group("/audit"))
}

func (s *Server) Start() {
	if err := s.app.Start(s.conf.Server.Addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		s.errors <- err
	}
}

// Errors receives the error the server failed to start or serve with.
func (s *Server) Errors() <-chan error {
	return s.errors
}

// ShutdownSignal receives OS interrupts and the shutdown requests of handlers.
func (s *Server) ShutdownSignal() <-chan os.Signal {
	return s.shutdown
}

func (s *Server) SignalShutdown() {
	select {
	case s.shutdown <- syscall.SIGTERM:
	default:
	}
}

func (s *Server) Shutdown(ctx context.Context) error {
	signal.Stop(s.shutdown)
	return s.app.Shutdown(ctx)
}

func (s *Server) Close() error {
	return s.app.Close()
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) { // for tests
	s.app.ServeHTTP(w, r)
}
