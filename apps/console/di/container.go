// Package di wires the console's dependencies with a dig container.
package di

import (
	"context"
	"fmt"
	"log"
	"time"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"go.uber.org/dig"
	"go.uber.org/zap"

	echoconsole "github.com/trezcool/confadmin/apps/console/echo"
	"github.com/trezcool/confadmin/core"
	"github.com/trezcool/confadmin/core/audit"
	"github.com/trezcool/confadmin/core/user"
	"github.com/trezcool/confadmin/fs"
	"github.com/trezcool/confadmin/services/backend"
	"github.com/trezcool/confadmin/services/email"
	"github.com/trezcool/confadmin/services/logger"
	"github.com/trezcool/confadmin/storage/cache"
	"github.com/trezcool/confadmin/storage/database"
	"github.com/trezcool/confadmin/storage/database/inmem"
	sqlxrepos "github.com/trezcool/confadmin/storage/database/sqlx"
)

const setUpTimeout = 30 * time.Second

type (
	DBLoggerParam struct {
		dig.In
		Logger core.Logger `name:"dbLogger"`
	}

	serverParams struct {
		dig.In
		Conf       *core.Config
		Logger     core.Logger
		Backend    *backend.Client
		UserSvc    *user.Service
		AuditSvc   *audit.Service
		Cache      *cache.Query
		Validate   *validator.Validate
		Translator ut.Translator
	}

	// Cleanup releases the resources opened while building the container, in reverse order.
	Cleanup struct {
		fns []func() error
	}
)

func (c *Cleanup) add(fn func() error) {
	c.fns = append(c.fns, fn)
}

// Run calls every cleanup function; the first error is returned.
func (c *Cleanup) Run() error {
	var first error
	for i := len(c.fns) - 1; i >= 0; i-- {
		if err := c.fns[i](); err != nil && first == nil {
			first = err
		}
	}
	return first
}

func newZapLogger(conf *core.Config) (*zap.Logger, error) {
	return logsvc.NewZapLogger(conf)
}

func newLogger(zl *zap.Logger, conf *core.Config, cleanup *Cleanup) core.Logger {
	logger := logsvc.NewRollbarLogger(zl.Named("console"), conf)
	cleanup.add(func() error {
		logger.Sync()
		return nil
	})
	return logger
}

func newDBLogger(zl *zap.Logger, conf *core.Config) core.Logger {
	return logsvc.NewRollbarLogger(zl.Named("db"), conf)
}

func newEmailService(conf *core.Config, logger core.Logger) core.EmailService {
	if conf.Debug {
		return emailsvc.NewConsoleService(conf, logger)
	}
	return emailsvc.NewSendgridService(conf, logger)
}

func newCacheStore(conf *core.Config, logger core.Logger, cleanup *Cleanup) (cache.Store, error) {
	if conf.Cache.Driver != "redis" {
		return cache.NewMemoryStore(), nil
	}

	client := cache.NewRedisClient(conf)
	cleanup.add(client.Close)
	store := cache.NewRedisStore(client, "console")

	ctx, cancel := context.WithTimeout(context.Background(), setUpTimeout)
	defer cancel()
	if err := store.Ping(ctx); err != nil {
		return nil, errors.Wrap(err, "pinging redis")
	}
	logger.Info(fmt.Sprintf("cache: redis at %s", conf.Cache.RedisAddr))
	return store, nil
}

func newCacheQuery(store cache.Store, conf *core.Config, logger core.Logger) *cache.Query {
	return cache.NewQuery(store, conf.Cache.TTL, logger)
}

func newAuditRepository(conf *core.Config, loggerParam DBLoggerParam, cleanup *Cleanup) (audit.Repository, error) {
	if conf.Database.Driver != "postgres" {
		return inmemdb.NewAuditRepository(), nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), setUpTimeout)
	defer cancel()

	if err := database.CreateIfNotExist(ctx, conf); err != nil {
		return nil, errors.Wrap(err, "creating database")
	}
	db, err := database.Open(conf)
	if err != nil {
		return nil, err
	}
	cleanup.add(func() error {
		if err := db.Close(); err != nil {
			loggerParam.Logger.Error("Failed to close", err)
			return err
		}
		return nil
	})

	if err = database.Ping(ctx, db); err != nil {
		return nil, err
	}
	if err = database.Migrate(db.DB); err != nil {
		return nil, err
	}
	return sqlxrepos.NewAuditRepository(db), nil
}

func newValidate(translator ut.Translator) (*validator.Validate, error) {
	validate := core.NewValidate(translator)
	user.InitValidators(validate, translator)
	return validate, core.ParseEmailTemplates(appfs.FS, appfs.EmailTemplatesDir, true)
}

func newUserService(client *backend.Client, mailSvc core.EmailService, validate *validator.Validate) *user.Service {
	return user.NewService(client, mailSvc, validate)
}

func newServer(p serverParams) (*echoconsole.Server, error) {
	return echoconsole.NewServer(echoconsole.ServerDeps{
		Conf:       p.Conf,
		Logger:     p.Logger,
		Backend:    p.Backend,
		UserSvc:    p.UserSvc,
		AuditSvc:   p.AuditSvc,
		Cache:      p.Cache,
		Validate:   p.Validate,
		Translator: p.Translator,
	})
}

// New returns a new dependency injection dig.Container
func New() *dig.Container {
	c := dig.New()

	must(c.Provide(core.NewConfig))
	must(c.Provide(func() *Cleanup { return new(Cleanup) }))
	must(c.Provide(newZapLogger))
	must(c.Provide(newLogger))
	must(c.Provide(newDBLogger, dig.Name("dbLogger")))
	must(c.Provide(newEmailService))
	must(c.Provide(newCacheStore))
	must(c.Provide(newCacheQuery))
	must(c.Provide(newAuditRepository))
	must(c.Provide(audit.NewService))
	must(c.Provide(core.NewTranslator))
	must(c.Provide(newValidate))
	must(c.Provide(backend.NewClient))
	must(c.Provide(newUserService))
	must(c.Provide(newServer))

	return c
}

// must exits program if err happened
func must(err error) {
	if err != nil {
		log.Fatal(errors.Wrap(err, "failed to provide dependency").Error())
	}
}
