package main

import (
	"context"
	"log"
	"os"

	"github.com/trezcool/confadmin/core"
	"github.com/trezcool/confadmin/core/audit"
	"github.com/trezcool/confadmin/services/backend"
	"github.com/trezcool/confadmin/services/logger"
	"github.com/trezcool/confadmin/storage/database"
	"github.com/trezcool/confadmin/storage/database/inmem"
	"github.com/trezcool/confadmin/storage/database/sqlx"
)

func main() {
	conf, err := core.NewConfig()
	errAndDie(err)

	zl, err := logsvc.NewZapLogger(conf)
	errAndDie(err)
	logger := logsvc.NewRollbarLogger(zl.Named("admin"), conf)
	defer logger.Sync()

	cli := commandLine{
		client: backend.NewClient(conf, logger),
		out:    os.Stdout,
	}

	// set up DB
	var auditRepo audit.Repository
	if conf.Database.Driver == "postgres" {
		db, err := database.Open(conf)
		errAndDie(err)
		defer db.Close()
		errAndDie(database.Ping(context.Background(), db))

		cli.db = db.DB
		auditRepo = sqlxrepos.NewAuditRepository(db)
	} else {
		auditRepo = inmemdb.NewAuditRepository()
	}
	cli.auditSvc = audit.NewService(auditRepo, logger)

	// start CLI
	if err := cli.run(os.Args); err != nil {
		if err != errHelp {
			logger.Error(err.Error(), err)
		}
		logger.Sync()
		os.Exit(1)
	}
}

func errAndDie(err error) {
	if err != nil {
		log.Fatal(err)
	}
}
