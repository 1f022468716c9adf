package main

import (
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"io"
	"syscall"

	"golang.org/x/term"

	"github.com/trezcool/confadmin/core/audit"
	"github.com/trezcool/confadmin/services/backend"
)

var (
	readPasswordFunc = term.ReadPassword // mockable

	errHelp = errors.New("help provided")
)

type commandLine struct {
	db       *sql.DB
	client   *backend.Client
	auditSvc *audit.Service
	out      io.Writer
}

func (cli *commandLine) printUsage() {
	fmt.Fprintln(cli.out, "Usage:")
	fmt.Fprintln(cli.out, "  migrate COMMAND [ARGS] - run a goose command (up, down, status, version, redo, reset...)")
	fmt.Fprintln(cli.out, "  token -email EMAIL - log in to the platform API and print a bearer token")
	fmt.Fprintln(cli.out, "  audit [-resource RESOURCE] [-action ACTION] [-limit N] - print the latest audit entries")
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	tokenCmd := flag.NewFlagSet("token", flag.ContinueOnError)
	tokenEmail := tokenCmd.String("email", "", "The console user's email. The password will be prompted next.")

	auditCmd := flag.NewFlagSet("audit", flag.ContinueOnError)
	auditResource := auditCmd.String("resource", "", "Only show entries about this resource.")
	auditAction := auditCmd.String("action", "", "Only show entries with this action.")
	auditLimit := auditCmd.Int("limit", audit.DefaultLimit, "Maximum number of entries.")

	switch args[1] {
	case "migrate":
		if len(args) < 3 {
			cli.printUsage()
			return errHelp
		}
		return cli.migrate(args[2:])

	case "token":
		if err := tokenCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *tokenEmail == "" {
			tokenCmd.Usage()
			return errHelp
		}
		fmt.Fprint(cli.out, "Enter password:")
		pwd, err := readPasswordFunc(int(syscall.Stdin))
		fmt.Fprintln(cli.out)
		if err != nil {
			return err
		}
		if len(pwd) == 0 {
			tokenCmd.Usage()
			return errHelp
		}
		return cli.token(*tokenEmail, string(pwd))

	case "audit":
		if err := auditCmd.Parse(args[2:]); err != nil {
			return err
		}
		return cli.audit(audit.QueryFilter{Resource: *auditResource, Action: *auditAction, Limit: *auditLimit})

	default:
		cli.printUsage()
		return errHelp
	}
}
