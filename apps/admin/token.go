package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/pkg/errors"

	"github.com/trezcool/confadmin/core"
	"github.com/trezcool/confadmin/services/backend"
)

var errNotConsoleUser = errors.New("this account cannot use the console")

// token logs a console user in and prints the bearer token, for scripting against the platform API.
func (cli *commandLine) token(email, pwd string) error {
	res, err := cli.client.Login(context.Background(), backend.Credentials{
		Email:    core.CleanString(email, true /* lower */),
		Password: pwd,
	})
	if err != nil {
		return err
	}
	if !res.User.CanUseConsole() {
		return errNotConsoleUser
	}
	fmt.Fprintf(cli.out, "roles: %s\n", strings.Join(res.User.Roles, ", "))
	fmt.Fprintln(cli.out, res.Token)
	return nil
}
