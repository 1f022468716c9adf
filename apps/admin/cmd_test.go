package main

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/confadmin/core"
	"github.com/trezcool/confadmin/core/audit"
	"github.com/trezcool/confadmin/core/user"
	"github.com/trezcool/confadmin/services/backend"
	"github.com/trezcool/confadmin/services/logger"
	"github.com/trezcool/confadmin/storage/database/inmem"
)

var consoleUsers = map[string]user.User{
	"admin@test.cd":  {ID: "admin", Email: "admin@test.cd", IsActive: true, Roles: []string{user.RoleAdmin, user.RoleSupport}},
	"member@test.cd": {ID: "member", Email: "member@test.cd", IsActive: true, Roles: []string{user.RoleMember}},
}

func setup(t *testing.T) (*commandLine, *bytes.Buffer) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var creds backend.Credentials
		_ = json.NewDecoder(r.Body).Decode(&creds)
		w.Header().Set("Content-Type", "application/json")

		usr, ok := consoleUsers[creds.Email]
		if r.URL.Path != "/auth/login" || !ok || creds.Password != "s3cret!" {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"message": "invalid credentials"}`))
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"data": backend.LoginResult{Token: "t0ken-" + usr.ID, User: usr},
		})
	}))
	t.Cleanup(ts.Close)

	mockDB, _, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = mockDB.Close() })

	conf := &core.Config{
		AppName:  "Console",
		Build:    "test",
		TestMode: true,
		Backend:  core.BackendConfig{APIBaseURL: ts.URL, Timeout: 5 * time.Second},
	}
	log := logsvc.NopLogger{}
	out := new(bytes.Buffer)

	return &commandLine{
		db:       mockDB,
		client:   backend.NewClient(conf, log),
		auditSvc: audit.NewService(inmemdb.NewAuditRepository(), log),
		out:      out,
	}, out
}

type cliTest struct {
	name       string
	args       []string // without program name
	wantErr    error
	wantErrStr string
	wantOut    []string
	extra      interface{}
}

func Test_commandLine_migrate(t *testing.T) {
	cli, _ := setup(t)

	gooseRunFunc = func(command string, db *sql.DB, args ...string) error {
		switch command {
		case "up", "up-by-one", "down", "fix", "redo", "reset", "status", "version": // pass
		case "up-to":
			if len(args) == 0 {
				return fmt.Errorf("up-to must be of form: goose [OPTIONS] DRIVER DBSTRING up-to VERSION")
			}
			if _, err := strconv.ParseInt(args[0], 10, 64); err != nil {
				return fmt.Errorf("version must be a number (got '%s')", args[0])
			}
		case "create":
			if len(args) == 0 {
				return fmt.Errorf("create must be of form: goose [OPTIONS] DRIVER DBSTRING create NAME [go|sql]")
			}
		case "down-to":
			if len(args) == 0 {
				return fmt.Errorf("down-to must be of form: goose [OPTIONS] DRIVER DBSTRING down-to VERSION")
			}
			if _, err := strconv.ParseInt(args[0], 10, 64); err != nil {
				return fmt.Errorf("version must be a number (got '%s')", args[0])
			}
		default:
			return fmt.Errorf("%q: no such command", command)
		}
		return nil
	}

	tests := []cliTest{
		{name: "no subcommand", args: []string{"migrate"}, wantErr: errHelp},
		{name: "unknown subcommand", args: []string{"migrate", "lol"}, wantErrStr: "\"lol\": no such command"},
		{name: "up-to: no args", args: []string{"migrate", "up-to"}, wantErrStr: "up-to must be of form: goose [OPTIONS] DRIVER DBSTRING up-to VERSION"},
		{name: "up-to: non-int arg", args: []string{"migrate", "up-to", "lol"}, wantErrStr: "version must be a number (got 'lol')"},
		{name: "create: no args", args: []string{"migrate", "create"}, wantErrStr: "create must be of form: goose [OPTIONS] DRIVER DBSTRING create NAME [go|sql]"},
		{name: "down-to: no args", args: []string{"migrate", "down-to"}, wantErrStr: "down-to must be of form: goose [OPTIONS] DRIVER DBSTRING down-to VERSION"},
		{name: "down-to: non-int arg", args: []string{"migrate", "down-to", "lol"}, wantErrStr: "version must be a number (got 'lol')"},
		{name: "up", args: []string{"migrate", "up"}},
		{name: "up-by-one", args: []string{"migrate", "up-by-one"}},
		{name: "up-to", args: []string{"migrate", "up-to", "2"}},
		{name: "down", args: []string{"migrate", "down"}},
		{name: "down-to", args: []string{"migrate", "down-to", "1"}},
		{name: "redo", args: []string{"migrate", "redo"}},
		{name: "reset", args: []string{"migrate", "reset"}},
		{name: "status", args: []string{"migrate", "status"}},
		{name: "version", args: []string{"migrate", "version"}},
		{name: "create", args: []string{"migrate", "create", "audit_index", "sql"}},
		{name: "fix", args: []string{"migrate", "fix"}},
	}
	for _, tt := range tests {
		args := append([]string{"admin"}, tt.args...)

		t.Run(tt.name, func(t *testing.T) {
			err := cli.run(args)
			switch {
			case tt.wantErr != nil:
				assert.Equal(t, tt.wantErr, err)
			case tt.wantErrStr != "":
				assert.EqualError(t, err, tt.wantErrStr)
			default:
				assert.NoError(t, err)
			}
		})
	}

	t.Run("no database", func(t *testing.T) {
		noDB := *cli
		noDB.db = nil
		assert.Equal(t, errNoDatabase, noDB.run([]string{"admin", "migrate", "up"}))
	})
}

func Test_commandLine_token(t *testing.T) {
	type extra struct {
		pwd string
	}
	tests := []cliTest{
		{name: "no command", wantErr: errHelp},
		{name: "unknown command", args: []string{"lol"}, wantErr: errHelp},
		{name: "no args", args: []string{"token"}, wantErr: errHelp},
		{name: "email but no password", args: []string{"token", "-email", "admin@test.cd"}, wantErr: errHelp},
		{name: "wrong password", args: []string{"token", "-email", "admin@test.cd"}, extra: extra{pwd: "lol"}, wantErrStr: "invalid credentials"},
		{name: "member", args: []string{"token", "-email", "member@test.cd"}, extra: extra{pwd: "s3cret!"}, wantErr: errNotConsoleUser},
		{
			name: "ok", args: []string{"token", "-email", " ADMIN@test.cd "}, extra: extra{pwd: "s3cret!"},
			wantOut: []string{"roles: ADMIN, SUPPORT", "t0ken-admin"},
		},
	}
	for _, tt := range tests {
		args := append([]string{"admin"}, tt.args...)

		readPasswordFunc = func(fd int) ([]byte, error) {
			if extra, ok := tt.extra.(extra); ok {
				return []byte(extra.pwd), nil
			}
			return nil, nil
		}

		t.Run(tt.name, func(t *testing.T) {
			cli, out := setup(t)
			err := cli.run(args)
			switch {
			case tt.wantErr != nil:
				assert.Equal(t, tt.wantErr, err)
			case tt.wantErrStr != "":
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErrStr)
			default:
				require.NoError(t, err)
			}
			for _, want := range tt.wantOut {
				assert.Contains(t, out.String(), want)
			}
			assert.NotContains(t, out.String(), "s3cret!")
		})
	}
}

func Test_commandLine_audit(t *testing.T) {
	cli, out := setup(t)
	ctx := context.Background()
	actor := audit.Actor{ID: "admin", Email: "admin@test.cd"}
	cli.auditSvc.Record(ctx, actor, audit.ActionCreate, "hotels", "h3", "created hotel Serena")
	cli.auditSvc.Record(ctx, actor, audit.ActionDelete, "blogs", "b1", "deleted blog Launch")

	require.NoError(t, cli.run([]string{"admin", "audit"}))
	assert.Contains(t, out.String(), "created hotel Serena")
	assert.Contains(t, out.String(), "deleted blog Launch")

	out.Reset()
	require.NoError(t, cli.run([]string{"admin", "audit", "-resource", "hotels"}))
	assert.Contains(t, out.String(), "created hotel Serena")
	assert.NotContains(t, out.String(), "deleted blog Launch")

	out.Reset()
	require.NoError(t, cli.run([]string{"admin", "audit", "-action", "delete", "-limit", "1"}))
	assert.Contains(t, out.String(), "admin@test.cd")
	assert.NotContains(t, out.String(), "created hotel Serena")
}
