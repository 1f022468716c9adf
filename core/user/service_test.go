package user_test

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/confadmin/core"
	"github.com/trezcool/confadmin/core/user"
	"github.com/trezcool/confadmin/fs"
	"github.com/trezcool/confadmin/services/email"
	"github.com/trezcool/confadmin/services/logger"
)

var errNotFound = errors.New("not found")

type fakeRepo struct {
	users map[string]user.User
	kycs  map[string]user.KYC
	calls []string
}

func (r *fakeRepo) ListUsers(context.Context) ([]user.User, error) {
	out := make([]user.User, 0, len(r.users))
	for _, id := range []string{"sa", "admin", "support", "member"} {
		if u, ok := r.users[id]; ok {
			out = append(out, u)
		}
	}
	return out, nil
}

func (r *fakeRepo) GetUser(_ context.Context, id string) (user.User, error) {
	u, ok := r.users[id]
	if !ok {
		return user.User{}, errNotFound
	}
	return u, nil
}

func (r *fakeRepo) UpdateUserRoles(_ context.Context, id string, roles []string) (user.User, error) {
	r.calls = append(r.calls, "roles:"+id)
	u := r.users[id]
	u.Roles = roles
	r.users[id] = u
	return u, nil
}

func (r *fakeRepo) UpdateUserStatus(_ context.Context, id string, isActive bool) (user.User, error) {
	r.calls = append(r.calls, "status:"+id)
	u := r.users[id]
	u.IsActive = isActive
	r.users[id] = u
	return u, nil
}

func (r *fakeRepo) DeleteUser(_ context.Context, id string) error {
	r.calls = append(r.calls, "delete:"+id)
	delete(r.users, id)
	return nil
}

func (r *fakeRepo) GetUserKYC(_ context.Context, id string) (user.KYC, error) {
	k, ok := r.kycs[id]
	if !ok {
		return user.KYC{}, errNotFound
	}
	return k, nil
}

func (r *fakeRepo) ReviewUserKYC(_ context.Context, id string, decision user.KYCDecision) (user.KYC, error) {
	r.calls = append(r.calls, "kyc:"+id)
	k := r.kycs[id]
	k.Status = decision.Status
	k.Reason = decision.Reason
	r.kycs[id] = k
	return k, nil
}

func setup(t *testing.T) (*user.Service, *fakeRepo, *emailsvc.ConsoleServiceMock) {
	repo := &fakeRepo{
		users: map[string]user.User{
			"sa":      {ID: "sa", Email: "sa@test.cd", IsActive: true, Roles: []string{user.RoleSuperAdmin}},
			"admin":   {ID: "admin", Email: "admin@test.cd", IsActive: true, Roles: []string{user.RoleAdmin}},
			"support": {ID: "support", Email: "support@test.cd", IsActive: true, Roles: []string{user.RoleSupport}},
			"member":  {ID: "member", FirstName: "Mem", LastName: "Ber", Email: "member@test.cd", IsActive: true, Roles: []string{user.RoleMember}},
		},
		kycs: map[string]user.KYC{
			"member":  {UserID: "member", Status: user.KYCPending},
			"support": {UserID: "support", Status: user.KYCAccepted},
		},
	}

	require.NoError(t, core.ParseEmailTemplates(appfs.FS, appfs.EmailTemplatesDir, true))
	conf := &core.Config{AppName: "Console", ConsoleBaseURL: "http://console.test", DefaultFromEmail: "noreply@console.test"}
	mailSvc := emailsvc.NewConsoleServiceMock(conf, logsvc.NopLogger{})

	translator := core.NewTranslator()
	validate := core.NewValidate(translator)
	user.InitValidators(validate, translator)
	return user.NewService(repo, mailSvc, validate), repo, mailSvc
}

func TestService_Query(t *testing.T) {
	svc, _, _ := setup(t)

	users, err := svc.Query(context.Background(), user.QueryFilter{Role: "member"})
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, "member", users[0].ID)
}

func TestService_AssignRoles(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name      string
		actor     string
		target    string
		roles     []string
		wantErr   error
		wantField string
		wantCall  bool
	}{
		{name: "invalid role", actor: "sa", target: "member", roles: []string{"lol"}, wantField: "roles"},
		{name: "no roles", actor: "sa", target: "member", roles: nil, wantField: "roles"},
		{name: "self", actor: "admin", target: "admin", roles: []string{user.RoleSupport}, wantErr: user.ErrPermissionDenied},
		{name: "outranked target", actor: "admin", target: "sa", roles: []string{user.RoleSupport}, wantErr: user.ErrPermissionDenied},
		{name: "escalation", actor: "admin", target: "member", roles: []string{user.RoleSuperAdmin}, wantField: "roles"},
		{name: "ok", actor: "admin", target: "member", roles: []string{"event_manager"}, wantCall: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, repo, _ := setup(t)
			actor := repo.users[tt.actor]

			usr, err := svc.AssignRoles(ctx, actor, tt.target, user.RoleAssignment{Roles: tt.roles})
			switch {
			case tt.wantErr != nil:
				assert.True(t, errors.Is(err, tt.wantErr))
			case tt.wantField != "":
				require.Error(t, err)
			default:
				require.NoError(t, err)
				assert.Equal(t, []string{user.RoleEventManager}, usr.Roles)
			}
			assert.Equal(t, tt.wantCall, len(repo.calls) > 0)
		})
	}
}

func TestService_SetActive_Delete(t *testing.T) {
	ctx := context.Background()
	svc, repo, _ := setup(t)
	admin := repo.users["admin"]

	_, err := svc.SetActive(ctx, admin, "admin", false)
	assert.True(t, errors.Is(err, user.ErrPermissionDenied), "cannot deactivate self")

	usr, err := svc.SetActive(ctx, admin, "support", false)
	require.NoError(t, err)
	assert.False(t, usr.IsActive)

	assert.True(t, errors.Is(svc.Delete(ctx, admin, "sa"), user.ErrPermissionDenied))
	require.NoError(t, svc.Delete(ctx, admin, "member"))
	assert.Equal(t, []string{"status:support", "delete:member"}, repo.calls)

	assert.True(t, errors.Is(svc.Delete(ctx, admin, "ghost"), errNotFound))
}

func TestService_DecideKYC(t *testing.T) {
	ctx := context.Background()

	t.Run("reason required to reject", func(t *testing.T) {
		svc, repo, _ := setup(t)
		_, err := svc.DecideKYC(ctx, "member", user.KYCDecision{Status: "rejected"})
		require.Error(t, err)
		assert.Empty(t, repo.calls)
	})

	t.Run("already accepted", func(t *testing.T) {
		svc, repo, _ := setup(t)
		_, err := svc.DecideKYC(ctx, "support", user.KYCDecision{Status: user.KYCAccepted})
		var vErr *core.ValidationError
		require.True(t, errors.As(err, &vErr))
		assert.Empty(t, repo.calls)
	})

	t.Run("rejected & emailed", func(t *testing.T) {
		svc, repo, mailSvc := setup(t)
		kyc, err := svc.DecideKYC(ctx, "member", user.KYCDecision{Status: " Rejected ", Reason: "blurry picture"})
		require.NoError(t, err)
		assert.Equal(t, user.KYCRejected, kyc.Status)
		assert.Equal(t, []string{"kyc:member"}, repo.calls)

		sent := mailSvc.SentMessages()
		require.Len(t, sent, 1)
		assert.Equal(t, "member@test.cd", sent[0].To[0].Address)
		assert.Equal(t, []string{"kyc"}, sent[0].Categories)
		assert.Contains(t, sent[0].TextContent, "Hello Mem Ber")
		assert.Contains(t, sent[0].TextContent, "Reason: blurry picture")
		assert.Contains(t, sent[0].HTMLContent, "<strong>rejected</strong>")
	})
}
