package user

import (
	"context"
	"net/mail"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/trezcool/confadmin/core"
)

var (
	// errors
	ErrPermissionDenied = errors.New("permission denied")

	errNoPermsToSetRoles = "not enough rights to set these roles"
	errAlreadyAccepted   = "this KYC file has already been accepted"
	errAlreadyRejected   = "this KYC file has already been rejected"
)

type (
	// Repository is the backend users resource.
	Repository interface {
		ListUsers(ctx context.Context) ([]User, error)
		GetUser(ctx context.Context, id string) (User, error)
		UpdateUserRoles(ctx context.Context, id string, roles []string) (User, error)
		UpdateUserStatus(ctx context.Context, id string, isActive bool) (User, error)
		DeleteUser(ctx context.Context, id string) error
		GetUserKYC(ctx context.Context, id string) (KYC, error)
		ReviewUserKYC(ctx context.Context, id string, decision KYCDecision) (KYC, error)
	}

	Service struct {
		repo     Repository
		mailSvc  core.EmailService
		validate *validator.Validate
	}
)

func NewService(repo Repository, mailSvc core.EmailService, validate *validator.Validate) *Service {
	return &Service{repo: repo, mailSvc: mailSvc, validate: validate}
}

func (svc *Service) Query(ctx context.Context, filter QueryFilter) ([]User, error) {
	users, err := svc.repo.ListUsers(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "listing users")
	}
	filter.Clean()
	matched := make([]User, 0, len(users))
	for _, u := range users {
		if filter.Match(u) {
			matched = append(matched, u)
		}
	}
	return matched, nil
}

func (svc *Service) GetByID(ctx context.Context, id string) (User, error) {
	usr, err := svc.repo.GetUser(ctx, id)
	return usr, errors.Wrap(err, "getting user")
}

// AssignRoles replaces the roles of user `id`.
// actor cannot manage users that outrank them, nor grant roles above their own max role.
func (svc *Service) AssignRoles(ctx context.Context, actor User, id string, ra RoleAssignment) (User, error) {
	if err := ra.Validate(svc.validate); err != nil {
		return User{}, err
	}
	target, err := svc.repo.GetUser(ctx, id)
	if err != nil {
		return User{}, errors.Wrap(err, "getting user")
	}
	if !CanManage(actor, target) {
		return User{}, ErrPermissionDenied
	}
	if !CanAssign(actor.Roles, ra.Roles) {
		return User{}, core.NewValidationError(nil, core.FieldError{Field: "roles", Error: errNoPermsToSetRoles})
	}
	usr, err := svc.repo.UpdateUserRoles(ctx, id, ra.Roles)
	return usr, errors.Wrap(err, "updating user roles")
}

// SetActive activates or deactivates user `id`. Say No to Suicide! actor cannot deactivate themselves.
func (svc *Service) SetActive(ctx context.Context, actor User, id string, isActive bool) (User, error) {
	target, err := svc.repo.GetUser(ctx, id)
	if err != nil {
		return User{}, errors.Wrap(err, "getting user")
	}
	if !CanManage(actor, target) {
		return User{}, ErrPermissionDenied
	}
	usr, err := svc.repo.UpdateUserStatus(ctx, id, isActive)
	return usr, errors.Wrap(err, "updating user status")
}

// Delete deletes user `id`; actor cannot delete themselves nor a user that outranks them.
func (svc *Service) Delete(ctx context.Context, actor User, id string) error {
	target, err := svc.repo.GetUser(ctx, id)
	if err != nil {
		return errors.Wrap(err, "getting user")
	}
	if !CanManage(actor, target) {
		return ErrPermissionDenied
	}
	return errors.Wrap(svc.repo.DeleteUser(ctx, id), "deleting user")
}

func (svc *Service) GetKYC(ctx context.Context, id string) (KYC, error) {
	kyc, err := svc.repo.GetUserKYC(ctx, id)
	return kyc, errors.Wrap(err, "getting user kyc")
}

// DecideKYC accepts or rejects the KYC file of user `id`, then emails them the outcome.
func (svc *Service) DecideKYC(ctx context.Context, id string, decision KYCDecision) (KYC, error) {
	if err := decision.Validate(svc.validate); err != nil {
		return KYC{}, err
	}
	current, err := svc.repo.GetUserKYC(ctx, id)
	if err != nil {
		return KYC{}, errors.Wrap(err, "getting user kyc")
	}
	switch {
	case decision.Status == KYCAccepted && !current.CanAccept():
		return KYC{}, core.NewValidationError(errors.New(errAlreadyAccepted))
	case decision.Status == KYCRejected && !current.CanReject():
		return KYC{}, core.NewValidationError(errors.New(errAlreadyRejected))
	}

	kyc, err := svc.repo.ReviewUserKYC(ctx, id, decision)
	if err != nil {
		return KYC{}, errors.Wrap(err, "reviewing user kyc")
	}

	if usr, err := svc.repo.GetUser(ctx, id); err == nil && usr.Email != "" {
		svc.sendKYCDecisionMail(usr, kyc)
	}
	return kyc, nil
}

func (svc *Service) sendKYCDecisionMail(usr User, kyc KYC) {
	if svc.mailSvc == nil {
		return
	}
	svc.mailSvc.SendMessages(&core.EmailMessage{
		To:           []mail.Address{{Name: usr.FullName(), Address: usr.Email}},
		Subject:      "Your identity verification",
		Categories:   []string{"kyc"},
		TemplateName: "kyc_decision",
		TemplateData: map[string]interface{}{
			"Name":     usr.FullName(),
			"Accepted": kyc.Status == KYCAccepted,
			"Reason":   kyc.Reason,
		},
	})
}
