package user

import (
	"sort"
	"strings"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/trezcool/confadmin/core"
)

var (
	allRolesTag  = "allroles"
	allRolesText = "invalid roles"

	kycReasonTag  = "kycreason"
	kycReasonText = "a reason is required to reject a KYC file"

	sortedRoles = sortRoles(AllRoles)
)

func sortRoles(roles []string) []string {
	s := append([]string{}, roles...)
	sort.Strings(s)
	return s
}

// InitValidators registers the user validators & their translations.
func InitValidators(validate *validator.Validate, translator ut.Translator) {
	_ = validate.RegisterValidation(allRolesTag, allRolesValidation)
	core.RegisterCustomTranslation(validate, translator, allRolesTag, allRolesText)

	validate.RegisterStructValidation(kycDecisionStructValidation, KYCDecision{})
	core.RegisterCustomTranslation(validate, translator, kycReasonTag, kycReasonText)
}

// RoleAssignment is the payload of the "edit roles" modal.
type RoleAssignment struct {
	Roles []string `form:"roles" json:"roles" label:"Roles" input:"roles" validate:"required,min=1,allroles"`
}

func (ra *RoleAssignment) Validate(validate *validator.Validate) error {
	for i, r := range ra.Roles {
		ra.Roles[i] = NormalizeRole(r)
	}
	return validate.Struct(ra)
}

// StatusChange activates or deactivates an account.
type StatusChange struct {
	IsActive bool `form:"is_active" json:"is_active"`
}

// KYCDecision is the payload of the KYC review modal.
type KYCDecision struct {
	Status string `form:"status" json:"status" validate:"required,oneof=accepted rejected"`
	Reason string `form:"reason" json:"reason,omitempty" label:"Reason" input:"textarea" validate:"max=500"`
}

func (kd *KYCDecision) Validate(validate *validator.Validate) error {
	kd.Status = core.CleanString(kd.Status, true /* lower */)
	kd.Reason = strings.TrimSpace(kd.Reason)
	return validate.Struct(kd)
}

// Custom Validators

// allRolesValidation checks that provided user roles are all in AllRoles
func allRolesValidation(fl validator.FieldLevel) bool {
	roles, ok := fl.Field().Interface().([]string)
	if !ok {
		return false
	}
	for _, role := range roles {
		idx := sort.SearchStrings(sortedRoles, role)
		if idx >= len(sortedRoles) || sortedRoles[idx] != role {
			return false
		}
	}
	return true
}

// kycDecisionStructValidation requires a reason when rejecting.
func kycDecisionStructValidation(sl validator.StructLevel) {
	if kd, ok := sl.Current().Interface().(KYCDecision); ok {
		if kd.Status == KYCRejected && kd.Reason == "" {
			sl.ReportError(kd.Reason, "reason", "Reason", kycReasonTag, "")
		}
	}
}
