package user

import (
	"strings"
	"time"
)

// Roles
const (
	RoleSuperAdmin     = "SUPER_ADMIN"
	RoleAdmin          = "ADMIN"
	RoleEventManager   = "EVENT_MANAGER"
	RoleContentManager = "CONTENT_MANAGER"
	RoleHRManager      = "HR_MANAGER"
	RoleSupport        = "SUPPORT"

	// RoleMember is the platform's end user role; it grants no console access.
	RoleMember = "MEMBER"
)

var (
	AdminRoles   = []string{RoleSuperAdmin, RoleAdmin}
	ManagerRoles = []string{RoleEventManager, RoleContentManager, RoleHRManager}
	ConsoleRoles = getConsoleRoles()
	AllRoles     = append(append([]string{}, ConsoleRoles...), RoleMember)

	rolePriorities = map[string]int{
		// Admins: 30 - 21
		RoleSuperAdmin: 30,
		RoleAdmin:      25,

		// Managers: 20 - 11
		RoleEventManager:   15,
		RoleContentManager: 15,
		RoleHRManager:      15,

		// Support: 10 - 2
		RoleSupport: 5,

		RoleMember: 1,
	}

	Roles = []Role{
		{Name: "Member", Value: RoleMember},
		{Name: "Support", Value: RoleSupport},
		{Name: "HR Manager", Value: RoleHRManager},
		{Name: "Content Manager", Value: RoleContentManager},
		{Name: "Event Manager", Value: RoleEventManager},
		{Name: "Admin", Value: RoleAdmin},
		{Name: "Super Admin", Value: RoleSuperAdmin},
	}
)

func getConsoleRoles() []string {
	all := make([]string, 0, 6)
	all = append(all, AdminRoles...)
	all = append(all, ManagerRoles...)
	all = append(all, RoleSupport)
	return all
}

func RolePriority(role string) int {
	return rolePriorities[NormalizeRole(role)]
}

func MaxRolePriority(roles []string) int {
	var max int
	for _, role := range roles {
		if RolePriority(role) > max {
			max = RolePriority(role)
		}
	}
	return max
}

// NormalizeRole upper-cases a role string ("event_manager" -> "EVENT_MANAGER"): the
// platform API reads and writes roles in upper case.
func NormalizeRole(role string) string {
	return strings.ToUpper(strings.TrimSpace(role))
}

// RoleName returns the display name of role, or role itself if unknown.
func RoleName(role string) string {
	role = NormalizeRole(role)
	for _, r := range Roles {
		if r.Value == role {
			return r.Name
		}
	}
	return role
}

type Role struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// User is a platform account as returned by the backend.
type User struct {
	ID        string    `json:"id"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone,omitempty"`
	Avatar    string    `json:"avatar,omitempty"`
	IsActive  bool      `json:"is_active"`
	Roles     []string  `json:"roles"`
	KYCStatus string    `json:"kyc_status,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	LastLogin time.Time `json:"last_login,omitempty"`
}

func (u User) FullName() string {
	name := strings.TrimSpace(u.FirstName + " " + u.LastName)
	if name == "" {
		return u.Email
	}
	return name
}

func (u User) HasRole(role string) bool {
	role = NormalizeRole(role)
	for _, r := range u.Roles {
		if NormalizeRole(r) == role {
			return true
		}
	}
	return false
}

func (u User) IsSuperAdmin() bool { return u.HasRole(RoleSuperAdmin) }

func (u User) IsAdmin() bool { return HasAnyRole(u.Roles, AdminRoles) }

// CanUseConsole reports whether u holds at least one console role.
func (u User) CanUseConsole() bool { return u.IsActive && HasAnyRole(u.Roles, ConsoleRoles) }

// KYC statuses
const (
	KYCPending  = "pending"
	KYCAccepted = "accepted"
	KYCRejected = "rejected"
)

var KYCStatuses = []string{KYCPending, KYCAccepted, KYCRejected}

// KYCDocument is an identity document uploaded by a user.
type KYCDocument struct {
	Kind       string    `json:"kind"` // id_card, passport, selfie, proof_of_address
	Path       string    `json:"path"`
	UploadedAt time.Time `json:"uploaded_at"`
}

// KYC is the identity verification file of a user.
type KYC struct {
	UserID      string        `json:"user_id"`
	Status      string        `json:"status"`
	Reason      string        `json:"reason,omitempty"`
	Nationality string        `json:"nationality,omitempty"`
	BirthDate   string        `json:"birth_date,omitempty"`
	Documents   []KYCDocument `json:"documents"`
	SubmittedAt time.Time     `json:"submitted_at"`
	ReviewedAt  time.Time     `json:"reviewed_at,omitempty"`
	ReviewedBy  string        `json:"reviewed_by,omitempty"`
}

// CanAccept is false once the file has been accepted.
func (k KYC) CanAccept() bool { return k.Status != KYCAccepted }

// CanReject is false once the file has been rejected.
func (k KYC) CanReject() bool { return k.Status != KYCRejected }

// QueryFilter narrows the users list.
type QueryFilter struct {
	Search   string `query:"search"`
	Role     string `query:"role"`
	IsActive *bool  `query:"is_active"`
	KYC      string `query:"kyc"`
}

func (qf *QueryFilter) Clean() {
	qf.Search = strings.ToLower(strings.TrimSpace(qf.Search))
	qf.Role = NormalizeRole(qf.Role)
	qf.KYC = strings.ToLower(strings.TrimSpace(qf.KYC))
}

// Match reports whether u satisfies every set criterion of qf.
func (qf QueryFilter) Match(u User) bool {
	if qf.Search != "" {
		haystack := strings.ToLower(u.FullName() + " " + u.Email + " " + u.Phone)
		if !strings.Contains(haystack, qf.Search) {
			return false
		}
	}
	if qf.Role != "" && !u.HasRole(qf.Role) {
		return false
	}
	if qf.IsActive != nil && u.IsActive != *qf.IsActive {
		return false
	}
	if qf.KYC != "" && u.KYCStatus != qf.KYC {
		return false
	}
	return true
}
