package user

// HasAnyRole reports whether roles and allowed share at least one role.
// An empty allowed list never matches.
func HasAnyRole(roles, allowed []string) bool {
	if len(roles) == 0 || len(allowed) == 0 {
		return false
	}
	set := make(map[string]struct{}, len(roles))
	for _, r := range roles {
		set[NormalizeRole(r)] = struct{}{}
	}
	for _, a := range allowed {
		if _, ok := set[NormalizeRole(a)]; ok {
			return true
		}
	}
	return false
}

// Guard gates a piece of UI behind a list of allowed roles.
type Guard struct {
	Allowed []string
}

func NewGuard(allowed ...string) Guard {
	return Guard{Allowed: allowed}
}

// Allows reports whether a user holding roles may see what the guard protects.
func (g Guard) Allows(roles []string) bool {
	return HasAnyRole(roles, g.Allowed)
}

// CanAssign reports whether an actor holding actorRoles may grant targetRoles:
// nobody can set a role above their own max role.
func CanAssign(actorRoles, targetRoles []string) bool {
	return MaxRolePriority(targetRoles) <= MaxRolePriority(actorRoles)
}

// CanManage reports whether an actor may change or delete target:
// the target must not outrank the actor.
func CanManage(actor, target User) bool {
	if actor.ID != "" && actor.ID == target.ID {
		return false
	}
	return MaxRolePriority(target.Roles) <= MaxRolePriority(actor.Roles)
}
