// Package nav holds the role-gated navigation menu of the console.
package nav

import (
	"strings"

	"github.com/trezcool/confadmin/core/user"
)

type (
	Item struct {
		Label   string
		Path    string
		Icon    string
		Allowed []string
		Active  bool
	}

	Section struct {
		Label string
		Items []Item
	}

	Menu []Section
)

var (
	everyone     = user.ConsoleRoles
	admins       = user.AdminRoles
	eventStaff   = []string{user.RoleSuperAdmin, user.RoleAdmin, user.RoleEventManager}
	eventViewers = []string{user.RoleSuperAdmin, user.RoleAdmin, user.RoleEventManager, user.RoleSupport}
	contentStaff = []string{user.RoleSuperAdmin, user.RoleAdmin, user.RoleContentManager}
	hrStaff      = []string{user.RoleSuperAdmin, user.RoleAdmin, user.RoleHRManager}
	userViewers  = []string{user.RoleSuperAdmin, user.RoleAdmin, user.RoleSupport}
)

// Console is the console menu.
var Console = Menu{
	{Label: "Dashboard", Items: []Item{
		{Label: "Overview", Path: "/", Icon: "home", Allowed: everyone},
	}},
	{Label: "Users", Items: []Item{
		{Label: "Users", Path: "/users", Icon: "users", Allowed: userViewers},
	}},
	{Label: "Events", Items: []Item{
		{Label: "Conferences", Path: "/conferences", Icon: "calendar", Allowed: eventViewers},
		{Label: "Tickets", Path: "/tickets", Icon: "ticket", Allowed: eventViewers},
		{Label: "QR Logs", Path: "/qr-logs", Icon: "qrcode", Allowed: eventViewers},
	}},
	{Label: "Hospitality", Items: []Item{
		{Label: "Hotels", Path: "/hotels", Icon: "building", Allowed: eventStaff},
		{Label: "Accommodations", Path: "/accommodations", Icon: "bed", Allowed: eventStaff},
	}},
	{Label: "Partners", Items: []Item{
		{Label: "Sponsors", Path: "/sponsors", Icon: "handshake", Allowed: eventStaff},
		{Label: "Companies", Path: "/companies", Icon: "briefcase", Allowed: append(append([]string{}, eventStaff...), user.RoleHRManager)},
		{Label: "Ads", Path: "/ads", Icon: "megaphone", Allowed: contentStaff},
	}},
	{Label: "Careers", Items: []Item{
		{Label: "Job Offers", Path: "/job-offers", Icon: "id-badge", Allowed: hrStaff},
	}},
	{Label: "Content", Items: []Item{
		{Label: "Blog & News", Path: "/blogs", Icon: "newspaper", Allowed: contentStaff},
	}},
	{Label: "Notifications", Items: []Item{
		{Label: "Notifications", Path: "/notifications", Icon: "bell", Allowed: append(append([]string{}, contentStaff...), user.RoleSupport)},
	}},
	{Label: "Audit", Items: []Item{
		{Label: "Audit Log", Path: "/audit", Icon: "history", Allowed: admins},
	}},
}

// matches reports whether path is itemPath or one of its sub paths.
func matches(itemPath, path string) bool {
	if itemPath == "/" {
		return path == "/"
	}
	return path == itemPath || strings.HasPrefix(path, itemPath+"/")
}

// For returns the items visible to roles, with the item owning currentPath marked active.
// Sections left empty are dropped.
func (m Menu) For(roles []string, currentPath string) Menu {
	visible := make(Menu, 0, len(m))
	for _, sec := range m {
		items := make([]Item, 0, len(sec.Items))
		for _, item := range sec.Items {
			if !user.HasAnyRole(roles, item.Allowed) {
				continue
			}
			item.Active = matches(item.Path, currentPath)
			items = append(items, item)
		}
		if len(items) > 0 {
			visible = append(visible, Section{Label: sec.Label, Items: items})
		}
	}
	return visible
}

// Item returns the item owning path, the longest match winning.
func (m Menu) Item(path string) (Item, bool) {
	var found Item
	var ok bool
	for _, sec := range m {
		for _, item := range sec.Items {
			if matches(item.Path, path) && len(item.Path) >= len(found.Path) {
				found, ok = item, true
			}
		}
	}
	return found, ok
}

// Guard returns the role guard of the item owning path.
func (m Menu) Guard(path string) (user.Guard, bool) {
	item, ok := m.Item(path)
	if !ok {
		return user.Guard{}, false
	}
	return user.NewGuard(item.Allowed...), true
}

// Allowed reports whether roles may open path. Paths outside the menu are denied.
func (m Menu) Allowed(path string, roles []string) bool {
	guard, ok := m.Guard(path)
	return ok && guard.Allows(roles)
}
