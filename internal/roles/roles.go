// Package roles holds the static role → permission-code table and the
// registry that seeds it into the database at startup.
package roles

import (
	"fmt"
	"sort"

	"github.com/NebulaScout/TeamTrack/internal/db"
)

const (
	RoleAdmin          = "Admin"
	RoleProjectManager = "Project Manager"
	RoleDeveloper      = "Developer"
	RoleGuest          = "Guest"
)

// Permission codes. One atomic capability per code.
const (
	PermAddProject    = "add_project"
	PermChangeProject = "change_project"
	PermViewProject   = "view_project"
	PermDeleteProject = "delete_project"

	PermAddMember    = "add_member"
	PermChangeMember = "change_member"
	PermViewMember   = "view_member"
	PermDeleteMember = "delete_member"

	PermAddTask    = "add_task"
	PermChangeTask = "change_task"
	PermViewTask   = "view_task"
	PermDeleteTask = "delete_task"

	PermAddComment    = "add_comment"
	PermChangeComment = "change_comment"
	PermViewComment   = "view_comment"
	PermDeleteComment = "delete_comment"

	PermViewTaskHistory = "view_task_history"

	PermViewUser   = "view_user"
	PermChangeUser = "change_user"
	PermDeleteUser = "delete_user"
)

// Table is the shipped role table. Immutable at runtime; changing it means
// re-running Initialize on deployment.
var Table = map[string][]string{
	RoleAdmin: {
		PermAddProject, PermChangeProject, PermViewProject, PermDeleteProject,
		PermAddMember, PermChangeMember, PermViewMember, PermDeleteMember,
		PermAddTask, PermChangeTask, PermViewTask, PermDeleteTask,
		PermAddComment, PermChangeComment, PermViewComment, PermDeleteComment,
		PermViewTaskHistory,
		PermViewUser, PermChangeUser, PermDeleteUser,
	},
	RoleProjectManager: {
		PermAddProject, PermChangeProject, PermViewProject, PermDeleteProject,
		PermAddMember, PermChangeMember, PermViewMember, PermDeleteMember,
		PermAddTask, PermChangeTask, PermViewTask, PermDeleteTask,
		PermAddComment, PermChangeComment, PermViewComment, PermDeleteComment,
		PermViewTaskHistory,
		PermViewUser,
	},
	RoleDeveloper: {
		PermViewMember,
		PermViewTask, PermChangeTask,
		PermAddComment, PermViewComment, PermDeleteComment,
	},
	RoleGuest: {
		PermViewProject,
		PermViewMember,
		PermViewTask,
		PermViewComment,
	},
}

// MissingPermissionError reports that a role's table entry references codes
// that do not exist in the permission catalog. Initialization treats this as
// fatal: running with a silently incomplete role is worse than not starting.
type MissingPermissionError struct {
	Role    string
	Missing []string
}

func (e *MissingPermissionError) Error() string {
	return fmt.Sprintf("role %q references unknown permission codes: %v", e.Role, e.Missing)
}

// Registry is an immutable role → permission lookup built from a table.
// Construct one per process (or per test) and hand it to the evaluator.
type Registry struct {
	grants map[string]map[string]struct{}
}

func NewRegistry(table map[string][]string) *Registry {
	grants := make(map[string]map[string]struct{}, len(table))
	for role, codes := range table {
		set := make(map[string]struct{}, len(codes))
		for _, code := range codes {
			set[code] = struct{}{}
		}
		grants[role] = set
	}

	return &Registry{grants: grants}
}

// Default returns a registry over the shipped table.
func Default() *Registry {
	return NewRegistry(Table)
}

func (r *Registry) Grants(role, code string) bool {
	set, ok := r.grants[role]
	if !ok {
		return false
	}

	_, ok = set[code]
	return ok
}

// AnyGrants reports whether at least one of the roles grants the code.
func (r *Registry) AnyGrants(roleNames []string, code string) bool {
	for _, role := range roleNames {
		if r.Grants(role, code) {
			return true
		}
	}

	return false
}

func (r *Registry) HasRole(name string) bool {
	_, ok := r.grants[name]
	return ok
}

func (r *Registry) RoleNames() []string {
	names := make([]string, 0, len(r.grants))
	for name := range r.grants {
		names = append(names, name)
	}
	sort.Strings(names)

	return names
}

// Codes returns every distinct permission code the registry references.
func (r *Registry) Codes() []string {
	seen := map[string]struct{}{}
	for _, set := range r.grants {
		for code := range set {
			seen[code] = struct{}{}
		}
	}

	codes := make([]string, 0, len(seen))
	for code := range seen {
		codes = append(codes, code)
	}
	sort.Strings(codes)

	return codes
}

// Initialize upserts one Role row per registry entry, resolving every code
// against the permission catalog. Any missing code aborts the whole run with
// a MissingPermissionError naming the role and the codes; nothing is
// partially applied. Safe to re-run on every deployment.
func (r *Registry) Initialize(store *db.DB) error {
	return store.Transaction(func(tx *db.DB) error {
		for _, role := range r.RoleNames() {
			codes := make([]string, 0, len(r.grants[role]))
			for code := range r.grants[role] {
				codes = append(codes, code)
			}
			sort.Strings(codes)

			permissions, err := tx.PermissionsByCode(codes)
			if err != nil {
				return err
			}

			if len(permissions) != len(codes) {
				found := make(map[string]struct{}, len(permissions))
				for _, p := range permissions {
					found[p.Code] = struct{}{}
				}

				missing := []string{}
				for _, code := range codes {
					if _, ok := found[code]; !ok {
						missing = append(missing, code)
					}
				}

				return &MissingPermissionError{Role: role, Missing: missing}
			}

			if err := tx.UpsertRole(role, permissions); err != nil {
				return err
			}
		}

		return nil
	})
}
