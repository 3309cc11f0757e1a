// Package authz decides whether an actor may perform an action on a
// resource. Decisions are pure lookups against the role registry plus, for
// object-level checks, the actor's membership in the object's project.
// Denial is a false return, never an error; errors mean the question itself
// was malformed.
package authz

import (
	"errors"

	"github.com/NebulaScout/TeamTrack/internal/roles"
)

type Resource string

const (
	ResourceProjects Resource = "projects"
	ResourceMembers  Resource = "members"
	ResourceTasks    Resource = "tasks"
	ResourceComments Resource = "comments"
	ResourceUsers    Resource = "users"
)

type Action string

const (
	ActionCreate         Action = "create"
	ActionList           Action = "list"
	ActionRetrieve       Action = "retrieve"
	ActionUpdate         Action = "update"
	ActionDestroy        Action = "destroy"
	ActionAssign         Action = "assign"
	ActionUpdateStatus   Action = "update_status"
	ActionUpdatePriority Action = "update_priority"
	ActionAddMembers     Action = "add_members"
	ActionLogs           Action = "logs"
)

// ErrInvalidActor is returned when the caller passes a zero actor. A missing
// identity is a caller bug, not a permission denial.
var ErrInvalidActor = errors.New("authz: invalid actor")

// Actor is the evaluator's view of a principal: a stable id plus the role
// names it holds across all project memberships.
type Actor struct {
	ID    uint
	Roles []string
}

// ObjectRef carries the two facts object checks need: who created the object
// and which project it belongs to. A zero ProjectID marks an object that is
// not project-scoped (users); a zero CreatorID means no creator is recorded.
type ObjectRef struct {
	CreatorID uint
	ProjectID uint
}

// RoleResolver looks up the role an actor holds within one project.
type RoleResolver interface {
	RoleOf(projectID, userID uint) (string, bool, error)
}

// collectionPerms maps (resource, action) to the permission code required at
// the collection level. Actions absent from the map are denied outright, so
// adding a new handler without updating this table fails closed.
var collectionPerms = map[Resource]map[Action]string{
	ResourceProjects: {
		ActionCreate:     roles.PermAddProject,
		ActionList:       roles.PermViewProject,
		ActionRetrieve:   roles.PermViewProject,
		ActionUpdate:     roles.PermChangeProject,
		ActionDestroy:    roles.PermDeleteProject,
		ActionAddMembers: roles.PermAddMember,
	},
	ResourceMembers: {
		ActionCreate:   roles.PermAddMember,
		ActionList:     roles.PermViewMember,
		ActionRetrieve: roles.PermViewMember,
		ActionUpdate:   roles.PermChangeMember,
		ActionDestroy:  roles.PermDeleteMember,
	},
	ResourceTasks: {
		ActionCreate:         roles.PermAddTask,
		ActionList:           roles.PermViewTask,
		ActionRetrieve:       roles.PermViewTask,
		ActionUpdate:         roles.PermChangeTask,
		ActionUpdateStatus:   roles.PermChangeTask,
		ActionUpdatePriority: roles.PermChangeTask,
		ActionAssign:         roles.PermChangeTask,
		ActionDestroy:        roles.PermDeleteTask,
		ActionLogs:           roles.PermViewTaskHistory,
	},
	ResourceComments: {
		ActionCreate:   roles.PermAddComment,
		ActionList:     roles.PermViewComment,
		ActionRetrieve: roles.PermViewComment,
		ActionUpdate:   roles.PermChangeComment,
		ActionDestroy:  roles.PermDeleteComment,
	},
	ResourceUsers: {
		ActionList:     roles.PermViewUser,
		ActionRetrieve: roles.PermViewUser,
		ActionUpdate:   roles.PermChangeUser,
		ActionDestroy:  roles.PermDeleteUser,
	},
}

// objectPerms is the action table for object-level checks. Same codes, no
// create entries (a new object has no owner yet).
var objectPerms = map[Resource]map[Action]string{
	ResourceProjects: {
		ActionRetrieve:   roles.PermViewProject,
		ActionUpdate:     roles.PermChangeProject,
		ActionDestroy:    roles.PermDeleteProject,
		ActionAddMembers: roles.PermAddMember,
	},
	ResourceMembers: {
		ActionRetrieve: roles.PermViewMember,
		ActionUpdate:   roles.PermChangeMember,
		ActionDestroy:  roles.PermDeleteMember,
	},
	ResourceTasks: {
		ActionRetrieve:       roles.PermViewTask,
		ActionUpdate:         roles.PermChangeTask,
		ActionUpdateStatus:   roles.PermChangeTask,
		ActionUpdatePriority: roles.PermChangeTask,
		ActionAssign:         roles.PermChangeTask,
		ActionDestroy:        roles.PermDeleteTask,
		ActionLogs:           roles.PermViewTaskHistory,
	},
	ResourceComments: {
		ActionRetrieve: roles.PermViewComment,
		ActionUpdate:   roles.PermChangeComment,
		ActionDestroy:  roles.PermDeleteComment,
	},
	ResourceUsers: {
		ActionRetrieve: roles.PermViewUser,
		ActionUpdate:   roles.PermChangeUser,
		ActionDestroy:  roles.PermDeleteUser,
	},
}

type Evaluator struct {
	registry *roles.Registry
	resolver RoleResolver
}

func NewEvaluator(registry *roles.Registry, resolver RoleResolver) *Evaluator {
	return &Evaluator{registry: registry, resolver: resolver}
}

// HasCollectionPermission reports whether the actor may perform the action
// against the resource as a whole, evaluated over the actor's flat role set.
func (e *Evaluator) HasCollectionPermission(actor Actor, action Action, resource Resource) (bool, error) {
	if actor.ID == 0 {
		return false, ErrInvalidActor
	}

	code, ok := collectionPerms[resource][action]
	if !ok {
		return false, nil
	}

	return e.registry.AnyGrants(actor.Roles, code), nil
}

// HasObjectPermission reports whether the actor may perform the action on a
// specific object. The creator always may: ownership outranks role
// membership, so demoting someone never locks them out of what they made.
// Otherwise the actor's role within the object's project decides; an actor
// with no membership there is denied.
func (e *Evaluator) HasObjectPermission(actor Actor, action Action, resource Resource, obj ObjectRef) (bool, error) {
	if actor.ID == 0 {
		return false, ErrInvalidActor
	}

	if obj.CreatorID != 0 && obj.CreatorID == actor.ID {
		return true, nil
	}

	code, ok := objectPerms[resource][action]
	if !ok {
		return false, nil
	}

	if obj.ProjectID == 0 {
		return e.registry.AnyGrants(actor.Roles, code), nil
	}

	role, member, err := e.resolver.RoleOf(obj.ProjectID, actor.ID)
	if err != nil {
		return false, err
	}
	if !member {
		return false, nil
	}

	return e.registry.Grants(role, code), nil
}
