package db

import (
	"time"

	"gorm.io/gorm"
)

type TaskStatus string

const (
	StatusToDo       TaskStatus = "TO_DO"
	StatusInProgress TaskStatus = "IN_PROGRESS"
	StatusInReview   TaskStatus = "IN_REVIEW"
	StatusDone       TaskStatus = "DONE"
)

type TaskPriority string

const (
	PriorityLow    TaskPriority = "LOW"
	PriorityMedium TaskPriority = "MEDIUM"
	PriorityHigh   TaskPriority = "HIGH"
)

// TrackedField names a task attribute whose changes are recorded in the
// task history log.
type TrackedField string

const (
	FieldStatus      TrackedField = "status"
	FieldPriority    TrackedField = "priority"
	FieldAssignedTo  TrackedField = "assigned_to"
	FieldDueDate     TrackedField = "due_date"
	FieldTitle       TrackedField = "title"
	FieldDescription TrackedField = "description"
)

type User struct {
	gorm.Model

	Username string `gorm:"unique"`

	AssignedTasks []Task `gorm:"foreignKey:AssigneeID"`
	CreatedTasks  []Task `gorm:"foreignKey:CreatorID"`
}

type Project struct {
	gorm.Model

	Name        string `gorm:"unique"`
	Description string
	StartDate   time.Time
	EndDate     time.Time

	CreatorID uint
	Creator   User

	Memberships []Membership `gorm:"constraint:OnDelete:CASCADE"`
	Tasks       []Task       `gorm:"constraint:OnDelete:CASCADE"`
}

// Membership ties a user to a role within one project. The composite unique
// index backs the one-role-per-user-per-project invariant; AddMember enforces
// it again at the store boundary so in-memory test databases behave the same.
// No gorm.Model here: a soft-deleted row would keep occupying the unique
// index and block re-adding a removed member.
type Membership struct {
	ID        uint `gorm:"primarykey"`
	CreatedAt time.Time
	UpdatedAt time.Time

	ProjectID uint `gorm:"uniqueIndex:idx_memberships_project_user"`
	UserID    uint `gorm:"uniqueIndex:idx_memberships_project_user"`
	User      User
	RoleName  string
}

type Task struct {
	gorm.Model

	ProjectID uint `gorm:"index"`
	Project   Project

	Title       string
	Description string
	Status      TaskStatus   `gorm:"default:TO_DO"`
	Priority    TaskPriority `gorm:"default:MEDIUM"`
	DueDate     time.Time

	AssigneeID *uint
	Assignee   *User `gorm:"foreignKey:AssigneeID;constraint:OnDelete:SET NULL"`

	CreatorID *uint
	Creator   *User `gorm:"foreignKey:CreatorID;constraint:OnDelete:SET NULL"`

	Comments []Comment     `gorm:"constraint:OnDelete:CASCADE"`
	History  []TaskHistory `gorm:"constraint:OnDelete:SET NULL"`
}

// TaskHistory is an append-only audit record of one tracked-field transition.
// Rows are never updated or deleted; the task reference is nulled if the task
// itself is removed so the audit trail survives it.
type TaskHistory struct {
	ID        uint `gorm:"primarykey"`
	CreatedAt time.Time

	TaskID *uint `gorm:"index"`

	Field    TrackedField
	OldValue *string
	NewValue string

	ActorID uint
	Actor   User `gorm:"foreignKey:ActorID"`
}

type Comment struct {
	gorm.Model

	TaskID uint `gorm:"index"`

	AuthorID *uint
	Author   *User `gorm:"foreignKey:AuthorID;constraint:OnDelete:SET NULL"`

	Content string
}

// Role and Permission persist the registry's static table. Permission rows
// are the catalog the registry validates against at initialization.
type Role struct {
	gorm.Model

	Name string `gorm:"unique"`

	Permissions []Permission `gorm:"many2many:role_permissions"`
}

type Permission struct {
	gorm.Model

	Code string `gorm:"unique"`
}

// Token is an opaque API bearer token resolving to the user it was issued to.
type Token struct {
	gorm.Model

	Token  string `gorm:"unique"`
	UserID uint
	User   User
}
