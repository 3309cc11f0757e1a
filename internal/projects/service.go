// Package projects manages projects and their memberships. Creating a
// project auto-enrolls the creator as an Admin member so the evaluator's
// per-project role resolution works from the first request.
package projects

import (
	"time"

	"github.com/NebulaScout/TeamTrack/internal/db"
	"github.com/NebulaScout/TeamTrack/internal/roles"
)

type Service struct {
	db       *db.DB
	registry *roles.Registry
}

func NewService(d *db.DB, registry *roles.Registry) *Service {
	return &Service{db: d, registry: registry}
}

type CreateInput struct {
	Name        string
	Description string
	StartDate   time.Time
	EndDate     time.Time
}

// CreateProject creates the project and the creator's Admin membership in
// one transaction. The creator stamp is immutable afterwards.
//
// EndDate earlier than StartDate is accepted as-is. Rejecting it is a known
// gap in the data model; see DESIGN.md.
func (s *Service) CreateProject(actorID uint, input CreateInput) (*db.Project, error) {
	if input.Name == "" {
		return nil, db.NewValidationError("project name is required")
	}

	project := &db.Project{}
	err := s.db.Transaction(func(tx *db.DB) error {
		creator, err := tx.GetUserByID(actorID)
		if err != nil {
			return err
		}

		project = &db.Project{
			Name:        input.Name,
			Description: input.Description,
			StartDate:   input.StartDate,
			EndDate:     input.EndDate,
			CreatorID:   creator.ID,
		}
		if err := tx.CreateProject(project); err != nil {
			return err
		}

		return tx.AddMember(&db.Membership{
			ProjectID: project.ID,
			UserID:    creator.ID,
			RoleName:  roles.RoleAdmin,
		})
	})
	if err != nil {
		return nil, err
	}

	return project, nil
}

// AddMember gives the user a role within the project. The role must exist
// in the registry; a second membership for the same user is rejected by the
// store.
func (s *Service) AddMember(projectID, userID uint, roleName string) (*db.Membership, error) {
	if !s.registry.HasRole(roleName) {
		return nil, db.NewValidationError("unknown role: " + roleName)
	}

	membership := &db.Membership{}
	err := s.db.Transaction(func(tx *db.DB) error {
		if _, err := tx.GetProjectByID(projectID); err != nil {
			return err
		}
		user, err := tx.GetUserByID(userID)
		if err != nil {
			return err
		}

		membership = &db.Membership{
			ProjectID: projectID,
			UserID:    userID,
			RoleName:  roleName,
		}
		if err := tx.AddMember(membership); err != nil {
			return err
		}

		membership.User = *user
		return nil
	})
	if err != nil {
		return nil, err
	}

	return membership, nil
}

// RoleOf reports the role the user holds in the project, if any. Satisfies
// the evaluator's RoleResolver.
func (s *Service) RoleOf(projectID, userID uint) (string, bool, error) {
	return s.db.RoleOf(projectID, userID)
}

func (s *Service) RemoveMember(projectID, userID uint) error {
	return s.db.RemoveMember(projectID, userID)
}

func (s *Service) Members(projectID uint) ([]db.Membership, error) {
	if _, err := s.db.GetProjectByID(projectID); err != nil {
		return nil, err
	}

	return s.db.ListMembers(projectID)
}

func (s *Service) GetProject(projectID uint) (*db.Project, error) {
	return s.db.GetProjectByID(projectID)
}

// DeleteProject cascades to memberships, tasks and task comments.
func (s *Service) DeleteProject(projectID uint) error {
	return s.db.DeleteProject(projectID)
}
