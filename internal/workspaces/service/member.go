package service

import (
	"context"

	"github.com/quadrant/quadrant-backend/internal/workspaces/repository"
	"github.com/quadrant/quadrant-backend/pkg/errors"
	"github.com/quadrant/quadrant-backend/pkg/logger"
)

// MemberService manages workspace membership. It also resolves the
// workspace owner for services that need a notification fallback.
type MemberService struct {
	repo   *repository.MemberRepository
	logger *logger.Logger
}

// NewMemberService creates a new member service
func NewMemberService(repo *repository.MemberRepository, log *logger.Logger) *MemberService {
	return &MemberService{
		repo:   repo,
		logger: log.WithComponent("member-service"),
	}
}

// List lists workspace members
func (s *MemberService) List(ctx context.Context) ([]*repository.Member, error) {
	return s.repo.List(ctx)
}

// Add adds or updates a member
func (s *MemberService) Add(ctx context.Context, m *repository.Member) error {
	if m.Role != "" && !repository.ValidRole(m.Role) {
		return errors.BadRequest("role must be owner, admin, manager or member")
	}
	return s.repo.Add(ctx, m)
}

// UpdateRole changes a member's role. Demoting the last owner is
// rejected: a workspace must always keep at least one.
func (s *MemberService) UpdateRole(ctx context.Context, userID, role string) error {
	if !repository.ValidRole(role) {
		return errors.BadRequest("role must be owner, admin, manager or member")
	}

	current, err := s.repo.GetByUser(ctx, userID)
	if err != nil {
		return err
	}

	if current.Role == repository.RoleOwner && role != repository.RoleOwner {
		owners, err := s.repo.CountOwners(ctx)
		if err != nil {
			return err
		}
		if owners <= 1 {
			return errors.CannotRemoveLastOwner()
		}
	}

	return s.repo.UpdateRole(ctx, userID, role)
}

// Remove removes a member. Removing the last owner is rejected.
func (s *MemberService) Remove(ctx context.Context, userID string) error {
	current, err := s.repo.GetByUser(ctx, userID)
	if err != nil {
		return err
	}

	if current.Role == repository.RoleOwner {
		owners, err := s.repo.CountOwners(ctx)
		if err != nil {
			return err
		}
		if owners <= 1 {
			return errors.CannotRemoveLastOwner()
		}
	}

	return s.repo.Remove(ctx, userID)
}

// WorkspaceOwnerID returns the workspace's primary owner
func (s *MemberService) WorkspaceOwnerID(ctx context.Context) (string, error) {
	return s.repo.OwnerID(ctx)
}
