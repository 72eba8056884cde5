package common

import (
	"context"
	"errors"
	"fmt"

	"github.com/campus-events/backend/internal/entity"
	"github.com/campus-events/backend/internal/repository"
	"github.com/campus-events/backend/pkg/xcontext"
	"golang.org/x/exp/slices"
)

type GlobalRoleVerifier struct {
	userRepo repository.UserRepository
}

func NewGlobalRoleVerifier(userRepo repository.UserRepository) *GlobalRoleVerifier {
	return &GlobalRoleVerifier{userRepo: userRepo}
}

func (verifier *GlobalRoleVerifier) Verify(ctx context.Context, requiredRoles ...entity.GlobalRole) error {
	userID := xcontext.RequestUserID(ctx)
	u, err := verifier.userRepo.GetByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("user is not valid")
	}

	if !slices.Contains(requiredRoles, u.Role) {
		return errors.New("user role does not have permission")
	}

	return nil
}

// EventRoleVerifier lets the organizer of an event or an admin through.
type EventRoleVerifier struct {
	userRepo repository.UserRepository
}

func NewEventRoleVerifier(userRepo repository.UserRepository) *EventRoleVerifier {
	return &EventRoleVerifier{userRepo: userRepo}
}

func (verifier *EventRoleVerifier) Verify(ctx context.Context, event *entity.Event) error {
	userID := xcontext.RequestUserID(ctx)
	if userID == "" {
		return errors.New("user is not valid")
	}

	if event.CreatedBy == userID {
		return nil
	}

	u, err := verifier.userRepo.GetByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("user is not valid")
	}

	if !slices.Contains(entity.GlobalAdminRoles, u.Role) {
		return errors.New("user is not the organizer of event")
	}

	return nil
}
