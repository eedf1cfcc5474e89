package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/screenpatron/screen-patron/internal/apperror"
	"github.com/screenpatron/screen-patron/internal/model"
	"github.com/screenpatron/screen-patron/internal/repository"
)

// Validation constants for user profiles.
const (
	MaxUserNameLength = 100
	MaxBioLength      = 2000
	MaxHandleLength   = 100
	MaxURLLength      = 300
)

// UserService handles business logic for user profiles and account removal.
// Registration and login live in AuthService; this service owns what happens
// to an account after it exists.
type UserService struct {
	store  repository.Store
	logger *slog.Logger
}

// NewUserService creates a UserService.
func NewUserService(store repository.Store, logger *slog.Logger) *UserService {
	return &UserService{
		store:  store,
		logger: logger,
	}
}

// Get retrieves a user profile by ID.
func (s *UserService) Get(ctx context.Context, id string) (*model.User, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, apperror.ValidationFailed("id", "user ID is required")
	}
	return s.store.GetUserByID(ctx, id)
}

// Update patches a user's own profile. Users may only edit themselves.
func (s *UserService) Update(ctx context.Context, id, actorID string, patch model.UserPatch) (*model.User, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, apperror.ValidationFailed("id", "user ID is required")
	}
	if id != actorID {
		return nil, apperror.Forbidden("you can only edit your own profile")
	}
	if err := validateUserPatch(patch); err != nil {
		return nil, err
	}

	user, err := s.store.UpdateUser(ctx, id, patch)
	if err != nil {
		return nil, err
	}

	s.logger.Info("user updated", slog.String("id", id))
	return user, nil
}

// SetPhoto stores the image path on the profile. Self only.
func (s *UserService) SetPhoto(ctx context.Context, id, actorID, path string) (*model.User, error) {
	return s.Update(ctx, id, actorID, model.UserPatch{Photo: &path})
}

// Delete removes an account. Users may only delete themselves.
//
// Before the user row goes away, the user must stop hosting everything: for
// events they co-host, their host row is dropped; for events they host
// alone, the whole event must be deleted — but only if the caller passed
// deleteSoloHostedEvents. Otherwise the deletion fails with SoleHost and
// nothing at all changes: host cleanup and account removal commit in one
// transaction. Remaining rsvps cascade with the user row.
func (s *UserService) Delete(ctx context.Context, id, actorID string, deleteSoloHostedEvents bool) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return apperror.ValidationFailed("id", "user ID is required")
	}
	if id != actorID {
		return apperror.Forbidden("you can only delete your own account")
	}

	err := s.store.InTx(ctx, func(tx repository.Store) error {
		if err := removeHostAllEventsTx(ctx, tx, id, deleteSoloHostedEvents); err != nil {
			return err
		}
		return tx.DeleteUser(ctx, id)
	})
	if err != nil {
		return err
	}

	s.logger.Info("user deleted",
		slog.String("id", id),
		slog.Bool("deleteSoloHostedEvents", deleteSoloHostedEvents),
	)
	return nil
}

func validateUserPatch(patch model.UserPatch) error {
	if patch.Name != nil && len(*patch.Name) > MaxUserNameLength {
		return apperror.ValidationFailed("name",
			fmt.Sprintf("name must be %d characters or less", MaxUserNameLength))
	}
	if patch.Bio != nil && len(*patch.Bio) > MaxBioLength {
		return apperror.ValidationFailed("bio",
			fmt.Sprintf("bio must be %d characters or less", MaxBioLength))
	}
	if patch.Instagram != nil && len(*patch.Instagram) > MaxHandleLength {
		return apperror.ValidationFailed("instagram",
			fmt.Sprintf("instagram handle must be %d characters or less", MaxHandleLength))
	}
	if patch.Twitter != nil && len(*patch.Twitter) > MaxHandleLength {
		return apperror.ValidationFailed("twitter",
			fmt.Sprintf("twitter handle must be %d characters or less", MaxHandleLength))
	}
	if patch.Website != nil && len(*patch.Website) > MaxURLLength {
		return apperror.ValidationFailed("website",
			fmt.Sprintf("website must be %d characters or less", MaxURLLength))
	}
	return nil
}
