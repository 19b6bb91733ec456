package activity

import (
	"context"
	"strings"

	"github.com/Gobusters/ectologger"
	"github.com/google/uuid"

	"github.com/Namra404/secunda/internal/repositories/activity"
	apperrors "github.com/Namra404/secunda/pkg/errors"
	"github.com/Namra404/secunda/pkg/models"
	"github.com/Namra404/secunda/pkg/tracing"
)

type Service struct {
	logger ectologger.Logger
	repo   activity.ActivityRepository
}

func NewService(repo activity.ActivityRepository, logger ectologger.Logger) *Service {
	return &Service{
		logger: logger,
		repo:   repo,
	}
}

func (s *Service) Create(ctx context.Context, name string, parentID *uuid.UUID) (*models.Activity, error) {
	ctx, span := tracing.StartSpan(ctx, "activity.Create")
	defer span.End()

	if strings.TrimSpace(name) == "" {
		return nil, apperrors.InvalidArgument("activity", "name is required")
	}

	s.logger.WithContext(ctx).WithFields(map[string]any{
		"name":      name,
		"parent_id": parentID,
	}).Info("creating activity")

	return s.repo.Create(ctx, name, parentID)
}

func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (*models.Activity, error) {
	ctx, span := tracing.StartSpan(ctx, "activity.GetByID")
	defer span.End()

	return s.repo.GetByID(ctx, id)
}

func (s *Service) GetByName(ctx context.Context, name string) (*models.Activity, error) {
	ctx, span := tracing.StartSpan(ctx, "activity.GetByName")
	defer span.End()

	return s.repo.GetByName(ctx, name)
}

func (s *Service) ListChildren(ctx context.Context, parentID *uuid.UUID) ([]models.Activity, error) {
	ctx, span := tracing.StartSpan(ctx, "activity.ListChildren")
	defer span.End()

	return s.repo.GetChildren(ctx, parentID)
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	ctx, span := tracing.StartSpan(ctx, "activity.Delete")
	defer span.End()

	s.logger.WithContext(ctx).WithField("id", id).Info("deleting activity")

	return s.repo.Delete(ctx, id)
}

func (s *Service) GetSubtreeIDs(ctx context.Context, rootID uuid.UUID) ([]uuid.UUID, error) {
	ctx, span := tracing.StartSpan(ctx, "activity.GetSubtreeIDs")
	defer span.End()

	return s.repo.GetDescendantIDs(ctx, rootID)
}

// GetSubtreeIDsByName resolves the activity by name and returns its closure.
func (s *Service) GetSubtreeIDsByName(ctx context.Context, name string) ([]uuid.UUID, error) {
	ctx, span := tracing.StartSpan(ctx, "activity.GetSubtreeIDsByName")
	defer span.End()

	if strings.TrimSpace(name) == "" {
		return nil, apperrors.InvalidArgument("activity", "name is required")
	}

	root, err := s.repo.GetByName(ctx, name)
	if err != nil {
		return nil, err
	}
	return s.repo.GetDescendantIDs(ctx, root.ID)
}
