package organization

import (
	"context"
	"strings"

	"github.com/Gobusters/ectologger"
	"github.com/google/uuid"

	"github.com/Namra404/secunda/internal/repositories/organization"
	apperrors "github.com/Namra404/secunda/pkg/errors"
	"github.com/Namra404/secunda/pkg/models"
	"github.com/Namra404/secunda/pkg/tracing"
)

type Service struct {
	logger ectologger.Logger
	repo   organization.OrganizationRepository
}

func NewService(repo organization.OrganizationRepository, logger ectologger.Logger) *Service {
	return &Service{
		logger: logger,
		repo:   repo,
	}
}

func (s *Service) Create(ctx context.Context, request models.CreateOrganization) (*models.Organization, error) {
	ctx, span := tracing.StartSpan(ctx, "organization.Create")
	defer span.End()

	if strings.TrimSpace(request.Name) == "" {
		return nil, apperrors.InvalidArgument("organization", "name is required")
	}
	if request.BuildingID == uuid.Nil {
		return nil, apperrors.InvalidArgument("organization", "building_id is required")
	}

	s.logger.WithContext(ctx).WithFields(map[string]any{
		"name":         request.Name,
		"building_id":  request.BuildingID,
		"phones":       len(request.Phones),
		"activity_ids": len(request.ActivityIDs),
	}).Info("creating organization")

	return s.repo.Create(ctx, request)
}

func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (*models.Organization, error) {
	ctx, span := tracing.StartSpan(ctx, "organization.GetByID")
	defer span.End()

	return s.repo.GetByID(ctx, id)
}

func (s *Service) ListAll(ctx context.Context) ([]models.Organization, error) {
	ctx, span := tracing.StartSpan(ctx, "organization.ListAll")
	defer span.End()

	return s.repo.ListAll(ctx)
}

func (s *Service) ListByBuilding(ctx context.Context, buildingID uuid.UUID) ([]models.Organization, error) {
	ctx, span := tracing.StartSpan(ctx, "organization.ListByBuilding")
	defer span.End()

	return s.repo.ListByBuilding(ctx, buildingID)
}

func (s *Service) ListByActivityID(ctx context.Context, activityID uuid.UUID) ([]models.Organization, error) {
	ctx, span := tracing.StartSpan(ctx, "organization.ListByActivityID")
	defer span.End()

	return s.repo.ListByActivityID(ctx, activityID)
}

func (s *Service) ListByActivityName(ctx context.Context, name string) ([]models.Organization, error) {
	ctx, span := tracing.StartSpan(ctx, "organization.ListByActivityName")
	defer span.End()

	if strings.TrimSpace(name) == "" {
		return nil, apperrors.InvalidArgument("activity", "name is required")
	}

	return s.repo.ListByActivityName(ctx, name)
}

func (s *Service) FindByExactName(ctx context.Context, name string) ([]models.Organization, error) {
	ctx, span := tracing.StartSpan(ctx, "organization.FindByExactName")
	defer span.End()

	if strings.TrimSpace(name) == "" {
		return nil, apperrors.InvalidArgument("organization", "name is required")
	}

	return s.repo.FindByExactName(ctx, name)
}

func (s *Service) ListBySquare(ctx context.Context, square models.Square) ([]models.Organization, error) {
	ctx, span := tracing.StartSpan(ctx, "organization.ListBySquare")
	defer span.End()

	if err := square.Validate(); err != nil {
		return nil, apperrors.InvalidArgument("organization", err.Error())
	}

	return s.repo.ListBySquare(ctx, square)
}
