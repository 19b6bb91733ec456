package building

import (
	"context"
	"strings"

	"github.com/Gobusters/ectologger"
	"github.com/google/uuid"

	"github.com/Namra404/secunda/internal/repositories/building"
	apperrors "github.com/Namra404/secunda/pkg/errors"
	"github.com/Namra404/secunda/pkg/models"
	"github.com/Namra404/secunda/pkg/tracing"
)

type Service struct {
	logger ectologger.Logger
	repo   building.BuildingRepository
}

func NewService(repo building.BuildingRepository, logger ectologger.Logger) *Service {
	return &Service{
		logger: logger,
		repo:   repo,
	}
}

func (s *Service) Create(ctx context.Context, address string, latitude, longitude float64) (*models.Building, error) {
	ctx, span := tracing.StartSpan(ctx, "building.Create")
	defer span.End()

	if strings.TrimSpace(address) == "" {
		return nil, apperrors.InvalidArgument("building", "address is required")
	}

	s.logger.WithContext(ctx).WithFields(map[string]any{
		"address":   address,
		"latitude":  latitude,
		"longitude": longitude,
	}).Info("creating building")

	return s.repo.Create(ctx, address, latitude, longitude)
}

func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (*models.Building, error) {
	ctx, span := tracing.StartSpan(ctx, "building.GetByID")
	defer span.End()

	return s.repo.GetByID(ctx, id)
}

func (s *Service) ListAll(ctx context.Context) ([]models.Building, error) {
	ctx, span := tracing.StartSpan(ctx, "building.ListAll")
	defer span.End()

	return s.repo.ListAll(ctx)
}

func (s *Service) ListBySquare(ctx context.Context, square models.Square) ([]models.Building, error) {
	ctx, span := tracing.StartSpan(ctx, "building.ListBySquare")
	defer span.End()

	if err := square.Validate(); err != nil {
		return nil, apperrors.InvalidArgument("building", err.Error())
	}

	return s.repo.ListBySquare(ctx, square)
}
