package building

import (
	"context"

	"github.com/Gobusters/ectologger"
	"github.com/google/uuid"

	"github.com/Namra404/secunda/pkg/database"
	apperrors "github.com/Namra404/secunda/pkg/errors"
	"github.com/Namra404/secunda/pkg/metrics"
	"github.com/Namra404/secunda/pkg/models"
	"github.com/Namra404/secunda/pkg/tracing"
)

const entity = "building"

// BuildingRepository defines the interface for building data access
type BuildingRepository interface {
	Create(ctx context.Context, address string, latitude, longitude float64) (*models.Building, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.Building, error)
	GetByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]models.Building, error)
	ListAll(ctx context.Context) ([]models.Building, error)
	ListBySquare(ctx context.Context, square models.Square) ([]models.Building, error)
}

// Repository implements BuildingRepository
type Repository struct {
	db     database.DB
	logger ectologger.Logger
}

func NewRepository(db database.DB, logger ectologger.Logger) *Repository {
	return &Repository{
		db:     db,
		logger: logger,
	}
}

// Create inserts a building with a unique address. The lookup catches the common duplicate;
// the unique constraint catches the concurrent one.
func (r *Repository) Create(ctx context.Context, address string, latitude, longitude float64) (building *models.Building, err error) {
	ctx, span := tracing.StartSpan(ctx, "BuildingRepository.Create")
	defer span.End()
	defer func() { metrics.RecordStoreOperation(entity, "create", err) }()

	exists, err := r.addressExists(ctx, address)
	if err != nil {
		return nil, apperrors.CreateFailed(entity, err)
	}
	if exists {
		return nil, apperrors.DuplicateAddress(address)
	}

	building = &models.Building{
		ID:        uuid.New(),
		Address:   address,
		Latitude:  latitude,
		Longitude: longitude,
	}

	ib := buildingStruct.InsertInto(buildingsTable, FromBuilding(building))
	sql, args := ib.Build()

	r.logger.WithContext(ctx).WithFields(map[string]any{
		"id":        building.ID,
		"address":   address,
		"latitude":  latitude,
		"longitude": longitude,
	}).Debug("Creating building")

	if _, err := r.db.Executor(ctx).ExecContext(ctx, sql, args...); err != nil {
		if database.IsUniqueViolation(err) {
			return nil, apperrors.DuplicateAddress(address)
		}
		r.logger.WithContext(ctx).WithError(err).Error("Failed to create building")
		tracing.RecordError(span, err)
		return nil, apperrors.CreateFailed(entity, err)
	}

	return building, nil
}

func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*models.Building, error) {
	ctx, span := tracing.StartSpan(ctx, "BuildingRepository.GetByID")
	defer span.End()

	sb := buildingStruct.SelectFrom(buildingsTable)
	sb.Where(sb.Equal("id", id))

	sql, args := sb.Build()

	r.logger.WithContext(ctx).WithField("id", id).Debug("Getting building by ID")

	var row BuildingRow
	err := r.db.Executor(ctx).GetContext(ctx, &row, sql, args...)
	if err != nil {
		if database.IsNoRows(err) {
			return nil, apperrors.NotFound(entity, id)
		}
		r.logger.WithContext(ctx).WithError(err).Error("Failed to get building")
		tracing.RecordError(span, err)
		return nil, err
	}

	return ToBuilding(&row), nil
}

// GetByIDs loads many buildings in one round trip, keyed by id. Unknown ids are absent from the map.
func (r *Repository) GetByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]models.Building, error) {
	ctx, span := tracing.StartSpan(ctx, "BuildingRepository.GetByIDs")
	defer span.End()

	result := make(map[uuid.UUID]models.Building, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	sb := buildingStruct.SelectFrom(buildingsTable)
	sb.Where(sb.AnyUUID("id", ids))

	sql, args := sb.Build()

	var rows []BuildingRow
	if err := r.db.Executor(ctx).SelectContext(ctx, &rows, sql, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to load buildings")
		tracing.RecordError(span, err)
		return nil, err
	}

	for i := range rows {
		result[rows[i].ID] = *ToBuilding(&rows[i])
	}
	return result, nil
}

func (r *Repository) ListAll(ctx context.Context) ([]models.Building, error) {
	ctx, span := tracing.StartSpan(ctx, "BuildingRepository.ListAll")
	defer span.End()

	sb := buildingStruct.SelectFrom(buildingsTable)
	sb.OrderBy("id").Asc()

	sql, args := sb.Build()

	r.logger.WithContext(ctx).Debug("Listing buildings")

	var rows []BuildingRow
	if err := r.db.Executor(ctx).SelectContext(ctx, &rows, sql, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to list buildings")
		tracing.RecordError(span, err)
		return nil, err
	}

	return ToBuildings(rows), nil
}

// ListBySquare returns buildings inside the rectangle, edges included. Coordinates are
// compared as plain numbers with no geodesic correction.
func (r *Repository) ListBySquare(ctx context.Context, square models.Square) ([]models.Building, error) {
	ctx, span := tracing.StartSpan(ctx, "BuildingRepository.ListBySquare")
	defer span.End()

	sb := buildingStruct.SelectFrom(buildingsTable)
	sb.Where(
		sb.Between("latitude", square.LatMin, square.LatMax),
		sb.Between("longitude", square.LonMin, square.LonMax),
	)
	sb.OrderBy("id").Asc()

	sql, args := sb.Build()

	r.logger.WithContext(ctx).WithFields(map[string]any{
		"lat_min": square.LatMin,
		"lon_min": square.LonMin,
		"lat_max": square.LatMax,
		"lon_max": square.LonMax,
	}).Debug("Listing buildings in square")

	var rows []BuildingRow
	if err := r.db.Executor(ctx).SelectContext(ctx, &rows, sql, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to list buildings in square")
		tracing.RecordError(span, err)
		return nil, err
	}

	return ToBuildings(rows), nil
}

func (r *Repository) addressExists(ctx context.Context, address string) (bool, error) {
	sb := database.NewSelectBuilder()
	sb.Select("COUNT(*)").From(buildingsTable)
	sb.Where(sb.Equal("address", address))

	sql, args := sb.Build()

	var count int
	if err := r.db.Executor(ctx).GetContext(ctx, &count, sql, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to look up building address")
		return false, err
	}
	return count > 0, nil
}
