package organization

import (
	"context"

	"github.com/Gobusters/ectolinq"
	"github.com/Gobusters/ectologger"
	"github.com/google/uuid"

	"github.com/Namra404/secunda/internal/repositories/activity"
	"github.com/Namra404/secunda/internal/repositories/building"
	"github.com/Namra404/secunda/pkg/database"
	apperrors "github.com/Namra404/secunda/pkg/errors"
	"github.com/Namra404/secunda/pkg/metrics"
	"github.com/Namra404/secunda/pkg/models"
	"github.com/Namra404/secunda/pkg/tracing"
)

const entity = "organization"

// OrganizationRepository defines the interface for organization data access
type OrganizationRepository interface {
	Create(ctx context.Context, organization models.CreateOrganization) (*models.Organization, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.Organization, error)
	ListAll(ctx context.Context) ([]models.Organization, error)
	ListByBuilding(ctx context.Context, buildingID uuid.UUID) ([]models.Organization, error)
	ListByActivityID(ctx context.Context, activityID uuid.UUID) ([]models.Organization, error)
	ListByActivityName(ctx context.Context, name string) ([]models.Organization, error)
	ListBySquare(ctx context.Context, square models.Square) ([]models.Organization, error)
	FindByExactName(ctx context.Context, name string) ([]models.Organization, error)
}

// Repository implements OrganizationRepository. It reads the activity tree for closure
// filtering and the building store for eager building loading.
type Repository struct {
	db         database.DB
	activities activity.ActivityRepository
	buildings  building.BuildingRepository
	logger     ectologger.Logger
}

func NewRepository(db database.DB, activities activity.ActivityRepository, buildings building.BuildingRepository, logger ectologger.Logger) *Repository {
	return &Repository{
		db:         db,
		activities: activities,
		buildings:  buildings,
		logger:     logger,
	}
}

// Create stores the organization, its phones and its activity links in one transaction.
// Activity ids that do not exist are dropped and logged rather than failing the create.
func (r *Repository) Create(ctx context.Context, organization models.CreateOrganization) (created *models.Organization, err error) {
	ctx, span := tracing.StartSpan(ctx, "OrganizationRepository.Create")
	defer span.End()
	defer func() { metrics.RecordStoreOperation(entity, "create", err) }()

	id := uuid.New()
	logger := r.logger.WithContext(ctx).WithFields(map[string]any{
		"id":          id,
		"name":        organization.Name,
		"building_id": organization.BuildingID,
	})

	txCtx, tx, err := r.db.GetTx(ctx, nil)
	if err != nil {
		return nil, apperrors.CreateFailed(entity, err)
	}
	defer tx.Rollback(txCtx)

	if err := r.insertOrganization(txCtx, tx, id, organization); err != nil {
		logger.WithError(err).Error("Failed to create organization")
		tracing.RecordError(span, err)
		return nil, apperrors.CreateFailed(entity, err)
	}

	if err := r.insertPhones(txCtx, tx, id, normalizePhones(organization.Phones)); err != nil {
		logger.WithError(err).Error("Failed to store organization phones")
		tracing.RecordError(span, err)
		return nil, apperrors.CreateFailed(entity, err)
	}

	requested := uniqueIDs(organization.ActivityIDs)
	existing, err := r.existingActivityIDs(txCtx, tx, requested)
	if err != nil {
		logger.WithError(err).Error("Failed to resolve organization activities")
		tracing.RecordError(span, err)
		return nil, apperrors.CreateFailed(entity, err)
	}
	if dropped := missingIDs(requested, existing); len(dropped) > 0 {
		logger.WithField("dropped_activity_ids", dropped).Warn("Ignoring unknown activity ids for organization")
	}

	if err := r.linkActivities(txCtx, tx, id, existing); err != nil {
		logger.WithError(err).Error("Failed to link organization activities")
		tracing.RecordError(span, err)
		return nil, apperrors.CreateFailed(entity, err)
	}

	if err := tx.Commit(txCtx); err != nil {
		return nil, apperrors.CreateFailed(entity, err)
	}

	logger.Info("Created organization")

	return r.GetByID(ctx, id)
}

func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*models.Organization, error) {
	ctx, span := tracing.StartSpan(ctx, "OrganizationRepository.GetByID")
	defer span.End()

	sb := selectOrganizations()
	sb.Where(sb.Equal("organizations.id", id))

	organizations, err := r.list(ctx, sb)
	if err != nil {
		tracing.RecordError(span, err)
		return nil, err
	}
	if len(organizations) == 0 {
		return nil, apperrors.NotFound(entity, id)
	}
	return &organizations[0], nil
}

func (r *Repository) ListAll(ctx context.Context) ([]models.Organization, error) {
	ctx, span := tracing.StartSpan(ctx, "OrganizationRepository.ListAll")
	defer span.End()

	sb := selectOrganizations()
	sb.OrderBy("organizations.name").Asc()

	return r.list(ctx, sb)
}

func (r *Repository) ListByBuilding(ctx context.Context, buildingID uuid.UUID) ([]models.Organization, error) {
	ctx, span := tracing.StartSpan(ctx, "OrganizationRepository.ListByBuilding")
	defer span.End()

	sb := selectOrganizations()
	sb.Where(sb.Equal("organizations.building_id", buildingID))
	sb.OrderBy("organizations.name").Asc()

	return r.list(ctx, sb)
}

// FindByExactName matches the whole name, case-sensitively.
func (r *Repository) FindByExactName(ctx context.Context, name string) ([]models.Organization, error) {
	ctx, span := tracing.StartSpan(ctx, "OrganizationRepository.FindByExactName")
	defer span.End()

	sb := selectOrganizations()
	sb.Where(sb.Equal("organizations.name", name))
	sb.OrderBy("organizations.name").Asc()

	return r.list(ctx, sb)
}

// ListByActivityID returns organizations linked to activityID or to any activity below it,
// each organization once, ordered by name.
func (r *Repository) ListByActivityID(ctx context.Context, activityID uuid.UUID) ([]models.Organization, error) {
	ctx, span := tracing.StartSpan(ctx, "OrganizationRepository.ListByActivityID")
	defer span.End()

	closure, err := r.activities.GetDescendantIDs(ctx, activityID)
	if err != nil {
		tracing.RecordError(span, err)
		return nil, err
	}
	closure = uniqueIDs(append(closure, activityID))

	r.logger.WithContext(ctx).WithFields(map[string]any{
		"activity_id":  activityID,
		"closure_size": len(closure),
	}).Debug("Listing organizations by activity closure")

	sb := selectOrganizations()
	sb.Distinct()
	sb.Join(organizationActivitiesTable+" oa", "oa.organization_id = organizations.id")
	sb.Where(sb.AnyUUID("oa.activity_id", closure))
	sb.OrderBy("organizations.name").Asc()

	return r.list(ctx, sb)
}

func (r *Repository) ListByActivityName(ctx context.Context, name string) ([]models.Organization, error) {
	ctx, span := tracing.StartSpan(ctx, "OrganizationRepository.ListByActivityName")
	defer span.End()

	root, err := r.activities.GetByName(ctx, name)
	if err != nil {
		if apperrors.IsKind(err, apperrors.KindNotFound) {
			return nil, apperrors.ActivityNotFound(name)
		}
		tracing.RecordError(span, err)
		return nil, err
	}

	return r.ListByActivityID(ctx, root.ID)
}

// ListBySquare returns organizations whose building lies inside the rectangle, edges included.
func (r *Repository) ListBySquare(ctx context.Context, square models.Square) ([]models.Organization, error) {
	ctx, span := tracing.StartSpan(ctx, "OrganizationRepository.ListBySquare")
	defer span.End()

	sb := selectOrganizations()
	sb.Join(buildingsTable, buildingsTable+".id = organizations.building_id")
	sb.Where(
		sb.Between(buildingsTable+".latitude", square.LatMin, square.LatMax),
		sb.Between(buildingsTable+".longitude", square.LonMin, square.LonMax),
	)
	sb.OrderBy("organizations.name").Asc()

	return r.list(ctx, sb)
}

func selectOrganizations() *database.SelectBuilder {
	sb := database.NewSelectBuilder()
	sb.Select("organizations.id", "organizations.name", "organizations.building_id").From(organizationsTable)
	return sb
}

// list runs sb and loads phones, activities and buildings for the result with one query each.
func (r *Repository) list(ctx context.Context, sb *database.SelectBuilder) ([]models.Organization, error) {
	sql, args := sb.Build()

	var rows []OrganizationRow
	if err := r.db.Executor(ctx).SelectContext(ctx, &rows, sql, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to list organizations")
		return nil, err
	}

	organizations := make([]models.Organization, len(rows))
	if len(rows) == 0 {
		return organizations, nil
	}

	ids := make([]uuid.UUID, len(rows))
	buildingIDs := make([]uuid.UUID, len(rows))
	index := make(map[uuid.UUID]int, len(rows))
	for i := range rows {
		organizations[i] = *ToOrganization(&rows[i])
		ids[i] = rows[i].ID
		buildingIDs[i] = rows[i].BuildingID
		index[rows[i].ID] = i
	}

	phones, err := r.loadPhones(ctx, ids)
	if err != nil {
		return nil, err
	}
	for _, phone := range phones {
		i := index[phone.OrganizationID]
		organizations[i].Phones = append(organizations[i].Phones, phone.Phone)
	}

	activities, err := r.loadActivities(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range activities {
		j := index[activities[i].OrganizationID]
		organizations[j].Activities = append(organizations[j].Activities, activities[i].toActivity())
	}

	buildings, err := r.buildings.GetByIDs(ctx, uniqueIDs(buildingIDs))
	if err != nil {
		return nil, err
	}
	for i := range organizations {
		if b, ok := buildings[organizations[i].BuildingID]; ok {
			organizations[i].Building = &b
		}
	}

	return organizations, nil
}

func (r *Repository) loadPhones(ctx context.Context, organizationIDs []uuid.UUID) ([]PhoneRow, error) {
	sb := database.NewSelectBuilder()
	sb.Select("organization_id", "phone", "position").From(organizationPhonesTable)
	sb.Where(sb.AnyUUID("organization_id", organizationIDs))
	sb.OrderBy("organization_id", "position").Asc()

	sql, args := sb.Build()

	var rows []PhoneRow
	if err := r.db.Executor(ctx).SelectContext(ctx, &rows, sql, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to load organization phones")
		return nil, err
	}
	return rows, nil
}

func (r *Repository) loadActivities(ctx context.Context, organizationIDs []uuid.UUID) ([]LinkedActivityRow, error) {
	sb := database.NewSelectBuilder()
	sb.Select("oa.organization_id", "a.id", "a.name", "a.parent_id").From(organizationActivitiesTable + " oa")
	sb.Join(activitiesTable+" a", "a.id = oa.activity_id")
	sb.Where(sb.AnyUUID("oa.organization_id", organizationIDs))
	sb.OrderBy("a.name").Asc()

	sql, args := sb.Build()

	var rows []LinkedActivityRow
	if err := r.db.Executor(ctx).SelectContext(ctx, &rows, sql, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to load organization activities")
		return nil, err
	}
	return rows, nil
}

func (r *Repository) insertOrganization(ctx context.Context, q database.Queryer, id uuid.UUID, organization models.CreateOrganization) error {
	ib := database.NewInsertBuilder().
		InsertInto(organizationsTable).
		Cols("id", "name", "building_id").
		Values(id, organization.Name, organization.BuildingID)

	sql, args := ib.Build()
	_, err := q.ExecContext(ctx, sql, args...)
	return err
}

func (r *Repository) insertPhones(ctx context.Context, q database.Queryer, organizationID uuid.UUID, phones []string) error {
	if len(phones) == 0 {
		return nil
	}

	ib := database.NewInsertBuilder().
		InsertInto(organizationPhonesTable).
		Cols("id", "organization_id", "phone", "position")
	for position, phone := range phones {
		ib.Values(uuid.New(), organizationID, phone, position)
	}

	sql, args := ib.Build()
	_, err := q.ExecContext(ctx, sql, args...)
	return err
}

func (r *Repository) existingActivityIDs(ctx context.Context, q database.Queryer, ids []uuid.UUID) ([]uuid.UUID, error) {
	existing := []uuid.UUID{}
	if len(ids) == 0 {
		return existing, nil
	}

	sb := database.NewSelectBuilder()
	sb.Select("id").From(activitiesTable)
	sb.Where(sb.AnyUUID("id", ids))

	sql, args := sb.Build()
	if err := q.SelectContext(ctx, &existing, sql, args...); err != nil {
		return nil, err
	}
	return existing, nil
}

func (r *Repository) linkActivities(ctx context.Context, q database.Queryer, organizationID uuid.UUID, activityIDs []uuid.UUID) error {
	if len(activityIDs) == 0 {
		return nil
	}

	ib := database.NewInsertBuilder().
		InsertInto(organizationActivitiesTable).
		Cols("organization_id", "activity_id")
	for _, activityID := range activityIDs {
		ib.Values(organizationID, activityID)
	}
	ib.OnConflictDoNothing()

	sql, args := ib.Build()
	_, err := q.ExecContext(ctx, sql, args...)
	return err
}

func missingIDs(requested, existing []uuid.UUID) []uuid.UUID {
	return ectolinq.Filter(requested, func(id uuid.UUID) bool {
		return !ectolinq.Contains(existing, id)
	})
}
