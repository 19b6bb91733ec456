package activity

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

const entity = "activity"

// ancestorDepthQuery counts the nodes from $1 up to its root; the root itself has depth 1.
// The walk stops at $2 levels so a corrupted parent cycle cannot loop.
const ancestorDepthQuery = `
WITH RECURSIVE ancestors (id, parent_id, depth) AS (
    SELECT id, parent_id, 1 FROM activities WHERE id = $1
    UNION
    SELECT a.id, a.parent_id, ancestors.depth + 1
    FROM activities a
    JOIN ancestors ON a.id = ancestors.parent_id
    WHERE ancestors.depth < $2
)
SELECT COALESCE(MAX(depth), 0) FROM ancestors`

// descendantsQuery returns $1 and every node below it, at most $2 levels deep.
const descendantsQuery = `
WITH RECURSIVE subtree (id, level) AS (
    SELECT id, 1 FROM activities WHERE id = $1
    UNION
    SELECT a.id, subtree.level + 1
    FROM activities a
    JOIN subtree ON a.parent_id = subtree.id
    WHERE subtree.level < $2
)
SELECT DISTINCT id FROM subtree`

// ActivityRepository defines the interface for activity tree data access
type ActivityRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Activity, error)
	GetByName(ctx context.Context, name string) (*models.Activity, error)
	GetChildren(ctx context.Context, parentID *uuid.UUID) ([]models.Activity, error)
	Create(ctx context.Context, name string, parentID *uuid.UUID) (*models.Activity, error)
	Delete(ctx context.Context, id uuid.UUID) error
	GetDescendantIDs(ctx context.Context, rootID uuid.UUID) ([]uuid.UUID, error)
	AncestorDepth(ctx context.Context, id uuid.UUID) (int, error)
}

// Repository implements ActivityRepository
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

func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*models.Activity, error) {
	ctx, span := tracing.StartSpan(ctx, "ActivityRepository.GetByID")
	defer span.End()

	sb := activityStruct.SelectFrom(activitiesTable)
	sb.Where(sb.Equal("id", id))

	sql, args := sb.Build()

	r.logger.WithContext(ctx).WithField("id", id).Debug("Getting activity by ID")

	var row ActivityRow
	err := r.db.Executor(ctx).GetContext(ctx, &row, sql, args...)
	if err != nil {
		if database.IsNoRows(err) {
			return nil, apperrors.NotFound(entity, id)
		}
		r.logger.WithContext(ctx).WithError(err).Error("Failed to get activity")
		tracing.RecordError(span, err)
		return nil, err
	}

	return ToActivity(&row), nil
}

func (r *Repository) GetByName(ctx context.Context, name string) (*models.Activity, error) {
	ctx, span := tracing.StartSpan(ctx, "ActivityRepository.GetByName")
	defer span.End()

	sb := activityStruct.SelectFrom(activitiesTable)
	sb.Where(sb.Equal("name", name))

	sql, args := sb.Build()

	r.logger.WithContext(ctx).WithField("name", name).Debug("Getting activity by name")

	var row ActivityRow
	err := r.db.Executor(ctx).GetContext(ctx, &row, sql, args...)
	if err != nil {
		if database.IsNoRows(err) {
			return nil, apperrors.NotFound(entity, name)
		}
		r.logger.WithContext(ctx).WithError(err).Error("Failed to get activity by name")
		tracing.RecordError(span, err)
		return nil, err
	}

	return ToActivity(&row), nil
}

// GetChildren lists the direct children of parentID ordered by name; nil lists the roots.
func (r *Repository) GetChildren(ctx context.Context, parentID *uuid.UUID) ([]models.Activity, error) {
	ctx, span := tracing.StartSpan(ctx, "ActivityRepository.GetChildren")
	defer span.End()

	sb := activityStruct.SelectFrom(activitiesTable)
	if parentID == nil {
		sb.Where(sb.IsNull("parent_id"))
	} else {
		sb.Where(sb.Equal("parent_id", *parentID))
	}
	sb.OrderBy("name").Asc()

	sql, args := sb.Build()

	r.logger.WithContext(ctx).WithField("parent_id", parentID).Debug("Listing activity children")

	var rows []ActivityRow
	err := r.db.Executor(ctx).SelectContext(ctx, &rows, sql, args...)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to list activity children")
		tracing.RecordError(span, err)
		return nil, err
	}

	return ToActivities(rows), nil
}

// Create inserts a new activity under parentID. The parent row is share-locked for the
// lifetime of the transaction so it cannot be deleted while the child is inserted.
func (r *Repository) Create(ctx context.Context, name string, parentID *uuid.UUID) (activity *models.Activity, err error) {
	ctx, span := tracing.StartSpan(ctx, "ActivityRepository.Create")
	defer span.End()
	defer func() { metrics.RecordStoreOperation(entity, "create", err) }()

	ctx, tx, err := r.db.GetTx(ctx, nil)
	if err != nil {
		return nil, apperrors.CreateFailed(entity, err)
	}
	defer tx.Rollback(ctx)

	if parentID != nil {
		found, err := r.lockRow(ctx, tx, *parentID, "FOR SHARE")
		if err != nil {
			return nil, apperrors.CreateFailed(entity, err)
		}
		if !found {
			metrics.ActivityRejectionsTotal.WithLabelValues(string(apperrors.KindParentNotFound)).Inc()
			return nil, apperrors.ParentNotFound(*parentID)
		}

		depth, err := r.ancestorDepth(ctx, tx, *parentID)
		if err != nil {
			return nil, apperrors.CreateFailed(entity, err)
		}
		if depth >= models.MaxActivityDepth {
			r.logger.WithContext(ctx).WithFields(map[string]any{
				"parent_id": parentID,
				"depth":     depth,
			}).Warn("Rejecting activity beyond maximum depth")
			metrics.ActivityRejectionsTotal.WithLabelValues(string(apperrors.KindDepthLimitExceeded)).Inc()
			return nil, apperrors.DepthLimitExceeded(*parentID, models.MaxActivityDepth)
		}
	}

	activity = &models.Activity{ID: uuid.New(), Name: name, ParentID: parentID}
	ib := activityStruct.InsertInto(activitiesTable, FromActivity(activity))
	sql, args := ib.Build()

	r.logger.WithContext(ctx).WithFields(map[string]any{
		"id":        activity.ID,
		"name":      name,
		"parent_id": parentID,
	}).Debug("Creating activity")

	if _, err := tx.ExecContext(ctx, sql, args...); err != nil {
		switch {
		case database.IsUniqueViolation(err):
			return nil, apperrors.DuplicateName(entity, name)
		case database.IsForeignKeyViolation(err) && parentID != nil:
			return nil, apperrors.ParentNotFound(*parentID)
		}
		r.logger.WithContext(ctx).WithError(err).Error("Failed to create activity")
		tracing.RecordError(span, err)
		return nil, apperrors.CreateFailed(entity, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, apperrors.CreateFailed(entity, err)
	}

	return activity, nil
}

// Delete removes a childless activity. The row is locked before the children check so a
// concurrent child insert either waits for the delete or makes the check fail.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) (err error) {
	ctx, span := tracing.StartSpan(ctx, "ActivityRepository.Delete")
	defer span.End()
	defer func() { metrics.RecordStoreOperation(entity, "delete", err) }()

	ctx, tx, err := r.db.GetTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	found, err := r.lockRow(ctx, tx, id, "FOR UPDATE")
	if err != nil {
		return err
	}
	if !found {
		return apperrors.NotFound(entity, id)
	}

	children, err := r.countChildren(ctx, tx, id)
	if err != nil {
		return err
	}
	if children > 0 {
		r.logger.WithContext(ctx).WithFields(map[string]any{
			"id":       id,
			"children": children,
		}).Warn("Rejecting delete of activity with children")
		metrics.ActivityRejectionsTotal.WithLabelValues(string(apperrors.KindHasChildren)).Inc()
		return apperrors.HasChildren(id)
	}

	db := activityStruct.DeleteFrom(activitiesTable)
	db.Where(db.Equal("id", id))
	sql, args := db.Build()

	r.logger.WithContext(ctx).WithField("id", id).Debug("Deleting activity")

	if _, err := tx.ExecContext(ctx, sql, args...); err != nil {
		if database.IsForeignKeyViolation(err) {
			return apperrors.HasChildren(id)
		}
		r.logger.WithContext(ctx).WithError(err).Error("Failed to delete activity")
		tracing.RecordError(span, err)
		return err
	}

	return tx.Commit(ctx)
}

// GetDescendantIDs returns rootID and every activity below it. An unknown root yields an empty list.
func (r *Repository) GetDescendantIDs(ctx context.Context, rootID uuid.UUID) ([]uuid.UUID, error) {
	ctx, span := tracing.StartSpan(ctx, "ActivityRepository.GetDescendantIDs")
	defer span.End()

	r.logger.WithContext(ctx).WithField("root_id", rootID).Debug("Computing activity subtree")

	ids := []uuid.UUID{}
	err := r.db.Executor(ctx).SelectContext(ctx, &ids, descendantsQuery, rootID, models.MaxActivityDepth)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to compute activity subtree")
		tracing.RecordError(span, err)
		return nil, err
	}

	metrics.ActivityClosureSize.Observe(float64(len(ids)))
	return ids, nil
}

// AncestorDepth returns how many levels id sits at, counting itself; 0 when id does not exist.
func (r *Repository) AncestorDepth(ctx context.Context, id uuid.UUID) (int, error) {
	ctx, span := tracing.StartSpan(ctx, "ActivityRepository.AncestorDepth")
	defer span.End()

	return r.ancestorDepth(ctx, r.db.Executor(ctx), id)
}

func (r *Repository) ancestorDepth(ctx context.Context, q database.Queryer, id uuid.UUID) (int, error) {
	var depth int
	if err := q.GetContext(ctx, &depth, ancestorDepthQuery, id, models.MaxActivityDepth+1); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to compute activity depth")
		return 0, err
	}
	return depth, nil
}

func (r *Repository) lockRow(ctx context.Context, q database.Queryer, id uuid.UUID, mode string) (bool, error) {
	sb := database.NewSelectBuilder()
	sb.Select("id").From(activitiesTable)
	sb.Where(sb.Equal("id", id))
	sb.Lock(mode)

	sql, args := sb.Build()

	var locked uuid.UUID
	if err := q.GetContext(ctx, &locked, sql, args...); err != nil {
		if database.IsNoRows(err) {
			return false, nil
		}
		r.logger.WithContext(ctx).WithError(err).WithField("id", id).Error("Failed to lock activity")
		return false, err
	}
	return true, nil
}

func (r *Repository) countChildren(ctx context.Context, q database.Queryer, id uuid.UUID) (int, error) {
	sb := database.NewSelectBuilder()
	sb.Select("COUNT(*)").From(activitiesTable)
	sb.Where(sb.Equal("parent_id", id))

	sql, args := sb.Build()

	var count int
	if err := q.GetContext(ctx, &count, sql, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to count activity children")
		return 0, err
	}
	return count, nil
}
