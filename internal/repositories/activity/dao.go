package activity

import (
	"github.com/google/uuid"

	"github.com/Namra404/secunda/pkg/database"
	"github.com/Namra404/secunda/pkg/models"
)

const (
	activitiesTable = "activities"
)

// ActivityRow represents the database row for an activity
type ActivityRow struct {
	ID       uuid.UUID     `db:"id"`
	Name     string        `db:"name"`
	ParentID uuid.NullUUID `db:"parent_id"`
}

var activityStruct = database.NewStruct(new(ActivityRow))

func FromActivity(a *models.Activity) *ActivityRow {
	row := &ActivityRow{ID: a.ID, Name: a.Name}
	if a.ParentID != nil {
		row.ParentID = uuid.NullUUID{UUID: *a.ParentID, Valid: true}
	}
	return row
}

func ToActivity(row *ActivityRow) *models.Activity {
	activity := &models.Activity{ID: row.ID, Name: row.Name}
	if row.ParentID.Valid {
		parentID := row.ParentID.UUID
		activity.ParentID = &parentID
	}
	return activity
}

func ToActivities(rows []ActivityRow) []models.Activity {
	activities := make([]models.Activity, len(rows))
	for i := range rows {
		activities[i] = *ToActivity(&rows[i])
	}
	return activities
}
