package organization

import (
	"strings"

	"github.com/google/uuid"

	"github.com/Namra404/secunda/pkg/models"
)

const (
	organizationsTable          = "organizations"
	organizationPhonesTable     = "organization_phones"
	organizationActivitiesTable = "organization_activities"
	activitiesTable             = "activities"
	buildingsTable              = "buildings"
)

// OrganizationRow represents the database row for an organization
type OrganizationRow struct {
	ID         uuid.UUID `db:"id"`
	Name       string    `db:"name"`
	BuildingID uuid.UUID `db:"building_id"`
}

// PhoneRow is one phone of an organization; Position keeps the caller's order.
type PhoneRow struct {
	OrganizationID uuid.UUID `db:"organization_id"`
	Phone          string    `db:"phone"`
	Position       int       `db:"position"`
}

// LinkedActivityRow is an activity joined through organization_activities.
type LinkedActivityRow struct {
	OrganizationID uuid.UUID     `db:"organization_id"`
	ID             uuid.UUID     `db:"id"`
	Name           string        `db:"name"`
	ParentID       uuid.NullUUID `db:"parent_id"`
}

func ToOrganization(row *OrganizationRow) *models.Organization {
	return &models.Organization{
		ID:         row.ID,
		Name:       row.Name,
		BuildingID: row.BuildingID,
		Phones:     []string{},
		Activities: []models.Activity{},
	}
}

func (row *LinkedActivityRow) toActivity() models.Activity {
	activity := models.Activity{ID: row.ID, Name: row.Name}
	if row.ParentID.Valid {
		parentID := row.ParentID.UUID
		activity.ParentID = &parentID
	}
	return activity
}

// normalizePhones trims every phone, drops blanks and keeps the first occurrence of duplicates.
func normalizePhones(phones []string) []string {
	seen := make(map[string]struct{}, len(phones))
	result := make([]string, 0, len(phones))
	for _, phone := range phones {
		phone = strings.TrimSpace(phone)
		if phone == "" {
			continue
		}
		if _, ok := seen[phone]; ok {
			continue
		}
		seen[phone] = struct{}{}
		result = append(result, phone)
	}
	return result
}

func uniqueIDs(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(ids))
	result := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if id == uuid.Nil {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		result = append(result, id)
	}
	return result
}
