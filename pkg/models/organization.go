package models

import "github.com/google/uuid"

type Organization struct {
	ID         uuid.UUID  `json:"id"`
	Name       string     `json:"name"`
	BuildingID uuid.UUID  `json:"building_id"`
	Building   *Building  `json:"building,omitempty"`
	Phones     []string   `json:"phones"`
	Activities []Activity `json:"activities"`
}

// CreateOrganization carries what the store needs to insert an organization.
type CreateOrganization struct {
	Name        string
	BuildingID  uuid.UUID
	Phones      []string
	ActivityIDs []uuid.UUID
}

type CreateOrganizationRequest struct {
	Name        string      `json:"name" validate:"required,max=255"`
	BuildingID  uuid.UUID   `json:"building_id" validate:"required"`
	Phones      []string    `json:"phones" validate:"dive,phone"`
	ActivityIDs []uuid.UUID `json:"activity_ids"`
}

type OrganizationsListResponse struct {
	Organizations []Organization `json:"organizations"`
}
