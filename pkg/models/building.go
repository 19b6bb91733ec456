package models

import "github.com/google/uuid"

type Building struct {
	ID        uuid.UUID `json:"id"`
	Address   string    `json:"address"`
	Latitude  float64   `json:"latitude"`
	Longitude float64   `json:"longitude"`
}

type CreateBuildingRequest struct {
	Address   string   `json:"address" validate:"required,max=255"`
	Latitude  *float64 `json:"latitude" validate:"required,gte=-90,lte=90"`
	Longitude *float64 `json:"longitude" validate:"required,gte=-180,lte=180"`
}

type BuildingsListResponse struct {
	Buildings []Building `json:"buildings"`
}
