package building

import (
	"github.com/google/uuid"

	"github.com/Namra404/secunda/pkg/database"
	"github.com/Namra404/secunda/pkg/models"
)

const (
	buildingsTable = "buildings"
)

// BuildingRow represents the database row for a building
type BuildingRow struct {
	ID        uuid.UUID `db:"id"`
	Address   string    `db:"address"`
	Latitude  float64   `db:"latitude"`
	Longitude float64   `db:"longitude"`
}

var buildingStruct = database.NewStruct(new(BuildingRow))

func FromBuilding(b *models.Building) *BuildingRow {
	return &BuildingRow{
		ID:        b.ID,
		Address:   b.Address,
		Latitude:  b.Latitude,
		Longitude: b.Longitude,
	}
}

func ToBuilding(row *BuildingRow) *models.Building {
	return &models.Building{
		ID:        row.ID,
		Address:   row.Address,
		Latitude:  row.Latitude,
		Longitude: row.Longitude,
	}
}

func ToBuildings(rows []BuildingRow) []models.Building {
	buildings := make([]models.Building, len(rows))
	for i := range rows {
		buildings[i] = *ToBuilding(&rows[i])
	}
	return buildings
}
