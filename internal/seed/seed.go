// Package seed fills an empty directory with a fixture dataset.
package seed

import (
	"context"
	"database/sql"

	"github.com/Gobusters/ectologger"
	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/Namra404/secunda/pkg/database"
	"github.com/Namra404/secunda/pkg/models"
)

// Transactor opens the unit of work the whole seed runs in. database.DB satisfies it.
type Transactor interface {
	GetTx(ctx context.Context, opts *sql.TxOptions) (context.Context, database.Tx, error)
}

type BuildingService interface {
	Create(ctx context.Context, address string, latitude, longitude float64) (*models.Building, error)
	ListAll(ctx context.Context) ([]models.Building, error)
}

type ActivityService interface {
	Create(ctx context.Context, name string, parentID *uuid.UUID) (*models.Activity, error)
}

type OrganizationService interface {
	Create(ctx context.Context, request models.CreateOrganization) (*models.Organization, error)
}

type Seeder struct {
	db            Transactor
	buildings     BuildingService
	activities    ActivityService
	organizations OrganizationService
	logger        ectologger.Logger
}

func NewSeeder(db Transactor, buildings BuildingService, activities ActivityService, organizations OrganizationService, logger ectologger.Logger) *Seeder {
	return &Seeder{
		db:            db,
		buildings:     buildings,
		activities:    activities,
		organizations: organizations,
		logger:        logger,
	}
}

// Run inserts dataset unless buildings already exist. It reports whether anything was written.
// Everything is written in one transaction, so a failed run leaves the directory empty.
func (s *Seeder) Run(ctx context.Context, dataset *Dataset) (bool, error) {
	ctx, tx, err := s.db.GetTx(ctx, nil)
	if err != nil {
		return false, errors.Wrap(err, "failed to begin seed transaction")
	}
	defer tx.Rollback(ctx)

	existing, err := s.buildings.ListAll(ctx)
	if err != nil {
		return false, errors.Wrap(err, "failed to check existing buildings")
	}
	if len(existing) > 0 {
		s.logger.WithContext(ctx).WithField("buildings", len(existing)).Info("Directory is not empty, skipping seed")
		return false, nil
	}

	buildingIDs := make(map[string]uuid.UUID, len(dataset.Buildings))
	for _, b := range dataset.Buildings {
		created, err := s.buildings.Create(ctx, b.Address, b.Latitude, b.Longitude)
		if err != nil {
			return false, errors.Wrapf(err, "failed to seed building %q", b.Address)
		}
		buildingIDs[b.Address] = created.ID
	}

	activityIDs := make(map[string]uuid.UUID, len(dataset.Activities))
	for _, a := range dataset.Activities {
		var parentID *uuid.UUID
		if a.Parent != "" {
			id := activityIDs[a.Parent]
			parentID = &id
		}
		created, err := s.activities.Create(ctx, a.Name, parentID)
		if err != nil {
			return false, errors.Wrapf(err, "failed to seed activity %q", a.Name)
		}
		activityIDs[a.Name] = created.ID
	}

	for _, o := range dataset.Organizations {
		linked := make([]uuid.UUID, 0, len(o.Activities))
		for _, name := range o.Activities {
			linked = append(linked, activityIDs[name])
		}
		_, err := s.organizations.Create(ctx, models.CreateOrganization{
			Name:        o.Name,
			BuildingID:  buildingIDs[o.Building],
			Phones:      o.Phones,
			ActivityIDs: linked,
		})
		if err != nil {
			return false, errors.Wrapf(err, "failed to seed organization %q", o.Name)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return false, errors.Wrap(err, "failed to commit seed data")
	}

	s.logger.WithContext(ctx).WithFields(map[string]any{
		"buildings":     len(dataset.Buildings),
		"activities":    len(dataset.Activities),
		"organizations": len(dataset.Organizations),
	}).Info("Seed data created")
	return true, nil
}
