package building

import (
	"context"
	"testing"

	"github.com/Gobusters/ectologger"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/Namra404/secunda/pkg/errors"
	"github.com/Namra404/secunda/pkg/models"
)

type memoryBuildings struct {
	buildings []models.Building
}

func (m *memoryBuildings) Create(ctx context.Context, address string, latitude, longitude float64) (*models.Building, error) {
	for _, b := range m.buildings {
		if b.Address == address {
			return nil, apperrors.DuplicateAddress(address)
		}
	}
	b := models.Building{ID: uuid.New(), Address: address, Latitude: latitude, Longitude: longitude}
	m.buildings = append(m.buildings, b)
	return &b, nil
}

func (m *memoryBuildings) GetByID(ctx context.Context, id uuid.UUID) (*models.Building, error) {
	for _, b := range m.buildings {
		if b.ID == id {
			return &b, nil
		}
	}
	return nil, apperrors.NotFound("building", id)
}

func (m *memoryBuildings) GetByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]models.Building, error) {
	return map[uuid.UUID]models.Building{}, nil
}

func (m *memoryBuildings) ListAll(ctx context.Context) ([]models.Building, error) {
	return m.buildings, nil
}

func (m *memoryBuildings) ListBySquare(ctx context.Context, square models.Square) ([]models.Building, error) {
	var result []models.Building
	for _, b := range m.buildings {
		if square.Contains(b.Latitude, b.Longitude) {
			result = append(result, b)
		}
	}
	return result, nil
}

func newTestService() *Service {
	logger := ectologger.NewEctoLogger(func(_ ectologger.EctoLogMessage) {})
	return NewService(&memoryBuildings{}, logger)
}

func TestCreate_AddressesCompareExactly(t *testing.T) {
	ctx := context.Background()
	svc := newTestService()

	_, err := svc.Create(ctx, "Lenina 1", 55.75, 37.61)
	require.NoError(t, err)

	_, err = svc.Create(ctx, "Lenina 1", 10, 10)
	assert.True(t, apperrors.IsKind(err, apperrors.KindDuplicateAddress))

	padded, err := svc.Create(ctx, " Lenina 1 ", 10, 10)
	require.NoError(t, err)
	assert.Equal(t, " Lenina 1 ", padded.Address)
}

func TestCreate_BlankAddress(t *testing.T) {
	_, err := newTestService().Create(context.Background(), "  ", 0, 0)

	assert.True(t, apperrors.IsKind(err, apperrors.KindInvalidArgument))
}

func TestListBySquare_IncludesEdgesExcludesOutside(t *testing.T) {
	ctx := context.Background()
	svc := newTestService()

	inside, _ := svc.Create(ctx, "inside", 55.5, 37.5)
	corner, _ := svc.Create(ctx, "corner", 55, 38)
	_, _ = svc.Create(ctx, "outside", 54.99, 37.5)

	buildings, err := svc.ListBySquare(ctx, models.Square{LatMin: 55, LonMin: 37, LatMax: 56, LonMax: 38})

	require.NoError(t, err)
	ids := []uuid.UUID{}
	for _, b := range buildings {
		ids = append(ids, b.ID)
	}
	assert.ElementsMatch(t, []uuid.UUID{inside.ID, corner.ID}, ids)
}

func TestListBySquare_InvertedBox(t *testing.T) {
	_, err := newTestService().ListBySquare(context.Background(), models.Square{LatMin: 56, LonMin: 37, LatMax: 55, LonMax: 38})

	assert.True(t, apperrors.IsKind(err, apperrors.KindInvalidArgument))
}
