package building

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/Gobusters/ectologger"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Namra404/secunda/pkg/database"
	apperrors "github.com/Namra404/secunda/pkg/errors"
	"github.com/Namra404/secunda/pkg/models"
)

func setupMockRepository(t *testing.T) (sqlmock.Sqlmock, *Repository) {
	t.Helper()
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { mockDB.Close() })

	logger := ectologger.NewEctoLogger(func(_ ectologger.EctoLogMessage) {})
	db := database.NewDatabaseInstance(sqlx.NewDb(mockDB, "postgres"), logger)
	return mock, NewRepository(db, logger)
}

func buildingRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "address", "latitude", "longitude"})
}

func expectAddressLookup(mock sqlmock.Sqlmock, address string, count int) {
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT COUNT(*) FROM buildings WHERE address = $1`)).
		WithArgs(address).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(count))
}

func TestCreate_Success(t *testing.T) {
	mock, repo := setupMockRepository(t)
	address := "Moscow, Lenina 1, office 3"

	expectAddressLookup(mock, address, 0)
	mock.ExpectExec(`INSERT INTO buildings`).
		WithArgs(sqlmock.AnyArg(), address, 55.75, 37.61).
		WillReturnResult(sqlmock.NewResult(0, 1))

	building, err := repo.Create(context.Background(), address, 55.75, 37.61)

	require.NoError(t, err)
	assert.Equal(t, address, building.Address)
	assert.NotEqual(t, uuid.Nil, building.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreate_DuplicateAddressFromLookup(t *testing.T) {
	mock, repo := setupMockRepository(t)
	address := "Blyukhera 32/1"

	expectAddressLookup(mock, address, 1)

	_, err := repo.Create(context.Background(), address, 1, 1)

	assert.True(t, apperrors.IsKind(err, apperrors.KindDuplicateAddress))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreate_DuplicateAddressFromConstraint(t *testing.T) {
	mock, repo := setupMockRepository(t)
	address := "Blyukhera 32/1"

	expectAddressLookup(mock, address, 0)
	mock.ExpectExec(`INSERT INTO buildings`).
		WillReturnError(&pq.Error{Code: database.UniqueViolation})

	_, err := repo.Create(context.Background(), address, 1, 1)

	assert.True(t, apperrors.IsKind(err, apperrors.KindDuplicateAddress))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreate_StorageFailure(t *testing.T) {
	mock, repo := setupMockRepository(t)
	cause := errors.New("disk full")

	expectAddressLookup(mock, "Somewhere", 0)
	mock.ExpectExec(`INSERT INTO buildings`).WillReturnError(cause)

	_, err := repo.Create(context.Background(), "Somewhere", 1, 1)

	assert.True(t, apperrors.IsKind(err, apperrors.KindCreateFailed))
	assert.ErrorIs(t, err, cause)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetByID_NotFound(t *testing.T) {
	mock, repo := setupMockRepository(t)
	id := uuid.New()

	mock.ExpectQuery(`FROM buildings WHERE id = \$1`).
		WithArgs(id).
		WillReturnRows(buildingRows())

	_, err := repo.GetByID(context.Background(), id)

	assert.True(t, apperrors.IsKind(err, apperrors.KindNotFound))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListAll_OrderedByID(t *testing.T) {
	mock, repo := setupMockRepository(t)

	mock.ExpectQuery(`FROM buildings ORDER BY id ASC`).
		WillReturnRows(buildingRows().
			AddRow(uuid.NewString(), "A", 1.0, 2.0).
			AddRow(uuid.NewString(), "B", 3.0, 4.0))

	buildings, err := repo.ListAll(context.Background())

	require.NoError(t, err)
	assert.Len(t, buildings, 2)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListBySquare_InclusiveBounds(t *testing.T) {
	mock, repo := setupMockRepository(t)
	square := models.Square{LatMin: 55, LonMin: 37, LatMax: 56, LonMax: 38}
	onEdge := uuid.New()

	mock.ExpectQuery(`WHERE latitude BETWEEN \$1 AND \$2 AND longitude BETWEEN \$3 AND \$4`).
		WithArgs(55.0, 56.0, 37.0, 38.0).
		WillReturnRows(buildingRows().AddRow(onEdge.String(), "Edge", 55.0, 38.0))

	buildings, err := repo.ListBySquare(context.Background(), square)

	require.NoError(t, err)
	require.Len(t, buildings, 1)
	assert.Equal(t, onEdge, buildings[0].ID)
	assert.True(t, square.Contains(buildings[0].Latitude, buildings[0].Longitude))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetByIDs(t *testing.T) {
	mock, repo := setupMockRepository(t)
	first := uuid.New()
	second := uuid.New()

	mock.ExpectQuery(regexp.QuoteMeta(`WHERE id = ANY($1::uuid[])`)).
		WithArgs(database.UUIDArray([]uuid.UUID{first, second})).
		WillReturnRows(buildingRows().AddRow(first.String(), "A", 1.0, 2.0))

	buildings, err := repo.GetByIDs(context.Background(), []uuid.UUID{first, second})

	require.NoError(t, err)
	assert.Len(t, buildings, 1)
	assert.Equal(t, "A", buildings[first].Address)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetByIDs_EmptyInputSkipsQuery(t *testing.T) {
	mock, repo := setupMockRepository(t)

	buildings, err := repo.GetByIDs(context.Background(), nil)

	require.NoError(t, err)
	assert.Empty(t, buildings)
	assert.NoError(t, mock.ExpectationsWereMet())
}
