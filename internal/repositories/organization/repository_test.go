package organization

import (
	"context"
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

type fakeActivities struct {
	byName  map[string]models.Activity
	closure map[uuid.UUID][]uuid.UUID
}

func (f *fakeActivities) GetByID(ctx context.Context, id uuid.UUID) (*models.Activity, error) {
	return nil, apperrors.NotFound("activity", id)
}

func (f *fakeActivities) GetByName(ctx context.Context, name string) (*models.Activity, error) {
	if a, ok := f.byName[name]; ok {
		return &a, nil
	}
	return nil, apperrors.NotFound("activity", name)
}

func (f *fakeActivities) GetChildren(ctx context.Context, parentID *uuid.UUID) ([]models.Activity, error) {
	return nil, nil
}

func (f *fakeActivities) Create(ctx context.Context, name string, parentID *uuid.UUID) (*models.Activity, error) {
	return nil, nil
}

func (f *fakeActivities) Delete(ctx context.Context, id uuid.UUID) error {
	return nil
}

func (f *fakeActivities) GetDescendantIDs(ctx context.Context, rootID uuid.UUID) ([]uuid.UUID, error) {
	return f.closure[rootID], nil
}

func (f *fakeActivities) AncestorDepth(ctx context.Context, id uuid.UUID) (int, error) {
	return 0, nil
}

type fakeBuildings struct {
	buildings map[uuid.UUID]models.Building
}

func (f *fakeBuildings) Create(ctx context.Context, address string, latitude, longitude float64) (*models.Building, error) {
	return nil, nil
}

func (f *fakeBuildings) GetByID(ctx context.Context, id uuid.UUID) (*models.Building, error) {
	return nil, nil
}

func (f *fakeBuildings) GetByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]models.Building, error) {
	result := map[uuid.UUID]models.Building{}
	for _, id := range ids {
		if b, ok := f.buildings[id]; ok {
			result[id] = b
		}
	}
	return result, nil
}

func (f *fakeBuildings) ListAll(ctx context.Context) ([]models.Building, error) {
	return nil, nil
}

func (f *fakeBuildings) ListBySquare(ctx context.Context, square models.Square) ([]models.Building, error) {
	return nil, nil
}

type fixture struct {
	mock       sqlmock.Sqlmock
	repo       *Repository
	activities *fakeActivities
	building   models.Building
}

func setup(t *testing.T) *fixture {
	t.Helper()
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { mockDB.Close() })

	logger := ectologger.NewEctoLogger(func(_ ectologger.EctoLogMessage) {})
	db := database.NewDatabaseInstance(sqlx.NewDb(mockDB, "postgres"), logger)

	b := models.Building{ID: uuid.New(), Address: "Lenina 1", Latitude: 55.7, Longitude: 37.6}
	activities := &fakeActivities{
		byName:  map[string]models.Activity{},
		closure: map[uuid.UUID][]uuid.UUID{},
	}
	buildings := &fakeBuildings{buildings: map[uuid.UUID]models.Building{b.ID: b}}

	return &fixture{
		mock:       mock,
		repo:       NewRepository(db, activities, buildings, logger),
		activities: activities,
		building:   b,
	}
}

func organizationRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "name", "building_id"})
}

func phoneRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"organization_id", "phone", "position"})
}

func linkedActivityRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"organization_id", "id", "name", "parent_id"})
}

func TestCreate_StoresPhonesAndKnownActivities(t *testing.T) {
	f := setup(t)
	known := uuid.New()
	unknown := uuid.New()

	f.mock.ExpectBegin()
	f.mock.ExpectExec(`INSERT INTO organizations \(id, name, building_id\)`).
		WithArgs(sqlmock.AnyArg(), "Horns and Hooves", f.building.ID).
		WillReturnResult(sqlmock.NewResult(0, 1))
	f.mock.ExpectExec(`INSERT INTO organization_phones`).
		WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg(), "2-222-222", 0, sqlmock.AnyArg(), sqlmock.AnyArg(), "8-923-666-13-13", 1).
		WillReturnResult(sqlmock.NewResult(0, 2))
	f.mock.ExpectQuery(regexp.QuoteMeta(`SELECT id FROM activities WHERE id = ANY($1::uuid[])`)).
		WithArgs(database.UUIDArray([]uuid.UUID{known, unknown})).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(known.String()))
	f.mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO organization_activities (organization_id, activity_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`)).
		WithArgs(sqlmock.AnyArg(), known).
		WillReturnResult(sqlmock.NewResult(0, 1))
	f.mock.ExpectCommit()

	f.mock.ExpectQuery(`FROM organizations WHERE organizations.id = \$1`).
		WillReturnRows(organizationRows().AddRow(uuid.Nil.String(), "Horns and Hooves", f.building.ID.String()))
	f.mock.ExpectQuery(`FROM organization_phones`).
		WillReturnRows(phoneRows().
			AddRow(uuid.Nil.String(), "2-222-222", 0).
			AddRow(uuid.Nil.String(), "8-923-666-13-13", 1))
	f.mock.ExpectQuery(`FROM organization_activities oa JOIN activities a`).
		WillReturnRows(linkedActivityRows().AddRow(uuid.Nil.String(), known.String(), "Food", nil))

	organization, err := f.repo.Create(context.Background(), models.CreateOrganization{
		Name:        "Horns and Hooves",
		BuildingID:  f.building.ID,
		Phones:      []string{" 2-222-222 ", "", "2-222-222", "8-923-666-13-13"},
		ActivityIDs: []uuid.UUID{known, unknown, known},
	})

	require.NoError(t, err)
	assert.Equal(t, "Horns and Hooves", organization.Name)
	assert.Equal(t, []string{"2-222-222", "8-923-666-13-13"}, organization.Phones)
	require.Len(t, organization.Activities, 1)
	assert.Equal(t, known, organization.Activities[0].ID)
	require.NotNil(t, organization.Building)
	assert.Equal(t, f.building.Address, organization.Building.Address)
	assert.NoError(t, f.mock.ExpectationsWereMet())
}

func TestCreate_FailureRollsBackAndKeepsCause(t *testing.T) {
	f := setup(t)
	cause := &pq.Error{Code: database.ForeignKeyViolation, Constraint: "organizations_building_id_fkey"}

	f.mock.ExpectBegin()
	f.mock.ExpectExec(`INSERT INTO organizations`).WillReturnError(cause)
	f.mock.ExpectRollback()

	_, err := f.repo.Create(context.Background(), models.CreateOrganization{
		Name:       "Nowhere Ltd",
		BuildingID: uuid.New(),
	})

	assert.True(t, apperrors.IsKind(err, apperrors.KindCreateFailed))
	assert.ErrorIs(t, err, cause)
	assert.True(t, database.IsForeignKeyViolation(err))
	assert.NoError(t, f.mock.ExpectationsWereMet())
}

func TestGetByID_NotFound(t *testing.T) {
	f := setup(t)
	id := uuid.New()

	f.mock.ExpectQuery(`FROM organizations WHERE organizations.id = \$1`).
		WithArgs(id).
		WillReturnRows(organizationRows())

	_, err := f.repo.GetByID(context.Background(), id)

	assert.True(t, apperrors.IsKind(err, apperrors.KindNotFound))
	assert.NoError(t, f.mock.ExpectationsWereMet())
}

func TestListByActivityID_UsesDescendantClosure(t *testing.T) {
	f := setup(t)
	food := uuid.New()
	meat := uuid.New()
	dairy := uuid.New()
	f.activities.closure[food] = []uuid.UUID{food, meat, dairy}

	butcher := uuid.New()
	creamery := uuid.New()

	f.mock.ExpectQuery(regexp.QuoteMeta(`SELECT DISTINCT organizations.id, organizations.name, organizations.building_id FROM organizations JOIN organization_activities oa ON oa.organization_id = organizations.id WHERE oa.activity_id = ANY($1::uuid[]) ORDER BY organizations.name ASC`)).
		WithArgs(database.UUIDArray([]uuid.UUID{food, meat, dairy})).
		WillReturnRows(organizationRows().
			AddRow(butcher.String(), "Butcher", f.building.ID.String()).
			AddRow(creamery.String(), "Creamery", f.building.ID.String()))
	f.mock.ExpectQuery(`FROM organization_phones`).
		WithArgs(database.UUIDArray([]uuid.UUID{butcher, creamery})).
		WillReturnRows(phoneRows().AddRow(butcher.String(), "3-333-333", 0))
	f.mock.ExpectQuery(`FROM organization_activities oa JOIN activities a`).
		WithArgs(database.UUIDArray([]uuid.UUID{butcher, creamery})).
		WillReturnRows(linkedActivityRows().
			AddRow(creamery.String(), dairy.String(), "Dairy", food.String()).
			AddRow(butcher.String(), meat.String(), "Meat", food.String()))

	organizations, err := f.repo.ListByActivityID(context.Background(), food)

	require.NoError(t, err)
	require.Len(t, organizations, 2)
	assert.Equal(t, "Butcher", organizations[0].Name)
	assert.Equal(t, []string{"3-333-333"}, organizations[0].Phones)
	assert.Equal(t, "Meat", organizations[0].Activities[0].Name)
	assert.Empty(t, organizations[1].Phones)
	assert.Equal(t, "Dairy", organizations[1].Activities[0].Name)
	assert.NoError(t, f.mock.ExpectationsWereMet())
}

func TestListByActivityID_UnknownActivityStillQueriesItself(t *testing.T) {
	f := setup(t)
	ghost := uuid.New()

	f.mock.ExpectQuery(`SELECT DISTINCT`).
		WithArgs(database.UUIDArray([]uuid.UUID{ghost})).
		WillReturnRows(organizationRows())

	organizations, err := f.repo.ListByActivityID(context.Background(), ghost)

	require.NoError(t, err)
	assert.Empty(t, organizations)
	assert.NoError(t, f.mock.ExpectationsWereMet())
}

func TestListByActivityName_Unknown(t *testing.T) {
	f := setup(t)

	_, err := f.repo.ListByActivityName(context.Background(), "Nope")

	assert.True(t, apperrors.IsKind(err, apperrors.KindActivityNotFound))
	assert.NoError(t, f.mock.ExpectationsWereMet())
}

func TestListByActivityName_DelegatesToClosure(t *testing.T) {
	f := setup(t)
	food := uuid.New()
	f.activities.byName["Food"] = models.Activity{ID: food, Name: "Food"}
	f.activities.closure[food] = []uuid.UUID{food}

	f.mock.ExpectQuery(`SELECT DISTINCT`).
		WithArgs(database.UUIDArray([]uuid.UUID{food})).
		WillReturnRows(organizationRows())

	organizations, err := f.repo.ListByActivityName(context.Background(), "Food")

	require.NoError(t, err)
	assert.Empty(t, organizations)
	assert.NoError(t, f.mock.ExpectationsWereMet())
}

func TestListBySquare_JoinsBuildings(t *testing.T) {
	f := setup(t)
	square := models.Square{LatMin: 55, LonMin: 37, LatMax: 56, LonMax: 38}

	f.mock.ExpectQuery(regexp.QuoteMeta(`JOIN buildings ON buildings.id = organizations.building_id WHERE buildings.latitude BETWEEN $1 AND $2 AND buildings.longitude BETWEEN $3 AND $4`)).
		WithArgs(55.0, 56.0, 37.0, 38.0).
		WillReturnRows(organizationRows())

	organizations, err := f.repo.ListBySquare(context.Background(), square)

	require.NoError(t, err)
	assert.Empty(t, organizations)
	assert.NoError(t, f.mock.ExpectationsWereMet())
}

func TestNormalizePhones(t *testing.T) {
	assert.Equal(t,
		[]string{"2-222-222", "3-333-333"},
		normalizePhones([]string{"  2-222-222", "", "   ", "3-333-333", "2-222-222 "}),
	)
	assert.Empty(t, normalizePhones(nil))
}

func TestMissingIDs(t *testing.T) {
	a, b, c := uuid.New(), uuid.New(), uuid.New()

	assert.Equal(t, []uuid.UUID{b}, missingIDs([]uuid.UUID{a, b, c}, []uuid.UUID{c, a}))
	assert.Empty(t, missingIDs([]uuid.UUID{a}, []uuid.UUID{a}))
	assert.Empty(t, missingIDs(nil, []uuid.UUID{a}))
}
