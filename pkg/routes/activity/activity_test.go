package activity

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Gobusters/ectologger"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/Namra404/secunda/pkg/errors"
	"github.com/Namra404/secunda/pkg/middleware"
	"github.com/Namra404/secunda/pkg/models"
)

type stubService struct {
	createErr   error
	deleteErr   error
	subtree     []uuid.UUID
	subtreeErr  error
	children    []models.Activity
	lastParent  *uuid.UUID
	createdName string
}

func (s *stubService) Create(ctx context.Context, name string, parentID *uuid.UUID) (*models.Activity, error) {
	if s.createErr != nil {
		return nil, s.createErr
	}
	s.createdName = name
	return &models.Activity{ID: uuid.New(), Name: name, ParentID: parentID}, nil
}

func (s *stubService) GetByID(ctx context.Context, id uuid.UUID) (*models.Activity, error) {
	return nil, apperrors.NotFound("activity", id)
}

func (s *stubService) ListChildren(ctx context.Context, parentID *uuid.UUID) ([]models.Activity, error) {
	s.lastParent = parentID
	return s.children, nil
}

func (s *stubService) Delete(ctx context.Context, id uuid.UUID) error {
	return s.deleteErr
}

func (s *stubService) GetSubtreeIDs(ctx context.Context, rootID uuid.UUID) ([]uuid.UUID, error) {
	return s.subtree, s.subtreeErr
}

func (s *stubService) GetSubtreeIDsByName(ctx context.Context, name string) ([]uuid.UUID, error) {
	return s.subtree, s.subtreeErr
}

func newTestServer(service ActivityService) *echo.Echo {
	e := echo.New()
	e.HTTPErrorHandler = middleware.Error(ectologger.NewEctoLogger(func(_ ectologger.EctoLogMessage) {}))
	NewHandler(service).RegisterRoutes(e.Group(""))
	return e
}

func do(e *echo.Echo, method, path string, body any) *httptest.ResponseRecorder {
	var reqBody bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&reqBody).Encode(body)
	}
	req := httptest.NewRequest(method, path, &reqBody)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) middleware.ErrorResponse {
	t.Helper()
	var response middleware.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &response))
	return response
}

func TestCreate_Returns201(t *testing.T) {
	service := &stubService{}
	e := newTestServer(service)

	rec := do(e, http.MethodPost, "/activities", map[string]any{"name": "Food"})

	assert.Equal(t, http.StatusCreated, rec.Code)
	var created models.Activity
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.Equal(t, "Food", created.Name)
	assert.Nil(t, created.ParentID)
}

func TestGet_NotFoundMessageIsBare(t *testing.T) {
	e := newTestServer(&stubService{})
	id := uuid.New()

	rec := do(e, http.MethodGet, "/activities/"+id.String(), nil)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	response := decodeError(t, rec)
	assert.Equal(t, "activity "+id.String()+" does not exist", response.Message)
	assert.Equal(t, string(apperrors.KindNotFound), response.Meta["kind"])
}

func TestCreate_MissingNameIs400(t *testing.T) {
	e := newTestServer(&stubService{})

	rec := do(e, http.MethodPost, "/activities", map[string]any{})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreate_ErrorKindsMapToStatus(t *testing.T) {
	parent := uuid.New()
	cases := map[string]struct {
		err    error
		status int
		kind   apperrors.Kind
	}{
		"depth limit":  {apperrors.DepthLimitExceeded(parent, models.MaxActivityDepth), http.StatusConflict, apperrors.KindDepthLimitExceeded},
		"parent gone":  {apperrors.ParentNotFound(parent), http.StatusNotFound, apperrors.KindParentNotFound},
		"name in use":  {apperrors.DuplicateName("activity", "Food"), http.StatusConflict, apperrors.KindDuplicateName},
		"storage down": {apperrors.CreateFailed("activity", assert.AnError), http.StatusNotFound, apperrors.KindCreateFailed},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			e := newTestServer(&stubService{createErr: tc.err})

			rec := do(e, http.MethodPost, "/activities", map[string]any{"name": "Food", "parent_id": parent})

			assert.Equal(t, tc.status, rec.Code)
			response := decodeError(t, rec)
			assert.Equal(t, string(tc.kind), response.Meta["kind"])
			de, ok := apperrors.AsDirectoryError(tc.err)
			require.True(t, ok)
			assert.Equal(t, de.Message, response.Message)
		})
	}
}

func TestListChildren_RootsWithoutParent(t *testing.T) {
	service := &stubService{children: []models.Activity{{ID: uuid.New(), Name: "Food"}}}
	e := newTestServer(service)

	rec := do(e, http.MethodGet, "/activities", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Nil(t, service.lastParent)
	var response models.ActivitiesListResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &response))
	assert.Len(t, response.Activities, 1)
}

func TestListChildren_ByParent(t *testing.T) {
	service := &stubService{}
	e := newTestServer(service)
	parent := uuid.New()

	rec := do(e, http.MethodGet, "/activities?parent_id="+parent.String(), nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, service.lastParent)
	assert.Equal(t, parent, *service.lastParent)
	assert.JSONEq(t, `{"activities": []}`, rec.Body.String())
}

func TestListChildren_InvalidParent(t *testing.T) {
	rec := do(newTestServer(&stubService{}), http.MethodGet, "/activities?parent_id=nope", nil)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGet_InvalidAndMissing(t *testing.T) {
	e := newTestServer(&stubService{})

	assert.Equal(t, http.StatusBadRequest, do(e, http.MethodGet, "/activities/not-a-uuid", nil).Code)
	assert.Equal(t, http.StatusNotFound, do(e, http.MethodGet, "/activities/"+uuid.NewString(), nil).Code)
}

func TestDelete(t *testing.T) {
	id := uuid.New()

	rec := do(newTestServer(&stubService{}), http.MethodDelete, "/activities/"+id.String(), nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = do(newTestServer(&stubService{deleteErr: apperrors.HasChildren(id)}), http.MethodDelete, "/activities/"+id.String(), nil)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = do(newTestServer(&stubService{deleteErr: apperrors.NotFound("activity", id)}), http.MethodDelete, "/activities/"+id.String(), nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSubtree(t *testing.T) {
	root := uuid.New()
	child := uuid.New()
	e := newTestServer(&stubService{subtree: []uuid.UUID{root, child}})

	rec := do(e, http.MethodGet, "/activities/"+root.String()+"/subtree", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	var response models.ActivitySubtreeIDsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &response))
	assert.Equal(t, []uuid.UUID{root, child}, response.IDs)
}

func TestSubtreeByName_NotFound(t *testing.T) {
	e := newTestServer(&stubService{subtreeErr: apperrors.NotFound("activity", "Food")})

	rec := do(e, http.MethodGet, "/activities/subtree/by-name?name=Food", nil)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}
