package routes

import (
	"net/http"
	"strings"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/Namra404/secunda/pkg/models"
	"github.com/Namra404/secunda/pkg/utils"
)

// ParseUUID parses a UUID from a path parameter
func ParseUUID(c echo.Context, param string) (uuid.UUID, error) {
	idStr := c.Param(param)
	if idStr == "" {
		return uuid.Nil, httperror.NewHTTPError(http.StatusBadRequest, "missing "+param)
	}

	id, err := uuid.Parse(idStr)
	if err != nil {
		return uuid.Nil, httperror.NewHTTPErrorf(http.StatusBadRequest, "invalid %s: must be a valid UUID", param)
	}

	return id, nil
}

// ParseOptionalUUIDQuery returns nil when the query parameter is absent or empty.
func ParseOptionalUUIDQuery(c echo.Context, param string) (*uuid.UUID, error) {
	raw := strings.TrimSpace(c.QueryParam(param))
	if raw == "" {
		return nil, nil
	}

	id, err := uuid.Parse(raw)
	if err != nil {
		return nil, httperror.NewHTTPErrorf(http.StatusBadRequest, "invalid %s: must be a valid UUID", param)
	}
	return &id, nil
}

// BindSquare reads lat_min, lon_min, lat_max and lon_max from the query string. All four are required.
func BindSquare(c echo.Context) (models.Square, error) {
	var square models.Square
	err := echo.QueryParamsBinder(c).
		FailFast(true).
		MustFloat64("lat_min", &square.LatMin).
		MustFloat64("lon_min", &square.LonMin).
		MustFloat64("lat_max", &square.LatMax).
		MustFloat64("lon_max", &square.LonMax).
		BindError()
	if err != nil {
		return square, httperror.WrapError(http.StatusBadRequest, err)
	}

	if _, err := utils.Validate(square); err != nil {
		return square, httperror.WrapError(http.StatusBadRequest, err)
	}
	return square, nil
}

// CreatedResponse returns a 201 Created with data
func CreatedResponse(c echo.Context, data any) error {
	return c.JSON(http.StatusCreated, data)
}

// SuccessResponse returns a 200 OK with data
func SuccessResponse(c echo.Context, data any) error {
	return c.JSON(http.StatusOK, data)
}

// NoContentResponse returns a 204 No Content
func NoContentResponse(c echo.Context) error {
	return c.NoContent(http.StatusNoContent)
}
