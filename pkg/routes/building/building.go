package building

import (
	"context"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/Namra404/secunda/pkg/models"
	"github.com/Namra404/secunda/pkg/routes"
	"github.com/Namra404/secunda/pkg/tracing"
	"github.com/Namra404/secunda/pkg/utils"
)

type BuildingService interface {
	Create(ctx context.Context, address string, latitude, longitude float64) (*models.Building, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.Building, error)
	ListAll(ctx context.Context) ([]models.Building, error)
	ListBySquare(ctx context.Context, square models.Square) ([]models.Building, error)
}

type Handler struct {
	service BuildingService
}

func NewHandler(service BuildingService) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers the building routes
func (h *Handler) RegisterRoutes(g *echo.Group) {
	buildings := g.Group("/buildings")
	buildings.POST("", h.Create)
	buildings.GET("", h.List)
	buildings.GET("/geo/square", h.ListBySquare)
	buildings.GET("/:id", h.Get)
}

// Create handles POST /buildings
func (h *Handler) Create(c echo.Context) error {
	ctx, span := tracing.StartSpan(c.Request().Context(), "BuildingHandler.Create")
	defer span.End()

	req, err := utils.BindRequest[models.CreateBuildingRequest](c)
	if err != nil {
		return err
	}

	created, err := h.service.Create(ctx, req.Address, *req.Latitude, *req.Longitude)
	if err != nil {
		return err
	}

	return routes.CreatedResponse(c, created)
}

// Get handles GET /buildings/:id
func (h *Handler) Get(c echo.Context) error {
	ctx, span := tracing.StartSpan(c.Request().Context(), "BuildingHandler.Get")
	defer span.End()

	id, err := routes.ParseUUID(c, "id")
	if err != nil {
		return err
	}

	building, err := h.service.GetByID(ctx, id)
	if err != nil {
		return err
	}

	return routes.SuccessResponse(c, building)
}

// List handles GET /buildings
func (h *Handler) List(c echo.Context) error {
	ctx, span := tracing.StartSpan(c.Request().Context(), "BuildingHandler.List")
	defer span.End()

	buildings, err := h.service.ListAll(ctx)
	if err != nil {
		return err
	}

	return routes.SuccessResponse(c, listResponse(buildings))
}

// ListBySquare handles GET /buildings/geo/square
func (h *Handler) ListBySquare(c echo.Context) error {
	ctx, span := tracing.StartSpan(c.Request().Context(), "BuildingHandler.ListBySquare")
	defer span.End()

	square, err := routes.BindSquare(c)
	if err != nil {
		return err
	}

	buildings, err := h.service.ListBySquare(ctx, square)
	if err != nil {
		return err
	}

	return routes.SuccessResponse(c, listResponse(buildings))
}

func listResponse(buildings []models.Building) models.BuildingsListResponse {
	if buildings == nil {
		buildings = []models.Building{}
	}
	return models.BuildingsListResponse{Buildings: buildings}
}
