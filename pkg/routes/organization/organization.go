package organization

import (
	"context"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/Namra404/secunda/pkg/models"
	"github.com/Namra404/secunda/pkg/routes"
	"github.com/Namra404/secunda/pkg/tracing"
	"github.com/Namra404/secunda/pkg/utils"
)

type OrganizationService interface {
	Create(ctx context.Context, request models.CreateOrganization) (*models.Organization, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.Organization, error)
	ListAll(ctx context.Context) ([]models.Organization, error)
	ListByBuilding(ctx context.Context, buildingID uuid.UUID) ([]models.Organization, error)
	ListByActivityID(ctx context.Context, activityID uuid.UUID) ([]models.Organization, error)
	ListByActivityName(ctx context.Context, name string) ([]models.Organization, error)
	FindByExactName(ctx context.Context, name string) ([]models.Organization, error)
	ListBySquare(ctx context.Context, square models.Square) ([]models.Organization, error)
}

type Handler struct {
	service OrganizationService
}

func NewHandler(service OrganizationService) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers the organization routes
func (h *Handler) RegisterRoutes(g *echo.Group) {
	organizations := g.Group("/organization")
	organizations.POST("", h.Create)
	organizations.GET("", h.List)
	organizations.GET("/search/name", h.FindByName)
	organizations.GET("/by-activity-name", h.ListByActivityName)
	organizations.GET("/geo/square", h.ListBySquare)
	organizations.GET("/building/:id", h.ListByBuilding)
	organizations.GET("/by-activity/:id", h.ListByActivity)
	organizations.GET("/:id", h.Get)
}

// Create handles POST /organization
func (h *Handler) Create(c echo.Context) error {
	ctx, span := tracing.StartSpan(c.Request().Context(), "OrganizationHandler.Create")
	defer span.End()

	req, err := utils.BindRequest[models.CreateOrganizationRequest](c)
	if err != nil {
		return err
	}

	created, err := h.service.Create(ctx, models.CreateOrganization{
		Name:        req.Name,
		BuildingID:  req.BuildingID,
		Phones:      req.Phones,
		ActivityIDs: req.ActivityIDs,
	})
	if err != nil {
		return err
	}

	return routes.CreatedResponse(c, created)
}

// Get handles GET /organization/:id
func (h *Handler) Get(c echo.Context) error {
	ctx, span := tracing.StartSpan(c.Request().Context(), "OrganizationHandler.Get")
	defer span.End()

	id, err := routes.ParseUUID(c, "id")
	if err != nil {
		return err
	}

	organization, err := h.service.GetByID(ctx, id)
	if err != nil {
		return err
	}

	return routes.SuccessResponse(c, organization)
}

// List handles GET /organization
func (h *Handler) List(c echo.Context) error {
	ctx, span := tracing.StartSpan(c.Request().Context(), "OrganizationHandler.List")
	defer span.End()

	return listResult(c)(h.service.ListAll(ctx))
}

// ListByBuilding handles GET /organization/building/:id
func (h *Handler) ListByBuilding(c echo.Context) error {
	ctx, span := tracing.StartSpan(c.Request().Context(), "OrganizationHandler.ListByBuilding")
	defer span.End()

	id, err := routes.ParseUUID(c, "id")
	if err != nil {
		return err
	}

	return listResult(c)(h.service.ListByBuilding(ctx, id))
}

// ListByActivity handles GET /organization/by-activity/:id; nested activities are included
func (h *Handler) ListByActivity(c echo.Context) error {
	ctx, span := tracing.StartSpan(c.Request().Context(), "OrganizationHandler.ListByActivity")
	defer span.End()

	id, err := routes.ParseUUID(c, "id")
	if err != nil {
		return err
	}

	return listResult(c)(h.service.ListByActivityID(ctx, id))
}

// ListByActivityName handles GET /organization/by-activity-name?name=
func (h *Handler) ListByActivityName(c echo.Context) error {
	ctx, span := tracing.StartSpan(c.Request().Context(), "OrganizationHandler.ListByActivityName")
	defer span.End()

	return listResult(c)(h.service.ListByActivityName(ctx, c.QueryParam("name")))
}

// FindByName handles GET /organization/search/name?name=
func (h *Handler) FindByName(c echo.Context) error {
	ctx, span := tracing.StartSpan(c.Request().Context(), "OrganizationHandler.FindByName")
	defer span.End()

	return listResult(c)(h.service.FindByExactName(ctx, c.QueryParam("name")))
}

// ListBySquare handles GET /organization/geo/square
func (h *Handler) ListBySquare(c echo.Context) error {
	ctx, span := tracing.StartSpan(c.Request().Context(), "OrganizationHandler.ListBySquare")
	defer span.End()

	square, err := routes.BindSquare(c)
	if err != nil {
		return err
	}

	return listResult(c)(h.service.ListBySquare(ctx, square))
}

func listResult(c echo.Context) func([]models.Organization, error) error {
	return func(organizations []models.Organization, err error) error {
		if err != nil {
			return err
		}
		if organizations == nil {
			organizations = []models.Organization{}
		}
		return routes.SuccessResponse(c, models.OrganizationsListResponse{Organizations: organizations})
	}
}
