package activity

import (
	"context"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/Namra404/secunda/pkg/models"
	"github.com/Namra404/secunda/pkg/routes"
	"github.com/Namra404/secunda/pkg/tracing"
	"github.com/Namra404/secunda/pkg/utils"
)

type ActivityService interface {
	Create(ctx context.Context, name string, parentID *uuid.UUID) (*models.Activity, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.Activity, error)
	ListChildren(ctx context.Context, parentID *uuid.UUID) ([]models.Activity, error)
	Delete(ctx context.Context, id uuid.UUID) error
	GetSubtreeIDs(ctx context.Context, rootID uuid.UUID) ([]uuid.UUID, error)
	GetSubtreeIDsByName(ctx context.Context, name string) ([]uuid.UUID, error)
}

// Handler serves the activity tree endpoints
type Handler struct {
	service ActivityService
}

func NewHandler(service ActivityService) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers the activity routes
func (h *Handler) RegisterRoutes(g *echo.Group) {
	activities := g.Group("/activities")
	activities.POST("", h.Create)
	activities.GET("", h.ListChildren)
	activities.GET("/subtree/by-name", h.SubtreeByName)
	activities.GET("/:id", h.Get)
	activities.DELETE("/:id", h.Delete)
	activities.GET("/:id/subtree", h.Subtree)
}

// Create handles POST /activities
func (h *Handler) Create(c echo.Context) error {
	ctx, span := tracing.StartSpan(c.Request().Context(), "ActivityHandler.Create")
	defer span.End()

	req, err := utils.BindRequest[models.CreateActivityRequest](c)
	if err != nil {
		return err
	}

	created, err := h.service.Create(ctx, req.Name, req.ParentID)
	if err != nil {
		return err
	}

	return routes.CreatedResponse(c, created)
}

// Get handles GET /activities/:id
func (h *Handler) Get(c echo.Context) error {
	ctx, span := tracing.StartSpan(c.Request().Context(), "ActivityHandler.Get")
	defer span.End()

	id, err := routes.ParseUUID(c, "id")
	if err != nil {
		return err
	}

	activity, err := h.service.GetByID(ctx, id)
	if err != nil {
		return err
	}

	return routes.SuccessResponse(c, activity)
}

// ListChildren handles GET /activities?parent_id=; without parent_id it lists the roots
func (h *Handler) ListChildren(c echo.Context) error {
	ctx, span := tracing.StartSpan(c.Request().Context(), "ActivityHandler.ListChildren")
	defer span.End()

	parentID, err := routes.ParseOptionalUUIDQuery(c, "parent_id")
	if err != nil {
		return err
	}

	activities, err := h.service.ListChildren(ctx, parentID)
	if err != nil {
		return err
	}
	if activities == nil {
		activities = []models.Activity{}
	}

	return routes.SuccessResponse(c, models.ActivitiesListResponse{Activities: activities})
}

// Delete handles DELETE /activities/:id
func (h *Handler) Delete(c echo.Context) error {
	ctx, span := tracing.StartSpan(c.Request().Context(), "ActivityHandler.Delete")
	defer span.End()

	id, err := routes.ParseUUID(c, "id")
	if err != nil {
		return err
	}

	if err := h.service.Delete(ctx, id); err != nil {
		return err
	}

	return routes.NoContentResponse(c)
}

// Subtree handles GET /activities/:id/subtree
func (h *Handler) Subtree(c echo.Context) error {
	ctx, span := tracing.StartSpan(c.Request().Context(), "ActivityHandler.Subtree")
	defer span.End()

	id, err := routes.ParseUUID(c, "id")
	if err != nil {
		return err
	}

	ids, err := h.service.GetSubtreeIDs(ctx, id)
	if err != nil {
		return err
	}

	return routes.SuccessResponse(c, subtreeResponse(ids))
}

// SubtreeByName handles GET /activities/subtree/by-name?name=
func (h *Handler) SubtreeByName(c echo.Context) error {
	ctx, span := tracing.StartSpan(c.Request().Context(), "ActivityHandler.SubtreeByName")
	defer span.End()

	ids, err := h.service.GetSubtreeIDsByName(ctx, c.QueryParam("name"))
	if err != nil {
		return err
	}

	return routes.SuccessResponse(c, subtreeResponse(ids))
}

func subtreeResponse(ids []uuid.UUID) models.ActivitySubtreeIDsResponse {
	if ids == nil {
		ids = []uuid.UUID{}
	}
	return models.ActivitySubtreeIDsResponse{IDs: ids}
}
