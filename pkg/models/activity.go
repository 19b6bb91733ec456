package models

import "github.com/google/uuid"

// MaxActivityDepth is the deepest level an activity may occupy; roots are level 1.
const MaxActivityDepth = 3

// Activity is a node of the activity category tree.
type Activity struct {
	ID       uuid.UUID  `json:"id"`
	Name     string     `json:"name"`
	ParentID *uuid.UUID `json:"parent_id"`
}

func (a Activity) IsRoot() bool {
	return a.ParentID == nil
}

type CreateActivityRequest struct {
	Name     string     `json:"name" validate:"required,max=255"`
	ParentID *uuid.UUID `json:"parent_id,omitempty"`
}

type ActivitiesListResponse struct {
	Activities []Activity `json:"activities"`
}

type ActivitySubtreeIDsResponse struct {
	IDs []uuid.UUID `json:"ids"`
}
