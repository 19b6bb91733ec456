package errors

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/Gobusters/ectoerror/httperror"
)

// Kind classifies a store failure. The request layer maps kinds to transport statuses.
type Kind string

const (
	KindNotFound           Kind = "not_found"
	KindParentNotFound     Kind = "parent_not_found"
	KindDepthLimitExceeded Kind = "depth_limit_exceeded"
	KindHasChildren        Kind = "has_children"
	KindDuplicateAddress   Kind = "duplicate_address"
	KindDuplicateName      Kind = "duplicate_name"
	KindCreateFailed       Kind = "create_failed"
	KindActivityNotFound   Kind = "activity_not_found"
	KindInvalidArgument    Kind = "invalid_argument"
)

// statusCodes is the HTTP mapping of each kind. CreateFailed answers 404 for compatibility
// with existing clients.
var statusCodes = map[Kind]int{
	KindNotFound:           http.StatusNotFound,
	KindParentNotFound:     http.StatusNotFound,
	KindDepthLimitExceeded: http.StatusConflict,
	KindHasChildren:        http.StatusConflict,
	KindDuplicateAddress:   http.StatusConflict,
	KindDuplicateName:      http.StatusConflict,
	KindCreateFailed:       http.StatusNotFound,
	KindActivityNotFound:   http.StatusNotFound,
	KindInvalidArgument:    http.StatusBadRequest,
}

type DirectoryError struct {
	Kind    Kind
	Entity  string
	Message string
	cause   error
}

func (e *DirectoryError) Error() string {
	if e.cause == nil {
		return e.Message
	}
	return e.Message + ": " + e.cause.Error()
}

func (e *DirectoryError) Unwrap() error {
	return e.cause
}

// ToHTTPError keeps the coarse message; the cause stays in logs only.
func (e *DirectoryError) ToHTTPError() *httperror.HTTPError {
	code, ok := statusCodes[e.Kind]
	if !ok {
		code = http.StatusInternalServerError
	}
	return httperror.NewHTTPError(code, e.Message).
		AddMetaValue("kind", string(e.Kind)).
		AddMetaValue("entity", e.Entity)
}

func New(kind Kind, entity, message string) *DirectoryError {
	return &DirectoryError{Kind: kind, Entity: entity, Message: message}
}

func NotFound(entity string, key any) *DirectoryError {
	return New(KindNotFound, entity, fmt.Sprintf("%s %v does not exist", entity, key))
}

func ParentNotFound(parentID any) *DirectoryError {
	return New(KindParentNotFound, "activity", fmt.Sprintf("parent activity %v does not exist", parentID))
}

func DepthLimitExceeded(parentID any, limit int) *DirectoryError {
	return New(KindDepthLimitExceeded, "activity",
		fmt.Sprintf("activity under %v would exceed the maximum depth of %d", parentID, limit))
}

func HasChildren(id any) *DirectoryError {
	return New(KindHasChildren, "activity", fmt.Sprintf("activity %v has children and cannot be deleted", id))
}

func DuplicateAddress(address string) *DirectoryError {
	return New(KindDuplicateAddress, "building", fmt.Sprintf("building with address '%s' already exists", address))
}

func DuplicateName(entity, name string) *DirectoryError {
	return New(KindDuplicateName, entity, fmt.Sprintf("%s '%s' already exists", entity, name))
}

func ActivityNotFound(name string) *DirectoryError {
	return New(KindActivityNotFound, "activity", fmt.Sprintf("activity '%s' does not exist", name))
}

func InvalidArgument(entity, message string) *DirectoryError {
	return New(KindInvalidArgument, entity, message)
}

// CreateFailed wraps cause so it stays reachable with errors.Unwrap.
func CreateFailed(entity string, cause error) *DirectoryError {
	return &DirectoryError{
		Kind:    KindCreateFailed,
		Entity:  entity,
		Message: fmt.Sprintf("failed to create %s", entity),
		cause:   cause,
	}
}

func AsDirectoryError(err error) (*DirectoryError, bool) {
	var de *DirectoryError
	if errors.As(err, &de) {
		return de, true
	}
	return nil, false
}

func IsKind(err error, kind Kind) bool {
	de, ok := AsDirectoryError(err)
	return ok && de.Kind == kind
}
