package authorization

import (
	"context"
	"errors"
)

const (
	ObjectCustomer  = "customer"
	ObjectContainer = "container"
	ObjectFlavour   = "flavour"
	ObjectProduct   = "product"
	ObjectOrder     = "order"
	ObjectPayment   = "payment"
	ObjectQuota     = "quota"
	ObjectReport    = "report"
	ObjectUser      = "user"
)

const (
	ActionRead   = "read"
	ActionWrite  = "write"
	ActionDelete = "delete"
)

const RoleMember = "role:member"

var (
	ErrInvalidActor  = errors.New("invalid_actor")
	ErrInvalidObject = errors.New("invalid_object")
	ErrInvalidAction = errors.New("invalid_action")
	ErrForbidden     = errors.New("forbidden")
)

type Service interface {
	// Authorize returns ErrForbidden when the user holds no role granting action on object.
	Authorize(ctx context.Context, userID string, object string, action string) error
	AssignDefaultRole(ctx context.Context, userID string) error
	RemoveUser(ctx context.Context, userID string) error
}
