package authorization

import (
	"context"
	"testing"

	"github.com/smallbiznis/birracraft/pkg/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestService(t *testing.T) Service {
	t.Helper()
	conn, err := db.NewTest()
	require.NoError(t, err)
	enforcer, err := NewEnforcer(conn)
	require.NoError(t, err)
	return NewService(Params{Log: zap.NewNop(), Enforcer: enforcer})
}

func TestMemberCanManageEveryResource(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	require.NoError(t, svc.AssignDefaultRole(ctx, "1001"))
	require.NoError(t, svc.AssignDefaultRole(ctx, "1001"))

	for _, object := range objects {
		for _, action := range []string{ActionRead, ActionWrite, ActionDelete} {
			assert.NoError(t, svc.Authorize(ctx, "1001", object, action), "%s:%s", object, action)
		}
	}
	assert.ErrorIs(t, svc.Authorize(ctx, "1001", ObjectOrder, "export"), ErrForbidden)
}

func TestUserWithoutRoleIsForbidden(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	assert.ErrorIs(t, svc.Authorize(ctx, "2002", ObjectCustomer, ActionRead), ErrForbidden)

	require.NoError(t, svc.AssignDefaultRole(ctx, "2002"))
	require.NoError(t, svc.Authorize(ctx, "2002", ObjectCustomer, ActionRead))

	require.NoError(t, svc.RemoveUser(ctx, "2002"))
	assert.ErrorIs(t, svc.Authorize(ctx, "2002", ObjectCustomer, ActionRead), ErrForbidden)
}

func TestAuthorizeRejectsBadInput(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	assert.ErrorIs(t, svc.Authorize(ctx, "", ObjectCustomer, ActionRead), ErrInvalidActor)
	assert.ErrorIs(t, svc.Authorize(ctx, "42", "", ActionRead), ErrInvalidObject)
	assert.ErrorIs(t, svc.Authorize(ctx, "42", ObjectCustomer, " "), ErrInvalidAction)
}

func TestSeedIsIdempotent(t *testing.T) {
	conn, err := db.NewTest()
	require.NoError(t, err)

	_, err = NewEnforcer(conn)
	require.NoError(t, err)
	enforcer, err := NewEnforcer(conn)
	require.NoError(t, err)

	policies, err := enforcer.GetPolicy()
	require.NoError(t, err)
	assert.Len(t, policies, len(objects)*3)
}
