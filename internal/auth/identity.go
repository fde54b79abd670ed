package auth

import (
	"context"

	"github.com/keterhq/keter-rest/internal/permission"
)

// Identity is the resolved, request-scoped record of who is calling and
// what they may do. It is built fresh for every authenticated request and
// never cached.
type Identity struct {
	UserID      int32
	Email       string
	Permissions map[permission.Kind]struct{}
}

// NewIdentity maps stored permission names into a set. Duplicates collapse;
// names outside the catalog become permission.Unknown, which satisfies no
// check.
func NewIdentity(userID int32, email string, permissionNames []string) Identity {
	set := make(map[permission.Kind]struct{}, len(permissionNames))
	for _, name := range permissionNames {
		set[permission.FromString(name)] = struct{}{}
	}
	return Identity{UserID: userID, Email: email, Permissions: set}
}

func (i Identity) HasPermission(k permission.Kind) bool {
	if k == permission.Unknown {
		return false
	}
	_, ok := i.Permissions[k]
	return ok
}

type identityContextKey struct{}

// ContextWithIdentity attaches the authenticated identity to the context.
func ContextWithIdentity(ctx context.Context, identity Identity) context.Context {
	return context.WithValue(ctx, identityContextKey{}, &identity)
}

// IdentityFromContext extracts the identity attached by the authenticate
// middleware.
func IdentityFromContext(ctx context.Context) (Identity, bool) {
	if ctx == nil {
		return Identity{}, false
	}
	v, ok := ctx.Value(identityContextKey{}).(*Identity)
	if !ok || v == nil {
		return Identity{}, false
	}
	return *v, true
}
