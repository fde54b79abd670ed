package auth

import "context"

// StoredUser is the slice of a user row the auth service needs. Password
// holds the bcrypt hash; Permissions holds raw permission names and is only
// populated by GetWithPermissions.
type StoredUser struct {
	ID          int32
	Email       string
	Password    string
	Permissions []string
}

// UserStore is the persistence capability consumed during login and token
// resolution. Implementations return ErrUserNotFound for a missing row and
// pass any other storage failure through unchanged.
type UserStore interface {
	GetByEmail(ctx context.Context, email string) (*StoredUser, error)
	GetWithPermissions(ctx context.Context, id int32) (*StoredUser, error)
}
