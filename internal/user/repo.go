package user

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"
)

// CreateParams carries an already-hashed password; hashing belongs to the
// service layer.
type CreateParams struct {
	Name     string
	Age      int32
	Email    string
	Password string
}

type UpdateParams struct {
	Name     string
	Age      int32
	Password string
}

type Repo interface {
	Create(ctx context.Context, p CreateParams) (*User, error)
	GetByID(ctx context.Context, id int32) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	GetAll(ctx context.Context) ([]User, error)
	Update(ctx context.Context, id int32, p UpdateParams) (*User, error)
	Delete(ctx context.Context, id int32) (bool, error)
	GetWithPermissions(ctx context.Context, id int32) (*UserWithPermissions, error)
	ReplacePermissions(ctx context.Context, id int32, names []string) error
}

type userRepo struct {
	db     *sql.DB
	logger *zap.Logger
}

func NewRepo(db *sql.DB, logger *zap.Logger) Repo {
	return &userRepo{
		db:     db,
		logger: logger,
	}
}

const (
	insertUserQuery = `
					INSERT INTO users (name, age, email, password)
					VALUES ($1, $2, $3, $4)
					RETURNING id, name, age, email, password
					`
	selectUserByIDQuery = `
					SELECT id, name, age, email, password
					FROM users
					WHERE id = $1
					`
	selectUserByEmailQuery = `
					SELECT id, name, age, email, password
					FROM users
					WHERE email = $1
					`
	selectAllUsersQuery = `
					SELECT id, name, age, email, password
					FROM users
					ORDER BY id
					`
	updateUserQuery = `
					UPDATE users
					SET name = $1, age = $2, password = $3
					WHERE id = $4
					RETURNING id, name, age, email, password
					`
	deleteUserQuery = `
					DELETE FROM users
					WHERE id = $1
					`
	selectUserPermissionsQuery = `
					SELECT u.id, u.name, u.age, u.email, u.password, p.name
					FROM users u
					LEFT JOIN user_permissions up ON up.user_id = u.id
					LEFT JOIN permissions p ON p.id = up.permission_id
					WHERE u.id = $1
					`
	deleteUserPermissionsQuery = `
					DELETE FROM user_permissions
					WHERE user_id = $1
					`
	insertUserPermissionQuery = `
					INSERT INTO user_permissions (user_id, permission_id)
					SELECT $1, id FROM permissions WHERE name = $2
					ON CONFLICT DO NOTHING
					`
)

func (r *userRepo) Create(ctx context.Context, p CreateParams) (*User, error) {
	row := r.db.QueryRowContext(ctx,
		insertUserQuery,
		strings.TrimSpace(p.Name),
		p.Age,
		strings.ToLower(strings.TrimSpace(p.Email)),
		p.Password,
	)

	var u User
	if err := row.Scan(&u.ID, &u.Name, &u.Age, &u.Email, &u.Password); err != nil {
		if isUniqueViolation(err) {
			r.logger.Debug("duplicate email", zap.String("email", p.Email))
			return nil, ErrDuplicateEmail
		}
		r.logger.Error("failed to insert user", zap.Error(err))
		return nil, err
	}
	return &u, nil
}

func (r *userRepo) GetByID(ctx context.Context, id int32) (*User, error) {
	return r.scanOne(r.db.QueryRowContext(ctx, selectUserByIDQuery, id))
}

func (r *userRepo) GetByEmail(ctx context.Context, email string) (*User, error) {
	return r.scanOne(r.db.QueryRowContext(ctx, selectUserByEmailQuery, strings.ToLower(strings.TrimSpace(email))))
}

func (r *userRepo) GetAll(ctx context.Context) ([]User, error) {
	rows, err := r.db.QueryContext(ctx, selectAllUsersQuery)
	if err != nil {
		r.logger.Error("failed to list users", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	var users []User
	for rows.Next() {
		var u User
		if err := rows.Scan(&u.ID, &u.Name, &u.Age, &u.Email, &u.Password); err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

func (r *userRepo) Update(ctx context.Context, id int32, p UpdateParams) (*User, error) {
	row := r.db.QueryRowContext(ctx,
		updateUserQuery,
		strings.TrimSpace(p.Name),
		p.Age,
		p.Password,
		id,
	)

	var u User
	if err := row.Scan(&u.ID, &u.Name, &u.Age, &u.Email, &u.Password); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		r.logger.Error("failed to update user", zap.Int32("id", id), zap.Error(err))
		return nil, err
	}
	return &u, nil
}

func (r *userRepo) Delete(ctx context.Context, id int32) (bool, error) {
	res, err := r.db.ExecContext(ctx, deleteUserQuery, id)
	if err != nil {
		r.logger.Error("failed to delete user", zap.Int32("id", id), zap.Error(err))
		return false, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

func (r *userRepo) GetWithPermissions(ctx context.Context, id int32) (*UserWithPermissions, error) {
	rows, err := r.db.QueryContext(ctx, selectUserPermissionsQuery, id)
	if err != nil {
		r.logger.Error("failed to load user permissions", zap.Int32("id", id), zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	var out *UserWithPermissions
	for rows.Next() {
		var u User
		var perm sql.NullString
		if err := rows.Scan(&u.ID, &u.Name, &u.Age, &u.Email, &u.Password, &perm); err != nil {
			return nil, err
		}
		if out == nil {
			out = &UserWithPermissions{User: u}
		}
		if perm.Valid {
			out.Permissions = append(out.Permissions, perm.String)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if out == nil {
		return nil, ErrNotFound
	}
	return out, nil
}

// ReplacePermissions swaps the user's permission rows for the given names in
// one transaction. Names outside the permissions table match nothing and are
// dropped silently.
func (r *userRepo) ReplacePermissions(ctx context.Context, id int32, names []string) error {
	var exists bool
	if err := r.db.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM users WHERE id = $1)`, id).Scan(&exists); err != nil {
		return err
	}
	if !exists {
		return ErrNotFound
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, deleteUserPermissionsQuery, id); err != nil {
		r.logger.Error("failed to clear user permissions", zap.Int32("id", id), zap.Error(err))
		return err
	}
	for _, name := range names {
		if _, err := tx.ExecContext(ctx, insertUserPermissionQuery, id, name); err != nil {
			r.logger.Error("failed to grant permission",
				zap.Int32("id", id),
				zap.String("permission", name),
				zap.Error(err),
			)
			return err
		}
	}
	return tx.Commit()
}

func (r *userRepo) scanOne(row *sql.Row) (*User, error) {
	var u User
	if err := row.Scan(&u.ID, &u.Name, &u.Age, &u.Email, &u.Password); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		r.logger.Error("failed to scan user", zap.Error(err))
		return nil, err
	}
	return &u, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgerrcode.UniqueViolation
	}
	// Fallback: match by message text if the driver wrapped the error
	return strings.Contains(strings.ToLower(err.Error()), "users_email_key")
}
