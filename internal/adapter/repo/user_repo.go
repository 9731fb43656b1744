package repo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"crowdfund/internal/domain"
	"crowdfund/internal/infra"
	"crowdfund/internal/sqlinline"
)

// UserRepositoryPG implements domain.UserRepository backed by PostgreSQL.
type UserRepositoryPG struct {
	sql infra.SQLExecutor
}

// NewUserRepository creates a new UserRepositoryPG.
func NewUserRepository(sql infra.SQLExecutor) *UserRepositoryPG {
	return &UserRepositoryPG{sql: sql}
}

// Create inserts a password account. A duplicate email maps to
// domain.ErrDuplicateEmail.
func (r *UserRepositoryPG) Create(ctx context.Context, user *domain.User) error {
	profile, err := json.Marshal(user.Profile)
	if err != nil {
		return fmt.Errorf("encode profile: %w", err)
	}
	err = r.sql.QueryRow(ctx, sqlinline.QInsertUser,
		user.ID,
		user.Email,
		user.PasswordHash,
		string(user.Role),
		string(user.Verification),
		user.Locale,
		string(profile),
	).Scan(&user.CreatedAt, &user.UpdatedAt)
	if infra.IsUniqueViolation(err) {
		return domain.ErrDuplicateEmail
	}
	return err
}

// UpsertByGoogleSub inserts a donor account for a Google identity or links
// the identity to the existing account with the same email.
func (r *UserRepositoryPG) UpsertByGoogleSub(ctx context.Context, user *domain.User) (*domain.User, error) {
	row := r.sql.QueryRow(ctx, sqlinline.QUpsertGoogleUser,
		user.GoogleSub,
		user.Email,
		user.Profile.FullName,
		user.Locale,
	)
	return scanUser(row)
}

// GetByID fetches a user by UUID.
func (r *UserRepositoryPG) GetByID(ctx context.Context, id string) (*domain.User, error) {
	return scanUser(r.sql.QueryRow(ctx, sqlinline.QSelectUserByID, id))
}

// GetByEmail fetches a user by email, case-insensitively.
func (r *UserRepositoryPG) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return scanUser(r.sql.QueryRow(ctx, sqlinline.QSelectUserByEmail, email))
}

func (r *UserRepositoryPG) ListByVerification(ctx context.Context, status domain.VerificationStatus, limit, offset int) ([]domain.User, error) {
	rows, err := r.sql.Query(ctx, sqlinline.QListUsersByVerification, string(status), limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []domain.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *u)
	}
	return items, rows.Err()
}

// UpdateVerification moves a user from one verification state to another.
// It returns domain.ErrInvalidTransition when the user exists but is not in
// the from state.
func (r *UserRepositoryPG) UpdateVerification(ctx context.Context, id string, from, to domain.VerificationStatus, note string) (*domain.User, error) {
	u, err := scanUser(r.sql.QueryRow(ctx, sqlinline.QUpdateUserVerification, id, string(from), string(to), note))
	if errors.Is(err, domain.ErrNotFound) {
		if _, getErr := r.GetByID(ctx, id); getErr != nil {
			return nil, getErr
		}
		return nil, domain.ErrInvalidTransition
	}
	return u, err
}

func (r *UserRepositoryPG) UpdateRole(ctx context.Context, id string, role domain.UserRole) (*domain.User, error) {
	return scanUser(r.sql.QueryRow(ctx, sqlinline.QUpdateUserRole, id, string(role)))
}

func scanUser(row pgx.Row) (*domain.User, error) {
	var (
		u          domain.User
		role       string
		status     string
		properties []byte
	)
	if err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.GoogleSub, &role, &status, &u.ReviewNote, &u.Locale, &properties, &u.CreatedAt, &u.UpdatedAt); err != nil {
		if infra.IsNoRows(err) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	u.Role = domain.UserRole(role)
	u.Verification = domain.VerificationStatus(status)
	if len(properties) > 0 {
		if err := json.Unmarshal(properties, &u.Profile); err != nil {
			return nil, fmt.Errorf("decode profile: %w", err)
		}
	}
	return &u, nil
}
