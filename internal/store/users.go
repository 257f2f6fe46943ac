package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"steward/internal/services"
)

const userColumns = "id, username, email, password_hash, full_name, role, skills_json, active, created_at, updated_at"

// CreateUser inserts a new account. The ID and timestamps are assigned
// here; the password must already be hashed.
func (s *Store) CreateUser(ctx context.Context, user *User) (*User, error) {
	if user == nil {
		return nil, errors.New("user is nil")
	}
	if !ValidRole(user.Role) {
		return nil, services.Wrap(services.ErrValidation, "store", "create user", fmt.Sprintf("unknown role %q", user.Role), nil)
	}

	user.ID = uuid.NewString()
	now := time.Now().UTC()
	user.CreatedAt = now
	user.UpdatedAt = now

	skills, err := marshalJSON(user.Skills)
	if err != nil {
		return nil, err
	}

	_, err = s.db.ExecContext(
		ctx,
		`INSERT INTO users (`+userColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		user.ID,
		user.Username,
		user.Email,
		user.PasswordHash,
		nullableString(user.FullName),
		user.Role,
		skills,
		boolToInt(user.Active),
		now.Format(time.RFC3339Nano),
		now.Format(time.RFC3339Nano),
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint") {
			return nil, services.Wrap(services.ErrConflict, "store", "create user", fmt.Sprintf("username %q already taken", user.Username), err)
		}
		return nil, fmt.Errorf("insert user: %w", err)
	}
	return s.UserByID(ctx, user.ID)
}

// UserByID fetches an account by identifier. Missing users return nil
// without error.
func (s *Store) UserByID(ctx context.Context, id string) (*User, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id)
	user, err := scanUser(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return user, nil
}

// UserByUsername fetches an account by login name.
func (s *Store) UserByUsername(ctx context.Context, username string) (*User, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE username = ?`, username)
	user, err := scanUser(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get user by username: %w", err)
	}
	return user, nil
}

// ListUsers returns all accounts ordered by username.
func (s *Store) ListUsers(ctx context.Context) ([]*User, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+userColumns+` FROM users ORDER BY username`)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	var users []*User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, rows.Err()
}

// UpdateUser persists changes to an existing account.
func (s *Store) UpdateUser(ctx context.Context, user *User) error {
	if user == nil {
		return errors.New("user is nil")
	}
	user.UpdatedAt = time.Now().UTC()

	skills, err := marshalJSON(user.Skills)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(
		ctx,
		`UPDATE users
         SET username = ?, email = ?, password_hash = ?, full_name = ?,
             role = ?, skills_json = ?, active = ?, updated_at = ?
         WHERE id = ?`,
		user.Username,
		user.Email,
		user.PasswordHash,
		nullableString(user.FullName),
		user.Role,
		skills,
		boolToInt(user.Active),
		user.UpdatedAt.Format(time.RFC3339Nano),
		user.ID,
	)
	if err != nil {
		return fmt.Errorf("update user: %w", err)
	}
	return nil
}

// DeactivateUser flags an account inactive. Accounts are never deleted so
// audit rows keep a valid actor.
func (s *Store) DeactivateUser(ctx context.Context, id string) (bool, error) {
	res, err := s.db.ExecContext(
		ctx,
		`UPDATE users SET active = 0, updated_at = ? WHERE id = ?`,
		time.Now().UTC().Format(time.RFC3339Nano),
		id,
	)
	if err != nil {
		return false, fmt.Errorf("deactivate user: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return affected > 0, nil
}

func scanUser(scanner interface{ Scan(dest ...any) error }) (*User, error) {
	var (
		id         string
		username   string
		email      string
		hash       string
		fullName   sql.NullString
		role       string
		skillsRaw  sql.NullString
		active     int
		createdRaw string
		updatedRaw string
	)
	if err := scanner.Scan(&id, &username, &email, &hash, &fullName, &role, &skillsRaw, &active, &createdRaw, &updatedRaw); err != nil {
		return nil, err
	}

	user := &User{
		ID:           id,
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		FullName:     fullName.String,
		Role:         Role(role),
		Active:       active != 0,
	}
	if err := unmarshalInto(skillsRaw, &user.Skills); err != nil {
		return nil, fmt.Errorf("decode skills: %w", err)
	}
	if created, err := parseTimeString(createdRaw); err == nil {
		user.CreatedAt = created
	}
	if updated, err := parseTimeString(updatedRaw); err == nil {
		user.UpdatedAt = updated
	}
	return user, nil
}
