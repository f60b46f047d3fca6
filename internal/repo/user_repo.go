package repo

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"

	"github.com/crewbooks/crewbooks/internal/model/user"
	"github.com/crewbooks/crewbooks/internal/serviceerrs"
)

const userSelect = `
SELECT id, username, password_hash, full_name, role,
       assigned_manager_id, active, created_at
  FROM users`

type UserRepository struct {
	DB
}

func NewUserRepository(pool connectionPool, log *slog.Logger) *UserRepository {
	return &UserRepository{
		DB{
			pool: pool,
			log:  log,
		},
	}
}

func (r *UserRepository) Create(ctx context.Context, u *user.User) error {
	createLogic := func() (struct{}, error) {
		const query = `
INSERT INTO users (id, username, password_hash, full_name, role,
                   assigned_manager_id, active, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

		_, err := r.pool.Exec(ctx, query,
			u.ID, u.Username, u.PasswordHash, u.FullName, string(u.Role),
			u.AssignedManagerID, u.Active, u.CreatedAt)
		if isUniqueViolation(err) {
			return struct{}{}, fmt.Errorf("user %s: %w", u.Username, serviceerrs.ErrUserExists)
		}
		if err != nil {
			return struct{}{}, fmt.Errorf("failed to create user in DB: %w", err)
		}
		return struct{}{}, nil
	}

	_, err := WithRetry[struct{}](createLogic, 0)
	return err //nolint: wrapcheck // error from wrapped function
}

func (r *UserRepository) FindByID(ctx context.Context, id string) (user.User, error) {
	return r.findBy(ctx, ` WHERE id = $1`, id)
}

func (r *UserRepository) FindByUsername(ctx context.Context, username string) (user.User, error) {
	return r.findBy(ctx, ` WHERE username = $1`, username)
}

func (r *UserRepository) findBy(ctx context.Context, where string, arg any) (user.User, error) {
	findLogic := func() (user.User, error) {
		row := r.pool.QueryRow(ctx, userSelect+where, arg)
		u, err := scanUser(row)
		if errors.Is(err, pgx.ErrNoRows) {
			return user.User{}, fmt.Errorf("user %v: %w", arg, serviceerrs.ErrNotFound)
		}
		if err != nil {
			return user.User{}, fmt.Errorf("failed to find user %v: %w", arg, err)
		}
		return u, nil
	}

	return WithRetry[user.User](findLogic, 0) //nolint: wrapcheck // error from wrapped function
}

func (r *UserRepository) List(ctx context.Context, role *user.Role) ([]user.User, error) {
	listLogic := func() ([]user.User, error) {
		query := userSelect + ` ORDER BY full_name ASC`
		args := make([]any, 0, 1)
		if role != nil {
			query = userSelect + ` WHERE role = $1 ORDER BY full_name ASC`
			args = append(args, string(*role))
		}

		rows, err := r.pool.Query(ctx, query, args...)
		if err != nil {
			return nil, fmt.Errorf("failed to list users: %w", err)
		}
		defer rows.Close()

		users := make([]user.User, 0)
		for rows.Next() {
			u, err := scanUser(rows)
			if err != nil {
				return nil, fmt.Errorf("failed to read user row: %w", err)
			}
			users = append(users, u)
		}
		if err := rows.Err(); err != nil {
			return nil, fmt.Errorf("failed to read user rows: %w", err)
		}
		return users, nil
	}

	return WithRetry[[]user.User](listLogic, 0) //nolint: wrapcheck // error from wrapped function
}

func (r *UserRepository) AssignManager(ctx context.Context, workerID, managerID string) error {
	assignLogic := func() (struct{}, error) {
		res, err := r.pool.Exec(ctx,
			`UPDATE users SET assigned_manager_id = $1 WHERE id = $2`,
			managerID, workerID)
		if err != nil {
			return struct{}{}, fmt.Errorf("failed to assign manager: %w", err)
		}
		if res.RowsAffected() == 0 {
			return struct{}{}, fmt.Errorf("user %s: %w", workerID, serviceerrs.ErrNotFound)
		}
		return struct{}{}, nil
	}

	_, err := WithRetry[struct{}](assignLogic, 0)
	return err //nolint: wrapcheck // error from wrapped function
}

func scanUser(row pgx.Row) (user.User, error) {
	var (
		u    user.User
		role string
	)
	err := row.Scan(&u.ID, &u.Username, &u.PasswordHash, &u.FullName, &role,
		&u.AssignedManagerID, &u.Active, &u.CreatedAt)
	if err != nil {
		return user.User{}, err //nolint: wrapcheck // callers wrap with query context
	}
	u.Role = user.Role(role)
	return u, nil
}
