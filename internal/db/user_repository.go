package db

import (
	"context"

	"github.com/chepyr/team-tracker/internal/models"
)

// defines methods for user db operations
type UserRepositoryInterface interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id int64) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
}

type UserRepository struct {
	db DBTX
}

func NewUserRepository(db DBTX) *UserRepository {
	return &UserRepository{db: db}
}

// Create inserts the user and sets user.ID.
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	query := `INSERT INTO users (username, display_name, password_hash, created_at)
	 VALUES ($1, $2, $3, $4) RETURNING id`

	err := r.db.QueryRowContext(
		ctx, query, user.Username, user.DisplayName, user.PasswordHash, user.CreatedAt,
	).Scan(&user.ID)
	return translate(err)
}

func (r *UserRepository) GetByID(ctx context.Context, id int64) (*models.User, error) {
	query := `SELECT id, username, display_name, password_hash, created_at FROM users WHERE id = $1`
	return r.scanOne(ctx, query, id)
}

func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	query := `SELECT id, username, display_name, password_hash, created_at FROM users WHERE username = $1`
	return r.scanOne(ctx, query, username)
}

func (r *UserRepository) Update(ctx context.Context, user *models.User) error {
	query := `UPDATE users SET display_name = $1, password_hash = $2 WHERE id = $3`
	return mustAffect(r.db.ExecContext(ctx, query, user.DisplayName, user.PasswordHash, user.ID))
}

func (r *UserRepository) scanOne(ctx context.Context, query string, arg any) (*models.User, error) {
	user := &models.User{}
	err := r.db.QueryRowContext(ctx, query, arg).Scan(
		&user.ID, &user.Username, &user.DisplayName, &user.PasswordHash, &user.CreatedAt,
	)
	if err != nil {
		return nil, translate(err)
	}
	return user, nil
}
