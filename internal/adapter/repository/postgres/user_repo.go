package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/iho/saccopay/internal/domain"
	"github.com/iho/saccopay/internal/infrastructure/postgres/generated"
	"github.com/iho/saccopay/internal/usecase"
)

const pgErrUniqueViolation = "23505"

// UserRepository implements usecase.UserRepository.
type UserRepository struct {
	queries *generated.Queries
}

// NewUserRepository creates a new user repository
func NewUserRepository(db generated.DBTX) *UserRepository {
	return &UserRepository{queries: generated.New(db)}
}

// Create inserts a new member. A duplicate email reports ErrEmailTaken.
func (r *UserRepository) Create(ctx context.Context, tx usecase.Transaction, user *domain.User) error {
	err := queriesIn(tx).CreateUser(ctx, generated.CreateUserParams{
		ID:             user.ID,
		Name:           user.Name,
		Email:          user.Email,
		Phone:          user.Phone,
		HashedPassword: user.HashedPassword,
		CreatedAt:      timeToPgTimestamptz(user.CreatedAt),
	})

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgErrUniqueViolation {
		return domain.ErrEmailTaken
	}

	return domain.Persistence("create user", err)
}

// GetByID retrieves a member by ID
func (r *UserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	row, err := r.queries.GetUserByID(ctx, id)
	if err != nil {
		return nil, userError("get user", err)
	}

	return rowToUser(row), nil
}

// GetByEmail retrieves a member by email
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	row, err := r.queries.GetUserByEmail(ctx, email)
	if err != nil {
		return nil, userError("get user by email", err)
	}

	return rowToUser(row), nil
}

func userError(op string, err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.ErrUserNotFound
	}
	return domain.Persistence(op, err)
}

func rowToUser(row generated.User) *domain.User {
	return &domain.User{
		ID:             row.ID,
		Name:           row.Name,
		Email:          row.Email,
		Phone:          row.Phone,
		HashedPassword: row.HashedPassword,
		CreatedAt:      row.CreatedAt.Time,
	}
}
