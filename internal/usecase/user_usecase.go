package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/iho/saccopay/internal/domain"
)

// UserUseCase handles member registration and authentication.
type UserUseCase struct {
	txManager   TransactionManager
	userRepo    UserRepository
	savingsRepo SavingsRepository
	hasher      PasswordHasher
	idGen       IDGenerator
}

// NewUserUseCase creates a new user use case
func NewUserUseCase(
	txManager TransactionManager,
	userRepo UserRepository,
	savingsRepo SavingsRepository,
	hasher PasswordHasher,
	idGen IDGenerator,
) *UserUseCase {
	return &UserUseCase{
		txManager:   txManager,
		userRepo:    userRepo,
		savingsRepo: savingsRepo,
		hasher:      hasher,
		idGen:       idGen,
	}
}

// RegisterInput represents input for registering a member
type RegisterInput struct {
	Name     string
	Email    string
	Phone    string
	Password string
}

// Register creates a member together with an empty savings account.
func (uc *UserUseCase) Register(ctx context.Context, input RegisterInput) (*domain.User, error) {
	email := strings.TrimSpace(strings.ToLower(input.Email))

	if err := domain.ValidateEmail(email); err != nil {
		return nil, err
	}

	if err := domain.ValidatePassword(input.Password); err != nil {
		return nil, err
	}

	if err := domain.ValidateName(input.Name); err != nil {
		return nil, err
	}

	if input.Phone != "" {
		if err := domain.ValidatePhone(input.Phone); err != nil {
			return nil, err
		}
	}

	existing, err := uc.userRepo.GetByEmail(ctx, email)
	if err == nil && existing != nil {
		return nil, domain.ErrEmailTaken
	}
	if err != nil && !errors.Is(err, domain.ErrUserNotFound) {
		return nil, err
	}

	hashedPassword, err := uc.hasher.Hash(input.Password)
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		ID:             uc.idGen.Generate(),
		Name:           strings.TrimSpace(input.Name),
		Email:          email,
		Phone:          input.Phone,
		HashedPassword: hashedPassword,
		CreatedAt:      time.Now().UTC(),
	}

	txCtx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
	defer cancel()

	tx, err := uc.txManager.Begin(txCtx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(txCtx) }()

	if err := uc.userRepo.Create(txCtx, tx, user); err != nil {
		return nil, err
	}

	if err := uc.savingsRepo.Open(txCtx, tx, user.ID, user.CreatedAt); err != nil {
		return nil, err
	}

	if err := tx.Commit(txCtx); err != nil {
		return nil, err
	}

	// Don't return hashed password
	user.HashedPassword = ""
	return user, nil
}

// Authenticate verifies member credentials
func (uc *UserUseCase) Authenticate(ctx context.Context, email, password string) (*domain.User, error) {
	if email == "" || password == "" {
		return nil, domain.ErrInvalidCredentials
	}

	user, err := uc.userRepo.GetByEmail(ctx, strings.TrimSpace(strings.ToLower(email)))
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, err
	}

	if err := uc.hasher.Compare(user.HashedPassword, password); err != nil {
		return nil, domain.ErrInvalidCredentials
	}

	user.HashedPassword = ""
	return user, nil
}

// GetUser retrieves a member by ID
func (uc *UserUseCase) GetUser(ctx context.Context, id string) (*domain.User, error) {
	user, err := uc.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	user.HashedPassword = ""
	return user, nil
}
