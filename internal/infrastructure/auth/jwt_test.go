package auth_test

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/iho/saccopay/internal/domain"
	"github.com/iho/saccopay/internal/infrastructure/auth"
)

func TestJWTManagerGenerateAndVerify(t *testing.T) {
	t.Parallel()

	manager := auth.NewJWTManager("super-secret", time.Minute)

	user := &domain.User{
		ID:    "user-123",
		Name:  "Achieng",
		Email: "achieng@example.com",
	}

	token, err := manager.Generate(user)
	if err != nil {
		t.Fatalf("failed to generate token: %v", err)
	}

	claims, err := manager.Verify(token)
	if err != nil {
		t.Fatalf("expected token to verify, got %v", err)
	}

	if claims.UserID != user.ID || claims.Email != user.Email || claims.Name != user.Name {
		t.Fatalf("expected claims to match user, got %+v", claims)
	}

	if got := claims.User(); got.ID != user.ID || got.Email != user.Email {
		t.Fatalf("expected claims user to match, got %+v", got)
	}
}

func TestJWTManagerDefaultDuration(t *testing.T) {
	t.Parallel()

	manager := auth.NewJWTManager("secret", 0)
	token, err := manager.Generate(&domain.User{ID: "u1"})
	if err != nil {
		t.Fatalf("failed to generate token: %v", err)
	}

	claims, err := manager.Verify(token)
	if err != nil {
		t.Fatalf("expected token to verify, got %v", err)
	}

	ttl := time.Until(claims.ExpiresAt.Time)
	if ttl < auth.DefaultTokenDuration-time.Minute || ttl > auth.DefaultTokenDuration {
		t.Fatalf("expected ~7 day expiry, got %v", ttl)
	}
}

func TestJWTManagerVerifyErrors(t *testing.T) {
	t.Parallel()

	manager := auth.NewJWTManager("secret", time.Minute)

	expiredClaims := auth.Claims{
		UserID: "expired",
		Email:  "expired@example.com",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
			IssuedAt:  jwt.NewNumericDate(time.Now().Add(-2 * time.Minute)),
			NotBefore: jwt.NewNumericDate(time.Now().Add(-2 * time.Minute)),
		},
	}

	expiredToken, err := jwt.NewWithClaims(jwt.SigningMethodHS256, expiredClaims).SignedString([]byte("secret"))
	if err != nil {
		t.Fatalf("failed to sign expired token: %v", err)
	}

	if _, err := manager.Verify(expiredToken); !errors.Is(err, domain.ErrExpiredToken) {
		t.Fatalf("expected ErrExpiredToken, got %v", err)
	}

	otherManager := auth.NewJWTManager("other-secret", time.Minute)
	if _, err := otherManager.Verify(expiredToken); !errors.Is(err, domain.ErrInvalidToken) {
		t.Fatalf("expected invalid token error, got %v", err)
	}

	if _, err := manager.Verify("not-a-token"); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("expected unauthorized for malformed token, got %v", err)
	}
}

func TestBcryptHasher(t *testing.T) {
	t.Parallel()

	hasher := auth.NewBcryptHasher(4)

	hashed, err := hasher.Hash("correct horse")
	if err != nil {
		t.Fatalf("hash failed: %v", err)
	}

	if hashed == "correct horse" {
		t.Fatal("expected hash to differ from password")
	}

	if err := hasher.Compare(hashed, "correct horse"); err != nil {
		t.Fatalf("expected password to match, got %v", err)
	}

	if err := hasher.Compare(hashed, "wrong horse"); err == nil {
		t.Fatal("expected mismatch error")
	}
}
