package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/iho/saccopay/internal/adapter/http/dto"
	"github.com/iho/saccopay/internal/domain"
	"github.com/iho/saccopay/internal/usecase"
)

func TestAuthHandler_Register(t *testing.T) {
	var captured usecase.RegisterInput
	h := NewAuthHandler(&userServiceStub{
		registerFn: func(ctx context.Context, input usecase.RegisterInput) (*domain.User, error) {
			captured = input
			return &domain.User{ID: "u1", Email: input.Email, Name: input.Name, HashedPassword: "hash"}, nil
		},
	}, tokenIssuerStub{}, nil, zerolog.Nop())

	req := httptest.NewRequest(http.MethodPost, "/auth/register", strings.NewReader(`{"name":"Jane","email":"jane@example.com","password":"secret123"}`))
	rec := httptest.NewRecorder()

	h.Register(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	if captured.Email != "jane@example.com" || captured.Password != "secret123" {
		t.Fatalf("unexpected input %+v", captured)
	}

	var resp dto.AuthResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Token != "token-u1" || resp.User.ID != "u1" {
		t.Fatalf("unexpected response %+v", resp)
	}
}

func TestAuthHandler_RegisterEmailTaken(t *testing.T) {
	h := NewAuthHandler(&userServiceStub{
		registerFn: func(ctx context.Context, input usecase.RegisterInput) (*domain.User, error) {
			return nil, domain.ErrEmailTaken
		},
	}, tokenIssuerStub{}, nil, zerolog.Nop())

	req := httptest.NewRequest(http.MethodPost, "/auth/register", strings.NewReader(`{"email":"jane@example.com","password":"secret123"}`))
	rec := httptest.NewRecorder()

	h.Register(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestAuthHandler_Login(t *testing.T) {
	users := &userServiceStub{
		authenticateFn: func(ctx context.Context, email, password string) (*domain.User, error) {
			if password != "secret123" {
				return nil, domain.ErrInvalidCredentials
			}
			return &domain.User{ID: "u1", Email: email}, nil
		},
	}
	h := NewAuthHandler(users, tokenIssuerStub{}, nil, zerolog.Nop())

	tests := []struct {
		name string
		body string
		want int
	}{
		{"valid", `{"email":"jane@example.com","password":"secret123"}`, http.StatusOK},
		{"wrong password", `{"email":"jane@example.com","password":"nope"}`, http.StatusUnauthorized},
		{"missing password", `{"email":"jane@example.com"}`, http.StatusBadRequest},
		{"malformed", `{`, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			h.Login(rec, httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(tt.body)))
			if rec.Code != tt.want {
				t.Fatalf("expected %d, got %d: %s", tt.want, rec.Code, rec.Body.String())
			}
		})
	}
}

func TestAuthHandler_Me(t *testing.T) {
	h := NewAuthHandler(&userServiceStub{
		getFn: func(ctx context.Context, id string) (*domain.User, error) {
			return &domain.User{ID: id, Email: "jane@example.com"}, nil
		},
	}, tokenIssuerStub{}, nil, zerolog.Nop())

	rec := httptest.NewRecorder()
	h.Me(rec, httptest.NewRequest(http.MethodGet, "/auth/me", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without member, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	h.Me(rec, asMember(httptest.NewRequest(http.MethodGet, "/auth/me", nil), "u1"))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp dto.UserResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil || resp.ID != "u1" {
		t.Fatalf("unexpected response %s (%v)", rec.Body.String(), err)
	}
}
