package domain

import (
	"strings"
	"testing"

	"github.com/google/uuid"
)

func TestNewUser(t *testing.T) {
	t.Parallel()

	user, err := NewUser("test@example.com", "motdepasse123")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if user.ID == uuid.Nil {
		t.Error("Expected non-nil UUID")
	}
	if user.Email != "test@example.com" {
		t.Errorf("Expected email test@example.com, got %s", user.Email)
	}

	tests := []struct {
		name     string
		email    string
		password string
		wantErr  error
	}{
		{name: "empty email", email: "", password: "motdepasse123", wantErr: ErrEmailEmpty},
		{name: "no at sign", email: "invalid", password: "motdepasse123", wantErr: ErrEmailInvalid},
		{name: "no domain dot", email: "a@b", password: "motdepasse123", wantErr: ErrEmailInvalid},
		{name: "password too short", email: "a@b.com", password: "court", wantErr: ErrPasswordTooShort},
		{name: "password too long", email: "a@b.com", password: strings.Repeat("p", 73), wantErr: ErrPasswordTooLong},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewUser(tt.email, tt.password)
			if err != tt.wantErr {
				t.Errorf("Expected error %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestUserValidateStoredUser(t *testing.T) {
	t.Parallel()

	// A user loaded from storage has no plaintext password.
	stored := User{ID: uuid.New(), Email: "test@example.com", HashedPassword: "$2a$10$hash"}
	if err := stored.Validate(); err != nil {
		t.Errorf("Expected no error, got %v", err)
	}

	stored.HashedPassword = ""
	if err := stored.Validate(); err != ErrHashedPasswordEmpty {
		t.Errorf("Expected error %v, got %v", ErrHashedPasswordEmpty, err)
	}
}
