package domain

import (
	"testing"

	"github.com/google/uuid"
)

func TestNewUser(t *testing.T) {
	t.Parallel()
	validEmail := "Test@Example.com "
	hashed := "$2a$10$hashedpasswordvalue"

	user, err := NewUser(validEmail, hashed)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if user.ID == uuid.Nil {
		t.Error("Expected non-nil UUID, got nil UUID")
	}

	if user.Email != "test@example.com" {
		t.Errorf("Expected normalized email, got %s", user.Email)
	}

	if user.Role != RoleCustomer {
		t.Errorf("Expected role %s, got %s", RoleCustomer, user.Role)
	}

	if user.IsAdmin() {
		t.Error("Expected new user not to be admin")
	}

	if user.CreatedAt.IsZero() || user.UpdatedAt.IsZero() {
		t.Error("Expected non-zero timestamps")
	}

	if _, err = NewUser("", hashed); err != ErrEmptyEmail {
		t.Errorf("Expected error %v, got %v", ErrEmptyEmail, err)
	}

	if _, err = NewUser("invalidemail", hashed); err != ErrInvalidEmail {
		t.Errorf("Expected error %v, got %v", ErrInvalidEmail, err)
	}

	if _, err = NewUser(validEmail, ""); err != ErrEmptyHashedPassword {
		t.Errorf("Expected error %v, got %v", ErrEmptyHashedPassword, err)
	}
}

func TestUserValidate(t *testing.T) {
	t.Parallel()
	validUser := User{
		ID:             uuid.New(),
		Email:          "test@example.com",
		HashedPassword: "hashedpassword123",
		Role:           RoleAdmin,
	}

	if err := validUser.Validate(); err != nil {
		t.Errorf("Expected no error, got %v", err)
	}
	if !validUser.IsAdmin() {
		t.Error("Expected admin user")
	}

	invalidUser := validUser
	invalidUser.ID = uuid.Nil
	if err := invalidUser.Validate(); err != ErrEmptyUserID {
		t.Errorf("Expected error %v, got %v", ErrEmptyUserID, err)
	}

	invalidUser = validUser
	invalidUser.Role = "superuser"
	if err := invalidUser.Validate(); err != ErrInvalidRole {
		t.Errorf("Expected error %v, got %v", ErrInvalidRole, err)
	}
}

func TestValidatePassword(t *testing.T) {
	t.Parallel()
	cases := map[string]error{
		"short":                  ErrPasswordTooShort,
		"twelve-chars":           nil,
		string(make([]byte, 73)): ErrPasswordTooLong,
		string(make([]byte, 72)): nil,
	}

	for password, want := range cases {
		if got := ValidatePassword(password); got != want {
			t.Errorf("ValidatePassword(len %d) = %v, want %v", len(password), got, want)
		}
	}
}

func TestValidateEmailFormat(t *testing.T) {
	t.Parallel()
	validEmails := []string{
		"user@example.com",
		"user.name@example.com",
		"user+tag@example.com",
		"user@sub.example.com",
	}

	invalidEmails := []string{
		"",
		"userexample.com",
		"user@",
		"@example.com",
		"user@.com",
		"user@example",
		"Name <user@example.com>",
	}

	for _, email := range validEmails {
		if !validateEmailFormat(email) {
			t.Errorf("Expected email %s to be valid", email)
		}
	}

	for _, email := range invalidEmails {
		if validateEmailFormat(email) {
			t.Errorf("Expected email %s to be invalid", email)
		}
	}
}
