package services

import (
	"context"
	"errors"
	"testing"

	parley_errors "parley/pkg/errors"

	"golang.org/x/crypto/bcrypt"
)

func TestUpdateUsername(t *testing.T) {
	f := newFixture()
	svc := NewUserService(f.users, bcrypt.MinCost)
	ctx := context.Background()
	alice := f.addUser("alice")

	u, err := svc.UpdateUsername(ctx, alice.ID, "  new-name ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if u.Username != "new-name" {
		t.Errorf("want trimmed username, got %q", u.Username)
	}

	if _, err := svc.UpdateUsername(ctx, alice.ID, "   "); !errors.Is(err, parley_errors.ErrInvalidInput) {
		t.Errorf("blank username: want ErrInvalidInput, got %v", err)
	}
}

func TestUpdateEmailConflict(t *testing.T) {
	f := newFixture()
	svc := NewUserService(f.users, bcrypt.MinCost)
	ctx := context.Background()
	alice := f.addUser("alice")
	bob := f.addUser("bob")

	if _, err := svc.UpdateEmail(ctx, alice.ID, bob.Email); !errors.Is(err, parley_errors.ErrConflict) {
		t.Errorf("taken email: want ErrConflict, got %v", err)
	}
	if _, err := svc.UpdateEmail(ctx, alice.ID, "fresh@example.com"); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestUpdatePhoneConflict(t *testing.T) {
	f := newFixture()
	svc := NewUserService(f.users, bcrypt.MinCost)
	ctx := context.Background()
	alice := f.addUser("alice")
	bob := f.addUser("bob")

	if _, err := svc.UpdatePhone(ctx, alice.ID, bob.Phone); !errors.Is(err, parley_errors.ErrConflict) {
		t.Errorf("taken phone: want ErrConflict, got %v", err)
	}
	if _, err := svc.UpdatePhone(ctx, alice.ID, "+447700900123"); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestUpdatePassword(t *testing.T) {
	f := newFixture()
	svc := NewUserService(f.users, bcrypt.MinCost)
	ctx := context.Background()
	alice := f.addUser("alice")

	if err := svc.UpdatePassword(ctx, alice.ID, "weak"); !errors.Is(err, parley_errors.ErrInvalidInput) {
		t.Errorf("weak password: want ErrInvalidInput, got %v", err)
	}
	if err := svc.UpdatePassword(ctx, alice.ID, "Sup3r!secret"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	stored, err := f.users.GetByID(ctx, alice.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("Sup3r!secret")); err != nil {
		t.Error("stored hash should match the new password")
	}
}

// Accounts can only be deleted by their owner.
func TestDeleteSelfOnly(t *testing.T) {
	f := newFixture()
	svc := NewUserService(f.users, bcrypt.MinCost)
	ctx := context.Background()
	alice := f.addUser("alice")
	bob := f.addUser("bob")

	if err := svc.Delete(ctx, alice.ID, bob.ID); !errors.Is(err, parley_errors.ErrForbidden) {
		t.Errorf("deleting another account: want ErrForbidden, got %v", err)
	}
	if err := svc.Delete(ctx, alice.ID, alice.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := f.users.GetByID(ctx, alice.ID); !errors.Is(err, parley_errors.ErrNotFound) {
		t.Errorf("account should be gone, got %v", err)
	}
}
