package memory

import (
	"context"
	"errors"
	"testing"

	"quizarena-service/internal/domain"
)

func TestUserStoreUniqueUsernames(t *testing.T) {
	ctx := context.Background()
	store := NewUserStore()

	if err := store.CreateUser(ctx, domain.User{ID: "u1", Username: "Alice"}); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := store.CreateUser(ctx, domain.User{ID: "u2", Username: "alice"}); !errors.Is(err, domain.ErrUsernameTaken) {
		t.Fatalf("expected username taken, got %v", err)
	}

	user, err := store.GetUserByUsername(ctx, "ALICE")
	if err != nil || user.ID != "u1" {
		t.Fatalf("lookup by username = (%+v, %v)", user, err)
	}

	users, _ := store.GetUsers(ctx, []string{"u1", "ghost"})
	if len(users) != 1 || users["u1"].Username != "Alice" {
		t.Fatalf("unexpected batch lookup: %+v", users)
	}
}
