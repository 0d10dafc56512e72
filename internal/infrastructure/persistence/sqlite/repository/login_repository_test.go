package repository

import (
	"context"
	"testing"
)

func TestLoginRepositoryLatestWins(t *testing.T) {
	repo := NewLoginRepository(setupDB(t))
	ctx := context.Background()

	if _, ok, err := repo.LatestLoginUser(ctx); err != nil || ok {
		t.Fatalf("LatestLoginUser() on empty table = %v, %v", ok, err)
	}

	for _, id := range []string{"alice", " bob "} {
		if err := repo.SaveLoginUser(ctx, id); err != nil {
			t.Fatalf("SaveLoginUser(%q) error = %v", id, err)
		}
	}

	got, ok, err := repo.LatestLoginUser(ctx)
	if err != nil || !ok {
		t.Fatalf("LatestLoginUser() = %v, %v", ok, err)
	}
	if got != "bob" {
		t.Fatalf("LatestLoginUser() = %q, want bob", got)
	}

	if err := repo.SaveLoginUser(ctx, "   "); err == nil {
		t.Fatalf("SaveLoginUser(blank) expected error")
	}
}
