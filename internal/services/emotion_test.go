package services

import (
	"context"
	"testing"

	"github.com/emocare/emocare-backend/internal/apierr"
	"github.com/emocare/emocare-backend/internal/repos"
	"github.com/emocare/emocare-backend/internal/types"
)

func newEmotionService(t *testing.T) (EmotionService, *types.User) {
	t.Helper()
	db := newTestDB(t)
	log := testLogger()
	user := seedUser(t, db, types.RoleUser, types.TierFree)
	return NewEmotionService(db, log, repos.NewEmotionEntryRepo(db, log)), user
}

func TestEmotionCreateEntry(t *testing.T) {
	svc, user := newEmotionService(t)
	ctx := ctxFor(user.ID, types.RoleUser, types.TierFree)

	entry, err := svc.CreateEntry(ctx, 3, "steady day")
	if err != nil {
		t.Fatalf("CreateEntry: %v", err)
	}
	if entry.Level != 3 || entry.UserID != user.ID {
		t.Fatalf("entry = %+v", entry)
	}
}

func TestEmotionCreateEntryValidation(t *testing.T) {
	svc, user := newEmotionService(t)
	ctx := ctxFor(user.ID, types.RoleUser, types.TierFree)

	for _, level := range []int{0, -1, 6, 100} {
		if _, err := svc.CreateEntry(ctx, level, ""); !apierr.IsCode(err, apierr.CodeInvalidArgument) {
			t.Errorf("level %d: err = %v, want invalid_argument", level, err)
		}
	}
	for _, level := range []int{1, 5} {
		if _, err := svc.CreateEntry(ctx, level, ""); err != nil {
			t.Errorf("level %d: %v", level, err)
		}
	}

	adminCtx := ctxFor(user.ID, types.RoleAdmin, types.TierNone)
	if _, err := svc.CreateEntry(adminCtx, 3, ""); !apierr.IsCode(err, apierr.CodeForbidden) {
		t.Errorf("admin create: err = %v, want forbidden", err)
	}
	if _, err := svc.CreateEntry(context.Background(), 3, ""); !apierr.IsCode(err, apierr.CodeUnauthenticated) {
		t.Errorf("no principal: err = %v, want unauthenticated", err)
	}
}

func TestEmotionStatsEmpty(t *testing.T) {
	svc, user := newEmotionService(t)
	ctx := ctxFor(user.ID, types.RoleUser, types.TierFree)

	stats, err := svc.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if stats.Total != 0 || stats.Level1+stats.Level2+stats.Level3+stats.Level4+stats.Level5 != 0 {
		t.Fatalf("stats = %+v, want all zero", stats)
	}
}

func TestEmotionStatsBuckets(t *testing.T) {
	svc, user := newEmotionService(t)
	ctx := ctxFor(user.ID, types.RoleUser, types.TierFree)

	levels := []int{3, 3, 1, 5, 3}
	for _, level := range levels {
		if _, err := svc.CreateEntry(ctx, level, ""); err != nil {
			t.Fatalf("CreateEntry(%d): %v", level, err)
		}
	}

	stats, err := svc.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if stats.Level1 != 1 || stats.Level3 != 3 || stats.Level5 != 1 {
		t.Fatalf("buckets = %+v", stats)
	}
	if stats.Level2 != 0 || stats.Level4 != 0 {
		t.Fatalf("empty buckets populated: %+v", stats)
	}
	if sum := stats.Level1 + stats.Level2 + stats.Level3 + stats.Level4 + stats.Level5; sum != stats.Total {
		t.Fatalf("buckets sum to %d, total %d", sum, stats.Total)
	}
	if stats.Total != int64(len(levels)) {
		t.Fatalf("total = %d, want %d", stats.Total, len(levels))
	}
}

func TestEmotionStatsScopedToCaller(t *testing.T) {
	db := newTestDB(t)
	log := testLogger()
	svc := NewEmotionService(db, log, repos.NewEmotionEntryRepo(db, log))
	alice := seedUser(t, db, types.RoleUser, types.TierFree)
	bob := seedUser(t, db, types.RoleUser, types.TierFree)

	aliceCtx := ctxFor(alice.ID, types.RoleUser, types.TierFree)
	bobCtx := ctxFor(bob.ID, types.RoleUser, types.TierFree)

	if _, err := svc.CreateEntry(aliceCtx, 2, ""); err != nil {
		t.Fatalf("CreateEntry: %v", err)
	}

	stats, err := svc.Stats(bobCtx)
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if stats.Total != 0 {
		t.Fatalf("bob sees %d entries, want 0", stats.Total)
	}
}

func TestEmotionListNewestFirst(t *testing.T) {
	svc, user := newEmotionService(t)
	ctx := ctxFor(user.ID, types.RoleUser, types.TierFree)

	for _, level := range []int{1, 2, 3} {
		if _, err := svc.CreateEntry(ctx, level, ""); err != nil {
			t.Fatalf("CreateEntry: %v", err)
		}
	}
	entries, err := svc.ListEntries(ctx, 2)
	if err != nil {
		t.Fatalf("ListEntries: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("len = %d, want 2 (limit)", len(entries))
	}
	if entries[0].Level != 3 {
		t.Fatalf("first entry level = %d, want newest (3)", entries[0].Level)
	}
}
