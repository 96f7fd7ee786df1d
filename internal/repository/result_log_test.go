package repository

import (
	"context"
	"testing"
	"time"

	"volscan/internal/domain/models"
)

func TestResultLogLatestAndRevision(t *testing.T) {
	l := NewResultLog(24 * time.Hour)
	if r, rev := l.Latest(); r != nil || rev != 0 {
		t.Fatalf("empty log must report nil/0, got %v/%d", r, rev)
	}

	at := time.Date(2025, 3, 1, 12, 0, 59, 0, time.UTC)
	_ = l.Publish(context.Background(), &models.PerformerResult{Symbol: "BTCUSDT", Moves: 300, At: at})
	r, rev1 := l.Latest()
	if r == nil || r.Symbol != "BTCUSDT" {
		t.Fatalf("unexpected latest %v", r)
	}
	if rev1 != at.UnixMilli() {
		t.Fatalf("unexpected revision %d", rev1)
	}

	// same timestamp must still advance the revision
	_ = l.Publish(context.Background(), &models.PerformerResult{Symbol: "ETHUSDT", Moves: 100, At: at})
	_, rev2 := l.Latest()
	if rev2 <= rev1 {
		t.Fatalf("revision must be strictly increasing: %d then %d", rev1, rev2)
	}
}

func TestResultLogRetention(t *testing.T) {
	l := NewResultLog(24 * time.Hour)
	now := time.Date(2025, 3, 2, 12, 0, 0, 0, time.UTC)

	_ = l.Publish(context.Background(), &models.PerformerResult{Symbol: "OLD", At: now.Add(-25 * time.Hour)})
	_ = l.Publish(context.Background(), &models.PerformerResult{Symbol: "NEW", At: now.Add(-time.Minute)})

	hist := l.History(24*time.Hour, now)
	if len(hist) != 1 || hist[0].Symbol != "NEW" {
		t.Fatalf("expected only the fresh result, got %v", hist)
	}
}
