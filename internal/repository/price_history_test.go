package repository

import (
	"testing"
	"time"

	"volscan/internal/domain/models"
)

func TestWindowedOrderAndCutoff(t *testing.T) {
	h := NewPriceHistory()
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	h.Append("BTCUSDT", models.PriceSample{Price: 100, ObservedAt: now.Add(-90 * time.Second)})
	h.Append("BTCUSDT", models.PriceSample{Price: 101, ObservedAt: now.Add(-30 * time.Second)})
	h.Append("BTCUSDT", models.PriceSample{Price: 102, ObservedAt: now.Add(-10 * time.Second)})

	got := h.Windowed("BTCUSDT", 60*time.Second, now)
	if len(got) != 2 {
		t.Fatalf("expected 2 samples in window, got %d", len(got))
	}
	if got[0].Price != 101 || got[1].Price != 102 {
		t.Fatalf("unexpected order: %v", got)
	}
}

func TestWindowedBoundaryInclusive(t *testing.T) {
	h := NewPriceHistory()
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	h.Append("ETHUSDT", models.PriceSample{Price: 1, ObservedAt: now.Add(-60 * time.Second)})

	if got := h.Windowed("ETHUSDT", 60*time.Second, now); len(got) != 1 {
		t.Fatalf("sample at exactly now-window must qualify, got %d", len(got))
	}
}

func TestPruneKeepsActiveWindow(t *testing.T) {
	h := NewPriceHistory()
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	h.Append("BTCUSDT", models.PriceSample{Price: 1, ObservedAt: now.Add(-130 * time.Second)})
	h.Append("BTCUSDT", models.PriceSample{Price: 2, ObservedAt: now.Add(-90 * time.Second)})
	h.Append("BTCUSDT", models.PriceSample{Price: 3, ObservedAt: now.Add(-5 * time.Second)})

	// 90s-old sample is outside the 60s scoring window but inside retention
	if got := h.Windowed("BTCUSDT", 60*time.Second, now); len(got) != 1 {
		t.Fatalf("expected 1 scoring sample pre-prune, got %d", len(got))
	}

	h.Prune(120*time.Second, now)

	all := h.Windowed("BTCUSDT", 120*time.Second, now)
	if len(all) != 2 {
		t.Fatalf("expected 130s-old sample pruned, 90s-old kept, got %d samples", len(all))
	}
	if all[0].Price != 2 {
		t.Fatalf("expected 90s-old sample to survive prune, got %v", all[0])
	}
}

func TestVolumeOverwrite(t *testing.T) {
	h := NewPriceHistory()
	h.SetVolume("BTCUSDT", 5_000_000)
	h.SetVolume("BTCUSDT", 12_000_000)
	if v := h.Volume("BTCUSDT"); v != 12_000_000 {
		t.Fatalf("expected latest volume, got %v", v)
	}
	if v := h.Volume("UNKNOWN"); v != 0 {
		t.Fatalf("unknown symbol must report zero volume, got %v", v)
	}
}

func TestVolumeSurvivesPrune(t *testing.T) {
	h := NewPriceHistory()
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	h.Append("BTCUSDT", models.PriceSample{Price: 1, ObservedAt: now.Add(-10 * time.Minute)})
	h.SetVolume("BTCUSDT", 42)

	h.Prune(120*time.Second, now)
	if v := h.Volume("BTCUSDT"); v != 42 {
		t.Fatalf("volume must survive pruning, got %v", v)
	}
}
