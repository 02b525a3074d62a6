package domain

import (
	"encoding/json"
	"testing"
	"time"
)

func TestGiftSerialization(t *testing.T) {
	gift := Gift{
		ID:        "rose",
		Name:      "Rose",
		Cost:      1,
		Animation: "rose_float",
		Category:  GiftCategoryClassic,
	}

	data, err := json.Marshal(gift)
	if err != nil {
		t.Fatalf("failed to marshal gift: %v", err)
	}

	var decoded Gift
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("failed to unmarshal gift: %v", err)
	}

	if decoded.ID != gift.ID || decoded.Cost != gift.Cost {
		t.Errorf("round trip mismatch: got %+v, want %+v", decoded, gift)
	}
	if decoded.Category != GiftCategoryClassic {
		t.Errorf("expected category %s, got %s", GiftCategoryClassic, decoded.Category)
	}
}

func TestBattleModeConstants(t *testing.T) {
	modes := []BattleMode{BattleInactive, BattleActive, BattleEnded}
	seen := make(map[BattleMode]bool)
	for _, m := range modes {
		if m == "" {
			t.Errorf("battle mode constant is empty")
		}
		if seen[m] {
			t.Errorf("duplicate battle mode %s", m)
		}
		seen[m] = true
	}
}

func TestWinnerConstants(t *testing.T) {
	winners := []BattleWinner{WinnerSelf, WinnerOpponent, WinnerTie}
	seen := make(map[BattleWinner]bool)
	for _, w := range winners {
		if w == "" {
			t.Errorf("winner constant is empty")
		}
		if seen[w] {
			t.Errorf("duplicate winner %s", w)
		}
		seen[w] = true
	}
	if WinnerNone != "" {
		t.Errorf("WinnerNone should be the zero value, got %q", WinnerNone)
	}
}

func TestLogEntryOmitsEmptyLevel(t *testing.T) {
	entry := LogEntry{
		ID:          "e1",
		AuthorLabel: "system",
		Text:        "battle started",
		IsSystem:    true,
		CreatedAt:   time.Now(),
	}

	data, err := json.Marshal(entry)
	if err != nil {
		t.Fatalf("failed to marshal log entry: %v", err)
	}

	var m map[string]interface{}
	if err := json.Unmarshal(data, &m); err != nil {
		t.Fatalf("failed to unmarshal into map: %v", err)
	}
	if _, ok := m["author_level"]; ok {
		t.Error("author_level should be omitted when nil")
	}
}

func TestEventSeverityConstants(t *testing.T) {
	severities := []EventSeverity{SeverityInfo, SeverityWarning, SeverityError, SeverityCritical}
	for _, s := range severities {
		if s == "" {
			t.Errorf("severity constant is empty")
		}
	}
}
