package pagination

import (
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestNormalizeLimit(t *testing.T) {
	cases := []struct {
		in   int
		want int
	}{
		{0, DefaultLimit},
		{-5, DefaultLimit},
		{10, 10},
		{MaxLimit, MaxLimit},
		{MaxLimit + 1, MaxLimit},
	}
	for _, tc := range cases {
		if got := NormalizeLimit(tc.in); got != tc.want {
			t.Fatalf("NormalizeLimit(%d) = %d, want %d", tc.in, got, tc.want)
		}
	}

	if got := LimitWithBuffer(10); got != 11 {
		t.Fatalf("LimitWithBuffer(10) = %d", got)
	}
}

func TestCursorRoundTrip(t *testing.T) {
	original := Cursor{
		CreatedAt: time.Date(2026, 3, 14, 9, 26, 53, 589000000, time.UTC),
		ID:        uuid.New(),
	}

	parsed, err := ParseCursor(EncodeCursor(original))
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if parsed == nil {
		t.Fatal("expected a cursor")
	}
	if !parsed.CreatedAt.Equal(original.CreatedAt) {
		t.Fatalf("timestamp mismatch: %s", parsed.CreatedAt)
	}
	if parsed.ID != original.ID {
		t.Fatalf("id mismatch: %s", parsed.ID)
	}
}

func TestParseCursorEmpty(t *testing.T) {
	cursor, err := ParseCursor("   ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cursor != nil {
		t.Fatal("blank cursor should return nil")
	}
}

func TestParseCursorInvalid(t *testing.T) {
	for _, value := range []string{"not base64!!!", "bm8gcGlwZQ", "aW52YWxpZHxwYXJ0cw=="} {
		if _, err := ParseCursor(value); err == nil {
			t.Fatalf("cursor %q should not parse", value)
		}
	}
}
