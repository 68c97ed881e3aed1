package services

import (
	"strings"
	"testing"
)

func TestRoundToWholeKroner(t *testing.T) {
	cases := []struct {
		in, want int64
	}{
		{0, 0},
		{10000, 10000},
		{10001, 10100},
		{10099, 10100},
		{99, 100},
	}
	for _, tc := range cases {
		if got := roundToWholeKroner(tc.in); got != tc.want {
			t.Fatalf("roundToWholeKroner(%d) = %d, want %d", tc.in, got, tc.want)
		}
	}
}

func TestFormatWholeDKK(t *testing.T) {
	if got := formatWholeDKK(250000); got != "2500" {
		t.Fatalf("formatWholeDKK(250000) = %q, want %q", got, "2500")
	}
}

func TestConditionDanish(t *testing.T) {
	cases := []struct {
		code, want string
	}{
		{"NM", "Near Mint"},
		{"nm", "Near Mint"},
		{"LP", "Let brugt"},
		{"MP", "Brugt"},
		{"HP", "Slidt"},
		{"DMG", "Slidt"},
		{"custom", "custom"},
	}
	for _, tc := range cases {
		if got := conditionDanish(tc.code); got != tc.want {
			t.Fatalf("conditionDanish(%q) = %q, want %q", tc.code, got, tc.want)
		}
	}
}

func TestJoinNonEmpty(t *testing.T) {
	got := joinNonEmpty(" ", "Pokemon", "", "Charizard", "  ", "PSA 10")
	want := "Pokemon Charizard PSA 10"
	if got != want {
		t.Fatalf("joinNonEmpty = %q, want %q", got, want)
	}
}

func TestFormatDKK(t *testing.T) {
	cases := []struct {
		in   int64
		want string
	}{
		{250000, "2500.00"},
		{250050, "2500.50"},
		{99, "0.99"},
	}
	for _, tc := range cases {
		if got := formatDKK(tc.in); got != tc.want {
			t.Fatalf("formatDKK(%d) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestOrText(t *testing.T) {
	if got := orText("", "ukendt set"); got != "ukendt set" {
		t.Fatalf("orText fallback = %q", got)
	}
	if got := orText("Base Set", "ukendt set"); got != "Base Set" {
		t.Fatalf("orText value = %q", got)
	}
}

func TestListingTitleShape(t *testing.T) {
	title := joinNonEmpty(" ", "Pokemon", "Charizard", "Base Set", "4/102", "PSA 10")
	if !strings.HasPrefix(title, "Pokemon ") {
		t.Fatalf("listing titles must lead with the franchise, got %q", title)
	}
	if !strings.Contains(title, "PSA 10") {
		t.Fatalf("graded titles must carry the grade, got %q", title)
	}
}
