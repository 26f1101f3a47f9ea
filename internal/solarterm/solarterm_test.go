package solarterm

import (
	"testing"
	"time"
)

func TestForYear_Count(t *testing.T) {
	terms := ForYear(2025)
	if len(terms) != 24 {
		t.Fatalf("ForYear(2025) returned %d terms, want 24", len(terms))
	}
}

func TestForYear_Chronological(t *testing.T) {
	for _, year := range []int{1950, 2000, 2025, 2080} {
		terms := ForYear(year)
		for i := 1; i < len(terms); i++ {
			if !terms[i-1].Date.Before(terms[i].Date) {
				t.Errorf("year %d: %s (%v) not before %s (%v)",
					year, terms[i-1].Name, terms[i-1].Date, terms[i].Name, terms[i].Date)
			}
		}
	}
}

func TestForYear_2025(t *testing.T) {
	tests := []struct {
		name  string
		month time.Month
		day   int
	}{
		{"小寒", time.January, 5},
		{"大寒", time.January, 20},
		{"立春", time.February, 3},
		{"春分", time.March, 20},
		{"清明", time.April, 4},
		{"冬至", time.December, 21},
	}

	terms := ForYear(2025)
	byName := make(map[string]Term, len(terms))
	for _, term := range terms {
		byName[term.Name] = term
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			term, ok := byName[tt.name]
			if !ok {
				t.Fatalf("term %s missing", tt.name)
			}
			if term.Date.Month() != tt.month || term.Date.Day() != tt.day {
				t.Errorf("%s 2025 = %v, want %v %d", tt.name, term.Date, tt.month, tt.day)
			}
		})
	}
}

func TestForYear_Pure(t *testing.T) {
	first := ForYear(2025)
	second := ForYear(2025)
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("ForYear not deterministic at index %d: %+v vs %+v", i, first[i], second[i])
		}
	}
}

func TestOn(t *testing.T) {
	term, ok := On(time.Date(2025, time.April, 4, 0, 0, 0, 0, time.UTC))
	if !ok || term.Name != "清明" {
		t.Errorf("On(2025-04-04) = %+v, %v; want 清明", term, ok)
	}

	if _, ok := On(time.Date(2025, time.April, 10, 0, 0, 0, 0, time.UTC)); ok {
		t.Error("On(2025-04-10) matched a term, want none")
	}
}
