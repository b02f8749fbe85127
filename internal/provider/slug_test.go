package provider

import (
	"reflect"
	"testing"
)

func TestSlugify(t *testing.T) {
	tests := []struct {
		title string
		want  string
	}{
		{"The Matrix", "the-matrix"},
		{"Spider-Man: No Way Home", "spider-man-no-way-home"},
		{"  WALL·E  ", "walle"},
		{"8½", "8"},
		{"Amélie", "amlie"},
		{"What's Eating Gilbert Grape?", "whats-eating-gilbert-grape"},
		{"", ""},
		{"!!!", ""},
	}
	for _, tt := range tests {
		if got := Slugify(tt.title); got != tt.want {
			t.Errorf("Slugify(%q) = %q, want %q", tt.title, got, tt.want)
		}
	}
}

func TestSlugAttempts(t *testing.T) {
	got := slugAttempts("The Matrix", "Matrix", "1999", true)
	want := []string{"the-matrix-1999", "matrix-1999", "the-matrix", "matrix"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("slugAttempts = %v, want %v", got, want)
	}
}

func TestSlugAttemptsNoYear(t *testing.T) {
	got := slugAttempts("Dark", "", "2017", false)
	want := []string{"dark"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("slugAttempts = %v, want %v", got, want)
	}
}

func TestSlugAttemptsDedup(t *testing.T) {
	// identical title and alt title collapse to one attempt per form
	got := slugAttempts("Heat", "Heat", "1995", true)
	want := []string{"heat-1995", "heat"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("slugAttempts = %v, want %v", got, want)
	}
}

func TestSlugAttemptsEmpty(t *testing.T) {
	if got := slugAttempts("", "", "2020", true); len(got) != 0 {
		t.Errorf("slugAttempts = %v, want none", got)
	}
}
