package domain

import (
	"errors"
	"testing"
)

func TestParseRole(t *testing.T) {
	for _, in := range []string{"admin", "student"} {
		r, err := ParseRole(in)
		if err != nil {
			t.Fatalf("ParseRole(%q): %v", in, err)
		}
		if string(r) != in {
			t.Fatalf("ParseRole(%q) = %q", in, r)
		}
	}
	for _, in := range []string{"", "Admin", "viewer"} {
		if _, err := ParseRole(in); !errors.Is(err, ErrInvalidRole) {
			t.Fatalf("ParseRole(%q) err = %v, want ErrInvalidRole", in, err)
		}
	}
}

func TestRoleReadyEvent(t *testing.T) {
	if got := RoleStudent.ReadyEvent(); got != "student-ready" {
		t.Fatalf("student ready event = %q", got)
	}
	if got := RoleAdmin.ReadyEvent(); got != "admin-ready" {
		t.Fatalf("admin ready event = %q", got)
	}
}

func TestNewSession(t *testing.T) {
	if _, err := NewSession("", "https://x.test/session/"); !errors.Is(err, ErrEmptyIdentifier) {
		t.Fatalf("empty id err = %v", err)
	}
	s, err := NewSession("abcd1234", "https://x.test/session/abcd1234")
	if err != nil {
		t.Fatal(err)
	}
	if s.Kind != KindAdmin {
		t.Fatalf("kind = %q, want admin", s.Kind)
	}
}
