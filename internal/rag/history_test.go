package rag

import (
	"fmt"
	"strings"
	"testing"

	"docqa/internal/models"
)

func TestRecentWindowCapsAtWindowSize(t *testing.T) {
	s := &Session{}
	for i := 1; i <= 50; i++ {
		s.Append(models.RoleUser, fmt.Sprintf("turn %d", i))
	}

	window := s.RecentWindow(20)
	lines := strings.Split(window, "\n")
	if len(lines) != 20 {
		t.Fatalf("got %d lines, want 20", len(lines))
	}
	if lines[0] != "USER: turn 31" {
		t.Errorf("first line = %q, want %q", lines[0], "USER: turn 31")
	}
	if lines[19] != "USER: turn 50" {
		t.Errorf("last line = %q, want %q", lines[19], "USER: turn 50")
	}
	if strings.Contains(window, "turn 30") {
		t.Error("window contains a turn older than the last 20")
	}
}

func TestRecentWindowFormat(t *testing.T) {
	s := &Session{}
	s.Append(models.RoleUser, "What is the invoice total?")
	s.Append(models.RoleAI, "$500.")

	want := "USER: What is the invoice total?\nAI: $500."
	if got := s.RecentWindow(20); got != want {
		t.Errorf("window = %q, want %q", got, want)
	}
}

func TestReplaceSwapsHistoryWholesale(t *testing.T) {
	s := &Session{}
	s.Append(models.RoleUser, "old")

	supplied := []models.Turn{
		{Role: models.RoleUser, Text: "What is the invoice total?"},
		{Role: models.RoleAI, Text: "$500."},
	}
	s.Replace(supplied)

	snap := s.Snapshot()
	if len(snap) != 2 || snap[0].Text != "What is the invoice total?" {
		t.Fatalf("snapshot = %+v", snap)
	}

	// the session must not alias the caller's slice
	supplied[0].Text = "mutated"
	if s.Snapshot()[0].Text == "mutated" {
		t.Error("Replace aliased the supplied history")
	}
}

func TestSnapshotIsACopy(t *testing.T) {
	s := &Session{}
	s.Append(models.RoleUser, "hello")

	snap := s.Snapshot()
	snap[0].Text = "mutated"
	if s.Snapshot()[0].Text != "hello" {
		t.Error("Snapshot returned aliased state")
	}
}

func TestSessionStoreKeysSessions(t *testing.T) {
	st := NewSessionStore()
	a := st.Get("a")
	b := st.Get("b")
	if a == b {
		t.Fatal("distinct session ids share one session")
	}

	a.Append(models.RoleUser, "only in a")
	if len(b.Snapshot()) != 0 {
		t.Error("session b sees session a's turns")
	}

	if st.Get("a") != a {
		t.Error("session id does not map to a stable session")
	}
	if st.Get("") != st.Get("") {
		t.Error("empty id does not map to the default session")
	}
}
