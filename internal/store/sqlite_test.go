package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"robora/internal/question"
)

func testAnswer(domain, country string) *question.Answer {
	return &question.Answer{
		Question: question.Question{
			Template: "Who governs {domain} in {country}?",
			Bindings: map[string]string{"domain": domain, "country": country},
			Schema:   "organization",
		},
		Payload:     []byte(`{"organization_name":"Ministry of ` + domain + `","confidence":"HIGH"}`),
		Citations:   []string{"https://example.gov/" + country},
		RetrievedAt: time.Now().UTC(),
	}
}

func newTestStore(t *testing.T) *SQLite {
	t.Helper()
	s, err := NewSQLite(filepath.Join(t.TempDir(), "answers.db"))
	if err != nil {
		t.Fatalf("NewSQLite failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestPutExistsAll(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	ans := testAnswer("HEALTH", "ALBANIA")
	fp := ans.Question.Fingerprint()

	exists, err := s.Exists(ctx, fp)
	if err != nil {
		t.Fatalf("Exists failed: %v", err)
	}
	if exists {
		t.Error("fingerprint should not exist before Put")
	}

	if err := s.Put(ctx, ans); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	exists, err = s.Exists(ctx, fp)
	if err != nil {
		t.Fatalf("Exists failed: %v", err)
	}
	if !exists {
		t.Error("fingerprint should exist after Put")
	}

	all, err := s.All(ctx)
	if err != nil {
		t.Fatalf("All failed: %v", err)
	}
	if len(all) != 1 {
		t.Fatalf("expected 1 answer, got %d", len(all))
	}
	got := all[0]
	if got.Question.Fingerprint() != fp {
		t.Error("round-tripped question has a different fingerprint")
	}
	if string(got.Payload) != string(ans.Payload) {
		t.Errorf("payload mismatch: %s", got.Payload)
	}
	if len(got.Citations) != 1 || got.Citations[0] != ans.Citations[0] {
		t.Errorf("citations mismatch: %v", got.Citations)
	}
	if got.RetrievedAt.IsZero() {
		t.Error("retrieved_at not preserved")
	}
}

func TestPutIdenticalPayloadIsNoop(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	ans := testAnswer("HEALTH", "ALBANIA")
	if err := s.Put(ctx, ans); err != nil {
		t.Fatalf("first Put failed: %v", err)
	}
	if err := s.Put(ctx, ans); err != nil {
		t.Fatalf("idempotent Put failed: %v", err)
	}

	n, err := s.Count(ctx)
	if err != nil {
		t.Fatalf("Count failed: %v", err)
	}
	if n != 1 {
		t.Errorf("expected 1 row after duplicate Put, got %d", n)
	}
}

func TestPutConflictingPayloadRejected(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	ans := testAnswer("HEALTH", "ALBANIA")
	if err := s.Put(ctx, ans); err != nil {
		t.Fatalf("first Put failed: %v", err)
	}

	changed := *ans
	changed.Payload = []byte(`{"organization_name":"Something Else","confidence":"LOW"}`)
	err := s.Put(ctx, &changed)
	if !errors.Is(err, ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}

	// The original payload survives.
	all, err := s.All(ctx)
	if err != nil {
		t.Fatalf("All failed: %v", err)
	}
	if string(all[0].Payload) != string(ans.Payload) {
		t.Error("conflicting Put must not overwrite")
	}
}

func TestAllIsRestartable(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	for _, country := range []string{"ALBANIA", "FRANCE", "GHANA"} {
		if err := s.Put(ctx, testAnswer("HEALTH", country)); err != nil {
			t.Fatalf("Put failed: %v", err)
		}
	}

	first, err := s.All(ctx)
	if err != nil {
		t.Fatalf("first All failed: %v", err)
	}
	second, err := s.All(ctx)
	if err != nil {
		t.Fatalf("second All failed: %v", err)
	}
	if len(first) != 3 || len(second) != 3 {
		t.Errorf("expected 3 answers from each call, got %d and %d", len(first), len(second))
	}
}

func TestNamespacesAreIsolated(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	a, err := NewSQLite(filepath.Join(dir, "health", "organization.db"))
	if err != nil {
		t.Fatalf("open namespace a: %v", err)
	}
	defer a.Close()
	b, err := NewSQLite(filepath.Join(dir, "justice", "organization.db"))
	if err != nil {
		t.Fatalf("open namespace b: %v", err)
	}
	defer b.Close()

	ans := testAnswer("HEALTH", "ALBANIA")
	if err := a.Put(ctx, ans); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	exists, err := b.Exists(ctx, ans.Question.Fingerprint())
	if err != nil {
		t.Fatalf("Exists failed: %v", err)
	}
	if exists {
		t.Error("write to one namespace leaked into another")
	}
}
