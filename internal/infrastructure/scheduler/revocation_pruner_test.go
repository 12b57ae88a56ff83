package scheduler

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
)

type stubPruner struct {
	removed int64
	err     error
	calls   int
}

func (s *stubPruner) Prune(context.Context) (int64, error) {
	s.calls++
	return s.removed, s.err
}

func TestRevocationPruner_RunOnce(t *testing.T) {
	stub := &stubPruner{removed: 3}
	var reported int64
	p := NewRevocationPruner(stub, "", zerolog.Nop(), func(n int64) { reported += n })

	n, err := p.RunOnce(context.Background())
	if err != nil {
		t.Fatalf("RunOnce returned error: %v", err)
	}
	if n != 3 || reported != 3 {
		t.Fatalf("expected 3 removed and reported, got %d/%d", n, reported)
	}
	if p.schedule != DefaultPruneSchedule {
		t.Fatalf("expected default schedule, got %q", p.schedule)
	}
}

func TestRevocationPruner_RunOnce_Error(t *testing.T) {
	boom := errors.New("boom")
	called := false
	p := NewRevocationPruner(&stubPruner{err: boom}, "", zerolog.Nop(), func(int64) { called = true })

	if _, err := p.RunOnce(context.Background()); !errors.Is(err, boom) {
		t.Fatalf("expected prune error, got %v", err)
	}
	if called {
		t.Fatalf("failed pass must not be reported")
	}
}

func TestRevocationPruner_Start_InvalidSchedule(t *testing.T) {
	p := NewRevocationPruner(&stubPruner{}, "not a schedule", zerolog.Nop(), nil)
	if err := p.Start(context.Background()); err == nil {
		t.Fatalf("expected invalid schedule to be rejected")
	}
}

func TestRevocationPruner_StartStop(t *testing.T) {
	p := NewRevocationPruner(&stubPruner{}, "@every 1h", zerolog.Nop(), nil)
	if err := p.Start(context.Background()); err != nil {
		t.Fatalf("Start returned error: %v", err)
	}
	p.Stop(context.Background())
}
