// AngelaMos | 2026
// service_test.go

package entitlement

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/angelamos/scoreshop/internal/metrics"
)

// ---------------------------------------------------------------------------
// Stub repository
// ---------------------------------------------------------------------------

type stubRepository struct {
	ent     *Entitlement
	created bool
	owns    bool
	library []WithBundle
	err     error
}

func (s *stubRepository) Create(
	_ context.Context,
	_, _ string,
) (*Entitlement, bool, error) {
	return s.ent, s.created, s.err
}

func (s *stubRepository) Owns(_ context.Context, _, _ string) (bool, error) {
	return s.owns, s.err
}

func (s *stubRepository) ListForUser(
	_ context.Context,
	_ string,
) ([]WithBundle, error) {
	return s.library, s.err
}

// ---------------------------------------------------------------------------
// Tests
// ---------------------------------------------------------------------------

func TestGrantCreated(t *testing.T) {
	ent := &Entitlement{
		ID: "ent-1", UserID: "user-1", BundleID: "bundle-1",
		PurchasedAt: time.Now(),
	}
	svc := NewService(&stubRepository{ent: ent, created: true})

	createdCounter := metrics.EntitlementsGrantedTotal.WithLabelValues("created")
	before := testutil.ToFloat64(createdCounter)

	got, err := svc.Grant(context.Background(), "user-1", "bundle-1")
	if err != nil {
		t.Fatalf("Grant: %v", err)
	}
	if got.ID != "ent-1" {
		t.Errorf("id = %q, want ent-1", got.ID)
	}
	if delta := testutil.ToFloat64(createdCounter) - before; delta != 1 {
		t.Errorf("created counter delta = %v, want 1", delta)
	}
}

func TestGrantReplayed(t *testing.T) {
	ent := &Entitlement{ID: "ent-1", UserID: "user-1", BundleID: "bundle-1"}
	svc := NewService(&stubRepository{ent: ent, created: false})

	replayedCounter := metrics.EntitlementsGrantedTotal.WithLabelValues("replayed")
	before := testutil.ToFloat64(replayedCounter)

	got, err := svc.Grant(context.Background(), "user-1", "bundle-1")
	if err != nil {
		t.Fatalf("Grant: %v", err)
	}
	if got.ID != "ent-1" {
		t.Errorf("id = %q, want ent-1", got.ID)
	}
	if delta := testutil.ToFloat64(replayedCounter) - before; delta != 1 {
		t.Errorf("replayed counter delta = %v, want 1", delta)
	}
}

func TestGrantRepositoryFailure(t *testing.T) {
	svc := NewService(&stubRepository{err: errors.New("connection refused")})

	if _, err := svc.Grant(
		context.Background(), "user-1", "bundle-1",
	); err == nil {
		t.Fatal("expected repository error to propagate")
	}
}

func TestOwnsBundleDelegates(t *testing.T) {
	svc := NewService(&stubRepository{owns: true})

	owns, err := svc.OwnsBundle(context.Background(), "user-1", "bundle-1")
	if err != nil {
		t.Fatalf("OwnsBundle: %v", err)
	}
	if !owns {
		t.Error("expected ownership to be reported")
	}
}

func TestListForUserDelegates(t *testing.T) {
	library := []WithBundle{
		{Entitlement: Entitlement{ID: "ent-1"}},
	}
	svc := NewService(&stubRepository{library: library})

	got, err := svc.ListForUser(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("ListForUser: %v", err)
	}
	if len(got) != 1 || got[0].ID != "ent-1" {
		t.Errorf("unexpected library: %+v", got)
	}
}
