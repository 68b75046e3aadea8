package store

import (
	"testing"
	"time"

	"github.com/stgabriel/parishhub/internal/model"
)

func TestRequestCreateDefaultsToApproved(t *testing.T) {
	rs := NewRequestStore(setupTestDB(t))

	req, err := rs.Create(CreateRequestParams{
		Type:           model.RequestAnnouncement,
		SubmitterName:  "Maria",
		SubmitterEmail: "maria@example.com",
		Title:          "Lenten Fish Fry",
	})
	if err != nil {
		t.Fatalf("create request: %v", err)
	}
	if req.ApprovalStatus != model.ApprovalApproved {
		t.Errorf("approval_status = %q, want approved", req.ApprovalStatus)
	}
	if req.Completed {
		t.Error("new request should not be completed")
	}
}

func TestRequestListByTypeHideCompleted(t *testing.T) {
	rs := NewRequestStore(setupTestDB(t))

	open, err := rs.Create(CreateRequestParams{
		Type: model.RequestSMS, SubmitterName: "A", SubmitterEmail: "a@x.org", Title: "Open",
	})
	if err != nil {
		t.Fatalf("create request: %v", err)
	}
	done, err := rs.Create(CreateRequestParams{
		Type: model.RequestSMS, SubmitterName: "B", SubmitterEmail: "b@x.org", Title: "Done",
	})
	if err != nil {
		t.Fatalf("create request: %v", err)
	}
	if err := rs.SetCompleted(done.ID, true, time.Now()); err != nil {
		t.Fatalf("complete request: %v", err)
	}
	if _, err := rs.Create(CreateRequestParams{
		Type: model.RequestAV, SubmitterName: "C", SubmitterEmail: "c@x.org", Title: "Other type",
	}); err != nil {
		t.Fatalf("create request: %v", err)
	}

	all, err := rs.ListByType(model.RequestSMS, false)
	if err != nil {
		t.Fatalf("list requests: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("got %d sms requests, want 2", len(all))
	}

	visible, err := rs.ListByType(model.RequestSMS, true)
	if err != nil {
		t.Fatalf("list requests: %v", err)
	}
	if len(visible) != 1 || visible[0].ID != open.ID {
		t.Fatalf("hide_completed returned %d requests", len(visible))
	}
}

func TestRequestSetCompletedIdempotent(t *testing.T) {
	rs := NewRequestStore(setupTestDB(t))

	req, err := rs.Create(CreateRequestParams{
		Type: model.RequestWebsiteUpdate, SubmitterName: "A", SubmitterEmail: "a@x.org", Title: "T",
	})
	if err != nil {
		t.Fatalf("create request: %v", err)
	}

	at := time.Now()
	if err := rs.SetCompleted(req.ID, true, at); err != nil {
		t.Fatalf("complete: %v", err)
	}
	if err := rs.SetCompleted(req.ID, true, at.Add(time.Hour)); err != nil {
		t.Fatalf("repeat complete: %v", err)
	}

	got, err := rs.GetByID(req.ID)
	if err != nil {
		t.Fatalf("get request: %v", err)
	}
	if !got.Completed || got.CompletedAt == nil {
		t.Fatal("expected completed with completed_at set")
	}

	if err := rs.SetCompleted(req.ID, false, at.Add(2*time.Hour)); err != nil {
		t.Fatalf("uncomplete: %v", err)
	}
	got, err = rs.GetByID(req.ID)
	if err != nil {
		t.Fatalf("get request: %v", err)
	}
	if got.Completed || got.CompletedAt != nil {
		t.Fatal("expected completed flag and timestamp cleared")
	}
}

func TestRequestSetApprovalStatus(t *testing.T) {
	rs := NewRequestStore(setupTestDB(t))

	req, err := rs.Create(CreateRequestParams{
		Type: model.RequestAnnouncement, SubmitterName: "A", SubmitterEmail: "a@x.org",
		Title: "T", ApprovalStatus: model.ApprovalPending,
	})
	if err != nil {
		t.Fatalf("create request: %v", err)
	}

	if err := rs.SetApprovalStatus(req.ID, model.ApprovalRejected); err != nil {
		t.Fatalf("set approval: %v", err)
	}
	got, err := rs.GetByID(req.ID)
	if err != nil {
		t.Fatalf("get request: %v", err)
	}
	if got.ApprovalStatus != model.ApprovalRejected {
		t.Errorf("approval_status = %q, want rejected", got.ApprovalStatus)
	}
}

func TestRegistryScopesByType(t *testing.T) {
	rs := NewRequestStore(setupTestDB(t))
	registry := NewRegistry(rs)

	req, err := rs.Create(CreateRequestParams{
		Type: model.RequestFlyerReview, SubmitterName: "A", SubmitterEmail: "a@x.org", Title: "Flyer",
	})
	if err != nil {
		t.Fatalf("create request: %v", err)
	}

	got, err := registry.Lookup(model.RequestFlyerReview).GetByID(req.ID)
	if err != nil {
		t.Fatalf("get via registry: %v", err)
	}
	if got == nil || got.ID != req.ID {
		t.Fatal("expected request through its own type's accessor")
	}

	// The same id through another type's accessor is absent.
	other, err := registry.Lookup(model.RequestSMS).GetByID(req.ID)
	if err != nil {
		t.Fatalf("cross-type get: %v", err)
	}
	if other != nil {
		t.Error("expected nil when reading a record through another type's accessor")
	}

	if registry.Lookup("bogus") != nil {
		t.Error("expected nil accessor for unknown type")
	}
}

func TestRegistryMarkCompleted(t *testing.T) {
	rs := NewRequestStore(setupTestDB(t))
	registry := NewRegistry(rs)

	req, err := rs.Create(CreateRequestParams{
		Type: model.RequestGraphicDesign, SubmitterName: "A", SubmitterEmail: "a@x.org", Title: "Logo",
	})
	if err != nil {
		t.Fatalf("create request: %v", err)
	}

	accessor := registry.Lookup(model.RequestGraphicDesign)
	if err := accessor.MarkCompleted(req.ID, true, time.Now()); err != nil {
		t.Fatalf("mark completed: %v", err)
	}

	got, err := accessor.GetByID(req.ID)
	if err != nil {
		t.Fatalf("get request: %v", err)
	}
	if !got.Completed {
		t.Error("expected completed flag set through accessor")
	}
}
