package visit

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/carelink/carelink/internal/platform/docstore"
	"github.com/carelink/carelink/internal/recon"
)

func newTestService(store *docstore.Memory) *Service {
	svc := NewService(store, recon.NewEnricher(store, zerolog.Nop(), 2*time.Second), zerolog.Nop())
	svc.now = func() time.Time { return time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC) }
	return svc
}

func seed(t *testing.T, store *docstore.Memory, path string, doc docstore.Document) {
	t.Helper()
	if err := store.SetDocument(context.Background(), path, doc); err != nil {
		t.Fatal(err)
	}
}

func TestGetAssemblesVisitView(t *testing.T) {
	ctx := context.Background()
	store := docstore.NewMemory()
	seed(t, store, "users/d1", docstore.Document{"firstName": "Ana", "lastName": "Reyes"})
	seed(t, store, "clinics/c1", docstore.Document{"name": "City Clinic", "address": "123 Main St"})
	seed(t, store, "appointments/a1", docstore.Document{
		"id": "a1", "status": "confirmed", "doctorId": "d1", "clinicId": "c1",
		"date": "2026-03-15", "time": "14:30", "reason": "follow-up",
	})

	view, err := newTestService(store).Get(ctx, "a1")
	if err != nil {
		t.Fatal(err)
	}
	if view.DoctorName != "Dr. Ana Reyes" {
		t.Errorf("DoctorName = %q", view.DoctorName)
	}
	if view.Location != "City Clinic, 123 Main St" {
		t.Errorf("Location = %q", view.Location)
	}
	if view.When != "March 15, 2026 at 2:30 PM" {
		t.Errorf("When = %q", view.When)
	}
}

func TestGetDegradesWhenLookupsFail(t *testing.T) {
	ctx := context.Background()
	store := docstore.NewMemory()
	seed(t, store, "appointments/a1", docstore.Document{
		"id": "a1", "status": "pending", "doctorId": "gone", "clinicId": "gone",
		"doctorName": "Reyes", "clinicName": "City Clinic", "date": "2026-03-15",
	})

	view, err := newTestService(store).Get(ctx, "a1")
	if err != nil {
		t.Fatal(err)
	}
	if view.DoctorName != "Dr. Reyes" {
		t.Errorf("DoctorName = %q, want embedded fallback", view.DoctorName)
	}
	if view.ClinicName != "City Clinic" {
		t.Errorf("ClinicName = %q", view.ClinicName)
	}
}

func TestListForPatientSplitsAndFilters(t *testing.T) {
	ctx := context.Background()
	store := docstore.NewMemory()
	seed(t, store, "appointments/a1", docstore.Document{
		"id": "a1", "patientId": "p1", "date": "2026-03-01", "status": "completed",
	})
	seed(t, store, "appointments/a2", docstore.Document{
		"id": "a2", "patientId": "p1", "date": "2026-03-20", "status": "confirmed",
	})
	seed(t, store, "appointments/a3", docstore.Document{
		"id": "a3", "patientId": "p1", "date": "2026-03-10", "status": "pending", // today
	})
	// Malformed: no date.
	seed(t, store, "appointments/a4", docstore.Document{"id": "a4", "patientId": "p1"})
	// Malformed: no id.
	seed(t, store, "appointments/a5", docstore.Document{"patientId": "p1", "date": "2026-03-21"})

	upcoming, past, err := newTestService(store).ListForPatient(ctx, "p1")
	if err != nil {
		t.Fatal(err)
	}
	if len(upcoming) != 2 {
		t.Fatalf("upcoming = %d, want 2 (today counts as upcoming)", len(upcoming))
	}
	if upcoming[0].ID != "a3" || upcoming[1].ID != "a2" {
		t.Errorf("upcoming order = %s, %s", upcoming[0].ID, upcoming[1].ID)
	}
	if len(past) != 1 || past[0].ID != "a1" {
		t.Fatalf("past = %v", past)
	}
}

func TestCancelOnlyFromPendingOrConfirmed(t *testing.T) {
	ctx := context.Background()
	store := docstore.NewMemory()
	svc := newTestService(store)

	seed(t, store, "appointments/a1", docstore.Document{"id": "a1", "status": "confirmed"})
	if err := svc.Cancel(ctx, "a1"); err != nil {
		t.Fatalf("cancel confirmed: %v", err)
	}
	doc, _ := store.GetDocument(ctx, "appointments/a1")
	if doc["status"] != "cancelled" {
		t.Fatalf("status = %v", doc["status"])
	}

	seed(t, store, "appointments/a2", docstore.Document{"id": "a2", "status": "completed"})
	if err := svc.Cancel(ctx, "a2"); err == nil {
		t.Fatal("expected error cancelling a completed visit")
	}
	doc, _ = store.GetDocument(ctx, "appointments/a2")
	if doc["status"] != "completed" {
		t.Fatal("completed visit must not be mutated on refused cancel")
	}
}

func TestCancelNotFound(t *testing.T) {
	if err := newTestService(docstore.NewMemory()).Cancel(context.Background(), "nope"); err != ErrNotFound {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}
