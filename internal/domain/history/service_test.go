package history

import (
	"context"
	"testing"

	"github.com/rs/zerolog"

	"github.com/carelink/carelink/internal/platform/docstore"
)

func seedEntry(t *testing.T, store *docstore.Memory, id string, doc docstore.Document) {
	t.Helper()
	if err := store.SetDocument(context.Background(), Collection+"/"+id, doc); err != nil {
		t.Fatal(err)
	}
}

func TestFindEntryPrefersConsultationLink(t *testing.T) {
	ctx := context.Background()
	store := docstore.NewMemory()
	seedEntry(t, store, "e1", docstore.Document{
		"patientId": "p1", "consultationId": "c1", "diagnosis": "by consultation",
	})
	seedEntry(t, store, "e2", docstore.Document{
		"patientId": "p1", "appointmentId": "a1", "diagnosis": "by appointment",
	})

	svc := NewService(store, zerolog.Nop())
	entry, err := svc.FindEntry(ctx, "p1", "c1", "a1")
	if err != nil {
		t.Fatal(err)
	}
	if entry == nil || entry["diagnosis"] != "by consultation" {
		t.Fatalf("entry = %v, want consultation-linked", entry)
	}
}

func TestFindEntryFallsBackToAppointment(t *testing.T) {
	ctx := context.Background()
	store := docstore.NewMemory()
	seedEntry(t, store, "e2", docstore.Document{
		"patientId": "p1", "appointmentId": "a1", "diagnosis": "by appointment",
	})

	svc := NewService(store, zerolog.Nop())
	entry, err := svc.FindEntry(ctx, "p1", "c-missing", "a1")
	if err != nil {
		t.Fatal(err)
	}
	if entry == nil || entry["diagnosis"] != "by appointment" {
		t.Fatalf("entry = %v, want appointment fallback", entry)
	}
}

func TestFindEntryFiltersOtherPatients(t *testing.T) {
	ctx := context.Background()
	store := docstore.NewMemory()
	seedEntry(t, store, "e1", docstore.Document{"patientId": "other", "consultationId": "c1"})

	svc := NewService(store, zerolog.Nop())
	entry, err := svc.FindEntry(ctx, "p1", "c1", "")
	if err != nil {
		t.Fatal(err)
	}
	if entry != nil {
		t.Fatalf("entry = %v, want nil for other patient", entry)
	}
}

func TestSummarySentinelsForNilEntry(t *testing.T) {
	summary := Summary(nil)
	if summary.Diagnosis != NoDiagnosis {
		t.Errorf("Diagnosis = %q", summary.Diagnosis)
	}
	if summary.TreatmentPlan != NoTreatmentPlan {
		t.Errorf("TreatmentPlan = %q", summary.TreatmentPlan)
	}
	if summary.Subjective == "" {
		t.Error("sentinel fields must never be empty")
	}
}

func TestSummaryResolvesNestedSOAPAndDiagnosisArray(t *testing.T) {
	entry := docstore.Document{
		"soap":      map[string]interface{}{"subjective": "headache"},
		"diagnosis": []interface{}{"migraine", " tension "},
	}
	summary := Summary(entry)
	if summary.Subjective != "headache" {
		t.Errorf("Subjective = %q", summary.Subjective)
	}
	if summary.Diagnosis != "migraine; tension" {
		t.Errorf("Diagnosis = %q", summary.Diagnosis)
	}
}

func TestProviderNameFallbackChain(t *testing.T) {
	names := map[string]string{"d1": "Reyes"}
	tests := []struct {
		name string
		item docstore.Document
		want string
	}{
		{"explicit field", docstore.Document{"prescribedBy": "Dr. Cruz"}, "Dr. Cruz"},
		{"id map entry", docstore.Document{"doctorId": "d1"}, "Dr. Reyes"},
		{"entry provider", docstore.Document{}, "Dr. Santos"},
		{"unmapped id falls through", docstore.Document{"doctorId": "d9"}, "Dr. Santos"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ProviderName(tt.item, names, "Santos", "Lim"); got != tt.want {
				t.Errorf("ProviderName = %q, want %q", got, tt.want)
			}
		})
	}

	if got := ProviderName(docstore.Document{}, nil, "", "Lim"); got != "Dr. Lim" {
		t.Errorf("assigned specialist fallback = %q", got)
	}
	if got := ProviderName(docstore.Document{}, nil, "", ""); got != "Unknown Doctor" {
		t.Errorf("unknown sentinel = %q", got)
	}
}

func TestPrescriptionsShapeEmbeddedItems(t *testing.T) {
	entry := docstore.Document{
		"prescriptions": []interface{}{
			map[string]interface{}{"medication": "Amoxicillin", "dosage": "500mg", "prescribedBy": "Reyes"},
			map[string]interface{}{"name": "Ibuprofen"},
		},
	}
	views := Prescriptions(entry, nil, "Santos", "")
	if len(views) != 2 {
		t.Fatalf("got %d prescriptions, want 2", len(views))
	}
	if views[0].PrescribedBy != "Dr. Reyes" {
		t.Errorf("PrescribedBy = %q", views[0].PrescribedBy)
	}
	if views[1].Medication != "Ibuprofen" || views[1].PrescribedBy != "Dr. Santos" {
		t.Errorf("second view = %+v", views[1])
	}
	if views[1].Dosage != "Not specified" {
		t.Errorf("Dosage sentinel = %q", views[1].Dosage)
	}
}

func TestCertificatesShapeEmbeddedItems(t *testing.T) {
	entry := docstore.Document{
		"certificates": []interface{}{
			map[string]interface{}{"type": "Fit to work", "issuedBy": "Dr. Cruz", "date": "2026-02-01"},
		},
	}
	views := Certificates(entry, nil, "", "")
	if len(views) != 1 {
		t.Fatalf("got %d certificates, want 1", len(views))
	}
	if views[0].Kind != "Fit to work" || views[0].IssuedBy != "Dr. Cruz" {
		t.Errorf("view = %+v", views[0])
	}
	if views[0].Date != "February 1, 2026" {
		t.Errorf("Date = %q", views[0].Date)
	}
}
