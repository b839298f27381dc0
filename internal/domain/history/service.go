package history

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/carelink/carelink/internal/platform/docstore"
	"github.com/carelink/carelink/internal/recon"
)

type Service struct {
	store docstore.Client
	log   zerolog.Logger
}

func NewService(store docstore.Client, logger zerolog.Logger) *Service {
	return &Service{store: store, log: logger.With().Str("component", "history").Logger()}
}

// FindEntry locates the history entry for one encounter. The entry linked
// to the consultation id is authoritative; lookup by appointment id is
// attempted only when no consultation-linked entry exists. A nil entry
// (with nil error) means no history was recorded.
func (s *Service) FindEntry(ctx context.Context, patientID, consultationID, appointmentID string) (docstore.Document, error) {
	if consultationID != "" {
		entries, err := s.store.GetCollectionByFilter(ctx, Collection, "consultationId", consultationID)
		if err != nil {
			return nil, fmt.Errorf("find history by consultation: %w", err)
		}
		if entry := matchPatient(entries, patientID); entry != nil {
			return entry, nil
		}
	}
	if appointmentID != "" {
		entries, err := s.store.GetCollectionByFilter(ctx, Collection, "appointmentId", appointmentID)
		if err != nil {
			return nil, fmt.Errorf("find history by appointment: %w", err)
		}
		if entry := matchPatient(entries, patientID); entry != nil {
			return entry, nil
		}
	}
	return nil, nil
}

// matchPatient returns the first entry belonging to the patient, or the
// first entry at all when no patient id was supplied to narrow by.
func matchPatient(entries []docstore.Document, patientID string) docstore.Document {
	for _, entry := range entries {
		if patientID == "" || recon.Resolve(entry, []string{"patientId", "patient_id"}, "") == patientID {
			return entry
		}
	}
	return nil
}

// Summary shapes the structured clinical fields of an entry, substituting
// sentinel copy for anything absent. A nil entry yields the all-sentinel
// summary.
func Summary(entry docstore.Document) ClinicalSummary {
	out := EmptySummary()
	if entry == nil {
		return out
	}
	out.Subjective = recon.Resolve(entry, []string{"subjective", "soap.subjective"}, NoNotes)
	out.Objective = recon.Resolve(entry, []string{"objective", "soap.objective"}, NoNotes)
	out.Assessment = recon.Resolve(entry, []string{"assessment", "soap.assessment"}, NoNotes)
	out.Plan = recon.Resolve(entry, []string{"plan", "soap.plan"}, NoNotes)
	out.Diagnosis = joinOrResolve(entry, "diagnosis", NoDiagnosis)
	out.Differential = joinOrResolve(entry, "differentialDiagnosis", NoDifferential)
	out.TreatmentPlan = recon.Resolve(entry, []string{"treatmentPlan", "treatment_plan"}, NoTreatmentPlan)
	return out
}

// joinOrResolve handles fields that are sometimes a free-text string and
// sometimes an array of strings.
func joinOrResolve(entry docstore.Document, key, fallback string) string {
	if items, ok := recon.ResolveValue(entry, []string{key}, nil).([]interface{}); ok {
		var parts []string
		for _, item := range items {
			if s, ok := item.(string); ok && strings.TrimSpace(s) != "" {
				parts = append(parts, strings.TrimSpace(s))
			}
		}
		if len(parts) > 0 {
			return strings.Join(parts, "; ")
		}
		return fallback
	}
	return recon.Resolve(entry, []string{key}, fallback)
}

// ProviderName resolves the display name for the provider attached to a
// prescription or certificate item, falling back through: an explicit field
// on the item, the id-to-name map built from enrichment, the entry's
// overall provider name, the assigned specialist, and finally the unknown
// sentinel. The result always carries a single "Dr. " prefix.
func ProviderName(item docstore.Document, names map[string]string, entryProvider, assignedSpecialist string) string {
	name := recon.Resolve(item, []string{"prescribedBy", "issuedBy", "doctorName"}, "")
	if name == "" {
		id := recon.Resolve(item, []string{"doctorId", "prescribedById", "issuedById"}, "")
		if id != "" {
			name = names[id]
		}
	}
	if name == "" {
		name = strings.TrimSpace(entryProvider)
	}
	if name == "" {
		name = strings.TrimSpace(assignedSpecialist)
	}
	return recon.DoctorName(name)
}

// Prescriptions shapes the embedded prescriptions array of an entry.
func Prescriptions(entry docstore.Document, names map[string]string, entryProvider, assignedSpecialist string) []PrescriptionView {
	items := embeddedItems(entry, "prescriptions")
	views := make([]PrescriptionView, 0, len(items))
	for _, item := range items {
		views = append(views, PrescriptionView{
			Medication:   recon.Resolve(item, []string{"medication", "medicationName", "name"}, "Unspecified medication"),
			Dosage:       recon.Resolve(item, []string{"dosage", "dose"}, recon.NotSpecified),
			Instructions: recon.Resolve(item, []string{"instructions", "directions"}, recon.NotSpecified),
			PrescribedBy: ProviderName(item, names, entryProvider, assignedSpecialist),
			Date:         recon.DateTime(recon.Resolve(item, []string{"date", "prescribedAt"}, ""), ""),
		})
	}
	return views
}

// Certificates shapes the embedded certificates array of an entry.
func Certificates(entry docstore.Document, names map[string]string, entryProvider, assignedSpecialist string) []CertificateView {
	items := embeddedItems(entry, "certificates")
	views := make([]CertificateView, 0, len(items))
	for _, item := range items {
		views = append(views, CertificateView{
			Kind:        recon.Resolve(item, []string{"type", "kind"}, "Medical certificate"),
			Description: recon.Resolve(item, []string{"description", "remarks"}, recon.NotSpecified),
			IssuedBy:    ProviderName(item, names, entryProvider, assignedSpecialist),
			Date:        recon.DateTime(recon.Resolve(item, []string{"date", "issuedAt"}, ""), ""),
		})
	}
	return views
}

func embeddedItems(entry docstore.Document, key string) []docstore.Document {
	raw, ok := recon.ResolveValue(entry, []string{key}, nil).([]interface{})
	if !ok {
		return nil
	}
	var items []docstore.Document
	for _, r := range raw {
		if m, ok := r.(map[string]interface{}); ok {
			items = append(items, m)
		}
	}
	return items
}
