package referral

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/rs/zerolog"

	"github.com/carelink/carelink/internal/domain/history"
	"github.com/carelink/carelink/internal/platform/docstore"
	"github.com/carelink/carelink/internal/recon"
)

var (
	ErrNotFound          = errors.New("referral not found")
	ErrInvalidTransition = errors.New("invalid status transition")
)

type Service struct {
	store    docstore.Client
	enricher *recon.Enricher
	history  *history.Service
	log      zerolog.Logger
}

func NewService(store docstore.Client, enricher *recon.Enricher, hist *history.Service, logger zerolog.Logger) *Service {
	return &Service{
		store:    store,
		enricher: enricher,
		history:  hist,
		log:      logger.With().Str("component", "referral").Logger(),
	}
}

// Get assembles the full referral view. The primary read is the only
// fatal failure; every secondary lookup degrades to embedded fields or
// sentinel copy.
func (s *Service) Get(ctx context.Context, id string) (*View, error) {
	primary, err := s.store.GetDocument(ctx, docstore.JoinPath(Collection, id))
	if err != nil {
		return nil, fmt.Errorf("read referral %s: %w", id, err)
	}
	if primary == nil {
		return nil, ErrNotFound
	}

	lookups := s.enricher.Enrich(ctx, primary, []recon.LookupSpec{
		{As: "patient", Field: "patientId", Collection: "users", AltCollection: "patients"},
		{As: "referrer", Field: "referringDoctorId", Collection: "users"},
		{As: "specialist", Field: "specialistId", Collection: "users"},
		{As: "clinic", Field: "clinicId", Collection: "clinics"},
		{As: "schedule", Field: "scheduleId", Collection: "schedules"},
	})

	// The clinic is sometimes reachable only through the specialist's
	// schedule; that chained lookup depends on the schedule result, so it
	// runs sequentially after the parallel pass.
	clinic := lookups["clinic"]
	if clinic == nil {
		clinic = s.enricher.Follow(ctx, lookups["schedule"], "clinicId", "clinics")
	}

	return s.assemble(ctx, id, primary, lookups, clinic)
}

func (s *Service) assemble(ctx context.Context, id string, primary docstore.Document, lookups map[string]docstore.Document, clinic docstore.Document) (*View, error) {
	view := &View{
		ID:     id,
		Status: strings.ToLower(recon.Resolve(primary, []string{"status"}, StatusPending)),
		Reason: recon.Resolve(primary, []string{"reason", "chiefComplaint"}, recon.NotSpecified),
	}

	// Patient: profile lookup first, then the referral's own embedded
	// name fields, then the sentinel.
	view.PatientName = recon.FullName(lookups["patient"], "")
	if view.PatientName == "" {
		view.PatientName = recon.FullName(primary, recon.UnknownPatient)
	}

	referrerFallback := recon.Resolve(primary, []string{"referringDoctorName", "doctorName"}, "")
	view.ReferringDoctor = recon.DoctorName(recon.FullName(lookups["referrer"], referrerFallback))

	specialistFallback := recon.Resolve(primary, []string{"specialistName", "assignedSpecialist"}, "")
	view.Specialist = recon.DoctorName(recon.FullName(lookups["specialist"], specialistFallback))

	clinicFallback := recon.Resolve(primary, []string{"clinicName"}, recon.NotSpecified)
	view.ClinicName = recon.Resolve(clinic, []string{"name"}, clinicFallback)
	view.Location = recon.ClinicAndAddress(clinic, clinicFallback)

	view.Schedule = recon.DateTime(
		recon.Resolve(primary, []string{"date", "appointmentDate"}, ""),
		recon.Resolve(primary, []string{"time", "appointmentTime"}, ""),
	)

	// Clinical sections are valid only once the referral is completed;
	// whatever the backend holds before that is ignored.
	view.Summary = history.EmptySummary()
	view.Prescriptions = []history.PrescriptionView{}
	view.Certificates = []history.CertificateView{}
	if !IsCompleted(view.Status) {
		return view, nil
	}

	patientID := recon.Resolve(primary, []string{"patientId"}, "")
	consultationID := recon.Resolve(primary, []string{"consultationId"}, "")
	appointmentID := recon.Resolve(primary, []string{"appointmentId"}, id)
	entry, err := s.history.FindEntry(ctx, patientID, consultationID, appointmentID)
	if err != nil {
		// Best-effort: a failed history read renders sentinels, not an error.
		s.log.Warn().Err(err).Str("referral", id).Msg("history lookup failed")
		entry = nil
	}

	names := providerNames(lookups)
	entryProvider := recon.Resolve(entry, []string{"doctorName", "providerName"}, "")
	assigned := recon.FullName(lookups["specialist"], specialistFallback)

	view.Summary = history.Summary(entry)
	view.Prescriptions = history.Prescriptions(entry, names, entryProvider, assigned)
	view.Certificates = history.Certificates(entry, names, entryProvider, assigned)
	return view, nil
}

// providerNames builds the id-to-display-name map used when a prescription
// or certificate references its provider only by id.
func providerNames(lookups map[string]docstore.Document) map[string]string {
	names := make(map[string]string)
	for _, key := range []string{"referrer", "specialist"} {
		doc := lookups[key]
		if doc == nil {
			continue
		}
		id := recon.Resolve(doc, []string{"id", "userId"}, "")
		name := recon.FullName(doc, "")
		if id != "" && name != "" {
			names[id] = name
		}
	}
	return names
}

// ListBySpecialist returns the compact referral rows for one receiving
// provider, newest schedule first. Records failing the minimal shape check
// (an id and at least one patient-name source) are filtered out rather
// than rendered with holes.
func (s *Service) ListBySpecialist(ctx context.Context, specialistID string) ([]ListItem, error) {
	docs, err := s.store.GetCollectionByFilter(ctx, Collection, "specialistId", specialistID)
	if err != nil {
		return nil, fmt.Errorf("list referrals: %w", err)
	}

	type row struct {
		item    ListItem
		rawDate string
	}
	rows := make([]row, 0, len(docs))
	for _, doc := range docs {
		id := recon.Resolve(doc, []string{"id"}, "")
		name := recon.FullName(doc, "")
		if id == "" || name == "" {
			s.log.Debug().Str("specialist", specialistID).Msg("dropping malformed referral record")
			continue
		}
		date := recon.Resolve(doc, []string{"date", "appointmentDate"}, "")
		rows = append(rows, row{
			rawDate: date,
			item: ListItem{
				ID:          id,
				Status:      strings.ToLower(recon.Resolve(doc, []string{"status"}, StatusPending)),
				PatientName: name,
				Schedule:    recon.DateTime(date, recon.Resolve(doc, []string{"time", "appointmentTime"}, "")),
				Reason:      recon.Resolve(doc, []string{"reason", "chiefComplaint"}, recon.NotSpecified),
			},
		})
	}

	// ISO dates sort lexicographically; newest first.
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].rawDate > rows[j].rawDate })

	items := make([]ListItem, 0, len(rows))
	for _, r := range rows {
		items = append(items, r.item)
	}
	return items, nil
}

// Transition moves a referral to a new status. The current status is read
// and validated first, and local state is never assumed updated until the
// write succeeds; a failed write surfaces to the caller as retryable.
func (s *Service) Transition(ctx context.Context, id, to string) error {
	primary, err := s.store.GetDocument(ctx, docstore.JoinPath(Collection, id))
	if err != nil {
		return fmt.Errorf("read referral %s: %w", id, err)
	}
	if primary == nil {
		return ErrNotFound
	}

	from := recon.Resolve(primary, []string{"status"}, StatusPending)
	if !CanTransition(from, to) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, strings.ToLower(from), to)
	}

	if err := s.store.UpdateDocument(ctx, docstore.JoinPath(Collection, id), docstore.Document{"status": to}); err != nil {
		return fmt.Errorf("update referral %s: %w", id, err)
	}
	return nil
}

func (s *Service) Accept(ctx context.Context, id string) error {
	return s.Transition(ctx, id, StatusConfirmed)
}

// Decline cancels a referral. A referral still flagged as a draft is
// removed outright instead of being kept around as a cancelled record.
func (s *Service) Decline(ctx context.Context, id string) error {
	primary, err := s.store.GetDocument(ctx, docstore.JoinPath(Collection, id))
	if err != nil {
		return fmt.Errorf("read referral %s: %w", id, err)
	}
	if primary == nil {
		return ErrNotFound
	}

	from := recon.Resolve(primary, []string{"status"}, StatusPending)
	if !CanTransition(from, StatusCancelled) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, strings.ToLower(from), StatusCancelled)
	}

	if draft, _ := recon.ResolveValue(primary, []string{"draft"}, false).(bool); draft {
		if err := s.store.DeleteDocument(ctx, docstore.JoinPath(Collection, id)); err != nil {
			return fmt.Errorf("delete referral draft %s: %w", id, err)
		}
		return nil
	}
	return s.Transition(ctx, id, StatusCancelled)
}

func (s *Service) Complete(ctx context.Context, id string) error {
	return s.Transition(ctx, id, StatusCompleted)
}
