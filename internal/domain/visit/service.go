package visit

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/carelink/carelink/internal/domain/referral"
	"github.com/carelink/carelink/internal/platform/docstore"
	"github.com/carelink/carelink/internal/recon"
)

var (
	ErrNotFound       = errors.New("visit not found")
	ErrNotCancellable = errors.New("visit can no longer be cancelled")
)

type Service struct {
	store    docstore.Client
	enricher *recon.Enricher
	log      zerolog.Logger
	now      func() time.Time
}

func NewService(store docstore.Client, enricher *recon.Enricher, logger zerolog.Logger) *Service {
	return &Service{
		store:    store,
		enricher: enricher,
		log:      logger.With().Str("component", "visit").Logger(),
		now:      time.Now,
	}
}

// Get assembles one visit view, enriching the doctor and clinic references
// best-effort.
func (s *Service) Get(ctx context.Context, id string) (*View, error) {
	primary, err := s.store.GetDocument(ctx, docstore.JoinPath(Collection, id))
	if err != nil {
		return nil, fmt.Errorf("read visit %s: %w", id, err)
	}
	if primary == nil {
		return nil, ErrNotFound
	}

	lookups := s.enricher.Enrich(ctx, primary, []recon.LookupSpec{
		{As: "doctor", Field: "doctorId", Collection: "users"},
		{As: "clinic", Field: "clinicId", Collection: "clinics"},
	})
	view := assemble(id, primary, lookups["doctor"], lookups["clinic"])
	return &view, nil
}

func assemble(id string, primary, doctor, clinic docstore.Document) View {
	doctorFallback := recon.Resolve(primary, []string{"doctorName", "specialistName"}, "")
	clinicFallback := recon.Resolve(primary, []string{"clinicName"}, recon.NotSpecified)
	return View{
		ID:         id,
		Status:     strings.ToLower(recon.Resolve(primary, []string{"status"}, referral.StatusPending)),
		DoctorName: recon.DoctorName(recon.FullName(doctor, doctorFallback)),
		ClinicName: recon.Resolve(clinic, []string{"name"}, clinicFallback),
		Location:   recon.ClinicAndAddress(clinic, clinicFallback),
		When: recon.DateTime(
			recon.Resolve(primary, []string{"date", "appointmentDate"}, ""),
			recon.Resolve(primary, []string{"time", "appointmentTime"}, ""),
		),
		Reason: recon.Resolve(primary, []string{"reason", "chiefComplaint"}, recon.NotSpecified),
	}
}

// ListForPatient returns the patient's visits split into upcoming and past
// relative to today, filtered and sorted locally. Records missing an id or
// a visit date fail the shape check and are dropped from the list rather
// than rendered with holes.
func (s *Service) ListForPatient(ctx context.Context, patientID string) (upcoming, past []View, err error) {
	docs, err := s.store.GetCollectionByFilter(ctx, Collection, "patientId", patientID)
	if err != nil {
		return nil, nil, fmt.Errorf("list visits: %w", err)
	}

	type dated struct {
		view View
		date time.Time
	}
	var rows []dated
	for _, doc := range docs {
		id := recon.Resolve(doc, []string{"id"}, "")
		raw := recon.Resolve(doc, []string{"date", "appointmentDate"}, "")
		when, perr := time.Parse("2006-01-02", raw)
		if id == "" || perr != nil {
			s.log.Debug().Str("patient", patientID).Msg("dropping malformed visit record")
			continue
		}
		rows = append(rows, dated{view: assemble(id, doc, nil, nil), date: when})
	}

	sort.SliceStable(rows, func(i, j int) bool { return rows[i].date.Before(rows[j].date) })

	today := s.now().Truncate(24 * time.Hour)
	upcoming = []View{}
	past = []View{}
	for _, r := range rows {
		if r.date.Before(today) {
			past = append(past, r.view)
		} else {
			upcoming = append(upcoming, r.view)
		}
	}
	// Past visits read best newest first.
	for i, j := 0, len(past)-1; i < j; i, j = i+1, j-1 {
		past[i], past[j] = past[j], past[i]
	}
	return upcoming, past, nil
}

// Cancel moves a visit to cancelled. Only pending or confirmed visits can
// be cancelled, and the local view is not updated until the write succeeds.
func (s *Service) Cancel(ctx context.Context, id string) error {
	primary, err := s.store.GetDocument(ctx, docstore.JoinPath(Collection, id))
	if err != nil {
		return fmt.Errorf("read visit %s: %w", id, err)
	}
	if primary == nil {
		return ErrNotFound
	}

	from := recon.Resolve(primary, []string{"status"}, referral.StatusPending)
	if !referral.CanTransition(from, referral.StatusCancelled) {
		return fmt.Errorf("%w: status is %s", ErrNotCancellable, strings.ToLower(from))
	}

	if err := s.store.UpdateDocument(ctx, docstore.JoinPath(Collection, id), docstore.Document{"status": referral.StatusCancelled}); err != nil {
		return fmt.Errorf("cancel visit %s: %w", id, err)
	}
	return nil
}
