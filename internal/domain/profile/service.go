package profile

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/carelink/carelink/internal/platform/docstore"
	"github.com/carelink/carelink/internal/recon"
)

var ErrNotFound = errors.New("profile not found")

type Service struct {
	store docstore.Client
	log   zerolog.Logger
}

func NewService(store docstore.Client, logger zerolog.Logger) *Service {
	return &Service{
		store: store,
		log:   logger.With().Str("component", "profile").Logger(),
	}
}

// Get resolves a person record into a profile view. The primary collection
// is tried first, then the alternate one, so patient records that were never
// mirrored into users still resolve.
func (s *Service) Get(ctx context.Context, userID string) (*View, error) {
	record, collection, err := s.find(ctx, userID)
	if err != nil {
		return nil, err
	}
	if record == nil {
		return nil, ErrNotFound
	}

	view := View{
		ID:          userID,
		DisplayName: recon.FullName(record, recon.UnknownPatient),
		FirstName:   recon.Resolve(record, []string{"firstName", "first_name", "profile.firstName"}, ""),
		MiddleName:  recon.Resolve(record, []string{"middleName", "middle_name", "profile.middleName"}, ""),
		LastName:    recon.Resolve(record, []string{"lastName", "last_name", "profile.lastName"}, ""),
		Email:       recon.Resolve(record, []string{"email", "profile.email"}, ""),
		Phone:       recon.Resolve(record, []string{"phone", "phoneNumber", "profile.phone"}, ""),
		Address:     recon.Resolve(record, []string{"address", "profile.address"}, ""),
		BirthDate:   recon.Resolve(record, []string{"birthDate", "dateOfBirth", "profile.birthDate"}, ""),
		Role:        recon.Resolve(record, []string{"role", "userType"}, ""),
	}
	if collection == AltCollection && view.Role == "" {
		view.Role = "patient"
	}
	return &view, nil
}

// Save applies a partial update to the person record. The record must
// already exist, and nothing is considered saved until the write succeeds.
// Write failures propagate so the caller can surface a retryable error.
func (s *Service) Save(ctx context.Context, userID string, req UpdateRequest) error {
	record, collection, err := s.find(ctx, userID)
	if err != nil {
		return err
	}
	if record == nil {
		return ErrNotFound
	}

	patch := docstore.Document{}
	for key, value := range map[string]string{
		"firstName":  req.FirstName,
		"middleName": req.MiddleName,
		"lastName":   req.LastName,
		"email":      req.Email,
		"phone":      req.Phone,
		"address":    req.Address,
		"birthDate":  req.BirthDate,
	} {
		if value != "" {
			patch[key] = value
		}
	}
	if len(patch) == 0 {
		return nil
	}

	if err := s.store.UpdateDocument(ctx, docstore.JoinPath(collection, userID), patch); err != nil {
		s.log.Error().Err(err).Str("user", userID).Msg("profile save failed")
		return fmt.Errorf("save profile %s: %w", userID, err)
	}
	return nil
}

func (s *Service) find(ctx context.Context, userID string) (docstore.Document, string, error) {
	record, err := s.store.GetDocument(ctx, docstore.JoinPath(Collection, userID))
	if err != nil {
		return nil, "", fmt.Errorf("read profile %s: %w", userID, err)
	}
	if record != nil {
		return record, Collection, nil
	}
	record, err = s.store.GetDocument(ctx, docstore.JoinPath(AltCollection, userID))
	if err != nil {
		return nil, "", fmt.Errorf("read profile %s: %w", userID, err)
	}
	return record, AltCollection, nil
}
