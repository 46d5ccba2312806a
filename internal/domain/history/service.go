package history

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"med-alert/internal/domain/medications"
)

var (
	ErrInvalidInput = errors.New("invalid input")
)

type Service struct {
	ledger Ledger
	now    func() time.Time
}

func NewService(ledger Ledger) *Service {
	return &Service{
		ledger: ledger,
		now:    time.Now,
	}
}

type RecordInput struct {
	MedicationID  string
	ProfileID     string
	Date          time.Time
	ScheduledTime string
	Outcome       Outcome
}

// Record agrega un resultado de dosis al ledger. Si ya existía un registro
// para la misma clave, el nuevo lo reemplaza a efectos de resolución (el
// ledger conserva ambos; FindEntry devuelve el más reciente).
func (s *Service) Record(ctx context.Context, in RecordInput) (Entry, error) {
	if strings.TrimSpace(in.MedicationID) == "" || strings.TrimSpace(in.ProfileID) == "" {
		return Entry{}, ErrInvalidInput
	}
	if in.Date.IsZero() {
		return Entry{}, ErrInvalidInput
	}
	if !medications.ValidTimeOfDay(in.ScheduledTime) {
		return Entry{}, ErrInvalidInput
	}
	if !ValidOutcome(in.Outcome) {
		return Entry{}, ErrInvalidInput
	}

	e := Entry{
		ID:            uuid.NewString(),
		MedicationID:  in.MedicationID,
		ProfileID:     in.ProfileID,
		Date:          medications.DateOf(in.Date),
		ScheduledTime: in.ScheduledTime,
		Outcome:       in.Outcome,
		RecordedAt:    s.now(),
	}

	if err := s.ledger.Append(ctx, e); err != nil {
		return Entry{}, err
	}
	return e, nil
}

func (s *Service) ListByProfile(ctx context.Context, profileID string, filter ListFilter) ([]Entry, error) {
	if strings.TrimSpace(profileID) == "" {
		return nil, ErrInvalidInput
	}
	return s.ledger.ListByProfile(ctx, profileID, filter)
}

func (s *Service) DeleteByMedication(ctx context.Context, medicationID string) error {
	if strings.TrimSpace(medicationID) == "" {
		return ErrInvalidInput
	}
	return s.ledger.DeleteByMedication(ctx, medicationID)
}
