package medications

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrInvalidInput = errors.New("invalid input")

	// ErrInvalidSchedule cubre toda configuración de recurrencia/duración
	// rechazada en el borde. El motor de alertas asume que los medicamentos
	// que le llegan ya pasaron por acá.
	ErrInvalidSchedule = errors.New("invalid schedule config")
)

// HistoryPurger borra el historial de un medicamento (cascada al eliminar).
// Interfaz chica para no acoplar este módulo al paquete history.
type HistoryPurger interface {
	DeleteByMedication(ctx context.Context, medicationID string) error
}

type Service struct {
	repo    Repository
	history HistoryPurger
	now     func() time.Time
}

func NewService(repo Repository, history HistoryPurger) *Service {
	return &Service{
		repo:    repo,
		history: history,
		now:     time.Now,
	}
}

type CreateInput struct {
	Name      string
	Dosage    string
	Notes     string
	Schedule  Schedule
	Duration  DurationWindow
	StartDate time.Time
}

func (s *Service) Create(ctx context.Context, profileID string, in CreateInput) (Medication, error) {
	if strings.TrimSpace(profileID) == "" {
		return Medication{}, ErrInvalidInput
	}
	if strings.TrimSpace(in.Name) == "" {
		return Medication{}, ErrInvalidInput
	}
	if in.StartDate.IsZero() {
		return Medication{}, ErrInvalidInput
	}

	sched, err := normalizeSchedule(in.Schedule)
	if err != nil {
		return Medication{}, err
	}
	if err := validateDuration(in.Duration); err != nil {
		return Medication{}, err
	}

	now := s.now()
	m := Medication{
		ID:        uuid.NewString(),
		ProfileID: profileID,
		Name:      strings.TrimSpace(in.Name),
		Dosage:    strings.TrimSpace(in.Dosage),
		Notes:     strings.TrimSpace(in.Notes),
		Schedule:  sched,
		Duration:  in.Duration,
		StartDate: DateOf(in.StartDate),
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.repo.Create(ctx, m); err != nil {
		return Medication{}, err
	}
	return m, nil
}

func (s *Service) Update(ctx context.Context, id string, in CreateInput) (Medication, error) {
	current, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return Medication{}, err
	}
	if strings.TrimSpace(in.Name) == "" || in.StartDate.IsZero() {
		return Medication{}, ErrInvalidInput
	}

	sched, err := normalizeSchedule(in.Schedule)
	if err != nil {
		return Medication{}, err
	}
	if err := validateDuration(in.Duration); err != nil {
		return Medication{}, err
	}

	current.Name = strings.TrimSpace(in.Name)
	current.Dosage = strings.TrimSpace(in.Dosage)
	current.Notes = strings.TrimSpace(in.Notes)
	current.Schedule = sched
	current.Duration = in.Duration
	current.StartDate = DateOf(in.StartDate)
	current.UpdatedAt = s.now()

	if err := s.repo.Update(ctx, current); err != nil {
		return Medication{}, err
	}
	return current, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (Medication, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Medication{}, ErrInvalidInput
	}
	return s.repo.GetByID(ctx, id)
}

func (s *Service) ListByProfile(ctx context.Context, profileID string) ([]Medication, error) {
	return s.repo.ListByProfile(ctx, profileID)
}

// Delete elimina el medicamento y su historial asociado (cascada).
func (s *Service) Delete(ctx context.Context, id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return ErrInvalidInput
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	if s.history != nil {
		return s.history.DeleteByMedication(ctx, id)
	}
	return nil
}

// DeleteByProfile elimina todos los medicamentos del perfil (y su historial).
func (s *Service) DeleteByProfile(ctx context.Context, profileID string) error {
	meds, err := s.repo.ListByProfile(ctx, profileID)
	if err != nil {
		return err
	}
	for _, m := range meds {
		if err := s.Delete(ctx, m.ID); err != nil {
			return err
		}
	}
	return nil
}

// normalizeSchedule valida la variante y deja Times ordenado ascendente.
// Duplicados se rechazan, no se deduplican: un horario repetido es un
// error de carga, no una intención.
func normalizeSchedule(in Schedule) (Schedule, error) {
	if len(in.Times) == 0 {
		return Schedule{}, fmt.Errorf("%w: times required", ErrInvalidSchedule)
	}

	times := make([]string, len(in.Times))
	copy(times, in.Times)
	sort.Strings(times)

	seen := map[string]bool{}
	for _, t := range times {
		if !ValidTimeOfDay(t) {
			return Schedule{}, fmt.Errorf("%w: time %q must be HH:MM", ErrInvalidSchedule, t)
		}
		if seen[t] {
			return Schedule{}, fmt.Errorf("%w: duplicate time %q", ErrInvalidSchedule, t)
		}
		seen[t] = true
	}

	out := in
	out.Times = times

	switch in.Kind {
	case ScheduleEveryDay:
		out.Days, out.On, out.Off = nil, 0, 0

	case ScheduleSpecificDays:
		if len(in.Days) == 0 {
			return Schedule{}, fmt.Errorf("%w: days required", ErrInvalidSchedule)
		}
		seenDay := map[Weekday]bool{}
		for _, d := range in.Days {
			if !ValidWeekday(d) {
				return Schedule{}, fmt.Errorf("%w: unknown weekday %q", ErrInvalidSchedule, d)
			}
			if seenDay[d] {
				return Schedule{}, fmt.Errorf("%w: duplicate weekday %q", ErrInvalidSchedule, d)
			}
			seenDay[d] = true
		}
		out.On, out.Off = 0, 0

	case ScheduleOnOffCycle:
		if in.On <= 0 || in.Off <= 0 {
			return Schedule{}, fmt.Errorf("%w: on/off days must be positive", ErrInvalidSchedule)
		}
		out.Days = nil

	default:
		return Schedule{}, fmt.Errorf("%w: unknown schedule kind %q", ErrInvalidSchedule, in.Kind)
	}

	return out, nil
}

func validateDuration(w DurationWindow) error {
	switch w.Kind {
	case DurationContinuous:
		return nil
	case DurationFixedDays:
		if w.Days <= 0 {
			return fmt.Errorf("%w: fixed duration must be positive days", ErrInvalidSchedule)
		}
		return nil
	default:
		return fmt.Errorf("%w: unknown duration kind %q", ErrInvalidSchedule, w.Kind)
	}
}
