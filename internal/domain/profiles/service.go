package profiles

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrInvalidInput = errors.New("invalid input")
)

type Service struct {
	repo Repository
	now  func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{
		repo: repo,
		now:  time.Now,
	}
}

type CreateInput struct {
	Name     string
	Relation string
}

func (s *Service) Create(ctx context.Context, ownerUserID string, in CreateInput) (Profile, error) {
	if strings.TrimSpace(ownerUserID) == "" {
		return Profile{}, ErrInvalidInput
	}
	if strings.TrimSpace(in.Name) == "" {
		return Profile{}, ErrInvalidInput
	}

	rel := Relation(strings.TrimSpace(in.Relation))
	if rel == "" {
		rel = RelationSelf
	}
	if !ValidRelation(rel) {
		return Profile{}, ErrInvalidInput
	}

	now := s.now()
	p := Profile{
		ID:          uuid.NewString(),
		OwnerUserID: ownerUserID,
		Name:        strings.TrimSpace(in.Name),
		Relation:    rel,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.repo.Create(ctx, p); err != nil {
		return Profile{}, err
	}
	return p, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (Profile, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Profile{}, ErrInvalidInput
	}
	return s.repo.GetByID(ctx, id)
}

func (s *Service) ListByOwner(ctx context.Context, ownerUserID string) ([]Profile, error) {
	return s.repo.ListByOwner(ctx, ownerUserID)
}

// Delete elimina el perfil. La cascada sobre medicamentos e historial
// la orquesta el handler vía medications.Service.DeleteByProfile.
func (s *Service) Delete(ctx context.Context, id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return ErrInvalidInput
	}
	return s.repo.Delete(ctx, id)
}

// OwnerOf expone el ownerUserID de un perfil.
// Se usa desde otros módulos para chequear pertenencia sin ciclos de imports.
func (s *Service) OwnerOf(ctx context.Context, profileID string) (string, error) {
	p, err := s.GetByID(ctx, profileID)
	if err != nil {
		return "", err
	}
	return p.OwnerUserID, nil
}
