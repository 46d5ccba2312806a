package medications

import "context"

type Repository interface {
	Create(ctx context.Context, m Medication) error
	Update(ctx context.Context, m Medication) error
	GetByID(ctx context.Context, id string) (Medication, error)
	ListByProfile(ctx context.Context, profileID string) ([]Medication, error)
	Delete(ctx context.Context, id string) error
}
