package profiles

import "time"

// Relation describe el vínculo del perfil con la cuenta que lo administra.
// @Enum self, mother, father, grandmother, grandfather, child, other
type Relation string

const (
	RelationSelf        Relation = "self"
	RelationMother      Relation = "mother"
	RelationFather      Relation = "father"
	RelationGrandmother Relation = "grandmother"
	RelationGrandfather Relation = "grandfather"
	RelationChild       Relation = "child"
	RelationOther       Relation = "other"
)

// ValidRelation reporta si r es un vínculo reconocido.
func ValidRelation(r Relation) bool {
	switch r {
	case RelationSelf, RelationMother, RelationFather, RelationGrandmother,
		RelationGrandfather, RelationChild, RelationOther:
		return true
	default:
		return false
	}
}

// Profile representa a una persona cuyos medicamentos se administran
// desde la cuenta (el titular o un familiar a su cargo).
type Profile struct {
	ID          string
	OwnerUserID string

	Name     string
	Relation Relation

	CreatedAt time.Time
	UpdatedAt time.Time
}
