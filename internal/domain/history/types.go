package history

// Outcome es el resultado registrado para una dosis programada.
// @Enum taken, skipped, postponed
type Outcome string

const (
	OutcomeTaken     Outcome = "taken"
	OutcomeSkipped   Outcome = "skipped"
	OutcomePostponed Outcome = "postponed"
)

// ValidOutcome reporta si o es un resultado reconocido.
func ValidOutcome(o Outcome) bool {
	switch o {
	case OutcomeTaken, OutcomeSkipped, OutcomePostponed:
		return true
	default:
		return false
	}
}
