package medications

import "time"

// DateOf normaliza un instante a su fecha civil (medianoche UTC).
// Todas las cuentas de calendario del motor trabajan sobre fechas así
// normalizadas; evita sorpresas de DST al restar días.
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// FormatDate serializa una fecha civil como YYYY-MM-DD.
func FormatDate(t time.Time) string {
	return DateOf(t).Format("2006-01-02")
}

// ParseDate parsea YYYY-MM-DD a fecha civil.
func ParseDate(s string) (time.Time, error) {
	return time.Parse("2006-01-02", s)
}

// ValidTimeOfDay reporta si s es un horario HH:MM válido.
func ValidTimeOfDay(s string) bool {
	_, err := time.Parse("15:04", s)
	return err == nil && len(s) == 5
}

func daysBetween(from, to time.Time) int {
	return int(DateOf(to).Sub(DateOf(from)).Hours() / 24)
}

// IsActiveOn evalúa la recurrencia pura: ¿el schedule toca en `date`?
// No considera la ventana de duración; eso es de DurationWindow.Contains.
// start es la fecha de inicio del tratamiento (ancla del ciclo on/off).
func (s Schedule) IsActiveOn(start, date time.Time) bool {
	switch s.Kind {
	case ScheduleEveryDay:
		return true

	case ScheduleSpecificDays:
		want := int(DateOf(date).Weekday())
		for _, d := range s.Days {
			if n, ok := weekdayNames[d]; ok && n == want {
				return true
			}
		}
		return false

	case ScheduleOnOffCycle:
		diff := daysBetween(start, date)
		if diff < 0 {
			return false
		}
		cycle := s.On + s.Off
		if cycle <= 0 {
			return false
		}
		// diff == 0 cae siempre en la fase "on": el primer día del
		// tratamiento es día de toma.
		return diff%cycle < s.On

	default:
		return false
	}
}

// SlotsOn devuelve los horarios programados para `date`, o vacío si el
// schedule no está activo ese día.
func (s Schedule) SlotsOn(start, date time.Time) []string {
	if !s.IsActiveOn(start, date) {
		return nil
	}
	out := make([]string, len(s.Times))
	copy(out, s.Times)
	return out
}

// Contains reporta si `date` cae dentro de la ventana de tratamiento.
// fixed_days es inclusivo: [start, start+days-1].
func (w DurationWindow) Contains(start, date time.Time) bool {
	diff := daysBetween(start, date)
	if diff < 0 {
		return false
	}
	switch w.Kind {
	case DurationContinuous:
		return true
	case DurationFixedDays:
		return diff < w.Days
	default:
		return false
	}
}

// ActiveOn combina ventana de duración + recurrencia.
func (m Medication) ActiveOn(date time.Time) bool {
	return m.Duration.Contains(m.StartDate, date) && m.Schedule.IsActiveOn(m.StartDate, date)
}

// SlotsOn devuelve los horarios del medicamento para `date` (vacío si
// no está activo ese día).
func (m Medication) SlotsOn(date time.Time) []string {
	if !m.Duration.Contains(m.StartDate, date) {
		return nil
	}
	return m.Schedule.SlotsOn(m.StartDate, date)
}

// RemainingDays devuelve cuántos días de tratamiento quedan (incluyendo
// `today`) para duraciones fixed_days, o nil para tratamientos continuos.
// Si la ventana ya terminó devuelve 0.
func (m Medication) RemainingDays(today time.Time) *int {
	if m.Duration.Kind != DurationFixedDays {
		return nil
	}
	diff := daysBetween(m.StartDate, today)
	rem := m.Duration.Days - diff
	if rem < 0 {
		rem = 0
	}
	if rem > m.Duration.Days {
		rem = m.Duration.Days
	}
	return &rem
}
