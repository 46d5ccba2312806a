package medications

// ScheduleKind define los tipos de recurrencia soportados.
// @Enum every_day, specific_days, on_off_cycle
type ScheduleKind string

const (
	ScheduleEveryDay     ScheduleKind = "every_day"
	ScheduleSpecificDays ScheduleKind = "specific_days"
	ScheduleOnOffCycle   ScheduleKind = "on_off_cycle"
)

// DurationKind define cómo se acota la duración del tratamiento.
// @Enum continuous, fixed_days
type DurationKind string

const (
	DurationContinuous DurationKind = "continuous"
	DurationFixedDays  DurationKind = "fixed_days"
)

// Weekday en formato texto (como viaja en la API y se persiste).
type Weekday string

const (
	WeekdayMonday    Weekday = "monday"
	WeekdayTuesday   Weekday = "tuesday"
	WeekdayWednesday Weekday = "wednesday"
	WeekdayThursday  Weekday = "thursday"
	WeekdayFriday    Weekday = "friday"
	WeekdaySaturday  Weekday = "saturday"
	WeekdaySunday    Weekday = "sunday"
)

var weekdayNames = map[Weekday]int{
	WeekdaySunday:    0,
	WeekdayMonday:    1,
	WeekdayTuesday:   2,
	WeekdayWednesday: 3,
	WeekdayThursday:  4,
	WeekdayFriday:    5,
	WeekdaySaturday:  6,
}

// ValidWeekday reporta si s es un nombre de día reconocido.
func ValidWeekday(s Weekday) bool {
	_, ok := weekdayNames[s]
	return ok
}
