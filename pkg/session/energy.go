package session

// DefaultEnergy is reported when no wake time is known.
const DefaultEnergy = 3

// EnergyLevel maps hours awake to a 1-5 level. Boundaries fall into the
// lower bracket: exactly 2h awake is 4, not 5.
func EnergyLevel(wakeUnix, nowUnix int64) int {
	hours := float64(nowUnix-wakeUnix) / 3600.0

	switch {
	case hours < 2:
		return 5
	case hours < 6:
		return 4
	case hours < 10:
		return 3
	case hours < 14:
		return 2
	default:
		return 1
	}
}
