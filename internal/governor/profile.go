package governor

// Chip selects the frequency/voltage table the governor scales against.
type Chip int

const (
	ChipRP2040 Chip = iota
	ChipRP2350
)

func (c Chip) String() string {
	switch c {
	case ChipRP2040:
		return "RP2040"
	case ChipRP2350:
		return "RP2350"
	default:
		return "unknown"
	}
}

func (c Chip) Valid() bool {
	return c == ChipRP2040 || c == ChipRP2350
}

// hasWFI reports whether the chip supports the wait-for-interrupt halt
// the governor enters at the bottom of the ultra-low profile.
func (c Chip) hasWFI() bool {
	return c == ChipRP2350
}

// Profile is one of the five discrete operating points, ordered from
// lowest to highest power.
type Profile int

const (
	ProfileUltraLow Profile = iota
	ProfilePowersave
	ProfileBalanced
	ProfilePerformance
	ProfileTurbo

	profileCount
)

var profileNames = [profileCount]string{
	"ULTRA_LOW",
	"POWERSAVE",
	"BALANCED",
	"PERFORMANCE",
	"TURBO",
}

func (p Profile) String() string {
	if !p.Valid() {
		return "unknown"
	}

	return profileNames[p]
}

func (p Profile) Valid() bool {
	return p >= ProfileUltraLow && p < profileCount
}

// OperatingPoint is a frequency/voltage pair from a chip table.
type OperatingPoint struct {
	FrequencyKHz int
	VoltageMV    int
}

type pointTable [profileCount]OperatingPoint

var rp2040Table = pointTable{
	{FrequencyKHz: 50000, VoltageMV: 950},
	{FrequencyKHz: 100000, VoltageMV: 1000},
	{FrequencyKHz: 133000, VoltageMV: 1050},
	{FrequencyKHz: 200000, VoltageMV: 1100},
	{FrequencyKHz: 250000, VoltageMV: 1150},
}

var rp2350Table = pointTable{
	{FrequencyKHz: 50000, VoltageMV: 950},
	{FrequencyKHz: 100000, VoltageMV: 1000},
	{FrequencyKHz: 150000, VoltageMV: 1050},
	{FrequencyKHz: 250000, VoltageMV: 1100},
	{FrequencyKHz: 300000, VoltageMV: 1250},
}

func tableFor(c Chip) pointTable {
	if c == ChipRP2350 {
		return rp2350Table
	}

	return rp2040Table
}

// BaselineFrequencyKHz is the known-safe clock every chip variant can
// run at; actuators fall back to it when a requested frequency is
// rejected.
const BaselineFrequencyKHz = 133000
