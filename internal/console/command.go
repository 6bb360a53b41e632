package console

import (
	"fmt"
	"strconv"
	"strings"

	"codeberg.org/mutker/picoctl/internal/errors"
	"codeberg.org/mutker/picoctl/internal/governor"
)

const (
	ErrEmptyCommand    = errors.ErrorCode("console_empty_command")
	ErrUnknownVerb     = errors.ErrorCode("console_unknown_verb")
	ErrInvalidArgument = errors.ErrorCode("console_invalid_argument")
)

// Command is a parsed console line: a verb plus an optional numeric
// argument (an override duration in seconds).
type Command struct {
	Verb   string
	Arg    int
	HasArg bool
}

// Parse tokenizes a console line. The verb is lowercased; anything after
// a second token is rejected.
func Parse(line string) (Command, error) {
	errFactory := errors.New()

	fields := strings.Fields(strings.ToLower(strings.TrimSpace(line)))
	if len(fields) == 0 {
		return Command{}, errFactory.New(ErrEmptyCommand)
	}

	cmd := Command{Verb: fields[0]}
	if len(fields) == 1 {
		return cmd, nil
	}
	if len(fields) > 2 {
		return Command{}, errFactory.WithData(ErrInvalidArgument, strings.Join(fields[1:], " "))
	}

	arg, err := strconv.Atoi(fields[1])
	if err != nil || arg < 0 {
		return Command{}, errFactory.WithData(ErrInvalidArgument, fields[1])
	}
	cmd.Arg = arg
	cmd.HasArg = true

	return cmd, nil
}

// Dispatch executes a command against the governor's manual override API
// and returns the reply text. Must run in the same context as Tick.
func Dispatch(gov *governor.Governor, cmd Command) (string, error) {
	errFactory := errors.New()

	seconds := func(def int) int {
		if cmd.HasArg {
			return cmd.Arg
		}
		return def
	}

	switch cmd.Verb {
	case "gov", "help", "?":
		return helpText, nil
	case "status", "s":
		return FormatStatus(gov.Status()), nil
	case "auto", "a":
		gov.SetAuto()
		return "auto scaling resumed", nil
	case "turbo":
		s := seconds(governor.DefaultTurboSeconds)
		gov.SetTurbo(s)
		return fmt.Sprintf("TURBO pinned for %ds", s), nil
	case "save", "power":
		s := seconds(governor.DefaultPowersaveSeconds)
		gov.SetPowersave(s)
		return fmt.Sprintf("POWERSAVE pinned for %ds", s), nil
	case "balanced", "bal":
		gov.SetProfile(governor.ProfileBalanced, seconds(0))
		return "BALANCED pinned", nil
	case "perf":
		gov.SetProfile(governor.ProfilePerformance, seconds(0))
		return "PERFORMANCE pinned", nil
	case "ultra", "low":
		gov.SetProfile(governor.ProfileUltraLow, 0)
		return "ULTRA_LOW pinned", nil
	default:
		return "", errFactory.WithData(ErrUnknownVerb, cmd.Verb)
	}
}

const helpText = `Commands:
  status      Show governor status
  auto        Resume automatic scaling
  turbo [s]   Pin TURBO for N seconds (default 30)
  save [s]    Pin POWERSAVE for N seconds (default 60)
  balanced [s] Pin BALANCED
  perf [s]    Pin PERFORMANCE
  ultra       Pin ULTRA_LOW
  help        Show this help`

// FormatStatus renders a governor snapshot for the console.
func FormatStatus(s governor.Status) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Profile:  %s @ %d MHz\n", s.Profile, s.FrequencyKHz/1000)
	fmt.Fprintf(&b, "Load:     %.1f%% (inst: %.1f%%)\n", s.Load, s.InstantLoad)
	fmt.Fprintf(&b, "Temp:     %.1f C\n", s.Temperature)
	fmt.Fprintf(&b, "Chip:     %s\n", s.Chip)

	mode := "AUTO"
	if s.OverrideActive {
		mode = "MANUAL"
		if s.OverrideRemaining > 0 {
			mode = fmt.Sprintf("MANUAL (%ds left)", int(s.OverrideRemaining.Seconds()))
		}
	}
	fmt.Fprintf(&b, "Mode:     %s", mode)

	if s.TurboActive {
		b.WriteString("\n          TURBO ACTIVE")
	}
	if s.Throttled {
		b.WriteString("\n          THERMAL THROTTLED")
	}

	return b.String()
}
