package console

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"codeberg.org/mutker/picoctl/internal/device"
	"codeberg.org/mutker/picoctl/internal/governor"
)

func TestParse(t *testing.T) {
	cases := []struct {
		line    string
		want    Command
		wantErr bool
	}{
		{"status", Command{Verb: "status"}, false},
		{"  TURBO  ", Command{Verb: "turbo"}, false},
		{"turbo 120", Command{Verb: "turbo", Arg: 120, HasArg: true}, false},
		{"save 0", Command{Verb: "save", Arg: 0, HasArg: true}, false},
		{"", Command{}, true},
		{"   ", Command{}, true},
		{"turbo abc", Command{}, true},
		{"turbo -5", Command{}, true},
		{"turbo 10 20", Command{}, true},
	}

	for _, tc := range cases {
		got, err := Parse(tc.line)
		if tc.wantErr {
			assert.Error(t, err, "line %q", tc.line)
			continue
		}
		require.NoError(t, err, "line %q", tc.line)
		assert.Equal(t, tc.want, got, "line %q", tc.line)
	}
}

func newDispatchGovernor(t *testing.T) *governor.Governor {
	t.Helper()

	dev, err := device.New(governor.ChipRP2350)
	require.NoError(t, err)
	g, err := governor.New(governor.ChipRP2350, dev, dev)
	require.NoError(t, err)

	return g
}

func TestDispatchTurboDefaults(t *testing.T) {
	g := newDispatchGovernor(t)

	reply, err := Dispatch(g, Command{Verb: "turbo"})
	require.NoError(t, err)
	assert.Contains(t, reply, "30s")
	assert.Equal(t, governor.ProfileTurbo, g.CurrentProfile())
	assert.True(t, g.Status().OverrideActive)

	reply, err = Dispatch(g, Command{Verb: "save"})
	require.NoError(t, err)
	assert.Contains(t, reply, "60s")
	assert.Equal(t, governor.ProfilePowersave, g.CurrentProfile())
}

func TestDispatchExplicitDuration(t *testing.T) {
	g := newDispatchGovernor(t)

	_, err := Dispatch(g, Command{Verb: "turbo", Arg: 120, HasArg: true})
	require.NoError(t, err)

	s := g.Status()
	assert.True(t, s.OverrideActive)
	assert.Greater(t, s.OverrideRemaining.Seconds(), 110.0)
}

func TestDispatchAutoReleases(t *testing.T) {
	g := newDispatchGovernor(t)

	_, err := Dispatch(g, Command{Verb: "perf"})
	require.NoError(t, err)
	require.True(t, g.Status().OverrideActive)

	reply, err := Dispatch(g, Command{Verb: "a"})
	require.NoError(t, err)
	assert.Contains(t, reply, "auto")
	assert.False(t, g.Status().OverrideActive)
}

func TestDispatchPinVerbs(t *testing.T) {
	g := newDispatchGovernor(t)

	cases := []struct {
		verb string
		want governor.Profile
	}{
		{"ultra", governor.ProfileUltraLow},
		{"low", governor.ProfileUltraLow},
		{"bal", governor.ProfileBalanced},
		{"balanced", governor.ProfileBalanced},
		{"perf", governor.ProfilePerformance},
		{"power", governor.ProfilePowersave},
	}

	for _, tc := range cases {
		_, err := Dispatch(g, Command{Verb: tc.verb})
		require.NoError(t, err, "verb %q", tc.verb)
		assert.Equal(t, tc.want, g.CurrentProfile(), "verb %q", tc.verb)
	}
}

func TestDispatchHelpAndUnknown(t *testing.T) {
	g := newDispatchGovernor(t)

	reply, err := Dispatch(g, Command{Verb: "help"})
	require.NoError(t, err)
	assert.Contains(t, reply, "turbo")

	_, err = Dispatch(g, Command{Verb: "frobnicate"})
	assert.Error(t, err)
}

func TestFormatStatus(t *testing.T) {
	s := governor.Status{
		Chip:         governor.ChipRP2350,
		Profile:      governor.ProfileTurbo,
		FrequencyKHz: 300000,
		Load:         87.3,
		InstantLoad:  91.0,
		Temperature:  61.5,
		TurboActive:  true,
		Throttled:    true,
	}

	out := FormatStatus(s)
	assert.Contains(t, out, "TURBO @ 300 MHz")
	assert.Contains(t, out, "87.3%")
	assert.Contains(t, out, "61.5 C")
	assert.Contains(t, out, "RP2350")
	assert.Contains(t, out, "AUTO")
	assert.Contains(t, out, "TURBO ACTIVE")
	assert.Contains(t, out, "THERMAL THROTTLED")

	s.OverrideActive = true
	s.OverrideRemaining = 42 * time.Second
	out = FormatStatus(s)
	assert.True(t, strings.Contains(out, "MANUAL (42s left)"))
}
