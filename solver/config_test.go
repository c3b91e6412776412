package solver

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDefaultConfigValid(t *testing.T) {
	conf := DefaultConfig()
	require.NoError(t, conf.Validate())
}

func TestParseOptions(t *testing.T) {
	conf, err := ParseOptions(map[string]interface{}{
		"restart_type":  "luby",
		"do_bva":        false,
		"seed":          42,
		"polarity_mode": "rnd",
	})
	require.NoError(t, err)
	require.Equal(t, RestartLuby, conf.RestartType)
	require.False(t, conf.DoBVA)
	require.EqualValues(t, 42, conf.Seed)
	require.Equal(t, PolarityRnd, conf.PolarityMode)
}

func TestParseOptionsRejectsUnknown(t *testing.T) {
	_, err := ParseOptions(map[string]interface{}{"frobnicate": true})
	require.Error(t, err, "unknown options must be rejected")
}

func TestParseOptionsRejectsBadRestart(t *testing.T) {
	_, err := ParseOptions(map[string]interface{}{"restart_type": "random"})
	require.Error(t, err)
}

func TestParseOptionsRejectsBadScheduleToken(t *testing.T) {
	_, err := ParseOptions(map[string]interface{}{
		"simplify_schedule_startup": "bve, warp-drive",
	})
	require.Error(t, err)
}

func TestScheduleParsing(t *testing.T) {
	steps, err := parseSchedule("  bve ,probe,  scc-vrepl  ")
	require.NoError(t, err)
	require.Equal(t, []string{"bve", "probe", "scc-vrepl"}, steps)
}

func TestRestartTypesSolve(t *testing.T) {
	for _, rt := range []string{RestartGlue, RestartLuby, RestartGeom} {
		conf := DefaultConfig()
		conf.RestartType = rt
		pb := ParseSlice(pigeonhole43())
		s := NewWithConfig(pb, conf)
		require.Equalf(t, Unsat, s.Solve(), "wrong verdict with %s restarts", rt)
	}
}

func TestPolarityModesSolve(t *testing.T) {
	for _, pm := range []string{PolarityAuto, PolarityPos, PolarityNeg, PolarityRnd, PolaritySaved} {
		conf := DefaultConfig()
		conf.PolarityMode = pm
		pb := ParseSlice([][]int{{1, 2}, {-1, 3}, {-2, 3}, {1, -3, 4}})
		s := NewWithConfig(pb, conf)
		require.Equalf(t, Sat, s.Solve(), "wrong verdict with %s polarities", pm)
		require.True(t, pb.Verify(s.Model()))
	}
}
