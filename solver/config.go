package solver

import (
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/pkg/errors"
)

// Restart policies.
const (
	RestartGlue = "glue"
	RestartLuby = "luby"
	RestartGeom = "geom"
)

// Polarity modes.
const (
	PolarityAuto  = "auto"
	PolarityPos   = "pos"
	PolarityNeg   = "neg"
	PolarityRnd   = "rnd"
	PolaritySaved = "saved"
)

// A Config carries every tunable of the solver. It is passed by value: a
// Solver owns its copy and nested sub-solvers derive theirs from it.
type Config struct {
	Verbose bool `mapstructure:"verbose"`

	// Variable activities
	VarDecayStart float64 `mapstructure:"var_decay_start"`
	VarDecayMax   float64 `mapstructure:"var_decay_max"`
	PolarityMode  string  `mapstructure:"polarity_mode"`

	// Clause cleaning
	MaxTemporaryLearntClauses int `mapstructure:"max_temporary_learnt_clauses"`
	GlueMustKeepIfBelowOrEq   int `mapstructure:"glue_must_keep_if_below_or_eq"`

	// Restarting
	RestartType                  string  `mapstructure:"restart_type"`
	RestartFirst                 int     `mapstructure:"restart_first"`
	RestartInc                   float64 `mapstructure:"restart_inc"`
	LocalGlueMultiplier          float64 `mapstructure:"local_glue_multiplier"`
	DoBlockingRestart            bool    `mapstructure:"do_blocking_restart"`
	BlockingRestartMultip        float64 `mapstructure:"blocking_restart_multip"`
	LowerBoundForBlockingRestart int64   `mapstructure:"lower_bound_for_blocking_restart"`

	// Glues
	UpdateGluesOnAnalyze bool `mapstructure:"update_glues_on_analyze"`

	// Probing
	DoProbe               bool    `mapstructure:"do_probe"`
	DoIntreeProbe         bool    `mapstructure:"do_intree_probe"`
	DoBothProp            bool    `mapstructure:"do_bothprop"`
	OTFHyperbin           bool    `mapstructure:"otf_hyperbin"`
	OTFHyperRatioLimit    float64 `mapstructure:"otf_hyper_ratio_limit"`
	ProbeTimeLimitM       int64   `mapstructure:"probe_time_limitM"`
	DoCache               bool    `mapstructure:"do_cache"`
	CacheUpdateCutoff     int     `mapstructure:"cache_update_cutoff"`

	// Var elim
	DoVarElim               bool    `mapstructure:"do_var_elim"`
	VelimResolventTooLarge  int     `mapstructure:"velim_resolvent_too_large"`
	VarElimRatioPerIter     float64 `mapstructure:"var_elim_ratio_per_iter"`
	VarElimTimeLimitM       int64   `mapstructure:"var_elim_time_limitM"`
	SubsumptionTimeLimitM   int64   `mapstructure:"subsumption_time_limitM"`
	StrengtheningTimeLimitM int64   `mapstructure:"strengthening_time_limitM"`

	// BVA
	DoBVA           bool  `mapstructure:"do_bva"`
	BVALimitPerCall int   `mapstructure:"bva_limit_per_call"`
	BVATimeLimitM   int64 `mapstructure:"bva_time_limitM"`

	// Component handling
	DoCompHandler bool `mapstructure:"do_comp_handler"`
	CompVarLimit  int  `mapstructure:"comp_var_limit"`

	// Equivalent literal replacement
	DoFindAndReplaceEqLits bool `mapstructure:"do_find_and_replace_eq_lits"`

	// Scheduling
	SimplifyAtStartup          bool    `mapstructure:"simplify_at_startup"`
	DoSimplifyProblem          bool    `mapstructure:"do_simplify_problem"`
	NumConflictsOfSearch       int64   `mapstructure:"num_conflicts_of_search"`
	NumConflictsOfSearchInc    float64 `mapstructure:"num_conflicts_of_search_inc"`
	SimplifyScheduleStartup    string  `mapstructure:"simplify_schedule_startup"`
	SimplifyScheduleNonstartup string  `mapstructure:"simplify_schedule_nonstartup"`
	GlobalTimeoutMultiplier    float64 `mapstructure:"global_timeout_multiplier"`

	// Limits
	MaxTime  time.Duration `mapstructure:"max_time"`
	MaxConfl int64         `mapstructure:"max_confl"`

	// Misc
	Seed int64 `mapstructure:"seed"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		VarDecayStart:                0.8,
		VarDecayMax:                  0.95,
		PolarityMode:                 PolarityAuto,
		MaxTemporaryLearntClauses:    2000,
		GlueMustKeepIfBelowOrEq:      5,
		RestartType:                  RestartGlue,
		RestartFirst:                 300,
		RestartInc:                   2.0,
		LocalGlueMultiplier:          0.80,
		DoBlockingRestart:            true,
		BlockingRestartMultip:        1.4,
		LowerBoundForBlockingRestart: 10000,
		UpdateGluesOnAnalyze:         true,
		DoProbe:                      true,
		DoIntreeProbe:                true,
		DoBothProp:                   true,
		OTFHyperbin:                  true,
		OTFHyperRatioLimit:           0.5,
		ProbeTimeLimitM:              800,
		DoCache:                      true,
		CacheUpdateCutoff:            2000,
		DoVarElim:                    true,
		VelimResolventTooLarge:       20,
		VarElimRatioPerIter:          0.70,
		VarElimTimeLimitM:            50,
		SubsumptionTimeLimitM:        300,
		StrengtheningTimeLimitM:      300,
		DoBVA:                        true,
		BVALimitPerCall:              150000,
		BVATimeLimitM:                100,
		DoCompHandler:                true,
		CompVarLimit:                 1000 * 1000,
		DoFindAndReplaceEqLits:       true,
		SimplifyAtStartup:            true,
		DoSimplifyProblem:            true,
		NumConflictsOfSearch:         50 * 1000,
		NumConflictsOfSearchInc:      1.4,
		SimplifyScheduleStartup:      "sub-impl, scc-vrepl, backw-subsume, bve, probe",
		SimplifyScheduleNonstartup:   "handle-comps, scc-vrepl, sub-impl, probe, backw-subsume, str-cls, distill-cls, bve, bva, renumber",
		GlobalTimeoutMultiplier:      1.0,
		MaxConfl:                     int64(^uint64(0) >> 1),
		Seed:                         0,
	}
}

// ParseOptions decodes a map of option name to value over the default
// configuration. Unknown options are rejected.
func ParseOptions(opts map[string]interface{}) (Config, error) {
	conf := DefaultConfig()
	var meta mapstructure.Metadata
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &conf,
		Metadata:         &meta,
		ErrorUnused:      true,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return conf, errors.Wrap(err, "could not build option decoder")
	}
	if err := dec.Decode(opts); err != nil {
		return conf, errors.Wrap(err, "invalid options")
	}
	if err := conf.Validate(); err != nil {
		return conf, err
	}
	return conf, nil
}

// Validate checks enumerated options and schedule tokens.
func (c *Config) Validate() error {
	switch c.RestartType {
	case RestartGlue, RestartLuby, RestartGeom:
	default:
		return errors.Errorf("unknown restart type %q", c.RestartType)
	}
	switch c.PolarityMode {
	case PolarityAuto, PolarityPos, PolarityNeg, PolarityRnd, PolaritySaved:
	default:
		return errors.Errorf("unknown polarity mode %q", c.PolarityMode)
	}
	for _, schedule := range []string{c.SimplifyScheduleStartup, c.SimplifyScheduleNonstartup} {
		if _, err := parseSchedule(schedule); err != nil {
			return err
		}
	}
	return nil
}

// parseSchedule splits a schedule description into its step tokens.
func parseSchedule(schedule string) ([]string, error) {
	var steps []string
	for _, tok := range strings.Split(schedule, ",") {
		tok = strings.TrimSpace(tok)
		if tok == "" {
			continue
		}
		if _, ok := scheduleSteps[tok]; !ok {
			return nil, errors.Errorf("unknown simplification step %q", tok)
		}
		steps = append(steps, tok)
	}
	return steps, nil
}
