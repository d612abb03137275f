// Package wellness computes the 0-100 resonance score from a day's
// subjective ratings.
package wellness

import (
	"math"

	"go.uber.org/zap"

	"resonanceAPI/internal/types/checkin"
	"resonanceAPI/utils"
)

const neutral = 5.0

// Input carries the 0-10 factor ratings. Nil means "not answered" and is
// scored as neutral.
type Input struct {
	Mood       *float64 `json:"mood,omitempty"`
	Energy     *float64 `json:"energy,omitempty"`
	Gratitude  *float64 `json:"gratitude,omitempty"`
	GoodDeeds  *float64 `json:"goodDeeds,omitempty"`
	Reflection *float64 `json:"reflection,omitempty"`

	Sleep      *float64 `json:"sleep,omitempty"`
	Stress     *float64 `json:"stress,omitempty"`
	Purpose    *float64 `json:"purpose,omitempty"`
	Resilience *float64 `json:"resilience,omitempty"`
	Connection *float64 `json:"connection,omitempty"`
	Movement   *float64 `json:"movement,omitempty"`
	Focus      *float64 `json:"focus,omitempty"`
}

func (in Input) value(f Factor) *float64 {
	switch f {
	case FactorMood:
		return in.Mood
	case FactorEnergy:
		return in.Energy
	case FactorGratitude:
		return in.Gratitude
	case FactorGoodDeeds:
		return in.GoodDeeds
	case FactorReflection:
		return in.Reflection
	case FactorSleep:
		return in.Sleep
	case FactorStress:
		return in.Stress
	case FactorPurpose:
		return in.Purpose
	case FactorResilience:
		return in.Resilience
	case FactorConnection:
		return in.Connection
	case FactorMovement:
		return in.Movement
	case FactorFocus:
		return in.Focus
	}
	return nil
}

type Options struct {
	Mode               Mode       `json:"mode,omitempty"`
	HormonalShiftToday bool       `json:"hormonalShiftToday,omitempty"`
	Overrides          *Overrides `json:"overrides,omitempty"`
}

type Result struct {
	Score         int                `json:"score"`
	Mode          Mode               `json:"mode"`
	Version       string             `json:"version"`
	Adapted       bool               `json:"adapted"`
	Band          string             `json:"band"`
	Affirmation   string             `json:"affirmation"`
	Contributions map[Factor]float64 `json:"contributions"`
}

// Scorer resolves a mode to its preset and scores inputs against it.
type Scorer struct {
	presets map[Mode]Config
	logger  *zap.Logger
}

// NewScorer builds a scorer over the pilot and extended presets. Extra
// configs replace the preset with the same mode.
func NewScorer(logger *zap.Logger, configs ...Config) *Scorer {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Scorer{
		presets: map[Mode]Config{
			ModePilot:    PilotConfig(),
			ModeExtended: ExtendedConfig(),
		},
		logger: logger,
	}
	for _, c := range configs {
		s.presets[c.Mode] = c.clone()
	}
	return s
}

// Config returns a copy of the preset for mode, falling back to pilot.
func (s *Scorer) Config(mode Mode) Config {
	if c, ok := s.presets[mode]; ok {
		return c.clone()
	}
	return s.presets[ModePilot].clone()
}

func (s *Scorer) Score(in Input, opts Options) Result {
	cfg := s.Config(opts.Mode).WithOverrides(opts.Overrides)
	s.logger.Debug("scoring wellness input",
		zap.String("mode", string(cfg.Mode)),
		zap.String("config_version", cfg.Version),
		zap.Bool("adapted", opts.HormonalShiftToday),
		zap.Bool("overridden", !opts.Overrides.empty()),
	)
	return Compute(cfg, in, opts.HormonalShiftToday)
}

// ComputeScore scores in against the default presets.
func ComputeScore(in Input, opts Options) Result {
	return NewScorer(nil).Score(in, opts)
}

// Compute is the pure scoring pass over an explicit config.
func Compute(cfg Config, in Input, adapt bool) Result {
	contributions := make(map[Factor]float64, len(cfg.Factors))
	total := 0.0

	for _, fc := range cfg.Factors {
		v := utils.Clamp(utils.FloatOr(in.value(fc.Factor), neutral), 0, 10)
		norm := (v - neutral) / neutral
		if fc.Inverse {
			norm = -norm
		}
		c := norm * fc.Weight * fc.Multiplier

		floor := fc.PenaltyCap
		if adapt {
			if ac, ok := cfg.Adaptation.PenaltyCaps[fc.Factor]; ok {
				if floor == nil || ac > *floor {
					floor = &ac
				}
			}
		}
		if floor != nil && c < *floor {
			c = *floor
		}

		// the boost only rewards effort; it never deepens a penalty
		if adapt && c > 0 {
			if b, ok := cfg.Adaptation.AgencyBoost[fc.Factor]; ok {
				c *= b
			}
		}

		contributions[fc.Factor] = utils.RoundTo(c, 2)
		total += c
	}

	score := int(math.Round(utils.Clamp(cfg.Baseline+total, 0, 100)))
	band := cfg.BandFor(score)
	return Result{
		Score:         score,
		Mode:          cfg.Mode,
		Version:       cfg.Version,
		Adapted:       adapt,
		Band:          band.Name,
		Affirmation:   band.Affirmation,
		Contributions: contributions,
	}
}

// InputFromRecord maps a check-in onto scorer factors. Sleep hours peak at
// 8h (10) and lose 2.5 points per hour away from it; exercise minutes map to
// movement at 6 minutes per point.
func InputFromRecord(r checkin.Record) Input {
	in := Input{
		Mood:       r.Mood,
		Energy:     r.Energy,
		Gratitude:  r.Gratitude,
		GoodDeeds:  r.GoodDeeds,
		Reflection: r.Reflection,
		Stress:     r.StressLevel,
		Purpose:    r.Purpose,
		Resilience: r.ResilienceSelfReport,
		Connection: r.Connection,
		Focus:      r.Focus,
	}
	if r.Sleep != nil && !math.IsNaN(*r.Sleep) {
		in.Sleep = utils.Float(utils.Clamp(10-math.Abs(*r.Sleep-8)*2.5, 0, 10))
	}
	if r.Exercise != nil && !math.IsNaN(*r.Exercise) {
		in.Movement = utils.Float(utils.Clamp(*r.Exercise/6, 0, 10))
	}
	return in
}

// OptionsFromRecord carries the record's adaptation flag into scorer options.
func OptionsFromRecord(r checkin.Record, mode Mode) Options {
	return Options{Mode: mode, HormonalShiftToday: r.HormonalShiftToday}
}
