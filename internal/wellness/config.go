package wellness

type Mode string

const (
	ModePilot    Mode = "pilot"
	ModeExtended Mode = "extended"
)

// ParseMode maps a user-supplied string to a known mode. Anything unknown
// falls back to the pilot profile.
func ParseMode(s string) Mode {
	switch Mode(s) {
	case ModeExtended:
		return ModeExtended
	default:
		return ModePilot
	}
}

type Factor string

const (
	FactorMood       Factor = "mood"
	FactorEnergy     Factor = "energy"
	FactorGratitude  Factor = "gratitude"
	FactorGoodDeeds  Factor = "good_deeds"
	FactorReflection Factor = "reflection"
	FactorSleep      Factor = "sleep"
	FactorStress     Factor = "stress"
	FactorPurpose    Factor = "purpose"
	FactorResilience Factor = "resilience"
	FactorConnection Factor = "connection"
	FactorMovement   Factor = "movement"
	FactorFocus      Factor = "focus"
)

// FactorConfig describes how one 0-10 input feeds the score.
type FactorConfig struct {
	Factor     Factor   `json:"factor"`
	Weight     float64  `json:"weight"`
	Multiplier float64  `json:"multiplier"`
	PenaltyCap *float64 `json:"penaltyCap,omitempty"` // most negative contribution allowed
	Inverse    bool     `json:"inverse,omitempty"`
}

// AdaptationConfig is applied on days flagged with a hormonal shift.
type AdaptationConfig struct {
	PenaltyCaps map[Factor]float64 `json:"penaltyCaps"`
	AgencyBoost map[Factor]float64 `json:"agencyBoost"`
}

type Band struct {
	Name        string `json:"name"`
	Min         int    `json:"min"`
	Affirmation string `json:"affirmation"`
}

// Config is an immutable scoring profile. Presets are built fresh on every
// call so callers can hold several side by side.
type Config struct {
	Mode       Mode             `json:"mode"`
	Version    string           `json:"version"`
	Baseline   float64          `json:"baseline"`
	Factors    []FactorConfig   `json:"factors"`
	Adaptation AdaptationConfig `json:"adaptation"`
	Bands      []Band           `json:"bands"` // descending by Min
}

func capOf(v float64) *float64 { return &v }

func defaultBands() []Band {
	return []Band{
		{Name: "radiant", Min: 85, Affirmation: "You are glowing today. Share some of that light."},
		{Name: "thriving", Min: 70, Affirmation: "Good momentum. Keep doing what works."},
		{Name: "balanced", Min: 50, Affirmation: "Steady ground. Small habits keep it that way."},
		{Name: "low", Min: 30, Affirmation: "A softer day. Be gentle with yourself."},
		{Name: "depleted", Min: 0, Affirmation: "Running on empty. Rest counts as progress."},
	}
}

func defaultAdaptation(mood, energy, sleep float64) AdaptationConfig {
	return AdaptationConfig{
		PenaltyCaps: map[Factor]float64{
			FactorMood:   mood,
			FactorEnergy: energy,
			FactorSleep:  sleep,
		},
		AgencyBoost: map[Factor]float64{
			FactorGratitude:  1.2,
			FactorGoodDeeds:  1.15,
			FactorReflection: 1.1,
		},
	}
}

// PilotConfig is the five-factor profile.
func PilotConfig() Config {
	return Config{
		Mode:     ModePilot,
		Version:  "pilot-2026.1",
		Baseline: 50,
		Factors: []FactorConfig{
			{Factor: FactorMood, Weight: 12, Multiplier: 1, PenaltyCap: capOf(-8)},
			{Factor: FactorEnergy, Weight: 10, Multiplier: 1, PenaltyCap: capOf(-6)},
			{Factor: FactorGratitude, Weight: 10, Multiplier: 1},
			{Factor: FactorGoodDeeds, Weight: 8, Multiplier: 1},
			{Factor: FactorReflection, Weight: 10, Multiplier: 1},
		},
		Adaptation: defaultAdaptation(-5, -4, -4),
		Bands:      defaultBands(),
	}
}

// ExtendedConfig adds sleep, stress (inverse), purpose, resilience,
// connection, movement and focus to the pilot factors.
func ExtendedConfig() Config {
	return Config{
		Mode:     ModeExtended,
		Version:  "extended-2026.1",
		Baseline: 50,
		Factors: []FactorConfig{
			{Factor: FactorMood, Weight: 7, Multiplier: 1, PenaltyCap: capOf(-5)},
			{Factor: FactorEnergy, Weight: 6, Multiplier: 1, PenaltyCap: capOf(-4)},
			{Factor: FactorGratitude, Weight: 5, Multiplier: 1},
			{Factor: FactorGoodDeeds, Weight: 4, Multiplier: 1},
			{Factor: FactorReflection, Weight: 4, Multiplier: 1},
			{Factor: FactorSleep, Weight: 5, Multiplier: 1, PenaltyCap: capOf(-4)},
			{Factor: FactorStress, Weight: 4, Multiplier: 1, Inverse: true},
			{Factor: FactorPurpose, Weight: 4, Multiplier: 1},
			{Factor: FactorResilience, Weight: 3, Multiplier: 1},
			{Factor: FactorConnection, Weight: 4, Multiplier: 1},
			{Factor: FactorMovement, Weight: 2, Multiplier: 1},
			{Factor: FactorFocus, Weight: 2, Multiplier: 1},
		},
		Adaptation: defaultAdaptation(-3, -2.5, -2.5),
		Bands:      defaultBands(),
	}
}

// Overrides are field-level tweaks merged over a preset at call time.
type Overrides struct {
	Weights        map[Factor]float64 `json:"weights,omitempty"`
	Multipliers    map[Factor]float64 `json:"multipliers,omitempty"`
	PenaltyCaps    map[Factor]float64 `json:"penaltyCaps,omitempty"`
	AdaptationCaps map[Factor]float64 `json:"adaptationCaps,omitempty"`
	AgencyBoost    map[Factor]float64 `json:"agencyBoost,omitempty"`
}

func (o *Overrides) empty() bool {
	return o == nil || (len(o.Weights) == 0 && len(o.Multipliers) == 0 && len(o.PenaltyCaps) == 0 &&
		len(o.AdaptationCaps) == 0 && len(o.AgencyBoost) == 0)
}

// clone deep-copies c so merged overrides never leak into a preset.
func (c Config) clone() Config {
	out := c
	out.Factors = make([]FactorConfig, len(c.Factors))
	for i, fc := range c.Factors {
		if fc.PenaltyCap != nil {
			fc.PenaltyCap = capOf(*fc.PenaltyCap)
		}
		out.Factors[i] = fc
	}
	out.Adaptation.PenaltyCaps = make(map[Factor]float64, len(c.Adaptation.PenaltyCaps))
	for k, v := range c.Adaptation.PenaltyCaps {
		out.Adaptation.PenaltyCaps[k] = v
	}
	out.Adaptation.AgencyBoost = make(map[Factor]float64, len(c.Adaptation.AgencyBoost))
	for k, v := range c.Adaptation.AgencyBoost {
		out.Adaptation.AgencyBoost[k] = v
	}
	out.Bands = append([]Band(nil), c.Bands...)
	return out
}

// WithOverrides returns a copy of c with o merged in. Weights and
// multipliers are floored at 0, caps at most 0 and boosts at least 1, so an
// override cannot break monotonicity or make the adaptation pass punitive.
// Overrides for factors the profile does not use are ignored.
func (c Config) WithOverrides(o *Overrides) Config {
	out := c.clone()
	if o.empty() {
		return out
	}
	for i := range out.Factors {
		fc := &out.Factors[i]
		if w, ok := o.Weights[fc.Factor]; ok {
			fc.Weight = max(w, 0)
		}
		if m, ok := o.Multipliers[fc.Factor]; ok {
			fc.Multiplier = max(m, 0)
		}
		if pc, ok := o.PenaltyCaps[fc.Factor]; ok {
			fc.PenaltyCap = capOf(min(pc, 0))
		}
	}
	for k, v := range o.AdaptationCaps {
		out.Adaptation.PenaltyCaps[k] = min(v, 0)
	}
	for k, v := range o.AgencyBoost {
		out.Adaptation.AgencyBoost[k] = max(v, 1)
	}
	return out
}

// BandFor picks the band whose Min is the highest one not above score.
func (c Config) BandFor(score int) Band {
	best := Band{}
	found := false
	for _, b := range c.Bands {
		if score >= b.Min && (!found || b.Min > best.Min) {
			best = b
			found = true
		}
	}
	return best
}
