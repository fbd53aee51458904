package subduction

import "gopkg.in/yaml.v3"

// DegradationPolicyKind selects how the scheduler reacts to observed
// deadline misses and hits.
type DegradationPolicyKind uint8

const (
	// DegradationAdaptive adjusts pipeline depth based on consecutive
	// miss/hit streaks.
	DegradationAdaptive DegradationPolicyKind = iota
	// DegradationFixed never changes pipeline depth.
	DegradationFixed
)

// DegradationPolicy configures how the scheduler reacts to deadline misses
// and hits. Yaml tags let a host application load a SchedulerConfig from a
// file; the core itself never reads one (spec §6: "no CLI, no environment
// variables, no files at the core layer").
type DegradationPolicy struct {
	Kind              DegradationPolicyKind `yaml:"kind"`
	MissThreshold     uint32                `yaml:"miss_threshold,omitempty"`
	RecoveryThreshold uint32                `yaml:"recovery_threshold,omitempty"`
}

// AdaptiveDegradation builds an Adaptive{miss_threshold, recovery_threshold}
// policy.
func AdaptiveDegradation(missThreshold, recoveryThreshold uint32) DegradationPolicy {
	return DegradationPolicy{
		Kind:              DegradationAdaptive,
		MissThreshold:     missThreshold,
		RecoveryThreshold: recoveryThreshold,
	}
}

// FixedDegradation builds a Fixed policy: counters are never consulted and
// depth never changes.
func FixedDegradation() DegradationPolicy {
	return DegradationPolicy{Kind: DegradationFixed}
}

// SchedulerConfig configures a Scheduler's bounds and adaptive behavior.
type SchedulerConfig struct {
	InitialDepth      uint8              `yaml:"initial_depth"`
	MinDepth          uint8              `yaml:"min_depth"`
	MaxDepth          uint8              `yaml:"max_depth"`
	EmaAlpha          float32            `yaml:"ema_alpha"`
	SafetyMultiplier  float32            `yaml:"safety_multiplier"`
	NominalLatency    Duration           `yaml:"nominal_latency"`
	DegradationPolicy DegradationPolicy  `yaml:"degradation_policy"`
}

// LoadConfig parses a SchedulerConfig from YAML. The core itself never
// reads from disk or environment (spec §6: "no CLI, no environment
// variables, no files at the core layer"); this exists so a host
// application can keep its scheduler tuning in a config file and hand the
// parsed bytes to the core.
func LoadConfig(data []byte) (SchedulerConfig, error) {
	var cfg SchedulerConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return SchedulerConfig{}, err
	}
	return cfg, nil
}

// MacOSConfig is the "predictive platform" profile: backends with a
// present-time prediction (CVDisplayLink/CADisplayLink style).
func MacOSConfig() SchedulerConfig {
	return SchedulerConfig{
		InitialDepth:      2,
		MinDepth:          1,
		MaxDepth:          3,
		EmaAlpha:          0.2,
		SafetyMultiplier:  1.5,
		NominalLatency:    DurationZero,
		DegradationPolicy: AdaptiveDegradation(3, 10),
	}
}

// WebConfig is the "pacing-only platform" profile: backends with no
// present-time prediction (requestAnimationFrame style), nominal_latency
// pinned near one 60Hz frame interval (~16ms).
func WebConfig() SchedulerConfig {
	return SchedulerConfig{
		InitialDepth:      2,
		MinDepth:          1,
		MaxDepth:          3,
		EmaAlpha:          0.15,
		SafetyMultiplier:  2.0,
		NominalLatency:    Duration(16_000_000),
		DegradationPolicy: AdaptiveDegradation(3, 10),
	}
}

// ema is a lazily-initialized exponential moving average.
type ema struct {
	value       float32
	alpha       float32
	initialized bool
}

func (e *ema) update(sample float32) {
	if !e.initialized {
		e.value = sample
		e.initialized = true
		return
	}
	e.value = e.alpha*sample + (1-e.alpha)*e.value
}

func (e *ema) get() float32 { return e.value }

// Scheduler converts capability-graded display ticks into frame plans and
// adapts pipeline depth and a build-cost safety margin from observed
// feedback.
type Scheduler struct {
	config SchedulerConfig

	pipelineDepth    uint8
	buildCostEma     ema
	safetyMarginTick uint64
	consecutiveMiss  uint32
	consecutiveHit   uint32
}

// NewScheduler builds a scheduler from config.
func NewScheduler(config SchedulerConfig) *Scheduler {
	return &Scheduler{
		config:        config,
		pipelineDepth: config.InitialDepth,
		buildCostEma:  ema{alpha: config.EmaAlpha},
	}
}

// Plan produces a FramePlan from a tick and present hints.
func (s *Scheduler) Plan(tick FrameTick, hints PresentHints) FramePlan {
	var target HostTime
	hasTarget := false
	if hints.HasDesiredPresent {
		target, hasTarget = hints.DesiredPresent, true
	} else if tick.HasPredictedPresent {
		target, hasTarget = tick.PredictedPresent, true
	}

	plan := FramePlan{
		CommitDeadline: hints.LatestCommit,
		PipelineDepth:  s.pipelineDepth,
		Output:         tick.Output,
		FrameIndex:     tick.FrameIndex,
	}

	switch tick.Confidence {
	case Predictive, Estimated:
		if hasTarget {
			plan.PresentTime, plan.HasPresentTime = target, true
			plan.SemanticTime = target
		} else {
			plan.SemanticTime = tick.Now
		}
	default: // PacingOnly
		plan.SemanticTime = tick.Now.SaturatingAdd(s.config.NominalLatency)
	}
	return plan
}

// Observe folds feedback from a presented frame into the scheduler's
// adaptive state: the build-cost EMA, the derived safety margin, and
// (depending on the configured DegradationPolicy) pipeline depth.
func (s *Scheduler) Observe(feedback PresentFeedback) {
	buildTicks := feedback.SubmittedAt.SaturatingDurationSince(feedback.BuildStart).Ticks()
	s.buildCostEma.update(float32(buildTicks))
	s.safetyMarginTick = uint64(s.buildCostEma.get() * s.config.SafetyMultiplier)

	if s.config.DegradationPolicy.Kind != DegradationAdaptive {
		return
	}
	missThreshold := s.config.DegradationPolicy.MissThreshold
	recoveryThreshold := s.config.DegradationPolicy.RecoveryThreshold

	if !feedback.HasMissedDeadline {
		s.consecutiveMiss = 0
		s.consecutiveHit = 0
		return
	}

	if feedback.MissedDeadline {
		s.consecutiveMiss++
		s.consecutiveHit = 0
		if s.consecutiveMiss >= missThreshold && s.pipelineDepth < s.config.MaxDepth {
			s.pipelineDepth++
			s.consecutiveMiss = 0
		}
		return
	}

	s.consecutiveHit++
	s.consecutiveMiss = 0
	if s.consecutiveHit >= recoveryThreshold && s.pipelineDepth > s.config.MinDepth {
		s.pipelineDepth--
		s.consecutiveHit = 0
	}
}

// PipelineDepth returns the scheduler's current pipeline depth.
func (s *Scheduler) PipelineDepth() uint8 { return s.pipelineDepth }

// SafetyMarginTicks returns the current build-cost safety margin.
func (s *Scheduler) SafetyMarginTicks() uint64 { return s.safetyMarginTick }
