package grading

// Weight is what every charged requirement adds to the total.
const Weight = 20

const (
	DefaultPowerCapMin     = 800
	DefaultPowerCapCeiling = 75
)

// Scorer grades a drop against a target.
type Scorer interface {
	Evaluate(req GearEvaluationRequest) GearEvaluationResult
}

// Engine options

type Option func(*config)

type config struct {
	PowerCapMin     int // items below this power are capped
	PowerCapCeiling int // the cap itself, in percent
}

func WithPowerCap(minPower, ceiling int) Option {
	return func(c *config) { c.PowerCapMin, c.PowerCapCeiling = minPower, ceiling }
}

type defaultScorer struct {
	cfg config
}

// NewScorer returns a Scorer with the standard power cap unless overridden.
// The returned value holds no per-call state and is safe for concurrent use.
func NewScorer(opts ...Option) Scorer {
	cfg := config{
		PowerCapMin:     DefaultPowerCapMin,
		PowerCapCeiling: DefaultPowerCapCeiling,
	}
	for _, o := range opts {
		o(&cfg)
	}
	return &defaultScorer{cfg: cfg}
}

// Evaluate scores req with the default settings.
func Evaluate(req GearEvaluationRequest) GearEvaluationResult {
	return NewScorer().Evaluate(req)
}

func (s *defaultScorer) Evaluate(req GearEvaluationRequest) GearEvaluationResult {
	base, log := matchBase(req.Target.Base, req.Drop.Base)
	temper, temperLog := matchTemper(req.Target.Temper, req.Drop.Temper)
	aspect, aspectLog := matchAspect(req.Target.Aspect, req.Drop.Aspect)

	log = append(log, temperLog...)
	log = append(log, aspectLog...)
	return s.settle(base.add(temper).add(aspect), req.Drop.ItemPower, log)
}
