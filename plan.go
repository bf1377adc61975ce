package batches

// Plan is a reusable, chainable set of options. Each With method returns a new
// Plan and leaves the receiver untouched, so a base plan can be shared between
// goroutines and specialised per call:
//
//	base := batches.NewPlan().WithMaxConcurrency(8)
//	res, err := batches.Map(ctx, src, op, base.WithOutOfOrder(true).Option())
//
// Options are validated as they are added. The first invalid one is kept as
// the plan's error; later With calls are ignored and the entry point given
// the plan fails with that error before doing any work.
type Plan struct {
	opts []Option
	err  error
}

// NewPlan creates a plan from opts.
func NewPlan(opts ...Option) *Plan {
	p := &Plan{}
	for _, opt := range opts {
		p = p.with(opt)
	}
	return p
}

func (p *Plan) with(opt Option) *Plan {
	if p == nil {
		p = &Plan{}
	}
	if p.err != nil || opt == nil {
		return p
	}
	opts := make([]Option, len(p.opts), len(p.opts)+1)
	copy(opts, p.opts)
	opts = append(opts, opt)
	if _, err := newConfig(opts); err != nil {
		return &Plan{opts: p.opts, err: err}
	}
	return &Plan{opts: opts}
}

func (p *Plan) WithMaxConcurrency(n int) *Plan { return p.with(WithMaxConcurrency(n)) }

func (p *Plan) WithOutOfOrder(enabled bool) *Plan { return p.with(WithOutOfOrder(enabled)) }

func (p *Plan) WithEstimatedResultSize(n int) *Plan { return p.with(WithEstimatedResultSize(n)) }

func (p *Plan) WithObserver(o Observer) *Plan { return p.with(WithObserver(o)) }

// Err returns the first validation error met while building the plan.
func (p *Plan) Err() error {
	if p == nil {
		return nil
	}
	return p.err
}

// Option bundles the plan into a single Option for Map, ForEach or Stream.
func (p *Plan) Option() Option {
	if p == nil {
		return nil
	}
	return func(cfg *config) error {
		if p.err != nil {
			return p.err
		}
		for _, opt := range p.opts {
			if err := opt(cfg); err != nil {
				return err
			}
		}
		return nil
	}
}
