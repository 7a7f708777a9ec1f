package surveygen

// Option applies a configuration option to the Generator.
type Option func(*Generator)

// WithRespondents sets how many rows are generated.
func WithRespondents(n int) Option {
	return func(g *Generator) {
		if n >= 0 {
			g.respondents = n
		}
	}
}

// WithSeed sets the random seed. The same seed and mapping always produce
// the same survey.
func WithSeed(seed int64) Option {
	return func(g *Generator) {
		g.seed = seed
	}
}

// WithNoise sets the chance, between 0 and 1, that a list answer carries a
// skill the mapping does not know.
func WithNoise(p float64) Option {
	return func(g *Generator) {
		if p >= 0 && p <= 1 {
			g.noise = p
		}
	}
}
