package dedupe

// Option applies a configuration option to the in-memory deduper.
type Option func(*inMemoryDeduper)

// WithKeyFunc sets how identifiers are normalized before comparison.
// The default ignores case and repeated whitespace.
func WithKeyFunc(key func(string) string) Option {
	return func(d *inMemoryDeduper) {
		if key != nil {
			d.key = key
		}
	}
}
