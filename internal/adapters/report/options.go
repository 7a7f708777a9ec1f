package report

// Option applies a configuration option to the Writer.
type Option func(*Writer)

// WithDir sets the output directory. It is created on first write.
func WithDir(dir string) Option {
	return func(w *Writer) {
		if dir != "" {
			w.dir = dir
		}
	}
}

// WithFormat selects csv or txt output.
func WithFormat(format string) Option {
	return func(w *Writer) {
		if format != "" {
			w.format = format
		}
	}
}

// WithOverwrite replaces existing files instead of picking a numbered name.
func WithOverwrite(overwrite bool) Option {
	return func(w *Writer) {
		w.overwrite = overwrite
	}
}
