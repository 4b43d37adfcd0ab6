package indexed

// FutureOptions carries construction options for a Future.
type FutureOptions struct {
	// skipTimeBoundsCheck disables the per update ts_lower check on Append,
	// restoring a trusting, cheaper append for orchestrators that already
	// guarantee the bound.
	skipTimeBoundsCheck bool
}

type FutureOption func(*FutureOptions)

// WithoutTimeBoundsCheck disables the check that every appended update's time
// is at or after ts_lower. With the check off, an update below ts_lower is
// silently admitted and then silently dropped by snapshot filtering, so only
// use this when the caller upholds the bound itself.
func WithoutTimeBoundsCheck() FutureOption {
	return func(o *FutureOptions) {
		o.skipTimeBoundsCheck = true
	}
}
