package kmeans

const (
	// DefaultThreshold is the total movement below which a run stops early.
	// It is tuned for 8-bit channels.
	DefaultThreshold = 100
	// DefaultMaxEpochs bounds the number of epochs in a run.
	DefaultMaxEpochs = 300
)

// Config holds the stopping policy of a run.
type Config struct {
	// Threshold stops the run once an epoch's total movement drops below it.
	Threshold int64 `yaml:"threshold"`
	// MaxEpochs is the hard epoch limit.
	MaxEpochs int `yaml:"max_epochs"`
}

// DefaultConfig returns the stopping policy used when no option overrides it.
func DefaultConfig() Config {
	return Config{
		Threshold: DefaultThreshold,
		MaxEpochs: DefaultMaxEpochs,
	}
}

// Epoch describes one finished epoch.
type Epoch struct {
	Index    int
	Stride   int
	Sampled  int
	Movement int64
}

type options struct {
	cfg      Config
	observer func(Epoch)
}

// Option configures a run.
type Option func(*options)

// WithConfig replaces the whole stopping policy.
func WithConfig(cfg Config) Option {
	return func(o *options) {
		o.cfg = cfg
	}
}

// WithThreshold sets the convergence threshold.
func WithThreshold(threshold int64) Option {
	return func(o *options) {
		o.cfg.Threshold = threshold
	}
}

// WithMaxEpochs sets the epoch limit.
func WithMaxEpochs(n int) Option {
	return func(o *options) {
		o.cfg.MaxEpochs = n
	}
}

// WithObserver registers fn to be called after every epoch's update.
// fn runs on the caller's goroutine and must not touch the centroids.
func WithObserver(fn func(Epoch)) Option {
	return func(o *options) {
		o.observer = fn
	}
}
