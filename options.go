package elf

import "github.com/go-kit/log"

// Option configures how a file is opened and parsed.
type Option func(*options)

type options struct {
	logger        log.Logger
	strictVersion bool
	maxFileSize   int64 // 0 means unlimited
}

func defaultOptions() options {
	return options{logger: log.NewNopLogger()}
}

// WithLogger sets the logger that receives debug and warning records while
// parsing.
func WithLogger(l log.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithStrictVersion rejects files whose EI_VERSION or e_version is not
// EV_CURRENT with ErrUnsupportedVersion.
func WithStrictVersion() Option {
	return func(o *options) {
		o.strictVersion = true
	}
}

// WithMaxFileSize makes NewFile refuse files larger than n bytes.
func WithMaxFileSize(n int64) Option {
	return func(o *options) {
		o.maxFileSize = n
	}
}
