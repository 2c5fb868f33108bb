package timeline

import (
	"time"

	"github.com/easelhq/timeline/codec"
	"github.com/easelhq/timeline/notify"
)

// Default configuration values.
const (
	DefaultMaxEntries           = 100
	DefaultMemoryBudgetMB       = 50
	DefaultCompressionThreshold = 1024
	DefaultAutoSaveInterval     = 30 * time.Second
	DefaultGroupWindow          = time.Second
)

// config holds the fixed-for-lifetime settings of a Manager.
type config struct {
	maxEntries           int
	memoryBudget         int64 // bytes
	compress             bool
	compressionThreshold int
	autoSave             bool
	autoSaveInterval     time.Duration
	groupSimilar         bool
	groupWindow          time.Duration

	codec      codec.Codec
	compressor codec.Compressor
	sink       Sink
	notifier   *notify.Notifier
}

func defaultConfig() config {
	return config{
		maxEntries:           DefaultMaxEntries,
		memoryBudget:         DefaultMemoryBudgetMB * 1024 * 1024,
		compressionThreshold: DefaultCompressionThreshold,
		autoSaveInterval:     DefaultAutoSaveInterval,
		groupWindow:          DefaultGroupWindow,
		codec:                codec.Msgpack{},
		compressor:           codec.Zstd{},
	}
}

// Option configures a Manager during creation.
type Option func(*config)

// WithMaxEntries caps the number of retained states.
func WithMaxEntries(max int) Option {
	return func(c *config) {
		if max > 0 {
			c.maxEntries = max
		}
	}
}

// WithMemoryBudget caps the aggregate stored payload size, in megabytes.
func WithMemoryBudget(mb float64) Option {
	return func(c *config) {
		if mb > 0 {
			c.memoryBudget = int64(mb * 1024 * 1024)
		}
	}
}

// WithCompression enables payload compression for payloads whose encoded
// size is at least threshold bytes.
func WithCompression(threshold int) Option {
	return func(c *config) {
		c.compress = true
		if threshold > 0 {
			c.compressionThreshold = threshold
		}
	}
}

// WithAutoSave periodically exports the timeline to sink.
// The background timer starts with New and stops with Close.
func WithAutoSave(sink Sink, interval time.Duration) Option {
	return func(c *config) {
		if sink == nil {
			return
		}
		c.autoSave = true
		c.sink = sink
		if interval > 0 {
			c.autoSaveInterval = interval
		}
	}
}

// WithGroupSimilar coalesces consecutive states of the same action type
// that arrive within window of each other into one undo step.
func WithGroupSimilar(window time.Duration) Option {
	return func(c *config) {
		c.groupSimilar = true
		if window > 0 {
			c.groupWindow = window
		}
	}
}

// WithCodec sets the payload codec. Default is MessagePack.
func WithCodec(cd codec.Codec) Option {
	return func(c *config) {
		if cd != nil {
			c.codec = cd
		}
	}
}

// WithCompressor sets the compression algorithm. Default is Zstandard.
func WithCompressor(cp codec.Compressor) Option {
	return func(c *config) {
		if cp != nil {
			c.compressor = cp
		}
	}
}

// WithNotifier publishes timeline change events to n.
func WithNotifier(n *notify.Notifier) Option {
	return func(c *config) {
		c.notifier = n
	}
}
