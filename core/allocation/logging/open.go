package logging

import "fmt"

// Options selects and configures a LogStore backend.
type Options struct {
	// Backend is "jsonl" or "sqlite".
	Backend string
	Path    string
	// MaxSizeMB enables rotation of the jsonl backend when positive.
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
}

// Open builds the LogStore described by opts.
func Open(opts Options) (LogStore, error) {
	switch opts.Backend {
	case "", "jsonl":
		if opts.MaxSizeMB > 0 {
			return NewRotatingJSONLStore(opts.Path, opts.MaxSizeMB, opts.MaxBackups, opts.MaxAgeDays)
		}
		return NewJSONLStore(opts.Path)
	case "sqlite":
		return NewSQLiteStore(opts.Path)
	default:
		return nil, fmt.Errorf("unknown log backend %s", opts.Backend)
	}
}
