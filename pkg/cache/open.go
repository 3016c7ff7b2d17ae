package cache

import (
	errs "github.com/matzehuels/indoorroute/pkg/errors"
)

// Backend names a persisted cache implementation.
type Backend string

const (
	BackendFile   Backend = "file"
	BackendBadger Backend = "badger"
	BackendRedis  Backend = "redis"
	BackendNone   Backend = "none"
)

// BackendOptions selects and configures a persisted backend.
type BackendOptions struct {
	Backend Backend
	Dir     string // file and badger
	Redis   RedisOptions
}

// Open returns the persisted backend described by opts. An empty backend
// name means file.
func Open(opts BackendOptions) (Cache, error) {
	switch opts.Backend {
	case BackendFile, "":
		return NewFileCache(opts.Dir)
	case BackendBadger:
		if opts.Dir == "" {
			return nil, errs.New(errs.ErrCodeInvalidConfig, "badger cache requires a directory")
		}
		return NewBadgerCache(opts.Dir)
	case BackendRedis:
		if opts.Redis.Addr == "" {
			return nil, errs.New(errs.ErrCodeInvalidConfig, "redis cache requires an address")
		}
		return NewRedisCache(opts.Redis), nil
	case BackendNone:
		return NewNullCache(), nil
	default:
		return nil, errs.New(errs.ErrCodeInvalidConfig, "unknown cache backend %q", opts.Backend)
	}
}
