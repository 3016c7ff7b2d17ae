package cache

import (
	"net/url"
)

// RoutePrefix starts every persisted route key.
const RoutePrefix = "route-cache-"

// Keyer generates persisted route keys.
type Keyer interface {
	RouteKey(floor, from, to string) string
}

// DefaultKeyer produces route-cache-<floor>-<from>-<to> keys with from and
// to query-escaped.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the default keyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

// RouteKey implements Keyer.
func (DefaultKeyer) RouteKey(floor, from, to string) string {
	return RoutePrefix + floor + "-" + url.QueryEscape(from) + "-" + url.QueryEscape(to)
}

// ScopedKeyer wraps a Keyer with a prefix so that several buildings can
// share one persisted backend.
//
// Example usage:
//
//	keyer := cache.NewScopedKeyer(cache.NewDefaultKeyer(), "campus-north:")
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer with a prefix.
// The prefix is prepended to all generated keys.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{
		inner:  inner,
		prefix: prefix,
	}
}

// RouteKey generates a prefixed route key.
func (k *ScopedKeyer) RouteKey(floor, from, to string) string {
	return k.prefix + k.inner.RouteKey(floor, from, to)
}
