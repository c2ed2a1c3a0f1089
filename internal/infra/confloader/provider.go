// Package confloader provides configuration loading mechanism.
package confloader

import (
	"errors"

	"github.com/knadh/koanf/maps"
)

// ErrReadBytesNotSupported is returned when ReadBytes is called on a map provider.
var ErrReadBytesNotSupported = errors.New("confloader: map provider only supports Read()")

// mapProvider loads configuration from a flat map with dotted keys
// ("api.base_url") or from an already nested map.
type mapProvider map[string]any

// ReadBytes is not supported; koanf falls back to Read().
func (m mapProvider) ReadBytes() ([]byte, error) {
	return nil, ErrReadBytesNotSupported
}

// Read returns the configuration map, unflattening dotted keys.
func (m mapProvider) Read() (map[string]any, error) {
	return maps.Unflatten(m, "."), nil
}
