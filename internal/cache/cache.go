// Package cache provee una abstracción mínima de key-value con TTL.
//
// Backends:
//   - memory (in-process, dev/testing)
//   - redis (distribuido, producción)
//
// El core la usa para dos cosas: marcar jti de reset tokens ya consumidos y
// ventanas de rate limiting.
package cache

import (
	"context"
	"errors"
	"time"
)

var ErrNotFound = errors.New("cache: not found")

// Client define las operaciones de cache.
type Client interface {
	// Get obtiene un valor. Retorna ErrNotFound si no existe.
	Get(ctx context.Context, key string) (string, error)

	// Set guarda un valor con TTL. Si ttl es 0, no expira.
	Set(ctx context.Context, key, value string, ttl time.Duration) error

	// Incr incrementa un contador y retorna el valor nuevo. Si la key no
	// existe, la crea en 1 con el TTL dado.
	Incr(ctx context.Context, key string, ttl time.Duration) (int64, error)

	// Delete elimina una key.
	Delete(ctx context.Context, key string) error

	// Exists verifica si una key existe.
	Exists(ctx context.Context, key string) (bool, error)

	// Ping verifica la conexión.
	Ping(ctx context.Context) error

	// Close cierra la conexión.
	Close() error
}
