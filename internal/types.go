// Package internal holds the contracts shared by every component of the
// employee directory: env-map configuration, open/close lifecycle and
// cache clearing, plus the correlation-id context plumbing.
package internal

import "context"

// Configurer takes its settings from an environment map; Configure is
// expected to be called before Open.
type Configurer interface {
	Configure(envs map[string]string) error
}

type Opener interface {
	Open(ctx context.Context) error
	Closer
}

type Closer interface {
	Close(ctx context.Context) error
}

// Clearer empties a component's stored state (e.g. a cache backend).
type Clearer interface {
	Clear(ctx context.Context) error
}
