package middleware

import "github.com/aretw0/enlyst/pkg/ports"

// Middleware allows wrapping an EventStore to add behavior.
type Middleware func(ports.EventStore) ports.EventStore

// Chain applies middlewares so that the first one sees the event first on Save.
func Chain(store ports.EventStore, mws ...Middleware) ports.EventStore {
	for i := len(mws) - 1; i >= 0; i-- {
		store = mws[i](store)
	}
	return store
}
