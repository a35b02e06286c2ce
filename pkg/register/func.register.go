// Package register collects setup hooks keyed by an arbitrary value, so store
// implementations can attach themselves to a provider from their own init().
package register

import "sync"

type funcRegister struct {
	handlers map[any][]any
	locker   sync.RWMutex
}

var fr = &funcRegister{
	handlers: make(map[any][]any),
}

type Handler[T any] func(T)

func RegisterFunc[T any](key any, handler Handler[T]) {
	fr.locker.Lock()
	fr.handlers[key] = append(fr.handlers[key], handler)
	fr.locker.Unlock()
}

// ResolveFuncHandlers returns the handlers registered under key in
// registration order, skipping those registered for another T.
func ResolveFuncHandlers[T any](key any) []Handler[T] {
	fr.locker.RLock()
	defer fr.locker.RUnlock()

	var result []Handler[T]
	for _, v := range fr.handlers[key] {
		if h, ok := v.(Handler[T]); ok {
			result = append(result, h)
		}
	}
	return result
}
