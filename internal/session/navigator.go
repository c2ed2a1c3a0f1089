package session

import (
	"context"
	"sync"
)

// Navigator performs the side-effect navigation after login and logout.
type Navigator interface {
	Navigate(ctx context.Context, path string)
}

// NavigatorFunc adapts a function to Navigator.
type NavigatorFunc func(ctx context.Context, path string)

// Navigate calls f.
func (f NavigatorFunc) Navigate(ctx context.Context, path string) {
	f(ctx, path)
}

type nopNavigator struct{}

func (nopNavigator) Navigate(context.Context, string) {}

type redirectKey struct{}

// Redirect captures the navigation requested while serving one request.
type Redirect struct {
	mu   sync.Mutex
	path string
}

// Path returns the last requested path, or "".
func (r *Redirect) Path() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.path
}

// WithRedirect returns a context carrying an empty Redirect.
func WithRedirect(ctx context.Context) (context.Context, *Redirect) {
	r := &Redirect{}
	return context.WithValue(ctx, redirectKey{}, r), r
}

// RequestNavigator records navigation into the Redirect carried by ctx.
// Calls on a context without one are dropped.
var RequestNavigator Navigator = NavigatorFunc(func(ctx context.Context, path string) {
	if r, ok := ctx.Value(redirectKey{}).(*Redirect); ok {
		r.mu.Lock()
		r.path = path
		r.mu.Unlock()
	}
})
