package client

import "context"

// Result is the single outcome of an asynchronous call.
type Result[T any] struct {
	Value T
	Err   error
}

// Promise delivers exactly one Result and is then closed.
type Promise[T any] <-chan Result[T]

// Await blocks until the promise settles or ctx is done. When ctx finishes
// first the late result is dropped and a KindCancelled error is returned.
func (p Promise[T]) Await(ctx context.Context) (T, error) {
	select {
	case r := <-p:
		return r.Value, r.Err
	case <-ctx.Done():
		var zero T
		return zero, cancelled(ctx)
	}
}

// goAsync runs f in its own goroutine. A value produced after ctx was
// cancelled is replaced by a KindCancelled error so that no caller applies
// state it no longer asked for.
func goAsync[T any](ctx context.Context, f func(context.Context) (T, error)) Promise[T] {
	ch := make(chan Result[T], 1)
	go func() {
		defer close(ch)
		v, err := f(ctx)
		if ctx.Err() != nil {
			ch <- Result[T]{Err: cancelled(ctx)}
			return
		}
		if err != nil {
			ch <- Result[T]{Err: err}
			return
		}
		ch <- Result[T]{Value: v}
	}()
	return ch
}

// Ok returns an already settled, successful promise.
func Ok[T any](value T) Promise[T] {
	ch := make(chan Result[T], 1)
	ch <- Result[T]{Value: value}
	close(ch)
	return ch
}

// Failed returns an already settled, failed promise.
func Failed[T any](err error) Promise[T] {
	ch := make(chan Result[T], 1)
	ch <- Result[T]{Err: err}
	close(ch)
	return ch
}
