package promise

import (
	"context"
	"fmt"
	"sync"
)

// Adapted from https://github.com/chebyrash/promise to give
// asynchronous handlers a result that can be inspected reflectively.

type (
	// Promise represents the eventual completion (or failure)
	// of an asynchronous operation and its resulting value.
	Promise[T any] struct {
		base
		value T
	}

	base struct {
		err      error
		ctx      context.Context
		cancel   context.CancelFunc
		onCancel []func()
		ch       chan struct{}
		once     sync.Once
	}

	// CanceledError reports a Promise canceled before completion.
	CanceledError struct {
		cause error
	}
)


// New starts executor on its own goroutine and returns
// the Promise it will settle.
func New[T any](
	ctx      context.Context,
	executor func(resolve func(T), reject func(error), onCancel func(func())),
) *Promise[T] {
	if executor == nil {
		panic("missing executor")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	p := &Promise[T]{}
	p.ch = make(chan struct{})
	p.ctx, p.cancel = context.WithCancel(ctx)

	go func() {
		defer p.handlePanic()
		executor(p.resolve, p.reject, func(onCancel func()) {
			if onCancel != nil {
				p.onCancel = append(p.onCancel, onCancel)
			}
		})
	}()

	return p
}

// Run executes fun asynchronously and settles the Promise
// with its outcome.
func Run[T any](
	ctx context.Context,
	fun func(context.Context) (T, error),
) *Promise[T] {
	if fun == nil {
		panic("fun cannot be nil")
	}
	return New(ctx, func(resolve func(T), reject func(error), _ func(func())) {
		if res, err := fun(ctx); err != nil {
			reject(err)
		} else {
			resolve(res)
		}
	})
}

// Reject creates a Promise in the rejected state.
func Reject[T any](err error) *Promise[T] {
	return &Promise[T]{base: base{err: err}}
}


// Promise

func (p *Promise[T]) Cancel() {
	p.once.Do(func() {
		p.doCancel()
	})
}

// Await blocks until the Promise settles.
func (p *Promise[T]) Await() (T, error) {
	if ch := p.ch; ch != nil {
		if ctx := p.ctx; ctx != nil {
			select {
			case <-ctx.Done():
				p.Cancel()
			case <-ch:
			}
		} else {
			<-ch
		}
	}
	return p.value, p.err
}

// AwaitContext blocks until the Promise settles or ctx is done.
// The Promise is not canceled when ctx is done.
func (p *Promise[T]) AwaitContext(ctx context.Context) (T, error) {
	if ctx == nil {
		return p.Await()
	}
	if ch := p.ch; ch != nil {
		select {
		case <-ctx.Done():
			var zero T
			return zero, ctx.Err()
		case <-ch:
		}
	}
	return p.value, p.err
}

func (p *Promise[T]) resolve(value T) {
	p.once.Do(func() {
		if ctx := p.ctx; ctx != nil && ctx.Err() != nil {
			p.doCancel()
			return
		}
		p.value = value
		if ch := p.ch; ch != nil {
			close(ch)
		}
	})
}

func (p *Promise[T]) reject(err error) {
	p.once.Do(func() {
		if ctx := p.ctx; ctx != nil && ctx.Err() != nil {
			p.doCancel()
			return
		}
		p.err = err
		if ch := p.ch; ch != nil {
			close(ch)
		}
	})
}

func (p *Promise[T]) doCancel() {
	if p.cancel != nil {
		p.cancel()
	}
	var cause error
	if ctx := p.ctx; ctx != nil {
		cause = context.Cause(ctx)
	}
	p.err = CanceledError{cause}
	if ch := p.ch; ch != nil {
		close(ch)
	}
	for _, onCancel := range p.onCancel {
		func() {
			defer func() {
				recover() // ignore any panics
			}()
			onCancel()
		}()
	}
}

func (p *Promise[T]) handlePanic() {
	r := recover()
	if r == nil {
		return
	}
	switch v := r.(type) {
	case error:
		p.reject(v)
	default:
		p.reject(fmt.Errorf("%+v", v))
	}
}


// CanceledError

func (e CanceledError) Cause() error {
	return e.cause
}

func (e CanceledError) Error() string {
	if cause := e.cause; cause != nil {
		return "promise: canceled: " + cause.Error()
	}
	return "promise: canceled"
}

func (e CanceledError) Unwrap() error {
	return e.cause
}
