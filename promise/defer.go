package promise

// Deferred is a Promise settled explicitly by its owner.
type Deferred[T any] struct {
	promise *Promise[T]
}

func (d Deferred[T]) Promise() *Promise[T] {
	return d.promise
}

func (d Deferred[T]) Resolve(resolution T) {
	d.promise.resolve(resolution)
}

func (d Deferred[T]) Reject(err error) {
	d.promise.reject(err)
}

// Defer creates a Deferred computation.
func Defer[T any]() Deferred[T] {
	return Deferred[T]{&Promise[T]{
		base: base{ch: make(chan struct{})},
	}}
}
