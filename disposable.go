package mvc

// Disposable is implemented by controllers owning resources.
// Controllers removed from a Controllers collection are disposed.
type Disposable interface {
	Dispose()
}

type DisposableFunc func()

func (f DisposableFunc) Dispose() {
	f()
}
