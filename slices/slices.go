package slices

import (
	"fmt"
)

type MapFunc[IN, OUT any] interface {
	~func(int, IN) OUT | ~func(IN) OUT
}

// Map turns a []IN to a []OUT using a mapping function.
func Map[IN, OUT any, F MapFunc[IN, OUT]](in []IN, fun F) []OUT {
	if in == nil {
		return nil
	}
	f := func(i int, item IN) OUT {
		switch typ := any(fun).(type) {
		case func(int, IN) OUT:
			return typ(i, item)
		case func(IN) OUT:
			return typ(item)
		}
		panic(fmt.Sprintf("unrecognized Map function type %T", fun))
	}
	out := make([]OUT, len(in))
	for i, item := range in {
		out[i] = f(i, item)
	}
	return out
}

// IndexOf returns the index of v in s or -1 if missing.
func IndexOf[E comparable](s []E, v E) int {
	for i, s := range s {
		if v == s {
			return i
		}
	}
	return -1
}

// Remove returns s without the first occurrence of each item.
// Unlike a swap delete, the order of the remaining elements is kept.
func Remove[E comparable](s []E, items ...E) []E {
	for _, item := range items {
		if i := IndexOf(s, item); i >= 0 {
			s = append(s[:i], s[i+1:]...)
		}
	}
	return s
}
