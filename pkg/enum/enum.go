package enum

import (
	"fmt"
	"reflect"
)

var enumManager = map[string]any{}

type enum[T comparable] struct {
	toEnum map[string]T
	values *[]T
}

// New registers value as a member of its type's enumeration and returns it.
// It is meant for package-level var blocks.
func New[T comparable](value T) T {
	v := reflect.ValueOf(value)
	name := v.Type().String()
	if _, ok := enumManager[name]; !ok {
		enumManager[name] = enum[T]{toEnum: make(map[string]T), values: &[]T{}}
	}

	e := enumManager[name].(enum[T])
	e.toEnum[v.String()] = value
	*e.values = append(*e.values, value)
	return value
}

// ToEnum parses s into a registered member of T.
func ToEnum[T comparable](s string) (T, error) {
	var defaultT T
	e, ok := enumManager[reflect.TypeOf(defaultT).String()]
	if !ok {
		return defaultT, fmt.Errorf("not found enum type %T", defaultT)
	}

	t, ok := e.(enum[T]).toEnum[s]
	if !ok {
		return defaultT, fmt.Errorf("not found value %s in enum %T", s, defaultT)
	}

	return t, nil
}

// Values lists the registered members of T in registration order.
func Values[T comparable]() []T {
	var defaultT T
	e, ok := enumManager[reflect.TypeOf(defaultT).String()]
	if !ok {
		return nil
	}

	return append([]T(nil), *e.(enum[T]).values...)
}
