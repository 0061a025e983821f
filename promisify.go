package chromeasync

import (
	"fmt"
	"reflect"
)

// CompletionFunc is the trailing completion callback a host operation invokes
// exactly once when it finishes, carrying zero or more result values.
type CompletionFunc func(results ...Value)

// HostFunc is a callback-convention host operation: positional arguments
// followed by a trailing CompletionFunc.
type HostFunc func(args ...Value)

// AsyncFunc is the adapted form of a host operation. It takes the same
// leading arguments, optionally still accepts a trailing secondary callback
// for side-effect compatibility, and returns a promise.
type AsyncFunc func(args ...Value) *Promise

// Promisify wraps a callback-convention host operation into a promise
// returning one. The returned AsyncFunc:
//
//   - strips a trailing callable argument, if present, and keeps it as a
//     secondary callback that is still invoked with the completion results;
//   - returns a promise immediately, before the operation completes;
//   - rejects when fn panics synchronously, when the secondary callback
//     panics, or when the host populated the ambient last-error slot;
//   - resolves otherwise with the normalized completion payload: nil for an
//     empty payload, the single value for one result, the ordered []Value
//     slice for several.
//
// A panicking secondary callback pre-empts the normal outcome: the promise
// rejects with the callback fault and the payload is never delivered. The
// ambient slot is consulted exactly once per completion, synchronously inside
// the completion callback and only after the secondary callback ran, so a
// later operation cannot overwrite the slot before it is read. A nil last
// means the host has no ambient error channel.
func Promisify(fn HostFunc, last *LastError) AsyncFunc {
	return func(args ...Value) *Promise {
		args, userCallback := splitTrailingCallback(args)

		return New(func(resolve ResolveFunc, reject RejectFunc) {
			onDone := CompletionFunc(func(results ...Value) {
				if userCallback != nil {
					if err := invokeGuarded(userCallback, results); err != nil {
						reject(err)
						return
					}
				}

				if last != nil {
					if err := last.Take(); err != nil {
						reject(err)
						return
					}
				}

				resolve(normalizeResults(results))
			})

			call := make([]Value, len(args), len(args)+1)
			copy(call, args)

			fn(append(call, onDone)...)
		})
	}
}

// splitTrailingCallback separates an optional secondary callback from the
// argument list. Host functions are variadic, so the only way to tell a
// trailing handler from trailing data is the runtime kind of the last actual
// argument.
func splitTrailingCallback(args []Value) ([]Value, CompletionFunc) {
	if len(args) == 0 {
		return args, nil
	}

	cb, ok := asCompletion(args[len(args)-1])
	if !ok {
		return args, nil
	}

	return args[: len(args)-1 : len(args)-1], cb
}

// asCompletion reports whether v is callable and, if so, bridges it into a
// CompletionFunc. Funcs with other signatures are invoked through reflection
// with the completion results shaped onto their parameter list.
func asCompletion(v Value) (CompletionFunc, bool) {
	switch fn := v.(type) {
	case CompletionFunc:
		return fn, fn != nil
	case func(...Value):
		return fn, fn != nil
	}

	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Func || rv.IsNil() {
		return nil, false
	}

	return func(results ...Value) {
		rv.Call(callArgs(rv.Type(), results))
	}, true
}

// callArgs shapes values onto the parameter list of a func of type typ.
// Surplus values are dropped for fixed arity funcs, missing ones are filled
// with zero values and a variadic tail receives all remaining values.
func callArgs(typ reflect.Type, values []Value) []reflect.Value {
	numIn := typ.NumIn()

	fixed := numIn
	if typ.IsVariadic() {
		fixed = numIn - 1
	}

	in := make([]reflect.Value, 0, numIn)

	for i := 0; i < fixed; i++ {
		var v Value
		if i < len(values) {
			v = values[i]
		}

		in = append(in, conformValue(typ.In(i), v))
	}

	if typ.IsVariadic() {
		elem := typ.In(numIn - 1).Elem()

		for i := fixed; i < len(values); i++ {
			in = append(in, conformValue(elem, values[i]))
		}
	}

	return in
}

// conformValue coerces v into something assignable to typ. Callables are
// re-bridged so that a CompletionFunc can be handed to a host func that
// declares a concretely typed callback parameter. Values that neither assign
// nor convert degrade to the zero value.
func conformValue(typ reflect.Type, v Value) reflect.Value {
	if v == nil {
		return reflect.Zero(typ)
	}

	rv := reflect.ValueOf(v)

	switch {
	case rv.Type().AssignableTo(typ):
		return rv
	case typ.Kind() == reflect.Func && rv.Kind() == reflect.Func:
		return bridgeFunc(typ, v)
	case rv.Type().ConvertibleTo(typ):
		return rv.Convert(typ)
	default:
		return reflect.Zero(typ)
	}
}

// bridgeFunc builds a func of type typ that forwards its arguments to the
// callable v.
func bridgeFunc(typ reflect.Type, v Value) reflect.Value {
	cb, ok := asCompletion(v)
	if !ok {
		return reflect.Zero(typ)
	}

	return reflect.MakeFunc(typ, func(in []reflect.Value) []reflect.Value {
		values := make([]Value, 0, len(in))

		for i, rv := range in {
			if typ.IsVariadic() && i == len(in)-1 {
				for j := 0; j < rv.Len(); j++ {
					values = append(values, rv.Index(j).Interface())
				}
				continue
			}

			values = append(values, rv.Interface())
		}

		cb(values...)

		out := make([]reflect.Value, typ.NumOut())
		for i := range out {
			out[i] = reflect.Zero(typ.Out(i))
		}

		return out
	})
}

// invokeGuarded runs the user supplied secondary callback with the completion
// results. A panic inside the callback is captured and returned as an error
// instead of unwinding into the host's callback dispatch.
func invokeGuarded(cb CompletionFunc, results []Value) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic in completion callback: %v", r)
		}
	}()

	cb(results...)

	return nil
}

// normalizeResults maps a completion payload onto a single promise value.
func normalizeResults(results []Value) Value {
	switch len(results) {
	case 0:
		return nil
	case 1:
		return results[0]
	default:
		return append([]Value(nil), results...)
	}
}
