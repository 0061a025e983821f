package chromeasync

import "reflect"

// Namespace is one host API surface: member names mapped to their values.
// Members may be host functions, nested Namespace values for grouped
// sub-surfaces, or plain data. Map entries are the only members a Binder
// considers; there is no inherited member set to accidentally convert.
type Namespace map[string]Value

// Host is the full set of top level namespaces exposed by a host
// environment.
type Host map[string]Namespace

// A Binder applies Promisify selectively across namespaces. All operations
// adapted by the same binder share one ambient last-error slot.
type Binder struct {
	last *LastError
}

// NewBinder creates a binder reading from the given ambient slot. A nil slot
// means the host has no ambient error channel; adapted operations then
// resolve on completion unconditionally.
func NewBinder(last *LastError) *Binder {
	return &Binder{last: last}
}

// Promisify adapts a single host operation, see the package level Promisify.
func (b *Binder) Promisify(fn HostFunc) AsyncFunc {
	return Promisify(fn, b.last)
}

// Apply replaces every entry of ns that is named in known and holds a
// callable with its adapted equivalent. Missing names, non-callable entries
// and entries not named in known are left untouched, so helper members
// sharing a namespace with convention-following ones survive the pass. A nil
// namespace is skipped silently: optional host surfaces may simply not
// exist.
//
// Apply is not idempotent. Binding the same namespace twice wraps already
// adapted entries again; bind each namespace at most once.
func (b *Binder) Apply(ns Namespace, known ...string) {
	if ns == nil {
		return
	}

	for _, name := range known {
		member, ok := ns[name]
		if !ok {
			continue
		}

		fn, ok := asHostFunc(member)
		if !ok {
			continue
		}

		ns[name] = b.Promisify(fn)
	}
}

// asHostFunc reports whether member is callable and, if so, bridges it into
// a HostFunc. Concretely typed host functions, fixed leading parameters plus
// a trailing callback parameter, are invoked through reflection with the
// arguments shaped onto their signature.
func asHostFunc(member Value) (HostFunc, bool) {
	switch fn := member.(type) {
	case HostFunc:
		return fn, fn != nil
	case func(...Value):
		return fn, fn != nil
	}

	rv := reflect.ValueOf(member)
	if rv.Kind() != reflect.Func || rv.IsNil() {
		return nil, false
	}

	return func(args ...Value) {
		rv.Call(callArgs(rv.Type(), args))
	}, true
}
