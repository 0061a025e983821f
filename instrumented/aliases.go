package instrumented

import chromeasync "github.com/masihfathi/chromeExtensionAsync"

// Alias exported root package types to allow usage of the instrumented
// package as drop in replacement.
type (
	// Value describes the value of a fulfilled promise.
	Value = chromeasync.Value

	// CompletionFunc is the trailing completion callback a host operation
	// invokes when it finishes.
	CompletionFunc = chromeasync.CompletionFunc

	// HostFunc is a callback-convention host operation.
	HostFunc = chromeasync.HostFunc

	// AsyncFunc is the adapted, promise returning form of a host operation.
	AsyncFunc = chromeasync.AsyncFunc

	// OnFulfilledFunc is used in promise fulfillment handlers.
	OnFulfilledFunc = chromeasync.OnFulfilledFunc

	// OnRejectedFunc is used in promise rejection handlers.
	OnRejectedFunc = chromeasync.OnRejectedFunc

	// ResolveFunc fulfills a promise with a value.
	ResolveFunc = chromeasync.ResolveFunc

	// RejectFunc rejects a promise with an error.
	RejectFunc = chromeasync.RejectFunc

	// ExecutorFunc is passed to New to decide about fulfillment or rejection
	// of a promise.
	ExecutorFunc = chromeasync.ExecutorFunc

	// A Promise represents the eventual completion (or failure) of an
	// asynchronous host operation, and its resulting value.
	Promise = chromeasync.Promise

	// LastError is the ambient error slot of a host.
	LastError = chromeasync.LastError

	// OpError is the structured error carried by rejections that stem from
	// the ambient error slot.
	OpError = chromeasync.OpError

	// Namespace is one host API surface.
	Namespace = chromeasync.Namespace

	// Host is the full set of top level namespaces of a host environment.
	Host = chromeasync.Host

	// Catalog enumerates the callback-convention method names per namespace.
	Catalog = chromeasync.Catalog

	// AggregateError is a collection of errors that are aggregated in a
	// single error.
	AggregateError = chromeasync.AggregateError

	// Result holds a value in case of a fulfilled promise, or a non-nil
	// error if the promise was rejected.
	Result = chromeasync.Result
)

// Alias exported root package funcs to allow usage of the instrumented
// package as drop in replacement.
var (
	// New creates a promise and runs the executor on its own goroutine.
	New = chromeasync.New

	// Resolve creates a promise that is already fulfilled.
	Resolve = chromeasync.Resolve

	// Reject creates a promise that is already rejected.
	Reject = chromeasync.Reject

	// Race returns a promise settling like the first of the given promises.
	Race = chromeasync.Race

	// All fulfills when all of the given promises fulfilled and rejects with
	// the reason of the first one that rejects.
	All = chromeasync.All

	// Any resolves with the value of the first fulfilling promise and
	// rejects with an AggregateError if all of them reject.
	Any = chromeasync.Any

	// AllSettled resolves after all of the given promises settled, with a
	// Result per promise.
	AllSettled = chromeasync.AllSettled

	// ParseCatalog decodes a catalog from JSON.
	ParseCatalog = chromeasync.ParseCatalog

	// NewBinder creates a binder reading from the given ambient slot.
	NewBinder = chromeasync.NewBinder
)
