// Package chromeasync converts callback-convention host APIs into
// promise-returning ones.
//
// Hosts such as browser extension runtimes expose large API surfaces whose
// asynchronous operations report completion through a trailing callback and
// report failure out of band, through an ambient last-error slot that is
// populated right before the callback fires. Promisify wraps a single such
// operation into a function returning a Promise; a Binder applies the wrap
// selectively across whole namespaces, driven by a Catalog of method names
// known to follow the convention.
//
// The adapter does not change the semantics of the underlying operation: no
// retries, no caching, no timeouts and no cancellation. It only reshapes the
// completion contract.
package chromeasync
