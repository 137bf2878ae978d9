// Package asynctask implements an asynchronous task coordinator: a single
// owner-scoped Manager that wraps timers, tickers, animation-frame and
// idle callbacks, background workers, abortable requests, inert proxy
// wrappers, and event-emitter subscriptions behind one bookkeeping layer.
//
// The Manager enforces at most one live task per (kind, group, label),
// applies a configurable join policy when a new registration collides
// with a live one (replace, merge, or replace-with-forwarding), and
// supports bulk cancellation — by id, by label, by group, by group-name
// pattern, or everything at once — plus a promise/future bridge over
// every single-shot primitive.
//
// # Concurrency
//
// A Manager is owner-scoped: bind one to a single host object and never
// share it across unrelated owners. Internally it serializes all registry
// bookkeeping behind one mutex but never holds that mutex while invoking
// user code (payloads, completion hooks, clear hooks) — that is what
// makes registering or clearing a task from inside another task's own
// callback, including one sharing its label, safe.
package asynctask
