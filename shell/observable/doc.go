// Package observable provides observability decorators for command and
// query handlers. The wrappers add metrics, tracing, and logging around a
// core handler while delegating all business logic to it.
package observable
