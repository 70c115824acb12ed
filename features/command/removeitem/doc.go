// Package removeitem implements the Remove Item use case.
//
// An item can only be deleted while no unresolved loans reference it; the
// handler counts open loans under the item's row lock before deleting.
package removeitem
