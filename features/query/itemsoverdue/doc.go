// Package itemsoverdue implements the Items Overdue query use case.
//
// The view lists unresolved loans whose due date lies before the given
// as-of instant, with the number of whole days each one is overdue.
package itemsoverdue
