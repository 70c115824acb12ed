// Package itemscheckedout implements the Items Checked Out query use case.
//
// This is a read-only view over the unresolved loans, ordered by loan date.
package itemscheckedout
