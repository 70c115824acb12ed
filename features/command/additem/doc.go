// Package additem implements the Add Item use case.
//
// Adding an item seeds the catalog entry with its full copy count available.
// Duplicate identifiers and non-positive copy counts are refused.
package additem
