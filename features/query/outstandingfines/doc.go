// Package outstandingfines implements the Outstanding Fines query use case.
//
// The view lists all fines still outstanding together with their total.
package outstandingfines
