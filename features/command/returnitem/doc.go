// Package returnitem implements the Return Item use case.
//
// A return resolves the loan (on time or overdue), releases the copy back to
// the inventory ledger, and issues at most one fine when the return is late.
// The fine amount comes from the injected policy; its issue date is the
// return date.
package returnitem
