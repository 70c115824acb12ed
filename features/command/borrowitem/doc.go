// Package borrowitem implements the Borrow Item use case.
//
// A borrow is one atomic unit of work: the handler locks the member and the
// item, runs the pure eligibility decision, reserves a copy on the inventory
// ledger, and opens the loan. The pure business rules live in Decide; the
// CommandHandler owns transaction scope and retry behavior.
//
// Eligibility is checked in fixed priority order (membership active, no
// past-due loan, loan cap) before stock, so a suspended member with an
// out-of-stock item is told about the suspension.
package borrowitem
