// Package lending contains the core of the borrowing/return consistency engine:
// the domain records (items, members, loans, fines), the loan state machine,
// the eligibility rules, the fine calculation, and the storage contracts that
// the engines in the subpackages implement.
//
// Everything in this package is pure domain logic or a dependency-free
// contract. Persistence lives in the postgresengine and memoryengine
// subpackages; orchestration lives in the features packages.
//
// Key invariants enforced across the package:
//   - An item's available copy count never goes below zero and never exceeds
//     its total copy count. It is mutated only through the ledger operations
//     ReserveCopy, ReleaseCopy and RemoveCopy of a storage engine.
//   - A loan is resolved at most once. Resolved loans (returned, overdue,
//     lost) are immutable except for the audit trail.
//   - Every borrow and every return executes as a single atomic unit of work
//     scoped to the rows it touches.
package lending
