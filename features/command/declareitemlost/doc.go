// Package declareitemlost implements the Declare Item Lost use case.
//
// Declaring a loan lost resolves it terminally. What happens to the copy is
// a policy decision: by default the copy leaves the collection (total copies
// shrink), but a policy can send it back to stock instead.
package declareitemlost
