package lending

// Item is a catalog entry holding the two ledger fields owned by this
// engine. All other catalog metadata belongs to the external catalog
// collaborator and is carried here read-only.
//
// Invariant: 0 <= AvailableCopies <= TotalCopies, and AvailableCopies equals
// TotalCopies minus the number of unresolved loans on this item. The ledger
// operations of a storage engine are the only write path for these fields.
type Item struct {
	ID              ItemIDString
	Title           string
	TotalCopies     int
	AvailableCopies int
}

// BuildItem creates a new Item with all copies available.
func BuildItem(id ItemIDString, title string, totalCopies int) Item {
	return Item{
		ID:              id,
		Title:           title,
		TotalCopies:     totalCopies,
		AvailableCopies: totalCopies,
	}
}

// HasAvailableCopy reports whether at least one copy can be reserved.
func (i Item) HasAvailableCopy() bool {
	return i.AvailableCopies > 0
}
