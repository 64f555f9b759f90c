package models

// Expense is an amount paid by one user and split among several.
type Expense struct {
	// ID is the unique identifier for the expense (UUID format).
	ID string

	Description string

	// Amount is the total paid. The sum of split amounts is expected to match
	// but is not enforced here.
	Amount float64

	Category string

	// Date is the Unix timestamp in milliseconds the expense happened at.
	// Used for year and month bucketing.
	Date int64

	// PaidByUserID is the user who paid. The payer is the implicit creditor of
	// every unpaid split belonging to someone else.
	PaidByUserID string

	// GroupID is the owning group, or empty for a direct expense.
	GroupID string

	// CreatedBy is the user who recorded the expense.
	CreatedBy string

	Splits []Split

	// CreatedAt is the Unix timestamp when the expense was recorded.
	CreatedAt int64
}

// Split is one user's owed portion of an expense.
type Split struct {
	UserID string
	Amount float64
	Paid   bool
}

// SplitFor returns the split belonging to userID, if any.
func (e *Expense) SplitFor(userID string) (Split, bool) {
	for _, s := range e.Splits {
		if s.UserID == userID {
			return s, true
		}
	}
	return Split{}, false
}

// Involves reports whether userID paid the expense or owes a split of it.
func (e *Expense) Involves(userID string) bool {
	if e.PaidByUserID == userID {
		return true
	}
	_, ok := e.SplitFor(userID)
	return ok
}
