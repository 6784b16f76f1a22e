package transaction

// Transaction is a single card transaction. The orchestration layer only
// looks at ID and EmployeeID; the remaining fields pass through untouched.
type Transaction struct {
	ID         string
	EmployeeID string
	Amount     float64
	Date       string
	Merchant   string
	Approved   bool
}

// Page is one page of the all-transactions feed, or the accumulation of
// every page fetched so far.
type Page struct {
	Items []Transaction
	// NextPageToken is nil once the feed has no further pages.
	NextPageToken *string
}

// Exhausted reports whether the feed has no further pages.
func (p Page) Exhausted() bool {
	return p.NextPageToken == nil
}

// Token returns a pointer to a copy of s, for building pages in code.
func Token(s string) *string {
	return &s
}
