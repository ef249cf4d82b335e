package loan

// LoanPatch carries the administrative edits a loan accepts after creation.
// Financial terms are fixed once the schedule exists.
type LoanPatch struct {
	CollectorID    *int64
	ClearCollector bool
	State          *LoanState
	Notes          *string
}

func (p LoanPatch) IsEmpty() bool {
	return p.CollectorID == nil && !p.ClearCollector && p.State == nil && p.Notes == nil
}
