package core

// Status is the review state shown next to each transaction.
type Status string

const (
	StatusNone              Status = ""
	StatusMatched           Status = "matched"
	StatusNeedsVerification Status = "needs-verification"
	StatusMonthly           Status = "monthly"
)

// Statuses lists the legend entries in display order.
func Statuses() []Status {
	return []Status{StatusMatched, StatusNeedsVerification, StatusMonthly}
}

// StatusOf picks the first matching state: recurring, then identified,
// then missing a category.
func StatusOf(t Transaction) Status {
	switch {
	case t.MonthlyRecurring:
		return StatusMonthly
	case t.Identifier != "":
		return StatusMatched
	case t.CategoryID == "":
		return StatusNeedsVerification
	default:
		return StatusNone
	}
}

func (s Status) Label() string {
	switch s {
	case StatusMatched:
		return "Matched"
	case StatusNeedsVerification:
		return "Needs verification"
	case StatusMonthly:
		return "Monthly"
	default:
		return ""
	}
}
