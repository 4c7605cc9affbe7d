package reports

const (
	StatusPending     = "Pending"
	StatusInProgress  = "In Progress"
	StatusUnderReview = "Under Review"
	StatusResolved    = "Resolved"
	StatusClosed      = "Closed"
)

const (
	PriorityLow      = "Low"
	PriorityMedium   = "Medium"
	PriorityHigh     = "High"
	PriorityCritical = "Critical"
)

const DefaultActionType = "Investigation"

var priorities = []string{PriorityLow, PriorityMedium, PriorityHigh, PriorityCritical}

// statusSet returns the accepted status whitelist. "Under Review" is only a
// member when enabled in config; the transition graph is otherwise
// unrestricted, membership is the whole check.
func statusSet(underReview bool) []string {
	if underReview {
		return []string{StatusPending, StatusInProgress, StatusUnderReview, StatusResolved, StatusClosed}
	}
	return []string{StatusPending, StatusInProgress, StatusResolved, StatusClosed}
}

func contains(list []string, val string) bool {
	for _, item := range list {
		if item == val {
			return true
		}
	}
	return false
}
