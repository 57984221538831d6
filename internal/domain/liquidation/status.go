package liquidation

// Status represents where a liquidation report sits in the review workflow.
type Status string

const (
	StatusDraft                Status = "draft"
	StatusForInitialReview     Status = "for_initial_review"
	StatusReturnedToHEI        Status = "returned_to_hei"
	StatusEndorsedToAccounting Status = "endorsed_to_accounting"
	StatusReturnedToRC         Status = "returned_to_rc"
	StatusEndorsedToCOA        Status = "endorsed_to_coa"
)

// AllStatuses lists every workflow status.
func AllStatuses() []Status {
	return []Status{
		StatusDraft,
		StatusForInitialReview,
		StatusReturnedToHEI,
		StatusEndorsedToAccounting,
		StatusReturnedToRC,
		StatusEndorsedToCOA,
	}
}

// IsValid reports whether the status is a known workflow status.
func (s Status) IsValid() bool {
	switch s {
	case StatusDraft, StatusForInitialReview, StatusReturnedToHEI,
		StatusEndorsedToAccounting, StatusReturnedToRC, StatusEndorsedToCOA:
		return true
	default:
		return false
	}
}

// IsTerminal reports whether the workflow has ended.
// endorsed_to_coa is the only terminal status.
func (s Status) IsTerminal() bool {
	return s == StatusEndorsedToCOA
}

// IsEditableByHEI reports whether the submitting HEI may still modify
// the report and its beneficiaries.
func (s Status) IsEditableByHEI() bool {
	return s == StatusDraft || s == StatusReturnedToHEI
}

// CanTransitionTo reports whether a direct transition to the target
// status is allowed by the workflow.
func (s Status) CanTransitionTo(target Status) bool {
	transitions := map[Status][]Status{
		StatusDraft:                {StatusForInitialReview},
		StatusForInitialReview:     {StatusEndorsedToAccounting, StatusReturnedToHEI},
		StatusReturnedToHEI:        {StatusForInitialReview},
		StatusEndorsedToAccounting: {StatusEndorsedToCOA, StatusReturnedToRC},
		StatusReturnedToRC:         {StatusEndorsedToAccounting, StatusReturnedToHEI},
		StatusEndorsedToCOA:        {},
	}

	for _, allowed := range transitions[s] {
		if allowed == target {
			return true
		}
	}
	return false
}

// DisplayName returns the human-readable status used in error messages.
func (s Status) DisplayName() string {
	switch s {
	case StatusDraft:
		return "Draft"
	case StatusForInitialReview:
		return "For Initial Review"
	case StatusReturnedToHEI:
		return "Returned to HEI"
	case StatusEndorsedToAccounting:
		return "Endorsed to Accounting"
	case StatusReturnedToRC:
		return "Returned to RC"
	case StatusEndorsedToCOA:
		return "Endorsed to COA"
	default:
		return string(s)
	}
}
