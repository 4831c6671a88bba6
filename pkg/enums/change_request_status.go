package enums

import "fmt"

// ChangeRequestStatus tracks the review state of an order change request.
// PENDING is the only non-terminal state.
type ChangeRequestStatus string

const (
	ChangeRequestStatusPending  ChangeRequestStatus = "PENDING"
	ChangeRequestStatusApproved ChangeRequestStatus = "APPROVED"
	ChangeRequestStatusRejected ChangeRequestStatus = "REJECTED"
)

var validChangeRequestStatuses = []ChangeRequestStatus{
	ChangeRequestStatusPending,
	ChangeRequestStatusApproved,
	ChangeRequestStatusRejected,
}

// String implements fmt.Stringer.
func (c ChangeRequestStatus) String() string {
	return string(c)
}

// IsValid reports whether the value is a known ChangeRequestStatus.
func (c ChangeRequestStatus) IsValid() bool {
	for _, candidate := range validChangeRequestStatuses {
		if candidate == c {
			return true
		}
	}
	return false
}

// IsTerminal reports whether the request can no longer be reviewed.
func (c ChangeRequestStatus) IsTerminal() bool {
	return c == ChangeRequestStatusApproved || c == ChangeRequestStatusRejected
}

// ParseChangeRequestStatus converts raw input into a ChangeRequestStatus.
func ParseChangeRequestStatus(value string) (ChangeRequestStatus, error) {
	for _, candidate := range validChangeRequestStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid change request status %q", value)
}
