package enums

import "fmt"

// AccountStatus captures the lifecycle of a supervisor or guard.
type AccountStatus string

const (
	AccountStatusActive     AccountStatus = "Active"
	AccountStatusSuspended  AccountStatus = "Suspended"
	AccountStatusTerminated AccountStatus = "Terminated"
)

var validAccountStatuses = []AccountStatus{
	AccountStatusActive,
	AccountStatusSuspended,
	AccountStatusTerminated,
}

// AccountStatuses lists every status in display order.
func AccountStatuses() []AccountStatus {
	out := make([]AccountStatus, len(validAccountStatuses))
	copy(out, validAccountStatuses)
	return out
}

// String implements fmt.Stringer.
func (s AccountStatus) String() string {
	return string(s)
}

// IsValid reports whether the value matches a known AccountStatus.
func (s AccountStatus) IsValid() bool {
	for _, candidate := range validAccountStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseAccountStatus converts raw input into an AccountStatus.
func ParseAccountStatus(value string) (AccountStatus, error) {
	for _, candidate := range validAccountStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid account status %q", value)
}
