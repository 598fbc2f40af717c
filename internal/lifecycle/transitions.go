package lifecycle

import (
	"github.com/angelmondragon/secureguard-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/secureguard-backend/pkg/errors"
)

// transitions lists the allowed status changes. Terminated is terminal.
var transitions = map[enums.AccountStatus]map[enums.AccountStatus]struct{}{
	enums.AccountStatusActive: {
		enums.AccountStatusSuspended:  {},
		enums.AccountStatusTerminated: {},
	},
	enums.AccountStatusSuspended: {
		enums.AccountStatusActive:     {},
		enums.AccountStatusTerminated: {},
	},
	enums.AccountStatusTerminated: {},
}

// CanTransition reports whether from -> to is an allowed change. Same-status
// requests are not transitions and return false.
func CanTransition(from, to enums.AccountStatus) bool {
	_, ok := transitions[from][to]
	return ok
}

// ParseTarget validates a requested status.
func ParseTarget(raw string) (enums.AccountStatus, error) {
	if raw == "" {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "status is required")
	}
	status, err := enums.ParseAccountStatus(raw)
	if err != nil {
		return "", pkgerrors.Newf(pkgerrors.CodeValidation, "invalid status %q", raw).
			WithDetails(map[string]any{"allowed": enums.AccountStatuses()})
	}
	return status, nil
}

func transitionError(from, to enums.AccountStatus) error {
	return pkgerrors.Newf(pkgerrors.CodeStateConflict, "cannot change status from %s to %s", from, to).
		WithDetails(map[string]any{"from": from, "to": to})
}

// MsgDeleteActive rejects permanent deletion of an Active supervisor or guard.
const MsgDeleteActive = "account must be suspended or terminated before permanent deletion"

// CheckDeletable permits permanent deletion only once an account left Active.
func CheckDeletable(status enums.AccountStatus) error {
	if status == enums.AccountStatusActive {
		return pkgerrors.New(pkgerrors.CodeStateConflict, MsgDeleteActive)
	}
	return nil
}
