package planner

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrTableNotFound   = errors.New("table not found")
	ErrChairNotFound   = errors.New("chair not found")
	ErrGuestNotFound   = errors.New("guest not found")
	ErrEmptyGuestName  = errors.New("guest name is empty")
	ErrNoFreeSpot      = errors.New("no free spot for another table")
	ErrTableLimit      = errors.New("table count limit reached")
	ErrNotDragging     = errors.New("no drag in progress")
	ErrAlreadyDragging = errors.New("drag already in progress")
	ErrNilSnapshot     = errors.New("nil snapshot")
)

// PlacementError reports a rejected table position.
type PlacementError struct {
	TableID string
	Reason  Reason
}

func (e PlacementError) Error() string {
	return fmt.Sprintf("invalid placement of table %s: %s", e.TableID, e.Reason)
}

// ConfirmationRequiredError is returned instead of applying an operation that
// would unseat guests. The caller decides whether to repeat the call with
// confirmation; nothing has been changed.
type ConfirmationRequiredError struct {
	Action   string
	TableIDs []string
	GuestIDs []string
}

func (e ConfirmationRequiredError) Error() string {
	return fmt.Sprintf("%s needs confirmation: affects tables [%s] and guests [%s]",
		e.Action, strings.Join(e.TableIDs, ", "), strings.Join(e.GuestIDs, ", "))
}

// NeedsConfirmation reports whether err asks the caller to confirm and
// returns the details when it does.
func NeedsConfirmation(err error) (*ConfirmationRequiredError, bool) {
	var ce ConfirmationRequiredError
	if errors.As(err, &ce) {
		return &ce, true
	}
	return nil, false
}
