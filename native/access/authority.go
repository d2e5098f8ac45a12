package access

import (
	"errors"

	"github.com/ethereum/go-ethereum/common"
)

var (
	// ErrNotAuthorized is returned when the caller is neither the current
	// owner nor the governance contract.
	ErrNotAuthorized = errors.New("access: caller is neither the owner nor the governance contract")
	// ErrZeroAddress rejects ownership transfers to the zero address.
	ErrZeroAddress = errors.New("access: new owner must not be the zero address")
)

// Authority models the dual-authority ownership of the engine: a single owner
// address that may itself be the governance contract, plus an explicit
// governance address that always retains ownership-transfer rights. The paused
// flag gates the trading entry points.
type Authority struct {
	owner      common.Address
	governance common.Address
	paused     bool
}

// NewAuthority constructs an authority with the supplied owner and governance
// addresses and the engine unpaused.
func NewAuthority(owner, governance common.Address) *Authority {
	return &Authority{owner: owner, governance: governance}
}

// Owner returns the current owner address.
func (a *Authority) Owner() common.Address { return a.owner }

// Governance returns the governance contract address.
func (a *Authority) Governance() common.Address { return a.governance }

// Paused reports whether the engine is paused.
func (a *Authority) Paused() bool { return a.paused }

// IsAuthorized reports whether the caller holds owner authority. The owner and
// the governance contract share a single authorization predicate.
func (a *Authority) IsAuthorized(caller common.Address) bool {
	if a == nil {
		return false
	}
	return caller == a.owner || caller == a.governance
}

// RequireAuthorized returns ErrNotAuthorized unless the caller passes
// IsAuthorized.
func (a *Authority) RequireAuthorized(caller common.Address) error {
	if !a.IsAuthorized(caller) {
		return ErrNotAuthorized
	}
	return nil
}

// TogglePause flips the paused flag. Owner-gated.
func (a *Authority) TogglePause(caller common.Address) (bool, error) {
	if err := a.RequireAuthorized(caller); err != nil {
		return a.paused, err
	}
	a.paused = !a.paused
	return a.paused, nil
}

// TransferOwnership moves the owner field to an arbitrary new address. Both
// the current owner and the governance contract may invoke the transition.
func (a *Authority) TransferOwnership(caller, newOwner common.Address) error {
	if err := a.RequireAuthorized(caller); err != nil {
		return err
	}
	if newOwner == (common.Address{}) {
		return ErrZeroAddress
	}
	a.owner = newOwner
	return nil
}

// Restore installs a previously persisted owner and pause flag. The governance
// address is fixed at construction and never restored.
func (a *Authority) Restore(owner common.Address, paused bool) {
	if a == nil {
		return
	}
	if owner != (common.Address{}) {
		a.owner = owner
	}
	a.paused = paused
}
