package treasury

import (
	"errors"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"trashbin/core/events"
	"trashbin/core/types"
	"trashbin/native/access"
	"trashbin/native/pricing"
)

// EventTypeWithdraw carries the distributable amount of a treasury
// withdrawal.
const EventTypeWithdraw = "treasury.withdraw"

var (
	// ErrBelowMinimumBalance rejects withdrawals while the balance does not
	// exceed the configured reserve.
	ErrBelowMinimumBalance = errors.New("treasury: contract balance does not exceed the minimum reserve")

	errNilLedger   = errors.New("treasury: ledger not configured")
	errNilAuth     = errors.New("treasury: authority not configured")
	errNilSettings = errors.New("treasury: settings source not configured")
)

// Ledger is the balance view and transfer capability the treasury needs.
type Ledger interface {
	BalanceOf(addr common.Address) *big.Int
	Transfer(from, to common.Address, amount *big.Int) error
}

// Authority exposes the principals and the pause flag.
type Authority interface {
	IsAuthorized(caller common.Address) bool
	Paused() bool
	Owner() common.Address
	Governance() common.Address
}

// SettingsSource provides the reserve, ceiling and revenue-share parameters.
type SettingsSource interface {
	Current() pricing.Settings
}

// Engine splits withdrawable balance between the owner and the governance
// treasury. The reserve configured as the minimum balance is never paid out.
type Engine struct {
	ledger     Ledger
	auth       Authority
	settings   SettingsSource
	emitter    events.Emitter
	moduleAddr common.Address
}

// NewEngine constructs a treasury engine with a no-op emitter.
func NewEngine() *Engine {
	return &Engine{emitter: events.NoopEmitter{}}
}

// SetLedger configures the balance ledger.
func (e *Engine) SetLedger(ledger Ledger) { e.ledger = ledger }

// SetAuthority configures the principal view.
func (e *Engine) SetAuthority(auth Authority) { e.auth = auth }

// SetSettings configures the settings source.
func (e *Engine) SetSettings(settings SettingsSource) { e.settings = settings }

// SetModuleAddress configures the account whose balance is distributed.
func (e *Engine) SetModuleAddress(addr common.Address) { e.moduleAddr = addr }

// SetEmitter configures the event emitter. Nil resets it to a no-op
// implementation.
func (e *Engine) SetEmitter(emitter events.Emitter) {
	if emitter == nil {
		e.emitter = events.NoopEmitter{}
		return
	}
	e.emitter = emitter
}

// Withdraw distributes everything above the minimum reserve. Open to any
// caller while unpaused; while paused only the owner or governance may
// trigger it.
func (e *Engine) Withdraw(caller common.Address) (*big.Int, error) {
	if err := e.requireWired(); err != nil {
		return nil, err
	}
	if e.auth.Paused() && !e.auth.IsAuthorized(caller) {
		return nil, access.ErrPaused
	}
	return e.distribute()
}

// MaybeAutoWithdraw distributes when the balance exceeds the configured
// maximum threshold; it reports whether a distribution happened.
func (e *Engine) MaybeAutoWithdraw() (bool, error) {
	if err := e.requireWired(); err != nil {
		return false, err
	}
	settings := e.settings.Current()
	balance := e.ledger.BalanceOf(e.moduleAddr)
	if balance.Cmp(settings.MaxBalance) <= 0 {
		return false, nil
	}
	if _, err := e.distribute(); err != nil {
		return false, err
	}
	return true, nil
}

func (e *Engine) distribute() (*big.Int, error) {
	settings := e.settings.Current()
	balance := e.ledger.BalanceOf(e.moduleAddr)
	if balance.Cmp(settings.MinBalance) <= 0 {
		return nil, ErrBelowMinimumBalance
	}
	distributable := new(big.Int).Sub(balance, settings.MinBalance)
	ownerCut := new(big.Int).Mul(distributable, new(big.Int).SetUint64(settings.OwnerShareBps))
	ownerCut.Div(ownerCut, big.NewInt(pricing.BpsDenominator))
	governanceCut := new(big.Int).Sub(distributable, ownerCut)

	if ownerCut.Sign() > 0 {
		if err := e.ledger.Transfer(e.moduleAddr, e.auth.Owner(), ownerCut); err != nil {
			return nil, err
		}
	}
	if governanceCut.Sign() > 0 {
		if err := e.ledger.Transfer(e.moduleAddr, e.auth.Governance(), governanceCut); err != nil {
			return nil, err
		}
	}
	e.emit(distributable)
	return distributable, nil
}

type treasuryEvent struct {
	evt *types.Event
}

func (t treasuryEvent) EventType() string {
	if t.evt == nil {
		return ""
	}
	return t.evt.Type
}

func (t treasuryEvent) Event() *types.Event { return t.evt }

func (e *Engine) emit(amount *big.Int) {
	if e == nil || e.emitter == nil {
		return
	}
	e.emitter.Emit(treasuryEvent{evt: &types.Event{
		Type:       EventTypeWithdraw,
		Attributes: map[string]string{"amount": amount.String()},
	}})
}

func (e *Engine) requireWired() error {
	switch {
	case e == nil || e.ledger == nil:
		return errNilLedger
	case e.auth == nil:
		return errNilAuth
	case e.settings == nil:
		return errNilSettings
	default:
		return nil
	}
}
