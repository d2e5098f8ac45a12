package pricing

import (
	"errors"
	"math/big"
	"strconv"

	"github.com/ethereum/go-ethereum/common"

	"trashbin/core/events"
	"trashbin/core/types"
)

// EventTypeSettingUpdated is emitted once per mutated field with the setting
// name and the before/after values.
const EventTypeSettingUpdated = "pricing.setting_updated"

var errNoAuthority = errors.New("pricing: authority not configured")

// Authority is the capability check shared with the other engines.
type Authority interface {
	IsAuthorized(caller common.Address) bool
	RequireAuthorized(caller common.Address) error
}

// Engine holds the economic parameters and enforces the bound table on every
// update. All updates are owner-gated and remain available while the engine
// is paused.
type Engine struct {
	settings Settings
	auth     Authority
	emitter  events.Emitter
}

// NewEngine constructs a pricing engine seeded with the default settings and
// a no-op emitter.
func NewEngine() *Engine {
	return &Engine{settings: DefaultSettings(), emitter: events.NoopEmitter{}}
}

// SetAuthority wires the authorization predicate used by every updater.
func (e *Engine) SetAuthority(auth Authority) { e.auth = auth }

// SetEmitter configures the event emitter. Passing nil resets it to a no-op
// implementation.
func (e *Engine) SetEmitter(emitter events.Emitter) {
	if emitter == nil {
		e.emitter = events.NoopEmitter{}
		return
	}
	e.emitter = emitter
}

// Current returns a copy of the active settings.
func (e *Engine) Current() Settings { return e.settings.Clone() }

// Restore installs persisted settings without authorization or events. The
// payload is still validated so corrupted state cannot smuggle out-of-bound
// values back in.
func (e *Engine) Restore(s Settings) error {
	clone := s.Clone()
	if err := clone.Validate(); err != nil {
		return err
	}
	e.settings = clone
	return nil
}

func (e *Engine) requireOwner(caller common.Address) error {
	if e == nil || e.auth == nil {
		return errNoAuthority
	}
	return e.auth.RequireAuthorized(caller)
}

type pricingEvent struct {
	evt *types.Event
}

func (p pricingEvent) EventType() string {
	if p.evt == nil {
		return ""
	}
	return p.evt.Type
}

func (p pricingEvent) Event() *types.Event { return p.evt }

func (e *Engine) emitChange(name, oldValue, newValue string) {
	if e == nil || e.emitter == nil {
		return
	}
	e.emitter.Emit(pricingEvent{evt: &types.Event{
		Type: EventTypeSettingUpdated,
		Attributes: map[string]string{
			"setting": name,
			"old":     oldValue,
			"new":     newValue,
		},
	}})
}

// UpdateBuyPrice sets the flat per-item buy price in wei.
func (e *Engine) UpdateBuyPrice(caller common.Address, v *big.Int) error {
	if err := e.requireOwner(caller); err != nil {
		return err
	}
	if err := validateBuyPrice(v); err != nil {
		return err
	}
	old := e.settings.BuyPrice
	e.settings.BuyPrice = new(big.Int).Set(v)
	e.emitChange(SettingBuyPrice, old.String(), v.String())
	return nil
}

// UpdateSellFee sets the flat per-unit deposit/sell fee in wei.
func (e *Engine) UpdateSellFee(caller common.Address, v *big.Int) error {
	if err := e.requireOwner(caller); err != nil {
		return err
	}
	if err := validateSellFee(v); err != nil {
		return err
	}
	old := e.settings.SellFee
	e.settings.SellFee = new(big.Int).Set(v)
	e.emitChange(SettingSellFee, old.String(), v.String())
	return nil
}

// UpdateStandardDiscount sets the discount applied for deactivated qualifying
// assets, in basis points.
func (e *Engine) UpdateStandardDiscount(caller common.Address, bps uint64) error {
	if err := e.requireOwner(caller); err != nil {
		return err
	}
	if bps > BpsDenominator {
		return ErrStandardDiscountTooHigh
	}
	old := e.settings.StandardDiscountBps
	e.settings.StandardDiscountBps = bps
	e.emitChange(SettingStandardDiscount, formatUint(old), formatUint(bps))
	return nil
}

// UpdateGovernanceDiscount sets the discount applied for active qualifying
// assets, in basis points.
func (e *Engine) UpdateGovernanceDiscount(caller common.Address, bps uint64) error {
	if err := e.requireOwner(caller); err != nil {
		return err
	}
	if bps > BpsDenominator {
		return ErrGovernanceDiscountTooHigh
	}
	old := e.settings.GovernanceDiscountBps
	e.settings.GovernanceDiscountBps = bps
	e.emitChange(SettingGovernanceDiscount, formatUint(old), formatUint(bps))
	return nil
}

// UpdateAgingDelay sets the number of blocks a record must stay escrowed
// before it becomes purchasable.
func (e *Engine) UpdateAgingDelay(caller common.Address, blocks uint64) error {
	if err := e.requireOwner(caller); err != nil {
		return err
	}
	if blocks < minAgingDelayBlocks || blocks > maxAgingDelayBlocks {
		return ErrAgingDelayOutOfBounds
	}
	old := e.settings.AgingDelayBlocks
	e.settings.AgingDelayBlocks = blocks
	e.emitChange(SettingAgingDelay, formatUint(old), formatUint(blocks))
	return nil
}

// UpdateMinBalance sets the treasury reserve that is never distributed.
func (e *Engine) UpdateMinBalance(caller common.Address, v *big.Int) error {
	if err := e.requireOwner(caller); err != nil {
		return err
	}
	if err := validateMinBalance(v, e.settings.MaxBalance); err != nil {
		return err
	}
	old := e.settings.MinBalance
	e.settings.MinBalance = new(big.Int).Set(v)
	e.emitChange(SettingMinBalance, old.String(), v.String())
	return nil
}

// UpdateMaxBalance sets the balance ceiling above which the treasury
// auto-distributes.
func (e *Engine) UpdateMaxBalance(caller common.Address, v *big.Int) error {
	if err := e.requireOwner(caller); err != nil {
		return err
	}
	if err := validateMaxBalance(v, e.settings.MinBalance); err != nil {
		return err
	}
	old := e.settings.MaxBalance
	e.settings.MaxBalance = new(big.Int).Set(v)
	e.emitChange(SettingMaxBalance, old.String(), v.String())
	return nil
}

// UpdateOwnerShare sets the owner's slice of treasury withdrawals, in basis
// points.
func (e *Engine) UpdateOwnerShare(caller common.Address, bps uint64) error {
	if err := e.requireOwner(caller); err != nil {
		return err
	}
	if bps > BpsDenominator {
		return ErrOwnerShareTooHigh
	}
	old := e.settings.OwnerShareBps
	e.settings.OwnerShareBps = bps
	e.emitChange(SettingOwnerShare, formatUint(old), formatUint(bps))
	return nil
}

// UpdateAll replaces every field atomically: the full bound table is checked
// before any field mutates, so a single out-of-bound value rejects the whole
// block.
func (e *Engine) UpdateAll(caller common.Address, next Settings) error {
	if err := e.requireOwner(caller); err != nil {
		return err
	}
	clone := next.Clone()
	if err := clone.Validate(); err != nil {
		return err
	}
	old := e.settings
	e.settings = clone
	e.emitChange(SettingBuyPrice, old.BuyPrice.String(), clone.BuyPrice.String())
	e.emitChange(SettingSellFee, old.SellFee.String(), clone.SellFee.String())
	e.emitChange(SettingStandardDiscount, formatUint(old.StandardDiscountBps), formatUint(clone.StandardDiscountBps))
	e.emitChange(SettingGovernanceDiscount, formatUint(old.GovernanceDiscountBps), formatUint(clone.GovernanceDiscountBps))
	e.emitChange(SettingAgingDelay, formatUint(old.AgingDelayBlocks), formatUint(clone.AgingDelayBlocks))
	e.emitChange(SettingMinBalance, old.MinBalance.String(), clone.MinBalance.String())
	e.emitChange(SettingMaxBalance, old.MaxBalance.String(), clone.MaxBalance.String())
	e.emitChange(SettingOwnerShare, formatUint(old.OwnerShareBps), formatUint(clone.OwnerShareBps))
	return nil
}

func formatUint(v uint64) string { return strconv.FormatUint(v, 10) }
