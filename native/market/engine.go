package market

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"trashbin/core/events"
	"trashbin/core/types"
	"trashbin/native/access"
	"trashbin/native/pricing"
)

// Authority exposes the capability checks the engine needs from the access
// module.
type Authority interface {
	IsAuthorized(caller common.Address) bool
	RequireAuthorized(caller common.Address) error
	Paused() bool
	Owner() common.Address
}

// Ledger moves the native balance between accounts. Snapshots make every
// multi-step entry point atomic: validation happens first, then mutations,
// then external transfers, and any downstream failure reverts the whole call.
type Ledger interface {
	BalanceOf(addr common.Address) *big.Int
	Transfer(from, to common.Address, amount *big.Int) error
	Snapshot() int
	RevertToSnapshot(id int)
	DiscardSnapshot(id int)
}

// SettingsSource provides the active economic parameters.
type SettingsSource interface {
	Current() pricing.Settings
}

// AutoWithdrawer is invoked at the end of a buy; it distributes the balance
// when it exceeds the configured ceiling.
type AutoWithdrawer interface {
	MaybeAutoWithdraw() (bool, error)
}

// Engine is the escrow/marketplace core: it accepts deposited assets of both
// supported standards, holds them as ordered records, and resells them at a
// discounted price once the aging delay elapses. Execution is serialized by
// construction; the engine performs no internal locking.
type Engine struct {
	store      *Store
	ledger     Ledger
	auth       Authority
	resolver   TokenResolver
	qualifying QualifyingCollection
	settings   SettingsSource
	treasury   AutoWithdrawer
	emitter    events.Emitter
	moduleAddr common.Address
	blockFn    func() uint64
}

// NewEngine creates a market engine around the supplied record store with a
// no-op emitter. Collaborators are wired via the setters.
func NewEngine(store *Store) *Engine {
	return &Engine{
		store:   store,
		emitter: events.NoopEmitter{},
		blockFn: func() uint64 { return 0 },
	}
}

// SetLedger configures the balance ledger.
func (e *Engine) SetLedger(ledger Ledger) { e.ledger = ledger }

// SetAuthority configures the owner/governance capability check.
func (e *Engine) SetAuthority(auth Authority) { e.auth = auth }

// SetResolver configures the collection-address resolver.
func (e *Engine) SetResolver(resolver TokenResolver) { e.resolver = resolver }

// SetQualifyingCollection configures the collection consulted for discount
// tiers and forced-removal validation.
func (e *Engine) SetQualifyingCollection(q QualifyingCollection) { e.qualifying = q }

// SetSettings configures the settings source.
func (e *Engine) SetSettings(settings SettingsSource) { e.settings = settings }

// SetTreasury configures the auto-withdraw hook invoked after buys.
func (e *Engine) SetTreasury(treasury AutoWithdrawer) { e.treasury = treasury }

// SetModuleAddress configures the engine's own account, the source of fee
// payments and the sink of buy payments.
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

// SetBlockFunc overrides the block-height source. Primarily for tests and the
// daemon wiring.
func (e *Engine) SetBlockFunc(fn func() uint64) {
	if fn == nil {
		e.blockFn = func() uint64 { return 0 }
		return
	}
	e.blockFn = fn
}

// Store returns the underlying record store for read accessors.
func (e *Engine) Store() *Store { return e.store }

// ModuleAddress returns the engine's own account address.
func (e *Engine) ModuleAddress() common.Address { return e.moduleAddr }

func (e *Engine) currentBlock() uint64 {
	if e == nil || e.blockFn == nil {
		return 0
	}
	return e.blockFn()
}

func (e *Engine) emit(event *types.Event) {
	if e == nil || e.emitter == nil || event == nil {
		return
	}
	e.emitter.Emit(marketEvent{evt: event})
}

func (e *Engine) guard() error {
	if e.auth == nil {
		return errNilAuthority
	}
	return access.Guard(e.auth)
}

func (e *Engine) requireWired() error {
	switch {
	case e == nil || e.store == nil:
		return errNilStore
	case e.ledger == nil:
		return errNilLedger
	case e.auth == nil:
		return errNilAuthority
	case e.settings == nil:
		return errNilSettings
	default:
		return nil
	}
}

// begin opens a store+ledger snapshot pair after validation has passed.
type checkpoint struct {
	store  int
	ledger int
}

func (e *Engine) begin() checkpoint {
	return checkpoint{store: e.store.Snapshot(), ledger: e.ledger.Snapshot()}
}

func (e *Engine) revert(cp checkpoint) {
	e.store.RevertToSnapshot(cp.store)
	e.ledger.RevertToSnapshot(cp.ledger)
}

func (e *Engine) commit(cp checkpoint) {
	e.store.DiscardSnapshot(cp.store)
	e.ledger.DiscardSnapshot(cp.ledger)
}

// recordUnit appends one record for the given unit, pays the per-unit fee to
// the depositor out of the module balance, and emits the sale event.
func (e *Engine) recordUnit(depositor, collection common.Address, tokenID *big.Int, multi bool, fee *big.Int) error {
	rec := &AssetRecord{
		Collection:   collection,
		TokenID:      tokenID,
		Multi:        multi,
		DepositBlock: e.currentBlock(),
	}
	if err := e.store.Append(rec); err != nil {
		return err
	}
	if fee.Sign() > 0 {
		if err := e.ledger.Transfer(e.moduleAddr, depositor, fee); err != nil {
			return err
		}
	}
	e.emit(NewSaleEvent(rec))
	return nil
}

func cloneBig(v *big.Int) *big.Int {
	if v == nil {
		return big.NewInt(0)
	}
	return new(big.Int).Set(v)
}
