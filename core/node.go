package core

import (
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/common"

	"trashbin/core/events"
	"trashbin/native/access"
	"trashbin/native/market"
	"trashbin/native/pricing"
	"trashbin/native/treasury"
	"trashbin/state"
	"trashbin/storage"
)

// ErrUnknownSetting is returned by UpdateSetting for an unrecognised name.
var ErrUnknownSetting = errors.New("core: unknown setting name")

// Node wires the engines, the ledger and the persistence manager into one
// serialized execution surface. Every mutating entry point runs under the
// node lock, advances the block height on success and commits the state to
// disk, so the engines themselves never need locking.
type Node struct {
	mu sync.Mutex

	logger   *slog.Logger
	store    *market.Store
	ledger   *state.Ledger
	auth     *access.Authority
	pricing  *pricing.Engine
	market   *market.Engine
	treasury *treasury.Engine
	registry *market.Registry
	manager  *state.Manager
}

// NewNode builds a fully wired node over the given database and loads any
// persisted state.
func NewNode(db storage.Database, owner, governance, moduleAddr common.Address, emitter events.Emitter, logger *slog.Logger) (*Node, error) {
	if logger == nil {
		logger = slog.Default()
	}
	store := market.NewStore()
	ledger := state.NewLedger()
	auth := access.NewAuthority(owner, governance)
	registry := market.NewRegistry()

	pricingEngine := pricing.NewEngine()
	pricingEngine.SetAuthority(auth)
	pricingEngine.SetEmitter(emitter)

	treasuryEngine := treasury.NewEngine()
	treasuryEngine.SetLedger(ledger)
	treasuryEngine.SetAuthority(auth)
	treasuryEngine.SetSettings(pricingEngine)
	treasuryEngine.SetModuleAddress(moduleAddr)
	treasuryEngine.SetEmitter(emitter)

	marketEngine := market.NewEngine(store)
	marketEngine.SetLedger(ledger)
	marketEngine.SetAuthority(auth)
	marketEngine.SetResolver(registry)
	marketEngine.SetSettings(pricingEngine)
	marketEngine.SetTreasury(treasuryEngine)
	marketEngine.SetModuleAddress(moduleAddr)
	marketEngine.SetEmitter(emitter)

	manager := state.NewManager(db, store, ledger, auth, pricingEngine)
	if err := manager.Load(); err != nil {
		return nil, fmt.Errorf("load state: %w", err)
	}
	marketEngine.SetBlockFunc(manager.Height)

	return &Node{
		logger:   logger,
		store:    store,
		ledger:   ledger,
		auth:     auth,
		pricing:  pricingEngine,
		market:   marketEngine,
		treasury: treasuryEngine,
		registry: registry,
		manager:  manager,
	}, nil
}

// Registry returns the collection registry so the embedding application can
// bind token contracts before serving traffic.
func (n *Node) Registry() *market.Registry { return n.registry }

// SetQualifyingCollection binds the collection whose ownership decides the
// buyer's discount tier.
func (n *Node) SetQualifyingCollection(q market.QualifyingCollection) {
	n.market.SetQualifyingCollection(q)
}

// commit advances the block height and persists the full state. Called only
// after a successful mutation.
func (n *Node) commit() error {
	n.manager.IncrementHeight()
	if err := n.manager.Commit(); err != nil {
		n.logger.Error("state commit failed", "err", err)
		return fmt.Errorf("commit state: %w", err)
	}
	return nil
}

func (n *Node) mutate(fn func() error) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if err := fn(); err != nil {
		return err
	}
	return n.commit()
}

// DepositUnique records an acknowledged unique-token arrival.
func (n *Node) DepositUnique(depositor, collection common.Address, tokenID *big.Int) error {
	return n.mutate(func() error {
		return n.market.DepositUnique(depositor, collection, tokenID)
	})
}

// DepositMulti records an acknowledged multi-token arrival.
func (n *Node) DepositMulti(depositor, collection common.Address, tokenID, amount *big.Int) error {
	return n.mutate(func() error {
		return n.market.DepositMulti(depositor, collection, tokenID, amount)
	})
}

// DepositMultiBatch records an acknowledged batch multi-token arrival.
func (n *Node) DepositMultiBatch(depositor, collection common.Address, tokenIDs, amounts []*big.Int) error {
	return n.mutate(func() error {
		return n.market.DepositMultiBatch(depositor, collection, tokenIDs, amounts)
	})
}

// Sell pulls the listed assets from the seller into escrow.
func (n *Node) Sell(seller common.Address, collections []common.Address, tokenIDs, amounts []*big.Int, uniqueFlags []bool) error {
	return n.mutate(func() error {
		return n.market.Sell(seller, collections, tokenIDs, amounts, uniqueFlags)
	})
}

// Buy purchases the records at the given indexes.
func (n *Node) Buy(buyer common.Address, value *big.Int, indexes []uint64, qualifyingIDs []*big.Int) error {
	return n.mutate(func() error {
		return n.market.Buy(buyer, value, indexes, qualifyingIDs)
	})
}

// RemoveRecord force-removes one record to the caller.
func (n *Node) RemoveRecord(caller common.Address, index uint64, qualifyingID *big.Int) error {
	return n.mutate(func() error {
		return n.market.RemoveRecord(caller, index, qualifyingID)
	})
}

// DeleteIndexes drops records without asset transfers.
func (n *Node) DeleteIndexes(caller common.Address, indexes []uint64) error {
	return n.mutate(func() error {
		return n.market.DeleteIndexes(caller, indexes)
	})
}

// WithdrawUnique recovers a mis-sent unique token.
func (n *Node) WithdrawUnique(caller, collection common.Address, tokenID *big.Int) error {
	return n.mutate(func() error {
		return n.market.WithdrawUnique(caller, collection, tokenID)
	})
}

// WithdrawMultiUnit recovers mis-sent multi-token units.
func (n *Node) WithdrawMultiUnit(caller, collection common.Address, tokenID, amount *big.Int) error {
	return n.mutate(func() error {
		return n.market.WithdrawMultiUnit(caller, collection, tokenID, amount)
	})
}

// WithdrawFungible recovers a fungible balance.
func (n *Node) WithdrawFungible(caller, tokenAddr common.Address, amount *big.Int) error {
	return n.mutate(func() error {
		return n.market.WithdrawFungible(caller, tokenAddr, amount)
	})
}

// WithdrawBalance distributes the module balance above the reserve.
func (n *Node) WithdrawBalance(caller common.Address) (*big.Int, error) {
	var distributed *big.Int
	err := n.mutate(func() error {
		var innerErr error
		distributed, innerErr = n.treasury.Withdraw(caller)
		return innerErr
	})
	return distributed, err
}

// Credit mints native balance to an account. Owner or governance only; this
// is the port of inbound external value.
func (n *Node) Credit(caller, to common.Address, amount *big.Int) error {
	return n.mutate(func() error {
		if err := n.auth.RequireAuthorized(caller); err != nil {
			return err
		}
		return n.ledger.Mint(to, amount)
	})
}

// UpdateSetting routes a single-field settings update by canonical name.
// Basis-point and block-count settings take the numeric value of the supplied
// integer.
func (n *Node) UpdateSetting(caller common.Address, name string, value *big.Int) error {
	return n.mutate(func() error {
		if value == nil {
			value = big.NewInt(0)
		}
		switch name {
		case pricing.SettingBuyPrice:
			return n.pricing.UpdateBuyPrice(caller, value)
		case pricing.SettingSellFee:
			return n.pricing.UpdateSellFee(caller, value)
		case pricing.SettingStandardDiscount:
			v, err := settingUint64(value, pricing.ErrStandardDiscountTooHigh)
			if err != nil {
				return err
			}
			return n.pricing.UpdateStandardDiscount(caller, v)
		case pricing.SettingGovernanceDiscount:
			v, err := settingUint64(value, pricing.ErrGovernanceDiscountTooHigh)
			if err != nil {
				return err
			}
			return n.pricing.UpdateGovernanceDiscount(caller, v)
		case pricing.SettingAgingDelay:
			v, err := settingUint64(value, pricing.ErrAgingDelayOutOfBounds)
			if err != nil {
				return err
			}
			return n.pricing.UpdateAgingDelay(caller, v)
		case pricing.SettingMinBalance:
			return n.pricing.UpdateMinBalance(caller, value)
		case pricing.SettingMaxBalance:
			return n.pricing.UpdateMaxBalance(caller, value)
		case pricing.SettingOwnerShare:
			v, err := settingUint64(value, pricing.ErrOwnerShareTooHigh)
			if err != nil {
				return err
			}
			return n.pricing.UpdateOwnerShare(caller, v)
		default:
			return ErrUnknownSetting
		}
	})
}

// settingUint64 narrows a submitted integer for a basis-point or block-count
// setting. Negative values and values past uint64 range fail with the field's
// bound error instead of wrapping.
func settingUint64(value *big.Int, bound error) (uint64, error) {
	if value.Sign() < 0 || !value.IsUint64() {
		return 0, bound
	}
	return value.Uint64(), nil
}

// UpdateAllSettings replaces the whole settings block atomically.
func (n *Node) UpdateAllSettings(caller common.Address, next pricing.Settings) error {
	return n.mutate(func() error {
		return n.pricing.UpdateAll(caller, next)
	})
}

// TogglePause flips the pause flag and returns the new state.
func (n *Node) TogglePause(caller common.Address) (bool, error) {
	var paused bool
	err := n.mutate(func() error {
		var innerErr error
		paused, innerErr = n.auth.TogglePause(caller)
		return innerErr
	})
	return paused, err
}

// TransferOwnership hands the owner role to a new account.
func (n *Node) TransferOwnership(caller, newOwner common.Address) error {
	return n.mutate(func() error {
		return n.auth.TransferOwnership(caller, newOwner)
	})
}

// Settings returns the active economic parameters.
func (n *Node) Settings() pricing.Settings {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.pricing.Current()
}

// Records returns the escrowed records in positional order.
func (n *Node) Records() []*market.AssetRecord {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.store.Records()
}

// Record returns the record at index.
func (n *Node) Record(index uint64) (*market.AssetRecord, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.store.Get(index)
}

// RecordCount returns the number of escrowed records.
func (n *Node) RecordCount() uint64 {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.store.Len()
}

// FindIndex locates a record by collection and token id, scanning from start.
func (n *Node) FindIndex(collection common.Address, tokenID *big.Int, start uint64) (uint64, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.store.FindIndex(collection, tokenID, start)
}

// IsAvailableToBuy reports whether the record at index has aged enough.
func (n *Node) IsAvailableToBuy(index uint64) (bool, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.market.IsAvailableToBuy(index)
}

// Balance returns the native balance of an account.
func (n *Node) Balance(addr common.Address) *big.Int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.ledger.BalanceOf(addr)
}

// Paused reports the pause flag.
func (n *Node) Paused() bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.auth.Paused()
}

// Owner returns the owner account.
func (n *Node) Owner() common.Address {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.auth.Owner()
}

// Governance returns the governance account.
func (n *Node) Governance() common.Address {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.auth.Governance()
}

// Height returns the current block height.
func (n *Node) Height() uint64 {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.manager.Height()
}
