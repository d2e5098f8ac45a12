package market

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"trashbin/native/pricing"
)

// Buy purchases the records at the supplied indexes, which must be non-empty
// and in strictly descending order so that swap-compaction never relocates a
// still-to-be-processed record under a caller-held index. At most one
// qualifying asset id may be supplied; owning it discounts every item in the
// batch. The attached value is absorbed in full: overpayment is retained by
// the module balance, not refunded.
func (e *Engine) Buy(buyer common.Address, value *big.Int, indexes []uint64, qualifyingIDs []*big.Int) error {
	if err := e.requireWired(); err != nil {
		return err
	}
	if e.resolver == nil {
		return errNilResolver
	}
	if err := e.guard(); err != nil {
		return err
	}
	if len(indexes) == 0 || len(indexes) > MaxBatchItems {
		return ErrTooManyPurchases
	}
	if err := requireDescending(indexes); err != nil {
		return err
	}
	settings := e.settings.Current()
	perItem, err := e.quotePerItem(buyer, settings, qualifyingIDs)
	if err != nil {
		return err
	}
	total := new(big.Int).Mul(perItem, big.NewInt(int64(len(indexes))))
	if value == nil || value.Cmp(total) < 0 {
		return ErrInsufficientPayment
	}

	cp := e.begin()
	if err := e.ledger.Transfer(buyer, e.moduleAddr, value); err != nil {
		e.revert(cp)
		return err
	}
	for _, index := range indexes {
		rec, err := e.store.Get(index)
		if err != nil {
			e.revert(cp)
			return err
		}
		if e.currentBlock()-rec.DepositBlock < settings.AgingDelayBlocks {
			e.revert(cp)
			return ErrTooEarly
		}
		if _, err := e.store.SwapDelete(index); err != nil {
			e.revert(cp)
			return err
		}
		if err := e.transferOut(buyer, rec, big.NewInt(1)); err != nil {
			e.revert(cp)
			return err
		}
		e.emit(NewPurchaseEvent(rec))
	}
	if e.treasury != nil {
		if _, err := e.treasury.MaybeAutoWithdraw(); err != nil {
			e.revert(cp)
			return err
		}
	}
	e.commit(cp)
	return nil
}

// IsAvailableToBuy exposes the bounds, pause and aging checks of Buy without
// purchasing, for client-side batching decisions.
func (e *Engine) IsAvailableToBuy(index uint64) (bool, error) {
	if err := e.requireWired(); err != nil {
		return false, err
	}
	if err := e.guard(); err != nil {
		return false, err
	}
	rec, err := e.store.Get(index)
	if err != nil {
		return false, err
	}
	delay := e.settings.Current().AgingDelayBlocks
	return e.currentBlock()-rec.DepositBlock >= delay, nil
}

// quotePerItem computes the per-item price once per call, before any
// transfer. A single qualifying asset discounts the whole batch: an active
// asset earns the governance-tier discount, a deactivated one the
// standard-tier discount.
func (e *Engine) quotePerItem(buyer common.Address, settings pricing.Settings, qualifyingIDs []*big.Int) (*big.Int, error) {
	price := cloneBig(settings.BuyPrice)
	if len(qualifyingIDs) == 0 {
		return price, nil
	}
	if len(qualifyingIDs) > 1 {
		return nil, ErrTooManyQualifyingAssets
	}
	if e.qualifying == nil {
		return nil, errNilQualifying
	}
	id := cloneBig(qualifyingIDs[0])
	owner, err := e.qualifying.OwnerOf(id)
	if err != nil {
		return nil, err
	}
	if owner != buyer {
		return nil, ErrQualifyingAssetNotOwned
	}
	deactivated, err := e.qualifying.Deactivated(id)
	if err != nil {
		return nil, err
	}
	discountBps := settings.GovernanceDiscountBps
	if deactivated {
		discountBps = settings.StandardDiscountBps
	}
	return applyDiscount(price, discountBps), nil
}

// applyDiscount returns price*(10000-discountBps)/10000, rounded down.
func applyDiscount(price *big.Int, discountBps uint64) *big.Int {
	remainder := new(big.Int).SetUint64(pricing.BpsDenominator - discountBps)
	out := new(big.Int).Mul(price, remainder)
	return out.Div(out, big.NewInt(pricing.BpsDenominator))
}

func (e *Engine) transferOut(to common.Address, rec *AssetRecord, amount *big.Int) error {
	if rec.Multi {
		token, err := e.resolver.Multi(rec.Collection)
		if err != nil {
			return err
		}
		return token.SafeTransferFrom(e.moduleAddr, to, cloneBig(rec.TokenID), amount)
	}
	token, err := e.resolver.Unique(rec.Collection)
	if err != nil {
		return err
	}
	return token.TransferFrom(e.moduleAddr, to, cloneBig(rec.TokenID))
}
