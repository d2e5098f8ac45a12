package market

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// Sell is the pull-based counterpart to the deposit gateway for sellers who
// must transfer assets in themselves. The four arrays are parallel: one entry
// per collection, with the unit flag selecting the standard. A unique entry
// pulls exactly one token regardless of its amount value; a multi entry pulls
// amount units. Mislabeling a collection's kind fails with the resolver's or
// token contract's own error. One record is appended and one fee paid per
// unit pulled, mirroring the deposit gateway.
func (e *Engine) Sell(seller common.Address, collections []common.Address, tokenIDs, amounts []*big.Int, uniqueFlags []bool) error {
	if err := e.requireWired(); err != nil {
		return err
	}
	if e.resolver == nil {
		return errNilResolver
	}
	if err := e.guard(); err != nil {
		return err
	}
	if len(collections) != len(tokenIDs) || len(collections) != len(amounts) || len(collections) != len(uniqueFlags) {
		return ErrArrayLengthMismatch
	}
	if len(collections) > MaxBatchItems {
		return ErrTooManyCollections
	}
	units := make([]uint64, len(collections))
	for i := range collections {
		if uniqueFlags[i] {
			units[i] = 1
			continue
		}
		n, err := unitCount(amounts[i], ErrTooManySalesPerCollection)
		if err != nil {
			return err
		}
		units[i] = n
	}

	fee := e.settings.Current().SellFee
	cp := e.begin()
	for i, collection := range collections {
		if uniqueFlags[i] {
			token, err := e.resolver.Unique(collection)
			if err != nil {
				e.revert(cp)
				return err
			}
			if err := e.recordUnit(seller, collection, cloneBig(tokenIDs[i]), false, fee); err != nil {
				e.revert(cp)
				return err
			}
			if err := token.TransferFrom(seller, e.moduleAddr, cloneBig(tokenIDs[i])); err != nil {
				e.revert(cp)
				return err
			}
			continue
		}
		token, err := e.resolver.Multi(collection)
		if err != nil {
			e.revert(cp)
			return err
		}
		for j := uint64(0); j < units[i]; j++ {
			if err := e.recordUnit(seller, collection, cloneBig(tokenIDs[i]), true, fee); err != nil {
				e.revert(cp)
				return err
			}
		}
		if err := token.SafeTransferFrom(seller, e.moduleAddr, cloneBig(tokenIDs[i]), new(big.Int).SetUint64(units[i])); err != nil {
			e.revert(cp)
			return err
		}
	}
	e.commit(cp)
	return nil
}
