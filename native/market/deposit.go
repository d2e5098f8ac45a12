package market

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// The deposit gateway is the acknowledging-transfer callback surface: it runs
// when an asset of either supported standard arrives through the safe
// transfer path. Assets arriving outside these callbacks are never recorded
// and never earn the deposit fee; the owner failsafe withdrawals are the only
// way to recover them.

// DepositUnique records the arrival of a single unique-token unit and pays
// the depositor the flat per-unit fee from the module balance.
func (e *Engine) DepositUnique(depositor, collection common.Address, tokenID *big.Int) error {
	if err := e.requireWired(); err != nil {
		return err
	}
	if err := e.guard(); err != nil {
		return err
	}
	if err := e.resolveKind(collection, false); err != nil {
		return err
	}
	fee := e.settings.Current().SellFee
	cp := e.begin()
	if err := e.recordUnit(depositor, collection, cloneBig(tokenID), false, fee); err != nil {
		e.revert(cp)
		return err
	}
	e.commit(cp)
	return nil
}

// DepositMulti records the arrival of amount units of one multi-token id.
// Each unit becomes its own record and earns the fee once.
func (e *Engine) DepositMulti(depositor, collection common.Address, tokenID, amount *big.Int) error {
	if err := e.requireWired(); err != nil {
		return err
	}
	if err := e.guard(); err != nil {
		return err
	}
	if err := e.resolveKind(collection, true); err != nil {
		return err
	}
	units, err := unitCount(amount, ErrTooManyItems)
	if err != nil {
		return err
	}
	fee := e.settings.Current().SellFee
	cp := e.begin()
	for i := uint64(0); i < units; i++ {
		if err := e.recordUnit(depositor, collection, cloneBig(tokenID), true, fee); err != nil {
			e.revert(cp)
			return err
		}
	}
	e.commit(cp)
	return nil
}

// DepositMultiBatch records the arrival of a batch multi-token transfer with
// parallel id and amount arrays. Both the id-array length and each amount are
// bounded; violating either ceiling rejects the whole transfer before any
// record is created.
func (e *Engine) DepositMultiBatch(depositor, collection common.Address, tokenIDs, amounts []*big.Int) error {
	if err := e.requireWired(); err != nil {
		return err
	}
	if err := e.guard(); err != nil {
		return err
	}
	if err := e.resolveKind(collection, true); err != nil {
		return err
	}
	if len(tokenIDs) != len(amounts) {
		return ErrArrayLengthMismatch
	}
	if len(tokenIDs) > MaxBatchItems {
		return ErrTooManyIDs
	}
	units := make([]uint64, len(amounts))
	for i, amount := range amounts {
		n, err := unitCount(amount, ErrTooManyPerID)
		if err != nil {
			return err
		}
		units[i] = n
	}
	fee := e.settings.Current().SellFee
	cp := e.begin()
	for i, tokenID := range tokenIDs {
		for j := uint64(0); j < units[i]; j++ {
			if err := e.recordUnit(depositor, collection, cloneBig(tokenID), true, fee); err != nil {
				e.revert(cp)
				return err
			}
		}
	}
	e.commit(cp)
	return nil
}

// resolveKind checks that the arriving collection is registered under the
// declared record kind before any record is minted or fee paid.
func (e *Engine) resolveKind(collection common.Address, multi bool) error {
	if e.resolver == nil {
		return errNilResolver
	}
	if multi {
		_, err := e.resolver.Multi(collection)
		return err
	}
	_, err := e.resolver.Unique(collection)
	return err
}

func unitCount(amount *big.Int, limitErr error) (uint64, error) {
	if amount == nil || amount.Sign() <= 0 {
		return 0, errNonPositiveAmount
	}
	if !amount.IsUint64() || amount.Uint64() > MaxBatchItems {
		return 0, limitErr
	}
	return amount.Uint64(), nil
}
