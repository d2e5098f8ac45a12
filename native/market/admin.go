package market

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// RemoveRecord is the owner-forced removal of one escrowed record. The caller
// must hold an active governance-tier qualifying asset as a secondary access
// key. Blocked while paused; the administrative batch deletion and the
// failsafe withdrawals below remain available for recovery.
func (e *Engine) RemoveRecord(caller common.Address, index uint64, qualifyingID *big.Int) error {
	if err := e.requireWired(); err != nil {
		return err
	}
	if e.resolver == nil {
		return errNilResolver
	}
	if err := e.auth.RequireAuthorized(caller); err != nil {
		return err
	}
	if err := e.guard(); err != nil {
		return err
	}
	if index >= e.store.Len() {
		return ErrIndexOutOfBounds
	}
	if e.qualifying == nil {
		return errNilQualifying
	}
	id := cloneBig(qualifyingID)
	owner, err := e.qualifying.OwnerOf(id)
	if err != nil {
		return err
	}
	if owner != caller {
		return ErrQualifyingAssetNotOwned
	}
	deactivated, err := e.qualifying.Deactivated(id)
	if err != nil {
		return err
	}
	if deactivated {
		return ErrQualifyingAssetNotActive
	}

	cp := e.begin()
	rec, err := e.store.SwapDelete(index)
	if err != nil {
		e.revert(cp)
		return err
	}
	if err := e.transferOut(caller, rec, big.NewInt(1)); err != nil {
		e.revert(cp)
		return err
	}
	e.commit(cp)
	e.emit(NewRemovedEvent(rec))
	return nil
}

// DeleteIndexes drops records without transferring the underlying assets,
// leaving them recoverable only through the failsafe withdrawals. Indexes
// follow the same strict descending-order requirement as Buy. Usable while
// paused.
func (e *Engine) DeleteIndexes(caller common.Address, indexes []uint64) error {
	if err := e.requireWired(); err != nil {
		return err
	}
	if err := e.auth.RequireAuthorized(caller); err != nil {
		return err
	}
	if len(indexes) == 0 || len(indexes) > MaxBatchItems {
		return ErrTooManyItems
	}
	cp := e.begin()
	removed, err := e.store.SwapDeleteMany(indexes)
	if err != nil {
		e.revert(cp)
		return err
	}
	e.commit(cp)
	for _, rec := range removed {
		e.emit(NewDeletedEvent(rec))
	}
	return nil
}

// WithdrawUnique recovers a mis-sent unique token to the caller. Owner-only,
// pause-exempt; the record store is not consulted.
func (e *Engine) WithdrawUnique(caller, collection common.Address, tokenID *big.Int) error {
	if err := e.requireFailsafe(caller); err != nil {
		return err
	}
	token, err := e.resolver.Unique(collection)
	if err != nil {
		return err
	}
	if err := token.TransferFrom(e.moduleAddr, caller, cloneBig(tokenID)); err != nil {
		return err
	}
	e.emit(NewUniqueWithdrawnEvent(collection, tokenID))
	return nil
}

// WithdrawMultiUnit recovers mis-sent multi-token units to the caller.
// Owner-only, pause-exempt.
func (e *Engine) WithdrawMultiUnit(caller, collection common.Address, tokenID, amount *big.Int) error {
	if err := e.requireFailsafe(caller); err != nil {
		return err
	}
	if amount == nil || amount.Sign() <= 0 {
		return errNonPositiveAmount
	}
	token, err := e.resolver.Multi(collection)
	if err != nil {
		return err
	}
	if err := token.SafeTransferFrom(e.moduleAddr, caller, cloneBig(tokenID), cloneBig(amount)); err != nil {
		return err
	}
	e.emit(NewMultiWithdrawnEvent(collection, tokenID, amount))
	return nil
}

// WithdrawFungible recovers an arbitrary fungible balance to the caller.
// Owner-only, pause-exempt.
func (e *Engine) WithdrawFungible(caller, tokenAddr common.Address, amount *big.Int) error {
	if err := e.requireFailsafe(caller); err != nil {
		return err
	}
	if amount == nil || amount.Sign() <= 0 {
		return errNonPositiveAmount
	}
	token, err := e.resolver.Fungible(tokenAddr)
	if err != nil {
		return err
	}
	if err := token.Transfer(caller, cloneBig(amount)); err != nil {
		return err
	}
	e.emit(NewFungibleWithdrawnEvent(tokenAddr, amount))
	return nil
}

func (e *Engine) requireFailsafe(caller common.Address) error {
	if e == nil || e.auth == nil {
		return errNilAuthority
	}
	if e.resolver == nil {
		return errNilResolver
	}
	return e.auth.RequireAuthorized(caller)
}
