// Package tokens provides in-process token collections implementing the
// market interfaces. They back deployments where the collections live inside
// the same process as the escrow engine rather than on an external chain.
package tokens

import (
	"errors"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

var (
	ErrUnknownToken     = errors.New("tokens: unknown token id")
	ErrNotTokenOwner    = errors.New("tokens: transfer from non-owner")
	ErrInsufficientUnit = errors.New("tokens: insufficient balance")
	ErrNegativeAmount   = errors.New("tokens: negative amount")
)

// UniqueCollection is a single-owner-per-id collection.
type UniqueCollection struct {
	owners map[string]common.Address
}

func NewUniqueCollection() *UniqueCollection {
	return &UniqueCollection{owners: make(map[string]common.Address)}
}

// Issue assigns a fresh token id to the given owner, overwriting any previous
// assignment.
func (c *UniqueCollection) Issue(owner common.Address, tokenID *big.Int) {
	c.owners[tokenID.String()] = owner
}

func (c *UniqueCollection) OwnerOf(tokenID *big.Int) (common.Address, error) {
	owner, ok := c.owners[tokenID.String()]
	if !ok {
		return common.Address{}, ErrUnknownToken
	}
	return owner, nil
}

func (c *UniqueCollection) TransferFrom(from, to common.Address, tokenID *big.Int) error {
	owner, err := c.OwnerOf(tokenID)
	if err != nil {
		return err
	}
	if owner != from {
		return ErrNotTokenOwner
	}
	c.owners[tokenID.String()] = to
	return nil
}

// MultiCollection is a balance-per-(owner,id) collection.
type MultiCollection struct {
	balances map[common.Address]map[string]*big.Int
}

func NewMultiCollection() *MultiCollection {
	return &MultiCollection{balances: make(map[common.Address]map[string]*big.Int)}
}

// Issue credits units of a token id to the given owner.
func (c *MultiCollection) Issue(owner common.Address, tokenID, amount *big.Int) error {
	if amount == nil || amount.Sign() < 0 {
		return ErrNegativeAmount
	}
	c.credit(owner, tokenID, amount)
	return nil
}

func (c *MultiCollection) BalanceOf(owner common.Address, tokenID *big.Int) (*big.Int, error) {
	if held, ok := c.balances[owner][tokenID.String()]; ok {
		return new(big.Int).Set(held), nil
	}
	return big.NewInt(0), nil
}

func (c *MultiCollection) SafeTransferFrom(from, to common.Address, tokenID, amount *big.Int) error {
	if amount == nil || amount.Sign() < 0 {
		return ErrNegativeAmount
	}
	held, _ := c.BalanceOf(from, tokenID)
	if held.Cmp(amount) < 0 {
		return ErrInsufficientUnit
	}
	c.balances[from][tokenID.String()] = held.Sub(held, amount)
	c.credit(to, tokenID, amount)
	return nil
}

func (c *MultiCollection) credit(owner common.Address, tokenID, amount *big.Int) {
	if c.balances[owner] == nil {
		c.balances[owner] = make(map[string]*big.Int)
	}
	key := tokenID.String()
	if c.balances[owner][key] == nil {
		c.balances[owner][key] = big.NewInt(0)
	}
	c.balances[owner][key].Add(c.balances[owner][key], amount)
}

// FungibleCollection is a plain per-owner balance held on behalf of a fixed
// account, matching the failsafe-withdrawal transfer shape where the holder
// is implicit.
type FungibleCollection struct {
	holder   common.Address
	balances map[common.Address]*big.Int
}

// NewFungibleCollection creates a fungible token whose Transfer debits the
// given holder account.
func NewFungibleCollection(holder common.Address) *FungibleCollection {
	return &FungibleCollection{holder: holder, balances: make(map[common.Address]*big.Int)}
}

// Issue credits an account.
func (c *FungibleCollection) Issue(owner common.Address, amount *big.Int) error {
	if amount == nil || amount.Sign() < 0 {
		return ErrNegativeAmount
	}
	bal, _ := c.BalanceOf(owner)
	c.balances[owner] = bal.Add(bal, amount)
	return nil
}

func (c *FungibleCollection) BalanceOf(owner common.Address) (*big.Int, error) {
	if bal, ok := c.balances[owner]; ok {
		return new(big.Int).Set(bal), nil
	}
	return big.NewInt(0), nil
}

func (c *FungibleCollection) Transfer(to common.Address, amount *big.Int) error {
	if amount == nil || amount.Sign() < 0 {
		return ErrNegativeAmount
	}
	held, _ := c.BalanceOf(c.holder)
	if held.Cmp(amount) < 0 {
		return ErrInsufficientUnit
	}
	c.balances[c.holder] = held.Sub(held, amount)
	bal, _ := c.BalanceOf(to)
	c.balances[to] = bal.Add(bal, amount)
	return nil
}

// QualifyingCollection is a unique collection with a per-id deactivation
// flag, sufficient to decide discount tiers.
type QualifyingCollection struct {
	*UniqueCollection
	deactivated map[string]bool
}

func NewQualifyingCollection() *QualifyingCollection {
	return &QualifyingCollection{
		UniqueCollection: NewUniqueCollection(),
		deactivated:      make(map[string]bool),
	}
}

// SetDeactivated flips the deactivation flag for a token id.
func (c *QualifyingCollection) SetDeactivated(tokenID *big.Int, deactivated bool) {
	c.deactivated[tokenID.String()] = deactivated
}

func (c *QualifyingCollection) Deactivated(tokenID *big.Int) (bool, error) {
	if _, err := c.OwnerOf(tokenID); err != nil {
		return false, err
	}
	return c.deactivated[tokenID.String()], nil
}
