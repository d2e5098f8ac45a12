package market

import (
	"errors"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// ErrUnknownCollection is returned by the registry when a collection address
// has no registered binding. A mislabeled kind surfaces the same way: the
// lookup for the declared kind fails and the error propagates unchanged.
var ErrUnknownCollection = errors.New("market: unknown collection")

// UniqueToken is the single-ownership token standard: one owner per id.
type UniqueToken interface {
	OwnerOf(tokenID *big.Int) (common.Address, error)
	TransferFrom(from, to common.Address, tokenID *big.Int) error
}

// MultiToken is the balance-based token standard: a balance per (owner, id)
// pair.
type MultiToken interface {
	BalanceOf(owner common.Address, tokenID *big.Int) (*big.Int, error)
	SafeTransferFrom(from, to common.Address, tokenID, amount *big.Int) error
}

// FungibleToken is the plain fungible standard used only by the failsafe
// recovery path.
type FungibleToken interface {
	BalanceOf(owner common.Address) (*big.Int, error)
	Transfer(to common.Address, amount *big.Int) error
}

// QualifyingCollection is the external collection whose ownership decides the
// buyer's discount tier. An active asset earns the governance-tier discount,
// a deactivated one the standard-tier discount.
type QualifyingCollection interface {
	OwnerOf(tokenID *big.Int) (common.Address, error)
	Deactivated(tokenID *big.Int) (bool, error)
}

// TokenResolver binds collection addresses to their token contracts. The
// engine resolves by the kind the caller declared; asking for the wrong kind
// fails with the resolver's own error.
type TokenResolver interface {
	Unique(collection common.Address) (UniqueToken, error)
	Multi(collection common.Address) (MultiToken, error)
	Fungible(collection common.Address) (FungibleToken, error)
}

// Registry is a static TokenResolver backed by per-kind address maps.
type Registry struct {
	unique   map[common.Address]UniqueToken
	multi    map[common.Address]MultiToken
	fungible map[common.Address]FungibleToken
}

// NewRegistry returns an empty token registry.
func NewRegistry() *Registry {
	return &Registry{
		unique:   make(map[common.Address]UniqueToken),
		multi:    make(map[common.Address]MultiToken),
		fungible: make(map[common.Address]FungibleToken),
	}
}

// RegisterUnique binds a unique-token contract to its address.
func (r *Registry) RegisterUnique(collection common.Address, token UniqueToken) {
	r.unique[collection] = token
}

// RegisterMulti binds a multi-token contract to its address.
func (r *Registry) RegisterMulti(collection common.Address, token MultiToken) {
	r.multi[collection] = token
}

// RegisterFungible binds a fungible-token contract to its address.
func (r *Registry) RegisterFungible(collection common.Address, token FungibleToken) {
	r.fungible[collection] = token
}

// Unique implements TokenResolver.
func (r *Registry) Unique(collection common.Address) (UniqueToken, error) {
	token, ok := r.unique[collection]
	if !ok {
		return nil, ErrUnknownCollection
	}
	return token, nil
}

// Multi implements TokenResolver.
func (r *Registry) Multi(collection common.Address) (MultiToken, error) {
	token, ok := r.multi[collection]
	if !ok {
		return nil, ErrUnknownCollection
	}
	return token, nil
}

// Fungible implements TokenResolver.
func (r *Registry) Fungible(collection common.Address) (FungibleToken, error) {
	token, ok := r.fungible[collection]
	if !ok {
		return nil, ErrUnknownCollection
	}
	return token, nil
}
