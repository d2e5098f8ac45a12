package market

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// AssetRecord is one escrowed unit. A multi-token deposit of quantity q
// creates q independent records, so every record always represents exactly
// one unit. Records are immutable once stored; their position in the store is
// their only external handle and is reassigned on deletion.
type AssetRecord struct {
	Collection   common.Address
	TokenID      *big.Int
	Multi        bool
	DepositBlock uint64
}

// Clone returns a deep copy so callers can hold the result across store
// mutations.
func (r *AssetRecord) Clone() *AssetRecord {
	if r == nil {
		return nil
	}
	clone := *r
	if r.TokenID != nil {
		clone.TokenID = new(big.Int).Set(r.TokenID)
	} else {
		clone.TokenID = big.NewInt(0)
	}
	return &clone
}

// SanitizeRecord validates and normalises a record, returning a clone with a
// non-nil token id. The original value is never mutated.
func SanitizeRecord(r *AssetRecord) (*AssetRecord, error) {
	if r == nil {
		return nil, fmt.Errorf("market: nil record")
	}
	clone := r.Clone()
	if clone.TokenID.Sign() < 0 {
		return nil, fmt.Errorf("market: negative token id")
	}
	return clone, nil
}
