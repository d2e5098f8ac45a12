package market

import (
	"math/big"
	"strconv"

	"github.com/ethereum/go-ethereum/common"

	"trashbin/core/types"
)

const (
	EventTypeSale              = "market.sale"
	EventTypePurchase          = "market.purchase"
	EventTypeRemoved           = "market.removed"
	EventTypeDeleted           = "market.deleted"
	EventTypeUniqueWithdrawn   = "market.failsafe.unique_withdrawn"
	EventTypeMultiWithdrawn    = "market.failsafe.multi_withdrawn"
	EventTypeFungibleWithdrawn = "market.failsafe.fungible_withdrawn"
)

type marketEvent struct {
	evt *types.Event
}

func (m marketEvent) EventType() string {
	if m.evt == nil {
		return ""
	}
	return m.evt.Type
}

func (m marketEvent) Event() *types.Event { return m.evt }

// NewSaleEvent is the canonical payload emitted once per unit recorded by the
// deposit gateway or the sell path.
func NewSaleEvent(rec *AssetRecord) *types.Event {
	evt := newRecordEvent(EventTypeSale, rec)
	if rec != nil {
		evt.Attributes["depositBlock"] = strconv.FormatUint(rec.DepositBlock, 10)
	}
	return evt
}

// NewPurchaseEvent is the canonical payload emitted once per record bought.
func NewPurchaseEvent(rec *AssetRecord) *types.Event {
	return newRecordEvent(EventTypePurchase, rec)
}

// NewRemovedEvent is emitted for an owner-forced removal of a single record.
func NewRemovedEvent(rec *AssetRecord) *types.Event {
	return newRecordEvent(EventTypeRemoved, rec)
}

// NewDeletedEvent is emitted once per record dropped by an administrative
// batch deletion.
func NewDeletedEvent(rec *AssetRecord) *types.Event {
	return newRecordEvent(EventTypeDeleted, rec)
}

// NewUniqueWithdrawnEvent is emitted by the unique-token failsafe withdrawal.
func NewUniqueWithdrawnEvent(collection common.Address, tokenID *big.Int) *types.Event {
	return &types.Event{Type: EventTypeUniqueWithdrawn, Attributes: map[string]string{
		"collection": collection.Hex(),
		"tokenId":    bigString(tokenID),
	}}
}

// NewMultiWithdrawnEvent is emitted by the multi-token failsafe withdrawal.
func NewMultiWithdrawnEvent(collection common.Address, tokenID, amount *big.Int) *types.Event {
	return &types.Event{Type: EventTypeMultiWithdrawn, Attributes: map[string]string{
		"collection": collection.Hex(),
		"tokenId":    bigString(tokenID),
		"amount":     bigString(amount),
	}}
}

// NewFungibleWithdrawnEvent is emitted by the fungible-token failsafe
// withdrawal.
func NewFungibleWithdrawnEvent(token common.Address, amount *big.Int) *types.Event {
	return &types.Event{Type: EventTypeFungibleWithdrawn, Attributes: map[string]string{
		"token":  token.Hex(),
		"amount": bigString(amount),
	}}
}

func newRecordEvent(eventType string, rec *AssetRecord) *types.Event {
	attrs := make(map[string]string)
	if rec != nil {
		attrs["collection"] = rec.Collection.Hex()
		attrs["tokenId"] = bigString(rec.TokenID)
		attrs["multi"] = strconv.FormatBool(rec.Multi)
	}
	return &types.Event{Type: eventType, Attributes: attrs}
}

func bigString(v *big.Int) string {
	if v == nil {
		return "0"
	}
	return v.String()
}
