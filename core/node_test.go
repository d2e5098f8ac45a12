package core

import (
	"errors"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"

	"trashbin/core/events"
	"trashbin/native/access"
	"trashbin/native/pricing"
	"trashbin/native/tokens"
	"trashbin/storage"
)

var (
	nodeOwner      = common.HexToAddress("0x01")
	nodeGovernance = common.HexToAddress("0x02")
	nodeModule     = common.HexToAddress("0xAA")
	nodeUser       = common.HexToAddress("0x11")
	collectionAddr = common.HexToAddress("0xB1")
)

func newNode(t *testing.T, db storage.Database) *Node {
	t.Helper()
	node, err := NewNode(db, nodeOwner, nodeGovernance, nodeModule, events.NoopEmitter{}, nil)
	if err != nil {
		t.Fatalf("new node: %v", err)
	}
	return node
}

func TestNodePersistsAcrossRestarts(t *testing.T) {
	db := storage.NewMemDB()
	node := newNode(t, db)

	if err := node.Credit(nodeOwner, nodeUser, big.NewInt(1_000)); err != nil {
		t.Fatalf("credit: %v", err)
	}
	if err := node.UpdateSetting(nodeOwner, "buyPrice", big.NewInt(5_000)); err != nil {
		t.Fatalf("update setting: %v", err)
	}
	if _, err := node.TogglePause(nodeGovernance); err != nil {
		t.Fatalf("toggle pause: %v", err)
	}

	restarted := newNode(t, db)
	if got := restarted.Balance(nodeUser); got.Cmp(big.NewInt(1_000)) != 0 {
		t.Fatalf("expected restored balance 1000, got %s", got)
	}
	if got := restarted.Settings().BuyPrice; got.Cmp(big.NewInt(5_000)) != 0 {
		t.Fatalf("expected restored buy price 5000, got %s", got)
	}
	if !restarted.Paused() {
		t.Fatal("expected restored pause flag")
	}
	if restarted.Height() != 3 {
		t.Fatalf("expected height 3 after three mutations, got %d", restarted.Height())
	}
}

func TestNodeFailedMutationDoesNotAdvanceHeight(t *testing.T) {
	node := newNode(t, storage.NewMemDB())

	if err := node.Credit(nodeUser, nodeUser, big.NewInt(1)); !errors.Is(err, access.ErrNotAuthorized) {
		t.Fatalf("expected ErrNotAuthorized, got %v", err)
	}
	if node.Height() != 0 {
		t.Fatalf("expected height 0 after rejected mutation, got %d", node.Height())
	}
}

func TestNodeUnknownSetting(t *testing.T) {
	node := newNode(t, storage.NewMemDB())
	if err := node.UpdateSetting(nodeOwner, "bogus", big.NewInt(1)); !errors.Is(err, ErrUnknownSetting) {
		t.Fatalf("expected ErrUnknownSetting, got %v", err)
	}
}

func TestNodeSettingRejectsOutOfRangeIntegers(t *testing.T) {
	node := newNode(t, storage.NewMemDB())
	before := node.Settings()

	// 2^64 + 9999 would wrap to an in-bounds 9999 if narrowed blindly.
	wrapped := new(big.Int).Lsh(big.NewInt(1), 64)
	wrapped.Add(wrapped, big.NewInt(9_999))
	if err := node.UpdateSetting(nodeOwner, "standardDiscount", wrapped); !errors.Is(err, pricing.ErrStandardDiscountTooHigh) {
		t.Fatalf("expected ErrStandardDiscountTooHigh, got %v", err)
	}

	// A negative delay would be accepted as its absolute value.
	if err := node.UpdateSetting(nodeOwner, "agingDelay", big.NewInt(-30_000)); !errors.Is(err, pricing.ErrAgingDelayOutOfBounds) {
		t.Fatalf("expected ErrAgingDelayOutOfBounds, got %v", err)
	}

	after := node.Settings()
	if after.StandardDiscountBps != before.StandardDiscountBps || after.AgingDelayBlocks != before.AgingDelayBlocks {
		t.Fatalf("settings changed on rejected update: %+v", after)
	}
	if node.Height() != 0 {
		t.Fatalf("expected height 0 after rejected updates, got %d", node.Height())
	}
}

func TestNodeSellRecordsAndAges(t *testing.T) {
	node := newNode(t, storage.NewMemDB())
	unique := tokens.NewUniqueCollection()
	node.Registry().RegisterUnique(collectionAddr, unique)
	unique.Issue(nodeUser, big.NewInt(7))

	if err := node.Credit(nodeOwner, nodeModule, big.NewInt(1_000)); err != nil {
		t.Fatalf("credit module: %v", err)
	}
	err := node.Sell(nodeUser,
		[]common.Address{collectionAddr},
		[]*big.Int{big.NewInt(7)},
		[]*big.Int{big.NewInt(1)},
		[]bool{true},
	)
	if err != nil {
		t.Fatalf("sell: %v", err)
	}
	records := node.Records()
	if len(records) != 1 {
		t.Fatalf("expected one record, got %d", len(records))
	}
	// The record's deposit block is the height at the time of the sale.
	if records[0].DepositBlock != 1 {
		t.Fatalf("expected deposit block 1, got %d", records[0].DepositBlock)
	}
	if node.Height() != 2 {
		t.Fatalf("expected height 2, got %d", node.Height())
	}
}
