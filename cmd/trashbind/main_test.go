package main

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"

	"trashbin/config"
	"trashbin/core"
	"trashbin/core/events"
	"trashbin/storage"
)

func testConfig() *config.Config {
	return &config.Config{
		Owner:                common.HexToAddress("0x01").Hex(),
		Governance:           common.HexToAddress("0x02").Hex(),
		ModuleAddress:        common.HexToAddress("0xAA").Hex(),
		UniqueCollection:     common.HexToAddress("0xB1").Hex(),
		MultiCollection:      common.HexToAddress("0xB2").Hex(),
		FungibleCollection:   common.HexToAddress("0xB3").Hex(),
		QualifyingCollection: common.HexToAddress("0xB4").Hex(),
	}
}

func TestBindCollectionsEnablesEscrow(t *testing.T) {
	cfg := testConfig()
	node, err := core.NewNode(storage.NewMemDB(), cfg.OwnerAddress(), cfg.GovernanceAddress(), cfg.EngineAddress(), events.NoopEmitter{}, nil)
	if err != nil {
		t.Fatalf("new node: %v", err)
	}
	bound := bindCollections(node, cfg)

	seller := common.HexToAddress("0x11")
	bound.unique.Issue(seller, big.NewInt(7))
	if err := node.Credit(cfg.OwnerAddress(), cfg.EngineAddress(), big.NewInt(1_000)); err != nil {
		t.Fatalf("credit module: %v", err)
	}

	err = node.Sell(seller,
		[]common.Address{cfg.UniqueCollectionAddress()}, []*big.Int{big.NewInt(7)},
		[]*big.Int{big.NewInt(1)}, []bool{true})
	if err != nil {
		t.Fatalf("sell through bound collections: %v", err)
	}
	if node.RecordCount() != 1 {
		t.Fatalf("expected 1 escrowed record, got %d", node.RecordCount())
	}
	if owner, err := bound.unique.OwnerOf(big.NewInt(7)); err != nil || owner != cfg.EngineAddress() {
		t.Fatalf("expected token in module custody, owner %s err %v", owner.Hex(), err)
	}
}

func TestBindCollectionsRegistersQualifying(t *testing.T) {
	cfg := testConfig()
	node, err := core.NewNode(storage.NewMemDB(), cfg.OwnerAddress(), cfg.GovernanceAddress(), cfg.EngineAddress(), events.NoopEmitter{}, nil)
	if err != nil {
		t.Fatalf("new node: %v", err)
	}
	bound := bindCollections(node, cfg)

	bound.qualifying.Issue(cfg.OwnerAddress(), big.NewInt(1))
	if _, err := node.Registry().Unique(cfg.QualifyingCollectionAddress()); err != nil {
		t.Fatalf("qualifying collection not escrowable: %v", err)
	}
	if deactivated, err := bound.qualifying.Deactivated(big.NewInt(1)); err != nil || deactivated {
		t.Fatalf("expected active qualifying asset, deactivated=%v err=%v", deactivated, err)
	}
}
