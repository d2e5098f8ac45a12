package market

import (
	"errors"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"

	"trashbin/native/access"
)

func TestBuyFullPrice(t *testing.T) {
	env := newTestEnv(t)
	env.seedUniqueRecord(t, 7, 0)
	env.height = 10
	env.fund(buyerAddr, 10_000)

	if err := env.engine.Buy(buyerAddr, big.NewInt(10_000), []uint64{0}, nil); err != nil {
		t.Fatalf("buy: %v", err)
	}
	if env.store.Len() != 0 {
		t.Fatalf("expected record removed, len %d", env.store.Len())
	}
	if owner := env.unique.owners["7"]; owner != buyerAddr {
		t.Fatalf("expected token delivered to buyer, owner %s", owner.Hex())
	}
	requireBalance(t, env.ledger, buyerAddr, 0)
	requireBalance(t, env.ledger, moduleAccount, 10_000)

	if got := len(env.emitter.ofType(EventTypePurchase)); got != 1 {
		t.Fatalf("expected one purchase event, got %d", got)
	}
	if env.treasury.calls != 1 {
		t.Fatalf("expected auto-withdraw hook once, got %d", env.treasury.calls)
	}
}

func TestBuyInsufficientPayment(t *testing.T) {
	env := newTestEnv(t)
	env.seedUniqueRecord(t, 7, 0)
	env.height = 10
	env.fund(buyerAddr, 10_000)

	if err := env.engine.Buy(buyerAddr, big.NewInt(9_999), []uint64{0}, nil); !errors.Is(err, ErrInsufficientPayment) {
		t.Fatalf("expected ErrInsufficientPayment, got %v", err)
	}
	if err := env.engine.Buy(buyerAddr, nil, []uint64{0}, nil); !errors.Is(err, ErrInsufficientPayment) {
		t.Fatalf("expected ErrInsufficientPayment for nil value, got %v", err)
	}
	if env.store.Len() != 1 {
		t.Fatalf("expected record retained, len %d", env.store.Len())
	}
	if env.treasury.calls != 0 {
		t.Fatalf("expected no auto-withdraw after failed buy, got %d", env.treasury.calls)
	}
}

func TestBuyOverpaymentAbsorbed(t *testing.T) {
	env := newTestEnv(t)
	env.seedUniqueRecord(t, 7, 0)
	env.height = 10
	env.fund(buyerAddr, 15_000)

	if err := env.engine.Buy(buyerAddr, big.NewInt(15_000), []uint64{0}, nil); err != nil {
		t.Fatalf("buy: %v", err)
	}
	// The attached value is retained in full, no change is returned.
	requireBalance(t, env.ledger, buyerAddr, 0)
	requireBalance(t, env.ledger, moduleAccount, 15_000)
}

func TestBuyBatchDescending(t *testing.T) {
	env := newTestEnv(t)
	env.seedUniqueRecord(t, 1, 0)
	env.seedMultiRecord(t, 2, 0)
	env.seedUniqueRecord(t, 3, 0)
	env.height = 10
	env.fund(buyerAddr, 30_000)

	if err := env.engine.Buy(buyerAddr, big.NewInt(30_000), []uint64{2, 1, 0}, nil); err != nil {
		t.Fatalf("buy: %v", err)
	}
	if env.store.Len() != 0 {
		t.Fatalf("expected empty store, len %d", env.store.Len())
	}
	if owner := env.unique.owners["1"]; owner != buyerAddr {
		t.Fatalf("expected token 1 delivered, owner %s", owner.Hex())
	}
	if owner := env.unique.owners["3"]; owner != buyerAddr {
		t.Fatalf("expected token 3 delivered, owner %s", owner.Hex())
	}
	held, _ := env.multi.BalanceOf(buyerAddr, big.NewInt(2))
	if held.Int64() != 1 {
		t.Fatalf("expected one multi unit delivered, got %s", held)
	}
}

func TestBuyRejectsAscendingIndexes(t *testing.T) {
	env := newTestEnv(t)
	env.seedUniqueRecord(t, 1, 0)
	env.seedUniqueRecord(t, 2, 0)
	env.height = 10
	env.fund(buyerAddr, 30_000)

	if err := env.engine.Buy(buyerAddr, big.NewInt(20_000), []uint64{0, 1}, nil); !errors.Is(err, ErrNonMonotonicIndexes) {
		t.Fatalf("expected ErrNonMonotonicIndexes, got %v", err)
	}
}

func TestBuyBatchBounds(t *testing.T) {
	env := newTestEnv(t)
	env.fund(buyerAddr, 30_000)

	if err := env.engine.Buy(buyerAddr, big.NewInt(10_000), nil, nil); !errors.Is(err, ErrTooManyPurchases) {
		t.Fatalf("expected ErrTooManyPurchases for empty batch, got %v", err)
	}
	indexes := make([]uint64, 101)
	for i := range indexes {
		indexes[i] = uint64(101 - i)
	}
	if err := env.engine.Buy(buyerAddr, big.NewInt(10_000), indexes, nil); !errors.Is(err, ErrTooManyPurchases) {
		t.Fatalf("expected ErrTooManyPurchases for oversized batch, got %v", err)
	}
}

func TestBuyTooEarly(t *testing.T) {
	env := newTestEnv(t)
	env.seedUniqueRecord(t, 7, 5)
	env.height = 14
	env.fund(buyerAddr, 10_000)

	if err := env.engine.Buy(buyerAddr, big.NewInt(10_000), []uint64{0}, nil); !errors.Is(err, ErrTooEarly) {
		t.Fatalf("expected ErrTooEarly, got %v", err)
	}
	// The payment transfer happened before the aging check and must revert.
	requireBalance(t, env.ledger, buyerAddr, 10_000)
	requireBalance(t, env.ledger, moduleAccount, 0)
	if env.store.Len() != 1 {
		t.Fatalf("expected record retained, len %d", env.store.Len())
	}

	env.height = 15
	if err := env.engine.Buy(buyerAddr, big.NewInt(10_000), []uint64{0}, nil); err != nil {
		t.Fatalf("buy at exact maturity: %v", err)
	}
}

func TestBuyGovernanceTierDiscount(t *testing.T) {
	env := newTestEnv(t)
	env.seedUniqueRecord(t, 7, 0)
	env.height = 10
	env.fund(buyerAddr, 2_500)
	env.grantQualifying(buyerAddr, 9, false)

	// Active qualifying asset: pay 10000*(10000-7500)/10000.
	if err := env.engine.Buy(buyerAddr, big.NewInt(2_500), []uint64{0}, []*big.Int{big.NewInt(9)}); err != nil {
		t.Fatalf("buy: %v", err)
	}
	requireBalance(t, env.ledger, moduleAccount, 2_500)
}

func TestBuyStandardTierDiscount(t *testing.T) {
	env := newTestEnv(t)
	env.seedUniqueRecord(t, 7, 0)
	env.height = 10
	env.fund(buyerAddr, 7_500)
	env.grantQualifying(buyerAddr, 9, true)

	// Deactivated qualifying asset: pay 10000*(10000-2500)/10000.
	if err := env.engine.Buy(buyerAddr, big.NewInt(7_499), []uint64{0}, []*big.Int{big.NewInt(9)}); !errors.Is(err, ErrInsufficientPayment) {
		t.Fatalf("expected ErrInsufficientPayment below standard tier, got %v", err)
	}
	if err := env.engine.Buy(buyerAddr, big.NewInt(7_500), []uint64{0}, []*big.Int{big.NewInt(9)}); err != nil {
		t.Fatalf("buy: %v", err)
	}
}

func TestBuyDiscountCoversWholeBatch(t *testing.T) {
	env := newTestEnv(t)
	env.seedUniqueRecord(t, 1, 0)
	env.seedUniqueRecord(t, 2, 0)
	env.height = 10
	env.fund(buyerAddr, 5_000)
	env.grantQualifying(buyerAddr, 9, false)

	if err := env.engine.Buy(buyerAddr, big.NewInt(5_000), []uint64{1, 0}, []*big.Int{big.NewInt(9)}); err != nil {
		t.Fatalf("buy: %v", err)
	}
	if env.store.Len() != 0 {
		t.Fatalf("expected both records sold, len %d", env.store.Len())
	}
}

func TestBuyQualifyingValidation(t *testing.T) {
	env := newTestEnv(t)
	env.seedUniqueRecord(t, 7, 0)
	env.height = 10
	env.fund(buyerAddr, 10_000)

	ids := []*big.Int{big.NewInt(1), big.NewInt(2)}
	if err := env.engine.Buy(buyerAddr, big.NewInt(10_000), []uint64{0}, ids); !errors.Is(err, ErrTooManyQualifyingAssets) {
		t.Fatalf("expected ErrTooManyQualifyingAssets, got %v", err)
	}

	env.grantQualifying(sellerAddr, 9, false)
	if err := env.engine.Buy(buyerAddr, big.NewInt(10_000), []uint64{0}, []*big.Int{big.NewInt(9)}); !errors.Is(err, ErrQualifyingAssetNotOwned) {
		t.Fatalf("expected ErrQualifyingAssetNotOwned, got %v", err)
	}
}

func TestBuyOutOfBounds(t *testing.T) {
	env := newTestEnv(t)
	env.seedUniqueRecord(t, 7, 0)
	env.height = 10
	env.fund(buyerAddr, 30_000)

	if err := env.engine.Buy(buyerAddr, big.NewInt(20_000), []uint64{5, 0}, nil); !errors.Is(err, ErrIndexOutOfBounds) {
		t.Fatalf("expected ErrIndexOutOfBounds, got %v", err)
	}
	requireBalance(t, env.ledger, buyerAddr, 30_000)
	if env.store.Len() != 1 {
		t.Fatalf("expected record retained, len %d", env.store.Len())
	}
}

func TestBuyPauseGated(t *testing.T) {
	env := newTestEnv(t)
	env.seedUniqueRecord(t, 7, 0)
	env.height = 10
	env.fund(buyerAddr, 10_000)
	env.auth.paused = true

	if err := env.engine.Buy(buyerAddr, big.NewInt(10_000), []uint64{0}, nil); !errors.Is(err, access.ErrPaused) {
		t.Fatalf("expected ErrPaused, got %v", err)
	}
}

func TestBuyFeeConservation(t *testing.T) {
	env := newTestEnv(t)
	env.fund(moduleAccount, 1_000)
	env.unique.owners["7"] = sellerAddr

	// Full cycle: a sale pays the flat fee out of the module balance, the
	// later purchase brings in the full price.
	err := env.engine.Sell(sellerAddr,
		[]common.Address{uniqueAddr}, []*big.Int{big.NewInt(7)},
		[]*big.Int{big.NewInt(1)}, []bool{true})
	if err != nil {
		t.Fatalf("sell: %v", err)
	}
	requireBalance(t, env.ledger, moduleAccount, 900)

	env.height = 10
	env.fund(buyerAddr, 10_000)
	if err := env.engine.Buy(buyerAddr, big.NewInt(10_000), []uint64{0}, nil); err != nil {
		t.Fatalf("buy: %v", err)
	}
	requireBalance(t, env.ledger, moduleAccount, 10_900)
	requireBalance(t, env.ledger, sellerAddr, 100)
}

func TestIsAvailableToBuy(t *testing.T) {
	env := newTestEnv(t)
	env.seedUniqueRecord(t, 7, 5)
	env.height = 10

	available, err := env.engine.IsAvailableToBuy(0)
	if err != nil {
		t.Fatalf("availability: %v", err)
	}
	if available {
		t.Fatal("expected record not yet available")
	}

	env.height = 15
	available, err = env.engine.IsAvailableToBuy(0)
	if err != nil {
		t.Fatalf("availability: %v", err)
	}
	if !available {
		t.Fatal("expected record available at maturity")
	}

	if _, err := env.engine.IsAvailableToBuy(1); !errors.Is(err, ErrIndexOutOfBounds) {
		t.Fatalf("expected ErrIndexOutOfBounds, got %v", err)
	}

	env.auth.paused = true
	if _, err := env.engine.IsAvailableToBuy(0); !errors.Is(err, access.ErrPaused) {
		t.Fatalf("expected ErrPaused, got %v", err)
	}
}

func TestBuyRevertsWhenAutoWithdrawFails(t *testing.T) {
	env := newTestEnv(t)
	env.seedUniqueRecord(t, 7, 0)
	env.height = 10
	env.fund(buyerAddr, 10_000)
	env.treasury.err = errors.New("settlement unavailable")

	if err := env.engine.Buy(buyerAddr, big.NewInt(10_000), []uint64{0}, nil); err == nil {
		t.Fatal("expected buy to fail when the auto-withdraw fails")
	}
	if env.store.Len() != 1 {
		t.Fatalf("expected record retained after revert, len %d", env.store.Len())
	}
	requireBalance(t, env.ledger, buyerAddr, 10_000)
	requireBalance(t, env.ledger, moduleAccount, 0)
}
