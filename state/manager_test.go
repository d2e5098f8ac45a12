package state

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"

	"trashbin/native/access"
	"trashbin/native/market"
	"trashbin/native/pricing"
	"trashbin/storage"
)

func newTestManager(t *testing.T, db storage.Database) (*Manager, *market.Store, *Ledger, *access.Authority, *pricing.Engine) {
	t.Helper()
	store := market.NewStore()
	ledger := NewLedger()
	auth := access.NewAuthority(alice, bob)
	engine := pricing.NewEngine()
	return NewManager(db, store, ledger, auth, engine), store, ledger, auth, engine
}

func TestManagerRoundTrip(t *testing.T) {
	db := storage.NewMemDB()
	manager, store, ledger, auth, engine := newTestManager(t, db)

	require.NoError(t, store.Append(&market.AssetRecord{
		Collection:   common.HexToAddress("0xB1"),
		TokenID:      big.NewInt(7),
		Multi:        true,
		DepositBlock: 12,
	}))
	require.NoError(t, ledger.Mint(alice, big.NewInt(1_000)))

	settings := engine.Current()
	settings.BuyPrice = big.NewInt(5_000)
	require.NoError(t, engine.Restore(settings))

	_, err := auth.TogglePause(alice)
	require.NoError(t, err)

	manager.IncrementHeight()
	manager.IncrementHeight()
	require.NoError(t, manager.Commit())

	restored, store2, ledger2, auth2, engine2 := newTestManager(t, db)
	require.NoError(t, restored.Load())

	require.Equal(t, uint64(1), store2.Len())
	rec, err := store2.Get(0)
	require.NoError(t, err)
	require.Equal(t, common.HexToAddress("0xB1"), rec.Collection)
	require.Equal(t, int64(7), rec.TokenID.Int64())
	require.True(t, rec.Multi)
	require.Equal(t, uint64(12), rec.DepositBlock)

	require.Equal(t, int64(1_000), ledger2.BalanceOf(alice).Int64())
	require.Equal(t, int64(5_000), engine2.Current().BuyPrice.Int64())
	require.True(t, auth2.Paused())
	require.Equal(t, alice, auth2.Owner())
	require.Equal(t, uint64(2), restored.Height())
}

func TestManagerLoadFreshDatabase(t *testing.T) {
	db := storage.NewMemDB()
	manager, store, _, auth, engine := newTestManager(t, db)

	require.NoError(t, manager.Load())
	require.Equal(t, uint64(0), store.Len())
	require.Equal(t, uint64(0), manager.Height())
	require.False(t, auth.Paused())
	require.Equal(t, pricing.DefaultSettings().BuyPrice, engine.Current().BuyPrice)
}

func TestManagerPersistsOwnershipTransfer(t *testing.T) {
	db := storage.NewMemDB()
	manager, _, _, auth, _ := newTestManager(t, db)

	next := common.HexToAddress("0x99")
	require.NoError(t, auth.TransferOwnership(alice, next))
	require.NoError(t, manager.Commit())

	restored, _, _, auth2, _ := newTestManager(t, db)
	require.NoError(t, restored.Load())
	require.Equal(t, next, auth2.Owner())
}
