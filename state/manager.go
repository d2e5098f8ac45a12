package state

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/rlp"

	"trashbin/native/access"
	"trashbin/native/market"
	"trashbin/native/pricing"
	"trashbin/storage"
)

var (
	keyRecords   = []byte("market/records")
	keyBalances  = []byte("state/balances")
	keySettings  = []byte("pricing/settings")
	keyAuthority = []byte("access/authority")
	keyHeight    = []byte("chain/height")
)

// storedRecord is the stable wire form of a market record. Kept separate from
// the engine type so the engine can evolve without breaking stored data.
type storedRecord struct {
	Collection   common.Address
	TokenID      *big.Int
	Multi        bool
	DepositBlock uint64
}

type storedBalance struct {
	Addr   common.Address
	Amount *big.Int
}

type storedAuthority struct {
	Owner  common.Address `json:"owner"`
	Paused bool           `json:"paused"`
}

// Manager persists the engine state into a key-value database and restores it
// on startup. Records and balances are RLP encoded, settings and authority
// JSON encoded, the block height big-endian.
type Manager struct {
	db      storage.Database
	store   *market.Store
	ledger  *Ledger
	auth    *access.Authority
	pricing *pricing.Engine
	height  uint64
}

// NewManager wires a manager over the given database and live state holders.
func NewManager(db storage.Database, store *market.Store, ledger *Ledger, auth *access.Authority, pricingEngine *pricing.Engine) *Manager {
	return &Manager{db: db, store: store, ledger: ledger, auth: auth, pricing: pricingEngine}
}

// Height returns the current block height.
func (m *Manager) Height() uint64 { return m.height }

// IncrementHeight advances the block height by one and returns the new value.
// Every successful state-mutating call advances the height so deposit aging
// keeps moving.
func (m *Manager) IncrementHeight() uint64 {
	m.height++
	return m.height
}

// Load restores every persisted component. Missing keys are skipped so a
// fresh database starts from the configured defaults.
func (m *Manager) Load() error {
	if err := m.loadRecords(); err != nil {
		return fmt.Errorf("load records: %w", err)
	}
	if err := m.loadBalances(); err != nil {
		return fmt.Errorf("load balances: %w", err)
	}
	if err := m.loadSettings(); err != nil {
		return fmt.Errorf("load settings: %w", err)
	}
	if err := m.loadAuthority(); err != nil {
		return fmt.Errorf("load authority: %w", err)
	}
	if err := m.loadHeight(); err != nil {
		return fmt.Errorf("load height: %w", err)
	}
	return nil
}

// Commit writes every component to the database.
func (m *Manager) Commit() error {
	records := m.store.Records()
	stored := make([]storedRecord, len(records))
	for i, rec := range records {
		stored[i] = storedRecord{
			Collection:   rec.Collection,
			TokenID:      rec.TokenID,
			Multi:        rec.Multi,
			DepositBlock: rec.DepositBlock,
		}
	}
	encodedRecords, err := rlp.EncodeToBytes(stored)
	if err != nil {
		return fmt.Errorf("encode records: %w", err)
	}
	if err := m.db.Put(keyRecords, encodedRecords); err != nil {
		return fmt.Errorf("write records: %w", err)
	}

	balances := make([]storedBalance, 0)
	for addr, bal := range m.ledger.Balances() {
		balances = append(balances, storedBalance{Addr: addr, Amount: bal})
	}
	encodedBalances, err := rlp.EncodeToBytes(balances)
	if err != nil {
		return fmt.Errorf("encode balances: %w", err)
	}
	if err := m.db.Put(keyBalances, encodedBalances); err != nil {
		return fmt.Errorf("write balances: %w", err)
	}

	settings := m.pricing.Current()
	encodedSettings, err := json.Marshal(settings)
	if err != nil {
		return fmt.Errorf("encode settings: %w", err)
	}
	if err := m.db.Put(keySettings, encodedSettings); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}

	encodedAuth, err := json.Marshal(storedAuthority{Owner: m.auth.Owner(), Paused: m.auth.Paused()})
	if err != nil {
		return fmt.Errorf("encode authority: %w", err)
	}
	if err := m.db.Put(keyAuthority, encodedAuth); err != nil {
		return fmt.Errorf("write authority: %w", err)
	}

	var height [8]byte
	binary.BigEndian.PutUint64(height[:], m.height)
	if err := m.db.Put(keyHeight, height[:]); err != nil {
		return fmt.Errorf("write height: %w", err)
	}
	return nil
}

func (m *Manager) loadRecords() error {
	raw, ok, err := m.read(keyRecords)
	if err != nil || !ok {
		return err
	}
	var stored []storedRecord
	if err := rlp.DecodeBytes(raw, &stored); err != nil {
		return err
	}
	records := make([]*market.AssetRecord, len(stored))
	for i, rec := range stored {
		records[i] = &market.AssetRecord{
			Collection:   rec.Collection,
			TokenID:      rec.TokenID,
			Multi:        rec.Multi,
			DepositBlock: rec.DepositBlock,
		}
	}
	return m.store.Restore(records)
}

func (m *Manager) loadBalances() error {
	raw, ok, err := m.read(keyBalances)
	if err != nil || !ok {
		return err
	}
	var stored []storedBalance
	if err := rlp.DecodeBytes(raw, &stored); err != nil {
		return err
	}
	balances := make(map[common.Address]*big.Int, len(stored))
	for _, entry := range stored {
		balances[entry.Addr] = entry.Amount
	}
	return m.ledger.Restore(balances)
}

func (m *Manager) loadSettings() error {
	raw, ok, err := m.read(keySettings)
	if err != nil || !ok {
		return err
	}
	var settings pricing.Settings
	if err := json.Unmarshal(raw, &settings); err != nil {
		return err
	}
	return m.pricing.Restore(settings)
}

func (m *Manager) loadAuthority() error {
	raw, ok, err := m.read(keyAuthority)
	if err != nil || !ok {
		return err
	}
	var stored storedAuthority
	if err := json.Unmarshal(raw, &stored); err != nil {
		return err
	}
	m.auth.Restore(stored.Owner, stored.Paused)
	return nil
}

func (m *Manager) loadHeight() error {
	raw, ok, err := m.read(keyHeight)
	if err != nil || !ok {
		return err
	}
	if len(raw) != 8 {
		return fmt.Errorf("malformed height value")
	}
	m.height = binary.BigEndian.Uint64(raw)
	return nil
}

func (m *Manager) read(key []byte) ([]byte, bool, error) {
	ok, err := m.db.Has(key)
	if err != nil {
		return nil, false, err
	}
	if !ok {
		return nil, false, nil
	}
	raw, err := m.db.Get(key)
	if err != nil {
		return nil, false, err
	}
	return raw, true, nil
}
