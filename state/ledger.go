package state

import (
	"errors"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

var (
	// ErrInsufficientBalance rejects transfers exceeding the sender's
	// balance.
	ErrInsufficientBalance = errors.New("state: insufficient balance")
	// ErrNegativeAmount rejects negative transfer or mint amounts.
	ErrNegativeAmount = errors.New("state: negative amount")
)

type balanceChange struct {
	addr common.Address
	prev *big.Int
}

// Ledger tracks native-coin balances with a change journal so multi-step
// engine operations can revert atomically. Execution is serialized by
// construction; the ledger performs no locking.
type Ledger struct {
	balances map[common.Address]*big.Int
	journal  []balanceChange
	snaps    []int
}

// NewLedger returns an empty ledger.
func NewLedger() *Ledger {
	return &Ledger{balances: make(map[common.Address]*big.Int)}
}

// BalanceOf returns a copy of the balance for addr, zero when unknown.
func (l *Ledger) BalanceOf(addr common.Address) *big.Int {
	if bal, ok := l.balances[addr]; ok {
		return new(big.Int).Set(bal)
	}
	return big.NewInt(0)
}

// Transfer moves amount from one account to the other. A zero amount is a
// no-op.
func (l *Ledger) Transfer(from, to common.Address, amount *big.Int) error {
	if amount == nil || amount.Sign() == 0 {
		return nil
	}
	if amount.Sign() < 0 {
		return ErrNegativeAmount
	}
	fromBal := l.BalanceOf(from)
	if fromBal.Cmp(amount) < 0 {
		return ErrInsufficientBalance
	}
	l.setBalance(from, new(big.Int).Sub(fromBal, amount))
	l.setBalance(to, new(big.Int).Add(l.BalanceOf(to), amount))
	return nil
}

// Mint credits amount to addr out of nothing. Used to reflect externally
// received value (an inbound payment attached to a call) and to fund the
// module in tests.
func (l *Ledger) Mint(addr common.Address, amount *big.Int) error {
	if amount == nil || amount.Sign() == 0 {
		return nil
	}
	if amount.Sign() < 0 {
		return ErrNegativeAmount
	}
	l.setBalance(addr, new(big.Int).Add(l.BalanceOf(addr), amount))
	return nil
}

// Snapshot captures the current journal position and returns a handle.
func (l *Ledger) Snapshot() int {
	l.snaps = append(l.snaps, len(l.journal))
	return len(l.snaps) - 1
}

// RevertToSnapshot undoes every change recorded since the handle was taken
// and discards it along with any later snapshots.
func (l *Ledger) RevertToSnapshot(id int) {
	if id < 0 || id >= len(l.snaps) {
		return
	}
	mark := l.snaps[id]
	for i := len(l.journal) - 1; i >= mark; i-- {
		change := l.journal[i]
		if change.prev == nil {
			delete(l.balances, change.addr)
			continue
		}
		l.balances[change.addr] = new(big.Int).Set(change.prev)
	}
	l.journal = l.journal[:mark]
	l.snaps = l.snaps[:id]
	l.compactJournal()
}

// DiscardSnapshot commits the changes made since the handle was taken.
func (l *Ledger) DiscardSnapshot(id int) {
	if id < 0 || id >= len(l.snaps) {
		return
	}
	l.snaps = l.snaps[:id]
	l.compactJournal()
}

// Balances returns a copy of every non-zero balance, for persistence.
func (l *Ledger) Balances() map[common.Address]*big.Int {
	out := make(map[common.Address]*big.Int, len(l.balances))
	for addr, bal := range l.balances {
		out[addr] = new(big.Int).Set(bal)
	}
	return out
}

// Restore replaces the ledger content, discarding journal and snapshots.
func (l *Ledger) Restore(balances map[common.Address]*big.Int) error {
	replacement := make(map[common.Address]*big.Int, len(balances))
	for addr, bal := range balances {
		if bal == nil {
			continue
		}
		if bal.Sign() < 0 {
			return ErrNegativeAmount
		}
		if bal.Sign() == 0 {
			continue
		}
		replacement[addr] = new(big.Int).Set(bal)
	}
	l.balances = replacement
	l.journal = nil
	l.snaps = nil
	return nil
}

func (l *Ledger) setBalance(addr common.Address, next *big.Int) {
	var prev *big.Int
	if current, ok := l.balances[addr]; ok {
		prev = current
	}
	l.journal = append(l.journal, balanceChange{addr: addr, prev: prev})
	l.balances[addr] = next
}

func (l *Ledger) compactJournal() {
	if len(l.snaps) == 0 {
		l.journal = l.journal[:0]
	}
}
