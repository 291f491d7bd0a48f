// Package mempool maintains the mempool for the blockchain.
package mempool

import (
	"errors"
	"sync"

	"github.com/ardanlabs/ledger/foundation/blockchain/database"
)

// Unbounded is the capacity that places every pending transaction
// into the next block.
const Unbounded = -1

// Mempool represents the ordered set of transactions waiting to be mined
// into a block.
type Mempool struct {
	mu       sync.RWMutex
	pending  []database.Tx
	capacity int
}

// New constructs a new mempool that hands out batches of at most capacity
// transactions.
func New(capacity int) (*Mempool, error) {
	if capacity == 0 || capacity < Unbounded {
		return nil, errors.New("capacity must be positive or unbounded")
	}

	mp := Mempool{
		capacity: capacity,
	}

	return &mp, nil
}

// Capacity returns the maximum number of transactions per block.
func (mp *Mempool) Capacity() int {
	return mp.capacity
}

// Count returns the current number of transaction in the pool.
func (mp *Mempool) Count() int {
	mp.mu.RLock()
	defer mp.mu.RUnlock()

	return len(mp.pending)
}

// Add appends a transaction to the end of the mempool and returns the
// new number of transactions in the pool.
func (mp *Mempool) Add(tx database.Tx) int {
	mp.mu.Lock()
	defer mp.mu.Unlock()

	mp.pending = append(mp.pending, tx)

	return len(mp.pending)
}

// Copy returns the transactions in the pool in submission order.
func (mp *Mempool) Copy() []database.Tx {
	mp.mu.RLock()
	defer mp.mu.RUnlock()

	cpy := make([]database.Tx, len(mp.pending))
	copy(cpy, mp.pending)
	return cpy
}

// Truncate clears all the transactions from the pool.
func (mp *Mempool) Truncate() {
	mp.mu.Lock()
	defer mp.mu.Unlock()

	mp.pending = nil
}

// =============================================================================

// Batch represents the transactions selected for the next block and what
// the pool keeps once that block is committed.
type Batch struct {
	Trans    []database.Tx
	snapshot int
	retain   int
}

// Retained returns the number of pending transactions the pool keeps
// after the batch is committed.
func (b Batch) Retained() int {
	return b.retain
}

// Dropped returns the number of pending transactions that are neither
// part of the batch nor retained by the pool.
func (b Batch) Dropped() int {
	return b.snapshot + 1 - len(b.Trans) - b.retain
}

// PickBatch selects the transactions for the next block with the reward
// appended after the pending transactions. The pool isn't changed until
// Prune is called with the returned batch.
//
// With n pending transactions: when n is less than the capacity, every
// pending transaction and the reward make the batch. Otherwise the batch is
// the last capacity entries and, when n is greater than the capacity, the
// pool keeps the leading n+1-capacity transactions. When n equals the
// capacity the oldest pending transaction is in neither set.
func (mp *Mempool) PickBatch(reward database.Tx) Batch {
	mp.mu.RLock()
	defer mp.mu.RUnlock()

	n := len(mp.pending)

	all := make([]database.Tx, n+1)
	copy(all, mp.pending)
	all[n] = reward

	if mp.capacity == Unbounded || n < mp.capacity {
		return Batch{Trans: all, snapshot: n}
	}

	b := Batch{
		Trans:    all[len(all)-mp.capacity:],
		snapshot: n,
	}

	if n > mp.capacity {
		b.retain = len(all) - mp.capacity
	}

	return b
}

// Prune removes the transactions committed by the batch. Transactions
// added after the batch was picked stay in the pool behind the retained
// transactions.
func (mp *Mempool) Prune(b Batch) {
	mp.mu.Lock()
	defer mp.mu.Unlock()

	snapshot := min(b.snapshot, len(mp.pending))
	retain := min(b.retain, snapshot)

	pending := make([]database.Tx, 0, retain+len(mp.pending)-snapshot)
	pending = append(pending, mp.pending[:retain]...)
	pending = append(pending, mp.pending[snapshot:]...)

	mp.pending = pending
}
