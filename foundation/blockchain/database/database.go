// Package database handles all the lower level support for maintaining the
// blockchain in storage and the types that make up the chain.
package database

import (
	"errors"
	"fmt"
	"math"
	"sort"
)

// ErrBlockNotFound is returned by a storage when the requested block
// number has not been written.
var ErrBlockNotFound = errors.New("block not found")

// Storage interface represents the behavior required to be implemented by any
// package providing support for storing and reading the blockchain. Block
// numbers start at 1, the genesis block is never stored.
type Storage interface {
	Write(blockData BlockData) error
	GetBlock(num uint64) (BlockData, error)
	ForEach() Iterator
	Close() error
	Reset() error
}

// Iterator interface represents the behavior required to be implemented by any
// package providing support to iterate over the blocks.
type Iterator interface {
	Next() (BlockData, error)
	Done() bool
}

// =============================================================================

// DatabaseIterator provides support for iterating over the blocks in storage.
type DatabaseIterator struct {
	iterator Iterator
}

// Next retrieves the next block from storage.
func (di *DatabaseIterator) Next() (Block, error) {
	blockData, err := di.iterator.Next()
	if err != nil {
		return Block{}, err
	}

	return ToBlock(blockData), nil
}

// Done returns the end of chain value.
func (di *DatabaseIterator) Done() bool {
	return di.iterator.Done()
}

// =============================================================================

// Database manages the blocks that have been sealed into the chain.
type Database struct {
	storage Storage
}

// New constructs a new database over the specified storage.
func New(storage Storage) *Database {
	return &Database{
		storage: storage,
	}
}

// Close closes the underlying storage.
func (db *Database) Close() error {
	return db.storage.Close()
}

// Reset removes every stored block.
func (db *Database) Reset() error {
	return db.storage.Reset()
}

// Write adds a new block to the chain.
func (db *Database) Write(block Block) error {
	if block.Header.Number == 0 {
		return errors.New("genesis block can't be written")
	}

	return db.storage.Write(NewBlockData(block))
}

// ForEach returns an iterator to walk through all the blocks
// starting with block number 1.
func (db *Database) ForEach() DatabaseIterator {
	return DatabaseIterator{iterator: db.storage.ForEach()}
}

// GetBlock searches the blockchain in storage to locate and return the
// contents of the specified block by number.
func (db *Database) GetBlock(num uint64) (Block, error) {
	blockData, err := db.storage.GetBlock(num)
	if err != nil {
		return Block{}, err
	}

	return ToBlock(blockData), nil
}

// ReadAllBlocks loads every stored block in chain order. The blocks are
// only checked to be numbered in sequence, hash validation is left to the
// caller who owns the genesis block.
func (db *Database) ReadAllBlocks(evHandler func(v string, args ...any)) ([]Block, error) {
	var blocks []Block

	iter := db.ForEach()
	for block, err := iter.Next(); !iter.Done(); block, err = iter.Next() {
		if err != nil {
			return nil, err
		}

		exp := uint64(len(blocks) + 1)
		if block.Header.Number != exp {
			return nil, fmt.Errorf("block out of sequence, got %d, exp %d", block.Header.Number, exp)
		}

		evHandler("database: ReadAllBlocks: read: blk[%s]", block)
		blocks = append(blocks, block)
	}

	return blocks, nil
}

// =============================================================================

// Balances replays the transactions in the blocks and returns the derived
// balance for every account that appears, sorted by account id.
func Balances(blocks []Block) []Account {
	m := make(map[AccountID]int64)
	for _, block := range blocks {
		for _, tx := range block.Trans {
			m[tx.From] = debit(m[tx.From], tx.Amount)
			m[tx.To] = credit(m[tx.To], tx.Amount)
		}
	}

	accounts := make([]Account, 0, len(m))
	for accountID, balance := range m {
		accounts = append(accounts, Account{AccountID: accountID, Balance: balance})
	}
	sort.Sort(byAccount(accounts))

	return accounts
}

// Balance replays the transactions in the blocks and returns the derived
// balance for the specified account.
func Balance(blocks []Block, accountID AccountID) int64 {
	var balance int64
	for _, block := range blocks {
		for _, tx := range block.Trans {
			if tx.From == accountID {
				balance = debit(balance, tx.Amount)
			}
			if tx.To == accountID {
				balance = credit(balance, tx.Amount)
			}
		}
	}

	return balance
}

// credit adds the amount to the balance, saturating at math.MaxInt64.
func credit(balance int64, amount uint64) int64 {
	a := int64(min(amount, MaxAmount))
	if balance > math.MaxInt64-a {
		return math.MaxInt64
	}

	return balance + a
}

// debit subtracts the amount from the balance, saturating at math.MinInt64.
func debit(balance int64, amount uint64) int64 {
	a := int64(min(amount, MaxAmount))
	if balance < math.MinInt64+a {
		return math.MinInt64
	}

	return balance - a
}
