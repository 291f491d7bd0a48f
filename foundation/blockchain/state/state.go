// Package state is the core API for the blockchain and implements all the
// business rules and processing.
package state

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/ardanlabs/ledger/foundation/blockchain/database"
	"github.com/ardanlabs/ledger/foundation/blockchain/database/storage/memory"
	"github.com/ardanlabs/ledger/foundation/blockchain/genesis"
	"github.com/ardanlabs/ledger/foundation/blockchain/mempool"
)

// Set of error variables for the ledger.
var (
	ErrInsufficientFunds  = errors.New("insufficient funds")
	ErrInvalidTransaction = errors.New("invalid transaction")
	ErrChainCorrupted     = errors.New("chain corrupted")
)

// =============================================================================

// EventHandler defines a function that is called when events
// occur in the processing of persisting blocks.
type EventHandler func(v string, args ...any)

// Worker interface represents the behavior required to be implemented by any
// package providing support for mining.
type Worker interface {
	Shutdown()
	SignalStartMining()
	SignalCancelMining()
}

// =============================================================================

// Config represents the configuration required to start the ledger.
type Config struct {
	BeneficiaryID   database.AccountID
	Genesis         genesis.Genesis
	Storage         database.Storage
	MaxSealAttempts uint64
	EvHandler       EventHandler
}

// State manages the blockchain. Only one block can be mined at a time while
// any number of readers query the chain.
type State struct {
	beneficiaryID   database.AccountID
	maxSealAttempts uint64
	evHandler       EventHandler

	genesis genesis.Genesis
	mempool *mempool.Mempool
	db      *database.Database

	commitMu sync.Mutex
	mu       sync.RWMutex
	chain    []database.Block

	Worker Worker
}

// New constructs a new ledger, loads any blocks from storage and funds the
// genesis balances when the chain is new.
func New(cfg Config) (*State, error) {

	// Build a safe event handler function for use.
	ev := func(v string, args ...any) {
		if cfg.EvHandler != nil {
			cfg.EvHandler(v, args...)
		}
	}

	if err := cfg.Genesis.Validate(); err != nil {
		return nil, err
	}

	// Default to memory when no storage is provided.
	strg := cfg.Storage
	if strg == nil {
		strg = memory.New()
	}
	db := database.New(strg)

	// Load all existing blocks from storage into memory for processing.
	blocks, err := db.ReadAllBlocks(ev)
	if err != nil {
		return nil, err
	}

	chain := make([]database.Block, 0, len(blocks)+1)
	chain = append(chain, database.GenesisBlock(cfg.Genesis.Date))
	chain = append(chain, blocks...)

	// A chain that fails validation can't be built on.
	if err := validateChain(chain); err != nil {
		return nil, fmt.Errorf("loading chain: %w", err)
	}

	// Construct a mempool with the block capacity from genesis.
	mp, err := mempool.New(cfg.Genesis.TransPerBlock)
	if err != nil {
		return nil, err
	}

	s := State{
		beneficiaryID:   cfg.BeneficiaryID,
		maxSealAttempts: cfg.MaxSealAttempts,
		evHandler:       ev,

		genesis: cfg.Genesis,
		mempool: mp,
		db:      db,
		chain:   chain,
	}

	ev("state: New: loaded: blocks[%d]", len(chain))

	if len(chain) == 1 {
		s.fundGenesisBalances()
	}

	// The Worker is not set here. The call to worker.Run will assign itself
	// and start everything up and running for the node.

	return &s, nil
}

// Shutdown cleanly brings the node down.
func (s *State) Shutdown() error {
	s.evHandler("state: shutdown: started")
	defer s.evHandler("state: shutdown: completed")

	// Stop all blockchain writing activity.
	if s.Worker != nil {
		s.Worker.Shutdown()
	}

	// Make sure the database is properly closed.
	return s.db.Close()
}

// Truncate resets the chain both in storage and in memory back to the
// genesis block.
func (s *State) Truncate() error {
	s.commitMu.Lock()
	defer s.commitMu.Unlock()

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.db.Reset(); err != nil {
		return err
	}

	s.mempool.Truncate()
	s.chain = []database.Block{s.chain[0]}

	return nil
}

// =============================================================================

// fundGenesisBalances places the genesis funding into the mempool as system
// issued transactions so the first mined blocks carry them.
func (s *State) fundGenesisBalances() {
	accounts := make([]string, 0, len(s.genesis.Balances))
	for account := range s.genesis.Balances {
		accounts = append(accounts, account)
	}
	sort.Strings(accounts)

	for _, account := range accounts {
		tx, err := database.NewTx(database.SystemAccount, database.AccountID(account), s.genesis.Balances[account])
		if err != nil {
			s.evHandler("state: fundGenesisBalances: WARNING: account[%s]: %s", account, err)
			continue
		}

		s.mempool.Add(tx)
		s.evHandler("state: fundGenesisBalances: tx[%s]", tx)
	}
}
