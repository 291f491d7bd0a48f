package state

import (
	"github.com/ardanlabs/ledger/foundation/blockchain/database"
	"github.com/ardanlabs/ledger/foundation/blockchain/genesis"
)

// QueryLatest represents to query the latest block in the chain.
const QueryLatest = ^uint64(0) >> 1

// =============================================================================

// QueryBalance replays every transaction on the chain and returns the
// balance of the specified account. An unknown account has a zero balance.
func (s *State) QueryBalance(accountID database.AccountID) int64 {
	return database.Balance(s.snapshot(), accountID)
}

// QueryBalances replays every transaction on the chain and returns the
// balance of every account that has transacted, sorted by account id.
func (s *State) QueryBalances() []database.Account {
	return database.Balances(s.snapshot())
}

// QueryMempoolLength returns the current length of the mempool.
func (s *State) QueryMempoolLength() int {
	return s.mempool.Count()
}

// QueryBlocksByNumber returns the set of blocks based on block numbers.
// Numbers outside the chain are ignored.
func (s *State) QueryBlocksByNumber(from uint64, to uint64) []database.Block {
	chain := s.snapshot()
	latest := uint64(len(chain) - 1)

	if from == QueryLatest {
		from = latest
		to = latest
	}
	if to == QueryLatest || to > latest {
		to = latest
	}

	var out []database.Block
	for i := from; i <= to; i++ {
		out = append(out, chain[i].Clone())
	}

	return out
}

// QueryBlocksByAccount returns the set of blocks with a transaction for the
// account. If the account is empty, all blocks are returned.
func (s *State) QueryBlocksByAccount(accountID database.AccountID) []database.Block {
	var out []database.Block

	for _, block := range s.snapshot() {
		if accountID == "" {
			out = append(out, block.Clone())
			continue
		}

		for _, tx := range block.Trans {
			if tx.From == accountID || tx.To == accountID {
				out = append(out, block.Clone())
				break
			}
		}
	}

	return out
}

// =============================================================================

// RetrieveLatestBlock returns a copy of the current latest block.
func (s *State) RetrieveLatestBlock() database.Block {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.chain[len(s.chain)-1].Clone()
}

// RetrieveMempool returns a copy of the mempool.
func (s *State) RetrieveMempool() []database.Tx {
	return s.mempool.Copy()
}

// RetrieveGenesis returns a copy of the genesis information.
func (s *State) RetrieveGenesis() genesis.Genesis {
	return s.genesis
}

// ChainLength returns the number of blocks including the genesis block.
func (s *State) ChainLength() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.chain)
}

// =============================================================================

// snapshot returns the chain as it is right now. Blocks are never changed
// once appended so the snapshot can be read without holding the lock.
func (s *State) snapshot() []database.Block {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.chain[:len(s.chain):len(s.chain)]
}
