package state

import "github.com/ardanlabs/ledger/foundation/blockchain/database"

// CorruptBlock is a corruption injection hook for tests. It hands the stored
// block to fn so fields can be overwritten without going through sealing.
func (s *State) CorruptBlock(number uint64, fn func(block *database.Block)) {
	s.mu.Lock()
	defer s.mu.Unlock()

	fn(&s.chain[number])
}
