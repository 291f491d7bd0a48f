package state

import (
	"fmt"

	"github.com/ardanlabs/ledger/foundation/blockchain/database"
)

// ValidateChain walks the chain and checks every block after genesis still
// matches its recorded hash and links to the hash of the block before it.
// Difficulty, rewards and historic balances are not checked.
func (s *State) ValidateChain() error {
	if err := validateChain(s.snapshot()); err != nil {
		s.evHandler("state: ValidateChain: INVALID: %s", err)
		return err
	}

	return nil
}

// IsChainValid reports whether ValidateChain finds no problem.
func (s *State) IsChainValid() bool {
	return s.ValidateChain() == nil
}

// validateChain performs the hash and link checks over the blocks.
func validateChain(chain []database.Block) error {
	for i := 1; i < len(chain); i++ {
		if err := chain[i].ValidateBlock(chain[i-1]); err != nil {
			return fmt.Errorf("%w: %w", ErrChainCorrupted, err)
		}
	}

	return nil
}
