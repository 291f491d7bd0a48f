package state

import (
	"context"
	"fmt"

	"github.com/ardanlabs/ledger/foundation/blockchain/database"
)

// MineNewBlock attempts to create a new block with a proper hash that can
// become the next block in the chain. The reward for the block is paid to
// the specified beneficiary, or the configured one when empty. When sealing
// is cancelled or exhausted, the chain and the mempool are left unchanged.
func (s *State) MineNewBlock(ctx context.Context, beneficiaryID database.AccountID) (database.Block, error) {
	if beneficiaryID == "" {
		beneficiaryID = s.beneficiaryID
	}

	if !beneficiaryID.IsAccountID() || beneficiaryID.IsSystem() {
		return database.Block{}, fmt.Errorf("%w: beneficiary %q can't receive a reward", ErrInvalidTransaction, beneficiaryID)
	}

	// Only one block is mined at a time.
	s.commitMu.Lock()
	defer s.commitMu.Unlock()

	s.evHandler("state: MineNewBlock: MINING: pick batch: pending[%d]", s.mempool.Count())

	reward := database.NewRewardTx(beneficiaryID, s.genesis.MiningReward)
	batch := s.mempool.PickBatch(reward)

	if dropped := batch.Dropped(); dropped > 0 {
		s.evHandler("state: MineNewBlock: MINING: WARNING: pending transactions dropped by batch selection[%d]", dropped)
	}

	s.evHandler("state: MineNewBlock: MINING: perform POW: trans[%d]", len(batch.Trans))

	// Attempt to create a new block by solving the POW puzzle. This can be cancelled.
	prevBlock := s.RetrieveLatestBlock()
	block, err := database.POW(ctx, database.POWArgs{
		Number:      prevBlock.Header.Number + 1,
		PrevBlock:   prevBlock,
		Trans:       batch.Trans,
		Difficulty:  s.genesis.Difficulty,
		MaxAttempts: s.maxSealAttempts,
		EvHandler:   s.evHandler,
	})
	if err != nil {
		return database.Block{}, err
	}

	// Just check one more time we were not cancelled.
	if ctx.Err() != nil {
		return database.Block{}, ctx.Err()
	}

	s.evHandler("state: MineNewBlock: MINING: update local state")

	if err := s.updateLocalState(block); err != nil {
		return database.Block{}, err
	}

	s.mempool.Prune(batch)

	s.evHandler("state: MineNewBlock: MINING: block mined: blk[%s]: pending[%d]", block, s.mempool.Count())

	return block.Clone(), nil
}

// =============================================================================

// updateLocalState writes the block to storage and then appends it to the
// chain. The append is the point the block becomes visible to readers.
func (s *State) updateLocalState(block database.Block) error {
	s.evHandler("state: updateLocalState: write to storage")

	if err := s.db.Write(block); err != nil {
		return fmt.Errorf("writing block %d: %w", block.Header.Number, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.chain = append(s.chain, block)

	return nil
}
