package state

import (
	"fmt"

	"github.com/ardanlabs/ledger/foundation/blockchain/database"
)

// SubmitTransaction accepts a transaction for inclusion in a future block.
// A sender other than the system account must hold a positive balance on
// the chain at the time of submission.
func (s *State) SubmitTransaction(tx database.Tx) error {
	if err := tx.Validate(); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidTransaction, err)
	}

	if !tx.IsSystemIssued() {
		if balance := s.QueryBalance(tx.From); balance <= 0 {
			s.evHandler("state: SubmitTransaction: REJECTED: tx[%s]: balance[%d]", tx, balance)
			return fmt.Errorf("%w: account %s, balance %d", ErrInsufficientFunds, tx.From, balance)
		}
	}

	n := s.mempool.Add(tx)
	s.evHandler("state: SubmitTransaction: ACCEPTED: tx[%s]: pending[%d]", tx, n)

	if s.Worker != nil {
		s.Worker.SignalStartMining()
	}

	return nil
}
