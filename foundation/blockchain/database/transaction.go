package database

import (
	"errors"
	"fmt"
	"math"
)

// MaxAmount is the largest value a single transaction can move. Balances are
// signed so an amount must fit in an int64.
const MaxAmount = math.MaxInt64

// Tx is the transactional information between two parties. A Tx is handled
// as a value so a stored transaction can't be changed through a copy.
type Tx struct {
	From   AccountID `json:"from"`   // Account sending the value, SystemAccount for issued value.
	To     AccountID `json:"to"`     // Account receiving the value.
	Amount uint64    `json:"amount"` // Monetary value moved by this transaction.
}

// NewTx constructs a new transaction.
func NewTx(from AccountID, to AccountID, amount uint64) (Tx, error) {
	tx := Tx{
		From:   from,
		To:     to,
		Amount: amount,
	}

	if err := tx.Validate(); err != nil {
		return Tx{}, err
	}

	return tx, nil
}

// NewRewardTx constructs the transaction the ledger issues to credit the
// beneficiary of a mined block.
func NewRewardTx(beneficiary AccountID, reward uint64) Tx {
	return Tx{
		From:   SystemAccount,
		To:     beneficiary,
		Amount: reward,
	}
}

// Validate checks the transaction has usable accounts and a representable
// amount.
func (tx Tx) Validate() error {
	if !tx.From.IsAccountID() {
		return errors.New("from account is not properly formatted")
	}

	if !tx.To.IsAccountID() {
		return errors.New("to account is not properly formatted")
	}

	if tx.To.IsSystem() {
		return errors.New("to account can't be the system account")
	}

	if tx.Amount > MaxAmount {
		return fmt.Errorf("amount %d is larger than %d", tx.Amount, uint64(MaxAmount))
	}

	return nil
}

// IsSystemIssued reports whether the value in this transaction was issued by
// the ledger itself.
func (tx Tx) IsSystemIssued() bool {
	return tx.From.IsSystem()
}

// String implements the fmt.Stringer interface for logging.
func (tx Tx) String() string {
	return fmt.Sprintf("%s->%s:%d", tx.From, tx.To, tx.Amount)
}

// =============================================================================

// copyTrans returns a copy of the transactions so the caller can't modify
// the backing array of a stored block.
func copyTrans(trans []Tx) []Tx {
	cpy := make([]Tx, len(trans))
	copy(cpy, trans)
	return cpy
}
