package database

import (
	"crypto/ecdsa"
	"errors"
	"strings"

	"github.com/ardanlabs/ledger/foundation/blockchain/signature"
)

// SystemAccount is the sender used for transactions the ledger issues itself,
// such as mining rewards and genesis funding. It never holds a balance check.
const SystemAccount AccountID = "null"

// Account represents the derived balance information for an individual account.
type Account struct {
	AccountID AccountID `json:"account"`
	Balance   int64     `json:"balance"`
}

// =============================================================================

// AccountID represents an account id that is associated with transactions on
// the blockchain. Any non-empty identifier is accepted, wallet generated ids
// are hex-encoded addresses.
type AccountID string

// ToAccountID converts a string to an account and validates the string is
// usable as an account id.
func ToAccountID(s string) (AccountID, error) {
	a := AccountID(strings.TrimSpace(s))
	if !a.IsAccountID() {
		return "", errors.New("invalid account format")
	}

	return a, nil
}

// PublicKeyToAccountID converts the public key to an account value.
func PublicKeyToAccountID(pk ecdsa.PublicKey) AccountID {
	return AccountID(signature.PublicKeyToAddress(pk))
}

// IsAccountID verifies whether the underlying data can identify an account.
func (a AccountID) IsAccountID() bool {
	return a != "" && !strings.ContainsAny(string(a), " \t\r\n/")
}

// IsSystem reports whether the account is the system issuance sentinel.
func (a AccountID) IsSystem() bool {
	return a == SystemAccount
}

// =============================================================================

// byAccount provides sorting support by the account id value.
type byAccount []Account

// Len returns the number of accounts in the list.
func (ba byAccount) Len() int {
	return len(ba)
}

// Less helps to sort the list by account id in ascending order to keep the
// accounts in a stable order for display.
func (ba byAccount) Less(i, j int) bool {
	return ba[i].AccountID < ba[j].AccountID
}

// Swap moves accounts in the order of the account id value.
func (ba byAccount) Swap(i, j int) {
	ba[i], ba[j] = ba[j], ba[i]
}
