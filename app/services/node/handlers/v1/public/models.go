package public

import (
	"github.com/ardanlabs/ledger/foundation/blockchain/database"
	"github.com/ardanlabs/ledger/foundation/nameservice"
)

// submitTx is the payload for submitting a transaction. The accounts can be
// account ids or names known to the name service.
type submitTx struct {
	From   string `json:"from" validate:"required"`
	To     string `json:"to" validate:"required"`
	Amount uint64 `json:"amount"`
}

// mineBlock is the payload for mining a block. An empty beneficiary mines for
// the node's configured account.
type mineBlock struct {
	Beneficiary string `json:"beneficiary"`
}

type tx struct {
	From     database.AccountID `json:"from"`
	FromName string             `json:"from_name"`
	To       database.AccountID `json:"to"`
	ToName   string             `json:"to_name"`
	Amount   uint64             `json:"amount"`
}

type block struct {
	Number        uint64 `json:"number"`
	Hash          string `json:"hash"`
	PrevBlockHash string `json:"prev_block_hash"`
	TimeStamp     uint64 `json:"timestamp"`
	Nonce         uint64 `json:"nonce"`
	Trans         []tx   `json:"trans"`
}

type info struct {
	Account database.AccountID `json:"account"`
	Name    string             `json:"name"`
	Balance int64              `json:"balance"`
}

type actInfo struct {
	LatestBlock string `json:"latest_block"`
	Uncommitted int    `json:"uncommitted"`
	Accounts    []info `json:"accounts"`
}

type chainStatus struct {
	Valid  bool   `json:"valid"`
	Blocks int    `json:"blocks"`
	Error  string `json:"error,omitempty"`
}

// =============================================================================

func toTx(ns *nameservice.NameService, tran database.Tx) tx {
	return tx{
		From:     tran.From,
		FromName: ns.Lookup(tran.From),
		To:       tran.To,
		ToName:   ns.Lookup(tran.To),
		Amount:   tran.Amount,
	}
}

func toTxs(ns *nameservice.NameService, trans []database.Tx) []tx {
	txs := make([]tx, len(trans))
	for i, tran := range trans {
		txs[i] = toTx(ns, tran)
	}
	return txs
}

func toBlock(ns *nameservice.NameService, blk database.Block) block {
	return block{
		Number:        blk.Header.Number,
		Hash:          blk.Hash(),
		PrevBlockHash: blk.Header.PrevBlockHash,
		TimeStamp:     blk.Header.TimeStamp,
		Nonce:         blk.Header.Nonce,
		Trans:         toTxs(ns, blk.Trans),
	}
}
