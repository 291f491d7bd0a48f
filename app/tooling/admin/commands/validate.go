package commands

import (
	"errors"

	"github.com/ardanlabs/ledger/foundation/blockchain/database"
	"github.com/ardanlabs/ledger/foundation/blockchain/genesis"
	"github.com/ardanlabs/ledger/foundation/blockchain/state"
	"github.com/pterm/pterm"
	"go.uber.org/zap"
)

// Validate checks every stored block still matches its hash and links to
// the block before it.
func Validate(log *zap.SugaredLogger, gen genesis.Genesis, strg database.Storage) error {
	st, err := load(log, gen, strg)
	if err != nil {
		if errors.Is(err, state.ErrChainCorrupted) {
			pterm.Error.Println(err)
		}
		return err
	}
	defer st.Shutdown()

	pterm.Success.Printfln("chain is valid: blocks[%d]", st.ChainLength())

	return nil
}
