package commands

import (
	"strconv"
	"time"

	"github.com/ardanlabs/ledger/foundation/blockchain/database"
	"github.com/ardanlabs/ledger/foundation/blockchain/genesis"
	"github.com/ardanlabs/ledger/foundation/blockchain/state"
	"github.com/pterm/pterm"
	"go.uber.org/zap"
)

// Blocks shows every block on the chain with its transactions.
func Blocks(log *zap.SugaredLogger, gen genesis.Genesis, strg database.Storage) error {
	st, err := load(log, gen, strg)
	if err != nil {
		return err
	}
	defer st.Shutdown()

	for _, blk := range st.QueryBlocksByNumber(0, state.QueryLatest) {
		ts := time.UnixMilli(int64(blk.Header.TimeStamp)).UTC().Format(time.RFC3339)

		pterm.DefaultSection.Printfln("Block %d", blk.Header.Number)
		pterm.Printfln("Hash:      %s", blk.Hash())
		pterm.Printfln("PrevHash:  %s", blk.Header.PrevBlockHash)
		pterm.Printfln("TimeStamp: %s", ts)
		pterm.Printfln("Nonce:     %d", blk.Header.Nonce)

		if len(blk.Trans) == 0 {
			continue
		}

		data := pterm.TableData{{"From", "To", "Amount"}}
		for _, tx := range blk.Trans {
			data = append(data, []string{string(tx.From), string(tx.To), strconv.FormatUint(tx.Amount, 10)})
		}

		if err := pterm.DefaultTable.WithHasHeader().WithData(data).Render(); err != nil {
			return err
		}
	}

	return nil
}
