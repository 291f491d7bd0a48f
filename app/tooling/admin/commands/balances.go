package commands

import (
	"strconv"

	"github.com/ardanlabs/ledger/foundation/blockchain/database"
	"github.com/ardanlabs/ledger/foundation/blockchain/genesis"
	"github.com/pterm/pterm"
	"go.uber.org/zap"
)

// Balances shows the current set of balances or the balance of the
// specified account.
func Balances(log *zap.SugaredLogger, gen genesis.Genesis, strg database.Storage, account string) error {
	st, err := load(log, gen, strg)
	if err != nil {
		return err
	}
	defer st.Shutdown()

	pterm.Info.Printfln("LatestBlockHash: %s", st.RetrieveLatestBlock().Hash())

	var accounts []database.Account
	switch account {
	case "":
		accounts = st.QueryBalances()

	default:
		accountID, err := database.ToAccountID(account)
		if err != nil {
			return err
		}
		accounts = []database.Account{{AccountID: accountID, Balance: st.QueryBalance(accountID)}}
	}

	data := pterm.TableData{{"Account", "Balance"}}
	for _, act := range accounts {
		data = append(data, []string{string(act.AccountID), strconv.FormatInt(act.Balance, 10)})
	}

	return pterm.DefaultTable.WithHasHeader().WithData(data).Render()
}
