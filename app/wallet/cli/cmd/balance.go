package cmd

import (
	"fmt"
	"log"
	"net/http"

	"github.com/ardanlabs/ledger/foundation/blockchain/database"
	"github.com/spf13/cobra"
)

type info struct {
	Account string `json:"account"`
	Name    string `json:"name"`
	Balance int64  `json:"balance"`
}

type actInfo struct {
	LatestBlock string `json:"latest_block"`
	Uncommitted int    `json:"uncommitted"`
	Accounts    []info `json:"accounts"`
}

var balanceCmd = &cobra.Command{
	Use:   "balance",
	Short: "Print your balance.",
	Run:   balanceRun,
}

func init() {
	rootCmd.AddCommand(balanceCmd)
}

func balanceRun(cmd *cobra.Command, args []string) {
	accountID, err := loadAccountID()
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println("For Account:", accountID)

	bal, err := queryBalance(url, accountID)
	if err != nil {
		log.Fatal(err)
	}

	fmt.Println(bal)
}

// queryBalance asks the node for the balance of the account.
func queryBalance(url string, accountID database.AccountID) (int64, error) {
	var ai actInfo
	if err := call(http.MethodGet, fmt.Sprintf("%s/v1/accounts/list/%s", url, accountID), nil, &ai); err != nil {
		return 0, err
	}

	if len(ai.Accounts) == 0 {
		return 0, nil
	}

	return ai.Accounts[0].Balance, nil
}
