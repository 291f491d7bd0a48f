package cmd

import (
	"fmt"
	"log"
	"net/http"

	"github.com/ardanlabs/ledger/foundation/blockchain/database"
	"github.com/spf13/cobra"
)

var (
	to     string
	amount uint64
)

type submitTx struct {
	From   database.AccountID `json:"from"`
	To     string             `json:"to"`
	Amount uint64             `json:"amount"`
}

type submitResp struct {
	Status  string `json:"status"`
	Pending int    `json:"pending"`
}

// sendCmd represents the send command
var sendCmd = &cobra.Command{
	Use:   "send",
	Short: "Send value to another account",
	Run:   sendRun,
}

func init() {
	rootCmd.AddCommand(sendCmd)
	sendCmd.Flags().StringVarP(&to, "to", "t", "", "Account or name to send to.")
	sendCmd.Flags().Uint64VarP(&amount, "amount", "v", 0, "Amount to send.")
	sendCmd.MarkFlagRequired("to")
}

func sendRun(cmd *cobra.Command, args []string) {
	accountID, err := loadAccountID()
	if err != nil {
		log.Fatal(err)
	}

	resp, err := send(url, submitTx{From: accountID, To: to, Amount: amount})
	if err != nil {
		log.Fatal(err)
	}

	fmt.Printf("%s, pending[%d]\n", resp.Status, resp.Pending)
}

// send submits the transaction to the node.
func send(url string, tx submitTx) (submitResp, error) {
	var resp submitResp
	if err := call(http.MethodPost, fmt.Sprintf("%s/v1/tx/submit", url), tx, &resp); err != nil {
		return submitResp{}, err
	}

	return resp, nil
}
