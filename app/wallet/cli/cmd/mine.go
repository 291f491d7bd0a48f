package cmd

import (
	"fmt"
	"log"
	"net/http"

	"github.com/ardanlabs/ledger/foundation/blockchain/database"
	"github.com/spf13/cobra"
)

type mineReq struct {
	Beneficiary database.AccountID `json:"beneficiary"`
}

type block struct {
	Number uint64 `json:"number"`
	Hash   string `json:"hash"`
	Nonce  uint64 `json:"nonce"`
	Trans  []struct {
		From   string `json:"from"`
		To     string `json:"to"`
		Amount uint64 `json:"amount"`
	} `json:"trans"`
}

var mineCmd = &cobra.Command{
	Use:   "mine",
	Short: "Ask the node to mine a block with the reward paid to this wallet.",
	Run:   mineRun,
}

func init() {
	rootCmd.AddCommand(mineCmd)
}

func mineRun(cmd *cobra.Command, args []string) {
	accountID, err := loadAccountID()
	if err != nil {
		log.Fatal(err)
	}

	blk, err := mine(url, accountID)
	if err != nil {
		log.Fatal(err)
	}

	fmt.Printf("block[%d] hash[%s] nonce[%d] trans[%d]\n", blk.Number, blk.Hash, blk.Nonce, len(blk.Trans))
}

// mine asks the node to mine the next block for the beneficiary.
func mine(url string, beneficiary database.AccountID) (block, error) {
	var blk block
	if err := call(http.MethodPost, fmt.Sprintf("%s/v1/blocks/mine", url), mineReq{Beneficiary: beneficiary}, &blk); err != nil {
		return block{}, err
	}

	return blk, nil
}
