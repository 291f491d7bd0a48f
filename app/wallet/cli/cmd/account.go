package cmd

import (
	"fmt"
	"log"

	"github.com/ardanlabs/ledger/foundation/blockchain/database"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/spf13/cobra"
)

var accountCmd = &cobra.Command{
	Use:   "account",
	Short: "Print account for the specific wallet",
	Run:   accountRun,
}

func init() {
	rootCmd.AddCommand(accountCmd)
}

func accountRun(cmd *cobra.Command, args []string) {
	accountID, err := loadAccountID()
	if err != nil {
		log.Fatal(err)
	}

	fmt.Println(accountID)
}

// loadAccountID reads the wallet's private key and returns its account.
func loadAccountID() (database.AccountID, error) {
	privateKey, err := crypto.LoadECDSA(getPrivateKeyPath())
	if err != nil {
		return "", err
	}

	return database.PublicKeyToAccountID(privateKey.PublicKey), nil
}
