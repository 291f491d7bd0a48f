package nameservice_test

import (
	"path/filepath"
	"testing"

	"github.com/ardanlabs/ledger/foundation/blockchain/database"
	"github.com/ardanlabs/ledger/foundation/nameservice"
	"github.com/ethereum/go-ethereum/crypto"
)

// Success and failure markers.
const (
	success = "\u2713"
	failed  = "\u2717"
)

func Test_NameService(t *testing.T) {
	t.Log("Given the need to name accounts from a folder of keys.")
	{
		root := t.TempDir()

		privateKey, err := crypto.GenerateKey()
		if err != nil {
			t.Fatalf("\t%s\tShould be able to generate a key: %v", failed, err)
		}
		if err := crypto.SaveECDSA(filepath.Join(root, "kennedy.ecdsa"), privateKey); err != nil {
			t.Fatalf("\t%s\tShould be able to save the key: %v", failed, err)
		}
		accountID := database.PublicKeyToAccountID(privateKey.PublicKey)

		testID := 0
		t.Logf("\tTest %d:\tWhen the folder has a key.", testID)
		{
			ns, err := nameservice.New(root)
			if err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould be able to construct the name service: %v", failed, testID, err)
			}
			t.Logf("\t%s\tTest %d:\tShould be able to construct the name service.", success, testID)

			if name := ns.Lookup(accountID); name != "kennedy" {
				t.Fatalf("\t%s\tTest %d:\tShould get back kennedy, got %s.", failed, testID, name)
			}
			if name := ns.Lookup("bob"); name != "bob" {
				t.Fatalf("\t%s\tTest %d:\tShould get back an unknown account as is, got %s.", failed, testID, name)
			}
			t.Logf("\t%s\tTest %d:\tShould be able to lookup names.", success, testID)

			got, err := ns.Resolve("kennedy")
			if err != nil || got != accountID {
				t.Fatalf("\t%s\tTest %d:\tShould resolve kennedy to %s, got %s: %v", failed, testID, accountID, got, err)
			}
			if _, err := ns.Resolve(""); err == nil {
				t.Fatalf("\t%s\tTest %d:\tShould not resolve an empty name.", failed, testID)
			}
			t.Logf("\t%s\tTest %d:\tShould be able to resolve names.", success, testID)
		}

		testID++
		t.Logf("\tTest %d:\tWhen the folder doesn't exist.", testID)
		{
			ns, err := nameservice.New(filepath.Join(root, "missing"))
			if err != nil || len(ns.Copy()) != 0 {
				t.Fatalf("\t%s\tTest %d:\tShould get back an empty name service: %v", failed, testID, err)
			}
			t.Logf("\t%s\tTest %d:\tShould get back an empty name service.", success, testID)
		}
	}
}
