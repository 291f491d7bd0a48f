package commands_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ardanlabs/ledger/app/tooling/admin/commands"
	"github.com/ardanlabs/ledger/foundation/blockchain/database/storage/disk"
	"github.com/ardanlabs/ledger/foundation/blockchain/genesis"
	"github.com/ardanlabs/ledger/foundation/blockchain/state"
	"github.com/ardanlabs/ledger/foundation/logger"
)

// Success and failure markers.
const (
	success = "\u2713"
	failed  = "\u2717"
)

func openDisk(t *testing.T, dbPath string) *disk.Disk {
	t.Helper()

	strg, err := disk.New(dbPath)
	if err != nil {
		t.Fatalf("\t%s\tShould be able to open the storage: %v", failed, err)
	}

	return strg
}

func Test_Commands(t *testing.T) {
	log := logger.NewTest()
	dbPath := t.TempDir()

	gen := genesis.Default()
	gen.Difficulty = 1
	gen.Balances = map[string]uint64{"alice": 100}

	st, err := state.New(state.Config{BeneficiaryID: "miner", Genesis: gen, Storage: openDisk(t, dbPath)})
	if err != nil {
		t.Fatalf("\t%s\tShould be able to construct the state: %v", failed, err)
	}
	if _, err := st.MineNewBlock(context.Background(), ""); err != nil {
		t.Fatalf("\t%s\tShould be able to mine a block: %v", failed, err)
	}
	st.Shutdown()

	t.Log("Given the need to administer a stored chain.")
	{
		testID := 0
		t.Logf("\tTest %d:\tWhen the stored chain is intact.", testID)
		{
			if err := commands.Validate(log, gen, openDisk(t, dbPath)); err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould find the chain valid: %v", failed, testID, err)
			}
			t.Logf("\t%s\tTest %d:\tShould find the chain valid.", success, testID)

			if err := commands.Balances(log, gen, openDisk(t, dbPath), ""); err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould be able to show balances: %v", failed, testID, err)
			}
			if err := commands.Blocks(log, gen, openDisk(t, dbPath)); err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould be able to show blocks: %v", failed, testID, err)
			}
			t.Logf("\t%s\tTest %d:\tShould be able to show the chain.", success, testID)
		}

		testID++
		t.Logf("\tTest %d:\tWhen a stored block was edited.", testID)
		{
			path := filepath.Join(dbPath, "1.json")
			data, err := os.ReadFile(path)
			if err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould be able to read the block file: %v", failed, testID, err)
			}

			edited := strings.Replace(string(data), `"amount": 100`, `"amount": 900`, 1)
			if edited == string(data) {
				t.Fatalf("\t%s\tTest %d:\tShould be able to edit the block file.", failed, testID)
			}
			if err := os.WriteFile(path, []byte(edited), 0600); err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould be able to write the block file: %v", failed, testID, err)
			}

			err = commands.Validate(log, gen, openDisk(t, dbPath))
			if !errors.Is(err, state.ErrChainCorrupted) {
				t.Fatalf("\t%s\tTest %d:\tShould find the chain corrupted: %v", failed, testID, err)
			}
			t.Logf("\t%s\tTest %d:\tShould find the chain corrupted.", success, testID)
		}
	}
}
