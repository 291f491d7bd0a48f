package worker_test

import (
	"testing"
	"time"

	"github.com/ardanlabs/ledger/foundation/blockchain/database"
	"github.com/ardanlabs/ledger/foundation/blockchain/genesis"
	"github.com/ardanlabs/ledger/foundation/blockchain/state"
	"github.com/ardanlabs/ledger/foundation/blockchain/worker"
)

// Success and failure markers.
const (
	success = "\u2713"
	failed  = "\u2717"
)

// waitFor polls the condition until it is true or the timeout passes.
func waitFor(timeout time.Duration, cond func() bool) bool {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return true
		}
		time.Sleep(10 * time.Millisecond)
	}

	return cond()
}

func Test_Mining(t *testing.T) {
	t.Log("Given the need to mine submitted transactions in the background.")
	{
		gen := genesis.Default()
		gen.Difficulty = 1
		gen.TransPerBlock = 3

		st, err := state.New(state.Config{BeneficiaryID: "miner", Genesis: gen})
		if err != nil {
			t.Fatalf("\t%s\tShould be able to construct the state: %v", failed, err)
		}

		testID := 0
		t.Logf("\tTest %d:\tWhen more transactions are pending than fit in a block.", testID)
		{
			accounts := []database.AccountID{"a", "b", "c", "d"}
			for _, to := range accounts {
				tx, err := database.NewTx(database.SystemAccount, to, 10)
				if err != nil {
					t.Fatalf("\t%s\tTest %d:\tShould be able to construct a transaction: %v", failed, testID, err)
				}
				if err := st.SubmitTransaction(tx); err != nil {
					t.Fatalf("\t%s\tTest %d:\tShould be able to submit a transaction: %v", failed, testID, err)
				}
			}

			worker.Run(st, nil)
			defer st.Shutdown()

			drained := waitFor(5*time.Second, func() bool {
				return st.QueryMempoolLength() == 0
			})
			if !drained {
				t.Fatalf("\t%s\tTest %d:\tShould mine every transaction, %d left.", failed, testID, st.QueryMempoolLength())
			}
			t.Logf("\t%s\tTest %d:\tShould mine every transaction.", success, testID)

			if st.ChainLength() != 3 {
				t.Fatalf("\t%s\tTest %d:\tShould have mined 2 blocks, got %d.", failed, testID, st.ChainLength()-1)
			}
			t.Logf("\t%s\tTest %d:\tShould have mined 2 blocks.", success, testID)

			for _, to := range accounts {
				if bal := st.QueryBalance(to); bal != 10 {
					t.Fatalf("\t%s\tTest %d:\tShould have funded %s, got %d.", failed, testID, to, bal)
				}
			}
			t.Logf("\t%s\tTest %d:\tShould have funded every account.", success, testID)

			if !st.IsChainValid() {
				t.Fatalf("\t%s\tTest %d:\tShould have a valid chain.", failed, testID)
			}
			t.Logf("\t%s\tTest %d:\tShould have a valid chain.", success, testID)
		}

		testID++
		t.Logf("\tTest %d:\tWhen the worker is shut down more than once.", testID)
		{
			st, err := state.New(state.Config{BeneficiaryID: "miner", Genesis: gen})
			if err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould be able to construct the state: %v", failed, testID, err)
			}
			worker.Run(st, nil)

			st.Worker.Shutdown()
			st.Worker.Shutdown()
			t.Logf("\t%s\tTest %d:\tShould ignore the second shutdown.", success, testID)
		}
	}
}
