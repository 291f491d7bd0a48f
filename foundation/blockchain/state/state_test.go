package state_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/ardanlabs/ledger/foundation/blockchain/database"
	"github.com/ardanlabs/ledger/foundation/blockchain/database/storage/memory"
	"github.com/ardanlabs/ledger/foundation/blockchain/genesis"
	"github.com/ardanlabs/ledger/foundation/blockchain/state"
	"github.com/davecgh/go-spew/spew"
)

// Success and failure markers.
const (
	success = "\u2713"
	failed  = "\u2717"
)

func ifErrFailNow(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Error(err)
		t.FailNow()
	}
}

// newState constructs a ledger with a low difficulty so tests run quickly.
func newState(t *testing.T, reward uint64, capacity int, strg database.Storage) *state.State {
	t.Helper()

	gen := genesis.Default()
	gen.Difficulty = 2
	gen.MiningReward = reward
	gen.TransPerBlock = capacity

	s, err := state.New(state.Config{
		BeneficiaryID: "miner",
		Genesis:       gen,
		Storage:       strg,
	})
	ifErrFailNow(t, err)

	return s
}

func fund(t *testing.T, s *state.State, to database.AccountID, amount uint64) {
	t.Helper()

	tx, err := database.NewTx(database.SystemAccount, to, amount)
	ifErrFailNow(t, err)
	ifErrFailNow(t, s.SubmitTransaction(tx))
}

// =============================================================================

func TestGenesisOnly(t *testing.T) {
	t.Log("Given the need to work with a new ledger.")
	{
		testID := 0
		t.Logf("\tTest %d:\tWhen only the genesis block exists.", testID)
		{
			s := newState(t, 10, 10, nil)

			if !s.IsChainValid() {
				t.Fatalf("\t%s\tTest %d:\tShould have a valid chain.", failed, testID)
			}
			t.Logf("\t%s\tTest %d:\tShould have a valid chain.", success, testID)

			for _, account := range []database.AccountID{"alice", "bob", database.SystemAccount} {
				if bal := s.QueryBalance(account); bal != 0 {
					t.Fatalf("\t%s\tTest %d:\tShould have a zero balance for %s, got %d.", failed, testID, account, bal)
				}
			}
			t.Logf("\t%s\tTest %d:\tShould have a zero balance for every account.", success, testID)

			genesisBlock := s.RetrieveLatestBlock()
			if genesisBlock.Header.Number != 0 || genesisBlock.Header.PrevBlockHash != database.GenesisPrevBlockHash || len(genesisBlock.Trans) != 0 {
				t.Log(spew.Sdump(genesisBlock))
				t.Fatalf("\t%s\tTest %d:\tShould have the genesis block as the latest block.", failed, testID)
			}
			t.Logf("\t%s\tTest %d:\tShould have the genesis block as the latest block.", success, testID)
		}
	}
}

func TestMineFundedAccounts(t *testing.T) {
	t.Log("Given the need to mine funded accounts into a block.")
	{
		testID := 0
		t.Logf("\tTest %d:\tWhen funding alice and bob and mining for bob.", testID)
		{
			s := newState(t, 10, 10, nil)

			fund(t, s, "alice", 100)
			fund(t, s, "bob", 100)

			block, err := s.MineNewBlock(context.Background(), "bob")
			ifErrFailNow(t, err)
			t.Logf("\t%s\tTest %d:\tShould be able to mine a block.", success, testID)

			if len(block.Trans) != 3 {
				t.Log(spew.Sdump(block))
				t.Fatalf("\t%s\tTest %d:\tShould have 3 transactions in the block, got %d.", failed, testID, len(block.Trans))
			}
			t.Logf("\t%s\tTest %d:\tShould have 3 transactions in the block.", success, testID)

			if last := block.Trans[2]; last != database.NewRewardTx("bob", 10) {
				t.Fatalf("\t%s\tTest %d:\tShould have the reward as the last transaction, got %s.", failed, testID, last)
			}
			t.Logf("\t%s\tTest %d:\tShould have the reward as the last transaction.", success, testID)

			if bal := s.QueryBalance("alice"); bal != 100 {
				t.Fatalf("\t%s\tTest %d:\tShould have 100 for alice, got %d.", failed, testID, bal)
			}
			if bal := s.QueryBalance("bob"); bal != 110 {
				t.Fatalf("\t%s\tTest %d:\tShould have 110 for bob, got %d.", failed, testID, bal)
			}
			t.Logf("\t%s\tTest %d:\tShould have the right balances.", success, testID)

			if block.Header.Number != 1 || block.Header.PrevBlockHash != s.QueryBlocksByNumber(0, 0)[0].Hash() {
				t.Fatalf("\t%s\tTest %d:\tShould link the block to genesis.", failed, testID)
			}
			t.Logf("\t%s\tTest %d:\tShould link the block to genesis.", success, testID)

			if s.QueryMempoolLength() != 0 {
				t.Fatalf("\t%s\tTest %d:\tShould have an empty mempool.", failed, testID)
			}
			t.Logf("\t%s\tTest %d:\tShould have an empty mempool.", success, testID)
		}
	}
}

func TestMineOverCapacity(t *testing.T) {
	t.Log("Given the need to mine more transactions than fit in a block.")
	{
		testID := 0
		t.Logf("\tTest %d:\tWhen 15 transactions are pending with a capacity of 10.", testID)
		{
			s := newState(t, 10, 10, nil)

			for i := 0; i < 15; i++ {
				fund(t, s, database.AccountID(fmt.Sprintf("acct%d", i)), uint64(i+1))
			}
			pending := s.RetrieveMempool()

			block, err := s.MineNewBlock(context.Background(), "miner")
			ifErrFailNow(t, err)

			if len(block.Trans) != 10 {
				t.Fatalf("\t%s\tTest %d:\tShould have 10 transactions in the block, got %d.", failed, testID, len(block.Trans))
			}
			for i, tx := range block.Trans[:9] {
				if tx != pending[6+i] {
					t.Fatalf("\t%s\tTest %d:\tShould have the most recent submissions in the block, got %s, exp %s.", failed, testID, tx, pending[6+i])
				}
			}
			if block.Trans[9] != database.NewRewardTx("miner", 10) {
				t.Fatalf("\t%s\tTest %d:\tShould have the reward last in the block.", failed, testID)
			}
			t.Logf("\t%s\tTest %d:\tShould have the last 9 submissions and the reward in the block.", success, testID)

			retained := s.RetrieveMempool()
			if len(retained) != 6 {
				t.Fatalf("\t%s\tTest %d:\tShould retain 6 transactions, got %d.", failed, testID, len(retained))
			}
			for i, tx := range retained {
				if tx != pending[i] {
					t.Fatalf("\t%s\tTest %d:\tShould retain the oldest submissions, got %s, exp %s.", failed, testID, tx, pending[i])
				}
			}
			t.Logf("\t%s\tTest %d:\tShould retain the oldest submissions for the next block.", success, testID)

			block, err = s.MineNewBlock(context.Background(), "miner")
			ifErrFailNow(t, err)

			if len(block.Trans) != 7 || s.QueryMempoolLength() != 0 {
				t.Fatalf("\t%s\tTest %d:\tShould mine the retained transactions in the next block.", failed, testID)
			}
			t.Logf("\t%s\tTest %d:\tShould mine the retained transactions in the next block.", success, testID)

			for i := 0; i < 15; i++ {
				if bal := s.QueryBalance(database.AccountID(fmt.Sprintf("acct%d", i))); bal != int64(i+1) {
					t.Fatalf("\t%s\tTest %d:\tShould have funded acct%d, got %d.", failed, testID, i, bal)
				}
			}
			t.Logf("\t%s\tTest %d:\tShould have funded every account.", success, testID)
		}
	}
}

func TestSubmitTransaction(t *testing.T) {
	t.Log("Given the need to validate submitted transactions.")
	{
		testID := 0
		t.Logf("\tTest %d:\tWhen the sender has no balance.", testID)
		{
			s := newState(t, 10, 10, nil)

			err := s.SubmitTransaction(database.Tx{From: "carol", To: "dave", Amount: 5})
			if !errors.Is(err, state.ErrInsufficientFunds) {
				t.Fatalf("\t%s\tTest %d:\tShould reject the transaction for insufficient funds: %v", failed, testID, err)
			}
			t.Logf("\t%s\tTest %d:\tShould reject the transaction for insufficient funds.", success, testID)

			if s.QueryMempoolLength() != 0 {
				t.Fatalf("\t%s\tTest %d:\tShould not change the mempool.", failed, testID)
			}
			t.Logf("\t%s\tTest %d:\tShould not change the mempool.", success, testID)
		}

		testID++
		t.Logf("\tTest %d:\tWhen the sender only has unmined funding.", testID)
		{
			s := newState(t, 10, 10, nil)
			fund(t, s, "carol", 50)

			err := s.SubmitTransaction(database.Tx{From: "carol", To: "dave", Amount: 5})
			if !errors.Is(err, state.ErrInsufficientFunds) {
				t.Fatalf("\t%s\tTest %d:\tShould reject the transaction until the funding is mined: %v", failed, testID, err)
			}
			t.Logf("\t%s\tTest %d:\tShould reject the transaction until the funding is mined.", success, testID)

			_, err = s.MineNewBlock(context.Background(), "")
			ifErrFailNow(t, err)

			if err := s.SubmitTransaction(database.Tx{From: "carol", To: "dave", Amount: 5}); err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould accept the transaction once funded: %v", failed, testID, err)
			}
			t.Logf("\t%s\tTest %d:\tShould accept the transaction once funded.", success, testID)
		}

		testID++
		t.Logf("\tTest %d:\tWhen the transaction is malformed.", testID)
		{
			s := newState(t, 10, 10, nil)

			for _, tx := range []database.Tx{{From: "", To: "bob"}, {From: database.SystemAccount, To: ""}, {From: "bob", To: database.SystemAccount}} {
				if err := s.SubmitTransaction(tx); !errors.Is(err, state.ErrInvalidTransaction) {
					t.Fatalf("\t%s\tTest %d:\tShould reject %s as invalid: %v", failed, testID, tx, err)
				}
			}
			t.Logf("\t%s\tTest %d:\tShould reject malformed transactions.", success, testID)
		}

		testID++
		t.Logf("\tTest %d:\tWhen the amount doesn't fit a balance.", testID)
		{
			s := newState(t, 10, 10, nil)

			err := s.SubmitTransaction(database.Tx{From: database.SystemAccount, To: "alice", Amount: 1 << 63})
			if !errors.Is(err, state.ErrInvalidTransaction) {
				t.Fatalf("\t%s\tTest %d:\tShould reject the amount as invalid: %v", failed, testID, err)
			}
			t.Logf("\t%s\tTest %d:\tShould reject the amount as invalid.", success, testID)

			fund(t, s, "alice", database.MaxAmount)
			_, err = s.MineNewBlock(context.Background(), "")
			ifErrFailNow(t, err)

			if bal := s.QueryBalance("alice"); bal != database.MaxAmount {
				t.Fatalf("\t%s\tTest %d:\tShould credit the largest amount, got %d.", failed, testID, bal)
			}
			t.Logf("\t%s\tTest %d:\tShould credit the largest amount.", success, testID)

			if err := s.SubmitTransaction(database.Tx{From: "alice", To: "bob", Amount: 1}); err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould let the funded account send: %v", failed, testID, err)
			}
			t.Logf("\t%s\tTest %d:\tShould let the funded account send.", success, testID)
		}
	}
}

func TestMineEmptyMempool(t *testing.T) {
	t.Log("Given the need to mine when nothing is pending.")
	{
		testID := 0
		t.Logf("\tTest %d:\tWhen the mempool is empty.", testID)
		{
			s := newState(t, 25, 10, nil)

			block, err := s.MineNewBlock(context.Background(), "")
			ifErrFailNow(t, err)

			if len(block.Trans) != 1 || block.Trans[0] != database.NewRewardTx("miner", 25) {
				t.Log(spew.Sdump(block))
				t.Fatalf("\t%s\tTest %d:\tShould mine a block with only the reward.", failed, testID)
			}
			t.Logf("\t%s\tTest %d:\tShould mine a block with only the reward.", success, testID)

			if s.ChainLength() != 2 {
				t.Fatalf("\t%s\tTest %d:\tShould have exactly one new block.", failed, testID)
			}
			t.Logf("\t%s\tTest %d:\tShould have exactly one new block.", success, testID)
		}
	}
}

func TestTamperDetection(t *testing.T) {
	t.Log("Given the need to detect changes to sealed blocks.")
	{
		s := newState(t, 10, 10, nil)
		for i := 0; i < 3; i++ {
			fund(t, s, database.AccountID(fmt.Sprintf("acct%d", i)), 100)
			_, err := s.MineNewBlock(context.Background(), "")
			ifErrFailNow(t, err)
		}

		testID := 0
		t.Logf("\tTest %d:\tWhen the chain has not been changed.", testID)
		{
			chain := s.QueryBlocksByNumber(0, state.QueryLatest)
			for i := 1; i < len(chain); i++ {
				if chain[i].Header.PrevBlockHash != chain[i-1].Hash() {
					t.Fatalf("\t%s\tTest %d:\tShould link block %d to its parent.", failed, testID, i)
				}
				if !chain[i].IsSelfConsistent() {
					t.Fatalf("\t%s\tTest %d:\tShould have a consistent hash for block %d.", failed, testID, i)
				}
			}
			t.Logf("\t%s\tTest %d:\tShould have linked and consistent blocks.", success, testID)

			if !s.IsChainValid() {
				t.Fatalf("\t%s\tTest %d:\tShould have a valid chain.", failed, testID)
			}
			t.Logf("\t%s\tTest %d:\tShould have a valid chain.", success, testID)
		}

		testID++
		t.Logf("\tTest %d:\tWhen a transaction amount is changed without resealing.", testID)
		{
			s.CorruptBlock(1, func(block *database.Block) {
				block.Trans[0].Amount = 1_000_000
			})

			err := s.ValidateChain()
			if !errors.Is(err, state.ErrChainCorrupted) {
				t.Fatalf("\t%s\tTest %d:\tShould find the chain corrupted: %v", failed, testID, err)
			}
			t.Logf("\t%s\tTest %d:\tShould find the chain corrupted.", success, testID)
		}

		testID++
		t.Logf("\tTest %d:\tWhen the changed block is resealed.", testID)
		{
			s.CorruptBlock(1, func(block *database.Block) {
				ifErrFailNow(t, block.Seal(context.Background(), 0, 0, func(string, ...any) {}))
			})

			block := s.QueryBlocksByNumber(1, 1)[0]
			if !block.IsSelfConsistent() {
				t.Fatalf("\t%s\tTest %d:\tShould have a consistent hash after resealing.", failed, testID)
			}
			t.Logf("\t%s\tTest %d:\tShould have a consistent hash after resealing.", success, testID)

			if s.IsChainValid() {
				t.Fatalf("\t%s\tTest %d:\tShould find the link to the next block broken.", failed, testID)
			}
			t.Logf("\t%s\tTest %d:\tShould find the link to the next block broken.", success, testID)
		}
	}
}

func TestBalanceConservation(t *testing.T) {
	t.Log("Given the need to conserve value across accounts.")
	{
		testID := 0
		t.Logf("\tTest %d:\tWhen value moves between funded accounts.", testID)
		{
			s := newState(t, 10, 10, nil)
			fund(t, s, "alice", 100)
			fund(t, s, "bob", 50)

			_, err := s.MineNewBlock(context.Background(), "")
			ifErrFailNow(t, err)

			transfers := []database.Tx{
				{From: "alice", To: "bob", Amount: 30},
				{From: "bob", To: "carol", Amount: 20},
				{From: "alice", To: "carol", Amount: 5},
			}
			for _, tx := range transfers {
				ifErrFailNow(t, s.SubmitTransaction(tx))
			}

			_, err = s.MineNewBlock(context.Background(), "")
			ifErrFailNow(t, err)

			exp := map[database.AccountID]int64{
				"alice":                 65,
				"bob":                   60,
				"carol":                 25,
				"miner":                 20,
				database.SystemAccount: -170,
			}

			var total int64
			for _, account := range s.QueryBalances() {
				total += account.Balance
				if exp[account.AccountID] != account.Balance {
					t.Fatalf("\t%s\tTest %d:\tShould have %d for %s, got %d.", failed, testID, exp[account.AccountID], account.AccountID, account.Balance)
				}
			}
			t.Logf("\t%s\tTest %d:\tShould have the right balances.", success, testID)

			if total != 0 {
				t.Fatalf("\t%s\tTest %d:\tShould sum to zero, got %d.", failed, testID, total)
			}
			t.Logf("\t%s\tTest %d:\tShould sum to zero.", success, testID)
		}
	}
}

func TestSealingFailure(t *testing.T) {
	t.Log("Given the need to leave the ledger untouched when sealing fails.")
	{
		gen := genesis.Default()
		gen.Difficulty = 64

		testID := 0
		t.Logf("\tTest %d:\tWhen the attempts are exhausted.", testID)
		{
			s, err := state.New(state.Config{BeneficiaryID: "miner", Genesis: gen, MaxSealAttempts: 50})
			ifErrFailNow(t, err)
			fund(t, s, "alice", 100)

			_, err = s.MineNewBlock(context.Background(), "")
			if !errors.Is(err, database.ErrSealingExhausted) {
				t.Fatalf("\t%s\tTest %d:\tShould get back sealing exhausted: %v", failed, testID, err)
			}
			t.Logf("\t%s\tTest %d:\tShould get back sealing exhausted.", success, testID)

			if s.ChainLength() != 1 || s.QueryMempoolLength() != 1 {
				t.Fatalf("\t%s\tTest %d:\tShould leave the chain and mempool unchanged.", failed, testID)
			}
			t.Logf("\t%s\tTest %d:\tShould leave the chain and mempool unchanged.", success, testID)
		}

		testID++
		t.Logf("\tTest %d:\tWhen mining is cancelled.", testID)
		{
			s, err := state.New(state.Config{BeneficiaryID: "miner", Genesis: gen})
			ifErrFailNow(t, err)
			fund(t, s, "alice", 100)

			ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
			defer cancel()

			_, err = s.MineNewBlock(ctx, "")
			if !errors.Is(err, context.DeadlineExceeded) {
				t.Fatalf("\t%s\tTest %d:\tShould get back the context error: %v", failed, testID, err)
			}
			t.Logf("\t%s\tTest %d:\tShould get back the context error.", success, testID)

			if s.ChainLength() != 1 || s.QueryMempoolLength() != 1 {
				t.Fatalf("\t%s\tTest %d:\tShould leave the chain and mempool unchanged.", failed, testID)
			}
			t.Logf("\t%s\tTest %d:\tShould leave the chain and mempool unchanged.", success, testID)
		}
	}
}

func TestReload(t *testing.T) {
	t.Log("Given the need to reload a chain from storage.")
	{
		strg := memory.New()

		s := newState(t, 10, 10, strg)
		fund(t, s, "alice", 100)
		_, err := s.MineNewBlock(context.Background(), "")
		ifErrFailNow(t, err)
		latest := s.RetrieveLatestBlock()

		testID := 0
		t.Logf("\tTest %d:\tWhen the stored blocks are intact.", testID)
		{
			reloaded := newState(t, 10, 10, strg)

			if reloaded.RetrieveLatestBlock().Hash() != latest.Hash() {
				t.Fatalf("\t%s\tTest %d:\tShould get back the same latest block.", failed, testID)
			}
			if reloaded.QueryBalance("alice") != 100 {
				t.Fatalf("\t%s\tTest %d:\tShould get back the same balances.", failed, testID)
			}
			t.Logf("\t%s\tTest %d:\tShould get back the same chain.", success, testID)
		}

		testID++
		t.Logf("\tTest %d:\tWhen the genesis settings change.", testID)
		{
			gen := genesis.Default()
			gen.Date = gen.Date.Add(time.Hour)

			_, err := state.New(state.Config{Genesis: gen, Storage: strg})
			if !errors.Is(err, state.ErrChainCorrupted) {
				t.Fatalf("\t%s\tTest %d:\tShould not be able to load the chain: %v", failed, testID, err)
			}
			t.Logf("\t%s\tTest %d:\tShould not be able to load the chain.", success, testID)
		}

		testID++
		t.Logf("\tTest %d:\tWhen the ledger is truncated.", testID)
		{
			ifErrFailNow(t, s.Truncate())

			if s.ChainLength() != 1 || s.QueryBalance("alice") != 0 {
				t.Fatalf("\t%s\tTest %d:\tShould be back to the genesis block.", failed, testID)
			}
			t.Logf("\t%s\tTest %d:\tShould be back to the genesis block.", success, testID)
		}
	}
}

func TestGenesisFunding(t *testing.T) {
	t.Log("Given the need to fund accounts from the genesis settings.")
	{
		testID := 0
		t.Logf("\tTest %d:\tWhen the genesis has balances.", testID)
		{
			gen := genesis.Default()
			gen.Difficulty = 1
			gen.Balances = map[string]uint64{"bob": 50, "alice": 100}

			s, err := state.New(state.Config{BeneficiaryID: "miner", Genesis: gen})
			ifErrFailNow(t, err)

			pending := s.RetrieveMempool()
			if len(pending) != 2 || pending[0].To != "alice" || pending[1].To != "bob" {
				t.Fatalf("\t%s\tTest %d:\tShould have the funding pending in account order: %v", failed, testID, pending)
			}
			t.Logf("\t%s\tTest %d:\tShould have the funding pending in account order.", success, testID)

			_, err = s.MineNewBlock(context.Background(), "")
			ifErrFailNow(t, err)

			if s.QueryBalance("alice") != 100 || s.QueryBalance("bob") != 50 {
				t.Fatalf("\t%s\tTest %d:\tShould have funded the accounts.", failed, testID)
			}
			t.Logf("\t%s\tTest %d:\tShould have funded the accounts.", success, testID)
		}
	}
}

func TestConcurrentReaders(t *testing.T) {
	t.Log("Given the need to read and submit while blocks are being mined.")
	{
		testID := 0
		t.Logf("\tTest %d:\tWhen readers and a submitter run against the miner.", testID)
		{
			s := newState(t, 10, 5, nil)
			fund(t, s, "alice", 100)

			const blocks = 20
			done := make(chan struct{})

			var wg sync.WaitGroup
			for r := 0; r < 4; r++ {
				wg.Add(1)
				go func() {
					defer wg.Done()
					for {
						select {
						case <-done:
							return
						default:
						}

						latest := s.RetrieveLatestBlock()
						if !latest.IsSelfConsistent() {
							t.Errorf("\t%s\tTest %d:\tShould only see sealed blocks: %s", failed, testID, latest)
							return
						}
						if latest.Header.Number >= uint64(s.ChainLength()) {
							t.Errorf("\t%s\tTest %d:\tShould only see appended blocks: %d", failed, testID, latest.Header.Number)
							return
						}
						if !s.IsChainValid() {
							t.Errorf("\t%s\tTest %d:\tShould always see a valid chain.", failed, testID)
							return
						}
						s.QueryBalances()
					}
				}()
			}

			var submitted int
			wg.Add(1)
			go func() {
				defer wg.Done()
				for i := 0; ; i++ {
					select {
					case <-done:
						return
					default:
					}

					tx := database.NewRewardTx(database.AccountID(fmt.Sprintf("user%d", i)), 1)
					if err := s.SubmitTransaction(tx); err != nil {
						t.Errorf("\t%s\tTest %d:\tShould be able to submit while mining: %v", failed, testID, err)
						return
					}
					submitted++
					time.Sleep(time.Millisecond)
				}
			}()

			for b := 0; b < blocks; b++ {
				if _, err := s.MineNewBlock(context.Background(), ""); err != nil {
					close(done)
					wg.Wait()
					t.Fatalf("\t%s\tTest %d:\tShould be able to mine while reading: %v", failed, testID, err)
				}
			}
			close(done)
			wg.Wait()

			if t.Failed() {
				t.FailNow()
			}
			t.Logf("\t%s\tTest %d:\tShould read and submit while mining, %d submitted.", success, testID, submitted)

			if !s.IsChainValid() || s.ChainLength() != blocks+1 {
				t.Fatalf("\t%s\tTest %d:\tShould end with a valid chain, length %d.", failed, testID, s.ChainLength())
			}
			t.Logf("\t%s\tTest %d:\tShould end with a valid chain.", success, testID)
		}
	}
}
