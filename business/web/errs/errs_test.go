package errs_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/ardanlabs/ledger/business/web/errs"
	"github.com/ardanlabs/ledger/foundation/blockchain/database"
	"github.com/ardanlabs/ledger/foundation/blockchain/state"
)

// Success and failure markers.
const (
	success = "\u2713"
	failed  = "\u2717"
)

func Test_FromLedger(t *testing.T) {
	type table struct {
		name   string
		err    error
		status int
	}

	tt := []table{
		{name: "funds", err: fmt.Errorf("submit: %w", state.ErrInsufficientFunds), status: http.StatusBadRequest},
		{name: "invalid", err: state.ErrInvalidTransaction, status: http.StatusBadRequest},
		{name: "exhausted", err: database.ErrSealingExhausted, status: http.StatusServiceUnavailable},
		{name: "other", err: errors.New("disk full")},
	}

	t.Log("Given the need to map ledger errors to status codes.")
	{
		for testID, tst := range tt {
			f := func(t *testing.T) {
				t.Logf("\tTest %d:\tWhen handling a %s error.", testID, tst.name)
				{
					err := errs.FromLedger(tst.err)

					if tst.status == 0 {
						if errs.IsTrusted(err) {
							t.Fatalf("\t%s\tTest %d:\tShould not trust the error.", failed, testID)
						}
						t.Logf("\t%s\tTest %d:\tShould not trust the error.", success, testID)
						return
					}

					trusted := errs.GetTrusted(err)
					if trusted == nil || trusted.Status != tst.status {
						t.Fatalf("\t%s\tTest %d:\tShould get back status %d: %v", failed, testID, tst.status, trusted)
					}
					if !errors.Is(err, tst.err) {
						t.Fatalf("\t%s\tTest %d:\tShould keep the ledger error.", failed, testID)
					}
					t.Logf("\t%s\tTest %d:\tShould get back status %d.", success, testID, tst.status)
				}
			}

			t.Run(tst.name, f)
		}
	}
}
