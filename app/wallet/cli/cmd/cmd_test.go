package cmd

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

// Success and failure markers.
const (
	success = "\u2713"
	failed  = "\u2717"
)

func Test_Client(t *testing.T) {
	h := func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")

		switch r.URL.Path {
		case "/v1/tx/submit":
			var tx submitTx
			json.NewDecoder(r.Body).Decode(&tx)
			if tx.From == "broke" {
				w.WriteHeader(http.StatusBadRequest)
				json.NewEncoder(w).Encode(errorResponse{Error: "insufficient funds"})
				return
			}
			json.NewEncoder(w).Encode(submitResp{Status: "transaction added to mempool", Pending: 1})

		case "/v1/accounts/list/bob":
			json.NewEncoder(w).Encode(actInfo{Accounts: []info{{Account: "bob", Balance: 110}}})

		case "/v1/blocks/mine":
			var req mineReq
			json.NewDecoder(r.Body).Decode(&req)
			json.NewEncoder(w).Encode(block{Number: 1, Hash: "0x000abc"})

		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}

	srv := httptest.NewServer(http.HandlerFunc(h))
	defer srv.Close()

	t.Log("Given the need to talk to a node.")
	{
		testID := 0
		t.Logf("\tTest %d:\tWhen sending a transaction.", testID)
		{
			resp, err := send(srv.URL, submitTx{From: "alice", To: "bob", Amount: 10})
			if err != nil || resp.Pending != 1 {
				t.Fatalf("\t%s\tTest %d:\tShould be able to send : %v", failed, testID, err)
			}
			t.Logf("\t%s\tTest %d:\tShould be able to send.", success, testID)

			_, err = send(srv.URL, submitTx{From: "broke", To: "bob", Amount: 10})
			if err == nil || !strings.Contains(err.Error(), "insufficient funds") {
				t.Fatalf("\t%s\tTest %d:\tShould get back the node error : %v", failed, testID, err)
			}
			t.Logf("\t%s\tTest %d:\tShould get back the node error.", success, testID)
		}

		testID++
		t.Logf("\tTest %d:\tWhen asking for a balance.", testID)
		{
			bal, err := queryBalance(srv.URL, "bob")
			if err != nil || bal != 110 {
				t.Fatalf("\t%s\tTest %d:\tShould get back 110 : %d : %v", failed, testID, bal, err)
			}
			t.Logf("\t%s\tTest %d:\tShould get back 110.", success, testID)
		}

		testID++
		t.Logf("\tTest %d:\tWhen mining a block.", testID)
		{
			blk, err := mine(srv.URL, "bob")
			if err != nil || blk.Number != 1 {
				t.Fatalf("\t%s\tTest %d:\tShould get back block 1 : %v", failed, testID, err)
			}
			t.Logf("\t%s\tTest %d:\tShould get back block 1.", success, testID)
		}
	}
}
