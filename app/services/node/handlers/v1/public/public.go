// Package public maintains the group of handlers for public access.
package public

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/ardanlabs/ledger/business/web/errs"
	"github.com/ardanlabs/ledger/business/web/metrics"
	"github.com/ardanlabs/ledger/foundation/blockchain/database"
	"github.com/ardanlabs/ledger/foundation/blockchain/state"
	"github.com/ardanlabs/ledger/foundation/events"
	"github.com/ardanlabs/ledger/foundation/nameservice"
	"github.com/ardanlabs/ledger/foundation/web"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Handlers manages the set of ledger endpoints.
type Handlers struct {
	Log   *zap.SugaredLogger
	State *state.State
	NS    *nameservice.NameService
	WS    websocket.Upgrader
	Evts  *events.Events
}

// Events handles a web socket to provide events to a client.
func (h Handlers) Events(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	v, err := web.GetValues(ctx)
	if err != nil {
		return web.NewShutdownError("web value missing from context")
	}

	h.WS.CheckOrigin = func(r *http.Request) bool { return true }

	c, err := h.WS.Upgrade(w, r, nil)
	if err != nil {
		return err
	}
	defer c.Close()

	ch := h.Evts.Acquire(v.TraceID)
	defer h.Evts.Release(v.TraceID)

	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case msg, wd := <-ch:
			if !wd {
				return nil
			}

			if err := c.WriteMessage(websocket.TextMessage, []byte(msg)); err != nil {
				return err
			}

		case <-ticker.C:
			if err := c.WriteMessage(websocket.PingMessage, []byte("ping")); err != nil {
				return nil
			}
		}
	}
}

// SubmitTransaction adds a new transaction to the mempool.
func (h Handlers) SubmitTransaction(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	v, err := web.GetValues(ctx)
	if err != nil {
		return web.NewShutdownError("web value missing from context")
	}

	var stx submitTx
	if err := web.Decode(r, &stx); err != nil {
		return errs.NewTrusted(err, http.StatusBadRequest)
	}

	from, err := h.NS.Resolve(stx.From)
	if err != nil {
		return errs.NewTrusted(fmt.Errorf("from: %w", err), http.StatusBadRequest)
	}

	to, err := h.NS.Resolve(stx.To)
	if err != nil {
		return errs.NewTrusted(fmt.Errorf("to: %w", err), http.StatusBadRequest)
	}

	tx := database.Tx{
		From:   from,
		To:     to,
		Amount: stx.Amount,
	}

	h.Log.Infow("submit tran", "traceid", v.TraceID, "from", tx.From, "to", tx.To, "amount", tx.Amount)
	if err := h.State.SubmitTransaction(tx); err != nil {
		return errs.FromLedger(err)
	}

	resp := struct {
		Status  string `json:"status"`
		Pending int    `json:"pending"`
	}{
		Status:  "transaction added to mempool",
		Pending: h.State.QueryMempoolLength(),
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// MineBlock seals the next batch of transactions from the mempool into a new
// block. The request is held until the block is mined.
func (h Handlers) MineBlock(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	v, err := web.GetValues(ctx)
	if err != nil {
		return web.NewShutdownError("web value missing from context")
	}

	var mb mineBlock
	if err := web.Decode(r, &mb); err != nil && !errors.Is(err, io.EOF) {
		return errs.NewTrusted(err, http.StatusBadRequest)
	}

	var beneficiary database.AccountID
	if mb.Beneficiary != "" {
		beneficiary, err = h.NS.Resolve(mb.Beneficiary)
		if err != nil {
			return errs.NewTrusted(fmt.Errorf("beneficiary: %w", err), http.StatusBadRequest)
		}
	}

	h.Log.Infow("mine block", "traceid", v.TraceID, "beneficiary", beneficiary)
	blk, err := h.State.MineNewBlock(ctx, beneficiary)
	if err != nil {
		return errs.FromLedger(err)
	}
	metrics.AddBlocks()

	return web.Respond(ctx, w, toBlock(h.NS, blk), http.StatusOK)
}

// Genesis returns the genesis information.
func (h Handlers) Genesis(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	gen := h.State.RetrieveGenesis()
	return web.Respond(ctx, w, gen, http.StatusOK)
}

// Mempool returns the set of uncommitted transactions.
func (h Handlers) Mempool(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	return web.Respond(ctx, w, toTxs(h.NS, h.State.RetrieveMempool()), http.StatusOK)
}

// Accounts returns the current balances for all users or the specified user.
func (h Handlers) Accounts(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	var acts []info

	switch account := web.Param(r, "account"); account {
	case "":
		for _, act := range h.State.QueryBalances() {
			acts = append(acts, info{
				Account: act.AccountID,
				Name:    h.NS.Lookup(act.AccountID),
				Balance: act.Balance,
			})
		}

	default:
		accountID, err := h.NS.Resolve(account)
		if err != nil {
			return errs.NewTrusted(err, http.StatusBadRequest)
		}
		acts = append(acts, info{
			Account: accountID,
			Name:    h.NS.Lookup(accountID),
			Balance: h.State.QueryBalance(accountID),
		})
	}

	ai := actInfo{
		LatestBlock: h.State.RetrieveLatestBlock().Hash(),
		Uncommitted: h.State.QueryMempoolLength(),
		Accounts:    acts,
	}

	return web.Respond(ctx, w, ai, http.StatusOK)
}

// LatestBlock returns the most recently mined block.
func (h Handlers) LatestBlock(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	return web.Respond(ctx, w, toBlock(h.NS, h.State.RetrieveLatestBlock()), http.StatusOK)
}

// BlocksByAccount returns all the blocks and their details. If an account is
// provided only the blocks with a transaction for that account are returned.
func (h Handlers) BlocksByAccount(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	var accountID database.AccountID
	if account := web.Param(r, "account"); account != "" {
		var err error
		if accountID, err = h.NS.Resolve(account); err != nil {
			return errs.NewTrusted(err, http.StatusBadRequest)
		}
	}

	dbBlocks := h.State.QueryBlocksByAccount(accountID)
	if len(dbBlocks) == 0 {
		return web.Respond(ctx, w, nil, http.StatusNoContent)
	}

	blocks := make([]block, len(dbBlocks))
	for i, blk := range dbBlocks {
		blocks[i] = toBlock(h.NS, blk)
	}

	return web.Respond(ctx, w, blocks, http.StatusOK)
}

// ValidateChain reports whether the chain still passes validation.
func (h Handlers) ValidateChain(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	cs := chainStatus{
		Valid:  true,
		Blocks: h.State.ChainLength(),
	}

	if err := h.State.ValidateChain(); err != nil {
		cs.Valid = false
		cs.Error = err.Error()
	}

	return web.Respond(ctx, w, cs, http.StatusOK)
}
