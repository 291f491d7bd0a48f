// This program performs administrative tasks for the ledger over its
// storage while the node is down.
package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/ardanlabs/conf/v3"
	"github.com/ardanlabs/ledger/app/tooling/admin/commands"
	"github.com/ardanlabs/ledger/foundation/blockchain/database"
	"github.com/ardanlabs/ledger/foundation/blockchain/database/storage/disk"
	"github.com/ardanlabs/ledger/foundation/blockchain/database/storage/leveldb"
	"github.com/ardanlabs/ledger/foundation/blockchain/genesis"
	"github.com/ardanlabs/ledger/foundation/logger"
	"go.uber.org/zap"
)

// build is the git version of this program. It is set using build flags in the makefile.
var build = "develop"

func main() {

	// Construct the application logger.
	log, err := logger.New("ADMIN")
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
	defer log.Sync()

	// Perform the startup and shutdown sequence.
	if err := run(log); err != nil {
		log.Errorw("startup", "ERROR", err)
		log.Sync()
		os.Exit(1)
	}
}

func run(log *zap.SugaredLogger) error {
	cfg := struct {
		conf.Version
		Args  conf.Args
		State struct {
			GenesisPath string `conf:"default:zblock/genesis.json"`
			Storage     string `conf:"default:disk"`
			DBPath      string `conf:"default:zblock/blocks"`
		}
	}{
		Version: conf.Version{
			Build: build,
			Desc:  "copyright information here",
		},
	}

	const prefix = "ADMIN"
	help, err := conf.Parse(prefix, &cfg)
	if err != nil {
		if errors.Is(err, conf.ErrHelpWanted) {
			fmt.Println(help)
			return nil
		}
		return fmt.Errorf("parsing config: %w", err)
	}

	gen, err := genesis.Load(cfg.State.GenesisPath)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("loading genesis: %w", err)
		}
		gen = genesis.Default()
	}

	strg, err := openStorage(cfg.State.Storage, cfg.State.DBPath)
	if err != nil {
		return err
	}

	return processCommands(cfg.Args, log, gen, strg)
}

// processCommands handles the execution of the commands specified on
// the command line.
func processCommands(args conf.Args, log *zap.SugaredLogger, gen genesis.Genesis, strg database.Storage) error {
	switch args.Num(0) {
	case "bals":
		if err := commands.Balances(log, gen, strg, args.Num(1)); err != nil {
			return fmt.Errorf("getting balances: %w", err)
		}

	case "blocks":
		if err := commands.Blocks(log, gen, strg); err != nil {
			return fmt.Errorf("getting blocks: %w", err)
		}

	case "validate":
		if err := commands.Validate(log, gen, strg); err != nil {
			return fmt.Errorf("validating chain: %w", err)
		}

	default:
		fmt.Println("bals [account]: show the balance of every account or the one specified")
		fmt.Println("blocks:         show every block on the chain")
		fmt.Println("validate:       check the chain hasn't been changed")
		fmt.Println("provide a command to get more help.")
		return commands.ErrHelp
	}

	return nil
}

// openStorage constructs the configured storage backend.
func openStorage(kind string, dbPath string) (database.Storage, error) {
	switch kind {
	case "disk":
		strg, err := disk.New(dbPath)
		if err != nil {
			return nil, fmt.Errorf("opening disk storage: %w", err)
		}
		return strg, nil

	case "leveldb":
		strg, err := leveldb.New(dbPath)
		if err != nil {
			return nil, err
		}
		return strg, nil
	}

	return nil, fmt.Errorf("unknown storage %q, use disk or leveldb", kind)
}
