// Package genesis maintains access to the genesis file.
package genesis

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/ardanlabs/ledger/foundation/validate"
)

// Unbounded can be used for TransPerBlock to place every pending transaction
// into the next block.
const Unbounded = -1

// Genesis represents the genesis file.
type Genesis struct {
	Date          time.Time         `json:"date"`                                             // Date recorded in the genesis block.
	TransPerBlock int               `json:"trans_per_block" validate:"required,min=-1"`      // The maximum number of transactions that can be in a block, -1 for no limit.
	Difficulty    uint              `json:"difficulty" validate:"max=64"`                    // How difficult it needs to be to solve the work problem.
	MiningReward  uint64            `json:"mining_reward" validate:"max=9223372036854775807"` // Reward for mining a block.
	Balances      map[string]uint64 `json:"balances"`                                         // Funding issued to accounts when the chain is new.
}

// Default returns the settings the ledger runs with when no genesis file
// is provided.
func Default() Genesis {
	return Genesis{
		Date:          time.Date(2018, time.January, 12, 0, 0, 0, 0, time.UTC),
		TransPerBlock: 10,
		Difficulty:    3,
		MiningReward:  10,
	}
}

// Validate checks the genesis settings can be used to run a ledger.
func (g Genesis) Validate() error {
	if err := validate.Check(g); err != nil {
		return fmt.Errorf("validating genesis: %w", err)
	}

	return nil
}

// =============================================================================

// Load opens and consumes the genesis file.
func Load(path string) (Genesis, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return Genesis{}, err
	}

	var genesis Genesis
	if err := json.Unmarshal(content, &genesis); err != nil {
		return Genesis{}, fmt.Errorf("decoding genesis: %w", err)
	}

	if err := genesis.Validate(); err != nil {
		return Genesis{}, err
	}

	return genesis, nil
}
