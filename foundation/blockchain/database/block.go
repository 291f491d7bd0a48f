package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ardanlabs/ledger/foundation/blockchain/signature"
)

// GenesisPrevBlockHash is the previous block hash recorded in the genesis block.
const GenesisPrevBlockHash = "0"

// ErrSealingExhausted is returned when the proof of work reaches the
// configured number of attempts without finding a solution. The caller can
// try again, possibly with a lower difficulty.
var ErrSealingExhausted = errors.New("sealing attempts exhausted")

// =============================================================================

// BlockHeader represents common information required for each block.
type BlockHeader struct {
	Number        uint64 `json:"number"`          // Bitcoin: Block number in the chain.
	PrevBlockHash string `json:"prev_block_hash"` // Bitcoin: Hash of the previous block in the chain.
	TimeStamp     uint64 `json:"timestamp"`       // Bitcoin: Time the block was sealed, unix milliseconds.
	Nonce         uint64 `json:"nonce"`           // Bitcoin: Value identified to solve the hash solution.
}

// Block represents a group of transactions batched together.
type Block struct {
	Header BlockHeader
	Trans  []Tx
	hash   string
}

// content is the canonical form of a block that is hashed. The field order
// of this type is the encoding order and must never change.
type content struct {
	PrevBlockHash string `json:"prev_block_hash"`
	TimeStamp     uint64 `json:"timestamp"`
	Trans         []Tx   `json:"trans"`
	Nonce         uint64 `json:"nonce"`
}

// NewBlock constructs an unsealed block with a zero nonce and an initial hash.
func NewBlock(number uint64, prevBlockHash string, timeStamp uint64, trans []Tx) Block {
	b := Block{
		Header: BlockHeader{
			Number:        number,
			PrevBlockHash: prevBlockHash,
			TimeStamp:     timeStamp,
		},
		Trans: copyTrans(trans),
	}
	b.hash = b.Recompute()

	return b
}

// GenesisBlock constructs the first block of the chain for the given date.
func GenesisBlock(date time.Time) Block {
	return NewBlock(0, GenesisPrevBlockHash, uint64(date.UTC().UnixMilli()), nil)
}

// Hash returns the hash recorded for the Block when it was last sealed.
func (b Block) Hash() string {
	return b.hash
}

// Recompute calculates the hash over the block's current fields.
func (b Block) Recompute() string {
	trans := b.Trans
	if trans == nil {
		trans = []Tx{}
	}

	return signature.Hash(content{
		PrevBlockHash: b.Header.PrevBlockHash,
		TimeStamp:     b.Header.TimeStamp,
		Trans:         trans,
		Nonce:         b.Header.Nonce,
	})
}

// IsSelfConsistent reports whether the recorded hash matches the block's
// current fields.
func (b Block) IsSelfConsistent() bool {
	return b.hash == b.Recompute()
}

// Clone returns a copy of the block that shares no memory with the original.
func (b Block) Clone() Block {
	b.Trans = copyTrans(b.Trans)
	return b
}

// String implements the fmt.Stringer interface for logging.
func (b Block) String() string {
	return fmt.Sprintf("%d:%s", b.Header.Number, b.hash)
}

// =============================================================================

// POWArgs represents the set of arguments required to run POW.
type POWArgs struct {
	Number      uint64
	PrevBlock   Block
	Trans       []Tx
	Difficulty  uint
	MaxAttempts uint64 // Zero means no limit.
	EvHandler   func(v string, args ...any)
}

// POW constructs a new Block and performs the work to find a nonce that
// solves the cryptographic POW puzzle.
func POW(ctx context.Context, args POWArgs) (Block, error) {
	ev := args.EvHandler
	if ev == nil {
		ev = func(v string, args ...any) {}
	}

	// Construct the block to be mined. The nonce will be identified
	// by the POW algorithm.
	nb := NewBlock(args.Number, args.PrevBlock.Hash(), uint64(time.Now().UTC().UnixMilli()), args.Trans)

	// Peform the proof of work mining operation.
	if err := nb.Seal(ctx, args.Difficulty, args.MaxAttempts, ev); err != nil {
		return Block{}, err
	}

	return nb, nil
}

// Seal does the work of mining to find a valid hash for the block. Pointer
// semantics are being used since a nonce is being discovered. A difficulty
// of zero accepts the current nonce.
func (b *Block) Seal(ctx context.Context, difficulty uint, maxAttempts uint64, ev func(v string, args ...any)) error {
	ev("database: Seal: MINING: started: blk[%d]: difficulty[%d]", b.Header.Number, difficulty)
	defer ev("database: Seal: MINING: completed: blk[%d]", b.Header.Number)

	if difficulty > signature.HashLength {
		return fmt.Errorf("difficulty %d is larger than the hash length %d", difficulty, signature.HashLength)
	}

	// Loop until we find a solution for the next block.
	var attempts uint64
	for {
		attempts++
		if attempts%1_000_000 == 0 {
			ev("database: Seal: MINING: attempts[%d]", attempts)
		}

		// Did we timeout trying to solve the problem.
		if ctx.Err() != nil {
			ev("database: Seal: MINING: CANCELLED")
			return ctx.Err()
		}

		// Hash the block and check if we have solved the puzzle.
		hash := b.Recompute()
		if isHashSolved(difficulty, hash) {
			b.hash = hash

			ev("database: Seal: MINING: SOLVED: prevBlk[%s]: newBlk[%s]", b.Header.PrevBlockHash, hash)
			ev("database: Seal: MINING: attempts[%d]", attempts)

			return nil
		}

		if maxAttempts > 0 && attempts >= maxAttempts {
			ev("database: Seal: MINING: EXHAUSTED: attempts[%d]", attempts)
			return fmt.Errorf("%w: attempts[%d] difficulty[%d]", ErrSealingExhausted, attempts, difficulty)
		}

		b.Header.Nonce++
	}
}

// ValidateBlock checks the block is self consistent and links to the
// previous block.
func (b Block) ValidateBlock(previousBlock Block) error {
	hash := b.Recompute()
	if b.hash != hash {
		return fmt.Errorf("block %d hash doesn't match its contents, got %s, exp %s", b.Header.Number, b.hash, hash)
	}

	if b.Header.PrevBlockHash != previousBlock.Hash() {
		return fmt.Errorf("block %d parent hash doesn't match our known parent, got %s, exp %s", b.Header.Number, b.Header.PrevBlockHash, previousBlock.Hash())
	}

	return nil
}

// isHashSolved checks the hash to make sure it complies with
// the POW rules. We need to match a difficulty number of 0's.
func isHashSolved(difficulty uint, hash string) bool {
	return signature.HasZeroPrefix(hash, difficulty)
}

// =============================================================================

// BlockData represents what can be serialized to disk and over the network.
type BlockData struct {
	Hash   string      `json:"hash"`
	Header BlockHeader `json:"block"`
	Trans  []Tx        `json:"trans"`
}

// NewBlockData constructs the value to serialize.
func NewBlockData(block Block) BlockData {
	return BlockData{
		Hash:   block.Hash(),
		Header: block.Header,
		Trans:  copyTrans(block.Trans),
	}
}

// ToBlock converts a BlockData into a Block. The recorded hash is kept as is
// so a block changed in storage fails validation.
func ToBlock(blockData BlockData) Block {
	return Block{
		Header: blockData.Header,
		Trans:  copyTrans(blockData.Trans),
		hash:   blockData.Hash,
	}
}
