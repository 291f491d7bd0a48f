// Package leveldb implements the ability to read and write blocks to a
// LevelDB database keyed by block number.
package leveldb

import (
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/ardanlabs/ledger/foundation/blockchain/database"
	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/iterator"
	"github.com/syndtr/goleveldb/leveldb/opt"
	"github.com/syndtr/goleveldb/leveldb/util"
)

// blockPrefix namespaces the block keys inside the database.
var blockPrefix = []byte("blk:")

// LevelDB represents the serialization implementation for reading and
// storing blocks in a LevelDB database. This implements the database.Storage
// interface.
type LevelDB struct {
	db *leveldb.DB
}

// New opens or creates the LevelDB database at the specified path.
func New(dbPath string) (*LevelDB, error) {
	db, err := leveldb.OpenFile(dbPath, nil)
	if err != nil {
		return nil, fmt.Errorf("opening leveldb: %w", err)
	}

	return &LevelDB{db: db}, nil
}

// Close releases the database.
func (l *LevelDB) Close() error {
	return l.db.Close()
}

// Write takes the specified database block and stores it under its
// block number.
func (l *LevelDB) Write(blockData database.BlockData) error {
	data, err := json.Marshal(blockData)
	if err != nil {
		return err
	}

	key := blockKey(blockData.Header.Number)

	exists, err := l.db.Has(key, nil)
	if err != nil {
		return err
	}
	if exists {
		return fmt.Errorf("block %d already exists", blockData.Header.Number)
	}

	return l.db.Put(key, data, &opt.WriteOptions{Sync: true})
}

// GetBlock locates and returns the contents of the specified block by number.
func (l *LevelDB) GetBlock(num uint64) (database.BlockData, error) {
	data, err := l.db.Get(blockKey(num), nil)
	if err != nil {
		if errors.Is(err, leveldb.ErrNotFound) {
			return database.BlockData{}, fmt.Errorf("%w: %d", database.ErrBlockNotFound, num)
		}
		return database.BlockData{}, err
	}

	var blockData database.BlockData
	if err := json.Unmarshal(data, &blockData); err != nil {
		return database.BlockData{}, err
	}

	return blockData, nil
}

// ForEach returns an iterator to walk through all the blocks in block
// number order. Keys are big endian so LevelDB's ordering is numeric.
func (l *LevelDB) ForEach() database.Iterator {
	return &levelIterator{
		iter: l.db.NewIterator(util.BytesPrefix(blockPrefix), nil),
	}
}

// Reset deletes every block from the database.
func (l *LevelDB) Reset() error {
	iter := l.db.NewIterator(util.BytesPrefix(blockPrefix), nil)
	defer iter.Release()

	batch := new(leveldb.Batch)
	for iter.Next() {
		batch.Delete(append([]byte(nil), iter.Key()...))
	}
	if err := iter.Error(); err != nil {
		return err
	}

	return l.db.Write(batch, &opt.WriteOptions{Sync: true})
}

// blockKey forms the key for the specified block number.
func blockKey(num uint64) []byte {
	key := make([]byte, len(blockPrefix)+8)
	copy(key, blockPrefix)
	binary.BigEndian.PutUint64(key[len(blockPrefix):], num)
	return key
}

// =============================================================================

// levelIterator represents the iteration implementation for walking
// through the blocks in LevelDB. This implements the database Iterator
// interface.
type levelIterator struct {
	iter iterator.Iterator
	eoc  bool
}

// Next retrieves the next block from the database.
func (li *levelIterator) Next() (database.BlockData, error) {
	if li.eoc {
		return database.BlockData{}, errors.New("end of chain")
	}

	if !li.iter.Next() {
		err := li.iter.Error()
		li.iter.Release()
		if err != nil {
			return database.BlockData{}, err
		}

		li.eoc = true
		return database.BlockData{}, database.ErrBlockNotFound
	}

	var blockData database.BlockData
	if err := json.Unmarshal(li.iter.Value(), &blockData); err != nil {
		li.iter.Release()
		return database.BlockData{}, err
	}

	return blockData, nil
}

// Done returns the end of chain value.
func (li *levelIterator) Done() bool {
	return li.eoc
}
