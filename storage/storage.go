// Package storage contains all the artifacts of the funding engine that are
// persisted in the database: rounds, contributions, project aggregates,
// matching allocations, participation records, donation events and pending
// oracle decryptions. It is a prefixed key-value store; the following
// prefixes are used:
//   - 'r/'  for rounds
//   - 'c/'  for contributions (round x donor x project)
//   - 'a/'  for project aggregates (round x project)
//   - 'al/' for matching allocations (round x project)
//   - 'pt/' for donor participation records (round x donor)
//   - 'pj/' for the project set of a round (round x project)
//   - 'e/'  for donation events
//   - 'pd/' for pending oracle decryption requests
//   - 'k/'  for round encryption keys
package storage

import (
	"errors"

	"go.vocdoni.io/dvote/db"
	"go.vocdoni.io/dvote/db/prefixeddb"
)

var (
	// Prefixes for the keys in the database.
	roundPrefix         = []byte("r/")
	contributionPrefix  = []byte("c/")
	aggregatePrefix     = []byte("a/")
	allocationPrefix    = []byte("al/")
	participationPrefix = []byte("pt/")
	projectSetPrefix    = []byte("pj/")
	eventPrefix         = []byte("e/")
	pendingPrefix       = []byte("pd/")
	encryptionKeyPrefix = []byte("k/")
)

// ErrNotFound is returned when the requested artifact does not exist.
var ErrNotFound = errors.New("not found")

// Storage wraps the database with typed accessors for every artifact of the
// funding engine.
type Storage struct {
	db db.Database
}

// New creates a new Storage instance.
func New(db db.Database) *Storage {
	return &Storage{db: db}
}

// Close closes the storage.
func (s *Storage) Close() {
	s.db.Close()
}

// setArtifact stores a cbor-encoded artifact under the given prefix and key.
func (s *Storage) setArtifact(prefix, key []byte, artifact any) error {
	data, err := encodeArtifact(artifact)
	if err != nil {
		return err
	}
	wTx := prefixeddb.NewPrefixedWriteTx(s.db.WriteTx(), prefix)
	if err := wTx.Set(key, data); err != nil {
		wTx.Discard()
		return err
	}
	return wTx.Commit()
}

// getArtifact retrieves an artifact by prefix and key, decoding it into out.
// It returns ErrNotFound if the key does not exist.
func (s *Storage) getArtifact(prefix, key []byte, out any) error {
	rTx := prefixeddb.NewPrefixedReader(s.db, prefix)
	data, err := rTx.Get(key)
	if err != nil {
		return ErrNotFound
	}
	return decodeArtifact(data, out)
}

// hasArtifact reports whether an artifact exists for the prefix and key.
func (s *Storage) hasArtifact(prefix, key []byte) bool {
	rTx := prefixeddb.NewPrefixedReader(s.db, prefix)
	_, err := rTx.Get(key)
	return err == nil
}

// deleteArtifact removes an artifact by prefix and key.
func (s *Storage) deleteArtifact(prefix, key []byte) error {
	wTx := prefixeddb.NewPrefixedWriteTx(s.db.WriteTx(), prefix)
	if err := wTx.Delete(key); err != nil {
		wTx.Discard()
		return err
	}
	return wTx.Commit()
}

// listArtifactKeys returns the keys stored under the given prefix.
func (s *Storage) listArtifactKeys(prefix []byte) ([][]byte, error) {
	rTx := prefixeddb.NewPrefixedReader(s.db, prefix)
	var keys [][]byte
	if err := rTx.Iterate(nil, func(k, _ []byte) bool {
		key := make([]byte, len(k))
		copy(key, k)
		keys = append(keys, key)
		return true
	}); err != nil {
		return nil, err
	}
	return keys, nil
}
