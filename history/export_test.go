package history

import "github.com/dgraph-io/badger/v4"

// PutRaw writes val under the record prefix, bypassing validation.
func (s *Store) PutRaw(suffix string, val []byte) error {
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(append(append([]byte{}, recordPrefix...), suffix...), val)
	})
}
