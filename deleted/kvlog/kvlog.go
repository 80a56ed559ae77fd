// Package kvlog implements a deletion log in a Badger key-value store.
package kvlog

import (
	"context"
	"encoding/binary"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/osmarks/autobotrobot/deleted"
)

/*
Key structure:
Prefix × Time × Sequence
- Prefix is the single byte 'd'.
- Time is the Unix nanosecond timestamp as a big-endian uint64 with the sign
	bit flipped, so that keys sort in time order.
- Sequence is a big-endian uint64 from a Badger sequence, so that items
	recorded at the same time remain distinct and keep insertion order.
The value is the item text.
*/

const (
	prefix = 'd'
	keyLen = 1 + 8 + 8
)

// Log is a deletion log backed by Badger.
type Log struct {
	db  *badger.DB
	seq *badger.Sequence
}

var _ deleted.Log = (*Log)(nil)

// New returns a deletion log in the given database.
// The db must remain open for the lifetime of the log.
func New(db *badger.DB) (*Log, error) {
	seq, err := db.GetSequence([]byte("seq:deleted"), 128)
	if err != nil {
		return nil, fmt.Errorf("couldn't get deletion sequence: %w", err)
	}
	return &Log{db: db, seq: seq}, nil
}

// Close releases the log's sequence and closes the underlying database.
func (l *Log) Close() error {
	err := l.seq.Release()
	if err := l.db.Close(); err != nil {
		return err
	}
	return err
}

func key(b []byte, t time.Time, n uint64) []byte {
	b = append(b, prefix)
	b = binary.BigEndian.AppendUint64(b, uint64(t.UnixNano())^(1<<63))
	b = binary.BigEndian.AppendUint64(b, n)
	return b
}

func keytime(key []byte) time.Time {
	u := binary.BigEndian.Uint64(key[1:9]) ^ (1 << 63)
	return time.Unix(0, int64(u))
}

// Append records an item.
func (l *Log) Append(ctx context.Context, item deleted.Item) error {
	n, err := l.seq.Next()
	if err != nil {
		return fmt.Errorf("couldn't get sequence number for deletion: %w", err)
	}
	k := key(make([]byte, 0, keyLen), item.Time, n)
	err = l.db.Update(func(txn *badger.Txn) error {
		return txn.Set(k, []byte(item.Text))
	})
	if err != nil {
		return fmt.Errorf("couldn't record deletion: %w", err)
	}
	return nil
}

// Recent returns up to limit recent items, newest first, optionally
// restricted to those containing search.
func (l *Log) Recent(ctx context.Context, limit int, search string) ([]deleted.Item, error) {
	if limit <= 0 {
		return nil, nil
	}
	r := make([]deleted.Item, 0, min(limit, 128))
	opts := badger.DefaultIteratorOptions
	opts.Prefix = []byte{prefix}
	opts.Reverse = true
	err := l.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(opts)
		defer it.Close()
		// In reverse, Seek finds the last key at or before the seek key.
		// Every real key sorts before this one.
		end := []byte{prefix, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff}
		var v []byte
		for it.Seek(end); it.ValidForPrefix(opts.Prefix); it.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			item := it.Item()
			k := item.Key()
			if len(k) != keyLen {
				continue
			}
			var err error
			v, err = item.ValueCopy(v[:0])
			if err != nil {
				return fmt.Errorf("couldn't get value for key %q: %w", k, err)
			}
			if !deleted.Match(string(v), search) {
				continue
			}
			r = append(r, deleted.Item{Time: keytime(k), Text: string(v)})
			if len(r) >= limit {
				break
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("couldn't list deletions: %w", err)
	}
	return r, nil
}
