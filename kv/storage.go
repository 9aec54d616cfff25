package kv

import (
	"iter"

	"github.com/cespare/xxhash/v2"
	"github.com/indigo-web/utils/strcomp"
)

type Pair struct {
	Key, Value string
}

// Storage is an associative structure for storing (string, string) pairs. Keys are compared
// case-insensitively, all the pairs are kept in the order of insertion and duplicate keys
// are never collapsed. Lookups go through the folded hash of every key, which is stored
// alongside the pairs, so only pairs with the same hash are compared char by char.
type Storage struct {
	pairs  []Pair
	hashes []uint64
}

func New() *Storage {
	return new(Storage)
}

// NewPrealloc returns an instance of Storage with pre-allocated underlying storage.
func NewPrealloc(n int) *Storage {
	return &Storage{
		pairs:  make([]Pair, 0, n),
		hashes: make([]uint64, 0, n),
	}
}

// NewFromMap returns a new instance with already inserted values from given map.
// Note: as maps are unordered, resulting underlying structure will also contain unordered
// pairs.
func NewFromMap(m map[string][]string) *Storage {
	kv := NewPrealloc(len(m))

	for key, values := range m {
		for _, value := range values {
			kv.Add(key, value)
		}
	}

	return kv
}

// Add adds a new pair of key and value.
func (s *Storage) Add(key, value string) *Storage {
	s.pairs = append(s.pairs, Pair{
		Key:   key,
		Value: value,
	})
	s.hashes = append(s.hashes, foldHash(key))
	return s
}

// Value returns the first value, corresponding to the key. Otherwise, empty string is returned
func (s *Storage) Value(key string) string {
	return s.ValueOr(key, "")
}

// ValueOr returns either the first value corresponding to the key or custom value, defined
// via the second parameter.
func (s *Storage) ValueOr(key, or string) string {
	value, found := s.Get(key)
	if !found {
		return or
	}

	return value
}

// Get returns a value and a bool, indicating whether the value was found. If it wasn't, it'll
// be an empty string.
func (s *Storage) Get(key string) (value string, found bool) {
	if i := s.indexOf(key); i != -1 {
		return s.pairs[i].Value, true
	}

	return "", false
}

// Values returns an iterator over all the values of the key, in order of their insertion.
func (s *Storage) Values(key string) iter.Seq[string] {
	return func(yield func(string) bool) {
		hash := foldHash(key)

		for i, h := range s.hashes {
			if h == hash && strcomp.EqualFold(s.pairs[i].Key, key) {
				if !yield(s.pairs[i].Value) {
					return
				}
			}
		}
	}
}

// Keys returns an iterator over all unique presented keys. The key is yielded in the form
// it was met for the first time.
func (s *Storage) Keys() iter.Seq[string] {
	return func(yield func(string) bool) {
		for i, pair := range s.pairs {
			if s.indexOf(pair.Key) != i {
				continue
			}

			if !yield(pair.Key) {
				return
			}
		}
	}
}

// Pairs returns an iterator over the pairs.
func (s *Storage) Pairs() iter.Seq2[string, string] {
	return func(yield func(string, string) bool) {
		for _, pair := range s.pairs {
			if !yield(pair.Key, pair.Value) {
				return
			}
		}
	}
}

// Has indicates, whether there's an entry of the key.
func (s *Storage) Has(key string) bool {
	return s.indexOf(key) != -1
}

// Len returns a number of stored pairs.
func (s *Storage) Len() int {
	return len(s.pairs)
}

func (s *Storage) Empty() bool {
	return s.Len() == 0
}

// Clone creates a deep copy, which may be used later or stored somewhere safely. However,
// it comes at cost of multiple allocations.
func (s *Storage) Clone() *Storage {
	return &Storage{
		pairs:  clone(s.pairs),
		hashes: clone(s.hashes),
	}
}

// Expose exposes the underlying pairs slice.
func (s *Storage) Expose() []Pair {
	return s.pairs
}

// Clear all the entries. However, all the allocated space won't be freed.
func (s *Storage) Clear() *Storage {
	s.pairs = s.pairs[:0]
	s.hashes = s.hashes[:0]
	return s
}

func (s *Storage) indexOf(key string) int {
	hash := foldHash(key)

	for i := range s.hashes {
		if s.hashes[i] == hash && strcomp.EqualFold(s.pairs[i].Key, key) {
			return i
		}
	}

	return -1
}

// foldHash returns the hash of the lower-cased key. The key is lower-cased chunk by chunk
// into a stack buffer, so no allocations are made.
func foldHash(key string) uint64 {
	var (
		digest  xxhash.Digest
		scratch [32]byte
	)

	digest.Reset()

	for len(key) > 0 {
		n := copy(scratch[:], key)
		for i, c := range scratch[:n] {
			if c >= 'A' && c <= 'Z' {
				scratch[i] = c | 0x20
			}
		}

		_, _ = digest.Write(scratch[:n])
		key = key[n:]
	}

	return digest.Sum64()
}

func clone[T any](source []T) []T {
	if len(source) == 0 {
		return nil
	}

	newSlice := make([]T, len(source))
	copy(newSlice, source)

	return newSlice
}
