package settlement

import (
	"fmt"
	"strings"

	"github.com/IlikeChooros/go-settlement/pkg/structure"
)

// Accumulator slot of the bookkeeping record
type Key int

const (
	WorkerSize Key = iota
	KitchenSize
	FoodSize
	ArchiveSize
	StorageSize
	ObservationSize
	ExitSize
	keyCount
)

var keyNames = [keyCount]string{
	WorkerSize:      "workerSize",
	KitchenSize:     "kitchenSize",
	FoodSize:        "foodSize",
	ArchiveSize:     "archiveSize",
	StorageSize:     "storageSize",
	ObservationSize: "observationSize",
	ExitSize:        "exitSize",
}

// Structure property feeding each key
var keySources = [keyCount]string{
	WorkerSize:      "workerCapacity",
	KitchenSize:     "kitchenCapacity",
	FoodSize:        "foodUnits",
	ArchiveSize:     "archiveCapacity",
	StorageSize:     "storageCapacity",
	ObservationSize: "observationCapacity",
	ExitSize:        "exit",
}

func (k Key) String() string {
	if k < 0 || k >= keyCount {
		return fmt.Sprintf("Key(%d)", int(k))
	}
	return keyNames[k]
}

// Property read by AccumulateProperties for this key
func (k Key) Source() string {
	return keySources[k]
}

// All keys, in declaration order
func Keys() []Key {
	keys := make([]Key, keyCount)
	for i := range keys {
		keys[i] = Key(i)
	}
	return keys
}

// Find the key with given name, like 'workerSize'
func ParseKey(name string) (Key, error) {
	for k, n := range keyNames {
		if strings.EqualFold(n, name) {
			return Key(k), nil
		}
	}
	return 0, fmt.Errorf("settlement: unknown bookkeeping key %q", name)
}

// Fixed-shape accumulator record threaded through the phases of a settlement.
// It's a value type, copying it copies the whole record
type Bookkeeping [keyCount]float64

func (b Bookkeeping) Get(k Key) float64 {
	return b[k]
}

func (b *Bookkeeping) Set(k Key, v float64) {
	b[k] = v
}

func (b *Bookkeeping) Add(k Key, v float64) {
	b[k] += v
}

// Named view of the record, for serialisation and expression environments
func (b Bookkeeping) Map() map[string]float64 {
	m := make(map[string]float64, keyCount)
	for k, v := range b {
		m[keyNames[k]] = v
	}
	return m
}

// Inverse of Map, unknown names are an error
func BookkeepingFromMap(m map[string]float64) (Bookkeeping, error) {
	var b Bookkeeping
	for name, v := range m {
		k, err := ParseKey(name)
		if err != nil {
			return b, err
		}
		b[k] = v
	}
	return b, nil
}

func (b Bookkeeping) String() string {
	parts := make([]string, 0, keyCount)
	for k, v := range b {
		if v != 0 {
			parts = append(parts, fmt.Sprintf("%s=%g", keyNames[k], v))
		}
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

// Folds a newly created node's contribution into its bookkeeping record.
// It's the only callable allowed to modify the record
type BookKeeper func(n *Node, book *Bookkeeping)

// Default book-keeper: adds the structure's capacity properties to their keys
func AccumulateProperties(n *Node, book *Bookkeeping) {
	accumulate(n.Structure(), book)
}

func accumulate(s structure.Structure, book *Bookkeeping) {
	if s == nil {
		return
	}
	for k, source := range keySources {
		book[k] += s.Property(source)
	}
}
