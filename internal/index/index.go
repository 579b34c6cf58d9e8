// Package index holds an in-memory set of known funded addresses so lookups
// can be answered without touching the network.
package index

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/willf/bloom"
)

// falsePositiveRate sizes the bloom filter. Positives are confirmed against
// the exact set.
const falsePositiveRate = 1e-9

// Index is a read-only address set. Safe for concurrent Contains calls.
type Index struct {
	filter *bloom.BloomFilter
	exact  map[string]struct{}
}

// New builds an index from addresses. Blank entries are ignored.
func New(addresses []string) *Index {
	n := uint(len(addresses))
	if n == 0 {
		n = 1
	}
	idx := &Index{
		filter: bloom.NewWithEstimates(n, falsePositiveRate),
		exact:  make(map[string]struct{}, len(addresses)),
	}
	for _, a := range addresses {
		a = strings.TrimSpace(a)
		if a == "" {
			continue
		}
		idx.filter.AddString(a)
		idx.exact[a] = struct{}{}
	}
	return idx
}

// Load reads one address per line from path. Lines starting with '#' are
// comments.
func Load(path string) (*Index, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open address file: %w", err)
	}
	defer f.Close()

	var addrs []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		// tolerate "address,balance" style exports
		if i := strings.IndexAny(line, ",\t "); i > 0 {
			line = line[:i]
		}
		addrs = append(addrs, line)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read address file: %w", err)
	}
	return New(addrs), nil
}

// Contains reports whether address is in the index.
func (idx *Index) Contains(address string) bool {
	if idx == nil || !idx.filter.TestString(address) {
		return false
	}
	_, ok := idx.exact[address]
	return ok
}

// Len returns the number of distinct addresses.
func (idx *Index) Len() int {
	if idx == nil {
		return 0
	}
	return len(idx.exact)
}
