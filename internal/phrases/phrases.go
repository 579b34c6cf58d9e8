// Package phrases reads base phrase wordlists.
package phrases

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

// maxLineSize bounds a single phrase line.
const maxLineSize = 1 << 20

// Load reads the wordlist at path.
func Load(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open phrase file: %w", err)
	}
	defer f.Close()

	list, err := Read(f)
	if err != nil {
		return nil, fmt.Errorf("read phrase file %s: %w", path, err)
	}
	return list, nil
}

// Read returns the phrases in r in order. Lines are trimmed; blank lines and
// lines starting with '#' are skipped.
func Read(r io.Reader) ([]string, error) {
	var list []string
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		list = append(list, line)
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return list, nil
}
