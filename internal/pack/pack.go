// Package pack reads JSONL test packs: the input record sequence a
// session evaluates.
package pack

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/mohdibrahimai/HELMSMAN/internal/model"
)

// Load reads a JSONL pack file. Blank lines are skipped; a malformed line
// is an error, since packs are curated fixtures rather than untrusted
// input. Locale defaults to "en" and topic to "general_qa".
func Load(path string) ([]model.PackItem, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open pack %s: %w", path, err)
	}
	defer f.Close()

	var items []model.PackItem
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	lineno := 0
	for scanner.Scan() {
		lineno++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		var item model.PackItem
		if err := json.Unmarshal([]byte(line), &item); err != nil {
			return nil, fmt.Errorf("pack %s line %d: %w", path, lineno, err)
		}
		if item.Locale == "" {
			item.Locale = "en"
		}
		if item.Topic == "" {
			item.Topic = "general_qa"
		}
		items = append(items, item)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read pack %s: %w", path, err)
	}
	return items, nil
}
