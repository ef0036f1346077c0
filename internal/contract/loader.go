package contract

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// DirSource walks a directory tree for .yaml/.yml contract files. Files
// are visited in lexicographic path order so duplicate-id resolution is
// reproducible across runs. Files that cannot be read or parsed as YAML
// mappings are silently skipped; a missing or non-directory root yields an
// empty source.
type DirSource struct {
	Root string
}

func (d DirSource) Each(fn func(origin string, doc RawDoc) error) error {
	info, err := os.Stat(d.Root)
	if err != nil || !info.IsDir() {
		return nil
	}

	var paths []string
	_ = filepath.WalkDir(d.Root, func(path string, entry fs.DirEntry, err error) error {
		if err != nil || entry.IsDir() {
			return nil
		}
		switch strings.ToLower(filepath.Ext(path)) {
		case ".yaml", ".yml":
			paths = append(paths, path)
		}
		return nil
	})
	sort.Strings(paths)

	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		var node yaml.Node
		if err := yaml.Unmarshal(data, &node); err != nil {
			continue
		}
		mapping := documentMapping(&node)
		if mapping == nil {
			// Empty documents and non-mapping top levels are not
			// contracts; treat them as unparseable and move on.
			continue
		}
		if err := fn(path, yamlDoc{node: mapping}); err != nil {
			return err
		}
	}
	return nil
}

// documentMapping unwraps a parsed document down to its top-level mapping
// node, or nil when the document is empty or not a mapping.
func documentMapping(node *yaml.Node) *yaml.Node {
	if node.Kind == yaml.DocumentNode {
		if len(node.Content) == 0 {
			return nil
		}
		node = node.Content[0]
	}
	if node.Kind != yaml.MappingNode {
		return nil
	}
	return node
}

type yamlDoc struct {
	node *yaml.Node
}

func (d yamlDoc) Contract(origin string) (*Contract, error) {
	return Decode(d.node, origin)
}

// LoadDir loads every contract file under dir. Convenience wrapper used by
// the CLI and HTTP server.
func LoadDir(dir string) (*Store, error) {
	return Load(DirSource{Root: dir})
}
