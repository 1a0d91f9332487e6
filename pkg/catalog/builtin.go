package catalog

import (
	"embed"
	"fmt"
	"path"
	"strings"

	"github.com/IlikeChooros/go-settlement/pkg/terrain"
)

//go:embed data/*.json
var builtinFS embed.FS

// Names of the catalogs shipped with the module
func BuiltinNames() []string {
	entries, _ := builtinFS.ReadDir("data")
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if n := e.Name(); !strings.HasSuffix(n, ".schema.json") {
			names = append(names, strings.TrimSuffix(n, ".json"))
		}
	}
	return names
}

// Load one of the embedded catalogs ("debug", "gamma")
func Builtin(name string, oracle terrain.Oracle) (*Catalog, error) {
	data, err := builtinFS.ReadFile(path.Join("data", name+".json"))
	if err != nil {
		return nil, fmt.Errorf("catalog: no builtin catalog %q", name)
	}
	return Parse(data, oracle)
}
