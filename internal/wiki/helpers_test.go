package wiki

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/codewiki-dev/codewiki/internal/parser"
	"github.com/stretchr/testify/require"
)

// writeFile creates a file with content under dir, creating parents as needed.
func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

// fn builds a callable symbol spanning the given lines.
func fn(name string, start, end int) parser.Symbol {
	return parser.Symbol{Name: name, Kind: parser.KindFunction, StartLine: start, EndLine: end}
}

// manyFuncs builds n sequentially named callable symbols.
func manyFuncs(n int) []parser.Symbol {
	syms := make([]parser.Symbol, n)
	for i := range syms {
		syms[i] = fn(fmt.Sprintf("func%02d", i), i*10+1, i*10+5)
	}
	return syms
}

// mapReader serves file content from a map, failing on unknown paths.
type mapReader map[string]string

func (r mapReader) ReadFile(path string) ([]byte, error) {
	content, ok := r[path]
	if !ok {
		return nil, os.ErrNotExist
	}
	return []byte(content), nil
}
