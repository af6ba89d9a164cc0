// cmd/helpers_test.go
package cmd

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/lsert/zarm-web/internal/observability"
)

const fixtureHTML = `<!DOCTYPE html>
<html><body>
<div id="ref" style="position: absolute; left: 100px; top: 50px; width: 80px; height: 20px;"></div>
<div id="pop" style="width: 80px; height: 40px;"><div x-arrow="" style="width: 10px; height: 10px;"></div></div>
</body></html>`

// executeCommand runs a fresh command tree and returns what it printed.
func executeCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	observability.ResetForTest()
	t.Cleanup(observability.ResetForTest)

	root := NewRootCommand()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}
