package integration

import (
	"os"
	"testing"
)

// RequireProcfs skips the current test unless a real Linux procfs is
// mounted. The unit tests run the samplers against fixture trees; these
// tests run them against the live kernel, which only works on Linux.
func RequireProcfs(t *testing.T) {
	t.Helper()
	if _, err := os.Stat("/proc/stat"); err != nil {
		t.Skip("Skipping: /proc/stat not readable (live procfs tests need Linux)")
	}
}
