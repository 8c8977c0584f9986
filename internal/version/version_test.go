package version

import (
	"strings"
	"testing"
)

func TestInfo(t *testing.T) {
	Version = "1.2.3"
	Commit = "abc1234"
	Date = "2026-08-25"

	info := Info()
	if !strings.HasPrefix(info, "quotadeck 1.2.3") {
		t.Errorf("Info() = %q, want quotadeck 1.2.3 prefix", info)
	}
	if !strings.Contains(info, "abc1234") || !strings.Contains(info, "2026-08-25") {
		t.Errorf("Info() missing commit or date: %q", info)
	}
}
