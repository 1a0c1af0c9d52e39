package version

import (
	"strings"
	"testing"
)

func TestGetHonoursLdflags(t *testing.T) {
	old := Version
	t.Cleanup(func() { Version = old })

	Version = "v1.2.3"
	if got := Get(); got != "v1.2.3" {
		t.Errorf("Get() = %q", got)
	}
	if got := String("daybook"); !strings.HasPrefix(got, "daybook version v1.2.3") {
		t.Errorf("String() = %q", got)
	}
}

func TestGetInfo(t *testing.T) {
	info := GetInfo("daybook")
	if info.Name != "daybook" || info.Version == "" || info.GoVersion == "" {
		t.Errorf("GetInfo = %+v", info)
	}
}

func TestShortRevision(t *testing.T) {
	if got := shortRevision("abc"); got != "abc" {
		t.Errorf("shortRevision(short) = %q", got)
	}
	if got := shortRevision("0123456789abcdef"); got != "0123456" {
		t.Errorf("shortRevision(long) = %q", got)
	}
}
