package debug

import (
	"bytes"
	"strings"
	"testing"
	"time"
)

func TestDisabledIsSilent(t *testing.T) {
	SetOutput(nil)
	Log("hidden %d", 1)
	Section("hidden")
	LogEnterExit("hidden")()
	if Enabled() {
		t.Error("Enabled() = true after SetOutput(nil)")
	}
}

func TestSetOutputCapturesMessages(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	defer SetOutput(nil)

	Log("loaded %d slides", 3)
	LogIf(false, "skipped")
	LogIf(true, "kept")
	LogTiming("fetch", 2*time.Millisecond)
	Section("render")
	LogEnterExit("Handle")()
	Dump("index", 4)

	out := buf.String()
	for _, want := range []string{
		"[SV_DEBUG] loaded 3 slides",
		"kept",
		"fetch took 2ms",
		"=== render ===",
		"-> Handle",
		"<- Handle",
		"index: int = 4",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "skipped") {
		t.Error("LogIf(false) wrote output")
	}
}
