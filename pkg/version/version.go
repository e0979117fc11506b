package version

// Version is the current sv version. It is a var so release builds can set
// it:
//
//	go build -ldflags "-X github.com/vanderheijden86/slideview/pkg/version.Version=v0.2.0" ./cmd/sv
var Version = "v0.1.0"

// String returns the version line printed by --version.
func String() string {
	return "sv " + Version
}
