package pipemod

import (
	"fmt"
	"path/filepath"
	"strings"
)

// TestSourceLocation selects the synthetic source in Open.
const TestSourceLocation = "videotestsrc"

// Decoder opens media that none of the built-in sources understands.
type Decoder func(location string) (Clip, error)

// SourceConfig configures Open.
type SourceConfig struct {
	TestSource TestSourceConfig
	// Decoder is used for locations with an unknown extension. If nil,
	// such locations are rejected.
	Decoder Decoder
}

// Open returns a clip for location: the test source, "-" for a YUV4MPEG2
// stream on standard input, a .y4m or .wav file, or anything the configured
// decoder accepts.
func Open(location string, cfg SourceConfig) (Clip, error) {
	if location == TestSourceLocation {
		return NewTestSource(cfg.TestSource)
	}
	if location == "-" {
		return OpenY4M(location)
	}
	switch strings.ToLower(filepath.Ext(location)) {
	case ".y4m":
		return OpenY4M(location)
	case ".wav", ".wave":
		return OpenWAV(location)
	}
	if cfg.Decoder == nil {
		return nil, fmt.Errorf("unsupported input %q", location)
	}
	return cfg.Decoder(location)
}
