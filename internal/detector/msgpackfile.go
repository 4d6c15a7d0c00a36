package detector

import (
	"fmt"
	"os"

	"github.com/vmihailenco/msgpack/v5"
)

// NewMsgpackFileProvider loads a msgpack detection dump. The detector
// sidecar uses msgpack for large runs where JSON dumps get unwieldy.
func NewMsgpackFileProvider(path string) (*DumpProvider, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read detections: %w", err)
	}

	var dump Dump
	if err := msgpack.Unmarshal(data, &dump); err != nil {
		return nil, fmt.Errorf("failed to decode detections %s: %w", path, err)
	}

	return FromDump(&dump)
}
