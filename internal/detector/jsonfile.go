package detector

import (
	"encoding/json"
	"fmt"
	"os"
)

// NewJSONFileProvider loads a JSON detection dump from disk. The detector
// sidecar writes these after its analysis pass; the core assumes a
// validated, typed detection list — any repair of malformed model output
// happens on the detector side of this boundary.
func NewJSONFileProvider(path string) (*DumpProvider, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read detections: %w", err)
	}

	var dump Dump
	if err := json.Unmarshal(data, &dump); err != nil {
		return nil, fmt.Errorf("failed to parse detections %s: %w", path, err)
	}

	return FromDump(&dump)
}
