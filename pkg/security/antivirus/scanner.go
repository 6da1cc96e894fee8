package antivirus

import (
	"context"
	"io"
)

// ScanResult contains the result of a malware scan
type ScanResult struct {
	Infected    bool   // True if malware was detected
	ThreatName  string // Name of detected threat (empty if clean)
	ScannerName string // Name of scanner that produced this result
	Error       error  // Any error that occurred during scanning
}

// Scanner is the interface for pluggable antivirus implementations.
// Uploads are rejected on detection; nothing is quarantined.
type Scanner interface {
	// Scan checks file content for malware
	// Returns ScanResult - always check Infected field even if Error is nil
	// If error occurs, treat as Infected=true (fail closed)
	Scan(ctx context.Context, filename string, data io.Reader) ScanResult

	// Name returns the scanner implementation name (for logging)
	Name() string

	// Available checks if the scanner is operational
	Available(ctx context.Context) bool
}

// NoOpScanner always reports clean. Used when no clamd is configured.
type NoOpScanner struct{}

var _ Scanner = (*NoOpScanner)(nil) // Compile-time interface check

func (n *NoOpScanner) Scan(ctx context.Context, filename string, data io.Reader) ScanResult {
	return ScanResult{
		Infected:    false,
		ScannerName: n.Name(),
	}
}

func (n *NoOpScanner) Name() string {
	return "noop"
}

func (n *NoOpScanner) Available(ctx context.Context) bool {
	return true
}

func NewNoOpScanner() *NoOpScanner {
	return &NoOpScanner{}
}
