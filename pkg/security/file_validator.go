package security

import (
	"bytes"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// FileValidationResult contains the result of file validation
type FileValidationResult struct {
	Valid        bool   // Whether the file passed all validation checks
	Extension    string // Lowercased file extension
	DetectedMIME string // MIME type sniffed from content
	Error        string // Error message if validation failed
}

// FilePolicy is an extension whitelist with the MIME types each may sniff as.
type FilePolicy map[string][]string

var (
	// PhotoPolicy accepts common raster images.
	PhotoPolicy = FilePolicy{
		".jpg":  {"image/jpeg"},
		".jpeg": {"image/jpeg"},
		".png":  {"image/png"},
		".webp": {"image/webp"},
	}
	// ResumePolicy accepts PDF and Word documents.
	ResumePolicy = FilePolicy{
		".pdf":  {"application/pdf"},
		".doc":  {"application/msword", "application/x-ole-storage"},
		".docx": {"application/vnd.openxmlformats-officedocument.wordprocessingml.document", "application/zip"},
	}
)

// Magic byte signatures for allowed file types
var magicBytes = map[string][][]byte{
	".jpg":  {{0xFF, 0xD8, 0xFF}},
	".jpeg": {{0xFF, 0xD8, 0xFF}},
	".png":  {{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A}},
	".webp": {{0x52, 0x49, 0x46, 0x46}}, // RIFF header
	".pdf":  {{0x25, 0x50, 0x44, 0x46}}, // %PDF
	".doc":  {{0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1, 0x1A, 0xE1}},
	".docx": {{0x50, 0x4B, 0x03, 0x04}}, // ZIP (PK..)
}

// ValidateFile performs 3-layer file validation against policy:
// 1. Extension whitelist
// 2. Magic bytes match the extension
// 3. Sniffed MIME type is one the extension allows
func ValidateFile(policy FilePolicy, filename string, data []byte) FileValidationResult {
	ext := strings.ToLower(filepath.Ext(filename))
	result := FileValidationResult{Extension: ext}

	if ext == "" {
		result.Error = "file has no extension"
		return result
	}

	allowedMIMEs, ok := policy[ext]
	if !ok {
		result.Error = "file extension not allowed: " + ext
		return result
	}

	if !validateMagicBytes(ext, data) {
		result.Error = "file content does not match extension"
		return result
	}

	detected := mimetype.Detect(data)
	result.DetectedMIME = detected.String()
	if !mimeAllowed(detected, allowedMIMEs) {
		result.Error = "file type not allowed: " + detected.String()
		return result
	}

	result.Valid = true
	return result
}

func mimeAllowed(detected *mimetype.MIME, allowed []string) bool {
	for m := detected; m != nil; m = m.Parent() {
		for _, a := range allowed {
			if m.Is(a) {
				return true
			}
		}
	}
	return false
}

func validateMagicBytes(ext string, data []byte) bool {
	if len(data) < 4 {
		return false
	}
	for _, sig := range magicBytes[ext] {
		if bytes.HasPrefix(data, sig) {
			return true
		}
	}
	return false
}

// IsImageExtension checks if the extension is an image type
func IsImageExtension(ext string) bool {
	_, ok := PhotoPolicy[strings.ToLower(ext)]
	return ok
}
