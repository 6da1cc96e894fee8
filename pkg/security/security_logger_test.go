package security

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap/zapcore"
)

func TestMaskEmail(t *testing.T) {
	cases := map[string]string{
		"jane@example.com": "j***@example.com",
		"j@example.com":    "***@example.com",
		"ab":               "***",
		"noatsign":         "***oatsign",
	}
	for in, want := range cases {
		t.Run(in, func(t *testing.T) {
			assert.Equal(t, want, MaskEmail(in))
		})
	}
}

func TestHashValue(t *testing.T) {
	assert.Len(t, HashValue("3f0c1f5e"), 16)
	assert.Equal(t, HashValue("x"), HashValue("x"))
	assert.NotEqual(t, HashValue("x"), HashValue("y"))
}

func TestGetSeverity(t *testing.T) {
	t.Run("Should derive severity from the event type", func(t *testing.T) {
		assert.Equal(t, SeverityINFO, GetSeverity(EventLoginSuccess))
		assert.Equal(t, SeverityHIGH, GetSeverity(EventCSRFViolation))
		assert.True(t, IsHighOrAbove(EventLoginBlocked))
		assert.False(t, IsHighOrAbove(EventUploadRejected))
		assert.Equal(t, SeverityCRITICAL, GetSeverity(EventMalwareDetected))
		assert.True(t, IsHighOrAbove(EventMalwareDetected))
	})

	t.Run("Should default unknown events to MEDIUM", func(t *testing.T) {
		assert.Equal(t, SeverityMEDIUM, GetSeverity(EventType("something_new")))
	})

	t.Run("Should write high severities at error level", func(t *testing.T) {
		assert.Equal(t, zapcore.InfoLevel, SeverityINFO.Level())
		assert.Equal(t, zapcore.WarnLevel, SeverityWARN.Level())
		assert.Equal(t, zapcore.ErrorLevel, SeverityHIGH.Level())
		assert.Equal(t, zapcore.ErrorLevel, SeverityCRITICAL.Level())
	})
}
