package inference

import (
	"encoding/json"
	"testing"
)

func TestSanitizeConfidence_PercentString(t *testing.T) {
	// "44%" → strip suffix, parse, 44 > 1 → divide by 100
	if got := SanitizeConfidence("44%"); got != 0.44 {
		t.Errorf("expected 0.44, got %f", got)
	}
}

func TestSanitizeConfidence_Fraction(t *testing.T) {
	// Already a fraction, passes through
	if got := SanitizeConfidence(0.44); got != 0.44 {
		t.Errorf("expected 0.44, got %f", got)
	}
}

func TestSanitizeConfidence_WholeNumber(t *testing.T) {
	// 44 > 1 → treated as a percentage
	if got := SanitizeConfidence(44); got != 0.44 {
		t.Errorf("expected 0.44, got %f", got)
	}
}

func TestSanitizeConfidence_Garbage(t *testing.T) {
	// Unparseable input falls back to the default
	if got := SanitizeConfidence("abc"); got != DefaultConfidence {
		t.Errorf("expected %f, got %f", DefaultConfidence, got)
	}
}

func TestSanitizeConfidence_Nil(t *testing.T) {
	if got := SanitizeConfidence(nil); got != DefaultConfidence {
		t.Errorf("expected %f, got %f", DefaultConfidence, got)
	}
}

func TestSanitizeConfidence_JSONNumber(t *testing.T) {
	// The HTTP engine decodes numbers as json.Number
	if got := SanitizeConfidence(json.Number("0.87")); got != 0.87 {
		t.Errorf("expected 0.87, got %f", got)
	}
	if got := SanitizeConfidence(json.Number("87")); got != 0.87 {
		t.Errorf("expected 0.87, got %f", got)
	}
}

func TestSanitizeConfidence_RoundsToFourDecimals(t *testing.T) {
	if got := SanitizeConfidence(0.123456); got != 0.1235 {
		t.Errorf("expected 0.1235, got %f", got)
	}
}

func TestSanitizeConfidence_ExactlyOne(t *testing.T) {
	// 1 is a valid fraction, not a percentage
	if got := SanitizeConfidence(1.0); got != 1.0 {
		t.Errorf("expected 1.0, got %f", got)
	}
}

func TestSanitizeConfidence_PercentStringWithSpaces(t *testing.T) {
	if got := SanitizeConfidence(" 75% "); got != 0.75 {
		t.Errorf("expected 0.75, got %f", got)
	}
}
