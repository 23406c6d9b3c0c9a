package inference

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// DefaultConfidence is used when the model's confidence value cannot be
// parsed. Degrading silently instead of failing is deliberate; it is also an
// accuracy blind spot, since a garbled confidence becomes indistinguishable
// from a genuine 50%.
const DefaultConfidence = 0.50

// SanitizeConfidence normalizes a raw model confidence into a fraction,
// rounded to 4 decimal digits. Accepted shapes: "44%", "0.44", 0.44, 44.
// Values above 1 are treated as percentages and divided by 100.
func SanitizeConfidence(raw any) float64 {
	var val float64

	switch v := raw.(type) {
	case float64:
		val = v
	case float32:
		val = float64(v)
	case int:
		val = float64(v)
	case int64:
		val = float64(v)
	case json.Number:
		f, err := v.Float64()
		if err != nil {
			return DefaultConfidence
		}
		val = f
	case string:
		clean := strings.TrimSpace(strings.ReplaceAll(v, "%", ""))
		f, err := strconv.ParseFloat(clean, 64)
		if err != nil {
			return DefaultConfidence
		}
		val = f
	case nil:
		return DefaultConfidence
	default:
		// Last resort for unexpected wire types.
		clean := strings.TrimSpace(strings.ReplaceAll(fmt.Sprint(v), "%", ""))
		f, err := strconv.ParseFloat(clean, 64)
		if err != nil {
			return DefaultConfidence
		}
		val = f
	}

	if val > 1 {
		val /= 100
	}
	return math.Round(val*10000) / 10000
}
