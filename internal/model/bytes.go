package model

import (
	"fmt"
	"math"
)

var byteUnits = []string{"B", "KB", "MB", "GB", "TB"}

// FormatBytes renders a byte count with binary units ("512 B", "1.50 MB").
// Non-positive counts render as an empty string.
func FormatBytes(n int64) string {
	if n <= 0 {
		return ""
	}
	return FormatBytesFloat(float64(n))
}

// FormatBytesFloat is FormatBytes for fractional or untrusted values; NaN and
// infinities render as an empty string.
func FormatBytesFloat(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 {
		return ""
	}

	i := 0
	for v >= 1024 && i < len(byteUnits)-1 {
		v /= 1024
		i++
	}

	if i == 0 {
		return fmt.Sprintf("%.0f %s", v, byteUnits[i])
	}
	return fmt.Sprintf("%.2f %s", v, byteUnits[i])
}
