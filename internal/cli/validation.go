package cli

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/samruddhi/pipecut/internal/cutting"
	"github.com/samruddhi/pipecut/internal/models"
)

// validateLength parses a positive length in mm, rounded to 0.01 mm
func validateLength(input string) (float64, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return 0, fmt.Errorf("length is required")
	}

	v, err := strconv.ParseFloat(input, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid length: %s (enter a number of mm)", input)
	}
	if !cutting.ValidLength(v) {
		return 0, fmt.Errorf("length must be a number of mm in (0, %.0f], got: %s", cutting.MaxLengthMM, input)
	}
	return cutting.Round2(v), nil
}

// validateQuantity parses a positive piece count
func validateQuantity(input string) (int, error) {
	input = strings.TrimSpace(input)
	n, err := strconv.Atoi(input)
	if err != nil {
		return 0, fmt.Errorf("invalid quantity: %s (enter a positive integer)", input)
	}
	if n <= 0 || n > cutting.MaxPieces {
		return 0, fmt.Errorf("quantity must be between 1 and %d, got: %d", cutting.MaxPieces, n)
	}
	return n, nil
}

// parseCutArg parses LENGTHxQTY, e.g. 868x3. A bare length means one piece.
func parseCutArg(input string) (models.CutRequirement, error) {
	input = strings.ToLower(strings.TrimSpace(input))
	lengthPart, qtyPart, hasQty := strings.Cut(input, "x")

	length, err := validateLength(lengthPart)
	if err != nil {
		return models.CutRequirement{}, fmt.Errorf("cut %q: %w", input, err)
	}

	qty := 1
	if hasQty {
		qty, err = validateQuantity(qtyPart)
		if err != nil {
			return models.CutRequirement{}, fmt.Errorf("cut %q: %w", input, err)
		}
	}

	return models.CutRequirement{Length: length, Quantity: qty}, nil
}

// maskSensitiveData masks sensitive data for display
func maskSensitiveData(data string, maskChar string) string {
	if data == "" {
		return "(not set)"
	}
	if len(data) <= 8 {
		return strings.Repeat(maskChar, 3)
	}
	return data[:4] + "..." + data[len(data)-4:]
}

// formatDuration formats a check latency for display
func formatDuration(d time.Duration) string {
	if d < time.Millisecond {
		return fmt.Sprintf("%dµs", d.Microseconds())
	}
	if d < time.Second {
		return fmt.Sprintf("%.1fms", float64(d)/float64(time.Millisecond))
	}
	return fmt.Sprintf("%.1fs", d.Seconds())
}

// formatMM formats a length with two decimals
func formatMM(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}
