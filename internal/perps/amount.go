// =============================
// File: internal/perps/amount.go
// =============================
package perps

import "math"

// ToNative converts a human-readable token amount into the integer base
// units the ledger uses. The result truncates rather than rounds so the
// converted amount never exceeds what the UI amount represents.
func ToNative(ui float64, decimals uint8) uint64 {
	return uint64(ui * math.Pow10(int(decimals)))
}

// ToUI converts integer base units back into a human-readable amount.
func ToUI(native uint64, decimals uint8) float64 {
	return float64(native) / math.Pow10(int(decimals))
}
