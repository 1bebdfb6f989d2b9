// Package privacy implements the obfuscated guest view of the dashboard.
//
// Amounts are scaled by a factor derived from the calendar date and rounded
// to cents, so proportions inside one response survive while magnitudes do
// not. Labels are mapped onto a small fixed vocabulary with a stable hash.
// Everything here is pure; the package holds no mutable state.
package privacy
