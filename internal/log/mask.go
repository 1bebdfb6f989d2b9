package log

const (
	maskMinLength = 10
	maskPrefix    = 4
	maskFull      = "***"
)

// MaskSecret returns a diagnostic form of a secret that is safe to log.
// Short values are replaced entirely.
func MaskSecret(s string) string {
	if len(s) < maskMinLength {
		return maskFull
	}
	return s[:maskPrefix] + "..."
}
