package invexcel

// ColumnNumberToName converts a 1-based column number to its spreadsheet
// letter designation (1 -> "A", 26 -> "Z", 27 -> "AA"). Numbers below 1 yield
// an empty string.
func ColumnNumberToName(n int) string {
	name := ""
	for n > 0 {
		n--
		name = string(rune('A'+n%26)) + name
		n /= 26
	}
	return name
}
