package utils

// IsIn reports whether s is one of the values in arr.
func IsIn(s string, arr []string) bool {
	for _, x := range arr {
		if s == x {
			return true
		}
	}
	return false
}
