package common

// WipeByteArray zeroes b in place. Used for derived keys and passphrases.
func WipeByteArray(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
