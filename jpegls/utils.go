package jpegls

import "golang.org/x/exp/constraints"

func abs[T constraints.Signed](x T) T {
	if x < 0 {
		return -x
	}
	return x
}

// sign returns 1 for non-negative n, -1 otherwise.
func sign(n int) int {
	if n >= 0 {
		return 1
	}
	return -1
}

// bitwiseSign returns -1 for negative i, 0 otherwise.
func bitwiseSign(i int) int {
	if i < 0 {
		return -1
	}
	return 0
}

// applySign negates i when sign is -1 and leaves it unchanged when 0.
func applySign(i, s int) int {
	return (s ^ i) - s
}
