package cli

import (
	"errors"
	"fmt"
	"strconv"
)

var errUsage = errors.New("usage")

func usage(syntax string) error {
	return fmt.Errorf("%w: %s", errUsage, syntax)
}

// needArgs fails with the usage line unless args has at least n elements.
func needArgs(args []string, n int, syntax string) error {
	if len(args) < n {
		return usage(syntax)
	}
	return nil
}

func parseFloats(syntax string, ss ...string) ([]float64, error) {
	out := make([]float64, len(ss))
	for i, s := range ss {
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil, fmt.Errorf("%w (%q is not a number)", usage(syntax), s)
		}
		out[i] = f
	}
	return out, nil
}
