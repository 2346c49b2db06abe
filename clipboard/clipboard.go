// Package clipboard copies text for the operator to paste elsewhere.
package clipboard

import (
	"errors"
	"fmt"

	cb "github.com/atotto/clipboard"
)

var ErrUnsupported = errors.New("no clipboard utility available (install xclip, xsel or wl-clipboard)")

func Copy(text string) error {
	if cb.Unsupported {
		return ErrUnsupported
	}
	if err := cb.WriteAll(text); err != nil {
		return fmt.Errorf("writing clipboard: %w", err)
	}
	return nil
}

func Read() (string, error) {
	if cb.Unsupported {
		return "", ErrUnsupported
	}
	s, err := cb.ReadAll()
	if err != nil {
		return "", fmt.Errorf("reading clipboard: %w", err)
	}
	return s, nil
}
