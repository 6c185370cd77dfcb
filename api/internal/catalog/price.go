package catalog

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseError — в строке цены не осталось ни одной цифры.
type ParseError struct {
	Input string
	Err   error
}

func (e *ParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("parse price %q: %v", e.Input, e.Err)
	}
	return fmt.Sprintf("parse price %q: no digits", e.Input)
}

func (e *ParseError) Unwrap() error { return e.Err }

// ParsePrice drops every non-digit rune ("₹1,234" -> 1234).
func ParsePrice(display string) (int, error) {
	var b strings.Builder
	for _, r := range display {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return 0, &ParseError{Input: display}
	}
	n, err := strconv.Atoi(b.String())
	if err != nil {
		return 0, &ParseError{Input: display, Err: err}
	}
	return n, nil
}

// FormatPrice — обратное отображение для итогов корзины.
func FormatPrice(amount int) string {
	return "₹" + strconv.Itoa(amount)
}
