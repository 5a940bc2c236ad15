package history

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrInvalidPageSetting is returned by ParsePageSetting for values outside
// the supported set.
var ErrInvalidPageSetting = errors.New("invalid page setting")

// PageSetting is a display window size. The zero value is All.
type PageSetting int

const (
	// All disables windowing.
	All PageSetting = 0

	// DefaultPageSetting is used when no preference has been stored.
	DefaultPageSetting PageSetting = 50

	// AllCapacity bounds the history when windowing is disabled.
	AllCapacity = 10000

	// pagesOfScrollback is the number of pages retained for a fixed page size.
	pagesOfScrollback = 10
)

// PageSizes lists the fixed page sizes a user can pick, in display order.
var PageSizes = []PageSetting{10, 25, 50, 100}

// ParsePageSetting parses a stored or user-entered page setting: a decimal
// integer from PageSizes, or "all".
func ParsePageSetting(raw string) (PageSetting, error) {
	raw = strings.ToLower(strings.TrimSpace(raw))
	if raw == "all" {
		return All, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidPageSetting, raw)
	}
	for _, size := range PageSizes {
		if PageSetting(n) == size {
			return size, nil
		}
	}
	return 0, fmt.Errorf("%w: %d is not one of %v", ErrInvalidPageSetting, n, PageSizes)
}

// IsAll reports whether windowing is disabled.
func (p PageSetting) IsAll() bool {
	return p == All
}

// String returns the persisted form: "all" or the decimal size.
func (p PageSetting) String() string {
	if p.IsAll() {
		return "all"
	}
	return strconv.Itoa(int(p))
}

// CapacityFor returns the history capacity for a page setting: ten pages of
// scrollback for a fixed size, AllCapacity otherwise.
func CapacityFor(p PageSetting) int {
	if p.IsAll() {
		return AllCapacity
	}
	return int(p) * pagesOfScrollback
}
