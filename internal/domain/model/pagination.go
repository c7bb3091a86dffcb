package model

import (
	"math"
	"math/bits"
	"strings"
)

type SortDirection string

const (
	SortAsc  SortDirection = "ASC"
	SortDesc SortDirection = "DESC"
)

func ParseSortDirection(s string) (SortDirection, bool) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "", string(SortAsc):
		return SortAsc, true
	case string(SortDesc):
		return SortDesc, true
	default:
		return "", false
	}
}

func (d SortDirection) OrDefault() SortDirection {
	if d == "" {
		return SortAsc
	}

	return d
}

func (d SortDirection) Valid() bool {
	return d == SortAsc || d == SortDesc
}

// PageArgs selects one page of a result set. Pages are 1-based.
type PageArgs struct {
	CurrentPage uint
	PageSize    uint
	Direction   SortDirection
}

func (a PageArgs) Validate() error {
	validation := NewValidationErrors()

	if a.PageSize == 0 {
		validation.Add("pageSize", "page size must be positive", "invalid_page_size")
	}

	if a.CurrentPage == 0 {
		validation.Add("currentPage", "current page must be positive", "invalid_current_page")
	}

	if uint64(a.PageSize) > math.MaxInt64 {
		validation.Add("pageSize", "page size is out of range", "invalid_page_size")
	} else if a.PageSize > 0 && a.CurrentPage > 0 {
		// LIMIT and OFFSET are signed 64-bit on every SQL backend.
		hi, lo := bits.Mul64(uint64(a.CurrentPage-1), uint64(a.PageSize))
		if hi != 0 || lo > math.MaxInt64 {
			validation.Add("currentPage", "page offset is out of range", "invalid_current_page")
		}
	}

	if a.Direction != "" && !a.Direction.Valid() {
		validation.Add("direction", "sort direction must be ASC or DESC", "invalid_direction")
	}

	if validation.HasErrors() {
		return validation
	}

	return nil
}

// Offset is only meaningful for arguments that passed Validate.
func (a PageArgs) Offset() uint64 {
	if a.CurrentPage == 0 {
		return 0
	}

	return uint64(a.CurrentPage-1) * uint64(a.PageSize)
}

type PageOptions struct {
	PageSize    uint  `json:"pageSize" yaml:"pageSize"`
	CurrentPage uint  `json:"currentPage" yaml:"currentPage"`
	TotalPages  uint  `json:"totalPages" yaml:"totalPages"`
	TotalItems  int64 `json:"totalItems" yaml:"totalItems"`
}

type Page struct {
	Result  []Row       `json:"result" yaml:"result"`
	Options PageOptions `json:"options" yaml:"options"`
}

// TotalPages is ceil(totalItems / pageSize).
func TotalPages(totalItems int64, pageSize uint) uint {
	if totalItems <= 0 || pageSize == 0 {
		return 0
	}

	if uint64(pageSize) >= uint64(totalItems) {
		return 1
	}

	size := int64(pageSize)

	return uint((totalItems-1)/size + 1)
}
