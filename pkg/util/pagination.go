package util

import (
	"errors"
	"strconv"
)

var (
	ErrInvalidPage    = errors.New("page is not a number")
	ErrPageOutOfRange = errors.New("that page contains no results")
)

const lastPage = -1

type Page struct {
	Number      int   `json:"number"`
	Size        int   `json:"size"`
	NumPages    int   `json:"num_pages"`
	Total       int64 `json:"total"`
	HasNext     bool  `json:"has_next"`
	HasPrevious bool  `json:"has_previous"`
}

// ParsePage reads the page query value. Empty means the first page and
// "last" the last one.
func ParsePage(raw string) (int, error) {
	switch raw {
	case "":
		return 1, nil
	case "last":
		return lastPage, nil
	}

	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, ErrInvalidPage
	}

	if n < 1 {
		return 0, ErrPageOutOfRange
	}

	return n, nil
}

// NewPage validates the requested page against the total row count. The
// first page always exists, even when there is nothing to show.
func NewPage(number, size int, total int64) (Page, error) {
	pages := int((total + int64(size) - 1) / int64(size))
	if pages == 0 {
		pages = 1
	}

	if number == lastPage {
		number = pages
	}

	if number < 1 || number > pages {
		return Page{}, ErrPageOutOfRange
	}

	return Page{
		Number:      number,
		Size:        size,
		NumPages:    pages,
		Total:       total,
		HasNext:     number < pages,
		HasPrevious: number > 1,
	}, nil
}

func (p Page) Offset() int {
	return (p.Number - 1) * p.Size
}
