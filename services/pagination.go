package services

import (
	"strconv"

	"gorm.io/gorm"

	"github.com/pulsefeed/pulse/models"
)

// PageSize is fixed for every feed listing.
const PageSize = 10

// PostPage is one page of a feed: the ordered slice plus the counters a
// client needs to render pagination controls.
type PostPage struct {
	Items      []models.Post `json:"items"`
	Number     int           `json:"page"`
	TotalItems int64         `json:"total"`
	TotalPages int           `json:"total_pages"`
	HasPrev    bool          `json:"has_prev"`
	HasNext    bool          `json:"has_next"`
}

// ParsePage turns the raw page query parameter into a 1-based page number.
// Absent, non-numeric, or sub-1 input yields page 1; clamping against the
// last page happens in PaginatePosts once the total is known. Bad pagination
// input never errors.
func ParsePage(raw string) int {
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return 1
	}
	return n
}

// PaginatePosts counts the candidate set, clamps the requested page into
// range, and returns the slice for that page ordered newest first (ties
// broken by id so the order is deterministic).
func PaginatePosts(q *gorm.DB, rawPage string) (*PostPage, error) {
	var total int64
	if err := q.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, err
	}

	totalPages := int((total + PageSize - 1) / PageSize)
	if totalPages < 1 {
		totalPages = 1
	}
	page := ParsePage(rawPage)
	if page > totalPages {
		page = totalPages
	}

	items := []models.Post{}
	err := q.Session(&gorm.Session{}).
		Order("pub_date DESC, id DESC").
		Offset((page - 1) * PageSize).
		Limit(PageSize).
		Find(&items).Error
	if err != nil {
		return nil, err
	}

	return &PostPage{
		Items:      items,
		Number:     page,
		TotalItems: total,
		TotalPages: totalPages,
		HasPrev:    page > 1,
		HasNext:    int64(page)*PageSize < total,
	}, nil
}

// EmptyPage is the page served when the candidate author-set is empty, a
// valid zero-result state rather than an error.
func EmptyPage() *PostPage {
	return &PostPage{
		Items:      []models.Post{},
		Number:     1,
		TotalPages: 1,
	}
}
