package util

import (
	"fmt"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/developer-overheid-nl/don-image-register/pkg/api_client/models"
)

// NewPagination fills the page metadata for a result of total records.
func NewPagination(page, perPage, total int) models.Pagination {
	totalPages := 0
	if perPage > 0 {
		totalPages = int(math.Ceil(float64(total) / float64(perPage)))
	}
	p := models.Pagination{
		CurrentPage:    page,
		RecordsPerPage: perPage,
		TotalPages:     totalPages,
		TotalRecords:   total,
	}
	if page < totalPages {
		next := page + 1
		p.Next = &next
	}
	if page > 1 {
		prev := page - 1
		p.Previous = &prev
	}
	return p
}

// SetPaginationHeaders writes X-Total-Count and an RFC 8288 Link header with
// first, prev, next and last relations.
func SetPaginationHeaders(r *http.Request, setHeader func(key, value string), p models.Pagination) {
	setHeader("X-Total-Count", strconv.Itoa(p.TotalRecords))

	var links []string
	add := func(page int, rel string) {
		links = append(links, fmt.Sprintf("<%s>; rel=\"%s\"", pageURL(r, page, p.RecordsPerPage), rel))
	}
	if p.TotalPages > 0 {
		add(1, "first")
	}
	if p.Previous != nil {
		add(*p.Previous, "prev")
	}
	if p.Next != nil {
		add(*p.Next, "next")
	}
	if p.TotalPages > 0 {
		add(p.TotalPages, "last")
	}
	if len(links) > 0 {
		setHeader("Link", strings.Join(links, ", "))
	}
}

func pageURL(r *http.Request, page, perPage int) string {
	u := url.URL{Path: r.URL.Path}
	q := r.URL.Query()
	q.Set("page", strconv.Itoa(page))
	q.Set("perPage", strconv.Itoa(perPage))
	u.RawQuery = q.Encode()
	return u.String()
}
