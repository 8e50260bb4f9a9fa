package query

import (
	"math"
	"net/url"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/romariotrain/vidtube/internal/models"
)

const (
	DefaultPage  = 1
	DefaultLimit = 10
	// MaxPageParam bounds page and limit so Skip cannot overflow.
	MaxPageParam = math.MaxInt32
)

type SortField string

const (
	SortByCreatedAt SortField = "createdAt"
	SortByUpdatedAt SortField = "updatedAt"
	SortByTitle     SortField = "title"
	SortByDuration  SortField = "duration"
)

// sortColumns is the allow-list of sortable fields and their store columns.
var sortColumns = map[SortField]string{
	SortByCreatedAt: "created_at",
	SortByUpdatedAt: "updated_at",
	SortByTitle:     "title",
	SortByDuration:  "duration",
}

// Column returns the store column for f. ok is false for fields outside the allow-list.
func (f SortField) Column() (string, bool) {
	c, ok := sortColumns[f]
	return c, ok
}

// Filter narrows the set of videos. Zero values match everything.
type Filter struct {
	// Search is matched case-insensitively as a substring of title or description.
	Search  string
	OwnerID uuid.UUID
}

func (f Filter) Matches(v *models.Video) bool {
	if f.OwnerID != uuid.Nil && v.OwnerID != f.OwnerID {
		return false
	}
	if f.Search == "" {
		return true
	}
	needle := strings.ToLower(f.Search)
	return strings.Contains(strings.ToLower(v.Title), needle) ||
		strings.Contains(strings.ToLower(v.Description), needle)
}

type Sort struct {
	Field SortField
	Desc  bool
}

type VideoQuery struct {
	Filter Filter
	Sort   Sort
	Page   int
	Limit  int
}

func (q VideoQuery) Skip() int {
	return (q.Page - 1) * q.Limit
}

// Default returns the query used when the request carries no parameters.
func Default() VideoQuery {
	return VideoQuery{
		Sort:  Sort{Field: SortByCreatedAt, Desc: true},
		Page:  DefaultPage,
		Limit: DefaultLimit,
	}
}

// Build turns untrusted request parameters into a bounded VideoQuery.
func Build(values url.Values) (VideoQuery, error) {
	q := Default()

	var err error
	if q.Page, err = positiveInt(values.Get("page"), DefaultPage, MaxPageParam); err != nil {
		return VideoQuery{}, models.InvalidArgument("Invalid page")
	}
	if q.Limit, err = positiveInt(values.Get("limit"), DefaultLimit, MaxPageParam); err != nil {
		return VideoQuery{}, models.InvalidArgument("Invalid limit")
	}

	q.Filter.Search = strings.TrimSpace(values.Get("query"))

	if raw := values.Get("userId"); raw != "" {
		id, ok := models.ParseID(raw)
		if !ok {
			return VideoQuery{}, models.InvalidArgument("Invalid userId")
		}
		q.Filter.OwnerID = id
	}

	if raw := values.Get("sortBy"); raw != "" {
		field := SortField(raw)
		if _, ok := field.Column(); !ok {
			return VideoQuery{}, models.InvalidArgument("Invalid sortBy")
		}
		q.Sort.Field = field
	}

	if raw, ok := values["sortType"]; ok && len(raw) > 0 {
		q.Sort.Desc = raw[0] == "desc"
	}

	return q, nil
}

// positiveInt parses raw as an integer in [1, max]. An empty raw yields def.
func positiveInt(raw string, def, max int) (int, error) {
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, err
	}
	if n < 1 || n > max {
		return 0, strconv.ErrRange
	}
	return n, nil
}
