package calendar

const (
	DefaultPageSize = 20
	MaxPageSize     = 200
)

// Page is one page of items plus navigation metadata.
type Page[T any] struct {
	Items    []T
	Page     int // 1-based
	PageSize int
	HasNext  bool
	HasPrev  bool
	Total    int
}

// Window normalizes page/pageSize and returns the matching limit/offset
// for a database query.
func Window(page, pageSize int) (p, size, limit, offset int) {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	if pageSize > MaxPageSize {
		pageSize = MaxPageSize
	}
	if page <= 0 {
		page = 1
	}
	return page, pageSize, pageSize, (page - 1) * pageSize
}

// NewPage wraps items that were already paged by the database.
func NewPage[T any](items []T, page, pageSize int, total int64) Page[T] {
	page, pageSize, _, offset := Window(page, pageSize)
	return Page[T]{
		Items:    items,
		Page:     page,
		PageSize: pageSize,
		HasPrev:  page > 1,
		HasNext:  int64(offset+len(items)) < total,
		Total:    int(total),
	}
}

// Paginate pages an in-memory slice.
func Paginate[T any](items []T, page, pageSize int) Page[T] {
	page, pageSize, _, start := Window(page, pageSize)

	total := len(items)
	if start > total {
		start = total
	}
	end := start + pageSize
	if end > total {
		end = total
	}

	return Page[T]{
		Items:    items[start:end],
		Page:     page,
		PageSize: pageSize,
		HasNext:  end < total,
		HasPrev:  page > 1,
		Total:    total,
	}
}
