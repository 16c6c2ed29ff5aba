package filter

// DefaultPageSize applies when a caller passes a non-positive page size.
const DefaultPageSize = 10

// Page is one visible window of a sorted collection.
type Page[T any] struct {
	Items      []T `json:"items"`
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	Total      int `json:"total"`
	TotalPages int `json:"total_pages"`
}

// TotalPages returns ceil(total/pageSize), at least 1.
func TotalPages(total, pageSize int) int {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	if total <= 0 {
		return 1
	}
	return (total + pageSize - 1) / pageSize
}

// ClampPage keeps a 1-indexed page inside [1, TotalPages]. Call it whenever
// the filtered total changes so a page past the end never renders empty.
func ClampPage(current, total, pageSize int) int {
	if current < 1 {
		return 1
	}
	if last := TotalPages(total, pageSize); current > last {
		return last
	}
	return current
}

// Paginate slices items[(page-1)*size : page*size] after clamping the page.
func Paginate[T any](items []T, pageSize, currentPage int) Page[T] {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	page := ClampPage(currentPage, len(items), pageSize)
	start := (page - 1) * pageSize
	end := min(start+pageSize, len(items))

	window := make([]T, 0, end-start)
	window = append(window, items[start:end]...)
	return Page[T]{
		Items:      window,
		Page:       page,
		PageSize:   pageSize,
		Total:      len(items),
		TotalPages: TotalPages(len(items), pageSize),
	}
}
