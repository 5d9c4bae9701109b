package content

// nextID returns max(existing ids)+1, or 1 for an empty collection.
func nextID[T any](items []T, id func(T) int) int {
	maxID := 0
	for i := range items {
		if v := id(items[i]); v > maxID {
			maxID = v
		}
	}

	return maxID + 1
}

func indexByID[T any](items []T, id func(T) int, want int) int {
	for i := range items {
		if id(items[i]) == want {
			return i
		}
	}

	return -1
}

func remove[T any](items []T, i int) []T {
	result := make([]T, 0, len(items)-1)
	result = append(result, items[:i]...)
	return append(result, items[i+1:]...)
}

func prepend[T any](items []T, item T) []T {
	result := make([]T, 0, len(items)+1)
	result = append(result, item)
	return append(result, items...)
}

func articleID(a Article) int     { return a.ID }
func interviewID(i Interview) int { return i.ID }
