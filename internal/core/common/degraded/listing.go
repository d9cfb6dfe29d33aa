// Package degraded carries listing results that may have been served from
// placeholder data because the backing store was unavailable.
package degraded

// SampleTag marks every placeholder record so it is recognisable on screen.
const SampleTag = "(SAMPLE DATA)"

// Listing is either live data (Degraded=false) or the placeholder set served
// in its place, together with the storage fault that caused the fallback.
type Listing[T any] struct {
	Items    []T
	Degraded bool
	Cause    error
}

func Live[T any](items []T) Listing[T] {
	if items == nil {
		items = []T{}
	}
	return Listing[T]{Items: items}
}

func Fallback[T any](items []T, cause error) Listing[T] {
	return Listing[T]{Items: items, Degraded: true, Cause: cause}
}

// CauseMessage returns the fallback cause as text, or "" for live data.
func (l Listing[T]) CauseMessage() string {
	if l.Cause == nil {
		return ""
	}
	return l.Cause.Error()
}
