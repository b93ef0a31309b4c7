package notifications

// Merge returns live items in push order followed by fetched items whose ID
// is not already present, in fetch order. Inputs are not modified.
func Merge(live, fetched []Notification) []Notification {
	out := make([]Notification, 0, len(live)+len(fetched))
	seen := make(map[string]struct{}, len(live)+len(fetched))

	for _, src := range [][]Notification{live, fetched} {
		for _, n := range src {
			if _, dup := seen[n.ID]; dup {
				continue
			}
			seen[n.ID] = struct{}{}
			out = append(out, n)
		}
	}
	return out
}

// CountUnread returns how many items are unread
func CountUnread(items []Notification) int {
	unread := 0
	for _, n := range items {
		if !n.Read {
			unread++
		}
	}
	return unread
}
