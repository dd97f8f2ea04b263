package nostr

import (
	"encoding/json"
	"slices"
)

// Subscription filter (NIP-01 `REQ`). Tag filters are keyed by the single-letter tag name
// without the leading `#`.
type Filter struct {
	IDs     []string
	Kinds   []int
	Authors []string
	Tags    map[string][]string
	Since   int64
	Until   int64
	Limit   int
}

func (f Filter) MarshalJSON() ([]byte, error) {
	out := map[string]any{}
	if len(f.IDs) > 0 {
		out["ids"] = f.IDs
	}
	if len(f.Kinds) > 0 {
		out["kinds"] = f.Kinds
	}
	if len(f.Authors) > 0 {
		out["authors"] = f.Authors
	}
	for k, v := range f.Tags {
		out["#"+k] = v
	}
	if f.Since > 0 {
		out["since"] = f.Since
	}
	if f.Until > 0 {
		out["until"] = f.Until
	}
	if f.Limit > 0 {
		out["limit"] = f.Limit
	}
	return json.Marshal(out)
}

// Reports whether the event would be delivered for this filter.
func (f Filter) Matches(evt *Event) bool {
	if evt == nil {
		return false
	}
	if len(f.IDs) > 0 && !slices.Contains(f.IDs, evt.ID) {
		return false
	}
	if len(f.Kinds) > 0 && !slices.Contains(f.Kinds, evt.Kind) {
		return false
	}
	if len(f.Authors) > 0 && !slices.Contains(f.Authors, evt.PubKey) {
		return false
	}
	for name, values := range f.Tags {
		found := evt.Tags.Find(func(t Tag) bool {
			return len(t) >= 2 && t[0] == name && slices.Contains(values, t[1])
		})
		if found == nil {
			return false
		}
	}
	if f.Since > 0 && evt.CreatedAt < f.Since {
		return false
	}
	if f.Until > 0 && evt.CreatedAt > f.Until {
		return false
	}
	return true
}
