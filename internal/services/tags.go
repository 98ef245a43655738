package services

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// NormalizeTags trims and lower-cases tag names, drops empties and
// duplicates, and returns them sorted. It returns nil for no tags.
func NormalizeTags(names []string) []string {
	seen := make(map[string]struct{}, len(names))
	var out []string
	for _, n := range names {
		n = strings.ToLower(strings.TrimSpace(n))
		if n == "" {
			continue
		}
		if _, dup := seen[n]; dup {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

// ParseTagList splits a pipe-separated tag string ("wifi|parking").
func ParseTagList(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return NormalizeTags(strings.Split(s, "|"))
}

// TagList is a list of tag names that also accepts a pipe-separated string
// in JSON.
type TagList []string

func (t *TagList) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*t = ParseTagList(s)
		return nil
	}
	var list []string
	if err := json.Unmarshal(data, &list); err != nil {
		return fmt.Errorf("services must be a list or a pipe-separated string: %w", err)
	}
	*t = NormalizeTags(list)
	return nil
}
