package source

import (
	"sort"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/dd0wney/cluso-graphview/pkg/detail"
)

func getStringFromRecord(record *neo4j.Record, key string) string {
	val, ok := record.Get(key)
	if !ok || val == nil {
		return ""
	}
	if str, ok := val.(string); ok {
		return str
	}
	return ""
}

func getInt64FromRecord(record *neo4j.Record, key string) int64 {
	val, ok := record.Get(key)
	if !ok || val == nil {
		return 0
	}
	return toInt64(val)
}

func toInt64(val any) int64 {
	switch v := val.(type) {
	case int64:
		return v
	case int:
		return int64(v)
	case float64:
		return int64(v)
	}
	return 0
}

func getStringSliceFromRecord(record *neo4j.Record, key string) []string {
	val, ok := record.Get(key)
	if !ok || val == nil {
		return nil
	}
	slice, ok := val.([]any)
	if !ok {
		return nil
	}
	result := make([]string, 0, len(slice))
	for _, v := range slice {
		if str, ok := v.(string); ok {
			result = append(result, str)
		}
	}
	return result
}

// summariesFromRecord decodes a collected list of {id, kind, label} maps.
// OPTIONAL MATCH yields one all-null map when there are no neighbours; it is skipped.
func summariesFromRecord(record *neo4j.Record, key string) []detail.Summary {
	out := []detail.Summary{}
	val, ok := record.Get(key)
	if !ok || val == nil {
		return out
	}
	list, ok := val.([]any)
	if !ok {
		return out
	}
	for _, item := range list {
		m, ok := item.(map[string]any)
		if !ok || m["id"] == nil {
			continue
		}
		s := detail.Summary{ID: toInt64(m["id"])}
		s.Kind, _ = m["kind"].(string)
		s.Label, _ = m["label"].(string)
		out = append(out, s)
	}
	sort.Slice(out, func(a, b int) bool { return out[a].ID < out[b].ID })
	return out
}

// nullable maps empty strings to null so coalesce() falls through
func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
