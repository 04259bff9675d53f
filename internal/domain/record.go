package domain

import "strings"

// Record is a retrieved snippet of an uploaded inventory or shipment row.
type Record struct {
	Content string
	Source  string
}

// JoinRecords renders records in retrieval order, one per line.
// An empty slice yields an empty block.
func JoinRecords(records []Record) string {
	if len(records) == 0 {
		return ""
	}
	parts := make([]string, 0, len(records))
	for _, r := range records {
		parts = append(parts, r.Content)
	}
	return strings.Join(parts, "\n")
}
