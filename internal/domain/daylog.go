package domain

import "strings"

// FormatLog renders one "HH:MM text #tags" line per row in the user's zone.
func FormatLog(rows []Row, utcOffset int) []string {
	loc := UserZone(utcOffset)
	lines := make([]string, 0, len(rows))
	for _, row := range rows {
		parts := make([]string, 0, len(row.Tags)+2)
		parts = append(parts, row.At.In(loc).Format("15:04"))
		if row.Title != "" {
			parts = append(parts, row.Title)
		}
		parts = append(parts, row.Tags...)
		lines = append(lines, strings.Join(parts, " "))
	}
	return lines
}
