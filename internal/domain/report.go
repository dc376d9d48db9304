package domain

import (
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"
)

// TotalTag is the reserved bucket summing every attributed duration.
const TotalTag = "total"

// TagStat accumulates seconds credited to one tag.
type TagStat struct {
	Tag         string
	Seconds     int64
	Texts       []string // distinct titles in first-seen order
	TextSeconds map[string]int64
}

func newTagStat(tag string) *TagStat {
	return &TagStat{Tag: tag, TextSeconds: make(map[string]int64)}
}

func (s *TagStat) add(text string, sec int64) {
	s.Seconds += sec
	if _, ok := s.TextSeconds[text]; !ok {
		s.Texts = append(s.Texts, text)
	}
	s.TextSeconds[text] += sec
}

// Report is the per-tag duration breakdown of a window.
type Report struct {
	Tags  []*TagStat // insertion order
	Total *TagStat

	index map[string]*TagStat
}

// Tag returns the stat for tag, or nil if it was never seen.
func (r *Report) Tag(tag string) *TagStat {
	if tag == TotalTag {
		return r.Total
	}
	return r.index[tag]
}

// Aggregate credits the time elapsed since the previous row to every tag of
// the current row. The first row only sets the starting point. The total
// bucket is credited once per tag occurrence, so a row with two tags counts
// its delta twice.
func Aggregate(rows []Row) *Report {
	r := &Report{
		Total: newTagStat(TotalTag),
		index: make(map[string]*TagStat),
	}
	if len(rows) < 2 {
		return r
	}

	prev := rows[0].At
	for _, row := range rows[1:] {
		delta := int64(row.At.Sub(prev).Seconds())
		for _, tag := range row.Tags {
			st, ok := r.index[tag]
			if !ok {
				st = newTagStat(tag)
				r.index[tag] = st
				r.Tags = append(r.Tags, st)
			}
			st.add(row.Title, delta)
			r.Total.Seconds += delta
		}
		prev = row.At
	}
	return r
}

// String renders tags sorted ascending by seconds, then a blank line and the
// total. The tag column is padded to the longest tag name.
func (r *Report) String() string {
	sorted := make([]*TagStat, len(r.Tags))
	copy(sorted, r.Tags)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Seconds < sorted[j].Seconds })

	width := utf8.RuneCountInString(r.Total.Tag)
	for _, st := range sorted {
		if n := utf8.RuneCountInString(st.Tag); n > width {
			width = n
		}
	}

	lines := make([]string, 0, len(sorted)+2)
	for _, st := range sorted {
		items := make([]string, 0, len(st.Texts))
		for _, text := range st.Texts {
			items = append(items, fmt.Sprintf("%s (%s)", text, FormatDuration(st.TextSeconds[text])))
		}
		lines = append(lines, fmt.Sprintf("%-*s %s %s", width, st.Tag, FormatDuration(st.Seconds), strings.Join(items, ", ")))
	}
	lines = append(lines, "", fmt.Sprintf("%-*s %s", width, r.Total.Tag, FormatDuration(r.Total.Seconds)))
	return strings.Join(lines, "\n")
}

// ComputeReport aggregates rows and renders the report.
func ComputeReport(rows []Row) string {
	return Aggregate(rows).String()
}

// FormatDuration renders seconds as H:MM:SS. Hours are not wrapped at 24.
func FormatDuration(sec int64) string {
	sign := ""
	if sec < 0 {
		sign = "-"
		sec = -sec
	}
	return fmt.Sprintf("%s%d:%02d:%02d", sign, sec/3600, sec%3600/60, sec%60)
}
