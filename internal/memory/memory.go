// Package memory maintains structured narrative knowledge extracted from
// source text: a timeline of dated events and a character registry. A
// Memory is built once, then read concurrently by claim evaluations;
// Build returns it already frozen, so construction and reads never overlap.
package memory

import (
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/canonist/canonist/internal/model"
)

const contextWindow = 100 // chars of context kept around a date match

var (
	yearPattern = regexp.MustCompile(`\b(\d{4})\b`)

	// Date forms recognized in narrative text: bare years plus
	// "January 5, 1815" / "5 January 1815" styles.
	datePatterns = []*regexp.Regexp{
		regexp.MustCompile(`\b(?:January|February|March|April|May|June|July|August|September|October|November|December)\s+\d{1,2},?\s+\d{4}\b`),
		regexp.MustCompile(`\b\d{1,2}\s+(?:January|February|March|April|May|June|July|August|September|October|November|December)\s+\d{4}\b`),
		regexp.MustCompile(`\b\d{4}\b`),
	}

	namePattern = regexp.MustCompile(`\b[A-Z][a-z]+(?:\s+[A-Z][a-z]+)*\b`)
)

// Common capitalized words that are not character names
var nameStoplist = map[string]bool{
	"The": true, "Chapter": true, "Book": true, "Page": true,
	"January": true, "February": true, "March": true, "April": true,
	"May": true, "June": true, "July": true, "August": true,
	"September": true, "October": true, "November": true, "December": true,
}

// Mention records one appearance of a character in the text
type Mention struct {
	ChunkID string
	Context string
}

// Character aggregates everything known about one character
type Character struct {
	Name     string
	Mentions []Mention
	Scopes   []string
}

// Memory is the frozen narrative knowledge for one or more scopes
type Memory struct {
	timeline   []model.TemporalEvent // sorted by year ascending
	characters map[string]*Character
}

// Build extracts the timeline and character registry from the given chunks
// and returns a frozen Memory.
func Build(chunks []model.Chunk) *Memory {
	m := &Memory{
		characters: make(map[string]*Character),
	}

	for _, chunk := range chunks {
		m.extractEvents(chunk)
		m.extractCharacters(chunk)
	}

	sort.SliceStable(m.timeline, func(i, j int) bool {
		return m.timeline[i].Year < m.timeline[j].Year
	})

	return m
}

func (m *Memory) extractEvents(chunk model.Chunk) {
	// A span matched by an earlier, more specific pattern must not also
	// match as a bare year.
	claimed := make([][2]int, 0, 4)

	for _, pattern := range datePatterns {
		for _, loc := range pattern.FindAllStringIndex(chunk.Text, -1) {
			if overlapsAny(loc, claimed) {
				continue
			}
			claimed = append(claimed, [2]int{loc[0], loc[1]})

			raw := chunk.Text[loc[0]:loc[1]]
			m.timeline = append(m.timeline, model.TemporalEvent{
				Year:        ParseYear(raw),
				Description: contextAround(chunk.Text, loc[0], loc[1]),
				ScopeID:     chunk.ScopeID,
				ChunkID:     chunk.ChunkID,
				RawDate:     raw,
			})
		}
	}
}

func (m *Memory) extractCharacters(chunk model.Chunk) {
	for _, name := range namePattern.FindAllString(chunk.Text, -1) {
		if nameStoplist[strings.Fields(name)[0]] {
			continue
		}

		char, ok := m.characters[name]
		if !ok {
			char = &Character{Name: name}
			m.characters[name] = char
		}

		context := chunk.Text
		if len(context) > 200 {
			context = context[:200]
		}
		char.Mentions = append(char.Mentions, Mention{
			ChunkID: chunk.ChunkID,
			Context: context,
		})
		if !containsString(char.Scopes, chunk.ScopeID) {
			char.Scopes = append(char.Scopes, chunk.ScopeID)
		}
	}
}

// Timeline returns a copy of the year-sorted timeline
func (m *Memory) Timeline() []model.TemporalEvent {
	out := make([]model.TemporalEvent, len(m.timeline))
	copy(out, m.timeline)
	return out
}

// TemporalContext returns up to window events before and after the event
// closest to the given date string.
func (m *Memory) TemporalContext(dateStr string, window int) []model.TemporalEvent {
	if len(m.timeline) == 0 || window < 0 {
		return nil
	}

	target := ParseYear(dateStr)

	closest := 0
	minDiff := -1
	for i, event := range m.timeline {
		diff := event.Year - target
		if diff < 0 {
			diff = -diff
		}
		if minDiff < 0 || diff < minDiff {
			minDiff = diff
			closest = i
		}
	}

	start := closest - window
	if start < 0 {
		start = 0
	}
	end := closest + window + 1
	if end > len(m.timeline) {
		end = len(m.timeline)
	}

	out := make([]model.TemporalEvent, end-start)
	copy(out, m.timeline[start:end])
	return out
}

// CharacterTimeline returns all timeline events mentioning a character
func (m *Memory) CharacterTimeline(name string) []model.TemporalEvent {
	lower := strings.ToLower(name)
	var out []model.TemporalEvent
	for _, event := range m.timeline {
		if strings.Contains(strings.ToLower(event.Description), lower) {
			out = append(out, event)
		}
	}
	return out
}

// CharacterMentions returns how often a character appears in the text,
// zero when unknown.
func (m *Memory) CharacterMentions(name string) int {
	if char, ok := m.characters[name]; ok {
		return len(char.Mentions)
	}
	return 0
}

// CharacterCount returns the number of distinct characters in the registry
func (m *Memory) CharacterCount() int {
	return len(m.characters)
}

// ParseYear extracts a four-digit year from a date string, 0 if none
func ParseYear(dateStr string) int {
	match := yearPattern.FindString(dateStr)
	if match == "" {
		return 0
	}
	year, err := strconv.Atoi(match)
	if err != nil {
		return 0
	}
	return year
}

func contextAround(text string, start, end int) string {
	cStart := start - contextWindow
	if cStart < 0 {
		cStart = 0
	}
	cEnd := end + contextWindow
	if cEnd > len(text) {
		cEnd = len(text)
	}
	return strings.TrimSpace(text[cStart:cEnd])
}

func overlapsAny(loc []int, claimed [][2]int) bool {
	for _, c := range claimed {
		if loc[0] < c[1] && loc[1] > c[0] {
			return true
		}
	}
	return false
}

func containsString(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}
