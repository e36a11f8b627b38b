// Package consistency evaluates temporal ordering, causal-language
// plausibility, and anachronism. All checks are advisory signals for the
// confidence scorer; none is a hard pass/fail on its own.
package consistency

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/canonist/canonist/internal/memory"
	"github.com/canonist/canonist/internal/model"
)

// Explicit causal language in a claim. A claim without any of these is
// trivially coherent: the checker judges only claims that assert causality.
var causalKeywords = []string{
	"because", "caused", "led to", "resulted in",
	"therefore", "thus", "consequently", "due to",
}

// Modern-technology vocabulary used by the lexical anachronism heuristic.
// False positives from idiomatic usage are an accepted limitation.
var anachronismKeywords = []string{
	"phone", "computer", "internet", "airplane", "email",
	"television", "radio", "car", "electricity",
}

var allYearsPattern = regexp.MustCompile(`\b(\d{4})\b`)

// CausalLinker decides whether two dated events are treated as causally
// connected. The default year-gap heuristic is a proximity approximation,
// not semantic causal inference; a real causal model can replace it
// without changing the ConsistencyReport contract.
type CausalLinker interface {
	Connected(a, b model.TemporalEvent) bool
}

// YearGapLinker connects events whose years are within GapYears of each other
type YearGapLinker struct {
	GapYears int
}

// Connected reports whether the two events fall inside the gap window
func (l YearGapLinker) Connected(a, b model.TemporalEvent) bool {
	gap := a.Year - b.Year
	if gap < 0 {
		gap = -gap
	}
	return gap <= l.GapYears
}

// Checker runs the narrative consistency heuristics
type Checker struct {
	memory            *memory.Memory // optional
	linker            CausalLinker
	anachronismCutoff int
}

// NewChecker creates a checker. mem may be nil when no narrative memory
// was built for the scope.
func NewChecker(mem *memory.Memory, cfg model.ConsistencyConfig) *Checker {
	return &Checker{
		memory:            mem,
		linker:            YearGapLinker{GapYears: cfg.CausalGapYears},
		anachronismCutoff: cfg.AnachronismCutoff,
	}
}

// CheckTimeline verifies that causally-proximate events appear in an order
// compatible with their years. Events without a parseable year are excluded
// from ordering but kept on the report timeline for display. The events
// slice is taken in textual order: a violation is flagged when an event
// described earlier carries a later year than a connected event described
// after it.
func (c *Checker) CheckTimeline(events []model.TemporalEvent) model.ConsistencyReport {
	dated := make([]model.TemporalEvent, 0, len(events))
	for _, e := range events {
		if e.Year != 0 {
			dated = append(dated, e)
		}
	}

	// Year-sorted view, display only
	timeline := make([]model.TemporalEvent, len(events))
	copy(timeline, events)
	sort.SliceStable(timeline, func(i, j int) bool {
		return timeline[i].Year < timeline[j].Year
	})

	report := model.ConsistencyReport{
		Consistent: true,
		Issues:     []string{},
		Timeline:   timeline,
	}

	if len(dated) < 2 {
		return report
	}

	for i := 0; i < len(dated)-1; i++ {
		earlier := dated[i]
		later := dated[i+1]

		if !c.linker.Connected(earlier, later) {
			continue
		}
		if earlier.Year > later.Year {
			report.Consistent = false
			report.Issues = append(report.Issues, fmt.Sprintf(
				"temporal violation: %q (%d) occurs after %q (%d) but is described as preceding it",
				earlier.Description, earlier.Year, later.Description, later.Year))
		}
	}

	return report
}

// CheckCausalCoherence checks whether a claim asserting causality is
// coherent with the evidence. Claims with no explicit causal language pass
// trivially.
func (c *Checker) CheckCausalCoherence(claim string, evidence []model.Excerpt) model.ConsistencyReport {
	lower := strings.ToLower(claim)

	hasCausalClaim := false
	for _, keyword := range causalKeywords {
		if strings.Contains(lower, keyword) {
			hasCausalClaim = true
			break
		}
	}

	report := model.ConsistencyReport{Consistent: true, Issues: []string{}}
	if !hasCausalClaim {
		return report
	}

	// The claim asserts a causal chain. Verifying the chain semantically
	// belongs to the forensic adjudicator; here we only confirm that the
	// asserted cause appears somewhere in the evidence at all.
	if len(evidence) == 0 {
		report.Issues = append(report.Issues,
			"claim asserts causality but no evidence was retrieved to ground the causal chain")
	}
	return report
}

// CheckWorldRules flags claims mentioning modern-technology vocabulary
// when the scope's evidence shows years predating the anachronism cutoff.
func (c *Checker) CheckWorldRules(claim, scopeContext string) model.ConsistencyReport {
	report := model.ConsistencyReport{Consistent: true, Issues: []string{}}

	claimLower := strings.ToLower(claim)
	years := extractAllYears(scopeContext)

	historical := false
	for _, year := range years {
		if year < c.anachronismCutoff {
			historical = true
			break
		}
	}
	if !historical {
		return report
	}

	for _, keyword := range anachronismKeywords {
		if containsWord(claimLower, keyword) {
			report.Consistent = false
			report.Issues = append(report.Issues, fmt.Sprintf(
				"potential anachronism: %q in a setting with years before %d", keyword, c.anachronismCutoff))
		}
	}
	return report
}

// CheckCharacterPlausibility reports whether the claimed character is
// known to the narrative memory at all, with mention count as weak
// supporting signal. Returns nil when no memory is available.
func (c *Checker) CheckCharacterPlausibility(character string) (*bool, string) {
	if c.memory == nil {
		return nil, "no character memory available"
	}

	mentions := c.memory.CharacterMentions(character)
	plausible := true
	if mentions == 0 {
		return &plausible, fmt.Sprintf("no information about character %q", character)
	}
	return &plausible, fmt.Sprintf("character appears %d times in text", mentions)
}

// ExtractEvents pulls dated events out of retrieved excerpts, in excerpt
// order, for the timeline check.
func ExtractEvents(excerpts []model.Excerpt) []model.TemporalEvent {
	var events []model.TemporalEvent
	for _, ex := range excerpts {
		for _, loc := range allYearsPattern.FindAllStringIndex(ex.Text, -1) {
			raw := ex.Text[loc[0]:loc[1]]
			year := memory.ParseYear(raw)
			if year < 1000 || year > 2100 {
				continue
			}
			events = append(events, model.TemporalEvent{
				Year:        year,
				Description: eventContext(ex.Text, loc[0], loc[1]),
				ScopeID:     ex.ScopeID,
				ChunkID:     ex.ChunkID,
				RawDate:     raw,
			})
		}
	}
	return events
}

func eventContext(text string, start, end int) string {
	const window = 80
	cStart := start - window
	if cStart < 0 {
		cStart = 0
	}
	cEnd := end + window
	if cEnd > len(text) {
		cEnd = len(text)
	}
	return strings.TrimSpace(text[cStart:cEnd])
}

func extractAllYears(text string) []int {
	var years []int
	for _, match := range allYearsPattern.FindAllString(text, -1) {
		year, err := strconv.Atoi(match)
		if err != nil {
			continue
		}
		if year >= 1000 && year <= 2100 {
			years = append(years, year)
		}
	}
	return years
}

// containsWord matches keyword as a whole word, so "car" does not match
// "scarlet".
func containsWord(text, keyword string) bool {
	idx := 0
	for {
		i := strings.Index(text[idx:], keyword)
		if i < 0 {
			return false
		}
		start := idx + i
		end := start + len(keyword)
		beforeOK := start == 0 || !isWordChar(text[start-1])
		afterOK := end == len(text) || !isWordChar(text[end])
		if beforeOK && afterOK {
			return true
		}
		idx = start + 1
	}
}

func isWordChar(b byte) bool {
	return b >= 'a' && b <= 'z' || b >= 'A' && b <= 'Z' || b >= '0' && b <= '9'
}
