package extract

import (
	"github.com/rezonia/invoice-extractor/internal/model"
)

// Matcher tries one line layout against a single trimmed text line.
// A nil result means the layout did not claim the line (shape mismatch or
// failed arithmetic check) and the next matcher in the chain gets a turn.
type Matcher interface {
	// Match returns the extracted line item, or nil if the line is not claimed
	Match(line string) *model.LineItem

	// Layout returns the layout this matcher handles
	Layout() model.Layout
}

// Chain holds all registered matchers
type Chain struct {
	matchers []Matcher
}

// NewChain creates the chain with all matchers.
// Order matters: stricter, more structured layouts must come before looser
// ones, and the legacy matcher always claims keyword-gated lines so it runs last.
func NewChain() *Chain {
	return &Chain{
		matchers: []Matcher{
			NewGeneralMatcher(),    // six columns incl. tax, 10% tolerance
			NewExpressMatcher(),    // "CODE : EL" + prose description, 1% tolerance
			NewExpressAltMatcher(), // "CODE : E[L]" + item numbers, synthesized description
			NewLegacyMatcher(),     // keyword-gated fallback, never rejects
		},
	}
}

// Match runs the line through the chain in priority order and returns the
// first claimed item, or nil if no matcher claims the line.
func (c *Chain) Match(line string) *model.LineItem {
	for _, m := range c.matchers {
		if item := m.Match(line); item != nil {
			item.Layout = m.Layout()
			return item
		}
	}
	return nil
}

// Register adds a custom matcher to the chain.
// Added at the beginning so custom matchers take priority.
func (c *Chain) Register(m Matcher) {
	c.matchers = append([]Matcher{m}, c.matchers...)
}

// Matcher returns the matcher for a specific layout
func (c *Chain) Matcher(layout model.Layout) Matcher {
	for _, m := range c.matchers {
		if m.Layout() == layout {
			return m
		}
	}
	return nil
}
