// Package normalize turns a generated podcast script into speech-ready
// text. The transform is deterministic, does no I/O and never fails:
// input a rule does not recognize passes through untouched.
package normalize

import (
	"fmt"
	"regexp"
	"strings"
)

// speakerRe matches a leading speaker label such as "Host:", "Guest:",
// "Speaker 1:" or any bare word followed by a colon at line start.
var speakerRe = regexp.MustCompile(`(?im)^(?:Host|Guest|Researcher|Speaker \d+|\w+):\s`)

// stripRules remove structural and non-speech markup. Order matters:
// bold markers must go before the bare-asterisk rule, bracketed content
// before whitespace collapsing.
var stripRules = []struct {
	re   *regexp.Regexp
	repl string
}{
	// Episode title markers.
	{regexp.MustCompile(`(?m)^\*\*Episode Title:[^*]+\*\*$`), ""},
	{regexp.MustCompile(`(?m)^Episode Title:[^\n]+$`), ""},
	// Timestamp ranges like (00:00 - 05:00).
	{regexp.MustCompile(`\(\d+:\d+\s*-\s*\d+:\d+\)`), ""},
	// Intro/outro music and segment markers.
	{regexp.MustCompile(`(?m)^\*\*?Intro Music[^*\n]*\*\*?$`), ""},
	{regexp.MustCompile(`(?m)^\*\*?Outro Music[^*\n]*\*\*?$`), ""},
	{regexp.MustCompile(`(?m)^\*\*?Segment [^*\n]*\*\*?$`), ""},
	// Markdown headings, bold and italics.
	{regexp.MustCompile(`(?m)^#+\s+.+$`), ""},
	{regexp.MustCompile(`\*\*([^*]+)\*\*`), "$1"},
	{regexp.MustCompile(`\*([^*]+)\*`), "$1"},
	// Bracketed stage directions.
	{regexp.MustCompile(`\[[^\[\]]+\]`), ""},
	// Parenthetical citations containing a 4-digit year.
	{regexp.MustCompile(`\([^)]*\d{4}[^)]*\)`), ""},
	// Sound, music and pause notes.
	{regexp.MustCompile(`(?i)\([^)]*(?:sound effect|music|pause|beat|silence)[^)]*\)`), ""},
	// Transition markers in brackets or parentheses.
	{regexp.MustCompile(`(?i)\[[^\[\]]*transition[^\[\]]*\]`), ""},
	{regexp.MustCompile(`(?i)\([^)]*transition[^)]*\)`), ""},
	// Horizontal rules.
	{regexp.MustCompile(`(?m)^-{3,}$`), ""},
}

var (
	whitespaceRe = regexp.MustCompile(`\s+`)
	blankLineRe  = regexp.MustCompile(`\n\s*\n`)
	sentenceRe   = regexp.MustCompile(`([.!?])\s+`)
)

// Normalize prepares raw script text for a speech engine. Speaker labels
// are protected behind placeholder tokens while markup is stripped, then
// restored as "Label. " so the engine vocalizes a pause instead of the
// word "colon". A period is injected after sentence-ending punctuation to
// slow down pacing.
func Normalize(raw string) string {
	var labels []string
	text := speakerRe.ReplaceAllStringFunc(raw, func(m string) string {
		labels = append(labels, m)
		return fmt.Sprintf("__SPEAKER_%d__", len(labels)-1)
	})

	text = stripMarkup(text)
	text = collapseWhitespace(text)

	for i, label := range labels {
		placeholder := fmt.Sprintf("__SPEAKER_%d__", i)
		spoken := strings.TrimSpace(strings.Replace(label, ":", "", 1)) + ". "
		text = strings.ReplaceAll(text, placeholder, spoken)
	}

	return sentenceRe.ReplaceAllString(text, "$1. ")
}

func stripMarkup(text string) string {
	for _, rule := range stripRules {
		text = rule.re.ReplaceAllString(text, rule.repl)
	}
	return text
}

func collapseWhitespace(text string) string {
	text = whitespaceRe.ReplaceAllString(text, " ")
	text = blankLineRe.ReplaceAllString(text, "\n")
	return strings.TrimSpace(text)
}
