// Package extract turns uploaded document bytes into plain text for
// script generation. PDF extraction is a prioritized chain of strategies
// ending in a local heuristic; a provider failure never propagates to
// the caller, it degrades to fallback text or a fixed placeholder.
package extract

import (
	"context"
	"encoding/base64"
	"fmt"
	"log"
	"regexp"
	"strings"

	"sci-cast/internal/errs"
	"sci-cast/internal/llm"
)

// Source tags which strategy produced a piece of extracted text.
type Source string

const (
	// SourceCerebras marks text summarized for podcast use by Cerebras.
	SourceCerebras Source = "cerebras"
	// SourceOpenAI marks raw text extracted by the OpenAI model.
	SourceOpenAI Source = "openai"
	// SourceFallback marks text from the local line heuristic.
	SourceFallback Source = "fallback"
)

// Content is the transient extraction result: the text plus the identity
// of the strategy that produced it. Never persisted.
type Content struct {
	Text   string
	Source Source
}

const (
	// Model-extracted text below this length is considered noise and the
	// pipeline falls through to the heuristic.
	minModelChars = 200
	// Heuristic text below this length means the document is unreadable.
	minFallbackChars = 500
	// Heuristic text is truncated to this length before returning.
	maxFallbackChars = 10000
	// Only this much of the encoded document is sent to the model.
	maxEncodedPrefix = 50000

	couldNotExtract = "The system could not extract meaningful content from this PDF. Please try a different file or format."
)

// Completer issues one chat completion. Satisfied by *llm.Client.
type Completer interface {
	Complete(ctx context.Context, req llm.Request) (string, error)
}

// Pipeline extracts text from uploaded documents. Either model may be
// nil when its credential is not configured; the pipeline then skips
// straight to the affected stage's fallback.
type Pipeline struct {
	extractor  Completer // raw text extraction (OpenAI)
	summarizer Completer // podcast summarization (Cerebras)
}

// New builds an extraction pipeline.
func New(extractor, summarizer Completer) *Pipeline {
	return &Pipeline{extractor: extractor, summarizer: summarizer}
}

// Extract dispatches on the declared type and extension. It returns an
// error only for unsupported input; provider failures on the PDF path
// resolve to fallback text or the fixed placeholder message. The caller
// enforces the upload size limit.
func (p *Pipeline) Extract(ctx context.Context, data []byte, filename, mimeType string) (string, error) {
	name := strings.ToLower(filename)

	switch {
	case mimeType == "text/plain" || strings.HasSuffix(name, ".txt"):
		return string(data), nil

	case mimeType == "application/pdf" || strings.HasSuffix(name, ".pdf"):
		return p.FromPDF(ctx, data, filename).Text, nil

	case mimeType == "application/vnd.openxmlformats-officedocument.wordprocessingml.document" ||
		strings.HasSuffix(name, ".docx"):
		// Best-effort raw decode; a proper converter would do better but
		// this matches the quality bar of the rest of the office path.
		return printableText(data), nil

	default:
		return "", errs.Validation("unsupported file type")
	}
}

// FromPDF runs the extraction strategies in priority order: model
// extraction plus summarization, model extraction alone, then the local
// line heuristic. The first strategy whose output passes its length
// predicate wins.
func (p *Pipeline) FromPDF(ctx context.Context, data []byte, filename string) Content {
	encoded := base64.StdEncoding.EncodeToString(data)
	if len(encoded) > maxEncodedPrefix {
		encoded = encoded[:maxEncodedPrefix]
	}

	extracted, err := p.extractWithModel(ctx, encoded, filename)
	if err != nil {
		log.Printf("model extraction for %s failed: %v", filename, err)
	}
	if err == nil && len(extracted) > minModelChars {
		summary, serr := p.summarizeForPodcast(ctx, extracted, filename)
		if serr == nil && summary != "" {
			return Content{
				Text:   "[Podcast summary created with Cerebras]\n\n" + summary,
				Source: SourceCerebras,
			}
		}
		if serr != nil {
			log.Printf("podcast summarization for %s failed: %v", filename, serr)
		}
		return Content{
			Text:   "[Text extracted with OpenAI]\n\n" + extracted,
			Source: SourceOpenAI,
		}
	}

	if fallback := heuristicText(data); len(fallback) > minFallbackChars {
		if len(fallback) > maxFallbackChars {
			fallback = fallback[:maxFallbackChars]
		}
		return Content{
			Text:   "[Extracted using fallback method]\n\n" + fallback,
			Source: SourceFallback,
		}
	}

	return Content{Text: couldNotExtract, Source: SourceFallback}
}

func (p *Pipeline) extractWithModel(ctx context.Context, encoded, filename string) (string, error) {
	if p.extractor == nil {
		return "", &errs.ProviderError{Provider: "openai", Err: fmt.Errorf("no API credential configured")}
	}
	return p.extractor.Complete(ctx, llm.Request{
		System:      "You are a PDF content extractor. Extract the main text content from the provided PDF data.",
		User:        fmt.Sprintf("Extract the main textual content from this PDF:\n\nFilename: %s\nContent: %s", filename, encoded),
		Temperature: 0.1,
		MaxTokens:   4000,
	})
}

func (p *Pipeline) summarizeForPodcast(ctx context.Context, extracted, filename string) (string, error) {
	if p.summarizer == nil {
		return "", &errs.ProviderError{Provider: "cerebras", Err: fmt.Errorf("no API credential configured")}
	}
	source := extracted
	if len(source) > 8000 {
		source = source[:8000]
	}
	return p.summarizer.Complete(ctx, llm.Request{
		System: "You are an expert podcast content creator who can transform academic content into engaging podcast material.",
		User: fmt.Sprintf("Create an engaging podcast script based on this extracted text from %s:\n\n%s\n\n"+
			"Focus on:\n- The main research question and objectives\n- Key methodology used\n"+
			"- Most significant findings and results\n- The importance and implications of the research\n"+
			"- Any particularly interesting or novel aspects\n\n"+
			"Structure the content as a well-organized podcast script.", filename, source),
		Temperature: 0.2,
		MaxTokens:   2048,
		TopP:        1,
	})
}

var (
	nonPrintableRe = regexp.MustCompile(`[^\x20-\x7E\n]`)
	numericLineRe  = regexp.MustCompile(`^[0-9\s]*$`)
	bracketLineRe  = regexp.MustCompile(`^[\[\](){}<>\s]*$`)
)

// heuristicText is the last-resort PDF strategy: strip non-printable
// bytes, then keep only lines that look like prose rather than PDF
// structure artifacts.
func heuristicText(data []byte) string {
	var lines []string
	for _, line := range strings.Split(printableText(data), "\n") {
		line = strings.TrimSpace(line)
		if len(line) <= 10 {
			continue
		}
		if numericLineRe.MatchString(line) || bracketLineRe.MatchString(line) {
			continue
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}

func printableText(data []byte) string {
	return strings.TrimSpace(nonPrintableRe.ReplaceAllString(string(data), " "))
}
