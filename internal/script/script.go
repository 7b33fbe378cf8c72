// Package script generates and trims podcast dialogue scripts through
// hosted chat-completion models. Failures here are terminal for the
// invocation: there is no fallback content and no automatic retry, the
// caller regenerates manually.
package script

import (
	"context"
	"fmt"

	"sci-cast/internal/errs"
	"sci-cast/internal/llm"
)

// maxSourceChars bounds how much extracted text goes into the prompt.
const maxSourceChars = 8000

// Completer issues one chat completion. Satisfied by *llm.Client.
type Completer interface {
	Complete(ctx context.Context, req llm.Request) (string, error)
}

// Generator produces scripts on Cerebras and trims them on OpenAI.
// Either completer may be nil when its credential is not configured,
// in which case the corresponding operation fails with a ProviderError.
type Generator struct {
	generator Completer
	trimmer   Completer
}

// NewGenerator builds a script Generator.
func NewGenerator(generator, trimmer Completer) *Generator {
	return &Generator{generator: generator, trimmer: trimmer}
}

// Generate turns extracted document text into a dialogue-formatted
// podcast script with explicit speaker labels.
func (g *Generator) Generate(ctx context.Context, extractedText, title, hostName, guestName, category string) (string, error) {
	if extractedText == "" {
		return "", errs.Validation("no text provided")
	}
	if g.generator == nil {
		return "", &errs.ProviderError{Provider: "cerebras", Err: fmt.Errorf("no API credential configured")}
	}

	source := extractedText
	if len(source) > maxSourceChars {
		source = source[:maxSourceChars]
	}

	secondSpeaker := "Researcher"
	speakerIntro := "the researcher behind the work"
	if guestName != "" {
		secondSpeaker = "Guest"
		speakerIntro = fmt.Sprintf("guest %s", guestName)
	}
	if category == "" {
		category = "Science"
	}

	system := "You are an expert podcast content creator who can transform academic content into engaging podcast material."
	user := fmt.Sprintf(`Write a complete podcast script for an episode titled "%s" in the %s category.

The host is %s, in conversation with %s. Format the script as a dialogue with explicit speaker labels: every line spoken by the host starts with "Host:" and every line spoken by the other speaker starts with "%s:".

Cover the main research question, the methodology, the most significant findings, and why the work matters. Keep the tone conversational and engaging.

Source material:

%s`, title, category, hostName, speakerIntro, secondSpeaker, source)

	out, err := g.generator.Complete(ctx, llm.Request{
		System:      system,
		User:        user,
		Temperature: 0.7,
		MaxTokens:   2048,
		TopP:        1,
	})
	if err != nil {
		return "", fmt.Errorf("generate script: %w", err)
	}
	return out, nil
}

// Trim shortens a script to approximately targetLength characters while
// preserving structure and speaker labels. Scripts already at or under
// the target are returned unchanged without any provider call.
func (g *Generator) Trim(ctx context.Context, script string, targetLength int, title, hostName, guestName string) (string, error) {
	if script == "" {
		return "", errs.Validation("no script provided")
	}
	if len(script) <= targetLength {
		return script, nil
	}
	if g.trimmer == nil {
		return "", &errs.ProviderError{Provider: "openai", Err: fmt.Errorf("no API credential configured")}
	}

	system := fmt.Sprintf(`You are an expert podcast editor who specializes in condensing scripts while preserving their key content and conversational flow.
Your goal is to shorten a podcast script to approximately %d characters while:
1. Preserving the overall structure and speaker turns
2. Maintaining all key points and essential information
3. Keeping the introduction and conclusion intact
4. Removing redundant information and excessive details
5. Preserving the conversational tone and flow
6. Ensuring all speaker transitions remain clear (Host: and Guest/Researcher: labels)

Return ONLY the edited script with no additional explanations or comments.`, targetLength)

	user := fmt.Sprintf(`Condense this podcast script to approximately %d characters while preserving its structure, key information, and conversational tone.

Keep the title, intro, and conclusion intact. Maintain all speaker labels exactly as they appear.

Script to condense:
%s`, targetLength, script)

	out, err := g.trimmer.Complete(ctx, llm.Request{
		System:      system,
		User:        user,
		Temperature: 0.3,
		MaxTokens:   4096,
	})
	if err != nil {
		return "", fmt.Errorf("trim script: %w", err)
	}
	return out, nil
}
