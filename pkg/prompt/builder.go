// Package prompt assembles the answer-generation prompts from retrieved
// source sentences.
package prompt

import (
	"fmt"
	"strings"

	"github.com/tigernone/corpusqa/pkg/store"
)

const answerTemplate = `You answer questions using ONLY the source sentences below.
Cite sentences by their number, e.g. [3]. If the sources do not contain the
answer, say so plainly instead of guessing.

Sources:
%s

Question: %s

Answer:`

const continueTemplate = `You answer questions using ONLY the source sentences below.
These are ADDITIONAL sources found after your previous answer was judged
insufficient. Cite sentences by their number, e.g. [3]. If even these sources
do not contain the answer, say so plainly.

Additional sources:
%s

Question: %s

Answer:`

// Answer builds the prompt for the first batch of a session.
func Answer(question string, sentences []store.Sentence) string {
	return fmt.Sprintf(answerTemplate, formatSources(sentences), question)
}

// Continuation builds the prompt for a follow-up batch of the same question.
func Continuation(question string, sentences []store.Sentence) string {
	return fmt.Sprintf(continueTemplate, formatSources(sentences), question)
}

func formatSources(sentences []store.Sentence) string {
	if len(sentences) == 0 {
		return "(no sources found)"
	}
	var sb strings.Builder
	for i, s := range sentences {
		fmt.Fprintf(&sb, "[%d] %s\n", i+1, s.Text)
	}
	return strings.TrimRight(sb.String(), "\n")
}
