package openai

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/kailas-cloud/snipdex/internal/domain/dedup"
	"github.com/kailas-cloud/snipdex/internal/domain/judge"
)

// minSummaryWords is the shortest summary accepted from the judge.
const minSummaryWords = 8

const (
	summarizePrompt = `You write functional-purpose summaries of test automation snippets for duplicate detection.
Reply with exactly %d words describing what the snippet does. No punctuation lists, no preamble.`

	verifyPrompt = `You decide whether two test automation snippets have the same functional intent and workflow.
Reply on the first line with one of:
DUPLICATE|<confidence 0-100>
UNIQUE
UNCERTAIN
You may add a one-sentence reason on the second line.`

	rerankPrompt = `You rank test automation snippets by how well they match the user's intent.
For every snippet you consider relevant reply with one line "<id> | <confidence 0-100>".
Use the IDs exactly as given. No other text.`
)

// Judge is an external judge backed by an OpenAI-compatible chat completions API.
type Judge struct {
	client *openai.Client
	model  string
	logger *zap.Logger
}

// NewJudge creates a chat-completions judge.
func NewJudge(cfg *Config) *Judge {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Judge{
		client: newClient(cfg),
		model:  cfg.Model,
		logger: logger,
	}
}

// Summarize asks for a maxWords-word summary. Answers shorter than 8 words are unusable.
func (j *Judge) Summarize(ctx context.Context, text string, maxWords int) (string, error) {
	answer, err := j.complete(ctx, judge.KindSummarize, fmt.Sprintf(summarizePrompt, maxWords), text)
	if err != nil {
		return "", err
	}
	summary, ok := trimSummary(answer, maxWords)
	if !ok {
		return "", &judge.UnusableAnswerError{Kind: judge.KindSummarize, Answer: answer}
	}
	return summary, nil
}

// VerifyDuplicate asks whether candidate duplicates existing.
func (j *Judge) VerifyDuplicate(ctx context.Context, candidate, existing string) (dedup.Judgment, error) {
	user := "NEW SNIPPET:\n" + candidate + "\n\nEXISTING SNIPPET:\n" + existing
	answer, err := j.complete(ctx, judge.KindVerify, verifyPrompt, user)
	if err != nil {
		return dedup.Judgment{}, err
	}
	jd, ok := parseVerdict(answer)
	if !ok {
		return dedup.Judgment{}, &judge.UnusableAnswerError{Kind: judge.KindVerify, Answer: answer}
	}
	return jd, nil
}

// Rerank scores items against query. Lines that do not name a known item are ignored.
func (j *Judge) Rerank(ctx context.Context, query string, items []judge.Item) (judge.Scores, error) {
	if len(items) == 0 {
		return judge.Scores{}, nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "QUERY: %s\n", query)
	for _, it := range items {
		fmt.Fprintf(&b, "-----\nID: %s\nSummary: %s\nKeywords: %s\nSnippet:\n%s\n",
			it.ID, it.Summary, strings.Join(it.Keywords, ", "), it.RawText)
	}

	answer, err := j.complete(ctx, judge.KindRerank, rerankPrompt, b.String())
	if err != nil {
		return nil, err
	}

	known := make(map[string]struct{}, len(items))
	for _, it := range items {
		known[it.ID] = struct{}{}
	}
	return parseRerank(answer, known), nil
}

// HealthCheck verifies API availability via ListModels.
func (j *Judge) HealthCheck(ctx context.Context) error {
	if _, err := j.client.ListModels(ctx); err != nil {
		return fmt.Errorf("list models: %w", err)
	}
	return nil
}

func (j *Judge) complete(ctx context.Context, kind judge.Kind, system, user string) (string, error) {
	resp, err := j.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: j.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: user},
		},
	})
	if err != nil {
		return "", parseAPIError(string(kind), err)
	}
	if len(resp.Choices) == 0 {
		return "", &judge.UnusableAnswerError{Kind: kind}
	}

	j.logger.Debug("judge answered",
		zap.String("kind", string(kind)),
		zap.Int("tokens", resp.Usage.TotalTokens))

	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

// trimSummary cuts the answer to maxWords words and rejects short answers.
func trimSummary(answer string, maxWords int) (string, bool) {
	words := strings.Fields(answer)
	if len(words) < min(minSummaryWords, maxWords) {
		return "", false
	}
	if maxWords > 0 && len(words) > maxWords {
		words = words[:maxWords]
	}
	return strings.Join(words, " "), true
}

// parseVerdict reads "DUPLICATE|87", "UNIQUE" or "UNCERTAIN" from the first non-empty line.
// A DUPLICATE without a score is taken as fully confident.
func parseVerdict(answer string) (dedup.Judgment, bool) {
	lines := strings.Split(strings.TrimSpace(answer), "\n")
	head := strings.ToUpper(strings.TrimSpace(lines[0]))
	if head == "" {
		return dedup.Judgment{}, false
	}

	var reason string
	if len(lines) > 1 {
		reason = strings.TrimSpace(strings.Join(lines[1:], " "))
	}

	token, scoreText, hasScore := strings.Cut(head, "|")
	token = strings.Trim(strings.TrimSpace(token), "*.:`\"'")

	confidence := 1.0
	if hasScore {
		score, err := strconv.ParseFloat(strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(scoreText), "%")), 64)
		if err != nil {
			return dedup.Judgment{}, false
		}
		confidence = min(100, max(0, score)) / 100
	}

	switch token {
	case "DUPLICATE":
		return dedup.Judgment{Verdict: dedup.Duplicate, Confidence: confidence, Reason: reason}, true
	case "UNIQUE":
		return dedup.Judgment{Verdict: dedup.Unique, Confidence: confidence, Reason: reason}, true
	case "UNCERTAIN":
		if !hasScore {
			confidence = 0.5
		}
		return dedup.Judgment{Verdict: dedup.Uncertain, Confidence: confidence, Reason: reason}, true
	}
	return dedup.Judgment{}, false
}

var (
	numberingRe = regexp.MustCompile(`^\d+[.)]\s*`)
	bulletRe    = regexp.MustCompile(`^[*\-]\s*`)
)

// parseRerank reads "<id> | <0-100>" lines, tolerating numbering and bullets.
// The first score for an ID wins; unknown IDs and malformed lines are skipped.
func parseRerank(answer string, known map[string]struct{}) judge.Scores {
	scores := make(judge.Scores)
	for _, line := range strings.Split(answer, "\n") {
		line = strings.TrimSpace(line)
		line = numberingRe.ReplaceAllString(line, "")
		line = bulletRe.ReplaceAllString(line, "")
		if line == "" {
			continue
		}

		parts := strings.Split(line, "|")
		if len(parts) != 2 {
			continue
		}
		id := strings.Trim(strings.TrimSpace(parts[0]), "`*")
		if _, ok := known[id]; !ok {
			continue
		}
		if _, seen := scores[id]; seen {
			continue
		}
		score, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
		if err != nil {
			continue
		}
		scores[id] = min(100, max(0, score)) / 100
	}
	return scores
}
