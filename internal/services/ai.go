package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"
	"time"

	"github.com/sashabaranov/go-openai"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/yukikurage/pto-approval-api/internal/constants"
	"github.com/yukikurage/pto-approval-api/internal/logging"
	"github.com/yukikurage/pto-approval-api/internal/utils"
)

var (
	ErrDraftTextEmpty   = errors.New("text is required")
	ErrDraftTextTooLong = errors.New("text is too long")
)

// chatCompleter is the part of the OpenAI client the assistant needs
type chatCompleter interface {
	CreateChatCompletion(ctx context.Context, request openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// AIService turns free text ("off the week after next, dentist on the 3rd")
// into draft PTO date ranges. Drafts are never stored.
type AIService struct {
	client chatCompleter
	ledger *Ledger
	logger *logrus.Logger
	now    func() time.Time
}

// DraftRequest is a suggested PTO request
type DraftRequest struct {
	StartDate time.Time
	EndDate   time.Time
	Notes     string
	Hours     decimal.Decimal
}

type generatedDraft struct {
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
	Notes     string `json:"notes"`
}

func NewAIService(apiKey string, ledger *Ledger, logger *logrus.Logger) *AIService {
	return &AIService{
		client: openai.NewClient(apiKey),
		ledger: ledger,
		logger: logger,
		now:    time.Now,
	}
}

// DraftFromText asks the model for date ranges mentioned in text. Items with
// unparseable, inverted or past dates are dropped.
func (s *AIService) DraftFromText(ctx context.Context, text string) ([]DraftRequest, error) {
	if s == nil || s.client == nil {
		return nil, fmt.Errorf("OpenAI client not initialized")
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrDraftTextEmpty
	}
	if len(text) > constants.MaxDraftTextLength {
		return nil, ErrDraftTextTooLong
	}

	today := utils.NormalizeDate(s.now())
	prompt := fmt.Sprintf(`You extract paid-time-off requests from an employee's message.

Today is %s (%s).

Message:
%s

Return a JSON array of the requested absences:
[
  {
    "start_date": "first day off, YYYY-MM-DD",
    "end_date": "last day off (inclusive), YYYY-MM-DD",
    "notes": "short reason, or empty string"
  }
]

Rules:
- Return [] when no absence is requested
- Resolve relative expressions ("next Friday", "the week after next") to concrete dates
- A single day off has start_date equal to end_date
- Return only JSON, no explanation`, utils.FormatDate(today), today.Weekday(), text)

	resp, err := s.client.CreateChatCompletion(
		ctx,
		openai.ChatCompletionRequest{
			Model: openai.GPT4o,
			Messages: []openai.ChatCompletionMessage{
				{
					Role:    openai.ChatMessageRoleUser,
					Content: prompt,
				},
			},
			Temperature: 0.2,
		},
	)
	if err != nil {
		return nil, fmt.Errorf("OpenAI API error: %w", err)
	}

	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("no response from OpenAI")
	}

	content := stripCodeFence(resp.Choices[0].Message.Content)

	var generated []generatedDraft
	if err := json.Unmarshal([]byte(content), &generated); err != nil {
		return nil, fmt.Errorf("failed to parse AI response: %w (response: %s)", err, content)
	}

	drafts := make([]DraftRequest, 0, len(generated))
	for _, item := range generated {
		if len(drafts) == constants.MaxAIGeneratedDrafts {
			break
		}

		start, err := utils.ParseDate(item.StartDate)
		if err != nil {
			s.skip(ctx, item, "unparseable start date")
			continue
		}
		end, err := utils.ParseDate(item.EndDate)
		if err != nil {
			s.skip(ctx, item, "unparseable end date")
			continue
		}
		if end.Before(start) || start.Before(today) {
			s.skip(ctx, item, "invalid or past range")
			continue
		}

		notes := truncateNotes(strings.TrimSpace(item.Notes), constants.MaxNotesLength)

		drafts = append(drafts, DraftRequest{
			StartDate: start,
			EndDate:   end,
			Notes:     notes,
			Hours:     s.ledger.Cost(start, end),
		})
	}

	return drafts, nil
}

func (s *AIService) skip(ctx context.Context, item generatedDraft, reason string) {
	logging.FromContext(ctx, s.logger).WithFields(logrus.Fields{
		"start_date": item.StartDate,
		"end_date":   item.EndDate,
		"reason":     reason,
	}).Debug("Dropped AI draft")
}

// stripCodeFence removes a ```json ... ``` wrapper some models add
func stripCodeFence(content string) string {
	content = strings.TrimSpace(content)
	if !strings.HasPrefix(content, "```") {
		return content
	}
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")
	return strings.TrimSpace(content)
}

// truncateNotes cuts s to at most limit bytes without splitting a rune
func truncateNotes(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	cut := limit
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}
