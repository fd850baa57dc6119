package ollama

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/adaptlearn/course-ingest/internal/core/domain"
)

const maxPromptChars = 12000

// QuestionGenerator builds quiz and open training questions from course
// text. Malformed items in the model output are dropped rather than failing
// the whole generation.
type QuestionGenerator struct {
	client *Client
}

func NewQuestionGenerator(client *Client) *QuestionGenerator {
	return &QuestionGenerator{client: client}
}

func (g *QuestionGenerator) Generate(ctx context.Context, title string, size domain.CourseSize, text string) ([]domain.Question, error) {
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("course text is empty")
	}

	quizCount, openCount := questionCounts(size)
	raw, err := g.client.generateJSON(ctx, buildQuestionPrompt(title, text, quizCount, openCount))
	if err != nil {
		return nil, wrapTemporary("generate questions", err)
	}

	questions, err := parseQuestions(raw)
	if err != nil {
		return nil, err
	}
	if len(questions) == 0 {
		return nil, fmt.Errorf("model returned no usable questions")
	}
	return questions, nil
}

// questionCounts maps the course size to the number of questions requested.
func questionCounts(size domain.CourseSize) (quiz, open int) {
	switch size {
	case domain.SizeSmall:
		return 3, 2
	case domain.SizeLarge:
		return 8, 4
	default:
		return 5, 3
	}
}

func buildQuestionPrompt(title, text string, quizCount, openCount int) string {
	snippet := text
	if len(snippet) > maxPromptChars {
		cut := maxPromptChars
		for cut > 0 && !utf8.RuneStart(snippet[cut]) {
			cut--
		}
		snippet = snippet[:cut]
	}

	return fmt.Sprintf(`You are a corporate training assistant.
Based on the course material below, write %d quiz questions and %d open questions.
Return a strict JSON object: {"questions": [...]}.
Each quiz question: {"type":"quiz","prompt":string,"quizOptions":[4 strings],"correctIndex":0-3}.
Each open question: {"type":"open","prompt":string,"expectedAnswer":string}.
Questions must be answerable from the material alone. No markdown, no extra keys.

Course title: %s

Material:
%s`, quizCount, openCount, title, snippet)
}

func parseQuestions(raw string) ([]domain.Question, error) {
	var payload struct {
		Questions []struct {
			Type           string   `json:"type"`
			Prompt         string   `json:"prompt"`
			QuizOptions    []string `json:"quizOptions"`
			CorrectIndex   *int     `json:"correctIndex"`
			ExpectedAnswer string   `json:"expectedAnswer"`
		} `json:"questions"`
	}
	if err := unmarshalJSONObject(raw, &payload); err != nil {
		return nil, fmt.Errorf("parse questions json: %w", err)
	}

	var questions []domain.Question
	for _, q := range payload.Questions {
		prompt := strings.TrimSpace(q.Prompt)
		if prompt == "" {
			continue
		}
		switch domain.QuestionType(q.Type) {
		case domain.QuestionQuiz:
			if len(q.QuizOptions) != 4 || q.CorrectIndex == nil || *q.CorrectIndex < 0 || *q.CorrectIndex > 3 {
				continue
			}
			questions = append(questions, domain.Question{
				Type:         domain.QuestionQuiz,
				Prompt:       prompt,
				QuizOptions:  q.QuizOptions,
				CorrectIndex: q.CorrectIndex,
			})
		case domain.QuestionOpen:
			questions = append(questions, domain.Question{
				Type:           domain.QuestionOpen,
				Prompt:         prompt,
				ExpectedAnswer: strings.TrimSpace(q.ExpectedAnswer),
			})
		}
	}
	return questions, nil
}

// unmarshalJSONObject tolerates models that wrap the object in prose by
// slicing from the first '{' to the last '}'.
func unmarshalJSONObject(raw string, out any) error {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start >= 0 && end > start {
		raw = raw[start : end+1]
	}
	return json.Unmarshal([]byte(raw), out)
}
