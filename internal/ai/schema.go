package ai

import (
	"encoding/json"
	"fmt"
)

// SchemaError reports an AI response that decoded as JSON but violated the
// declared schema. It names the offending field so the UI message is usable.
type SchemaError struct {
	Field  string
	Reason string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("ai response schema violation at %s: %s", e.Field, e.Reason)
}

func schemaErr(field, reason string) error {
	return &SchemaError{Field: field, Reason: reason}
}

const (
	maxTitleLen       = 80
	maxDescriptionLen = 500
	maxContentLen     = 4000
	maxListItems      = 12
)

// ChallengeProposal is one AI-suggested saving challenge. Amounts arrive in
// whole currency units.
type ChallengeProposal struct {
	Title        string  `json:"title"`
	Description  string  `json:"description,omitempty"`
	TargetAmount float64 `json:"targetAmount"`
	Category     string  `json:"category,omitempty"`
	Period       string  `json:"period"`
	DurationDays int     `json:"durationDays"`
}

type challengeEnvelope struct {
	Challenges []ChallengeProposal `json:"challenges"`
}

// ParseChallengeProposals decodes and strictly validates an AI challenge
// suggestion payload: 1-5 proposals, bounded fields, enum period.
func ParseChallengeProposals(raw string) ([]ChallengeProposal, error) {
	var env challengeEnvelope
	if err := json.Unmarshal([]byte(raw), &env); err != nil {
		return nil, schemaErr("challenges", "not a JSON object: "+err.Error())
	}
	if len(env.Challenges) < 1 || len(env.Challenges) > 5 {
		return nil, schemaErr("challenges", fmt.Sprintf("expected 1-5 items, got %d", len(env.Challenges)))
	}
	for i, p := range env.Challenges {
		at := func(f string) string { return fmt.Sprintf("challenges[%d].%s", i, f) }
		if p.Title == "" || len(p.Title) > maxTitleLen {
			return nil, schemaErr(at("title"), "required, max 80 characters")
		}
		if len(p.Description) > maxDescriptionLen {
			return nil, schemaErr(at("description"), "max 500 characters")
		}
		if p.TargetAmount < 1 {
			return nil, schemaErr(at("targetAmount"), "must be >= 1")
		}
		switch p.Period {
		case "daily", "weekly", "monthly":
		default:
			return nil, schemaErr(at("period"), "must be daily, weekly, or monthly")
		}
		if p.DurationDays < 1 || p.DurationDays > 90 {
			return nil, schemaErr(at("durationDays"), "must be 1-90")
		}
	}
	return env.Challenges, nil
}

// Lesson is one AI-generated personalized lesson.
type Lesson struct {
	ID          string       `json:"id,omitempty"`
	Title       string       `json:"title"`
	Description string       `json:"description"`
	Difficulty  string       `json:"difficulty"`
	Content     string       `json:"content,omitempty"`
	Objectives  []string     `json:"objectives,omitempty"`
	Steps       []LessonStep `json:"steps,omitempty"`
	Checklist   []string     `json:"checklist,omitempty"`
	Quiz        []QuizItem   `json:"quiz,omitempty"`
	Resources   []Resource   `json:"resources,omitempty"`
}

type LessonStep struct {
	Title       string `json:"title"`
	TimeMinutes int    `json:"timeMinutes"`
}

type QuizItem struct {
	Question    string   `json:"question"`
	Options     []string `json:"options"`
	AnswerIndex int      `json:"answerIndex"`
}

type Resource struct {
	Title string `json:"title"`
	URL   string `json:"url"`
}

type lessonEnvelope struct {
	Lessons []Lesson `json:"lessons"`
}

// ParseLessons decodes and validates an AI lesson payload: 1-6 lessons with
// bounded fields and a known difficulty.
func ParseLessons(raw string) ([]Lesson, error) {
	var env lessonEnvelope
	if err := json.Unmarshal([]byte(raw), &env); err != nil {
		return nil, schemaErr("lessons", "not a JSON object: "+err.Error())
	}
	if len(env.Lessons) < 1 || len(env.Lessons) > 6 {
		return nil, schemaErr("lessons", fmt.Sprintf("expected 1-6 items, got %d", len(env.Lessons)))
	}
	for i := range env.Lessons {
		l := &env.Lessons[i]
		at := func(f string) string { return fmt.Sprintf("lessons[%d].%s", i, f) }
		if l.Title == "" || len(l.Title) > maxTitleLen {
			return nil, schemaErr(at("title"), "required, max 80 characters")
		}
		if l.Description == "" || len(l.Description) > maxDescriptionLen {
			return nil, schemaErr(at("description"), "required, max 500 characters")
		}
		switch l.Difficulty {
		case "beginner", "intermediate", "advanced":
		default:
			return nil, schemaErr(at("difficulty"), "must be beginner, intermediate, or advanced")
		}
		if len(l.Content) > maxContentLen {
			return nil, schemaErr(at("content"), "max 4000 characters")
		}
		if len(l.Objectives) > maxListItems || len(l.Steps) > maxListItems ||
			len(l.Checklist) > maxListItems || len(l.Quiz) > maxListItems ||
			len(l.Resources) > maxListItems {
			return nil, schemaErr(at(""), "list fields capped at 12 items")
		}
		for j, q := range l.Quiz {
			if len(q.Options) < 2 || q.AnswerIndex < 0 || q.AnswerIndex >= len(q.Options) {
				return nil, schemaErr(fmt.Sprintf("lessons[%d].quiz[%d]", i, j), "answerIndex out of range")
			}
		}
		if l.ID == "" {
			l.ID = fmt.Sprintf("lesson-%d", i)
		}
	}
	return env.Lessons, nil
}
