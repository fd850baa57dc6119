package usecase

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/adaptlearn/course-ingest/internal/core/domain"
	"github.com/adaptlearn/course-ingest/internal/core/ports"
)

// QuestionUseCase generates training questions from a course's combined
// text and attaches them to the manifest.
type QuestionUseCase struct {
	store     ports.ObjectStore
	query     *CourseQueryUseCase
	generator ports.QuestionGenerator
}

func NewQuestionUseCase(store ports.ObjectStore, query *CourseQueryUseCase, generator ports.QuestionGenerator) *QuestionUseCase {
	return &QuestionUseCase{store: store, query: query, generator: generator}
}

func (uc *QuestionUseCase) GenerateForCourse(ctx context.Context, ownerID, callerID, courseID, title string, size domain.CourseSize) (*domain.CourseManifest, error) {
	if callerID != ownerID {
		return nil, domain.WrapError(domain.ErrForbidden, "generate questions",
			fmt.Errorf("caller %s does not own course %s", callerID, courseID))
	}

	manifest, err := uc.query.GetCourse(ctx, ownerID, courseID)
	if err != nil {
		return nil, err
	}
	if title == "" {
		title = manifest.Title
	}
	if size == "" {
		size = manifest.Size
	}

	combined, err := uc.store.Download(ctx, domain.CombinedTextPath(ownerID, courseID))
	if err != nil {
		return nil, domain.WrapError(domain.ErrInvalidInput, "generate questions",
			fmt.Errorf("course %s has no extracted text: %w", courseID, err))
	}

	questions, err := uc.generator.Generate(ctx, title, size, string(combined))
	if err != nil {
		return nil, fmt.Errorf("generate questions: %w", err)
	}

	var quiz, open int
	for i := range questions {
		if questions[i].ID == "" {
			questions[i].ID = uuid.NewString()
		}
		switch questions[i].Type {
		case domain.QuestionQuiz:
			quiz++
		case domain.QuestionOpen:
			open++
		}
	}

	manifest.Questions = questions
	manifest.QuizCount = quiz
	manifest.OpenCount = open

	if err := writeManifest(ctx, uc.store, ownerID, manifest); err != nil {
		return nil, err
	}
	return manifest, nil
}
