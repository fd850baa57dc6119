package domain

import "time"

// ParseStatus is the per-file outcome of text extraction.
type ParseStatus string

const (
	ParseStatusParsed  ParseStatus = "parsed"
	ParseStatusSkipped ParseStatus = "skipped"
	ParseStatusError   ParseStatus = "error"
)

// CourseStatus is the aggregated readiness of a whole course.
type CourseStatus string

const (
	CourseStatusReady   CourseStatus = "ready"
	CourseStatusPartial CourseStatus = "partial"
	CourseStatusError   CourseStatus = "error"
)

// CourseSize is the curator-selected course scale; free-form strings are
// accepted on input, the known values drive question-count defaults.
type CourseSize string

const (
	SizeSmall  CourseSize = "small"
	SizeMedium CourseSize = "medium"
	SizeLarge  CourseSize = "large"
)

// FileDescriptor points at a raw blob the caller already uploaded to object
// storage. The pipeline never creates these.
type FileDescriptor struct {
	StoredName   string `json:"path"`
	OriginalName string `json:"originalName"`
	StoragePath  string `json:"storagePath"`
	MimeType     string `json:"mime"`
	DeclaredSize int64  `json:"size"`
}

// ParseOutcome records what happened to one file. Exactly one of ParsedPath
// (status parsed) or ErrorDetail (status skipped/error) is set.
type ParseOutcome struct {
	FileID       string      `json:"fileId"`
	OriginalName string      `json:"name"`
	MimeType     string      `json:"type"`
	DeclaredSize int64       `json:"size"`
	StoragePath  string      `json:"storagePath"`
	Status       ParseStatus `json:"parseStatus"`
	ParsedPath   string      `json:"parsedPath,omitempty"`
	ErrorDetail  string      `json:"parseError,omitempty"`
}

// QuestionType distinguishes multiple-choice quiz questions from open ones.
type QuestionType string

const (
	QuestionQuiz QuestionType = "quiz"
	QuestionOpen QuestionType = "open"
)

// Question is one generated training question attached to a manifest.
type Question struct {
	ID             string       `json:"id"`
	Type           QuestionType `json:"type"`
	Prompt         string       `json:"prompt"`
	QuizOptions    []string     `json:"quizOptions,omitempty"`
	CorrectIndex   *int         `json:"correctIndex,omitempty"`
	ExpectedAnswer string       `json:"expectedAnswer,omitempty"`
}

// CourseManifest is the durable record of one processing run. It is written
// wholesale; a later run fully replaces it.
type CourseManifest struct {
	CourseID      string         `json:"courseId"`
	Title         string         `json:"title"`
	Size          CourseSize     `json:"size"`
	CreatedAt     time.Time      `json:"createdAt"`
	OverallStatus CourseStatus   `json:"overallStatus"`
	TextBytes     int64          `json:"textBytes"`
	InviteCode    string         `json:"inviteCode"`
	EmployeeCount int            `json:"employeesCount"`
	Files         []ParseOutcome `json:"files"`
	Questions     []Question     `json:"questions,omitempty"`
	QuizCount     int            `json:"quizCount,omitempty"`
	OpenCount     int            `json:"openCount,omitempty"`
}

// OverallStatus reduces per-file outcomes to a course status. Skipped files
// never block readiness: a batch with zero errors is ready even when nothing
// was parsed.
func OverallStatus(outcomes []ParseOutcome) CourseStatus {
	var parsed, failed int
	for _, o := range outcomes {
		switch o.Status {
		case ParseStatusParsed:
			parsed++
		case ParseStatusError:
			failed++
		}
	}
	switch {
	case failed == 0:
		return CourseStatusReady
	case parsed > 0:
		return CourseStatusPartial
	default:
		return CourseStatusError
	}
}

// Enrollment ties an employee to a course they joined via invite code.
type Enrollment struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	CourseID  string    `json:"courseId"`
	OwnerID   string    `json:"ownerId"`
	CreatedAt time.Time `json:"createdAt"`
}
