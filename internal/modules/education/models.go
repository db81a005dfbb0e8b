package education

import "time"

// Index is the parsed curriculum_index.json: ordered levels, each listing
// its lesson ids in teaching order.
type Index struct {
	Version string  `json:"version"`
	Levels  []Level `json:"levels"`
}

// Level is one tier of the learning path.
type Level struct {
	Level   int      `json:"level"`
	Title   string   `json:"title"`
	Lessons []string `json:"lessons"`
}

// Frontmatter is the YAML header of a lesson markdown file. Unknown keys
// are ignored.
type Frontmatter struct {
	Title      string   `yaml:"title" json:"title"`
	Level      int      `yaml:"level" json:"level"`
	Duration   string   `yaml:"duration" json:"duration,omitempty"`
	Objectives []string `yaml:"objectives" json:"objectives,omitempty"`
}

// Lesson is a loaded lesson: parsed frontmatter plus the markdown body
// rendered to HTML.
type Lesson struct {
	ID          string      `json:"id"`
	Meta        Frontmatter `json:"metadata"`
	ContentHTML string      `json:"content_html"`
}

// QuizChoice is one selectable answer of a quiz question.
type QuizChoice struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

// QuizQuestion is one question of a lesson quiz. Answer holds the correct
// choice id; it is stripped before questions are sent to clients.
type QuizQuestion struct {
	ID          string       `json:"id"`
	Prompt      string       `json:"prompt"`
	Choices     []QuizChoice `json:"choices"`
	Answer      string       `json:"answer,omitempty"`
	Explanation string       `json:"explanation,omitempty"`
}

// Quiz is the parsed quizzes/{lesson_id}.json file.
type Quiz struct {
	LessonID  string         `json:"lesson_id"`
	Questions []QuizQuestion `json:"questions"`
}

// GlossaryEntry is one term of the curriculum glossary.
type GlossaryEntry struct {
	Term       string `json:"term"`
	Definition string `json:"definition"`
}

// LessonProgress marks a lesson as completed by a user.
type LessonProgress struct {
	ID          int64     `json:"id"`
	UserID      int64     `json:"user_id"`
	LessonID    string    `json:"lesson_id"`
	CompletedAt time.Time `json:"completed_at"`
}

// QuizCompletion is the recorded outcome of a finished lesson quiz.
type QuizCompletion struct {
	ID          int64     `json:"id"`
	UserID      int64     `json:"user_id"`
	LessonID    string    `json:"lesson_id"`
	Score       int       `json:"score"`
	Total       int       `json:"total"`
	CompletedAt time.Time `json:"completed_at"`
}

// LessonRef is a lesson id with its display title.
type LessonRef struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

// LevelProgress is the per-level rollup of the learning path.
type LevelProgress struct {
	Level      int         `json:"level"`
	Title      string      `json:"title"`
	Lessons    []LessonRef `json:"lessons"`
	Total      int         `json:"total"`
	Completed  int         `json:"completed"`
	IsComplete bool        `json:"is_complete"`
}

// ProgressSummary is the learning path overview for one user.
type ProgressSummary struct {
	Total        int             `json:"total"`
	Completed    int             `json:"completed"`
	Percentage   int             `json:"percentage"`
	CompletedIDs []string        `json:"completed_ids"`
	QuizScores   map[string]int  `json:"quiz_scores"`
	ByLevel      []LevelProgress `json:"by_level"`
}

// NextLesson points at the first uncompleted lesson in index order.
type NextLesson struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Level int    `json:"level"`
}
