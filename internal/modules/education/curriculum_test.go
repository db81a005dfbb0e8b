package education

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/limpide/limpide/internal/domain"
)

const testIndex = `{
	"version": "1.0",
	"levels": [
		{"level": 0, "title": "Getting Started", "lessons": ["L0-01"]},
		{"level": 1, "title": "Instruments", "lessons": ["L1-01", "L1-02"]}
	]
}`

const testLesson = `---
title: What is a stock?
level: 1
duration: 5 min
objectives:
  - Understand shares
  - Understand dividends
---

# What is a stock?

A share is a **unit of ownership** in a company.
`

const testQuiz = `{
	"questions": [
		{
			"id": "q1",
			"prompt": "What does owning a share mean?",
			"choices": [
				{"id": "a", "text": "Lending money to a company"},
				{"id": "b", "text": "Owning part of a company"}
			],
			"answer": "b",
			"explanation": "A share is a unit of ownership."
		},
		{
			"id": "q2",
			"prompt": "Shares can pay out part of profits as?",
			"choices": [
				{"id": "a", "text": "Dividends"},
				{"id": "b", "text": "Interest"}
			],
			"answer": "a"
		}
	]
}`

const testGlossary = `[
	{"term": "ETF", "definition": "A basket of assets traded like a single stock."}
]`

// writeCurriculum builds a minimal English curriculum tree in a temp dir.
func writeCurriculum(t *testing.T) string {
	t.Helper()

	base := t.TempDir()
	en := filepath.Join(base, "en")
	require.NoError(t, os.MkdirAll(filepath.Join(en, "lessons"), 0o755))
	require.NoError(t, os.MkdirAll(filepath.Join(en, "quizzes"), 0o755))

	write := func(path, content string) {
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}

	write(filepath.Join(en, "curriculum_index.json"), testIndex)
	write(filepath.Join(en, "glossary.json"), testGlossary)
	write(filepath.Join(en, "lessons", "L0-01.md"), "---\ntitle: Why invest?\nlevel: 0\n---\n\nInvesting grows savings over time.\n")
	write(filepath.Join(en, "lessons", "L1-01.md"), testLesson)
	write(filepath.Join(en, "lessons", "L1-02.md"), "No frontmatter here, just text.\n")
	write(filepath.Join(en, "quizzes", "L1-01.json"), testQuiz)

	return base
}

func TestNormalizeLanguage(t *testing.T) {
	assert.Equal(t, "en", NormalizeLanguage("en"))
	assert.Equal(t, "fr", NormalizeLanguage("fr"))
	assert.Equal(t, "fr", NormalizeLanguage(" FR "))
	assert.Equal(t, "en", NormalizeLanguage("de"))
	assert.Equal(t, "en", NormalizeLanguage(""))
}

func TestCurriculum_Index(t *testing.T) {
	c := NewCurriculum(writeCurriculum(t), zerolog.Nop())

	idx, err := c.Index("en")
	require.NoError(t, err)
	require.Len(t, idx.Levels, 2)
	assert.Equal(t, "Getting Started", idx.Levels[0].Title)
	assert.Equal(t, []string{"L1-01", "L1-02"}, idx.Levels[1].Lessons)
}

func TestCurriculum_Lesson(t *testing.T) {
	c := NewCurriculum(writeCurriculum(t), zerolog.Nop())

	lesson, err := c.Lesson("en", "L1-01")
	require.NoError(t, err)

	assert.Equal(t, "What is a stock?", lesson.Meta.Title)
	assert.Equal(t, 1, lesson.Meta.Level)
	assert.Equal(t, []string{"Understand shares", "Understand dividends"}, lesson.Meta.Objectives)

	assert.Contains(t, lesson.ContentHTML, "<h1")
	assert.Contains(t, lesson.ContentHTML, "<strong>unit of ownership</strong>")
	assert.NotContains(t, lesson.ContentHTML, "---")
}

func TestCurriculum_Lesson_WithoutFrontmatter(t *testing.T) {
	c := NewCurriculum(writeCurriculum(t), zerolog.Nop())

	lesson, err := c.Lesson("en", "L1-02")
	require.NoError(t, err)
	assert.Empty(t, lesson.Meta.Title)
	assert.Contains(t, lesson.ContentHTML, "No frontmatter here")
}

func TestCurriculum_Lesson_NotFound(t *testing.T) {
	c := NewCurriculum(writeCurriculum(t), zerolog.Nop())

	_, err := c.Lesson("en", "L9-99")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestCurriculum_Quiz(t *testing.T) {
	c := NewCurriculum(writeCurriculum(t), zerolog.Nop())

	quiz, err := c.Quiz("en", "L1-01")
	require.NoError(t, err)
	assert.Equal(t, "L1-01", quiz.LessonID)
	require.Len(t, quiz.Questions, 2)
	assert.Equal(t, "b", quiz.Questions[0].Answer)

	_, err = c.Quiz("en", "L0-01")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestCurriculum_Glossary(t *testing.T) {
	c := NewCurriculum(writeCurriculum(t), zerolog.Nop())

	entries, err := c.Glossary("en")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "ETF", entries[0].Term)

	// A language directory without a glossary yields an empty list.
	empty := NewCurriculum(t.TempDir(), zerolog.Nop())
	entries, err = empty.Glossary("en")
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestCurriculum_LessonTitles(t *testing.T) {
	c := NewCurriculum(writeCurriculum(t), zerolog.Nop())

	titles, err := c.LessonTitles("en")
	require.NoError(t, err)

	assert.Equal(t, "Why invest?", titles["L0-01"])
	assert.Equal(t, "What is a stock?", titles["L1-01"])
	// Untitled lessons fall back to their id.
	assert.Equal(t, "L1-02", titles["L1-02"])
}
