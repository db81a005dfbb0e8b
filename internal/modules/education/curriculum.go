package education

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/rs/zerolog"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"gopkg.in/yaml.v3"

	"github.com/limpide/limpide/internal/domain"
)

const defaultLanguage = "en"

var supportedLanguages = map[string]bool{"en": true, "fr": true}

// Curriculum loads lesson content from disk. The curriculum directory holds
// one subdirectory per language (en, fr), each containing
// curriculum_index.json, lessons/{id}.md, quizzes/{id}.json and an optional
// glossary.json. Parsed files are memoized; content only changes on deploy.
type Curriculum struct {
	baseDir string
	md      goldmark.Markdown
	log     zerolog.Logger

	mu         sync.Mutex
	indexes    map[string]*Index
	lessons    map[string]*Lesson
	quizzes    map[string]*Quiz
	glossaries map[string][]GlossaryEntry
	titles     map[string]map[string]string
}

// NewCurriculum creates a curriculum loader rooted at baseDir
func NewCurriculum(baseDir string, log zerolog.Logger) *Curriculum {
	return &Curriculum{
		baseDir: baseDir,
		md: goldmark.New(
			goldmark.WithExtensions(extension.GFM, extension.Typographer),
		),
		log:        log.With().Str("component", "curriculum").Logger(),
		indexes:    make(map[string]*Index),
		lessons:    make(map[string]*Lesson),
		quizzes:    make(map[string]*Quiz),
		glossaries: make(map[string][]GlossaryEntry),
		titles:     make(map[string]map[string]string),
	}
}

// NormalizeLanguage maps any language code onto a supported curriculum
// language, falling back to English.
func NormalizeLanguage(lang string) string {
	lang = strings.ToLower(strings.TrimSpace(lang))
	if supportedLanguages[lang] {
		return lang
	}
	return defaultLanguage
}

func (c *Curriculum) langDir(lang string) string {
	return filepath.Join(c.baseDir, NormalizeLanguage(lang))
}

// Index returns the parsed curriculum index for a language
func (c *Curriculum) Index(lang string) (*Index, error) {
	lang = NormalizeLanguage(lang)

	c.mu.Lock()
	defer c.mu.Unlock()

	if idx, ok := c.indexes[lang]; ok {
		return idx, nil
	}

	path := filepath.Join(c.langDir(lang), "curriculum_index.json")
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read curriculum index: %w", err)
	}

	var idx Index
	if err := json.Unmarshal(data, &idx); err != nil {
		return nil, fmt.Errorf("failed to parse curriculum index: %w", err)
	}

	c.indexes[lang] = &idx
	return &idx, nil
}

// Lesson loads a lesson by id: frontmatter parsed, body rendered to HTML.
// Unknown ids map to domain.ErrNotFound.
func (c *Curriculum) Lesson(lang, lessonID string) (*Lesson, error) {
	lang = NormalizeLanguage(lang)
	key := lang + "/" + lessonID

	c.mu.Lock()
	defer c.mu.Unlock()

	if lesson, ok := c.lessons[key]; ok {
		return lesson, nil
	}

	path := filepath.Join(c.langDir(lang), "lessons", lessonID+".md")
	raw, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, fmt.Errorf("lesson %s: %w", lessonID, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read lesson %s: %w", lessonID, err)
	}

	meta, body, err := splitFrontmatter(raw)
	if err != nil {
		return nil, fmt.Errorf("failed to parse lesson %s frontmatter: %w", lessonID, err)
	}

	var buf bytes.Buffer
	if err := c.md.Convert(body, &buf); err != nil {
		return nil, fmt.Errorf("failed to render lesson %s: %w", lessonID, err)
	}

	lesson := &Lesson{
		ID:          lessonID,
		Meta:        meta,
		ContentHTML: buf.String(),
	}
	c.lessons[key] = lesson
	return lesson, nil
}

// Quiz loads a lesson's quiz. Lessons without a quiz map to
// domain.ErrNotFound.
func (c *Curriculum) Quiz(lang, lessonID string) (*Quiz, error) {
	lang = NormalizeLanguage(lang)
	key := lang + "/" + lessonID

	c.mu.Lock()
	defer c.mu.Unlock()

	if quiz, ok := c.quizzes[key]; ok {
		return quiz, nil
	}

	path := filepath.Join(c.langDir(lang), "quizzes", lessonID+".json")
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, fmt.Errorf("quiz %s: %w", lessonID, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read quiz %s: %w", lessonID, err)
	}

	var quiz Quiz
	if err := json.Unmarshal(data, &quiz); err != nil {
		return nil, fmt.Errorf("failed to parse quiz %s: %w", lessonID, err)
	}
	quiz.LessonID = lessonID

	c.quizzes[key] = &quiz
	return &quiz, nil
}

// Glossary returns the curriculum glossary for a language, empty when the
// file is absent
func (c *Curriculum) Glossary(lang string) ([]GlossaryEntry, error) {
	lang = NormalizeLanguage(lang)

	c.mu.Lock()
	defer c.mu.Unlock()

	if entries, ok := c.glossaries[lang]; ok {
		return entries, nil
	}

	entries := []GlossaryEntry{}
	for _, name := range []string{"glossary_" + lang + ".json", "glossary.json"} {
		path := filepath.Join(c.langDir(lang), name)
		data, err := os.ReadFile(path)
		if os.IsNotExist(err) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read glossary: %w", err)
		}
		if err := json.Unmarshal(data, &entries); err != nil {
			return nil, fmt.Errorf("failed to parse glossary: %w", err)
		}
		break
	}

	c.glossaries[lang] = entries
	return entries, nil
}

// LessonTitles maps every lesson id in the index to its frontmatter title.
// Unreadable lessons fall back to their id.
func (c *Curriculum) LessonTitles(lang string) (map[string]string, error) {
	lang = NormalizeLanguage(lang)

	c.mu.Lock()
	cached, ok := c.titles[lang]
	c.mu.Unlock()
	if ok {
		return cached, nil
	}

	idx, err := c.Index(lang)
	if err != nil {
		return nil, err
	}

	titles := make(map[string]string)
	for _, level := range idx.Levels {
		for _, lessonID := range level.Lessons {
			lesson, err := c.Lesson(lang, lessonID)
			if err != nil {
				c.log.Warn().Err(err).Str("lesson_id", lessonID).Msg("Failed to load lesson for title")
				titles[lessonID] = lessonID
				continue
			}
			if lesson.Meta.Title != "" {
				titles[lessonID] = lesson.Meta.Title
			} else {
				titles[lessonID] = lessonID
			}
		}
	}

	c.mu.Lock()
	c.titles[lang] = titles
	c.mu.Unlock()
	return titles, nil
}

// splitFrontmatter separates a leading "---" YAML block from the markdown
// body. Files without frontmatter yield empty metadata and the full text as
// body.
func splitFrontmatter(raw []byte) (Frontmatter, []byte, error) {
	var meta Frontmatter

	text := strings.ReplaceAll(string(raw), "\r\n", "\n")
	if !strings.HasPrefix(text, "---\n") {
		return meta, []byte(text), nil
	}

	rest := text[len("---\n"):]
	end := strings.Index(rest, "\n---\n")
	if end < 0 {
		return meta, []byte(text), nil
	}

	if err := yaml.Unmarshal([]byte(rest[:end]), &meta); err != nil {
		return meta, nil, err
	}

	body := rest[end+len("\n---\n"):]
	return meta, []byte(body), nil
}
