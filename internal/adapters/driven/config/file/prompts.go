package file

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/campuskit/tutorbot/internal/core/ports/driven"
)

// Ensure PromptStore implements the interface.
var _ driven.PromptStore = (*PromptStore)(nil)

// PromptStore loads answer prompts from user-editable files on disk.
// Prompts are loaded from a configurable directory with fallback to embedded defaults.
//
// The store uses lazy initialisation - files are only created when first accessed,
// not in the constructor. This makes testing easier and avoids unexpected I/O.
type PromptStore struct {
	mu        sync.RWMutex
	promptDir string
	cache     map[string]string
	initOnce  sync.Once
	initErr   error
}

// defaultPrompts contains embedded default prompts.
// These are used when user files don't exist and as the initial content for new files.
//
//nolint:lll // Prompt content is intentionally long and should not be wrapped.
var defaultPrompts = map[string]string{
	driven.PromptAnswerBrief: `You are an expert university-level electronics teaching assistant.

Your task is to provide a concise answer to the student's question using only the provided textbook excerpts.

======================
PREVIOUS CHAT:
{chat_history}
======================

----------------------
CONTEXT EXCERPTS:
{context}
----------------------

STUDENT QUESTION:
{question}

GUIDELINES:
- Provide a brief, focused answer using only the context above.
- If the context doesn't contain the information, respond with "I don't know based on the given context."
- Structure your response with only the most relevant headers:
    • Key Points
    • Brief Explanation
    • Summary
- Keep the response concise and to the point.
- **Always end with a brief summary or conclusion.**

FINAL ANSWER:`,

	driven.PromptAnswerDetailed: `You are an expert university-level electronics teaching assistant.

Your task is to provide a comprehensive answer to the student's question using the provided textbook excerpts.

======================
PREVIOUS CHAT:
{chat_history}
======================

----------------------
CONTEXT EXCERPTS:
{context}
----------------------

STUDENT QUESTION:
{question}

GUIDELINES:
- Provide a detailed answer using only the information provided in the context above.
- If the context does not mention something, respond with "I don't know based on the given context."
- Structure your response using relevant headers:
    • Description
    • Derivation
    • Formula
    • Example
    • Application
    • Key Points
    • Important Notes
    • Code (if applicable)
- Include mathematical expressions and formulas where relevant.
- Provide detailed examples and applications.
- **Always end with a comprehensive conclusion or summary.**

FINAL ANSWER:`,
}

// NewPromptStore creates a new file-based prompt store.
// If promptDir is empty, defaults to ~/.tutorbot/prompts/.
//
// The constructor does not perform any I/O - directory creation and
// file writes happen lazily on first Load() call.
func NewPromptStore(promptDir string) (*PromptStore, error) {
	if promptDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("get home directory: %w", err)
		}
		promptDir = filepath.Join(home, ".tutorbot", "prompts")
	}

	return &PromptStore{
		promptDir: promptDir,
		cache:     make(map[string]string),
	}, nil
}

// Load returns the prompt template for the given name.
// On first call, initialises the prompt directory and creates default files.
// Returns cached value if available, otherwise loads from file.
// Falls back to embedded default if file doesn't exist.
func (s *PromptStore) Load(name string) (string, error) {
	// Ensure directory and defaults exist (lazy init)
	s.initOnce.Do(s.initialise)
	if s.initErr != nil {
		// Fall back to embedded defaults if init failed
		if prompt, ok := defaultPrompts[name]; ok {
			return prompt, nil
		}
		return "", fmt.Errorf("prompt store init failed: %w", s.initErr)
	}

	// Check cache first (read lock)
	s.mu.RLock()
	if prompt, ok := s.cache[name]; ok {
		s.mu.RUnlock()
		return prompt, nil
	}
	s.mu.RUnlock()

	// Load from file (no lock held during I/O)
	prompt, err := s.loadFromFile(name)
	if err != nil {
		// Fall back to embedded default
		if defaultPrompt, ok := defaultPrompts[name]; ok {
			return defaultPrompt, nil
		}
		return "", fmt.Errorf("load prompt %q: %w", name, err)
	}

	// Cache the result (write lock)
	// Use double-check pattern to avoid overwriting concurrent loads
	s.mu.Lock()
	if _, ok := s.cache[name]; !ok {
		s.cache[name] = prompt
	} else {
		// Another goroutine loaded it first, use their value
		prompt = s.cache[name]
	}
	s.mu.Unlock()

	return prompt, nil
}

// Reload clears the prompt cache, forcing fresh loads from disk.
func (s *PromptStore) Reload() {
	s.mu.Lock()
	s.cache = make(map[string]string)
	s.mu.Unlock()
}

// Dir returns the prompt directory path.
func (s *PromptStore) Dir() string {
	return s.promptDir
}

// initialise creates the prompt directory and default files.
// Called once via sync.Once on first Load().
func (s *PromptStore) initialise() {
	// Create directory
	if err := os.MkdirAll(s.promptDir, 0700); err != nil {
		s.initErr = fmt.Errorf("create prompt directory: %w", err)
		return
	}

	// Create default prompt files (only if they don't exist)
	for name, content := range defaultPrompts {
		path := filepath.Join(s.promptDir, name+".txt")
		if _, err := os.Stat(path); os.IsNotExist(err) {
			if err := os.WriteFile(path, []byte(content), 0600); err != nil {
				s.initErr = fmt.Errorf("create default prompt %q: %w", name, err)
				return
			}
		}
	}

	// Create README
	if err := s.createReadme(); err != nil {
		s.initErr = err
	}
}

// loadFromFile reads a prompt from disk.
func (s *PromptStore) loadFromFile(name string) (string, error) {
	path := filepath.Join(s.promptDir, name+".txt")
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}

// createReadme writes a README file explaining the prompts directory.
func (s *PromptStore) createReadme() error {
	path := filepath.Join(s.promptDir, "README.md")
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		return nil // Already exists or stat error (ignore)
	}

	content := `# Tutorbot Prompts

This directory contains customisable prompts used to build answers.

## Files

- ` + "`answer_brief.txt`" + ` - Template for short answers
- ` + "`answer_detailed.txt`" + ` - Template for long-form answers

## Customisation

Edit any file to customise answer behaviour. Changes take effect on the
next question after a restart.

## Placeholders

Both templates use the following placeholders:
- ` + "`{chat_history}`" + ` - Serialised conversation so far
- ` + "`{context}`" + ` - Retrieved textbook excerpts
- ` + "`{question}`" + ` - The student's question

Ensure customised prompts keep every placeholder.
`
	return os.WriteFile(path, []byte(content), 0600)
}
