package moderation

import (
	"bufio"
	"bytes"
	"chat-sync/errors"
	"embed"
	"fmt"
	"log/slog"
	"path"
	"strings"
	"sync/atomic"
)

//go:embed dictionaries/*.txt
var dictionaries embed.FS

const DefaultReplacement = '*'

// Options configures the process-wide sanitizer.
type Options struct {
	Languages   []string
	Replacement rune
	// Words are appended to the dictionaries of Languages.
	Words []string
}

var active atomic.Pointer[Moderator]

// Init loads the dictionaries once at process start. Clean panics until Init succeeded.
// The loaded vocabulary is read-only afterwards and needs no teardown.
func Init(opts Options, log *slog.Logger) error {
	if active.Load() != nil {
		return fmt.Errorf("moderation: %w", errors.ErrAlreadyInit)
	}
	words := append([]string(nil), opts.Words...)
	for _, lang := range opts.Languages {
		dictionary, err := LoadDictionary(lang)
		if err != nil {
			return err
		}
		words = append(words, dictionary...)
	}
	replacement := opts.Replacement
	if replacement == 0 {
		replacement = DefaultReplacement
	}
	m, err := NewModerator(words, replacement, log)
	if err != nil {
		return fmt.Errorf("moderation: %w", err)
	}
	if !active.CompareAndSwap(nil, m) {
		return fmt.Errorf("moderation: %w", errors.ErrAlreadyInit)
	}
	log.Info("Moderation dictionaries loaded", "languages", opts.Languages, "words", len(words))
	return nil
}

// Clean masks disallowed vocabulary in text. It is deterministic and idempotent.
func Clean(text string) string {
	m := active.Load()
	if m == nil {
		panic("moderation: Clean called before Init")
	}
	return m.Clean(text)
}

// LoadDictionary returns the embedded word list of lang.
func LoadDictionary(lang string) ([]string, error) {
	data, err := dictionaries.ReadFile(path.Join("dictionaries", lang+".txt"))
	if err != nil {
		return nil, fmt.Errorf("%w: %q", errors.ErrUnknownLanguage, lang)
	}
	var words []string
	scanner := bufio.NewScanner(bytes.NewReader(data))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		words = append(words, line)
	}
	return words, scanner.Err()
}

// Languages lists the embedded dictionaries.
func Languages() []string {
	entries, err := dictionaries.ReadDir("dictionaries")
	if err != nil {
		return nil
	}
	langs := make([]string, 0, len(entries))
	for _, e := range entries {
		langs = append(langs, strings.TrimSuffix(e.Name(), path.Ext(e.Name())))
	}
	return langs
}
