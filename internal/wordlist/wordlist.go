// Package wordlist loads and filters the word lists behind generated
// practice lessons.
package wordlist

import (
	"bufio"
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// ErrEmpty is returned when a list holds no usable words.
var ErrEmpty = errors.New("word list is empty")

//go:embed words_en.txt
var builtinEnglish []byte

// Builtin returns the bundled English list.
func Builtin() []string {
	words, err := Read(bytes.NewReader(builtinEnglish))
	if err != nil {
		panic(fmt.Sprintf("bundled word list: %v", err))
	}
	return words
}

// LoadWords reads one word per line from the provided file path.
func LoadWords(path string) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := file.Close(); cerr != nil {
			// Best-effort close for read-only word list.
			_ = cerr
		}
	}()
	words, err := Read(file)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return words, nil
}

// Read reads one word per line. Blank lines and lines starting with # are
// skipped.
func Read(r io.Reader) ([]string, error) {
	var words []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		words = append(words, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if len(words) == 0 {
		return nil, ErrEmpty
	}
	return words, nil
}
