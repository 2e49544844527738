package content

import (
	"fmt"
	"log/slog"
	"strings"

	"codeberg.org/readeck/go-readability"
)

// Extractor pulls the article body out of a full site page. The result
// runs through the sanitizer so extracted posts get the same cleanup
// as posts delivered with a body.
type Extractor struct {
	sanitizer *Sanitizer
}

func NewExtractor(sanitizer *Sanitizer) *Extractor {
	return &Extractor{sanitizer: sanitizer}
}

func (e *Extractor) Run(data []byte) (string, error) {
	if len(data) == 0 {
		return "", fmt.Errorf("HTML data is empty")
	}

	article, err := readability.FromReader(strings.NewReader(string(data)), nil)
	if err != nil {
		return "", fmt.Errorf("failed to extract content: %w", err)
	}

	if article.Content == "" {
		return "", fmt.Errorf("no content extracted from HTML data")
	}

	slog.Debug("Content extracted successfully",
		"title", article.Title,
		"content_length", len(article.Content))

	return e.sanitizer.Run(article.Content), nil
}
