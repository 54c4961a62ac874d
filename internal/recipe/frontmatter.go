package recipe

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

const delimiter = "---"

var (
	ErrNoFrontmatter = errors.New("recipe markdown must start with YAML frontmatter (---)")
	ErrUnterminated  = errors.New("recipe frontmatter not terminated (---)")
	ErrMissingID     = errors.New("recipe frontmatter must include id")
)

// ParseMarkdown parses recipe markdown into a Recipe.
// The file must start with a "---" line and the frontmatter must be closed
// by another "---" line. Everything after it is the body.
func ParseMarkdown(md string) (*Recipe, error) {
	frontmatter, body, err := splitFrontmatter(md)
	if err != nil {
		return nil, err
	}

	var r Recipe
	if err := yaml.Unmarshal([]byte(frontmatter), &r); err != nil {
		return nil, fmt.Errorf("failed to parse recipe frontmatter: %w", err)
	}

	r.ID = strings.TrimSpace(r.ID)
	if r.ID == "" {
		return nil, ErrMissingID
	}
	r.Body = body

	return &r, nil
}

// splitFrontmatter splits content into YAML frontmatter and markdown body.
func splitFrontmatter(content string) (frontmatter string, body string, err error) {
	// Normalize line endings
	content = strings.ReplaceAll(content, "\r\n", "\n")

	if !strings.HasPrefix(content, delimiter+"\n") {
		return "", "", ErrNoFrontmatter
	}

	rest := content[len(delimiter)+1:]
	if strings.HasPrefix(rest, delimiter+"\n") {
		return "", "", ErrMissingID
	}

	end := strings.Index(rest, "\n"+delimiter+"\n")
	if end == -1 {
		if strings.HasSuffix(rest, "\n"+delimiter) {
			return rest[:len(rest)-len(delimiter)-1], "", nil
		}
		return "", "", ErrUnterminated
	}

	return rest[:end], rest[end+len(delimiter)+2:], nil
}

// Marshal renders r back to markdown: frontmatter, closing delimiter, body.
func Marshal(r *Recipe) (string, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(r); err != nil {
		return "", fmt.Errorf("failed to marshal recipe frontmatter: %w", err)
	}
	if err := enc.Close(); err != nil {
		return "", fmt.Errorf("failed to marshal recipe frontmatter: %w", err)
	}

	var out strings.Builder
	out.WriteString(delimiter + "\n")
	out.Write(buf.Bytes())
	out.WriteString(delimiter + "\n")
	out.WriteString(r.Body)
	return out.String(), nil
}
