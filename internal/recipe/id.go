package recipe

import (
	"errors"
	"fmt"
	"strings"
	"unicode"

	"github.com/wasilibs/go-re2"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// MaxAutoIncrement bounds the -N suffix tried by PickID.
const MaxAutoIncrement = 1000

var (
	idPattern        = re2.MustCompile(`^[a-z0-9][a-z0-9._-]*$`)
	nonSlugPattern   = re2.MustCompile(`[^a-z0-9]+`)
	ErrNoAvailableID = errors.New("no available recipe id")
)

// ValidateID checks that id is usable as a recipe id and file name.
func ValidateID(id string) error {
	if !idPattern.MatchString(id) {
		return fmt.Errorf("invalid recipe id %q: must match [a-z0-9][a-z0-9._-]*", id)
	}
	return nil
}

// Slugify turns a display name into an id: accents folded, lowercased,
// runs of other characters collapsed to "-".
func Slugify(name string) string {
	folded, _, err := transform.String(
		transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)), norm.NFC),
		name,
	)
	if err != nil {
		folded = name
	}
	slug := nonSlugPattern.ReplaceAllString(strings.ToLower(folded), "-")
	return strings.Trim(slug, "-")
}

// ConflictError is returned when the wanted id is taken and neither
// overwrite nor auto-increment was requested.
type ConflictError struct {
	ID          string
	Suggestions []string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("recipe id already exists: %s. Refusing to overwrite. Suggestions: %s. "+
		"Re-run with --recipe-id, --auto-increment, or --overwrite-recipe.",
		e.ID, strings.Join(e.Suggestions, ", "))
}

// PickOptions configures PickID.
type PickOptions struct {
	BaseID        string
	Overwrite     bool
	AutoIncrement bool
	IsTaken       func(id string) bool

	// WorkspaceFileExists, when set, restricts Overwrite to ids backed by a
	// workspace file, so builtin recipes are never shadowed silently.
	WorkspaceFileExists func(id string) bool
}

// PickID returns an available recipe id following overwrite/auto-increment rules.
func PickID(opts PickOptions) (string, error) {
	if !opts.IsTaken(opts.BaseID) {
		return opts.BaseID, nil
	}

	if opts.Overwrite {
		if opts.WorkspaceFileExists != nil && !opts.WorkspaceFileExists(opts.BaseID) {
			return "", fmt.Errorf("recipe id is already taken by a non-workspace recipe: %s. "+
				"Choose a different id (e.g. %s-2) or pass --auto-increment", opts.BaseID, opts.BaseID)
		}
		return opts.BaseID, nil
	}

	if opts.AutoIncrement {
		for n := 2; n < MaxAutoIncrement; n++ {
			candidate := fmt.Sprintf("%s-%d", opts.BaseID, n)
			if !opts.IsTaken(candidate) {
				return candidate, nil
			}
		}
		return "", fmt.Errorf("%w for %s (tried up to -%d)", ErrNoAvailableID, opts.BaseID, MaxAutoIncrement-1)
	}

	return "", &ConflictError{
		ID: opts.BaseID,
		Suggestions: []string{
			opts.BaseID + "-2",
			opts.BaseID + "-3",
			opts.BaseID + "-4",
		},
	}
}
