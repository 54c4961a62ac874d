// Package recipe loads and edits recipe markdown files.
//
// A recipe is a markdown document with YAML frontmatter:
//
//	---
//	id: standup-bot
//	kind: team
//	name: Standup bot
//	requiredSkills: [calendar]
//	templates:
//	  soul: "You are {{agentName}}."
//	files:
//	  - path: SOUL.md
//	    template: soul
//	cronJobs:
//	  - id: daily
//	    schedule: "0 9 * * 1-5"
//	    message: Post the standup summary
//	---
//
//	Free-form notes for humans.
package recipe

// Kind is the type of workspace a recipe scaffolds.
type Kind string

const (
	KindAgent Kind = "agent"
	KindTeam  Kind = "team"
)

// Source is where a recipe file was found.
type Source string

const (
	SourceBuiltin   Source = "builtin"
	SourceWorkspace Source = "workspace"
)

// FileMode controls how a scaffolded file treats an existing file.
type FileMode string

const (
	ModeCreateOnly FileMode = "createOnly"
	ModeOverwrite  FileMode = "overwrite"
)

// FileSpec maps a template to a path inside the scaffolded workspace.
type FileSpec struct {
	Path     string   `yaml:"path"`
	Template string   `yaml:"template"`
	Mode     FileMode `yaml:"mode,omitempty"`
}

// TeamAgent is one role of a team recipe.
type TeamAgent struct {
	Role string `yaml:"role"`
	Name string `yaml:"name,omitempty"`
}

// Recipe is a parsed recipe file.
type Recipe struct {
	ID             string            `yaml:"id"`
	Kind           Kind              `yaml:"kind,omitempty"`
	Name           string            `yaml:"name,omitempty"`
	Description    string            `yaml:"description,omitempty"`
	Version        string            `yaml:"version,omitempty"`
	RequiredSkills []string          `yaml:"requiredSkills,omitempty"`
	Templates      map[string]string `yaml:"templates,omitempty"`
	Files          []FileSpec        `yaml:"files,omitempty"`
	Agents         []TeamAgent       `yaml:"agents,omitempty"`
	Tools          any               `yaml:"tools,omitempty"`
	CronJobs       any               `yaml:"cronJobs,omitempty"` // Normalized by the cron package

	// Extra keeps unknown frontmatter keys so Marshal round-trips them.
	Extra map[string]any `yaml:",inline"`

	Body   string `yaml:"-"`
	Source Source `yaml:"-"`
	Path   string `yaml:"-"`
}

// CronJobDeclarations returns the raw cronJobs frontmatter value.
func (r *Recipe) CronJobDeclarations() any {
	return r.CronJobs
}

// EffectiveKind returns Kind, or fallback when the recipe does not declare one.
func (r *Recipe) EffectiveKind(fallback Kind) Kind {
	if r.Kind == "" {
		return fallback
	}
	return r.Kind
}

// DisplayName returns Name, falling back to ID.
func (r *Recipe) DisplayName() string {
	if r.Name != "" {
		return r.Name
	}
	return r.ID
}

// CronJobCount returns the number of declared jobs without validating them.
func (r *Recipe) CronJobCount() int {
	if jobs, ok := r.CronJobs.([]any); ok {
		return len(jobs)
	}
	return 0
}
