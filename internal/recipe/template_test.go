package recipe

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRender(t *testing.T) {
	vars := map[string]string{"agentId": "acme", "agentName": "Acme Bot", "team.id": "t1"}

	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "no placeholders", "no placeholders"},
		{"single", "Hi {{agentName}}", "Hi Acme Bot"},
		{"spaces", "{{ agentId }}/{{agentId}}", "acme/acme"},
		{"dotted key", "team={{team.id}}", "team=t1"},
		{"unknown key renders empty", "[{{missing}}]", "[]"},
		{"not a placeholder", "{{ two words }}", "{{ two words }}"},
		{"single braces", "{agentId}", "{agentId}"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Render(tt.in, vars))
		})
	}
}

func TestRender_NilVars(t *testing.T) {
	assert.Equal(t, "x", Render("x{{a}}", nil))
}

func TestPlaceholders(t *testing.T) {
	keys := Placeholders("{{b}} {{ a }} {{b}} {{c.d}}")
	assert.Equal(t, []string{"b", "a", "c.d"}, keys)
	assert.Empty(t, Placeholders("nothing here"))
}
