package scaffold

// WorkspaceHint is printed before skill install commands.
const WorkspaceHint = `cd "$WORKSPACE"  # set WORKSPACE=~/.openclaw/workspace`

// InstallCommands returns shell lines that install the given skills.
func InstallCommands(skills []string) []string {
	if len(skills) == 0 {
		return nil
	}
	lines := make([]string, 0, len(skills)+1)
	lines = append(lines, WorkspaceHint)
	for _, skill := range skills {
		lines = append(lines, "npx clawhub@latest install "+skill)
	}
	return lines
}
