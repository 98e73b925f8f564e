package agents

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/meridianlabs/nexus/internal/prompts"
)

// agentFile is the YAML frontmatter of an agent override file.
type agentFile struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
}

// LoadInstructions returns the instruction text per agent: built-in defaults
// overridden by <dir>/agents/<name>.md files with optional YAML frontmatter.
// A file that fails to parse is skipped with a warning.
func LoadInstructions(dir string, logger *slog.Logger) map[string]string {
	instructions := make(map[string]string, len(prompts.AgentInstructions))
	for name, text := range prompts.AgentInstructions {
		instructions[name] = text
	}
	if dir == "" {
		return instructions
	}

	for _, name := range prompts.AgentNames() {
		path := filepath.Join(dir, "agents", name+".md")
		content, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		body, err := parseAgentFile(content)
		if err != nil {
			logger.Warn("invalid agent override file", "path", path, "error", err)
			continue
		}
		if body != "" {
			instructions[name] = body
			logger.Info("agent instruction overridden", "agent", name, "path", path)
		}
	}
	return instructions
}

// parseAgentFile strips YAML frontmatter, returning the markdown body that
// becomes the agent instruction.
func parseAgentFile(content []byte) (string, error) {
	text := string(content)
	if !strings.HasPrefix(strings.TrimSpace(text), "---") {
		return strings.TrimSpace(text), nil
	}

	rest := strings.TrimSpace(text)
	rest = strings.TrimPrefix(rest, "---")
	idx := strings.Index(rest, "\n---")
	if idx < 0 {
		return strings.TrimSpace(text), nil
	}

	var meta agentFile
	if err := yaml.Unmarshal([]byte(rest[:idx]), &meta); err != nil {
		return "", err
	}
	body := rest[idx+len("\n---"):]
	return strings.TrimSpace(body), nil
}
