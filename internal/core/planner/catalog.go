package planner

import (
	_ "embed"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed tools.yaml
var defaultToolsYAML []byte

// ToolSpec описание одного инструмента для промпта
type ToolSpec struct {
	Name        string   `yaml:"name"`
	Description string   `yaml:"description"`
	Args        []string `yaml:"args"`
}

// Catalog упорядоченный список инструментов
type Catalog struct {
	tools  []ToolSpec
	byName map[string]ToolSpec
}

type catalogFile struct {
	Tools []ToolSpec `yaml:"tools"`
}

// LoadCatalog разбирает YAML-каталог. Имена должны быть уникальны и непусты.
func LoadCatalog(data []byte) (*Catalog, error) {
	var file catalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse tool catalog: %w", err)
	}
	if len(file.Tools) == 0 {
		return nil, fmt.Errorf("tool catalog is empty")
	}

	c := &Catalog{byName: make(map[string]ToolSpec, len(file.Tools))}
	for _, t := range file.Tools {
		t.Name = strings.TrimSpace(t.Name)
		if t.Name == "" {
			return nil, fmt.Errorf("tool catalog contains an entry without name")
		}
		if _, dup := c.byName[t.Name]; dup {
			return nil, fmt.Errorf("tool '%s' is declared twice", t.Name)
		}
		if strings.TrimSpace(t.Description) == "" {
			t.Description = "No description available"
		}
		c.tools = append(c.tools, t)
		c.byName[t.Name] = t
	}
	return c, nil
}

// DefaultCatalog каталог, встроенный в бинарник
func DefaultCatalog() (*Catalog, error) {
	return LoadCatalog(defaultToolsYAML)
}

func (c *Catalog) Has(name string) bool {
	_, ok := c.byName[name]
	return ok
}

func (c *Catalog) Names() []string {
	names := make([]string, len(c.tools))
	for i, t := range c.tools {
		names[i] = t.Name
	}
	return names
}

func (c *Catalog) Tools() []ToolSpec {
	out := make([]ToolSpec, len(c.tools))
	copy(out, c.tools)
	return out
}

// Lines строки вида "- name (args: a, b): description"
func (c *Catalog) Lines() string {
	lines := make([]string, 0, len(c.tools))
	for _, t := range c.tools {
		args := ""
		if len(t.Args) > 0 {
			args = fmt.Sprintf(" (args: %s)", strings.Join(t.Args, ", "))
		}
		lines = append(lines, fmt.Sprintf("- %s%s: %s", t.Name, args, t.Description))
	}
	return strings.Join(lines, "\n")
}
