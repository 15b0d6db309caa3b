package contracts

import (
	"embed"
	"encoding/json"
	"fmt"
	"io/fs"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

//go:embed schemas/events
var schemasFS embed.FS

const schemasRoot = "schemas/events"

var compiledSchemas map[string]*jsonschema.Schema

func init() {
	compiled, err := compileSchemas(schemasFS)
	if err != nil {
		panic(fmt.Sprintf("contracts: %v", err))
	}
	compiledSchemas = compiled
}

// compileSchemas добавляет все схемы как ресурсы (для $ref), затем компилирует каждую
func compileSchemas(fsys fs.FS) (map[string]*jsonschema.Schema, error) {
	compiler := jsonschema.NewCompiler()
	compiler.AssertFormat = true

	var paths []string
	err := fs.WalkDir(fsys, schemasRoot, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(path, ".json") {
			return nil
		}
		file, err := fsys.Open(path)
		if err != nil {
			return err
		}
		defer file.Close()
		if err := compiler.AddResource(path, file); err != nil {
			return fmt.Errorf("failed to add schema resource %s: %w", path, err)
		}
		paths = append(paths, path)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("error walking schema resources: %w", err)
	}

	out := make(map[string]*jsonschema.Schema, len(paths))
	for _, path := range paths {
		schema, err := compiler.Compile(path)
		if err != nil {
			return nil, fmt.Errorf("could not compile schema %s: %w", path, err)
		}
		out[keyFromPath(path)] = schema
	}
	return out, nil
}

// keyFromPath "schemas/events/tool-executed/v1.json" -> "ToolExecutedEvent/1.0.0"
func keyFromPath(path string) string {
	trimmed := strings.TrimSuffix(strings.TrimPrefix(path, schemasRoot+"/"), ".json")
	parts := strings.Split(trimmed, "/")
	if len(parts) != 2 {
		return ""
	}
	return EventKey(parts[0], parts[1])
}

// EventKey имя события и версия в том виде, в каком они уходят в заголовки сообщения
func EventKey(name, version string) string {
	return EventName(name) + "/" + EventVersion(version)
}

// EventName "tool-executed" -> "ToolExecutedEvent"
func EventName(name string) string {
	caser := cases.Title(language.English)

	var b strings.Builder
	for _, p := range strings.Split(name, "-") {
		b.WriteString(caser.String(p))
	}
	b.WriteString("Event")
	return b.String()
}

// EventVersion "v1" -> "1.0.0"
func EventVersion(version string) string {
	return strings.TrimPrefix(version, "v") + ".0.0"
}

// ValidateEvent проверяет тело сообщения по схеме события
func ValidateEvent(eventName, eventVersion string, body []byte) error {
	key := eventName + "/" + eventVersion
	schema, ok := compiledSchemas[key]
	if !ok {
		return fmt.Errorf("schema for event '%s' version '%s' not found", eventName, eventVersion)
	}

	var v interface{}
	if err := json.Unmarshal(body, &v); err != nil {
		return fmt.Errorf("message body is not a valid JSON: %w", err)
	}
	if err := schema.Validate(v); err != nil {
		return fmt.Errorf("JSON schema validation failed: %w", err)
	}
	return nil
}
