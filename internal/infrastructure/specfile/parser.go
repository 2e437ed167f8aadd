package specfile

import (
	"fmt"
	"os"
	"regexp"

	"gopkg.in/yaml.v3"

	"github.com/alexisbeaulieu97/specdriver/internal/domain/spec"
	"github.com/alexisbeaulieu97/specdriver/internal/registry"
	sderrors "github.com/alexisbeaulieu97/specdriver/pkg/errors"
)

var yamlLineRegex = regexp.MustCompile(`line (\d+)`)

// ParseDocument loads a specification file from disk and validates it.
func ParseDocument(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, sderrors.NewParseError(path, 0, err)
	}

	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, sderrors.NewParseError(path, extractLine(err), err)
	}

	if err := ValidateDocument(&doc); err != nil {
		return nil, err
	}

	return &doc, nil
}

// Load parses a specification file and compiles it against the registry.
// Unknown grammars compile to placeholder steps rather than failing the load,
// so a specification always loads once it parses and validates.
func Load(path string, reg *registry.Registry) (*spec.Specification, error) {
	doc, err := ParseDocument(path)
	if err != nil {
		return nil, err
	}
	return Compile(doc, reg), nil
}

// Compile turns a validated document into an executable specification.
func Compile(doc *Document, reg *registry.Registry) *spec.Specification {
	return &spec.Specification{
		ID:          doc.ID,
		Lifecycle:   lifecycleOrDefault(doc.Lifecycle),
		MaxRetries:  doc.MaxRetries,
		Tags:        append([]string(nil), doc.Tags...),
		LastUpdated: doc.LastUpdated,
		Steps:       reg.CompileAll(doc.Definitions()),
	}
}

func lifecycleOrDefault(lifecycle string) string {
	if lifecycle == "" {
		return "draft"
	}
	return lifecycle
}

func extractLine(err error) int {
	if err == nil {
		return 0
	}

	matches := yamlLineRegex.FindStringSubmatch(err.Error())
	if len(matches) != 2 {
		return 0
	}

	var line int
	if _, scanErr := fmt.Sscanf(matches[1], "%d", &line); scanErr != nil {
		return 0
	}

	return line
}
