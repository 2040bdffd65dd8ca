package validation

import (
	"context"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/Victor-armando18/service-policy/internal/interfaces"
)

// YAMLRulePackLoader carrega packs de regras cross-field de ficheiros YAML,
// permitindo ajustar regras de negócio sem recompilar.
type YAMLRulePackLoader struct{}

func NewYAMLRulePackLoader() interfaces.RulePackLoader {
	return &YAMLRulePackLoader{}
}

func (l *YAMLRulePackLoader) Load(ctx context.Context, path string) (*interfaces.RulePack, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("falha ao ler o pack de regras %s: %w", path, err)
	}

	var pack interfaces.RulePack
	if err := yaml.Unmarshal(data, &pack); err != nil {
		return nil, fmt.Errorf("falha ao parsear o pack de regras: %w", err)
	}
	if pack.Version == "" {
		return nil, fmt.Errorf("pack de regras sem versão: %s", path)
	}
	return &pack, nil
}
