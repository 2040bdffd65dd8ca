package infrastructure

import (
	"encoding/json"
	"fmt"
	"reflect"

	jsonpatch "github.com/evanphx/json-patch/v5"

	"github.com/Victor-armando18/service-policy/internal/domain"
	"github.com/Victor-armando18/service-policy/internal/interfaces"
)

// ApplyFieldPatch aplica um patch RFC 6902 à projeção plana do registo e
// encaminha cada chave alterada por UpdateField, para que a coerção, os
// derivados e o scoring corram pelo caminho normal do motor.
func ApplyFieldPatch(wizard interfaces.WizardFacade, patchData []byte) error {
	original := wizard.Record().FlatMap()
	originalJSON, _ := json.Marshal(original)

	patch, err := jsonpatch.DecodePatch(patchData)
	if err != nil {
		return fmt.Errorf("falha ao decodificar patch: %w", err)
	}

	modifiedJSON, err := patch.Apply(originalJSON)
	if err != nil {
		return fmt.Errorf("falha ao aplicar patch: %w", err)
	}

	var modified map[string]any
	if err := json.Unmarshal(modifiedJSON, &modified); err != nil {
		return err
	}

	for key, value := range modified {
		if reflect.DeepEqual(original[key], value) {
			continue
		}
		if err := wizard.UpdateField(domain.FieldName(key), value); err != nil {
			return err
		}
	}

	// Chaves removidas pelo patch limpam o campo.
	for key := range original {
		if _, still := modified[key]; !still {
			if err := wizard.UpdateField(domain.FieldName(key), ""); err != nil {
				return err
			}
		}
	}
	return nil
}
