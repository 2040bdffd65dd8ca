package validation

import (
	"fmt"
	"log"

	"github.com/Victor-armando18/service-policy/internal/domain"
	"github.com/Victor-armando18/service-policy/internal/interfaces"
)

// Engine é o motor de validação sem estado: avalia regra a regra sobre o
// registo corrente e devolve resultados estruturados, nunca persistidos.
type Engine struct {
	executor *Executor
	pack     *interfaces.RulePack
}

func NewEngine() *Engine {
	return &Engine{
		executor: NewExecutor(),
		pack:     DefaultRulePack(),
	}
}

// UsePack substitui o pack de regras cross-field compilado por defeito.
func (e *Engine) UsePack(pack *interfaces.RulePack) {
	if pack != nil {
		e.pack = pack
	}
}

// PackVersion devolve a versão do pack de regras ativo.
func (e *Engine) PackVersion() string {
	return e.pack.Version
}

// ValidateField avalia um único campo: obrigatoriedade, verificação
// específica do campo e regras cross-field que o tenham como alvo.
// Devolve o primeiro resultado encontrado, nil quando o campo está bem.
func (e *Engine) ValidateField(name domain.FieldName, record *domain.PolicyRecord) *domain.ValidationError {
	spec, ok := domain.SpecFor(name)
	if !ok {
		return nil
	}

	fv := record.Get(name)
	if fv.IsEmpty() {
		if spec.Required {
			return &domain.ValidationError{
				Field:    name,
				Message:  fmt.Sprintf("el campo %s es obligatorio", name),
				Severity: domain.SeverityError,
			}
		}
		// Campos opcionais por preencher nunca geram erros.
		return nil
	}

	if validator, ok := fieldValidators[name]; ok {
		if verr := validator(fv); verr != nil {
			return verr
		}
	}

	flat := record.FlatMap()
	for _, rule := range e.pack.Rules {
		if rule.Field != name {
			continue
		}
		if verr := e.evalCrossRule(rule, record, flat); verr != nil {
			return verr
		}
	}
	return nil
}

// ValidateSection avalia todos os campos da secção mais as regras
// cross-field da secção, garantindo no máximo um resultado por campo.
func (e *Engine) ValidateSection(section domain.SectionID, record *domain.PolicyRecord) []domain.ValidationError {
	var errs []domain.ValidationError
	seen := make(map[domain.FieldName]bool)

	for _, fs := range domain.SectionSpecs(section) {
		if verr := e.ValidateField(fs.Name, record); verr != nil && !seen[verr.Field] {
			seen[verr.Field] = true
			errs = append(errs, *verr)
		}
	}

	flat := record.FlatMap()
	for _, rule := range e.pack.Rules {
		if rule.Section != section || seen[rule.Field] {
			continue
		}
		if verr := e.evalCrossRule(rule, record, flat); verr != nil {
			seen[verr.Field] = true
			errs = append(errs, *verr)
		}
	}
	return errs
}

// FieldComplete reporta se o campo tem valor não vazio e válido para o seu
// tipo. É o predicado de completude usado pelo scoring: as regras
// cross-field contam como erros mas não retiram completude.
func (e *Engine) FieldComplete(name domain.FieldName, record *domain.PolicyRecord) bool {
	fv := record.Get(name)
	if fv.IsEmpty() {
		return false
	}
	if validator, ok := fieldValidators[name]; ok {
		if verr := validator(fv); verr != nil && verr.Severity == domain.SeverityError {
			return false
		}
	}
	return true
}

func (e *Engine) evalCrossRule(rule interfaces.CrossRule, record *domain.PolicyRecord, flat map[string]any) *domain.ValidationError {
	for _, dep := range rule.When {
		if record.Get(dep).IsEmpty() {
			return nil
		}
	}

	out, err := e.executor.Execute(rule.Logic, map[string]any{"record": flat})
	if err != nil {
		// Regra ilegível não pode bloquear a edição; fica só no diagnóstico.
		log.Printf("[validation] regla %s: %v", rule.ID, err)
		return nil
	}
	if passed, ok := out.(bool); ok && !passed {
		return &domain.ValidationError{
			Field:    rule.Field,
			Message:  rule.Message,
			Severity: rule.Severity,
		}
	}
	return nil
}
