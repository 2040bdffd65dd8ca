package validation

import (
	"bytes"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/diegoholiveira/jsonlogic/v3"

	"github.com/Victor-armando18/service-policy/internal/domain"
)

// Executor avalia a lógica JsonLogic de uma CrossRule sobre a projeção plana
// do registo. Operadores customizados do domínio são testados primeiro;
// só depois cai na avaliação standard da biblioteca.
type Executor struct {
	customOps map[string]func(args ...any) any
}

func NewExecutor() *Executor {
	e := &Executor{customOps: make(map[string]func(args ...any) any)}
	e.RegisterCustomOperator("dateAfter", OpDateAfter)
	e.RegisterCustomOperator("matches", OpMatches)
	e.RegisterCustomOperator("positive", OpPositive)
	return e
}

func (e *Executor) RegisterCustomOperator(name string, logic func(args ...any) any) {
	e.customOps[name] = logic
}

// Execute devolve o resultado da lógica com as variáveis de contexto dadas.
func (e *Executor) Execute(logic map[string]any, contextVars map[string]any) (any, error) {
	// 1. Tentativa por operadores customizados
	for opName, fn := range e.customOps {
		if args, ok := logic[opName]; ok {
			return e.handleManualEval(args, contextVars, fn), nil
		}
	}

	// 2. Avaliação standard JsonLogic
	ruleJSON, _ := json.Marshal(logic)
	dataJSON, _ := json.Marshal(contextVars)
	var resultBuffer bytes.Buffer

	err := jsonlogic.Apply(strings.NewReader(string(ruleJSON)), strings.NewReader(string(dataJSON)), &resultBuffer)
	if err != nil {
		return nil, fmt.Errorf("regla %v: %w", logic, err)
	}

	var res any
	if resultBuffer.Len() == 0 || strings.TrimSpace(resultBuffer.String()) == "null" {
		return nil, nil
	}
	json.Unmarshal(resultBuffer.Bytes(), &res)
	return res, nil
}

func (e *Executor) handleManualEval(args any, data map[string]any, fn func(args ...any) any) any {
	var params []any
	if v, ok := args.([]any); ok {
		for _, arg := range v {
			params = append(params, e.resolveVar(arg, data))
		}
	} else {
		params = append(params, e.resolveVar(args, data))
	}
	return fn(params...)
}

func (e *Executor) resolveVar(arg any, data map[string]any) any {
	m, ok := arg.(map[string]any)
	if !ok {
		return arg
	}
	path, ok := m["var"].(string)
	if !ok {
		return arg
	}

	record, _ := data["record"].(map[string]any)
	if record == nil {
		return nil
	}
	return record[strings.TrimPrefix(path, "record.")]
}

// --- Operadores customizados ---

// OpDateAfter devolve true quando a primeira data é estritamente posterior
// à segunda. Datas ausentes ou ilegíveis devolvem true: a obrigatoriedade
// é tratada pelas regras de campo, não aqui.
func OpDateAfter(args ...any) any {
	if len(args) < 2 {
		return true
	}
	a, okA := parseRuleDate(args[0])
	b, okB := parseRuleDate(args[1])
	if !okA || !okB {
		return true
	}
	return a.After(b)
}

// OpMatches valida o primeiro argumento (normalizado a maiúsculas) contra a
// expressão regular do segundo.
func OpMatches(args ...any) any {
	if len(args) < 2 {
		return true
	}
	s, _ := args[0].(string)
	pattern, _ := args[1].(string)
	if s == "" || pattern == "" {
		return true
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return true
	}
	return re.MatchString(strings.ToUpper(strings.TrimSpace(s)))
}

// OpPositive devolve true quando o argumento numérico é maior que zero.
func OpPositive(args ...any) any {
	if len(args) == 0 {
		return true
	}
	switch v := args[0].(type) {
	case float64:
		return v > 0
	case int:
		return v > 0
	case int64:
		return v > 0
	}
	return true
}

func parseRuleDate(v any) (time.Time, bool) {
	s, ok := v.(string)
	if !ok || s == "" {
		return time.Time{}, false
	}
	for _, layout := range []string{domain.DateInputLayout, domain.DateWireLayout} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
