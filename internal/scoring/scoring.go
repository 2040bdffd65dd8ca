// Package scoring calcula a completude das secções do registo. Os valores
// são sempre derivados do estado corrente dos campos: nunca ficam guardados.
package scoring

import (
	"math"

	"github.com/Victor-armando18/service-policy/internal/domain"
	"github.com/Victor-armando18/service-policy/internal/validation"
)

type Engine struct {
	validator *validation.Engine
}

func NewEngine(validator *validation.Engine) *Engine {
	return &Engine{validator: validator}
}

// ScoreSection calcula a completude 0-100 da secção: campos obrigatórios
// preenchidos e válidos sobre o total de obrigatórios. Secções sem campos
// obrigatórios (observações) contam como completas. O ErrorCount inclui
// todos os erros, tocados ou não, ao contrário da validação de exibição.
func (e *Engine) ScoreSection(section domain.SectionID, record *domain.PolicyRecord) domain.SectionProgress {
	var required, complete int
	for _, fs := range domain.SectionSpecs(section) {
		if !fs.Required {
			continue
		}
		required++
		if e.validator.FieldComplete(fs.Name, record) {
			complete++
		}
	}

	completion := 100
	if required > 0 {
		completion = int(math.Round(float64(complete) / float64(required) * 100))
	}

	errorCount := 0
	for _, verr := range e.validator.ValidateSection(section, record) {
		if verr.Severity == domain.SeverityError {
			errorCount++
		}
	}

	return domain.SectionProgress{
		Section:    section,
		Completion: completion,
		ErrorCount: errorCount,
	}
}

// ScoreOverall é a média aritmética das seis secções: uma secção com poucos
// campos obrigatórios pesa o mesmo que uma com muitos.
func (e *Engine) ScoreOverall(record *domain.PolicyRecord) int {
	progress := make([]domain.SectionProgress, 0, len(domain.Sections))
	for _, section := range domain.Sections {
		progress = append(progress, e.ScoreSection(section, record))
	}
	return Overall(progress)
}

// ScoreAll devolve o progresso das seis secções na ordem das abas mais o
// score global, para a interface de consulta do wizard.
func (e *Engine) ScoreAll(record *domain.PolicyRecord) ([]domain.SectionProgress, int) {
	progress := make([]domain.SectionProgress, 0, len(domain.Sections))
	for _, section := range domain.Sections {
		progress = append(progress, e.ScoreSection(section, record))
	}
	return progress, Overall(progress)
}

// Overall arredonda a média das secções já pontuadas. É o único ponto de
// arredondamento do score global.
func Overall(progress []domain.SectionProgress) int {
	if len(progress) == 0 {
		return 0
	}
	sum := 0
	for _, sp := range progress {
		sum += sp.Completion
	}
	return int(math.Round(float64(sum) / float64(len(progress))))
}
