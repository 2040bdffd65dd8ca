package validation

import (
	"fmt"
	"regexp"
	"time"

	"github.com/Victor-armando18/service-policy/internal/domain"
	"github.com/Victor-armando18/service-policy/internal/interfaces"
)

// fieldValidator verifica o valor já coagido de um campo preenchido.
// Devolve nil quando o valor é aceitável.
type fieldValidator func(fv domain.FieldValue) *domain.ValidationError

var (
	dniPattern   = regexp.MustCompile(`^[0-9]{7,8}$`)
	cuitPattern  = regexp.MustCompile(`^[0-9]{2}-?[0-9]{8}-?[0-9]$`)
	emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)
)

// fieldValidators é a tabela estática de verificações específicas por campo.
// Só corre sobre campos preenchidos; a obrigatoriedade é tratada à parte.
var fieldValidators = map[domain.FieldName]fieldValidator{
	domain.FieldNumeroDocumento: func(fv domain.FieldValue) *domain.ValidationError {
		s := fv.String()
		if dniPattern.MatchString(s) || cuitPattern.MatchString(s) {
			return nil
		}
		return &domain.ValidationError{
			Field:    domain.FieldNumeroDocumento,
			Message:  "número de documento inválido (se espera DNI o CUIT)",
			Severity: domain.SeverityError,
		}
	},
	domain.FieldEmail: func(fv domain.FieldValue) *domain.ValidationError {
		if emailPattern.MatchString(fv.String()) {
			return nil
		}
		return &domain.ValidationError{
			Field:    domain.FieldEmail,
			Message:  "dirección de email sospechosa",
			Severity: domain.SeverityWarning,
		}
	},
	domain.FieldAnio: func(fv domain.FieldValue) *domain.ValidationError {
		year := fv.Int()
		max := int64(time.Now().Year() + 1)
		if year >= 1950 && year <= max {
			return nil
		}
		return &domain.ValidationError{
			Field:    domain.FieldAnio,
			Message:  fmt.Sprintf("año fuera de rango (1950-%d)", max),
			Severity: domain.SeverityError,
		}
	},
	domain.FieldSumaAsegurada: positiveAmount(domain.FieldSumaAsegurada),
	domain.FieldPremio:        positiveAmount(domain.FieldPremio),
	domain.FieldTotal:         positiveAmount(domain.FieldTotal),
	domain.FieldCuotas: func(fv domain.FieldValue) *domain.ValidationError {
		if fv.Int() > 0 {
			return nil
		}
		return &domain.ValidationError{
			Field:    domain.FieldCuotas,
			Message:  "la cantidad de cuotas debe ser mayor a cero",
			Severity: domain.SeverityError,
		}
	},
}

func positiveAmount(name domain.FieldName) fieldValidator {
	return func(fv domain.FieldValue) *domain.ValidationError {
		if fv.Decimal().IsPositive() {
			return nil
		}
		return &domain.ValidationError{
			Field:    name,
			Message:  "el importe debe ser mayor a cero",
			Severity: domain.SeverityError,
		}
	}
}

// DefaultRulePack é o pack compilado de regras cross-field. Um pack externo
// carregado por YAML substitui-o por completo.
func DefaultRulePack() *interfaces.RulePack {
	return &interfaces.RulePack{
		Version: "v1",
		Rules: []interfaces.CrossRule{
			{
				ID:       "vigencia-orden",
				Field:    domain.FieldVigenciaHasta,
				Section:  domain.SectionPolicyData,
				Severity: domain.SeverityError,
				Message:  "la vigencia hasta debe ser posterior a la vigencia desde",
				Logic: map[string]any{"dateAfter": []any{
					map[string]any{"var": "record.vigenciaHasta"},
					map[string]any{"var": "record.vigenciaDesde"},
				}},
				When: []domain.FieldName{domain.FieldVigenciaDesde, domain.FieldVigenciaHasta},
			},
			{
				ID:       "premio-vs-total",
				Field:    domain.FieldPremio,
				Section:  domain.SectionPayment,
				Severity: domain.SeverityWarning,
				Message:  "el premio supera el total de la póliza",
				Logic: map[string]any{"<=": []any{
					map[string]any{"var": "record.premio"},
					map[string]any{"var": "record.total"},
				}},
				When: []domain.FieldName{domain.FieldPremio, domain.FieldTotal},
			},
			{
				ID:       "cuotas-maximo",
				Field:    domain.FieldCuotas,
				Section:  domain.SectionPayment,
				Severity: domain.SeverityWarning,
				Message:  "cantidad de cuotas inusual (mayor a 12)",
				Logic: map[string]any{"<=": []any{
					map[string]any{"var": "record.cuotas"},
					12,
				}},
				When: []domain.FieldName{domain.FieldCuotas},
			},
			{
				ID:       "patente-formato",
				Field:    domain.FieldPatente,
				Section:  domain.SectionVehicleData,
				Severity: domain.SeverityError,
				Message:  "formato de patente inválido",
				Logic: map[string]any{"matches": []any{
					map[string]any{"var": "record.patente"},
					"^([A-Z]{3} ?[0-9]{3}|[A-Z]{2} ?[0-9]{3} ?[A-Z]{2})$",
				}},
				When: []domain.FieldName{domain.FieldPatente},
			},
		},
	}
}
