package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Victor-armando18/service-policy/internal/domain"
	"github.com/Victor-armando18/service-policy/internal/interfaces"
)

func setField(t *testing.T, record *domain.PolicyRecord, name domain.FieldName, raw any) {
	t.Helper()
	spec, ok := domain.SpecFor(name)
	if !ok {
		t.Fatalf("campo desconhecido %s", name)
	}
	value, err := domain.Coerce(spec, raw)
	if err != nil {
		t.Fatalf("coerção de %s: %v", name, err)
	}
	record.Set(name, value, domain.ProvenanceManual)
}

func TestValidateField_Obligatoriedad(t *testing.T) {
	engine := NewEngine()
	record := domain.NewPolicyRecord()

	t.Run("campo obrigatório vazio gera erro", func(t *testing.T) {
		verr := engine.ValidateField(domain.FieldAsegurado, record)
		assert.NotNil(t, verr)
		assert.Equal(t, domain.SeverityError, verr.Severity)
	})

	t.Run("campo opcional vazio nunca gera erro", func(t *testing.T) {
		assert.Nil(t, engine.ValidateField(domain.FieldObservaciones, record))
		assert.Nil(t, engine.ValidateField(domain.FieldEndoso, record))
	})

	t.Run("campo obrigatório preenchido passa", func(t *testing.T) {
		setField(t, record, domain.FieldAsegurado, "Juan Pérez")
		assert.Nil(t, engine.ValidateField(domain.FieldAsegurado, record))
	})
}

func TestValidateField_ValidadoresDeCampo(t *testing.T) {
	engine := NewEngine()

	t.Run("documento aceita DNI e CUIT", func(t *testing.T) {
		record := domain.NewPolicyRecord()
		setField(t, record, domain.FieldNumeroDocumento, "28456123")
		assert.Nil(t, engine.ValidateField(domain.FieldNumeroDocumento, record))

		setField(t, record, domain.FieldNumeroDocumento, "20-28456123-9")
		assert.Nil(t, engine.ValidateField(domain.FieldNumeroDocumento, record))

		setField(t, record, domain.FieldNumeroDocumento, "ABC123")
		verr := engine.ValidateField(domain.FieldNumeroDocumento, record)
		assert.NotNil(t, verr)
		assert.Equal(t, domain.SeverityError, verr.Severity)
	})

	t.Run("ano fora de gama", func(t *testing.T) {
		record := domain.NewPolicyRecord()
		setField(t, record, domain.FieldAnio, "1890")
		verr := engine.ValidateField(domain.FieldAnio, record)
		assert.NotNil(t, verr)
	})

	t.Run("email suspeito é só aviso", func(t *testing.T) {
		record := domain.NewPolicyRecord()
		setField(t, record, domain.FieldEmail, "sin-arroba")
		verr := engine.ValidateField(domain.FieldEmail, record)
		assert.NotNil(t, verr)
		assert.Equal(t, domain.SeverityWarning, verr.Severity)
	})
}

func TestValidateSection_ReglasCruzadas(t *testing.T) {
	engine := NewEngine()

	t.Run("vigencia hasta antes de desde é erro", func(t *testing.T) {
		record := domain.NewPolicyRecord()
		setField(t, record, domain.FieldVigenciaDesde, "01/03/2026")
		setField(t, record, domain.FieldVigenciaHasta, "01/03/2025")

		verr := engine.ValidateField(domain.FieldVigenciaHasta, record)
		assert.NotNil(t, verr)
		assert.Equal(t, domain.SeverityError, verr.Severity)
		assert.Equal(t, domain.FieldVigenciaHasta, verr.Field)
	})

	t.Run("vigencia ordenada passa", func(t *testing.T) {
		record := domain.NewPolicyRecord()
		setField(t, record, domain.FieldVigenciaDesde, "01/03/2026")
		setField(t, record, domain.FieldVigenciaHasta, "01/03/2027")
		assert.Nil(t, engine.ValidateField(domain.FieldVigenciaHasta, record))
	})

	t.Run("regra não corre com dependências vazias", func(t *testing.T) {
		record := domain.NewPolicyRecord()
		setField(t, record, domain.FieldVigenciaHasta, "01/03/2025")
		// Sem vigenciaDesde a regra de ordem fica de fora.
		assert.Nil(t, engine.ValidateField(domain.FieldVigenciaHasta, record))
	})

	t.Run("premio acima do total é aviso", func(t *testing.T) {
		record := domain.NewPolicyRecord()
		setField(t, record, domain.FieldPremio, "1500")
		setField(t, record, domain.FieldTotal, "1000")

		errs := engine.ValidateSection(domain.SectionPayment, record)
		var hit *domain.ValidationError
		for i := range errs {
			if errs[i].Field == domain.FieldPremio {
				hit = &errs[i]
			}
		}
		assert.NotNil(t, hit)
		assert.Equal(t, domain.SeverityWarning, hit.Severity)
	})

	t.Run("patente com formato inválido é erro", func(t *testing.T) {
		record := domain.NewPolicyRecord()
		setField(t, record, domain.FieldPatente, "ZZZ99")
		verr := engine.ValidateField(domain.FieldPatente, record)
		assert.NotNil(t, verr)

		setField(t, record, domain.FieldPatente, "AB123CD")
		assert.Nil(t, engine.ValidateField(domain.FieldPatente, record))
	})
}

func TestValidateSection_UnResultadoPorCampo(t *testing.T) {
	engine := NewEngine()
	record := domain.NewPolicyRecord()
	// Secção de pólizas vazia: três obrigatórios em falta, um erro cada.
	errs := engine.ValidateSection(domain.SectionPolicyData, record)
	seen := map[domain.FieldName]int{}
	for _, verr := range errs {
		seen[verr.Field]++
	}
	for field, count := range seen {
		assert.Equal(t, 1, count, "campo %s com resultados duplicados", field)
	}
	assert.Len(t, errs, 3)
}

func TestUsePack_SustituyeReglas(t *testing.T) {
	engine := NewEngine()
	engine.UsePack(&interfaces.RulePack{
		Version: "test",
		Rules: []interfaces.CrossRule{
			{
				ID:       "total-minimo",
				Field:    domain.FieldTotal,
				Section:  domain.SectionPayment,
				Severity: domain.SeverityError,
				Message:  "el total debe superar 100",
				Logic: map[string]any{">": []any{
					map[string]any{"var": "record.total"},
					100,
				}},
				When: []domain.FieldName{domain.FieldTotal},
			},
		},
	})
	assert.Equal(t, "test", engine.PackVersion())

	record := domain.NewPolicyRecord()
	setField(t, record, domain.FieldTotal, "50")
	verr := engine.ValidateField(domain.FieldTotal, record)
	assert.NotNil(t, verr)
	assert.Equal(t, "el total debe superar 100", verr.Message)

	setField(t, record, domain.FieldTotal, "500")
	assert.Nil(t, engine.ValidateField(domain.FieldTotal, record))
}

func TestFieldComplete(t *testing.T) {
	engine := NewEngine()
	record := domain.NewPolicyRecord()

	assert.False(t, engine.FieldComplete(domain.FieldPremio, record))

	setField(t, record, domain.FieldPremio, "0")
	assert.False(t, engine.FieldComplete(domain.FieldPremio, record), "importe no positivo no cuenta como completo")

	setField(t, record, domain.FieldPremio, "1200,50")
	assert.True(t, engine.FieldComplete(domain.FieldPremio, record))
}
