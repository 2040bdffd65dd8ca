package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// --- Proveniência e valores de campo ---

// Provenance indica a origem do valor atual de um campo. É metadado de
// exibição: nunca participa da validação.
type Provenance string

const (
	ProvenanceNone    Provenance = ""
	ProvenanceScanned Provenance = "scanned"
	ProvenanceClient  Provenance = "client"
	ProvenanceMaster  Provenance = "master"
	ProvenanceManual  Provenance = "manual"
)

// FieldValue é a união etiquetada {valor, proveniência} de cada campo.
// O tipo dinâmico de Value respeita sempre o Kind declarado no FieldSpec:
// string para KindString/KindCode, int64 para KindInteger,
// decimal.Decimal para KindDecimal e time.Time para KindDate.
type FieldValue struct {
	Value      any        `json:"value"`
	Provenance Provenance `json:"provenance"`
	Confidence float64    `json:"confidence,omitempty"`
}

// IsEmpty reporta se o campo ainda não tem valor útil.
func (f FieldValue) IsEmpty() bool {
	switch v := f.Value.(type) {
	case nil:
		return true
	case string:
		return v == ""
	case time.Time:
		return v.IsZero()
	}
	return false
}

// String devolve a representação textual do valor, vazia quando não definido.
func (f FieldValue) String() string {
	switch v := f.Value.(type) {
	case nil:
		return ""
	case string:
		return v
	case int64:
		return fmt.Sprintf("%d", v)
	case decimal.Decimal:
		return v.String()
	case time.Time:
		if v.IsZero() {
			return ""
		}
		return v.Format(DateInputLayout)
	}
	return fmt.Sprintf("%v", f.Value)
}

// Decimal devolve o valor numérico do campo, zero quando ausente.
func (f FieldValue) Decimal() decimal.Decimal {
	switch v := f.Value.(type) {
	case decimal.Decimal:
		return v
	case int64:
		return decimal.NewFromInt(v)
	}
	return decimal.Zero
}

// Int devolve o valor inteiro do campo, zero quando ausente.
func (f FieldValue) Int() int64 {
	if v, ok := f.Value.(int64); ok {
		return v
	}
	return 0
}

// Date devolve a data do campo, zero quando ausente.
func (f FieldValue) Date() time.Time {
	if v, ok := f.Value.(time.Time); ok {
		return v
	}
	return time.Time{}
}

// --- Registo canónico ---

// PolicyRecord é a entidade viva da sessão do wizard. Existe exatamente uma
// por sessão; é mutada campo a campo, nunca substituída fora do Reset.
type PolicyRecord struct {
	Fields  map[FieldName]FieldValue `json:"fields"`
	Touched map[FieldName]bool       `json:"touched"`
}

// NewPolicyRecord cria o registo vazio do início do wizard.
func NewPolicyRecord() *PolicyRecord {
	return &PolicyRecord{
		Fields:  make(map[FieldName]FieldValue),
		Touched: make(map[FieldName]bool),
	}
}

// Clone devolve uma cópia independente do registo. Os valores de campo são
// imutáveis depois da coerção; copiar os maps basta.
func (r *PolicyRecord) Clone() *PolicyRecord {
	out := NewPolicyRecord()
	for name, fv := range r.Fields {
		out.Fields[name] = fv
	}
	for name, touched := range r.Touched {
		out.Touched[name] = touched
	}
	return out
}

// Get devolve o valor atual do campo (zero value quando nunca escrito).
func (r *PolicyRecord) Get(name FieldName) FieldValue {
	return r.Fields[name]
}

// Set escreve o valor já coagido com a proveniência indicada.
func (r *PolicyRecord) Set(name FieldName, value any, prov Provenance) {
	fv := r.Fields[name]
	fv.Value = value
	fv.Provenance = prov
	r.Fields[name] = fv
}

// MarkTouched regista que o utilizador interagiu com o campo.
func (r *PolicyRecord) MarkTouched(name FieldName) {
	r.Touched[name] = true
}

// IsTouched reporta se o campo já foi tocado pelo utilizador.
func (r *PolicyRecord) IsTouched(name FieldName) bool {
	return r.Touched[name]
}

// FlatMap projeta o registo num map plano usado pelas regras declarativas.
// Datas saem como string no layout de entrada, decimais como float64.
func (r *PolicyRecord) FlatMap() map[string]any {
	out := make(map[string]any, len(r.Fields))
	for name, fv := range r.Fields {
		switch v := fv.Value.(type) {
		case decimal.Decimal:
			f, _ := v.Float64()
			out[string(name)] = f
		case int64:
			out[string(name)] = float64(v)
		case time.Time:
			if !v.IsZero() {
				out[string(name)] = v.Format(DateInputLayout)
			}
		case string:
			if v != "" {
				out[string(name)] = v
			}
		}
	}
	return out
}

// --- Estado do wizard ---

// WizardState é o estado corrente do motor de orquestração.
type WizardState string

const (
	StateIdle         WizardState = "idle"
	StatePopulating   WizardState = "populating"
	StateEditing      WizardState = "editing"
	StateSubmitting   WizardState = "submitting"
	StateSubmitted    WizardState = "submitted"
	StateSubmitFailed WizardState = "submit_failed"
)

// SectionProgress é derivado, recalculado a cada mutação do registo.
type SectionProgress struct {
	Section    SectionID `json:"section"`
	Completion int       `json:"completion"`
	ErrorCount int       `json:"errorCount"`
}

// Severity distingue erros bloqueantes de avisos informativos.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// ValidationError nunca é persistido; é recalculado a cada passagem.
type ValidationError struct {
	Field    FieldName `json:"field"`
	Message  string    `json:"message"`
	Severity Severity  `json:"severity"`
}

// ExecutionStep documenta uma ação do motor para fins de diagnóstico.
type ExecutionStep struct {
	Stage  string `json:"stage"`
	Field  string `json:"field,omitempty"`
	Action string `json:"action"`
}

// --- Constantes e erros de domínio ---

// DateInputLayout é o formato de datas aceite na escrita de campos.
const DateInputLayout = "02/01/2006"

// DateWireLayout é o formato exigido pelo backend de pólizas.
const DateWireLayout = "2006-01-02"

var (
	ErrUnknownField      = fmt.Errorf("campo desconhecido")
	ErrInvalidState      = fmt.Errorf("operação inválida no estado atual")
	ErrSubmissionBlocked = fmt.Errorf("submissão bloqueada: registo incompleto")
	ErrSubmitInFlight    = fmt.Errorf("submissão já em curso")
	ErrCatalogLoad       = fmt.Errorf("falha ao carregar catálogo")
	ErrUnknownCatalog    = fmt.Errorf("catálogo desconhecido")
)
