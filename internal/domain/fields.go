package domain

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// FieldName identifica um campo do registo. Os nomes seguem o vocabulário
// do negócio (espanhol), tal como chegam do serviço de extração.
type FieldName string

// SectionID identifica uma das seis secções do registo.
type SectionID string

const (
	SectionBasicData    SectionID = "datos_basicos"
	SectionPolicyData   SectionID = "datos_poliza"
	SectionVehicleData  SectionID = "datos_vehiculo"
	SectionCoverageData SectionID = "datos_cobertura"
	SectionPayment      SectionID = "condiciones_pago"
	SectionObservations SectionID = "observaciones"
)

// Sections é a ordem de navegação das abas do wizard.
var Sections = []SectionID{
	SectionBasicData,
	SectionPolicyData,
	SectionVehicleData,
	SectionCoverageData,
	SectionPayment,
	SectionObservations,
}

// Kind é o tipo semântico declarado de um campo.
type Kind string

const (
	KindString  Kind = "string"
	KindInteger Kind = "integer"
	KindDecimal Kind = "decimal"
	KindDate    Kind = "date"
	KindCode    Kind = "code"
)

// FieldSpec declara um campo: secção, tipo semântico, obrigatoriedade e,
// quando aplicável, o catálogo que alimenta os campos KindCode.
type FieldSpec struct {
	Name     FieldName
	Section  SectionID
	Kind     Kind
	Required bool
	Catalog  CatalogName
}

// Nomes de campo. Mantidos como constantes para evitar acessos stringly-typed
// espalhados pelos call sites.
const (
	FieldAsegurado       FieldName = "asegurado"
	FieldTipoDocumento   FieldName = "tipoDocumento"
	FieldNumeroDocumento FieldName = "numeroDocumento"
	FieldDomicilio       FieldName = "domicilio"
	FieldLocalidad       FieldName = "localidad"
	FieldProvincia       FieldName = "provincia"
	FieldCodigoPostal    FieldName = "codigoPostal"
	FieldTelefono        FieldName = "telefono"
	FieldEmail           FieldName = "email"
	FieldCompania        FieldName = "compania"

	FieldNumeroPoliza  FieldName = "numeroPoliza"
	FieldEndoso        FieldName = "endoso"
	FieldVigenciaDesde FieldName = "vigenciaDesde"
	FieldVigenciaHasta FieldName = "vigenciaHasta"
	FieldTipoOperacion FieldName = "tipoOperacion"
	FieldEstado        FieldName = "estado"

	FieldMarca       FieldName = "marca"
	FieldModelo      FieldName = "modelo"
	FieldDescripcion FieldName = "descripcionVehiculo"
	FieldAnio        FieldName = "anio"
	FieldPatente     FieldName = "patente"
	FieldMotor       FieldName = "motor"
	FieldChasis      FieldName = "chasis"
	FieldCombustible FieldName = "combustible"
	FieldDestino     FieldName = "destino"
	FieldCategoria   FieldName = "categoria"
	FieldCalidad     FieldName = "calidad"

	FieldCobertura     FieldName = "cobertura"
	FieldTarifa        FieldName = "tarifa"
	FieldSumaAsegurada FieldName = "sumaAsegurada"
	FieldFranquicia    FieldName = "franquicia"

	FieldMoneda     FieldName = "moneda"
	FieldFormaPago  FieldName = "formaPago"
	FieldPremio     FieldName = "premio"
	FieldTotal      FieldName = "total"
	FieldCuotas     FieldName = "cuotas"
	FieldValorCuota FieldName = "valorCuota"

	FieldObservaciones FieldName = "observaciones"
	FieldNotasScanner  FieldName = "notasScanner"
)

// fieldSpecs é a tabela estática que governa coerção, validação e scoring.
var fieldSpecs = []FieldSpec{
	{FieldAsegurado, SectionBasicData, KindString, true, ""},
	{FieldTipoDocumento, SectionBasicData, KindCode, true, ""},
	{FieldNumeroDocumento, SectionBasicData, KindString, true, ""},
	{FieldDomicilio, SectionBasicData, KindString, true, ""},
	{FieldLocalidad, SectionBasicData, KindString, true, ""},
	{FieldProvincia, SectionBasicData, KindString, false, ""},
	{FieldCodigoPostal, SectionBasicData, KindString, false, ""},
	{FieldTelefono, SectionBasicData, KindString, false, ""},
	{FieldEmail, SectionBasicData, KindString, false, ""},
	{FieldCompania, SectionBasicData, KindCode, true, ""},

	{FieldNumeroPoliza, SectionPolicyData, KindString, true, ""},
	{FieldEndoso, SectionPolicyData, KindString, false, ""},
	{FieldVigenciaDesde, SectionPolicyData, KindDate, true, ""},
	{FieldVigenciaHasta, SectionPolicyData, KindDate, true, ""},
	{FieldTipoOperacion, SectionPolicyData, KindCode, false, CatalogTransactionType},
	{FieldEstado, SectionPolicyData, KindCode, false, CatalogStatus},

	{FieldMarca, SectionVehicleData, KindString, true, ""},
	{FieldModelo, SectionVehicleData, KindString, true, ""},
	{FieldDescripcion, SectionVehicleData, KindString, false, ""},
	{FieldAnio, SectionVehicleData, KindInteger, true, ""},
	{FieldPatente, SectionVehicleData, KindString, true, ""},
	{FieldMotor, SectionVehicleData, KindString, false, ""},
	{FieldChasis, SectionVehicleData, KindString, false, ""},
	{FieldCombustible, SectionVehicleData, KindCode, false, CatalogFuelType},
	{FieldDestino, SectionVehicleData, KindCode, true, CatalogDestination},
	{FieldCategoria, SectionVehicleData, KindCode, false, CatalogCategory},
	{FieldCalidad, SectionVehicleData, KindCode, false, CatalogQuality},

	{FieldCobertura, SectionCoverageData, KindString, true, ""},
	{FieldTarifa, SectionCoverageData, KindCode, false, CatalogTariff},
	{FieldSumaAsegurada, SectionCoverageData, KindDecimal, true, ""},
	{FieldFranquicia, SectionCoverageData, KindDecimal, false, ""},

	{FieldMoneda, SectionPayment, KindCode, true, CatalogCurrency},
	{FieldFormaPago, SectionPayment, KindCode, true, CatalogPaymentMethod},
	{FieldPremio, SectionPayment, KindDecimal, true, ""},
	{FieldTotal, SectionPayment, KindDecimal, true, ""},
	{FieldCuotas, SectionPayment, KindInteger, true, ""},
	{FieldValorCuota, SectionPayment, KindDecimal, false, ""},

	{FieldObservaciones, SectionObservations, KindString, false, ""},
	{FieldNotasScanner, SectionObservations, KindString, false, ""},
}

var (
	specIndex      map[FieldName]FieldSpec
	sectionFields  map[SectionID][]FieldSpec
	requiredByName map[FieldName]bool
)

func init() {
	specIndex = make(map[FieldName]FieldSpec, len(fieldSpecs))
	sectionFields = make(map[SectionID][]FieldSpec)
	requiredByName = make(map[FieldName]bool)
	for _, fs := range fieldSpecs {
		specIndex[fs.Name] = fs
		sectionFields[fs.Section] = append(sectionFields[fs.Section], fs)
		if fs.Required {
			requiredByName[fs.Name] = true
		}
	}
}

// SpecFor devolve o FieldSpec do campo, com ok=false para nomes desconhecidos.
func SpecFor(name FieldName) (FieldSpec, bool) {
	fs, ok := specIndex[name]
	return fs, ok
}

// SectionSpecs devolve os specs da secção na ordem de declaração.
func SectionSpecs(section SectionID) []FieldSpec {
	return sectionFields[section]
}

// IsRequired reporta se o campo é obrigatório.
func IsRequired(name FieldName) bool {
	return requiredByName[name]
}

// Coerce converte o input (texto ou tipo nativo) para o tipo semântico do
// spec. String vazia limpa o campo (devolve nil sem erro). É a fronteira
// única de coerção: depois dela o tipo dinâmico do valor está garantido.
func Coerce(spec FieldSpec, input any) (any, error) {
	if input == nil {
		return nil, nil
	}
	if s, ok := input.(string); ok && strings.TrimSpace(s) == "" {
		return nil, nil
	}

	switch spec.Kind {
	case KindString, KindCode:
		switch v := input.(type) {
		case string:
			return strings.TrimSpace(v), nil
		case float64:
			return strconv.FormatFloat(v, 'f', -1, 64), nil
		case int:
			return strconv.Itoa(v), nil
		case int64:
			return strconv.FormatInt(v, 10), nil
		}
		return fmt.Sprintf("%v", input), nil

	case KindInteger:
		switch v := input.(type) {
		case int64:
			return v, nil
		case int:
			return int64(v), nil
		case float64:
			// JSON entrega números como float64; parte fracionária é erro,
			// nunca truncagem silenciosa.
			if v != math.Trunc(v) {
				return nil, fmt.Errorf("%s: valor entero inválido %v", spec.Name, v)
			}
			return int64(v), nil
		case string:
			n, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
			if err != nil {
				return nil, fmt.Errorf("%s: valor entero inválido %q", spec.Name, v)
			}
			return n, nil
		}

	case KindDecimal:
		switch v := input.(type) {
		case decimal.Decimal:
			return v, nil
		case float64:
			return decimal.NewFromFloat(v), nil
		case int:
			return decimal.NewFromInt(int64(v)), nil
		case int64:
			return decimal.NewFromInt(v), nil
		case string:
			// Aceita vírgula decimal, habitual nos documentos digitalizados.
			normalized := strings.ReplaceAll(strings.TrimSpace(v), ",", ".")
			d, err := decimal.NewFromString(normalized)
			if err != nil {
				return nil, fmt.Errorf("%s: valor decimal inválido %q", spec.Name, v)
			}
			return d, nil
		}

	case KindDate:
		switch v := input.(type) {
		case time.Time:
			return v, nil
		case string:
			s := strings.TrimSpace(v)
			for _, layout := range []string{DateInputLayout, DateWireLayout} {
				if t, err := time.Parse(layout, s); err == nil {
					return t, nil
				}
			}
			return nil, fmt.Errorf("%s: fecha inválida %q", spec.Name, v)
		}
	}
	return nil, fmt.Errorf("%s: tipo de valor não suportado %T", spec.Name, input)
}
