// Package mapper transforma o registo interno no payload plano do backend
// de pólizas. A transformação é pura e total: campo ausente sai com o
// default documentado, nunca com erro.
package mapper

import (
	"strings"

	"github.com/Victor-armando18/service-policy/internal/domain"
)

// currencyCodes traduz o código interno de moeda para o vocabulário do
// backend. Valores fora da tabela degradam para pesos.
var currencyCodes = map[string]string{
	"PES": "PES",
	"DOL": "DOL",
	"EU":  "EU",
	"USD": "DOL",
	"EUR": "EU",
	"ARS": "PES",
}

// paymentMethodText traduz a forma de pagamento interna para o texto exato
// que o backend espera.
var paymentMethodText = map[string]string{
	"EFE": "Efectivo",
	"TCR": "Tarjeta Cred.",
	"DEB": "Deb. Automatico",
	"CHE": "Cheque",
	"CBU": "Transf. CBU",
}

const (
	defaultEndorsement   = "0"
	defaultFleetCode     = int64(0)
	defaultCurrency      = "PES"
	defaultPaymentMethod = "Efectivo"
)

// ToWireFormat produz o payload de submissão a partir do estado corrente do
// registo.
func ToWireFormat(record *domain.PolicyRecord) domain.ExternalPayload {
	get := record.Get

	return domain.ExternalPayload{
		NumeroPoliza:    get(domain.FieldNumeroPoliza).String(),
		Endoso:          stringOr(get(domain.FieldEndoso), defaultEndorsement),
		Compania:        get(domain.FieldCompania).String(),
		Asegurado:       get(domain.FieldAsegurado).String(),
		TipoDocumento:   get(domain.FieldTipoDocumento).String(),
		NumeroDocumento: get(domain.FieldNumeroDocumento).String(),
		Domicilio:       get(domain.FieldDomicilio).String(),
		Localidad:       get(domain.FieldLocalidad).String(),
		Provincia:       get(domain.FieldProvincia).String(),
		CodigoPostal:    get(domain.FieldCodigoPostal).String(),
		VigenciaDesde:   wireDate(get(domain.FieldVigenciaDesde)),
		VigenciaHasta:   wireDate(get(domain.FieldVigenciaHasta)),
		TipoOperacion:   stringOr(get(domain.FieldTipoOperacion), "ALTA"),
		Estado:          stringOr(get(domain.FieldEstado), "VIG"),
		Vehiculo:        vehicleDescription(record),
		Anio:            get(domain.FieldAnio).Int(),
		Patente:         get(domain.FieldPatente).String(),
		Motor:           get(domain.FieldMotor).String(),
		Chasis:          get(domain.FieldChasis).String(),
		Combustible:     get(domain.FieldCombustible).String(),
		Destino:         get(domain.FieldDestino).String(),
		Categoria:       get(domain.FieldCategoria).String(),
		Calidad:         get(domain.FieldCalidad).String(),
		Flota:           defaultFleetCode,
		Cobertura:       get(domain.FieldCobertura).String(),
		Tarifa:          get(domain.FieldTarifa).String(),
		SumaAsegurada:   amount(get(domain.FieldSumaAsegurada)),
		Franquicia:      amount(get(domain.FieldFranquicia)),
		Moneda:          currencyCode(get(domain.FieldMoneda)),
		FormaPago:       paymentMethod(get(domain.FieldFormaPago)),
		Premio:          amount(get(domain.FieldPremio)),
		Total:           amount(get(domain.FieldTotal)),
		Cuotas:          get(domain.FieldCuotas).Int(),
		ValorCuota:      amount(get(domain.FieldValorCuota)),
		Observaciones:   observations(record),
	}
}

// vehicleDescription compõe a descrição combinada quando a origem forneceu
// marca e modelo separados, preferindo a descrição já existente.
func vehicleDescription(record *domain.PolicyRecord) string {
	if desc := record.Get(domain.FieldDescripcion).String(); desc != "" {
		return desc
	}
	marca := record.Get(domain.FieldMarca).String()
	modelo := record.Get(domain.FieldModelo).String()
	return strings.TrimSpace(marca + " " + modelo)
}

// observations junta as observações do utilizador com as notas do scanner.
func observations(record *domain.PolicyRecord) string {
	obs := record.Get(domain.FieldObservaciones).String()
	notas := record.Get(domain.FieldNotasScanner).String()
	switch {
	case obs == "":
		return notas
	case notas == "":
		return obs
	}
	return obs + " | " + notas
}

func currencyCode(fv domain.FieldValue) string {
	if code, ok := currencyCodes[fv.String()]; ok {
		return code
	}
	return defaultCurrency
}

func paymentMethod(fv domain.FieldValue) string {
	if text, ok := paymentMethodText[fv.String()]; ok {
		return text
	}
	return defaultPaymentMethod
}

func wireDate(fv domain.FieldValue) string {
	d := fv.Date()
	if d.IsZero() {
		return ""
	}
	return d.Format(domain.DateWireLayout)
}

func amount(fv domain.FieldValue) float64 {
	f, _ := fv.Decimal().Float64()
	return f
}

func stringOr(fv domain.FieldValue, fallback string) string {
	if s := fv.String(); s != "" {
		return s
	}
	return fallback
}
