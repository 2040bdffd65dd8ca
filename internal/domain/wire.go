package domain

// ExternalPayload é o registo plano, no vocabulário do backend de pólizas,
// produzido pelo mapper de submissão. Datas em yyyy-MM-dd, códigos já
// traduzidos (moneda PES/DOL/EU, forma de pago em texto do backend).
type ExternalPayload struct {
	NumeroPoliza    string  `json:"nro_poliza"`
	Endoso          string  `json:"nro_endoso"`
	Compania        string  `json:"cod_compania"`
	Asegurado       string  `json:"nom_asegurado"`
	TipoDocumento   string  `json:"tipo_doc"`
	NumeroDocumento string  `json:"nro_doc"`
	Domicilio       string  `json:"domicilio"`
	Localidad       string  `json:"localidad"`
	Provincia       string  `json:"provincia"`
	CodigoPostal    string  `json:"cod_postal"`
	VigenciaDesde   string  `json:"fec_desde"`
	VigenciaHasta   string  `json:"fec_hasta"`
	TipoOperacion   string  `json:"tipo_operacion"`
	Estado          string  `json:"estado"`
	Vehiculo        string  `json:"des_vehiculo"`
	Anio            int64   `json:"anio_vehiculo"`
	Patente         string  `json:"patente"`
	Motor           string  `json:"nro_motor"`
	Chasis          string  `json:"nro_chasis"`
	Combustible     string  `json:"cod_combustible"`
	Destino         string  `json:"cod_destino"`
	Categoria       string  `json:"cod_categoria"`
	Calidad         string  `json:"cod_calidad"`
	Flota           int64   `json:"cod_flota"`
	Cobertura       string  `json:"des_cobertura"`
	Tarifa          string  `json:"cod_tarifa"`
	SumaAsegurada   float64 `json:"suma_asegurada"`
	Franquicia      float64 `json:"franquicia"`
	Moneda          string  `json:"cod_moneda"`
	FormaPago       string  `json:"forma_pago"`
	Premio          float64 `json:"premio"`
	Total           float64 `json:"total"`
	Cuotas          int64   `json:"cant_cuotas"`
	ValorCuota      float64 `json:"valor_cuota"`
	Observaciones   string  `json:"observaciones"`
}

// SubmissionResult é a resposta do transporte de submissão.
type SubmissionResult struct {
	ID      string `json:"id,omitempty"`
	Message string `json:"message,omitempty"`
}
