package domain

// --- DTOs dos colaboradores a montante ---
// Tratados como input opaco: chaves ausentes nunca são fatais, o merge
// limita-se a deixar o campo por preencher.

// ExtractionResult é o resultado estruturado do serviço de extração
// documental.
type ExtractionResult struct {
	Confidence   float64             `json:"confidence"`
	Completeness float64             `json:"completeness"`
	Poliza       *ExtractedPolicy    `json:"poliza,omitempty"`
	Vehiculo     *ExtractedVehicle   `json:"vehiculo,omitempty"`
	Financiero   *ExtractedFinancial `json:"financiero,omitempty"`
	Notas        string              `json:"notas,omitempty"`
}

type ExtractedPolicy struct {
	NumeroPoliza  string `json:"numeroPoliza,omitempty"`
	Asegurado     string `json:"asegurado,omitempty"`
	Documento     string `json:"documento,omitempty"`
	Domicilio     string `json:"domicilio,omitempty"`
	Localidad     string `json:"localidad,omitempty"`
	VigenciaDesde string `json:"vigenciaDesde,omitempty"`
	VigenciaHasta string `json:"vigenciaHasta,omitempty"`
	Cobertura     string `json:"cobertura,omitempty"`
}

type ExtractedVehicle struct {
	Marca       string `json:"marca,omitempty"`
	Modelo      string `json:"modelo,omitempty"`
	Descripcion string `json:"descripcion,omitempty"`
	Anio        string `json:"anio,omitempty"`
	Patente     string `json:"patente,omitempty"`
	Motor       string `json:"motor,omitempty"`
	Chasis      string `json:"chasis,omitempty"`
	Combustible string `json:"combustible,omitempty"`
	Uso         string `json:"uso,omitempty"`
}

type ExtractedFinancial struct {
	Prima         string `json:"prima,omitempty"`
	Total         string `json:"total,omitempty"`
	Cuotas        string `json:"cuotas,omitempty"`
	Moneda        string `json:"moneda,omitempty"`
	SumaAsegurada string `json:"sumaAsegurada,omitempty"`
}

// Client é a entidade de referência selecionada no ecrã anterior do wizard.
type Client struct {
	ID            string `json:"id"`
	Nombre        string `json:"nombre"`
	TipoDocumento string `json:"tipoDocumento,omitempty"`
	Documento     string `json:"documento,omitempty"`
	Domicilio     string `json:"domicilio,omitempty"`
	Localidad     string `json:"localidad,omitempty"`
	Provincia     string `json:"provincia,omitempty"`
	CodigoPostal  string `json:"codigoPostal,omitempty"`
	Telefono      string `json:"telefono,omitempty"`
	Email         string `json:"email,omitempty"`
}

// Company é a companhia seguradora selecionada. O ID alimenta o pedido de
// tarifas por companhia.
type Company struct {
	ID     string `json:"id"`
	Nombre string `json:"nombre"`
}
