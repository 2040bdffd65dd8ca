package domain

// CatalogName enumera os catálogos de referência. Substitui os acessos por
// chave livre: todo lookup passa por este tipo.
type CatalogName string

const (
	CatalogCategory        CatalogName = "categorias"
	CatalogDestination     CatalogName = "destinos"
	CatalogFuelType        CatalogName = "combustibles"
	CatalogCurrency        CatalogName = "monedas"
	CatalogQuality         CatalogName = "calidades"
	CatalogTariff          CatalogName = "tarifas"
	CatalogStatus          CatalogName = "estados"
	CatalogPaymentMethod   CatalogName = "formasPago"
	CatalogTransactionType CatalogName = "tiposOperacion"
)

// RemoteCatalogs são os catálogos servidos pelo backend num endpoint cada.
// As tarifas ficam de fora: são pedidas por companhia, não globalmente.
var RemoteCatalogs = []CatalogName{
	CatalogCategory,
	CatalogDestination,
	CatalogFuelType,
	CatalogCurrency,
	CatalogQuality,
}

// StaticCatalogs são enumerações fixas, nunca pedidas ao backend.
var StaticCatalogs = map[CatalogName][]CatalogEntry{
	CatalogStatus: {
		{ID: "VIG", DisplayName: "Vigente"},
		{ID: "ANU", DisplayName: "Anulada"},
		{ID: "VEN", DisplayName: "Vencida"},
		{ID: "SUS", DisplayName: "Suspendida"},
	},
	CatalogPaymentMethod: {
		{ID: "EFE", DisplayName: "Efectivo"},
		{ID: "TCR", DisplayName: "Tarjeta de Crédito"},
		{ID: "DEB", DisplayName: "Débito Automático"},
		{ID: "CHE", DisplayName: "Cheque"},
		{ID: "CBU", DisplayName: "Transferencia CBU"},
	},
	CatalogTransactionType: {
		{ID: "ALTA", DisplayName: "Alta"},
		{ID: "REN", DisplayName: "Renovación"},
		{ID: "END", DisplayName: "Endoso"},
		{ID: "ANU", DisplayName: "Anulación"},
	},
}

// CatalogEntry é imutável depois de obtido do backend.
type CatalogEntry struct {
	ID          string `json:"id"`
	DisplayName string `json:"displayName"`
	Description string `json:"description,omitempty"`
}

// Catalogs é o mapa tipado nome → entradas exposto após o load.
type Catalogs map[CatalogName][]CatalogEntry
