package main

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/Victor-armando18/service-policy/internal/domain"
	"github.com/Victor-armando18/service-policy/internal/scoring"
	"github.com/Victor-armando18/service-policy/internal/usecase"
	"github.com/Victor-armando18/service-policy/internal/validation"
)

// memoryCatalogBackend serve catálogos fixos para diagnóstico offline.
type memoryCatalogBackend struct{}

func (memoryCatalogBackend) FetchCatalog(ctx context.Context, name domain.CatalogName) ([]domain.CatalogEntry, error) {
	fixtures := map[domain.CatalogName][]domain.CatalogEntry{
		domain.CatalogFuelType: {
			{ID: "NAF", DisplayName: "Nafta"},
			{ID: "DIS", DisplayName: "Diesel"},
			{ID: "GNC", DisplayName: "GNC"},
		},
		domain.CatalogDestination: {
			{ID: "PAR", DisplayName: "Particular"},
			{ID: "COM", DisplayName: "Comercial"},
		},
		domain.CatalogCurrency: {
			{ID: "PES", DisplayName: "Pesos"},
			{ID: "DOL", DisplayName: "Dólares"},
			{ID: "EU", DisplayName: "Euros"},
		},
		domain.CatalogCategory: {
			{ID: "A1", DisplayName: "Automóvil"},
			{ID: "B1", DisplayName: "Pick-up"},
		},
		domain.CatalogQuality: {
			{ID: "STD", DisplayName: "Standard"},
			{ID: "PRM", DisplayName: "Premium"},
		},
	}
	return fixtures[name], nil
}

func (memoryCatalogBackend) FetchTariffs(ctx context.Context, companyID string) ([]domain.CatalogEntry, error) {
	return []domain.CatalogEntry{
		{ID: "T100", DisplayName: "Tarifa general " + companyID},
		{ID: "T200", DisplayName: "Tarifa flota " + companyID},
	}, nil
}

// echoTransport imprime o payload em vez de o enviar.
type echoTransport struct{}

func (echoTransport) Submit(ctx context.Context, payload domain.ExternalPayload) (*domain.SubmissionResult, error) {
	body, _ := json.MarshalIndent(payload, "   ", "  ")
	fmt.Println("\n[PAYLOAD ENVIADO]")
	fmt.Println(string(body))
	return &domain.SubmissionResult{ID: "POL-DIAG-0001"}, nil
}

func main() {
	fmt.Println(strings.Repeat("=", 60))
	fmt.Println("   POLICY WIZARD CLI - DIAGNOSTIC TOOL")
	fmt.Println(strings.Repeat("=", 60))

	ctx := context.Background()

	validator := validation.NewEngine()
	scorer := scoring.NewEngine(validator)
	catalogs := usecase.NewCatalogService(memoryCatalogBackend{})
	catalogs.Load(ctx, false)
	wizard := usecase.NewWizardService(validator, scorer, catalogs, echoTransport{})

	// 1. Chega o scan do documento
	wizard.ApplyExtractedData(ctx, domain.ExtractionResult{
		Confidence:   0.91,
		Completeness: 72,
		Poliza: &domain.ExtractedPolicy{
			NumeroPoliza:  "4512398",
			Asegurado:     "Juan Pérez",
			VigenciaDesde: "01/03/2026",
			VigenciaHasta: "01/03/2027",
			Cobertura:     "Todo Riesgo con Franquicia",
		},
		Vehiculo: &domain.ExtractedVehicle{
			Marca:       "Volkswagen",
			Modelo:      "Gol Trend 1.6",
			Anio:        "2021",
			Patente:     "AB123CD",
			Combustible: "NAFTA",
			Uso:         "PARTICULAR",
		},
		Financiero: &domain.ExtractedFinancial{
			Prima:         "98500,00",
			Total:         "120000,00",
			Cuotas:        "6",
			Moneda:        "PESOS",
			SumaAsegurada: "8500000",
		},
		Notas: "documento legible, sello parcial",
	})

	// 2. Seleção de cliente e companhia
	wizard.ApplyClient(ctx, domain.Client{
		ID:            "CLI-778",
		Nombre:        "Juan A. Pérez",
		TipoDocumento: "DNI",
		Documento:     "28456123",
		Domicilio:     "Av. Rivadavia 1234",
		Localidad:     "CABA",
	})
	wizard.ApplyCompany(ctx, domain.Company{ID: "COMP-12", Nombre: "La Austral Seguros"})

	// 3. Edições manuais
	wizard.UpdateField(domain.FieldFormaPago, "TCR")
	wizard.UpdateField(domain.FieldCuotas, "4")

	displaySession(wizard)

	// 4. Submissão
	if err := wizard.Submit(ctx); err != nil {
		fmt.Printf("\n❌ SUBMISSÃO BLOQUEADA: %v\n", err)
	} else {
		fmt.Printf("\n✅ PÓLIZA CRIADA: %s (estado %s)\n", wizard.SubmissionID(), wizard.State())
	}

	fmt.Println(strings.Repeat("=", 60))
}

func displaySession(wizard *usecase.WizardService) {
	fmt.Println("\n[1. PROGRESSO POR SECÇÃO]")
	progress, overall := wizard.Progress()
	for _, sp := range progress {
		fmt.Printf("   %-18s %3d%%  (%d errores)\n", sp.Section, sp.Completion, sp.ErrorCount)
	}
	fmt.Printf("   %-18s %3d%%\n", "GLOBAL", overall)

	fmt.Println("\n[2. DIÁRIO DO MOTOR]")
	for _, step := range wizard.ExecutionLog() {
		fmt.Printf("   [%-8s] %-20s %s\n", strings.ToUpper(step.Stage), step.Field, step.Action)
	}

	fmt.Println("\n[3. CAMPOS COM ORIGEM]")
	record := wizard.Record()
	for _, section := range domain.Sections {
		for _, fs := range domain.SectionSpecs(section) {
			fv := record.Get(fs.Name)
			if fv.IsEmpty() {
				continue
			}
			fmt.Printf("   %-20s = %-28q [%s]\n", fs.Name, fv.String(), fv.Provenance)
		}
	}
}
