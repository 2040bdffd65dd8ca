package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/Victor-armando18/service-policy/internal/domain"
	"github.com/Victor-armando18/service-policy/internal/scoring"
	"github.com/Victor-armando18/service-policy/internal/validation"
)

// MockSubmissionTransport é o mock do transporte de submissão.
type MockSubmissionTransport struct {
	mock.Mock
}

func (m *MockSubmissionTransport) Submit(ctx context.Context, payload domain.ExternalPayload) (*domain.SubmissionResult, error) {
	args := m.Called(ctx, payload)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.SubmissionResult), args.Error(1)
}

// stubCatalogBackend serve catálogos fixos aos testes do wizard.
type stubCatalogBackend struct{}

func (stubCatalogBackend) FetchCatalog(ctx context.Context, name domain.CatalogName) ([]domain.CatalogEntry, error) {
	switch name {
	case domain.CatalogFuelType:
		return []domain.CatalogEntry{{ID: "NAF", DisplayName: "Nafta"}, {ID: "DIS", DisplayName: "Diesel"}}, nil
	case domain.CatalogDestination:
		return []domain.CatalogEntry{{ID: "PAR", DisplayName: "Particular"}, {ID: "COM", DisplayName: "Comercial"}}, nil
	case domain.CatalogCurrency:
		return []domain.CatalogEntry{{ID: "PES", DisplayName: "Pesos"}, {ID: "DOL", DisplayName: "Dólares"}}, nil
	}
	return nil, nil
}

func (stubCatalogBackend) FetchTariffs(ctx context.Context, companyID string) ([]domain.CatalogEntry, error) {
	return []domain.CatalogEntry{{ID: "T100", DisplayName: "Tarifa general"}}, nil
}

func newWizard(t *testing.T, transport *MockSubmissionTransport) (*WizardService, *CatalogService) {
	t.Helper()
	validator := validation.NewEngine()
	scorer := scoring.NewEngine(validator)
	catalogs := NewCatalogService(stubCatalogBackend{})
	if err := catalogs.Load(context.Background(), false); err != nil {
		t.Fatalf("load de catálogos: %v", err)
	}
	return NewWizardService(validator, scorer, catalogs, transport), catalogs
}

// requiredFixtures leva o registo a completude global 100.
var requiredFixtures = []struct {
	name domain.FieldName
	raw  any
}{
	{domain.FieldAsegurado, "Juan Pérez"},
	{domain.FieldTipoDocumento, "DNI"},
	{domain.FieldNumeroDocumento, "28456123"},
	{domain.FieldDomicilio, "Av. Rivadavia 1234"},
	{domain.FieldLocalidad, "CABA"},
	{domain.FieldCompania, "COMP-12"},
	{domain.FieldNumeroPoliza, "4512398"},
	{domain.FieldVigenciaDesde, "01/03/2026"},
	{domain.FieldVigenciaHasta, "01/03/2027"},
	{domain.FieldMarca, "Volkswagen"},
	{domain.FieldModelo, "Gol Trend"},
	{domain.FieldAnio, "2021"},
	{domain.FieldPatente, "AB123CD"},
	{domain.FieldDestino, "PAR"},
	{domain.FieldCobertura, "Todo Riesgo"},
	{domain.FieldSumaAsegurada, "8500000"},
	{domain.FieldMoneda, "PES"},
	{domain.FieldFormaPago, "TCR"},
	{domain.FieldPremio, "98500"},
	{domain.FieldTotal, "120000"},
	{domain.FieldCuotas, "6"},
}

func populateAll(t *testing.T, wizard *WizardService) {
	t.Helper()
	for _, fixture := range requiredFixtures {
		if err := wizard.UpdateField(fixture.name, fixture.raw); err != nil {
			t.Fatalf("preencher %s: %v", fixture.name, err)
		}
	}
}

func TestUpdateField_ValorCuotaDerivado(t *testing.T) {
	wizard, _ := newWizard(t, new(MockSubmissionTransport))

	assert.NoError(t, wizard.UpdateField(domain.FieldCuotas, "3"))
	assert.NoError(t, wizard.UpdateField(domain.FieldTotal, "300"))
	assert.Equal(t, "100", wizard.Record().Get(domain.FieldValorCuota).Decimal().String())

	t.Run("idempotente sob escritas repetidas", func(t *testing.T) {
		assert.NoError(t, wizard.UpdateField(domain.FieldTotal, "300"))
		assert.NoError(t, wizard.UpdateField(domain.FieldTotal, "300"))
		assert.Equal(t, "100", wizard.Record().Get(domain.FieldValorCuota).Decimal().String())
	})

	t.Run("recalcula ao mudar as cuotas", func(t *testing.T) {
		assert.NoError(t, wizard.UpdateField(domain.FieldCuotas, "4"))
		assert.Equal(t, "75", wizard.Record().Get(domain.FieldValorCuota).Decimal().String())
	})

	t.Run("arredonda a dois decimais", func(t *testing.T) {
		assert.NoError(t, wizard.UpdateField(domain.FieldTotal, "100"))
		assert.NoError(t, wizard.UpdateField(domain.FieldCuotas, "3"))
		assert.Equal(t, "33.33", wizard.Record().Get(domain.FieldValorCuota).Decimal().String())
	})

	t.Run("livre quando total ou cuotas não são positivos", func(t *testing.T) {
		assert.NoError(t, wizard.UpdateField(domain.FieldCuotas, "0"))
		assert.NoError(t, wizard.UpdateField(domain.FieldValorCuota, "12,50"))
		assert.Equal(t, "12.5", wizard.Record().Get(domain.FieldValorCuota).Decimal().String())
	})
}

func TestUpdateField_Coercion(t *testing.T) {
	wizard, _ := newWizard(t, new(MockSubmissionTransport))

	t.Run("texto numérico coage na fronteira", func(t *testing.T) {
		assert.NoError(t, wizard.UpdateField(domain.FieldPremio, "98500,50"))
		assert.Equal(t, "98500.5", wizard.Record().Get(domain.FieldPremio).Decimal().String())
	})

	t.Run("valor ilegível devolve erro sem escrever", func(t *testing.T) {
		err := wizard.UpdateField(domain.FieldAnio, "dos mil")
		assert.Error(t, err)
		assert.True(t, wizard.Record().Get(domain.FieldAnio).IsEmpty())
	})

	t.Run("campo desconhecido devolve erro", func(t *testing.T) {
		err := wizard.UpdateField("campoInventado", "x")
		assert.ErrorIs(t, err, domain.ErrUnknownField)
	})

	t.Run("string vazia limpa o campo", func(t *testing.T) {
		assert.NoError(t, wizard.UpdateField(domain.FieldPremio, ""))
		assert.True(t, wizard.Record().Get(domain.FieldPremio).IsEmpty())
	})
}

func TestApplyClient_ManualGana(t *testing.T) {
	ctx := context.Background()
	client := domain.Client{
		ID:        "CLI-778",
		Nombre:    "Juan A. Pérez",
		Documento: "28456123",
		Domicilio: "Av. Rivadavia 1234",
	}

	t.Run("antes de editar popula o campo", func(t *testing.T) {
		wizard, _ := newWizard(t, new(MockSubmissionTransport))
		wizard.ApplyClient(ctx, client)

		fv := wizard.Record().Get(domain.FieldAsegurado)
		assert.Equal(t, "Juan A. Pérez", fv.String())
		assert.Equal(t, domain.ProvenanceClient, fv.Provenance)
	})

	t.Run("depois de editar preserva o valor manual", func(t *testing.T) {
		wizard, _ := newWizard(t, new(MockSubmissionTransport))
		assert.NoError(t, wizard.UpdateField(domain.FieldAsegurado, "Pérez Hnos. SRL"))

		wizard.ApplyClient(ctx, client)

		fv := wizard.Record().Get(domain.FieldAsegurado)
		assert.Equal(t, "Pérez Hnos. SRL", fv.String())
		assert.Equal(t, domain.ProvenanceManual, fv.Provenance)
		// Os campos não tocados recebem os dados do cliente na mesma.
		assert.Equal(t, "Av. Rivadavia 1234", wizard.Record().Get(domain.FieldDomicilio).String())
	})
}

func TestApplyExtractedData(t *testing.T) {
	ctx := context.Background()

	t.Run("cenário da digitalização com proveniência", func(t *testing.T) {
		wizard, _ := newWizard(t, new(MockSubmissionTransport))

		wizard.ApplyExtractedData(ctx, domain.ExtractionResult{
			Confidence: 0.9,
			Poliza:     &domain.ExtractedPolicy{NumeroPoliza: "12345", Asegurado: "J. Pérez"},
			Financiero: &domain.ExtractedFinancial{Prima: "1000"},
		})

		poliza := wizard.Record().Get(domain.FieldNumeroPoliza)
		assert.Equal(t, "12345", poliza.String())
		assert.Equal(t, domain.ProvenanceScanned, poliza.Provenance)
		assert.InDelta(t, 0.9, poliza.Confidence, 0.001)
		assert.Equal(t, "1000", wizard.Record().Get(domain.FieldPremio).Decimal().String())

		// Edição manual muda a proveniência...
		assert.NoError(t, wizard.UpdateField(domain.FieldPremio, "1200"))
		assert.Equal(t, domain.ProvenanceManual, wizard.Record().Get(domain.FieldPremio).Provenance)

		// ...e um segundo scan já não a sobrescreve: manual ganha.
		wizard.ApplyExtractedData(ctx, domain.ExtractionResult{
			Financiero: &domain.ExtractedFinancial{Prima: "999"},
		})
		assert.Equal(t, "1200", wizard.Record().Get(domain.FieldPremio).Decimal().String())
	})

	t.Run("merge mais recente vence em campos não tocados", func(t *testing.T) {
		wizard, _ := newWizard(t, new(MockSubmissionTransport))
		wizard.ApplyExtractedData(ctx, domain.ExtractionResult{
			Poliza: &domain.ExtractedPolicy{Asegurado: "J. Pérez"},
		})
		wizard.ApplyClient(ctx, domain.Client{Nombre: "Juan Alberto Pérez"})

		fv := wizard.Record().Get(domain.FieldAsegurado)
		assert.Equal(t, "Juan Alberto Pérez", fv.String())
		assert.Equal(t, domain.ProvenanceClient, fv.Provenance)
	})

	t.Run("payload malformado é tolerado em silêncio", func(t *testing.T) {
		wizard, _ := newWizard(t, new(MockSubmissionTransport))
		wizard.ApplyExtractedData(ctx, domain.ExtractionResult{
			Poliza:     &domain.ExtractedPolicy{NumeroPoliza: "777", VigenciaDesde: "fecha rota"},
			Financiero: &domain.ExtractedFinancial{Cuotas: "seis"},
		})

		assert.Equal(t, "777", wizard.Record().Get(domain.FieldNumeroPoliza).String())
		assert.True(t, wizard.Record().Get(domain.FieldVigenciaDesde).IsEmpty())
		assert.True(t, wizard.Record().Get(domain.FieldCuotas).IsEmpty())
		assert.Equal(t, domain.StateEditing, wizard.State())
	})

	t.Run("texto livre resolve contra o catálogo", func(t *testing.T) {
		wizard, _ := newWizard(t, new(MockSubmissionTransport))
		wizard.ApplyExtractedData(ctx, domain.ExtractionResult{
			Vehiculo:   &domain.ExtractedVehicle{Combustible: "DIESEL", Uso: "PARTICULAR"},
			Financiero: &domain.ExtractedFinancial{Moneda: "PESOS"},
		})

		assert.Equal(t, "DIS", wizard.Record().Get(domain.FieldCombustible).String())
		assert.Equal(t, "PAR", wizard.Record().Get(domain.FieldDestino).String())
		assert.Equal(t, "PES", wizard.Record().Get(domain.FieldMoneda).String())
	})
}

func TestStateTransitions(t *testing.T) {
	ctx := context.Background()

	t.Run("idle passa a populating e editing com o primeiro merge", func(t *testing.T) {
		wizard, _ := newWizard(t, new(MockSubmissionTransport))
		assert.Equal(t, domain.StateIdle, wizard.State())

		wizard.ApplyClient(ctx, domain.Client{Nombre: "Juan"})
		assert.Equal(t, domain.StateEditing, wizard.State())
	})

	t.Run("idle passa a editing com a primeira escrita manual", func(t *testing.T) {
		wizard, _ := newWizard(t, new(MockSubmissionTransport))
		assert.NoError(t, wizard.UpdateField(domain.FieldAsegurado, "Juan"))
		assert.Equal(t, domain.StateEditing, wizard.State())
	})
}

func TestNavigation(t *testing.T) {
	wizard, _ := newWizard(t, new(MockSubmissionTransport))
	assert.NoError(t, wizard.UpdateField(domain.FieldAsegurado, "Juan"))

	assert.Equal(t, domain.SectionBasicData, wizard.CurrentSection())
	assert.Equal(t, domain.SectionPolicyData, wizard.NextSection())
	assert.NoError(t, wizard.GoToSection(domain.SectionPayment))
	assert.Equal(t, domain.SectionPayment, wizard.CurrentSection())
	assert.Equal(t, domain.SectionCoverageData, wizard.PrevSection())
	assert.Error(t, wizard.GoToSection("inexistente"))

	// Navegar nunca descarta estado.
	assert.Equal(t, "Juan", wizard.Record().Get(domain.FieldAsegurado).String())
}

func TestErrors_SoloCamposTocados(t *testing.T) {
	wizard, _ := newWizard(t, new(MockSubmissionTransport))

	// Obrigatórios em falta mas nunca tocados: nada a exibir...
	assert.Empty(t, wizard.Errors(domain.SectionBasicData))

	// ...embora contem no scoring na mesma.
	progress, _ := wizard.Progress()
	assert.Equal(t, 6, progress[0].ErrorCount)

	// Tocar e limpar o campo passa a exibir o erro.
	assert.NoError(t, wizard.UpdateField(domain.FieldAsegurado, ""))
	errs := wizard.Errors(domain.SectionBasicData)
	assert.Len(t, errs, 1)
	assert.Equal(t, domain.FieldAsegurado, errs[0].Field)
}

func TestSubmit(t *testing.T) {
	ctx := context.Background()

	t.Run("bloqueada abaixo de cem sem chamar o transporte", func(t *testing.T) {
		transport := new(MockSubmissionTransport)
		wizard, _ := newWizard(t, transport)
		assert.NoError(t, wizard.UpdateField(domain.FieldAsegurado, "Juan"))

		err := wizard.Submit(ctx)
		assert.ErrorIs(t, err, domain.ErrSubmissionBlocked)
		assert.Equal(t, domain.StateEditing, wizard.State())
		transport.AssertNotCalled(t, "Submit", mock.Anything, mock.Anything)
	})

	t.Run("sucesso transita por submitting até submitted", func(t *testing.T) {
		transport := new(MockSubmissionTransport)
		transport.On("Submit", mock.Anything, mock.Anything).Return(&domain.SubmissionResult{ID: "POL-991"}, nil)

		wizard, _ := newWizard(t, transport)
		populateAll(t, wizard)

		_, overall := wizard.Progress()
		assert.Equal(t, 100, overall)

		assert.NoError(t, wizard.Submit(ctx))
		assert.Equal(t, domain.StateSubmitted, wizard.State())
		assert.Equal(t, "POL-991", wizard.SubmissionID())
		transport.AssertExpectations(t)
	})

	t.Run("falha preserva o registo e permite reenviar", func(t *testing.T) {
		transport := new(MockSubmissionTransport)
		transport.On("Submit", mock.Anything, mock.Anything).Return(nil, errors.New("backend caído")).Once()
		transport.On("Submit", mock.Anything, mock.Anything).Return(&domain.SubmissionResult{ID: "POL-992"}, nil).Once()

		wizard, _ := newWizard(t, transport)
		populateAll(t, wizard)

		err := wizard.Submit(ctx)
		assert.Error(t, err)
		assert.Equal(t, domain.StateSubmitFailed, wizard.State())
		assert.Contains(t, wizard.LastError(), "backend caído")
		// Nenhum dado se perde com a falha.
		assert.Equal(t, "Juan Pérez", wizard.Record().Get(domain.FieldAsegurado).String())

		// Reenvio direto a partir do estado de falha.
		assert.NoError(t, wizard.Submit(ctx))
		assert.Equal(t, domain.StateSubmitted, wizard.State())
		transport.AssertExpectations(t)
	})

	t.Run("corrigir um campo após falha volta à edição", func(t *testing.T) {
		transport := new(MockSubmissionTransport)
		transport.On("Submit", mock.Anything, mock.Anything).Return(nil, errors.New("rechazada"))

		wizard, _ := newWizard(t, transport)
		populateAll(t, wizard)
		assert.Error(t, wizard.Submit(ctx))
		assert.Equal(t, domain.StateSubmitFailed, wizard.State())

		assert.NoError(t, wizard.UpdateField(domain.FieldPremio, "99000"))
		assert.Equal(t, domain.StateEditing, wizard.State())
	})

	t.Run("segunda submissão em voo é no-op", func(t *testing.T) {
		transport := new(MockSubmissionTransport)
		release := make(chan struct{})
		started := make(chan struct{})
		transport.On("Submit", mock.Anything, mock.Anything).
			Run(func(args mock.Arguments) {
				close(started)
				<-release
			}).
			Return(&domain.SubmissionResult{ID: "POL-993"}, nil).Once()

		wizard, _ := newWizard(t, transport)
		populateAll(t, wizard)

		done := make(chan error, 1)
		go func() { done <- wizard.Submit(ctx) }()
		<-started

		assert.ErrorIs(t, wizard.Submit(ctx), domain.ErrSubmitInFlight)
		close(release)
		assert.NoError(t, <-done)
		assert.Equal(t, domain.StateSubmitted, wizard.State())
	})
}

func TestApplyCompany_CargaTarifas(t *testing.T) {
	wizard, catalogs := newWizard(t, new(MockSubmissionTransport))

	wizard.ApplyCompany(context.Background(), domain.Company{ID: "COMP-12", Nombre: "La Austral"})

	fv := wizard.Record().Get(domain.FieldCompania)
	assert.Equal(t, "COMP-12", fv.String())
	assert.Equal(t, domain.ProvenanceMaster, fv.Provenance)

	assert.Eventually(t, func() bool {
		return len(catalogs.Entries(domain.CatalogTariff)) > 0
	}, time.Second, 10*time.Millisecond)
}

func TestRecord_Snapshot(t *testing.T) {
	t.Run("mutar a cópia não afeta a sessão", func(t *testing.T) {
		wizard, _ := newWizard(t, new(MockSubmissionTransport))
		assert.NoError(t, wizard.UpdateField(domain.FieldAsegurado, "Juan"))

		snapshot := wizard.Record()
		snapshot.Set(domain.FieldAsegurado, "Otro", domain.ProvenanceManual)
		snapshot.MarkTouched(domain.FieldPremio)

		assert.Equal(t, "Juan", wizard.Record().Get(domain.FieldAsegurado).String())
		assert.False(t, wizard.Record().IsTouched(domain.FieldPremio))
	})

	t.Run("serialização concorrente com escritas", func(t *testing.T) {
		wizard, _ := newWizard(t, new(MockSubmissionTransport))

		var wg sync.WaitGroup
		for i := 0; i < 200; i++ {
			i := i
			wg.Add(2)
			go func() {
				defer wg.Done()
				assert.NoError(t, wizard.UpdateField(domain.FieldObservaciones, fmt.Sprintf("nota %d", i)))
			}()
			go func() {
				defer wg.Done()
				_, err := json.Marshal(wizard.Record())
				assert.NoError(t, err)
			}()
		}
		wg.Wait()
	})
}

func TestReset(t *testing.T) {
	wizard, _ := newWizard(t, new(MockSubmissionTransport))
	populateAll(t, wizard)

	wizard.Reset()

	assert.Equal(t, domain.StateIdle, wizard.State())
	assert.True(t, wizard.Record().Get(domain.FieldAsegurado).IsEmpty())
	assert.Empty(t, wizard.ExecutionLog())
	_, overall := wizard.Progress()
	assert.Equal(t, 17, overall)
}
