package interfaces

import (
	"context"

	"github.com/Victor-armando18/service-policy/internal/domain"
)

// CatalogBackend define o contrato com o backend de catálogos: um endpoint
// por catálogo, tarifas pedidas por companhia.
type CatalogBackend interface {
	FetchCatalog(ctx context.Context, name domain.CatalogName) ([]domain.CatalogEntry, error)
	FetchTariffs(ctx context.Context, companyID string) ([]domain.CatalogEntry, error)
}

// SubmissionTransport entrega o payload mapeado ao backend de pólizas.
type SubmissionTransport interface {
	Submit(ctx context.Context, payload domain.ExternalPayload) (*domain.SubmissionResult, error)
}

// RulePackLoader carrega packs de regras de validação (de disco, rede, etc.).
type RulePackLoader interface {
	Load(ctx context.Context, path string) (*RulePack, error)
}

// RulePack é o conjunto declarativo de regras cross-field carregado por um
// RulePackLoader. A estrutura vive aqui para o loader e o motor de validação
// partilharem o contrato sem dependerem um do outro.
type RulePack struct {
	Version string      `yaml:"version" json:"version"`
	Rules   []CrossRule `yaml:"rules" json:"rules"`
}

// CrossRule é uma regra JsonLogic avaliada sobre a projeção plana do registo.
// A regra passa quando a lógica devolve true; false gera a violação.
type CrossRule struct {
	ID       string           `yaml:"id" json:"id"`
	Field    domain.FieldName `yaml:"field" json:"field"`
	Section  domain.SectionID `yaml:"section" json:"section"`
	Severity domain.Severity  `yaml:"severity" json:"severity"`
	Message  string           `yaml:"message" json:"message"`
	Logic    map[string]any   `yaml:"logic" json:"logic"`
	// When lista os campos que têm de estar preenchidos para a regra correr.
	// Campos opcionais por preencher nunca geram violações.
	When []domain.FieldName `yaml:"when,omitempty" json:"when,omitempty"`
}

// WizardFacade é a porta de entrada da aplicação: tudo o que as camadas de
// UI podem fazer sobre a sessão do wizard passa por aqui.
type WizardFacade interface {
	State() domain.WizardState
	Record() *domain.PolicyRecord
	Progress() ([]domain.SectionProgress, int)
	Errors(section domain.SectionID) []domain.ValidationError

	UpdateField(name domain.FieldName, value any) error
	ApplyExtractedData(ctx context.Context, result domain.ExtractionResult)
	ApplyClient(ctx context.Context, client domain.Client)
	ApplyCompany(ctx context.Context, company domain.Company)
	Submit(ctx context.Context) error
	Reset()
}
