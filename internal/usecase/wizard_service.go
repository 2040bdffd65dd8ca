package usecase

import (
	"context"
	"fmt"
	"log"
	"sync"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Victor-armando18/service-policy/internal/domain"
	"github.com/Victor-armando18/service-policy/internal/interfaces"
	"github.com/Victor-armando18/service-policy/internal/mapper"
	"github.com/Victor-armando18/service-policy/internal/scoring"
	"github.com/Victor-armando18/service-policy/internal/validation"
)

// WizardService é o motor de orquestração do formulário: dono do registo
// canónico da sessão, funde os dados dos colaboradores a montante, reavalia
// validação e scoring a cada escrita e conduz a submissão. Toda a mutação
// externa passa pelas operações deste serviço.
type WizardService struct {
	mu sync.Mutex

	record     *domain.PolicyRecord
	state      domain.WizardState
	sectionIdx int
	token      uuid.UUID
	lastError  string
	submission string

	progress map[domain.SectionID]domain.SectionProgress
	execLog  []domain.ExecutionStep

	// lastMergeProvenance etiqueta o derivado valorCuota com a origem do
	// merge que o disparou.
	lastMergeProvenance domain.Provenance

	validator *validation.Engine
	scorer    *scoring.Engine
	catalogs  *CatalogService
	transport interfaces.SubmissionTransport
}

func NewWizardService(validator *validation.Engine, scorer *scoring.Engine, catalogs *CatalogService, transport interfaces.SubmissionTransport) *WizardService {
	s := &WizardService{
		validator: validator,
		scorer:    scorer,
		catalogs:  catalogs,
		transport: transport,
	}
	s.resetLocked()
	return s
}

// --- Consultas (interface só de leitura para a camada de exibição) ---

func (s *WizardService) State() domain.WizardState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Record devolve um snapshot do registo copiado sob o lock. O serviço segue
// mutando o registo vivo; os handlers serializam a cópia sem corrida.
func (s *WizardService) Record() *domain.PolicyRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.record.Clone()
}

// Progress devolve o progresso das seis secções na ordem das abas e o score
// global. Valores derivados: nunca são mutáveis de fora.
func (s *WizardService) Progress() ([]domain.SectionProgress, int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.progressLocked()
}

func (s *WizardService) progressLocked() ([]domain.SectionProgress, int) {
	out := make([]domain.SectionProgress, 0, len(domain.Sections))
	for _, section := range domain.Sections {
		out = append(out, s.progress[section])
	}
	return out, scoring.Overall(out)
}

// Errors devolve os erros de exibição da secção: campos ainda não tocados
// pelo utilizador ficam de fora, embora contem no scoring.
func (s *WizardService) Errors(section domain.SectionID) []domain.ValidationError {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []domain.ValidationError
	for _, verr := range s.validator.ValidateSection(section, s.record) {
		if s.record.IsTouched(verr.Field) {
			out = append(out, verr)
		}
	}
	return out
}

// CurrentSection devolve a aba corrente do cursor de navegação.
func (s *WizardService) CurrentSection() domain.SectionID {
	s.mu.Lock()
	defer s.mu.Unlock()
	return domain.Sections[s.sectionIdx]
}

// GoToSection move o cursor. Mudar de aba nunca descarta estado nem
// recalcula nada além do que as edições já dispararam.
func (s *WizardService) GoToSection(section domain.SectionID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, candidate := range domain.Sections {
		if candidate == section {
			s.sectionIdx = i
			return nil
		}
	}
	return fmt.Errorf("sección desconocida: %s", section)
}

// NextSection avança a aba, parando na última.
func (s *WizardService) NextSection() domain.SectionID {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.sectionIdx < len(domain.Sections)-1 {
		s.sectionIdx++
	}
	return domain.Sections[s.sectionIdx]
}

// PrevSection recua a aba, parando na primeira.
func (s *WizardService) PrevSection() domain.SectionID {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.sectionIdx > 0 {
		s.sectionIdx--
	}
	return domain.Sections[s.sectionIdx]
}

// ExecutionLog devolve uma cópia do diário de ações do motor.
func (s *WizardService) ExecutionLog() []domain.ExecutionStep {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.ExecutionStep(nil), s.execLog...)
}

// LastError devolve a mensagem da última submissão falhada.
func (s *WizardService) LastError() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastError
}

// SubmissionID devolve o identificador criado pelo backend após submissão.
func (s *WizardService) SubmissionID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.submission
}

// --- Operações de escrita ---

// UpdateField escreve o valor do campo com coerção de tipo na fronteira,
// recalcula os derivados, reavalia a secção dona e marca o campo como
// tocado. A validação nunca bloqueia a escrita.
func (s *WizardService) UpdateField(name domain.FieldName, value any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.state {
	case domain.StateSubmitting, domain.StateSubmitted:
		return domain.ErrInvalidState
	case domain.StateSubmitFailed:
		// Corrigir um campo após falha devolve o motor à edição normal.
		s.state = domain.StateEditing
	case domain.StateIdle:
		s.state = domain.StateEditing
	}

	spec, ok := domain.SpecFor(name)
	if !ok {
		return fmt.Errorf("%w: %s", domain.ErrUnknownField, name)
	}

	coerced, err := domain.Coerce(spec, value)
	if err != nil {
		return err
	}

	s.record.Set(name, coerced, domain.ProvenanceManual)
	s.record.MarkTouched(name)
	s.logStep("update", string(name), fmt.Sprintf("valor manual %q", s.record.Get(name).String()))

	s.recomputeDerived(domain.ProvenanceManual)
	s.rescoreSection(spec.Section)
	return nil
}

// ApplyExtractedData funde o resultado da extração documental no registo.
// Campos já editados à mão nunca são sobrescritos; chaves ausentes no
// payload ficam simplesmente por preencher.
func (s *WizardService) ApplyExtractedData(ctx context.Context, result domain.ExtractionResult) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.beginPopulating()
	confidence := result.Confidence

	if p := result.Poliza; p != nil {
		s.mergeField(domain.FieldNumeroPoliza, p.NumeroPoliza, domain.ProvenanceScanned, confidence)
		s.mergeField(domain.FieldAsegurado, p.Asegurado, domain.ProvenanceScanned, confidence)
		s.mergeField(domain.FieldNumeroDocumento, p.Documento, domain.ProvenanceScanned, confidence)
		s.mergeField(domain.FieldDomicilio, p.Domicilio, domain.ProvenanceScanned, confidence)
		s.mergeField(domain.FieldLocalidad, p.Localidad, domain.ProvenanceScanned, confidence)
		s.mergeField(domain.FieldVigenciaDesde, p.VigenciaDesde, domain.ProvenanceScanned, confidence)
		s.mergeField(domain.FieldVigenciaHasta, p.VigenciaHasta, domain.ProvenanceScanned, confidence)
		s.mergeField(domain.FieldCobertura, p.Cobertura, domain.ProvenanceScanned, confidence)
	}

	if v := result.Vehiculo; v != nil {
		s.mergeField(domain.FieldMarca, v.Marca, domain.ProvenanceScanned, confidence)
		s.mergeField(domain.FieldModelo, v.Modelo, domain.ProvenanceScanned, confidence)
		s.mergeField(domain.FieldDescripcion, v.Descripcion, domain.ProvenanceScanned, confidence)
		s.mergeField(domain.FieldAnio, v.Anio, domain.ProvenanceScanned, confidence)
		s.mergeField(domain.FieldPatente, v.Patente, domain.ProvenanceScanned, confidence)
		s.mergeField(domain.FieldMotor, v.Motor, domain.ProvenanceScanned, confidence)
		s.mergeField(domain.FieldChasis, v.Chasis, domain.ProvenanceScanned, confidence)
		s.mergeFuzzy(domain.FieldCombustible, domain.CatalogFuelType, v.Combustible, confidence)
		s.mergeFuzzy(domain.FieldDestino, domain.CatalogDestination, v.Uso, confidence)
	}

	if f := result.Financiero; f != nil {
		s.mergeField(domain.FieldPremio, f.Prima, domain.ProvenanceScanned, confidence)
		s.mergeField(domain.FieldTotal, f.Total, domain.ProvenanceScanned, confidence)
		s.mergeField(domain.FieldCuotas, f.Cuotas, domain.ProvenanceScanned, confidence)
		s.mergeField(domain.FieldSumaAsegurada, f.SumaAsegurada, domain.ProvenanceScanned, confidence)
		s.mergeFuzzy(domain.FieldMoneda, domain.CatalogCurrency, f.Moneda, confidence)
	}

	s.mergeField(domain.FieldNotasScanner, result.Notas, domain.ProvenanceScanned, confidence)

	s.finishPopulating()
}

// ApplyClient funde a entidade de referência selecionada.
func (s *WizardService) ApplyClient(ctx context.Context, client domain.Client) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.beginPopulating()
	s.mergeField(domain.FieldAsegurado, client.Nombre, domain.ProvenanceClient, 0)
	s.mergeField(domain.FieldTipoDocumento, client.TipoDocumento, domain.ProvenanceClient, 0)
	s.mergeField(domain.FieldNumeroDocumento, client.Documento, domain.ProvenanceClient, 0)
	s.mergeField(domain.FieldDomicilio, client.Domicilio, domain.ProvenanceClient, 0)
	s.mergeField(domain.FieldLocalidad, client.Localidad, domain.ProvenanceClient, 0)
	s.mergeField(domain.FieldProvincia, client.Provincia, domain.ProvenanceClient, 0)
	s.mergeField(domain.FieldCodigoPostal, client.CodigoPostal, domain.ProvenanceClient, 0)
	s.mergeField(domain.FieldTelefono, client.Telefono, domain.ProvenanceClient, 0)
	s.mergeField(domain.FieldEmail, client.Email, domain.ProvenanceClient, 0)
	s.finishPopulating()
}

// ApplyCompany funde a companhia selecionada e dispara o carregamento das
// tarifas dessa companhia em background, guardado pelo token de sessão.
func (s *WizardService) ApplyCompany(ctx context.Context, company domain.Company) {
	s.mu.Lock()

	s.beginPopulating()
	s.mergeField(domain.FieldCompania, company.ID, domain.ProvenanceMaster, 0)
	s.finishPopulating()

	token := s.token
	s.mu.Unlock()

	go func() {
		err := s.catalogs.LoadTariffs(ctx, company.ID)

		s.mu.Lock()
		defer s.mu.Unlock()
		if s.token != token {
			// Sessão reiniciada entretanto: resposta tardia é ignorada.
			return
		}
		if err != nil {
			s.logStep("catalog", string(domain.FieldTarifa), fmt.Sprintf("tarifas indisponibles: %v", err))
			return
		}
		s.logStep("catalog", string(domain.FieldTarifa), "tarifas cargadas para "+company.ID)
	}()
}

// Submit mapeia o registo para o formato do backend e entrega-o ao
// transporte. Só é permitido com completude global exatamente 100; a
// submissão em curso atua como lock contra segundas tentativas.
func (s *WizardService) Submit(ctx context.Context) error {
	s.mu.Lock()

	if s.state == domain.StateSubmitting {
		s.mu.Unlock()
		return domain.ErrSubmitInFlight
	}
	if s.state != domain.StateEditing && s.state != domain.StateSubmitFailed {
		s.mu.Unlock()
		return domain.ErrInvalidState
	}

	_, overall := s.progressLocked()
	if overall != 100 {
		s.mu.Unlock()
		return fmt.Errorf("%w (completitud %d%%)", domain.ErrSubmissionBlocked, overall)
	}

	payload := mapper.ToWireFormat(s.record)
	s.state = domain.StateSubmitting
	s.logStep("submit", "", "enviando póliza al backend")
	token := s.token
	s.mu.Unlock()

	result, err := s.transport.Submit(ctx, payload)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.token != token {
		// Sessão abandonada durante o envio: o resultado não se aplica.
		return nil
	}
	if err != nil {
		// Nenhum dado se perde: o registo fica intacto para corrigir e
		// reenviar.
		s.state = domain.StateSubmitFailed
		s.lastError = err.Error()
		s.logStep("submit", "", "rechazada por el backend: "+err.Error())
		return fmt.Errorf("submissão rejeitada: %w", err)
	}

	s.state = domain.StateSubmitted
	s.lastError = ""
	if result != nil {
		s.submission = result.ID
	}
	s.logStep("submit", "", "póliza creada: "+s.submission)
	return nil
}

// AcknowledgeFailure devolve o motor à edição depois de uma falha exibida.
func (s *WizardService) AcknowledgeFailure() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == domain.StateSubmitFailed {
		s.state = domain.StateEditing
	}
}

// Reset descarta a sessão: registo novo, token novo. Respostas assíncronas
// pendentes da sessão anterior passam a ser ignoradas.
func (s *WizardService) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resetLocked()
}

func (s *WizardService) resetLocked() {
	s.record = domain.NewPolicyRecord()
	s.state = domain.StateIdle
	s.sectionIdx = 0
	s.token = uuid.New()
	s.lastError = ""
	s.submission = ""
	s.execLog = nil
	s.progress = make(map[domain.SectionID]domain.SectionProgress, len(domain.Sections))
	s.rescoreAll()
}

// --- Internos ---

// beginPopulating abre a fase de merge a partir de idle.
func (s *WizardService) beginPopulating() {
	if s.state == domain.StateIdle {
		s.state = domain.StatePopulating
	}
}

// finishPopulating fecha a fase de merge: deriva, repontua tudo e entra em
// edição. Um merge depois de uma falha de submissão também reabre a edição.
func (s *WizardService) finishPopulating() {
	s.recomputeDerived(s.lastMergeProvenance)
	s.rescoreAll()
	if s.state == domain.StatePopulating || s.state == domain.StateSubmitFailed {
		s.state = domain.StateEditing
	}
}

var _ interfaces.WizardFacade = (*WizardService)(nil)

// mergeField é o redutor único de conflitos do motor: escreve apenas quando
// o campo está vazio ou a proveniência atual não é manual. Edições manuais
// ganham sempre; entre merges, o mais recente vence. Payloads malformados
// são tolerados em silêncio, só registados para diagnóstico.
func (s *WizardService) mergeField(name domain.FieldName, raw any, prov domain.Provenance, confidence float64) {
	if str, ok := raw.(string); ok && str == "" {
		return
	}
	if raw == nil {
		return
	}

	spec, ok := domain.SpecFor(name)
	if !ok {
		log.Printf("[merge] campo desconhecido %s ignorado", name)
		return
	}

	existing := s.record.Get(name)
	if existing.Provenance == domain.ProvenanceManual {
		s.logStep("merge", string(name), "preservado valor manual")
		return
	}

	coerced, err := domain.Coerce(spec, raw)
	if err != nil {
		// MergeError: tolerado, o campo fica por preencher.
		log.Printf("[merge] %v", err)
		s.logStep("merge", string(name), "valor ilegible descartado")
		return
	}
	if coerced == nil {
		return
	}

	s.record.Set(name, coerced, prov)
	fv := s.record.Get(name)
	fv.Confidence = confidence
	s.record.Fields[name] = fv
	s.lastMergeProvenance = prov
	s.logStep("merge", string(name), fmt.Sprintf("origen %s -> %q", prov, fv.String()))
}

// mergeFuzzy resolve texto livre digitalizado contra o catálogo antes de
// escrever o código canónico. Sem correspondência, o campo fica vazio.
func (s *WizardService) mergeFuzzy(name domain.FieldName, catalog domain.CatalogName, freeText string, confidence float64) {
	if freeText == "" {
		return
	}
	entry := s.catalogs.FuzzyMatchCode(catalog, freeText)
	if entry == nil {
		log.Printf("[merge] %s: sin correspondencia en %s para %q", name, catalog, freeText)
		s.logStep("merge", string(name), fmt.Sprintf("sin correspondencia para %q", freeText))
		return
	}
	s.mergeField(name, entry.ID, domain.ProvenanceScanned, confidence)
}

// recomputeDerived mantém o invariante valorCuota = round(total/cuotas, 2)
// sempre que ambos são positivos. Fora disso o campo fica livremente
// editável.
func (s *WizardService) recomputeDerived(prov domain.Provenance) {
	total := s.record.Get(domain.FieldTotal).Decimal()
	cuotas := s.record.Get(domain.FieldCuotas).Int()
	if !total.IsPositive() || cuotas <= 0 {
		return
	}
	if prov == "" {
		prov = domain.ProvenanceManual
	}
	valor := total.DivRound(decimal.NewFromInt(cuotas), 2)
	s.record.Set(domain.FieldValorCuota, valor, prov)
	s.logStep("derive", string(domain.FieldValorCuota), "recalculado a "+valor.String())
}

// rescoreSection reavalia apenas a secção dona da escrita.
func (s *WizardService) rescoreSection(section domain.SectionID) {
	s.progress[section] = s.scorer.ScoreSection(section, s.record)
}

// rescoreAll reavalia as seis secções após um merge ou reset.
func (s *WizardService) rescoreAll() {
	progress, _ := s.scorer.ScoreAll(s.record)
	for _, sp := range progress {
		s.progress[sp.Section] = sp
	}
}

func (s *WizardService) logStep(stage, field, action string) {
	s.execLog = append(s.execLog, domain.ExecutionStep{Stage: stage, Field: field, Action: action})
}
