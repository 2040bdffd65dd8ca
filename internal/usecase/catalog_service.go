package usecase

import (
	"context"
	"log"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/Victor-armando18/service-policy/internal/domain"
	"github.com/Victor-armando18/service-policy/internal/interfaces"
)

// CatalogService carrega e memoiza as tabelas de referência da sessão.
// O load corre uma vez; chamadas seguintes são no-ops salvo force ou falha
// anterior. Uma segunda chamada enquanto o load está em curso junta-se ao
// resultado pendente em vez de duplicar o fetch.
type CatalogService struct {
	backend interfaces.CatalogBackend
	flight  singleflight.Group

	mu            sync.RWMutex
	catalogs      domain.Catalogs
	loadErrs      map[domain.CatalogName]error
	loaded        bool
	tariffCompany string
}

func NewCatalogService(backend interfaces.CatalogBackend) *CatalogService {
	svc := &CatalogService{
		backend:  backend,
		catalogs: make(domain.Catalogs),
		loadErrs: make(map[domain.CatalogName]error),
	}
	// As enumerações estáticas ficam disponíveis desde o arranque.
	for name, entries := range domain.StaticCatalogs {
		svc.catalogs[name] = entries
	}
	return svc
}

// Load busca os catálogos remotos. A falha de um sub-catálogo não derruba o
// load: esse catálogo degrada para lista vazia e é retentado no próximo Load.
func (s *CatalogService) Load(ctx context.Context, force bool) error {
	s.mu.RLock()
	done := s.loaded && !force && len(s.loadErrs) == 0
	s.mu.RUnlock()
	if done {
		return nil
	}

	// singleflight garante no máximo um load em voo; chamadas concorrentes
	// recebem o mesmo resultado pendente.
	_, err, _ := s.flight.Do("load", func() (any, error) {
		return nil, s.fetchAll(ctx, force)
	})
	return err
}

func (s *CatalogService) fetchAll(ctx context.Context, force bool) error {
	s.mu.RLock()
	pending := make([]domain.CatalogName, 0, len(domain.RemoteCatalogs))
	for _, name := range domain.RemoteCatalogs {
		if force || !s.loaded || s.loadErrs[name] != nil {
			pending = append(pending, name)
		}
	}
	s.mu.RUnlock()

	results := make(map[domain.CatalogName][]domain.CatalogEntry, len(pending))
	failures := make(map[domain.CatalogName]error)
	var resMu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	for _, name := range pending {
		name := name
		g.Go(func() error {
			entries, err := s.backend.FetchCatalog(gctx, name)
			resMu.Lock()
			defer resMu.Unlock()
			if err != nil {
				// Degradação parcial: regista a falha e segue.
				log.Printf("[catalog] falha ao carregar %s: %v", name, err)
				failures[name] = err
				return nil
			}
			results[name] = entries
			return nil
		})
	}
	g.Wait()

	s.mu.Lock()
	defer s.mu.Unlock()
	for name, entries := range results {
		s.catalogs[name] = entries
		delete(s.loadErrs, name)
	}
	for name, err := range failures {
		s.catalogs[name] = nil
		s.loadErrs[name] = err
	}
	s.loaded = true

	if len(failures) > 0 {
		return domain.ErrCatalogLoad
	}
	return nil
}

// LoadTariffs busca as tarifas da companhia indicada. O cache é por
// companhia: trocar de companhia invalida e recarrega.
func (s *CatalogService) LoadTariffs(ctx context.Context, companyID string) error {
	s.mu.RLock()
	cached := s.tariffCompany == companyID && s.loadErrs[domain.CatalogTariff] == nil && len(s.catalogs[domain.CatalogTariff]) > 0
	s.mu.RUnlock()
	if cached {
		return nil
	}

	_, err, _ := s.flight.Do("tariffs:"+companyID, func() (any, error) {
		entries, err := s.backend.FetchTariffs(ctx, companyID)

		s.mu.Lock()
		defer s.mu.Unlock()
		s.tariffCompany = companyID
		if err != nil {
			log.Printf("[catalog] falha ao carregar tarifas de %s: %v", companyID, err)
			s.catalogs[domain.CatalogTariff] = nil
			s.loadErrs[domain.CatalogTariff] = err
			return nil, domain.ErrCatalogLoad
		}
		s.catalogs[domain.CatalogTariff] = entries
		delete(s.loadErrs, domain.CatalogTariff)
		return nil, nil
	})
	return err
}

// Lookup devolve a entrada com o id dado, nil quando não existe.
func (s *CatalogService) Lookup(name domain.CatalogName, id string) *domain.CatalogEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, entry := range s.catalogs[name] {
		if entry.ID == id {
			e := entry
			return &e
		}
	}
	return nil
}

// Search filtra por id, nome ou descrição, sem distinguir maiúsculas.
// Termo vazio devolve a lista completa sem filtrar.
func (s *CatalogService) Search(name domain.CatalogName, term string) []domain.CatalogEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries := s.catalogs[name]
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return append([]domain.CatalogEntry(nil), entries...)
	}

	var out []domain.CatalogEntry
	for _, entry := range entries {
		if strings.Contains(strings.ToLower(entry.ID), term) ||
			strings.Contains(strings.ToLower(entry.DisplayName), term) ||
			strings.Contains(strings.ToLower(entry.Description), term) {
			out = append(out, entry)
		}
	}
	return out
}

// synonyms traduz texto livre digitalizado para códigos canónicos. É
// consultada antes do fallback por substring nos nomes de exibição.
var synonyms = map[domain.CatalogName]map[string]string{
	domain.CatalogFuelType: {
		"DIESEL":    "DIS",
		"GASOIL":    "DIS",
		"GAS OIL":   "DIS",
		"NAFTA":     "NAF",
		"GASOLINA":  "NAF",
		"GNC":       "GNC",
		"ELECTRICO": "ELE",
		"HIBRIDO":   "HIB",
	},
	domain.CatalogCurrency: {
		"PESOS":   "PES",
		"$":       "PES",
		"ARS":     "PES",
		"DOLARES": "DOL",
		"USD":     "DOL",
		"U$S":     "DOL",
		"EUROS":   "EU",
		"EUR":     "EU",
	},
	domain.CatalogDestination: {
		"PARTICULAR": "PAR",
		"PRIVADO":    "PAR",
		"COMERCIAL":  "COM",
		"TAXI":       "TAX",
		"REMIS":      "TAX",
	},
}

// FuzzyMatchCode tenta casar texto livre (ex.: "DIESEL" digitalizado) com a
// entrada canónica do catálogo. Nil quando nada casa.
func (s *CatalogService) FuzzyMatchCode(name domain.CatalogName, freeText string) *domain.CatalogEntry {
	text := strings.ToUpper(strings.TrimSpace(freeText))
	if text == "" {
		return nil
	}

	if table, ok := synonyms[name]; ok {
		if id, ok := table[text]; ok {
			if entry := s.Lookup(name, id); entry != nil {
				return entry
			}
		}
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, entry := range s.catalogs[name] {
		display := strings.ToUpper(entry.DisplayName)
		if strings.Contains(display, text) || strings.Contains(text, display) {
			e := entry
			return &e
		}
	}
	return nil
}

// Entries devolve a lista corrente do catálogo (vazia quando degradado).
func (s *CatalogService) Entries(name domain.CatalogName) []domain.CatalogEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.CatalogEntry(nil), s.catalogs[name]...)
}

// LoadError devolve a falha pendente do catálogo, nil quando saudável.
func (s *CatalogService) LoadError(name domain.CatalogName) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loadErrs[name]
}
