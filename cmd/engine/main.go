package main

import (
	"context"
	"io"
	"log"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/Victor-armando18/service-policy/internal/domain"
	"github.com/Victor-armando18/service-policy/internal/infrastructure"
	"github.com/Victor-armando18/service-policy/internal/infrastructure/config"
	"github.com/Victor-armando18/service-policy/internal/scoring"
	"github.com/Victor-armando18/service-policy/internal/usecase"
	"github.com/Victor-armando18/service-policy/internal/validation"
)

type fieldUpdateRequest struct {
	Value any `json:"value"`
}

func main() {
	cfg, err := config.New()
	if err != nil {
		log.Fatalf("configuração inválida: %v", err)
	}

	validator := validation.NewEngine()
	if cfg.RulePackPath != "" {
		loader := validation.NewYAMLRulePackLoader()
		pack, err := loader.Load(context.Background(), cfg.RulePackPath)
		if err != nil {
			log.Fatalf("pack de regras: %v", err)
		}
		validator.UsePack(pack)
		log.Printf("pack de regras %s carregado de %s", pack.Version, cfg.RulePackPath)
	}

	scorer := scoring.NewEngine(validator)
	catalogBackend := infrastructure.NewHTTPCatalogBackend(cfg.CatalogBaseURL, cfg.HTTPTimeout)
	catalogs := usecase.NewCatalogService(catalogBackend)
	transport := infrastructure.NewHTTPSubmissionTransport(cfg.PolicyBaseURL, cfg.HTTPTimeout)
	wizard := usecase.NewWizardService(validator, scorer, catalogs, transport)

	// Pré-carrega os catálogos sem bloquear o arranque; sub-catálogos em
	// falha são retentados no próximo acesso.
	go func() {
		if err := catalogs.Load(context.Background(), false); err != nil {
			log.Printf("carga inicial de catálogos incompleta: %v", err)
		}
	}()

	e := echo.New()

	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{http.MethodPost, http.MethodPatch, http.MethodPut, http.MethodOptions, http.MethodGet},
		AllowHeaders: []string{echo.HeaderContentType, echo.HeaderAccept},
	}))

	e.GET("/wizard", handleGetWizard(wizard))
	e.PUT("/wizard/fields/:name", handleUpdateField(wizard))
	e.PATCH("/wizard/fields", handlePatchFields(wizard))
	e.POST("/wizard/scan", handleScan(wizard))
	e.POST("/wizard/client", handleClient(wizard))
	e.POST("/wizard/company", handleCompany(wizard))
	e.POST("/wizard/section", handleSection(wizard))
	e.POST("/wizard/submit", handleSubmit(wizard))
	e.POST("/wizard/reset", handleReset(wizard))
	e.GET("/catalogos/:name", handleCatalog(catalogs))
	e.POST("/catalogos/load", handleCatalogLoad(catalogs))

	e.Logger.Fatal(e.Start(cfg.ListenAddr))
}

func handleGetWizard(wizard *usecase.WizardService) echo.HandlerFunc {
	return func(c echo.Context) error {
		progress, overall := wizard.Progress()
		return c.JSON(http.StatusOK, map[string]any{
			"state":     wizard.State(),
			"section":   wizard.CurrentSection(),
			"record":    wizard.Record(),
			"progress":  progress,
			"overall":   overall,
			"lastError": wizard.LastError(),
			"log":       wizard.ExecutionLog(),
		})
	}
}

func handleUpdateField(wizard *usecase.WizardService) echo.HandlerFunc {
	return func(c echo.Context) error {
		var req fieldUpdateRequest
		if err := c.Bind(&req); err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "payload inválido"})
		}

		name := domain.FieldName(c.Param("name"))
		if err := wizard.UpdateField(name, req.Value); err != nil {
			return c.JSON(http.StatusUnprocessableEntity, map[string]string{"error": err.Error()})
		}

		spec, _ := domain.SpecFor(name)
		return c.JSON(http.StatusOK, map[string]any{
			"field":  wizard.Record().Get(name),
			"errors": wizard.Errors(spec.Section),
		})
	}
}

func handlePatchFields(wizard *usecase.WizardService) echo.HandlerFunc {
	return func(c echo.Context) error {
		patchBytes, err := io.ReadAll(c.Request().Body)
		if err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "payload inválido"})
		}

		if err := infrastructure.ApplyFieldPatch(wizard, patchBytes); err != nil {
			return c.JSON(http.StatusUnprocessableEntity, map[string]string{"error": err.Error()})
		}

		progress, overall := wizard.Progress()
		return c.JSON(http.StatusOK, map[string]any{"progress": progress, "overall": overall})
	}
}

func handleScan(wizard *usecase.WizardService) echo.HandlerFunc {
	return func(c echo.Context) error {
		var result domain.ExtractionResult
		if err := c.Bind(&result); err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "payload inválido"})
		}
		wizard.ApplyExtractedData(c.Request().Context(), result)
		progress, overall := wizard.Progress()
		return c.JSON(http.StatusOK, map[string]any{"progress": progress, "overall": overall})
	}
}

func handleClient(wizard *usecase.WizardService) echo.HandlerFunc {
	return func(c echo.Context) error {
		var client domain.Client
		if err := c.Bind(&client); err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "payload inválido"})
		}
		wizard.ApplyClient(c.Request().Context(), client)
		progress, overall := wizard.Progress()
		return c.JSON(http.StatusOK, map[string]any{"progress": progress, "overall": overall})
	}
}

func handleCompany(wizard *usecase.WizardService) echo.HandlerFunc {
	return func(c echo.Context) error {
		var company domain.Company
		if err := c.Bind(&company); err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "payload inválido"})
		}
		wizard.ApplyCompany(context.Background(), company)
		progress, overall := wizard.Progress()
		return c.JSON(http.StatusOK, map[string]any{"progress": progress, "overall": overall})
	}
}

func handleSection(wizard *usecase.WizardService) echo.HandlerFunc {
	return func(c echo.Context) error {
		var req struct {
			Section domain.SectionID `json:"section"`
		}
		if err := c.Bind(&req); err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "payload inválido"})
		}
		if err := wizard.GoToSection(req.Section); err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
		}
		return c.JSON(http.StatusOK, map[string]any{
			"section": wizard.CurrentSection(),
			"errors":  wizard.Errors(req.Section),
		})
	}
}

func handleSubmit(wizard *usecase.WizardService) echo.HandlerFunc {
	return func(c echo.Context) error {
		if err := wizard.Submit(c.Request().Context()); err != nil {
			status := http.StatusUnprocessableEntity
			if wizard.State() == domain.StateSubmitFailed {
				status = http.StatusBadGateway
			}
			return c.JSON(status, map[string]any{
				"error": err.Error(),
				"state": wizard.State(),
			})
		}
		return c.JSON(http.StatusCreated, map[string]any{
			"state": wizard.State(),
			"id":    wizard.SubmissionID(),
		})
	}
}

func handleReset(wizard *usecase.WizardService) echo.HandlerFunc {
	return func(c echo.Context) error {
		wizard.Reset()
		return c.JSON(http.StatusOK, map[string]any{"state": wizard.State()})
	}
}

func handleCatalog(catalogs *usecase.CatalogService) echo.HandlerFunc {
	return func(c echo.Context) error {
		name := domain.CatalogName(c.Param("name"))
		entries := catalogs.Search(name, c.QueryParam("q"))
		response := map[string]any{"entries": entries}
		if err := catalogs.LoadError(name); err != nil {
			response["degraded"] = err.Error()
		}
		return c.JSON(http.StatusOK, response)
	}
}

func handleCatalogLoad(catalogs *usecase.CatalogService) echo.HandlerFunc {
	return func(c echo.Context) error {
		force := c.QueryParam("force") == "true"
		if err := catalogs.Load(c.Request().Context(), force); err != nil {
			return c.JSON(http.StatusPartialContent, map[string]string{"error": err.Error()})
		}
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	}
}
