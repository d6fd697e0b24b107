// Package api exposes the extraction and detection pipeline over HTTP.
package api

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/fincheckhq/fincheck/internal/categorize"
	"github.com/fincheckhq/fincheck/internal/detect"
	"github.com/fincheckhq/fincheck/internal/models"
	"github.com/fincheckhq/fincheck/internal/parser"
	"github.com/fincheckhq/fincheck/internal/store"
)

// Handler holds the HTTP handlers and their dependencies.
type Handler struct {
	Store       *store.Store
	Parser      *parser.Engine
	Detector    *detect.Engine
	Categorizer categorize.Categorizer
	Log         zerolog.Logger
	Version     string
}

// RegisterRoutes sets up the API routes.
func (h *Handler) RegisterRoutes(app *fiber.App) {
	app.Get("/api/health", h.HandleHealth)
	app.Post("/api/statements", h.HandleUpload)
	app.Post("/api/scan", h.HandleScan)
	app.Get("/api/findings", h.HandleFindings)
	app.Post("/api/findings/:id/dismiss", h.HandleDismiss)
	app.Get("/api/transactions", h.HandleTransactions)
	app.Get("/api/stats", h.HandleStats)
	app.Get("/api/analytics/categories", h.HandleCategories)
	app.Get("/api/analytics/merchants", h.HandleTopMerchants)
	app.Get("/api/analytics/cashflow", h.HandleCashFlow)
	app.Get("/api/analytics/income", h.HandleIncomeVsExpenses)
	app.Get("/api/analytics/similar", h.HandleSimilarMerchants)
	app.Get("/api/analytics/velocity", h.HandleVelocity)
}

// HandleHealth reports liveness.
func (h *Handler) HandleHealth(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":  "ok",
		"engine":  "fiber",
		"version": h.Version,
	})
}

// UploadResponse is the JSON response from POST /api/statements.
type UploadResponse struct {
	Success      bool                       `json:"success"`
	Error        string                     `json:"error,omitempty"`
	Duplicate    bool                       `json:"duplicate,omitempty"`
	Statement    *models.StatementMetadata  `json:"statement,omitempty"`
	Transactions []models.TransactionRecord `json:"transactions,omitempty"`
	Count        int                        `json:"count"`
	SkippedRows  int                        `json:"skippedRows"`
}

// HandleUpload receives a statement PDF, parses it, categorizes the
// transactions, and persists the result. Re-uploading a statement that is
// already ingested reports duplicate=true and stores nothing.
func (h *Handler) HandleUpload(c *fiber.Ctx) error {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).
			JSON(UploadResponse{Error: "No file uploaded. Use form field 'file'."})
	}
	if !strings.HasSuffix(strings.ToLower(fileHeader.Filename), ".pdf") {
		return c.Status(fiber.StatusBadRequest).
			JSON(UploadResponse{Error: "Only PDF files are supported."})
	}

	tmpDir, err := os.MkdirTemp("", "fincheck-upload-*")
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).
			JSON(UploadResponse{Error: fmt.Sprintf("Failed to stage upload: %v", err)})
	}
	defer os.RemoveAll(tmpDir)

	tmpPath := filepath.Join(tmpDir, filepath.Base(fileHeader.Filename))
	if err := c.SaveFile(fileHeader, tmpPath); err != nil {
		return c.Status(fiber.StatusInternalServerError).
			JSON(UploadResponse{Error: fmt.Sprintf("Failed to save upload: %v", err)})
	}

	res, err := h.Parser.ParseStatement(tmpPath)
	if err != nil {
		h.Log.Warn().Err(err).Str("file", fileHeader.Filename).Msg("statement rejected")
		return c.Status(fiber.StatusUnprocessableEntity).
			JSON(UploadResponse{Error: err.Error()})
	}
	res.Metadata.SourcePath = fileHeader.Filename

	categorize.Apply(h.Categorizer, res.Transactions)

	ctx := c.Context()
	existed, err := h.Store.InsertStatement(ctx, res.Metadata)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).
			JSON(UploadResponse{Error: err.Error()})
	}
	if existed {
		return c.JSON(UploadResponse{
			Success:   true,
			Duplicate: true,
			Statement: res.Metadata,
		})
	}
	if err := h.Store.InsertTransactions(ctx, res.Metadata.ID, res.Transactions); err != nil {
		return c.Status(fiber.StatusInternalServerError).
			JSON(UploadResponse{Error: err.Error()})
	}

	return c.JSON(UploadResponse{
		Success:      true,
		Statement:    res.Metadata,
		Transactions: res.Transactions,
		Count:        len(res.Transactions),
		SkippedRows:  len(res.Skipped),
	})
}

// HandleScan reruns every detector over the full transaction history and
// replaces the stored findings.
func (h *Handler) HandleScan(c *fiber.Ctx) error {
	ctx := c.Context()
	findings, err := h.Detector.Run(ctx, h.Store)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}
	if err := h.Store.ClearFindings(ctx); err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}
	if err := h.Store.SaveFindings(ctx, findings); err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}
	return c.JSON(fiber.Map{"success": true, "findings": len(findings)})
}

// HandleFindings lists stored findings with their transaction context, most
// urgent first. Pass ?dismissed=true to include dismissed ones.
func (h *Handler) HandleFindings(c *fiber.Ctx) error {
	findings, err := h.Store.GetFindingDetails(c.Context(), c.QueryBool("dismissed"))
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}
	if findings == nil {
		findings = []store.FindingDetail{}
	}
	return c.JSON(findings)
}

// HandleDismiss marks a finding as reviewed.
func (h *Handler) HandleDismiss(c *fiber.Ctx) error {
	id := c.Params("id")
	if err := h.Store.DismissFinding(c.Context(), id); err != nil {
		return fiber.NewError(fiber.StatusNotFound, fmt.Sprintf("finding %s not found", id))
	}
	return c.JSON(fiber.Map{"success": true})
}

// HandleTransactions lists transactions with optional filters: merchant,
// category, from, to, min, max, limit.
func (h *Handler) HandleTransactions(c *fiber.Ctx) error {
	f := store.Filter{
		Merchant: c.Query("merchant"),
		Category: c.Query("category"),
		DateFrom: c.Query("from"),
		DateTo:   c.Query("to"),
		Limit:    c.QueryInt("limit"),
	}
	if v := c.QueryFloat("min", -1); v >= 0 {
		f.MinAmount = &v
	}
	if v := c.QueryFloat("max", -1); v >= 0 {
		f.MaxAmount = &v
	}

	txns, err := h.Store.GetTransactions(c.Context(), f)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}
	if txns == nil {
		txns = []models.TransactionRecord{}
	}
	return c.JSON(txns)
}

// HandleStats reports corpus-level counts.
func (h *Handler) HandleStats(c *fiber.Ctx) error {
	stats, err := h.Store.GetStats(c.Context())
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}
	return c.JSON(stats)
}

// HandleCategories reports per-category expense totals.
func (h *Handler) HandleCategories(c *fiber.Ctx) error {
	rows, err := h.Store.CategoryBreakdown(c.Context(), c.Query("from"), c.Query("to"))
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}
	return c.JSON(rows)
}

// HandleTopMerchants ranks merchants by total expense.
func (h *Handler) HandleTopMerchants(c *fiber.Ctx) error {
	rows, err := h.Store.TopMerchants(c.Context(), c.QueryInt("limit", 10))
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}
	return c.JSON(rows)
}

// HandleCashFlow reports monthly income vs expense.
func (h *Handler) HandleCashFlow(c *fiber.Ctx) error {
	rows, err := h.Store.CashFlowByMonth(c.Context())
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}
	return c.JSON(rows)
}

// HandleIncomeVsExpenses reports the corpus-level money-in vs money-out
// rollup, optionally bounded by from/to dates.
func (h *Handler) HandleIncomeVsExpenses(c *fiber.Ctx) error {
	res, err := h.Store.IncomeVsExpenses(c.Context(), c.Query("from"), c.Query("to"))
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}
	return c.JSON(res)
}

// HandleSimilarMerchants reports merchant-name pairs that likely belong to
// the same business.
func (h *Handler) HandleSimilarMerchants(c *fiber.Ctx) error {
	txns, err := h.Store.GetAllTransactions(c.Context())
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}
	pairs := h.Detector.SimilarMerchants(txns)
	if pairs == nil {
		pairs = []detect.SimilarPair{}
	}
	return c.JSON(pairs)
}

// HandleVelocity reports the month-over-month spending trend.
func (h *Handler) HandleVelocity(c *fiber.Ctx) error {
	txns, err := h.Store.GetAllTransactions(c.Context())
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}
	return c.JSON(h.Detector.SpendingVelocity(txns))
}
