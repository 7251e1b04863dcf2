package server

import (
	"context"
	"errors"
	"io"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gofiber/fiber/v2"

	"github.com/vamshi205/reconcilation-credit-sub001/pkg/ledger"
	"github.com/vamshi205/reconcilation-credit-sub001/pkg/matcher"
	"github.com/vamshi205/reconcilation-credit-sub001/pkg/models"
	"github.com/vamshi205/reconcilation-credit-sub001/pkg/parser"
)

// Server exposes normalization and name resolution over HTTP.
type Server struct {
	logger *log.Logger
	parser *parser.Parser
	engine *matcher.Engine
	ledger *ledger.Store
	app    *fiber.App
}

func New(logger *log.Logger, p *parser.Parser, e *matcher.Engine, l *ledger.Store) *Server {
	s := &Server{
		logger: logger,
		parser: p,
		engine: e,
		ledger: l,
		app: fiber.New(fiber.Config{
			BodyLimit:             32 << 20,
			DisableStartupMessage: true,
		}),
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.app.Use(s.withLogging)

	s.app.Get("/health", s.handleHealth)
	s.app.Post("/api/normalize", s.handleNormalize)
	s.app.Get("/api/suggest", s.handleSuggest)
	s.app.Post("/api/learn", s.handleLearn)
	s.app.Post("/api/train", s.handleTrain)
	s.app.Get("/api/mappings", s.handleMappings)
	s.app.Get("/api/transactions", s.handleTransactions)
	s.app.Patch("/api/transactions/:id", s.handleTransactionUpdate)
}

// Listen starts serving on addr and blocks.
func (s *Server) Listen(addr string) error {
	s.logger.Info("listening", "addr", addr)
	return s.app.Listen(addr)
}

// App exposes the fiber app for tests.
func (s *Server) App() *fiber.App {
	return s.app
}

func (s *Server) withLogging(c *fiber.Ctx) error {
	s.logger.Debug("http request", "method", c.Method(), "path", c.Path(), "remote", c.IP())
	return c.Next()
}

func (s *Server) handleHealth(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}

type transactionJSON struct {
	ID        string `json:"id"`
	Date      string `json:"date"`
	Amount    string `json:"amount"`
	Narration string `json:"narration"`
	Type      string `json:"type"`
	Category  string `json:"category"`
	Party     string `json:"party"`
	Reference string `json:"reference,omitempty"`
}

func (s *Server) handleNormalize(c *fiber.Ctx) error {
	fileHeader, err := c.FormFile("statement")
	if err != nil {
		return s.badRequest(c, "statement file required (multipart field 'statement')")
	}
	f, err := fileHeader.Open()
	if err != nil {
		return s.badRequest(c, "failed to open uploaded file")
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		return s.fail(c, fiber.StatusInternalServerError, "failed to read uploaded file", err)
	}

	format := parser.Format(c.FormValue("format"))
	filter := parser.TypeFilter(c.FormValue("type", string(parser.FilterBoth)))

	result, err := s.parser.NormalizeStatement(data, format, filter)
	if err != nil {
		return s.normalizeError(c, err)
	}

	resolve := c.FormValue("resolve") == "true"
	if resolve {
		s.resolveParties(c.Context(), result.Transactions)
	}

	if c.FormValue("save") == "true" {
		if err := s.ledger.Save(c.Context(), result.Transactions); err != nil {
			return s.fail(c, fiber.StatusBadGateway, "transaction store unavailable", err)
		}
	}

	out := make([]transactionJSON, len(result.Transactions))
	for i, tx := range result.Transactions {
		out[i] = transactionJSON{
			ID:        tx.ID,
			Date:      tx.Date.Format("2006-01-02"),
			Amount:    tx.Amount.StringFixed(2),
			Narration: tx.Description,
			Type:      string(tx.Type),
			Category:  string(tx.Category),
			Party:     tx.PartyName,
			Reference: tx.ReferenceNumber,
		}
	}

	return c.JSON(fiber.Map{
		"status":       "success",
		"transactions": out,
		"skipped":      result.Skipped,
		"errors":       result.Errors,
	})
}

// resolveParties fires suggestion lookups concurrently; each row is
// independent and the shared cache serializes its own refresh.
func (s *Server) resolveParties(ctx context.Context, txs []*models.Transaction) {
	var wg sync.WaitGroup
	for _, tx := range txs {
		wg.Add(1)
		go func(tx *models.Transaction) {
			defer wg.Done()
			if name, ok := s.engine.Suggest(ctx, tx.Description); ok {
				tx.PartyName = name
			}
		}(tx)
	}
	wg.Wait()
}

func (s *Server) handleSuggest(c *fiber.Ctx) error {
	text := c.Query("text")
	if text == "" {
		return s.badRequest(c, "text query parameter required")
	}
	name, ok := s.engine.Suggest(c.Context(), text)
	out := fiber.Map{"suggestion": name, "found": ok}
	if !ok {
		// No learned mapping; offer the mined name as a starting point.
		out["extracted"] = matcher.FirstCandidate(text)
	}
	return c.JSON(out)
}

type learnRequest struct {
	Original  string `json:"original"`
	Corrected string `json:"corrected"`
}

func (s *Server) handleLearn(c *fiber.Ctx) error {
	var req learnRequest
	if err := c.BodyParser(&req); err != nil {
		return s.badRequest(c, "invalid JSON body")
	}
	if req.Original == "" || req.Corrected == "" {
		return s.badRequest(c, "original and corrected are required")
	}
	if err := s.engine.Learn(c.Context(), req.Original, req.Corrected); err != nil {
		// Learning failures never abort the caller's flow.
		s.logger.Warn("learn dropped", "error", err)
		return c.JSON(fiber.Map{"status": "dropped"})
	}
	return c.JSON(fiber.Map{"status": "learned"})
}

type trainRequest struct {
	Narration     string `json:"narration"`
	CorrectedName string `json:"correctedName"`
}

func (s *Server) handleTrain(c *fiber.Ctx) error {
	var req trainRequest
	if err := c.BodyParser(&req); err != nil {
		return s.badRequest(c, "invalid JSON body")
	}
	if req.Narration == "" {
		return s.badRequest(c, "narration is required")
	}
	if err := s.engine.AutoTrain(c.Context(), req.Narration, req.CorrectedName); err != nil {
		s.logger.Warn("auto-train incomplete", "error", err)
		return c.JSON(fiber.Map{"status": "partial"})
	}
	return c.JSON(fiber.Map{"status": "trained"})
}

func (s *Server) handleMappings(c *fiber.Ctx) error {
	mappings, err := s.engine.Mappings(c.Context())
	if err != nil {
		return s.fail(c, fiber.StatusBadGateway, "mapping store unavailable", err)
	}
	return c.JSON(fiber.Map{"status": "success", "mappings": mappings})
}

func (s *Server) handleTransactions(c *fiber.Ctx) error {
	txs, err := s.ledger.List(c.Context())
	if err != nil {
		return s.fail(c, fiber.StatusBadGateway, "transaction store unavailable", err)
	}
	return c.JSON(fiber.Map{"status": "success", "transactions": txs})
}

type updateRequest struct {
	Date                  *string          `json:"date"`
	PartyName             *string          `json:"partyName"`
	Category              *models.Category `json:"category"`
	Notes                 *string          `json:"notes"`
	Hold                  *bool            `json:"hold"`
	AddedToLedger         *bool            `json:"addedToLedger"`
	LedgerReferenceNumber *string          `json:"ledgerReferenceNumber"`
}

func (s *Server) handleTransactionUpdate(c *fiber.Ctx) error {
	var req updateRequest
	if err := c.BodyParser(&req); err != nil {
		return s.badRequest(c, "invalid JSON body")
	}

	u := models.TransactionUpdate{
		PartyName:             req.PartyName,
		Category:              req.Category,
		Notes:                 req.Notes,
		Hold:                  req.Hold,
		AddedToLedger:         req.AddedToLedger,
		LedgerReferenceNumber: req.LedgerReferenceNumber,
	}
	if req.Date != nil {
		d, err := time.Parse("2006-01-02", *req.Date)
		if err != nil {
			return s.badRequest(c, "date must be YYYY-MM-DD")
		}
		u.Date = &d
	}

	tx, dateRejected, err := s.ledger.Update(c.Context(), c.Params("id"), u)
	switch {
	case errors.Is(err, ledger.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"status": "error", "error": "transaction not found"})
	case err != nil:
		return s.fail(c, fiber.StatusBadGateway, "transaction store unavailable", err)
	}

	out := fiber.Map{"status": "success", "transaction": tx}
	if dateRejected {
		s.logger.Warn("date change rejected", "id", tx.ID)
		out["warning"] = models.ErrDateMutation.Error()
	}
	return c.JSON(out)
}

func (s *Server) normalizeError(c *fiber.Ctx, err error) error {
	var diag *parser.NoTransactionsError
	switch {
	case errors.As(err, &diag):
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
			"status":           "error",
			"error":            diag.Error(),
			"detected_columns": diag.DetectedColumns,
			"sample_row":       diag.SampleRow,
		})
	case errors.Is(err, parser.ErrEmptyInput):
		return s.badRequest(c, "statement has no data rows")
	case errors.Is(err, parser.ErrMalformedInput):
		return s.badRequest(c, err.Error())
	default:
		return s.fail(c, fiber.StatusInternalServerError, "normalization failed", err)
	}
}

func (s *Server) badRequest(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"status": "error", "error": msg})
}

func (s *Server) fail(c *fiber.Ctx, status int, msg string, err error) error {
	s.logger.Warn("request error", "status", status, "msg", msg, "error", err, "path", c.Path())
	return c.Status(status).JSON(fiber.Map{"status": "error", "error": msg})
}
