package server

import (
	"context"
	"errors"

	"runera-client/internal/config"
	"runera-client/internal/ledger"
	"runera-client/internal/record"
	"runera-client/internal/submit"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

// Submitter runs a completed run through the submission protocol.
type Submitter interface {
	Submit(ctx context.Context, run record.CompletedRun, title string) (submit.Outcome, error)
}

// Session reports the wallet session state.
type Session interface {
	Authenticated(ctx context.Context) bool
	WalletAddress() string
}

// Server is the local control surface over the recording pipeline. It
// binds on loopback; there is no authentication on these routes.
type Server struct {
	App      *fiber.App
	Cfg      config.Config
	Recorder *record.Recorder
	Submit   Submitter
	Session  Session
	Store    ledger.Store
}

func NewServer(cfg config.Config, recorder *record.Recorder, submitter Submitter, session Session, store ledger.Store) *Server {
	app := fiber.New()
	app.Use(recover.New())
	app.Use(logger.New())

	s := &Server{
		App:      app,
		Cfg:      cfg,
		Recorder: recorder,
		Submit:   submitter,
		Session:  session,
		Store:    store,
	}

	registerRoutes(s)
	return s
}

func registerRoutes(s *Server) {
	s.App.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	rec := s.App.Group("/record")
	rec.Post("/start", s.handleStart)
	rec.Post("/pause", s.handlePause)
	rec.Post("/resume", s.handleResume)
	rec.Post("/stop", s.handleStop)
	rec.Get("/status", s.handleStatus)

	s.App.Get("/activities", s.handleActivities)
	s.App.Get("/streak", s.handleStreak)
	s.App.Get("/auth/status", s.handleAuthStatus)
}

func (s *Server) handleStart(c *fiber.Ctx) error {
	if err := s.Recorder.Start(c.UserContext()); err != nil {
		return recordError(c, err)
	}
	return c.JSON(s.Recorder.Status())
}

func (s *Server) handlePause(c *fiber.Ctx) error {
	if err := s.Recorder.Pause(); err != nil {
		return recordError(c, err)
	}
	return c.JSON(s.Recorder.Status())
}

func (s *Server) handleResume(c *fiber.Ctx) error {
	if err := s.Recorder.Resume(c.UserContext()); err != nil {
		return recordError(c, err)
	}
	return c.JSON(s.Recorder.Status())
}

type stopRequest struct {
	Title string `json:"title"`
}

// handleStop ends the session and pushes the run through the full
// submission protocol in-request. The response is the submission
// outcome, never a bare acknowledgment.
func (s *Server) handleStop(c *fiber.Ctx) error {
	var req stopRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid body"})
		}
	}

	run, err := s.Recorder.Stop()
	if err != nil {
		return recordError(c, err)
	}

	outcome, err := s.Submit.Submit(c.UserContext(), run, req.Title)
	if errors.Is(err, submit.ErrInvalidRun) {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"error": err.Error()})
	}
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(outcome)
}

func (s *Server) handleStatus(c *fiber.Ctx) error {
	return c.JSON(s.Recorder.Status())
}

func (s *Server) handleActivities(c *fiber.Ctx) error {
	records, err := s.Store.List(c.UserContext(), s.Session.WalletAddress())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	if records == nil {
		records = []ledger.ActivityRecord{}
	}
	return c.JSON(records)
}

func (s *Server) handleStreak(c *fiber.Ctx) error {
	streak, err := s.Store.Streak(c.UserContext(), s.Session.WalletAddress())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(streak)
}

func (s *Server) handleAuthStatus(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"wallet_address": s.Session.WalletAddress(),
		"authenticated":  s.Session.Authenticated(c.UserContext()),
	})
}

// recordError maps recorder state violations to 409 so callers can
// tell a bad transition from a broken sampler.
func recordError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, record.ErrPrecondition),
		errors.Is(err, record.ErrSessionActive),
		errors.Is(err, record.ErrNoActiveSession),
		errors.Is(err, record.ErrNotRecording),
		errors.Is(err, record.ErrNotPaused):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": err.Error()})
	}
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
}
