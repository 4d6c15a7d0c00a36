package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/ivlev/reframe/internal/config"
	"github.com/ivlev/reframe/internal/detector"
	"github.com/ivlev/reframe/internal/pipeline"
	"github.com/ivlev/reframe/internal/trajectory"
)

func RegisterPlanRoutes(app *fiber.App, cfg *config.Config) {
	app.Post("/reframe/plan", func(c *fiber.Ctx) error {
		return planReframe(c, cfg)
	})
}

func planReframe(c *fiber.Ctx, base *config.Config) error {
	var payload struct {
		AspectRatio  string         `json:"aspect_ratio"`
		FocusMode    string         `json:"focus_mode"`
		AdaptiveZoom *bool          `json:"adaptive_zoom"`
		FilterFPS    int            `json:"filter_fps"` // >0 adds an FFmpeg crop filter to the response
		Dump         *detector.Dump `json:"dump"`
	}

	if err := c.BodyParser(&payload); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid body"})
	}
	if payload.Dump == nil {
		return c.Status(400).JSON(fiber.Map{"error": "missing detection dump"})
	}

	provider, err := detector.FromDump(payload.Dump)
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": err.Error()})
	}

	// Per-request copy: the base config is shared across requests.
	cfg := *base
	if payload.AspectRatio != "" {
		cfg.AspectRatio = payload.AspectRatio
	}
	if payload.FocusMode != "" {
		cfg.FocusMode = payload.FocusMode
	}
	if payload.AdaptiveZoom != nil {
		cfg.Zoom.AdaptiveEnabled = *payload.AdaptiveZoom
	}

	// The service plans from dumps only; motion compensation needs frame
	// access and stays a CLI concern.
	p, err := pipeline.New(&cfg, provider, nil)
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": err.Error()})
	}

	tr, err := p.Run(c.Context())
	if err != nil {
		return errJson(c, err)
	}

	resp := fiber.Map{
		"trajectory": tr,
	}
	if payload.FilterFPS > 0 {
		resp["crop_filter"] = trajectory.GenerateCropFilter(tr.Keyframes, payload.FilterFPS)
	}
	return c.JSON(resp)
}

func errJson(c *fiber.Ctx, err error) error {
	return c.Status(500).JSON(fiber.Map{"error": err.Error()})
}
