package http

import (
	"github.com/gofiber/fiber/v2"
)

// RouterDeps dependencies for the router.
type RouterDeps struct {
	Sessions *SessionStore
}

// Router registers the console API routes. Everything under /api is
// session-scoped: the middleware resolves (or creates) the browser session
// that owns the workflow state.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api", deps.Sessions.Middleware())

	// Intake screen: paste → parse → review/edit → save
	intakeHandler := NewIntakeHandler()
	intakeGroup := api.Group("/intake")
	intakeGroup.Get("/", intakeHandler.State)
	intakeGroup.Put("/text", intakeHandler.SetText)
	intakeGroup.Post("/parse", intakeHandler.Parse)
	intakeGroup.Put("/draft", intakeHandler.ReplaceDraft)
	intakeGroup.Patch("/draft", intakeHandler.SetField)
	intakeGroup.Post("/save", intakeHandler.Save)
	intakeGroup.Post("/reset", intakeHandler.Reset)

	// Operations screen: orders, payments, documents
	opsHandler := NewOpsHandler()
	opsGroup := api.Group("/ops")
	opsGroup.Get("/orders", opsHandler.List)
	opsGroup.Post("/orders/:id/payments", opsHandler.RecordPayment)
	opsGroup.Get("/orders/:id/invoice", opsHandler.Invoice)
	opsGroup.Get("/export/cash", opsHandler.ExportCash)
}
