package api

import "github.com/gofiber/fiber/v2"

func RegisterRoutes(app *fiber.App, handler *Handler) {
	cycles := app.Group("/cycles", handler.RequireAuth)
	cycles.Get("", handler.ListCycles)
	cycles.Post("", handler.CreateCycle)
	// The fixed /end route must register before the id wildcard.
	cycles.Patch("/end", handler.CloseCycle)
	cycles.Patch("/:cycleID", handler.UpdateCycle)
	cycles.Delete("/:cycleID", handler.DeleteCycle)

	records := app.Group("/records", handler.RequireAuth)
	records.Get("", handler.ListRecords)
	records.Post("", handler.CreateRecord)
	records.Get("/:date", handler.GetRecord)
	records.Patch("/:date", handler.UpdateRecord)
	records.Delete("/:date", handler.DeleteRecord)
}
