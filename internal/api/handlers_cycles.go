package api

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/quietlotus/hadane/internal/dateutil"
	"github.com/quietlotus/hadane/internal/models"
	"github.com/quietlotus/hadane/internal/services"
)

const (
	defaultCycleListLimit = 12
	maxCycleListLimit     = 50
)

func (handler *Handler) ListCycles(c *fiber.Ctx) error {
	userID, ok := currentUserID(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}

	limit := c.QueryInt("limit", defaultCycleListLimit)
	if limit < 1 {
		limit = 1
	}
	if limit > maxCycleListLimit {
		limit = maxCycleListLimit
	}

	cycles, err := handler.repos.Cycles.ListByUser(userID, limit)
	if err != nil {
		handler.log.Error("list cycles failed", zap.Error(err))
		return apiError(c, fiber.StatusInternalServerError, "failed to load cycles")
	}

	views := make([]cycleView, 0, len(cycles))
	for _, cycle := range cycles {
		views = append(views, toCycleView(cycle))
	}
	return c.JSON(fiber.Map{"cycles": views, "total": len(views)})
}

func (handler *Handler) CreateCycle(c *fiber.Ctx) error {
	userID, ok := currentUserID(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}

	payload := cycleCreatePayload{}
	if err := c.BodyParser(&payload); err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid payload")
	}

	start, err := dateutil.ParseDay(payload.StartDate, handler.location)
	if err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid start date")
	}
	var end *time.Time
	if payload.EndDate != nil {
		parsed, err := dateutil.ParseDay(*payload.EndDate, handler.location)
		if err != nil {
			return apiError(c, fiber.StatusBadRequest, "invalid end date")
		}
		end = &parsed
	}

	today := handler.today()
	if err := services.ValidateNotFuture(start, today); err != nil {
		return apiError(c, fiber.StatusBadRequest, "start date cannot be in the future")
	}
	if end != nil {
		if err := services.ValidateNotFuture(*end, today); err != nil {
			return apiError(c, fiber.StatusBadRequest, "end date cannot be in the future")
		}
	}

	openCycles, err := handler.repos.Cycles.ListOpen(userID)
	if err != nil {
		handler.log.Error("open cycle lookup failed", zap.Error(err))
		return apiError(c, fiber.StatusInternalServerError, "failed to load cycles")
	}
	if len(openCycles) > 0 {
		return apiError(c, fiber.StatusBadRequest, "the previous cycle has not ended yet; record its end date first")
	}

	all, err := handler.repos.Cycles.ListAllByUser(userID)
	if err != nil {
		handler.log.Error("cycle history lookup failed", zap.Error(err))
		return apiError(c, fiber.StatusInternalServerError, "failed to load cycles")
	}
	if err := services.ValidateCycleDates(all, start, end, ""); err != nil {
		return mapCycleRuleError(c, err)
	}

	cycle := models.CycleLog{UserID: userID, StartDate: start, EndDate: end}
	if err := handler.repos.Cycles.Create(&cycle); err != nil {
		handler.log.Error("cycle create failed", zap.Error(err))
		return apiError(c, fiber.StatusInternalServerError, "failed to create cycle")
	}

	return c.Status(fiber.StatusCreated).JSON(toCycleView(cycle))
}

// CloseCycle ends the single open cycle without needing its id.
func (handler *Handler) CloseCycle(c *fiber.Ctx) error {
	userID, ok := currentUserID(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}

	payload := cycleEndPayload{}
	if err := c.BodyParser(&payload); err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid payload")
	}
	end, err := dateutil.ParseDay(payload.EndDate, handler.location)
	if err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid end date")
	}
	if err := services.ValidateNotFuture(end, handler.today()); err != nil {
		return apiError(c, fiber.StatusBadRequest, "end date cannot be in the future")
	}

	openCycles, err := handler.repos.Cycles.ListOpen(userID)
	if err != nil {
		handler.log.Error("open cycle lookup failed", zap.Error(err))
		return apiError(c, fiber.StatusInternalServerError, "failed to load cycles")
	}
	if len(openCycles) == 0 {
		return apiError(c, fiber.StatusBadRequest, "there is no cycle to end")
	}
	if len(openCycles) >= 2 {
		return apiError(c, fiber.StatusConflict, "multiple open cycles found; data integrity error")
	}

	cycle := openCycles[0]
	if end.Before(dateutil.DateOnly(cycle.StartDate)) {
		return apiError(c, fiber.StatusBadRequest, "end date must be on or after the start date")
	}

	all, err := handler.repos.Cycles.ListAllByUser(userID)
	if err != nil {
		handler.log.Error("cycle history lookup failed", zap.Error(err))
		return apiError(c, fiber.StatusInternalServerError, "failed to load cycles")
	}
	if err := services.ValidateCycleDates(all, cycle.StartDate, &end, cycle.ID); err != nil {
		return mapCycleRuleError(c, err)
	}

	cycle.EndDate = &end
	if err := handler.repos.Cycles.Save(&cycle); err != nil {
		handler.log.Error("cycle close failed", zap.Error(err))
		return apiError(c, fiber.StatusInternalServerError, "failed to update cycle")
	}

	return c.JSON(toCycleView(cycle))
}

// UpdateCycle partially updates one cycle; history edits go through here.
func (handler *Handler) UpdateCycle(c *fiber.Ctx) error {
	userID, ok := currentUserID(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}

	cycle, found, err := handler.repos.Cycles.FindByID(userID, c.Params("cycleID"))
	if err != nil {
		handler.log.Error("cycle lookup failed", zap.Error(err))
		return apiError(c, fiber.StatusInternalServerError, "failed to load cycle")
	}
	if !found {
		return apiError(c, fiber.StatusNotFound, "cycle not found")
	}

	payload := cycleUpdatePayload{}
	if err := c.BodyParser(&payload); err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid payload")
	}
	if payload.StartDate == nil && payload.EndDate == nil {
		return apiError(c, fiber.StatusBadRequest, "no fields provided for update")
	}

	today := handler.today()
	if payload.StartDate != nil {
		start, err := dateutil.ParseDay(*payload.StartDate, handler.location)
		if err != nil {
			return apiError(c, fiber.StatusBadRequest, "invalid start date")
		}
		if err := services.ValidateNotFuture(start, today); err != nil {
			return apiError(c, fiber.StatusBadRequest, "start date cannot be in the future")
		}
		cycle.StartDate = start
	}
	if payload.EndDate != nil {
		end, err := dateutil.ParseDay(*payload.EndDate, handler.location)
		if err != nil {
			return apiError(c, fiber.StatusBadRequest, "invalid end date")
		}
		if err := services.ValidateNotFuture(end, today); err != nil {
			return apiError(c, fiber.StatusBadRequest, "end date cannot be in the future")
		}
		cycle.EndDate = &end
	}

	all, err := handler.repos.Cycles.ListAllByUser(userID)
	if err != nil {
		handler.log.Error("cycle history lookup failed", zap.Error(err))
		return apiError(c, fiber.StatusInternalServerError, "failed to load cycles")
	}
	if err := services.ValidateCycleDates(all, cycle.StartDate, cycle.EndDate, cycle.ID); err != nil {
		return mapCycleRuleError(c, err)
	}

	if err := handler.repos.Cycles.Save(&cycle); err != nil {
		handler.log.Error("cycle update failed", zap.Error(err))
		return apiError(c, fiber.StatusInternalServerError, "failed to update cycle")
	}

	return c.JSON(toCycleView(cycle))
}

// DeleteCycle exists for maintenance; the calendar UI never closes a cycle
// by deleting it.
func (handler *Handler) DeleteCycle(c *fiber.Ctx) error {
	userID, ok := currentUserID(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}

	_, found, err := handler.repos.Cycles.FindByID(userID, c.Params("cycleID"))
	if err != nil {
		handler.log.Error("cycle lookup failed", zap.Error(err))
		return apiError(c, fiber.StatusInternalServerError, "failed to load cycle")
	}
	if !found {
		return apiError(c, fiber.StatusNotFound, "cycle not found")
	}

	if err := handler.repos.Cycles.Delete(userID, c.Params("cycleID")); err != nil {
		handler.log.Error("cycle delete failed", zap.Error(err))
		return apiError(c, fiber.StatusInternalServerError, "failed to delete cycle")
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func mapCycleRuleError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, services.ErrOpenCycleExists):
		return apiError(c, fiber.StatusConflict, "an unfinished cycle exists; close it first")
	case errors.Is(err, services.ErrEndBeforeStart):
		return apiError(c, fiber.StatusBadRequest, "end date must be on or after the start date")
	case errors.Is(err, services.ErrOverlapsPrevious):
		return apiError(c, fiber.StatusBadRequest, "start date must be after the previous cycle's end")
	case errors.Is(err, services.ErrOverlapsNext):
		return apiError(c, fiber.StatusBadRequest, "end date must be before the next cycle's start")
	case errors.Is(err, services.ErrOpenCycleNotLatest):
		return apiError(c, fiber.StatusBadRequest, "an open cycle must be the most recent one")
	}
	return apiError(c, fiber.StatusBadRequest, "invalid cycle dates")
}
