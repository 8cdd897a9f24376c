package api

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/quietlotus/hadane/internal/dateutil"
	"github.com/quietlotus/hadane/internal/models"
	"github.com/quietlotus/hadane/internal/services"
)

const (
	defaultRecordListLimit = 30
	maxRecordListLimit     = 100
)

func (handler *Handler) ListRecords(c *fiber.Ctx) error {
	userID, ok := currentUserID(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}

	limit := c.QueryInt("limit", defaultRecordListLimit)
	if limit < 1 {
		limit = 1
	}
	if limit > maxRecordListLimit {
		limit = maxRecordListLimit
	}

	today := handler.today()
	var start, end *time.Time
	if raw := c.Query("start_date"); raw != "" {
		parsed, err := dateutil.ParseDay(raw, handler.location)
		if err != nil {
			return apiError(c, fiber.StatusBadRequest, "invalid start_date")
		}
		if err := services.ValidateNotFuture(parsed, today); err != nil {
			return apiError(c, fiber.StatusBadRequest, "start_date cannot be in the future")
		}
		start = &parsed
	}
	if raw := c.Query("end_date"); raw != "" {
		parsed, err := dateutil.ParseDay(raw, handler.location)
		if err != nil {
			return apiError(c, fiber.StatusBadRequest, "invalid end_date")
		}
		if err := services.ValidateNotFuture(parsed, today); err != nil {
			return apiError(c, fiber.StatusBadRequest, "end_date cannot be in the future")
		}
		end = &parsed
	}
	if start != nil && end != nil && start.After(*end) {
		return apiError(c, fiber.StatusBadRequest, "start_date must be on or before end_date")
	}

	records, err := handler.repos.Records.ListByUserRange(userID, start, end, limit)
	if err != nil {
		handler.log.Error("list records failed", zap.Error(err))
		return apiError(c, fiber.StatusInternalServerError, "failed to load records")
	}

	views := make([]recordView, 0, len(records))
	for _, record := range records {
		views = append(views, toRecordView(record))
	}
	return c.JSON(fiber.Map{"records": views, "total": len(views)})
}

func (handler *Handler) GetRecord(c *fiber.Ctx) error {
	userID, ok := currentUserID(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}

	day, err := dateutil.ParseDay(c.Params("date"), handler.location)
	if err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid date")
	}
	if err := services.ValidateNotFuture(day, handler.today()); err != nil {
		return apiError(c, fiber.StatusBadRequest, "date cannot be in the future")
	}

	record, found, err := handler.repos.Records.FindByUserAndDate(userID, day)
	if err != nil {
		handler.log.Error("record lookup failed", zap.Error(err))
		return apiError(c, fiber.StatusInternalServerError, "failed to load record")
	}
	if !found {
		return apiError(c, fiber.StatusNotFound, "record not found for this date")
	}
	return c.JSON(toRecordView(record))
}

func (handler *Handler) CreateRecord(c *fiber.Ctx) error {
	userID, ok := currentUserID(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}

	payload := recordCreatePayload{}
	if err := c.BodyParser(&payload); err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid payload")
	}

	day, err := dateutil.ParseDay(payload.Date, handler.location)
	if err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid date")
	}
	if err := services.ValidateNotFuture(day, handler.today()); err != nil {
		return apiError(c, fiber.StatusBadRequest, "date cannot be in the future")
	}
	for _, score := range []int{payload.SkinCondition, payload.Sleep, payload.Stress, payload.SkincareEffort} {
		if !models.ValidScore(score) {
			return apiError(c, fiber.StatusBadRequest, "scores must be between 1 and 5")
		}
	}
	if payload.Memo != nil && len(*payload.Memo) > models.MemoMaxLength {
		return apiError(c, fiber.StatusBadRequest, "memo is too long")
	}
	if !prefCodeRegex.MatchString(payload.EnvPrefCode) {
		return apiError(c, fiber.StatusBadRequest, "invalid prefecture code")
	}

	_, exists, err := handler.repos.Records.FindByUserAndDate(userID, day)
	if err != nil {
		handler.log.Error("record lookup failed", zap.Error(err))
		return apiError(c, fiber.StatusInternalServerError, "failed to load record")
	}
	if exists {
		return apiError(c, fiber.StatusConflict, "record already exists for this date")
	}

	record := models.DailyRecord{
		UserID:             userID,
		Date:               day,
		SkinCondition:      payload.SkinCondition,
		Sleep:              payload.Sleep,
		Stress:             payload.Stress,
		SkincareEffort:     payload.SkincareEffort,
		MenstruationStatus: payload.MenstruationStatus,
		WaterIntake:        payload.WaterIntake,
		EnvPrefCode:        payload.EnvPrefCode,
	}
	if payload.Memo != nil {
		record.Memo = *payload.Memo
	}
	if err := handler.repos.Records.Create(&record); err != nil {
		handler.log.Error("record create failed", zap.Error(err))
		return apiError(c, fiber.StatusInternalServerError, "failed to create record")
	}

	return c.Status(fiber.StatusCreated).JSON(toRecordView(record))
}

// UpdateRecord overwrites only the provided fields; the date itself is
// immutable.
func (handler *Handler) UpdateRecord(c *fiber.Ctx) error {
	userID, ok := currentUserID(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}

	day, err := dateutil.ParseDay(c.Params("date"), handler.location)
	if err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid date")
	}
	if err := services.ValidateNotFuture(day, handler.today()); err != nil {
		return apiError(c, fiber.StatusBadRequest, "date cannot be in the future")
	}

	record, found, err := handler.repos.Records.FindByUserAndDate(userID, day)
	if err != nil {
		handler.log.Error("record lookup failed", zap.Error(err))
		return apiError(c, fiber.StatusInternalServerError, "failed to load record")
	}
	if !found {
		return apiError(c, fiber.StatusNotFound, "record not found for this date")
	}

	payload := recordUpdatePayload{}
	if err := c.BodyParser(&payload); err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid payload")
	}
	if payload.empty() {
		return apiError(c, fiber.StatusBadRequest, "no fields provided for update")
	}

	if payload.SkinCondition != nil {
		record.SkinCondition = *payload.SkinCondition
	}
	if payload.Sleep != nil {
		record.Sleep = *payload.Sleep
	}
	if payload.Stress != nil {
		record.Stress = *payload.Stress
	}
	if payload.SkincareEffort != nil {
		record.SkincareEffort = *payload.SkincareEffort
	}
	if payload.MenstruationStatus != nil {
		record.MenstruationStatus = *payload.MenstruationStatus
	}
	if payload.WaterIntake != nil {
		record.WaterIntake = payload.WaterIntake
	}
	if payload.Memo != nil {
		if len(*payload.Memo) > models.MemoMaxLength {
			return apiError(c, fiber.StatusBadRequest, "memo is too long")
		}
		record.Memo = *payload.Memo
	}
	if payload.EnvPrefCode != nil {
		if !prefCodeRegex.MatchString(*payload.EnvPrefCode) {
			return apiError(c, fiber.StatusBadRequest, "invalid prefecture code")
		}
		record.EnvPrefCode = *payload.EnvPrefCode
	}

	for _, score := range []int{record.SkinCondition, record.Sleep, record.Stress, record.SkincareEffort} {
		if !models.ValidScore(score) {
			return apiError(c, fiber.StatusBadRequest, "scores must be between 1 and 5")
		}
	}

	if err := handler.repos.Records.Save(&record); err != nil {
		handler.log.Error("record update failed", zap.Error(err))
		return apiError(c, fiber.StatusInternalServerError, "failed to update record")
	}

	return c.JSON(toRecordView(record))
}

func (handler *Handler) DeleteRecord(c *fiber.Ctx) error {
	userID, ok := currentUserID(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}

	day, err := dateutil.ParseDay(c.Params("date"), handler.location)
	if err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid date")
	}
	if err := services.ValidateNotFuture(day, handler.today()); err != nil {
		return apiError(c, fiber.StatusBadRequest, "date cannot be in the future")
	}

	_, found, err := handler.repos.Records.FindByUserAndDate(userID, day)
	if err != nil {
		handler.log.Error("record lookup failed", zap.Error(err))
		return apiError(c, fiber.StatusInternalServerError, "failed to load record")
	}
	if !found {
		return apiError(c, fiber.StatusNotFound, "record not found for this date")
	}

	if err := handler.repos.Records.DeleteByUserAndDate(userID, day); err != nil {
		handler.log.Error("record delete failed", zap.Error(err))
		return apiError(c, fiber.StatusInternalServerError, "failed to delete record")
	}
	return c.SendStatus(fiber.StatusNoContent)
}
