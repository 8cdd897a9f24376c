package client

import (
	"context"
	"sync"
)

// Edit is one optimistic mutation. Apply changes local state immediately
// and returns the rollback that restores the captured previous values
// verbatim. Send issues the external request. Confirm replaces the
// optimistic state with a fresh fetch after success, so server-side
// normalization is absorbed instead of trusted-by-omission.
type Edit struct {
	Entity  string
	Apply   func() (rollback func())
	Send    func(ctx context.Context) error
	Confirm func(ctx context.Context) error
}

// EditController serializes mutations per entity. While an edit is in
// flight, another edit on the same entity returns ErrEditInFlight; edits
// on other entities proceed.
type EditController struct {
	mu       sync.Mutex
	inFlight map[string]bool
}

func NewEditController() *EditController {
	return &EditController{inFlight: make(map[string]bool)}
}

// InFlight reports whether the entity has an outstanding edit; the UI uses
// it to disable the triggering control.
func (controller *EditController) InFlight(entity string) bool {
	controller.mu.Lock()
	defer controller.mu.Unlock()
	return controller.inFlight[entity]
}

func (controller *EditController) Do(ctx context.Context, edit Edit) error {
	if !controller.begin(edit.Entity) {
		return ErrEditInFlight
	}
	defer controller.finish(edit.Entity)

	var rollback func()
	if edit.Apply != nil {
		rollback = edit.Apply()
	}

	if err := edit.Send(ctx); err != nil {
		if rollback != nil {
			rollback()
		}
		return err
	}

	if edit.Confirm != nil {
		return edit.Confirm(ctx)
	}
	return nil
}

func (controller *EditController) begin(entity string) bool {
	controller.mu.Lock()
	defer controller.mu.Unlock()
	if controller.inFlight[entity] {
		return false
	}
	controller.inFlight[entity] = true
	return true
}

func (controller *EditController) finish(entity string) {
	controller.mu.Lock()
	defer controller.mu.Unlock()
	delete(controller.inFlight, entity)
}
