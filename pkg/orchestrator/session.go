package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/goliatone/go-formreader/internal/log"
	"github.com/goliatone/go-formreader/pkg/engine"
	"github.com/goliatone/go-formreader/pkg/locale"
	"github.com/goliatone/go-formreader/pkg/workflow"
)

type menuChoice int

const (
	choiceSubmit menuChoice = iota
	choiceEdit
	choiceReset
	choiceQuit
)

// Run drives the session until the operator quits or aborts. A non-empty
// eventID is applied first instead of showing the form list. Store and form
// problems are reported and the loop carries on; only prompt failures end
// the session with an error.
func (o *Orchestrator) Run(ctx context.Context, eventID string) error {
	err := o.run(ctx, strings.TrimSpace(eventID))
	if errors.Is(err, engine.ErrAborted) {
		return nil
	}
	return err
}

func (o *Orchestrator) run(ctx context.Context, preset string) error {
	if err := o.driver.Info(ctx, o.t("app.title", "Form Reader")); err != nil {
		return err
	}
	_ = o.driver.Info(ctx, o.t("app.subtitle", ""))
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		switch o.workflow.State() {
		case workflow.StateEntryPending:
			id := preset
			preset = ""
			if id == "" {
				picked, quit, err := o.chooseForm(ctx)
				if err != nil {
					return err
				}
				if quit {
					return nil
				}
				id = picked
			}
			if err := o.workflow.Apply(ctx, id); err != nil {
				o.warn(ctx, err)
				continue
			}
			_ = o.driver.Info(ctx, o.t("form.heading", "Form: %s", id))

		case workflow.StateFormLoaded:
			if err := o.workflow.Collect(ctx); err != nil {
				if !o.recoverable(err) {
					return err
				}
				o.warn(ctx, err)
			}
			if quit, err := o.actions(ctx); err != nil || quit {
				return err
			}
		}
	}
}

// actions loops on the action menu until the form is submitted, reset or
// needs another collection pass.
func (o *Orchestrator) actions(ctx context.Context) (bool, error) {
	labels := []string{
		o.t("action.submit", "Submit"),
		o.t("action.edit", "Edit answers"),
		o.t("action.reset", "Reset form"),
		o.t("action.quit", "Quit"),
	}
	for {
		idx, err := o.driver.Select(ctx, engine.SelectConfig{
			Message: o.t("action.prompt", "What would you like to do?"),
			Options: labels,
		})
		if err != nil {
			return false, err
		}
		switch menuChoice(idx) {
		case choiceSubmit:
			questions := o.workflow.View().Questions
			sub, err := o.workflow.Submit(ctx)
			if err != nil {
				o.warn(ctx, err)
				continue
			}
			_ = o.driver.Info(ctx, o.t("submit.success", "Submitted"))
			if text, rerr := o.receipt.Render(sub, questions, o.translator, o.locale); rerr != nil {
				log.Warnf("orchestrator: receipt: %v", rerr)
			} else {
				_ = o.driver.Info(ctx, strings.TrimRight(text, "\n"))
			}
			return false, nil
		case choiceEdit:
			return false, nil
		case choiceReset:
			o.workflow.Reset()
			return false, nil
		case choiceQuit:
			return true, nil
		default:
			return false, fmt.Errorf("orchestrator: unknown action %d", idx)
		}
	}
}

// chooseForm lists the published forms plus manual entry and quit. When the
// listing fails the operator can still type an identifier.
func (o *Orchestrator) chooseForm(ctx context.Context) (string, bool, error) {
	summaries, err := o.catalog.Forms(ctx)
	if err != nil {
		o.warn(ctx, err)
		summaries = nil
	} else if len(summaries) == 0 {
		_ = o.driver.Info(ctx, o.t("form.none", "No forms"))
	}

	options := make([]string, 0, len(summaries)+2)
	for _, s := range summaries {
		options = append(options, s.Title)
	}
	manual := len(options)
	options = append(options, o.t("form.manual_entry", "Enter an identifier"), o.t("action.quit", "Quit"))

	idx, err := o.driver.Select(ctx, engine.SelectConfig{
		Message: o.t("form.select", "Choose a form"),
		Options: options,
	})
	if err != nil {
		return "", false, err
	}
	switch {
	case idx >= 0 && idx < manual:
		return summaries[idx].EventID, false, nil
	case idx == manual:
		id, err := o.driver.Input(ctx, engine.InputConfig{Message: o.t("form.enter_id", "Event identifier:")})
		if err != nil {
			return "", false, err
		}
		return strings.TrimSpace(id), false, nil
	default:
		return "", true, nil
	}
}

func (o *Orchestrator) recoverable(err error) bool {
	return locale.MessageKey(err) != "error.unknown"
}

func (o *Orchestrator) warn(ctx context.Context, err error) {
	log.Debugf("orchestrator: %v", err)
	_ = o.driver.Warn(ctx, locale.Describe(o.translator, o.locale, err))
}

func (o *Orchestrator) t(key, fallback string, args ...any) string {
	return locale.T(o.translator, o.locale, key, fallback, args...)
}
