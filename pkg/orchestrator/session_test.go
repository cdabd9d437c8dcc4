package orchestrator_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formreader/pkg/engine"
	"github.com/goliatone/go-formreader/pkg/locale"
	"github.com/goliatone/go-formreader/pkg/orchestrator"
	"github.com/goliatone/go-formreader/pkg/store"
	"github.com/goliatone/go-formreader/pkg/testsupport"
	"github.com/goliatone/go-formreader/pkg/workflow"
)

func newOrchestrator(t *testing.T, ms *testsupport.MemoryStore, driver engine.PromptDriver) *orchestrator.Orchestrator {
	t.Helper()
	o, err := orchestrator.New(ms,
		orchestrator.WithPromptDriver(driver),
		orchestrator.WithTranslator(locale.MustDefault(), "en"),
		orchestrator.WithIDGenerator(func() string { return "sub-1" }),
		orchestrator.WithClock(func() time.Time { return time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC) }),
	)
	if err != nil {
		t.Fatalf("new orchestrator: %v", err)
	}
	return o
}

func contains(items []string, want string) bool {
	for _, item := range items {
		if strings.Contains(item, want) {
			return true
		}
	}
	return false
}

func TestRun_FillRetryAndSubmit(t *testing.T) {
	ms := testsupport.NewMemoryStore().SeedQuestions(testsupport.RegistrationForm()...)
	driver := &testsupport.ScriptedDriver{
		// pick form, submit (gate fails), edit, submit, quit from the form list
		Selects: []int{0, 0, 1, 0, 2},
		Inputs:  []string{"", "", "Ada", ""},
	}
	o := newOrchestrator(t, ms, driver)

	if err := o.Run(context.Background(), ""); err != nil {
		t.Fatalf("run: %v", err)
	}
	if !driver.Consumed() {
		t.Fatalf("script not fully consumed")
	}

	want := []store.Record{
		{store.FieldRegistrationFormID: 1, store.FieldUserID: "sub-1", store.FieldAnswer: "Ada"},
	}
	if diff := cmp.Diff(want, ms.Records(store.DefaultAnswersTable)); diff != "" {
		t.Fatalf("records mismatch (-want +got):\n%s", diff)
	}
	for _, w := range []string{"This field is required!", "Please fill in all required fields!"} {
		if !contains(driver.Warnings, w) {
			t.Fatalf("expected warning %q, got %v", w, driver.Warnings)
		}
	}
	for _, m := range []string{"Form: 22", "Form submitted successfully!", "Submission summary", "Name: Ada"} {
		if !contains(driver.Messages, m) {
			t.Fatalf("expected message %q, got %v", m, driver.Messages)
		}
	}
	if got := o.Workflow().State(); got != workflow.StateEntryPending {
		t.Fatalf("expected entry_pending, got %s", got)
	}
}

func TestRun_UnknownPresetFallsBackToList(t *testing.T) {
	ms := testsupport.NewMemoryStore().SeedQuestions(testsupport.RegistrationForm()...)
	driver := &testsupport.ScriptedDriver{Selects: []int{2}}
	o := newOrchestrator(t, ms, driver)

	if err := o.Run(context.Background(), "999"); err != nil {
		t.Fatalf("run: %v", err)
	}
	if diff := cmp.Diff([]string{"Form not found."}, driver.Warnings); diff != "" {
		t.Fatalf("warnings mismatch (-want +got):\n%s", diff)
	}
	if ms.Creates != 0 {
		t.Fatalf("expected no writes")
	}
}

func TestRun_StoreDownOffersManualEntry(t *testing.T) {
	ms := testsupport.NewMemoryStore().SeedQuestions(testsupport.RegistrationForm()...)
	ms.FailReads(nil)
	driver := &testsupport.ScriptedDriver{
		Selects: []int{0, 1},
		Inputs:  []string{"22"},
	}
	o := newOrchestrator(t, ms, driver)

	if err := o.Run(context.Background(), ""); err != nil {
		t.Fatalf("run: %v", err)
	}
	if !driver.Consumed() {
		t.Fatalf("script not fully consumed")
	}
	storeDown := 0
	for _, w := range driver.Warnings {
		if w == "The data store could not be reached." {
			storeDown++
		}
	}
	// listing fails twice and the manual apply once
	if storeDown != 3 {
		t.Fatalf("expected 3 store warnings, got %v", driver.Warnings)
	}
}

func TestRun_ResetReturnsToList(t *testing.T) {
	ms := testsupport.NewMemoryStore().SeedQuestions(testsupport.RegistrationForm()...)
	driver := &testsupport.ScriptedDriver{
		// reset from the action menu, then quit from the form list
		Selects: []int{2, 2},
		Inputs:  []string{"Ada", "41"},
	}
	o := newOrchestrator(t, ms, driver)

	if err := o.Run(context.Background(), "22"); err != nil {
		t.Fatalf("run: %v", err)
	}
	if !driver.Consumed() {
		t.Fatalf("script not fully consumed")
	}
	if ms.Creates != 0 {
		t.Fatalf("reset must not write, got %d creates", ms.Creates)
	}
}

type abortingDriver struct {
	testsupport.ScriptedDriver
}

func (d *abortingDriver) Select(context.Context, engine.SelectConfig) (int, error) {
	return -1, engine.ErrAborted
}

func TestRun_AbortEndsQuietly(t *testing.T) {
	ms := testsupport.NewMemoryStore().SeedQuestions(testsupport.RegistrationForm()...)
	o := newOrchestrator(t, ms, &abortingDriver{})

	if err := o.Run(context.Background(), ""); err != nil {
		t.Fatalf("expected nil on abort, got %v", err)
	}
}

func TestRun_DriverFailureIsReturned(t *testing.T) {
	ms := testsupport.NewMemoryStore().SeedQuestions(testsupport.RegistrationForm()...)
	o := newOrchestrator(t, ms, &testsupport.ScriptedDriver{})

	if err := o.Run(context.Background(), ""); !errors.Is(err, testsupport.ErrScriptExhausted) {
		t.Fatalf("expected script exhaustion, got %v", err)
	}
}

func TestNew_RequiresStore(t *testing.T) {
	if _, err := orchestrator.New(nil); err == nil {
		t.Fatalf("expected error for nil store")
	}
}
