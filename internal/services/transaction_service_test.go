package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"budgetwise/internal/amqp"
	"budgetwise/internal/core"
	"budgetwise/internal/importer"
	"budgetwise/internal/storage/memory"
)

type publishedEvent struct {
	kind amqp.EventKind
	id   string
}

type fakePublisher struct {
	mu     sync.Mutex
	events []publishedEvent
	err    error
}

func (f *fakePublisher) PublishTransactionEvent(_ context.Context, kind amqp.EventKind, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, publishedEvent{kind, id})
	return f.err
}

var fixedNow = time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC)

func sequentialIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("tx-%d", n)
	}
}

func newTestService(pub EventPublisher, hook func()) (*TransactionService, *memory.Store) {
	store := memory.New()
	svc := NewTransactionService(store, pub,
		WithClock(func() time.Time { return fixedNow }),
		WithIDGenerator(sequentialIDs()),
		WithChangeHook(hook))
	return svc, store
}

func expenseOn(dollars int64, description string, d core.Date) core.Transaction {
	return core.Transaction{
		Type:        core.Expense,
		Amount:      core.Cents(dollars * 100),
		Description: description,
		Date:        d,
	}
}

func TestCreateAssignsIDAndCategory(t *testing.T) {
	pub := &fakePublisher{}
	changes := 0
	svc, store := newTestService(pub, func() { changes++ })

	got, err := svc.Create(context.Background(), expenseOn(12, "  Starbucks latte ", core.NewDate(2024, 3, 14)))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if got.ID != "tx-1" || !got.CreatedAt.Equal(fixedNow) {
		t.Fatalf("id/created = %q %v", got.ID, got.CreatedAt)
	}
	if got.Category != core.CategoryFood {
		t.Fatalf("category = %q, want food", got.Category)
	}
	if got.Description != "Starbucks latte" {
		t.Fatalf("description not normalized: %q", got.Description)
	}
	if _, err := store.GetTransaction(context.Background(), "tx-1"); err != nil {
		t.Fatalf("not stored: %v", err)
	}
	if len(pub.events) != 1 || pub.events[0] != (publishedEvent{amqp.TransactionCreated, "tx-1"}) {
		t.Fatalf("events = %+v", pub.events)
	}
	if changes != 1 {
		t.Fatalf("change hook ran %d times", changes)
	}
}

func TestCreateKeepsExplicitCategory(t *testing.T) {
	svc, _ := newTestService(nil, nil)
	in := expenseOn(5, "Starbucks", core.NewDate(2024, 3, 1))
	in.Category = core.CategoryGift
	got, err := svc.Create(context.Background(), in)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if got.Category != core.CategoryGift {
		t.Fatalf("category = %q", got.Category)
	}
}

func TestCreateRejectsInvalid(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*core.Transaction)
		want   error
	}{
		{"zero amount", func(tx *core.Transaction) { tx.Amount = core.Money{} }, core.ErrInvalidAmount},
		{"bad type", func(tx *core.Transaction) { tx.Type = "transfer" }, core.ErrInvalidType},
		{"no date", func(tx *core.Transaction) { tx.Date = core.Date{} }, core.ErrInvalidDate},
		{"long description", func(tx *core.Transaction) { tx.Description = strings.Repeat("x", 201) }, core.ErrDescriptionTooLong},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pub := &fakePublisher{}
			svc, store := newTestService(pub, nil)
			in := expenseOn(10, "lunch", core.NewDate(2024, 3, 1))
			tt.modify(&in)

			_, err := svc.Create(context.Background(), in)
			if !errors.Is(err, tt.want) {
				t.Fatalf("err = %v, want %v", err, tt.want)
			}
			if !IsValidationError(err) {
				t.Fatalf("IsValidationError(%v) = false", err)
			}
			if list, _ := store.ListTransactions(context.Background()); len(list) != 0 {
				t.Fatalf("invalid transaction stored")
			}
			if len(pub.events) != 0 {
				t.Fatalf("event published for rejected transaction")
			}
		})
	}
}

func TestCreateSurvivesPublishFailure(t *testing.T) {
	pub := &fakePublisher{err: errors.New("broker down")}
	svc, _ := newTestService(pub, nil)
	if _, err := svc.Create(context.Background(), expenseOn(3, "bus", core.NewDate(2024, 3, 2))); err != nil {
		t.Fatalf("publish failure must not fail create: %v", err)
	}
}

func TestImportIsAllOrNothing(t *testing.T) {
	pub := &fakePublisher{}
	svc, store := newTestService(pub, nil)
	ctx := context.Background()

	bad := expenseOn(0, "broken", core.NewDate(2024, 3, 3))
	_, err := svc.Import(ctx, []core.Transaction{expenseOn(1, "a", core.NewDate(2024, 3, 1)), bad})
	if !errors.Is(err, core.ErrInvalidAmount) {
		t.Fatalf("err = %v", err)
	}
	if list, _ := store.ListTransactions(ctx); len(list) != 0 {
		t.Fatalf("partial batch stored")
	}

	stored, err := svc.Import(ctx, []core.Transaction{
		expenseOn(1, "uber ride", core.NewDate(2024, 3, 1)),
		expenseOn(2, "netflix", core.NewDate(2024, 3, 2)),
	})
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if len(stored) != 2 || stored[0].Category != core.CategoryTransport || stored[1].Category != core.CategoryEntertainment {
		t.Fatalf("stored = %+v", stored)
	}
	if len(pub.events) != 2 {
		t.Fatalf("events = %+v", pub.events)
	}
}

func TestImportCSV(t *testing.T) {
	svc, store := newTestService(nil, nil)
	csv := "Date,Description,Amount\n" +
		"03/01/2024,Walmart,-45.10\n" +
		"03/02/2024,Payroll,2000\n" +
		"not a date,Broken,-1\n"

	res, err := svc.ImportCSV(context.Background(), strings.NewReader(csv))
	if err != nil {
		t.Fatalf("import csv: %v", err)
	}
	if len(res.Transactions) != 2 || len(res.Errors) != 1 || res.Errors[0].Line != 4 {
		t.Fatalf("result = %+v", res)
	}
	list, _ := store.ListTransactions(context.Background())
	if len(list) != 2 || list[0].ID == "" {
		t.Fatalf("stored = %+v", list)
	}
}

func TestImportCSVKeepsRowErrorsWhenNothingConverts(t *testing.T) {
	svc, store := newTestService(nil, nil)
	csv := "Date,Description,Amount\n" +
		"not a date,Broken,-1\n" +
		"03/02/2024,Zero,0\n"

	res, err := svc.ImportCSV(context.Background(), strings.NewReader(csv))
	if !errors.Is(err, importer.ErrNoRows) {
		t.Fatalf("err = %v, want ErrNoRows", err)
	}
	if len(res.Transactions) != 0 || len(res.Errors) != 2 || res.Errors[0].Line != 2 || res.Errors[1].Line != 3 {
		t.Fatalf("result = %+v", res)
	}
	if list, _ := store.ListTransactions(context.Background()); len(list) != 0 {
		t.Fatalf("stored = %+v", list)
	}
}

func TestListFiltersByPeriodAndCategory(t *testing.T) {
	svc, _ := newTestService(nil, nil)
	ctx := context.Background()
	_, err := svc.Import(ctx, []core.Transaction{
		expenseOn(1, "coffee", core.NewDate(2024, 3, 15)),
		expenseOn(2, "uber", core.NewDate(2024, 3, 10)),
		expenseOn(3, "cafe", core.NewDate(2024, 1, 5)),
	})
	if err != nil {
		t.Fatalf("import: %v", err)
	}

	tests := []struct {
		period   core.Period
		category string
		want     int
	}{
		{core.PeriodAll, "", 3},
		{core.PeriodMonth, "", 2},
		{core.PeriodToday, "", 1},
		{core.PeriodAll, core.CategoryFood, 2},
		{core.PeriodMonth, core.CategoryFood, 1},
		{core.PeriodYear, "all", 3},
	}
	for _, tt := range tests {
		list, err := svc.List(ctx, tt.period, tt.category)
		if err != nil {
			t.Fatalf("list: %v", err)
		}
		if len(list) != tt.want {
			t.Errorf("List(%s, %q) = %d, want %d", tt.period, tt.category, len(list), tt.want)
		}
	}
}

func TestDelete(t *testing.T) {
	pub := &fakePublisher{}
	svc, _ := newTestService(pub, nil)
	ctx := context.Background()
	created, _ := svc.Create(ctx, expenseOn(4, "pharmacy", core.NewDate(2024, 3, 4)))

	if err := svc.Delete(ctx, created.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := svc.Delete(ctx, created.ID); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("second delete err = %v", err)
	}
	if _, err := svc.Get(ctx, created.ID); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("get after delete err = %v", err)
	}
	last := pub.events[len(pub.events)-1]
	if last != (publishedEvent{amqp.TransactionDeleted, created.ID}) {
		t.Fatalf("last event = %+v", last)
	}
}
