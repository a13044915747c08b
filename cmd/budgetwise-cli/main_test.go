package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"budgetwise/internal/services"
	"budgetwise/internal/storage/memory"
)

func newTestApp() (*app, *bytes.Buffer) {
	store := memory.New()
	var out bytes.Buffer
	return &app{
		transactions: services.NewTransactionService(store, nil),
		profile:      services.NewProfileService(store, nil, nil),
		insights:     services.NewInsightService(store, nil, nil),
		out:          &out,
	}, &out
}

func TestImportReportExportRestore(t *testing.T) {
	ctx := context.Background()
	a, out := newTestApp()
	dir := t.TempDir()

	csvPath := filepath.Join(dir, "statement.csv")
	csv := "Date,Description,Amount\n2024-03-01,Uber,-12.00\n2024-03-02,Salary,900\nbad,row,1\n"
	if err := os.WriteFile(csvPath, []byte(csv), 0o644); err != nil {
		t.Fatalf("write csv: %v", err)
	}
	if err := a.run(ctx, "import", []string{csvPath}); err != nil {
		t.Fatalf("import: %v", err)
	}
	if !strings.Contains(out.String(), "Imported 2 transactions") || !strings.Contains(out.String(), "line 4") {
		t.Fatalf("import output:\n%s", out.String())
	}

	out.Reset()
	if err := a.run(ctx, "report", []string{"all"}); err != nil {
		t.Fatalf("report: %v", err)
	}
	if !strings.Contains(out.String(), "$888.00") || !strings.Contains(out.String(), "transport") {
		t.Fatalf("report output:\n%s", out.String())
	}

	snapPath := filepath.Join(dir, "snap.json")
	if err := a.run(ctx, "export", []string{snapPath}); err != nil {
		t.Fatalf("export: %v", err)
	}
	if err := a.run(ctx, "clear", nil); err == nil {
		t.Fatalf("clear without -yes must fail")
	}
	if err := a.run(ctx, "clear", []string{"-yes"}); err != nil {
		t.Fatalf("clear: %v", err)
	}
	out.Reset()
	if err := a.run(ctx, "restore", []string{snapPath}); err != nil {
		t.Fatalf("restore: %v", err)
	}
	if !strings.Contains(out.String(), "Restored 2 transactions") {
		t.Fatalf("restore output: %s", out.String())
	}
}

func TestRunRejectsBadArguments(t *testing.T) {
	ctx := context.Background()
	a, _ := newTestApp()
	tests := []struct {
		cmd  string
		args []string
	}{
		{"import", nil},
		{"restore", nil},
		{"trend", []string{"zero"}},
		{"launch", nil},
	}
	for _, tt := range tests {
		t.Run(tt.cmd, func(t *testing.T) {
			if err := a.run(ctx, tt.cmd, tt.args); err == nil {
				t.Fatalf("expected error")
			}
		})
	}
}

func TestTrendAndRecommendations(t *testing.T) {
	ctx := context.Background()
	a, out := newTestApp()
	if err := a.run(ctx, "trend", []string{"3"}); err != nil {
		t.Fatalf("trend: %v", err)
	}
	if lines := strings.Count(strings.TrimSpace(out.String()), "\n"); lines != 3 {
		t.Fatalf("trend output has %d data lines:\n%s", lines, out.String())
	}
	out.Reset()
	if err := a.run(ctx, "recommendations", nil); err != nil {
		t.Fatalf("recommendations: %v", err)
	}
	if !strings.Contains(out.String(), "[success]") {
		t.Fatalf("recommendations output:\n%s", out.String())
	}
}
