package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"budgetwise/internal/core"
	"budgetwise/internal/ports"
)

// ProfileService manages budgets, settings and whole-profile snapshots.
type ProfileService struct {
	store    ports.Store
	now      func() time.Time
	onChange func()
}

func NewProfileService(store ports.Store, now func() time.Time, onChange func()) *ProfileService {
	if now == nil {
		now = time.Now
	}
	return &ProfileService{store: store, now: now, onChange: onChange}
}

func (s *ProfileService) Budgets(ctx context.Context) (core.BudgetConfig, error) {
	b, err := s.store.GetBudgets(ctx)
	if err != nil {
		return nil, fmt.Errorf("get budgets: %w", err)
	}
	return b, nil
}

// SaveBudgets replaces the whole budget map.
func (s *ProfileService) SaveBudgets(ctx context.Context, b core.BudgetConfig) error {
	if b == nil {
		b = core.BudgetConfig{}
	}
	if err := b.Validate(); err != nil {
		return err
	}
	if err := s.store.SaveBudgets(ctx, b); err != nil {
		return fmt.Errorf("save budgets: %w", err)
	}
	slog.InfoContext(ctx, "Budgets saved", "count", len(b), "total_cents", b.Total().Cents)
	s.changed()
	return nil
}

func (s *ProfileService) Settings(ctx context.Context) (core.Settings, error) {
	st, err := s.store.GetSettings(ctx)
	if err != nil {
		return core.Settings{}, fmt.Errorf("get settings: %w", err)
	}
	return st, nil
}

// SaveSettings stores st; an empty currency falls back to the default one.
func (s *ProfileService) SaveSettings(ctx context.Context, st core.Settings) error {
	st.Currency = strings.ToUpper(strings.TrimSpace(st.Currency))
	if st.Currency == "" {
		st.Currency = core.DefaultSettings().Currency
	}
	if err := s.store.SaveSettings(ctx, st); err != nil {
		return fmt.Errorf("save settings: %w", err)
	}
	s.changed()
	return nil
}

// Export returns the whole profile stamped with the current time.
func (s *ProfileService) Export(ctx context.Context) (core.Snapshot, error) {
	snap, err := s.store.Export(ctx)
	if err != nil {
		return core.Snapshot{}, fmt.Errorf("export: %w", err)
	}
	snap.ExportedAt = s.now().UTC()
	slog.InfoContext(ctx, "Profile exported", "transactions", len(snap.Transactions))
	return snap, nil
}

// ImportSnapshot replaces the parts of the profile present in snap.
func (s *ProfileService) ImportSnapshot(ctx context.Context, snap core.Snapshot) error {
	if err := s.store.Import(ctx, snap); err != nil {
		return fmt.Errorf("import snapshot: %w", err)
	}
	s.changed()
	return nil
}

// Clear drops every transaction and restores default budgets and settings.
func (s *ProfileService) Clear(ctx context.Context) error {
	if err := s.store.Clear(ctx); err != nil {
		return fmt.Errorf("clear profile: %w", err)
	}
	slog.WarnContext(ctx, "Profile cleared")
	s.changed()
	return nil
}

func (s *ProfileService) changed() {
	if s.onChange != nil {
		s.onChange()
	}
}
