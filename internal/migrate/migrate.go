package migrate

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/mesh-intelligence/chartstore/internal/engine"
)

// Migration is one versioned step. Up moves the store forward, Down
// reverses it. Versions are dot-separated numerics compared left to
// right.
type Migration struct {
	Version string
	Name    string
	Up      func(ctx context.Context, eng *engine.Engine) error
	Down    func(ctx context.Context, eng *engine.Engine) error
}

// Runner walks a migration list against the version recorded in metadata.
type Runner struct {
	engine     *engine.Engine
	migrations []Migration
	logger     *zap.SugaredLogger
}

// New builds a runner. With no explicit migrations the built-in list is
// used.
func New(eng *engine.Engine, logger *zap.SugaredLogger, migrations ...Migration) *Runner {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	if len(migrations) == 0 {
		migrations = Builtin()
	}
	sorted := append([]Migration(nil), migrations...)
	sort.Slice(sorted, func(i, j int) bool {
		return CompareVersions(sorted[i].Version, sorted[j].Version) < 0
	})
	return &Runner{engine: eng, migrations: sorted, logger: logger}
}

// Run applies every migration above the stored LastMigration, in version
// order, persisting the version after each step. The first failure aborts
// the run; LastMigration then names the last migration that succeeded.
// Returns how many migrations were applied.
func (r *Runner) Run(ctx context.Context) (int, error) {
	md, err := r.engine.Metadata(ctx)
	if err != nil {
		return 0, err
	}
	last := md.LastMigration

	applied := 0
	for _, m := range r.migrations {
		if CompareVersions(m.Version, last) <= 0 {
			continue
		}
		if err := m.Up(ctx, r.engine); err != nil {
			return applied, fmt.Errorf("migration %s (%s): %w", m.Version, m.Name, err)
		}
		if err := r.engine.SetLastMigration(ctx, m.Version); err != nil {
			return applied, err
		}
		r.logger.Infow("applied migration", "version", m.Version, "name", m.Name)
		last = m.Version
		applied++
	}
	return applied, nil
}

// Rollback runs Down, newest first, for every applied migration above
// target, persisting the receding version after each step so an aborted
// rollback leaves metadata accurate. Rolling back to a version at or above
// the current one is a no-op. Returns how many migrations were reverted.
func (r *Runner) Rollback(ctx context.Context, target string) (int, error) {
	md, err := r.engine.Metadata(ctx)
	if err != nil {
		return 0, err
	}
	current := md.LastMigration
	if CompareVersions(target, current) >= 0 {
		return 0, nil
	}

	var window []Migration
	for _, m := range r.migrations {
		if CompareVersions(m.Version, target) > 0 && CompareVersions(m.Version, current) <= 0 {
			window = append(window, m)
		}
	}

	reverted := 0
	for i := len(window) - 1; i >= 0; i-- {
		m := window[i]
		if m.Down == nil {
			return reverted, fmt.Errorf("migration %s (%s) has no down step", m.Version, m.Name)
		}
		if err := m.Down(ctx, r.engine); err != nil {
			return reverted, fmt.Errorf("rollback %s (%s): %w", m.Version, m.Name, err)
		}
		at := target
		if i > 0 {
			at = window[i-1].Version
		}
		if err := r.engine.SetLastMigration(ctx, at); err != nil {
			return reverted, err
		}
		r.logger.Infow("rolled back migration", "version", m.Version, "name", m.Name, "now", at)
		reverted++
	}
	return reverted, nil
}

// CompareVersions orders two dot-separated numeric versions. Missing
// segments count as zero, so "1.2" and "1.2.0" are equal. Returns -1, 0,
// or 1.
func CompareVersions(a, b string) int {
	as := strings.Split(a, ".")
	bs := strings.Split(b, ".")
	for i := 0; i < len(as) || i < len(bs); i++ {
		var av, bv int
		if i < len(as) {
			av, _ = strconv.Atoi(as[i])
		}
		if i < len(bs) {
			bv, _ = strconv.Atoi(bs[i])
		}
		switch {
		case av < bv:
			return -1
		case av > bv:
			return 1
		}
	}
	return 0
}
