package seed

import (
	"context"
	_ "embed"
	"fmt"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/mesh-intelligence/chartstore/internal/engine"
	"github.com/mesh-intelligence/chartstore/pkg/types"
)

//go:embed fixtures.yaml
var fixturesYAML []byte

// Fixtures decodes the embedded dataset, keyed by collection name.
func Fixtures() (map[string][]types.Document, error) {
	var out map[string][]types.Document
	if err := yaml.Unmarshal(fixturesYAML, &out); err != nil {
		return nil, fmt.Errorf("decode fixtures: %w", err)
	}
	return out, nil
}

// Seeder writes the starter dataset through the engine.
type Seeder struct {
	engine *engine.Engine
	logger *zap.SugaredLogger
}

func New(eng *engine.Engine, logger *zap.SugaredLogger) *Seeder {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Seeder{engine: eng, logger: logger}
}

// Seed loads the fixtures in dependency order, referenced collections
// first. A store that already holds patients is left alone unless force
// is set; a forced run clears the standard collections before reseeding.
// Returns the number of documents written.
func (s *Seeder) Seed(ctx context.Context, force bool) (int, error) {
	fixtures, err := Fixtures()
	if err != nil {
		return 0, err
	}

	existing, err := s.engine.Count(ctx, types.PatientsCollection)
	if err != nil {
		return 0, err
	}
	if existing > 0 {
		if !force {
			s.logger.Infow("seed skipped, store already populated", "patients", existing)
			return 0, nil
		}
		if err := s.clear(ctx); err != nil {
			return 0, err
		}
	}

	total := 0
	for _, col := range types.StandardCollections {
		docs := fixtures[col]
		if len(docs) == 0 {
			continue
		}
		created, err := s.engine.CreateMany(ctx, col, docs)
		if err != nil {
			return total, fmt.Errorf("seed %s: %w", col, err)
		}
		total += len(created)
		s.logger.Infow("seeded collection", "collection", col, "count", len(created))
	}

	if _, err := s.engine.UpdateStatistics(ctx); err != nil {
		return total, err
	}
	return total, nil
}

// clear empties the standard collections, referencing collections first.
func (s *Seeder) clear(ctx context.Context) error {
	for i := len(types.StandardCollections) - 1; i >= 0; i-- {
		col := types.StandardCollections[i]
		docs, err := s.engine.GetAll(ctx, col)
		if err != nil {
			return err
		}
		if len(docs) == 0 {
			continue
		}
		ids := make([]string, 0, len(docs))
		for _, d := range docs {
			ids = append(ids, d.ID())
		}
		if _, err := s.engine.DeleteMany(ctx, col, ids); err != nil {
			return fmt.Errorf("clear %s: %w", col, err)
		}
		s.logger.Infow("cleared collection", "collection", col, "count", len(ids))
	}
	return nil
}
