// Shared helpers for binder CLI commands.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/mesh-intelligence/chartstore/pkg/store"
	"github.com/mesh-intelligence/chartstore/pkg/types"
)

// validCollectionsStr lists the clinic collections for error messages.
var validCollectionsStr = strings.Join(types.StandardCollections, ", ")

// buildConfig assembles the store configuration from config.yaml plus the
// global flags. The data directory follows the flag > config > env > CWD
// precedence.
func buildConfig() (types.Config, error) {
	var cfg types.Config
	if cfgFile != nil {
		if err := cfgFile.Unmarshal(&cfg); err != nil {
			return types.Config{}, fmt.Errorf("parse config: %w", err)
		}
	}
	if cfg.Adapter == "" {
		cfg.Adapter = defaultAdapter
	}

	dataDir, err := resolveDataDir()
	if err != nil {
		return types.Config{}, fmt.Errorf("resolve data dir: %w", err)
	}
	cfg.DataDir = dataDir
	return cfg, nil
}

// openStore opens the configured store. The caller must defer Close.
func openStore(ctx context.Context) (*store.Store, error) {
	cfg, err := buildConfig()
	if err != nil {
		return nil, err
	}
	logger, err := buildLogger()
	if err != nil {
		return nil, err
	}
	st, err := store.Open(ctx, cfg, store.WithLogger(logger))
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	return st, nil
}

// buildLogger returns a development logger on stderr when --verbose is
// set, otherwise a no-op.
func buildLogger() (*zap.SugaredLogger, error) {
	if !flagVerbose {
		return zap.NewNop().Sugar(), nil
	}
	cfg := zap.NewDevelopmentConfig()
	cfg.OutputPaths = []string{"stderr"}
	logger, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}
	return logger.Sugar(), nil
}

// printJSON writes v to stdout as indented JSON.
func printJSON(v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal JSON: %w", err)
	}
	fmt.Println(string(out))
	return nil
}

// parseDocumentArg decodes a JSON object argument into a document.
func parseDocumentArg(raw string) (types.Document, error) {
	var doc types.Document
	if err := json.Unmarshal([]byte(raw), &doc); err != nil {
		return nil, fmt.Errorf("invalid JSON document: %w", err)
	}
	return doc, nil
}

// parseFilterArgs turns key=value arguments into an equality filter.
// Values parse as JSON when possible and fall back to plain strings, so
// status=draft and copay=25 both match what the store holds.
func parseFilterArgs(args []string) (map[string]any, error) {
	if len(args) == 0 {
		return nil, nil
	}
	filter := make(map[string]any, len(args))
	for _, arg := range args {
		key, value, ok := strings.Cut(arg, "=")
		if !ok {
			return nil, fmt.Errorf("invalid filter %q (expected key=value)", arg)
		}
		var parsed any
		if err := json.Unmarshal([]byte(value), &parsed); err != nil {
			parsed = value
		}
		filter[key] = parsed
	}
	return filter, nil
}
