//go:build mage

// Package main provides build targets for the chartstore project using Mage.
//
// Usage:
//
//	mage build            Compile the binder binary to bin/
//	mage test:all         Run all tests (unit + integration)
//	mage test:unit        Run only unit tests (exclude tests/)
//	mage test:integration Build first, then run only integration tests
//	mage lint             Run golangci-lint
//	mage clean            Remove build artifacts
//	mage install          Install binder to GOPATH/bin
//	mage stats            Print Go LOC and documentation word counts
package main
