package main

import (
	"context"
	"fmt"
	"os"

	"github.com/jonathan/staffing-engine/internal/gateway"
	"github.com/jonathan/staffing-engine/internal/schemas"
)

// openGateway builds the persistence gateway for a command invocation. A
// fixture path selects the in-memory backend; otherwise DATABASE_URL must
// point at a PostgreSQL instance.
func openGateway(ctx context.Context, fixturePath string) (gateway.Gateway, func(), error) {
	if fixturePath != "" {
		content, err := os.ReadFile(fixturePath)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to read fixture file %s: %w", fixturePath, err)
		}

		schemaPath := schemas.ResolveSchemaPath("schemas/fixture_bundle.schema.json")
		if schemaPath != "" {
			if err := schemas.ValidateDocument(schemaPath, content); err != nil {
				return nil, nil, fmt.Errorf("fixture validation failed: %w", err)
			}
		}

		fixture, err := gateway.LoadFixture(fixturePath)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to load fixture: %w", err)
		}
		gw, err := gateway.NewMemoryFromFixture(fixture)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to build in-memory gateway: %w", err)
		}
		return gw, func() {}, nil
	}

	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		return nil, nil, fmt.Errorf("no fixture provided and DATABASE_URL is not set")
	}

	pg, err := gateway.Connect(ctx, databaseURL)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return pg, pg.Close, nil
}
