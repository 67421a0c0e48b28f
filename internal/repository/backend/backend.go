// Package backend opens the repository.Store selected by a database URL.
package backend

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/todoapi/todoapi/internal/config"
	"github.com/todoapi/todoapi/internal/repository"
	"github.com/todoapi/todoapi/internal/repository/memory"
	"github.com/todoapi/todoapi/internal/repository/mongodb"
)

// Open connects to the backend named by the scheme of databaseURL.
// dbName is only used by MongoDB.
func Open(ctx context.Context, databaseURL, dbName string) (repository.Store, error) {
	u, err := url.Parse(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}

	switch strings.ToLower(u.Scheme) {
	case config.SchemePostgres, config.SchemePostgresQL:
		repo, err := repository.New(ctx, databaseURL)
		if err != nil {
			return nil, err
		}
		return repo, nil
	case config.SchemeMongo, config.SchemeMongoSRV:
		store, err := mongodb.New(ctx, databaseURL, dbName)
		if err != nil {
			return nil, err
		}
		return store, nil
	case config.SchemeMemory:
		return memory.New(), nil
	default:
		return nil, fmt.Errorf("unsupported database scheme %q", u.Scheme)
	}
}
