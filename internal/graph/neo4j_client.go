package graph

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

// Client wraps the Neo4j driver with error handling and query helpers.
// The connection is an exclusively-owned resource for the duration of a
// load; the caller owns the lifecycle (open before first query, close after
// last).
type Client struct {
	driver   neo4j.DriverWithContext
	logger   *slog.Logger
	database string
}

// NewClient creates a Neo4j client. Credentials come from configuration;
// they are never hardcoded.
func NewClient(ctx context.Context, uri, user, password, database string) (*Client, error) {
	if uri == "" || user == "" || password == "" {
		return nil, fmt.Errorf("neo4j credentials missing: uri=%s, user=%s", uri, user)
	}
	if database == "" {
		database = "neo4j"
	}

	driver, err := neo4j.NewDriverWithContext(uri,
		neo4j.BasicAuth(user, password, ""),
		func(config *neo4j.Config) {
			config.SocketConnectTimeout = 5 * time.Second
			config.SocketKeepalive = true
		})
	if err != nil {
		return nil, fmt.Errorf("failed to create neo4j driver: %w", err)
	}

	// Fail fast on startup
	if err := driver.VerifyConnectivity(ctx); err != nil {
		driver.Close(ctx)
		return nil, fmt.Errorf("failed to connect to neo4j at %s: %w", uri, err)
	}

	logger := slog.Default().With("component", "neo4j")
	logger.Info("neo4j client connected", "uri", uri, "user", user, "database", database)

	return &Client{
		driver:   driver,
		logger:   logger,
		database: database,
	}, nil
}

// Close closes the Neo4j driver connection
func (c *Client) Close(ctx context.Context) error {
	if err := c.driver.Close(ctx); err != nil {
		return fmt.Errorf("failed to close neo4j driver: %w", err)
	}
	c.logger.Info("neo4j client closed")
	return nil
}

// Run executes one parameterized Cypher statement and returns its records
func (c *Client) Run(ctx context.Context, query string, params map[string]any) ([]*neo4j.Record, error) {
	result, err := neo4j.ExecuteQuery(ctx, c.driver, query, params,
		neo4j.EagerResultTransformer,
		neo4j.ExecuteQueryWithDatabase(c.database))
	if err != nil {
		return nil, err
	}
	return result.Records, nil
}

// CountEdges returns the number of persisted edges of one relationship kind
func (c *Client) CountEdges(ctx context.Context, relation string) (int64, error) {
	if !isValidIdentifier(relation) {
		return 0, fmt.Errorf("invalid relationship kind: %s", relation)
	}

	query := fmt.Sprintf("MATCH ()-[r:%s]->() RETURN count(r) as count", relation)
	result, err := neo4j.ExecuteQuery(ctx, c.driver, query, nil,
		neo4j.EagerResultTransformer,
		neo4j.ExecuteQueryWithDatabase(c.database),
		neo4j.ExecuteQueryWithReadersRouting())
	if err != nil {
		return 0, fmt.Errorf("edge count failed for %s: %w", relation, err)
	}

	if len(result.Records) == 0 {
		return 0, nil
	}
	count, ok := result.Records[0].Get("count")
	if !ok {
		return 0, fmt.Errorf("edge count returned no count for %s", relation)
	}
	countInt, ok := count.(int64)
	if !ok {
		return 0, fmt.Errorf("unexpected type for count: %T (expected int64)", count)
	}
	return countInt, nil
}

// Wipe deletes every node and edge. Explicitly opt-in; never default
// behavior of a load.
func (c *Client) Wipe(ctx context.Context) error {
	if _, err := c.Run(ctx, "MATCH (n) DETACH DELETE n", nil); err != nil {
		return fmt.Errorf("wipe failed: %w", err)
	}
	c.logger.Warn("graph wiped")
	return nil
}

// Database returns the configured database name
func (c *Client) Database() string {
	return c.database
}
