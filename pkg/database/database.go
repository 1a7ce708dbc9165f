package database

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"
)

type Clients struct {
	DB    *sqlx.DB
	Redis *redis.Client
}

func NewClients(dbURL, redisAddr string) (*Clients, error) {
	// Connect to PostgreSQL
	db, err := sqlx.Connect("postgres", dbURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Initialize Redis client
	redisClient := redis.NewClient(&redis.Options{
		Addr:     redisAddr,
		Password: "",
		DB:       0,
	})

	ctx := context.Background()
	if err := redisClient.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &Clients{
		DB:    db,
		Redis: redisClient,
	}, nil
}

// CreateTables bootstraps the schema. Profiles mirror Supabase auth users,
// so profile ids come from the auth service rather than a local default.
func (c *Clients) CreateTables() error {
	schema := `
	CREATE EXTENSION IF NOT EXISTS "pgcrypto";

	CREATE TABLE IF NOT EXISTS profiles (
		id UUID PRIMARY KEY,
		email TEXT NOT NULL,
		full_name TEXT,
		institution TEXT,
		role TEXT DEFAULT 'student',
		created_at TIMESTAMPTZ DEFAULT now(),
		updated_at TIMESTAMPTZ DEFAULT now()
	);

	CREATE TABLE IF NOT EXISTS subscriptions (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		user_id UUID NOT NULL REFERENCES profiles(id),
		tier TEXT NOT NULL,
		monthly_query_limit INTEGER NOT NULL,
		monthly_queries_used INTEGER DEFAULT 0,
		status TEXT DEFAULT 'active',
		current_period_start TIMESTAMPTZ,
		current_period_end TIMESTAMPTZ,
		stripe_customer_id TEXT,
		stripe_subscription_id TEXT,
		created_at TIMESTAMPTZ DEFAULT now(),
		updated_at TIMESTAMPTZ DEFAULT now()
	);

	CREATE TABLE IF NOT EXISTS research_queries (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		user_id UUID NOT NULL REFERENCES profiles(id),
		title TEXT NOT NULL,
		query_text TEXT NOT NULL,
		ai_agents_used TEXT[] DEFAULT '{}',
		status TEXT DEFAULT 'pending',
		results JSONB,
		citations JSONB,
		created_at TIMESTAMPTZ DEFAULT now(),
		updated_at TIMESTAMPTZ DEFAULT now()
	);

	CREATE TABLE IF NOT EXISTS citations (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		query_id UUID NOT NULL REFERENCES research_queries(id),
		title TEXT NOT NULL,
		authors TEXT[],
		year INTEGER,
		publication TEXT,
		doi TEXT,
		url TEXT,
		citation_style TEXT DEFAULT 'apa',
		formatted_citation TEXT,
		created_at TIMESTAMPTZ DEFAULT now()
	);

	CREATE TABLE IF NOT EXISTS workspaces (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		owner_id UUID NOT NULL REFERENCES profiles(id),
		name TEXT NOT NULL,
		description TEXT,
		is_public BOOLEAN DEFAULT false,
		created_at TIMESTAMPTZ DEFAULT now(),
		updated_at TIMESTAMPTZ DEFAULT now()
	);

	CREATE TABLE IF NOT EXISTS workspace_members (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		workspace_id UUID NOT NULL REFERENCES workspaces(id),
		user_id UUID NOT NULL REFERENCES profiles(id),
		role TEXT DEFAULT 'member',
		joined_at TIMESTAMPTZ DEFAULT now(),
		UNIQUE (workspace_id, user_id)
	);`

	if _, err := c.DB.Exec(schema); err != nil {
		return fmt.Errorf("failed to create tables: %w", err)
	}

	slog.Info("✅ Schema is ready!")
	return nil
}
