package database

import (
	"context"
	"fmt"
)

var migrations = []string{
	`CREATE EXTENSION IF NOT EXISTS "uuid-ossp"`,

	`CREATE TABLE IF NOT EXISTS workspaces (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		name VARCHAR(255) NOT NULL,
		created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
		updated_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
	)`,

	`CREATE TABLE IF NOT EXISTS users (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		external_id VARCHAR(255) UNIQUE NOT NULL,
		email VARCHAR(255),
		name VARCHAR(255),
		created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
		updated_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
	)`,

	// One workspace per user: the unique user_id is what makes first-request
	// provisioning safe under concurrency.
	`CREATE TABLE IF NOT EXISTS workspace_members (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		workspace_id UUID NOT NULL REFERENCES workspaces(id) ON DELETE CASCADE,
		user_id UUID NOT NULL UNIQUE REFERENCES users(id) ON DELETE CASCADE,
		role VARCHAR(50) NOT NULL DEFAULT 'owner',
		created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
	)`,

	`CREATE TABLE IF NOT EXISTS integrations (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		workspace_id UUID NOT NULL REFERENCES workspaces(id) ON DELETE CASCADE,
		provider VARCHAR(20) NOT NULL,
		access_token TEXT,
		refresh_token TEXT,
		token_expiry TIMESTAMP WITH TIME ZONE,
		calendar_ids TEXT[] NOT NULL DEFAULT '{}',
		sheets_url TEXT,
		account_sid VARCHAR(64),
		auth_token TEXT,
		from_number VARCHAR(32),
		created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
		updated_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
		UNIQUE(workspace_id, provider)
	)`,

	`CREATE INDEX IF NOT EXISTS idx_integrations_from_number ON integrations(provider, from_number)`,

	`CREATE TABLE IF NOT EXISTS customers (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		workspace_id UUID NOT NULL REFERENCES workspaces(id) ON DELETE CASCADE,
		name VARCHAR(255),
		phone VARCHAR(32),
		email VARCHAR(255),
		created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
		updated_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
	)`,

	`CREATE INDEX IF NOT EXISTS idx_customers_workspace_phone ON customers(workspace_id, phone)`,
	`CREATE INDEX IF NOT EXISTS idx_customers_workspace_email ON customers(workspace_id, email)`,

	`CREATE TABLE IF NOT EXISTS reservations (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		workspace_id UUID NOT NULL REFERENCES workspaces(id) ON DELETE CASCADE,
		integration_id UUID REFERENCES integrations(id) ON DELETE SET NULL,
		customer_id UUID REFERENCES customers(id) ON DELETE SET NULL,
		event_id VARCHAR(1024) UNIQUE NOT NULL,
		calendar_id VARCHAR(1024),
		title VARCHAR(1024),
		service VARCHAR(255) NOT NULL,
		staff VARCHAR(255),
		notes TEXT,
		status VARCHAR(20) NOT NULL DEFAULT 'confirmed',
		source VARCHAR(20) NOT NULL,
		start_time TIMESTAMP WITH TIME ZONE NOT NULL,
		end_time TIMESTAMP WITH TIME ZONE NOT NULL,
		reminded_at TIMESTAMP WITH TIME ZONE,
		created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
		updated_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
	)`,

	`CREATE INDEX IF NOT EXISTS idx_reservations_workspace_start ON reservations(workspace_id, start_time)`,

	`CREATE TABLE IF NOT EXISTS messages (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		workspace_id UUID NOT NULL REFERENCES workspaces(id) ON DELETE CASCADE,
		customer_id UUID REFERENCES customers(id) ON DELETE SET NULL,
		direction VARCHAR(10) NOT NULL,
		channel VARCHAR(20) NOT NULL DEFAULT 'sms',
		body TEXT NOT NULL,
		from_number VARCHAR(32),
		to_number VARCHAR(32),
		provider_message_id VARCHAR(64),
		created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
	)`,

	`CREATE INDEX IF NOT EXISTS idx_messages_workspace_created ON messages(workspace_id, created_at DESC)`,
}

func (db *DB) Migrate(ctx context.Context) error {
	for i, migration := range migrations {
		if _, err := db.Pool.Exec(ctx, migration); err != nil {
			return fmt.Errorf("migration %d failed: %w", i+1, err)
		}
	}
	return nil
}
