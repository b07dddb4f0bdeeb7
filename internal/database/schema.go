package database

import "context"

var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id BIGSERIAL PRIMARY KEY,
		username VARCHAR(50) NOT NULL UNIQUE,
		email VARCHAR(255) NOT NULL UNIQUE,
		password_hash VARCHAR(255) NOT NULL,
		email_verified BOOLEAN NOT NULL DEFAULT FALSE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS clubs (
		id BIGSERIAL PRIMARY KEY,
		name VARCHAR(255) NOT NULL,
		logo BYTEA,
		logo_mime VARCHAR(50),
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS sports (
		id BIGSERIAL PRIMARY KEY,
		name VARCHAR(255) NOT NULL,
		club_id BIGINT NOT NULL REFERENCES clubs(id) ON DELETE CASCADE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS teams (
		id BIGSERIAL PRIMARY KEY,
		name VARCHAR(255) NOT NULL,
		sport_id BIGINT NOT NULL REFERENCES sports(id) ON DELETE CASCADE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS venues (
		id BIGSERIAL PRIMARY KEY,
		name VARCHAR(255) NOT NULL,
		address VARCHAR(500),
		coordinates VARCHAR(100),
		map_link VARCHAR(500),
		club_id BIGINT NOT NULL REFERENCES clubs(id) ON DELETE CASCADE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS games (
		id BIGSERIAL PRIMARY KEY,
		title VARCHAR(255) NOT NULL,
		date DATE,
		start_time TIME,
		location_text VARCHAR(500),
		venue_id BIGINT REFERENCES venues(id) ON DELETE SET NULL,
		opponent VARCHAR(255),
		team_id BIGINT NOT NULL REFERENCES teams(id) ON DELETE CASCADE,
		created_by BIGINT NOT NULL REFERENCES users(id),
		result_markdown TEXT,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS trainings (
		id BIGSERIAL PRIMARY KEY,
		title VARCHAR(255) NOT NULL,
		date DATE,
		start_time TIME,
		location_text VARCHAR(500),
		venue_id BIGINT REFERENCES venues(id) ON DELETE SET NULL,
		team_id BIGINT NOT NULL REFERENCES teams(id) ON DELETE CASCADE,
		created_by BIGINT NOT NULL REFERENCES users(id),
		result_markdown TEXT,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS players (
		id BIGSERIAL PRIMARY KEY,
		user_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		team_id BIGINT NOT NULL REFERENCES teams(id) ON DELETE CASCADE,
		jersey_number INT,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		UNIQUE (user_id, team_id)
	)`,
	`CREATE TABLE IF NOT EXISTS user_roles (
		id BIGSERIAL PRIMARY KEY,
		user_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		role VARCHAR(50) NOT NULL,
		club_id BIGINT REFERENCES clubs(id) ON DELETE CASCADE,
		sport_id BIGINT REFERENCES sports(id) ON DELETE CASCADE,
		team_id BIGINT REFERENCES teams(id) ON DELETE CASCADE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS club_members (
		id BIGSERIAL PRIMARY KEY,
		user_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		club_id BIGINT NOT NULL REFERENCES clubs(id) ON DELETE CASCADE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		UNIQUE (user_id, club_id)
	)`,
	`CREATE TABLE IF NOT EXISTS invitations (
		id BIGSERIAL PRIMARY KEY,
		email VARCHAR(255) NOT NULL,
		role VARCHAR(50) NOT NULL,
		club_id BIGINT NOT NULL REFERENCES clubs(id) ON DELETE CASCADE,
		code VARCHAR(100) NOT NULL UNIQUE,
		invited_by BIGINT NOT NULL REFERENCES users(id),
		accepted BOOLEAN NOT NULL DEFAULT FALSE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS notifications (
		id BIGSERIAL PRIMARY KEY,
		user_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		type VARCHAR(50),
		title VARCHAR(255),
		message TEXT,
		reference_type VARCHAR(50),
		reference_id BIGINT,
		is_read BOOLEAN NOT NULL DEFAULT FALSE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS notification_settings (
		id BIGSERIAL PRIMARY KEY,
		user_id BIGINT NOT NULL UNIQUE REFERENCES users(id) ON DELETE CASCADE,
		email_enabled BOOLEAN NOT NULL DEFAULT TRUE,
		push_enabled BOOLEAN NOT NULL DEFAULT TRUE,
		dashboard_enabled BOOLEAN NOT NULL DEFAULT TRUE
	)`,
	`CREATE TABLE IF NOT EXISTS messages (
		id BIGSERIAL PRIMARY KEY,
		sender_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		subject VARCHAR(255),
		body TEXT NOT NULL,
		target_type VARCHAR(20) NOT NULL,
		target_id BIGINT NOT NULL,
		parent_id BIGINT REFERENCES messages(id) ON DELETE CASCADE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS message_recipients (
		id BIGSERIAL PRIMARY KEY,
		message_id BIGINT NOT NULL REFERENCES messages(id) ON DELETE CASCADE,
		user_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		is_read BOOLEAN NOT NULL DEFAULT FALSE
	)`,
	`CREATE TABLE IF NOT EXISTS attendance (
		id BIGSERIAL PRIMARY KEY,
		user_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		event_type VARCHAR(20) NOT NULL,
		event_id BIGINT NOT NULL,
		status VARCHAR(20) NOT NULL DEFAULT 'pending',
		reminded BOOLEAN NOT NULL DEFAULT FALSE,
		escalated BOOLEAN NOT NULL DEFAULT FALSE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		UNIQUE (user_id, event_type, event_id)
	)`,
	`CREATE TABLE IF NOT EXISTS photos (
		id BIGSERIAL PRIMARY KEY,
		event_type VARCHAR(20) NOT NULL,
		event_id BIGINT NOT NULL,
		data BYTEA NOT NULL,
		mime_type VARCHAR(50) NOT NULL,
		filename VARCHAR(255) NOT NULL,
		uploaded_by BIGINT NOT NULL REFERENCES users(id),
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS team_trainers (
		id BIGSERIAL PRIMARY KEY,
		team_id BIGINT NOT NULL REFERENCES teams(id) ON DELETE CASCADE,
		user_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		UNIQUE (team_id, user_id)
	)`,
}

// Init creates the schema on startup if it does not exist yet.
func (db *DB) Init(ctx context.Context) error {
	for _, stmt := range schemaStatements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}
