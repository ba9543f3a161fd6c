package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

const schema = `
CREATE TABLE IF NOT EXISTS anime (
	id UUID PRIMARY KEY,
	mal_id INTEGER UNIQUE,
	anilist_id INTEGER UNIQUE,
	tmdb_id INTEGER,
	title_japanese TEXT NOT NULL DEFAULT '',
	title_english TEXT NOT NULL DEFAULT '',
	title_romaji TEXT NOT NULL DEFAULT '',
	synopsis TEXT NOT NULL DEFAULT '',
	image_url TEXT NOT NULL DEFAULT '',
	episodes INTEGER,
	status TEXT NOT NULL DEFAULT 'unknown',
	release_year INTEGER,
	genres JSONB NOT NULL DEFAULT '[]',
	score DOUBLE PRECISION,
	popularity INTEGER,
	data_source TEXT NOT NULL DEFAULT 'manual',
	last_synced_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_anime_title_japanese ON anime (title_japanese);
CREATE INDEX IF NOT EXISTS idx_anime_title_english ON anime (title_english);
CREATE INDEX IF NOT EXISTS idx_anime_popularity ON anime (popularity DESC NULLS LAST);
CREATE INDEX IF NOT EXISTS idx_anime_data_source ON anime (data_source, last_synced_at DESC);

CREATE TABLE IF NOT EXISTS platform (
	id UUID PRIMARY KEY,
	name TEXT NOT NULL UNIQUE,
	display_name TEXT NOT NULL,
	logo_url TEXT NOT NULL DEFAULT '',
	website_url TEXT NOT NULL DEFAULT '',
	monthly_price INTEGER NOT NULL DEFAULT 0,
	annual_price INTEGER,
	free_trial BOOLEAN NOT NULL DEFAULT FALSE,
	free_trial_days INTEGER NOT NULL DEFAULT 0,
	is_active BOOLEAN NOT NULL DEFAULT TRUE,
	affiliate_url TEXT NOT NULL DEFAULT '',
	last_price_check TIMESTAMPTZ
);

CREATE TABLE IF NOT EXISTS availability (
	id UUID PRIMARY KEY,
	anime_id UUID NOT NULL REFERENCES anime(id) ON DELETE CASCADE,
	platform_id UUID NOT NULL REFERENCES platform(id) ON DELETE CASCADE,
	available_episodes INTEGER,
	has_sub BOOLEAN NOT NULL DEFAULT FALSE,
	has_dub BOOLEAN NOT NULL DEFAULT FALSE,
	direct_url TEXT NOT NULL DEFAULT '',
	expiration_date TIMESTAMPTZ,
	last_checked TIMESTAMPTZ NOT NULL DEFAULT now(),
	UNIQUE (anime_id, platform_id)
);

CREATE TABLE IF NOT EXISTS price_history (
	id UUID PRIMARY KEY,
	platform_id UUID NOT NULL REFERENCES platform(id) ON DELETE CASCADE,
	old_monthly_price INTEGER,
	new_monthly_price INTEGER NOT NULL,
	old_annual_price INTEGER,
	new_annual_price INTEGER,
	change_type TEXT NOT NULL,
	change_date TIMESTAMPTZ NOT NULL DEFAULT now(),
	percentage_change DOUBLE PRECISION NOT NULL DEFAULT 0
);

CREATE INDEX IF NOT EXISTS idx_price_history_platform ON price_history (platform_id, change_date DESC);

CREATE TABLE IF NOT EXISTS affiliate_clicks (
	id UUID PRIMARY KEY,
	platform TEXT NOT NULL,
	anime_id TEXT NOT NULL,
	user_id TEXT,
	ip_address TEXT NOT NULL DEFAULT '',
	user_agent TEXT NOT NULL DEFAULT '',
	clicked_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_affiliate_clicks_platform ON affiliate_clicks (platform, clicked_at DESC);
`

// EnsureSchema applies the base schema. All statements are idempotent
// so it is safe to run on every start.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	if _, err := pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}
