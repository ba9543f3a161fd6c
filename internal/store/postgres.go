package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/example/anistream/internal/catalog"
)

// PostgresCatalogStore is the production Postgres-backed implementation.
type PostgresCatalogStore struct {
	db *pgxpool.Pool
}

func NewPostgresCatalogStore(db *pgxpool.Pool) *PostgresCatalogStore {
	return &PostgresCatalogStore{db: db}
}

const animeColumns = `id, mal_id, anilist_id, tmdb_id, title_japanese, title_english, title_romaji,
synopsis, image_url, episodes, status, release_year, genres, score, popularity, data_source, last_synced_at`

func scanAnime(row pgx.Row) (catalog.Anime, error) {
	var a catalog.Anime
	var genresJSON []byte
	err := row.Scan(&a.ID, &a.MalID, &a.AnilistID, &a.TMDBID, &a.TitleJapanese, &a.TitleEnglish, &a.TitleRomaji,
		&a.Synopsis, &a.ImageURL, &a.Episodes, &a.Status, &a.ReleaseYear, &genresJSON, &a.Score, &a.Popularity,
		&a.DataSource, &a.LastSyncedAt)
	if err != nil {
		return catalog.Anime{}, err
	}
	_ = json.Unmarshal(genresJSON, &a.Genres)
	if a.Genres == nil {
		a.Genres = []string{}
	}
	return a, nil
}

// ── Anime reads ────────────────────────────────────────────────────────────

// Tier conditions against all title fields. $1 is the variant array.
const (
	condExact  = `(title_japanese = ANY($1) OR title_english = ANY($1) OR title_romaji = ANY($1))`
	condPrefix = `EXISTS (SELECT 1 FROM unnest($1::text[]) v
  WHERE title_japanese ILIKE v || '%' OR title_english ILIKE v || '%' OR title_romaji ILIKE v || '%')`
	condSubstr = `EXISTS (SELECT 1 FROM unnest($1::text[]) v
  WHERE title_japanese ILIKE '%' || v || '%' OR title_english ILIKE '%' || v || '%' OR title_romaji ILIKE '%' || v || '%')`
)

func (s *PostgresCatalogStore) SearchLocal(ctx context.Context, variants []string) ([]catalog.Anime, error) {
	if len(variants) == 0 {
		return nil, nil
	}

	seen := make(map[string]struct{}, MaxSearchResults)
	var out []catalog.Anime

	for _, cond := range []string{condExact, condPrefix, condSubstr} {
		q := fmt.Sprintf(`SELECT %s FROM anime WHERE %s
ORDER BY popularity DESC NULLS LAST LIMIT %d`, animeColumns, cond, MaxSearchResults)
		rows, err := s.db.Query(ctx, q, variants)
		if err != nil {
			return nil, fmt.Errorf("local search: %w", err)
		}
		for rows.Next() {
			a, err := scanAnime(rows)
			if err != nil {
				rows.Close()
				return nil, fmt.Errorf("local search scan: %w", err)
			}
			if _, dup := seen[a.ID]; dup {
				continue
			}
			seen[a.ID] = struct{}{}
			out = append(out, a)
		}
		rows.Close()
		if err := rows.Err(); err != nil {
			return nil, fmt.Errorf("local search: %w", err)
		}
		if len(out) >= MaxSearchResults {
			return out[:MaxSearchResults], nil
		}
	}
	return out, nil
}

func (s *PostgresCatalogStore) GetAnime(ctx context.Context, id string) (*catalog.Anime, error) {
	a, err := scanAnime(s.db.QueryRow(ctx,
		`SELECT `+animeColumns+` FROM anime WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &a, nil
}

func (s *PostgresCatalogStore) AnimeByAnilistIDs(ctx context.Context, ids []int) ([]catalog.Anime, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	rows, err := s.db.Query(ctx, `SELECT `+animeColumns+` FROM anime
WHERE anilist_id = ANY($1) ORDER BY popularity DESC NULLS LAST`, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []catalog.Anime
	for rows.Next() {
		a, err := scanAnime(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (s *PostgresCatalogStore) AnimeByMalID(ctx context.Context, malID int) (*catalog.Anime, error) {
	a, err := scanAnime(s.db.QueryRow(ctx,
		`SELECT `+animeColumns+` FROM anime WHERE mal_id = $1`, malID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &a, nil
}

// ── Anime writes ───────────────────────────────────────────────────────────

func (s *PostgresCatalogStore) UpsertAnime(ctx context.Context, in catalog.NormalizedAnime) (catalog.Anime, error) {
	genresJSON, _ := json.Marshal(in.Genres)
	now := time.Now().UTC()
	status := in.Status
	if status == "" {
		status = catalog.StatusUnknown
	}

	tx, err := s.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return catalog.Anime{}, fmt.Errorf("upsert anime begin: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var id string
	err = tx.QueryRow(ctx, `SELECT id FROM anime
WHERE (anilist_id IS NOT NULL AND anilist_id = $1) OR (mal_id IS NOT NULL AND mal_id = $2)
LIMIT 1`, in.AnilistID, in.MalID).Scan(&id)
	switch {
	case err == nil:
		// Existing record: never overwrite a curated Japanese title.
		_, err = tx.Exec(ctx, `UPDATE anime SET
 mal_id = COALESCE($2, mal_id),
 anilist_id = COALESCE($3, anilist_id),
 tmdb_id = COALESCE($4, tmdb_id),
 title_japanese = CASE WHEN title_japanese <> '' THEN title_japanese ELSE $5 END,
 title_english = $6, title_romaji = $7, synopsis = $8, image_url = $9,
 episodes = $10, status = $11, release_year = $12, genres = $13,
 score = $14, popularity = $15, data_source = $16, last_synced_at = $17
WHERE id = $1`,
			id, in.MalID, in.AnilistID, in.TMDBID, in.TitleJapanese,
			in.TitleEnglish, in.TitleRomaji, in.Synopsis, in.ImageURL,
			in.Episodes, status, in.ReleaseYear, genresJSON,
			in.Score, in.Popularity, in.Source, now)
		if err != nil {
			return catalog.Anime{}, fmt.Errorf("upsert anime update: %w", err)
		}
	case errors.Is(err, pgx.ErrNoRows):
		id = uuid.NewString()
		_, err = tx.Exec(ctx, `INSERT INTO anime
 (id, mal_id, anilist_id, tmdb_id, title_japanese, title_english, title_romaji,
  synopsis, image_url, episodes, status, release_year, genres, score, popularity,
  data_source, last_synced_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17)`,
			id, in.MalID, in.AnilistID, in.TMDBID, in.TitleJapanese, in.TitleEnglish, in.TitleRomaji,
			in.Synopsis, in.ImageURL, in.Episodes, status, in.ReleaseYear, genresJSON, in.Score, in.Popularity,
			in.Source, now)
		if err != nil {
			return catalog.Anime{}, fmt.Errorf("upsert anime insert: %w", err)
		}
	default:
		return catalog.Anime{}, fmt.Errorf("upsert anime lookup: %w", err)
	}

	a, err := scanAnime(tx.QueryRow(ctx, `SELECT `+animeColumns+` FROM anime WHERE id = $1`, id))
	if err != nil {
		return catalog.Anime{}, fmt.Errorf("upsert anime readback: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return catalog.Anime{}, fmt.Errorf("upsert anime commit: %w", err)
	}
	return a, nil
}

func (s *PostgresCatalogStore) UpdateAnime(ctx context.Context, id string, upd AnimeUpdate) (*catalog.Anime, error) {
	set := make([]string, 0, 9)
	args := []any{id}
	add := func(col string, v any) {
		args = append(args, v)
		set = append(set, fmt.Sprintf("%s = $%d", col, len(args)))
	}

	if upd.TitleJapanese != nil {
		add("title_japanese", *upd.TitleJapanese)
	}
	if upd.TitleEnglish != nil {
		add("title_english", *upd.TitleEnglish)
	}
	if upd.TitleRomaji != nil {
		add("title_romaji", *upd.TitleRomaji)
	}
	if upd.Synopsis != nil {
		add("synopsis", *upd.Synopsis)
	}
	if upd.ImageURL != nil {
		add("image_url", *upd.ImageURL)
	}
	if upd.Episodes != nil {
		add("episodes", *upd.Episodes)
	}
	if upd.Status != nil {
		add("status", *upd.Status)
	}
	if upd.ReleaseYear != nil {
		add("release_year", *upd.ReleaseYear)
	}
	if upd.Genres != nil {
		genresJSON, _ := json.Marshal(*upd.Genres)
		add("genres", genresJSON)
	}
	if len(set) == 0 {
		return s.GetAnime(ctx, id)
	}

	q := "UPDATE anime SET " + strings.Join(set, ", ") + " WHERE id = $1"
	tag, err := s.db.Exec(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	if tag.RowsAffected() == 0 {
		return nil, ErrNotFound
	}
	return s.GetAnime(ctx, id)
}

func (s *PostgresCatalogStore) DeleteAnime(ctx context.Context, id string) error {
	tag, err := s.db.Exec(ctx, `DELETE FROM anime WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresCatalogStore) RecentlySynced(ctx context.Context, source catalog.DataSource, limit int) ([]catalog.Anime, error) {
	if limit <= 0 || limit > 100 {
		limit = 10
	}
	rows, err := s.db.Query(ctx, `SELECT `+animeColumns+` FROM anime
WHERE data_source = $1 ORDER BY last_synced_at DESC LIMIT $2`, source, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []catalog.Anime
	for rows.Next() {
		a, err := scanAnime(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (s *PostgresCatalogStore) TrendingAnime(ctx context.Context, limit int) ([]catalog.Anime, error) {
	if limit <= 0 || limit > 50 {
		limit = 10
	}
	rows, err := s.db.Query(ctx, `SELECT `+animeColumns+` FROM anime
WHERE status = $1 ORDER BY popularity DESC NULLS LAST LIMIT $2`, catalog.StatusAiring, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []catalog.Anime
	for rows.Next() {
		a, err := scanAnime(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// ── Availability ───────────────────────────────────────────────────────────

const availabilityColumns = `a.id, a.anime_id, a.platform_id, a.available_episodes, a.has_sub, a.has_dub,
a.direct_url, a.expiration_date, a.last_checked`

const platformColumns = `id, name, display_name, logo_url, website_url, monthly_price, annual_price,
free_trial, free_trial_days, is_active, affiliate_url, last_price_check`

func (s *PostgresCatalogStore) ListAvailability(ctx context.Context, animeID string) ([]AvailabilityWithPlatform, error) {
	rows, err := s.db.Query(ctx, `SELECT `+availabilityColumns+`,
 p.id, p.name, p.display_name, p.logo_url, p.website_url, p.monthly_price, p.annual_price,
 p.free_trial, p.free_trial_days, p.is_active, p.affiliate_url, p.last_price_check
FROM availability a JOIN platform p ON p.id = a.platform_id
WHERE a.anime_id = $1
ORDER BY p.monthly_price ASC`, animeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []AvailabilityWithPlatform
	for rows.Next() {
		var r AvailabilityWithPlatform
		err := rows.Scan(&r.ID, &r.AnimeID, &r.PlatformID, &r.AvailableEpisodes, &r.HasSub, &r.HasDub,
			&r.DirectURL, &r.ExpirationDate, &r.LastChecked,
			&r.Platform.ID, &r.Platform.Name, &r.Platform.DisplayName, &r.Platform.LogoURL, &r.Platform.WebsiteURL,
			&r.Platform.MonthlyPrice, &r.Platform.AnnualPrice, &r.Platform.FreeTrial, &r.Platform.FreeTrialDays,
			&r.Platform.IsActive, &r.Platform.AffiliateURL, &r.Platform.LastPriceCheck)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *PostgresCatalogStore) QueryAvailability(ctx context.Context, animeID, platformID string) ([]catalog.Availability, error) {
	q := `SELECT ` + availabilityColumns + ` FROM availability a WHERE 1=1`
	args := []any{}
	if animeID != "" {
		args = append(args, animeID)
		q += fmt.Sprintf(" AND a.anime_id = $%d", len(args))
	}
	if platformID != "" {
		args = append(args, platformID)
		q += fmt.Sprintf(" AND a.platform_id = $%d", len(args))
	}
	rows, err := s.db.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []catalog.Availability
	for rows.Next() {
		var a catalog.Availability
		err := rows.Scan(&a.ID, &a.AnimeID, &a.PlatformID, &a.AvailableEpisodes, &a.HasSub, &a.HasDub,
			&a.DirectURL, &a.ExpirationDate, &a.LastChecked)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (s *PostgresCatalogStore) UpsertAvailability(ctx context.Context, av catalog.Availability) (catalog.Availability, error) {
	if av.ID == "" {
		av.ID = uuid.NewString()
	}
	if av.LastChecked.IsZero() {
		av.LastChecked = time.Now().UTC()
	}
	err := s.db.QueryRow(ctx, `INSERT INTO availability
 (id, anime_id, platform_id, available_episodes, has_sub, has_dub, direct_url, expiration_date, last_checked)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
ON CONFLICT (anime_id, platform_id) DO UPDATE SET
 available_episodes = EXCLUDED.available_episodes,
 has_sub = EXCLUDED.has_sub,
 has_dub = EXCLUDED.has_dub,
 direct_url = EXCLUDED.direct_url,
 expiration_date = EXCLUDED.expiration_date,
 last_checked = EXCLUDED.last_checked
RETURNING id`,
		av.ID, av.AnimeID, av.PlatformID, av.AvailableEpisodes, av.HasSub, av.HasDub,
		av.DirectURL, av.ExpirationDate, av.LastChecked).Scan(&av.ID)
	if err != nil {
		return catalog.Availability{}, fmt.Errorf("upsert availability: %w", err)
	}
	return av, nil
}

func (s *PostgresCatalogStore) DeleteAvailability(ctx context.Context, id string) error {
	tag, err := s.db.Exec(ctx, `DELETE FROM availability WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// ── Platforms and prices ───────────────────────────────────────────────────

func (s *PostgresCatalogStore) ListPlatforms(ctx context.Context, onlyActive bool) ([]catalog.Platform, error) {
	q := `SELECT ` + platformColumns + ` FROM platform`
	if onlyActive {
		q += ` WHERE is_active`
	}
	q += ` ORDER BY name`
	rows, err := s.db.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []catalog.Platform
	for rows.Next() {
		var p catalog.Platform
		err := rows.Scan(&p.ID, &p.Name, &p.DisplayName, &p.LogoURL, &p.WebsiteURL, &p.MonthlyPrice, &p.AnnualPrice,
			&p.FreeTrial, &p.FreeTrialDays, &p.IsActive, &p.AffiliateURL, &p.LastPriceCheck)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (s *PostgresCatalogStore) GetPlatformByName(ctx context.Context, name string) (*catalog.Platform, error) {
	var p catalog.Platform
	err := s.db.QueryRow(ctx, `SELECT `+platformColumns+` FROM platform WHERE name = $1`, name).
		Scan(&p.ID, &p.Name, &p.DisplayName, &p.LogoURL, &p.WebsiteURL, &p.MonthlyPrice, &p.AnnualPrice,
			&p.FreeTrial, &p.FreeTrialDays, &p.IsActive, &p.AffiliateURL, &p.LastPriceCheck)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

func (s *PostgresCatalogStore) CreatePlatform(ctx context.Context, p catalog.Platform) (catalog.Platform, error) {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	_, err := s.db.Exec(ctx, `INSERT INTO platform
 (id, name, display_name, logo_url, website_url, monthly_price, annual_price,
  free_trial, free_trial_days, is_active, affiliate_url)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)`,
		p.ID, p.Name, p.DisplayName, p.LogoURL, p.WebsiteURL, p.MonthlyPrice, p.AnnualPrice,
		p.FreeTrial, p.FreeTrialDays, p.IsActive, p.AffiliateURL)
	if err != nil {
		return catalog.Platform{}, fmt.Errorf("create platform: %w", err)
	}
	return p, nil
}

func (s *PostgresCatalogStore) UpdatePlatformPrices(ctx context.Context, id string, monthly int, annual *int, freeTrial bool, freeTrialDays int, at time.Time) error {
	_, err := s.db.Exec(ctx, `UPDATE platform SET
 monthly_price = $2, annual_price = $3, free_trial = $4, free_trial_days = $5, last_price_check = $6
WHERE id = $1`, id, monthly, annual, freeTrial, freeTrialDays, at)
	return err
}

func (s *PostgresCatalogStore) TouchPriceCheck(ctx context.Context, ids []string, at time.Time) error {
	if len(ids) == 0 {
		return nil
	}
	_, err := s.db.Exec(ctx, `UPDATE platform SET last_price_check = $2 WHERE id = ANY($1)`, ids, at)
	return err
}

func (s *PostgresCatalogStore) InsertPriceHistory(ctx context.Context, rows []catalog.PriceHistory) error {
	for _, h := range rows {
		id := h.ID
		if id == "" {
			id = uuid.NewString()
		}
		_, err := s.db.Exec(ctx, `INSERT INTO price_history
 (id, platform_id, old_monthly_price, new_monthly_price, old_annual_price, new_annual_price,
  change_type, change_date, percentage_change)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
			id, h.PlatformID, h.OldMonthlyPrice, h.NewMonthlyPrice, h.OldAnnualPrice, h.NewAnnualPrice,
			h.ChangeType, h.ChangeDate, h.PercentageChange)
		if err != nil {
			return fmt.Errorf("insert price history: %w", err)
		}
	}
	return nil
}

// ── Click tracking ─────────────────────────────────────────────────────────

func (s *PostgresCatalogStore) RecordClick(ctx context.Context, ev catalog.ClickEvent) error {
	if ev.ClickedAt.IsZero() {
		ev.ClickedAt = time.Now().UTC()
	}
	_, err := s.db.Exec(ctx, `INSERT INTO affiliate_clicks
 (id, platform, anime_id, user_id, ip_address, user_agent, clicked_at)
VALUES ($1,$2,$3,NULLIF($4,''),$5,$6,$7)`,
		uuid.NewString(), ev.Platform, ev.AnimeID, ev.UserID, ev.IPAddress, ev.UserAgent, ev.ClickedAt)
	return err
}
