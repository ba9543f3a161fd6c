package store

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/example/anistream/internal/catalog"
)

// InMemoryCatalogStore is a development and test implementation of
// CatalogStore with the same tier/upsert semantics as the Postgres store.
type InMemoryCatalogStore struct {
	mu           sync.RWMutex
	anime        map[string]catalog.Anime
	platforms    map[string]catalog.Platform
	availability map[string]catalog.Availability // id -> row
	history      []catalog.PriceHistory
	clicks       []catalog.ClickEvent
}

func NewInMemoryCatalogStore() *InMemoryCatalogStore {
	return &InMemoryCatalogStore{
		anime:        make(map[string]catalog.Anime),
		platforms:    make(map[string]catalog.Platform),
		availability: make(map[string]catalog.Availability),
	}
}

func popularityOf(a catalog.Anime) int {
	if a.Popularity == nil {
		return -1 // nulls last
	}
	return *a.Popularity
}

func sortByPopularity(list []catalog.Anime) {
	sort.SliceStable(list, func(i, j int) bool {
		return popularityOf(list[i]) > popularityOf(list[j])
	})
}

func titlesOf(a catalog.Anime) []string {
	return []string{a.TitleJapanese, a.TitleEnglish, a.TitleRomaji}
}

func (s *InMemoryCatalogStore) SearchLocal(_ context.Context, variants []string) ([]catalog.Anime, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(variants) == 0 {
		return nil, nil
	}

	match := func(pred func(title, v string) bool) []catalog.Anime {
		var tier []catalog.Anime
		for _, a := range s.anime {
			found := false
			for _, t := range titlesOf(a) {
				if t == "" {
					continue
				}
				for _, v := range variants {
					if pred(t, v) {
						found = true
						break
					}
				}
				if found {
					break
				}
			}
			if found {
				tier = append(tier, a)
			}
		}
		sortByPopularity(tier)
		return tier
	}

	exact := match(func(t, v string) bool { return t == v })
	prefix := match(func(t, v string) bool {
		return strings.HasPrefix(strings.ToLower(t), strings.ToLower(v))
	})
	substr := match(func(t, v string) bool {
		return strings.Contains(strings.ToLower(t), strings.ToLower(v))
	})

	seen := make(map[string]struct{})
	var out []catalog.Anime
	for _, tier := range [][]catalog.Anime{exact, prefix, substr} {
		for _, a := range tier {
			if _, dup := seen[a.ID]; dup {
				continue
			}
			seen[a.ID] = struct{}{}
			out = append(out, a)
			if len(out) >= MaxSearchResults {
				return out, nil
			}
		}
	}
	return out, nil
}

func (s *InMemoryCatalogStore) GetAnime(_ context.Context, id string) (*catalog.Anime, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.anime[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &a, nil
}

func (s *InMemoryCatalogStore) findByExternalID(in catalog.NormalizedAnime) (catalog.Anime, bool) {
	for _, a := range s.anime {
		if in.AnilistID != nil && a.AnilistID != nil && *a.AnilistID == *in.AnilistID {
			return a, true
		}
		if in.MalID != nil && a.MalID != nil && *a.MalID == *in.MalID {
			return a, true
		}
	}
	return catalog.Anime{}, false
}

func (s *InMemoryCatalogStore) UpsertAnime(_ context.Context, in catalog.NormalizedAnime) (catalog.Anime, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC()
	status := in.Status
	if status == "" {
		status = catalog.StatusUnknown
	}
	genres := in.Genres
	if genres == nil {
		genres = []string{}
	}

	if existing, ok := s.findByExternalID(in); ok {
		title := existing.TitleJapanese
		if title == "" {
			title = in.TitleJapanese
		}
		if in.MalID != nil {
			existing.MalID = in.MalID
		}
		if in.AnilistID != nil {
			existing.AnilistID = in.AnilistID
		}
		if in.TMDBID != nil {
			existing.TMDBID = in.TMDBID
		}
		existing.TitleJapanese = title
		existing.TitleEnglish = in.TitleEnglish
		existing.TitleRomaji = in.TitleRomaji
		existing.Synopsis = in.Synopsis
		existing.ImageURL = in.ImageURL
		existing.Episodes = in.Episodes
		existing.Status = status
		existing.ReleaseYear = in.ReleaseYear
		existing.Genres = genres
		existing.Score = in.Score
		existing.Popularity = in.Popularity
		existing.DataSource = in.Source
		existing.LastSyncedAt = now
		s.anime[existing.ID] = existing
		return existing, nil
	}

	a := catalog.Anime{
		ID:            uuid.NewString(),
		MalID:         in.MalID,
		AnilistID:     in.AnilistID,
		TMDBID:        in.TMDBID,
		TitleJapanese: in.TitleJapanese,
		TitleEnglish:  in.TitleEnglish,
		TitleRomaji:   in.TitleRomaji,
		Synopsis:      in.Synopsis,
		ImageURL:      in.ImageURL,
		Episodes:      in.Episodes,
		Status:        status,
		ReleaseYear:   in.ReleaseYear,
		Genres:        genres,
		Score:         in.Score,
		Popularity:    in.Popularity,
		DataSource:    in.Source,
		LastSyncedAt:  now,
	}
	s.anime[a.ID] = a
	return a, nil
}

func (s *InMemoryCatalogStore) AnimeByAnilistIDs(_ context.Context, ids []int) ([]catalog.Anime, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	want := make(map[int]struct{}, len(ids))
	for _, id := range ids {
		want[id] = struct{}{}
	}
	var out []catalog.Anime
	for _, a := range s.anime {
		if a.AnilistID == nil {
			continue
		}
		if _, ok := want[*a.AnilistID]; ok {
			out = append(out, a)
		}
	}
	sortByPopularity(out)
	return out, nil
}

func (s *InMemoryCatalogStore) AnimeByMalID(_ context.Context, malID int) (*catalog.Anime, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, a := range s.anime {
		if a.MalID != nil && *a.MalID == malID {
			rec := a
			return &rec, nil
		}
	}
	return nil, ErrNotFound
}

func (s *InMemoryCatalogStore) UpdateAnime(_ context.Context, id string, upd AnimeUpdate) (*catalog.Anime, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.anime[id]
	if !ok {
		return nil, ErrNotFound
	}
	if upd.TitleJapanese != nil {
		a.TitleJapanese = *upd.TitleJapanese
	}
	if upd.TitleEnglish != nil {
		a.TitleEnglish = *upd.TitleEnglish
	}
	if upd.TitleRomaji != nil {
		a.TitleRomaji = *upd.TitleRomaji
	}
	if upd.Synopsis != nil {
		a.Synopsis = *upd.Synopsis
	}
	if upd.ImageURL != nil {
		a.ImageURL = *upd.ImageURL
	}
	if upd.Episodes != nil {
		a.Episodes = upd.Episodes
	}
	if upd.Status != nil {
		a.Status = *upd.Status
	}
	if upd.ReleaseYear != nil {
		a.ReleaseYear = upd.ReleaseYear
	}
	if upd.Genres != nil {
		a.Genres = *upd.Genres
	}
	s.anime[id] = a
	return &a, nil
}

func (s *InMemoryCatalogStore) DeleteAnime(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.anime[id]; !ok {
		return ErrNotFound
	}
	delete(s.anime, id)
	return nil
}

func (s *InMemoryCatalogStore) RecentlySynced(_ context.Context, source catalog.DataSource, limit int) ([]catalog.Anime, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 || limit > 100 {
		limit = 10
	}
	var out []catalog.Anime
	for _, a := range s.anime {
		if a.DataSource == source {
			out = append(out, a)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].LastSyncedAt.After(out[j].LastSyncedAt)
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *InMemoryCatalogStore) TrendingAnime(_ context.Context, limit int) ([]catalog.Anime, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 || limit > 50 {
		limit = 10
	}
	var out []catalog.Anime
	for _, a := range s.anime {
		if a.Status == catalog.StatusAiring {
			out = append(out, a)
		}
	}
	sortByPopularity(out)
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *InMemoryCatalogStore) ListAvailability(_ context.Context, animeID string) ([]AvailabilityWithPlatform, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []AvailabilityWithPlatform
	for _, av := range s.availability {
		if av.AnimeID != animeID {
			continue
		}
		p, ok := s.platforms[av.PlatformID]
		if !ok {
			continue
		}
		out = append(out, AvailabilityWithPlatform{Availability: av, Platform: p})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Platform.MonthlyPrice < out[j].Platform.MonthlyPrice
	})
	return out, nil
}

func (s *InMemoryCatalogStore) QueryAvailability(_ context.Context, animeID, platformID string) ([]catalog.Availability, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []catalog.Availability
	for _, av := range s.availability {
		if animeID != "" && av.AnimeID != animeID {
			continue
		}
		if platformID != "" && av.PlatformID != platformID {
			continue
		}
		out = append(out, av)
	}
	return out, nil
}

func (s *InMemoryCatalogStore) UpsertAvailability(_ context.Context, av catalog.Availability) (catalog.Availability, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if av.LastChecked.IsZero() {
		av.LastChecked = time.Now().UTC()
	}
	for id, cur := range s.availability {
		if cur.AnimeID == av.AnimeID && cur.PlatformID == av.PlatformID {
			av.ID = id
			s.availability[id] = av
			return av, nil
		}
	}
	if av.ID == "" {
		av.ID = uuid.NewString()
	}
	s.availability[av.ID] = av
	return av, nil
}

func (s *InMemoryCatalogStore) DeleteAvailability(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.availability[id]; !ok {
		return ErrNotFound
	}
	delete(s.availability, id)
	return nil
}

func (s *InMemoryCatalogStore) ListPlatforms(_ context.Context, onlyActive bool) ([]catalog.Platform, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []catalog.Platform
	for _, p := range s.platforms {
		if onlyActive && !p.IsActive {
			continue
		}
		out = append(out, p)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *InMemoryCatalogStore) GetPlatformByName(_ context.Context, name string) (*catalog.Platform, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, p := range s.platforms {
		if p.Name == name {
			return &p, nil
		}
	}
	return nil, ErrNotFound
}

func (s *InMemoryCatalogStore) CreatePlatform(_ context.Context, p catalog.Platform) (catalog.Platform, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	s.platforms[p.ID] = p
	return p, nil
}

func (s *InMemoryCatalogStore) UpdatePlatformPrices(_ context.Context, id string, monthly int, annual *int, freeTrial bool, freeTrialDays int, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.platforms[id]
	if !ok {
		return ErrNotFound
	}
	p.MonthlyPrice = monthly
	p.AnnualPrice = annual
	p.FreeTrial = freeTrial
	p.FreeTrialDays = freeTrialDays
	p.LastPriceCheck = &at
	s.platforms[id] = p
	return nil
}

func (s *InMemoryCatalogStore) TouchPriceCheck(_ context.Context, ids []string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, id := range ids {
		if p, ok := s.platforms[id]; ok {
			p.LastPriceCheck = &at
			s.platforms[id] = p
		}
	}
	return nil
}

func (s *InMemoryCatalogStore) InsertPriceHistory(_ context.Context, rows []catalog.PriceHistory) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, h := range rows {
		if h.ID == "" {
			h.ID = uuid.NewString()
		}
		s.history = append(s.history, h)
	}
	return nil
}

// PriceHistoryRows returns a copy of the append-only history log.
func (s *InMemoryCatalogStore) PriceHistoryRows() []catalog.PriceHistory {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]catalog.PriceHistory, len(s.history))
	copy(out, s.history)
	return out
}

func (s *InMemoryCatalogStore) RecordClick(_ context.Context, ev catalog.ClickEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if ev.ClickedAt.IsZero() {
		ev.ClickedAt = time.Now().UTC()
	}
	s.clicks = append(s.clicks, ev)
	return nil
}

// Clicks returns a copy of the recorded click events.
func (s *InMemoryCatalogStore) Clicks() []catalog.ClickEvent {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]catalog.ClickEvent, len(s.clicks))
	copy(out, s.clicks)
	return out
}

// AnimeCount reports the number of stored anime records.
func (s *InMemoryCatalogStore) AnimeCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.anime)
}
