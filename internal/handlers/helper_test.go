package handlers

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	jwt "github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"github.com/example/anistream/internal/affiliate"
	"github.com/example/anistream/internal/catalog"
	"github.com/example/anistream/internal/platform/auth"
	"github.com/example/anistream/internal/platform/httpserver"
	"github.com/example/anistream/internal/pricing"
	"github.com/example/anistream/internal/resolve"
	"github.com/example/anistream/internal/seasonal"
	"github.com/example/anistream/internal/store"
)

const testSecret = "test-secret"
const testCronSecret = "cron-secret"

type fakeSearcher struct {
	results []catalog.NormalizedAnime
	calls   int
}

func (f *fakeSearcher) Search(_ context.Context, _ string, _, _ int) []catalog.NormalizedAnime {
	f.calls++
	return f.results
}

type fakePlatformSource struct {
	platforms []catalog.NormalizedPlatform
}

func (f *fakePlatformSource) PlatformsByTitle(_ context.Context, _ string) []catalog.NormalizedPlatform {
	return f.platforms
}

type fakeLister struct {
	listing []catalog.NormalizedAnime
	err     error
	calls   int
}

func (f *fakeLister) Season(_ context.Context, _ string) ([]catalog.NormalizedAnime, error) {
	f.calls++
	return f.listing, f.err
}

type testEnv struct {
	store    *store.InMemoryCatalogStore
	searcher *fakeSearcher
	tmdb     *fakePlatformSource
	anilist  *fakePlatformSource
	lister   *fakeLister
	handler  http.Handler
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	log := zap.NewNop()
	st := store.NewInMemoryCatalogStore()
	searcher := &fakeSearcher{}
	tmdbSrc := &fakePlatformSource{}
	anilistSrc := &fakePlatformSource{}
	lister := &fakeLister{}

	pipeline := &resolve.Pipeline{
		Store:   st,
		AniList: searcher,
		Sources: map[string]resolve.PlatformSource{
			"tmdb":    tmdbSrc,
			"anilist": anilistSrc,
		},
		LookupOrder: resolve.ParseLookupOrder(""),
		Log:         log,
	}

	h := &Handlers{
		Store:     st,
		Pipeline:  pipeline,
		Checker:   pricing.NewChecker(st, nil, log),
		Syncer:    seasonal.NewSyncer(st, lister, nil, log),
		Cache:     nil,
		Analytics: nil,
		Affiliate: affiliate.Config{},
		Log:       log,
	}

	r := chi.NewRouter()
	httpserver.SetupRouter(r)
	h.Mount(r, RouteConfig{
		Verifier:    auth.JWTVerifier{Secret: []byte(testSecret)},
		CronSecret:  testCronSecret,
		EnforceCron: true,
	})
	return &testEnv{store: st, searcher: searcher, tmdb: tmdbSrc, anilist: anilistSrc, lister: lister, handler: r}
}

func signToken(t *testing.T, subject, role string) string {
	t.Helper()
	claims := auth.Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
		Role: role,
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("signing token: %v", err)
	}
	return token
}

func intp(v int) *int { return &v }

func seedAnime(t *testing.T, st *store.InMemoryCatalogStore, title string, anilistID int) catalog.Anime {
	t.Helper()
	a, err := st.UpsertAnime(context.Background(), catalog.NormalizedAnime{
		AnilistID:     intp(anilistID),
		TitleJapanese: title,
		Status:        catalog.StatusFinished,
		Source:        catalog.SourceAniList,
	})
	if err != nil {
		t.Fatalf("seed anime: %v", err)
	}
	return a
}
