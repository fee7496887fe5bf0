package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Davlaati/humo-ai/internal/features/dictionary/models"
	usermodels "github.com/Davlaati/humo-ai/internal/features/user/models"
	userrepo "github.com/Davlaati/humo-ai/internal/features/user/repository"
)

type stubUserRepo struct {
	users map[int64]*usermodels.User
}

func (r *stubUserRepo) GetByID(_ context.Context, id int64) (*usermodels.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, userrepo.ErrUserNotFound
	}
	return u, nil
}

func (r *stubUserRepo) Create(_ context.Context, _ *usermodels.User) error { return nil }
func (r *stubUserRepo) Update(_ context.Context, _ *usermodels.User) error { return nil }
func (r *stubUserRepo) Leaderboard(_ context.Context, _ *time.Time, _ int) ([]*usermodels.LeaderboardEntry, error) {
	return nil, nil
}

type stubGenerator struct {
	response string
	err      error
	prompts  []string
}

func (g *stubGenerator) GenerateContent(_ context.Context, prompt string) (string, error) {
	g.prompts = append(g.prompts, prompt)
	if g.err != nil {
		return "", g.err
	}
	return g.response, nil
}

type memoryCache struct {
	entries map[string]*models.Entry
}

func newMemoryCache() *memoryCache {
	return &memoryCache{entries: map[string]*models.Entry{}}
}

func (c *memoryCache) Get(_ context.Context, userID int64, word string) (*models.Entry, error) {
	e, ok := c.entries[word]
	if !ok {
		return nil, errors.New("cache miss")
	}
	return e, nil
}

func (c *memoryCache) Set(_ context.Context, userID int64, word string, e *models.Entry) error {
	c.entries[word] = e
	return nil
}

func seededRepo() *stubUserRepo {
	u := usermodels.NewUser(7, "Malika", "malika", time.Now())
	u.Level = usermodels.LevelIntermediate
	u.Interests = []string{"music", "travel"}
	return &stubUserRepo{users: map[int64]*usermodels.User{7: u}}
}

func TestLookupGeneratesAndCaches(t *testing.T) {
	gen := &stubGenerator{response: `{"translation":"хона","definition":"A place where one lives.","examples":["I went home.","Home is where the band rehearses."]}`}
	cache := newMemoryCache()
	svc := NewDictionaryService(seededRepo(), gen, cache)

	entry, err := svc.Lookup(context.Background(), 7, " home ")
	require.NoError(t, err)
	assert.Equal(t, "home", entry.Word, "input word is trimmed")
	assert.Equal(t, "хона", entry.Translation)
	assert.Equal(t, string(usermodels.LevelIntermediate), entry.Level)

	require.Len(t, gen.prompts, 1)
	assert.Contains(t, gen.prompts[0], "Intermediate-level")
	assert.Contains(t, gen.prompts[0], "music, travel")

	_, ok := cache.entries["home"]
	assert.True(t, ok, "successful lookups are cached")
}

func TestLookupServesFromCache(t *testing.T) {
	gen := &stubGenerator{}
	cache := newMemoryCache()
	cache.entries["home"] = &models.Entry{Word: "home", Definition: "cached"}
	svc := NewDictionaryService(seededRepo(), gen, cache)

	entry, err := svc.Lookup(context.Background(), 7, "home")
	require.NoError(t, err)
	assert.Equal(t, "cached", entry.Definition)
	assert.Empty(t, gen.prompts, "cache hits never reach the generator")
}

func TestLookupStripsMarkdownFence(t *testing.T) {
	gen := &stubGenerator{response: "```json\n{\"translation\":\"об\",\"definition\":\"A clear liquid.\",\"examples\":[]}\n```"}
	svc := NewDictionaryService(seededRepo(), gen, newMemoryCache())

	entry, err := svc.Lookup(context.Background(), 7, "water")
	require.NoError(t, err)
	assert.Equal(t, "об", entry.Translation)
}

func TestLookupProviderFailure(t *testing.T) {
	gen := &stubGenerator{err: errors.New("quota exceeded")}
	svc := NewDictionaryService(seededRepo(), gen, newMemoryCache())

	_, err := svc.Lookup(context.Background(), 7, "home")
	assert.ErrorIs(t, err, ErrProviderUnavailable)
}

func TestLookupMalformedResponse(t *testing.T) {
	for _, response := range []string{"not json at all", `{"translation":"x"}`} {
		gen := &stubGenerator{response: response}
		svc := NewDictionaryService(seededRepo(), gen, newMemoryCache())

		_, err := svc.Lookup(context.Background(), 7, "home")
		assert.ErrorIs(t, err, ErrMalformedResponse)
	}
}

func TestLookupUnknownUser(t *testing.T) {
	svc := NewDictionaryService(&stubUserRepo{users: map[int64]*usermodels.User{}}, &stubGenerator{}, newMemoryCache())

	_, err := svc.Lookup(context.Background(), 404, "home")
	assert.ErrorIs(t, err, ErrUnknownUser)
}
