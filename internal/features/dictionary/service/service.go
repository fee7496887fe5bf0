package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	goredis "github.com/redis/go-redis/v9"

	"github.com/Davlaati/humo-ai/internal/common/logger"
	"github.com/Davlaati/humo-ai/internal/features/dictionary/models"
	userrepo "github.com/Davlaati/humo-ai/internal/features/user/repository"
)

var (
	ErrProviderUnavailable = errors.New("language model unavailable")
	ErrMalformedResponse   = errors.New("language model returned malformed content")
	ErrUnknownUser         = errors.New("user not found")
)

// ContentGenerator produces text for a prompt. Implemented by the
// platform Gemini client.
type ContentGenerator interface {
	GenerateContent(ctx context.Context, prompt string) (string, error)
}

// EntryCache is the lookup cache. Implemented by the Redis entry cache.
type EntryCache interface {
	Get(ctx context.Context, userID int64, word string) (*models.Entry, error)
	Set(ctx context.Context, userID int64, word string, e *models.Entry) error
}

type DictionaryService interface {
	Lookup(ctx context.Context, userID int64, word string) (*models.Entry, error)
}

type dictionaryService struct {
	users     userrepo.UserRepository
	generator ContentGenerator
	cache     EntryCache
}

func NewDictionaryService(users userrepo.UserRepository, generator ContentGenerator, cache EntryCache) DictionaryService {
	return &dictionaryService{users: users, generator: generator, cache: cache}
}

// Lookup serves a personalized dictionary entry, consulting the cache
// first. Cache failures degrade to a generator call; they never fail the
// lookup.
func (s *dictionaryService) Lookup(ctx context.Context, userID int64, word string) (*models.Entry, error) {
	word = strings.TrimSpace(word)

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, userrepo.ErrUserNotFound) {
			return nil, ErrUnknownUser
		}
		return nil, err
	}

	if s.cache != nil {
		cached, err := s.cache.Get(ctx, userID, word)
		if err == nil && cached != nil {
			return cached, nil
		}
		if err != nil && !errors.Is(err, goredis.Nil) {
			logger.Warn().Err(err).Msg("Dictionary cache read failed")
		}
	}

	prompt := buildPrompt(word, string(user.Level), user.Interests)

	raw, err := s.generator.GenerateContent(ctx, prompt)
	if err != nil {
		logger.Error().Err(err).Str("word", word).Msg("Dictionary generation failed")
		return nil, ErrProviderUnavailable
	}

	entry, err := parseEntry(raw)
	if err != nil {
		logger.Error().Err(err).Str("word", word).Msg("Dictionary response unparsable")
		return nil, ErrMalformedResponse
	}
	entry.Word = word
	entry.Level = string(user.Level)

	if s.cache != nil {
		if err := s.cache.Set(ctx, userID, word, entry); err != nil {
			logger.Warn().Err(err).Msg("Dictionary cache write failed")
		}
	}

	return entry, nil
}

func buildPrompt(word, level string, interests []string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Explain the English word %q for a %s-level learner.", word, level)
	if len(interests) > 0 {
		fmt.Fprintf(&b, " The learner is interested in %s; pick example sentences from those topics.", strings.Join(interests, ", "))
	}
	b.WriteString(` Respond with a single JSON object, no markdown fences, with keys: "translation" (Tajik translation), "definition" (one plain sentence), "examples" (array of two short sentences).`)
	return b.String()
}

// parseEntry decodes the model output strictly; any deviation from the
// requested JSON shape is rejected rather than patched up.
func parseEntry(raw string) (*models.Entry, error) {
	raw = strings.TrimSpace(raw)
	// Models occasionally fence the JSON despite instructions.
	raw = strings.TrimPrefix(raw, "```json")
	raw = strings.TrimPrefix(raw, "```")
	raw = strings.TrimSuffix(raw, "```")
	raw = strings.TrimSpace(raw)

	var entry models.Entry
	if err := json.Unmarshal([]byte(raw), &entry); err != nil {
		return nil, fmt.Errorf("failed to decode entry: %w", err)
	}
	if entry.Definition == "" {
		return nil, fmt.Errorf("entry has no definition")
	}
	return &entry, nil
}
