package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/vadimbarashkov/online-tools/internal/entity"
	"github.com/vadimbarashkov/online-tools/pkg/urlnorm"
)

const (
	DefaultStorageKey   = "url-shortener-history"
	DefaultHistoryLimit = 10
	DefaultMaxAttempts  = 100
)

type historyStorage interface {
	Load(ctx context.Context, key string) (string, error)
	Save(ctx context.Context, key, value string) error
	Remove(ctx context.Context, key string) error
}

type codeGenerator interface {
	Generate() (string, error)
}

// historyRecord is the persisted form of entity.ShortenedURL.
type historyRecord struct {
	ID          string `json:"id"`
	OriginalURL string `json:"originalUrl"`
	ShortCode   string `json:"shortCode"`
	CreatedAt   int64  `json:"createdAt"`
	Clicks      int64  `json:"clicks,omitempty"`
}

type HistoryOption func(*HistoryUseCase)

func WithStorageKey(key string) HistoryOption {
	return func(uc *HistoryUseCase) {
		uc.storageKey = key
	}
}

func WithHistoryLimit(n int) HistoryOption {
	return func(uc *HistoryUseCase) {
		uc.limit = n
	}
}

func WithMaxAttempts(n int) HistoryOption {
	return func(uc *HistoryUseCase) {
		uc.maxAttempts = n
	}
}

func WithClock(now func() time.Time) HistoryOption {
	return func(uc *HistoryUseCase) {
		uc.now = now
	}
}

// HistoryUseCase keeps a capped, most-recent-first list of shortened URLs per
// session and persists it through a key/value storage.
type HistoryUseCase struct {
	storage     historyStorage
	generator   codeGenerator
	logger      *slog.Logger
	storageKey  string
	limit       int
	maxAttempts int
	now         func() time.Time
	inFlight    sync.Map
}

func NewHistoryUseCase(storage historyStorage, generator codeGenerator, logger *slog.Logger, opts ...HistoryOption) *HistoryUseCase {
	uc := &HistoryUseCase{
		storage:     storage,
		generator:   generator,
		logger:      logger,
		storageKey:  DefaultStorageKey,
		limit:       DefaultHistoryLimit,
		maxAttempts: DefaultMaxAttempts,
		now:         time.Now,
	}

	for _, opt := range opts {
		opt(uc)
	}

	return uc
}

func (uc *HistoryUseCase) key(sessionID string) string {
	if sessionID == "" {
		return uc.storageKey
	}
	return uc.storageKey + ":" + sessionID
}

// Submit shortens rawURL within the session's history. Resubmitting a URL
// already in the history moves its record to the front unchanged.
func (uc *HistoryUseCase) Submit(ctx context.Context, sessionID, rawURL string) (*entity.ShortenedURL, error) {
	const op = "usecase.HistoryUseCase.Submit"

	originalURL, err := urlnorm.Normalize(rawURL)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	key := uc.key(sessionID)

	if _, busy := uc.inFlight.LoadOrStore(key, struct{}{}); busy {
		return nil, fmt.Errorf("%s: %w", op, entity.ErrSubmissionInFlight)
	}
	defer uc.inFlight.Delete(key)

	history := uc.load(ctx, key)

	var url entity.ShortenedURL

	if i := indexOf(history, originalURL); i >= 0 {
		url = history[i]
		history = append(history[:i], history[i+1:]...)
	} else {
		shortCode, err := uc.allocate(history)
		if err != nil {
			uc.logger.Error("failed to allocate short code",
				slog.String("op", op),
				slog.Any("err", err),
			)
			return nil, fmt.Errorf("%s: %w", op, err)
		}

		url = entity.ShortenedURL{
			ID:          uuid.NewString(),
			OriginalURL: originalURL,
			ShortCode:   shortCode,
			CreatedAt:   time.UnixMilli(uc.now().UnixMilli()),
		}
	}

	history = append([]entity.ShortenedURL{url}, history...)
	if len(history) > uc.limit {
		history = history[:uc.limit]
	}

	uc.save(ctx, key, history)

	return &url, nil
}

// Load returns the session's history, most recent first. Unreadable or
// corrupted history is reported as empty.
func (uc *HistoryUseCase) Load(ctx context.Context, sessionID string) []entity.ShortenedURL {
	return uc.load(ctx, uc.key(sessionID))
}

// Delete removes the record with the given id. Unknown ids are ignored.
func (uc *HistoryUseCase) Delete(ctx context.Context, sessionID, id string) {
	key := uc.key(sessionID)
	history := uc.load(ctx, key)

	i := -1
	for j := range history {
		if history[j].ID == id {
			i = j
			break
		}
	}
	if i < 0 {
		return
	}

	history = append(history[:i], history[i+1:]...)
	uc.save(ctx, key, history)
}

// Clear drops the whole history of the session.
func (uc *HistoryUseCase) Clear(ctx context.Context, sessionID string) {
	const op = "usecase.HistoryUseCase.Clear"

	if err := uc.storage.Remove(ctx, uc.key(sessionID)); err != nil {
		uc.logger.Warn("failed to remove history",
			slog.String("op", op),
			slog.Any("err", err),
		)
	}
}

func (uc *HistoryUseCase) allocate(history []entity.ShortenedURL) (string, error) {
	const op = "usecase.HistoryUseCase.allocate"

	taken := make(map[string]struct{}, len(history))
	for _, url := range history {
		taken[url.ShortCode] = struct{}{}
	}

	for i := 0; i < uc.maxAttempts; i++ {
		code, err := uc.generator.Generate()
		if err != nil {
			return "", fmt.Errorf("%s: failed to generate short code: %w", op, err)
		}

		if _, ok := taken[code]; !ok {
			return code, nil
		}
	}

	return "", fmt.Errorf("%s: %w", op, entity.ErrAllocationExhausted)
}

func (uc *HistoryUseCase) load(ctx context.Context, key string) []entity.ShortenedURL {
	const op = "usecase.HistoryUseCase.load"

	data, err := uc.storage.Load(ctx, key)
	if err != nil {
		if !errors.Is(err, entity.ErrKeyNotFound) {
			uc.logger.Warn("failed to load history",
				slog.String("op", op),
				slog.Any("err", err),
			)
		}
		return []entity.ShortenedURL{}
	}

	var records []historyRecord
	if err := json.Unmarshal([]byte(data), &records); err != nil {
		uc.logger.Warn("failed to decode history",
			slog.String("op", op),
			slog.Any("err", err),
		)
		return []entity.ShortenedURL{}
	}

	history := make([]entity.ShortenedURL, 0, len(records))
	for _, rec := range records {
		history = append(history, entity.ShortenedURL{
			ID:          rec.ID,
			OriginalURL: rec.OriginalURL,
			ShortCode:   rec.ShortCode,
			CreatedAt:   time.UnixMilli(rec.CreatedAt),
			Clicks:      rec.Clicks,
		})
	}

	return history
}

func (uc *HistoryUseCase) save(ctx context.Context, key string, history []entity.ShortenedURL) {
	const op = "usecase.HistoryUseCase.save"

	records := make([]historyRecord, 0, len(history))
	for _, url := range history {
		records = append(records, historyRecord{
			ID:          url.ID,
			OriginalURL: url.OriginalURL,
			ShortCode:   url.ShortCode,
			CreatedAt:   url.CreatedAt.UnixMilli(),
			Clicks:      url.Clicks,
		})
	}

	data, err := json.Marshal(records)
	if err != nil {
		uc.logger.Warn("failed to encode history", slog.String("op", op), slog.Any("err", err))
		return
	}

	if err := uc.storage.Save(ctx, key, string(data)); err != nil {
		uc.logger.Warn("failed to save history",
			slog.String("op", op),
			slog.Any("err", err),
		)
	}
}

func indexOf(history []entity.ShortenedURL, originalURL string) int {
	for i := range history {
		if history[i].OriginalURL == originalURL {
			return i
		}
	}
	return -1
}
