package usecase

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
	"github.com/vadimbarashkov/online-tools/internal/adapter/repository/memory"
	"github.com/vadimbarashkov/online-tools/internal/entity"
	"github.com/vadimbarashkov/online-tools/pkg/shortcode"
	"github.com/vadimbarashkov/online-tools/pkg/urlnorm"
)

type MockHistoryStorage struct {
	mock.Mock
}

func (s *MockHistoryStorage) Load(ctx context.Context, key string) (string, error) {
	args := s.Called(ctx, key)
	return args.String(0), args.Error(1)
}

func (s *MockHistoryStorage) Save(ctx context.Context, key, value string) error {
	args := s.Called(ctx, key, value)
	return args.Error(0)
}

func (s *MockHistoryStorage) Remove(ctx context.Context, key string) error {
	args := s.Called(ctx, key)
	return args.Error(0)
}

// sequenceGenerator returns the queued codes in order.
type sequenceGenerator struct {
	codes []string
	err   error
	calls int
}

func (g *sequenceGenerator) Generate() (string, error) {
	g.calls++
	if g.err != nil {
		return "", g.err
	}
	code := g.codes[0]
	if len(g.codes) > 1 {
		g.codes = g.codes[1:]
	}
	return code, nil
}

type HistoryUseCaseTestSuite struct {
	suite.Suite
	ctx        context.Context
	logger     *slog.Logger
	errUnknown error
	storage    *memory.Storage
	generator  *shortcode.Generator
	uc         *HistoryUseCase
}

func (suite *HistoryUseCaseTestSuite) SetupSuite() {
	suite.ctx = context.Background()
	suite.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	suite.errUnknown = errors.New("unknown error")
}

func (suite *HistoryUseCaseTestSuite) SetupSubTest() {
	var err error

	suite.generator, err = shortcode.New(shortcode.DefaultLength)
	suite.Require().NoError(err)

	suite.storage = memory.NewStorage()
	suite.uc = NewHistoryUseCase(suite.storage, suite.generator, suite.logger)
}

func (suite *HistoryUseCaseTestSuite) TestSubmit() {
	suite.Run("empty input", func() {
		url, err := suite.uc.Submit(suite.ctx, "s1", "   ")

		suite.Error(err)
		suite.ErrorIs(err, urlnorm.ErrEmptyInput)
		suite.Nil(url)
		suite.Empty(suite.uc.Load(suite.ctx, "s1"))
	})

	suite.Run("invalid url", func() {
		url, err := suite.uc.Submit(suite.ctx, "s1", "not a url")

		suite.Error(err)
		suite.ErrorIs(err, urlnorm.ErrInvalidURL)
		suite.Nil(url)
		suite.Empty(suite.uc.Load(suite.ctx, "s1"))
	})

	suite.Run("scheme added", func() {
		url, err := suite.uc.Submit(suite.ctx, "s1", "google.com")

		suite.NoError(err)
		suite.Require().NotNil(url)
		suite.Equal("https://google.com", url.OriginalURL)
		suite.Regexp("^[a-zA-Z0-9]{6}$", url.ShortCode)
		suite.NotEmpty(url.ID)
		suite.Zero(url.Clicks)
	})

	suite.Run("created at has millisecond precision", func() {
		now := time.Date(2024, 5, 1, 12, 30, 0, 123456789, time.UTC)
		uc := NewHistoryUseCase(suite.storage, suite.generator, suite.logger, WithClock(func() time.Time {
			return now
		}))

		url, err := uc.Submit(suite.ctx, "s1", "https://example.com")

		suite.NoError(err)
		suite.Equal(now.UnixMilli(), url.CreatedAt.UnixMilli())
		suite.Equal(0, url.CreatedAt.Nanosecond()%int(time.Millisecond))
	})

	suite.Run("resubmission moves record to front", func() {
		first, err := suite.uc.Submit(suite.ctx, "s1", "https://a.example.com")
		suite.Require().NoError(err)
		_, err = suite.uc.Submit(suite.ctx, "s1", "https://b.example.com")
		suite.Require().NoError(err)

		again, err := suite.uc.Submit(suite.ctx, "s1", "a.example.com")

		suite.NoError(err)
		suite.Equal(first.ID, again.ID)
		suite.Equal(first.ShortCode, again.ShortCode)

		history := suite.uc.Load(suite.ctx, "s1")
		suite.Len(history, 2)
		suite.Equal("https://a.example.com", history[0].OriginalURL)
		suite.Equal("https://b.example.com", history[1].OriginalURL)
	})

	suite.Run("history is capped", func() {
		for i := 0; i < 11; i++ {
			_, err := suite.uc.Submit(suite.ctx, "s1", fmt.Sprintf("https://example.com/%d", i))
			suite.Require().NoError(err)
		}

		history := suite.uc.Load(suite.ctx, "s1")

		suite.Len(history, DefaultHistoryLimit)
		for i, url := range history {
			suite.Equal(fmt.Sprintf("https://example.com/%d", 10-i), url.OriginalURL)
		}
	})

	suite.Run("sessions are isolated", func() {
		_, err := suite.uc.Submit(suite.ctx, "s1", "https://example.com")
		suite.Require().NoError(err)

		suite.Len(suite.uc.Load(suite.ctx, "s1"), 1)
		suite.Empty(suite.uc.Load(suite.ctx, "s2"))
		suite.Empty(suite.uc.Load(suite.ctx, ""))
	})

	suite.Run("collision is rerolled", func() {
		gen := &sequenceGenerator{codes: []string{"aaaaaa", "aaaaaa", "bbbbbb"}}
		uc := NewHistoryUseCase(suite.storage, gen, suite.logger)

		first, err := uc.Submit(suite.ctx, "s1", "https://a.example.com")
		suite.Require().NoError(err)

		second, err := uc.Submit(suite.ctx, "s1", "https://b.example.com")

		suite.NoError(err)
		suite.Equal("aaaaaa", first.ShortCode)
		suite.Equal("bbbbbb", second.ShortCode)
		suite.Equal(3, gen.calls)
	})

	suite.Run("allocation exhausted", func() {
		gen := &sequenceGenerator{codes: []string{"aaaaaa"}}
		uc := NewHistoryUseCase(suite.storage, gen, suite.logger, WithMaxAttempts(3))

		_, err := uc.Submit(suite.ctx, "s1", "https://a.example.com")
		suite.Require().NoError(err)

		url, err := uc.Submit(suite.ctx, "s1", "https://b.example.com")

		suite.Error(err)
		suite.ErrorIs(err, entity.ErrAllocationExhausted)
		suite.Nil(url)
		suite.Equal(4, gen.calls)
		suite.Len(uc.Load(suite.ctx, "s1"), 1)
	})

	suite.Run("generator error", func() {
		gen := &sequenceGenerator{err: suite.errUnknown}
		uc := NewHistoryUseCase(suite.storage, gen, suite.logger)

		url, err := uc.Submit(suite.ctx, "s1", "https://example.com")

		suite.Error(err)
		suite.ErrorIs(err, suite.errUnknown)
		suite.Nil(url)
	})

	suite.Run("submission in flight", func() {
		uc := NewHistoryUseCase(suite.storage, suite.generator, suite.logger)
		uc.inFlight.Store(uc.key("s1"), struct{}{})

		url, err := uc.Submit(suite.ctx, "s1", "https://example.com")

		suite.Error(err)
		suite.ErrorIs(err, entity.ErrSubmissionInFlight)
		suite.Nil(url)

		url, err = uc.Submit(suite.ctx, "s2", "https://example.com")

		suite.NoError(err)
		suite.NotNil(url)
	})

	suite.Run("concurrent submission refused", func() {
		entered := make(chan struct{})
		release := make(chan struct{})

		storage := new(MockHistoryStorage)
		storage.On("Load", mock.Anything, DefaultStorageKey+":s1").
			Once().
			Run(func(mock.Arguments) {
				close(entered)
				<-release
			}).
			Return("", entity.ErrKeyNotFound)
		storage.On("Save", mock.Anything, DefaultStorageKey+":s1", mock.Anything).
			Once().
			Return(nil)
		uc := NewHistoryUseCase(storage, suite.generator, suite.logger)

		type result struct {
			url *entity.ShortenedURL
			err error
		}
		first := make(chan result, 1)

		go func() {
			url, err := uc.Submit(suite.ctx, "s1", "https://a.example.com")
			first <- result{url: url, err: err}
		}()

		<-entered

		url, err := uc.Submit(suite.ctx, "s1", "https://b.example.com")

		suite.ErrorIs(err, entity.ErrSubmissionInFlight)
		suite.Nil(url)

		close(release)
		res := <-first

		suite.NoError(res.err)
		suite.Require().NotNil(res.url)
		suite.Equal("https://a.example.com", res.url.OriginalURL)
		storage.AssertExpectations(suite.T())
	})

	suite.Run("guard released after submit", func() {
		_, err := suite.uc.Submit(suite.ctx, "s1", "https://a.example.com")
		suite.Require().NoError(err)

		_, err = suite.uc.Submit(suite.ctx, "s1", "https://b.example.com")
		suite.NoError(err)
	})

	suite.Run("storage failures are not surfaced", func() {
		storage := new(MockHistoryStorage)
		storage.On("Load", suite.ctx, DefaultStorageKey).Once().Return("", suite.errUnknown)
		storage.On("Save", suite.ctx, DefaultStorageKey, mock.Anything).Once().Return(suite.errUnknown)
		uc := NewHistoryUseCase(storage, suite.generator, suite.logger)

		url, err := uc.Submit(suite.ctx, "", "https://example.com")

		suite.NoError(err)
		suite.NotNil(url)
		storage.AssertExpectations(suite.T())
	})
}

func (suite *HistoryUseCaseTestSuite) TestLoad() {
	suite.Run("empty", func() {
		history := suite.uc.Load(suite.ctx, "s1")

		suite.NotNil(history)
		suite.Empty(history)
	})

	suite.Run("corrupted data", func() {
		suite.Require().NoError(suite.storage.Save(suite.ctx, DefaultStorageKey+":s1", "{not json"))

		suite.Empty(suite.uc.Load(suite.ctx, "s1"))
	})

	suite.Run("persisted layout", func() {
		data := `[{"id":"abc123","originalUrl":"https://example.com","shortCode":"abc123","createdAt":1714566600123,"clicks":4}]`
		suite.Require().NoError(suite.storage.Save(suite.ctx, DefaultStorageKey+":s1", data))

		history := suite.uc.Load(suite.ctx, "s1")

		suite.Require().Len(history, 1)
		suite.Equal("abc123", history[0].ID)
		suite.Equal("https://example.com", history[0].OriginalURL)
		suite.Equal("abc123", history[0].ShortCode)
		suite.Equal(int64(1714566600123), history[0].CreatedAt.UnixMilli())
		suite.Equal(int64(4), history[0].Clicks)
	})

	suite.Run("round trip", func() {
		for _, u := range []string{"https://a.example.com", "https://b.example.com", "https://c.example.com"} {
			_, err := suite.uc.Submit(suite.ctx, "s1", u)
			suite.Require().NoError(err)
		}

		before := suite.uc.Load(suite.ctx, "s1")
		after := suite.uc.Load(suite.ctx, "s1")

		suite.Equal(before, after)

		data, err := suite.storage.Load(suite.ctx, DefaultStorageKey+":s1")
		suite.Require().NoError(err)
		suite.Contains(data, `"originalUrl":"https://c.example.com"`)
		suite.NotContains(data, `"clicks"`)
	})
}

func (suite *HistoryUseCaseTestSuite) TestDelete() {
	suite.Run("removes one record", func() {
		var ids []string
		for _, u := range []string{"https://a.example.com", "https://b.example.com", "https://c.example.com"} {
			url, err := suite.uc.Submit(suite.ctx, "s1", u)
			suite.Require().NoError(err)
			ids = append(ids, url.ID)
		}
		before := suite.uc.Load(suite.ctx, "s1")

		suite.uc.Delete(suite.ctx, "s1", ids[1])

		after := suite.uc.Load(suite.ctx, "s1")
		suite.Len(after, 2)
		suite.Equal(before[0], after[0])
		suite.Equal(before[2], after[1])
	})

	suite.Run("unknown id", func() {
		_, err := suite.uc.Submit(suite.ctx, "s1", "https://example.com")
		suite.Require().NoError(err)
		before := suite.uc.Load(suite.ctx, "s1")

		suite.uc.Delete(suite.ctx, "s1", "missing")

		suite.Equal(before, suite.uc.Load(suite.ctx, "s1"))
	})
}

func (suite *HistoryUseCaseTestSuite) TestClear() {
	suite.Run("success", func() {
		_, err := suite.uc.Submit(suite.ctx, "s1", "https://example.com")
		suite.Require().NoError(err)

		suite.uc.Clear(suite.ctx, "s1")

		suite.Empty(suite.uc.Load(suite.ctx, "s1"))
	})

	suite.Run("storage error", func() {
		storage := new(MockHistoryStorage)
		storage.On("Remove", suite.ctx, DefaultStorageKey+":s1").Once().Return(suite.errUnknown)
		uc := NewHistoryUseCase(storage, suite.generator, suite.logger)

		suite.NotPanics(func() {
			uc.Clear(suite.ctx, "s1")
		})
		storage.AssertExpectations(suite.T())
	})
}

func TestHistoryUseCase(t *testing.T) {
	suite.Run(t, new(HistoryUseCaseTestSuite))
}
