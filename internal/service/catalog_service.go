package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Oksidation/iq-testing-app/internal/config"
	"github.com/Oksidation/iq-testing-app/internal/model"
	"github.com/Oksidation/iq-testing-app/internal/repository"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// ErrTestNotFound indicates the requested test does not exist.
var ErrTestNotFound = errors.New("test not found")

// testPaperTTL bounds staleness of the cached taker-facing paper. Question
// sets change only via seed tooling, so a long TTL is fine.
const testPaperTTL = 12 * time.Hour

// CatalogService serves the test catalog and the cached taker-facing papers.
type CatalogService struct {
	tests     *repository.TestRepository
	questions *repository.QuestionRepository
	rdb       *redis.Client
	log       zerolog.Logger
}

// NewCatalogService creates a new CatalogService.
func NewCatalogService(tests *repository.TestRepository, questions *repository.QuestionRepository, rdb *redis.Client, log zerolog.Logger) *CatalogService {
	return &CatalogService{
		tests:     tests,
		questions: questions,
		rdb:       rdb,
		log:       log.With().Str("component", "catalog_service").Logger(),
	}
}

// ListTests returns all tests in the catalog.
func (s *CatalogService) ListTests(ctx context.Context) ([]model.Test, error) {
	return s.tests.List(ctx)
}

// GetTest returns one test by id.
func (s *CatalogService) GetTest(ctx context.Context, id uuid.UUID) (*model.Test, error) {
	t, err := s.tests.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrTestNotFound
		}
		return nil, err
	}
	return t, nil
}

// GetTestPaper returns the taker-facing paper for a test, served from Redis
// when cached. A cache miss rebuilds the paper from Postgres and repopulates
// the cache; Redis failures degrade to a direct DB read.
func (s *CatalogService) GetTestPaper(ctx context.Context, testID uuid.UUID) (*model.TestPaper, error) {
	cacheKey := config.CacheKey.TestPaperKey(testID.String())

	cached, err := s.rdb.Get(ctx, cacheKey).Result()
	if err == nil {
		var paper model.TestPaper
		if err := json.Unmarshal([]byte(cached), &paper); err == nil {
			return &paper, nil
		}
		// Corrupt cache entry: drop it and rebuild.
		s.rdb.Del(ctx, cacheKey)
	} else if !errors.Is(err, redis.Nil) {
		s.log.Warn().Err(err).Str("test_id", testID.String()).Msg("Paper cache read failed, falling back to DB")
	}

	paper, err := s.buildTestPaper(ctx, testID)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(paper); err == nil {
		if err := s.rdb.Set(ctx, cacheKey, data, testPaperTTL).Err(); err != nil {
			s.log.Warn().Err(err).Str("test_id", testID.String()).Msg("Paper cache write failed")
		}
	}

	return paper, nil
}

// PrewarmPapers populates the paper cache for every test in the catalog.
// Called at startup so first takers do not pay the build cost.
func (s *CatalogService) PrewarmPapers(ctx context.Context) error {
	tests, err := s.tests.List(ctx)
	if err != nil {
		return fmt.Errorf("list tests: %w", err)
	}

	for _, t := range tests {
		if _, err := s.GetTestPaper(ctx, t.ID); err != nil {
			s.log.Warn().Err(err).Str("test_id", t.ID.String()).Msg("Paper prewarm failed")
			continue
		}
	}

	s.log.Info().Int("tests", len(tests)).Msg("Test papers prewarmed")
	return nil
}

func (s *CatalogService) buildTestPaper(ctx context.Context, testID uuid.UUID) (*model.TestPaper, error) {
	t, err := s.GetTest(ctx, testID)
	if err != nil {
		return nil, err
	}

	questions, err := s.questions.ListByTest(ctx, testID)
	if err != nil {
		return nil, fmt.Errorf("list questions: %w", err)
	}

	paper := &model.TestPaper{
		TestID:          t.ID,
		Title:           t.Title,
		Kind:            t.Kind,
		QuestionSeconds: t.QuestionSeconds,
		Questions:       make([]model.QuestionForTaker, 0, len(questions)),
	}
	for i := range questions {
		paper.Questions = append(paper.Questions, questions[i].ForTaker())
	}
	return paper, nil
}
