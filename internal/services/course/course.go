// Package course содержит бизнес-логику каталога курсов с кешированием чтений.
package course

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/magabrotheeeer/course-access/internal/lib/sl"
	"github.com/magabrotheeeer/course-access/internal/models"
)

// CourseRepository определяет методы для работы с курсами в хранилище.
type CourseRepository interface {
	// CreateCourse добавляет новый курс и возвращает его ID.
	CreateCourse(ctx context.Context, course models.Course) (int, error)
	// ReadCourse возвращает курс по ID.
	ReadCourse(ctx context.Context, id int) (*models.Course, error)
	// ListPublishedCourses возвращает опубликованные курсы с пагинацией.
	ListPublishedCourses(ctx context.Context, limit, offset int) ([]*models.Course, error)
}

// Cache описывает методы для кэширования данных.
type Cache interface {
	// Get пытается получить значение из кеша по ключу.
	Get(key string, result any) (bool, error)
	// Set сохраняет значение в кеш с временем жизни.
	Set(key string, value any, expiration time.Duration) error
	// Invalidate удаляет значение из кеша по ключу.
	Invalidate(key string) error
}

// DefaultPageSize — размер страницы каталога по умолчанию.
// Кешируется только первая страница этого размера.
const DefaultPageSize = 20

const catalogCacheKey = "courses:published:first"

// Service реализует бизнес-логику каталога курсов, включая кеширование.
type Service struct {
	repo  CourseRepository
	cache Cache
	log   *slog.Logger
}

// New создает новый экземпляр Service.
func New(repo CourseRepository, cache Cache, log *slog.Logger) *Service {
	return &Service{
		repo:  repo,
		cache: cache,
		log:   log,
	}
}

// Create создает новый курс, кеширует его и возвращает ID.
// Если курс создается сразу опубликованным, первая страница каталога
// в кеше сбрасывается.
func (s *Service) Create(ctx context.Context, req models.DummyCourse) (int, error) {
	course := models.Course{
		Title:        req.Title,
		Description:  req.Description,
		ThumbnailURL: req.ThumbnailURL,
		PaymentType:  req.PaymentType,
		Price:        req.Price,
		IsPublished:  req.IsPublished,
	}

	id, err := s.repo.CreateCourse(ctx, course)
	if err != nil {
		return 0, err
	}

	s.log.Info("created new course", slog.Int("id", id))

	course.ID = id
	cacheKey := fmt.Sprintf("course:%d", id)
	if err := s.cache.Set(cacheKey, course, time.Hour); err != nil {
		s.log.Warn("failed to cache course", slog.String("key", cacheKey), sl.Err(err))
	}

	if course.IsPublished {
		if err := s.cache.Invalidate(catalogCacheKey); err != nil {
			s.log.Warn("failed to invalidate catalog cache", sl.Err(err))
		}
	}

	return id, nil
}

// Read возвращает курс по ID, используя кеш или репозиторий.
func (s *Service) Read(ctx context.Context, id int) (*models.Course, error) {
	var result *models.Course
	cacheKey := fmt.Sprintf("course:%d", id)
	found, err := s.cache.Get(cacheKey, &result)
	if err != nil {
		s.log.Warn("failed to read course from cache", slog.String("key", cacheKey), sl.Err(err))
	}
	if found {
		return result, nil
	}
	result, err = s.repo.ReadCourse(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.cache.Set(cacheKey, result, time.Hour); err != nil {
		s.log.Warn("failed to cache course", slog.String("key", cacheKey), sl.Err(err))
	}
	return result, nil
}

// ListPublished возвращает страницу каталога опубликованных курсов.
// Первая страница размера по умолчанию читается через кеш.
func (s *Service) ListPublished(ctx context.Context, limit, offset int) ([]*models.Course, error) {
	firstPage := limit == DefaultPageSize && offset == 0

	if firstPage {
		var cached []*models.Course
		found, err := s.cache.Get(catalogCacheKey, &cached)
		if err != nil {
			s.log.Warn("failed to read catalog from cache", sl.Err(err))
		}
		if found {
			return cached, nil
		}
	}

	courses, err := s.repo.ListPublishedCourses(ctx, limit, offset)
	if err != nil {
		return nil, err
	}

	if firstPage {
		if err := s.cache.Set(catalogCacheKey, courses, 10*time.Minute); err != nil {
			s.log.Warn("failed to cache catalog", sl.Err(err))
		}
	}
	return courses, nil
}
