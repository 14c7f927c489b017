package course

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/course-access/internal/models"
)

type RepoMock struct{ mock.Mock }

func (m *RepoMock) CreateCourse(ctx context.Context, course models.Course) (int, error) {
	args := m.Called(ctx, course)
	return args.Int(0), args.Error(1)
}

func (m *RepoMock) ReadCourse(ctx context.Context, id int) (*models.Course, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Course), args.Error(1)
}

func (m *RepoMock) ListPublishedCourses(ctx context.Context, limit, offset int) ([]*models.Course, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Course), args.Error(1)
}

type CacheMock struct{ mock.Mock }

func (m *CacheMock) Get(key string, result any) (bool, error) {
	args := m.Called(key, result)
	return args.Bool(0), args.Error(1)
}

func (m *CacheMock) Set(key string, value any, expiration time.Duration) error {
	args := m.Called(key, value, expiration)
	return args.Error(0)
}

func (m *CacheMock) Invalidate(key string) error {
	args := m.Called(key)
	return args.Error(0)
}

func newNoopLogger() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

func TestCreate(t *testing.T) {
	t.Run("успешное создание с кешированием", func(t *testing.T) {
		repoMock := new(RepoMock)
		cacheMock := new(CacheMock)

		repoMock.On("CreateCourse", mock.Anything, mock.MatchedBy(func(c models.Course) bool {
			return c.Title == "Curso de Go" && !c.IsPublished
		})).Return(42, nil).Once()
		cacheMock.On("Set", "course:42", mock.Anything, time.Hour).Return(nil).Once()

		service := New(repoMock, cacheMock, newNoopLogger())
		id, err := service.Create(context.Background(), models.DummyCourse{
			Title:       "Curso de Go",
			PaymentType: "subscription",
			Price:       4900,
		})

		require.NoError(t, err)
		assert.Equal(t, 42, id)
		repoMock.AssertExpectations(t)
		cacheMock.AssertExpectations(t)
	})

	t.Run("создание опубликованного курса сбрасывает кеш каталога", func(t *testing.T) {
		repoMock := new(RepoMock)
		cacheMock := new(CacheMock)

		repoMock.On("CreateCourse", mock.Anything, mock.MatchedBy(func(c models.Course) bool {
			return c.IsPublished
		})).Return(43, nil).Once()
		cacheMock.On("Set", "course:43", mock.Anything, time.Hour).Return(nil).Once()
		cacheMock.On("Invalidate", "courses:published:first").Return(nil).Once()

		service := New(repoMock, cacheMock, newNoopLogger())
		id, err := service.Create(context.Background(), models.DummyCourse{
			Title:       "Curso de SQL",
			PaymentType: "one_time",
			Price:       9900,
			IsPublished: true,
		})

		require.NoError(t, err)
		assert.Equal(t, 43, id)
		cacheMock.AssertExpectations(t)
	})

	t.Run("неопубликованный курс не трогает кеш каталога", func(t *testing.T) {
		repoMock := new(RepoMock)
		cacheMock := new(CacheMock)

		repoMock.On("CreateCourse", mock.Anything, mock.Anything).Return(44, nil).Once()
		cacheMock.On("Set", "course:44", mock.Anything, time.Hour).Return(nil).Once()

		service := New(repoMock, cacheMock, newNoopLogger())
		_, err := service.Create(context.Background(), models.DummyCourse{
			Title:       "Borrador",
			PaymentType: "one_time",
			Price:       9900,
		})

		require.NoError(t, err)
		cacheMock.AssertNotCalled(t, "Invalidate", mock.Anything)
	})

	t.Run("сбой кеша не прерывает создание", func(t *testing.T) {
		repoMock := new(RepoMock)
		cacheMock := new(CacheMock)

		repoMock.On("CreateCourse", mock.Anything, mock.Anything).Return(42, nil).Once()
		cacheMock.On("Set", "course:42", mock.Anything, time.Hour).
			Return(errors.New("redis down")).Once()

		service := New(repoMock, cacheMock, newNoopLogger())
		id, err := service.Create(context.Background(), models.DummyCourse{
			Title:       "Curso de Go",
			PaymentType: "one_time",
			Price:       9900,
		})

		require.NoError(t, err)
		assert.Equal(t, 42, id)
	})

	t.Run("ошибка хранилища", func(t *testing.T) {
		repoMock := new(RepoMock)
		cacheMock := new(CacheMock)

		repoMock.On("CreateCourse", mock.Anything, mock.Anything).
			Return(0, errors.New("db error")).Once()

		service := New(repoMock, cacheMock, newNoopLogger())
		_, err := service.Create(context.Background(), models.DummyCourse{
			Title:       "Curso de Go",
			PaymentType: "one_time",
			Price:       9900,
		})

		require.Error(t, err)
		cacheMock.AssertNotCalled(t, "Set", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestRead(t *testing.T) {
	t.Run("попадание в кеш не трогает хранилище", func(t *testing.T) {
		repoMock := new(RepoMock)
		cacheMock := new(CacheMock)

		cacheMock.On("Get", "course:42", mock.Anything).
			Run(func(args mock.Arguments) {
				ptr := args.Get(1).(**models.Course)
				*ptr = &models.Course{ID: 42, Title: "Curso de Go"}
			}).
			Return(true, nil).Once()

		service := New(repoMock, cacheMock, newNoopLogger())
		course, err := service.Read(context.Background(), 42)

		require.NoError(t, err)
		assert.Equal(t, "Curso de Go", course.Title)
		repoMock.AssertNotCalled(t, "ReadCourse", mock.Anything, mock.Anything)
	})

	t.Run("промах кеша читает хранилище и кеширует", func(t *testing.T) {
		repoMock := new(RepoMock)
		cacheMock := new(CacheMock)

		cacheMock.On("Get", "course:42", mock.Anything).Return(false, nil).Once()
		repoMock.On("ReadCourse", mock.Anything, 42).
			Return(&models.Course{ID: 42, Title: "Curso de Go"}, nil).Once()
		cacheMock.On("Set", "course:42", mock.Anything, time.Hour).Return(nil).Once()

		service := New(repoMock, cacheMock, newNoopLogger())
		course, err := service.Read(context.Background(), 42)

		require.NoError(t, err)
		assert.Equal(t, 42, course.ID)
		repoMock.AssertExpectations(t)
		cacheMock.AssertExpectations(t)
	})

	t.Run("сбой кеша деградирует до хранилища", func(t *testing.T) {
		repoMock := new(RepoMock)
		cacheMock := new(CacheMock)

		cacheMock.On("Get", "course:42", mock.Anything).
			Return(false, errors.New("redis down")).Once()
		repoMock.On("ReadCourse", mock.Anything, 42).
			Return(&models.Course{ID: 42, Title: "Curso de Go"}, nil).Once()
		cacheMock.On("Set", "course:42", mock.Anything, time.Hour).
			Return(errors.New("redis down")).Once()

		service := New(repoMock, cacheMock, newNoopLogger())
		course, err := service.Read(context.Background(), 42)

		require.NoError(t, err)
		assert.Equal(t, 42, course.ID)
	})

	t.Run("ошибка хранилища", func(t *testing.T) {
		repoMock := new(RepoMock)
		cacheMock := new(CacheMock)

		cacheMock.On("Get", "course:42", mock.Anything).Return(false, nil).Once()
		repoMock.On("ReadCourse", mock.Anything, 42).
			Return(nil, errors.New("db error")).Once()

		service := New(repoMock, cacheMock, newNoopLogger())
		course, err := service.Read(context.Background(), 42)

		require.Error(t, err)
		assert.Nil(t, course)
	})
}

func TestListPublished(t *testing.T) {
	courses := []*models.Course{
		{ID: 1, Title: "Curso A", IsPublished: true},
		{ID: 2, Title: "Curso B", IsPublished: true},
	}

	t.Run("промах кеша первой страницы читает хранилище и кеширует", func(t *testing.T) {
		repoMock := new(RepoMock)
		cacheMock := new(CacheMock)

		cacheMock.On("Get", "courses:published:first", mock.Anything).Return(false, nil).Once()
		repoMock.On("ListPublishedCourses", mock.Anything, 20, 0).Return(courses, nil).Once()
		cacheMock.On("Set", "courses:published:first", mock.Anything, 10*time.Minute).Return(nil).Once()

		service := New(repoMock, cacheMock, newNoopLogger())
		got, err := service.ListPublished(context.Background(), 20, 0)

		require.NoError(t, err)
		assert.Equal(t, courses, got)
		repoMock.AssertExpectations(t)
		cacheMock.AssertExpectations(t)
	})

	t.Run("попадание в кеш первой страницы не трогает хранилище", func(t *testing.T) {
		repoMock := new(RepoMock)
		cacheMock := new(CacheMock)

		cacheMock.On("Get", "courses:published:first", mock.Anything).
			Run(func(args mock.Arguments) {
				ptr := args.Get(1).(*[]*models.Course)
				*ptr = courses
			}).
			Return(true, nil).Once()

		service := New(repoMock, cacheMock, newNoopLogger())
		got, err := service.ListPublished(context.Background(), 20, 0)

		require.NoError(t, err)
		assert.Equal(t, courses, got)
		repoMock.AssertNotCalled(t, "ListPublishedCourses", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("последующие страницы читаются мимо кеша", func(t *testing.T) {
		repoMock := new(RepoMock)
		cacheMock := new(CacheMock)

		repoMock.On("ListPublishedCourses", mock.Anything, 20, 20).Return(courses, nil).Once()

		service := New(repoMock, cacheMock, newNoopLogger())
		got, err := service.ListPublished(context.Background(), 20, 20)

		require.NoError(t, err)
		assert.Equal(t, courses, got)
		cacheMock.AssertNotCalled(t, "Get", mock.Anything, mock.Anything)
	})

	t.Run("ошибка хранилища", func(t *testing.T) {
		repoMock := new(RepoMock)
		cacheMock := new(CacheMock)

		cacheMock.On("Get", "courses:published:first", mock.Anything).Return(false, nil).Once()
		repoMock.On("ListPublishedCourses", mock.Anything, 20, 0).
			Return(nil, errors.New("db error")).Once()

		service := New(repoMock, cacheMock, newNoopLogger())
		got, err := service.ListPublished(context.Background(), 20, 0)

		require.Error(t, err)
		assert.Nil(t, got)
		cacheMock.AssertNotCalled(t, "Set", mock.Anything, mock.Anything, mock.Anything)
	})
}
