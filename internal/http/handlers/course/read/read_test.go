package read

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/go-chi/chi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/magabrotheeeer/course-access/internal/http/middlewarectx"
	"github.com/magabrotheeeer/course-access/internal/models"
	"github.com/magabrotheeeer/course-access/internal/services/entitlement"
	"github.com/magabrotheeeer/course-access/internal/storage/repository"
)

// MockAccessService реализует интерфейс read.AccessService
type MockAccessService struct {
	mock.Mock
}

func (m *MockAccessService) RequireCourseAccess(ctx context.Context, userUID string, courseID int) (*models.AccessResult, error) {
	args := m.Called(ctx, userUID, courseID)
	if res := args.Get(0); res != nil {
		return res.(*models.AccessResult), args.Error(1)
	}
	return nil, args.Error(1)
}

// MockCourseService реализует интерфейс read.CourseService
type MockCourseService struct {
	mock.Mock
}

func (m *MockCourseService) Read(ctx context.Context, id int) (*models.Course, error) {
	args := m.Called(ctx, id)
	if res := args.Get(0); res != nil {
		return res.(*models.Course), args.Error(1)
	}
	return nil, args.Error(1)
}

const testUserUID = "550e8400-e29b-41d4-a716-446655440000"

func TestReadHandler(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))

	grantedAccess := &models.AccessResult{
		HasAccess: true,
		Status:    models.StatusActive,
		Type:      models.TypeOneTime,
		Message:   "Acceso completo permanente",
	}

	tests := []struct {
		name           string
		courseIDParam  string
		withUser       bool
		setupMocks     func(*MockAccessService, *MockCourseService)
		expectedStatus int
		expectedBody   string
	}{
		{
			name:          "успешное чтение курса",
			courseIDParam: "7",
			withUser:      true,
			setupMocks: func(a *MockAccessService, c *MockCourseService) {
				a.On("RequireCourseAccess", mock.Anything, testUserUID, 7).
					Return(grantedAccess, nil)
				c.On("Read", mock.Anything, 7).
					Return(&models.Course{ID: 7, Title: "Curso de Go"}, nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"title":"Curso de Go"`,
		},
		{
			name:          "отказ в доступе",
			courseIDParam: "7",
			withUser:      true,
			setupMocks: func(a *MockAccessService, _ *MockCourseService) {
				a.On("RequireCourseAccess", mock.Anything, testUserUID, 7).
					Return(nil, fmt.Errorf("%w: %s", entitlement.ErrAccessDenied, "Sin acceso. Se requiere la compra del curso."))
			},
			expectedStatus: http.StatusForbidden,
			expectedBody:   "Sin acceso",
		},
		{
			name:          "курс не найден",
			courseIDParam: "404",
			withUser:      true,
			setupMocks: func(a *MockAccessService, c *MockCourseService) {
				a.On("RequireCourseAccess", mock.Anything, testUserUID, 404).
					Return(grantedAccess, nil)
				c.On("Read", mock.Anything, 404).
					Return(nil, fmt.Errorf("storage.ReadCourse: %w", repository.ErrCourseNotFound))
			},
			expectedStatus: http.StatusNotFound,
			expectedBody:   `"error":"course not found"`,
		},
		{
			name:          "ошибка сервиса чтения",
			courseIDParam: "7",
			withUser:      true,
			setupMocks: func(a *MockAccessService, c *MockCourseService) {
				a.On("RequireCourseAccess", mock.Anything, testUserUID, 7).
					Return(grantedAccess, nil)
				c.On("Read", mock.Anything, 7).
					Return(nil, errors.New("db error"))
			},
			expectedStatus: http.StatusInternalServerError,
			expectedBody:   `"error":"could not read course"`,
		},
		{
			name:           "некорректный id в URL",
			courseIDParam:  "abc",
			withUser:       true,
			setupMocks:     func(_ *MockAccessService, _ *MockCourseService) {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `"error":"failed to decode id from url"`,
		},
		{
			name:           "нет пользователя в контексте",
			courseIDParam:  "7",
			withUser:       false,
			setupMocks:     func(_ *MockAccessService, _ *MockCourseService) {},
			expectedStatus: http.StatusUnauthorized,
			expectedBody:   `"error":"unauthorized"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			accessMock := new(MockAccessService)
			courseMock := new(MockCourseService)
			tt.setupMocks(accessMock, courseMock)

			handler := New(logger, accessMock, courseMock)

			req := httptest.NewRequest(http.MethodGet, "/courses/"+tt.courseIDParam, nil)
			// Устанавливаем URL params с помощью роутера chi
			rctx := chi.NewRouteContext()
			rctx.URLParams.Add("id", tt.courseIDParam)
			ctx := context.WithValue(req.Context(), chi.RouteCtxKey, rctx)
			if tt.withUser {
				ctx = context.WithValue(ctx, middlewarectx.UserUID, testUserUID)
			}
			req = req.WithContext(ctx)

			w := httptest.NewRecorder()

			handler.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.True(t, strings.Contains(w.Body.String(), tt.expectedBody),
				"response body should contain %s, got %s", tt.expectedBody, w.Body.String())

			accessMock.AssertExpectations(t)
			courseMock.AssertExpectations(t)
		})
	}
}
