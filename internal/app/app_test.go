package app

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/cronograma-api/pkg/config"
)

func newTestApp(t *testing.T) (*App, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp), sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	cfg := &config.Config{
		Env:       config.EnvDevelopment,
		APIPrefix: "/api/v1",
		Import:    config.ImportConfig{BaseDir: t.TempDir()},
		Rules:     config.RulesConfig{CacheTTL: time.Minute},
	}
	a, err := New(cfg, zap.NewNop(), sqlx.NewDb(db, "sqlmock"), nil)
	require.NoError(t, err)
	return a, mock
}

func TestRouterHealthAndReady(t *testing.T) {
	a, mock := newTestApp(t)
	router := a.Router()
	mock.ExpectPing()

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ready", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

const (
	knownStudent = "3f1c2a9e-0000-4000-8000-000000000001"
	ghostStudent = "3f1c2a9e-0000-4000-8000-0000000000ff"
)

func TestRouterUnknownStudent(t *testing.T) {
	a, mock := newTestApp(t)
	mock.ExpectQuery(`SELECT .* FROM students WHERE id = \$1`).
		WithArgs(ghostStudent).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	w := httptest.NewRecorder()
	a.Router().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/students/"+ghostStudent+"/electives", nil))

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "NOT_FOUND")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRouterMalformedStudentID(t *testing.T) {
	a, mock := newTestApp(t)

	w := httptest.NewRecorder()
	a.Router().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/students/not-a-uuid/risk-report", nil))

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "NOT_FOUND")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRouterStudentWithoutOpenPlan(t *testing.T) {
	a, mock := newTestApp(t)
	mock.ExpectQuery(`SELECT .* FROM students WHERE id = \$1`).
		WithArgs(knownStudent).
		WillReturnRows(sqlmock.NewRows([]string{"id", "document", "full_name", "email", "state", "created_at"}).
			AddRow(knownStudent, "123", "Ana Pérez", nil, "activo", time.Now()))
	mock.ExpectQuery(`FROM plan_versions WHERE student_id = \$1`).
		WithArgs(knownStudent).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	w := httptest.NewRecorder()
	a.Router().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/students/"+knownStudent+"/electives", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"data":{"electivas_completadas":0,"electivas_planeadas_o_completadas":0}}`, w.Body.String())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRouterImportRejectsEscapingPath(t *testing.T) {
	a, _ := newTestApp(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/schedule/imports", strings.NewReader(`{"path":"../secret.xlsx"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	a.Router().ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "VALIDATION_ERROR")
}

func TestRouterServesDocsOutsideProduction(t *testing.T) {
	a, _ := newTestApp(t)

	w := httptest.NewRecorder()
	a.Router().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/docs/doc.json", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "/api/v1/schedule/imports")

	a.Config.Env = config.EnvProduction
	w = httptest.NewRecorder()
	a.Router().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/docs/doc.json", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}
