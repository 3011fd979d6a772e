package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/cronograma-api/internal/models"
	appErrors "github.com/noah-isme/cronograma-api/pkg/errors"
)

type txProviderMock struct {
	db *sqlx.DB
}

func newTxProviderMock(t *testing.T) (txProvider, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return &txProviderMock{db: sqlx.NewDb(db, "sqlmock")}, mock
}

func (t *txProviderMock) BeginTxx(ctx context.Context, opts *sql.TxOptions) (*sqlx.Tx, error) {
	return t.db.BeginTxx(ctx, opts)
}

// expectRowTx registers one committed transaction per successful row.
func expectRowTx(mock sqlmock.Sqlmock, rows int) {
	for i := 0; i < rows; i++ {
		mock.ExpectBegin()
		mock.ExpectCommit()
	}
}

type fakeCourseStore struct {
	mu      sync.RWMutex
	byKey   map[string]*models.Course
	seq     int
	creates int
	updates int
}

func newFakeCourseStore() *fakeCourseStore {
	return &fakeCourseStore{byKey: make(map[string]*models.Course)}
}

func (f *fakeCourseStore) FindByMateriaID(_ context.Context, _ sqlx.ExtContext, materiaID string) (*models.Course, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	course, ok := f.byKey[materiaID]
	if !ok {
		return nil, fmt.Errorf("find course %s: %w", materiaID, sql.ErrNoRows)
	}
	clone := *course
	return &clone, nil
}

func (f *fakeCourseStore) Create(_ context.Context, _ sqlx.ExtContext, course *models.Course) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seq++
	course.ID = fmt.Sprintf("course-%d", f.seq)
	clone := *course
	f.byKey[course.MateriaID] = &clone
	f.creates++
	return nil
}

func (f *fakeCourseStore) Update(_ context.Context, _ sqlx.ExtContext, course *models.Course) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	clone := *course
	f.byKey[course.MateriaID] = &clone
	f.updates++
	return nil
}

func (f *fakeCourseStore) count() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.byKey)
}

type fakeSourceStore struct {
	mu           sync.RWMutex
	byKey        map[sourceKey]*models.CourseSource
	seq          int
	updates      int
	failOnModule map[string]error
}

func newFakeSourceStore() *fakeSourceStore {
	return &fakeSourceStore{byKey: make(map[sourceKey]*models.CourseSource), failOnModule: make(map[string]error)}
}

func (f *fakeSourceStore) FindByKey(_ context.Context, _ sqlx.ExtContext, courseID, sheetTag, module string) (*models.CourseSource, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	source, ok := f.byKey[sourceKey{courseID: courseID, sheetTag: sheetTag, module: module}]
	if !ok {
		return nil, fmt.Errorf("find course source: %w", sql.ErrNoRows)
	}
	clone := *source
	return &clone, nil
}

func (f *fakeSourceStore) Create(_ context.Context, _ sqlx.ExtContext, source *models.CourseSource) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.failOnModule[source.Module]; err != nil {
		return err
	}
	f.seq++
	source.ID = fmt.Sprintf("src-%d", f.seq)
	clone := *source
	f.byKey[sourceKey{courseID: source.CourseID, sheetTag: source.SheetTag, module: source.Module}] = &clone
	return nil
}

func (f *fakeSourceStore) Update(_ context.Context, _ sqlx.ExtContext, source *models.CourseSource) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	clone := *source
	f.byKey[sourceKey{courseID: source.CourseID, sheetTag: source.SheetTag, module: source.Module}] = &clone
	f.updates++
	return nil
}

func (f *fakeSourceStore) count() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.byKey)
}

// fakeCacheRepo keeps JSON payloads in memory and records invalidated patterns.
type fakeCacheRepo struct {
	mu       sync.Mutex
	entries  map[string][]byte
	patterns  []string
	gets      int
	deleteErr error
}

func newFakeCacheRepo() *fakeCacheRepo {
	return &fakeCacheRepo{entries: make(map[string][]byte)}
}

func (f *fakeCacheRepo) Get(_ context.Context, key string, dest interface{}) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.gets++
	raw, ok := f.entries[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	return json.Unmarshal(raw, dest)
}

func (f *fakeCacheRepo) Set(_ context.Context, key string, value interface{}, _ time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	f.entries[key] = raw
	return nil
}

func (f *fakeCacheRepo) DeleteByPattern(_ context.Context, pattern string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.patterns = append(f.patterns, pattern)
	if f.deleteErr != nil {
		return f.deleteErr
	}
	prefix := strings.TrimSuffix(pattern, "*")
	for key := range f.entries {
		if strings.HasPrefix(key, prefix) {
			delete(f.entries, key)
		}
	}
	return nil
}

type fakeStudents struct {
	students map[string]models.Student
	err      error
}

func (f *fakeStudents) FindByID(_ context.Context, id string) (*models.Student, error) {
	if f.err != nil {
		return nil, f.err
	}
	student, ok := f.students[id]
	if !ok {
		return nil, fmt.Errorf("find student: %w", sql.ErrNoRows)
	}
	return &student, nil
}

func (f *fakeStudents) ListActive(_ context.Context) ([]models.Student, error) {
	out := make([]models.Student, 0, len(f.students))
	for _, id := range sortedKeys(f.students) {
		if f.students[id].State == models.StudentStateActive {
			out = append(out, f.students[id])
		}
	}
	return out, nil
}

type fakePlans struct {
	mu       sync.Mutex
	versions map[string]*models.PlanVersion
	items    map[string][]models.PlanItemDetail
	loads    int
}

func (f *fakePlans) FindOpenVersion(_ context.Context, studentID string) (*models.PlanVersion, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.loads++
	return f.versions[studentID], nil
}

func (f *fakePlans) ListItems(_ context.Context, planVersionID string) ([]models.PlanItemDetail, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.items[planVersionID], nil
}

type fakeEnrollments struct {
	byStudent map[string][]models.Enrollment
}

func (f *fakeEnrollments) ListByStudent(_ context.Context, studentID string) ([]models.Enrollment, error) {
	return f.byStudent[studentID], nil
}

type fakeOrientations struct {
	rows []models.CourseOrientation
}

func (f *fakeOrientations) ListOrientations(_ context.Context, courseIDs []string) ([]models.CourseOrientation, error) {
	wanted := make(map[string]struct{}, len(courseIDs))
	for _, id := range courseIDs {
		wanted[id] = struct{}{}
	}
	out := make([]models.CourseOrientation, 0)
	for _, row := range f.rows {
		if _, ok := wanted[row.CourseID]; ok {
			out = append(out, row)
		}
	}
	return out, nil
}

func sortedKeys(m map[string]models.Student) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
