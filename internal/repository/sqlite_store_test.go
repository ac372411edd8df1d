package repository_test

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"regexp"
	"strings"
	"testing"
	"time"

	"controlling_irrigation/internal/repository"

	"github.com/DATA-DOG/go-sqlmock"
)

// mockedStore returns a SQLiteStore over sqlmock. Unmet expectations fail
// the test on cleanup.
func mockedStore(t *testing.T, prefix string) (*repository.SQLiteStore, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	t.Cleanup(func() {
		if err := mock.ExpectationsWereMet(); err != nil {
			t.Errorf("sqlmock expectations: %v", err)
		}
		_ = db.Close()
	})
	return repository.NewSQLiteStore(db, prefix), mock
}

// utcWithin matches a time.Time argument stamped in UTC no longer than d ago.
type utcWithin time.Duration

func (d utcWithin) Match(v driver.Value) bool {
	ts, ok := v.(time.Time)
	return ok && ts.Location() == time.UTC && time.Since(ts) < time.Duration(d)
}

var (
	upsertDoc = regexp.QuoteMeta("INSERT INTO documents (key, value, updated_at)")
	selectDoc = regexp.QuoteMeta("SELECT value FROM documents WHERE key=?")
	deleteDoc = regexp.QuoteMeta("DELETE FROM documents WHERE key=?")
)

func TestSQLiteStore_SetPrefixesKeyAndStampsUTC(t *testing.T) {
	store, mock := mockedStore(t, "garden:")
	mock.ExpectExec(upsertDoc).
		WithArgs("garden:mode", `{"current":"auto"}`, utcWithin(time.Minute)).
		WillReturnResult(sqlmock.NewResult(1, 1))

	if err := store.Set(context.Background(), repository.KeyMode, []byte(`{"current":"auto"}`)); err != nil {
		t.Fatalf("Set: %v", err)
	}
}

func TestSQLiteStore_SetWrapsDriverError(t *testing.T) {
	store, mock := mockedStore(t, "")
	mock.ExpectExec(upsertDoc).
		WithArgs("status", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnError(errors.New("disk I/O error"))

	err := store.Set(context.Background(), repository.KeyStatus, []byte(`{}`))
	if err == nil || !strings.Contains(err.Error(), `upsert document "status"`) {
		t.Fatalf("Set err = %v", err)
	}
}

func TestSQLiteStore_Get(t *testing.T) {
	cases := []struct {
		name    string
		prepare func(*sqlmock.ExpectedQuery)
		want    string
		wantErr error
	}{
		{
			name: "found",
			prepare: func(q *sqlmock.ExpectedQuery) {
				q.WillReturnRows(sqlmock.NewRows([]string{"value"}).AddRow(`{"opened_relay":2,"opened_at":10}`))
			},
			want: `{"opened_relay":2,"opened_at":10}`,
		},
		{
			name:    "missing",
			prepare: func(q *sqlmock.ExpectedQuery) { q.WillReturnError(sql.ErrNoRows) },
			wantErr: repository.ErrNotFound,
		},
		{
			name:    "locked",
			prepare: func(q *sqlmock.ExpectedQuery) { q.WillReturnError(sql.ErrConnDone) },
			wantErr: sql.ErrConnDone,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			store, mock := mockedStore(t, "z/")
			tc.prepare(mock.ExpectQuery(selectDoc).WithArgs("z/status"))

			got, err := store.Get(context.Background(), repository.KeyStatus)
			if tc.wantErr != nil {
				if !errors.Is(err, tc.wantErr) {
					t.Fatalf("Get err = %v, want %v", err, tc.wantErr)
				}
				return
			}
			if err != nil || string(got) != tc.want {
				t.Fatalf("Get = %s, %v", got, err)
			}
		})
	}
}

func TestSQLiteStore_Delete(t *testing.T) {
	store, mock := mockedStore(t, "")
	mock.ExpectExec(deleteDoc).WithArgs("status").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(deleteDoc).WithArgs("status").WillReturnError(sql.ErrConnDone)

	if err := store.Delete(context.Background(), repository.KeyStatus); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := store.Delete(context.Background(), repository.KeyStatus); !errors.Is(err, sql.ErrConnDone) {
		t.Fatalf("second Delete err = %v", err)
	}
}
