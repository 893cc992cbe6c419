package claims

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"ziplink/internal/server/models"
)

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return NewPostgresRepository(db), mock, db
}

func claimRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "link_id", "claimer_address", "claimer_email", "claimer_name",
		"amount_transferred", "tx_signature", "created_at",
	})
}

func TestCreate_Success(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	created := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	mock.ExpectQuery(`INSERT INTO claims .* RETURNING created_at`).
		WithArgs("c1", "lnk1", "Addr1", "b@example.com", "Bob", uint64(995_000), "sig1").
		WillReturnRows(sqlmock.NewRows([]string{"created_at"}).AddRow(created))

	claim := &models.Claim{
		ID:                "c1",
		LinkID:            "lnk1",
		ClaimerAddress:    "Addr1",
		ClaimerEmail:      "b@example.com",
		ClaimerName:       "Bob",
		AmountTransferred: 995_000,
		TxSignature:       "sig1",
	}
	if err := repo.Create(context.Background(), claim); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !claim.CreatedAt.Equal(created) {
		t.Fatalf("created_at not scanned back: %v", claim.CreatedAt)
	}
}

func TestCreate_DBError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`INSERT INTO claims .* RETURNING created_at`).
		WillReturnError(errors.New("duplicate key"))

	err := repo.Create(context.Background(), &models.Claim{ID: "c1", LinkID: "lnk1"})
	if err == nil || !regexp.MustCompile(`db error: .*duplicate key`).MatchString(err.Error()) {
		t.Fatalf("expected wrapped db error, got %v", err)
	}
}

func TestListByLinkID_Success(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	created := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	mock.ExpectQuery(`SELECT .* FROM claims WHERE link_id = \$1 ORDER BY created_at DESC`).
		WithArgs("lnk1").
		WillReturnRows(claimRows().
			AddRow("c1", "lnk1", "Addr1", "b@x", "Bob", uint64(100), "sig1", created))

	got, err := repo.ListByLinkID(context.Background(), "lnk1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 || got[0].TxSignature != "sig1" || got[0].AmountTransferred != 100 {
		t.Fatalf("unexpected result: %+v", got)
	}
}

func TestRecent_Limit(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`SELECT .* FROM claims ORDER BY created_at DESC LIMIT \$1`).
		WithArgs(5).
		WillReturnRows(claimRows())

	got, err := repo.Recent(context.Background(), 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected empty result, got %+v", got)
	}
}

func TestListByLinkID_ScanError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`SELECT .* FROM claims WHERE link_id = \$1`).
		WithArgs("lnk1").
		WillReturnRows(claimRows().
			AddRow("c1", "lnk1", "Addr1", "b@x", "Bob", "not-a-number", "sig1", "not-a-time"))

	_, err := repo.ListByLinkID(context.Background(), "lnk1")
	if err == nil {
		t.Fatalf("expected scan error, got nil")
	}
}
