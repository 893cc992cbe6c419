package links

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"ziplink/internal/common"
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

func TestCreate_Success(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := regexp.MustCompile(`INSERT INTO links .* RETURNING created_at`)
	created := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	mock.ExpectQuery(q.String()).
		WithArgs("id1", "lnk1", "https://pay.example/lnk1", "EscrowPk", "blob",
			uint64(1_000_000), models.StatusActive, "coffee", "For you", "a@example.com", nil).
		WillReturnRows(sqlmock.NewRows([]string{"created_at"}).AddRow(created))

	link := &models.Link{
		ID:              "id1",
		LinkID:          "lnk1",
		URL:             "https://pay.example/lnk1",
		EscrowPublicKey: "EscrowPk",
		EncryptedSecret: "blob",
		FaceAmount:      1_000_000,
		Status:          models.StatusActive,
		Memo:            "coffee",
		Title:           "For you",
		CreatorEmail:    "a@example.com",
	}
	if err := repo.Create(context.Background(), link); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !link.CreatedAt.Equal(created) {
		t.Fatalf("created_at not scanned back: %v", link.CreatedAt)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestCreate_DBError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`INSERT INTO links .* RETURNING created_at`).
		WillReturnError(errors.New("db is down"))

	err := repo.Create(context.Background(), &models.Link{LinkID: "lnk1", Status: models.StatusActive})
	if err == nil || !regexp.MustCompile(`db error: .*db is down`).MatchString(err.Error()) {
		t.Fatalf("expected wrapped db error, got %v", err)
	}
}

func linkRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "link_id", "url", "escrow_public_key", "encrypted_secret", "face_amount",
		"status", "memo", "title", "creator_email", "recipient", "expires_at", "claimed_at", "created_at",
	})
}

func TestGetByLinkID_Success(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	created := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	mock.ExpectQuery(`SELECT .* FROM links WHERE link_id = \$1`).
		WithArgs("lnk1").
		WillReturnRows(linkRows().AddRow(
			"id1", "lnk1", "https://pay.example/lnk1", "EscrowPk", "blob", uint64(500),
			string(models.StatusActive), "m", "t", "a@example.com", "", nil, nil, created,
		))

	got, err := repo.GetByLinkID(context.Background(), "lnk1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.LinkID != "lnk1" || got.Status != models.StatusActive || got.FaceAmount != 500 {
		t.Fatalf("unexpected link: %+v", got)
	}
	if got.ExpiresAt != nil || got.ClaimedAt != nil {
		t.Fatalf("expected nil timestamps, got %+v", got)
	}
}

func TestGetByLinkID_NotFound(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`SELECT .* FROM links WHERE link_id = \$1`).
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetByLinkID(context.Background(), "missing")
	if !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("want ErrorNotFound, got %v", err)
	}
}

func TestList_FiltersAndScans(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	t1 := time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)
	t2 := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery(`SELECT .* FROM links\s+WHERE \(\$1 = '' OR status = \$1\)\s+ORDER BY created_at DESC\s+LIMIT \$2 OFFSET \$3`).
		WithArgs(string(models.StatusActive), 10, 0).
		WillReturnRows(linkRows().
			AddRow("id1", "lnk1", "u1", "pk1", "b1", uint64(100), "active", "", "", "a@x", "", nil, nil, t1).
			AddRow("id2", "lnk2", "u2", "pk2", "b2", uint64(200), "active", "", "", "b@x", "", nil, nil, t2))

	got, err := repo.List(context.Background(), models.StatusActive, 10, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 2 || got[0].LinkID != "lnk1" || got[1].LinkID != "lnk2" {
		t.Fatalf("unexpected result: %+v", got)
	}
}

func TestList_QueryError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`SELECT .* FROM links`).
		WillReturnError(errors.New("db err"))

	_, err := repo.List(context.Background(), "", 10, 0)
	if err == nil || !regexp.MustCompile(`db error: .*db err`).MatchString(err.Error()) {
		t.Fatalf("expected wrapped db error, got %v", err)
	}
}

func TestCount_AllStatuses(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`SELECT count\(\*\) FROM links WHERE \(\$1 = '' OR status = \$1\)`).
		WithArgs("").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(int64(7)))

	n, err := repo.Count(context.Background(), "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 7 {
		t.Fatalf("want 7, got %d", n)
	}
}

func TestUpdateStatusIf_Success(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(`UPDATE links SET status = \$3 WHERE link_id = \$1 AND status = \$2`).
		WithArgs("lnk1", models.StatusActive, models.StatusCancelled).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.UpdateStatusIf(context.Background(), "lnk1", models.StatusActive, models.StatusCancelled)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestUpdateStatusIf_ConflictRowsAffected0(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(`UPDATE links SET status = \$3 WHERE link_id = \$1 AND status = \$2`).
		WithArgs("lnk1", models.StatusActive, models.StatusCancelled).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.UpdateStatusIf(context.Background(), "lnk1", models.StatusActive, models.StatusCancelled)
	if !errors.Is(err, common.ErrStatusConflict) {
		t.Fatalf("want ErrStatusConflict, got %v", err)
	}
}

func TestUpdateStatusIf_RowsAffectedError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(`UPDATE links SET status = \$3 WHERE link_id = \$1 AND status = \$2`).
		WithArgs("lnk1", models.StatusActive, models.StatusExpired).
		WillReturnResult(sqlmock.NewErrorResult(errors.New("rows-err")))

	err := repo.UpdateStatusIf(context.Background(), "lnk1", models.StatusActive, models.StatusExpired)
	if err == nil || !regexp.MustCompile(`rows affected error: .*rows-err`).MatchString(err.Error()) {
		t.Fatalf("expected rows affected error, got %v", err)
	}
}

func TestMarkClaimedIf_WinnerStampsRecipient(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	claimedAt := time.Date(2025, 6, 3, 9, 30, 0, 0, time.UTC)
	mock.ExpectExec(`UPDATE links SET status = \$3, recipient = \$4, claimed_at = \$5\s+WHERE link_id = \$1 AND status = \$2`).
		WithArgs("lnk1", models.StatusActive, models.StatusClaimed, "RecipientAddr", claimedAt).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.MarkClaimedIf(context.Background(), "lnk1", models.StatusActive, "RecipientAddr", claimedAt)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestMarkClaimedIf_LoserGetsConflict(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(`UPDATE links SET status = \$3, recipient = \$4, claimed_at = \$5\s+WHERE link_id = \$1 AND status = \$2`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.MarkClaimedIf(context.Background(), "lnk1", models.StatusActive, "Other", time.Now())
	if !errors.Is(err, common.ErrStatusConflict) {
		t.Fatalf("want ErrStatusConflict, got %v", err)
	}
}
