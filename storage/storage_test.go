package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"
)

func newTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := NewDB(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("NewDB failed: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func testSubmission(id int64) *ArchivedSubmission {
	return &ArchivedSubmission{
		ID:          id,
		ContestID:   "abc100",
		ProblemID:   "abc100_a",
		Language:    "python",
		EpochSecond: 1590000000,
		Path:        "/archive/abc100/abc100_a/python.py",
		ArchivedAt:  time.Date(2020, 5, 20, 12, 0, 0, 0, time.UTC),
	}
}

func TestSaveAndGetSubmission(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	if err := db.SaveSubmission(ctx, testSubmission(1001)); err != nil {
		t.Fatalf("SaveSubmission failed: %v", err)
	}

	got, err := db.GetSubmission(ctx, 1001)
	if err != nil {
		t.Fatalf("GetSubmission failed: %v", err)
	}

	if got.ContestID != "abc100" {
		t.Errorf("ContestID = %q, want 'abc100'", got.ContestID)
	}
	if got.ProblemID != "abc100_a" {
		t.Errorf("ProblemID = %q, want 'abc100_a'", got.ProblemID)
	}
	if got.Language != "python" {
		t.Errorf("Language = %q, want 'python'", got.Language)
	}
	if got.EpochSecond != 1590000000 {
		t.Errorf("EpochSecond = %d, want 1590000000", got.EpochSecond)
	}
	if got.Path != "/archive/abc100/abc100_a/python.py" {
		t.Errorf("Path = %q", got.Path)
	}
}

func TestGetSubmissionNotFound(t *testing.T) {
	db := newTestDB(t)

	_, err := db.GetSubmission(context.Background(), 9999)
	if err != ErrNotFound {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestSaveSubmissionUpsert(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	sub := testSubmission(1001)
	if err := db.SaveSubmission(ctx, sub); err != nil {
		t.Fatalf("SaveSubmission failed: %v", err)
	}

	sub.Language = "go"
	sub.Path = "/archive/abc100/abc100_a/go.go"
	if err := db.SaveSubmission(ctx, sub); err != nil {
		t.Fatalf("upsert failed: %v", err)
	}

	got, err := db.GetSubmission(ctx, 1001)
	if err != nil {
		t.Fatalf("GetSubmission failed: %v", err)
	}
	if got.Language != "go" {
		t.Errorf("Language = %q, want 'go' after upsert", got.Language)
	}

	count, err := db.CountSubmissions(ctx)
	if err != nil {
		t.Fatalf("CountSubmissions failed: %v", err)
	}
	if count != 1 {
		t.Errorf("count = %d, want 1 after upsert", count)
	}
}

func TestCountSubmissions(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	count, err := db.CountSubmissions(ctx)
	if err != nil {
		t.Fatalf("CountSubmissions failed: %v", err)
	}
	if count != 0 {
		t.Errorf("count = %d, want 0 for empty db", count)
	}

	for id := int64(1); id <= 3; id++ {
		if err := db.SaveSubmission(ctx, testSubmission(id)); err != nil {
			t.Fatalf("SaveSubmission failed: %v", err)
		}
	}

	count, err = db.CountSubmissions(ctx)
	if err != nil {
		t.Fatalf("CountSubmissions failed: %v", err)
	}
	if count != 3 {
		t.Errorf("count = %d, want 3", count)
	}
}

func TestCountByLanguage(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	languages := []string{"python", "python", "go", "cpp", "python", "go"}
	for i, language := range languages {
		sub := testSubmission(int64(i + 1))
		sub.Language = language
		if err := db.SaveSubmission(ctx, sub); err != nil {
			t.Fatalf("SaveSubmission failed: %v", err)
		}
	}

	counts, err := db.CountByLanguage(ctx)
	if err != nil {
		t.Fatalf("CountByLanguage failed: %v", err)
	}

	want := []LanguageCount{
		{Language: "python", Count: 3},
		{Language: "go", Count: 2},
		{Language: "cpp", Count: 1},
	}

	if len(counts) != len(want) {
		t.Fatalf("got %d language counts, want %d", len(counts), len(want))
	}
	for i := range want {
		if counts[i] != want[i] {
			t.Errorf("counts[%d] = %+v, want %+v", i, counts[i], want[i])
		}
	}
}

func TestListContestSubmissions(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	a := testSubmission(1)
	a.ProblemID = "abc100_b"
	b := testSubmission(2)
	b.ProblemID = "abc100_a"
	other := testSubmission(3)
	other.ContestID = "abc101"

	for _, sub := range []*ArchivedSubmission{a, b, other} {
		if err := db.SaveSubmission(ctx, sub); err != nil {
			t.Fatalf("SaveSubmission failed: %v", err)
		}
	}

	subs, err := db.ListContestSubmissions(ctx, "abc100")
	if err != nil {
		t.Fatalf("ListContestSubmissions failed: %v", err)
	}

	if len(subs) != 2 {
		t.Fatalf("got %d submissions, want 2", len(subs))
	}
	// Ordered by problem id.
	if subs[0].ProblemID != "abc100_a" || subs[1].ProblemID != "abc100_b" {
		t.Errorf("order = [%s, %s], want [abc100_a, abc100_b]",
			subs[0].ProblemID, subs[1].ProblemID)
	}
}
