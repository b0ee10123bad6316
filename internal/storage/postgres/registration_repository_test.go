package postgres_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/julianoleite90/evemaster-finalizada-sub000/internal/domain"
	"github.com/julianoleite90/evemaster-finalizada-sub000/internal/storage/postgres"
	"github.com/julianoleite90/evemaster-finalizada-sub000/internal/testutil"
)

func TestRegistrationRepository(t *testing.T) {
	pool := testutil.NewTestPool(t)
	ctx := context.Background()
	testutil.ApplyMigrations(t, ctx, pool)
	testutil.TruncateAll(t, ctx, pool)

	eventID, batchID := testutil.InsertEventAndBatch(t, ctx, pool, "meia do outono")
	catID := testutil.InsertCategory(t, ctx, pool, batchID, "21km", decimal.NewFromInt(120), nil)

	repo := postgres.NewRegistrationRepository(pool)
	now := time.Now().UTC().Truncate(time.Millisecond)

	newRegistration := func(number string) domain.RegistrationRecord {
		return domain.RegistrationRecord{
			ID:         uuid.NewString(),
			Number:     number,
			EventID:    eventID,
			BatchID:    batchID,
			CategoryID: catID,
			Status:     domain.RegistrationPending,
			Waiver: &domain.WaiverAudit{
				AcceptedAt:  now,
				IP:          "203.0.113.9",
				UserAgent:   "Mozilla/5.0 (iPhone)",
				DeviceClass: "mobile",
			},
			CreatedAt: now,
		}
	}

	t.Run("rejects duplicate registration numbers", func(t *testing.T) {
		if err := repo.CreateRegistration(ctx, newRegistration("EVM-2026-AAAA1111")); err != nil {
			t.Fatalf("create first: %v", err)
		}
		err := repo.CreateRegistration(ctx, newRegistration("EVM-2026-AAAA1111"))
		if !errors.Is(err, domain.ErrDuplicateNumber) {
			t.Fatalf("expected ErrDuplicateNumber, got %v", err)
		}
	})

	t.Run("maps duplicate athlete documents and finds the original", func(t *testing.T) {
		reg := newRegistration("EVM-2026-BBBB2222")
		if err := repo.CreateRegistration(ctx, reg); err != nil {
			t.Fatalf("create registration: %v", err)
		}

		athlete := domain.Athlete{
			ID:             uuid.NewString(),
			RegistrationID: reg.ID,
			FullName:       "Ana Souza",
			Email:          "ana@example.com",
			Age:            29,
			Gender:         "F",
			Country:        "BR",
			Document:       "52998224725",
			CreatedAt:      now,
		}
		if err := repo.CreateAthlete(ctx, athlete); err != nil {
			t.Fatalf("create athlete: %v", err)
		}

		dup := athlete
		dup.ID = uuid.NewString()
		err := repo.CreateAthlete(ctx, dup)
		if !errors.Is(err, domain.ErrDuplicateDocument) {
			t.Fatalf("expected ErrDuplicateDocument, got %v", err)
		}

		found, err := repo.FindAthleteByDocument(ctx, "52998224725")
		if err != nil {
			t.Fatalf("find athlete: %v", err)
		}
		if found == nil || found.ID != athlete.ID {
			t.Fatalf("expected original athlete, got %+v", found)
		}
	})

	t.Run("persists waiver audit columns", func(t *testing.T) {
		reg := newRegistration("EVM-2026-CCCC3333")
		if err := repo.CreateRegistration(ctx, reg); err != nil {
			t.Fatalf("create registration: %v", err)
		}

		var ip, device string
		err := pool.QueryRow(ctx,
			`SELECT waiver_ip, waiver_device_class FROM registrations WHERE id = $1`, reg.ID,
		).Scan(&ip, &device)
		if err != nil {
			t.Fatalf("read waiver columns: %v", err)
		}
		if ip != "203.0.113.9" || device != "mobile" {
			t.Fatalf("unexpected waiver audit: ip=%s device=%s", ip, device)
		}
	})
}

func TestClubRepository_IncrementUsage(t *testing.T) {
	pool := testutil.NewTestPool(t)
	ctx := context.Background()
	testutil.ApplyMigrations(t, ctx, pool)
	testutil.TruncateAll(t, ctx, pool)

	eventID, _ := testutil.InsertEventAndBatch(t, ctx, pool, "trail noturno")
	clubID := testutil.InsertClub(t, ctx, pool, eventID, decimal.NewFromInt(10), 2)

	repo := postgres.NewClubRepository(pool)

	for i := 0; i < 2; i++ {
		ok, err := repo.IncrementUsage(ctx, clubID)
		if err != nil {
			t.Fatalf("increment %d: %v", i, err)
		}
		if !ok {
			t.Fatalf("increment %d: expected success", i)
		}
	}

	ok, err := repo.IncrementUsage(ctx, clubID)
	if err != nil {
		t.Fatalf("increment past allocation: %v", err)
	}
	if ok {
		t.Fatal("expected increment past allocation to report exhaustion")
	}

	club, err := repo.GetClub(ctx, clubID)
	if err != nil {
		t.Fatalf("get club: %v", err)
	}
	if club.Used != 2 || club.Remaining() != 0 {
		t.Fatalf("unexpected club state: used=%d remaining=%d", club.Used, club.Remaining())
	}
}
