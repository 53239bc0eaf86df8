package repository

import (
	"context"
	"testing"
	"time"

	"olma/internal/models"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupOfferTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}

	if err := db.AutoMigrate(
		&models.User{},
		&models.Skill{},
		&models.Conversation{},
		&models.ConversationParticipant{},
		&models.Message{},
		&models.MeetingOffer{},
		&models.MeetingRating{},
		&models.MeetingReport{},
	); err != nil {
		t.Fatalf("migrate sqlite: %v", err)
	}
	return db
}

func seedOfferFixtures(t *testing.T, db *gorm.DB) (models.User, models.User, models.Skill, models.Conversation) {
	t.Helper()
	inviter := models.User{Username: "teacher1", Email: "t1@e.com", Password: "pw"}
	invitee := models.User{Username: "learner1", Email: "l1@e.com", Password: "pw"}
	if err := db.Create(&inviter).Error; err != nil {
		t.Fatalf("create inviter: %v", err)
	}
	if err := db.Create(&invitee).Error; err != nil {
		t.Fatalf("create invitee: %v", err)
	}

	skill := models.Skill{OwnerID: inviter.ID, Name: "Guitar Basics", Category: "music"}
	if err := db.Create(&skill).Error; err != nil {
		t.Fatalf("create skill: %v", err)
	}

	conv := models.Conversation{CreatedBy: inviter.ID}
	if err := db.Create(&conv).Error; err != nil {
		t.Fatalf("create conversation: %v", err)
	}
	for _, uid := range []uint{inviter.ID, invitee.ID} {
		p := models.ConversationParticipant{ConversationID: conv.ID, UserID: uid}
		if err := db.Create(&p).Error; err != nil {
			t.Fatalf("create participant: %v", err)
		}
	}
	return inviter, invitee, skill, conv
}

func createTestOffer(t *testing.T, db *gorm.DB, inviter, invitee models.User, skill models.Skill, conv models.Conversation, status models.OfferStatus, date time.Time) models.MeetingOffer {
	t.Helper()
	offer := models.MeetingOffer{
		InviterID:       inviter.ID,
		InviteeID:       invitee.ID,
		SkillID:         skill.ID,
		ConversationID:  conv.ID,
		MeetingLocation: "Library",
		MeetingDate:     date,
		MeetingDuration: 60,
		Status:          status,
	}
	if err := db.Create(&offer).Error; err != nil {
		t.Fatalf("create offer: %v", err)
	}
	return offer
}

func TestUpdateStatusIf_Conditional(t *testing.T) {
	db := setupOfferTestDB(t)
	inviter, invitee, skill, conv := seedOfferFixtures(t, db)
	repo := NewOfferRepository(db)
	ctx := context.Background()

	offer := createTestOffer(t, db, inviter, invitee, skill, conv,
		models.OfferStatusPending, time.Now().Add(24*time.Hour))

	ok, err := repo.UpdateStatusIf(ctx, offer.ID, models.OfferStatusPending, models.OfferStatusAccepted, "sounds good")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !ok {
		t.Fatal("first transition should have matched")
	}

	// The losing side of a race sees zero rows matched, not an error.
	ok, err = repo.UpdateStatusIf(ctx, offer.ID, models.OfferStatusPending, models.OfferStatusDenied, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok {
		t.Fatal("stale transition should not have matched")
	}

	got, err := repo.GetByID(ctx, offer.ID)
	if err != nil {
		t.Fatalf("get offer: %v", err)
	}
	if got.Status != models.OfferStatusAccepted {
		t.Errorf("status = %s, want accepted", got.Status)
	}
	if got.InviteeResponse != "sounds good" {
		t.Errorf("invitee_response = %q, want %q", got.InviteeResponse, "sounds good")
	}
}

func TestUpdateStatusIf_KeepsResponseWhenEmpty(t *testing.T) {
	db := setupOfferTestDB(t)
	inviter, invitee, skill, conv := seedOfferFixtures(t, db)
	repo := NewOfferRepository(db)
	ctx := context.Background()

	offer := createTestOffer(t, db, inviter, invitee, skill, conv,
		models.OfferStatusPending, time.Now().Add(24*time.Hour))
	if _, err := repo.UpdateStatusIf(ctx, offer.ID, models.OfferStatusPending, models.OfferStatusAccepted, "see you there"); err != nil {
		t.Fatalf("accept: %v", err)
	}
	if _, err := repo.UpdateStatusIf(ctx, offer.ID, models.OfferStatusAccepted, models.OfferStatusStarted, ""); err != nil {
		t.Fatalf("start: %v", err)
	}

	got, _ := repo.GetByID(ctx, offer.ID)
	if got.InviteeResponse != "see you there" {
		t.Errorf("invitee_response was clobbered: %q", got.InviteeResponse)
	}
}

func TestExpireDue_FlipsOnlyOverduePending(t *testing.T) {
	db := setupOfferTestDB(t)
	inviter, invitee, skill, conv := seedOfferFixtures(t, db)
	repo := NewOfferRepository(db)
	ctx := context.Background()

	overdue := createTestOffer(t, db, inviter, invitee, skill, conv,
		models.OfferStatusPending, time.Now().Add(-2*time.Hour))
	upcoming := createTestOffer(t, db, inviter, invitee, skill, conv,
		models.OfferStatusPending, time.Now().Add(2*time.Hour))
	accepted := createTestOffer(t, db, inviter, invitee, skill, conv,
		models.OfferStatusAccepted, time.Now().Add(-2*time.Hour))

	expired, err := repo.ExpireDue(ctx, time.Now())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(expired) != 1 || expired[0].ID != overdue.ID {
		t.Fatalf("expected only the overdue pending offer, got %d rows", len(expired))
	}
	if expired[0].Status != models.OfferStatusDenied {
		t.Errorf("returned status = %s, want denied", expired[0].Status)
	}
	// Returned rows carry their associations so callers can build views
	// and route notifications to real participant IDs.
	if expired[0].Inviter.ID != inviter.ID || expired[0].Inviter.Username != inviter.Username {
		t.Errorf("inviter = %+v, want user %d %q", expired[0].Inviter, inviter.ID, inviter.Username)
	}
	if expired[0].Invitee.ID != invitee.ID {
		t.Errorf("invitee ID = %d, want %d", expired[0].Invitee.ID, invitee.ID)
	}
	if expired[0].Skill.ID != skill.ID || expired[0].Skill.Name != skill.Name {
		t.Errorf("skill = %+v, want skill %d %q", expired[0].Skill, skill.ID, skill.Name)
	}

	for _, tc := range []struct {
		id   uint
		want models.OfferStatus
	}{
		{overdue.ID, models.OfferStatusDenied},
		{upcoming.ID, models.OfferStatusPending},
		{accepted.ID, models.OfferStatusAccepted},
	} {
		got, err := repo.GetByID(ctx, tc.id)
		if err != nil {
			t.Fatalf("get offer %d: %v", tc.id, err)
		}
		if got.Status != tc.want {
			t.Errorf("offer %d status = %s, want %s", tc.id, got.Status, tc.want)
		}
	}
}

func TestExpireDue_Idempotent(t *testing.T) {
	db := setupOfferTestDB(t)
	inviter, invitee, skill, conv := seedOfferFixtures(t, db)
	repo := NewOfferRepository(db)
	ctx := context.Background()

	createTestOffer(t, db, inviter, invitee, skill, conv,
		models.OfferStatusPending, time.Now().Add(-time.Hour))

	first, err := repo.ExpireDue(ctx, time.Now())
	if err != nil {
		t.Fatalf("first sweep: %v", err)
	}
	if len(first) != 1 {
		t.Fatalf("first sweep expired %d offers, want 1", len(first))
	}

	second, err := repo.ExpireDue(ctx, time.Now())
	if err != nil {
		t.Fatalf("second sweep: %v", err)
	}
	if len(second) != 0 {
		t.Errorf("second sweep expired %d offers, want 0", len(second))
	}
}

func TestListForUser_RoleFilter(t *testing.T) {
	db := setupOfferTestDB(t)
	inviter, invitee, skill, conv := seedOfferFixtures(t, db)
	repo := NewOfferRepository(db)
	ctx := context.Background()

	sent := createTestOffer(t, db, inviter, invitee, skill, conv,
		models.OfferStatusPending, time.Now().Add(24*time.Hour))

	otherSkill := models.Skill{OwnerID: invitee.ID, Name: "Knife Skills", Category: "cooking"}
	if err := db.Create(&otherSkill).Error; err != nil {
		t.Fatalf("create skill: %v", err)
	}
	received := createTestOffer(t, db, invitee, inviter, otherSkill, conv,
		models.OfferStatusPending, time.Now().Add(24*time.Hour))

	asInviter, err := repo.ListForUser(ctx, inviter.ID, OfferFilter{Role: "inviter"})
	if err != nil {
		t.Fatalf("list as inviter: %v", err)
	}
	if len(asInviter) != 1 || asInviter[0].ID != sent.ID {
		t.Errorf("inviter filter returned wrong rows: %d", len(asInviter))
	}

	asInvitee, err := repo.ListForUser(ctx, inviter.ID, OfferFilter{Role: "invitee"})
	if err != nil {
		t.Fatalf("list as invitee: %v", err)
	}
	if len(asInvitee) != 1 || asInvitee[0].ID != received.ID {
		t.Errorf("invitee filter returned wrong rows: %d", len(asInvitee))
	}

	both, err := repo.ListForUser(ctx, inviter.ID, OfferFilter{})
	if err != nil {
		t.Fatalf("list both: %v", err)
	}
	if len(both) != 2 {
		t.Errorf("unfiltered list returned %d rows, want 2", len(both))
	}
}

func TestListForUser_NewestFirst(t *testing.T) {
	db := setupOfferTestDB(t)
	inviter, invitee, skill, conv := seedOfferFixtures(t, db)
	repo := NewOfferRepository(db)
	ctx := context.Background()

	// The older offer has the later meeting date, so ordering by meeting
	// date would return it first. Listing follows creation recency.
	older := createTestOffer(t, db, inviter, invitee, skill, conv,
		models.OfferStatusPending, time.Now().Add(72*time.Hour))
	newer := createTestOffer(t, db, inviter, invitee, skill, conv,
		models.OfferStatusPending, time.Now().Add(24*time.Hour))

	base := time.Now().Add(-time.Hour)
	for _, row := range []struct {
		id uint
		at time.Time
	}{
		{older.ID, base},
		{newer.ID, base.Add(10 * time.Minute)},
	} {
		if err := db.Model(&models.MeetingOffer{}).Where("id = ?", row.id).
			Update("created_at", row.at).Error; err != nil {
			t.Fatalf("backdate offer %d: %v", row.id, err)
		}
	}

	offers, err := repo.ListForUser(ctx, inviter.ID, OfferFilter{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(offers) != 2 {
		t.Fatalf("list returned %d rows, want 2", len(offers))
	}
	if offers[0].ID != newer.ID || offers[1].ID != older.ID {
		t.Errorf("order = [%d %d], want [%d %d]", offers[0].ID, offers[1].ID, newer.ID, older.ID)
	}
}

func TestHasPendingBetween(t *testing.T) {
	db := setupOfferTestDB(t)
	inviter, invitee, skill, conv := seedOfferFixtures(t, db)
	repo := NewOfferRepository(db)
	ctx := context.Background()

	has, err := repo.HasPendingBetween(ctx, inviter.ID, invitee.ID, skill.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if has {
		t.Fatal("no offer exists yet")
	}

	createTestOffer(t, db, inviter, invitee, skill, conv,
		models.OfferStatusPending, time.Now().Add(24*time.Hour))

	has, err = repo.HasPendingBetween(ctx, inviter.ID, invitee.ID, skill.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !has {
		t.Error("pending offer should be detected")
	}
}
