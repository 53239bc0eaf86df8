package server

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"olma/internal/models"
	"olma/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

func createOfferRow(t *testing.T, db *gorm.DB, inviterID, inviteeID, skillID, convID uint,
	status models.OfferStatus, meetingDate time.Time, duration int) models.MeetingOffer {
	t.Helper()
	offer := models.MeetingOffer{
		InviterID: inviterID, InviteeID: inviteeID, SkillID: skillID,
		ConversationID: convID, MeetingLocation: "Library",
		MeetingDate: meetingDate, MeetingDuration: duration, Status: status,
	}
	if err := db.Create(&offer).Error; err != nil {
		t.Fatalf("create offer: %v", err)
	}
	return offer
}

func TestGetOffers_SweepsStalePendingBeforeRead(t *testing.T) {
	s, db := newTestServer(t)
	inviter, invitee, skill, conv := createHandlerFixtures(t, db)

	stale := createOfferRow(t, db, inviter.ID, invitee.ID, skill.ID, conv.ID,
		models.OfferStatusPending, time.Now().Add(-2*time.Hour), 60)
	fresh := createOfferRow(t, db, inviter.ID, invitee.ID, skill.ID, conv.ID,
		models.OfferStatusAccepted, time.Now().Add(24*time.Hour), 60)

	app := fiber.New()
	app.Get("/offers", asUser(inviter.ID, s.GetOffers))

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/offers", nil))
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	var views []models.OfferView
	decodeData(t, resp, &views)
	byID := make(map[uint]models.OfferStatus, len(views))
	for _, v := range views {
		byID[v.ID] = v.Status
	}
	if byID[stale.ID] != models.OfferStatusDenied {
		t.Errorf("stale offer status = %s, want denied", byID[stale.ID])
	}
	if byID[fresh.ID] != models.OfferStatusAccepted {
		t.Errorf("accepted offer status = %s, want accepted", byID[fresh.ID])
	}

	// The read-path sweep persists the denial.
	var stored models.MeetingOffer
	if err := db.First(&stored, stale.ID).Error; err != nil {
		t.Fatalf("reload offer: %v", err)
	}
	if stored.Status != models.OfferStatusDenied {
		t.Errorf("stored status = %s, want denied", stored.Status)
	}
}

func TestExpireOffers_Idempotent(t *testing.T) {
	s, db := newTestServer(t)
	inviter, invitee, skill, conv := createHandlerFixtures(t, db)

	createOfferRow(t, db, inviter.ID, invitee.ID, skill.ID, conv.ID,
		models.OfferStatusPending, time.Now().Add(-3*time.Hour), 60)
	createOfferRow(t, db, invitee.ID, inviter.ID, skill.ID, conv.ID,
		models.OfferStatusPending, time.Now().Add(-30*time.Minute), 45)
	createOfferRow(t, db, inviter.ID, invitee.ID, skill.ID, conv.ID,
		models.OfferStatusPending, time.Now().Add(24*time.Hour), 60)

	app := fiber.New()
	app.Post("/offers/expire", asUser(inviter.ID, s.ExpireOffers))

	resp, err := app.Test(httptest.NewRequest(http.MethodPost, "/offers/expire", nil))
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	var first service.SweepResult
	decodeData(t, resp, &first)
	if first.ExpiredCount != 2 {
		t.Errorf("first sweep expired %d offers, want 2", first.ExpiredCount)
	}
	if len(first.UpdatedOffers) != 2 {
		t.Errorf("first sweep reported %d updated offers, want 2", len(first.UpdatedOffers))
	}
	for _, v := range first.UpdatedOffers {
		if v.Status != models.OfferStatusDenied {
			t.Errorf("swept offer %d status = %s, want denied", v.ID, v.Status)
		}
		if v.Inviter.ID == 0 || v.Invitee.ID == 0 {
			t.Errorf("swept offer %d has unresolved participants: inviter %d, invitee %d",
				v.ID, v.Inviter.ID, v.Invitee.ID)
		}
		if v.Skill.ID != skill.ID {
			t.Errorf("swept offer %d skill = %d, want %d", v.ID, v.Skill.ID, skill.ID)
		}
	}

	// Second run finds nothing left to flip.
	resp, err = app.Test(httptest.NewRequest(http.MethodPost, "/offers/expire", nil))
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	var second service.SweepResult
	decodeData(t, resp, &second)
	if second.ExpiredCount != 0 {
		t.Errorf("second sweep expired %d offers, want 0", second.ExpiredCount)
	}
	if second.UpdatedOffers == nil || len(second.UpdatedOffers) != 0 {
		t.Errorf("second sweep updated offers = %v, want empty list", second.UpdatedOffers)
	}
}

func TestPreviewExpiredOffers_ScopedToCaller(t *testing.T) {
	s, db := newTestServer(t)
	inviter, invitee, skill, conv := createHandlerFixtures(t, db)

	third := models.User{Username: "third", Email: "third@e.com", Password: "pw"}
	if err := db.Create(&third).Error; err != nil {
		t.Fatalf("create user: %v", err)
	}

	overdue := createOfferRow(t, db, inviter.ID, invitee.ID, skill.ID, conv.ID,
		models.OfferStatusPending, time.Now().Add(-time.Hour), 60)
	// Upcoming pending and someone else's overdue pending stay out of the preview.
	createOfferRow(t, db, inviter.ID, invitee.ID, skill.ID, conv.ID,
		models.OfferStatusPending, time.Now().Add(24*time.Hour), 60)
	createOfferRow(t, db, invitee.ID, third.ID, skill.ID, conv.ID,
		models.OfferStatusPending, time.Now().Add(-time.Hour), 60)

	app := fiber.New()
	app.Get("/offers/expire", asUser(inviter.ID, s.PreviewExpiredOffers))

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/offers/expire", nil))
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	var preview struct {
		WouldExpireCount int                `json:"would_expire_count"`
		Offers           []models.OfferView `json:"offers"`
	}
	decodeData(t, resp, &preview)
	if preview.WouldExpireCount != 1 {
		t.Fatalf("would_expire_count = %d, want 1", preview.WouldExpireCount)
	}
	if preview.Offers[0].ID != overdue.ID {
		t.Errorf("previewed offer = %d, want %d", preview.Offers[0].ID, overdue.ID)
	}

	// Preview must not mutate.
	var stored models.MeetingOffer
	db.First(&stored, overdue.ID)
	if stored.Status != models.OfferStatusPending {
		t.Errorf("stored status = %s, want pending after preview", stored.Status)
	}
}

func TestGetOfferStats_MoneyTotals(t *testing.T) {
	s, db := newTestServer(t)
	inviter, invitee, _, conv := createHandlerFixtures(t, db)

	paid := models.Skill{OwnerID: inviter.ID, Name: "Jazz Piano", Category: "music",
		HourlyRate: decimal.NewFromInt(30)}
	if err := db.Create(&paid).Error; err != nil {
		t.Fatalf("create skill: %v", err)
	}

	// 90 minutes taught at 30/h earns 45; 30 minutes learned at 30/h spends 15.
	createOfferRow(t, db, inviter.ID, invitee.ID, paid.ID, conv.ID,
		models.OfferStatusCompleted, time.Now().Add(-72*time.Hour), 90)
	createOfferRow(t, db, invitee.ID, inviter.ID, paid.ID, conv.ID,
		models.OfferStatusCompleted, time.Now().Add(-48*time.Hour), 30)
	createOfferRow(t, db, inviter.ID, invitee.ID, paid.ID, conv.ID,
		models.OfferStatusPending, time.Now().Add(24*time.Hour), 60)

	app := fiber.New()
	app.Get("/offers/stats", asUser(inviter.ID, s.GetOfferStats))

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/offers/stats", nil))
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	var stats struct {
		Counts      map[string]int  `json:"counts"`
		TotalEarned decimal.Decimal `json:"total_earned"`
		TotalSpent  decimal.Decimal `json:"total_spent"`
		TotalHours  decimal.Decimal `json:"total_hours"`
	}
	decodeData(t, resp, &stats)

	if stats.Counts["completed"] != 2 {
		t.Errorf("completed count = %d, want 2", stats.Counts["completed"])
	}
	if stats.Counts["pending"] != 1 {
		t.Errorf("pending count = %d, want 1", stats.Counts["pending"])
	}
	if want := decimal.NewFromInt(45); !stats.TotalEarned.Equal(want) {
		t.Errorf("total_earned = %s, want %s", stats.TotalEarned, want)
	}
	if want := decimal.NewFromInt(15); !stats.TotalSpent.Equal(want) {
		t.Errorf("total_spent = %s, want %s", stats.TotalSpent, want)
	}
	if want := decimal.NewFromInt(2); !stats.TotalHours.Equal(want) {
		t.Errorf("total_hours = %s, want %s", stats.TotalHours, want)
	}
}
