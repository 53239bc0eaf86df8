package server

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"olma/internal/models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

func createCompletedMeeting(t *testing.T, db *gorm.DB, inviterID, inviteeID, skillID, convID uint) models.MeetingOffer {
	t.Helper()
	return createOfferRow(t, db, inviterID, inviteeID, skillID, convID,
		models.OfferStatusCompleted, time.Now().Add(-24*time.Hour), 60)
}

func TestSubmitRating_FlowAndDuplicate(t *testing.T) {
	s, db := newTestServer(t)
	inviter, invitee, skill, conv := createHandlerFixtures(t, db)
	meeting := createCompletedMeeting(t, db, inviter.ID, invitee.ID, skill.ID, conv.ID)

	app := fiber.New()
	app.Post("/ratings/invitee", asUser(invitee.ID, s.SubmitRating))
	app.Post("/ratings/inviter", asUser(inviter.ID, s.SubmitRating))

	body := fiber.Map{
		"meeting_id":    meeting.ID,
		"rated_user_id": inviter.ID,
		"rating":        5,
		"comment":       "Great teacher",
	}
	resp, err := app.Test(jsonRequest(t, http.MethodPost, "/ratings/invitee", body))
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("status = %d, want 201 (%s)", resp.StatusCode, errorCode(t, resp))
	}
	var created models.MeetingRating
	decodeData(t, resp, &created)
	if created.RaterID != invitee.ID || created.Rating != 5 {
		t.Errorf("rating row = %+v, want rater %d score 5", created, invitee.ID)
	}

	// Rating the same person twice for this meeting is rejected.
	resp, _ = app.Test(jsonRequest(t, http.MethodPost, "/ratings/invitee", body))
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("duplicate status = %d, want 400", resp.StatusCode)
	}
	if code := errorCode(t, resp); code != models.CodeValidation {
		t.Errorf("error code = %s, want VALIDATION_ERROR", code)
	}

	// The other direction is a different triple and still allowed.
	resp, _ = app.Test(jsonRequest(t, http.MethodPost, "/ratings/inviter", fiber.Map{
		"meeting_id":    meeting.ID,
		"rated_user_id": invitee.ID,
		"rating":        4,
	}))
	if resp.StatusCode != http.StatusCreated {
		t.Errorf("reverse rating status = %d, want 201", resp.StatusCode)
	}
}

func TestSubmitRating_RequiresCompletedMeeting(t *testing.T) {
	s, db := newTestServer(t)
	inviter, invitee, skill, conv := createHandlerFixtures(t, db)
	meeting := createOfferRow(t, db, inviter.ID, invitee.ID, skill.ID, conv.ID,
		models.OfferStatusAccepted, time.Now().Add(24*time.Hour), 60)

	app := fiber.New()
	app.Post("/ratings", asUser(invitee.ID, s.SubmitRating))

	resp, err := app.Test(jsonRequest(t, http.MethodPost, "/ratings", fiber.Map{
		"meeting_id":    meeting.ID,
		"rated_user_id": inviter.ID,
		"rating":        4,
	}))
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}
	if code := errorCode(t, resp); code != models.CodeValidation {
		t.Errorf("error code = %s, want VALIDATION_ERROR", code)
	}
}

func TestGetMeetingRatings_MeetingScopeIsParticipantGated(t *testing.T) {
	s, db := newTestServer(t)
	inviter, invitee, skill, conv := createHandlerFixtures(t, db)
	meeting := createCompletedMeeting(t, db, inviter.ID, invitee.ID, skill.ID, conv.ID)

	outsider := models.User{Username: "outsider", Email: "o@e.com", Password: "pw"}
	if err := db.Create(&outsider).Error; err != nil {
		t.Fatalf("create outsider: %v", err)
	}
	db.Create(&models.MeetingRating{
		MeetingID: meeting.ID, RaterID: invitee.ID, RatedUserID: inviter.ID, Rating: 5,
	})

	app := fiber.New()
	app.Get("/ratings/mine", asUser(inviter.ID, s.GetMeetingRatings))
	app.Get("/ratings/other", asUser(outsider.ID, s.GetMeetingRatings))

	target := fmt.Sprintf("/ratings/mine?meeting_id=%d", meeting.ID)
	resp, err := app.Test(httptest.NewRequest(http.MethodGet, target, nil))
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("participant status = %d, want 200", resp.StatusCode)
	}
	var ratings []models.MeetingRating
	decodeData(t, resp, &ratings)
	if len(ratings) != 1 {
		t.Errorf("got %d ratings, want 1", len(ratings))
	}

	target = fmt.Sprintf("/ratings/other?meeting_id=%d", meeting.ID)
	resp, _ = app.Test(httptest.NewRequest(http.MethodGet, target, nil))
	if resp.StatusCode != http.StatusForbidden {
		t.Errorf("outsider status = %d, want 403", resp.StatusCode)
	}

	// User-scoped ratings are public profile data.
	target = fmt.Sprintf("/ratings/other?user_id=%d", inviter.ID)
	resp, _ = app.Test(httptest.NewRequest(http.MethodGet, target, nil))
	if resp.StatusCode != http.StatusOK {
		t.Errorf("user scope status = %d, want 200", resp.StatusCode)
	}

	// One of the two scopes is required.
	resp, _ = app.Test(httptest.NewRequest(http.MethodGet, "/ratings/mine", nil))
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("missing scope status = %d, want 400", resp.StatusCode)
	}
}

func TestSubmitReport_FlowAndDuplicate(t *testing.T) {
	s, db := newTestServer(t)
	inviter, invitee, skill, conv := createHandlerFixtures(t, db)
	meeting := createCompletedMeeting(t, db, inviter.ID, invitee.ID, skill.ID, conv.ID)

	app := fiber.New()
	app.Post("/reports", asUser(invitee.ID, s.SubmitReport))

	body := fiber.Map{
		"meeting_id":       meeting.ID,
		"reported_user_id": inviter.ID,
		"report_category":  "hard",
		"report_reason":    "No-show and abusive messages afterwards",
	}
	resp, err := app.Test(jsonRequest(t, http.MethodPost, "/reports", body))
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("status = %d, want 201 (%s)", resp.StatusCode, errorCode(t, resp))
	}
	var report models.MeetingReport
	decodeData(t, resp, &report)
	if report.Status != models.ReportStatusPending {
		t.Errorf("new report status = %s, want pending", report.Status)
	}
	if report.Category != models.ReportCategoryHard {
		t.Errorf("category = %s, want hard", report.Category)
	}

	resp, _ = app.Test(jsonRequest(t, http.MethodPost, "/reports", body))
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("duplicate status = %d, want 400", resp.StatusCode)
	}
	if code := errorCode(t, resp); code != models.CodeValidation {
		t.Errorf("error code = %s, want VALIDATION_ERROR", code)
	}
}

func TestGetBanStatus_ThresholdsAndDismissedReports(t *testing.T) {
	s, db := newTestServer(t)
	inviter, invitee, skill, conv := createHandlerFixtures(t, db)

	// Three hard violations reach the threshold; a dismissed one must not count.
	for i := 0; i < 3; i++ {
		meeting := createCompletedMeeting(t, db, inviter.ID, invitee.ID, skill.ID, conv.ID)
		db.Create(&models.MeetingReport{
			MeetingID: meeting.ID, ReporterID: invitee.ID, ReportedUserID: inviter.ID,
			Category: models.ReportCategoryHard, Reason: "no-show",
			Status: models.ReportStatusResolved,
		})
	}
	dismissed := createCompletedMeeting(t, db, invitee.ID, inviter.ID, skill.ID, conv.ID)
	db.Create(&models.MeetingReport{
		MeetingID: dismissed.ID, ReporterID: invitee.ID, ReportedUserID: inviter.ID,
		Category: models.ReportCategoryHard, Reason: "retracted",
		Status: models.ReportStatusDismissed,
	})

	app := fiber.New()
	app.Get("/ban-status", asUser(invitee.ID, s.GetBanStatus))

	target := fmt.Sprintf("/ban-status?user_id=%d", inviter.ID)
	resp, err := app.Test(httptest.NewRequest(http.MethodGet, target, nil))
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	var status models.BanStatus
	decodeData(t, resp, &status)
	if status.ViolationCounts.Hard != 3 {
		t.Errorf("hard violations = %d, want 3 (dismissed excluded)", status.ViolationCounts.Hard)
	}
	if !status.EligibleHard {
		t.Error("expected hard-category ban eligibility")
	}
	if status.EligibleEasy || status.EligibleMedium {
		t.Error("other categories should stay below threshold")
	}
	// Eligibility alone never bans.
	if status.IsBanned {
		t.Error("eligibility must not flip is_banned")
	}

	// Without user_id the endpoint reports on the caller.
	resp, _ = app.Test(httptest.NewRequest(http.MethodGet, "/ban-status", nil))
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("self status = %d, want 200", resp.StatusCode)
	}
	var self models.BanStatus
	decodeData(t, resp, &self)
	if self.UserID != invitee.ID {
		t.Errorf("self ban status user = %d, want %d", self.UserID, invitee.ID)
	}
}
