// Package seed provides helpers to create development and demo data for the
// application database. These helpers are intended for development and
// testing only.
package seed

import (
	"fmt"
	"math/rand"
	"time"

	"olma/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var skillCatalog = map[string][]string{
	"music":     {"Guitar Basics", "Piano for Beginners", "Music Theory", "Home Recording", "Singing Technique"},
	"language":  {"Conversational Spanish", "French Grammar", "Japanese for Travelers", "Business English", "German Pronunciation"},
	"tech":      {"Intro to Go", "SQL Fundamentals", "Linux Command Line", "Web Scraping", "Docker Basics"},
	"crafts":    {"Watercolor Painting", "Knitting 101", "Woodworking Safety", "Pottery Wheel Basics", "Bookbinding"},
	"fitness":   {"Yoga Foundations", "Running Form", "Kettlebell Training", "Stretching Routines", "Bouldering Technique"},
	"cooking":   {"Knife Skills", "Sourdough Baking", "Thai Curries", "Meal Prep", "Espresso at Home"},
	"outdoors":  {"Urban Gardening", "Birdwatching", "Trip Planning", "Camp Cooking", "Navigation with Map and Compass"},
	"wellbeing": {"Meditation Basics", "Journaling Practice", "Sleep Hygiene", "Time Management", "Public Speaking"},
}

var meetingSpots = []string{
	"Central Library, Room 2B", "Riverside Park pavilion", "Cafe Lumen on 5th",
	"Community Center studio", "University commons", "The Brew House back room",
	"Makerspace workshop", "Online (video call)",
}

// Factory builds domain entities and persists them to the database.
// It is a thin helper used by the seeder and tests.
type Factory struct {
	db   *gorm.DB
	rand *rand.Rand
}

// NewFactory creates a new Factory bound to the provided Gorm DB.
func NewFactory(db *gorm.DB) *Factory {
	gofakeit.Seed(time.Now().UnixNano())
	//nolint:gosec // Weak random number generator is fine for seeding
	return &Factory{db: db, rand: rand.New(rand.NewSource(time.Now().UnixNano()))}
}

// CreateUser persists a user with realistic profile fields. All seeded users
// share the password "password123".
func (f *Factory) CreateUser(overrides ...func(*models.User)) (*models.User, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	username := fmt.Sprintf("%s%d", gofakeit.Username(), f.rand.Intn(10000))
	user := &models.User{
		Username: username,
		Email:    fmt.Sprintf("%s@example.com", username),
		Password: string(hashed),
		Bio:      gofakeit.Sentence(8),
		Avatar:   fmt.Sprintf("https://i.pravatar.cc/150?u=%s", username),
		Location: gofakeit.City(),
		XP:       f.rand.Intn(500),
	}
	for _, o := range overrides {
		o(user)
	}
	if err := f.db.Create(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

// CreateSkill persists a skill owned by user, drawn from the built-in catalog.
func (f *Factory) CreateSkill(user *models.User, overrides ...func(*models.Skill)) (*models.Skill, error) {
	categories := make([]string, 0, len(skillCatalog))
	for c := range skillCatalog {
		categories = append(categories, c)
	}
	category := categories[f.rand.Intn(len(categories))]
	names := skillCatalog[category]

	skill := &models.Skill{
		OwnerID:     user.ID,
		Name:        names[f.rand.Intn(len(names))],
		Description: gofakeit.Paragraph(1, 2, 8, " "),
		Category:    category,
		HourlyRate:  decimal.NewFromInt(int64(5 + f.rand.Intn(46))),
	}
	for _, o := range overrides {
		o(skill)
	}
	if err := f.db.Create(skill).Error; err != nil {
		return nil, err
	}
	return skill, nil
}

// CreateConversation persists a two-person thread with a few messages so the
// offer flow has somewhere to originate from.
func (f *Factory) CreateConversation(a, b *models.User) (*models.Conversation, error) {
	conv := &models.Conversation{CreatedBy: a.ID}
	err := f.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(conv).Error; err != nil {
			return err
		}
		for _, uid := range []uint{a.ID, b.ID} {
			p := models.ConversationParticipant{ConversationID: conv.ID, UserID: uid}
			if err := tx.Create(&p).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	for i := 0; i < 2+f.rand.Intn(4); i++ {
		sender := a.ID
		if f.rand.Intn(2) == 1 {
			sender = b.ID
		}
		msg := models.Message{
			ConversationID: conv.ID,
			SenderID:       sender,
			Content:        gofakeit.Sentence(6 + f.rand.Intn(10)),
		}
		if err := f.db.Create(&msg).Error; err != nil {
			return nil, err
		}
	}
	return conv, nil
}

// CreateOffer persists a meeting offer in the given status. Pending offers
// are scheduled in the future unless an override says otherwise; terminal and
// in-progress statuses get past dates so the data reads plausibly.
func (f *Factory) CreateOffer(inviter, invitee *models.User, skill *models.Skill, conv *models.Conversation, status models.OfferStatus, overrides ...func(*models.MeetingOffer)) (*models.MeetingOffer, error) {
	date := time.Now().Add(time.Duration(1+f.rand.Intn(14*24)) * time.Hour)
	if status != models.OfferStatusPending {
		date = time.Now().Add(-time.Duration(1+f.rand.Intn(30*24)) * time.Hour)
	}

	offer := &models.MeetingOffer{
		InviterID:       inviter.ID,
		InviteeID:       invitee.ID,
		SkillID:         skill.ID,
		ConversationID:  conv.ID,
		MeetingLocation: meetingSpots[f.rand.Intn(len(meetingSpots))],
		MeetingDate:     date,
		MeetingDuration: []int{30, 45, 60, 90}[f.rand.Intn(4)],
		Status:          status,
		InviterMessage:  gofakeit.Sentence(10),
	}
	if status == models.OfferStatusAccepted || status == models.OfferStatusStarted || status == models.OfferStatusCompleted {
		offer.InviteeResponse = gofakeit.Sentence(6)
	}
	for _, o := range overrides {
		o(offer)
	}
	if err := f.db.Create(offer).Error; err != nil {
		return nil, err
	}
	return offer, nil
}

// CreateRating persists feedback from rater about the other participant of a
// completed offer.
func (f *Factory) CreateRating(offer *models.MeetingOffer, raterID uint) (*models.MeetingRating, error) {
	rating := &models.MeetingRating{
		MeetingID:   offer.ID,
		RaterID:     raterID,
		RatedUserID: offer.OtherParticipant(raterID),
		Rating:      3 + f.rand.Intn(3),
		Comment:     gofakeit.Sentence(8),
	}
	if err := f.db.Create(rating).Error; err != nil {
		return nil, err
	}
	return rating, nil
}

// CreateReport persists a complaint from reporter about the other participant
// of a completed offer.
func (f *Factory) CreateReport(offer *models.MeetingOffer, reporterID uint, category models.ReportCategory) (*models.MeetingReport, error) {
	report := &models.MeetingReport{
		MeetingID:      offer.ID,
		ReporterID:     reporterID,
		ReportedUserID: offer.OtherParticipant(reporterID),
		Category:       category,
		Reason:         gofakeit.Sentence(5),
		Description:    gofakeit.Paragraph(1, 2, 6, " "),
		Status:         models.ReportStatusPending,
	}
	if err := f.db.Create(report).Error; err != nil {
		return nil, err
	}
	return report, nil
}
