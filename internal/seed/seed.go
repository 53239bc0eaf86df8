package seed

import (
	"fmt"
	"log"
	"time"

	"olma/internal/models"

	"gorm.io/gorm"
)

// Options configuration for the seeder
type Options struct {
	NumUsers    int
	NumOffers   int
	ShouldClean bool
}

var offerStatusMix = []models.OfferStatus{
	models.OfferStatusPending, models.OfferStatusPending, models.OfferStatusPending,
	models.OfferStatusAccepted, models.OfferStatusAccepted,
	models.OfferStatusStarted,
	models.OfferStatusCompleted, models.OfferStatusCompleted, models.OfferStatusCompleted,
	models.OfferStatusDenied,
	models.OfferStatusCancelled,
}

// Seed populates the database with a mesh of users, skills, conversations and
// meeting offers across every lifecycle state, plus feedback on the completed
// ones.
func Seed(db *gorm.DB, opts Options) error {
	if opts.NumUsers <= 0 {
		opts.NumUsers = 50
	}
	if opts.NumOffers <= 0 {
		opts.NumOffers = 200
	}

	if opts.ShouldClean {
		if err := clearData(db); err != nil {
			return fmt.Errorf("failed to clear data: %w", err)
		}
	}

	f := NewFactory(db)

	users, err := createUsers(f, opts.NumUsers)
	if err != nil {
		return fmt.Errorf("failed to create users: %w", err)
	}
	log.Printf("✓ %d users created", len(users))

	skills := make([]*models.Skill, 0, len(users)*2)
	for _, u := range users {
		for i := 0; i < 1+f.rand.Intn(3); i++ {
			s, err := f.CreateSkill(u)
			if err != nil {
				return fmt.Errorf("failed to create skill: %w", err)
			}
			skills = append(skills, s)
		}
	}
	log.Printf("✓ %d skills created", len(skills))

	offers, err := createOffers(f, users, opts.NumOffers)
	if err != nil {
		return fmt.Errorf("failed to create offers: %w", err)
	}
	log.Printf("✓ %d meeting offers created", len(offers))

	if err := createFeedback(f, offers); err != nil {
		return fmt.Errorf("failed to create feedback: %w", err)
	}

	log.Println("🎉 Database seeding completed successfully!")
	return nil
}

func clearData(db *gorm.DB) error {
	log.Println("🗑️  Clearing existing data...")
	sql := `TRUNCATE TABLE meeting_reports, meeting_ratings, meeting_offers,
		messages, conversation_participants, conversations, skills, users
		RESTART IDENTITY CASCADE;`
	return db.Exec(sql).Error
}

func createUsers(f *Factory, count int) ([]*models.User, error) {
	users := make([]*models.User, 0, count)

	// Fixed accounts so manual testing has known logins.
	if count >= 2 {
		for _, name := range []string{"olma_demo", "olma_test"} {
			name := name
			u, err := f.CreateUser(func(u *models.User) {
				u.Username = name
				u.Email = fmt.Sprintf("%s@example.com", name)
				u.Bio = "Demo account."
			})
			if err != nil {
				return nil, err
			}
			users = append(users, u)
		}
	}

	for i := len(users); i < count; i++ {
		u, err := f.CreateUser()
		if err != nil {
			log.Printf("Failed to create user: %v", err)
			continue
		}
		users = append(users, u)

		if i > 0 && i%100 == 0 {
			log.Printf("Created %d users...", i)
		}
	}
	return users, nil
}

func createOffers(f *Factory, users []*models.User, count int) ([]*models.MeetingOffer, error) {
	if len(users) < 2 {
		return nil, nil
	}

	offers := make([]*models.MeetingOffer, 0, count)
	// Conversations are reused per user pair so repeated offers share a thread.
	convs := map[[2]uint]*models.Conversation{}

	for i := 0; i < count; i++ {
		inviter := users[f.rand.Intn(len(users))]
		invitee := users[f.rand.Intn(len(users))]
		if inviter.ID == invitee.ID {
			continue
		}

		var skill models.Skill
		if err := f.db.Where("owner_id = ?", inviter.ID).First(&skill).Error; err != nil {
			continue
		}

		key := [2]uint{min(inviter.ID, invitee.ID), max(inviter.ID, invitee.ID)}
		conv, ok := convs[key]
		if !ok {
			var err error
			conv, err = f.CreateConversation(inviter, invitee)
			if err != nil {
				return nil, err
			}
			convs[key] = conv
		}

		status := offerStatusMix[f.rand.Intn(len(offerStatusMix))]
		offer, err := f.CreateOffer(inviter, invitee, &skill, conv, status)
		if err != nil {
			log.Printf("Failed to create offer: %v", err)
			continue
		}
		offers = append(offers, offer)
	}

	// A handful of stale pending offers so the expiration sweep has work to
	// do on a fresh database.
	for i := 0; i < 5 && len(users) >= 2; i++ {
		a, b := users[0], users[1+f.rand.Intn(len(users)-1)]
		if a.ID == b.ID {
			continue
		}
		var skill models.Skill
		if err := f.db.Where("owner_id = ?", a.ID).First(&skill).Error; err != nil {
			continue
		}
		key := [2]uint{min(a.ID, b.ID), max(a.ID, b.ID)}
		conv, ok := convs[key]
		if !ok {
			var err error
			conv, err = f.CreateConversation(a, b)
			if err != nil {
				return nil, err
			}
			convs[key] = conv
		}
		offer, err := f.CreateOffer(a, b, &skill, conv, models.OfferStatusPending, func(o *models.MeetingOffer) {
			o.MeetingDate = time.Now().Add(-48 * time.Hour)
		})
		if err != nil {
			continue
		}
		offers = append(offers, offer)
	}

	return offers, nil
}

func createFeedback(f *Factory, offers []*models.MeetingOffer) error {
	ratings, reports := 0, 0
	for _, o := range offers {
		if o.Status != models.OfferStatusCompleted {
			continue
		}
		// Most completed meetings get at least one rating, some get both
		// sides, a few get a report instead.
		roll := f.rand.Float32()
		switch {
		case roll < 0.05:
			category := []models.ReportCategory{
				models.ReportCategoryEasy, models.ReportCategoryEasy,
				models.ReportCategoryMedium, models.ReportCategoryHard,
			}[f.rand.Intn(4)]
			if _, err := f.CreateReport(o, o.InviteeID, category); err != nil {
				return err
			}
			reports++
		case roll < 0.7:
			if _, err := f.CreateRating(o, o.InviterID); err != nil {
				return err
			}
			if _, err := f.CreateRating(o, o.InviteeID); err != nil {
				return err
			}
			ratings += 2
		default:
			if _, err := f.CreateRating(o, o.InviteeID); err != nil {
				return err
			}
			ratings++
		}
	}
	log.Printf("✓ %d ratings and %d reports created", ratings, reports)
	return nil
}
