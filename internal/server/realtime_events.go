package server

import (
	"context"
	"encoding/json"
	"log"

	"olma/internal/observability"
)

// Event type constants prevent typos in event names.
const (
	EventOfferReceived   = "offer_received"
	EventOfferAccepted   = "offer_accepted"
	EventOfferDenied     = "offer_denied"
	EventOfferStarted    = "offer_started"
	EventOfferCompleted  = "offer_completed"
	EventOfferCancelled  = "offer_cancelled"
	EventOfferExpired    = "offer_expired"
	EventMessageReceived = "message_received"
	EventRatingReceived  = "rating_received"
	EventReportFiled     = "report_filed"
)

func (s *Server) publishUserEvent(userID uint, eventType string, payload interface{}) {
	event := map[string]interface{}{
		"type":    eventType,
		"payload": payload,
	}
	eventJSON, err := json.Marshal(event)
	if err != nil {
		log.Printf("failed to marshal %s event: %v", eventType, err)
		return
	}
	message := string(eventJSON)
	if s.hub != nil {
		s.hub.Broadcast(userID, []byte(message))
	}
	if s.notifier != nil {
		if err := s.notifier.PublishUser(context.Background(), userID, message); err != nil {
			observability.NotifyFailures.WithLabelValues(eventType).Inc()
			log.Printf("failed to publish %s event to user %d: %v", eventType, userID, err)
		}
	}
}

// publishModerationEvent alerts connected moderators, e.g. about a freshly
// filed report.
func (s *Server) publishModerationEvent(eventType string, payload interface{}) {
	event := map[string]interface{}{
		"type":    eventType,
		"payload": payload,
	}
	eventJSON, err := json.Marshal(event)
	if err != nil {
		log.Printf("failed to marshal %s event: %v", eventType, err)
		return
	}
	message := string(eventJSON)
	if s.hub != nil {
		s.hub.BroadcastModerators([]byte(message))
	}
	if s.notifier != nil {
		if err := s.notifier.PublishModeration(context.Background(), message); err != nil {
			observability.NotifyFailures.WithLabelValues(eventType).Inc()
			log.Printf("failed to publish %s moderation event: %v", eventType, err)
		}
	}
}

// transitionEvent maps a target offer status to its event name.
func transitionEvent(status string) string {
	switch status {
	case "accepted":
		return EventOfferAccepted
	case "denied":
		return EventOfferDenied
	case "started":
		return EventOfferStarted
	case "completed":
		return EventOfferCompleted
	case "cancelled":
		return EventOfferCancelled
	}
	return "offer_updated"
}
