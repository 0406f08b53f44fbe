package services

import "github.com/sirupsen/logrus"

// Activity event types.
const (
	EventUserRegistered = "user.registered"
	EventUserFollowed   = "user.followed"
	EventUserUnfollowed = "user.unfollowed"
	EventImageUploaded  = "image.uploaded"
	EventImageDeleted   = "image.deleted"
)

// EventPublisher publishes activity events. *rabbitmq.Client satisfies it.
type EventPublisher interface {
	Publish(eventType string, payload interface{}) error
}

// UserEvent is the payload of user.registered.
type UserEvent struct {
	UserID   uint   `json:"user_id"`
	Username string `json:"username"`
}

// FollowEvent is the payload of user.followed and user.unfollowed.
type FollowEvent struct {
	FollowerID uint `json:"follower_id"`
	FollowedID uint `json:"followed_id"`
}

// ImageEvent is the payload of image.uploaded and image.deleted.
type ImageEvent struct {
	ImageID uint `json:"image_id"`
	UserID  uint `json:"user_id"`
}

// publish is best-effort: a broker outage never fails the request.
func publish(events EventPublisher, log *logrus.Logger, eventType string, payload interface{}) {
	if events == nil {
		log.Debugf("No event publisher configured. Skipping %s event.", eventType)
		return
	}
	if err := events.Publish(eventType, payload); err != nil {
		log.WithError(err).Warnf("Failed to publish %s event", eventType)
		return
	}
	log.Debugf("Published %s event", eventType)
}
