package model

import (
	"fmt"
	"strings"
)

// Role is a user's access level.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// EventType categorises an event.
type EventType string

const (
	EventTypeSport      EventType = "sport"
	EventTypeConcert    EventType = "concert"
	EventTypeTheater    EventType = "theater"
	EventTypeExhibition EventType = "exhibition"
	EventTypeWorkshop   EventType = "workshop"
	EventTypeOther      EventType = "other"
)

// EventStatus is the lifecycle state of an event.
//
// Allowed transitions: upcoming → ongoing → finished, and
// upcoming/ongoing → cancelled. Finished and cancelled are terminal.
type EventStatus string

const (
	EventStatusUpcoming  EventStatus = "upcoming"
	EventStatusOngoing   EventStatus = "ongoing"
	EventStatusFinished  EventStatus = "finished"
	EventStatusCancelled EventStatus = "cancelled"
)

// CanTransition reports whether the status may move to the given target.
func (s EventStatus) CanTransition(to EventStatus) bool {
	if s == to {
		return true
	}
	switch s {
	case EventStatusUpcoming:
		return to == EventStatusOngoing || to == EventStatusFinished || to == EventStatusCancelled
	case EventStatusOngoing:
		return to == EventStatusFinished || to == EventStatusCancelled
	default:
		// finished and cancelled are terminal
		return false
	}
}

// BookingStatus is a plain string rather than a closed enum so new states
// (e.g. "pending_payment") can be added without a migration.
type BookingStatus string

const (
	BookingConfirmed BookingStatus = "confirmed"
	BookingCancelled BookingStatus = "cancelled"
)

// NotificationType categorises an in-app notification.
type NotificationType string

const (
	NotificationBookingCreated   NotificationType = "booking_created"
	NotificationBookingCancelled NotificationType = "booking_cancelled"
	NotificationBookingReminder  NotificationType = "booking_reminder"
	NotificationEventUpdated     NotificationType = "event_updated"
	NotificationEventCancelled   NotificationType = "event_cancelled"
	NotificationSystemMessage    NotificationType = "system_message"
)

// The canonical wire and storage form of every enum is lower-case.
// Parse functions fold input case so "SPORT" and "sport" both resolve.

// ParseRole converts a request string into a Role.
func ParseRole(s string) (Role, error) {
	switch Role(strings.ToLower(s)) {
	case RoleUser:
		return RoleUser, nil
	case RoleAdmin:
		return RoleAdmin, nil
	}
	return "", fmt.Errorf("unknown role %q", s)
}

// ParseEventType converts a request string into an EventType.
func ParseEventType(s string) (EventType, error) {
	switch t := EventType(strings.ToLower(s)); t {
	case EventTypeSport, EventTypeConcert, EventTypeTheater,
		EventTypeExhibition, EventTypeWorkshop, EventTypeOther:
		return t, nil
	}
	return "", fmt.Errorf("unknown event type %q", s)
}

// ParseEventStatus converts a request string into an EventStatus.
func ParseEventStatus(s string) (EventStatus, error) {
	switch st := EventStatus(strings.ToLower(s)); st {
	case EventStatusUpcoming, EventStatusOngoing, EventStatusFinished, EventStatusCancelled:
		return st, nil
	}
	return "", fmt.Errorf("unknown event status %q", s)
}
