package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Event struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	OwnerID     string             `bson:"ownerId,omitempty" json:"ownerId,omitempty"` // JWT subject of the creator
	Title       string             `bson:"title" json:"title"`
	Slug        string             `bson:"slug" json:"slug"`
	Description string             `bson:"description" json:"description"`
	Overview    string             `bson:"overview" json:"overview"`
	Image       string             `bson:"image" json:"image"`
	Venue       string             `bson:"venue" json:"venue"`
	Location    string             `bson:"location" json:"location"`
	Date        string             `bson:"date" json:"date"` // ISO-8601 instant
	Time        string             `bson:"time" json:"time"` // HH:mm, 24h
	Mode        string             `bson:"mode" json:"mode"` // online, offline, hybrid
	Audience    string             `bson:"audience" json:"audience"`
	Agenda      []string           `bson:"agenda" json:"agenda"`
	Organizer   string             `bson:"organizer" json:"organizer"`
	Tags        []string           `bson:"tags" json:"tags"`
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt" json:"updatedAt"`
}
