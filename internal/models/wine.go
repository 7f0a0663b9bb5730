package models

import "time"

type WineType string

const (
	WineRed       WineType = "red"
	WineWhite     WineType = "white"
	WineRose      WineType = "rose"
	WineChampagne WineType = "champagne"
)

// Wine is a tasting record. UserID never changes after creation.
type Wine struct {
	ID           string    `bson:"_id" json:"id"`
	Type         WineType  `bson:"type" json:"type"`
	GrapeVariety string    `bson:"grape_variety" json:"grape_variety"`
	Domain       string    `bson:"domain" json:"domain"`
	Vintage      *int      `bson:"vintage,omitempty" json:"vintage,omitempty"`
	Region       string    `bson:"region" json:"region"`
	TastingNotes string    `bson:"tasting_notes" json:"tasting_notes"`
	Rating       *float64  `bson:"rating,omitempty" json:"rating,omitempty"`
	ImageURL     *string   `bson:"image_url,omitempty" json:"image_url,omitempty"`
	AddedDate    time.Time `bson:"added_date" json:"added_date"`
	UserID       string    `bson:"user_id" json:"user_id"`
}

type CreateWineInput struct {
	Type         WineType `json:"type" validate:"required,oneof=red white rose champagne"`
	GrapeVariety string   `json:"grape_variety" validate:"required,max=120"`
	Domain       string   `json:"domain" validate:"required,max=120"`
	Vintage      *int     `json:"vintage" validate:"omitempty,gte=1000,lte=2100"`
	Region       string   `json:"region" validate:"required,max=120"`
	TastingNotes string   `json:"tasting_notes" validate:"max=5000"`
	Rating       *float64 `json:"rating" validate:"omitempty,gte=0,lte=10"`
}

func (in *CreateWineInput) Validate() error {
	return validateStruct(in)
}

type UpdateWineInput struct {
	TastingNotes *string  `json:"tasting_notes" validate:"omitempty,max=5000"`
	Rating       *float64 `json:"rating" validate:"omitempty,gte=0,lte=10"`
	ImageURL     *string  `json:"image_url" validate:"omitempty,url"`
}

func (in *UpdateWineInput) Validate() error {
	return validateStruct(in)
}
