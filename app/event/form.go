package event

import (
	"errors"
	"reflect"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/ehime-live/live-schedule/app/database"
)

// Form is the create/edit input for an event.
type Form struct {
	Title    string `form:"title" json:"title" validate:"required"`
	Link     string `form:"link" json:"link" validate:"omitempty,url"`
	Content  string `form:"content" json:"content" validate:"required"`
	Venue    string `form:"venue" json:"venue" validate:"required"`
	Date     string `form:"date" json:"date" validate:"required,datetime=2006-01-02"`
	Fee      string `form:"fee" json:"fee"`
	Ticket   string `form:"ticket" json:"ticket"`
	Time     string `form:"time" json:"time"`
	ImageURL string `form:"image_url" json:"image_url"`
}

// FieldErrors maps a form field name to its message.
type FieldErrors map[string]string

var messages = map[string]map[string]string{
	"title":   {"required": "Title is required"},
	"link":    {"url": "Must be a valid URL"},
	"content": {"required": "Content is required"},
	"venue":   {"required": "Venue is required"},
	"date":    {"required": "Date is required", "datetime": "Date must be YYYY-MM-DD"},
}

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

func formValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterTagNameFunc(func(field reflect.StructField) string {
			name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
			if name == "-" {
				return ""
			}
			return name
		})
	})
	return validate
}

// NewForm returns an empty form with the date defaulted to today.
func NewForm(now time.Time) Form {
	return Form{Date: now.In(time.Local).Format(time.DateOnly)}
}

func FormFromEvent(e *database.Event) Form {
	return Form{
		Title:    e.Title,
		Link:     e.Link,
		Content:  e.Content,
		Venue:    e.Venue,
		Date:     e.Date,
		Fee:      e.Fee,
		Ticket:   e.Ticket,
		Time:     e.Time,
		ImageURL: e.ImageURL,
	}
}

// Normalize trims surrounding whitespace from every field.
func (f *Form) Normalize() {
	for _, field := range []*string{&f.Title, &f.Link, &f.Content, &f.Venue, &f.Date, &f.Fee, &f.Ticket, &f.Time, &f.ImageURL} {
		*field = strings.TrimSpace(*field)
	}
}

// Validate normalizes the form and returns the failing fields, or nil.
func (f *Form) Validate() FieldErrors {
	f.Normalize()

	err := formValidator().Struct(f)
	if err == nil {
		return nil
	}

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return FieldErrors{"form": err.Error()}
	}

	fieldErrors := FieldErrors{}
	for _, fe := range validationErrors {
		if _, exists := fieldErrors[fe.Field()]; exists {
			continue
		}
		msg, ok := messages[fe.Field()][fe.Tag()]
		if !ok {
			msg = fe.Field() + " is invalid"
		}
		fieldErrors[fe.Field()] = msg
	}
	return fieldErrors
}

func (f Form) Fields() database.EventFields {
	return database.EventFields{
		Title:    f.Title,
		Link:     f.Link,
		Content:  f.Content,
		Venue:    f.Venue,
		Date:     f.Date,
		Fee:      f.Fee,
		Ticket:   f.Ticket,
		Time:     f.Time,
		ImageURL: f.ImageURL,
	}
}
