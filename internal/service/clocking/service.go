package clocking

import (
	"context"
	"mime/multipart"
	"net/http"
	"time"

	"clocker/backend/foundation/web"
	"clocker/backend/internal/entity"
	"clocker/backend/internal/service/schedule"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

type PersonFinder interface {
	GetPerson(ctx context.Context, id string) (entity.Person, error)
}

type ZoneFinder interface {
	GetByCode(ctx context.Context, code string) (entity.Zone, error)
}

type EventStore interface {
	CreateEvent(ctx context.Context, event entity.ClockEvent) error
}

type PhotoStore interface {
	SavePhoto(file *multipart.FileHeader, folder string) (string, string, error)
}

var (
	ErrPersonInactive = errors.New("person is not active")
	ErrNoZone         = errors.New("person has no valid zone assigned")
)

// CaptureRequest is a clock event as submitted by a clock terminal.
type CaptureRequest struct {
	PersonID  string                `json:"person_id" form:"person_id"`
	Type      string                `json:"type"      form:"type"`
	Address   string                `json:"address"   form:"address"`
	Latitude  *float64              `json:"latitude"  form:"latitude"`
	Longitude *float64              `json:"longitude" form:"longitude"`
	Photo     *multipart.FileHeader `json:"-"         form:"photo"`
	CreatedBy *int                  `json:"-"         form:"-"`
}

type CaptureResponse struct {
	Event entity.ClockEvent `json:"event"`
	Result
}

type Service struct {
	persons       PersonFinder
	zones         ZoneFinder
	events        EventStore
	photos        PhotoStore
	pairer        *Pairer
	enforce       bool
	photoRequired bool
	loc           *time.Location
	now           func() time.Time
}

type ServiceConfig struct {
	EnforceSchedule bool
	PhotoRequired   bool
	// Location is the business time zone schedules are checked in. Nil
	// means time.Local.
	Location *time.Location
}

func NewService(persons PersonFinder, zones ZoneFinder, events EventStore, photos PhotoStore, pairer *Pairer, cfg ServiceConfig) *Service {
	loc := cfg.Location
	if loc == nil {
		loc = time.Local
	}

	return &Service{
		persons:       persons,
		zones:         zones,
		events:        events,
		photos:        photos,
		pairer:        pairer,
		enforce:       cfg.EnforceSchedule,
		photoRequired: cfg.PhotoRequired,
		loc:           loc,
		now:           time.Now,
	}
}

// Capture validates, stores and pairs one clock event. The event time is
// the server time at capture.
func (s *Service) Capture(ctx context.Context, req CaptureRequest) (CaptureResponse, error) {
	if req.PersonID == "" {
		return CaptureResponse{}, web.NewRequestError(ErrMissingPerson, http.StatusBadRequest)
	}

	person, err := s.persons.GetPerson(ctx, req.PersonID)
	if err != nil {
		return CaptureResponse{}, err
	}
	if !person.Active {
		return CaptureResponse{}, web.NewRequestError(ErrPersonInactive, http.StatusBadRequest)
	}

	if person.ZoneCode == "" {
		return CaptureResponse{}, web.NewRequestError(ErrNoZone, http.StatusBadRequest)
	}
	zone, err := s.zones.GetByCode(ctx, person.ZoneCode)
	if err != nil {
		if web.StatusOf(err) == http.StatusNotFound {
			return CaptureResponse{}, web.NewRequestError(ErrNoZone, http.StatusBadRequest)
		}
		return CaptureResponse{}, err
	}

	clockedAt := s.now().In(s.loc)
	if s.enforce {
		if err := schedule.Check(zone, clockedAt); err != nil {
			return CaptureResponse{}, web.NewRequestError(err, http.StatusBadRequest)
		}
	}

	event := entity.ClockEvent{
		ID:        uuid.NewString(),
		PersonID:  person.ID,
		ClockedAt: clockedAt,
		Type:      req.Type,
		Address:   req.Address,
		Latitude:  req.Latitude,
		Longitude: req.Longitude,
		CreatedBy: req.CreatedBy,
	}
	if event.Type == "" {
		event.Type = entity.DefaultClockType
	}

	if req.Photo != nil || s.photoRequired {
		event.PhotoPath, event.ThumbnailPath, err = s.photos.SavePhoto(req.Photo, person.ID)
		if err != nil {
			return CaptureResponse{}, web.NewRequestError(errors.Wrap(err, "saving photo"), http.StatusBadRequest)
		}
	}

	if err := s.events.CreateEvent(ctx, event); err != nil {
		return CaptureResponse{}, err
	}

	result, err := s.pairer.Process(ctx, event)
	if err != nil {
		log.Ctx(ctx).Error().Err(err).
			Str("event_id", event.ID).
			Str("person_id", person.ID).
			Msg("clock event stored but attendance not updated")

		if errors.Is(err, ErrOutOfOrder) {
			return CaptureResponse{}, web.NewRequestError(err, http.StatusConflict)
		}
		return CaptureResponse{}, web.NewRequestError(errors.New("failed to update attendance"), http.StatusInternalServerError)
	}

	return CaptureResponse{Event: event, Result: result}, nil
}
