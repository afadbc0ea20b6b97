// Package service owns the process-wide state of the booking API: the record
// store, the booking cache, the mutation gate, the upload scratch directory
// and the set of open WebSocket connections.  One Service is built at start
// up and handed to every handler.
package service

import (
	"context"
	"errors"
	"io"
	"log"
	"sync"
	"time"

	"github.com/iliyamo/mock-booking-api/internal/cache"
	"github.com/iliyamo/mock-booking-api/internal/model"
	"github.com/iliyamo/mock-booking-api/internal/queue"
	"github.com/iliyamo/mock-booking-api/internal/realtime"
	"github.com/iliyamo/mock-booking-api/internal/repository"
	"github.com/iliyamo/mock-booking-api/internal/upload"
	"github.com/iliyamo/mock-booking-api/internal/utils"
)

// EventPublisher receives an event after each persisted mutation.
type EventPublisher interface {
	Publish(ctx context.Context, event queue.BookingEvent) error
}

const publishTimeout = 5 * time.Second

// Service bundles the shared state.  All write paths to the data file go
// through mutate, which holds gate for the whole load-modify-persist-evict
// sequence.  Cache reads never take the gate.
type Service struct {
	Store  *repository.Store
	Cache  *cache.BookingCache
	Photos *upload.Scratch
	Hub    *realtime.Hub

	gate sync.Mutex

	events  EventPublisher
	pending sync.WaitGroup
}

// New wires a Service.  events may be nil to disable publishing.
func New(store *repository.Store, photos *upload.Scratch, events EventPublisher) *Service {
	if store == nil || photos == nil {
		panic("nil dependency passed to service.New")
	}
	return &Service{
		Store:  store,
		Cache:  cache.NewBookingCache(),
		Photos: photos,
		Hub:    realtime.NewHub(),
		events: events,
	}
}

// mutate runs fn against a freshly loaded dataset and persists the result.
// evict, when set, runs after the write has landed and before the gate is
// released, so no reader can see a cache entry older than an acknowledged
// write.
func (s *Service) mutate(fn func(ds *model.Dataset) error, evict func()) error {
	s.gate.Lock()
	defer s.gate.Unlock()

	ds, err := s.Store.Load()
	if err != nil {
		return err
	}
	if err := fn(&ds); err != nil {
		return err
	}
	if err := s.Store.ReplaceAll(ds.Users, ds.Bookings); err != nil {
		return err
	}
	if evict != nil {
		evict()
	}
	return nil
}

// Authenticate checks a username/password pair and returns a bearer token.
func (s *Service) Authenticate(_ context.Context, username, password string) (string, error) {
	ds, err := s.Store.Load()
	if err != nil {
		return "", err
	}
	u, err := repository.FindUserByCredentials(&ds, username, password)
	if err != nil {
		return "", err
	}
	return utils.IssueToken(u.Username), nil
}

// CreateBooking assigns the next id and persists the booking.
func (s *Service) CreateBooking(_ context.Context, f model.BookingFields) (model.Booking, error) {
	var created model.Booking
	err := s.mutate(func(ds *model.Dataset) error {
		created = repository.CreateBooking(ds, f)
		return nil
	}, nil)
	if err != nil {
		return model.Booking{}, err
	}
	s.publish(queue.BookingEvent{Type: queue.EventBookingCreated, BookingID: created.ID, Booking: &created})
	return created, nil
}

// UpdateBooking replaces every mutable field of booking id.
func (s *Service) UpdateBooking(_ context.Context, id int, f model.BookingFields) (model.Booking, error) {
	var updated model.Booking
	err := s.mutate(func(ds *model.Dataset) error {
		b, err := repository.UpdateBooking(ds, id, f)
		updated = b
		return err
	}, func() { s.Cache.Invalidate(id) })
	if err != nil {
		return model.Booking{}, err
	}
	s.publish(queue.BookingEvent{Type: queue.EventBookingUpdated, BookingID: id, Booking: &updated})
	return updated, nil
}

// DeleteBooking removes booking id.
func (s *Service) DeleteBooking(_ context.Context, id int) error {
	err := s.mutate(func(ds *model.Dataset) error {
		_, err := repository.DeleteBooking(ds, id)
		return err
	}, func() { s.Cache.Invalidate(id) })
	if err != nil {
		return err
	}
	s.publish(queue.BookingEvent{Type: queue.EventBookingDeleted, BookingID: id})
	return nil
}

// GetBooking serves from the cache when possible.  A miss reads the data
// file without taking the gate and publishes the result to the cache unless
// a writer evicted the id in the meantime.
func (s *Service) GetBooking(_ context.Context, id int) (model.Booking, error) {
	if b, ok := s.Cache.Get(id); ok {
		return b, nil
	}
	ticket := s.Cache.Ticket(id)
	ds, err := s.Store.Load()
	if err != nil {
		return model.Booking{}, err
	}
	b, err := repository.FindBooking(&ds, id)
	if err != nil {
		return model.Booking{}, err
	}
	s.Cache.Fill(ticket, b)
	return b, nil
}

// ClearCache empties the booking cache.
func (s *Service) ClearCache(_ context.Context) {
	s.Cache.Clear()
}

// StorePhoto streams a photo into scratch storage for an existing user and
// returns the stored reference.  Nothing is written for an unknown user.
func (s *Service) StorePhoto(_ context.Context, userID int, filename string, r io.Reader) (string, error) {
	if err := s.Photos.Ready(); err != nil {
		return "", err
	}
	ds, err := s.Store.Load()
	if err != nil {
		return "", err
	}
	if _, err := repository.FindUser(&ds, userID); err != nil {
		return "", err
	}
	return s.Photos.Save(filename, r)
}

// UpdateProfile records a new email and stored photo reference for a user.
// If the update fails the photo is discarded so no orphan stays referenced.
func (s *Service) UpdateProfile(_ context.Context, userID int, email, photoRef string) (model.User, error) {
	var updated model.User
	err := s.mutate(func(ds *model.Dataset) error {
		u, err := repository.UpdateUserProfile(ds, userID, email, photoRef)
		updated = u
		return err
	}, nil)
	if err != nil {
		s.Photos.Discard(photoRef)
		return model.User{}, err
	}
	s.publish(queue.BookingEvent{Type: queue.EventProfileUpdated, UserID: userID, Email: email, ProfilePhoto: photoRef})
	return updated, nil
}

// UploadProfile stores the photo and then records it together with email.
func (s *Service) UploadProfile(ctx context.Context, userID int, email, filename string, r io.Reader) (model.User, error) {
	ref, err := s.StorePhoto(ctx, userID, filename, r)
	if err != nil {
		return model.User{}, err
	}
	return s.UpdateProfile(ctx, userID, email, ref)
}

// ActiveConnections returns the number of open WebSocket connections.
func (s *Service) ActiveConnections() int { return s.Hub.Count() }

// Close waits for in-flight event publishes, closes open WebSocket
// connections and removes the scratch directory.
func (s *Service) Close() {
	s.pending.Wait()
	s.Hub.CloseAll()
	s.Photos.Close()
}

func (s *Service) publish(ev queue.BookingEvent) {
	if s.events == nil {
		return
	}
	ev.OccurredAt = time.Now().UTC().Format(time.RFC3339)
	s.pending.Add(1)
	go func() {
		defer s.pending.Done()
		ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
		defer cancel()
		if err := s.events.Publish(ctx, ev); err != nil && !errors.Is(err, context.Canceled) {
			log.Printf("service: publish %s failed: %v", ev.Type, err)
		}
	}()
}
