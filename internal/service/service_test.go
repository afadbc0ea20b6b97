package service

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"golang.org/x/sync/errgroup"

	"github.com/iliyamo/mock-booking-api/internal/model"
	"github.com/iliyamo/mock-booking-api/internal/queue"
	"github.com/iliyamo/mock-booking-api/internal/repository"
	"github.com/iliyamo/mock-booking-api/internal/upload"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []queue.BookingEvent
}

func (p *recordingPublisher) Publish(_ context.Context, ev queue.BookingEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
	return nil
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, ev := range p.events {
		out = append(out, ev.Type)
	}
	return out
}

func seedFile(t *testing.T, dir string, ds model.Dataset) string {
	t.Helper()
	path := filepath.Join(dir, "data.json")
	body, err := json.Marshal(ds)
	if err != nil {
		t.Fatalf("marshal seed: %v", err)
	}
	if err := os.WriteFile(path, body, 0o644); err != nil {
		t.Fatalf("write seed: %v", err)
	}
	return path
}

func testDataset() model.Dataset {
	return model.Dataset{
		Users: []model.User{
			{ID: 1, Username: "user1", Password: "pass1", Email: "one@example.com"},
			{ID: 2, Username: "user2", Password: "pass2"},
		},
		Bookings: []model.Booking{
			{ID: 1, Firstname: "Jim", Lastname: "Brown", TotalPrice: 200, DepositPaid: true, CheckIn: "2025-01-01", CheckOut: "2025-01-03", AdditionalNeeds: "Breakfast"},
			{ID: 2, Firstname: "Sally", Lastname: "Smith", TotalPrice: 150, CheckIn: "2025-02-01", CheckOut: "2025-02-05", AdditionalNeeds: "None"},
			{ID: 5, Firstname: "Ann", Lastname: "Lee", TotalPrice: 400, CheckIn: "2025-03-01", CheckOut: "2025-03-02", AdditionalNeeds: "WiFi"},
		},
	}
}

func newTestService(t *testing.T, events EventPublisher) *Service {
	t.Helper()
	dir := t.TempDir()
	path := seedFile(t, dir, testDataset())
	photos, err := upload.NewScratch(filepath.Join(dir, "photos"), 8)
	if err != nil {
		t.Fatalf("new scratch: %v", err)
	}
	svc := New(repository.NewStore(path), photos, events)
	t.Cleanup(svc.Close)
	return svc
}

func loadFile(t *testing.T, svc *Service) model.Dataset {
	t.Helper()
	ds, err := svc.Store.Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	return ds
}

func fields(price int) model.BookingFields {
	return model.BookingFields{
		Firstname: "Jim", Lastname: "Brown", TotalPrice: price, DepositPaid: true,
		CheckIn: "2025-01-01", CheckOut: "2025-01-03", AdditionalNeeds: "Breakfast",
	}
}

func TestUpdateInvalidatesCachedSnapshot(t *testing.T) {
	svc := newTestService(t, nil)
	ctx := context.Background()

	got, err := svc.GetBooking(ctx, 1)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.TotalPrice != 200 {
		t.Fatalf("expected 200, got %d", got.TotalPrice)
	}
	if _, ok := svc.Cache.Get(1); !ok {
		t.Fatalf("expected read to populate the cache")
	}

	if _, err := svc.UpdateBooking(ctx, 1, fields(300)); err != nil {
		t.Fatalf("update: %v", err)
	}
	if _, ok := svc.Cache.Get(1); ok {
		t.Fatalf("expected update to evict booking 1")
	}
	got, err = svc.GetBooking(ctx, 1)
	if err != nil {
		t.Fatalf("get after update: %v", err)
	}
	if got.TotalPrice != 300 {
		t.Fatalf("stale read: expected 300, got %d", got.TotalPrice)
	}
}

func TestDeleteInvalidatesCachedSnapshot(t *testing.T) {
	svc := newTestService(t, nil)
	ctx := context.Background()

	if _, err := svc.GetBooking(ctx, 2); err != nil {
		t.Fatalf("get: %v", err)
	}
	if err := svc.DeleteBooking(ctx, 2); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := svc.GetBooking(ctx, 2); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
	for _, b := range loadFile(t, svc).Bookings {
		if b.ID == 2 {
			t.Fatalf("booking 2 still persisted")
		}
	}
}

func TestCreateThenGetRoundTrip(t *testing.T) {
	svc := newTestService(t, nil)
	ctx := context.Background()

	f := model.BookingFields{Firstname: "Mark", Lastname: "Twain", TotalPrice: 321, CheckIn: "2025-05-01", CheckOut: "2025-05-09", AdditionalNeeds: "Gym"}
	created, err := svc.CreateBooking(ctx, f)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.ID != 6 {
		t.Fatalf("expected id max+1=6, got %d", created.ID)
	}
	got, err := svc.GetBooking(ctx, created.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got != f.WithID(6) {
		t.Fatalf("round trip mismatch: %+v", got)
	}
}

func TestMissingIDLeavesStoreAndCacheUnchanged(t *testing.T) {
	svc := newTestService(t, nil)
	ctx := context.Background()
	if _, err := svc.GetBooking(ctx, 1); err != nil {
		t.Fatalf("warm cache: %v", err)
	}
	before, err := os.ReadFile(svc.Store.Path())
	if err != nil {
		t.Fatalf("read file: %v", err)
	}

	if _, err := svc.UpdateBooking(ctx, 99, fields(1)); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("update: expected ErrNotFound, got %v", err)
	}
	if err := svc.DeleteBooking(ctx, 99); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("delete: expected ErrNotFound, got %v", err)
	}
	if _, err := svc.GetBooking(ctx, 99); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("get: expected ErrNotFound, got %v", err)
	}

	after, err := os.ReadFile(svc.Store.Path())
	if err != nil {
		t.Fatalf("read file: %v", err)
	}
	if string(before) != string(after) {
		t.Fatalf("data file changed by failed operations")
	}
	if svc.Cache.Len() != 1 {
		t.Fatalf("expected cache untouched, len=%d", svc.Cache.Len())
	}
}

func TestClearCacheTwice(t *testing.T) {
	svc := newTestService(t, nil)
	ctx := context.Background()
	if _, err := svc.GetBooking(ctx, 1); err != nil {
		t.Fatalf("get: %v", err)
	}
	svc.ClearCache(ctx)
	svc.ClearCache(ctx)
	if svc.Cache.Len() != 0 {
		t.Fatalf("expected empty cache")
	}
	got, err := svc.GetBooking(ctx, 1)
	if err != nil || got.TotalPrice != 200 {
		t.Fatalf("expected repopulated read, got %+v err=%v", got, err)
	}
	if svc.Cache.Len() != 1 {
		t.Fatalf("expected cache repopulated")
	}
}

func TestConcurrentUpdatesDistinctIDs(t *testing.T) {
	svc := newTestService(t, nil)
	ctx := context.Background()

	const n = 20
	for i := 0; i < n; i++ {
		if _, err := svc.CreateBooking(ctx, fields(0)); err != nil {
			t.Fatalf("create: %v", err)
		}
	}
	ids := make([]int, 0, n)
	for _, b := range loadFile(t, svc).Bookings {
		ids = append(ids, b.ID)
	}

	var g errgroup.Group
	for _, id := range ids {
		g.Go(func() error {
			_, err := svc.UpdateBooking(ctx, id, fields(1000+id))
			return err
		})
	}
	if err := g.Wait(); err != nil {
		t.Fatalf("concurrent update: %v", err)
	}

	for _, b := range loadFile(t, svc).Bookings {
		if b.TotalPrice != 1000+b.ID {
			t.Fatalf("lost update on booking %d: price %d", b.ID, b.TotalPrice)
		}
	}
}

func TestConcurrentUpdatesSameIDSerialize(t *testing.T) {
	svc := newTestService(t, nil)
	ctx := context.Background()

	const n = 16
	var g errgroup.Group
	for i := 0; i < n; i++ {
		g.Go(func() error {
			f := fields(500 + i)
			f.Firstname = strings.Repeat("x", i+1)
			_, err := svc.UpdateBooking(ctx, 1, f)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		t.Fatalf("concurrent update: %v", err)
	}

	final, err := repository.FindBooking(ptr(loadFile(t, svc)), 1)
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	i := final.TotalPrice - 500
	if i < 0 || i >= n || final.Firstname != strings.Repeat("x", i+1) {
		t.Fatalf("final state is not one of the payloads: %+v", final)
	}
	got, err := svc.GetBooking(ctx, 1)
	if err != nil || got != final {
		t.Fatalf("read after updates %+v, persisted %+v (err=%v)", got, final, err)
	}
}

func TestConcurrentReadersNeverSeeStaleAfterWrite(t *testing.T) {
	svc := newTestService(t, nil)
	ctx := context.Background()

	for round := 1; round <= 20; round++ {
		var g errgroup.Group
		for r := 0; r < 4; r++ {
			g.Go(func() error {
				_, err := svc.GetBooking(ctx, 1)
				return err
			})
		}
		if _, err := svc.UpdateBooking(ctx, 1, fields(round)); err != nil {
			t.Fatalf("update: %v", err)
		}
		if err := g.Wait(); err != nil {
			t.Fatalf("reader: %v", err)
		}
		got, err := svc.GetBooking(ctx, 1)
		if err != nil {
			t.Fatalf("get: %v", err)
		}
		if got.TotalPrice != round {
			t.Fatalf("round %d: stale price %d", round, got.TotalPrice)
		}
	}
}

func TestAuthenticate(t *testing.T) {
	svc := newTestService(t, nil)
	tok, err := svc.Authenticate(context.Background(), "user1", "pass1")
	if err != nil {
		t.Fatalf("authenticate: %v", err)
	}
	if tok != "fake-token-user1" {
		t.Fatalf("unexpected token %q", tok)
	}
	if _, err := svc.Authenticate(context.Background(), "user1", "wrong"); !errors.Is(err, repository.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestUploadProfileRecordsPhotoAndEmail(t *testing.T) {
	svc := newTestService(t, nil)
	u, err := svc.UploadProfile(context.Background(), 2, "two@example.com", "me.png", strings.NewReader("png data that spans several chunks"))
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	if u.Email != "two@example.com" || filepath.Ext(u.ProfilePhoto) != ".png" {
		t.Fatalf("unexpected user %+v", u)
	}
	stored, err := os.ReadFile(svc.Photos.Path(u.ProfilePhoto))
	if err != nil {
		t.Fatalf("read stored photo: %v", err)
	}
	if string(stored) != "png data that spans several chunks" {
		t.Fatalf("unexpected stored content %q", stored)
	}
	persisted, err := repository.FindUser(ptr(loadFile(t, svc)), 2)
	if err != nil {
		t.Fatalf("find user: %v", err)
	}
	if persisted != u {
		t.Fatalf("persisted %+v, returned %+v", persisted, u)
	}
}

func TestUploadProfileUnknownUserWritesNothing(t *testing.T) {
	svc := newTestService(t, nil)
	_, err := svc.UploadProfile(context.Background(), 404, "x@example.com", "me.jpg", strings.NewReader("bytes"))
	if !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	assertScratchEmpty(t, svc)
}

type brokenReader struct{}

func (brokenReader) Read([]byte) (int, error) { return 0, io.ErrUnexpectedEOF }

func TestUploadProfileStreamFailure(t *testing.T) {
	svc := newTestService(t, nil)
	_, err := svc.UploadProfile(context.Background(), 1, "x@example.com", "me.jpg", brokenReader{})
	if !errors.Is(err, repository.ErrUploadFailed) {
		t.Fatalf("expected ErrUploadFailed, got %v", err)
	}
	assertScratchEmpty(t, svc)
	u, _ := repository.FindUser(ptr(loadFile(t, svc)), 1)
	if u.ProfilePhoto != "" || u.Email != "one@example.com" {
		t.Fatalf("failed upload changed the user record: %+v", u)
	}
}

func TestUploadProfileScratchMissing(t *testing.T) {
	svc := newTestService(t, nil)
	svc.Photos.Close()
	_, err := svc.UploadProfile(context.Background(), 1, "x@example.com", "me.jpg", strings.NewReader("x"))
	if !errors.Is(err, repository.ErrStorageUnavailable) {
		t.Fatalf("expected ErrStorageUnavailable, got %v", err)
	}
}

func TestUpdateProfileUnknownUserDiscardsPhoto(t *testing.T) {
	svc := newTestService(t, nil)
	ref, err := svc.Photos.Save("a.jpg", strings.NewReader("x"))
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if _, err := svc.UpdateProfile(context.Background(), 77, "x@example.com", ref); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	assertScratchEmpty(t, svc)
}

func TestStorageErrors(t *testing.T) {
	dir := t.TempDir()
	photos, err := upload.NewScratch(filepath.Join(dir, "photos"), 0)
	if err != nil {
		t.Fatalf("new scratch: %v", err)
	}
	svc := New(repository.NewStore(filepath.Join(dir, "missing.json")), photos, nil)
	t.Cleanup(svc.Close)

	if _, err := svc.GetBooking(context.Background(), 1); !errors.Is(err, repository.ErrStorageUnavailable) {
		t.Fatalf("expected ErrStorageUnavailable, got %v", err)
	}
	if _, err := svc.CreateBooking(context.Background(), fields(1)); !errors.Is(err, repository.ErrStorageUnavailable) {
		t.Fatalf("expected ErrStorageUnavailable, got %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "missing.json")); !os.IsNotExist(err) {
		t.Fatalf("store must not recreate a missing data file")
	}
}

func TestMutationsPublishEvents(t *testing.T) {
	pub := &recordingPublisher{}
	svc := newTestService(t, pub)
	ctx := context.Background()

	b, err := svc.CreateBooking(ctx, fields(10))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := svc.UpdateBooking(ctx, b.ID, fields(20)); err != nil {
		t.Fatalf("update: %v", err)
	}
	if err := svc.DeleteBooking(ctx, b.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := svc.DeleteBooking(ctx, b.ID); err == nil {
		t.Fatalf("expected second delete to fail")
	}
	if _, err := svc.UploadProfile(ctx, 1, "n@example.com", "p.jpg", strings.NewReader("x")); err != nil {
		t.Fatalf("upload: %v", err)
	}
	svc.pending.Wait()

	got := pub.types()
	want := map[string]int{
		queue.EventBookingCreated: 1,
		queue.EventBookingUpdated: 1,
		queue.EventBookingDeleted: 1,
		queue.EventProfileUpdated: 1,
	}
	if len(got) != 4 {
		t.Fatalf("expected 4 events, got %v", got)
	}
	for _, typ := range got {
		want[typ]--
	}
	for typ, left := range want {
		if left != 0 {
			t.Fatalf("event %s count off by %d (got %v)", typ, left, got)
		}
	}
}

func assertScratchEmpty(t *testing.T, svc *Service) {
	t.Helper()
	entries, err := os.ReadDir(svc.Photos.Dir())
	if err != nil {
		t.Fatalf("read scratch dir: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("expected empty scratch dir, found %d files", len(entries))
	}
}

func ptr(ds model.Dataset) *model.Dataset { return &ds }
