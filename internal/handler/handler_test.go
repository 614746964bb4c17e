package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/westay/reservations/internal/model"
	"github.com/westay/reservations/internal/service"
)

// fakeStore is a minimal in-memory ReservationStore for exercising the
// HTTP surface end to end (handler -> service -> store).
type fakeStore struct {
	rows []model.Reservation
}

func (f *fakeStore) Create(_ context.Context, res *model.Reservation) error {
	f.rows = append(f.rows, *res)
	return nil
}

func (f *fakeStore) GetByID(_ context.Context, id string) (*model.Reservation, error) {
	for i := range f.rows {
		if f.rows[i].ID == id {
			r := f.rows[i]
			return &r, nil
		}
	}
	return nil, model.ErrNotFound
}

func (f *fakeStore) GetByCode(_ context.Context, code string) (*model.Reservation, error) {
	for i := range f.rows {
		if f.rows[i].HumanCode == code {
			r := f.rows[i]
			return &r, nil
		}
	}
	return nil, model.ErrNotFound
}

func (f *fakeStore) ListByListing(_ context.Context, listingID string, activeOnly bool) ([]model.Reservation, error) {
	var out []model.Reservation
	for _, r := range f.rows {
		if r.ListingID == listingID && (!activeOnly || r.Status.BlocksAvailability()) {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeStore) ListByRequester(_ context.Context, requesterID string) ([]model.Reservation, error) {
	var out []model.Reservation
	for _, r := range f.rows {
		if r.RequesterID == requesterID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeStore) UpdateStatus(_ context.Context, id string, from, to model.Status, reason string) (*model.Reservation, error) {
	for i := range f.rows {
		if f.rows[i].ID == id && f.rows[i].Status == from {
			f.rows[i].Status = to
			if to == model.StatusCancelled || to == model.StatusRejected {
				f.rows[i].CancellationReason = reason
			}
			r := f.rows[i]
			return &r, nil
		}
	}
	return nil, model.ErrNotFound
}

type fakeDirectory struct{}

func (fakeDirectory) GetListingInfo(_ context.Context, listingID string) (*model.ListingInfo, error) {
	if listingID != "lst-1" {
		return nil, model.ErrNotFound
	}
	return &model.ListingInfo{
		ID: "lst-1", OwnerID: "owner-1", Capacity: 4,
		NightlyRate: 100, Currency: "USD", IsActive: true,
	}, nil
}

func newTestRouter(store *fakeStore) http.Handler {
	svc := service.NewReservationService(store, fakeDirectory{})
	h := NewReservationHandler(svc)

	r := chi.NewRouter()
	r.Route("/reservations", func(r chi.Router) {
		r.Post("/", h.CreateReservation)
		r.Get("/{id}", h.GetReservation)
		r.Patch("/{id}/status", h.UpdateStatus)
		r.Get("/code/{code}", h.GetReservationByCode)
		r.Get("/user/{userID}", h.ListUserReservations)
	})
	r.Post("/availability", h.CheckAvailability)
	r.Route("/listings/{listingID}", func(r chi.Router) {
		r.Get("/reservations", h.ListListingReservations)
		r.Get("/quote", h.Quote)
		r.Get("/unavailable-dates", h.UnavailableDates)
	})
	return r
}

func doRequest(t *testing.T, router http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func futureDate(days int) string {
	return time.Now().UTC().AddDate(0, 0, days).Format("2006-01-02")
}

func TestCreateReservationEndpoint(t *testing.T) {
	store := &fakeStore{}
	router := newTestRouter(store)

	body := `{"listing_id":"lst-1","requester_id":"guest-1","check_in":"` + futureDate(10) +
		`","check_out":"` + futureDate(14) + `","guest_count":2}`
	rec := doRequest(t, router, http.MethodPost, "/reservations", body)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201; body %s", rec.Code, rec.Body.String())
	}

	var res model.Reservation
	if err := json.Unmarshal(rec.Body.Bytes(), &res); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if res.TotalPrice != 400 || res.Status != model.StatusPending {
		t.Errorf("unexpected reservation: %+v", res)
	}

	// Same dates again: conflict.
	rec = doRequest(t, router, http.MethodPost, "/reservations", body)
	if rec.Code != http.StatusConflict {
		t.Errorf("duplicate dates status = %d, want 409", rec.Code)
	}
}

func TestCreateReservationEndpointValidation(t *testing.T) {
	router := newTestRouter(&fakeStore{})

	// Missing fields rejected by the validator before the service runs.
	rec := doRequest(t, router, http.MethodPost, "/reservations", `{"listing_id":"lst-1"}`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}

	// Malformed date rejected by the datetime tag.
	rec = doRequest(t, router, http.MethodPost, "/reservations",
		`{"listing_id":"lst-1","requester_id":"g","check_in":"01/02/2027","check_out":"2027-01-05","guest_count":1}`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}

	// Unknown listing maps to 404.
	rec = doRequest(t, router, http.MethodPost, "/reservations",
		`{"listing_id":"lst-x","requester_id":"g","check_in":"`+futureDate(5)+`","check_out":"`+futureDate(8)+`","guest_count":1}`)
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestUpdateStatusEndpoint(t *testing.T) {
	store := &fakeStore{rows: []model.Reservation{{
		ID: "res-1", ListingID: "lst-1", RequesterID: "guest-1",
		Status: model.StatusPending,
	}}}
	router := newTestRouter(store)

	rec := doRequest(t, router, http.MethodPatch, "/reservations/res-1/status",
		`{"acting_user_id":"owner-1","status":"confirmed"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200; body %s", rec.Code, rec.Body.String())
	}

	// Confirmed -> rejected is not in the transition table.
	rec = doRequest(t, router, http.MethodPatch, "/reservations/res-1/status",
		`{"acting_user_id":"owner-1","status":"rejected"}`)
	if rec.Code != http.StatusConflict {
		t.Errorf("invalid transition status = %d, want 409", rec.Code)
	}

	// A stranger may not act at all.
	rec = doRequest(t, router, http.MethodPatch, "/reservations/res-1/status",
		`{"acting_user_id":"nobody","status":"cancelled"}`)
	if rec.Code != http.StatusForbidden {
		t.Errorf("stranger status = %d, want 403", rec.Code)
	}

	// Unknown status string.
	rec = doRequest(t, router, http.MethodPatch, "/reservations/res-1/status",
		`{"acting_user_id":"owner-1","status":"refunded"}`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("unknown status = %d, want 400", rec.Code)
	}
}

func TestAvailabilityAndReportEndpoints(t *testing.T) {
	store := &fakeStore{rows: []model.Reservation{{
		ID: "res-1", ListingID: "lst-1", RequesterID: "guest-1",
		CheckIn:  time.Date(2027, 1, 10, 0, 0, 0, 0, time.UTC),
		CheckOut: time.Date(2027, 1, 12, 0, 0, 0, 0, time.UTC),
		Status:   model.StatusConfirmed,
	}}}
	router := newTestRouter(store)

	rec := doRequest(t, router, http.MethodPost, "/availability",
		`{"listing_id":"lst-1","check_in":"2027-01-11","check_out":"2027-01-13"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("availability status = %d; body %s", rec.Code, rec.Body.String())
	}
	var avail model.AvailabilityResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &avail); err != nil {
		t.Fatalf("decode availability: %v", err)
	}
	if avail.Available {
		t.Error("overlapping range reported available")
	}

	rec = doRequest(t, router, http.MethodGet, "/listings/lst-1/unavailable-dates?start=2027-01-01&end=2027-01-31", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("unavailable-dates status = %d", rec.Code)
	}
	var days []string
	if err := json.Unmarshal(rec.Body.Bytes(), &days); err != nil {
		t.Fatalf("decode days: %v", err)
	}
	if len(days) != 2 || days[0] != "2027-01-10" || days[1] != "2027-01-11" {
		t.Errorf("days = %v, want [2027-01-10 2027-01-11]", days)
	}

	rec = doRequest(t, router, http.MethodGet, "/listings/lst-1/quote?check_in=2027-02-01&check_out=2027-02-05", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("quote status = %d", rec.Code)
	}
	var quote model.PriceQuote
	if err := json.Unmarshal(rec.Body.Bytes(), &quote); err != nil {
		t.Fatalf("decode quote: %v", err)
	}
	if quote.TotalPrice != 400 || quote.Nights != 4 {
		t.Errorf("quote = %+v, want 4 nights at 100", quote)
	}
}

func TestGetReservationEndpoints(t *testing.T) {
	store := &fakeStore{rows: []model.Reservation{{
		ID: "res-1", HumanCode: "AB12CD34", ListingID: "lst-1", RequesterID: "guest-1",
		Status: model.StatusPending,
	}}}
	router := newTestRouter(store)

	if rec := doRequest(t, router, http.MethodGet, "/reservations/res-1", ""); rec.Code != http.StatusOK {
		t.Errorf("get by id status = %d, want 200", rec.Code)
	}
	if rec := doRequest(t, router, http.MethodGet, "/reservations/code/AB12CD34", ""); rec.Code != http.StatusOK {
		t.Errorf("get by code status = %d, want 200", rec.Code)
	}
	if rec := doRequest(t, router, http.MethodGet, "/reservations/nope", ""); rec.Code != http.StatusNotFound {
		t.Errorf("missing id status = %d, want 404", rec.Code)
	}
	if rec := doRequest(t, router, http.MethodGet, "/reservations/user/guest-1", ""); rec.Code != http.StatusOK {
		t.Errorf("list by user status = %d, want 200", rec.Code)
	}
	if rec := doRequest(t, router, http.MethodGet, "/listings/lst-1/reservations?active=true", ""); rec.Code != http.StatusOK {
		t.Errorf("list by listing status = %d, want 200", rec.Code)
	}
}
