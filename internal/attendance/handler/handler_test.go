package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gatherly/internal/attendance/models"
	"gatherly/internal/attendance/service"
	eventmodels "gatherly/internal/event/models"
	eventstore "gatherly/internal/event/store"
	membermodels "gatherly/internal/member/models"
	memberstore "gatherly/internal/member/store"
	regmodels "gatherly/internal/registration/models"
	regstore "gatherly/internal/registration/store"
	id "gatherly/pkg/domain"
)

type env struct {
	router  chi.Router
	events  *eventstore.InMemory
	members *memberstore.InMemory
	regs    *regstore.InMemory
}

func newEnv(t *testing.T) *env {
	t.Helper()
	e := &env{
		events:  eventstore.NewInMemory(),
		members: memberstore.NewInMemory(),
		regs:    regstore.NewInMemory(),
	}
	svc := service.New(e.events, e.members, e.regs)
	h := New(svc, slog.New(slog.DiscardHandler))

	r := chi.NewRouter()
	h.Register(r)
	e.router = r
	return e
}

func (e *env) addEvent(t *testing.T, capacity *int) id.EventID {
	t.Helper()
	event, err := eventmodels.NewEvent(id.NewEventID(), "door night", capacity, nil, time.Now().UTC())
	require.NoError(t, err)
	require.NoError(t, e.events.Create(context.Background(), event))
	return event.ID
}

func (e *env) addMember(t *testing.T, name string) id.MemberID {
	t.Helper()
	member := &membermodels.Member{
		ID:        id.NewMemberID(),
		FullName:  name,
		Email:     name + "@example.com",
		Role:      membermodels.RoleMember,
		CreatedAt: time.Now().UTC(),
	}
	require.NoError(t, e.members.Create(context.Background(), member))
	return member.ID
}

func (e *env) addConfirmed(t *testing.T, memberID id.MemberID, eventID id.EventID) {
	t.Helper()
	reg := regmodels.NewConfirmed(memberID, eventID, time.Now().UTC())
	require.NoError(t, e.regs.Create(context.Background(), reg))
}

func (e *env) put(t *testing.T, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPut, path, nil)
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func intPtr(n int) *int { return &n }

func TestHandleCheckIn(t *testing.T) {
	e := newEnv(t)
	eventID := e.addEvent(t, intPtr(10))
	memberID := e.addMember(t, "ada")
	e.addConfirmed(t, memberID, eventID)

	rec := e.put(t, "/attendance/events/"+eventID.String()+"/checkin/"+memberID.String())
	require.Equal(t, http.StatusOK, rec.Code)

	var snap models.Snapshot
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&snap))
	require.NotNil(t, snap.CheckedIn)
	assert.True(t, *snap.CheckedIn)
	assert.Equal(t, 1, snap.CheckedInCount)
	require.NotNil(t, snap.OccupancyPercent)
	assert.InDelta(t, 10.0, *snap.OccupancyPercent, 0.001)
}

func TestHandleCheckIn_NoRegistration(t *testing.T) {
	e := newEnv(t)
	eventID := e.addEvent(t, intPtr(10))
	memberID := e.addMember(t, "ada")

	rec := e.put(t, "/attendance/events/"+eventID.String()+"/checkin/"+memberID.String())
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandleCheckIn_BadIDs(t *testing.T) {
	e := newEnv(t)
	rec := e.put(t, "/attendance/events/not-a-uuid/checkin/"+id.NewMemberID().String())
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = e.put(t, "/attendance/events/"+id.NewEventID().String()+"/checkin/not-a-uuid")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleUndoCheckIn(t *testing.T) {
	e := newEnv(t)
	eventID := e.addEvent(t, intPtr(10))
	memberID := e.addMember(t, "ada")
	e.addConfirmed(t, memberID, eventID)

	base := "/attendance/events/" + eventID.String() + "/checkin/" + memberID.String()
	require.Equal(t, http.StatusOK, e.put(t, base).Code)

	rec := e.put(t, base+"/undo")
	require.Equal(t, http.StatusOK, rec.Code)

	var snap models.Snapshot
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&snap))
	require.NotNil(t, snap.CheckedIn)
	assert.False(t, *snap.CheckedIn)
	assert.Equal(t, 0, snap.CheckedInCount)
}

func TestHandleListEvents(t *testing.T) {
	e := newEnv(t)
	eventID := e.addEvent(t, intPtr(4))
	memberID := e.addMember(t, "ada")
	e.addConfirmed(t, memberID, eventID)

	req := httptest.NewRequest(http.MethodGet, "/attendance/events", nil)
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Events []models.EventSummary `json:"events"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	require.Len(t, body.Events, 1)
	assert.Equal(t, eventID, body.Events[0].EventID)
	assert.Equal(t, 1, body.Events[0].RegisteredCount)
	assert.Equal(t, 0, body.Events[0].CheckedInCount)
}

func TestHandleListAttendees(t *testing.T) {
	e := newEnv(t)
	eventID := e.addEvent(t, intPtr(4))
	ada := e.addMember(t, "ada")
	bob := e.addMember(t, "bob")
	e.addConfirmed(t, ada, eventID)
	e.addConfirmed(t, bob, eventID)

	require.Equal(t, http.StatusOK,
		e.put(t, "/attendance/events/"+eventID.String()+"/checkin/"+ada.String()).Code)

	req := httptest.NewRequest(http.MethodGet, "/attendance/events/"+eventID.String()+"/attendees", nil)
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var list models.AttendeeList
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&list))
	assert.Equal(t, 2, list.RegisteredCount)
	assert.Equal(t, 1, list.CheckedInCount)
	require.Len(t, list.Attendees, 2)
}

func TestHandleListAttendees_UnknownEvent(t *testing.T) {
	e := newEnv(t)
	req := httptest.NewRequest(http.MethodGet, "/attendance/events/"+id.NewEventID().String()+"/attendees", nil)
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
