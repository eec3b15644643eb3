package handlers

import (
	"context"
	"net/http"
	"testing"
	"time"

	"meetingtracker-be/internal/models"
	"meetingtracker-be/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type fakeAgendas struct {
	agendas []*models.Agenda
}

func (f *fakeAgendas) Create(_ context.Context, a *models.Agenda) error {
	a.ID = primitive.NewObjectID()
	f.agendas = append(f.agendas, a)
	return nil
}

func (f *fakeAgendas) List(_ context.Context, filter repository.MeetingFilter) ([]*models.Agenda, error) {
	out := []*models.Agenda{}
	for _, a := range f.agendas {
		if filter.Zones == nil || contains(filter.Zones, a.ZoneName) {
			out = append(out, a)
		}
	}
	return out, nil
}

func (f *fakeAgendas) Get(_ context.Context, id string) (*models.Agenda, error) {
	for _, a := range f.agendas {
		if a.ID.Hex() == id {
			return a, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeAgendas) Update(ctx context.Context, id string, req models.AgendaRequest) (*models.Agenda, error) {
	a, err := f.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	a.ZoneName, a.Date, a.Title, a.Items = req.ZoneName, req.Date, req.Title, req.Items
	return a, nil
}

func (f *fakeAgendas) Delete(_ context.Context, id string) error {
	for i, a := range f.agendas {
		if a.ID.Hex() == id {
			f.agendas = append(f.agendas[:i], f.agendas[i+1:]...)
			return nil
		}
	}
	return repository.ErrNotFound
}

func TestCreateAgendaCleansItems(t *testing.T) {
	store := &fakeAgendas{}
	h := NewAgendaHandler(store, time.Second)
	r := newRouter(zoneLeader("Z1"))
	r.POST("/agendas", h.Create)

	w := perform(r, http.MethodPost, "/agendas", models.AgendaRequest{
		ZoneName: "Z1",
		Date:     "2024-01-10",
		Title:    "Weekly <script>alert(1)</script>meeting",
		Items:    []string{"Budget", "  ", "<i>Outreach</i>"},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	require.Len(t, store.agendas, 1)

	a := store.agendas[0]
	assert.Equal(t, "Weekly meeting", a.Title)
	assert.Equal(t, []string{"Budget", "Outreach"}, a.Items)
	assert.Equal(t, "u1", a.CreatedBy)
}

func TestAgendaZoneChecks(t *testing.T) {
	other := &models.Agenda{ID: primitive.NewObjectID(), ZoneName: "Z2", Date: "2024-01-10", Title: "Plan"}
	store := &fakeAgendas{agendas: []*models.Agenda{other}}
	h := NewAgendaHandler(store, time.Second)
	r := newRouter(zoneLeader("Z1"))
	r.GET("/agendas", h.List)
	r.POST("/agendas", h.Create)
	r.DELETE("/agendas/:id", h.Delete)

	w := perform(r, http.MethodPost, "/agendas", models.AgendaRequest{ZoneName: "Z2", Date: "2024-01-10", Title: "x"})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = perform(r, http.MethodPost, "/agendas", models.AgendaRequest{ZoneName: "Z1", Date: "next week", Title: "x"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = perform(r, http.MethodDelete, "/agendas/"+other.ID.Hex(), nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = perform(r, http.MethodGet, "/agendas", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Agendas []models.Agenda `json:"agendas"`
	}
	decode(t, w, &resp)
	assert.Empty(t, resp.Agendas)
}
