package handlers

import (
	"context"
	"net/http"
	"testing"
	"time"

	"meetingtracker-be/internal/access"
	"meetingtracker-be/internal/models"
	"meetingtracker-be/internal/repository"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// fakeOrg is an in-memory OrgStore. Names are unique per collection, as the
// Mongo indexes enforce.
type fakeOrg struct {
	districts []*models.District
	zones     []*models.Zone
	units     []*models.Unit
	renames   [][2]string
}

func (f *fakeOrg) CreateDistrict(_ context.Context, d *models.District) error {
	for _, existing := range f.districts {
		if existing.Name == d.Name {
			return repository.ErrDuplicate
		}
	}
	d.ID = primitive.NewObjectID()
	f.districts = append(f.districts, d)
	return nil
}

func (f *fakeOrg) ListDistricts(_ context.Context) ([]*models.District, error) {
	return f.districts, nil
}

func (f *fakeOrg) GetDistrict(_ context.Context, id string) (*models.District, error) {
	for _, d := range f.districts {
		if d.ID.Hex() == id {
			return d, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeOrg) UpdateDistrict(ctx context.Context, id string, req models.DistrictRequest) (*models.District, error) {
	d, err := f.GetDistrict(ctx, id)
	if err != nil {
		return nil, err
	}
	for _, other := range f.districts {
		if other != d && other.Name == req.Name {
			return nil, repository.ErrDuplicate
		}
	}
	d.Name = req.Name
	return d, nil
}

func (f *fakeOrg) DeleteDistrict(_ context.Context, id string) error {
	for i, d := range f.districts {
		if d.ID.Hex() == id {
			f.districts = append(f.districts[:i], f.districts[i+1:]...)
			return nil
		}
	}
	return repository.ErrNotFound
}

func (f *fakeOrg) CreateZone(_ context.Context, z *models.Zone) error {
	for _, existing := range f.zones {
		if existing.Name == z.Name {
			return repository.ErrDuplicate
		}
	}
	z.ID = primitive.NewObjectID()
	f.zones = append(f.zones, z)
	return nil
}

func (f *fakeOrg) ListZones(_ context.Context, names []string) ([]*models.Zone, error) {
	out := []*models.Zone{}
	for _, z := range f.zones {
		if names == nil || contains(names, z.Name) {
			out = append(out, z)
		}
	}
	return out, nil
}

// GetZone returns a copy, like a fresh read from the database.
func (f *fakeOrg) GetZone(_ context.Context, id string) (*models.Zone, error) {
	z, err := f.zone(id)
	if err != nil {
		return nil, err
	}
	out := *z
	return &out, nil
}

func (f *fakeOrg) zone(id string) (*models.Zone, error) {
	for _, z := range f.zones {
		if z.ID.Hex() == id {
			return z, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeOrg) UpdateZone(_ context.Context, id string, req models.ZoneRequest) (*models.Zone, error) {
	z, err := f.zone(id)
	if err != nil {
		return nil, err
	}
	for _, other := range f.zones {
		if other != z && other.Name == req.Name {
			return nil, repository.ErrDuplicate
		}
	}
	z.Name, z.DistrictID, z.MeetingDay, z.Description = req.Name, req.DistrictID, req.MeetingDay, req.Description
	out := *z
	return &out, nil
}

func (f *fakeOrg) RenameZone(_ context.Context, oldName, newName string) error {
	f.renames = append(f.renames, [2]string{oldName, newName})
	for _, u := range f.units {
		if u.ZoneName == oldName {
			u.ZoneName = newName
		}
	}
	return nil
}

func (f *fakeOrg) DeleteZone(_ context.Context, id string) error {
	for i, z := range f.zones {
		if z.ID.Hex() == id {
			f.zones = append(f.zones[:i], f.zones[i+1:]...)
			return nil
		}
	}
	return repository.ErrNotFound
}

func (f *fakeOrg) CreateUnit(_ context.Context, u *models.Unit) error {
	for _, existing := range f.units {
		if existing.ZoneID == u.ZoneID && existing.Name == u.Name {
			return repository.ErrDuplicate
		}
	}
	u.ID = primitive.NewObjectID()
	f.units = append(f.units, u)
	return nil
}

func (f *fakeOrg) ListUnits(_ context.Context, zones []string) ([]*models.Unit, error) {
	out := []*models.Unit{}
	for _, u := range f.units {
		if zones == nil || contains(zones, u.ZoneName) {
			out = append(out, u)
		}
	}
	return out, nil
}

func (f *fakeOrg) GetUnit(_ context.Context, id string) (*models.Unit, error) {
	for _, u := range f.units {
		if u.ID.Hex() == id {
			return u, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeOrg) UpdateUnit(ctx context.Context, id string, name string, zone *models.Zone) (*models.Unit, error) {
	u, err := f.GetUnit(ctx, id)
	if err != nil {
		return nil, err
	}
	for _, other := range f.units {
		if other != u && other.ZoneID == zone.ID.Hex() && other.Name == name {
			return nil, repository.ErrDuplicate
		}
	}
	u.Name, u.ZoneID, u.ZoneName = name, zone.ID.Hex(), zone.Name
	return u, nil
}

func (f *fakeOrg) DeleteUnit(_ context.Context, id string) error {
	for i, u := range f.units {
		if u.ID.Hex() == id {
			f.units = append(f.units[:i], f.units[i+1:]...)
			return nil
		}
	}
	return repository.ErrNotFound
}

// seedOrg builds one district with zones Z1 and Z2 and a unit in each.
func seedOrg() *fakeOrg {
	d := &models.District{ID: primitive.NewObjectID(), Name: "North"}
	z1 := &models.Zone{ID: primitive.NewObjectID(), Name: "Z1", DistrictID: d.ID.Hex()}
	z2 := &models.Zone{ID: primitive.NewObjectID(), Name: "Z2", DistrictID: d.ID.Hex()}
	return &fakeOrg{
		districts: []*models.District{d},
		zones:     []*models.Zone{z1, z2},
		units: []*models.Unit{
			{ID: primitive.NewObjectID(), Name: "Alpha", ZoneID: z1.ID.Hex(), ZoneName: "Z1"},
			{ID: primitive.NewObjectID(), Name: "Beta", ZoneID: z2.ID.Hex(), ZoneName: "Z2"},
		},
	}
}

func orgRouter(store *fakeOrg, p *access.Principal) *gin.Engine {
	h := NewOrgHandler(store, time.Second)
	r := newRouter(p)
	r.GET("/districts", h.ListDistricts)
	r.POST("/districts", h.CreateDistrict)
	r.PUT("/districts/:id", h.UpdateDistrict)
	r.DELETE("/districts/:id", h.DeleteDistrict)
	r.GET("/zones", h.ListZones)
	r.GET("/zones/:id", h.GetZone)
	r.POST("/zones", h.CreateZone)
	r.PUT("/zones/:id", h.UpdateZone)
	r.GET("/units", h.ListUnits)
	r.POST("/units", h.CreateUnit)
	r.PUT("/units/:id", h.UpdateUnit)
	r.DELETE("/units/:id", h.DeleteUnit)
	return r
}

func TestCreateDistrictRejectsDuplicateName(t *testing.T) {
	store := seedOrg()
	r := orgRouter(store, admin())

	w := perform(r, http.MethodPost, "/districts", models.DistrictRequest{Name: "  North "})
	assert.Equal(t, http.StatusConflict, w.Code, w.Body.String())
	assert.Len(t, store.districts, 1)

	w = perform(r, http.MethodPost, "/districts", models.DistrictRequest{Name: "South"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Len(t, store.districts, 2)
}

func TestUpdateDistrictRejectsTakenName(t *testing.T) {
	store := seedOrg()
	store.districts = append(store.districts, &models.District{ID: primitive.NewObjectID(), Name: "South"})
	r := orgRouter(store, admin())

	w := perform(r, http.MethodPut, "/districts/"+store.districts[1].ID.Hex(), models.DistrictRequest{Name: "North"})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "South", store.districts[1].Name)
}

func TestDeleteDistrictNotFound(t *testing.T) {
	r := orgRouter(seedOrg(), admin())

	w := perform(r, http.MethodDelete, "/districts/"+primitive.NewObjectID().Hex(), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCreateZone(t *testing.T) {
	store := seedOrg()
	r := orgRouter(store, admin())
	district := store.districts[0].ID.Hex()

	t.Run("duplicate name", func(t *testing.T) {
		w := perform(r, http.MethodPost, "/zones", models.ZoneRequest{Name: " Z1 ", DistrictID: district})
		assert.Equal(t, http.StatusConflict, w.Code, w.Body.String())
	})

	t.Run("unknown district", func(t *testing.T) {
		w := perform(r, http.MethodPost, "/zones", models.ZoneRequest{Name: "Z3", DistrictID: primitive.NewObjectID().Hex()})
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("created", func(t *testing.T) {
		w := perform(r, http.MethodPost, "/zones", models.ZoneRequest{
			Name:        "Z3",
			DistrictID:  district,
			MeetingDay:  "Wednesday",
			Description: "<b>New</b> zone",
		})
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

		var z models.Zone
		decode(t, w, &z)
		assert.Equal(t, "Z3", z.Name)
		assert.Equal(t, "New zone", z.Description)
	})

	assert.Len(t, store.zones, 3)
}

func TestGetZoneOutsideLeaderZones(t *testing.T) {
	store := seedOrg()
	r := orgRouter(store, zoneLeader("Z1"))

	w := perform(r, http.MethodGet, "/zones/"+store.zones[1].ID.Hex(), nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = perform(r, http.MethodGet, "/zones/"+store.zones[0].ID.Hex(), nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestListZonesScopedToLeader(t *testing.T) {
	r := orgRouter(seedOrg(), zoneLeader("Z2"))

	w := perform(r, http.MethodGet, "/zones", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Zones []models.Zone `json:"zones"`
	}
	decode(t, w, &body)
	require.Len(t, body.Zones, 1)
	assert.Equal(t, "Z2", body.Zones[0].Name)
}

func TestUpdateZoneRenameCascades(t *testing.T) {
	store := seedOrg()
	r := orgRouter(store, admin())
	z1 := store.zones[0]

	w := perform(r, http.MethodPut, "/zones/"+z1.ID.Hex(), models.ZoneRequest{Name: "Zone One", DistrictID: z1.DistrictID})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	assert.Equal(t, [][2]string{{"Z1", "Zone One"}}, store.renames)
	assert.Equal(t, "Zone One", store.units[0].ZoneName)
	assert.Equal(t, "Z2", store.units[1].ZoneName)
}

func TestUpdateZoneWithoutRename(t *testing.T) {
	store := seedOrg()
	r := orgRouter(store, admin())
	z1 := store.zones[0]

	w := perform(r, http.MethodPut, "/zones/"+z1.ID.Hex(), models.ZoneRequest{Name: "Z1", DistrictID: z1.DistrictID, MeetingDay: "Thursday"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	assert.Empty(t, store.renames)
	assert.Equal(t, "Thursday", store.zones[0].MeetingDay)
}

func TestUpdateZoneRejectsTakenName(t *testing.T) {
	store := seedOrg()
	r := orgRouter(store, admin())
	z1 := store.zones[0]

	w := perform(r, http.MethodPut, "/zones/"+z1.ID.Hex(), models.ZoneRequest{Name: "Z2", DistrictID: z1.DistrictID})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Empty(t, store.renames)
	assert.Equal(t, "Z1", store.zones[0].Name)
}

func TestListUnitsScopedToLeader(t *testing.T) {
	store := seedOrg()

	tests := []struct {
		name string
		r    *gin.Engine
		want []string
	}{
		{"zone leader", orgRouter(store, zoneLeader("Z1")), []string{"Alpha"}},
		{"admin", orgRouter(store, admin()), []string{"Alpha", "Beta"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := perform(tt.r, http.MethodGet, "/units", nil)
			require.Equal(t, http.StatusOK, w.Code)

			var body struct {
				Units []models.Unit `json:"units"`
			}
			decode(t, w, &body)
			names := []string{}
			for _, u := range body.Units {
				names = append(names, u.Name)
			}
			assert.Equal(t, tt.want, names)
		})
	}
}

func TestCreateUnit(t *testing.T) {
	store := seedOrg()
	z1, z2 := store.zones[0].ID.Hex(), store.zones[1].ID.Hex()
	r := orgRouter(store, zoneLeader("Z1"))

	t.Run("other zone", func(t *testing.T) {
		w := perform(r, http.MethodPost, "/units", models.UnitRequest{Name: "Gamma", ZoneID: z2})
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("duplicate in zone", func(t *testing.T) {
		w := perform(r, http.MethodPost, "/units", models.UnitRequest{Name: "Alpha ", ZoneID: z1})
		assert.Equal(t, http.StatusConflict, w.Code, w.Body.String())
	})

	t.Run("created", func(t *testing.T) {
		w := perform(r, http.MethodPost, "/units", models.UnitRequest{Name: "Gamma", ZoneID: z1})
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

		var u models.Unit
		decode(t, w, &u)
		assert.Equal(t, "Z1", u.ZoneName)
		assert.Equal(t, z1, u.ZoneID)
	})

	assert.Len(t, store.units, 3)
}

func TestUpdateUnitOtherZone(t *testing.T) {
	store := seedOrg()
	alpha, beta := store.units[0], store.units[1]
	z1, z2 := store.zones[0].ID.Hex(), store.zones[1].ID.Hex()
	r := orgRouter(store, zoneLeader("Z1"))

	// unit lives in a zone the leader does not run
	w := perform(r, http.MethodPut, "/units/"+beta.ID.Hex(), models.UnitRequest{Name: "Beta", ZoneID: z1})
	assert.Equal(t, http.StatusForbidden, w.Code)

	// moving an own unit into a foreign zone
	w = perform(r, http.MethodPut, "/units/"+alpha.ID.Hex(), models.UnitRequest{Name: "Alpha", ZoneID: z2})
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "Z1", alpha.ZoneName)

	w = perform(r, http.MethodPut, "/units/"+alpha.ID.Hex(), models.UnitRequest{Name: "Alpha Prime", ZoneID: z1})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "Alpha Prime", alpha.Name)
}

func TestDeleteUnitOtherZone(t *testing.T) {
	store := seedOrg()
	r := orgRouter(store, zoneLeader("Z1"))

	w := perform(r, http.MethodDelete, "/units/"+store.units[1].ID.Hex(), nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Len(t, store.units, 2)

	w = perform(r, http.MethodDelete, "/units/"+store.units[0].ID.Hex(), nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Len(t, store.units, 1)
}
