package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/greenloop/dumpster-coordination/internal/gateway"
	"github.com/greenloop/dumpster-coordination/internal/model"
	"github.com/greenloop/dumpster-coordination/internal/repository"
)

// ─── In-memory fakes ──────────────────────────────────────────────────────────

type fakeEmployeeStore struct {
	employees map[string]*model.Employee
}

func (f *fakeEmployeeStore) GetByID(_ context.Context, id string) (*model.Employee, error) {
	if e, ok := f.employees[id]; ok {
		return e, nil
	}
	return nil, repository.ErrNotFound
}

func (f *fakeEmployeeStore) GetByEmail(_ context.Context, email string) (*model.Employee, error) {
	for _, e := range f.employees {
		if e.Email == email {
			return e, nil
		}
	}
	return nil, repository.ErrNotFound
}

type fakePlantStore struct {
	plants  map[string]*model.Plant
	counter map[string]int
}

func (f *fakePlantStore) List(_ context.Context) ([]model.Plant, error) {
	var out []model.Plant
	for _, p := range f.plants {
		out = append(out, *p)
	}
	return out, nil
}

func (f *fakePlantStore) GetByID(_ context.Context, id string) (*model.Plant, error) {
	if p, ok := f.plants[id]; ok {
		copied := *p
		return &copied, nil
	}
	return nil, repository.ErrNotFound
}

func (f *fakePlantStore) AddContainersReceived(_ context.Context, plantID string, containers int) error {
	if _, ok := f.plants[plantID]; !ok {
		return repository.ErrNotFound
	}
	if f.counter == nil {
		f.counter = make(map[string]int)
	}
	f.counter[plantID] += containers
	f.plants[plantID].TotalContainersReceived += containers
	return nil
}

type fakeDumpsterStore struct {
	dumpsters map[string]*model.Dumpster
}

func (f *fakeDumpsterStore) Create(_ context.Context, d *model.Dumpster) error {
	f.dumpsters[d.DumpsterID] = d
	return nil
}

func (f *fakeDumpsterStore) GetByID(_ context.Context, id string) (*model.Dumpster, error) {
	if d, ok := f.dumpsters[id]; ok {
		copied := *d
		return &copied, nil
	}
	return nil, repository.ErrNotFound
}

func (f *fakeDumpsterStore) UpdateStatus(_ context.Context, id, fillLevel string, containersNumber int) error {
	d, ok := f.dumpsters[id]
	if !ok {
		return repository.ErrNotFound
	}
	d.FillLevel = fillLevel
	d.ContainersNumber = containersNumber
	return nil
}

func (f *fakeDumpsterStore) ListByPostalCode(_ context.Context, postalCode string) ([]model.Dumpster, error) {
	var out []model.Dumpster
	for _, d := range f.dumpsters {
		if postalCode == "" || d.PostalCode == postalCode {
			out = append(out, *d)
		}
	}
	return out, nil
}

type fakeAssignmentStore struct {
	batches [][]model.Assignment
}

func (f *fakeAssignmentStore) CreateBatch(_ context.Context, assignments []model.Assignment) error {
	f.batches = append(f.batches, assignments)
	return nil
}

func (f *fakeAssignmentStore) all() []model.Assignment {
	var out []model.Assignment
	for _, b := range f.batches {
		out = append(out, b...)
	}
	return out
}

// fakeGateway records notifications and can be told to fail.
type fakeGateway struct {
	capacity   float64
	capacityErr error
	notifyErr  error
	notified   []fakeNotification
}

type fakeNotification struct {
	plantID         string
	dumpsterIDs     []string
	totalContainers int
	date            time.Time
}

func (g *fakeGateway) GetCapacity(_ context.Context, _ *model.Plant, _ time.Time) (float64, error) {
	if g.capacityErr != nil {
		return 0, g.capacityErr
	}
	return g.capacity, nil
}

func (g *fakeGateway) NotifyIncoming(_ context.Context, plant *model.Plant, dumpsterIDs []string, totalContainers int, date time.Time) error {
	g.notified = append(g.notified, fakeNotification{plant.PlantID, dumpsterIDs, totalContainers, date})
	return g.notifyErr
}

type fixture struct {
	svc         *PlantService
	plants      *fakePlantStore
	assignments *fakeAssignmentStore
	gw          *fakeGateway
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	employees := &fakeEmployeeStore{employees: map[string]*model.Employee{
		"E001": {EmployeeID: "E001", Name: "Admin User", Email: "admin@greenloop.example"},
	}}
	plants := &fakePlantStore{plants: map[string]*model.Plant{
		"CONTSO-01": {PlantID: "CONTSO-01", Name: "ContSocket Ltd.", GatewayType: model.GatewayContSocket, AvailableCapacity: 80.5},
	}}
	dumpsters := &fakeDumpsterStore{dumpsters: map[string]*model.Dumpster{
		"D-123": {DumpsterID: "D-123", PostalCode: "48007", ContainersNumber: 123},
		"D-456": {DumpsterID: "D-456", PostalCode: "48011", ContainersNumber: 456},
	}}
	assignments := &fakeAssignmentStore{}
	gw := &fakeGateway{capacity: 80.5}
	registry := gateway.NewRegistry(map[string]gateway.PlantGateway{model.GatewayContSocket: gw})

	return &fixture{
		svc:         NewPlantService(employees, plants, dumpsters, assignments, registry, nil),
		plants:      plants,
		assignments: assignments,
		gw:          gw,
	}
}

// ─── Assignment workflow ──────────────────────────────────────────────────────

func TestAssignDumpstersBatch(t *testing.T) {
	f := newFixture(t)
	date := time.Date(2025, 11, 5, 0, 0, 0, 0, time.UTC)

	result, err := f.svc.AssignDumpsters(context.Background(), "E001", "CONTSO-01", []string{"D-123", "D-456"}, date)
	require.NoError(t, err)

	assert.Equal(t, "E001", result.EmployeeID)
	assert.Equal(t, "Admin User", result.EmployeeName)
	assert.Equal(t, "CONTSO-01", result.PlantID)
	assert.Equal(t, []string{"D-123", "D-456"}, result.DumpsterIDs)
	assert.Equal(t, "2025-11-05", result.Date)
	assert.Equal(t, model.StatusPending, result.Status)

	// The plant counter grew by exactly the batch total.
	assert.Equal(t, 579, f.plants.counter["CONTSO-01"])

	// Two records with frozen container snapshots.
	all := f.assignments.all()
	require.Len(t, all, 2)
	assert.Equal(t, 123, all[0].AssignedContainers)
	assert.Equal(t, 456, all[1].AssignedContainers)
	for _, a := range all {
		assert.Equal(t, model.StatusPending, a.Status)
		assert.NotEmpty(t, a.ID)
	}

	// The plant was notified once, with the batch total and the date.
	require.Len(t, f.gw.notified, 1)
	assert.Equal(t, 579, f.gw.notified[0].totalContainers)
	assert.Equal(t, []string{"D-123", "D-456"}, f.gw.notified[0].dumpsterIDs)
	assert.Equal(t, date, f.gw.notified[0].date)
}

func TestAssignDumpstersNotificationFailureIsSwallowed(t *testing.T) {
	f := newFixture(t)
	f.gw.notifyErr = errors.New("connection refused")

	result, err := f.svc.AssignDumpsters(context.Background(), "E001", "CONTSO-01", []string{"D-123", "D-456"},
		time.Date(2025, 11, 5, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err, "notification failure must not fail the assignment")

	assert.Equal(t, model.StatusPending, result.Status)
	assert.Len(t, f.assignments.all(), 2, "assignments must be persisted despite the transport error")
	assert.Equal(t, 579, f.plants.counter["CONTSO-01"], "counter must be updated despite the transport error")
}

func TestAssignDumpstersUnknownEmployee(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.AssignDumpsters(context.Background(), "E999", "CONTSO-01", []string{"D-123"}, time.Time{})
	require.ErrorIs(t, err, repository.ErrNotFound)
	assert.Empty(t, f.assignments.all())
	assert.Empty(t, f.gw.notified)
}

func TestAssignDumpstersUnknownPlant(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.AssignDumpsters(context.Background(), "E001", "P-NOPE", []string{"D-123"}, time.Time{})
	require.ErrorIs(t, err, repository.ErrNotFound)
	assert.Empty(t, f.assignments.all())
}

func TestAssignDumpstersUnknownDumpsterAbortsWholeBatch(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.AssignDumpsters(context.Background(), "E001", "CONTSO-01",
		[]string{"D-123", "D-NOPE", "D-456"}, time.Time{})
	require.ErrorIs(t, err, repository.ErrNotFound)

	assert.Empty(t, f.assignments.all(), "no partial batch may be persisted")
	assert.Zero(t, f.plants.counter["CONTSO-01"])
	assert.Empty(t, f.gw.notified)
}

func TestAssignDumpstersEmptyBatchShortCircuits(t *testing.T) {
	f := newFixture(t)

	result, err := f.svc.AssignDumpsters(context.Background(), "E001", "CONTSO-01", nil, time.Time{})
	require.NoError(t, err)

	assert.Empty(t, result.DumpsterIDs)
	assert.Equal(t, model.StatusPending, result.Status)
	assert.Empty(t, f.assignments.all())
	assert.Zero(t, f.plants.counter["CONTSO-01"])
	assert.Empty(t, f.gw.notified, "an empty batch must not notify the plant")
}

func TestAssignDumpstersDefaultsDateToToday(t *testing.T) {
	f := newFixture(t)

	result, err := f.svc.AssignDumpsters(context.Background(), "E001", "CONTSO-01", []string{"D-123"}, time.Time{})
	require.NoError(t, err)
	assert.Equal(t, time.Now().Format(model.DateLayout), result.Date)
}

func TestAssignDumpstersUnknownGatewayStillAssigns(t *testing.T) {
	f := newFixture(t)
	f.plants.plants["CONTSO-01"].GatewayType = "CarrierPigeon"

	result, err := f.svc.AssignDumpsters(context.Background(), "E001", "CONTSO-01", []string{"D-123"}, time.Time{})
	require.NoError(t, err, "a misconfigured gateway must not unwind the local assignment")
	assert.Equal(t, []string{"D-123"}, result.DumpsterIDs)
	assert.Len(t, f.assignments.all(), 1)
	assert.Empty(t, f.gw.notified)
}

// ─── Capacity queries ─────────────────────────────────────────────────────────

func TestPlantCapacityUsesGateway(t *testing.T) {
	f := newFixture(t)
	f.gw.capacity = 75.5

	capacities, err := f.svc.PlantCapacity(context.Background(),
		time.Date(2025, 11, 5, 0, 0, 0, 0, time.UTC), "CONTSO-01")
	require.NoError(t, err)
	require.Len(t, capacities, 1)
	assert.Equal(t, 75.5, capacities[0].Capacity)
}

func TestPlantCapacityFallsBackToCachedFigure(t *testing.T) {
	f := newFixture(t)
	f.gw.capacityErr = errors.New("connection refused")

	capacities, err := f.svc.PlantCapacity(context.Background(), time.Time{}, "CONTSO-01")
	require.NoError(t, err)
	require.Len(t, capacities, 1)
	assert.Equal(t, 80.5, capacities[0].Capacity, "unreachable plant falls back to the cached capacity")
}

func TestPlantCapacityUnknownPlant(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.PlantCapacity(context.Background(), time.Time{}, "P-NOPE")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}
