package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/greenloop/dumpster-coordination/internal/model"
	"github.com/greenloop/dumpster-coordination/internal/repository"
)

// defaultNotifyTimeout bounds a single remote plant call made on behalf of an
// orchestrator request.
const defaultNotifyTimeout = 10 * time.Second

// PlantService orchestrates plant capacity queries and the dumpster
// assignment workflow.
type PlantService struct {
	employees   EmployeeStore
	plants      PlantStore
	dumpsters   DumpsterStore
	assignments AssignmentStore
	gateways    GatewayResolver
	log         *slog.Logger
	timeout     time.Duration
}

// NewPlantService constructs a PlantService with its dependencies.
func NewPlantService(
	employees EmployeeStore,
	plants PlantStore,
	dumpsters DumpsterStore,
	assignments AssignmentStore,
	gateways GatewayResolver,
	log *slog.Logger,
) *PlantService {
	if log == nil {
		log = slog.Default()
	}
	return &PlantService{
		employees:   employees,
		plants:      plants,
		dumpsters:   dumpsters,
		assignments: assignments,
		gateways:    gateways,
		log:         log,
		timeout:     defaultNotifyTimeout,
	}
}

// ListPlants returns every plant with its live capacity for today. When the
// remote plant cannot be reached, the locally cached figure is used instead.
func (s *PlantService) ListPlants(ctx context.Context) ([]model.PlantCapacity, error) {
	return s.PlantCapacity(ctx, time.Now(), "")
}

// PlantCapacity returns per-date capacities, optionally for one plant only.
// A zero date means today. The remote plant is authoritative; its locally
// cached capacity is only a fallback when the remote query fails.
func (s *PlantService) PlantCapacity(ctx context.Context, date time.Time, plantID string) ([]model.PlantCapacity, error) {
	if date.IsZero() {
		date = time.Now()
	}

	var plants []model.Plant
	if plantID != "" {
		plant, err := s.plants.GetByID(ctx, plantID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return nil, repository.ErrNotFound
			}
			return nil, fmt.Errorf("get plant: %w", err)
		}
		plants = []model.Plant{*plant}
	} else {
		var err error
		plants, err = s.plants.List(ctx)
		if err != nil {
			return nil, fmt.Errorf("list plants: %w", err)
		}
	}

	capacities := make([]model.PlantCapacity, 0, len(plants))
	for _, plant := range plants {
		capacities = append(capacities, model.PlantCapacity{
			PlantID:  plant.PlantID,
			Name:     plant.Name,
			Capacity: s.liveCapacity(ctx, &plant, date),
		})
	}
	return capacities, nil
}

// liveCapacity queries the plant through its gateway, falling back to the
// cached figure on any error.
func (s *PlantService) liveCapacity(ctx context.Context, plant *model.Plant, date time.Time) float64 {
	gw, err := s.gateways.Lookup(plant.GatewayType)
	if err != nil {
		s.log.Error("gateway lookup failed", "plant", plant.PlantID, "gateway_type", plant.GatewayType, "error", err)
		return plant.AvailableCapacity
	}

	callCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	capacity, err := gw.GetCapacity(callCtx, plant, date)
	if err != nil {
		s.log.Warn("capacity query failed, using cached figure",
			"plant", plant.PlantID, "date", date.Format(model.DateLayout), "error", err)
		return plant.AvailableCapacity
	}
	return capacity
}

// AssignDumpsters runs the end-to-end assignment workflow:
//
//  1. resolve employee and plant; either missing fails the whole call,
//  2. default the assignment date to today,
//  3. resolve every dumpster before anything is written; one unresolved id
//     aborts the entire batch,
//  4. snapshot each dumpster's container count into an immutable record,
//  5. persist the batch and bump the plant's cumulative received counter,
//  6. notify the remote plant, best-effort: a transport failure is logged
//     and swallowed; the local assignment is final regardless,
//  7. return the batch summary.
//
// Step 6 is not a transaction with steps 4-5: local durability wins over
// remote consistency, and the notification is at-least-once by design.
func (s *PlantService) AssignDumpsters(ctx context.Context, employeeID, plantID string, dumpsterIDs []string, date time.Time) (*model.AssignmentResult, error) {
	employee, err := s.employees.GetByID(ctx, employeeID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("employee %s: %w", employeeID, repository.ErrNotFound)
		}
		return nil, fmt.Errorf("get employee: %w", err)
	}

	plant, err := s.plants.GetByID(ctx, plantID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("plant %s: %w", plantID, repository.ErrNotFound)
		}
		return nil, fmt.Errorf("get plant: %w", err)
	}

	if date.IsZero() {
		date = time.Now()
	}

	result := &model.AssignmentResult{
		EmployeeID:   employee.EmployeeID,
		EmployeeName: employee.Name,
		PlantID:      plant.PlantID,
		DumpsterIDs:  []string{},
		Date:         date.Format(model.DateLayout),
		Status:       model.StatusPending,
	}
	if len(dumpsterIDs) == 0 {
		return result, nil
	}

	// Resolve the whole batch before writing anything, so an unknown
	// dumpster cannot leave a partial batch behind.
	dumpsters := make([]*model.Dumpster, 0, len(dumpsterIDs))
	for _, id := range dumpsterIDs {
		dumpster, err := s.dumpsters.GetByID(ctx, id)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return nil, fmt.Errorf("dumpster %s: %w", id, repository.ErrNotFound)
			}
			return nil, fmt.Errorf("get dumpster: %w", err)
		}
		dumpsters = append(dumpsters, dumpster)
	}

	now := time.Now().UTC()
	totalContainers := 0
	assignments := make([]model.Assignment, 0, len(dumpsters))
	for _, dumpster := range dumpsters {
		assignments = append(assignments, model.Assignment{
			ID:                 uuid.New().String(),
			PlantID:            plant.PlantID,
			DumpsterID:         dumpster.DumpsterID,
			EmployeeID:         employee.EmployeeID,
			AssignmentDate:     date,
			CreatedAt:          now,
			Status:             model.StatusPending,
			AssignedContainers: dumpster.ContainersNumber,
		})
		totalContainers += dumpster.ContainersNumber
		result.DumpsterIDs = append(result.DumpsterIDs, dumpster.DumpsterID)
	}

	if err := s.assignments.CreateBatch(ctx, assignments); err != nil {
		return nil, fmt.Errorf("persist assignments: %w", err)
	}
	if err := s.plants.AddContainersReceived(ctx, plant.PlantID, totalContainers); err != nil {
		return nil, fmt.Errorf("update plant counter: %w", err)
	}

	s.log.Info("assignment recorded",
		"employee", employee.EmployeeID,
		"plant", plant.PlantID,
		"dumpsters", len(dumpsters),
		"containers", totalContainers,
		"date", result.Date,
	)

	s.notifyPlant(ctx, plant, result.DumpsterIDs, totalContainers, date)

	return result, nil
}

// notifyPlant tells the remote plant about the incoming dumpsters. Failure
// is logged, never propagated: the local commitment already happened.
func (s *PlantService) notifyPlant(ctx context.Context, plant *model.Plant, dumpsterIDs []string, totalContainers int, date time.Time) {
	gw, err := s.gateways.Lookup(plant.GatewayType)
	if err != nil {
		s.log.Error("gateway lookup failed, plant not notified",
			"plant", plant.PlantID, "gateway_type", plant.GatewayType, "error", err)
		return
	}

	callCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	if err := gw.NotifyIncoming(callCtx, plant, dumpsterIDs, totalContainers, date); err != nil {
		s.log.Warn("plant notification failed, assignment stands",
			"plant", plant.PlantID, "containers", totalContainers,
			"date", date.Format(model.DateLayout), "error", err)
		return
	}

	s.log.Info("plant notified of incoming dumpsters",
		"plant", plant.PlantID, "containers", totalContainers, "date", date.Format(model.DateLayout))
}
