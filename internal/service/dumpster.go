package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/greenloop/dumpster-coordination/internal/model"
	"github.com/greenloop/dumpster-coordination/internal/repository"
)

var postalCodeRe = regexp.MustCompile(`\b\d{5}\b`)

// DumpsterService handles dumpster management and usage history.
type DumpsterService struct {
	dumpsters DumpsterStore
	usages    UsageStore
	log       *slog.Logger
}

// NewDumpsterService constructs a DumpsterService.
func NewDumpsterService(dumpsters DumpsterStore, usages UsageStore, log *slog.Logger) *DumpsterService {
	if log == nil {
		log = slog.Default()
	}
	return &DumpsterService{dumpsters: dumpsters, usages: usages, log: log}
}

// Create registers a new dumpster at a location. The postal code is parsed
// out of the location string; fill level starts green with zero containers.
func (s *DumpsterService) Create(ctx context.Context, location string, capacity float64) (*model.Dumpster, error) {
	location = strings.TrimSpace(location)
	if location == "" {
		return nil, fmt.Errorf("location is required")
	}
	if capacity <= 0 {
		return nil, fmt.Errorf("initial capacity must be positive")
	}

	dumpster := &model.Dumpster{
		DumpsterID:       "D-" + uuid.New().String()[:8],
		Location:         location,
		PostalCode:       ExtractPostalCode(location),
		Capacity:         capacity,
		FillLevel:        model.FillLevelGreen,
		ContainersNumber: 0,
		CreatedAt:        time.Now().UTC(),
	}
	if err := s.dumpsters.Create(ctx, dumpster); err != nil {
		return nil, fmt.Errorf("create dumpster: %w", err)
	}

	s.log.Info("dumpster created", "dumpster", dumpster.DumpsterID, "location", location)
	return dumpster, nil
}

// UpdateStatus overwrites a dumpster's fill level and container count and
// appends a usage-history row dated today.
func (s *DumpsterService) UpdateStatus(ctx context.Context, id, fillLevel string, containersNumber int) (*model.Dumpster, error) {
	switch fillLevel {
	case model.FillLevelGreen, model.FillLevelOrange, model.FillLevelRed:
	default:
		return nil, fmt.Errorf("invalid fill level %q", fillLevel)
	}
	if containersNumber < 0 {
		return nil, fmt.Errorf("containers number cannot be negative")
	}

	if err := s.dumpsters.UpdateStatus(ctx, id, fillLevel, containersNumber); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("update dumpster: %w", err)
	}

	usage := &model.Usage{
		DumpsterID:      id,
		Date:            time.Now(),
		FillLevel:       fillLevel,
		ContainersCount: containersNumber,
		RecordedAt:      time.Now().UTC(),
	}
	if err := s.usages.Record(ctx, usage); err != nil {
		return nil, fmt.Errorf("record usage: %w", err)
	}

	return s.dumpsters.GetByID(ctx, id)
}

// Status returns the current state of dumpsters, optionally filtered by
// postal code.
func (s *DumpsterService) Status(ctx context.Context, postalCode string) ([]model.DumpsterStatus, error) {
	dumpsters, err := s.dumpsters.ListByPostalCode(ctx, postalCode)
	if err != nil {
		return nil, fmt.Errorf("dumpster status: %w", err)
	}

	statuses := make([]model.DumpsterStatus, 0, len(dumpsters))
	for _, d := range dumpsters {
		statuses = append(statuses, model.DumpsterStatus{
			DumpsterID:       d.DumpsterID,
			Location:         d.Location,
			FillLevel:        d.FillLevel,
			ContainersNumber: d.ContainersNumber,
		})
	}
	return statuses, nil
}

// Usage returns usage history rows with dates inside [start, end].
func (s *DumpsterService) Usage(ctx context.Context, start, end time.Time) ([]model.DumpsterUsage, error) {
	if end.Before(start) {
		return nil, fmt.Errorf("end date is before start date")
	}

	usages, err := s.usages.ListBetween(ctx, start, end)
	if err != nil {
		return nil, fmt.Errorf("query usage: %w", err)
	}

	result := make([]model.DumpsterUsage, 0, len(usages))
	for _, u := range usages {
		result = append(result, model.DumpsterUsage{
			DumpsterID:      u.DumpsterID,
			Date:            u.Date.Format(model.DateLayout),
			FillLevel:       u.FillLevel,
			ContainersCount: u.ContainersCount,
		})
	}
	return result, nil
}

// ExtractPostalCode pulls the first five-digit postal code out of a free-form
// location string, defaulting to "00000" when none is present.
func ExtractPostalCode(location string) string {
	if code := postalCodeRe.FindString(location); code != "" {
		return code
	}
	return "00000"
}
