package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/greenloop/dumpster-coordination/internal/model"
)

// PlasSBGateway speaks the HTTP/JSON protocol used by PlasSB-type plants.
// Any 2xx response to a notification counts as acknowledged; no retries.
type PlasSBGateway struct {
	client *http.Client
}

// NewPlasSB constructs a PlasSBGateway. A nil client gets a default one with
// a bounded timeout.
func NewPlasSB(client *http.Client) *PlasSBGateway {
	if client == nil {
		client = &http.Client{Timeout: DefaultSocketTimeout}
	}
	return &PlasSBGateway{client: client}
}

// GetCapacity issues GET {base}/api/plants/capacity[?date=YYYY-MM-DD].
func (g *PlasSBGateway) GetCapacity(ctx context.Context, plant *model.Plant, date time.Time) (float64, error) {
	endpoint := g.baseURL(plant) + "/api/plants/capacity"
	if !date.IsZero() {
		endpoint += "?date=" + url.QueryEscape(date.Format(model.DateLayout))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return 0, fmt.Errorf("build capacity request for plant %s: %w", plant.PlantID, err)
	}

	resp, err := g.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("query capacity of plant %s: %w", plant.PlantID, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return 0, fmt.Errorf("plant %s returned status %d for capacity query", plant.PlantID, resp.StatusCode)
	}

	var body model.RemotePlantCapacity
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return 0, fmt.Errorf("decode capacity reply from plant %s: %w", plant.PlantID, err)
	}
	return body.Capacity, nil
}

// NotifyIncoming issues POST {base}/api/plants/notify with a JSON body.
func (g *PlasSBGateway) NotifyIncoming(ctx context.Context, plant *model.Plant, dumpsterIDs []string, totalContainers int, date time.Time) error {
	notification := model.PlantNotification{
		PlantID:         plant.PlantID,
		DumpsterIDs:     dumpsterIDs,
		TotalContainers: totalContainers,
	}
	if !date.IsZero() {
		formatted := date.Format(model.DateLayout)
		notification.ArrivalDate = &formatted
	}

	payload, err := json.Marshal(notification)
	if err != nil {
		return fmt.Errorf("encode notification for plant %s: %w", plant.PlantID, err)
	}

	endpoint := g.baseURL(plant) + "/api/plants/notify"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build notify request for plant %s: %w", plant.PlantID, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		return fmt.Errorf("notify plant %s: %w", plant.PlantID, err)
	}
	defer resp.Body.Close()
	// Drain so the connection can be reused; the body carries only an
	// informational message.
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("plant %s returned status %d for notification", plant.PlantID, resp.StatusCode)
	}
	return nil
}

func (g *PlasSBGateway) baseURL(plant *model.Plant) string {
	return "http://" + net.JoinHostPort(plant.Host, strconv.Itoa(plant.Port))
}
