package adapter

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/MKhiriev/go-pos-offline/internal/utils"
	"github.com/MKhiriev/go-pos-offline/models"
)

// Operator API paths served by the gateway.
const (
	ControlStatusPath   = "/_offline/status"
	ControlQueuePath    = "/_offline/queue"
	ControlSyncPath     = "/_offline/sync"
	ControlInstallPath  = "/_offline/lifecycle/install"
	ControlActivatePath = "/_offline/lifecycle/activate"
)

type httpControlClient struct {
	client *utils.HTTPClient
}

// NewHTTPControlClient returns a [ControlClient] for the gateway listening
// at address.
func NewHTTPControlClient(address string, timeout time.Duration) (ControlClient, error) {
	baseURL, err := normalizeBaseURL(address)
	if err != nil {
		return nil, fmt.Errorf("invalid gateway address: %w", err)
	}

	client := utils.NewHTTPClient()
	client.
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		SetHeader("Accept", "application/json")

	return &httpControlClient{client: client}, nil
}

func (c *httpControlClient) Status(ctx context.Context) (models.GatewayStatus, error) {
	var status models.GatewayStatus

	resp, err := c.client.R().
		SetContext(ctx).
		SetResult(&status).
		Get(ControlStatusPath)
	if err := checkControlResponse(resp, err, "status"); err != nil {
		return models.GatewayStatus{}, err
	}

	return status, nil
}

func (c *httpControlClient) Queue(ctx context.Context, filter models.QueueFilter) ([]models.QueuedWrite, error) {
	var writes []models.QueuedWrite

	r := c.client.R().
		SetContext(ctx).
		SetResult(&writes)
	if filter.Kind != "" {
		r.SetQueryParam("kind", string(filter.Kind))
	}
	if filter.Synced != nil {
		r.SetQueryParam("synced", strconv.FormatBool(*filter.Synced))
	}
	if filter.Limit > 0 {
		r.SetQueryParam("limit", strconv.FormatUint(filter.Limit, 10))
	}

	resp, err := r.Get(ControlQueuePath)
	if err := checkControlResponse(resp, err, "queue"); err != nil {
		return nil, err
	}

	return writes, nil
}

// TriggerSync runs a sync pass and returns its report. A pass that was
// already running yields a [*ServerRejectedError] with status 409.
func (c *httpControlClient) TriggerSync(ctx context.Context) (models.SyncReport, error) {
	var report models.SyncReport

	resp, err := c.client.R().
		SetContext(ctx).
		SetResult(&report).
		Post(ControlSyncPath)
	if err := checkControlResponse(resp, err, "sync"); err != nil {
		return models.SyncReport{}, err
	}

	return report, nil
}

func (c *httpControlClient) Install(ctx context.Context) (models.Generation, error) {
	return c.lifecycle(ctx, ControlInstallPath, "install")
}

func (c *httpControlClient) Activate(ctx context.Context) (models.Generation, error) {
	return c.lifecycle(ctx, ControlActivatePath, "activate")
}

func (c *httpControlClient) lifecycle(ctx context.Context, path, op string) (models.Generation, error) {
	var generation models.Generation

	resp, err := c.client.R().
		SetContext(ctx).
		SetResult(&generation).
		Post(path)
	if err := checkControlResponse(resp, err, op); err != nil {
		return models.Generation{}, err
	}

	return generation, nil
}

func checkControlResponse(resp *resty.Response, err error, op string) error {
	if err != nil {
		return fmt.Errorf("%s request: %w: %w", op, ErrNetworkUnavailable, err)
	}
	return mapHTTPError(resp.StatusCode(), resp.Body())
}
