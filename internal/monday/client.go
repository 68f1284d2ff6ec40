// Package monday pushes canonical work orders to a Monday.com board.
package monday

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/joseph-ayodele/workorder-tracker/internal/common"
	"github.com/joseph-ayodele/workorder-tracker/internal/entity"
)

const createItemMutation = `
mutation ($board_id: ID!, $item_name: String!, $column_values: JSON!) {
  create_item (board_id: $board_id, item_name: $item_name, column_values: $column_values) {
    id
  }
}`

// Client is the remote sync client. One push attempt per record; retry
// policy belongs to the caller.
type Client struct {
	cfg    common.BoardConfig
	http   *http.Client
	logger *slog.Logger
}

func NewClient(cfg common.BoardConfig, httpClient *http.Client, logger *slog.Logger) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{cfg: cfg, http: httpClient, logger: logger}
}

type gqlRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables"`
}

type createItemResponse struct {
	Data *struct {
		CreateItem *struct {
			ID string `json:"id"`
		} `json:"create_item"`
	} `json:"data"`
	Errors []struct {
		Message string `json:"message"`
	} `json:"errors"`
}

// Push creates a board item for the record and returns the remote item
// id. A 2xx transport status is not success by itself: an errors list in
// the body, or a null create_item, both fail the push.
func (c *Client) Push(ctx context.Context, w *entity.WorkOrder) (string, error) {
	columnValues, err := json.Marshal(ColumnValues(w))
	if err != nil {
		return "", common.NewRemoteSyncError("encode column values", err)
	}

	body := gqlRequest{
		Query: createItemMutation,
		Variables: map[string]any{
			"board_id":      c.cfg.BoardID,
			"item_name":     w.Title(),
			"column_values": string(columnValues),
		},
	}

	raw, status, err := c.sendJSON(ctx, body)
	if err != nil {
		return "", common.NewRemoteSyncError(fmt.Sprintf("board call failed (status %d)", status), err)
	}

	var resp createItemResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return "", common.NewRemoteSyncError("decode board response", err)
	}
	if len(resp.Errors) > 0 {
		msgs := make([]string, len(resp.Errors))
		for i, e := range resp.Errors {
			msgs[i] = e.Message
		}
		return "", common.NewRemoteSyncError("board returned errors", fmt.Errorf("%s", strings.Join(msgs, ", ")))
	}
	if resp.Data == nil || resp.Data.CreateItem == nil || resp.Data.CreateItem.ID == "" {
		return "", common.NewRemoteSyncError("board created no item", fmt.Errorf("create_item is null"))
	}

	c.logger.Info("monday.push.ok",
		"wo", w.WorkOrderNumber,
		"remote_item_id", resp.Data.CreateItem.ID,
	)
	return resp.Data.CreateItem.ID, nil
}

// sendJSON posts a JSON body to the board API and returns the raw
// response bytes and status.
func (c *Client) sendJSON(ctx context.Context, body any) ([]byte, int, error) {
	start := time.Now()

	bs, err := json.Marshal(body)
	if err != nil {
		return nil, 0, fmt.Errorf("encode json: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.APIURL, bytes.NewReader(bs))
	if err != nil {
		return nil, 0, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", c.cfg.APIToken)

	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Error("monday.http.send_error", "error", err, "elapsed_ms", time.Since(start).Milliseconds())
		return nil, 0, err
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			c.logger.Warn("monday.http.body_close_error", "error", err)
		}
	}()

	raw, _ := io.ReadAll(resp.Body)

	c.logger.Debug("monday.http.response",
		"status", resp.StatusCode,
		"bytes", len(raw),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)

	if resp.StatusCode/100 != 2 {
		return raw, resp.StatusCode, fmt.Errorf("non-2xx status: %d", resp.StatusCode)
	}
	return raw, resp.StatusCode, nil
}
