package syncclient

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/Bernardxu123/unicom-calc/internal/ledger"
	"github.com/Bernardxu123/unicom-calc/internal/session"
)

// SaveCloudConfig uploads the current ledger, replacing the cloud copy.
// The session's sync status goes syncing, then success (reverting to idle
// after SuccessRevertDelay) or error. An error status stays until the next
// sync or session.Store.DismissError.
func (c *Client) SaveCloudConfig(ctx context.Context) error {
	token, err := c.token()
	if err != nil {
		return err
	}

	c.Session.SetSyncStatus(session.StatusSyncing)

	body, err := ledger.ExportSnapshot(c.Ledger.Snapshot())
	if err == nil {
		err = c.do(ctx, http.MethodPost, "/api/data/config", token, body, nil)
	}
	if err != nil {
		c.Session.SetSyncStatus(session.StatusError)
		return fmt.Errorf("save cloud config: %w", err)
	}

	c.Session.RevertAfter(session.StatusSuccess, c.SuccessRevertDelay)
	return nil
}

// FetchCloudConfig downloads the cloud copy and replaces the whole local
// ledger with it. found is false when the account has nothing saved yet, in
// which case the ledger is left alone.
func (c *Client) FetchCloudConfig(ctx context.Context) (found bool, err error) {
	token, err := c.token()
	if err != nil {
		return false, err
	}

	var out struct {
		ConfigJSON *string `json:"config_json"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/data/config", token, nil, &out); err != nil {
		return false, fmt.Errorf("fetch cloud config: %w", err)
	}
	if out.ConfigJSON == nil || *out.ConfigJSON == "" {
		return false, nil
	}
	if err := c.Ledger.ImportData([]byte(*out.ConfigJSON)); err != nil {
		return false, fmt.Errorf("import cloud config: %w", err)
	}
	return true, nil
}

// SubmitResult is the server's view after a score submission.
type SubmitResult struct {
	Month string  `json:"month"`
	Score float64 `json:"score"`
}

// SubmitScore posts score for the current month. Keeping the best score is
// up to the server.
func (c *Client) SubmitScore(ctx context.Context, score float64) (SubmitResult, error) {
	token, err := c.token()
	if err != nil {
		return SubmitResult{}, err
	}
	var out SubmitResult
	if err := c.do(ctx, http.MethodPost, "/api/data/ranking", token, map[string]float64{"score": score}, &out); err != nil {
		return SubmitResult{}, fmt.Errorf("submit score: %w", err)
	}
	return out, nil
}

// RankEntry is one leaderboard row.
type RankEntry struct {
	Username  string    `json:"username"`
	Score     float64   `json:"score"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Ranking returns the top scores for month (YYYY-MM); an empty month means
// the server's current month. No session is needed.
func (c *Client) Ranking(ctx context.Context, month string) ([]RankEntry, error) {
	path := "/api/data/ranking"
	if month != "" {
		path += "?" + url.Values{"month": {month}}.Encode()
	}
	var out []RankEntry
	if err := c.do(ctx, http.MethodGet, path, "", nil, &out); err != nil {
		return nil, fmt.Errorf("ranking: %w", err)
	}
	return out, nil
}
