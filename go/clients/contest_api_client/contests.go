package contest_api_client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/mcdev12/contestsync/go/internal/models"
)

func userHeaders(userID string) map[string]string {
	if userID == "" {
		return nil
	}
	return map[string]string{UserIDHeader: userID}
}

func contestEndpoint(contestID models.ContestID) string {
	return fmt.Sprintf("%s/%s", ContestsEndpoint, url.PathEscape(contestID.String()))
}

// GetAllContests retrieves every contest visible to userID
func (c *ContestApiClient) GetAllContests(ctx context.Context, userID string) ([]models.ContestRecord, error) {
	body, err := c.Get(ctx, ContestsEndpoint, userHeaders(userID))
	if err != nil {
		return nil, fmt.Errorf("failed to get contests: %w", err)
	}

	var response models.ContestsResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w, raw response: %s", err, string(body))
	}

	if response.Contests == nil {
		return []models.ContestRecord{}, nil
	}
	return response.Contests, nil
}

// GetContestByID retrieves the latest state of a single contest
func (c *ContestApiClient) GetContestByID(ctx context.Context, contestID models.ContestID) (*models.ContestRecord, error) {
	body, err := c.Get(ctx, contestEndpoint(contestID), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to get contest %s: %w", contestID, err)
	}

	var contest models.ContestRecord
	if err := json.Unmarshal(body, &contest); err != nil {
		return nil, fmt.Errorf("failed to unmarshal contest: %w, raw response: %s", err, string(body))
	}

	return &contest, nil
}

// JoinContest enters userID into the contest and returns the updated record.
// A full contest is reported by the server as 409.
func (c *ContestApiClient) JoinContest(ctx context.Context, contestID models.ContestID, userID string) (*models.ContestRecord, error) {
	body, err := c.Post(ctx, contestEndpoint(contestID)+"/join", nil, userHeaders(userID))
	if err != nil {
		return nil, fmt.Errorf("failed to join contest %s: %w", contestID, err)
	}

	var contest models.ContestRecord
	if err := json.Unmarshal(body, &contest); err != nil {
		return nil, fmt.Errorf("failed to unmarshal joined contest: %w, raw response: %s", err, string(body))
	}

	return &contest, nil
}
