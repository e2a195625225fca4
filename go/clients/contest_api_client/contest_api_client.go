package contest_api_client

import (
	"github.com/mcdev12/contestsync/go/clients"
)

type ContestApiClient struct {
	*clients.BaseClient
}

func NewContestApiClient(baseURL string) *ContestApiClient {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	client := &ContestApiClient{
		BaseClient: clients.NewBaseClient(baseURL),
	}

	client.SetHeader(JsonHeader, JsonContentType)

	return client
}
