package axivion

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-resty/resty/v2"

	"github.com/scan-io-git/scanio-analysis/pkg/shared/errors"
)

// Dashboard serves the issues of one project, one kind at a time.
type Dashboard interface {
	Issues(ctx context.Context, kind Kind) (map[string]interface{}, error)
}

// Credentials authenticate against the dashboard with basic auth.
type Credentials struct {
	Username string
	Password string
}

// RemoteDashboard queries the REST API of an Axivion dashboard.
type RemoteDashboard struct {
	client      *resty.Client
	projectURL  string
	namedFilter string
	credentials Credentials
}

// NewRemoteDashboard creates a dashboard client for the project at projectURL.
func NewRemoteDashboard(client *resty.Client, projectURL string, credentials Credentials, namedFilter string) *RemoteDashboard {
	return &RemoteDashboard{
		client:      client,
		projectURL:  strings.TrimSuffix(projectURL, "/"),
		namedFilter: namedFilter,
		credentials: credentials,
	}
}

// Issues fetches the rows of one kind. Transport failures and unexpected
// responses are returned as *errors.ParsingError.
func (d *RemoteDashboard) Issues(ctx context.Context, kind Kind) (map[string]interface{}, error) {
	req := d.client.R().
		SetContext(ctx).
		SetHeader("Accept", "application/json").
		SetQueryParam("kind", kind.String())
	if d.namedFilter != "" {
		req.SetQueryParam("namedFilter", d.namedFilter)
	}
	if d.credentials.Username != "" {
		req.SetBasicAuth(d.credentials.Username, d.credentials.Password)
	}

	resp, err := req.Get(d.projectURL + "/issues")
	if err != nil {
		return nil, errors.NewParsingError(kind.String()+" issues", err)
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, errors.NewParsingError(kind.String()+" issues",
			fmt.Errorf("%w: %d on getting issues from %s", ErrInvalidResponse, resp.StatusCode(), d.projectURL))
	}

	var payload map[string]interface{}
	if err := json.Unmarshal(resp.Body(), &payload); err != nil {
		return nil, errors.NewParsingError(kind.String()+" issues", fmt.Errorf("%w: %v", ErrInvalidResponse, err))
	}
	return payload, nil
}
