package axivion

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	sharederrors "github.com/scan-io-git/scanio-analysis/pkg/shared/errors"
)

type fakeDashboard struct {
	payloads map[Kind]map[string]interface{}
	delays   map[Kind]time.Duration
	failing  Kind
}

func (d *fakeDashboard) Issues(ctx context.Context, kind Kind) (map[string]interface{}, error) {
	if delay := d.delays[kind]; delay > 0 {
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if kind == d.failing {
		return nil, sharederrors.NewParsingError(kind.String()+" issues", errors.New("connection refused"))
	}
	if payload, ok := d.payloads[kind]; ok {
		return payload, nil
	}
	return map[string]interface{}{"rows": []interface{}{}}, nil
}

func allPayloads(t *testing.T) map[Kind]map[string]interface{} {
	return map[Kind]map[string]interface{}{
		KindAV: loadPayload(t, "av.json"),
		KindCL: loadPayload(t, "cl.json"),
		KindCY: loadPayload(t, "cy.json"),
		KindDE: loadPayload(t, "de.json"),
		KindMV: loadPayload(t, "mv.json"),
		KindSV: loadPayload(t, "sv.json"),
	}
}

func TestSuiteScanOrdersIssuesByKind(t *testing.T) {
	dashboard := &fakeDashboard{
		payloads: allPayloads(t),
		delays:   map[Kind]time.Duration{KindAV: 30 * time.Millisecond, KindCL: 10 * time.Millisecond},
	}
	suite := NewSuite(SuiteConfig{ProjectURL: "testUrl", BaseDir: "/root", NamedFilter: "Critical"}, dashboard, nil)

	report, err := suite.Scan(context.Background())

	require.NoError(t, err)
	assert.Equal(t, []string{"AV26941", "CL476033", "CY1471", "DE7", "MV55", "SV1"}, report.Fingerprints())
	assert.Equal(t, []string{
		"Axivion webservice: testUrl",
		"Local basedir: /root",
		"Named Filter: Critical",
	}, report.InfoMessages)
	assert.Equal(t, 6, report.SizeOf(ToolID))
	for _, issue := range report.Issues {
		assert.Equal(t, ToolID, issue.Origin)
	}
}

func TestSuiteScanPropagatesTransportErrors(t *testing.T) {
	dashboard := &fakeDashboard{payloads: allPayloads(t), failing: KindDE}
	suite := NewSuite(SuiteConfig{ProjectURL: "testUrl"}, dashboard, nil)

	report, err := suite.Scan(context.Background())

	require.Error(t, err)
	assert.Nil(t, report)
	var parsingErr *sharederrors.ParsingError
	assert.ErrorAs(t, err, &parsingErr)
	assert.Contains(t, err.Error(), "DE")
}

func TestSuiteScanKeepsDashboardErrorsInReport(t *testing.T) {
	payloads := allPayloads(t)
	payloads[KindMV] = loadPayload(t, "dashboard_error.json")
	suite := NewSuite(SuiteConfig{ProjectURL: "testUrl"}, &fakeDashboard{payloads: payloads}, nil)

	report, err := suite.Scan(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 5, report.Size())
	assert.True(t, report.HasErrors())
}

func TestExpandBaseDir(t *testing.T) {
	t.Setenv("WORKSPACE", "/var/lib/build")

	assert.Equal(t, "/var/lib/build/src", ExpandBaseDir("$WORKSPACE/src"))
	assert.Equal(t, "/plain", ExpandBaseDir("/plain"))
}

func TestSuiteExpandsBaseDirOnce(t *testing.T) {
	t.Setenv("WORKSPACE", "/builds/$HOME")
	t.Setenv("HOME", "/home/jenkins")

	suite := NewSuite(SuiteConfig{ProjectURL: "testUrl", BaseDir: "$WORKSPACE/src"}, &fakeDashboard{payloads: allPayloads(t)}, nil)
	assert.Equal(t, "/builds/$HOME/src", suite.ProjectDir())

	report, err := suite.Scan(context.Background())
	require.NoError(t, err)
	assert.Contains(t, report.InfoMessages, "Local basedir: $WORKSPACE/src")
	require.NotZero(t, report.Size())
	for _, issue := range report.Issues {
		assert.Equal(t, "/builds/$HOME/src", issue.Directory)
	}
}

func TestRemoteDashboardIssues(t *testing.T) {
	data, err := os.ReadFile(filepath.Join("testdata", "sv.json"))
	require.NoError(t, err)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/projects/demo/issues", r.URL.Path)
		assert.Equal(t, "SV", r.URL.Query().Get("kind"))
		assert.Equal(t, "Critical", r.URL.Query().Get("namedFilter"))
		assert.Equal(t, "application/json", r.Header.Get("Accept"))
		user, password, ok := r.BasicAuth()
		assert.True(t, ok)
		assert.Equal(t, "ci", user)
		assert.Equal(t, "secret", password)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write(data)
	}))
	defer server.Close()

	dashboard := NewRemoteDashboard(resty.New(), server.URL+"/projects/demo/", Credentials{Username: "ci", Password: "secret"}, "Critical")

	payload, err := dashboard.Issues(context.Background(), KindSV)

	require.NoError(t, err)
	rows, ok := payload["rows"].([]interface{})
	require.True(t, ok)
	assert.Len(t, rows, 1)
}

func TestRemoteDashboardErrors(t *testing.T) {
	testCases := []struct {
		name    string
		status  int
		body    string
		wantMsg string
	}{
		{name: "unauthorized", status: http.StatusUnauthorized, body: `{}`, wantMsg: "401"},
		{name: "invalid json", status: http.StatusOK, body: `<html>login</html>`, wantMsg: "invalid dashboard response"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				_, _ = w.Write([]byte(tc.body))
			}))
			defer server.Close()

			dashboard := NewRemoteDashboard(resty.New(), server.URL, Credentials{}, "")
			_, err := dashboard.Issues(context.Background(), KindCL)

			require.Error(t, err)
			var parsingErr *sharederrors.ParsingError
			require.True(t, errors.As(err, &parsingErr))
			assert.True(t, strings.Contains(err.Error(), tc.wantMsg), err.Error())
			assert.Contains(t, parsingErr.Source, "CL")
		})
	}
}
