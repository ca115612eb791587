//go:build integration

package integration

import (
	"net/http"
	"testing"

	"github.com/statuskite/statuskite/internal/testutil"
	"github.com/stretchr/testify/require"
)

// testOrg bundles the IDs produced by registerTestOrg.
type testOrg struct {
	ID      string
	Name    string
	AdminID string
}

// registerTestOrg registers a fresh organization with a founding admin
// and returns the IDs needed to act on its behalf.
func registerTestOrg(t *testing.T, client *testutil.Client, namePrefix string) testOrg {
	t.Helper()

	name := testutil.RandomName(namePrefix)
	resp, err := client.POST("/api/v1/organizations", map[string]interface{}{
		"name":              name,
		"description":       "integration test organization",
		"subscription_code": "TRIAL-2026",
		"admin_email":       testutil.RandomName("admin") + "@example.com",
		"admin_full_name":   "Test Admin",
	})
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var result struct {
		Data struct {
			Organization struct {
				ID   string `json:"id"`
				Name string `json:"name"`
			} `json:"organization"`
			Admin struct {
				ID string `json:"id"`
			} `json:"admin"`
		} `json:"data"`
	}
	testutil.DecodeJSON(t, resp, &result)

	return testOrg{
		ID:      result.Data.Organization.ID,
		Name:    result.Data.Organization.Name,
		AdminID: result.Data.Admin.ID,
	}
}

// createTestService creates a service in the caller's organization.
func createTestService(t *testing.T, client *testutil.Client, name string) string {
	t.Helper()

	resp, err := client.POST("/api/v1/services", map[string]interface{}{
		"name":        name,
		"description": "integration test service",
	})
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var result struct {
		Data struct {
			ID string `json:"id"`
		} `json:"data"`
	}
	testutil.DecodeJSON(t, resp, &result)
	return result.Data.ID
}

// createTestIncident opens an incident against the given service.
func createTestIncident(t *testing.T, client *testutil.Client, serviceID, title, impact string) string {
	t.Helper()

	resp, err := client.POST("/api/v1/incidents", map[string]interface{}{
		"service_id":  serviceID,
		"title":       title,
		"description": "integration test incident",
		"impact":      impact,
	})
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var result struct {
		Data struct {
			ID string `json:"id"`
		} `json:"data"`
	}
	testutil.DecodeJSON(t, resp, &result)
	return result.Data.ID
}

// getServiceStatus fetches the current status of a service.
func getServiceStatus(t *testing.T, client *testutil.Client, serviceID string) string {
	t.Helper()

	resp, err := client.GET("/api/v1/services/" + serviceID)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var result struct {
		Data struct {
			Status string `json:"status"`
		} `json:"data"`
	}
	testutil.DecodeJSON(t, resp, &result)
	return result.Data.Status
}

// resolveIncident moves an incident to the resolved status.
func resolveIncident(t *testing.T, client *testutil.Client, incidentID string) {
	t.Helper()

	resp, err := client.POST("/api/v1/incidents/"+incidentID+"/status", map[string]interface{}{
		"status":  "resolved",
		"message": "Resolved during test",
	})
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	_ = resp.Body.Close()
}
