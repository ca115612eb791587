//go:build integration

package integration

import (
	"net/http"
	"testing"

	"github.com/statuskite/statuskite/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusPage_ByIDAndByName(t *testing.T) {
	org := registerTestOrg(t, newTestClient(t), "public-page")
	admin := newTestClient(t).As(org.AdminID)

	serviceID := createTestService(t, admin, testutil.RandomName("gateway"))
	createTestIncident(t, admin, serviceID, "Gateway flapping", "high")

	anon := newTestClient(t)

	for _, identifier := range []string{org.ID, org.Name} {
		resp, err := anon.GET("/api/v1/status/" + identifier)
		require.NoError(t, err)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var page struct {
			Data struct {
				Organization struct {
					ID string `json:"id"`
				} `json:"organization"`
				OverallStatus string `json:"overall_status"`
				Services      []struct {
					ID     string `json:"id"`
					Status string `json:"status"`
				} `json:"services"`
				RecentIncidents []struct {
					Title string `json:"title"`
				} `json:"recent_incidents"`
			} `json:"data"`
		}
		testutil.DecodeJSON(t, resp, &page)

		assert.Equal(t, org.ID, page.Data.Organization.ID)
		assert.Equal(t, "partial_outage", page.Data.OverallStatus)
		require.Len(t, page.Data.Services, 1)
		assert.Equal(t, "partial_outage", page.Data.Services[0].Status)
		require.Len(t, page.Data.RecentIncidents, 1)
		assert.Equal(t, "Gateway flapping", page.Data.RecentIncidents[0].Title)
	}
}

func TestStatusPage_UnknownOrganization(t *testing.T) {
	resp, err := newTestClient(t).GET("/api/v1/status/no-such-org")
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	_ = resp.Body.Close()
}

func TestTimeline_ReportShape(t *testing.T) {
	org := registerTestOrg(t, newTestClient(t), "timeline")
	admin := newTestClient(t).As(org.AdminID)

	serviceID := createTestService(t, admin, testutil.RandomName("storage"))
	incidentID := createTestIncident(t, admin, serviceID, "Disk pressure", "critical")
	resolveIncident(t, admin, incidentID)
	createTestIncident(t, admin, serviceID, "Replication lag", "medium")

	resp, err := newTestClient(t).GET("/api/v1/status/" + org.ID + "/timeline?days=14")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var report struct {
		Data struct {
			OrganizationID string `json:"organization_id"`
			WindowDays     int    `json:"window_days"`
			Services       []struct {
				ServiceID string `json:"service_id"`
				Blocks    []struct {
					Color     string  `json:"color"`
					IsOngoing bool    `json:"is_ongoing"`
					Duration  float64 `json:"duration_hours"`
				} `json:"blocks"`
			} `json:"services"`
			Summary struct {
				TotalIncidents int `json:"total_incidents"`
				CriticalCount  int `json:"critical_count"`
				OngoingCount   int `json:"ongoing_count"`
			} `json:"summary"`
			Legend []struct {
				Impact string `json:"impact"`
				Color  string `json:"color"`
			} `json:"legend"`
		} `json:"data"`
	}
	testutil.DecodeJSON(t, resp, &report)

	assert.Equal(t, org.ID, report.Data.OrganizationID)
	assert.Equal(t, 14, report.Data.WindowDays)
	require.Len(t, report.Data.Services, 1)
	require.Len(t, report.Data.Services[0].Blocks, 2)

	assert.Equal(t, 2, report.Data.Summary.TotalIncidents)
	assert.Equal(t, 1, report.Data.Summary.CriticalCount)
	assert.Equal(t, 1, report.Data.Summary.OngoingCount)

	require.Len(t, report.Data.Legend, 4)
	assert.Equal(t, "critical", report.Data.Legend[0].Impact)
	assert.Equal(t, "#dc2626", report.Data.Legend[0].Color)
}

func TestTimeline_WindowValidation(t *testing.T) {
	org := registerTestOrg(t, newTestClient(t), "timeline-days")
	client := newTestClientWithoutValidation()

	for _, days := range []string{"0", "366", "abc", "-1"} {
		resp, err := client.GET("/api/v1/status/" + org.ID + "/timeline?days=" + days)
		require.NoError(t, err)
		assert.Equalf(t, http.StatusBadRequest, resp.StatusCode, "days=%s", days)
		_ = resp.Body.Close()
	}
}

func TestDirectory_ListsRegisteredOrganizations(t *testing.T) {
	org := registerTestOrg(t, newTestClient(t), "directory")
	admin := newTestClient(t).As(org.AdminID)
	serviceID := createTestService(t, admin, testutil.RandomName("web"))
	createTestIncident(t, admin, serviceID, "Full outage", "critical")

	resp, err := newTestClient(t).GET("/api/v1/directory")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var directory struct {
		Data []struct {
			ID           string `json:"id"`
			Status       string `json:"status"`
			ServiceCount int    `json:"service_count"`
		} `json:"data"`
	}
	testutil.DecodeJSON(t, resp, &directory)

	found := false
	for _, entry := range directory.Data {
		if entry.ID == org.ID {
			found = true
			assert.Equal(t, "major_outage", entry.Status)
			assert.Equal(t, 1, entry.ServiceCount)
		}
	}
	assert.True(t, found, "registered organization missing from directory")
}
