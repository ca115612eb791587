//go:build integration

package integration

import (
	"context"
	"net/http"
	"testing"

	"github.com/statuskite/statuskite/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createTestChannel(t *testing.T, client *testutil.Client, name string) string {
	t.Helper()

	resp, err := client.POST("/api/v1/webhooks", map[string]interface{}{
		"name": name,
		"url":  "https://hooks.example.com/" + name,
	})
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var result struct {
		Data struct {
			ID        string `json:"id"`
			IsEnabled bool   `json:"is_enabled"`
		} `json:"data"`
	}
	testutil.DecodeJSON(t, resp, &result)
	assert.True(t, result.Data.IsEnabled, "new channels start enabled")
	return result.Data.ID
}

func TestWebhookChannels_CRUD(t *testing.T) {
	org := registerTestOrg(t, newTestClient(t), "webhooks")
	admin := newTestClient(t).As(org.AdminID)

	name := testutil.RandomName("ops-hook")
	channelID := createTestChannel(t, admin, name)

	// Duplicate name conflicts
	resp, err := admin.POST("/api/v1/webhooks", map[string]interface{}{
		"name": name,
		"url":  "https://hooks.example.com/other",
	})
	require.NoError(t, err)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	_ = resp.Body.Close()

	// Disable the channel
	resp, err = admin.PATCH("/api/v1/webhooks/"+channelID, map[string]interface{}{
		"is_enabled": false,
	})
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var updated struct {
		Data struct {
			IsEnabled bool `json:"is_enabled"`
		} `json:"data"`
	}
	testutil.DecodeJSON(t, resp, &updated)
	assert.False(t, updated.Data.IsEnabled)

	resp, err = admin.DELETE("/api/v1/webhooks/" + channelID)
	require.NoError(t, err)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	_ = resp.Body.Close()

	resp, err = admin.GET("/api/v1/webhooks")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var listing struct {
		Data []struct {
			ID string `json:"id"`
		} `json:"data"`
	}
	testutil.DecodeJSON(t, resp, &listing)
	assert.Empty(t, listing.Data)
}

func TestWebhookDelivery_QueuedPerEnabledChannel(t *testing.T) {
	// The delivery worker polls hourly in the test app, so queued rows
	// stay pending and can be inspected directly.
	org := registerTestOrg(t, newTestClient(t), "queue-fanout")
	admin := newTestClient(t).As(org.AdminID)

	createTestChannel(t, admin, testutil.RandomName("first"))
	createTestChannel(t, admin, testutil.RandomName("second"))

	disabledID := createTestChannel(t, admin, testutil.RandomName("muted"))
	resp, err := admin.PATCH("/api/v1/webhooks/"+disabledID, map[string]interface{}{
		"is_enabled": false,
	})
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	_ = resp.Body.Close()

	serviceID := createTestService(t, admin, testutil.RandomName("notify-svc"))
	createTestIncident(t, admin, serviceID, "Queue fanout check", "high")

	var pending int
	err = testDB.QueryRow(context.Background(),
		`SELECT COUNT(*) FROM notification_queue nq
		 JOIN webhook_channels wc ON wc.id = nq.channel_id
		 WHERE wc.organization_id = $1 AND nq.status = 'pending'`,
		org.ID,
	).Scan(&pending)
	require.NoError(t, err)
	assert.Equal(t, 2, pending, "one queue item per enabled channel")
}

func TestWebhookChannels_RequireAdmin(t *testing.T) {
	org := registerTestOrg(t, newTestClient(t), "webhook-rbac")
	admin := newTestClient(t).As(org.AdminID)

	memberID := joinOrg(t, newTestClient(t), org.ID)
	resp, err := admin.POST("/api/v1/members/"+memberID+"/approve", nil)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	_ = resp.Body.Close()

	resp, err = newTestClientWithoutValidation().As(memberID).GET("/api/v1/webhooks")
	require.NoError(t, err)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	_ = resp.Body.Close()
}
