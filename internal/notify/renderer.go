package notify

import (
	"encoding/json"
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var titleCaser = cases.Title(language.English)

// Renderer turns queue payloads into the JSON documents posted to
// webhook endpoints.
type Renderer struct{}

// NewRenderer creates a new renderer.
func NewRenderer() *Renderer {
	return &Renderer{}
}

// webhookBody is the wire shape posted to endpoints: the raw event
// payload plus a preformatted human-readable line.
type webhookBody struct {
	Payload
	Text string `json:"text"`
}

// Render produces the request body for one delivery.
func (r *Renderer) Render(payload Payload) ([]byte, error) {
	body := webhookBody{
		Payload: payload,
		Text:    summaryLine(payload),
	}
	out, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal webhook body: %w", err)
	}
	return out, nil
}

func summaryLine(payload Payload) string {
	impact := titleCaser.String(payload.IncidentImpact)
	status := titleCaser.String(strings.ReplaceAll(payload.IncidentStatus, "_", " "))

	switch payload.Event {
	case EventIncidentCreated:
		return fmt.Sprintf("[%s] %s impact incident opened on %s: %s",
			payload.OrganizationName, impact, payload.ServiceName, payload.IncidentTitle)
	case EventIncidentResolved:
		return fmt.Sprintf("[%s] Incident resolved on %s: %s",
			payload.OrganizationName, payload.ServiceName, payload.IncidentTitle)
	default:
		return fmt.Sprintf("[%s] Incident on %s now %s: %s",
			payload.OrganizationName, payload.ServiceName, status, payload.IncidentTitle)
	}
}
