package notify

import (
	"bytes"
	"fmt"
	"text/template"

	"github.com/Masterminds/sprig/v3"
)

// adaptiveCardHTML embeds an actionable Adaptive Card in an HTML mail body.
// Every string value goes through toJson so the card stays valid JSON.
const adaptiveCardHTML = `<html><head><meta http-equiv="Content-Type" content="text/html; charset=utf-8"> <script type="application/adaptivecard+json">{
  "$schema": "http://adaptivecards.io/schemas/adaptive-card.json",
  "type": "AdaptiveCard",
  "version": "1.0",
  "padding": "None",
  "body": [
    {
      "type": "ColumnSet",
      "id": {{ uuidv4 | quote }},
      "style": "emphasis",
      "padding": {"top": "Small", "bottom": "Small", "left": "Default", "right": "Small"},
      "columns": [
        {
          "type": "Column",
          "id": {{ uuidv4 | quote }},
          "padding": "None",
          "width": "stretch",
          "verticalContentAlignment": "Center",
          "items": [
            {"type": "TextBlock", "id": {{ uuidv4 | quote }}, "text": {{ printf "Automated Alert - %s" .Timestamp | toJson }}, "wrap": true}
          ]
        }{{ if .ImageURL }},
        {
          "type": "Column",
          "id": {{ uuidv4 | quote }},
          "padding": "None",
          "width": "auto",
          "horizontalAlignment": "Right",
          "items": [
            {"type": "Image", "id": {{ uuidv4 | quote }}, "url": {{ toJson .ImageURL }}, "size": "Small"}
          ]
        }{{ end }}
      ]
    },
    {
      "type": "Container",
      "id": {{ uuidv4 | quote }},
      "padding": "Default",
      "spacing": "None",
      "items": [
        {"type": "TextBlock", "id": {{ uuidv4 | quote }}, "text": {{ toJson .Title }}, "wrap": true, "weight": "Bolder", "size": "Large"},
        {"type": "TextBlock", "id": {{ uuidv4 | quote }}, "text": {{ toJson .Description }}, "wrap": true},
        {
          "type": "FactSet",
          "id": {{ uuidv4 | quote }},
          "facts": [
            {"title": "Cluster:", "value": {{ toJson .ClusterName }}},
            {"title": "Running:", "value": {{ toJson .RunningVersion }}},
            {"title": "Status:", "value": {{ toJson .Status }}}
          ]
        },
        {
          "type": "ActionSet",
          "id": {{ uuidv4 | quote }},
          "actions": [
            {{- if .ClusterURL }}
            {"type": "Action.OpenUrl", "id": {{ uuidv4 | quote }}, "title": "View AKS Cluster", "url": {{ toJson .ClusterURL }}, "style": "positive", "isPrimary": true},
            {{- end }}
            {"type": "Action.OpenUrl", "id": {{ uuidv4 | quote }}, "title": "Version Support Policy", "url": {{ toJson .PolicyURL }}}
          ]
        }
      ]
    },
    {
      "type": "Container",
      "id": {{ uuidv4 | quote }},
      "style": "emphasis",
      "spacing": "None",
      "separator": true,
      "horizontalAlignment": "Right",
      "padding": {"top": "Small", "bottom": "Small", "left": "Small", "right": "Default"},
      "items": [
        {"type": "TextBlock", "id": {{ uuidv4 | quote }}, "text": {{ printf "[AKSupport on GitHub](%s)" .ProjectURL | toJson }}, "wrap": true, "color": "Accent", "horizontalAlignment": "Right"}
      ]
    }
  ]
}</script> </head><body></body></html>`

var adaptiveCardTemplate = template.Must(
	template.New("adaptive-card").Funcs(sprig.TxtFuncMap()).Option("missingkey=error").Parse(adaptiveCardHTML),
)

type cardData struct {
	Timestamp      string
	ImageURL       string
	Title          string
	Description    string
	ClusterName    string
	RunningVersion string
	Status         string
	ClusterURL     string
	PolicyURL      string
	ProjectURL     string
}

// renderAdaptiveCard returns the HTML mail body for event.
func renderAdaptiveCard(event Event, imageURL string) (string, error) {
	data := cardData{
		Timestamp:      event.FormattedTimestamp(),
		ImageURL:       imageURL,
		Title:          "AKSupport Alert: AKS cluster needs attention",
		Description:    event.Description,
		ClusterName:    event.ClusterName,
		RunningVersion: event.RunningVersion,
		Status:         event.Status.String(),
		ClusterURL:     event.ClusterURL,
		PolicyURL:      PolicyURL,
		ProjectURL:     ProjectURL,
	}

	var buf bytes.Buffer
	if err := adaptiveCardTemplate.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to render adaptive card: %w", err)
	}
	return buf.String(), nil
}
