package alert

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"melting-tank-backend/internal/models"
)

// SlackNotifier posts a warning to a Slack webhook when a defect is
// predicted. Delivery is best effort: failures are logged, never
// propagated into the prediction path.
type SlackNotifier struct {
	webhookURL string
	client     *http.Client
}

type slackPayload struct {
	Text      string `json:"text"`
	Username  string `json:"username"`
	IconEmoji string `json:"icon_emoji"`
}

// NewSlackNotifier creates a notifier for the given webhook URL
func NewSlackNotifier(webhookURL string) *SlackNotifier {
	return &SlackNotifier{
		webhookURL: webhookURL,
		client:     &http.Client{Timeout: 5 * time.Second},
	}
}

// NotifyDefect sends a defect alert for the given prediction
func (n *SlackNotifier) NotifyDefect(prediction models.DefectPrediction) {
	if n.webhookURL == "" {
		log.Println("Warning: SLACK_WEBHOOK_URL is not set, skipping notification")
		return
	}

	payload := slackPayload{
		Text: fmt.Sprintf("🚨 [MELT TANK ALERT] Defect predicted: prob_ng=%.2f (threshold: %.2f)",
			prediction.Probability, prediction.Threshold),
		Username:  "MeltingTank-AI-Monitor",
		IconEmoji: ":warning:",
	}

	body, err := json.Marshal(payload)
	if err != nil {
		log.Printf("Error marshaling Slack payload: %v", err)
		return
	}

	resp, err := n.client.Post(n.webhookURL, "application/json", bytes.NewReader(body))
	if err != nil {
		log.Printf("Error sending Slack alert: %v", err)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		log.Printf("Slack alert rejected with status %d", resp.StatusCode)
		return
	}

	log.Printf("Slack alert sent for prediction %s", prediction.ID)
}
