package services

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"
)

// SlackService posts server error alerts to a Slack webhook
type SlackService struct {
	webhookURL string
	client     *http.Client
}

// SlackMessage represents a Slack webhook payload
type SlackMessage struct {
	Text        string       `json:"text,omitempty"`
	Attachments []Attachment `json:"attachments,omitempty"`
}

// Attachment represents a Slack message attachment
type Attachment struct {
	Color     string  `json:"color,omitempty"`
	Title     string  `json:"title,omitempty"`
	Text      string  `json:"text,omitempty"`
	Fields    []Field `json:"fields,omitempty"`
	Timestamp int64   `json:"ts,omitempty"`
	Footer    string  `json:"footer,omitempty"`
}

// Field represents a field inside a Slack attachment
type Field struct {
	Title string `json:"title"`
	Value string `json:"value"`
	Short bool   `json:"short"`
}

// NewSlackService creates a new SlackService. An empty webhook URL
// disables it silently.
func NewSlackService(webhookURL string) *SlackService {
	if webhookURL == "" {
		log.Println("⚠️  Slack webhook URL not configured - Slack alerts disabled")
	}

	return &SlackService{
		webhookURL: webhookURL,
		client: &http.Client{
			Timeout: 5 * time.Second,
		},
	}
}

// SendCriticalError reports a 5xx (or otherwise critical) response
func (s *SlackService) SendCriticalError(method, path, statusCode, message, origin, userAgent string) error {
	return s.SendErrorNotification("Critical", method, path, statusCode, message, origin, userAgent)
}

// SendCORSError reports a rejected cross-origin request
func (s *SlackService) SendCORSError(method, path, origin, userAgent string) error {
	message := fmt.Sprintf("Origin %s rejected", origin)
	return s.SendErrorNotification("CORS", method, path, "403", message, origin, userAgent)
}

// SendErrorNotification posts a server error alert to Slack
func (s *SlackService) SendErrorNotification(errorType, method, path, statusCode, message, origin, userAgent string) error {
	if s.webhookURL == "" {
		return nil
	}

	color := "danger"
	if statusCode == "403" {
		color = "warning"
	}

	slackMsg := SlackMessage{
		Attachments: []Attachment{
			{
				Color:     color,
				Title:     fmt.Sprintf("🚨 Server error: %s", errorType),
				Text:      message,
				Timestamp: time.Now().Unix(),
				Footer:    "Berrify - Backend",
				Fields: []Field{
					{
						Title: "Method",
						Value: method,
						Short: true,
					},
					{
						Title: "Status Code",
						Value: statusCode,
						Short: true,
					},
					{
						Title: "Path",
						Value: path,
						Short: false,
					},
				},
			},
		},
	}

	if origin != "" {
		slackMsg.Attachments[0].Fields = append(slackMsg.Attachments[0].Fields, Field{
			Title: "Origin",
			Value: origin,
			Short: true,
		})
	}

	if userAgent != "" {
		slackMsg.Attachments[0].Fields = append(slackMsg.Attachments[0].Fields, Field{
			Title: "User-Agent",
			Value: userAgent,
			Short: false,
		})
	}

	jsonData, err := json.Marshal(slackMsg)
	if err != nil {
		return fmt.Errorf("serializing Slack message: %w", err)
	}

	req, err := http.NewRequest("POST", s.webhookURL, bytes.NewBuffer(jsonData))
	if err != nil {
		return fmt.Errorf("building Slack request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("posting to Slack: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("Slack webhook responded %d", resp.StatusCode)
	}

	return nil
}
