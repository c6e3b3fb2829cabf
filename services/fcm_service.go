package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"google.golang.org/api/option"

	"github.com/ymmiz/berrifyApp/models"
)

// Stable error codes returned by ErrorCode for the delivery failures the
// reminder job reacts to. A token failing with one of these is dead and
// gets pruned from the user document.
const (
	CodeTokenInvalid       = "messaging/invalid-registration-token"
	CodeTokenNotRegistered = "messaging/registration-token-not-registered"
	CodeUnknown            = "unknown"
)

// SendError wraps a push delivery failure with its classified code.
type SendError struct {
	Code string
	Err  error
}

func (e *SendError) Error() string {
	return fmt.Sprintf("%s: %v", e.Code, e.Err)
}

func (e *SendError) Unwrap() error {
	return e.Err
}

// ErrorCode extracts the classified code of a delivery failure. Errors
// that are not SendError report "unknown".
func ErrorCode(err error) string {
	if err == nil {
		return ""
	}
	var se *SendError
	if errors.As(err, &se) && se.Code != "" {
		return se.Code
	}
	return CodeUnknown
}

// Notifier is the push delivery surface the reminder job depends on.
type Notifier interface {
	SendReminder(token string, msg *models.ReminderMessage) error
}

// FCMService handles push delivery through Firebase Cloud Messaging
type FCMService struct {
	client *messaging.Client
}

// NewFCMService creates a new FCMService
func NewFCMService(credentialsFile string) (*FCMService, error) {
	ctx := context.Background()

	var app *firebase.App
	var err error

	// FIREBASE_CREDENTIALS_JSON wins over the file (cloud deployments)
	credentialsJSON := os.Getenv("FIREBASE_CREDENTIALS_JSON")

	if credentialsJSON != "" {
		log.Println("📦 Using Firebase credentials from FIREBASE_CREDENTIALS_JSON")
		opt := option.WithCredentialsJSON([]byte(credentialsJSON))
		app, err = firebase.NewApp(ctx, nil, opt)
	} else {
		log.Printf("📦 Using Firebase credentials from file: %s", credentialsFile)
		opt := option.WithCredentialsFile(credentialsFile)
		app, err = firebase.NewApp(ctx, nil, opt)
	}

	if err != nil {
		return nil, fmt.Errorf("initializing Firebase: %w", err)
	}

	client, err := app.Messaging(ctx)
	if err != nil {
		return nil, fmt.Errorf("creating FCM client: %w", err)
	}

	log.Println("✓ Firebase Cloud Messaging initialized")

	return &FCMService{
		client: client,
	}, nil
}

// classify maps an FCM SDK error to a stable code
func classify(err error) *SendError {
	switch {
	case messaging.IsUnregistered(err):
		return &SendError{Code: CodeTokenNotRegistered, Err: err}
	case messaging.IsInvalidArgument(err):
		return &SendError{Code: CodeTokenInvalid, Err: err}
	default:
		return &SendError{Code: CodeUnknown, Err: err}
	}
}

// SendReminder delivers one reminder message to one device token
func (s *FCMService) SendReminder(token string, msg *models.ReminderMessage) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	message := &messaging.Message{
		Token: token,
		Notification: &messaging.Notification{
			Title: msg.Title,
			Body:  msg.Body,
		},
		Data: msg.Data,
		Webpush: &messaging.WebpushConfig{
			Headers: map[string]string{
				"Urgency": msg.Urgency,
			},
			Notification: &messaging.WebpushNotification{
				Title:    msg.Title,
				Body:     msg.Body,
				Tag:      msg.Tag,
				Renotify: msg.Renotify,
			},
		},
	}

	_, err := s.client.Send(ctx, message)
	if err != nil {
		return classify(err)
	}

	return nil
}

// SendToToken sends an ad-hoc notification to a single token
func (s *FCMService) SendToToken(token string, title, body string, data map[string]string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	message := &messaging.Message{
		Token: token,
		Notification: &messaging.Notification{
			Title: title,
			Body:  body,
		},
		Data: data,
		Webpush: &messaging.WebpushConfig{
			Headers: map[string]string{
				"Urgency": "high",
			},
		},
	}

	response, err := s.client.Send(ctx, message)
	if err != nil {
		return classify(err)
	}

	log.Printf("✓ Message sent: %s", response)
	return nil
}

// SendToMultipleTokens sends a notification to a batch of tokens and
// reports the tokens that failed
func (s *FCMService) SendToMultipleTokens(tokens []string, title, body string, data map[string]string) (success int, failed int, failedTokens []string, err error) {
	if len(tokens) == 0 {
		return 0, 0, nil, nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	message := &messaging.MulticastMessage{
		Tokens: tokens,
		Notification: &messaging.Notification{
			Title: title,
			Body:  body,
		},
		Data: data,
		Webpush: &messaging.WebpushConfig{
			Headers: map[string]string{
				"Urgency": "high",
			},
		},
	}

	response, err := s.client.SendEachForMulticast(ctx, message)
	if err != nil {
		return 0, 0, nil, fmt.Errorf("sending multicast: %w", err)
	}

	for i, resp := range response.Responses {
		if !resp.Success {
			failedTokens = append(failedTokens, tokens[i])
			log.Printf("⚠️ Delivery to token %d failed: %v", i, resp.Error)
		}
	}

	log.Printf("📊 Multicast sent: %d ok, %d failed", response.SuccessCount, response.FailureCount)
	return response.SuccessCount, response.FailureCount, failedTokens, nil
}

// DisabledFCMService is the no-op delivery used when Firebase credentials
// are not configured. Every send succeeds silently so the rest of the
// application keeps working in development.
type DisabledFCMService struct{}

// NewDisabledFCMService creates the no-op push service
func NewDisabledFCMService() *DisabledFCMService {
	log.Println("⚠️ FCM disabled: push notifications will not be delivered")
	return &DisabledFCMService{}
}

// SendReminder drops the message
func (s *DisabledFCMService) SendReminder(token string, msg *models.ReminderMessage) error {
	return nil
}

// SendToToken drops the message
func (s *DisabledFCMService) SendToToken(token string, title, body string, data map[string]string) error {
	return nil
}

// SendToMultipleTokens drops the messages
func (s *DisabledFCMService) SendToMultipleTokens(tokens []string, title, body string, data map[string]string) (int, int, []string, error) {
	return 0, 0, nil, nil
}
