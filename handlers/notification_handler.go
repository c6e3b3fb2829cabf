package handlers

import (
	"encoding/json"
	"log"
	"net/http"

	webpush "github.com/SherClockHolmes/webpush-go"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/ymmiz/berrifyApp/constants"
	"github.com/ymmiz/berrifyApp/database"
	"github.com/ymmiz/berrifyApp/middleware"
	"github.com/ymmiz/berrifyApp/models"
	"github.com/ymmiz/berrifyApp/utils"
)

// NotificationHandler serves the legacy VAPID web-push channel. Older web
// installs subscribed through the service worker directly instead of FCM;
// their subscriptions keep working through this handler.
type NotificationHandler struct {
	subscriptionRepo *database.SubscriptionRepository
	vapidPublicKey   string
	vapidPrivateKey  string
	vapidSubject     string
}

// NewNotificationHandler creates a new NotificationHandler
func NewNotificationHandler(db *mongo.Database, vapidPublicKey, vapidPrivateKey, vapidSubject string) *NotificationHandler {
	return &NotificationHandler{
		subscriptionRepo: database.NewSubscriptionRepository(db),
		vapidPublicKey:   vapidPublicKey,
		vapidPrivateKey:  vapidPrivateKey,
		vapidSubject:     vapidSubject,
	}
}

// Subscribe stores a web-push subscription for the caller
func (h *NotificationHandler) Subscribe(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		utils.RespondError(w, http.StatusUnauthorized, constants.ErrNotAuthenticated)
		return
	}

	var req models.SubscribeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondError(w, http.StatusBadRequest, constants.ErrInvalidData)
		return
	}

	if req.Subscription.Endpoint == "" {
		utils.RespondError(w, http.StatusBadRequest, "Subscription endpoint is required")
		return
	}

	subscription := &models.PushSubscription{
		UserID:   claims.UserID,
		Endpoint: req.Subscription.Endpoint,
		Keys:     req.Subscription.Keys,
	}

	if err := h.subscriptionRepo.Upsert(subscription); err != nil {
		log.Printf("Error saving subscription: %v", err)
		utils.RespondError(w, http.StatusInternalServerError, constants.ErrServerError)
		return
	}

	log.Printf("✓ Web-push subscription saved for %s", claims.UserID)
	utils.RespondSuccess(w, "Subscribed", nil)
}

// Unsubscribe removes a web-push subscription by endpoint
func (h *NotificationHandler) Unsubscribe(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	var req struct {
		Endpoint string `json:"endpoint"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondError(w, http.StatusBadRequest, constants.ErrInvalidData)
		return
	}

	if err := h.subscriptionRepo.DeleteByEndpoint(req.Endpoint); err != nil {
		log.Printf("Error deleting subscription: %v", err)
		utils.RespondError(w, http.StatusInternalServerError, constants.ErrServerError)
		return
	}

	log.Printf("✓ Web-push subscription removed: %s", req.Endpoint)
	utils.RespondSuccess(w, "Unsubscribed", nil)
}

// SendToUser pushes a payload to every web-push subscription of one
// user. Returns the delivered count; endpoints the push service reports
// gone (410) are pruned along the way.
func (h *NotificationHandler) SendToUser(userID string, payload *models.WebPushPayload) (int, error) {
	subscriptions, err := h.subscriptionRepo.FindByUser(userID)
	if err != nil {
		return 0, err
	}

	if len(subscriptions) == 0 {
		return 0, nil
	}

	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return 0, err
	}

	sent := 0
	for _, sub := range subscriptions {
		s := &webpush.Subscription{
			Endpoint: sub.Endpoint,
			Keys: webpush.Keys{
				P256dh: sub.Keys.P256dh,
				Auth:   sub.Keys.Auth,
			},
		}

		resp, err := webpush.SendNotification(payloadBytes, s, &webpush.Options{
			Subscriber:      h.vapidSubject,
			VAPIDPublicKey:  h.vapidPublicKey,
			VAPIDPrivateKey: h.vapidPrivateKey,
			TTL:             86400,
			Urgency:         webpush.UrgencyHigh,
		})

		if err != nil {
			log.Printf("❌ Web-push delivery to %s failed: %v", sub.UserID, err)
			if resp != nil && resp.StatusCode == http.StatusGone {
				log.Printf("🗑️  Removing dead subscription: %s", sub.Endpoint)
				_ = h.subscriptionRepo.DeleteByEndpoint(sub.Endpoint)
			}
			continue
		}

		if resp.StatusCode == http.StatusCreated || resp.StatusCode == http.StatusOK {
			sent++
		} else {
			log.Printf("⚠️  Unexpected push service response for %s: %d", sub.UserID, resp.StatusCode)
		}

		resp.Body.Close()
	}

	return sent, nil
}

// SendTest pushes a test notification to the caller's own subscriptions
func (h *NotificationHandler) SendTest(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		utils.RespondError(w, http.StatusUnauthorized, constants.ErrNotAuthenticated)
		return
	}

	payload := &models.WebPushPayload{
		Title: "Berrify",
		Body:  "Push notifications are working 🎉",
		Icon:  "/icon-192x192.png",
		Badge: "/badge-72x72.png",
		Tag:   "test_notification",
	}

	sent, err := h.SendToUser(claims.UserID, payload)
	if err != nil {
		log.Printf("Error sending test notification: %v", err)
		utils.RespondError(w, http.StatusInternalServerError, constants.ErrServerError)
		return
	}

	log.Printf("📊 Test notification: %d delivered for %s", sent, claims.UserID)
	utils.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"sent":    sent,
	})
}

// GetVAPIDPublicKey returns the VAPID public key web clients subscribe with
func (h *NotificationHandler) GetVAPIDPublicKey(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	utils.RespondJSON(w, http.StatusOK, map[string]string{
		"publicKey": h.vapidPublicKey,
	})
}
