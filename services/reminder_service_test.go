package services

import (
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/ymmiz/berrifyApp/models"
)

type fakePlantSource struct {
	plants []models.Plant
	err    error
}

func (f *fakePlantSource) FindAll() ([]models.Plant, error) {
	return f.plants, f.err
}

type fakeUserSource struct {
	mu        sync.Mutex
	users     map[string]*models.User
	findErr   error
	removeErr error
	removed   [][2]string // userID, token
}

func (f *fakeUserSource) FindByHexID(id string) (*models.User, error) {
	if f.findErr != nil {
		return nil, f.findErr
	}
	return f.users[id], nil
}

func (f *fakeUserSource) RemoveToken(userID, token string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.removed = append(f.removed, [2]string{userID, token})
	return f.removeErr
}

type sentCall struct {
	token string
	msg   *models.ReminderMessage
}

type fakeNotifier struct {
	mu    sync.Mutex
	fail  map[string]error // token -> error to return
	calls []sentCall
}

func (f *fakeNotifier) SendReminder(token string, msg *models.ReminderMessage) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, sentCall{token: token, msg: msg})
	if err, ok := f.fail[token]; ok {
		return err
	}
	return nil
}

func (f *fakeNotifier) tokens() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.calls))
	for i, c := range f.calls {
		out[i] = c.token
	}
	return out
}

func bangkok(t *testing.T) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation("Asia/Bangkok")
	if err != nil {
		t.Fatalf("loading Asia/Bangkok: %v", err)
	}
	return loc
}

func watered(t *testing.T, daysAgo int) *models.FlexibleTime {
	t.Helper()
	return &models.FlexibleTime{Time: time.Now().In(bangkok(t)).AddDate(0, 0, -daysAgo)}
}

func plant(owner, name string, lastWatered *models.FlexibleTime) models.Plant {
	return models.Plant{
		ID:            primitive.NewObjectID(),
		OwnerID:       owner,
		Name:          name,
		LastWateredAt: lastWatered,
	}
}

func userWithTokens(tokens ...string) *models.User {
	return &models.User{Tokens: tokens}
}

func newService(plants *fakePlantSource, users *fakeUserSource, notifier *fakeNotifier) *ReminderService {
	return NewReminderService(plants, users, notifier, "Asia/Bangkok")
}

func TestSendGroupedReminders_skipsOwnerlessPlants(t *testing.T) {
	plants := &fakePlantSource{plants: []models.Plant{
		plant("", "Orphan", nil),
	}}
	users := &fakeUserSource{users: map[string]*models.User{}}
	notifier := &fakeNotifier{}

	sent, err := newService(plants, users, notifier).SendGroupedReminders()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sent != 0 {
		t.Errorf("sent = %d, want 0", sent)
	}
	if len(notifier.calls) != 0 {
		t.Errorf("expected no deliveries, got %d", len(notifier.calls))
	}
}

func TestSendGroupedReminders_excludesPlantsWateredToday(t *testing.T) {
	plants := &fakePlantSource{plants: []models.Plant{
		plant("u1", "Aloe", nil),             // never watered: included
		plant("u1", "Basil", watered(t, 0)),  // watered today: excluded
		plant("u1", "Cactus", watered(t, 1)), // watered yesterday: included
	}}
	users := &fakeUserSource{users: map[string]*models.User{
		"u1": userWithTokens("tok1"),
	}}
	notifier := &fakeNotifier{}

	sent, err := newService(plants, users, notifier).SendGroupedReminders()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sent != 1 {
		t.Errorf("sent = %d, want 1", sent)
	}

	if len(notifier.calls) != 1 {
		t.Fatalf("expected 1 delivery, got %d", len(notifier.calls))
	}
	msg := notifier.calls[0].msg
	if msg.Body != "Aloe and 1 more haven't been watered today" {
		t.Errorf("body = %q", msg.Body)
	}
	if msg.Data["count"] != "2" {
		t.Errorf("count = %q, want 2", msg.Data["count"])
	}
}

func TestSendGroupedReminders_singlePlantBody(t *testing.T) {
	p := plant("u1", "Aloe", nil)
	plants := &fakePlantSource{plants: []models.Plant{p}}
	users := &fakeUserSource{users: map[string]*models.User{
		"u1": userWithTokens("tok1"),
	}}
	notifier := &fakeNotifier{}

	sent, err := newService(plants, users, notifier).SendGroupedReminders()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sent != 1 {
		t.Errorf("sent = %d, want 1", sent)
	}

	msg := notifier.calls[0].msg
	if msg.Body != "Aloe haven't been watered today" {
		t.Errorf("body = %q", msg.Body)
	}
	if msg.Title != "Don't forget to water 🌱" {
		t.Errorf("title = %q", msg.Title)
	}
	if msg.Data["type"] != "watering_reminder" {
		t.Errorf("data type = %q", msg.Data["type"])
	}
	if msg.Data["plantIds"] != p.ID.Hex() {
		t.Errorf("plantIds = %q, want %q", msg.Data["plantIds"], p.ID.Hex())
	}
	if msg.Tag != "watering_reminder_daily" || !msg.Renotify || msg.Urgency != "high" {
		t.Errorf("presentation hints wrong: %+v", msg)
	}
}

func TestSendGroupedReminders_placeholderName(t *testing.T) {
	plants := &fakePlantSource{plants: []models.Plant{
		plant("u1", "", nil),
	}}
	users := &fakeUserSource{users: map[string]*models.User{
		"u1": userWithTokens("tok1"),
	}}
	notifier := &fakeNotifier{}

	if _, err := newService(plants, users, notifier).SendGroupedReminders(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if body := notifier.calls[0].msg.Body; body != "Your plant haven't been watered today" {
		t.Errorf("body = %q", body)
	}
}

func TestSendGroupedReminders_skipsMissingUserAndEmptyTokens(t *testing.T) {
	plants := &fakePlantSource{plants: []models.Plant{
		plant("ghost", "Aloe", nil),
		plant("quiet", "Basil", nil),
		plant("u1", "Cactus", nil),
	}}
	users := &fakeUserSource{users: map[string]*models.User{
		"quiet": {}, // exists, but no tokens
		"u1":    userWithTokens("tok1"),
	}}
	notifier := &fakeNotifier{}

	sent, err := newService(plants, users, notifier).SendGroupedReminders()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sent != 1 {
		t.Errorf("sent = %d, want 1", sent)
	}
	if got := notifier.tokens(); len(got) != 1 || got[0] != "tok1" {
		t.Errorf("delivered to %v, want [tok1]", got)
	}
}

func TestSendGroupedReminders_legacyTokenFallback(t *testing.T) {
	plants := &fakePlantSource{plants: []models.Plant{
		plant("u1", "Aloe", nil),
	}}
	users := &fakeUserSource{users: map[string]*models.User{
		"u1": {FCMToken: "legacy-tok"},
	}}
	notifier := &fakeNotifier{}

	sent, err := newService(plants, users, notifier).SendGroupedReminders()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sent != 1 {
		t.Errorf("sent = %d, want 1", sent)
	}
	if got := notifier.tokens(); len(got) != 1 || got[0] != "legacy-tok" {
		t.Errorf("delivered to %v, want [legacy-tok]", got)
	}
}

func TestSendGroupedReminders_partialFailureCountsSuccessesOnly(t *testing.T) {
	plants := &fakePlantSource{plants: []models.Plant{
		plant("u1", "Aloe", nil),
		plant("u2", "Basil", nil),
	}}
	users := &fakeUserSource{users: map[string]*models.User{
		"u1": userWithTokens("tok1", "tok2"),
		"u2": userWithTokens("tok3"),
	}}
	notifier := &fakeNotifier{fail: map[string]error{
		"tok2": errors.New("transient network error"),
	}}

	sent, err := newService(plants, users, notifier).SendGroupedReminders()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// u1 contributes 1 of 2, u2 contributes 1; the u1 failure must not
	// stop delivery to u2.
	if sent != 2 {
		t.Errorf("sent = %d, want 2", sent)
	}
	if len(users.removed) != 0 {
		t.Errorf("transient failure must not prune tokens, removed %v", users.removed)
	}
}

func TestSendGroupedReminders_prunesInvalidTokens(t *testing.T) {
	plants := &fakePlantSource{plants: []models.Plant{
		plant("u1", "Aloe", nil),
	}}
	users := &fakeUserSource{users: map[string]*models.User{
		"u1": userWithTokens("good", "stale", "revoked"),
	}}
	notifier := &fakeNotifier{fail: map[string]error{
		"stale":   &SendError{Code: CodeTokenNotRegistered, Err: errors.New("unregistered")},
		"revoked": &SendError{Code: CodeTokenInvalid, Err: errors.New("invalid")},
	}}

	sent, err := newService(plants, users, notifier).SendGroupedReminders()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sent != 1 {
		t.Errorf("sent = %d, want 1", sent)
	}

	if len(users.removed) != 2 {
		t.Fatalf("removed %d tokens, want 2: %v", len(users.removed), users.removed)
	}
	got := map[string]bool{}
	for _, rm := range users.removed {
		if rm[0] != "u1" {
			t.Errorf("pruned from user %q, want u1", rm[0])
		}
		got[rm[1]] = true
	}
	if !got["stale"] || !got["revoked"] {
		t.Errorf("pruned tokens %v, want stale and revoked", got)
	}
}

func TestSendGroupedReminders_pruneFailureIsTolerated(t *testing.T) {
	plants := &fakePlantSource{plants: []models.Plant{
		plant("u1", "Aloe", nil),
		plant("u2", "Basil", nil),
	}}
	users := &fakeUserSource{
		users: map[string]*models.User{
			"u1": userWithTokens("stale"),
			"u2": userWithTokens("tok2"),
		},
		removeErr: errors.New("write conflict"),
	}
	notifier := &fakeNotifier{fail: map[string]error{
		"stale": &SendError{Code: CodeTokenNotRegistered, Err: errors.New("unregistered")},
	}}

	sent, err := newService(plants, users, notifier).SendGroupedReminders()
	if err != nil {
		t.Fatalf("prune failure must not escalate: %v", err)
	}
	if sent != 1 {
		t.Errorf("sent = %d, want 1", sent)
	}
}

func TestSendGroupedReminders_ownerOrderIsDiscoveryOrder(t *testing.T) {
	plants := &fakePlantSource{plants: []models.Plant{
		plant("u2", "Basil", nil),
		plant("u1", "Aloe", nil),
		plant("u2", "Cactus", nil),
	}}
	users := &fakeUserSource{users: map[string]*models.User{
		"u1": userWithTokens("tok-u1"),
		"u2": userWithTokens("tok-u2"),
	}}
	notifier := &fakeNotifier{}

	if _, err := newService(plants, users, notifier).SendGroupedReminders(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got := notifier.tokens()
	want := []string{"tok-u2", "tok-u1"}
	if len(got) != len(want) || got[0] != want[0] || got[1] != want[1] {
		t.Errorf("delivery order = %v, want %v", got, want)
	}

	// u2's first-seen plant leads its body.
	if body := notifier.calls[0].msg.Body; body != "Basil and 1 more haven't been watered today" {
		t.Errorf("u2 body = %q", body)
	}
}

func TestSendGroupedReminders_plantEnumerationFailureIsFatal(t *testing.T) {
	plants := &fakePlantSource{err: errors.New("connection reset")}
	users := &fakeUserSource{}
	notifier := &fakeNotifier{}

	sent, err := newService(plants, users, notifier).SendGroupedReminders()
	if err == nil {
		t.Fatal("expected error when plant enumeration fails")
	}
	if sent != 0 {
		t.Errorf("sent = %d, want 0", sent)
	}
}

func TestSendGroupedReminders_endToEnd(t *testing.T) {
	aloe := plant("u1", "Aloe", nil)
	basil := plant("u1", "Basil", watered(t, 0))
	plants := &fakePlantSource{plants: []models.Plant{aloe, basil}}
	users := &fakeUserSource{users: map[string]*models.User{
		"u1": userWithTokens("tok1"),
	}}
	notifier := &fakeNotifier{}

	sent, err := newService(plants, users, notifier).SendGroupedReminders()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sent != 1 {
		t.Errorf("sent = %d, want 1", sent)
	}

	msg := notifier.calls[0].msg
	if msg.Body != "Aloe haven't been watered today" {
		t.Errorf("body = %q", msg.Body)
	}
	if msg.Data["plantIds"] != aloe.ID.Hex() {
		t.Errorf("plantIds = %q, watered plant must not appear", msg.Data["plantIds"])
	}
}

func TestErrorCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, ""},
		{"typed invalid", &SendError{Code: CodeTokenInvalid, Err: errors.New("x")}, CodeTokenInvalid},
		{"typed unregistered", &SendError{Code: CodeTokenNotRegistered, Err: errors.New("x")}, CodeTokenNotRegistered},
		{"plain error", errors.New("boom"), CodeUnknown},
		{"wrapped plain error", fmt.Errorf("send: %w", errors.New("boom")), CodeUnknown},
		{"typed empty code", &SendError{Err: errors.New("x")}, CodeUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ErrorCode(tt.err); got != tt.want {
				t.Errorf("ErrorCode() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSendGroupedReminders_sameDayRerunResends(t *testing.T) {
	plants := &fakePlantSource{plants: []models.Plant{
		plant("u1", "Aloe", nil),
	}}
	users := &fakeUserSource{users: map[string]*models.User{
		"u1": userWithTokens("tok1"),
	}}
	notifier := &fakeNotifier{}
	svc := newService(plants, users, notifier)

	// The job keeps no record of past runs; re-running it on the same
	// calendar day delivers again (the client collapses duplicates via
	// the notification tag).
	for run := 1; run <= 2; run++ {
		sent, err := svc.SendGroupedReminders()
		if err != nil {
			t.Fatalf("run %d: unexpected error: %v", run, err)
		}
		if sent != 1 {
			t.Errorf("run %d: sent = %d, want 1", run, sent)
		}
	}

	if len(notifier.calls) != 2 {
		t.Fatalf("expected 2 deliveries across both runs, got %d", len(notifier.calls))
	}
	if notifier.calls[0].msg.Body != notifier.calls[1].msg.Body {
		t.Errorf("bodies differ across runs: %q vs %q",
			notifier.calls[0].msg.Body, notifier.calls[1].msg.Body)
	}
}
