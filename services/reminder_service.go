package services

import (
	"fmt"
	"log"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/ymmiz/berrifyApp/models"
	"github.com/ymmiz/berrifyApp/utils"
)

// PlantPlaceholderName stands in for plants saved without a name.
const PlantPlaceholderName = "Your plant"

// PlantSource is the plant store surface the reminder job reads from.
type PlantSource interface {
	FindAll() ([]models.Plant, error)
}

// UserSource is the user store surface the reminder job reads and prunes.
type UserSource interface {
	FindByHexID(id string) (*models.User, error)
	RemoveToken(userID, token string) error
}

// reminderPlant is the slice of a plant the job carries after filtering.
type reminderPlant struct {
	ID   string
	Name string
}

// ReminderService runs the daily grouped watering reminder: one push per
// user covering all of that user's unwatered plants.
type ReminderService struct {
	plants   PlantSource
	users    UserSource
	notifier Notifier
	timezone string
}

// NewReminderService creates a new ReminderService. timezone is the
// reference timezone all "today" comparisons use.
func NewReminderService(plants PlantSource, users UserSource, notifier Notifier, timezone string) *ReminderService {
	return &ReminderService{
		plants:   plants,
		users:    users,
		notifier: notifier,
		timezone: timezone,
	}
}

// composeMessage builds the single push body for one owner's unwatered
// plants. plants is never empty here.
func composeMessage(plants []reminderPlant) *models.ReminderMessage {
	first := plants[0].Name
	if first == "" {
		first = PlantPlaceholderName
	}

	var body string
	if len(plants) == 1 {
		body = fmt.Sprintf("%s haven't been watered today", first)
	} else {
		body = fmt.Sprintf("%s and %d more haven't been watered today", first, len(plants)-1)
	}

	ids := make([]string, len(plants))
	for i, p := range plants {
		ids[i] = p.ID
	}

	return &models.ReminderMessage{
		Title: "Don't forget to water 🌱",
		Body:  body,
		Data: map[string]string{
			"type":     models.ReminderDataType,
			"plantIds": strings.Join(ids, ","),
			"count":    strconv.Itoa(len(plants)),
		},
		Tag:      models.ReminderTag,
		Renotify: true,
		Urgency:  "high",
	}
}

// SendGroupedReminders scans every plant, groups the unwatered ones by
// owner and sends one push per owner to all of that owner's device tokens.
// It returns the number of successful deliveries. Individual delivery
// failures never abort the run; only store reads are fatal.
func (s *ReminderService) SendGroupedReminders() (int, error) {
	// One time reference for the whole run so every plant is judged
	// against the same calendar day.
	today, err := utils.FormatYMD(time.Now(), s.timezone)
	if err != nil {
		return 0, fmt.Errorf("computing reference date: %w", err)
	}

	plants, err := s.plants.FindAll()
	if err != nil {
		return 0, fmt.Errorf("loading plants: %w", err)
	}

	// Group unwatered plants by owner, preserving the order owners are
	// first encountered.
	byOwner := make(map[string][]reminderPlant)
	var owners []string

	for _, plant := range plants {
		if plant.OwnerID == "" {
			continue
		}

		if plant.LastWateredAt != nil {
			wateredDay, err := utils.FormatYMD(plant.LastWateredAt.Time, s.timezone)
			if err != nil {
				return 0, fmt.Errorf("computing watered date: %w", err)
			}
			if wateredDay == today {
				continue
			}
		}

		if _, seen := byOwner[plant.OwnerID]; !seen {
			owners = append(owners, plant.OwnerID)
		}
		byOwner[plant.OwnerID] = append(byOwner[plant.OwnerID], reminderPlant{
			ID:   plant.ID.Hex(),
			Name: plant.Name,
		})
	}

	log.Printf("🔔 Watering reminders: %d plants due across %d users", countPlants(byOwner), len(owners))

	sent := 0

	for _, ownerID := range owners {
		user, err := s.users.FindByHexID(ownerID)
		if err != nil {
			return sent, fmt.Errorf("loading user %s: %w", ownerID, err)
		}
		if user == nil {
			continue
		}

		tokens := user.EffectiveTokens()
		if len(tokens) == 0 {
			continue
		}

		msg := composeMessage(byOwner[ownerID])

		// One attempt per token, all in flight at once. The run waits for
		// every attempt to settle before reconciling results, so a slow or
		// failed token never hides the outcome of another.
		results := make([]error, len(tokens))
		var wg sync.WaitGroup

		for i, token := range tokens {
			wg.Add(1)
			go func(i int, token string) {
				defer wg.Done()
				results[i] = s.notifier.SendReminder(token, msg)
			}(i, token)
		}

		wg.Wait()

		for i, sendErr := range results {
			if sendErr == nil {
				sent++
				continue
			}

			code := ErrorCode(sendErr)
			if code == CodeTokenInvalid || code == CodeTokenNotRegistered {
				// Dead token: prune it. Best effort only, a failed prune
				// must never stop the run.
				if rmErr := s.users.RemoveToken(ownerID, tokens[i]); rmErr != nil {
					log.Printf("⚠️ Could not remove invalid token for user %s: %v", ownerID, rmErr)
				} else {
					log.Printf("✓ Removed invalid token for user %s", ownerID)
				}
			} else {
				log.Printf("⚠️ Delivery failed for user %s (%s): %v", ownerID, code, sendErr)
			}
		}
	}

	log.Printf("📊 Watering reminders done: %d notifications sent", sent)
	return sent, nil
}

func countPlants(byOwner map[string][]reminderPlant) int {
	n := 0
	for _, plants := range byOwner {
		n += len(plants)
	}
	return n
}
