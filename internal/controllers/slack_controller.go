package controllers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	json "github.com/goccy/go-json"

	"starbot/internal/models"
	"starbot/internal/providers"
	"starbot/internal/render"
	"starbot/internal/services"
	"starbot/internal/structures"
)

const (
	ActionConfirmStar = "confirm_star"
	ActionCancelStar  = "cancel_star"

	missingUserMessage    = "Missing user_id."
	genericFailureMessage = "Something went wrong, please try again later."

	analyzeTimeout = 30 * time.Second
)

const usageMessage = "Usage:\n" +
	"• `/workout-wins star me` – Add a star\n" +
	"• `/workout-wins star me for <date>` – Add a star for a specific day\n" +
	"• `/workout-wins my stars` – View your weekly total\n" +
	"• `/workout-wins weekly stars` – View the leaderboard\n" +
	"• `/workout-wins weekly table [public]` – View the weekly table\n" +
	"• `/workout-wins analyze [public]` – Get an AI take on the week"

// SlackController dispatches slash commands and button interactions to the
// star service and relays the results back in Slack's response format.
type SlackController struct {
	logger   providers.Logger
	service  services.StarServiceInterface
	analysis services.AnalysisServiceInterface
	cache    providers.CacheProviderInterface
	notifier providers.NotifierProviderInterface
	metrics  providers.MetricsProviderInterface
}

func NewSlackController(logger providers.Logger, service services.StarServiceInterface, analysis services.AnalysisServiceInterface, cache providers.CacheProviderInterface, notifier providers.NotifierProviderInterface, metrics providers.MetricsProviderInterface) *SlackController {
	return &SlackController{
		logger:   logger,
		service:  service,
		analysis: analysis,
		cache:    cache,
		notifier: notifier,
		metrics:  metrics,
	}
}

// HandleCommand serves POST /slack/command (x-www-form-urlencoded).
func (sc *SlackController) HandleCommand(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	userID := r.PostFormValue("user_id")
	userName := r.PostFormValue("user_name")
	responseURL := r.PostFormValue("response_url")
	rawText := strings.ToLower(strings.TrimSpace(r.PostFormValue("text")))
	parts := strings.Fields(rawText)
	now := time.Now()

	command := ""
	if len(parts) >= 2 {
		command = parts[0] + " " + parts[1]
	}

	switch {
	case command == "star me":
		sc.metrics.IncCommandsTotal("star me")
		sc.handleStarMe(w, parts[2:], userID, userName, responseURL, now)
	case command == "my stars":
		sc.metrics.IncCommandsTotal("my stars")
		sc.handleMyStars(w, userID, now)
	case command == "weekly stars":
		sc.metrics.IncCommandsTotal("weekly stars")
		sc.handleLeaderboard(w, now)
	case command == "weekly table":
		sc.metrics.IncCommandsTotal("weekly table")
		sc.handleTable(w, hasToken(parts[2:], "public"), now)
	case len(parts) > 0 && parts[0] == "analyze":
		sc.metrics.IncCommandsTotal("analyze")
		sc.handleAnalyze(w, hasToken(parts[1:], "public"), responseURL, now)
	default:
		sc.writeMessage(w, &structures.SlackMessage{
			ResponseType: structures.ResponseEphemeral,
			Text:         usageMessage,
		})
	}
}

func (sc *SlackController) handleStarMe(w http.ResponseWriter, args []string, userID, userName, responseURL string, now time.Time) {
	if len(args) > 0 && args[0] == "for" {
		args = args[1:]
	}
	dayKey := sc.service.ResolveDay(strings.Join(args, " "), now)

	outcome, err := sc.service.RecordStar(userID, userName, dayKey)
	if err != nil {
		sc.writeWorkflowError(w, err)
		return
	}
	sc.metrics.IncStarsRecorded()
	sc.invalidateWeek(dayKey, userID)

	switch outcome.State {
	case services.StateAnnounced:
		sc.logger.Infof(providers.TypeCommand, "First star for %s on %s", outcome.UserID, outcome.DayKey)
		sc.notifier.Notify(responseURL, &structures.SlackMessage{
			ResponseType: structures.ResponseInChannel,
			Text:         fmt.Sprintf(":star: %s got a star for %s", outcome.Label, outcome.DayKey),
		})
		w.WriteHeader(http.StatusOK)
	case services.StateAwaitingConfirmation:
		sc.logger.Infof(providers.TypeCommand, "Repeat star for %s on %s (count %d)", outcome.UserID, outcome.DayKey, outcome.Count)
		sc.writeMessage(w, confirmationPrompt(outcome))
	case services.StateConfirmed, services.StateCancelled:
		// Recording never ends in these states; the interaction handler owns them.
		sc.logger.Errorf(providers.TypeCommand, "Unexpected workflow state %d from recording", outcome.State)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	}
}

func (sc *SlackController) handleMyStars(w http.ResponseWriter, userID string, now time.Time) {
	if userID == "" {
		sc.writeMessage(w, &structures.SlackMessage{
			ResponseType: structures.ResponseEphemeral,
			Text:         missingUserMessage,
		})
		return
	}

	label := sc.service.WeekLabel(now)
	text, err := sc.cachedText("mystars:"+label+":"+userID, func() (string, error) {
		total, err := sc.service.WeeklyTotal(userID, now)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf(":star: %d stars this week.", total), nil
	})
	if err != nil {
		sc.writeWorkflowError(w, err)
		return
	}
	sc.writeMessage(w, &structures.SlackMessage{
		ResponseType: structures.ResponseEphemeral,
		Text:         text,
	})
}

func (sc *SlackController) handleLeaderboard(w http.ResponseWriter, now time.Time) {
	label := sc.service.WeekLabel(now)
	text, err := sc.cachedText("leaderboard:"+label, func() (string, error) {
		entries, err := sc.service.WeeklyLeaderboard(now)
		if err != nil {
			return "", err
		}
		return render.Leaderboard(entries, label), nil
	})
	if err != nil {
		sc.writeWorkflowError(w, err)
		return
	}
	sc.writeMessage(w, &structures.SlackMessage{
		ResponseType: structures.ResponseInChannel,
		Text:         text,
	})
}

func (sc *SlackController) handleTable(w http.ResponseWriter, public bool, now time.Time) {
	label := sc.service.WeekLabel(now)
	text, err := sc.cachedText("table:"+label, func() (string, error) {
		matrix, err := sc.service.WeeklyMatrix(now)
		if err != nil {
			return "", err
		}
		return render.WeeklyTable(matrix), nil
	})
	if err != nil {
		sc.writeWorkflowError(w, err)
		return
	}

	visibility := structures.ResponseEphemeral
	if public {
		visibility = structures.ResponseInChannel
	}
	sc.writeMessage(w, &structures.SlackMessage{ResponseType: visibility, Text: text})
}

func (sc *SlackController) handleAnalyze(w http.ResponseWriter, public bool, responseURL string, now time.Time) {
	visibility := structures.ResponseEphemeral
	if public {
		visibility = structures.ResponseInChannel
	}

	// Gemini is too slow for the synchronous window; ack now, deliver via
	// the response_url side channel.
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), analyzeTimeout)
		defer cancel()

		matrix, err := sc.service.WeeklyMatrix(now)
		if err != nil {
			sc.notifier.Notify(responseURL, &structures.SlackMessage{
				ResponseType: structures.ResponseEphemeral,
				Text:         genericFailureMessage,
			})
			return
		}

		label := sc.service.WeekLabel(now)
		text, err := sc.analysis.Analyze(ctx, matrix, render.WeeklyTable(matrix), label)
		if err != nil {
			sc.logger.Errorf(providers.TypeCommand, "Analysis failed: %s", err)
			text = fmt.Sprintf("Analysis failed: %s", err)
			visibility = structures.ResponseEphemeral
		}
		sc.notifier.Notify(responseURL, &structures.SlackMessage{
			ResponseType: visibility,
			Text:         text,
		})
	}()

	sc.writeMessage(w, &structures.SlackMessage{
		ResponseType: structures.ResponseEphemeral,
		Text:         "On it — crunching this week's numbers...",
	})
}

type slackInteraction struct {
	User struct {
		ID       string `json:"id"`
		Username string `json:"username"`
		Name     string `json:"name"`
	} `json:"user"`
	Actions []struct {
		ActionID string `json:"action_id"`
		Value    string `json:"value"`
	} `json:"actions"`
	ResponseURL string `json:"response_url"`
}

// HandleInteraction serves POST /slack/interact. Slack sends the interaction
// JSON in the `payload` form field; the button value carries the day key
// token round-tripped from the confirmation prompt.
func (sc *SlackController) HandleInteraction(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	var interaction slackInteraction
	if err := json.Unmarshal([]byte(r.PostFormValue("payload")), &interaction); err != nil || len(interaction.Actions) == 0 {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	action := interaction.Actions[0]
	userID := interaction.User.ID
	userName := interaction.User.Username
	if userName == "" {
		userName = interaction.User.Name
	}

	switch action.ActionID {
	case ActionConfirmStar:
		sc.metrics.IncInteractionsTotal("confirm")
		sc.handleConfirm(w, userID, userName, action.Value, interaction.ResponseURL)
	case ActionCancelStar:
		sc.metrics.IncInteractionsTotal("cancel")
		outcome := sc.service.CancelStar(userID, action.Value)
		sc.writeMessage(w, &structures.SlackMessage{
			ResponseType:    structures.ResponseEphemeral,
			ReplaceOriginal: true,
			Text:            fmt.Sprintf("Okay, no extra star for %s.", outcome.DayKey),
		})
	default:
		sc.logger.Warnf(providers.TypeInteract, "Ignoring unknown action %q", action.ActionID)
		w.WriteHeader(http.StatusOK)
	}
}

func (sc *SlackController) handleConfirm(w http.ResponseWriter, userID, userName, dayKey, responseURL string) {
	outcome, err := sc.service.ConfirmStar(userID, userName, dayKey)
	if err != nil {
		sc.writeWorkflowError(w, err)
		return
	}
	sc.metrics.IncStarsRecorded()
	sc.invalidateWeek(dayKey, userID)

	sc.logger.Infof(providers.TypeInteract, "Confirmed extra star for %s on %s (count %d)", outcome.UserID, outcome.DayKey, outcome.Count)
	sc.notifier.Notify(responseURL, &structures.SlackMessage{
		ResponseType: structures.ResponseInChannel,
		Text:         fmt.Sprintf(":star: %s got another star for %s", outcome.Label, outcome.DayKey),
	})
	sc.writeMessage(w, &structures.SlackMessage{
		ResponseType:    structures.ResponseEphemeral,
		ReplaceOriginal: true,
		Text:            fmt.Sprintf(":star: Confirmed! %s now has %d stars for %s.", outcome.Label, outcome.Count, outcome.DayKey),
	})
}

func confirmationPrompt(outcome *services.RecordOutcome) *structures.SlackMessage {
	prompt := fmt.Sprintf("You already starred %s — it now counts %d. Add one more?", outcome.DayKey, outcome.Count)
	return &structures.SlackMessage{
		ResponseType: structures.ResponseEphemeral,
		Text:         prompt,
		Blocks: []structures.SlackBlock{
			{
				Type: "section",
				Text: &structures.SlackText{Type: "mrkdwn", Text: prompt},
			},
			{
				Type: "actions",
				Elements: []structures.SlackButton{
					{
						Type:     "button",
						Text:     &structures.SlackText{Type: "plain_text", Text: "Add it", Emoji: true},
						ActionID: ActionConfirmStar,
						Value:    outcome.DayKey,
						Style:    "primary",
					},
					{
						Type:     "button",
						Text:     &structures.SlackText{Type: "plain_text", Text: "Never mind", Emoji: true},
						ActionID: ActionCancelStar,
						Value:    outcome.DayKey,
					},
				},
			},
		},
	}
}

func (sc *SlackController) cachedText(key string, compute func() (string, error)) (string, error) {
	if data, ok := sc.cache.Get(key); ok {
		return string(data), nil
	}
	text, err := compute()
	if err != nil {
		return "", err
	}
	sc.cache.Set(key, []byte(text))
	return text, nil
}

func (sc *SlackController) invalidateWeek(dayKey, userID string) {
	label := sc.service.WeekLabelOfDay(dayKey)
	sc.cache.Del("table:" + label)
	sc.cache.Del("leaderboard:" + label)
	sc.cache.Del("mystars:" + label + ":" + userID)
}

func (sc *SlackController) writeWorkflowError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, services.ErrMissingUser):
		sc.writeMessage(w, &structures.SlackMessage{
			ResponseType: structures.ResponseEphemeral,
			Text:         missingUserMessage,
		})
	case errors.Is(err, models.ErrStoreUnavailable):
		sc.logger.Errorf(providers.TypeCommand, "Store unavailable: %s", err)
		sc.writeMessage(w, &structures.SlackMessage{
			ResponseType: structures.ResponseEphemeral,
			Text:         genericFailureMessage,
		})
	default:
		sc.logger.Errorf(providers.TypeCommand, "Unhandled error: %s", err)
		sc.writeMessage(w, &structures.SlackMessage{
			ResponseType: structures.ResponseEphemeral,
			Text:         genericFailureMessage,
		})
	}
}

func (sc *SlackController) writeMessage(w http.ResponseWriter, msg *structures.SlackMessage) {
	gson, err := json.Marshal(msg)
	if err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(gson)
}

func hasToken(args []string, token string) bool {
	for _, a := range args {
		if a == token {
			return true
		}
	}
	return false
}
