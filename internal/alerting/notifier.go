package alerting

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// Notification summarises one evaluation run for alert delivery.
type Notification struct {
	RunTS         time.Time
	TxCount       int
	HitCount      int
	BlockCount    int
	ReviewCount   int
	BlockShare    decimal.Decimal
	ThresholdPct  decimal.Decimal
	TopControls   []string
	AdditionalMsg string
}

// Notifier delivers run-summary alerts.
type Notifier interface {
	Notify(ctx context.Context, notification Notification) error
}

// TelegramNotifier pushes run summaries through the Telegram Bot API.
type TelegramNotifier struct {
	botToken string
	chatID   string
	baseURL  string
	client   *http.Client
	logger   zerolog.Logger
}

// NewTelegramNotifier constructs a Telegram notifier.
func NewTelegramNotifier(botToken, chatID, baseURL string, timeout time.Duration, logger zerolog.Logger) *TelegramNotifier {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	if baseURL == "" {
		baseURL = "https://api.telegram.org"
	}

	return &TelegramNotifier{
		botToken: botToken,
		chatID:   chatID,
		baseURL:  strings.TrimRight(baseURL, "/"),
		client:   &http.Client{Timeout: timeout},
		logger:   logger.With().Str("component", "alert_telegram").Logger(),
	}
}

// Notify posts the rendered summary via the sendMessage API.
func (n *TelegramNotifier) Notify(ctx context.Context, note Notification) error {
	payload := map[string]string{
		"chat_id": n.chatID,
		"text":    renderMessage(note),
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal telegram payload: %w", err)
	}

	url := fmt.Sprintf("%s/bot%s/sendMessage", n.baseURL, n.botToken)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create telegram request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("send telegram request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("telegram unexpected status: %d", resp.StatusCode)
	}

	var result struct {
		OK bool `json:"ok"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err == nil {
		if !result.OK {
			return fmt.Errorf("telegram returned ok=false")
		}
	}

	n.logger.Info().Time("run_ts", note.RunTS).
		Int("block_count", note.BlockCount).
		Str("block_share_pct", note.BlockShare.String()).
		Msg("run summary alert sent (Telegram)")
	return nil
}

func renderMessage(note Notification) string {
	builder := strings.Builder{}
	builder.WriteString("[Controls Run Alert]\n")
	builder.WriteString(fmt.Sprintf("Run: %s UTC\n", note.RunTS.UTC().Format(time.RFC3339)))
	builder.WriteString(fmt.Sprintf("Transactions: %d\n", note.TxCount))
	builder.WriteString(fmt.Sprintf("Hits: %d\n", note.HitCount))
	builder.WriteString(fmt.Sprintf("Decisions: %d BLOCK / %d REVIEW\n", note.BlockCount, note.ReviewCount))
	builder.WriteString(fmt.Sprintf("Block share: %s%% (threshold %s%%)\n", note.BlockShare.StringFixed(2), note.ThresholdPct.StringFixed(2)))
	if len(note.TopControls) > 0 {
		builder.WriteString(fmt.Sprintf("Noisiest controls: %s\n", strings.Join(note.TopControls, ", ")))
	}
	if note.AdditionalMsg != "" {
		builder.WriteString(note.AdditionalMsg)
	}
	return builder.String()
}

var _ Notifier = (*TelegramNotifier)(nil)
