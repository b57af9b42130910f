package agent

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/BaSui01/agentweave/types"
	"github.com/BaSui01/agentweave/workflow"
)

// InvokerConfig configures the HTTP invoker.
type InvokerConfig struct {
	// BaseURL is the agent invocation service root, e.g. http://agents:9000.
	BaseURL string `yaml:"base_url" json:"base_url"`
	// Timeout bounds one invocation end to end.
	Timeout time.Duration `yaml:"timeout" json:"timeout"`
}

// DefaultInvokerConfig returns the default invoker configuration.
func DefaultInvokerConfig() InvokerConfig {
	return InvokerConfig{
		BaseURL: "http://localhost:9000",
		Timeout: 120 * time.Second,
	}
}

// HTTPInvoker calls the external agent invocation service over HTTP. One
// request per Invoke call, no internal retry; the engine surfaces failures
// per step instead.
type HTTPInvoker struct {
	baseURL string
	client  *http.Client
	logger  *zap.Logger
}

// NewHTTPInvoker creates an HTTP invoker.
func NewHTTPInvoker(config InvokerConfig, logger *zap.Logger) *HTTPInvoker {
	timeout := config.Timeout
	if timeout <= 0 {
		timeout = 120 * time.Second
	}
	return &HTTPInvoker{
		baseURL: config.BaseURL,
		client:  &http.Client{Timeout: timeout},
		logger:  logger.With(zap.String("component", "http_invoker")),
	}
}

type invokeRequest struct {
	Message        string `json:"message"`
	UserID         string `json:"user_id"`
	ConversationID string `json:"conversation_id,omitempty"`
}

type invokeErrorBody struct {
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

// Invoke implements workflow.Invoker. An empty conversation id lets the
// service generate one.
func (i *HTTPInvoker) Invoke(ctx context.Context, agentID, message, callerID, conversationID string) (*workflow.Invocation, error) {
	body, err := json.Marshal(invokeRequest{
		Message:        message,
		UserID:         callerID,
		ConversationID: conversationID,
	})
	if err != nil {
		return nil, types.NewError(types.ErrAgentInvocation, "failed to encode invocation request").WithCause(err)
	}

	url := fmt.Sprintf("%s/v1/agents/%s/chat", i.baseURL, agentID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, types.NewError(types.ErrAgentInvocation, "failed to build invocation request").WithCause(err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := i.client.Do(req)
	if err != nil {
		return nil, types.NewError(types.ErrAgentInvocation,
			fmt.Sprintf("agent %s invocation failed", agentID)).WithCause(err).WithRetryable(true)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, types.NewError(types.ErrAgentInvocation,
			fmt.Sprintf("failed to read agent %s response", agentID)).WithCause(err)
	}

	if resp.StatusCode != http.StatusOK {
		var errBody invokeErrorBody
		detail := string(data)
		if json.Unmarshal(data, &errBody) == nil && errBody.Error.Message != "" {
			detail = errBody.Error.Message
		}
		i.logger.Warn("agent invocation rejected",
			zap.String("agent_id", agentID),
			zap.Int("status", resp.StatusCode),
		)
		return nil, types.NewError(types.ErrAgentInvocation,
			fmt.Sprintf("agent %s returned status %d: %s", agentID, resp.StatusCode, detail)).
			WithHTTPStatus(resp.StatusCode).
			WithRetryable(resp.StatusCode >= 500)
	}

	var invocation workflow.Invocation
	if err := json.Unmarshal(data, &invocation); err != nil {
		return nil, types.NewError(types.ErrAgentInvocation,
			fmt.Sprintf("agent %s returned malformed response", agentID)).WithCause(err)
	}
	return &invocation, nil
}
