package assistant

import (
	"context"
	"fmt"
	"strings"

	"github.com/goccy/go-json"

	"github.com/rushteam/upsell/core"
	"github.com/rushteam/upsell/extract"
	"github.com/rushteam/upsell/llm"
)

// agentReply 是助手模型返回的结构化结果。
type agentReply struct {
	AssistantMessage string         `json:"assistant_message"`
	StateUpdate      map[string]any `json:"state_update"`
	Needs            extract.Needs  `json:"needs"`
}

type agentInput struct {
	BookingID      string                  `json:"booking_id"`
	ReferencePrice float64                 `json:"original_total_price"`
	Registered     *core.RegisteredProfile `json:"registered_profile,omitempty"`
	State          *core.Profile           `json:"state"`
	Message        string                  `json:"message"`
}

// analyze 调用助手模型，返回结构化回复。模型不可用或回复不是合法 JSON 时返回错误。
func (e *Engine) analyze(ctx context.Context, in agentInput) (*agentReply, error) {
	if e.chat == nil {
		return nil, core.NewDomainError(core.ModuleLLM, core.ErrorCodeUnavailable, "no completer configured")
	}
	payload, err := json.Marshal(in)
	if err != nil {
		return nil, fmt.Errorf("marshal agent input: %w", err)
	}

	resp, err := e.chat.Complete(ctx, []llm.Message{
		llm.System(agentPrompt),
		llm.User(string(payload) + "\nReturn ONLY a valid JSON object in the required format."),
	}, llm.WithJSON(), llm.WithTemperature(e.chatTemperature))
	if err != nil {
		return nil, err
	}

	var reply agentReply
	if err := json.Unmarshal([]byte(stripFence(resp)), &reply); err != nil {
		return nil, fmt.Errorf("decode agent reply: %w", err)
	}
	reply.Needs = sanitizeNeeds(reply.Needs)
	return &reply, nil
}

var (
	protectionNeeds = []string{extract.NeedFullCover, extract.NeedLiability, extract.NeedRoadside, extract.NeedNoProtection}
	addonNeeds      = []string{extract.NeedToll, extract.NeedAdditionalDriver, extract.NeedChildSeat}
)

// sanitizeNeeds 丢弃未知需求。
func sanitizeNeeds(n extract.Needs) extract.Needs {
	keep := func(in, allowed []string) []string {
		var out []string
		for _, s := range in {
			s = strings.ToLower(strings.TrimSpace(s))
			if extract.Has(allowed, s) && !extract.Has(out, s) {
				out = append(out, s)
			}
		}
		return out
	}
	return extract.Needs{
		Protections: keep(n.Protections, protectionNeeds),
		Addons:      keep(n.Addons, addonNeeds),
	}
}

// stripFence 去掉模型偶尔包裹的 ```json 代码块。
func stripFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimPrefix(s, "json")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
