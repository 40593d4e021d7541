package assistant

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/rushteam/upsell/core"
	"github.com/rushteam/upsell/extract"
	"github.com/rushteam/upsell/llm"
	"github.com/rushteam/upsell/profile"
	"github.com/rushteam/upsell/ranker"
	"github.com/rushteam/upsell/recommend"
)

// Step 是对话所处的阶段。
type Step string

const (
	StepVehicle    Step = "vehicle"
	StepProtection Step = "protection"
	StepAddons     Step = "addons"
)

// ParseStep 解析阶段名，未知值视为 vehicle。
func ParseStep(s string) Step {
	switch Step(strings.ToLower(strings.TrimSpace(s))) {
	case StepProtection, "protections":
		return StepProtection
	case StepAddons, "addon", "extras":
		return StepAddons
	default:
		return StepVehicle
	}
}

// TurnRequest 是一轮对话输入。BookingID 为空时使用 SessionID。
type TurnRequest struct {
	SessionID  string
	BookingID  string
	Message    string
	Step       string
	Registered *core.RegisteredProfile
}

// TurnResult 是一轮对话输出。
type TurnResult struct {
	Step        Step                       `json:"step"`
	Answer      string                     `json:"answer"`
	Cars        []recommend.Card           `json:"cars"`
	Protections []recommend.Recommendation `json:"protections"`
	Addons      []recommend.Recommendation `json:"addons"`
	Profile     *core.Profile              `json:"profile"`
	Needs       extract.Needs              `json:"needs"`
}

type snapshot struct {
	deals       []core.Deal
	protections []core.ProtectionPackage
	addons      []core.AddonGroup
}

// fetch 并发读取目录；任一读取失败记录告警并降级为空列表。
func (e *Engine) fetch(ctx context.Context, bookingID string) snapshot {
	var s snapshot
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		deals, err := e.catalog.Deals(gctx, bookingID)
		if err != nil {
			e.logger.Warn().Err(err).Str("booking", bookingID).Msg("fetch deals failed")
			return nil
		}
		s.deals = deals
		return nil
	})
	g.Go(func() error {
		pkgs, err := e.catalog.Protections(gctx, bookingID)
		if err != nil {
			e.logger.Warn().Err(err).Str("booking", bookingID).Msg("fetch protections failed")
			return nil
		}
		s.protections = pkgs
		return nil
	})
	g.Go(func() error {
		groups, err := e.catalog.Addons(gctx, bookingID)
		if err != nil {
			e.logger.Warn().Err(err).Str("booking", bookingID).Msg("fetch addons failed")
			return nil
		}
		s.addons = groups
		return nil
	})
	_ = g.Wait()
	return s
}

// Turn 处理一轮对话。目录与模型失败都会降级，只有画像存储失败会返回错误。
func (e *Engine) Turn(ctx context.Context, req TurnRequest) (*TurnResult, error) {
	bookingID := req.BookingID
	if bookingID == "" {
		bookingID = req.SessionID
	}
	step := ParseStep(req.Step)

	snap := e.fetch(ctx, bookingID)
	ref := core.ReferencePrice(snap.deals)

	p, err := e.profiles.Load(ctx, req.SessionID, ref)
	if err != nil {
		return nil, err
	}
	p = extract.Apply(profile.Seed(p, req.Registered), req.Message)

	needs := extract.DetectNeeds(req.Message)
	var agentMessage string
	reply, err := e.analyze(ctx, agentInput{
		BookingID:      bookingID,
		ReferencePrice: p.ReferencePrice,
		Registered:     req.Registered,
		State:          p,
		Message:        req.Message,
	})
	if err != nil {
		e.logger.Warn().Err(err).Str("session", req.SessionID).Msg("agent unavailable, using keyword needs")
	} else {
		p = applyStateUpdate(p, reply.StateUpdate)
		needs = reply.Needs.Merge(needs)
		agentMessage = reply.AssistantMessage
	}

	items, err := e.ranker.Rank(ctx, ranker.RankRequest{
		SessionID:      req.SessionID,
		Deals:          snap.deals,
		Profile:        p,
		Registered:     req.Registered,
		ReferencePrice: p.ReferencePrice,
		K:              e.k,
		UseLLM:         e.useLLM,
	})
	if err != nil {
		e.logger.Warn().Err(err).Str("session", req.SessionID).Msg("ranking failed")
		items = nil
	}

	st := recommend.StateFromProfile(p)
	res := &TurnResult{
		Step:        step,
		Cars:        recommend.Cards(items, p.ReferencePrice),
		Protections: e.RecommendProtections(snap.protections, st, needs.Protections),
		Addons:      e.RecommendAddons(snap.addons, st, needs.Addons),
		Profile:     p,
		Needs:       needs,
	}
	res.Answer = e.reply(ctx, req, res, snap, agentMessage)

	if err := e.profiles.Save(ctx, req.SessionID, p); err != nil {
		return nil, err
	}
	e.logProfile(req.SessionID, p)
	return res, nil
}

// reply 用对话模型生成回复；失败时依次使用助手消息与确定性摘要。
func (e *Engine) reply(ctx context.Context, req TurnRequest, res *TurnResult, snap snapshot, agentMessage string) string {
	if e.chat != nil {
		answer, err := e.chat.Complete(ctx, []llm.Message{
			llm.System(systemPrompt),
			llm.System(stepContext(res, snap)),
			llm.User(req.Message),
		}, llm.WithTemperature(e.chatTemperature))
		if err == nil && strings.TrimSpace(answer) != "" {
			return answer
		}
		e.logger.Warn().Err(err).Str("session", req.SessionID).Msg("chat reply failed, using summary")
	}
	if agentMessage != "" {
		return agentMessage
	}
	return fallbackAnswer(res)
}

func numbered(lines []string) string {
	var b strings.Builder
	for i, l := range lines {
		fmt.Fprintf(&b, "%d. %s\n", i+1, l)
	}
	return strings.TrimRight(b.String(), "\n")
}

func carLines(cars []recommend.Card) []string {
	out := make([]string, 0, len(cars))
	for _, c := range cars {
		out = append(out, c.Reason)
	}
	return out
}

// stepContext 是阶段相关的系统上下文，列出本轮计算得到的推荐。
func stepContext(res *TurnResult, snap snapshot) string {
	var b strings.Builder
	switch res.Step {
	case StepProtection:
		b.WriteString("You are currently in the PROTECTION PACKAGES step.\n")
		b.WriteString("The customer has already chosen a vehicle and now you should help them decide which level of protection makes sense.\n\n")
		b.WriteString("Here are the available protection packages for this booking:\n\n")
		b.WriteString(recommend.SummarizeProtections(snap.protections))
		if len(res.Protections) > 0 {
			b.WriteString("\n\nThe system recommends:\n")
			b.WriteString(recommend.SummarizeRecommendations(res.Protections))
		}
		b.WriteString("\n\nBased on the customer's trip, risk appetite and budget, explain the options, highlight at most 2-3 packages ")
		b.WriteString("and clearly mention the daily and total cost differences. Be honest if basic protection is enough.")
	case StepAddons:
		b.WriteString("You are currently in the ADD-ONS step.\n")
		b.WriteString("Help the customer pick only the extras that are useful for this trip.\n\n")
		b.WriteString("Here are the available add-ons:\n\n")
		b.WriteString(recommend.SummarizeAddons(snap.addons))
		if len(res.Addons) > 0 {
			b.WriteString("\n\nThe system recommends:\n")
			b.WriteString(recommend.SummarizeRecommendations(res.Addons))
		}
		b.WriteString("\n\nMention prices per day and do not push extras the customer does not need.")
	default:
		b.WriteString("You are currently in the VEHICLE SELECTION / UPGRADE step.\n")
		b.WriteString("The system has pre-computed the best matching upgrade options for this customer.\n")
		b.WriteString("Use them to give concrete, honest recommendations.\n\n")
		if len(res.Cars) > 0 {
			b.WriteString("Here are the top upgrade options for this customer:\n")
			b.WriteString(numbered(carLines(res.Cars)))
		} else {
			b.WriteString("No clear upgrade options could be determined for this booking.")
		}
	}
	return b.String()
}

// fallbackAnswer 是模型不可用时的确定性回复。
func fallbackAnswer(res *TurnResult) string {
	switch res.Step {
	case StepProtection:
		if len(res.Protections) == 0 {
			return "There are no protection packages available for this booking right now."
		}
		return "Based on what you told me, I recommend:\n" + recommend.SummarizeRecommendations(res.Protections)
	case StepAddons:
		if len(res.Addons) == 0 {
			return "Your booking looks complete, no extras seem necessary for this trip."
		}
		return "These extras could be useful for your trip:\n" + recommend.SummarizeRecommendations(res.Addons)
	default:
		if len(res.Cars) == 0 {
			return "I couldn't find upgrade options for this booking right now. Your current car stays reserved."
		}
		return "Here are the best options for your trip:\n" + numbered(carLines(res.Cars))
	}
}
