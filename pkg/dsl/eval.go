package dsl

import (
	"fmt"
	"sync"

	"github.com/google/cel-go/cel"

	"github.com/rushteam/upsell/core"
)

var (
	// celEnv 是全局的 CEL 环境，线程安全，可复用
	celEnv     *cel.Env
	celEnvErr  error
	celEnvOnce sync.Once
)

func initCELEnv() (*cel.Env, error) {
	return cel.NewEnv(
		cel.Variable("deal", cel.DynType),
		cel.Variable("profile", cel.DynType),
		cel.Variable("ref", cel.DoubleType),
		cel.CrossTypeNumericComparisons(true),
	)
}

func getCELEnv() (*cel.Env, error) {
	celEnvOnce.Do(func() {
		celEnv, celEnvErr = initCELEnv()
	})
	return celEnv, celEnvErr
}

// Program 是编译后的 deal 表达式，使用 CEL (Common Expression Language) 实现。
// 编译一次、多次求值，线程安全。
//
// 可用变量：
//   - deal.vehicle.{id,brand,model,group,passengers,bags,transmission,fuel,new,recommended,luxury}
//   - deal.{total,daily,currency,discount,deal_info}
//   - profile.{passengers,luggage,budget_total,trip_type,comfort_priority,risk_aversion,upgrade_openness,kids,winter_driving}
//   - ref：原始预订总价
//
// 示例：
//   - `deal.vehicle.transmission == "AUTOMATIC"`
//   - `deal.vehicle.fuel != "ELECTRIC" || profile.trip_type != "business"`
//   - `deal.total <= ref * 2.0`
type Program struct {
	expr string
	prg  cel.Program
}

// Compile 编译表达式，表达式必须返回 bool。
func Compile(expr string) (*Program, error) {
	env, err := getCELEnv()
	if err != nil {
		return nil, fmt.Errorf("cel env: %w", err)
	}
	ast, issues := env.Compile(expr)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("compile %q: %w", expr, issues.Err())
	}
	if !ast.OutputType().IsAssignableType(cel.BoolType) {
		return nil, fmt.Errorf("compile %q: expression must return bool, got %s", expr, ast.OutputType())
	}
	prg, err := env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("program %q: %w", expr, err)
	}
	return &Program{expr: expr, prg: prg}, nil
}

// String 返回原始表达式。
func (p *Program) String() string { return p.expr }

// Eval 对单个 deal 求值。
func (p *Program) Eval(deal *core.Deal, profile *core.Profile, ref float64) (bool, error) {
	out, _, err := p.prg.Eval(map[string]any{
		"deal":    DealInput(deal),
		"profile": ProfileInput(profile),
		"ref":     ref,
	})
	if err != nil {
		return false, fmt.Errorf("eval %q: %w", p.expr, err)
	}
	result, ok := out.Value().(bool)
	if !ok {
		return false, fmt.Errorf("eval %q: expression must return bool, got %T", p.expr, out.Value())
	}
	return result, nil
}

// DealInput 构建 CEL 表达式的 deal 输入
func DealInput(d *core.Deal) map[string]any {
	if d == nil {
		return map[string]any{}
	}
	v := d.Vehicle
	return map[string]any{
		"vehicle": map[string]any{
			"id":           v.ID,
			"brand":        v.Brand,
			"model":        v.Model,
			"group":        v.GroupType,
			"passengers":   int64(v.PassengersCount),
			"bags":         int64(v.BagsCount),
			"transmission": v.TransmissionType,
			"fuel":         v.FuelType,
			"new":          v.IsNewCar,
			"recommended":  v.IsRecommended,
			"luxury":       v.IsMoreLuxury,
		},
		"total":     d.Pricing.TotalPrice.Amount,
		"daily":     d.Pricing.DisplayPrice.Amount,
		"currency":  d.Pricing.TotalPrice.Currency,
		"discount":  d.Pricing.DiscountPercentage,
		"deal_info": d.DealInfo,
	}
}

// ProfileInput 构建 CEL 表达式的 profile 输入，未知字段为零值
func ProfileInput(p *core.Profile) map[string]any {
	if p == nil {
		p = &core.Profile{}
	}
	return map[string]any{
		"passengers":       int64(p.Passengers),
		"luggage":          string(p.Luggage),
		"budget_total":     p.BudgetTotal,
		"trip_type":        string(p.TripType),
		"comfort_priority": string(p.ComfortPriority),
		"risk_aversion":    string(p.RiskAversion),
		"upgrade_openness": string(p.UpgradeOpenness),
		"kids":             p.Kids,
		"winter_driving":   p.WinterDriving,
	}
}
