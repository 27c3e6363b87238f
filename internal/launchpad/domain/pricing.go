package domain

import "github.com/shopspring/decimal"

// 定价曲线与发行常量。
// 曲线是阶梯函数：每卖出 StepSize 个单位，单价上涨 PriceStep。
// cost(0) = BasePrice，cost(StepSize) = 2*BasePrice。
var (
	// BasePrice 起始单价
	BasePrice = decimal.RequireFromString("0.0001")
	// PriceStep 每个阶梯的单价涨幅
	PriceStep = decimal.RequireFromString("0.0001")
	// StepSize 每个阶梯覆盖的已售数量
	StepSize = decimal.NewFromInt(10_000)

	// TotalSupply 每个代币的固定总供应量
	TotalSupply = decimal.NewFromInt(1_000_000)
	// TokenLimit 公开发售的最大可售数量
	TokenLimit = decimal.NewFromInt(500_000)
	// Target 募集目标，达到后发售关闭
	Target = decimal.NewFromInt(3)
)

// Cost 返回累计卖出 sold 个单位之后，下一个单位的边际价格。
// 对 sold ∈ [0, TokenLimit] 单调不减。
func Cost(sold decimal.Decimal) decimal.Decimal {
	if sold.IsNegative() {
		sold = decimal.Zero
	}
	steps := sold.Div(StepSize).Floor()
	return BasePrice.Add(PriceStep.Mul(steps))
}

// BatchCost 返回在已售 sold 的基础上，一次购买 amount 个单位的总价。
// 整批按购买前的边际价格计价，不逐单位积分。
func BatchCost(sold, amount decimal.Decimal) decimal.Decimal {
	return Cost(sold).Mul(amount)
}
