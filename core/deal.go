package core

import "strings"

// DealInfoBookedCategory 标记客户原始预订的车型类别。
const DealInfoBookedCategory = "BOOKED_CATEGORY"

// Price 是带币种的展示价格。
type Price struct {
	Currency string  `json:"currency"`
	Amount   float64 `json:"amount"`
	Prefix   string  `json:"prefix,omitempty"`
	Suffix   string  `json:"suffix,omitempty"`
}

// Vehicle 是目录中的车辆快照（只读）。
type Vehicle struct {
	ID               string   `json:"id"`
	Brand            string   `json:"brand"`
	Model            string   `json:"model"`
	AcrissCode       string   `json:"acrissCode,omitempty"`
	Images           []string `json:"images,omitempty"`
	GroupType        string   `json:"groupType"`
	PassengersCount  int      `json:"passengersCount"`
	BagsCount        int      `json:"bagsCount"`
	TransmissionType string   `json:"transmissionType"`
	FuelType         string   `json:"fuelType"`
	IsNewCar         bool     `json:"isNewCar"`
	IsRecommended    bool     `json:"isRecommended"`
	IsMoreLuxury     bool     `json:"isMoreLuxury"`
}

// Pricing 是车辆报价。
type Pricing struct {
	DiscountPercentage float64 `json:"discountPercentage"`
	DisplayPrice       Price   `json:"displayPrice"`
	TotalPrice         Price   `json:"totalPrice"`
}

// Deal 是一条车辆 + 报价，单轮对话内不可变。
type Deal struct {
	Vehicle  Vehicle  `json:"vehicle"`
	Pricing  Pricing  `json:"pricing"`
	DealInfo string   `json:"dealInfo,omitempty"`
	Tags     []string `json:"tags,omitempty"`
}

// Total 返回总价金额。
func (d *Deal) Total() float64 { return d.Pricing.TotalPrice.Amount }

// Category 返回大写的车型组（SUV / SEDAN / MINIVAN ...）。
func (d *Deal) Category() string { return strings.ToUpper(d.Vehicle.GroupType) }

// ReferencePrice 返回原始预订价：优先 BOOKED_CATEGORY，其次第一条 deal，否则 0。
func ReferencePrice(deals []Deal) float64 {
	for i := range deals {
		if deals[i].DealInfo == DealInfoBookedCategory {
			return deals[i].Total()
		}
	}
	if len(deals) > 0 {
		return deals[0].Total()
	}
	return 0
}

// CoverageItem 是保障包包含/排除的条目。
type CoverageItem struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description,omitempty"`
	Tags        []string `json:"tags,omitempty"`
}

// ProtectionPrice 是保障包价格。
type ProtectionPrice struct {
	DiscountPercentage float64 `json:"discountPercentage,omitempty"`
	DisplayPrice       Price   `json:"displayPrice"`
	TotalPrice         Price   `json:"totalPrice"`
}

// ProtectionPackage 是保障包目录项（只读）。
type ProtectionPackage struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	RatingStars int             `json:"ratingStars,omitempty"`
	IsSelected  bool            `json:"isSelected,omitempty"`
	Includes    []CoverageItem  `json:"includes,omitempty"`
	Excludes    []CoverageItem  `json:"excludes,omitempty"`
	Price       ProtectionPrice `json:"price"`
}

// HasInclude 判断保障包是否包含指定 id 的条目。
func (p *ProtectionPackage) HasInclude(id string) bool {
	for _, it := range p.Includes {
		if it.ID == id {
			return true
		}
	}
	return false
}

// SelectionStrategy 附加项的选择规则。
type SelectionStrategy struct {
	IsMultiSelectionAllowed bool `json:"isMultiSelectionAllowed"`
	MaxSelectionLimit       int  `json:"maxSelectionLimit"`
	CurrentSelection        int  `json:"currentSelection"`
}

// AddonChargeDetail 附加项描述。
type AddonChargeDetail struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description,omitempty"`
	Tags        []string `json:"tags,omitempty"`
}

// AddonPrice 附加项价格。
type AddonPrice struct {
	DiscountPercentage float64 `json:"discountPercentage,omitempty"`
	DisplayPrice       Price   `json:"displayPrice"`
	TotalPrice         *Price  `json:"totalPrice,omitempty"`
}

// AddonAdditionalInfo 附加项的价格与选择信息。
type AddonAdditionalInfo struct {
	Price             AddonPrice        `json:"price"`
	IsSelected        bool              `json:"isSelected,omitempty"`
	IsEnabled         bool              `json:"isEnabled,omitempty"`
	SelectionStrategy SelectionStrategy `json:"selectionStrategy"`
}

// AddonOption 是附加项目录项（只读）。
type AddonOption struct {
	ChargeDetail   AddonChargeDetail   `json:"chargeDetail"`
	AdditionalInfo AddonAdditionalInfo `json:"additionalInfo"`
}

// AddonGroup 是一组附加项。
type AddonGroup struct {
	ID      int           `json:"id"`
	Name    string        `json:"name"`
	Options []AddonOption `json:"options"`
}
