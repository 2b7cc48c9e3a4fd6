package models

const (
	SpecAccumulatingOverPeriod = "AccumulatingOverPeriodTransactionRule"
	SpecTimeOfDay              = "TimeOfDayTransactionRule"

	PeriodMonth = "MONTH"
)

type RuleFilter struct {
	Field    string `json:"field"`
	Operator string `json:"operator"`
	Value    any    `json:"value"`
}

// AccumulatingRuleSpec caps accumulated spend over a period for the
// transactions matched by its filters.
type AccumulatingRuleSpec struct {
	SpecType string       `json:"specType"`
	Period   string       `json:"period"`
	Amount   float64      `json:"amount"`
	Filters  []RuleFilter `json:"filters"`
}

// TimeOfDayRuleSpec blocks matched transactions inside a daily time
// window. StartTime and EndTime are HH:MM:SS; the window may wrap
// past midnight.
type TimeOfDayRuleSpec struct {
	SpecType  string       `json:"specType"`
	StartTime string       `json:"startTime"`
	EndTime   string       `json:"endTime"`
	Filters   []RuleFilter `json:"filters"`
}

type Rule struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}
