package enums

// PlanName identifies a subscription tier. Free is the signup default and
// permits no resource creation.
type PlanName string

const (
	PlanFree     PlanName = "Free"
	PlanTrial    PlanName = "Trial"
	PlanBasic    PlanName = "Basic"
	PlanAdvanced PlanName = "Advanced"
)

func (p PlanName) IsValid() bool {
	switch p {
	case PlanFree, PlanTrial, PlanBasic, PlanAdvanced:
		return true
	}
	return false
}
