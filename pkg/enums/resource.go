package enums

// Resource names the entitlement-gated resource kinds.
type Resource string

const (
	ResourceStore   Resource = "store"
	ResourceProduct Resource = "product"
)

func (r Resource) IsValid() bool {
	switch r {
	case ResourceStore, ResourceProduct:
		return true
	}
	return false
}
