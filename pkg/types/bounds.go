package types

// Bounds is one resource dimension of a fee-paying transaction: the maximum
// amount of the resource the transaction may consume and the maximum price
// per unit the sender will pay.
type Bounds struct {
	MaxAmount       Felt `json:"maxAmount"`
	MaxPricePerUnit Felt `json:"maxPricePerUnit"`
}

// Add returns the component-wise sum of two bounds.
func (b Bounds) Add(other Bounds) Bounds {
	return Bounds{
		MaxAmount:       b.MaxAmount.Add(other.MaxAmount),
		MaxPricePerUnit: b.MaxPricePerUnit.Add(other.MaxPricePerUnit),
	}
}

// ResourceBounds is the multi-dimensional gas ceiling structure accompanying
// a V3 transaction. L1DataGas is only present on networks that support the
// extended data-gas dimension.
type ResourceBounds struct {
	L1Gas     Bounds  `json:"l1Gas"`
	L2Gas     Bounds  `json:"l2Gas"`
	L1DataGas *Bounds `json:"l1DataGas,omitempty"`
}

// WithoutDataGas returns a copy with the extended data-gas dimension removed.
func (r ResourceBounds) WithoutDataGas() ResourceBounds {
	r.L1DataGas = nil
	return r
}

// Add returns the component-wise sum of two resource bounds. The data-gas
// dimension is present in the result if either operand carries it.
func (r ResourceBounds) Add(other ResourceBounds) ResourceBounds {
	out := ResourceBounds{
		L1Gas: r.L1Gas.Add(other.L1Gas),
		L2Gas: r.L2Gas.Add(other.L2Gas),
	}
	if r.L1DataGas != nil || other.L1DataGas != nil {
		sum := Bounds{}
		if r.L1DataGas != nil {
			sum = sum.Add(*r.L1DataGas)
		}
		if other.L1DataGas != nil {
			sum = sum.Add(*other.L1DataGas)
		}
		out.L1DataGas = &sum
	}
	return out
}
