package component

// GravityScale mirrors the gravity multiplier the controller last applied.
type GravityScale struct {
	Scale float64
}

var GravityScaleComponent = NewComponent[GravityScale]()
