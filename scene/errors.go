package scene

import "fmt"

// CapacityError reports that a BLAS or TLAS capacity limit has been reached
// (spec 7 "Capacity exhausted").
type CapacityError struct {
	Kind  ADSKind
	Limit int
}

func (e *CapacityError) Error() string {
	kind := "BLAS"
	if e.Kind == KindTLAS {
		kind = "TLAS"
	}
	return fmt.Sprintf("scene: %s capacity exhausted (limit %d)", kind, e.Limit)
}

// HandleError reports a NULL, out-of-range, or wrong-kind handle (spec 7
// "Invalid handle").
type HandleError struct {
	Handle uint32
	Reason string
}

func (e *HandleError) Error() string {
	return fmt.Sprintf("scene: invalid handle 0x%x: %s", e.Handle, e.Reason)
}

// ArgumentError reports a null required buffer (spec 7 "Invalid argument").
type ArgumentError struct {
	Argument string
}

func (e *ArgumentError) Error() string {
	return fmt.Sprintf("scene: invalid argument: %s", e.Argument)
}

// InstanceError reports an out-of-range instance index within a TLAS (spec
// 7 "Invalid instance ID").
type InstanceError struct {
	TLASHandle   uint32
	InstanceID   int
	InstanceSize int
}

func (e *InstanceError) Error() string {
	return fmt.Sprintf("scene: instance %d out of range for TLAS 0x%x (size %d)",
		e.InstanceID, e.TLASHandle, e.InstanceSize)
}
