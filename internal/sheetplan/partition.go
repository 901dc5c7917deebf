package sheetplan

import "orgreport/internal/mapping"

// Plan is the partitioned write plan for one run. The core batch must land
// before anything else; the profile batch is dispatched separately so that a
// rejection there (oversized payloads are the usual cause) cannot poison the
// rest of the report.
type Plan struct {
	Core     []WriteOp
	Profiles []WriteOp
}

// Partition splits write operations into the core batch and the profile
// batch. Order within each batch is preserved.
func Partition(ops []WriteOp) Plan {
	var p Plan
	for _, op := range ops {
		if op.Field == mapping.FieldProfiles {
			p.Profiles = append(p.Profiles, op)
		} else {
			p.Core = append(p.Core, op)
		}
	}
	return p
}
